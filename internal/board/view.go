package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"shopfloor-tracker/internal/http/dto"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusStyles = map[string]lipgloss.Style{
		"running": lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"paused":  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"stopped": lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		"idle":    mutedStyle,
	}
)

type column struct {
	title string
	width int
}

var columns = []column{
	{"MACHINE", 10},
	{"NAME", 16},
	{"STATUS", 9},
	{"ORDER", 14},
	{"WORKER", 14},
	{"PHASE", 12},
	{"ELAPSED", 9},
	{"QTY", 9},
}

// Render draws the board for one poll result. lastUpdated is the server's
// generation time, shown so operators can spot a stale board.
func Render(live dto.LiveResponse, err error, lastUpdated time.Time) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("shop floor") + "\n")
	if lastUpdated.IsZero() {
		b.WriteString(mutedStyle.Render("waiting for first update...") + "\n")
	} else {
		b.WriteString(mutedStyle.Render("updated "+lastUpdated.Local().Format("15:04:05")) + "\n")
	}
	if err != nil {
		b.WriteString(errorStyle.Render("poll failed: "+err.Error()) + "\n")
	}
	b.WriteString("\n")

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = pad(c.title, c.width)
	}
	b.WriteString(headerStyle.Render(strings.Join(header, " ")) + "\n")

	if len(live.Machines) == 0 {
		b.WriteString(mutedStyle.Render("no machines") + "\n")
	}
	for _, row := range live.Machines {
		b.WriteString(renderRow(row) + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("r refresh  q quit"))
	return b.String()
}

func renderRow(row dto.LiveEntryResponse) string {
	order, worker, qty := "-", "-", "-"
	if row.WorkOrder != nil {
		order = row.WorkOrder.OrderNo
	}
	if row.Worker != nil {
		worker = row.Worker.Username
		if row.Worker.FullName != "" {
			worker = row.Worker.FullName
		}
	}
	if row.Task != nil {
		qty = fmt.Sprintf("%d/%d", row.Task.QuantityCompleted, row.Task.QuantityAssigned)
	}
	phase := row.Phase
	if phase == "" {
		phase = "-"
	}

	elapsed := "-"
	switch row.Phase {
	case "pause":
		elapsed = FormatElapsed(row.PauseElapsedSeconds)
	case "preparation", "production":
		elapsed = FormatElapsed(row.ActiveElapsedSeconds)
	}

	status := pad(row.Status, columns[2].width)
	if st, ok := statusStyles[row.Status]; ok {
		status = st.Render(status)
	}

	cells := []string{
		pad(row.Machine.Code, columns[0].width),
		pad(row.Machine.Name, columns[1].width),
		status,
		pad(order, columns[3].width),
		pad(worker, columns[4].width),
		pad(phase, columns[5].width),
		pad(elapsed, columns[6].width),
		pad(qty, columns[7].width),
	}
	return strings.Join(cells, " ")
}

// FormatElapsed renders seconds as HH:MM:SS.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
