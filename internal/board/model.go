// Package board is the terminal live monitoring board. It re-renders whatever
// the server derived on the last poll and keeps no clock of its own.
package board

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shopfloor-tracker/internal/http/dto"
)

type LiveSource interface {
	Live(ctx context.Context) (dto.LiveResponse, error)
}

type tickMsg time.Time

type dataMsg struct {
	Live dto.LiveResponse
	Err  error
}

type Model struct {
	source      LiveSource
	refresh     time.Duration
	live        dto.LiveResponse
	err         error
	lastUpdated time.Time
	width       int
}

func NewModel(source LiveSource, refresh time.Duration) Model {
	return Model{source: source, refresh: refresh}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.refresh)
		defer cancel()

		live, err := m.source.Live(ctx)
		return dataMsg{Live: live, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())
	case dataMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.live = msg.Live
			m.lastUpdated = msg.Live.GeneratedAt
		}
	}
	return m, nil
}

func (m Model) View() string {
	return Render(m.live, m.err, m.lastUpdated)
}
