package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"shopfloor-tracker/internal/board"
	"shopfloor-tracker/internal/config"
	"shopfloor-tracker/internal/domain"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	server := flag.String("server", "http://localhost:8080", "tracker base URL")
	workerID := flag.String("worker", "", "identity sent as X-Worker-ID")
	role := flag.String("role", string(domain.RoleSupervisor), "identity sent as X-Role")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := board.NewClient(*server, domain.Identity{WorkerID: *workerID, Role: domain.Role(*role)})
	p := tea.NewProgram(board.NewModel(client, cfg.PollInterval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("board: %v", err)
	}
}
