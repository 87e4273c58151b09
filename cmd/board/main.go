package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"teamboard/board"
	"teamboard/client"
	"teamboard/config"
	"teamboard/tui"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	api := client.New(cfg.APIURL, cfg.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	user, err := api.Login(ctx, cfg.Email, cfg.Password)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error logging in to %s: %v\n", cfg.APIURL, err)
		os.Exit(1)
	}

	app := tui.New(board.New(api), user.ID, cfg.Timeout)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running board: %v\n", err)
		os.Exit(1)
	}
}
