package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"holdemroom/internal/client"
	"holdemroom/internal/tui"
)

var CLI struct {
	Server string `short:"s" default:"http://localhost:3000" help:"Server base URL"`
	Room   string `short:"r" default:"table" help:"Room code to join"`
	Name   string `short:"n" required:"" help:"Player name"`
}

func main() {
	kctx := kong.Parse(&CLI)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := client.New(CLI.Server)
	playerID, view, err := c.Join(ctx, CLI.Room, CLI.Name)
	if err != nil {
		fmt.Printf("Failed to join room: %v\n", err)
		kctx.Exit(1)
	}

	views, err := c.Subscribe(ctx, CLI.Room, playerID)
	if err != nil {
		fmt.Printf("Failed to subscribe: %v\n", err)
		kctx.Exit(1)
	}

	p := tea.NewProgram(tui.New(c, CLI.Room, playerID, view, views), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Client error: %v\n", err)
		kctx.Exit(1)
	}
}
