package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"holdemroom/internal/config"
	"holdemroom/internal/server"
)

var CLI struct {
	Config    string `short:"c" default:"holdemroom.hcl" help:"Path to HCL configuration file"`
	Addr      string `short:"a" help:"Listen address (overrides config)"`
	LogLevel  string `short:"l" help:"Log level (overrides config)"`
	StaticDir string `help:"Static asset directory (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.StaticDir != "" {
		cfg.Server.StaticDir = CLI.StaticDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	addr := cfg.ListenAddr()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("Starting holdem room server",
		"addr", addr,
		"smallBlind", cfg.Game.SmallBlind,
		"bigBlind", cfg.Game.BigBlind,
		"startingStack", cfg.Game.StartingStack)

	clock := quartz.NewReal()
	rooms := server.NewRooms(server.RoomConfig{
		SmallBlind:    cfg.Game.SmallBlind,
		BigBlind:      cfg.Game.BigBlind,
		StartingStack: cfg.Game.StartingStack,
		DefaultRoom:   cfg.Game.DefaultRoom,
	}, logger, clock)
	srv := server.New(addr, rooms, cfg.Server.StaticDir, logger, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rooms.StartReaper(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}
