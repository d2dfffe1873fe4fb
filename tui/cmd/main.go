// Command tui runs the exchange simulator with the interactive terminal UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zappabad/memex/internal/app"
	"github.com/zappabad/memex/internal/config"
	"github.com/zappabad/memex/internal/logging"
	"github.com/zappabad/memex/tui"
)

const defaultLogFile = "memex.log"

func main() {
	configPath := flag.String("config", "memex.toml", "path to the TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The alternate screen owns stderr, so logs always go to a file.
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	scfg, err := app.SessionConfig(cfg)
	if err != nil {
		return err
	}

	model := tui.NewModel(a.Runner, a.Activity, tui.Options{
		DisplayName: cfg.Profile.DisplayName,
		ChestPrices: scfg.ChestPrices,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.ServeMetrics(ctx) })
	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		_, err := p.Run()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	logger.Info("terminal closed", zap.Int64("dropped_events", a.Runner.DroppedEvents()))
	return nil
}
