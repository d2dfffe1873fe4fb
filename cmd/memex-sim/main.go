// Command memex-sim runs the exchange simulator headless, optionally serving
// Prometheus metrics, until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/zappabad/memex/internal/app"
	"github.com/zappabad/memex/internal/config"
	"github.com/zappabad/memex/internal/logging"
)

func main() {
	configPath := flag.String("config", "memex.toml", "path to the TOML config file")
	metricsAddr := flag.String("metrics", "", "serve metrics on this address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *metricsAddr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = metricsAddr
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		logger.Error("simulator stopped", zap.Error(err))
		return err
	}
	logger.Info("shut down cleanly")
	return nil
}
