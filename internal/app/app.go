// Package app assembles the simulator subsystems from a loaded configuration
// and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	activityservice "github.com/zappabad/memex/internal/activity/service"
	"github.com/zappabad/memex/internal/config"
	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/metrics"
	"github.com/zappabad/memex/internal/random"
	"github.com/zappabad/memex/internal/rarity"
	"github.com/zappabad/memex/internal/session"
	"github.com/zappabad/memex/internal/session/runner"
)

const shutdownTimeout = 5 * time.Second

// App owns every subsystem of a running simulator.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Catalog  *market.Catalog
	Runner   *runner.Runner
	Activity *activityservice.Service
	Metrics  *metrics.Metrics

	mu     sync.Mutex
	closed bool
}

// New builds a session from cfg and starts the runner and activity feed
// around it. Metrics are always collected; the HTTP endpoint is only served
// by Run when enabled.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog := market.DefaultCatalog()
	m := metrics.New()

	scfg, err := SessionConfig(cfg)
	if err != nil {
		return nil, err
	}

	var src random.Source
	if cfg.Session.Seed != "" {
		src = random.NewSeeded(cfg.Session.Seed)
	} else {
		src = random.New()
	}

	sess, err := session.New(catalog, scfg,
		session.WithSource(src),
		session.WithLogger(logger),
		session.WithObserver(m),
	)
	if err != nil {
		return nil, fmt.Errorf("app: new session: %w", err)
	}
	m.BalanceChanged(sess.Balance().InexactFloat64())

	r := runner.New(sess, RunnerConfig(cfg), logger)

	act := activityservice.NewService(activityservice.Config{
		FeedSize:           cfg.Activity.FeedSize,
		DropExternalEvents: true,
	}, catalog)
	act.AttachRunnerEvents(r.Events())

	logger.Info("simulator ready",
		zap.Int("assets", catalog.Len()),
		zap.String("preset", cfg.Session.RarityPreset),
		zap.Bool("seeded", cfg.Session.Seed != ""),
		zap.String("balance", sess.Balance().StringFixed(2)),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Catalog:  catalog,
		Runner:   r,
		Activity: act,
		Metrics:  m,
	}, nil
}

// SessionConfig translates the file configuration into a session.Config.
func SessionConfig(cfg *config.Config) (session.Config, error) {
	s := cfg.Session
	out := session.DefaultConfig()

	out.StartingBalance = decimal.NewFromFloat(s.StartingBalance)
	out.FeeRate = decimal.NewFromFloat(s.FeeRate)
	out.SeedCards = s.SeedCards
	out.SeedTrades = s.SeedTrades
	out.TapeCapacity = s.TapeCapacity

	switch strings.ToLower(s.RarityPreset) {
	case "", "default":
		out.Table, out.BuyWeights = rarity.DefaultTable, rarity.DefaultWeights
	case "classic":
		out.Table, out.BuyWeights = rarity.ClassicTable, rarity.ClassicWeights
	default:
		return session.Config{}, fmt.Errorf("app: unknown rarity preset %q", s.RarityPreset)
	}

	switch strings.ToLower(s.SerialPolicy) {
	case "", "random":
		out.SerialPolicy = inventory.SerialRandom
	case "unique":
		out.SerialPolicy = inventory.SerialUnique
	default:
		return session.Config{}, fmt.Errorf("app: unknown serial policy %q", s.SerialPolicy)
	}

	out.ChestPrices = map[rarity.ChestTier]decimal.Decimal{
		rarity.ChestFree:      decimal.NewFromFloat(cfg.Chests.Free),
		rarity.ChestPremium:   decimal.NewFromFloat(cfg.Chests.Premium),
		rarity.ChestLegendary: decimal.NewFromFloat(cfg.Chests.Legendary),
	}
	return out, nil
}

// RunnerConfig translates the file configuration into a runner.Config.
func RunnerConfig(cfg *config.Config) runner.Config {
	out := runner.DefaultConfig()
	out.PriceInterval = cfg.Runner.PriceInterval.Duration
	out.TradeInterval = cfg.Runner.TradeInterval.Duration
	out.EventBuffer = cfg.Runner.EventBuffer
	out.DropEvents = cfg.Runner.DropEvents
	return out
}

// Run blocks until ctx is done. It serves metrics when enabled and logs each
// activity entry; a final summary of the session is logged on the way out.
// Run consumes the activity events channel, so it must not be combined with
// another consumer such as the terminal UI.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.ServeMetrics(ctx) })
	g.Go(func() error {
		a.logActivity(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.logSummary()
		return nil
	})

	return g.Wait()
}

// ServeMetrics serves /metrics and /health until ctx is done. It returns
// immediately when metrics are disabled.
func (a *App) ServeMetrics(ctx context.Context) error {
	if !a.Config.Metrics.Enabled {
		return nil
	}

	srv := &http.Server{
		Addr:              a.Config.Metrics.Addr,
		Handler:           a.metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("serving metrics", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) logActivity(ctx context.Context) {
	events := a.Activity.Events()
	log := a.Logger.Named("activity")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Info(ev.Entry.Headline,
				zap.Stringer("kind", ev.Entry.Kind),
				zap.String("asset", string(ev.Entry.Asset)),
				zap.String("body", ev.Entry.Body),
			)
		}
	}
}

func (a *App) metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (a *App) logSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	snap, err := a.Runner.Snapshot(ctx)
	if err != nil {
		a.Logger.Warn("summary unavailable", zap.Error(err))
		return
	}
	a.Logger.Info("session summary",
		zap.String("balance", snap.Balance.StringFixed(2)),
		zap.Int("cards", len(snap.Collection)),
		zap.String("collection_value", snap.CollectionValue.StringFixed(2)),
		zap.Int64("dropped_events", a.Runner.DroppedEvents()),
	)
}

// Close shuts down all subsystems in reverse dependency order. It is safe to
// call more than once.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true

	// The runner closes its events channel, which ends the activity listener.
	if a.Runner != nil {
		a.Runner.Close()
	}
	if a.Activity != nil {
		a.Activity.Close()
	}
}
