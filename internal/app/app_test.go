package app

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zappabad/memex/internal/config"
	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
	"github.com/zappabad/memex/internal/session"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Session.Seed = "app-test"
	return &cfg
}

func TestSessionConfigPresets(t *testing.T) {
	cfg := testConfig()
	cfg.Session.RarityPreset = "classic"
	cfg.Session.SerialPolicy = "unique"
	cfg.Chests.Premium = 99

	scfg, err := SessionConfig(cfg)
	require.NoError(t, err)
	assert.Same(t, rarity.ClassicTable, scfg.Table)
	assert.Equal(t, rarity.ClassicWeights, scfg.BuyWeights)
	assert.Equal(t, inventory.SerialUnique, scfg.SerialPolicy)
	assert.Equal(t, "99", scfg.ChestPrices[rarity.ChestPremium].String())
	assert.Equal(t, "1250", scfg.StartingBalance.String())
	assert.Equal(t, "0.02", scfg.FeeRate.String())
}

func TestSessionConfigRejectsUnknownPreset(t *testing.T) {
	cfg := testConfig()
	cfg.Session.RarityPreset = "mythic"
	_, err := SessionConfig(cfg)
	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Session.FeeRate = 2
	_, err := New(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestAppEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SeedCards = 0
	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = a.Runner.PlaceOrder(ctx, session.OrderRequest{
		Asset:  "cat",
		Side:   market.SideBuy,
		Kind:   market.OrderKindMarket,
		Amount: 1,
	})
	require.NoError(t, err)

	snap, err := a.Runner.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Collection, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.OrdersFilled.WithLabelValues("cat", "buy")))
	assert.Equal(t, snap.Balance.InexactFloat64(), testutil.ToFloat64(a.Metrics.Balance))

	require.Eventually(t, func() bool {
		return len(a.Activity.Latest(10)) > 0
	}, time.Second, 10*time.Millisecond)
}

func TestRunReturnsOnCancel(t *testing.T) {
	a, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	a.Close()
	a.Close()
}

func TestMetricsMux(t *testing.T) {
	a, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	mux := a.metricsMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "memex_balance"))
}

func TestServeMetricsDisabledReturns(t *testing.T) {
	a, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.NoError(t, a.ServeMetrics(context.Background()))
}
