package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
)

func TestObserverCounts(t *testing.T) {
	m := New()

	m.Ticked()
	m.Ticked()
	m.TradePrinted("cat", 120.5)
	m.OrderFilled("cat", market.SideBuy, 3)
	m.OperationRejected("order", "insufficient_funds")
	m.ChestOpened(rarity.ChestPremium, rarity.Epic)
	m.BattleResolved(rarity.Legendary, true)
	m.BalanceChanged(450)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks))
	assert.Equal(t, 120.5, testutil.ToFloat64(m.TradeNotional.WithLabelValues("cat")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CardsTraded.WithLabelValues("cat", "buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("order", "insufficient_funds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChestsOpened.WithLabelValues(rarity.ChestPremium.String(), rarity.Epic.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BattlesFought.WithLabelValues(rarity.Legendary.String(), "win")))
	assert.Equal(t, 450.0, testutil.ToFloat64(m.Balance))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.Ticked()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "memex_ticks_total 1"))
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.Ticked()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Ticks))
}
