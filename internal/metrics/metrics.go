// Package metrics exposes session activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
)

// Metrics records session activity on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	Ticks         prometheus.Counter
	TradesPrinted *prometheus.CounterVec
	TradeNotional *prometheus.CounterVec
	OrdersFilled  *prometheus.CounterVec
	CardsTraded   *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	ChestsOpened  *prometheus.CounterVec
	BattlesFought *prometheus.CounterVec
	Balance       prometheus.Gauge
}

// New registers the simulator metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "memex_ticks_total",
			Help: "Total number of price refresh ticks",
		}),
		TradesPrinted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memex_trades_printed_total",
			Help: "Total number of synthetic trades printed",
		}, []string{"asset"}),
		TradeNotional: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memex_trade_notional_total",
			Help: "Notional value of synthetic trades",
		}, []string{"asset"}),
		OrdersFilled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memex_orders_filled_total",
			Help: "Total number of filled player orders",
		}, []string{"asset", "side"}),
		CardsTraded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memex_cards_traded_total",
			Help: "Total number of cards bought or sold by the player",
		}, []string{"asset", "side"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memex_rejections_total",
			Help: "Total number of rejected player operations",
		}, []string{"op", "reason"}),
		ChestsOpened: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memex_chests_opened_total",
			Help: "Total number of chests opened",
		}, []string{"chest", "tier"}),
		BattlesFought: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memex_battles_total",
			Help: "Total number of battles resolved",
		}, []string{"tier", "result"}),
		Balance: f.NewGauge(prometheus.GaugeOpts{
			Name: "memex_balance",
			Help: "Current player balance",
		}),
	}
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Ticked() { m.Ticks.Inc() }

func (m *Metrics) TradePrinted(asset market.AssetID, notional float64) {
	m.TradesPrinted.WithLabelValues(string(asset)).Inc()
	m.TradeNotional.WithLabelValues(string(asset)).Add(notional)
}

func (m *Metrics) OrderFilled(asset market.AssetID, side market.Side, amount int) {
	label := strings.ToLower(side.String())
	m.OrdersFilled.WithLabelValues(string(asset), label).Inc()
	m.CardsTraded.WithLabelValues(string(asset), label).Add(float64(amount))
}

func (m *Metrics) OperationRejected(op, reason string) {
	m.Rejections.WithLabelValues(op, reason).Inc()
}

func (m *Metrics) ChestOpened(chest rarity.ChestTier, tier rarity.Tier) {
	m.ChestsOpened.WithLabelValues(chest.String(), tier.String()).Inc()
}

func (m *Metrics) BattleResolved(tier rarity.Tier, won bool) {
	result := "loss"
	if won {
		result = "win"
	}
	m.BattlesFought.WithLabelValues(tier.String(), result).Inc()
}

func (m *Metrics) BalanceChanged(balance float64) { m.Balance.Set(balance) }
