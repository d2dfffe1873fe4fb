package session

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/orderbook"
	"github.com/zappabad/memex/internal/rarity"
)

// Config holds configuration for a market session.
type Config struct {
	// StartingBalance is the spendable balance of a fresh session.
	StartingBalance decimal.Decimal
	// FeeRate is deducted from sell proceeds.
	FeeRate decimal.Decimal
	// Table holds tier multipliers and edition caps.
	Table *rarity.Table
	// BuyWeights is the tier draw for cards bought on the market.
	BuyWeights rarity.Weights
	// SerialPolicy assigns serial numbers on mint.
	SerialPolicy inventory.SerialPolicy
	// ChestPrices is the cost of each chest tier.
	ChestPrices map[rarity.ChestTier]decimal.Decimal
	// TapeCapacity is the number of trades kept per asset.
	TapeCapacity int
	// SeedCards is the size of the starting collection.
	SeedCards int
	// SeedTrades is the number of trades printed per asset at start.
	SeedTrades int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		StartingBalance: decimal.NewFromInt(1250),
		FeeRate:         decimal.RequireFromString("0.02"),
		Table:           rarity.DefaultTable,
		BuyWeights:      rarity.DefaultWeights,
		SerialPolicy:    inventory.SerialRandom,
		ChestPrices: map[rarity.ChestTier]decimal.Decimal{
			rarity.ChestFree:      decimal.Zero,
			rarity.ChestPremium:   decimal.NewFromInt(150),
			rarity.ChestLegendary: decimal.NewFromInt(500),
		},
		TapeCapacity: orderbook.DefaultTapeCapacity,
		SeedCards:    12,
		SeedTrades:   15,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.StartingBalance.IsNegative() {
		return fmt.Errorf("session: starting balance %s is negative", c.StartingBalance)
	}
	if c.FeeRate.IsNegative() || c.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("session: fee rate %s not in [0, 1)", c.FeeRate)
	}
	for tier, price := range c.ChestPrices {
		if price.IsNegative() {
			return fmt.Errorf("session: %s chest price %s is negative", tier, price)
		}
	}
	if c.SeedCards < 0 || c.SeedTrades < 0 {
		return fmt.Errorf("session: seed counts must not be negative")
	}
	return nil
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Table == nil {
		c.Table = def.Table
	}
	if c.BuyWeights == (rarity.Weights{}) {
		c.BuyWeights = def.BuyWeights
	}
	if c.ChestPrices == nil {
		c.ChestPrices = def.ChestPrices
	}
	if c.TapeCapacity <= 0 {
		c.TapeCapacity = def.TapeCapacity
	}
	return c
}
