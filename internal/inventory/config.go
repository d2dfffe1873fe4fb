package inventory

import "github.com/zappabad/memex/internal/rarity"

// Config holds configuration for the ledger.
type Config struct {
	// Table holds the multiplier and cap of each tier.
	Table *rarity.Table
	// Weights is the draw used when a mint names no tier.
	Weights rarity.Weights
	// Policy assigns serials when a mint names none.
	Policy SerialPolicy
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Table:   rarity.DefaultTable,
		Weights: rarity.DefaultWeights,
		Policy:  SerialRandom,
	}
}
