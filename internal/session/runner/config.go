package runner

import "time"

// Config holds configuration for the session runner.
type Config struct {
	// PriceInterval is the interval between price and book refreshes.
	PriceInterval time.Duration
	// TradeInterval is the interval between random trade prints.
	TradeInterval time.Duration
	// CommandBuffer is the size of the inbound command channel.
	CommandBuffer int
	// EventBuffer is the size of the events channel.
	EventBuffer int
	// DropEvents determines whether the events channel drops on overflow.
	DropEvents bool
	// SnapshotCandles bounds the candles copied into snapshots.
	SnapshotCandles int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PriceInterval:   3 * time.Second,
		TradeInterval:   5 * time.Second,
		CommandBuffer:   64,
		EventBuffer:     256,
		DropEvents:      true,
		SnapshotCandles: 120,
	}
}
