// Package config defines the top-level configuration of the exchange
// simulator and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MEMEX_* environment variables.
type Config struct {
	Session  SessionConfig  `toml:"session"`
	Chests   ChestConfig    `toml:"chests"`
	Runner   RunnerConfig   `toml:"runner"`
	Activity ActivityConfig `toml:"activity"`
	Profile  ProfileConfig  `toml:"profile"`
	Metrics  MetricsConfig  `toml:"metrics"`
	LogLevel string         `toml:"log_level"`
	LogFile  string         `toml:"log_file"`
}

// SessionConfig holds the economy of a session.
type SessionConfig struct {
	// Seed makes a run reproducible. Empty seeds from the clock.
	Seed            string  `toml:"seed"`
	StartingBalance float64 `toml:"starting_balance"`
	FeeRate         float64 `toml:"fee_rate"`
	RarityPreset    string  `toml:"rarity_preset"`
	SerialPolicy    string  `toml:"serial_policy"`
	SeedCards       int     `toml:"seed_cards"`
	SeedTrades      int     `toml:"seed_trades"`
	TapeCapacity    int     `toml:"tape_capacity"`
}

// ChestConfig holds the price of each chest tier.
type ChestConfig struct {
	Free      float64 `toml:"free"`
	Premium   float64 `toml:"premium"`
	Legendary float64 `toml:"legendary"`
}

// RunnerConfig holds the tick cadence.
type RunnerConfig struct {
	PriceInterval duration `toml:"price_interval"`
	TradeInterval duration `toml:"trade_interval"`
	EventBuffer   int      `toml:"event_buffer"`
	DropEvents    bool     `toml:"drop_events"`
}

// ActivityConfig holds the activity feed size.
type ActivityConfig struct {
	FeedSize int `toml:"feed_size"`
}

// ProfileConfig holds cosmetic player settings.
type ProfileConfig struct {
	DisplayName string `toml:"display_name"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "3s", "500ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Session: SessionConfig{
			StartingBalance: 1250,
			FeeRate:         0.02,
			RarityPreset:    "default",
			SerialPolicy:    "random",
			SeedCards:       12,
			SeedTrades:      15,
			TapeCapacity:    20,
		},
		Chests: ChestConfig{
			Free:      0,
			Premium:   150,
			Legendary: 500,
		},
		Runner: RunnerConfig{
			PriceInterval: duration{3 * time.Second},
			TradeInterval: duration{5 * time.Second},
			EventBuffer:   256,
			DropEvents:    true,
		},
		Activity: ActivityConfig{FeedSize: 200},
		Profile:  ProfileConfig{DisplayName: "Трейдер"},
		Metrics:  MetricsConfig{Addr: ":9108"},
		LogLevel: "info",
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validPresets = map[string]bool{
	"default": true,
	"classic": true,
}

var validSerialPolicies = map[string]bool{
	"random": true,
	"unique": true,
}

// Validate checks Config for invalid values and returns a combined error
// describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	s := c.Session
	if s.StartingBalance < 0 {
		errs = append(errs, "session: starting_balance must not be negative")
	}
	if s.FeeRate < 0 || s.FeeRate >= 1 {
		errs = append(errs, fmt.Sprintf("session: fee_rate must be in [0, 1), got %v", s.FeeRate))
	}
	if !validPresets[strings.ToLower(s.RarityPreset)] {
		errs = append(errs, fmt.Sprintf("session: unknown rarity_preset %q (valid: default, classic)", s.RarityPreset))
	}
	if !validSerialPolicies[strings.ToLower(s.SerialPolicy)] {
		errs = append(errs, fmt.Sprintf("session: unknown serial_policy %q (valid: random, unique)", s.SerialPolicy))
	}
	if s.SeedCards < 0 || s.SeedTrades < 0 {
		errs = append(errs, "session: seed_cards and seed_trades must not be negative")
	}
	if s.TapeCapacity <= 0 {
		errs = append(errs, "session: tape_capacity must be positive")
	}

	if c.Chests.Free < 0 || c.Chests.Premium < 0 || c.Chests.Legendary < 0 {
		errs = append(errs, "chests: prices must not be negative")
	}

	if c.Runner.PriceInterval.Duration <= 0 || c.Runner.TradeInterval.Duration <= 0 {
		errs = append(errs, "runner: price_interval and trade_interval must be positive")
	}
	if c.Runner.EventBuffer <= 0 {
		errs = append(errs, "runner: event_buffer must be positive")
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, "metrics: addr is required when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
