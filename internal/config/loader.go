package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MEMEX_* environment variable overrides, and
// returns the final Config. An empty path or a missing file keeps the
// defaults. The returned Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.LogLevel, "MEMEX_LOG_LEVEL")
	setStr(&cfg.LogFile, "MEMEX_LOG_FILE")

	// ── Session ──
	setStr(&cfg.Session.Seed, "MEMEX_SESSION_SEED")
	setFloat64(&cfg.Session.StartingBalance, "MEMEX_SESSION_STARTING_BALANCE")
	setFloat64(&cfg.Session.FeeRate, "MEMEX_SESSION_FEE_RATE")
	setStr(&cfg.Session.RarityPreset, "MEMEX_SESSION_RARITY_PRESET")
	setStr(&cfg.Session.SerialPolicy, "MEMEX_SESSION_SERIAL_POLICY")
	setInt(&cfg.Session.SeedCards, "MEMEX_SESSION_SEED_CARDS")
	setInt(&cfg.Session.SeedTrades, "MEMEX_SESSION_SEED_TRADES")
	setInt(&cfg.Session.TapeCapacity, "MEMEX_SESSION_TAPE_CAPACITY")

	// ── Chests ──
	setFloat64(&cfg.Chests.Free, "MEMEX_CHESTS_FREE")
	setFloat64(&cfg.Chests.Premium, "MEMEX_CHESTS_PREMIUM")
	setFloat64(&cfg.Chests.Legendary, "MEMEX_CHESTS_LEGENDARY")

	// ── Runner ──
	setDuration(&cfg.Runner.PriceInterval, "MEMEX_RUNNER_PRICE_INTERVAL")
	setDuration(&cfg.Runner.TradeInterval, "MEMEX_RUNNER_TRADE_INTERVAL")
	setInt(&cfg.Runner.EventBuffer, "MEMEX_RUNNER_EVENT_BUFFER")
	setBool(&cfg.Runner.DropEvents, "MEMEX_RUNNER_DROP_EVENTS")

	setInt(&cfg.Activity.FeedSize, "MEMEX_ACTIVITY_FEED_SIZE")
	setStr(&cfg.Profile.DisplayName, "MEMEX_PROFILE_DISPLAY_NAME")

	// ── Metrics ──
	setBool(&cfg.Metrics.Enabled, "MEMEX_METRICS_ENABLED")
	setStr(&cfg.Metrics.Addr, "MEMEX_METRICS_ADDR")
}

// Each helper only mutates the target when the environment variable is
// present and parses.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
