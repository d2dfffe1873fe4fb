// Package pricefeed generates and evolves the synthetic price series of each
// asset: an OHLC candle history plus a live price state.
package pricefeed

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfOrder = errors.New("candle time not after last candle")

// Candle is one OHLC bucket. Time is unix seconds.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Valid reports whether the candle satisfies its OHLC bounds with positive prices.
func (c Candle) Valid() bool {
	if c.Open <= 0 || c.Close <= 0 || c.Low <= 0 {
		return false
	}
	return c.High >= math.Max(c.Open, c.Close) && c.Low <= math.Min(c.Open, c.Close)
}

// Bullish reports whether the candle closed at or above its open.
func (c Candle) Bullish() bool { return c.Close >= c.Open }

// History is an append-only, time-ascending candle series.
type History struct {
	candles []Candle
}

// NewHistory returns an empty history with room for capacity candles.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{candles: make([]Candle, 0, capacity)}
}

// Append adds c after the last candle. Timestamps must strictly increase.
func (h *History) Append(c Candle) error {
	if n := len(h.candles); n > 0 && c.Time <= h.candles[n-1].Time {
		return fmt.Errorf("%w: %d <= %d", ErrOutOfOrder, c.Time, h.candles[n-1].Time)
	}
	h.candles = append(h.candles, c)
	return nil
}

// Len returns the number of candles.
func (h *History) Len() int { return len(h.candles) }

// Last returns the newest candle.
func (h *History) Last() (Candle, bool) {
	if len(h.candles) == 0 {
		return Candle{}, false
	}
	return h.candles[len(h.candles)-1], true
}

// Candles returns a copy of the whole series, oldest first.
func (h *History) Candles() []Candle {
	out := make([]Candle, len(h.candles))
	copy(out, h.candles)
	return out
}

// Tail returns a copy of the newest n candles, oldest first.
func (h *History) Tail(n int) []Candle {
	if n <= 0 || len(h.candles) == 0 {
		return nil
	}
	if n > len(h.candles) {
		n = len(h.candles)
	}
	out := make([]Candle, n)
	copy(out, h.candles[len(h.candles)-n:])
	return out
}

// HighLow returns the maximum high and minimum low over the series.
func (h *History) HighLow() (high, low float64) {
	if len(h.candles) == 0 {
		return 0, 0
	}
	high, low = h.candles[0].High, h.candles[0].Low
	for _, c := range h.candles[1:] {
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	return high, low
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	return &History{candles: h.Candles()}
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
