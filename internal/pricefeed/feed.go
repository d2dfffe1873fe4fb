package pricefeed

import (
	"math"
	"time"

	"github.com/zappabad/memex/internal/random"
)

const (
	// HistoryLen is the number of candles produced by GenerateHistory.
	HistoryLen = 101
	// CandleSpacing is the distance between generated candles.
	CandleSpacing = 15 * time.Minute
	// BucketInterval is the minimum age of the last candle before Advance
	// appends a new one.
	BucketInterval = 60 * time.Second

	// StepScale sets the width of one Advance move. Moves fall in
	// [-0.96%, +1.04%] of the current price.
	StepScale = 0.01

	minPrice = 0.01
)

// State is the live price state of one asset.
type State struct {
	Current   float64 `json:"current"`
	Change24h float64 `json:"change_24h"`
	High24h   float64 `json:"high_24h"`
	Low24h    float64 `json:"low_24h"`
	Volume24h float64 `json:"volume_24h"`
}

// GenerateHistory synthesizes HistoryLen candles ending at now, spaced
// CandleSpacing apart. The output depends only on src, basePrice and now.
func GenerateHistory(src random.Source, basePrice float64, now time.Time) *History {
	h := NewHistory(HistoryLen + 64)
	price := basePrice * random.Uniform(src, 0.5, 1.5)
	end := now.Unix()
	spacing := int64(CandleSpacing / time.Second)

	for i := HistoryLen - 1; i >= 0; i-- {
		volatility := random.Uniform(src, 0.02, 0.05)
		open := price
		change := (src.Float64() - 0.45) * volatility
		closePrice := price * (1 + change)
		high := math.Max(open, closePrice) * (1 + src.Float64()*0.01)
		low := math.Min(open, closePrice) * (1 - src.Float64()*0.01)

		// times strictly increase, Append cannot fail
		_ = h.Append(Candle{
			Time:  end - int64(i)*spacing,
			Open:  Round2(open),
			High:  Round2(high),
			Low:   Round2(low),
			Close: Round2(closePrice),
		})
		price = closePrice
	}
	return h
}

// NewState derives the opening price state of an asset. The 24h range covers
// both the history and the opening price.
func NewState(src random.Source, basePrice float64, h *History) State {
	st := State{
		Current:   math.Max(Round2(basePrice*random.Uniform(src, 0.5, 2.0)), minPrice),
		Change24h: (src.Float64() - 0.3) * 30,
		Volume24h: math.Round(random.Uniform(src, 50000, 250000)),
	}
	st.High24h, st.Low24h = h.HighLow()
	if h.Len() == 0 {
		st.High24h, st.Low24h = st.Current, st.Current
	}
	st.High24h = math.Max(st.High24h, st.Current)
	st.Low24h = math.Min(st.Low24h, st.Current)
	return st
}

// Advance applies one random step of about StepScale to st. When the newest
// candle in h is older than BucketInterval it appends a candle opening at the
// previous close and returns it.
func Advance(src random.Source, st *State, h *History, now time.Time) (Candle, bool) {
	change := (src.Float64() - 0.48) * 2 * StepScale
	st.Current = math.Max(Round2(st.Current*(1+change)), minPrice)
	st.Change24h += change * 100
	st.High24h = math.Max(st.High24h, st.Current)
	st.Low24h = math.Min(st.Low24h, st.Current)

	last, ok := h.Last()
	ts := now.Unix()
	if ok && ts-last.Time <= int64(BucketInterval/time.Second) {
		return Candle{}, false
	}

	open := st.Current
	if ok {
		open = last.Close
	}
	c := Candle{
		Time:  ts,
		Open:  open,
		Close: st.Current,
		High:  math.Max(open, Round2(st.Current*1.005)),
		Low:   math.Min(open, Round2(st.Current*0.995)),
	}
	if err := h.Append(c); err != nil {
		return Candle{}, false
	}
	st.High24h = math.Max(st.High24h, c.High)
	st.Low24h = math.Min(st.Low24h, c.Low)
	return c, true
}

// RecordTrade adds a trade's notional to the rolling volume.
func (st *State) RecordTrade(notional float64) {
	if notional > 0 {
		st.Volume24h += notional
	}
}
