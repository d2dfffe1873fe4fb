// Package orderbook synthesizes the per-asset depth ladder and trade tape.
package orderbook

import (
	"sort"

	"github.com/zappabad/memex/internal/pricefeed"
	"github.com/zappabad/memex/internal/random"
)

const (
	// Depth is the number of levels generated per side.
	Depth = 8

	maxLevelAmount = 15

	tick = 0.01
)

// Entry is one price level with its running total in display order.
type Entry struct {
	Price  float64 `json:"price"`
	Amount int     `json:"amount"`
	Total  int     `json:"total"`
}

// Book is a synthetic depth snapshot. Asks ascend by price, bids descend.
type Book struct {
	Asks []Entry `json:"asks"`
	Bids []Entry `json:"bids"`
}

// Generate builds a fresh book of Depth levels per side around mid.
func Generate(src random.Source, mid float64) Book {
	asks := make([]Entry, Depth)
	for i := 0; i < Depth; i++ {
		asks[i] = Entry{
			Price:  pricefeed.Round2(mid * (1.005 + float64(i)*0.008 + src.Float64()*0.005)),
			Amount: random.IntRange(src, 1, maxLevelAmount),
		}
	}
	bids := make([]Entry, Depth)
	for i := 0; i < Depth; i++ {
		bids[i] = Entry{
			Price:  pricefeed.Round2(mid * (0.995 - float64(i)*0.008 - src.Float64()*0.005)),
			Amount: random.IntRange(src, 1, maxLevelAmount),
		}
	}

	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	// below a few units the level gap is under a cent and rounding can tie
	for i := 1; i < Depth; i++ {
		if asks[i].Price <= asks[i-1].Price {
			asks[i].Price = pricefeed.Round2(asks[i-1].Price + tick)
		}
		if bids[i].Price >= bids[i-1].Price {
			bids[i].Price = pricefeed.Round2(bids[i-1].Price - tick)
		}
	}
	accumulate(asks)
	accumulate(bids)

	return Book{Asks: asks, Bids: bids}
}

func accumulate(levels []Entry) {
	total := 0
	for i := range levels {
		total += levels[i].Amount
		levels[i].Total = total
	}
}

// BestAsk returns the lowest ask.
func (b Book) BestAsk() (Entry, bool) {
	if len(b.Asks) == 0 {
		return Entry{}, false
	}
	return b.Asks[0], true
}

// BestBid returns the highest bid.
func (b Book) BestBid() (Entry, bool) {
	if len(b.Bids) == 0 {
		return Entry{}, false
	}
	return b.Bids[0], true
}

// Spread returns best ask minus best bid, or 0 if either side is empty.
func (b Book) Spread() float64 {
	ask, ok1 := b.BestAsk()
	bid, ok2 := b.BestBid()
	if !ok1 || !ok2 {
		return 0
	}
	return pricefeed.Round2(ask.Price - bid.Price)
}

// MaxTotal returns the largest running total across both sides.
func (b Book) MaxTotal() int {
	m := 0
	if n := len(b.Asks); n > 0 {
		m = b.Asks[n-1].Total
	}
	if n := len(b.Bids); n > 0 && b.Bids[n-1].Total > m {
		m = b.Bids[n-1].Total
	}
	return m
}

// DepthRatio returns e's running total relative to the deepest side, in [0, 1].
func (b Book) DepthRatio(e Entry) float64 {
	m := b.MaxTotal()
	if m == 0 {
		return 0
	}
	return float64(e.Total) / float64(m)
}

// Clone returns a copy that shares no slices with b.
func (b Book) Clone() Book {
	out := Book{
		Asks: make([]Entry, len(b.Asks)),
		Bids: make([]Entry, len(b.Bids)),
	}
	copy(out.Asks, b.Asks)
	copy(out.Bids, b.Bids)
	return out
}
