package orderbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/random"
	"github.com/zappabad/memex/internal/ring"
)

// DefaultTapeCapacity is the number of trades kept per asset.
const DefaultTapeCapacity = 20

// Trade is a synthetic print on the tape.
type Trade struct {
	ID     string      `json:"id"`
	Price  float64     `json:"price"`
	Amount int         `json:"amount"`
	Side   market.Side `json:"side"`
	Time   time.Time   `json:"time"`
}

// Notional returns price times amount.
func (t Trade) Notional() float64 { return t.Price * float64(t.Amount) }

// NewTrade synthesizes a print near current.
func NewTrade(src random.Source, current float64, now time.Time) Trade {
	price := current * random.Uniform(src, 0.995, 1.005)
	amount := random.IntRange(src, 1, 5)
	side := market.SideSell
	if src.Float64() > 0.5 {
		side = market.SideBuy
	}
	return Trade{
		ID:     uuid.New().String(),
		Price:  price,
		Amount: amount,
		Side:   side,
		Time:   now,
	}
}

// Tape keeps the newest trades of one asset.
type Tape struct {
	trades *ring.Buffer[Trade]
}

// NewTape creates a Tape with the given capacity.
func NewTape(capacity int) *Tape {
	if capacity <= 0 {
		capacity = DefaultTapeCapacity
	}
	return &Tape{trades: ring.New[Trade](capacity)}
}

// Push records a trade as the most recent.
func (t *Tape) Push(tr Trade) { t.trades.Push(tr) }

// Last returns copies of up to n trades, most recent first.
func (t *Tape) Last(n int) []Trade { return t.trades.Last(n) }

// All returns every trade on the tape, most recent first.
func (t *Tape) All() []Trade { return t.trades.Last(t.trades.Len()) }

// Count returns the number of trades in the tape.
func (t *Tape) Count() int { return t.trades.Len() }

// Cap returns the tape capacity.
func (t *Tape) Cap() int { return t.trades.Cap() }
