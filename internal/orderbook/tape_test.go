package orderbook

import (
	"math"
	"testing"
	"time"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/random"
)

func TestTapeMostRecentFirst(t *testing.T) {
	tape := NewTape(3)
	for i := 1; i <= 5; i++ {
		tape.Push(Trade{Price: float64(i), Amount: 1})
	}

	if tape.Count() != 3 {
		t.Fatalf("expected count 3, got %d", tape.Count())
	}
	got := tape.All()
	want := []float64{5, 4, 3}
	for i, p := range want {
		if got[i].Price != p {
			t.Errorf("position %d: expected price %v, got %v", i, p, got[i].Price)
		}
	}

	last := tape.Last(2)
	if len(last) != 2 || last[0].Price != 5 || last[1].Price != 4 {
		t.Errorf("unexpected Last(2): %+v", last)
	}
	if tape.Last(0) != nil {
		t.Error("expected nil for Last(0)")
	}
}

func TestTapeDefaultCapacity(t *testing.T) {
	tape := NewTape(0)
	if tape.Cap() != DefaultTapeCapacity {
		t.Fatalf("expected capacity %d, got %d", DefaultTapeCapacity, tape.Cap())
	}
	for i := 0; i < 50; i++ {
		tape.Push(Trade{Price: float64(i)})
	}
	if tape.Count() != DefaultTapeCapacity {
		t.Errorf("expected %d trades, got %d", DefaultTapeCapacity, tape.Count())
	}
	if tape.All()[0].Price != 49 {
		t.Errorf("expected newest trade first")
	}
}

func TestNewTrade(t *testing.T) {
	now := time.Unix(1700000000, 0)
	src := random.NewSeeded("trades")
	for i := 0; i < 500; i++ {
		tr := NewTrade(src, 100, now)
		if tr.Price < 99.5 || tr.Price >= 100.5 {
			t.Fatalf("price %v outside band", tr.Price)
		}
		if tr.Amount < 1 || tr.Amount > 5 {
			t.Fatalf("amount %d outside [1,5]", tr.Amount)
		}
		if tr.ID == "" || !tr.Time.Equal(now) {
			t.Fatalf("unexpected trade metadata %+v", tr)
		}
	}

	// price draw, amount draw, side draw
	buy := NewTrade(random.NewSequence(0.5, 0, 0.9), 100, now)
	if buy.Side != market.SideBuy || buy.Amount != 1 || math.Abs(buy.Price-100) > 1e-9 {
		t.Errorf("unexpected trade %+v", buy)
	}
	sell := NewTrade(random.NewSequence(0.5, 0.99, 0.5), 100, now)
	if sell.Side != market.SideSell || sell.Amount != 5 {
		t.Errorf("unexpected trade %+v", sell)
	}
}
