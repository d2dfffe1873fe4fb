package orderbook

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/zappabad/memex/internal/random"
)

func checkBook(t interface{ Fatalf(string, ...any) }, b Book, mid float64) {
	if len(b.Asks) != Depth || len(b.Bids) != Depth {
		t.Fatalf("expected %d levels per side, got %d asks %d bids", Depth, len(b.Asks), len(b.Bids))
	}
	for i, e := range b.Asks {
		if e.Amount < 1 || e.Amount > 15 {
			t.Fatalf("ask %d amount %d out of range", i, e.Amount)
		}
		if e.Price <= mid {
			t.Fatalf("ask %d price %v not above mid %v", i, e.Price, mid)
		}
		if i > 0 {
			if e.Price <= b.Asks[i-1].Price {
				t.Fatalf("asks not strictly ascending at %d: %v <= %v", i, e.Price, b.Asks[i-1].Price)
			}
			if e.Total < b.Asks[i-1].Total {
				t.Fatalf("ask totals decrease at %d", i)
			}
			if e.Total != b.Asks[i-1].Total+e.Amount {
				t.Fatalf("ask total at %d is not cumulative", i)
			}
		} else if e.Total != e.Amount {
			t.Fatalf("first ask total %d != amount %d", e.Total, e.Amount)
		}
	}
	for i, e := range b.Bids {
		if e.Amount < 1 || e.Amount > 15 {
			t.Fatalf("bid %d amount %d out of range", i, e.Amount)
		}
		if e.Price >= mid {
			t.Fatalf("bid %d price %v not below mid %v", i, e.Price, mid)
		}
		if i > 0 {
			if e.Price >= b.Bids[i-1].Price {
				t.Fatalf("bids not strictly descending at %d: %v >= %v", i, e.Price, b.Bids[i-1].Price)
			}
			if e.Total != b.Bids[i-1].Total+e.Amount {
				t.Fatalf("bid total at %d is not cumulative", i)
			}
		} else if e.Total != e.Amount {
			t.Fatalf("first bid total %d != amount %d", e.Total, e.Amount)
		}
	}
}

func TestGenerate(t *testing.T) {
	b := Generate(random.NewSeeded("book"), 800)
	checkBook(t, b, 800)

	if b.Spread() <= 0 {
		t.Errorf("expected positive spread, got %v", b.Spread())
	}
	ask, _ := b.BestAsk()
	bid, _ := b.BestBid()
	if ask.Price != b.Asks[0].Price || bid.Price != b.Bids[0].Price {
		t.Error("best levels should be the first entries")
	}
}

func TestGenerateLevelBands(t *testing.T) {
	// All draws at zero put level i exactly at its base offset.
	b := Generate(random.NewSequence(0), 1000)

	wantAsks := []float64{1005, 1013, 1021, 1029, 1037, 1045, 1053, 1061}
	wantBids := []float64{995, 987, 979, 971, 963, 955, 947, 939}
	for i := range wantAsks {
		if b.Asks[i].Price != wantAsks[i] {
			t.Errorf("ask %d: expected %v, got %v", i, wantAsks[i], b.Asks[i].Price)
		}
		if b.Bids[i].Price != wantBids[i] {
			t.Errorf("bid %d: expected %v, got %v", i, wantBids[i], b.Bids[i].Price)
		}
		if b.Asks[i].Amount != 1 || b.Asks[i].Total != i+1 {
			t.Errorf("ask %d: expected amount 1 total %d, got %+v", i, i+1, b.Asks[i])
		}
	}
	if b.MaxTotal() != Depth {
		t.Errorf("expected max total %d, got %d", Depth, b.MaxTotal())
	}
	if r := b.DepthRatio(b.Asks[3]); r != 0.5 {
		t.Errorf("expected depth ratio 0.5, got %v", r)
	}
}

func TestBookEmpty(t *testing.T) {
	var b Book
	if b.Spread() != 0 || b.MaxTotal() != 0 || b.DepthRatio(Entry{Total: 3}) != 0 {
		t.Error("empty book should report zeros")
	}
	if _, ok := b.BestAsk(); ok {
		t.Error("expected no best ask")
	}
}

func TestBookClone(t *testing.T) {
	b := Generate(random.NewSeeded("clone"), 300)
	c := b.Clone()
	c.Asks[0].Price = -1
	if b.Asks[0].Price == -1 {
		t.Error("clone shares memory with original")
	}
}

func TestGenerateProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mid := rapid.Float64Range(10, 100000).Draw(t, "mid")
		seed := rapid.String().Draw(t, "seed")
		checkBook(t, Generate(random.NewSeeded(seed), mid), mid)
	})
}

func TestGenerateLowPricesStayStrict(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mid := rapid.Float64Range(2, 10).Draw(t, "mid")
		seed := rapid.String().Draw(t, "seed")
		checkBook(t, Generate(random.NewSeeded(seed), mid), mid)
	})
}

func TestGenerateSeparatesTiedLevels(t *testing.T) {
	// full jitter on the first ask, none on the second: both round to 2.53
	b := Generate(random.NewSequence(0.99, 0, 0, 0), 2.5002)
	checkBook(t, b, 2.5002)
	if b.Asks[0].Price != 2.53 || b.Asks[1].Price != 2.54 {
		t.Errorf("expected asks 2.53 then 2.54, got %v %v", b.Asks[0].Price, b.Asks[1].Price)
	}
}
