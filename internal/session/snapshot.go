package session

import (
	"github.com/shopspring/decimal"

	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/orderbook"
	"github.com/zappabad/memex/internal/pricefeed"
	"github.com/zappabad/memex/internal/rarity"
)

// AssetSnapshot is a read-only copy of one asset's market state.
type AssetSnapshot struct {
	Asset   market.Asset
	Price   pricefeed.State
	Candles []pricefeed.Candle
	Book    orderbook.Book
	Trades  []orderbook.Trade
	Held    int
}

// Snapshot is a read-only copy of the whole session for rendering.
type Snapshot struct {
	Balance         decimal.Decimal
	Selected        market.AssetID
	Assets          []AssetSnapshot
	Collection      []inventory.Instance
	CollectionValue decimal.Decimal
	Supply          map[inventory.SupplyKey]uint64
	// Table is shared, not copied; tables are immutable.
	Table *rarity.Table
}

// Asset returns the snapshot of id.
func (s Snapshot) Asset(id market.AssetID) (AssetSnapshot, bool) {
	for _, a := range s.Assets {
		if a.Asset.ID == id {
			return a, true
		}
	}
	return AssetSnapshot{}, false
}

// Snapshot copies the session state. Candle history is limited to the newest
// maxCandles entries; zero or less copies all of it.
func (s *Session) Snapshot(maxCandles int) Snapshot {
	snap := Snapshot{
		Balance:         s.balance,
		Selected:        s.selected,
		Assets:          make([]AssetSnapshot, 0, s.catalog.Len()),
		Collection:      s.ledger.All(),
		CollectionValue: s.TotalValue(),
		Supply:          s.ledger.SupplySnapshot(),
		Table:           s.cfg.Table,
	}
	for _, id := range s.catalog.IDs() {
		st := s.assets[id]
		candles := st.history.Candles()
		if maxCandles > 0 {
			candles = st.history.Tail(maxCandles)
		}
		snap.Assets = append(snap.Assets, AssetSnapshot{
			Asset:   st.asset,
			Price:   st.price,
			Candles: candles,
			Book:    st.book.Clone(),
			Trades:  st.tape.All(),
			Held:    s.ledger.Count(id),
		})
	}
	return snap
}
