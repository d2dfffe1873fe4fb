// Package session is the market simulation core: live prices, synthetic
// depth and tape for every asset, plus the player's balance and collection.
// A Session is not safe for concurrent use; see the runner package for a
// goroutine-owned wrapper.
package session

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/orderbook"
	"github.com/zappabad/memex/internal/pricefeed"
	"github.com/zappabad/memex/internal/random"
	"github.com/zappabad/memex/internal/rarity"
)

type assetState struct {
	asset   market.Asset
	price   pricefeed.State
	history *pricefeed.History
	book    orderbook.Book
	tape    *orderbook.Tape
}

// Session owns the whole simulated market of one player.
type Session struct {
	cfg     Config
	catalog *market.Catalog
	src     random.Source
	now     func() time.Time
	logger  *zap.Logger
	obs     Observer

	assets   map[market.AssetID]*assetState
	ledger   *inventory.Ledger
	balance  decimal.Decimal
	selected market.AssetID
}

// Option customizes a Session.
type Option func(*Session)

// WithSource replaces the random source.
func WithSource(src random.Source) Option {
	return func(s *Session) { s.src = src }
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithObserver registers an observer.
func WithObserver(obs Observer) Option {
	return func(s *Session) { s.obs = obs }
}

// New builds a session over catalog: history, price state, book and seeded
// tape for every asset, then the starting collection.
func New(catalog *market.Catalog, cfg Config, opts ...Option) (*Session, error) {
	if catalog == nil {
		return nil, fmt.Errorf("session: nil catalog")
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:     cfg,
		catalog: catalog,
		src:     random.New(),
		now:     time.Now,
		logger:  zap.NewNop(),
		obs:     nopObserver{},
		assets:  make(map[market.AssetID]*assetState, catalog.Len()),
		balance: cfg.StartingBalance,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("session")

	s.ledger = inventory.NewLedger(inventory.Config{
		Table:   cfg.Table,
		Weights: cfg.BuyWeights,
		Policy:  cfg.SerialPolicy,
	}, s.src, s.now)

	now := s.now()
	for _, a := range catalog.Assets() {
		history := pricefeed.GenerateHistory(s.src, a.BasePrice, now)
		st := &assetState{
			asset:   a,
			history: history,
			price:   pricefeed.NewState(s.src, a.BasePrice, history),
			tape:    orderbook.NewTape(cfg.TapeCapacity),
		}
		st.book = orderbook.Generate(s.src, st.price.Current)
		s.assets[a.ID] = st
	}
	s.selected = catalog.At(0).ID

	// quiet seeding: no observer notifications
	for _, id := range catalog.IDs() {
		st := s.assets[id]
		for i := 0; i < cfg.SeedTrades; i++ {
			st.tape.Push(orderbook.NewTrade(s.src, st.price.Current, now))
		}
	}
	if err := s.seedCollection(); err != nil {
		return nil, err
	}

	s.logger.Info("session started",
		zap.Int("assets", catalog.Len()),
		zap.String("balance", s.balance.String()),
		zap.Int("cards", s.ledger.Len()),
	)
	return s, nil
}

func (s *Session) seedCollection() error {
	for i := 0; i < s.cfg.SeedCards; i++ {
		asset := s.randomAsset()
		tier := rarity.DrawFromBag(s.src, rarity.StarterBag)
		if _, err := s.ledger.Mint(asset.ID, inventory.WithTier(tier), inventory.WithOrigin(inventory.OriginSeed)); err != nil {
			return fmt.Errorf("session: seed collection: %w", err)
		}
	}
	return nil
}

func (s *Session) randomAsset() market.Asset {
	return s.catalog.At(s.src.Intn(s.catalog.Len()))
}

func (s *Session) state(id market.AssetID) (*assetState, error) {
	st, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, id)
	}
	return st, nil
}

// TickResult lists the candles appended by a Tick.
type TickResult struct {
	Candles map[market.AssetID]pricefeed.Candle
}

// Tick advances every asset's price and regenerates its book from the new
// price.
func (s *Session) Tick() TickResult {
	now := s.now()
	res := TickResult{Candles: make(map[market.AssetID]pricefeed.Candle)}
	for _, id := range s.catalog.IDs() {
		st := s.assets[id]
		if c, ok := pricefeed.Advance(s.src, &st.price, st.history, now); ok {
			res.Candles[id] = c
		}
		st.book = orderbook.Generate(s.src, st.price.Current)
	}
	s.logger.Debug("tick", zap.Int("candles", len(res.Candles)))
	s.obs.Ticked()
	return res
}

// EmitRandomTrade prints one trade on a uniformly chosen asset and
// regenerates only that asset's book.
func (s *Session) EmitRandomTrade() (market.AssetID, orderbook.Trade) {
	st := s.assets[s.randomAsset().ID]
	tr := orderbook.NewTrade(s.src, st.price.Current, s.now())
	st.tape.Push(tr)
	st.price.RecordTrade(tr.Notional())
	st.book = orderbook.Generate(s.src, st.price.Current)

	s.logger.Debug("trade printed",
		zap.String("asset", string(st.asset.ID)),
		zap.Stringer("side", tr.Side),
		zap.Int("amount", tr.Amount),
		zap.Float64("price", tr.Price),
	)
	s.obs.TradePrinted(st.asset.ID, tr.Notional())
	return st.asset.ID, tr
}

// RegenerateBook rebuilds an asset's book on demand.
func (s *Session) RegenerateBook(id market.AssetID) (orderbook.Book, error) {
	st, err := s.state(id)
	if err != nil {
		return orderbook.Book{}, err
	}
	st.book = orderbook.Generate(s.src, st.price.Current)
	return st.book.Clone(), nil
}

// SelectAsset marks id as the asset the player is looking at.
func (s *Session) SelectAsset(id market.AssetID) error {
	if _, err := s.state(id); err != nil {
		return err
	}
	s.selected = id
	return nil
}

// Selected returns the selected asset.
func (s *Session) Selected() market.Asset {
	return s.assets[s.selected].asset
}

// Catalog returns the session's asset catalog.
func (s *Session) Catalog() *market.Catalog { return s.catalog }

// Balance returns the spendable balance.
func (s *Session) Balance() decimal.Decimal { return s.balance }

// Price returns the live price state of an asset.
func (s *Session) Price(id market.AssetID) (pricefeed.State, error) {
	st, err := s.state(id)
	if err != nil {
		return pricefeed.State{}, err
	}
	return st.price, nil
}

// History returns a copy of an asset's candles, oldest first.
func (s *Session) History(id market.AssetID) ([]pricefeed.Candle, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}
	return st.history.Candles(), nil
}

// Book returns a copy of an asset's current book.
func (s *Session) Book(id market.AssetID) (orderbook.Book, error) {
	st, err := s.state(id)
	if err != nil {
		return orderbook.Book{}, err
	}
	return st.book.Clone(), nil
}

// Trades returns up to n trades of an asset, most recent first.
func (s *Session) Trades(id market.AssetID, n int) ([]orderbook.Trade, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}
	return st.tape.Last(n), nil
}

// Collection returns the held instances in acquisition order.
func (s *Session) Collection() []inventory.Instance { return s.ledger.All() }

// Holdings returns the held instances of one asset.
func (s *Session) Holdings(id market.AssetID) []inventory.Instance {
	return s.ledger.Holdings(id)
}

// Supply returns the number of instances ever minted for an edition.
func (s *Session) Supply(id market.AssetID, tier rarity.Tier) uint64 {
	return s.ledger.Supply(id, tier)
}

// TotalValue values the collection at live prices.
func (s *Session) TotalValue() decimal.Decimal {
	return s.ledger.TotalValue(s.livePrice)
}

// InstanceValue values one instance at the live price of its asset.
func (s *Session) InstanceValue(inst inventory.Instance) decimal.Decimal {
	price, _ := s.livePrice(inst.Asset)
	return s.ledger.Value(inst, price)
}

// Table returns the rarity table in use.
func (s *Session) Table() *rarity.Table { return s.cfg.Table }

// ChestPrice returns the cost of a chest tier.
func (s *Session) ChestPrice(chest rarity.ChestTier) (decimal.Decimal, error) {
	price, ok := s.cfg.ChestPrices[chest]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownChest, chest)
	}
	return price, nil
}

func (s *Session) livePrice(id market.AssetID) (float64, bool) {
	st, ok := s.assets[id]
	if !ok {
		return 0, false
	}
	return st.price.Current, true
}

func (s *Session) currentPrice(st *assetState) decimal.Decimal {
	return decimal.NewFromFloat(st.price.Current)
}

func (s *Session) setBalance(b decimal.Decimal) {
	s.balance = b
	f, _ := b.Float64()
	s.obs.BalanceChanged(f)
}

func (s *Session) reject(op string, err error, fields ...zap.Field) error {
	reason := Reason(err)
	s.logger.Warn(op+" rejected", append(fields, zap.String("reason", reason), zap.Error(err))...)
	s.obs.OperationRejected(op, reason)
	return err
}
