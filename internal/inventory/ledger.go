package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/random"
	"github.com/zappabad/memex/internal/rarity"
)

// Ledger owns the collection and the supply ledger. It is not safe for
// concurrent use.
type Ledger struct {
	cfg Config
	src random.Source
	now func() time.Time

	items  []Instance
	supply map[SupplyKey]uint64
	issued map[SupplyKey]map[int]struct{}
}

// NewLedger creates an empty ledger drawing from src.
func NewLedger(cfg Config, src random.Source, now func() time.Time) *Ledger {
	def := DefaultConfig()
	if cfg.Table == nil {
		cfg.Table = def.Table
	}
	if cfg.Weights == (rarity.Weights{}) {
		cfg.Weights = def.Weights
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		cfg:    cfg,
		src:    src,
		now:    now,
		supply: make(map[SupplyKey]uint64),
		issued: make(map[SupplyKey]map[int]struct{}),
	}
}

type mintParams struct {
	tier    *rarity.Tier
	serial  int
	weights *rarity.Weights
	origin  Origin
}

// MintOption customizes a single mint.
type MintOption func(*mintParams)

// WithTier fixes the tier instead of drawing one.
func WithTier(t rarity.Tier) MintOption {
	return func(p *mintParams) { p.tier = &t }
}

// WithSerial fixes the serial instead of allocating one.
func WithSerial(n int) MintOption {
	return func(p *mintParams) { p.serial = n }
}

// WithWeights draws the tier from w instead of the ledger's weights.
func WithWeights(w rarity.Weights) MintOption {
	return func(p *mintParams) { p.weights = &w }
}

// WithOrigin tags the instance with how it was acquired.
func WithOrigin(o Origin) MintOption {
	return func(p *mintParams) { p.origin = o }
}

// Mint issues a new instance of asset, bumps the edition's supply by one and
// appends it to the collection. On error nothing changes.
func (l *Ledger) Mint(asset market.AssetID, opts ...MintOption) (Instance, error) {
	var p mintParams
	for _, opt := range opts {
		opt(&p)
	}

	var tier rarity.Tier
	switch {
	case p.tier != nil:
		tier = *p.tier
		if !tier.Valid() {
			return Instance{}, fmt.Errorf("mint %s: %w", asset, rarity.ErrUnknownTier)
		}
	case p.weights != nil:
		tier = p.weights.Draw(l.src)
	default:
		tier = l.cfg.Weights.Draw(l.src)
	}

	key := SupplyKey{Asset: asset, Tier: tier}
	serial, err := l.allocateSerial(key, p.serial)
	if err != nil {
		return Instance{}, fmt.Errorf("mint %s/%s: %w", asset, tier, err)
	}

	inst := Instance{
		ID:         uuid.New().String(),
		Asset:      asset,
		Tier:       tier,
		Serial:     serial,
		AcquiredAt: l.now(),
		Origin:     p.origin,
	}
	l.items = append(l.items, inst)
	l.supply[key]++
	if l.cfg.Policy == SerialUnique {
		l.markIssued(key, serial)
	}
	return inst, nil
}

// MintBatch mints n instances of asset with independent draws. Either all
// n succeed or the ledger is rolled back to its prior state.
func (l *Ledger) MintBatch(asset market.AssetID, n int, opts ...MintOption) ([]Instance, error) {
	out := make([]Instance, 0, n)
	for i := 0; i < n; i++ {
		inst, err := l.Mint(asset, opts...)
		if err != nil {
			l.rollback(out)
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (l *Ledger) rollback(minted []Instance) {
	if len(minted) == 0 {
		return
	}
	l.items = l.items[:len(l.items)-len(minted)]
	for _, inst := range minted {
		key := SupplyKey{Asset: inst.Asset, Tier: inst.Tier}
		l.supply[key]--
		if l.supply[key] == 0 {
			delete(l.supply, key)
		}
		if set := l.issued[key]; set != nil {
			delete(set, inst.Serial)
		}
	}
}

func (l *Ledger) allocateSerial(key SupplyKey, requested int) (int, error) {
	limit := l.cfg.Table.MaxSerial(key.Tier)
	if requested != 0 {
		if requested < 1 || requested > limit {
			return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidSerial, requested, limit)
		}
		if l.cfg.Policy == SerialUnique {
			if _, taken := l.issued[key][requested]; taken {
				return 0, fmt.Errorf("%w: %d", ErrSerialTaken, requested)
			}
		}
		return requested, nil
	}

	if l.cfg.Policy != SerialUnique {
		return random.IntRange(l.src, 1, limit), nil
	}

	taken := l.issued[key]
	free := limit - len(taken)
	if free <= 0 {
		return 0, ErrEditionExhausted
	}
	k := l.src.Intn(free)
	for n := 1; n <= limit; n++ {
		if _, ok := taken[n]; ok {
			continue
		}
		if k == 0 {
			return n, nil
		}
		k--
	}
	return 0, ErrEditionExhausted
}

func (l *Ledger) markIssued(key SupplyKey, serial int) {
	set := l.issued[key]
	if set == nil {
		set = make(map[int]struct{})
		l.issued[key] = set
	}
	set[serial] = struct{}{}
}

// Remove deletes the instance with the given id. Supply is never decremented.
func (l *Ledger) Remove(id string) (Instance, error) {
	for i, inst := range l.items {
		if inst.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return inst, nil
		}
	}
	return Instance{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// RemoveAll removes every listed id, or none of them if any is missing.
func (l *Ledger) RemoveAll(ids []string) ([]Instance, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := l.Get(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		want[id] = struct{}{}
	}
	removed := make([]Instance, 0, len(ids))
	kept := l.items[:0]
	for _, inst := range l.items {
		if _, ok := want[inst.ID]; ok {
			removed = append(removed, inst)
			continue
		}
		kept = append(kept, inst)
	}
	l.items = kept
	return removed, nil
}

// Get returns the instance with the given id.
func (l *Ledger) Get(id string) (Instance, bool) {
	for _, inst := range l.items {
		if inst.ID == id {
			return inst, true
		}
	}
	return Instance{}, false
}

// All returns the collection in acquisition order.
func (l *Ledger) All() []Instance {
	out := make([]Instance, len(l.items))
	copy(out, l.items)
	return out
}

// Holdings returns the instances of asset in acquisition order.
func (l *Ledger) Holdings(asset market.AssetID) []Instance {
	var out []Instance
	for _, inst := range l.items {
		if inst.Asset == asset {
			out = append(out, inst)
		}
	}
	return out
}

// Count returns how many instances of asset are held.
func (l *Ledger) Count(asset market.AssetID) int {
	n := 0
	for _, inst := range l.items {
		if inst.Asset == asset {
			n++
		}
	}
	return n
}

// Len returns the collection size.
func (l *Ledger) Len() int { return len(l.items) }

// Supply returns how many instances of the edition have ever been minted.
func (l *Ledger) Supply(asset market.AssetID, tier rarity.Tier) uint64 {
	return l.supply[SupplyKey{Asset: asset, Tier: tier}]
}

// SupplySnapshot returns a copy of the whole supply ledger.
func (l *Ledger) SupplySnapshot() map[SupplyKey]uint64 {
	out := make(map[SupplyKey]uint64, len(l.supply))
	for k, v := range l.supply {
		out[k] = v
	}
	return out
}

// Table returns the rarity table the ledger values instances with.
func (l *Ledger) Table() *rarity.Table { return l.cfg.Table }

// Value returns the live value of one instance at the given asset price.
func (l *Ledger) Value(inst Instance, price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(l.cfg.Table.Multiplier(inst.Tier)))
}

// TotalValue sums the live value of the collection. Assets without a price
// contribute nothing.
func (l *Ledger) TotalValue(prices PriceLookup) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.items {
		price, ok := prices(inst.Asset)
		if !ok {
			continue
		}
		total = total.Add(l.Value(inst, price))
	}
	return total
}
