package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/random"
	"github.com/zappabad/memex/internal/rarity"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, cfg Config, seed string) *Ledger {
	t.Helper()
	return NewLedger(cfg, random.NewSeeded(seed), func() time.Time { return fixedNow })
}

func tinyTable(t *testing.T) *rarity.Table {
	t.Helper()
	tb, err := rarity.NewTable([4]rarity.Spec{
		{Name: "Common", Multiplier: 1, MaxSerial: 10},
		{Name: "Rare", Multiplier: 2, MaxSerial: 5},
		{Name: "Epic", Multiplier: 3, MaxSerial: 3},
		{Name: "Legendary", Multiplier: 4, MaxSerial: 2},
	})
	require.NoError(t, err)
	return tb
}

func TestMintIncrementsSupplyAndCollection(t *testing.T) {
	l := newTestLedger(t, DefaultConfig(), "mint")

	for i := 0; i < 50; i++ {
		before := l.Len()
		supplyBefore := l.SupplySnapshot()
		inst, err := l.Mint("cat")
		require.NoError(t, err)

		key := SupplyKey{Asset: inst.Asset, Tier: inst.Tier}
		assert.Equal(t, before+1, l.Len())
		assert.Equal(t, supplyBefore[key]+1, l.Supply(inst.Asset, inst.Tier))
		assert.NotEmpty(t, inst.ID)
		assert.GreaterOrEqual(t, inst.Serial, 1)
		assert.LessOrEqual(t, inst.Serial, rarity.DefaultTable.MaxSerial(inst.Tier))
		assert.Equal(t, fixedNow, inst.AcquiredAt)
	}

	var total uint64
	for _, tier := range rarity.Tiers {
		total += l.Supply("cat", tier)
	}
	assert.Equal(t, uint64(50), total)
	assert.Equal(t, uint64(0), l.Supply("dog", rarity.Common))
}

func TestMintWithExplicitTierAndSerial(t *testing.T) {
	l := newTestLedger(t, DefaultConfig(), "explicit")

	inst, err := l.Mint("dog", WithTier(rarity.Epic), WithSerial(7), WithOrigin(OriginChest))
	require.NoError(t, err)
	assert.Equal(t, rarity.Epic, inst.Tier)
	assert.Equal(t, 7, inst.Serial)
	assert.Equal(t, OriginChest, inst.Origin)

	_, err = l.Mint("dog", WithTier(rarity.Legendary), WithSerial(51))
	assert.ErrorIs(t, err, ErrInvalidSerial)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, uint64(0), l.Supply("dog", rarity.Legendary))
}

func TestMintWithWeights(t *testing.T) {
	w, ok := rarity.ChestWeights(rarity.ChestLegendary)
	require.True(t, ok)
	l := newTestLedger(t, DefaultConfig(), "weights")
	for i := 0; i < 100; i++ {
		inst, err := l.Mint("hacker", WithWeights(w))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, inst.Tier, rarity.Epic)
	}
}

func TestRandomSerialsMayCollide(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Table = tinyTable(t)
	l := newTestLedger(t, cfg, "collide")

	for i := 0; i < 10; i++ {
		_, err := l.Mint("cat", WithTier(rarity.Legendary))
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(10), l.Supply("cat", rarity.Legendary))
}

func TestUniqueSerialsExhaust(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Table = tinyTable(t)
	cfg.Policy = SerialUnique
	l := newTestLedger(t, cfg, "unique")

	a, err := l.Mint("cat", WithTier(rarity.Legendary))
	require.NoError(t, err)
	b, err := l.Mint("cat", WithTier(rarity.Legendary))
	require.NoError(t, err)
	assert.NotEqual(t, a.Serial, b.Serial)

	_, err = l.Mint("cat", WithTier(rarity.Legendary))
	assert.ErrorIs(t, err, ErrEditionExhausted)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, uint64(2), l.Supply("cat", rarity.Legendary))

	// burning does not free the serial
	_, err = l.Remove(a.ID)
	require.NoError(t, err)
	_, err = l.Mint("cat", WithTier(rarity.Legendary))
	assert.ErrorIs(t, err, ErrEditionExhausted)

	// other editions are independent
	_, err = l.Mint("dog", WithTier(rarity.Legendary))
	assert.NoError(t, err)
}

func TestUniqueSerialTaken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = SerialUnique
	l := newTestLedger(t, cfg, "taken")

	_, err := l.Mint("cat", WithTier(rarity.Rare), WithSerial(3))
	require.NoError(t, err)
	_, err = l.Mint("cat", WithTier(rarity.Rare), WithSerial(3))
	assert.ErrorIs(t, err, ErrSerialTaken)
}

func TestMintBatchRollsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Table = tinyTable(t)
	cfg.Policy = SerialUnique
	l := newTestLedger(t, cfg, "batch")

	_, err := l.Mint("fighter", WithTier(rarity.Common))
	require.NoError(t, err)

	_, err = l.MintBatch("fighter", 3, WithTier(rarity.Legendary))
	assert.ErrorIs(t, err, ErrEditionExhausted)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, uint64(0), l.Supply("fighter", rarity.Legendary))

	// the rolled back serials are available again
	batch, err := l.MintBatch("fighter", 2, WithTier(rarity.Legendary))
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Equal(t, 3, l.Len())
}

func TestRemove(t *testing.T) {
	l := newTestLedger(t, DefaultConfig(), "remove")
	a, _ := l.Mint("cat", WithTier(rarity.Rare))
	b, _ := l.Mint("cat", WithTier(rarity.Rare))

	removed, err := l.Remove(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, uint64(2), l.Supply("cat", rarity.Rare))

	_, err = l.Remove(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, l.Len())

	_, ok := l.Get(b.ID)
	assert.True(t, ok)
}

func TestRemoveAllAtomic(t *testing.T) {
	l := newTestLedger(t, DefaultConfig(), "remove-all")
	a, _ := l.Mint("cat")
	b, _ := l.Mint("dog")
	c, _ := l.Mint("cat")

	_, err := l.RemoveAll([]string{a.ID, "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, l.Len())

	removed, err := l.RemoveAll([]string{a.ID, c.ID})
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Equal(t, []Instance{b}, l.All())
}

func TestHoldingsOrder(t *testing.T) {
	l := newTestLedger(t, DefaultConfig(), "holdings")
	var cats []string
	for i := 0; i < 6; i++ {
		asset := market.AssetID("cat")
		if i%2 == 1 {
			asset = "dog"
		}
		inst, _ := l.Mint(asset)
		if asset == "cat" {
			cats = append(cats, inst.ID)
		}
	}

	holdings := l.Holdings("cat")
	require.Len(t, holdings, 3)
	for i, inst := range holdings {
		assert.Equal(t, cats[i], inst.ID)
	}
	assert.Equal(t, 3, l.Count("dog"))
	assert.Equal(t, 0, l.Count("hacker"))
}

func TestTotalValue(t *testing.T) {
	l := newTestLedger(t, DefaultConfig(), "value")
	_, _ = l.Mint("cat", WithTier(rarity.Common))
	_, _ = l.Mint("cat", WithTier(rarity.Legendary))
	_, _ = l.Mint("dog", WithTier(rarity.Rare))
	_, _ = l.Mint("pepe", WithTier(rarity.Rare))

	prices := map[market.AssetID]float64{"cat": 400, "dog": 500}
	total := l.TotalValue(func(id market.AssetID) (float64, bool) {
		p, ok := prices[id]
		return p, ok
	})
	// 400*1 + 400*15 + 500*2
	assert.Equal(t, "7400", total.String())

	prices["cat"] = 410
	total = l.TotalValue(func(id market.AssetID) (float64, bool) {
		p, ok := prices[id]
		return p, ok
	})
	assert.Equal(t, "7560", total.String())
}
