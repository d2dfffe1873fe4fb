package session

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/random"
	"github.com/zappabad/memex/internal/rarity"
)

func TestWinProbability(t *testing.T) {
	tests := []struct {
		multiplier float64
		want       float64
	}{
		{1.0, 0.4},
		{1.5, 0.45},
		{2.0, 0.5},
		{5.0, 0.8},
		{7.0, 1.0},
		{15.0, 1.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WinProbability(tt.multiplier), 1e-9, "multiplier %v", tt.multiplier)
	}
}

func TestLegendaryBattleAlwaysWins(t *testing.T) {
	s, _ := newTestSession(t, emptyConfig(), "legendary")
	setPrice(s, "cat", 100)
	inst, err := s.ledger.Mint("cat", inventory.WithTier(rarity.Legendary))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		out, err := s.ResolveBattle(inst.ID)
		require.NoError(t, err)
		assert.Equal(t, 1.0, out.WinProbability)
		assert.True(t, out.Won)
		assert.True(t, out.Prize.Equal(dec("450")), "prize %s", out.Prize)
	}
	_, ok := s.ledger.Get(inst.ID)
	assert.True(t, ok, "winning keeps the card")
	assert.True(t, s.Balance().Equal(dec("10250")), "balance %s", s.Balance())
}

func TestBattleLossBurnsCard(t *testing.T) {
	s, _ := newTestSession(t, emptyConfig(), "burn")
	setPrice(s, "dog", 100)
	inst, err := s.ledger.Mint("dog", inventory.WithTier(rarity.Common))
	require.NoError(t, err)

	s.src = random.NewSequence(0.9)
	out, err := s.ResolveBattle(inst.ID)
	require.NoError(t, err)
	assert.False(t, out.Won)
	assert.True(t, out.Prize.IsZero())
	assert.Empty(t, s.Collection())
	assert.Equal(t, uint64(1), s.Supply("dog", rarity.Common))
	assert.True(t, s.Balance().Equal(dec("1250")))
}

func TestBattleWinPaysPrize(t *testing.T) {
	s, _ := newTestSession(t, emptyConfig(), "win")
	setPrice(s, "dog", 100)
	inst, err := s.ledger.Mint("dog", inventory.WithTier(rarity.Common))
	require.NoError(t, err)

	s.src = random.NewSequence(0.1)
	out, err := s.ResolveBattle(inst.ID)
	require.NoError(t, err)
	assert.True(t, out.Won)
	assert.True(t, out.Prize.Equal(dec("30")), "prize %s", out.Prize)
	assert.True(t, s.Balance().Equal(dec("1280")))
	assert.Len(t, s.Collection(), 1)
}

func TestBattleUnknownInstance(t *testing.T) {
	s, _ := newTestSession(t, DefaultConfig(), "missing")
	collection := s.Collection()

	_, err := s.ResolveBattle("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, collection, s.Collection())
	assert.True(t, s.Balance().Equal(dec("1250")))
}

func TestOpenChest(t *testing.T) {
	s, _ := newTestSession(t, emptyConfig(), "chest")

	res, err := s.OpenChest(rarity.ChestPremium)
	require.NoError(t, err)
	assert.True(t, res.Cost.Equal(dec("150")))
	assert.True(t, s.Balance().Equal(dec("1100")))
	assert.Len(t, s.Collection(), 1)
	assert.Equal(t, inventory.OriginChest, res.Instance.Origin)
	assert.Equal(t, uint64(1), s.Supply(res.Instance.Asset, res.Instance.Tier))
	assert.True(t, res.Value.Equal(s.InstanceValue(res.Instance)))

	free, err := s.OpenChest(rarity.ChestFree)
	require.NoError(t, err)
	assert.True(t, free.Cost.IsZero())
	assert.True(t, s.Balance().Equal(dec("1100")))
}

func TestLegendaryChestTiers(t *testing.T) {
	cfg := emptyConfig()
	cfg.ChestPrices = map[rarity.ChestTier]decimal.Decimal{rarity.ChestLegendary: decimal.Zero}
	s, _ := newTestSession(t, cfg, "legendary-chest")

	for i := 0; i < 50; i++ {
		res, err := s.OpenChest(rarity.ChestLegendary)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Instance.Tier, rarity.Epic)
	}
	_, err := s.OpenChest(rarity.ChestPremium)
	assert.ErrorIs(t, err, ErrUnknownChest)
}

func TestOpenChestInsufficientFunds(t *testing.T) {
	cfg := emptyConfig()
	cfg.StartingBalance = dec("499.99")
	s, _ := newTestSession(t, cfg, "poor")

	_, err := s.OpenChest(rarity.ChestLegendary)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Empty(t, s.Collection())
	assert.True(t, s.Balance().Equal(dec("499.99")))

	_, err = s.OpenChest(rarity.ChestTier(42))
	assert.ErrorIs(t, err, ErrUnknownChest)
}
