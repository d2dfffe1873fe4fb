package session

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/rarity"
)

const (
	battleBaseWin  = 0.4
	battleWinStep  = 0.1
	battlePrizeCut = 0.3
)

// ChestResult describes an opened chest.
type ChestResult struct {
	Chest    rarity.ChestTier
	Instance inventory.Instance
	// Value is the live market value of the new instance.
	Value   decimal.Decimal
	Cost    decimal.Decimal
	Balance decimal.Decimal
}

// OpenChest pays for a chest and mints one instance of a uniformly chosen
// asset with the chest's tier odds.
func (s *Session) OpenChest(chest rarity.ChestTier) (ChestResult, error) {
	fields := []zap.Field{zap.Stringer("chest", chest)}

	weights, ok := rarity.ChestWeights(chest)
	if !ok {
		return ChestResult{}, s.reject("chest", fmt.Errorf("%w: %s", ErrUnknownChest, chest), fields...)
	}
	cost, err := s.ChestPrice(chest)
	if err != nil {
		return ChestResult{}, s.reject("chest", err, fields...)
	}
	if cost.GreaterThan(s.balance) {
		err := fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, cost, s.balance)
		return ChestResult{}, s.reject("chest", err, fields...)
	}

	asset := s.randomAsset()
	inst, err := s.ledger.Mint(asset.ID, inventory.WithWeights(weights), inventory.WithOrigin(inventory.OriginChest))
	if err != nil {
		return ChestResult{}, s.reject("chest", err, fields...)
	}
	if cost.IsPositive() {
		s.setBalance(s.balance.Sub(cost))
	}

	res := ChestResult{
		Chest:    chest,
		Instance: inst,
		Value:    s.InstanceValue(inst),
		Cost:     cost,
		Balance:  s.balance,
	}
	s.logger.Info("chest opened", append(fields,
		zap.String("asset", string(inst.Asset)),
		zap.Stringer("tier", inst.Tier),
		zap.Int("serial", inst.Serial),
	)...)
	s.obs.ChestOpened(chest, inst.Tier)
	return res, nil
}

// WinProbability returns the battle win chance of a card with the given
// multiplier: 0.4 + (multiplier-1)*0.1, clamped to [0, 1].
func WinProbability(multiplier float64) float64 {
	p := battleBaseWin + (multiplier-1)*battleWinStep
	return math.Max(0, math.Min(1, p))
}

// BattleOutcome describes a resolved battle.
type BattleOutcome struct {
	Instance       inventory.Instance
	WinProbability float64
	Won            bool
	// Prize is credited on a win; the card is burned on a loss.
	Prize   decimal.Decimal
	Balance decimal.Decimal
}

// ResolveBattle stakes the instance with the given id. A win credits
// price*multiplier*0.3 and keeps the card; a loss burns it.
func (s *Session) ResolveBattle(id string) (BattleOutcome, error) {
	fields := []zap.Field{zap.String("instance", id)}

	inst, ok := s.ledger.Get(id)
	if !ok {
		return BattleOutcome{}, s.reject("battle", fmt.Errorf("%w: %s", ErrNotFound, id), fields...)
	}

	mult := s.cfg.Table.Multiplier(inst.Tier)
	out := BattleOutcome{
		Instance:       inst,
		WinProbability: WinProbability(mult),
		Prize:          decimal.Zero,
	}
	out.Won = s.src.Float64() < out.WinProbability

	if out.Won {
		price, _ := s.livePrice(inst.Asset)
		out.Prize = decimal.NewFromFloat(price).
			Mul(decimal.NewFromFloat(mult)).
			Mul(decimal.NewFromFloat(battlePrizeCut))
		s.setBalance(s.balance.Add(out.Prize))
	} else if _, err := s.ledger.Remove(id); err != nil {
		return BattleOutcome{}, s.reject("battle", err, fields...)
	}
	out.Balance = s.balance

	s.logger.Info("battle resolved", append(fields,
		zap.Stringer("tier", inst.Tier),
		zap.Bool("won", out.Won),
		zap.String("prize", out.Prize.String()),
	)...)
	s.obs.BattleResolved(inst.Tier, out.Won)
	return out, nil
}
