package session

import (
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
)

// Observer is notified after each state change. Implementations must not
// call back into the session.
type Observer interface {
	Ticked()
	TradePrinted(asset market.AssetID, notional float64)
	OrderFilled(asset market.AssetID, side market.Side, amount int)
	OperationRejected(op, reason string)
	ChestOpened(chest rarity.ChestTier, tier rarity.Tier)
	BattleResolved(tier rarity.Tier, won bool)
	BalanceChanged(balance float64)
}

type nopObserver struct{}

func (nopObserver) Ticked() {}
func (nopObserver) TradePrinted(market.AssetID, float64) {}
func (nopObserver) OrderFilled(market.AssetID, market.Side, int) {}
func (nopObserver) OperationRejected(string, string) {}
func (nopObserver) ChestOpened(rarity.ChestTier, rarity.Tier) {}
func (nopObserver) BattleResolved(rarity.Tier, bool) {}
func (nopObserver) BalanceChanged(float64) {}
