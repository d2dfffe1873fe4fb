package runner

import (
	"time"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/orderbook"
	"github.com/zappabad/memex/internal/session"
)

// EventType identifies what changed.
type EventType int

const (
	EventTick EventType = iota
	EventTrade
	EventOrderFilled
	EventChestOpened
	EventBattleResolved
	EventRejected
	EventSelected
)

func (t EventType) String() string {
	switch t {
	case EventTick:
		return "tick"
	case EventTrade:
		return "trade"
	case EventOrderFilled:
		return "order_filled"
	case EventChestOpened:
		return "chest_opened"
	case EventBattleResolved:
		return "battle_resolved"
	case EventRejected:
		return "rejected"
	case EventSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// Event reports a state change of the session. Only the payload matching
// Type is set.
type Event struct {
	Type  EventType
	Time  time.Time
	Asset market.AssetID

	// Candles is the number of candles appended by a tick.
	Candles int
	Trade   *orderbook.Trade
	Order   *session.OrderResult
	Chest   *session.ChestResult
	Battle  *session.BattleOutcome

	// Op and Err describe a rejected operation.
	Op  string
	Err error
}
