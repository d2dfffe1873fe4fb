package session

import (
	"errors"

	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
)

var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidOrder          = errors.New("invalid order")
	ErrLimitNotMarketable    = errors.New("limit price not marketable")
	ErrUnknownChest          = errors.New("unknown chest")

	ErrNotFound     = inventory.ErrNotFound
	ErrUnknownAsset = market.ErrUnknownAsset
)

// Reason maps an operation error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInsufficientInventory):
		return "insufficient_inventory"
	case errors.Is(err, ErrLimitNotMarketable):
		return "limit_not_marketable"
	case errors.Is(err, ErrInvalidOrder):
		return "invalid_order"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnknownAsset):
		return "unknown_asset"
	case errors.Is(err, ErrUnknownChest):
		return "unknown_chest"
	case errors.Is(err, inventory.ErrEditionExhausted):
		return "edition_exhausted"
	default:
		return "error"
	}
}
