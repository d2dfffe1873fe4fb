// Package inventory tracks the player's collectible instances and the
// global per-edition supply ledger.
package inventory

import (
	"errors"
	"time"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
)

var (
	ErrNotFound         = errors.New("instance not found")
	ErrEditionExhausted = errors.New("edition exhausted")
	ErrInvalidSerial    = errors.New("serial outside edition")
	ErrSerialTaken      = errors.New("serial already issued")
)

// Origin records how an instance entered the collection.
type Origin uint8

const (
	OriginSeed Origin = iota
	OriginBuy
	OriginChest
)

func (o Origin) String() string {
	switch o {
	case OriginSeed:
		return "seed"
	case OriginBuy:
		return "buy"
	case OriginChest:
		return "chest"
	default:
		return "unknown"
	}
}

// Instance is one minted collectible.
type Instance struct {
	ID         string         `json:"id"`
	Asset      market.AssetID `json:"asset"`
	Tier       rarity.Tier    `json:"tier"`
	Serial     int            `json:"serial"`
	AcquiredAt time.Time      `json:"acquired_at"`
	Origin     Origin         `json:"origin"`
}

// SupplyKey identifies an edition: one asset at one tier.
type SupplyKey struct {
	Asset market.AssetID
	Tier  rarity.Tier
}

// SerialPolicy controls how serials are assigned when none is given.
type SerialPolicy uint8

const (
	// SerialRandom draws uniformly from [1, cap]. Two instances may share a
	// serial.
	SerialRandom SerialPolicy = iota
	// SerialUnique draws from the serials not yet issued for the edition and
	// fails with ErrEditionExhausted once all are taken.
	SerialUnique
)

func (p SerialPolicy) String() string {
	switch p {
	case SerialRandom:
		return "random"
	case SerialUnique:
		return "unique"
	default:
		return "unknown"
	}
}

// PriceLookup returns the live price of an asset.
type PriceLookup func(market.AssetID) (float64, bool)
