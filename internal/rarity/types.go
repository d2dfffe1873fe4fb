// Package rarity defines the collectible quality tiers, their payout and
// supply tables, and the weighted draws that pick a tier.
package rarity

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is an ordered quality class. Higher tiers are rarer.
type Tier uint8

const (
	Common Tier = iota
	Rare
	Epic
	Legendary

	numTiers = 4
)

// Tiers lists every tier in ascending order.
var Tiers = [numTiers]Tier{Common, Rare, Epic, Legendary}

func (t Tier) String() string {
	switch t {
	case Common:
		return "common"
	case Rare:
		return "rare"
	case Epic:
		return "epic"
	case Legendary:
		return "legendary"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool { return t < numTiers }

var ErrUnknownTier = errors.New("unknown rarity tier")

// ParseTier maps a tier name to its Tier.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Spec is the static configuration of one tier.
type Spec struct {
	Name       string
	Multiplier float64
	// MaxSerial is the edition size per asset; serials are drawn from [1, MaxSerial].
	MaxSerial int
	Color     string
}

// Table holds the Spec of every tier. A Table is built once and never mutated.
type Table struct {
	specs [numTiers]Spec
}

// NewTable validates specs, given in ascending tier order. Multipliers must
// be >= 1 and strictly increasing; caps must be >= 1 and strictly decreasing.
func NewTable(specs [numTiers]Spec) (*Table, error) {
	for i, s := range specs {
		if s.Multiplier < 1 {
			return nil, fmt.Errorf("rarity: %s multiplier %v below 1", Tier(i), s.Multiplier)
		}
		if s.MaxSerial < 1 {
			return nil, fmt.Errorf("rarity: %s cap %d below 1", Tier(i), s.MaxSerial)
		}
		if i == 0 {
			continue
		}
		prev := specs[i-1]
		if s.Multiplier <= prev.Multiplier {
			return nil, fmt.Errorf("rarity: %s multiplier must exceed %s", Tier(i), Tier(i-1))
		}
		if s.MaxSerial >= prev.MaxSerial {
			return nil, fmt.Errorf("rarity: %s cap must be below %s", Tier(i), Tier(i-1))
		}
	}
	return &Table{specs: specs}, nil
}

// MustTable is like NewTable but panics on invalid input. It is meant for
// package-level presets.
func MustTable(specs [numTiers]Spec) *Table {
	t, err := NewTable(specs)
	if err != nil {
		panic(err)
	}
	return t
}

// Spec returns the configuration of tier t.
func (tb *Table) Spec(t Tier) Spec {
	if !t.Valid() {
		return Spec{}
	}
	return tb.specs[t]
}

// Multiplier returns the payout multiplier of tier t.
func (tb *Table) Multiplier(t Tier) float64 { return tb.Spec(t).Multiplier }

// MaxSerial returns the edition cap of tier t.
func (tb *Table) MaxSerial(t Tier) int { return tb.Spec(t).MaxSerial }

var (
	// DefaultTable is the calibration used by the exchange.
	DefaultTable = MustTable([numTiers]Spec{
		{Name: "Common", Multiplier: 1.0, MaxSerial: 10000, Color: "#9aa4af"},
		{Name: "Rare", Multiplier: 2.0, MaxSerial: 2500, Color: "#3b82f6"},
		{Name: "Epic", Multiplier: 5.0, MaxSerial: 500, Color: "#a855f7"},
		{Name: "Legendary", Multiplier: 15.0, MaxSerial: 50, Color: "#f59e0b"},
	})

	// ClassicTable is the flatter multiplier curve of the first release.
	ClassicTable = MustTable([numTiers]Spec{
		{Name: "Common", Multiplier: 1.0, MaxSerial: 10000, Color: "#9aa4af"},
		{Name: "Rare", Multiplier: 1.5, MaxSerial: 2500, Color: "#3b82f6"},
		{Name: "Epic", Multiplier: 2.5, MaxSerial: 500, Color: "#a855f7"},
		{Name: "Legendary", Multiplier: 5.0, MaxSerial: 50, Color: "#f59e0b"},
	})
)
