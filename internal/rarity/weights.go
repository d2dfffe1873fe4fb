package rarity

import (
	"fmt"
	"math"

	"github.com/zappabad/memex/internal/random"
)

// Weights is a cumulative-probability table over the tiers.
type Weights struct {
	breaks [numTiers]float64
}

// NewWeights builds Weights from per-tier probabilities in ascending tier
// order. Probabilities must be non-negative and sum to 1.
func NewWeights(probs [numTiers]float64) (Weights, error) {
	var w Weights
	sum := 0.0
	for i, p := range probs {
		if p < 0 {
			return Weights{}, fmt.Errorf("rarity: negative weight for %s", Tier(i))
		}
		sum += p
		w.breaks[i] = sum
	}
	if math.Abs(sum-1) > 1e-9 {
		return Weights{}, fmt.Errorf("rarity: weights sum to %v, want 1", sum)
	}
	w.breaks[numTiers-1] = 1
	return w, nil
}

// MustWeights is like NewWeights but panics on invalid input.
func MustWeights(probs [numTiers]float64) Weights {
	w, err := NewWeights(probs)
	if err != nil {
		panic(err)
	}
	return w
}

// Draw picks the first tier whose cumulative breakpoint exceeds a uniform draw.
func (w Weights) Draw(src random.Source) Tier {
	u := src.Float64()
	for i, b := range w.breaks {
		if u < b {
			return Tier(i)
		}
	}
	return Legendary
}

// Probability returns the configured probability of tier t.
func (w Weights) Probability(t Tier) float64 {
	if !t.Valid() {
		return 0
	}
	if t == 0 {
		return w.breaks[0]
	}
	return w.breaks[t] - w.breaks[t-1]
}

// Breakpoints returns the cumulative breakpoints in ascending tier order.
func (w Weights) Breakpoints() [numTiers]float64 { return w.breaks }

var (
	// DefaultWeights: 0.75 / 0.93 / 0.99 / 1.0.
	DefaultWeights = MustWeights([numTiers]float64{0.75, 0.18, 0.06, 0.01})
	// ClassicWeights: 0.60 / 0.85 / 0.97 / 1.0.
	ClassicWeights = MustWeights([numTiers]float64{0.60, 0.25, 0.12, 0.03})
)

// ChestTier selects the weight table used when opening a chest.
type ChestTier uint8

const (
	ChestFree ChestTier = iota
	ChestPremium
	ChestLegendary
)

// ChestTiers lists chests from worst to best odds.
var ChestTiers = []ChestTier{ChestFree, ChestPremium, ChestLegendary}

func (c ChestTier) String() string {
	switch c {
	case ChestFree:
		return "free"
	case ChestPremium:
		return "premium"
	case ChestLegendary:
		return "legendary"
	default:
		return "unknown"
	}
}

var chestWeights = map[ChestTier]Weights{
	ChestFree:      MustWeights([numTiers]float64{0.50, 0.30, 0.15, 0.05}),
	ChestPremium:   MustWeights([numTiers]float64{0.20, 0.40, 0.30, 0.10}),
	ChestLegendary: MustWeights([numTiers]float64{0, 0, 0.70, 0.30}),
}

// ChestWeights returns the weight table of chest c.
func ChestWeights(c ChestTier) (Weights, bool) {
	w, ok := chestWeights[c]
	return w, ok
}

// StarterBag is the pool a fresh collection draws its tiers from.
var StarterBag = []Tier{Common, Common, Common, Rare, Rare, Epic}

// DrawFromBag picks one element of bag uniformly.
func DrawFromBag(src random.Source, bag []Tier) Tier {
	if len(bag) == 0 {
		return Common
	}
	return bag[src.Intn(len(bag))]
}
