package market

import (
	"errors"
	"fmt"
)

var ErrUnknownAsset = errors.New("unknown asset")

// Catalog is the ordered, immutable set of assets a session trades.
type Catalog struct {
	assets []Asset
	index  map[AssetID]int
}

// NewCatalog builds a catalog preserving the given order. Duplicate ids and
// non-positive base prices are rejected.
func NewCatalog(assets ...Asset) (*Catalog, error) {
	if len(assets) == 0 {
		return nil, errors.New("catalog: no assets")
	}
	c := &Catalog{
		assets: make([]Asset, len(assets)),
		index:  make(map[AssetID]int, len(assets)),
	}
	for i, a := range assets {
		if a.ID == "" {
			return nil, fmt.Errorf("catalog: asset %d has empty id", i)
		}
		if a.BasePrice <= 0 {
			return nil, fmt.Errorf("catalog: asset %q base price must be positive", a.ID)
		}
		if _, dup := c.index[a.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate asset %q", a.ID)
		}
		c.assets[i] = a
		c.index[a.ID] = i
	}
	return c, nil
}

// DefaultCatalog returns the five meme templates the exchange ships with.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Asset{ID: "fighter", Name: "Бомж Файтер", Emoji: "🥊", BasePrice: 800, Color: "#ef4444"},
		Asset{ID: "cat", Name: "Грустный Кот", Emoji: "😿", BasePrice: 400, Color: "#3b82f6"},
		Asset{ID: "trader", Name: "Успешный Трейдер", Emoji: "📈", BasePrice: 600, Color: "#22c55e"},
		Asset{ID: "hacker", Name: "Дедушка Хакер", Emoji: "👴", BasePrice: 300, Color: "#a855f7"},
		Asset{ID: "dog", Name: "Собака в Костюме", Emoji: "🐕", BasePrice: 500, Color: "#f59e0b"},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Assets returns the assets in catalog order.
func (c *Catalog) Assets() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// IDs returns the asset ids in catalog order.
func (c *Catalog) IDs() []AssetID {
	out := make([]AssetID, len(c.assets))
	for i, a := range c.assets {
		out[i] = a.ID
	}
	return out
}

// Len returns the number of assets.
func (c *Catalog) Len() int { return len(c.assets) }

// At returns the asset at position i in catalog order.
func (c *Catalog) At(i int) Asset { return c.assets[i] }

// Lookup returns the asset with the given id.
func (c *Catalog) Lookup(id AssetID) (Asset, error) {
	i, ok := c.index[id]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrUnknownAsset, id)
	}
	return c.assets[i], nil
}

// Has reports whether the catalog contains id.
func (c *Catalog) Has(id AssetID) bool {
	_, ok := c.index[id]
	return ok
}
