package market

// AssetID uniquely identifies a meme asset.
type AssetID string

// Asset is a tradeable meme template. Assets are fixed for the lifetime of a
// process.
type Asset struct {
	ID        AssetID
	Name      string
	Emoji     string
	BasePrice float64
	Color     string
}

// Label returns the emoji and name joined for display.
func (a Asset) Label() string {
	if a.Emoji == "" {
		return a.Name
	}
	return a.Emoji + " " + a.Name
}

// Side represents the order side: buy or sell.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the opposite side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderKind represents the order type: limit or market.
type OrderKind uint8

const (
	OrderKindMarket OrderKind = iota
	OrderKindLimit
)

func (k OrderKind) String() string {
	switch k {
	case OrderKindLimit:
		return "LIMIT"
	case OrderKindMarket:
		return "MARKET"
	default:
		return "UNKNOWN"
	}
}
