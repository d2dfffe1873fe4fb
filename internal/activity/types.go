package activity

import (
	"time"

	"github.com/zappabad/memex/internal/market"
)

// EntryID uniquely identifies a feed entry.
type EntryID int64

// Kind grades an entry for display.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one line of the player's activity feed: a confirmation, a result
// or a rejection.
type Entry struct {
	ID       EntryID
	Time     time.Time
	Kind     Kind
	Asset    market.AssetID // optional; empty for session-wide entries
	Headline string
	Body     string
}
