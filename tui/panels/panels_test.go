package panels

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zappabad/memex/internal/activity"
	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
	"github.com/zappabad/memex/internal/session"
)

var cat = market.Asset{ID: "cat", Name: "Грустный Кот", Emoji: "😿", BasePrice: 400}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOrderDraftMarketBuy(t *testing.T) {
	p := NewOrderInputPanel()
	if _, ok := p.Draft(); ok {
		t.Fatal("expected no draft without an asset")
	}

	p.SetAsset(cat, 412.5)
	p.SetQuantity(3)

	req, ok := p.Draft()
	if !ok {
		t.Fatal("expected a draft")
	}
	if req.Asset != "cat" || req.Side != market.SideBuy || req.Kind != market.OrderKindMarket || req.Amount != 3 {
		t.Errorf("unexpected draft %+v", req)
	}
}

func TestOrderDraftLimitSell(t *testing.T) {
	p := NewOrderInputPanel()
	p.SetFocus(true)
	p.SetAsset(cat, 412.5)

	p.Update(keyMsg("right")) // side: sell
	p.Update(keyMsg("down"))
	p.Update(keyMsg("right")) // type: limit

	req, ok := p.Draft()
	if !ok {
		t.Fatal("expected a draft")
	}
	if req.Side != market.SideSell || req.Kind != market.OrderKindLimit {
		t.Errorf("expected limit sell, got %s %s", req.Kind, req.Side)
	}
	if req.LimitPrice != 412.5 {
		t.Errorf("expected limit prefilled with live price, got %v", req.LimitPrice)
	}
}

func TestOrderDraftRejectsBadQuantity(t *testing.T) {
	p := NewOrderInputPanel()
	p.SetAsset(cat, 400)
	p.SetQuantity(0)
	if _, ok := p.Draft(); ok {
		t.Error("expected zero quantity to be rejected")
	}
}

func TestQuickSizeEmitsPercent(t *testing.T) {
	p := NewOrderInputPanel()
	p.SetFocus(true)
	p.SetAsset(cat, 400)

	// side, type, quantity, quick
	p.Update(keyMsg("down"))
	p.Update(keyMsg("down"))
	p.Update(keyMsg("down"))
	p.Update(keyMsg("right")) // 50%

	_, cmd := p.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(QuickSizeMsg)
	if !ok {
		t.Fatalf("expected QuickSizeMsg, got %T", cmd())
	}
	if msg.Asset != "cat" || msg.Percent != 50 {
		t.Errorf("unexpected quick size %+v", msg)
	}
}

func TestCollectionKeys(t *testing.T) {
	p := NewCollectionPanel(nil)
	p.SetFocus(true)
	p.SetSnapshot(session.Snapshot{
		Assets:     []session.AssetSnapshot{{Asset: cat}},
		Collection: []inventory.Instance{{ID: "a", Asset: "cat"}, {ID: "b", Asset: "cat", Tier: rarity.Epic}},
		Table:      rarity.DefaultTable,
	})

	p.Update(keyMsg("down"))
	_, cmd := p.Update(keyMsg("b"))
	if cmd == nil {
		t.Fatal("expected a battle command")
	}
	if msg, ok := cmd().(BattleMsg); !ok || msg.InstanceID != "b" {
		t.Errorf("expected battle of b, got %#v", cmd())
	}

	_, cmd = p.Update(keyMsg("3"))
	if msg, ok := cmd().(ChestMsg); !ok || msg.Chest != rarity.ChestLegendary {
		t.Errorf("expected legendary chest, got %#v", cmd())
	}
}

func TestCollectionClampsSelection(t *testing.T) {
	p := NewCollectionPanel(nil)
	p.SetFocus(true)
	p.SetSnapshot(session.Snapshot{Collection: []inventory.Instance{{ID: "a"}, {ID: "b"}}})
	p.Update(keyMsg("down"))

	p.SetSnapshot(session.Snapshot{Collection: []inventory.Instance{{ID: "a"}}})
	inst, ok := p.SelectedCard()
	if !ok || inst.ID != "a" {
		t.Errorf("expected selection clamped to a, got %+v %v", inst, ok)
	}
}

func TestActivityEntriesNewestFirst(t *testing.T) {
	p := NewActivityPanel()
	p.SetEntries([]activity.Entry{{ID: 2}, {ID: 1}})
	p.AddEntry(activity.Entry{ID: 3})

	if len(p.entries) != 3 || p.entries[0].ID != 3 || p.entries[2].ID != 1 {
		t.Errorf("unexpected order %+v", p.entries)
	}
}

func TestMarketCursorSelectsAsset(t *testing.T) {
	p := NewMarketOverviewPanel()
	p.SetFocus(true)
	dog := market.Asset{ID: "dog", Name: "Пёс"}
	p.SetSnapshot(session.Snapshot{
		Selected: "cat",
		Assets:   []session.AssetSnapshot{{Asset: cat}, {Asset: dog}},
	})

	_, cmd := p.Update(keyMsg("down"))
	if cmd == nil {
		t.Fatal("expected selection command")
	}
	if msg, ok := cmd().(AssetSelectedMsg); !ok || msg.Asset.ID != "dog" {
		t.Errorf("expected dog selected, got %#v", cmd())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Грустный Кот", 5); got != "Грус…" {
		t.Errorf("unexpected truncate %q", got)
	}
	if got := truncate("Кот", 5); got != "Кот" {
		t.Errorf("unexpected truncate %q", got)
	}
}
