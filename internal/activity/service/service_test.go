package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/memex/internal/activity"
	"github.com/zappabad/memex/internal/inventory"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
	"github.com/zappabad/memex/internal/session"
	"github.com/zappabad/memex/internal/session/runner"
)

func waitEntries(t *testing.T, svc *Service, n int) []activity.Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := svc.Latest(100); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d entries", n)
	return nil
}

func TestPublish(t *testing.T) {
	svc := NewService(DefaultConfig(), nil)
	defer svc.Close()

	e := svc.Publish(activity.Entry{Kind: activity.KindInfo, Headline: "welcome"})
	if e.ID == 0 || e.Time.IsZero() {
		t.Fatalf("expected id and time to be set, got %+v", e)
	}

	got := waitEntries(t, svc, 1)
	if got[0].Headline != "welcome" {
		t.Errorf("unexpected entry %+v", got[0])
	}

	select {
	case ev := <-svc.Events():
		if ev.Entry.ID != e.ID {
			t.Errorf("expected external event for %d, got %d", e.ID, ev.Entry.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("expected external event")
	}
}

func TestAttachRunnerEvents(t *testing.T) {
	svc := NewService(DefaultConfig(), market.DefaultCatalog())
	defer svc.Close()

	events := make(chan runner.Event, 8)
	svc.AttachRunnerEvents(events)

	events <- runner.Event{Type: runner.EventTick}
	events <- runner.Event{
		Type:  runner.EventOrderFilled,
		Asset: "cat",
		Order: &session.OrderResult{
			Asset: "cat", Side: market.SideSell, Amount: 2,
			Price: decimal.NewFromInt(400), Net: decimal.NewFromInt(784), Fee: decimal.NewFromInt(16),
		},
	}
	events <- runner.Event{
		Type:   runner.EventBattleResolved,
		Battle: &session.BattleOutcome{Instance: inventory.Instance{Asset: "dog", Tier: rarity.Rare}, WinProbability: 0.5},
	}
	events <- runner.Event{Type: runner.EventRejected, Op: "order", Err: session.ErrInsufficientFunds}
	close(events)

	got := waitEntries(t, svc, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// newest first: rejection, battle, order
	if got[2].Kind != activity.KindSuccess || !strings.Contains(got[2].Headline, "Sold 2") || !strings.Contains(got[2].Headline, "Грустный Кот") {
		t.Errorf("unexpected order entry %+v", got[2])
	}
	if got[1].Kind != activity.KindWarning || !strings.Contains(got[1].Body, "50%") {
		t.Errorf("unexpected battle entry %+v", got[1])
	}
	if got[0].Kind != activity.KindError || !strings.Contains(got[0].Headline, "insufficient_funds") {
		t.Errorf("unexpected rejection entry %+v", got[0])
	}
}

func TestDescribeSkipsNoise(t *testing.T) {
	svc := NewService(DefaultConfig(), nil)
	defer svc.Close()

	for _, typ := range []runner.EventType{runner.EventTick, runner.EventTrade, runner.EventSelected} {
		if _, ok := svc.describe(runner.Event{Type: typ}); ok {
			t.Errorf("expected %s to be skipped", typ)
		}
	}
	if _, ok := svc.describe(runner.Event{Type: runner.EventOrderFilled}); ok {
		t.Error("expected event without payload to be skipped")
	}
	e, ok := svc.describe(runner.Event{Type: runner.EventRejected, Op: "chest", Err: errors.New("boom")})
	if !ok || e.Body != "boom" {
		t.Errorf("unexpected rejection entry %+v", e)
	}
}
