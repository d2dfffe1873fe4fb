package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/memex/internal/activity"
	activityview "github.com/zappabad/memex/internal/activity/view"
	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/session"
	"github.com/zappabad/memex/internal/session/runner"
)

// Service turns session events into a readable activity feed.
type Service struct {
	cfg     Config
	catalog *market.Catalog
	feed    *activityview.Feed

	idGen atomic.Int64

	internalEvents chan activityview.Event
	externalEvents chan activityview.Event
	droppedEvents  atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewService creates a new activity Service. catalog labels assets in
// entries and may be nil.
func NewService(cfg Config, catalog *market.Catalog) *Service {
	if cfg.FeedSize <= 0 {
		cfg.FeedSize = DefaultConfig().FeedSize
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}
	if cfg.ExternalEventBuffer <= 0 {
		cfg.ExternalEventBuffer = DefaultConfig().ExternalEventBuffer
	}

	s := &Service{
		cfg:            cfg,
		catalog:        catalog,
		feed:           activityview.NewFeed(cfg.FeedSize),
		internalEvents: make(chan activityview.Event, cfg.EventBuffer),
		externalEvents: make(chan activityview.Event, cfg.ExternalEventBuffer),
		closed:         make(chan struct{}),
	}

	s.wg.Add(1)
	go s.runEventDispatcher()

	return s
}

func (s *Service) nextID() activity.EntryID {
	return activity.EntryID(s.idGen.Add(1))
}

func (s *Service) runEventDispatcher() {
	defer s.wg.Done()
	defer close(s.externalEvents)

	for {
		select {
		case <-s.closed:
			return
		case ev := <-s.internalEvents:
			s.feed.Apply(ev)

			if s.cfg.DropExternalEvents {
				select {
				case s.externalEvents <- ev:
				default:
					s.droppedEvents.Add(1)
				}
			} else {
				select {
				case s.externalEvents <- ev:
				case <-s.closed:
					return
				}
			}
		}
	}
}

// Publish adds an entry to the feed. ID and Time are filled in when unset.
func (s *Service) Publish(e activity.Entry) activity.Entry {
	e.ID = s.nextID()
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	select {
	case s.internalEvents <- activityview.Event{Entry: e}:
	case <-s.closed:
	}
	return e
}

// AttachRunnerEvents starts listening to session events in a goroutine.
func (s *Service) AttachRunnerEvents(events <-chan runner.Event) {
	s.wg.Add(1)
	go s.runRunnerEventListener(events)
}

func (s *Service) runRunnerEventListener(events <-chan runner.Event) {
	defer s.wg.Done()

	for {
		select {
		case <-s.closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if e, ok := s.describe(ev); ok {
				s.Publish(e)
			}
		}
	}
}

// describe renders a session event. Ticks, trade prints and selection
// changes are not shown.
func (s *Service) describe(ev runner.Event) (activity.Entry, bool) {
	e := activity.Entry{Time: ev.Time, Asset: ev.Asset}

	switch ev.Type {
	case runner.EventOrderFilled:
		o := ev.Order
		if o == nil {
			return e, false
		}
		verb := "Bought"
		if o.Side == market.SideSell {
			verb = "Sold"
		}
		e.Kind = activity.KindSuccess
		e.Headline = fmt.Sprintf("%s %d × %s", verb, o.Amount, s.label(o.Asset))
		e.Body = fmt.Sprintf("at %s, net %s, fee %s", o.Price.StringFixed(2), o.Net.StringFixed(2), o.Fee.StringFixed(2))

	case runner.EventChestOpened:
		c := ev.Chest
		if c == nil {
			return e, false
		}
		e.Kind = activity.KindSuccess
		e.Headline = fmt.Sprintf("%s chest: %s %s #%d", c.Chest, c.Instance.Tier, s.label(c.Instance.Asset), c.Instance.Serial)
		e.Body = fmt.Sprintf("worth %s, paid %s", c.Value.StringFixed(2), c.Cost.StringFixed(2))

	case runner.EventBattleResolved:
		b := ev.Battle
		if b == nil {
			return e, false
		}
		if b.Won {
			e.Kind = activity.KindSuccess
			e.Headline = fmt.Sprintf("Victory with %s %s", b.Instance.Tier, s.label(b.Instance.Asset))
			e.Body = fmt.Sprintf("won %s", b.Prize.StringFixed(2))
		} else {
			e.Kind = activity.KindWarning
			e.Headline = fmt.Sprintf("Defeat: %s %s burned", b.Instance.Tier, s.label(b.Instance.Asset))
			e.Body = fmt.Sprintf("win chance was %.0f%%", b.WinProbability*100)
		}

	case runner.EventRejected:
		e.Kind = activity.KindError
		e.Headline = fmt.Sprintf("%s rejected: %s", ev.Op, session.Reason(ev.Err))
		if ev.Err != nil {
			e.Body = ev.Err.Error()
		}

	default:
		return e, false
	}
	return e, true
}

func (s *Service) label(id market.AssetID) string {
	if s.catalog == nil {
		return string(id)
	}
	a, err := s.catalog.Lookup(id)
	if err != nil {
		return string(id)
	}
	return a.Label()
}

// Latest returns the last n entries, newest first.
func (s *Service) Latest(n int) []activity.Entry {
	return s.feed.Latest(n)
}

// Events returns the external events channel for subscribers.
func (s *Service) Events() <-chan activityview.Event {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *Service) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close shuts down the service and waits for goroutines to finish.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}
