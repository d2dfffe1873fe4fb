// Package runner drives a session on timers and serializes player intents
// onto the goroutine that owns it.
package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/zappabad/memex/internal/market"
	"github.com/zappabad/memex/internal/rarity"
	"github.com/zappabad/memex/internal/session"
)

var ErrClosed = errors.New("runner closed")

const (
	cmdPending int32 = iota
	cmdRunning
	cmdAbandoned
)

// command is claimed exactly once: by the owner goroutine to run it, or by
// the caller to abandon it. An abandoned command never touches the session.
type command struct {
	run   func(*session.Session)
	state atomic.Int32
	done  chan struct{}
}

// Runner owns a session. The price and trade timers and every command run
// on one goroutine, so at most one mutation is in flight.
type Runner struct {
	cfg    Config
	sess   *session.Session
	logger *zap.Logger
	now    func() time.Time

	cmdCh         chan *command
	events        chan Event
	droppedEvents atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts a Runner around sess. The runner takes ownership of sess;
// callers must not touch it directly afterwards.
func New(sess *session.Session, cfg Config, logger *zap.Logger) *Runner {
	def := DefaultConfig()
	if cfg.PriceInterval <= 0 {
		cfg.PriceInterval = def.PriceInterval
	}
	if cfg.TradeInterval <= 0 {
		cfg.TradeInterval = def.TradeInterval
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = def.CommandBuffer
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{
		cfg:    cfg,
		sess:   sess,
		logger: logger.Named("runner"),
		now:    time.Now,
		cmdCh:  make(chan *command, cfg.CommandBuffer),
		events: make(chan Event, cfg.EventBuffer),
		closed: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

func (r *Runner) run() {
	defer r.wg.Done()
	defer close(r.events)

	priceTicker := time.NewTicker(r.cfg.PriceInterval)
	defer priceTicker.Stop()
	tradeTicker := time.NewTicker(r.cfg.TradeInterval)
	defer tradeTicker.Stop()

	r.logger.Info("runner started",
		zap.Duration("price_interval", r.cfg.PriceInterval),
		zap.Duration("trade_interval", r.cfg.TradeInterval),
	)

	for {
		select {
		case <-r.closed:
			r.logger.Info("runner stopped", zap.Int64("dropped_events", r.droppedEvents.Load()))
			return
		case <-priceTicker.C:
			r.tick()
		case <-tradeTicker.C:
			r.printTrade()
		case cmd := <-r.cmdCh:
			if !cmd.state.CompareAndSwap(cmdPending, cmdRunning) {
				r.logger.Debug("skipping abandoned command")
				continue
			}
			cmd.run(r.sess)
			close(cmd.done)
		}
	}
}

func (r *Runner) tick() {
	res := r.sess.Tick()
	r.emitEvent(Event{Type: EventTick, Time: r.now(), Candles: len(res.Candles)})
}

func (r *Runner) printTrade() {
	asset, tr := r.sess.EmitRandomTrade()
	r.emitEvent(Event{Type: EventTrade, Time: tr.Time, Asset: asset, Trade: &tr})
}

func (r *Runner) emitEvent(ev Event) {
	if r.cfg.DropEvents {
		select {
		case r.events <- ev:
		default:
			r.droppedEvents.Add(1)
		}
	} else {
		select {
		case r.events <- ev:
		case <-r.closed:
		}
	}
}

func (r *Runner) rejected(op string, asset market.AssetID, err error) {
	r.emitEvent(Event{Type: EventRejected, Time: r.now(), Asset: asset, Op: op, Err: err})
}

// do runs fn on the owner goroutine and waits for it to finish. If ctx ends
// or the runner closes before fn starts, fn never runs and the error is
// returned. Once fn has started, do waits for it and reports success.
func (r *Runner) do(ctx context.Context, fn func(*session.Session)) error {
	cmd := &command{run: fn, done: make(chan struct{})}

	select {
	case <-r.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case r.cmdCh <- cmd:
	}

	select {
	case <-cmd.done:
		return nil
	case <-r.closed:
		return r.abandon(cmd, ErrClosed)
	case <-ctx.Done():
		return r.abandon(cmd, ctx.Err())
	}
}

func (r *Runner) abandon(cmd *command, err error) error {
	if cmd.state.CompareAndSwap(cmdPending, cmdAbandoned) {
		return err
	}
	<-cmd.done
	return nil
}

func call[T any](ctx context.Context, r *Runner, fn func(*session.Session) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	if cerr := r.do(ctx, func(s *session.Session) { out, err = fn(s) }); cerr != nil {
		var zero T
		return zero, cerr
	}
	return out, err
}

// PlaceOrder submits an order.
func (r *Runner) PlaceOrder(ctx context.Context, req session.OrderRequest) (session.OrderResult, error) {
	return call(ctx, r, func(s *session.Session) (session.OrderResult, error) {
		res, err := s.PlaceOrder(req)
		if err != nil {
			r.rejected("order", req.Asset, err)
			return res, err
		}
		r.emitEvent(Event{Type: EventOrderFilled, Time: r.now(), Asset: req.Asset, Order: &res})
		return res, nil
	})
}

// Quote previews an order.
func (r *Runner) Quote(ctx context.Context, req session.OrderRequest) (session.Quote, error) {
	return call(ctx, r, func(s *session.Session) (session.Quote, error) {
		return s.Quote(req)
	})
}

// MaxAffordable sizes a buy at percent of the affordable amount.
func (r *Runner) MaxAffordable(ctx context.Context, asset market.AssetID, percent int) (int, error) {
	return call(ctx, r, func(s *session.Session) (int, error) {
		return s.MaxAffordable(asset, percent)
	})
}

// OpenChest opens a chest.
func (r *Runner) OpenChest(ctx context.Context, chest rarity.ChestTier) (session.ChestResult, error) {
	return call(ctx, r, func(s *session.Session) (session.ChestResult, error) {
		res, err := s.OpenChest(chest)
		if err != nil {
			r.rejected("chest", "", err)
			return res, err
		}
		r.emitEvent(Event{Type: EventChestOpened, Time: r.now(), Asset: res.Instance.Asset, Chest: &res})
		return res, nil
	})
}

// ResolveBattle stakes an instance in a battle.
func (r *Runner) ResolveBattle(ctx context.Context, instanceID string) (session.BattleOutcome, error) {
	return call(ctx, r, func(s *session.Session) (session.BattleOutcome, error) {
		out, err := s.ResolveBattle(instanceID)
		if err != nil {
			r.rejected("battle", "", err)
			return out, err
		}
		r.emitEvent(Event{Type: EventBattleResolved, Time: r.now(), Asset: out.Instance.Asset, Battle: &out})
		return out, nil
	})
}

// SelectAsset changes the selected asset.
func (r *Runner) SelectAsset(ctx context.Context, asset market.AssetID) error {
	_, err := call(ctx, r, func(s *session.Session) (struct{}, error) {
		if err := s.SelectAsset(asset); err != nil {
			return struct{}{}, err
		}
		r.emitEvent(Event{Type: EventSelected, Time: r.now(), Asset: asset})
		return struct{}{}, nil
	})
	return err
}

// Snapshot copies the session state.
func (r *Runner) Snapshot(ctx context.Context) (session.Snapshot, error) {
	return call(ctx, r, func(s *session.Session) (session.Snapshot, error) {
		return s.Snapshot(r.cfg.SnapshotCandles), nil
	})
}

// TickNow runs a price refresh immediately.
func (r *Runner) TickNow(ctx context.Context) error {
	return r.do(ctx, func(*session.Session) { r.tick() })
}

// TradeNow prints a random trade immediately.
func (r *Runner) TradeNow(ctx context.Context) error {
	return r.do(ctx, func(*session.Session) { r.printTrade() })
}

// Events returns the session events channel. It is closed after Close.
func (r *Runner) Events() <-chan Event {
	return r.events
}

// DroppedEvents returns the count of dropped events.
func (r *Runner) DroppedEvents() int64 {
	return r.droppedEvents.Load()
}

// Close stops the timers and waits for the owner goroutine to exit.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
	})
	r.wg.Wait()
}
