package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/persist"
	"github.com/roach88/minerush/internal/rules"
)

// Persister loads and saves snapshots. *persist.Coordinator implements it.
type Persister interface {
	Load(ctx context.Context, force bool) (*game.GameState, persist.LoadResult, error)
	Save(ctx context.Context, s *game.GameState, force bool) (persist.SaveResult, error)
	ForceSync(ctx context.Context, s *game.GameState) (*game.GameState, persist.SyncResult, error)
}

// Timing holds the engine's timer intervals and save delays.
type Timing struct {
	IncomeTick  time.Duration // passive-income accumulation step
	FlushEvery  int           // income ticks per ApplyPassiveIncome
	DisplayTick time.Duration // smoothed coin display refresh, 0 disables
	AbilityTick time.Duration
	Significant time.Duration // save delay after a purchase or prestige change
	Light       time.Duration // save delay after any other change
}

// DefaultTiming returns the production intervals.
func DefaultTiming() Timing {
	return Timing{
		IncomeTick:  100 * time.Millisecond,
		FlushEvery:  10,
		DisplayTick: 50 * time.Millisecond,
		AbilityTick: time.Second,
		Significant: 5 * time.Second,
		Light:       time.Second,
	}
}

// Engine is the single-writer game loop.
//
// Thread-safety model:
//   - Dispatch(), Snapshot(), Subscribe(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Drain(): processes queued events on the calling goroutine; it
//     serializes with Run, so tests may use either
//   - Boot/Suspend/Resume/ForceSync/Shutdown: safe from any goroutine;
//     they run on the loop and wait for the result
//
// INVARIANTS:
//   - Only the loop calls the reducer or mutates scheduler state
//   - A published snapshot is never modified
type Engine struct {
	reducer *rules.Reducer
	persist Persister
	clock   Clock
	timing  Timing
	sink    game.EffectSink
	display func(coins float64)
	rand    func() float64
	logger  *slog.Logger
	session string

	queue   *eventQueue
	loopMu  sync.Mutex
	running atomic.Bool
	state   atomic.Pointer[game.GameState]

	subsMu  sync.Mutex
	subs    map[int]func(*game.GameState)
	nextSub int

	// Loop-confined.
	income    *incomeScheduler
	abilities *abilityTicker
	saver     *Saver
	booted    bool
	closing   bool

	// loadFailed blocks every save: the stored snapshot could not be read
	// and the in-memory default must not replace it.
	loadFailed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for timers and timestamps.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithTiming overrides DefaultTiming.
func WithTiming(t Timing) Option {
	return func(e *Engine) { e.timing = t }
}

// WithSink sets the effect sink.
func WithSink(s game.EffectSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithDisplay sets the callback that receives the smoothed coin balance
// (committed coins plus unflushed income). It runs on the loop.
func WithDisplay(fn func(coins float64)) Option {
	return func(e *Engine) { e.display = fn }
}

// WithRand sets the source of click rolls.
func WithRand(fn func() float64) Option {
	return func(e *Engine) { e.rand = fn }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSession sets the generator of the session id attached to every log
// line.
func WithSession(g SessionIDGenerator) Option {
	return func(e *Engine) { e.session = g.Generate() }
}

// New creates an Engine. p may be nil for a session that never persists.
//
// The engine starts from the reducer's default state with DataLoaded
// false; Boot loads the saved game.
func New(r *rules.Reducer, p Persister, opts ...Option) *Engine {
	e := &Engine{
		reducer: r,
		persist: p,
		clock:   RealClock{},
		timing:  DefaultTiming(),
		sink:    game.EffectSinkFunc(func(game.Effect) {}),
		rand:    rand.Float64,
		logger:  slog.Default(),
		queue:   newEventQueue(),
		subs:    make(map[int]func(*game.GameState)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == "" {
		e.session = UUIDv7Generator{}.Generate()
	}
	e.logger = e.logger.With("session", e.session)

	e.state.Store(r.Initial())
	e.income = &incomeScheduler{e: e}
	e.abilities = &abilityTicker{e: e}
	e.saver = NewSaver(e.clock, e.timing.Light, e.timing.Significant, func() {
		e.enqueueTask(e.saveDue)
	})
	return e
}

// Session returns the id tagging this engine's log lines.
func (e *Engine) Session() string { return e.session }

// Dispatch submits an action. It never blocks; the action is reduced on
// the loop. Returns false once the engine has shut down.
func (e *Engine) Dispatch(a game.Action) bool {
	if a == nil {
		return false
	}
	return e.queue.Enqueue(Event{Type: EventTypeAction, Action: a})
}

// Snapshot returns the current published state. The result must not be
// modified.
func (e *Engine) Snapshot() *game.GameState {
	return e.state.Load()
}

// Subscribe registers fn to receive every published state. fn runs on the
// loop and must not block. The returned function cancels the subscription.
func (e *Engine) Subscribe(fn func(*game.GameState)) (cancel func()) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		delete(e.subs, id)
	}
}

// QueueLen returns the number of pending events (for testing).
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Run starts the event loop. It blocks until ctx is cancelled or the
// engine shuts down.
//
// ERROR HANDLING: rejected actions and collaborator failures are logged
// and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	e.running.Store(true)
	defer e.running.Store(false)
	e.logger.Info("engine starting")

	for {
		if e.step(ctx) {
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.loopMu.Lock()
			e.stopTimers()
			e.loopMu.Unlock()
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue, so a closed and
			// drained queue ends the loop.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Drain processes queued events on the calling goroutine until the queue
// is empty. Events queued by processed events are processed too.
func (e *Engine) Drain() {
	for e.step(context.Background()) {
	}
}

// step processes one event. Returns false if the queue was empty.
func (e *Engine) step(ctx context.Context) bool {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()

	ev, ok := e.queue.TryDequeue()
	if !ok {
		return false
	}
	switch ev.Type {
	case EventTypeAction:
		e.apply(ev.Action)
	case EventTypeTask:
		ev.Task(ctx)
	default:
		e.logger.Error("unknown event type", "type", ev.Type)
	}
	return true
}

func (e *Engine) enqueueTask(fn func(ctx context.Context)) bool {
	return e.queue.Enqueue(Event{Type: EventTypeTask, Task: fn})
}

// call runs fn on the loop and waits for its result. Without a running
// loop the queue is drained on the calling goroutine.
func (e *Engine) call(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	if !e.enqueueTask(func(context.Context) { done <- fn(ctx) }) {
		return ErrStopped
	}
	if !e.running.Load() {
		e.Drain()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// apply reduces a against the current state and publishes the result.
// Returns false if the reducer rejected a.
// CRITICAL: Called only on the loop.
func (e *Engine) apply(a game.Action) bool {
	if c, ok := a.(game.Click); ok && c.Roll == 0 {
		c.Roll = e.rand()
		a = c
	}
	if _, ok := a.(game.Rebirth); ok {
		// Income earned before the reset belongs to the old run.
		e.income.flush()
	}

	prev := e.state.Load()
	next, effects := e.reducer.Reduce(prev, a)
	if next == prev {
		e.logger.Debug("action rejected", "action", a.Name())
		return false
	}
	e.state.Store(next)

	for _, eff := range effects {
		e.sink.Notify(eff)
	}
	e.reconcile(prev, next)
	e.publish(next)
	return true
}

// reconcile starts and stops timers and schedules saves to match s.
func (e *Engine) reconcile(prev, s *game.GameState) {
	if e.closing {
		return
	}
	e.income.observe(prev, s)
	e.abilities.observe(s)

	if s.NeedsSave && s.DataLoaded && e.persist != nil {
		reason := SaveLight
		if s.NeedsCloudSave {
			reason = SaveSignificant
		}
		e.saver.ScheduleSave(reason)
	}
}

func (e *Engine) publish(s *game.GameState) {
	e.subsMu.Lock()
	fns := make([]func(*game.GameState), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subsMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (e *Engine) stopTimers() {
	e.income.stop()
	e.abilities.stop()
	e.saver.CancelPending()
}
