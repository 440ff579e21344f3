package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/minerush/internal/catalog"
	"github.com/roach88/minerush/internal/engine"
	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/persist"
	"github.com/roach88/minerush/internal/rules"
	"github.com/roach88/minerush/internal/testutil"
)

// Start is the virtual time every scenario boots at.
var Start = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// neutralRoll is the lucky-click sample used when a click step leaves
// Roll unset. It never triggers a lucky click.
const neutralRoll = 0.5

// Harness runs scenarios against a catalog.
type Harness struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithCatalog runs scenarios against cat instead of the embedded catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(h *Harness) { h.catalog = cat }
}

// WithLogger routes engine and persistence logs to l. Logs are discarded
// by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		catalog: catalog.Default(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with the default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// run is the state of one scenario execution.
type run struct {
	h       *Harness
	reducer *rules.Reducer
	clock   *engine.ManualClock
	local   *testutil.MemoryStore
	eng     *engine.Engine
	effects []game.Effect
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against fresh in-memory storage on a virtual clock,
// so results are reproducible and traces can be compared to golden files.
//
// Execution flow:
//  1. Store the seed snapshot, if any
//  2. Boot the engine (load, offline catch-up)
//  3. Execute flow steps, checking expectations
//  4. Capture the final state, shut down and read back the stored snapshot
//  5. Evaluate assertions
//
// An error is returned only when the scenario cannot be executed; failed
// expectations and assertions are reported in the result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	r := &run{
		h:       h,
		reducer: rules.New(h.catalog),
		clock:   engine.NewManualClock(Start),
		local:   testutil.NewMemoryStore(),
	}

	if scenario.Seed != nil {
		if err := r.seed(scenario.Seed); err != nil {
			return nil, fmt.Errorf("failed to seed: %w", err)
		}
	}

	result := NewResult()
	r.eng = r.newEngine()
	if err := r.eng.Boot(ctx); err != nil {
		return nil, fmt.Errorf("failed to boot: %w", err)
	}
	result.Trace = append(result.Trace, TraceEvent{Step: 0, Op: "boot", Effects: r.take()})

	for i := range scenario.Flow {
		step := &scenario.Flow[i]
		ev, err := r.execute(ctx, i, step, result)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i+1, err)
		}
		result.Trace = append(result.Trace, ev)
	}

	result.Final = r.eng.Snapshot()
	if err := r.eng.Shutdown(ctx); err != nil {
		result.AddError(fmt.Sprintf("shutdown: %v", err))
	}
	stored, err := r.stored(ctx)
	if err != nil {
		return nil, err
	}
	result.Stored = stored

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (r *run) newEngine() *engine.Engine {
	coord := persist.New(r.h.catalog, r.local,
		persist.WithClock(r.clock.Now),
		persist.WithLogger(r.h.logger))

	return engine.New(r.reducer, coord,
		engine.WithClock(r.clock),
		engine.WithSession(engine.FixedSession("scenario")),
		engine.WithRand(func() float64 { return neutralRoll }),
		engine.WithLogger(r.h.logger),
		engine.WithSink(game.EffectSinkFunc(func(e game.Effect) {
			r.effects = append(r.effects, e)
		})),
	)
}

// take returns and clears the effects collected since the last call.
func (r *run) take() []game.Effect {
	out := r.effects
	r.effects = nil
	return out
}

func (r *run) execute(ctx context.Context, index int, step *FlowStep, result *Result) (TraceEvent, error) {
	ev := TraceEvent{Step: index + 1, Op: stepLabel(step)}

	switch {
	case step.Action != "":
		accepted, err := r.dispatch(step)
		if err != nil {
			return ev, err
		}
		ev.Accepted = &accepted
		if want := step.Expect; want != "" && (want == ExpectAccepted) != accepted {
			got := ExpectRejected
			if accepted {
				got = ExpectAccepted
			}
			result.AddError(fmt.Sprintf("flow[%d] %s: expected %s, was %s", index, ev.Op, want, got))
		}

	case step.Advance > 0:
		r.advance(step.Advance)

	default:
		if err := r.lifecycle(ctx, step.Lifecycle); err != nil {
			result.AddError(fmt.Sprintf("flow[%d] %s: %v", index, ev.Op, err))
		}
	}

	ev.Effects = r.take()
	return ev, nil
}

// dispatch sends the step's action Repeat times. An action counts as
// accepted when the reducer would change the state it is dispatched
// against.
func (r *run) dispatch(step *FlowStep) (bool, error) {
	a, err := buildAction(step)
	if err != nil {
		return false, err
	}

	accepted := true
	for range max(step.Repeat, 1) {
		before := r.eng.Snapshot()
		if after, _ := r.reducer.Reduce(before, a); after == before {
			accepted = false
		}
		if !r.eng.Dispatch(a) {
			return false, fmt.Errorf("engine stopped")
		}
		r.eng.Drain()
	}
	return accepted, nil
}

// advance moves the clock one income tick at a time, draining after each,
// as a running event loop would.
func (r *run) advance(d time.Duration) {
	tick := engine.DefaultTiming().IncomeTick
	for d > 0 {
		step := min(d, tick)
		r.clock.Advance(step)
		r.eng.Drain()
		d -= step
	}
}

func (r *run) lifecycle(ctx context.Context, name string) error {
	switch name {
	case LifecycleSuspend:
		return r.eng.Suspend(ctx)
	case LifecycleResume:
		return r.eng.Resume(ctx)
	case LifecycleSync:
		_, err := r.eng.ForceSync(ctx)
		return err
	case LifecycleRestart:
		if err := r.eng.Shutdown(ctx); err != nil {
			return err
		}
		r.eng = r.newEngine()
		return r.eng.Boot(ctx)
	default:
		return fmt.Errorf("unknown lifecycle %q", name)
	}
}

// seed writes a snapshot built from the catalog defaults and seed to local
// storage.
func (r *run) seed(seed *Seed) error {
	s := r.h.catalog.NewState()
	s.Coins = seed.Coins
	s.TotalCoinsEarned = max(seed.TotalCoinsEarned, seed.Coins)
	s.GoldCoins = seed.GoldCoins
	s.TotalClicks = seed.TotalClicks
	s.Rebirths = seed.Rebirths
	if seed.OfflineProgress != nil {
		s.Settings.OfflineProgress = *seed.OfflineProgress
	}
	s.LastSaved = Start.Add(-seed.Away).UnixMilli()

	for id, n := range seed.Miners {
		i := s.AutoMinerIndex(game.NormalizeID(id))
		if i < 0 {
			return fmt.Errorf("unknown auto-miner %q", id)
		}
		s.AutoMiners[i].Count = n
	}
	for _, id := range seed.Pickaxes {
		i := s.UpgradeIndex(game.NormalizeID(id))
		if i < 0 {
			return fmt.Errorf("unknown pickaxe %q", id)
		}
		s.Upgrades[i].Owned = true
		s.SelectedPickaxe = s.Upgrades[i].ID
	}
	for _, id := range seed.Rocks {
		i := s.RockIndex(game.NormalizeID(id))
		if i < 0 {
			return fmt.Errorf("unknown rock %q", id)
		}
		s.Rocks[i].Unlocked = true
		s.SelectedRock = s.Rocks[i].ID
	}
	for id, level := range seed.Specials {
		i := s.SpecialIndex(game.NormalizeID(id))
		if i < 0 {
			return fmt.Errorf("unknown special upgrade %q", id)
		}
		s.SpecialUpgrades[i].Owned = true
		s.SpecialUpgrades[i].Level = level
	}
	for id, level := range seed.Abilities {
		i := s.AbilityIndex(game.NormalizeID(id))
		if i < 0 {
			return fmt.Errorf("unknown ability %q", id)
		}
		s.Abilities[i].Owned = true
		s.Abilities[i].Level = level
	}
	for _, id := range seed.Achievements {
		i := s.AchievementIndex(game.NormalizeID(id))
		if i < 0 {
			return fmt.Errorf("unknown achievement %q", id)
		}
		s.Achievements[i].Unlocked = true
		s.Achievements[i].Shown = true
	}

	data, err := game.EncodeSnapshot(s)
	if err != nil {
		return err
	}
	r.local.Put(persist.SnapshotKey, data)
	return nil
}

// stored decodes the snapshot left in local storage, or returns nil.
func (r *run) stored(ctx context.Context) (*game.GameState, error) {
	data, ok, err := r.local.Get(ctx, persist.SnapshotKey)
	if err != nil || !ok {
		return nil, err
	}
	s, err := r.h.catalog.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("stored snapshot: %w", err)
	}
	return s, nil
}
