package engine

import (
	"context"
	"time"

	"github.com/roach88/minerush/internal/game"
)

// incomeScheduler accrues passive income between commits.
//
// Every IncomeTick it adds cps times the wall-clock time since the last
// accrual to a pending accumulator; every FlushEvery ticks the accumulator
// is committed through ApplyPassiveIncome. Elapsed time is measured from
// the clock rather than counted in ticks, so late or coalesced ticks lose
// nothing.
//
// The scheduler runs only while the state is ready and cps is positive.
// When cps changes, time accrued so far is charged at the old rate.
//
// Loop-confined: every method runs on the engine loop.
type incomeScheduler struct {
	e          *Engine
	tick       Timer
	display    Timer
	gen        int // bumped on start and stop; stale ticks are ignored
	lastUpdate time.Time
	pending    float64
	ticks      int
}

func (s *incomeScheduler) running() bool { return s.tick != nil }

func (s *incomeScheduler) observe(prev, next *game.GameState) {
	if s.running() && prev.CPS != next.CPS {
		s.accrue(prev.CPS)
	}

	want := next.DataLoaded && next.CPS > 0
	switch {
	case want && !s.running():
		s.start()
	case !want && s.running():
		s.stop()
		s.commit()
	}
}

func (s *incomeScheduler) start() {
	e := s.e
	s.gen++
	gen := s.gen
	s.lastUpdate = e.clock.Now()
	s.ticks = 0

	s.tick = e.clock.Every(e.timing.IncomeTick, func() {
		e.enqueueTask(func(context.Context) { s.onTick(gen) })
	})
	if e.display != nil && e.timing.DisplayTick > 0 {
		s.display = e.clock.Every(e.timing.DisplayTick, func() {
			e.enqueueTask(func(context.Context) { s.onDisplay(gen) })
		})
	}
	e.logger.Debug("income scheduler started", "cps", e.state.Load().CPS)
}

func (s *incomeScheduler) stop() {
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
	if s.display != nil {
		s.display.Stop()
		s.display = nil
	}
	s.gen++
}

func (s *incomeScheduler) onTick(gen int) {
	if gen != s.gen {
		return
	}
	s.accrue(s.e.state.Load().CPS)
	s.ticks++
	if s.ticks >= s.e.timing.FlushEvery {
		s.ticks = 0
		s.commit()
	}
}

func (s *incomeScheduler) onDisplay(gen int) {
	if gen != s.gen || s.e.display == nil {
		return
	}
	st := s.e.state.Load()
	elapsed := s.e.clock.Now().Sub(s.lastUpdate).Seconds()
	s.e.display(st.Coins + s.pending + st.CPS*max(elapsed, 0))
}

// accrue charges the time since the last accrual at rate.
func (s *incomeScheduler) accrue(rate float64) {
	now := s.e.clock.Now()
	if elapsed := now.Sub(s.lastUpdate).Seconds(); elapsed > 0 && rate > 0 {
		s.pending += rate * elapsed
	}
	s.lastUpdate = now
}

// flush accrues up to now and commits the accumulator.
func (s *incomeScheduler) flush() {
	if s.running() {
		s.accrue(s.e.state.Load().CPS)
		s.ticks = 0
	}
	s.commit()
}

func (s *incomeScheduler) commit() {
	if s.pending <= 0 {
		return
	}
	amount := s.pending
	s.pending = 0
	s.e.apply(game.ApplyPassiveIncome{Amount: amount})
}

// abilityTicker advances ability timers while any ability is active or
// cooling down. Loop-confined.
type abilityTicker struct {
	e     *Engine
	timer Timer
	gen   int
	last  time.Time
}

func (t *abilityTicker) observe(s *game.GameState) {
	want := s.DataLoaded && s.AbilitiesBusy()
	switch {
	case want && t.timer == nil:
		t.start()
	case !want && t.timer != nil:
		t.stop()
	}
}

func (t *abilityTicker) start() {
	e := t.e
	t.gen++
	gen := t.gen
	t.last = e.clock.Now()
	t.timer = e.clock.Every(e.timing.AbilityTick, func() {
		e.enqueueTask(func(context.Context) { t.onTick(gen) })
	})
}

func (t *abilityTicker) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

func (t *abilityTicker) onTick(gen int) {
	if gen != t.gen {
		return
	}
	now := t.e.clock.Now()
	seconds := now.Sub(t.last).Seconds()
	t.last = now
	t.e.apply(game.TickAbilities{Seconds: seconds})
}
