package engine

import (
	"sort"
	"sync"
	"time"
)

// Clock is the engine's source of wall-clock time and timers.
//
// Timer callbacks run on the clock's goroutine, never on the engine loop;
// the engine's callbacks only enqueue tasks. ManualClock makes every timer
// deterministic for tests.
type Clock interface {
	Now() time.Time
	// Every calls fn every d until the returned Timer is stopped.
	Every(d time.Duration, fn func()) Timer
	// AfterFunc calls fn once after d unless the Timer is stopped first.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels future calls. It is safe to call more than once.
	Stop()
}

// RealClock is the production Clock backed by package time.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// Every implements Clock with a time.Ticker.
func (RealClock) Every(d time.Duration, fn func()) Timer {
	t := &realTicker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				fn()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

// AfterFunc implements Clock with time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{time.AfterFunc(d, fn)}
}

type realTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *realTicker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

type realTimer struct{ t *time.Timer }

func (t realTimer) Stop() { t.t.Stop() }

// ManualClock is a virtual clock that moves only when Advance is called.
//
// Due timers fire inside Advance in deadline order (ties in creation
// order), with Now() reading each timer's deadline while it fires.
//
// Thread-safety: All methods are safe for concurrent use; callbacks run
// without the lock held.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
	nextID int64
}

type manualTimer struct {
	clock   *ManualClock
	id      int64
	when    time.Time
	period  time.Duration // 0 for one-shot
	fn      func()
	stopped bool
}

// NewManualClock creates a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current virtual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Every implements Clock.
func (c *ManualClock) Every(d time.Duration, fn func()) Timer {
	return c.add(d, d, fn)
}

// AfterFunc implements Clock.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	return c.add(d, 0, fn)
}

func (c *ManualClock) add(d, period time.Duration, fn func()) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, when: c.now.Add(d), period: period, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Stop implements Timer.
func (t *manualTimer) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	t.stopped = true
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

// Pending returns the number of scheduled timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by d, firing every timer that falls due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool {
			if c.timers[i].when.Equal(c.timers[j].when) {
				return c.timers[i].id < c.timers[j].id
			}
			return c.timers[i].when.Before(c.timers[j].when)
		})
		if len(c.timers) == 0 || c.timers[0].when.After(target) {
			c.now = target
			c.mu.Unlock()
			return
		}

		t := c.timers[0]
		c.now = t.when
		if t.period > 0 {
			t.when = t.when.Add(t.period)
		} else {
			c.timers = c.timers[1:]
		}
		fn := t.fn
		c.mu.Unlock()

		fn()
	}
}
