package engine

import (
	"context"
	"time"

	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/persist"
)

// SaveReason says how urgently a change should reach storage.
type SaveReason int

const (
	// SaveLight covers settings and selection changes.
	SaveLight SaveReason = iota + 1
	// SaveSignificant covers purchases, evolutions, prestige and
	// achievements; it also requests a remote write.
	SaveSignificant
)

// String returns the reason name for logging.
func (r SaveReason) String() string {
	switch r {
	case SaveLight:
		return "light"
	case SaveSignificant:
		return "significant"
	default:
		return "none"
	}
}

// Saver debounces save requests onto a single timer.
//
// The first request arms the timer with its reason's delay; later
// requests only mark the pending save dirty and raise its reason, so a
// burst of changes produces one save. When the timer fires, fire is called
// on the clock's goroutine and must only enqueue work.
//
// Saver is not safe for concurrent use; the engine calls it from its loop.
type Saver struct {
	clock       Clock
	light       time.Duration
	significant time.Duration
	fire        func()

	timer  Timer
	dirty  int
	reason SaveReason
}

// NewSaver creates a Saver with the given delays.
func NewSaver(clock Clock, light, significant time.Duration, fire func()) *Saver {
	return &Saver{clock: clock, light: light, significant: significant, fire: fire}
}

// ScheduleSave records a change. It arms the timer unless a save is
// already pending.
func (s *Saver) ScheduleSave(reason SaveReason) {
	s.dirty++
	s.reason = max(s.reason, reason)
	if s.timer != nil {
		return
	}
	delay := s.light
	if reason == SaveSignificant {
		delay = s.significant
	}
	s.timer = s.clock.AfterFunc(delay, s.fire)
}

// CancelPending stops the timer. Requests already recorded stay dirty
// until Take. Returns true if a timer was stopped.
func (s *Saver) CancelPending() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	return true
}

// Pending reports whether a timer is armed.
func (s *Saver) Pending() bool { return s.timer != nil }

// Take consumes the recorded requests. It returns the strongest reason
// and the number of coalesced requests, or ok false if nothing was
// requested since the last Take.
func (s *Saver) Take() (reason SaveReason, coalesced int, ok bool) {
	s.timer = nil
	if s.dirty == 0 {
		return 0, 0, false
	}
	reason, coalesced = s.reason, s.dirty
	s.dirty, s.reason = 0, 0
	return reason, coalesced, true
}

// saveDue runs when the debounce timer fires.
func (e *Engine) saveDue(ctx context.Context) {
	reason, coalesced, ok := e.saver.Take()
	if !ok {
		return
	}
	e.logger.Debug("debounced save", "reason", reason, "coalesced", coalesced)
	if err := e.saveNow(ctx, false); err != nil {
		// Already logged and, when recoverable, shown as the notice.
		e.logger.Debug("debounced save incomplete", "reason", reason, "error", err)
	}
}

// saveNow writes the current state, consuming any pending request.
// CRITICAL: Called only on the loop.
func (e *Engine) saveNow(ctx context.Context, force bool) error {
	if e.persist == nil {
		return nil
	}
	e.saver.CancelPending()
	e.saver.Take()
	if e.loadFailed {
		e.logger.Warn("save skipped, stored snapshot was unreadable at boot")
		return &RuntimeError{Code: ErrCodeLoad, Op: "save", Err: errSaveBlocked}
	}

	res, err := e.persist.Save(ctx, e.state.Load(), force)
	if err != nil {
		e.logger.Error("local save failed", "error", err)
		return &RuntimeError{Code: ErrCodeLocalSave, Op: "save", Err: err}
	}
	e.markSaved(res)
	e.logger.Debug("saved", "version", res.Version, "remote", res.Remote)

	if res.RemoteErr != nil {
		e.logger.Warn("remote save failed", "error", res.RemoteErr)
		return &RuntimeError{Code: ErrCodeRemoteSync, Op: "save", Err: res.RemoteErr}
	}
	return nil
}

func (e *Engine) markSaved(res persist.SaveResult) {
	e.apply(game.MarkSaved{
		LastSaved:   res.LastSaved,
		Version:     res.Version,
		Notice:      res.Notice(),
		CloudFailed: res.RemoteErr != nil,
	})
}
