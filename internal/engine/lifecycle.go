package engine

import (
	"context"

	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/persist"
	"github.com/roach88/minerush/internal/rules"
)

// Boot loads the saved game, applies offline progress and marks the state
// ready. A load failure falls back to the default state and is returned as
// a RuntimeError after the engine is ready; that state is never saved.
func (e *Engine) Boot(ctx context.Context) error {
	return e.call(ctx, func(ctx context.Context) error {
		var (
			loaded  *game.GameState
			bootErr error
		)
		if e.persist != nil {
			s, res, err := e.persist.Load(ctx, false)
			switch {
			case err != nil:
				e.logger.Error("load failed, starting fresh without saving", "error", err)
				bootErr = &RuntimeError{Code: ErrCodeLoad, Op: "boot", Err: err}
				e.loadFailed = true
			default:
				loaded = s
				e.logger.Info("snapshot loaded", "source", res.Source, "corrupt", res.Corrupt)
			}
			if res.RemoteErr != nil {
				e.logger.Warn("remote unavailable at boot", "error", res.RemoteErr)
				if loaded == nil {
					loaded = e.reducer.Initial()
				}
				loaded.ErrorMessage = persist.SaveResult{RemoteErr: res.RemoteErr}.Notice()
			}
		}
		if loaded == nil {
			loaded = e.reducer.Initial()
		}

		e.apply(game.Load{State: loaded})
		e.catchUp()
		e.booted = true
		return bootErr
	})
}

// Suspend prepares for the app being backgrounded: the pending save is
// cancelled, unflushed income is committed, timers stop and the state is
// saved immediately.
func (e *Engine) Suspend(ctx context.Context) error {
	return e.call(ctx, func(ctx context.Context) error {
		e.saver.CancelPending()
		e.income.flush()
		e.apply(game.SetReady{Ready: false})
		if !e.booted {
			return nil
		}
		return e.saveNow(ctx, false)
	})
}

// Resume marks the state ready again and credits offline progress since
// the last save.
func (e *Engine) Resume(ctx context.Context) error {
	return e.call(ctx, func(context.Context) error {
		if !e.booted || e.state.Load().DataLoaded {
			return nil
		}
		e.apply(game.SetReady{Ready: true})
		e.catchUp()
		return nil
	})
}

// ForceSync saves with a forced remote write and loads the remote copy if
// it turns out to be newer.
func (e *Engine) ForceSync(ctx context.Context) (persist.SyncResult, error) {
	var res persist.SyncResult
	err := e.call(ctx, func(ctx context.Context) error {
		if e.persist == nil {
			return nil
		}
		if e.loadFailed {
			return &RuntimeError{Code: ErrCodeLoad, Op: "sync", Err: errSaveBlocked}
		}
		e.income.flush()
		e.saver.CancelPending()
		e.saver.Take()

		newer, r, err := e.persist.ForceSync(ctx, e.state.Load())
		if err != nil {
			e.logger.Error("local save failed during sync", "error", err)
			return &RuntimeError{Code: ErrCodeLocalSave, Op: "sync", Err: err}
		}
		res = r
		e.markSaved(r.SaveResult)
		if newer != nil {
			e.logger.Info("loaded newer remote snapshot", "last_saved", newer.LastSaved)
			e.apply(game.Load{State: newer})
		}
		if r.RemoteErr != nil {
			return &RuntimeError{Code: ErrCodeRemoteSync, Op: "sync", Err: r.RemoteErr}
		}
		return nil
	})
	return res, err
}

// Shutdown stops every timer, commits unflushed income, saves and closes
// the queue. Dispatches after Shutdown are dropped.
func (e *Engine) Shutdown(ctx context.Context) error {
	err := e.call(ctx, func(ctx context.Context) error {
		e.income.flush()
		e.closing = true
		e.stopTimers()
		if !e.booted {
			return nil
		}
		return e.saveNow(ctx, false)
	})
	e.queue.Close()
	e.logger.Info("engine shut down")
	return err
}

// catchUp credits income earned while the game was not running.
func (e *Engine) catchUp() {
	s := e.state.Load()
	a, ok := rules.OfflineAction(s, e.clock.Now())
	if !ok {
		return
	}
	e.logger.Info("offline progress", "seconds", a.Seconds, "amount", a.Amount)
	e.apply(a)
}
