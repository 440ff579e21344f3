package tui

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/minerush/internal/display"
	"github.com/roach88/minerush/internal/engine"
	"github.com/roach88/minerush/internal/game"
)

// App runs the terminal front end against an engine.
type App struct {
	screen tcell.Screen
	eng    *engine.Engine
	format display.Formatter
	logger *slog.Logger

	coins  atomic.Uint64 // float64 bits of the smoothed balance
	smooth atomic.Bool   // set once the display loop has reported

	mu     sync.Mutex
	status string
}

// New creates an App on an initialized screen. Attach the engine before
// Run; the engine should be built with engine.WithDisplay(app.ShowCoins).
func New(screen tcell.Screen, logger *slog.Logger) *App {
	return &App{screen: screen, format: display.Default, logger: logger}
}

// Attach sets the engine the App drives.
func (a *App) Attach(eng *engine.Engine) { a.eng = eng }

// ShowCoins records the smoothed balance and requests a redraw. It is the
// engine's display callback.
func (a *App) ShowCoins(v float64) {
	a.coins.Store(math.Float64bits(v))
	a.smooth.Store(true)
	a.redraw()
}

func (a *App) setStatus(msg string) {
	a.mu.Lock()
	a.status = msg
	a.mu.Unlock()
	a.redraw()
}

func (a *App) redraw() {
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run draws and handles input until the player quits or ctx is done.
// The engine loop must be running on another goroutine.
func (a *App) Run(ctx context.Context) error {
	cancel := a.eng.Subscribe(func(*game.GameState) { a.redraw() })
	defer cancel()

	go func() {
		<-ctx.Done()
		a.redraw()
	}()

	a.draw()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch ev := a.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			a.screen.Sync()
			a.draw()
		case *tcell.EventInterrupt:
			a.draw()
		case *tcell.EventKey:
			if a.handleKey(ctx, ev) {
				return nil
			}
		}
	}
}

// handleKey returns true when the player quits.
func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	action, cmd := ActionForKey(a.eng.Snapshot(), ev)
	switch cmd {
	case CmdQuit:
		return true
	case CmdPause:
		go a.togglePause(ctx)
	case CmdSync:
		go a.sync(ctx)
	}
	if action != nil {
		// A purchase lowers the balance; show committed coins until the
		// display loop reports again.
		a.smooth.Store(false)
		a.eng.Dispatch(action)
	}
	return false
}

func (a *App) togglePause(ctx context.Context) {
	var err error
	if a.eng.Snapshot().DataLoaded {
		err = a.eng.Suspend(ctx)
	} else {
		err = a.eng.Resume(ctx)
	}
	if err != nil {
		a.logger.Warn("pause toggle failed", "error", err)
		a.setStatus(err.Error())
	}
}

func (a *App) sync(ctx context.Context) {
	a.setStatus("syncing...")
	res, err := a.eng.ForceSync(ctx)
	if err != nil && !engine.IsRecoverable(err) {
		a.setStatus("sync failed: " + err.Error())
		return
	}
	a.setStatus(res.Message())
}

func (a *App) draw() {
	s := a.eng.Snapshot()
	coins := s.Coins
	if a.smooth.Load() {
		coins = math.Max(coins, math.Float64frombits(a.coins.Load()))
	}
	a.mu.Lock()
	status := a.status
	a.mu.Unlock()
	Draw(a.screen, Lines(s, coins, status, a.format))
}
