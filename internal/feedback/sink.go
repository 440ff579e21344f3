package feedback

import (
	"context"
	"log/slog"

	"github.com/roach88/minerush/internal/game"
)

// Multi returns a sink that notifies each non-nil sink in order.
func Multi(sinks ...game.EffectSink) game.EffectSink {
	var live []game.EffectSink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return game.EffectSinkFunc(func(e game.Effect) {
		for _, s := range live {
			s.Notify(e)
		}
	})
}

// LogSink logs every effect. Clicks are frequent and logged at debug
// level; everything else at info.
type LogSink struct {
	Logger *slog.Logger
}

// Notify implements game.EffectSink.
func (l LogSink) Notify(e game.Effect) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo
	if e.Kind == game.EffectClick {
		level = slog.LevelDebug
	}
	if e.Kind == game.EffectSyncNotice {
		level = slog.LevelWarn
	}

	attrs := []any{"kind", e.Kind}
	if e.ID != "" {
		attrs = append(attrs, "id", e.ID)
	}
	if e.Amount != 0 {
		attrs = append(attrs, "amount", e.Amount)
	}
	if e.Message != "" {
		attrs = append(attrs, "message", e.Message)
	}
	logger.Log(context.Background(), level, "effect", attrs...)
}
