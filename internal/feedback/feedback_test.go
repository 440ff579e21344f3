package feedback

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minerush/internal/game"
)

type recordingPlayer struct {
	played []beep.Streamer
}

func (p *recordingPlayer) Play(s beep.Streamer) { p.played = append(p.played, s) }

// drain streams s to completion and returns the number of samples.
func drain(s beep.Streamer) (n int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		k, ok := s.Stream(buf)
		for i := 0; i < k; i++ {
			peak = max(peak, buf[i][0], -buf[i][0])
		}
		n += k
		if !ok || k == 0 {
			return n, peak
		}
	}
}

func TestCue_Length(t *testing.T) {
	cue := Cue(game.EffectComboCompleted)
	require.NotNil(t, cue)

	n, peak := drain(cue)
	assert.Equal(t, SampleRate.N(50*time.Millisecond)+SampleRate.N(80*time.Millisecond), n)
	assert.Greater(t, peak, 0.0)
	assert.LessOrEqual(t, peak, 0.4+1e-9)
}

func TestCue_SilentKinds(t *testing.T) {
	assert.Nil(t, Cue(game.EffectOfflineEarnings))
	assert.Nil(t, Cue(game.EffectSyncNotice))
}

func TestSoundSink_RespectsSetting(t *testing.T) {
	p := &recordingPlayer{}
	enabled := true
	sink := SoundSink{Player: p, Enabled: func() bool { return enabled }}

	sink.Notify(game.Effect{Kind: game.EffectPurchase})
	sink.Notify(game.Effect{Kind: game.EffectOfflineEarnings})
	assert.Len(t, p.played, 1)

	enabled = false
	sink.Notify(game.Effect{Kind: game.EffectPurchase})
	assert.Len(t, p.played, 1)
}

func TestLogSink_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sink := LogSink{Logger: logger}

	sink.Notify(game.Effect{Kind: game.EffectClick, Amount: 1})
	assert.Empty(t, buf.String(), "clicks are debug")

	sink.Notify(game.Effect{Kind: game.EffectAchievementUnlocked, ID: "clicks_100", Amount: 100})
	out := buf.String()
	assert.Contains(t, out, "kind=achievement_unlocked")
	assert.Contains(t, out, "id=clicks_100")

	buf.Reset()
	sink.Notify(game.Effect{Kind: game.EffectSyncNotice, Message: "cloud save failed"})
	assert.True(t, strings.Contains(buf.String(), "level=WARN"))
}

func TestMulti(t *testing.T) {
	var a, b []game.EffectKind
	sink := Multi(
		game.EffectSinkFunc(func(e game.Effect) { a = append(a, e.Kind) }),
		nil,
		game.EffectSinkFunc(func(e game.Effect) { b = append(b, e.Kind) }),
	)
	sink.Notify(game.Effect{Kind: game.EffectRebirth})

	assert.Equal(t, []game.EffectKind{game.EffectRebirth}, a)
	assert.Equal(t, a, b)
}
