package feedback

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/roach88/minerush/internal/game"
)

// SampleRate is the rate every cue is synthesized at.
const SampleRate = beep.SampleRate(44100)

// Player plays a finished streamer without blocking.
type Player interface {
	Play(s beep.Streamer)
}

// tone is one note of a cue.
type tone struct {
	freq     float64
	duration time.Duration
	volume   float64 // linear gain, 0..1
}

// cues maps effect kinds to the notes played for them. Kinds without an
// entry are silent.
var cues = map[game.EffectKind][]tone{
	game.EffectClick:               {{freq: 880, duration: 25 * time.Millisecond, volume: 0.2}},
	game.EffectLuckyClick:          {{freq: 1320, duration: 60 * time.Millisecond, volume: 0.4}},
	game.EffectComboCompleted:      {{freq: 660, duration: 50 * time.Millisecond, volume: 0.4}, {freq: 990, duration: 80 * time.Millisecond, volume: 0.4}},
	game.EffectPurchase:            {{freq: 523, duration: 70 * time.Millisecond, volume: 0.5}},
	game.EffectEvolved:             {{freq: 392, duration: 80 * time.Millisecond, volume: 0.5}, {freq: 784, duration: 120 * time.Millisecond, volume: 0.5}},
	game.EffectAbilityActivated:    {{freq: 440, duration: 60 * time.Millisecond, volume: 0.5}, {freq: 880, duration: 60 * time.Millisecond, volume: 0.5}},
	game.EffectAbilityReady:        {{freq: 1046, duration: 90 * time.Millisecond, volume: 0.3}},
	game.EffectAchievementUnlocked: {{freq: 523, duration: 80 * time.Millisecond, volume: 0.5}, {freq: 659, duration: 80 * time.Millisecond, volume: 0.5}, {freq: 784, duration: 160 * time.Millisecond, volume: 0.5}},
	game.EffectRebirth:             {{freq: 262, duration: 200 * time.Millisecond, volume: 0.6}, {freq: 523, duration: 300 * time.Millisecond, volume: 0.6}},
}

// SoundSink plays a cue per effect while Enabled reports true. Enabled is
// usually bound to the snapshot's sound setting.
type SoundSink struct {
	Player  Player
	Enabled func() bool
}

// Notify implements game.EffectSink.
func (s SoundSink) Notify(e game.Effect) {
	if s.Player == nil || (s.Enabled != nil && !s.Enabled()) {
		return
	}
	if cue := Cue(e.Kind); cue != nil {
		s.Player.Play(cue)
	}
}

// Cue returns the synthesized cue for kind, or nil if kind is silent.
func Cue(kind game.EffectKind) beep.Streamer {
	notes := cues[kind]
	if len(notes) == 0 {
		return nil
	}
	parts := make([]beep.Streamer, len(notes))
	for i, n := range notes {
		parts[i] = note(n)
	}
	return beep.Seq(parts...)
}

// note renders one tone at its length and gain.
func note(n tone) beep.Streamer {
	length := SampleRate.N(n.duration)
	src, err := generators.SineTone(SampleRate, n.freq)
	if err != nil {
		return beep.Silence(length)
	}
	return volume(beep.Take(length, src), n.volume)
}

func volume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// Speaker plays cues on the default audio device through a mixer so
// overlapping cues do not cut each other off.
type Speaker struct {
	mixer *beep.Mixer
}

var speakerOnce sync.Once

// NewSpeaker initializes the audio device. It may only succeed once per
// process; later calls reuse the device.
func NewSpeaker() (*Speaker, error) {
	var err error
	sp := &Speaker{mixer: &beep.Mixer{}}
	speakerOnce.Do(func() {
		err = speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond))
	})
	if err != nil {
		return nil, err
	}
	speaker.Play(sp.mixer)
	return sp, nil
}

// Play implements Player.
func (s *Speaker) Play(st beep.Streamer) {
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close releases the audio device.
func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}
