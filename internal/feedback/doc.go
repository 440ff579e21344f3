// Package feedback turns reducer effects into player-facing feedback.
//
// Sinks implement game.EffectSink. LogSink writes effects to a structured
// logger, SoundSink plays a short synthesized cue per effect kind, and
// Multi fans one effect out to several sinks. Nothing in the engine waits
// on a sink.
package feedback
