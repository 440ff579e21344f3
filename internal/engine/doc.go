// Package engine runs the game on a single-writer event loop.
//
// The engine owns the current snapshot. Every change goes through the
// reducer on one goroutine: UI dispatches, income ticks, ability ticks,
// debounced saves and lifecycle steps are all queued as events and
// processed in FIFO order.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Callers enqueue; Run (or Drain, in tests) dequeues one event at a time.
// An action event is reduced, the new snapshot is published, effects go
// to the sink, and the schedulers are reconciled with the new state. A
// task event runs engine work (a timer tick, a save) on the loop.
//
// Timers:
// All timers come from an injected Clock. Timer callbacks never touch
// state; they only enqueue a task. ManualClock makes a whole session
// reproducible: Advance fires due timers, Drain processes what they
// queued.
//
// Persistence:
// The engine never blocks a dispatch on I/O. Saves are debounced by the
// Saver and run on the loop; failures are logged and surfaced through the
// snapshot's notice field.
package engine
