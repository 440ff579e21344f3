// Package rules implements the pure state transitions of minerush.
//
// Reduce is the single entry point that turns a snapshot and an action into
// the next snapshot plus a list of effects. It composes the derived-value
// calculator (cpc/cps), the achievement evaluator, the ability state
// machine and the prestige manager.
//
// CONTRACT:
//   - Reduce never panics, performs no I/O and starts no timers
//   - A rejected action (unaffordable, already owned, unknown id, out of
//     bounds) returns the input pointer unchanged and no effects
//   - An accepted action returns a new pointer; the input is never modified
//   - cpc and cps are recomputed whenever a contributing field changes
//
// Copy-on-write: a transition copies the GameState struct and clones only
// the catalog slices it modifies, so the click fast path shares every
// catalog with the previous snapshot.
package rules
