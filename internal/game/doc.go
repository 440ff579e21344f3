// Package game provides the data model of the minerush progression engine.
//
// This package contains type definitions only: the GameState snapshot, the
// catalog entry types it embeds, the Action sum type accepted by the reducer
// and the Effect records it emits. All other internal packages import game;
// game imports nothing internal.
//
// Key design constraints:
//   - GameState is replaced wholesale on every transition, never mutated in place
//   - cpc and cps are derived values and are recomputed, never trusted
//   - All JSON tags use camelCase to match the persisted snapshot schema
//   - Transient bookkeeping (readiness, dirty flags, notices) is never serialized
package game
