// Package harness runs gameplay scenarios against the engine.
//
// A scenario boots a real engine on a virtual clock with in-memory local
// storage, executes a flow of player actions, clock advances and lifecycle
// transitions, and validates the emitted effects and the resulting state.
// Effects are recorded per step so whole runs can be compared against
// golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	seed:
//	  coins: 500
//	  miners: {helper: 2}
//	  away: 2m
//	flow:
//	  - action: click
//	    repeat: 10
//	  - action: buy_auto_miner
//	    id: driller
//	    expect: rejected
//	  - advance: 30s
//	  - lifecycle: suspend
//	assertions:
//	  - type: effect_contains
//	    kind: offline_earnings
//	    amount: 120
//	  - type: final_state
//	    expect: {coins: 130, miner.helper: 2}
//
// # Assertion Types
//
//   - effect_contains: an effect of the kind (and id, amount) was emitted
//   - effect_order: effect kinds appear in the given order
//   - effect_count: an effect kind appears exactly N times
//   - final_state: state paths of the final in-memory state match
//   - stored_state: state paths of the snapshot left in storage match
//
// State paths are listed on StateValue.
//
// # Deterministic Testing
//
// Every scenario boots at Start on a manual clock, with a fixed session id
// and a fixed lucky-click roll unless a click step sets one. Clock advances
// fire timers one income tick at a time, so passive income, ability timers
// and debounced saves behave as they do under a running event loop.
package harness
