package harness

import "github.com/roach88/minerush/internal/game"

// TraceEvent records one executed step and the effects it produced.
// Step 0 is the boot that precedes the flow.
type TraceEvent struct {
	Step int    `json:"step"`
	Op   string `json:"op"`
	// Accepted is set for action steps: true when every repetition
	// changed the state.
	Accepted *bool         `json:"accepted,omitempty"`
	Effects  []game.Effect `json:"effects,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, boot first.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the published state after the last step.
	Final *game.GameState `json:"-"`

	// Stored is the snapshot held by local storage after shutdown, or nil
	// if nothing was ever saved.
	Stored *game.GameState `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Effects returns every effect in the trace in emission order.
func (r *Result) Effects() []game.Effect {
	var out []game.Effect
	for _, ev := range r.Trace {
		out = append(out, ev.Effects...)
	}
	return out
}
