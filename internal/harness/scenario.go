package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a gameplay scenario.
// Scenarios boot an engine on a virtual clock, execute a flow of actions,
// clock advances and lifecycle transitions, and assert on the resulting
// effect trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed is an optional saved game present in local storage at boot.
	// Without a seed the engine boots into the default state.
	Seed *Seed `yaml:"seed,omitempty"`

	// Flow contains the steps to execute in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	// Supported types: effect_contains, effect_order, effect_count,
	// final_state, stored_state
	Assertions []Assertion `yaml:"assertions"`
}

// Seed describes progress stored before the engine boots. Fields left
// empty keep the catalog defaults.
type Seed struct {
	Coins            float64 `yaml:"coins,omitempty"`
	TotalCoinsEarned float64 `yaml:"total_coins_earned,omitempty"`
	GoldCoins        int64   `yaml:"gold_coins,omitempty"`
	TotalClicks      int64   `yaml:"total_clicks,omitempty"`
	Rebirths         int     `yaml:"rebirths,omitempty"`

	// Miners maps auto-miner ids to owned counts.
	Miners map[string]int `yaml:"miners,omitempty"`
	// Pickaxes lists owned pickaxes; the last one is selected.
	Pickaxes []string `yaml:"pickaxes,omitempty"`
	// Rocks lists unlocked rocks; the last one is selected.
	Rocks []string `yaml:"rocks,omitempty"`
	// Specials maps special upgrade ids to levels.
	Specials map[string]int `yaml:"specials,omitempty"`
	// Abilities maps owned ability ids to levels.
	Abilities map[string]int `yaml:"abilities,omitempty"`
	// Achievements lists achievements already unlocked and shown.
	Achievements []string `yaml:"achievements,omitempty"`

	// Away backdates lastSaved so boot credits offline progress.
	Away time.Duration `yaml:"away,omitempty"`
	// OfflineProgress overrides the offline progress setting.
	OfflineProgress *bool `yaml:"offline_progress,omitempty"`
}

// FlowStep is one step of the flow. Exactly one of Action, Advance and
// Lifecycle is set.
type FlowStep struct {
	// Action is a player action name (e.g. "click", "buy_auto_miner").
	Action string `yaml:"action,omitempty"`

	// ID is the catalog entry the action targets.
	ID string `yaml:"id,omitempty"`

	// Roll is the lucky-click sample of a click. Zero lets the engine roll.
	Roll float64 `yaml:"roll,omitempty"`

	// Setting and Enabled parameterize set_setting.
	Setting string `yaml:"setting,omitempty"`
	Enabled *bool  `yaml:"enabled,omitempty"`

	// Repeat dispatches the action this many times (default 1).
	Repeat int `yaml:"repeat,omitempty"`

	// Expect is "accepted" or "rejected". Empty skips the check.
	Expect string `yaml:"expect,omitempty"`

	// Advance moves the virtual clock forward, firing due timers.
	Advance time.Duration `yaml:"advance,omitempty"`

	// Lifecycle is one of suspend, resume, sync or restart.
	Lifecycle string `yaml:"lifecycle,omitempty"`
}

// Assertion validates the effect trace or a state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "effect_contains": an effect of Kind (and ID, Amount if set) was emitted
	// - "effect_order": Kinds were emitted in order, not necessarily adjacent
	// - "effect_count": Kind was emitted exactly Count times
	// - "final_state": fields of the final in-memory state match Expect
	// - "stored_state": fields of the locally stored snapshot match Expect
	Type string `yaml:"type"`

	Kind   string   `yaml:"kind,omitempty"`
	ID     string   `yaml:"id,omitempty"`
	Amount *float64 `yaml:"amount,omitempty"`
	Count  int      `yaml:"count,omitempty"`
	Kinds  []string `yaml:"kinds,omitempty"`

	// Expect maps state paths (see StateValue) to expected values.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertEffectContains = "effect_contains"
	AssertEffectOrder    = "effect_order"
	AssertEffectCount    = "effect_count"
	AssertFinalState     = "final_state"
	AssertStoredState    = "stored_state"
)

// Lifecycle step names.
const (
	LifecycleSuspend = "suspend"
	LifecycleResume  = "resume"
	LifecycleSync    = "sync"
	LifecycleRestart = "restart"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Seed != nil && s.Seed.Away < 0 {
		return fmt.Errorf("seed.away must be non-negative")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *FlowStep) error {
	set := 0
	if step.Action != "" {
		set++
	}
	if step.Advance != 0 {
		set++
	}
	if step.Lifecycle != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("flow[%d]: exactly one of action, advance or lifecycle is required", index)
	}

	switch {
	case step.Action != "":
		if _, err := buildAction(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", index, err)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("flow[%d]: repeat must be non-negative", index)
		}
		switch step.Expect {
		case "", ExpectAccepted, ExpectRejected:
		default:
			return fmt.Errorf("flow[%d]: expect must be %q or %q, got %q",
				index, ExpectAccepted, ExpectRejected, step.Expect)
		}
	case step.Advance < 0:
		return fmt.Errorf("flow[%d]: advance must be positive", index)
	case step.Lifecycle != "":
		switch step.Lifecycle {
		case LifecycleSuspend, LifecycleResume, LifecycleSync, LifecycleRestart:
		default:
			return fmt.Errorf("flow[%d]: unknown lifecycle %q", index, step.Lifecycle)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEffectContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for effect_contains", index)
		}
	case AssertEffectOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for effect_order", index)
		}
	case AssertEffectCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for effect_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for effect_count", index)
		}
	case AssertFinalState, AssertStoredState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
