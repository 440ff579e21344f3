package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: test_scenario
description: "Test scenario for validation"
seed:
  coins: 100
  miners: {helper: 2}
  away: 90s
flow:
  - action: click
    repeat: 3
  - action: buy_auto_miner
    id: Helper
    expect: accepted
  - advance: 1m30s
  - lifecycle: suspend
assertions:
  - type: effect_contains
    kind: click
  - type: final_state
    expect:
      coins: 5
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", s.Name)
	require.NotNil(t, s.Seed)
	assert.Equal(t, 100.0, s.Seed.Coins)
	assert.Equal(t, 2, s.Seed.Miners["helper"])
	assert.Equal(t, 90*time.Second, s.Seed.Away)

	require.Len(t, s.Flow, 4)
	assert.Equal(t, 3, s.Flow[0].Repeat)
	assert.Equal(t, ExpectAccepted, s.Flow[1].Expect)
	assert.Equal(t, 90*time.Second, s.Flow[2].Advance)
	assert.Equal(t, LifecycleSuspend, s.Flow[3].Lifecycle)
	assert.Equal(t, 5, s.Assertions[1].Expect["coins"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: misspelled assertions key
flow:
  - action: click
assertion:
  - type: effect_count
    kind: click
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nflow: [{action: click}]\nassertions: [{type: effect_count, kind: click}]",
			want: "name is required",
		},
		{
			name: "empty flow",
			yaml: "name: n\ndescription: d\nflow: []\nassertions: [{type: effect_count, kind: click}]",
			want: "flow list is required",
		},
		{
			name: "two step kinds",
			yaml: "name: n\ndescription: d\nflow: [{action: click, advance: 1s}]\nassertions: [{type: effect_count, kind: click}]",
			want: "exactly one of action, advance or lifecycle",
		},
		{
			name: "unknown action",
			yaml: "name: n\ndescription: d\nflow: [{action: dig}]\nassertions: [{type: effect_count, kind: click}]",
			want: `unknown action "dig"`,
		},
		{
			name: "missing id",
			yaml: "name: n\ndescription: d\nflow: [{action: buy_upgrade}]\nassertions: [{type: effect_count, kind: click}]",
			want: "buy_upgrade requires id",
		},
		{
			name: "roll out of range",
			yaml: "name: n\ndescription: d\nflow: [{action: click, roll: 1.5}]\nassertions: [{type: effect_count, kind: click}]",
			want: "roll must be in [0,1)",
		},
		{
			name: "bad expect",
			yaml: "name: n\ndescription: d\nflow: [{action: click, expect: maybe}]\nassertions: [{type: effect_count, kind: click}]",
			want: "expect must be",
		},
		{
			name: "unknown setting",
			yaml: "name: n\ndescription: d\nflow: [{action: set_setting, setting: music, enabled: true}]\nassertions: [{type: effect_count, kind: click}]",
			want: `unknown setting "music"`,
		},
		{
			name: "unknown lifecycle",
			yaml: "name: n\ndescription: d\nflow: [{lifecycle: hibernate}]\nassertions: [{type: effect_count, kind: click}]",
			want: `unknown lifecycle "hibernate"`,
		},
		{
			name: "unknown assertion",
			yaml: "name: n\ndescription: d\nflow: [{action: click}]\nassertions: [{type: trace_contains}]",
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "final state without expect",
			yaml: "name: n\ndescription: d\nflow: [{action: click}]\nassertions: [{type: final_state}]",
			want: "expect is required for final_state",
		},
		{
			name: "order without kinds",
			yaml: "name: n\ndescription: d\nflow: [{action: click}]\nassertions: [{type: effect_order}]",
			want: "kinds list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStepLabel(t *testing.T) {
	on := true
	assert.Equal(t, "click x10", stepLabel(&FlowStep{Action: "click", Repeat: 10}))
	assert.Equal(t, "buy_auto_miner helper", stepLabel(&FlowStep{Action: "buy_auto_miner", ID: "helper"}))
	assert.Equal(t, "set_setting sound=true", stepLabel(&FlowStep{Action: "set_setting", Setting: "sound", Enabled: &on}))
	assert.Equal(t, "advance 2m0s", stepLabel(&FlowStep{Advance: 2 * time.Minute}))
	assert.Equal(t, "restart", stepLabel(&FlowStep{Lifecycle: LifecycleRestart}))
}
