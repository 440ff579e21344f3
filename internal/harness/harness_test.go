package harness

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"first_clicks", "suspend_resume"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_BootIsFirstTraceEvent(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "boot",
		Description: "boot only",
		Flow:        []FlowStep{{Advance: time.Second}},
		Assertions:  []Assertion{{Type: AssertFinalState, Expect: map[string]any{"data_loaded": true}}},
	})
	require.NoError(t, err)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, 0, result.Trace[0].Step)
	assert.Equal(t, "boot", result.Trace[0].Op)
	assert.Nil(t, result.Trace[1].Accepted, "only action steps report acceptance")
	require.NotNil(t, result.Stored, "shutdown always saves")
	assert.Zero(t, result.Stored.Coins)
}

func TestRun_ExpectationMismatchFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "too_poor",
		Description: "a miner cannot be bought with no coins",
		Flow: []FlowStep{
			{Action: "buy_auto_miner", ID: "helper", Expect: ExpectAccepted},
		},
		Assertions: []Assertion{{Type: AssertEffectCount, Kind: "purchase", Count: 0}},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected accepted, was rejected")
}

func TestRun_AssertionFailureReported(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "wrong_total",
		Description: "final state mismatch",
		Flow:        []FlowStep{{Action: "click", Repeat: 2}},
		Assertions: []Assertion{
			{Type: AssertFinalState, Expect: map[string]any{"coins": 3, "total_clicks": 2}},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "coins: expected 3, got 2")
}

func TestRun_RepeatReportsEveryRejection(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "one_helper",
		Description: "the second helper is unaffordable",
		Seed:        &Seed{Coins: 20},
		Flow: []FlowStep{
			{Action: "buy_auto_miner", ID: "helper", Repeat: 2},
		},
		Assertions: []Assertion{{Type: AssertFinalState, Expect: map[string]any{"miner.helper": 1}}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))

	accepted := result.Trace[1].Accepted
	require.NotNil(t, accepted)
	assert.False(t, *accepted)
	assert.Len(t, result.Trace[1].Effects, 1)
}

func TestRun_UnknownSeedEntry(t *testing.T) {
	_, err := Run(&Scenario{
		Name:        "bad_seed",
		Description: "seed names a miner the catalog does not have",
		Seed:        &Seed{Miners: map[string]int{"robot": 1}},
		Flow:        []FlowStep{{Advance: time.Second}},
		Assertions:  []Assertion{{Type: AssertEffectCount, Kind: "click"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown auto-miner "robot"`)
}

func TestRun_SeedAwayCreditsOfflineProgress(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "away",
		Description: "boot after an hour away",
		Seed: &Seed{
			Miners:       map[string]int{"driller": 2},
			Achievements: []string{"earned_1k"},
			Away:         time.Hour,
		},
		Flow:        []FlowStep{{Lifecycle: LifecycleSync}},
		Assertions: []Assertion{
			{Type: AssertFinalState, Expect: map[string]any{"coins": 8 * 3600}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))

	boot := result.Trace[0].Effects
	require.NotEmpty(t, boot)
	assert.Equal(t, "offline_earnings", string(boot[0].Kind))
	assert.Equal(t, "away for 1h0m0s", boot[0].Message)
}
