package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minerush/internal/catalog"
	"github.com/roach88/minerush/internal/game"
)

var sampleEffects = []game.Effect{
	{Kind: game.EffectPurchase, ID: "helper", Amount: 15},
	{Kind: game.EffectClick, Amount: 1},
	{Kind: game.EffectClick, Amount: 1},
	{Kind: game.EffectAchievementUnlocked, ID: "clicks_100", Amount: 100, Message: "Warmed Up"},
}

func amount(v float64) *float64 { return &v }

func TestAssertEffectContains(t *testing.T) {
	assert.NoError(t, assertEffectContains(sampleEffects, Assertion{Kind: "click"}))
	assert.NoError(t, assertEffectContains(sampleEffects, Assertion{Kind: "purchase", ID: "helper", Amount: amount(15)}))

	err := assertEffectContains(sampleEffects, Assertion{Kind: "purchase", ID: "driller"})
	require.Error(t, err)
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "purchase driller", aerr.Expected)
	assert.Contains(t, err.Error(), `achievement_unlocked clicks_100 100 "Warmed Up"`)

	assert.Error(t, assertEffectContains(sampleEffects, Assertion{Kind: "click", Amount: amount(2)}))
}

func TestAssertEffectOrder(t *testing.T) {
	assert.NoError(t, assertEffectOrder(sampleEffects, Assertion{Kinds: []string{"purchase", "click", "achievement_unlocked"}}))
	assert.NoError(t, assertEffectOrder(sampleEffects, Assertion{Kinds: []string{"click", "click"}}))

	err := assertEffectOrder(sampleEffects, Assertion{Kinds: []string{"click", "purchase"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no purchase after position")

	assert.Error(t, assertEffectOrder(sampleEffects, Assertion{Kinds: []string{"click", "click", "click"}}))
}

func TestAssertEffectCount(t *testing.T) {
	assert.NoError(t, assertEffectCount(sampleEffects, Assertion{Kind: "click", Count: 2}))
	assert.NoError(t, assertEffectCount(sampleEffects, Assertion{Kind: "rebirth", Count: 0}))

	err := assertEffectCount(sampleEffects, Assertion{Kind: "click", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 occurrences")
}

func TestAssertState(t *testing.T) {
	s := catalog.Default().NewState()
	s.Coins = 12.5
	s.GoldCoins = 3
	s.AutoMiners[s.AutoMinerIndex("helper")].Count = 4

	assert.NoError(t, assertState(AssertFinalState, s, map[string]any{
		"coins":                  12.5,
		"gold_coins":             3,
		"miner.helper":           4,
		"selected_rock":          "stone",
		"pickaxe.wooden_pickaxe": true,
	}))

	err := assertState(AssertFinalState, s, map[string]any{"coins": 12, "miner.helper": 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coins: expected 12, got 12.5")
	assert.Contains(t, err.Error(), "miner.helper: expected 5, got 4")

	err = assertState(AssertStoredState, nil, map[string]any{"coins": 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none")

	err = assertState(AssertFinalState, s, map[string]any{"miner.robot": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown miner "robot"`)
}

func TestStateValue(t *testing.T) {
	s := catalog.Default().NewState()
	i := s.AbilityIndex("click_frenzy")
	s.Abilities[i].Owned = true
	s.Abilities[i].CooldownRemaining = 10

	tests := []struct {
		path string
		want any
	}{
		{"coins", 0.0},
		{"rebirths", 0},
		{"miners_owned", 0},
		{"rock.stone", true},
		{"rock.copper", false},
		{"special.double_click", 0},
		{"ability.click_frenzy", "cooldown"},
		{"ability.motherlode", "purchasable"},
		{"ability_level.click_frenzy", 1},
		{"achievement.clicks_100", false},
		{"evolution.helper", 0},
		{"setting.sound", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := StateValue(s, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := StateValue(s, "wealth")
	assert.Error(t, err)
	_, err = StateValue(s, "setting.music")
	assert.Error(t, err)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(3, 3.0))
	assert.True(t, valuesEqual(1.6, 1.5+0.1))
	assert.True(t, valuesEqual(131, 131.0000001))
	assert.True(t, valuesEqual("ready", "ready"))
	assert.True(t, valuesEqual(true, true))

	assert.False(t, valuesEqual(3, 3.1))
	assert.False(t, valuesEqual("3", 3.0))
	assert.False(t, valuesEqual(true, 1))
}
