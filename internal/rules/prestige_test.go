package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minerush/internal/game"
)

func TestRebirthReward(t *testing.T) {
	assert.Equal(t, int64(0), RebirthReward(0))
	assert.Equal(t, int64(10), RebirthReward(1e9))
	assert.Equal(t, int64(22), RebirthReward(5e9))
	assert.Equal(t, int64(100), RebirthReward(1e11))
}

func TestRebirth_ResetsRunKeepsPrestige(t *testing.T) {
	r := newReducer()
	s := r.Initial()
	s.Coins = 5e9
	s.TotalCoinsEarned = 5e9
	s.TotalClicks = 42
	s.GoldCoins = 3
	s.Settings.Sound = false
	s.AutoMiners[0].Count = 7
	s.Rocks[1].Unlocked = true
	s.SelectedRock = "copper"
	s.Abilities[0].Owned = true
	s.Abilities[0].Active = true
	s.Abilities[0].TimeRemaining = 10
	own(s, "double_click")
	for _, id := range []string{"earned_1k", "earned_1m", "earned_1b"} {
		s.Achievements[s.AchievementIndex(id)].Unlocked = true
	}

	n, effects := apply(t, r, s, game.Rebirth{})

	assert.Zero(t, n.Coins)
	assert.Equal(t, 5e9, n.TotalCoinsEarned, "lifetime earnings never decrease")
	assert.Zero(t, n.TotalClicks)
	assert.Equal(t, int64(25), n.GoldCoins)
	assert.Equal(t, 1, n.Rebirths)
	assert.Zero(t, n.AutoMiners[0].Count)
	assert.False(t, n.Rocks[1].Unlocked)
	assert.Equal(t, "stone", n.SelectedRock)
	assert.False(t, n.Settings.Sound)

	_, owned := n.OwnsSpecial(game.SpecialDoubleClick)
	assert.True(t, owned)
	assert.Equal(t, game.AbilityReady, n.Abilities[0].Status())

	// +0.5 for the rebirth, +0.1 for first_rebirth.
	assert.InDelta(t, 1.6, n.BonusMultiplier, 1e-9)
	assert.InDelta(t, 1.6, n.CPC, 1e-9)
	assert.True(t, n.Achievements[n.AchievementIndex("first_rebirth")].Unlocked)
	assert.True(t, n.NeedsCloudSave)

	require.NotEmpty(t, effects)
	assert.Equal(t, game.Effect{Kind: game.EffectRebirth, Amount: 22}, effects[0])
}

func TestRebirth_Requirement(t *testing.T) {
	r := newReducer()
	s := r.Initial()
	s.Coins = 8e8
	s.TotalCoinsEarned = 8e8

	same, _ := r.Reduce(s, game.Rebirth{})
	assert.Same(t, s, same)

	own(s, "shortcut")
	assert.Equal(t, 7.5e8, RebirthRequirement(s))
	n, _ := apply(t, r, s, game.Rebirth{})
	assert.Equal(t, int64(8), n.GoldCoins)
}

func TestRebirth_ExactRequirement(t *testing.T) {
	r := newReducer()
	tests := []struct {
		name     string
		coins    float64
		accepted bool
	}{
		{"exactly_the_requirement", game.RebirthBaseRequirement, true},
		{"one_coin_short", game.RebirthBaseRequirement - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := r.Initial()
			s.Coins = tt.coins
			s.TotalCoinsEarned = tt.coins
			_, owned := s.OwnsSpecial(game.SpecialCheaperRebirth)
			require.False(t, owned)
			assert.Equal(t, 1e9, RebirthRequirement(s))
			assert.Equal(t, tt.accepted, CanRebirth(s))

			n, _ := r.Reduce(s, game.Rebirth{})
			if !tt.accepted {
				assert.Same(t, s, n)
				return
			}
			assert.Equal(t, 1, n.Rebirths)
			assert.Equal(t, int64(10), n.GoldCoins)
		})
	}
}

func TestEvaluateAchievements(t *testing.T) {
	s := newReducer().Initial()

	same, effects := EvaluateAchievements(s)
	assert.Same(t, s, same)
	assert.Empty(t, effects)

	s.AutoMiners[0].Count = 10
	n, effects := EvaluateAchievements(s)
	require.Len(t, effects, 1)
	assert.Equal(t, "miners_10", effects[0].ID)
	assert.Equal(t, 500.0, n.Coins)
	assert.False(t, s.Achievements[s.AchievementIndex("miners_10")].Unlocked)

	i := n.AchievementIndex("miners_10")
	assert.False(t, n.Achievements[i].Shown)
	r := newReducer()
	n, _ = apply(t, r, n, game.AcknowledgeAchievement{ID: "miners_10"})
	assert.True(t, n.Achievements[i].Shown)
}

func TestUnlockAchievement_Explicit(t *testing.T) {
	r := newReducer()
	s := r.Initial()
	s.TotalClicks = 150

	n, effects := apply(t, r, s, game.UnlockAchievement{ID: "clicks_100"})
	assert.True(t, n.Achievements[n.AchievementIndex("clicks_100")].Unlocked)
	assert.Equal(t, 100.0, n.Coins)
	require.Len(t, effects, 1)

	same, _ := r.Reduce(n, game.UnlockAchievement{ID: "clicks_100"})
	assert.Same(t, n, same)
}
