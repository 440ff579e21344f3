package rules

import (
	"math"

	"github.com/roach88/minerush/internal/game"
)

// RebirthRequirement returns the coin balance needed to rebirth, reduced
// when a cheaper_rebirth special is owned.
func RebirthRequirement(s *game.GameState) float64 {
	req := float64(game.RebirthBaseRequirement)
	if su, ok := s.OwnsSpecial(game.SpecialCheaperRebirth); ok && su.Magnitude > 0 && su.Magnitude < 1 {
		req *= 1 - su.Magnitude
	}
	return req
}

// RebirthReward returns the gold paid for a rebirth after totalEarned
// lifetime coins: floor(10 * sqrt(totalEarned / 1e9)).
func RebirthReward(totalEarned float64) int64 {
	if totalEarned <= 0 {
		return 0
	}
	return int64(math.Floor(10 * math.Sqrt(totalEarned/game.RebirthBaseRequirement)))
}

// CanRebirth reports whether the coin balance meets the requirement.
func CanRebirth(s *game.GameState) bool {
	return s.Coins >= RebirthRequirement(s)
}

// rebirth resets run progress to the default snapshot. Gold, rebirth
// count, bonus multiplier, achievements, special upgrades, owned abilities
// and settings carry over; abilities return to ready. totalCoinsEarned is
// a lifetime counter and carries over too.
func (r *Reducer) rebirth(s *game.GameState) (*game.GameState, []game.Effect) {
	if !CanRebirth(s) {
		return s, nil
	}

	reward := RebirthReward(s.TotalCoinsEarned)
	n := r.Initial()
	n.TotalCoinsEarned = s.TotalCoinsEarned
	n.GoldCoins = s.GoldCoins + reward
	n.Rebirths = s.Rebirths + 1
	n.BonusMultiplier = s.BonusMultiplier + game.RebirthBonusIncrement
	n.Achievements = append([]game.Achievement(nil), s.Achievements...)
	n.SpecialUpgrades = append([]game.SpecialUpgrade(nil), s.SpecialUpgrades...)
	n.Abilities = append([]game.Ability(nil), s.Abilities...)
	for i := range n.Abilities {
		n.Abilities[i].Active = false
		n.Abilities[i].TimeRemaining = 0
		n.Abilities[i].CooldownRemaining = 0
	}
	n.Settings = s.Settings
	n.LastSaved = s.LastSaved
	n.Version = s.Version
	n.DataLoaded = s.DataLoaded
	n.ErrorMessage = s.ErrorMessage
	business(n, true)

	effects := []game.Effect{{Kind: game.EffectRebirth, Amount: float64(reward)}}
	effects = append(effects, evaluate(n)...)
	Recompute(n)
	return n, effects
}
