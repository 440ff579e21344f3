package rules

import (
	"math"

	"github.com/roach88/minerush/internal/game"
)

// Ability lifecycle: purchasable → ready → active → cooldown → ready.
// Timers only move through TickAbilities; the engine drives that action
// from a one-second ticker that runs only while some ability is busy.

func buyAbility(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.AbilityIndex(id)
	if i < 0 || s.Abilities[i].Owned || s.Coins < s.Abilities[i].Cost {
		return s, nil
	}

	n := next(s)
	n.Abilities = append([]game.Ability(nil), s.Abilities...)
	a := &n.Abilities[i]
	a.Owned = true
	a.Level = max(a.Level, 1)
	a.Multiplier = AbilityMultiplier(a.Effect, a.Level)
	n.Coins -= a.Cost
	business(n, true)
	return n, []game.Effect{{Kind: game.EffectPurchase, ID: id, Amount: a.Cost}}
}

func activateAbility(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.AbilityIndex(id)
	if i < 0 || s.Abilities[i].Status() != game.AbilityReady {
		return s, nil
	}

	n := next(s)
	n.Abilities = append([]game.Ability(nil), s.Abilities...)
	a := &n.Abilities[i]
	a.Active = true
	a.TimeRemaining = a.Duration
	a.CooldownRemaining = 0
	business(n, false)
	Recompute(n)
	return n, []game.Effect{{Kind: game.EffectAbilityActivated, ID: id, Amount: a.Multiplier}}
}

// tickAbilities advances active and cooling abilities by seconds. Cooldowns
// run faster when a faster_cooldown special is owned. An expired ability
// enters its full cooldown; the unused part of the tick is not carried
// over.
func tickAbilities(s *game.GameState, seconds float64) (*game.GameState, []game.Effect) {
	if !(seconds > 0) || math.IsInf(seconds, 0) || !s.AbilitiesBusy() {
		return s, nil
	}

	speed := 1.0
	if su, ok := s.OwnsSpecial(game.SpecialFasterCooldown); ok && su.Magnitude > 1 {
		speed = su.Magnitude
	}

	n := next(s)
	n.Abilities = append([]game.Ability(nil), s.Abilities...)
	var effects []game.Effect
	expired := false

	for i := range n.Abilities {
		a := &n.Abilities[i]
		switch {
		case a.Active:
			a.TimeRemaining -= seconds
			if a.TimeRemaining > 0 {
				continue
			}
			a.Active = false
			a.TimeRemaining = 0
			a.CooldownRemaining = math.Max(a.Cooldown, 0)
			expired = true
			effects = append(effects, game.Effect{Kind: game.EffectAbilityExpired, ID: a.ID})
			if a.CooldownRemaining == 0 {
				effects = append(effects, game.Effect{Kind: game.EffectAbilityReady, ID: a.ID})
			}
		case a.CooldownRemaining > 0:
			a.CooldownRemaining -= seconds * speed
			if a.CooldownRemaining > 0 {
				continue
			}
			a.CooldownRemaining = 0
			effects = append(effects, game.Effect{Kind: game.EffectAbilityReady, ID: a.ID})
		}
	}

	if expired {
		Recompute(n)
	}
	if len(effects) > 0 {
		business(n, false)
	}
	return n, effects
}

func upgradeAbility(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.AbilityIndex(id)
	if i < 0 {
		return s, nil
	}
	cur := s.Abilities[i]
	if !cur.Owned || cur.Level >= cur.MaxLevel || s.Coins < cur.UpgradeCost {
		return s, nil
	}

	n := next(s)
	n.Abilities = append([]game.Ability(nil), s.Abilities...)
	a := &n.Abilities[i]
	n.Coins -= cur.UpgradeCost
	a.Level++
	a.Multiplier = AbilityMultiplier(a.Effect, a.Level)
	a.UpgradeCost = cur.UpgradeCost * game.AbilityUpgradeGrowth
	business(n, true)
	if a.Active {
		Recompute(n)
	}
	return n, []game.Effect{{Kind: game.EffectAbilityUpgraded, ID: id, Amount: float64(a.Level)}}
}
