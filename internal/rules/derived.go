package rules

import "github.com/roach88/minerush/internal/game"

// specialModifier maps a special upgrade to its contribution to derived
// rates. Either function may be nil.
type specialModifier struct {
	click  func(su game.SpecialUpgrade) float64
	income func(su game.SpecialUpgrade) float64
}

// specialEffects is the derived-rate table for special upgrades. Effects
// applied at click time (double, lucky, combo) live in clickModifiers.
var specialEffects = map[game.SpecialEffect]specialModifier{
	game.SpecialClickPower: {
		click: func(su game.SpecialUpgrade) float64 { return 1 + su.Magnitude*float64(su.Level) },
	},
	game.SpecialIncomeBoost: {
		income: func(su game.SpecialUpgrade) float64 { return 1 + su.Magnitude*float64(su.Level) },
	},
}

// abilityEffect describes which rates an active ability multiplies and how
// its multiplier scales with level.
type abilityEffect struct {
	click      bool
	income     bool
	multiplier func(level int) float64
}

var abilityEffects = map[game.AbilityEffect]abilityEffect{
	game.AbilityClickFrenzy: {
		click:      true,
		multiplier: func(level int) float64 { return 2 + 0.5*float64(level-1) },
	},
	game.AbilityIncomeRush: {
		income:     true,
		multiplier: func(level int) float64 { return 2 + 0.25*float64(level-1) },
	},
	game.AbilityMotherlode: {
		click:      true,
		income:     true,
		multiplier: func(level int) float64 { return 1.5 + 0.25*float64(level-1) },
	},
}

// AbilityMultiplier returns the multiplier of an ability at the given level.
// Unknown effects multiply by 1.
func AbilityMultiplier(effect game.AbilityEffect, level int) float64 {
	if e, ok := abilityEffects[effect]; ok {
		return e.multiplier(max(level, 1))
	}
	return 1
}

// ClickPower computes coins per click from the selected rock, owned
// pickaxes, special upgrades, active abilities and the bonus multiplier.
func ClickPower(s *game.GameState) float64 {
	base := 0.0
	if i := s.RockIndex(s.SelectedRock); i >= 0 {
		base = s.Rocks[i].ClickPower
	}
	for _, u := range s.Upgrades {
		if u.Owned {
			base += u.Power * game.EvolutionFactor(u.Evolution)
		}
	}

	mult := s.BonusMultiplier
	for _, su := range s.SpecialUpgrades {
		if m, ok := specialEffects[su.Effect]; ok && su.Owned && m.click != nil {
			mult *= m.click(su)
		}
	}
	for _, a := range s.Abilities {
		if e, ok := abilityEffects[a.Effect]; ok && a.Active && e.click {
			mult *= a.Multiplier
		}
	}
	return base * mult
}

// IncomeRate computes coins per second from auto-miners, special upgrades,
// active abilities and the bonus multiplier.
func IncomeRate(s *game.GameState) float64 {
	base := 0.0
	for _, m := range s.AutoMiners {
		base += m.CPS * float64(m.Count) * game.EvolutionFactor(m.Evolution)
	}
	if base == 0 {
		return 0
	}

	mult := s.BonusMultiplier
	for _, su := range s.SpecialUpgrades {
		if m, ok := specialEffects[su.Effect]; ok && su.Owned && m.income != nil {
			mult *= m.income(su)
		}
	}
	for _, a := range s.Abilities {
		if e, ok := abilityEffects[a.Effect]; ok && a.Active && e.income {
			mult *= a.Multiplier
		}
	}
	return base * mult
}

// Recompute refreshes cpc and cps in place. The caller must own s (a copy
// made during the current transition).
func Recompute(s *game.GameState) {
	s.CPC = ClickPower(s)
	s.CPS = IncomeRate(s)
}
