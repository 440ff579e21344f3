package catalog

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/minerush/internal/game"
)

// Decode parses a persisted snapshot and reconciles it with the catalog.
//
// The result always has the catalog's current entries in catalog order:
// entries missing from an old save take their catalog defaults, entries no
// longer in the catalog are dropped, and static fields (names, prices,
// base rates) come from the catalog rather than the save. Player progress
// (ownership, counts, tiers, levels, timers, unlocks) is taken from the
// save and clamped to each entry's bounds.
//
// Derived rates and ability multipliers are not trusted; the reducer
// recomputes them when the snapshot is loaded.
func (c *Catalog) Decode(data []byte) (*game.GameState, error) {
	saved, err := game.DecodeRaw(data)
	if err != nil {
		return nil, err
	}

	// Fields whose absence must be told apart from their zero value.
	var presence struct {
		Settings        *game.Settings `json:"settings"`
		BonusMultiplier *float64       `json:"bonusMultiplier"`
	}
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	s := c.NewState()
	s.Coins = nonNegative(saved.Coins)
	s.TotalCoinsEarned = math.Max(nonNegative(saved.TotalCoinsEarned), s.Coins)
	s.GoldCoins = max(saved.GoldCoins, 0)
	s.TotalClicks = max(saved.TotalClicks, 0)
	s.ClickProgress = ((saved.ClickProgress % game.ComboWindow) + game.ComboWindow) % game.ComboWindow
	s.Rebirths = max(saved.Rebirths, 0)
	if presence.BonusMultiplier != nil && *presence.BonusMultiplier >= 1 {
		s.BonusMultiplier = *presence.BonusMultiplier
	}
	if presence.Settings != nil {
		s.Settings = *presence.Settings
	}
	s.LastSaved = saved.LastSaved
	s.Version = saved.Version
	if n := len(saved.CoinAnimations); n > 0 {
		start := max(n-game.MaxCoinAnimations, 0)
		s.CoinAnimations = append([]game.CoinAnimation(nil), saved.CoinAnimations[start:]...)
	}

	mergeRocks(s, saved)
	mergeUpgrades(s, saved)
	mergeAutoMiners(s, saved)
	mergeSpecials(s, saved)
	mergeAchievements(s, saved)
	mergeAbilities(s, saved)

	if i := s.RockIndex(game.NormalizeID(saved.SelectedRock)); i >= 0 && s.Rocks[i].Unlocked {
		s.SelectedRock = s.Rocks[i].ID
	} else {
		s.SelectedRock = baselineRock(s)
	}
	if i := s.UpgradeIndex(game.NormalizeID(saved.SelectedPickaxe)); i >= 0 && s.Upgrades[i].Owned {
		s.SelectedPickaxe = s.Upgrades[i].ID
	} else {
		s.SelectedPickaxe = bestPickaxe(s)
	}

	return s, nil
}

func mergeRocks(s, saved *game.GameState) {
	for _, r := range saved.Rocks {
		if i := s.RockIndex(game.NormalizeID(r.ID)); i >= 0 {
			s.Rocks[i].Unlocked = s.Rocks[i].Unlocked || r.Unlocked
		}
	}
}

func mergeUpgrades(s, saved *game.GameState) {
	for _, u := range saved.Upgrades {
		i := s.UpgradeIndex(game.NormalizeID(u.ID))
		if i < 0 {
			continue
		}
		s.Upgrades[i].Owned = s.Upgrades[i].Owned || u.Owned
		if s.Upgrades[i].Owned {
			s.Upgrades[i].Evolution = clampInt(u.Evolution, 0, game.MaxEvolution)
		}
	}
}

func mergeAutoMiners(s, saved *game.GameState) {
	for _, m := range saved.AutoMiners {
		i := s.AutoMinerIndex(game.NormalizeID(m.ID))
		if i < 0 {
			continue
		}
		cur := &s.AutoMiners[i]
		cur.Count = max(m.Count, 0)
		cur.Cost = game.MinerCost(cur.BaseCost, cur.Count)
		if cur.Count > 0 {
			cur.Evolution = clampInt(m.Evolution, 0, game.MaxEvolution)
		}
	}
}

func mergeSpecials(s, saved *game.GameState) {
	for _, su := range saved.SpecialUpgrades {
		i := s.SpecialIndex(game.NormalizeID(su.ID))
		if i < 0 || !su.Owned {
			continue
		}
		cur := &s.SpecialUpgrades[i]
		cur.Owned = true
		cur.Level = clampInt(su.Level, 1, cur.MaxLevel)
		cur.Cost = SpecialCost(*cur)
	}
}

func mergeAchievements(s, saved *game.GameState) {
	for _, a := range saved.Achievements {
		if i := s.AchievementIndex(game.NormalizeID(a.ID)); i >= 0 && a.Unlocked {
			s.Achievements[i].Unlocked = true
			s.Achievements[i].Shown = a.Shown
		}
	}
}

func mergeAbilities(s, saved *game.GameState) {
	for _, a := range saved.Abilities {
		i := s.AbilityIndex(game.NormalizeID(a.ID))
		if i < 0 || !a.Owned {
			continue
		}
		cur := &s.Abilities[i]
		cur.Owned = true
		cur.Level = clampInt(a.Level, 1, cur.MaxLevel)
		cur.UpgradeCost = cur.UpgradeCost * math.Pow(game.AbilityUpgradeGrowth, float64(cur.Level-1))

		switch {
		case a.Active && a.TimeRemaining > 0:
			cur.Active = true
			cur.TimeRemaining = math.Min(a.TimeRemaining, cur.Duration)
		case a.Active:
			// Expired while saved: resume in cooldown.
			cur.CooldownRemaining = cur.Cooldown
		case a.CooldownRemaining > 0:
			cur.CooldownRemaining = math.Min(a.CooldownRemaining, cur.Cooldown)
		}
	}
}

// SpecialCost returns the gold price of the next purchase of su: the base
// price while unowned, compounded by CostGrowth per level once owned.
func SpecialCost(su game.SpecialUpgrade) int64 {
	if !su.Owned || su.CostGrowth <= 0 || su.Level < 1 {
		return su.Cost
	}
	return int64(math.Round(float64(su.Cost) * math.Pow(su.CostGrowth, float64(su.Level))))
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
