package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/minerush/internal/game"
)

// scalarFields are the top-level state paths.
var scalarFields = map[string]func(s *game.GameState) any{
	"coins":              func(s *game.GameState) any { return s.Coins },
	"total_coins_earned": func(s *game.GameState) any { return s.TotalCoinsEarned },
	"gold_coins":         func(s *game.GameState) any { return s.GoldCoins },
	"cpc":                func(s *game.GameState) any { return s.CPC },
	"cps":                func(s *game.GameState) any { return s.CPS },
	"total_clicks":       func(s *game.GameState) any { return s.TotalClicks },
	"click_progress":     func(s *game.GameState) any { return s.ClickProgress },
	"rebirths":           func(s *game.GameState) any { return s.Rebirths },
	"bonus_multiplier":   func(s *game.GameState) any { return s.BonusMultiplier },
	"selected_rock":      func(s *game.GameState) any { return s.SelectedRock },
	"selected_pickaxe":   func(s *game.GameState) any { return s.SelectedPickaxe },
	"version":            func(s *game.GameState) any { return s.Version },
	"data_loaded":        func(s *game.GameState) any { return s.DataLoaded },
	"needs_save":         func(s *game.GameState) any { return s.NeedsSave },
	"needs_cloud_save":   func(s *game.GameState) any { return s.NeedsCloudSave },
	"error_message":      func(s *game.GameState) any { return s.ErrorMessage },
	"miners_owned":       func(s *game.GameState) any { return s.MinersOwned() },
}

// StateValue resolves a state path. Top-level paths are the snake_case
// field names ("coins", "gold_coins"); entry paths take the form
// "<collection>.<id>":
//
//	miner.<id>        owned count
//	pickaxe.<id>      owned (bool)
//	evolution.<id>    evolution tier of a pickaxe or auto-miner
//	rock.<id>         unlocked (bool)
//	special.<id>      level (0 when unowned)
//	ability.<id>      status: purchasable, ready, active or cooldown
//	ability_level.<id>
//	achievement.<id>  unlocked (bool)
//	setting.<name>    enabled (bool)
func StateValue(s *game.GameState, path string) (any, error) {
	if s == nil {
		return nil, fmt.Errorf("no state")
	}
	if get, ok := scalarFields[path]; ok {
		return get(s), nil
	}

	collection, id, ok := strings.Cut(path, ".")
	if !ok {
		return nil, fmt.Errorf("unknown state path %q", path)
	}
	missing := fmt.Errorf("unknown %s %q", collection, id)

	switch collection {
	case "miner":
		if i := s.AutoMinerIndex(id); i >= 0 {
			return s.AutoMiners[i].Count, nil
		}
	case "pickaxe":
		if i := s.UpgradeIndex(id); i >= 0 {
			return s.Upgrades[i].Owned, nil
		}
	case "evolution":
		if i := s.UpgradeIndex(id); i >= 0 {
			return s.Upgrades[i].Evolution, nil
		}
		if i := s.AutoMinerIndex(id); i >= 0 {
			return s.AutoMiners[i].Evolution, nil
		}
	case "rock":
		if i := s.RockIndex(id); i >= 0 {
			return s.Rocks[i].Unlocked, nil
		}
	case "special":
		if i := s.SpecialIndex(id); i >= 0 {
			if !s.SpecialUpgrades[i].Owned {
				return 0, nil
			}
			return s.SpecialUpgrades[i].Level, nil
		}
	case "ability":
		if i := s.AbilityIndex(id); i >= 0 {
			return s.Abilities[i].Status().String(), nil
		}
	case "ability_level":
		if i := s.AbilityIndex(id); i >= 0 {
			return s.Abilities[i].Level, nil
		}
	case "achievement":
		if i := s.AchievementIndex(id); i >= 0 {
			return s.Achievements[i].Unlocked, nil
		}
	case "setting":
		if _, ok := s.Settings.With(game.Setting(id), true); ok {
			return s.Settings.Enabled(game.Setting(id)), nil
		}
	default:
		return nil, fmt.Errorf("unknown state path %q", path)
	}
	return nil, missing
}
