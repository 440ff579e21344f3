// Package tui is the terminal front end for "minerush play".
//
// Keys map to reducer actions through ActionForKey, which is pure so the
// bindings can be tested without a terminal. App owns the tcell screen,
// dispatches actions to the engine and redraws on every published state.
package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/rules"
)

// Command is a front-end request that is not a reducer action.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdPause // suspend or resume the engine
	CmdSync  // force a cloud sync
)

// minerKeys select auto-miners by catalog position.
const minerKeys = "123456789"

// abilityKeys activate abilities by catalog position; the shifted key
// buys or upgrades the same ability.
const abilityKeys = "asd"
const abilityBuyKeys = "ASD"

// ActionForKey maps a key press to an action or command for state s.
// Keys that make no sense in s still return an action; the reducer
// rejects it.
func ActionForKey(s *game.GameState, ev *tcell.EventKey) (game.Action, Command) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return nil, CmdQuit
	case tcell.KeyEnter:
		return game.Click{}, CmdNone
	case tcell.KeyRune:
	default:
		return nil, CmdNone
	}

	r := ev.Rune()
	switch r {
	case ' ':
		return game.Click{}, CmdNone
	case 'q':
		return nil, CmdQuit
	case 'z':
		return nil, CmdPause
	case 'y':
		return nil, CmdSync
	case 'u':
		if id := nextPickaxe(s); id != "" {
			return game.BuyUpgrade{ID: id}, CmdNone
		}
		return nil, CmdNone
	case 'n':
		if id := nextRock(s); id != "" {
			return game.SelectRock{ID: id}, CmdNone
		}
		return nil, CmdNone
	case 'p':
		if rules.CanRebirth(s) {
			return game.Rebirth{}, CmdNone
		}
		return nil, CmdNone
	case 'm':
		return game.SetSetting{Setting: game.SettingSound, Enabled: !s.Settings.Sound}, CmdNone
	case 'x':
		return game.DismissNotice{}, CmdNone
	}

	if i := indexRune(minerKeys, r); i >= 0 && i < len(s.AutoMiners) {
		return game.BuyAutoMiner{ID: s.AutoMiners[i].ID}, CmdNone
	}
	if i := indexRune(abilityKeys, r); i >= 0 && i < len(s.Abilities) {
		return game.ActivateAbility{ID: s.Abilities[i].ID}, CmdNone
	}
	if i := indexRune(abilityBuyKeys, r); i >= 0 && i < len(s.Abilities) {
		a := s.Abilities[i]
		if a.Owned {
			return game.UpgradeAbility{ID: a.ID}, CmdNone
		}
		return game.BuyAbility{ID: a.ID}, CmdNone
	}
	return nil, CmdNone
}

func indexRune(keys string, r rune) int {
	for i, k := range keys {
		if k == r {
			return i
		}
	}
	return -1
}

// nextPickaxe returns the lowest-ranked pickaxe not yet owned.
func nextPickaxe(s *game.GameState) string {
	best := -1
	for i, u := range s.Upgrades {
		if !u.Owned && (best < 0 || u.Rank < s.Upgrades[best].Rank) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return s.Upgrades[best].ID
}

// nextRock returns the rock after the selected one, wrapping around to
// the first. Selecting a locked rock unlocks it if affordable.
func nextRock(s *game.GameState) string {
	if len(s.Rocks) == 0 {
		return ""
	}
	i := s.RockIndex(s.SelectedRock)
	return s.Rocks[(i+1)%len(s.Rocks)].ID
}
