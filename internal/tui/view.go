package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/minerush/internal/display"
	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/rules"
)

var (
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGood   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleNotice = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Row is one line of the view.
type Row struct {
	Text  string
	Style tcell.Style
}

// Lines renders s as text rows. coins is the smoothed balance shown in
// place of s.Coins; status is a transient front-end message.
func Lines(s *game.GameState, coins float64, status string, f display.Formatter) []Row {
	rows := []Row{
		{"MINERUSH", styleTitle},
		{fmt.Sprintf("Coins %s   %s   click %s", f.Coins(coins), f.Rate(s.CPS), f.Coins(s.CPC)), styleText},
		{fmt.Sprintf("Gold %s   Rebirths %d   Bonus %s", f.Gold(s.GoldCoins), s.Rebirths, f.Multiplier(s.BonusMultiplier)), styleText},
		{fmt.Sprintf("Combo [%s]", display.Bar(float64(s.ClickProgress)/game.ComboWindow, game.ComboWindow)), styleDim},
		{"", styleText},
	}

	rock := s.SelectedRock
	if i := s.RockIndex(rock); i >= 0 {
		rock = s.Rocks[i].Name
	}
	pick := s.SelectedPickaxe
	if i := s.UpgradeIndex(pick); i >= 0 {
		pick = s.Upgrades[i].Name
	}
	rows = append(rows, Row{fmt.Sprintf("Rock %s   Pickaxe %s", rock, pick), styleText})
	if id := nextPickaxe(s); id != "" {
		u := s.Upgrades[s.UpgradeIndex(id)]
		rows = append(rows, Row{fmt.Sprintf(" [u] %s for %s", u.Name, f.Coins(u.Cost)), affordable(s.Coins >= u.Cost)})
	}

	rows = append(rows, Row{"Miners", styleTitle})
	for i, m := range s.AutoMiners {
		if i >= len(minerKeys) {
			break
		}
		rows = append(rows, Row{
			fmt.Sprintf(" [%c] %-12s x%-4d %s   next %s", minerKeys[i], m.Name, m.Count, f.Rate(m.CPS), f.Coins(m.Cost)),
			affordable(s.Coins >= m.Cost),
		})
	}

	rows = append(rows, Row{"Abilities", styleTitle})
	for i, a := range s.Abilities {
		if i >= len(abilityKeys) {
			break
		}
		rows = append(rows, Row{fmt.Sprintf(" [%c] %-14s %s", abilityKeys[i], a.Name, abilityStatus(a, f)), styleText})
	}

	if rules.CanRebirth(s) {
		rows = append(rows, Row{fmt.Sprintf("[p] rebirth for %s gold", f.Gold(rules.RebirthReward(s.TotalCoinsEarned))), styleGood})
	}
	if s.ErrorMessage != "" {
		rows = append(rows, Row{s.ErrorMessage + "  [x]", styleNotice})
	}
	if status != "" {
		rows = append(rows, Row{status, styleDim})
	}
	if !s.DataLoaded {
		rows = append(rows, Row{"paused  [z] resume", styleDim})
	}
	rows = append(rows, Row{"space click  n rock  m sound  y sync  z pause  q quit", styleDim})
	return rows
}

func abilityStatus(a game.Ability, f display.Formatter) string {
	switch a.Status() {
	case game.AbilityPurchasable:
		return fmt.Sprintf("buy %s", f.Coins(a.Cost))
	case game.AbilityActive:
		return fmt.Sprintf("ACTIVE %s (x%.2f)", display.Seconds(a.TimeRemaining), a.Multiplier)
	case game.AbilityCooldown:
		return fmt.Sprintf("cooldown %s", display.Seconds(a.CooldownRemaining))
	default:
		return fmt.Sprintf("ready  lvl %d", a.Level)
	}
}

func affordable(ok bool) tcell.Style {
	if ok {
		return styleGood
	}
	return styleDim
}

// Draw clears screen and writes rows from the top-left corner.
func Draw(screen tcell.Screen, rows []Row) {
	screen.Clear()
	w, h := screen.Size()
	for y, row := range rows {
		if y >= h {
			break
		}
		x := 0
		for _, r := range row.Text {
			if x >= w {
				break
			}
			screen.SetContent(x, y, r, nil, row.Style)
			x++
		}
	}
	screen.Show()
}
