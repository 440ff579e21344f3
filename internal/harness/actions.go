package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/minerush/internal/game"
)

// Expected outcomes of an action step.
const (
	ExpectAccepted = "accepted"
	ExpectRejected = "rejected"
)

// actionBuilders maps scenario action names to constructors. Engine-internal
// actions (load, mark_saved, set_ready, tick_abilities and
// apply_passive_income) are driven by advance and lifecycle steps instead.
var actionBuilders = map[string]func(step *FlowStep) (game.Action, error){
	"click": func(step *FlowStep) (game.Action, error) {
		if step.Roll < 0 || step.Roll >= 1 {
			return nil, fmt.Errorf("click roll must be in [0,1), got %v", step.Roll)
		}
		return game.Click{Roll: step.Roll}, nil
	},
	"buy_upgrade":             withID(func(id string) game.Action { return game.BuyUpgrade{ID: id} }),
	"buy_auto_miner":          withID(func(id string) game.Action { return game.BuyAutoMiner{ID: id} }),
	"buy_special_upgrade":     withID(func(id string) game.Action { return game.BuySpecialUpgrade{ID: id} }),
	"buy_ability":             withID(func(id string) game.Action { return game.BuyAbility{ID: id} }),
	"evolve_upgrade":          withID(func(id string) game.Action { return game.EvolveUpgrade{ID: id} }),
	"evolve_auto_miner":       withID(func(id string) game.Action { return game.EvolveAutoMiner{ID: id} }),
	"select_rock":             withID(func(id string) game.Action { return game.SelectRock{ID: id} }),
	"select_pickaxe":          withID(func(id string) game.Action { return game.SelectPickaxe{ID: id} }),
	"activate_ability":        withID(func(id string) game.Action { return game.ActivateAbility{ID: id} }),
	"upgrade_ability":         withID(func(id string) game.Action { return game.UpgradeAbility{ID: id} }),
	"unlock_achievement":      withID(func(id string) game.Action { return game.UnlockAchievement{ID: id} }),
	"acknowledge_achievement": withID(func(id string) game.Action { return game.AcknowledgeAchievement{ID: id} }),
	"rebirth": func(*FlowStep) (game.Action, error) {
		return game.Rebirth{}, nil
	},
	"dismiss_notice": func(*FlowStep) (game.Action, error) {
		return game.DismissNotice{}, nil
	},
	"set_setting": func(step *FlowStep) (game.Action, error) {
		if step.Setting == "" || step.Enabled == nil {
			return nil, fmt.Errorf("set_setting requires setting and enabled")
		}
		if _, ok := (game.Settings{}).With(game.Setting(step.Setting), true); !ok {
			return nil, fmt.Errorf("unknown setting %q", step.Setting)
		}
		return game.SetSetting{Setting: game.Setting(step.Setting), Enabled: *step.Enabled}, nil
	},
}

func withID(build func(id string) game.Action) func(step *FlowStep) (game.Action, error) {
	return func(step *FlowStep) (game.Action, error) {
		if step.ID == "" {
			return nil, fmt.Errorf("%s requires id", step.Action)
		}
		return build(game.NormalizeID(step.ID)), nil
	}
}

// buildAction converts an action step into the action it dispatches.
func buildAction(step *FlowStep) (game.Action, error) {
	build, ok := actionBuilders[step.Action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}
	return build(step)
}

// stepLabel renders a step for the trace, e.g. "buy_auto_miner helper x3".
func stepLabel(step *FlowStep) string {
	switch {
	case step.Advance != 0:
		return "advance " + step.Advance.String()
	case step.Lifecycle != "":
		return step.Lifecycle
	}

	parts := []string{step.Action}
	if step.ID != "" {
		parts = append(parts, step.ID)
	}
	if step.Setting != "" && step.Enabled != nil {
		parts = append(parts, fmt.Sprintf("%s=%t", step.Setting, *step.Enabled))
	}
	if step.Repeat > 1 {
		parts = append(parts, fmt.Sprintf("x%d", step.Repeat))
	}
	return strings.Join(parts, " ")
}
