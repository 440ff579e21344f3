package game

// Action is a discrete request to change the game state.
//
// Actions are plain values. The reducer switches on the concrete type; an
// action type it does not recognize is rejected like any other invalid
// action.
type Action interface {
	// Name returns a stable identifier used for logging and scenario files.
	Name() string
}

// Click mines the selected rock once.
//
// Roll is a uniform sample in [0,1) used by the lucky-click modifier. The
// engine stamps it; the zero value is never lucky.
type Click struct {
	Roll float64
}

// BuyUpgrade buys a pickaxe with coins.
type BuyUpgrade struct{ ID string }

// BuyAutoMiner buys one unit of an auto-miner with coins.
type BuyAutoMiner struct{ ID string }

// BuySpecialUpgrade buys, or levels up, a special upgrade with gold coins.
type BuySpecialUpgrade struct{ ID string }

// BuyAbility buys an ability with coins.
type BuyAbility struct{ ID string }

// EvolveUpgrade raises an owned pickaxe's evolution tier with gold coins.
type EvolveUpgrade struct{ ID string }

// EvolveAutoMiner raises an owned auto-miner's evolution tier with gold coins.
type EvolveAutoMiner struct{ ID string }

// SelectRock switches the mined rock, unlocking it first if needed.
type SelectRock struct{ ID string }

// SelectPickaxe switches the displayed pickaxe to an owned one.
type SelectPickaxe struct{ ID string }

// Rebirth performs a prestige reset.
type Rebirth struct{}

// ActivateAbility starts a ready ability.
type ActivateAbility struct{ ID string }

// TickAbilities advances ability timers by Seconds of wall-clock time.
type TickAbilities struct{ Seconds float64 }

// UpgradeAbility raises an owned ability's level with coins.
type UpgradeAbility struct{ ID string }

// UnlockAchievement unlocks a single achievement whose condition holds.
type UnlockAchievement struct{ ID string }

// AcknowledgeAchievement marks an unlocked achievement's notice as shown.
type AcknowledgeAchievement struct{ ID string }

// ApplyPassiveIncome adds precomputed passive income.
//
// Offline is set for the lump-sum catch-up applied on a ready transition;
// Seconds then carries the elapsed time for the notice.
type ApplyPassiveIncome struct {
	Amount  float64
	Offline bool
	Seconds int64
}

// Load replaces the whole snapshot with one read from persistence.
type Load struct{ State *GameState }

// MarkSaved records a completed save. Notice carries a recoverable remote
// error message, or is empty. CloudFailed keeps NeedsCloudSave set so the
// next save retries the remote write.
type MarkSaved struct {
	LastSaved   int64
	Version     int64
	Notice      string
	CloudFailed bool
}

// SetReady flips the readiness flag (false while suspended).
type SetReady struct{ Ready bool }

// SetSetting changes a user preference flag.
type SetSetting struct {
	Setting Setting
	Enabled bool
}

// DismissNotice clears the recoverable error notice.
type DismissNotice struct{}

func (Click) Name() string                  { return "click" }
func (BuyUpgrade) Name() string             { return "buy_upgrade" }
func (BuyAutoMiner) Name() string           { return "buy_auto_miner" }
func (BuySpecialUpgrade) Name() string      { return "buy_special_upgrade" }
func (BuyAbility) Name() string             { return "buy_ability" }
func (EvolveUpgrade) Name() string          { return "evolve_upgrade" }
func (EvolveAutoMiner) Name() string        { return "evolve_auto_miner" }
func (SelectRock) Name() string             { return "select_rock" }
func (SelectPickaxe) Name() string          { return "select_pickaxe" }
func (Rebirth) Name() string                { return "rebirth" }
func (ActivateAbility) Name() string        { return "activate_ability" }
func (TickAbilities) Name() string          { return "tick_abilities" }
func (UpgradeAbility) Name() string         { return "upgrade_ability" }
func (UnlockAchievement) Name() string      { return "unlock_achievement" }
func (AcknowledgeAchievement) Name() string { return "acknowledge_achievement" }
func (ApplyPassiveIncome) Name() string     { return "apply_passive_income" }
func (Load) Name() string                   { return "load" }
func (MarkSaved) Name() string              { return "mark_saved" }
func (SetReady) Name() string               { return "set_ready" }
func (SetSetting) Name() string             { return "set_setting" }
func (DismissNotice) Name() string          { return "dismiss_notice" }
