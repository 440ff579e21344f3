package game

// MaxCoinAnimations bounds the coinAnimations queue; the oldest entry is
// evicted when a new one would exceed it.
const MaxCoinAnimations = 20

// GameState is the sole mutable root of player progress.
//
// A GameState value is never modified after it has been published: the
// reducer copies it (see Clone) and returns the copy. Callers detect a
// rejected action by comparing the returned pointer with the input.
type GameState struct {
	// Currencies
	Coins            float64 `json:"coins"`
	TotalCoinsEarned float64 `json:"totalCoinsEarned"` // monotonic
	GoldCoins        int64   `json:"goldCoins"`        // prestige currency

	// Derived rates, always recomputed
	CPC float64 `json:"cpc"`
	CPS float64 `json:"cps"`

	// Progress counters
	TotalClicks     int64   `json:"totalClicks"`
	ClickProgress   int     `json:"clickProgress"`
	Rebirths        int     `json:"rebirths"`
	BonusMultiplier float64 `json:"bonusMultiplier"`

	// Catalogs
	Rocks           []Rock           `json:"rocks"`
	Upgrades        []Upgrade        `json:"upgrades"`
	AutoMiners      []AutoMiner      `json:"autoMiners"`
	SpecialUpgrades []SpecialUpgrade `json:"specialUpgrades"`
	Achievements    []Achievement    `json:"achievements"`
	Abilities       []Ability        `json:"abilities"`

	// Selection
	SelectedRock    string `json:"selectedRock"`
	SelectedPickaxe string `json:"selectedPickaxe"`

	CoinAnimations []CoinAnimation `json:"coinAnimations,omitempty"`
	Settings       Settings        `json:"settings"`

	// Bookkeeping
	LastSaved int64 `json:"lastSaved"` // unix milliseconds
	Version   int64 `json:"version"`

	// Transient, never serialized
	DataLoaded     bool   `json:"-"`
	NeedsSave      bool   `json:"-"`
	NeedsCloudSave bool   `json:"-"`
	ErrorMessage   string `json:"-"`
}

// Settings holds user preference flags that survive a rebirth.
type Settings struct {
	Sound           bool `json:"sound"`
	Haptics         bool `json:"haptics"`
	Notifications   bool `json:"notifications"`
	OfflineProgress bool `json:"offlineProgress"`
}

// Setting names a single preference flag.
type Setting string

const (
	SettingSound           Setting = "sound"
	SettingHaptics         Setting = "haptics"
	SettingNotifications   Setting = "notifications"
	SettingOfflineProgress Setting = "offlineProgress"
)

// CoinAnimation is a transient "+N" popup produced by a click.
type CoinAnimation struct {
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
	Bonus  bool    `json:"bonus,omitempty"`
}

// Rock is an unlockable click-power tier.
type Rock struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	ClickPower float64 `json:"clickPower"`
	Unlocked   bool    `json:"unlocked"`
}

// Upgrade is a permanent click-power item (a pickaxe).
//
// Rank orders pickaxes explicitly; a newly bought pickaxe with a higher rank
// than the selected one becomes the selection.
type Upgrade struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Cost          float64 `json:"cost"`
	Power         float64 `json:"power"`
	Owned         bool    `json:"owned"`
	Rank          int     `json:"rank"`
	Evolution     int     `json:"evolution"`
	EvolutionCost int64   `json:"evolutionCost"`
}

// AutoMiner is a repeatable passive-income source.
type AutoMiner struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	BaseCost      float64 `json:"baseCost"`
	Cost          float64 `json:"cost"`
	CPS           float64 `json:"cps"`
	Count         int     `json:"count"`
	Evolution     int     `json:"evolution"`
	EvolutionCost int64   `json:"evolutionCost"`
}

// SpecialEffect identifies the modifier a special upgrade applies.
type SpecialEffect string

const (
	SpecialDoubleClick    SpecialEffect = "double_click"
	SpecialLuckyClick     SpecialEffect = "lucky_click"
	SpecialCombo          SpecialEffect = "combo"
	SpecialClickPower     SpecialEffect = "click_power"
	SpecialIncomeBoost    SpecialEffect = "income_boost"
	SpecialFasterCooldown SpecialEffect = "faster_cooldown"
	SpecialCheaperRebirth SpecialEffect = "cheaper_rebirth"
)

// SpecialUpgrade is a modifier bought with gold coins. Items with MaxLevel
// above 1 can be bought again to raise Level.
type SpecialUpgrade struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Cost       int64         `json:"cost"`
	Effect     SpecialEffect `json:"effect"`
	Magnitude  float64       `json:"magnitude"`
	Owned      bool          `json:"owned"`
	Level      int           `json:"level"`
	MaxLevel   int           `json:"maxLevel"`
	CostGrowth float64       `json:"costGrowth,omitempty"`
}

// AchievementKind selects the counter an achievement is measured against.
type AchievementKind string

const (
	AchievementClicks   AchievementKind = "clicks"
	AchievementEarned   AchievementKind = "earned"
	AchievementRebirths AchievementKind = "rebirths"
	AchievementMiners   AchievementKind = "miners"
)

// RewardKind selects what an achievement grants when unlocked.
type RewardKind string

const (
	RewardCoins RewardKind = "coins"
	RewardBonus RewardKind = "bonus"
)

// Achievement is a one-shot milestone reward.
type Achievement struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       AchievementKind `json:"kind"`
	Target     float64         `json:"target"`
	RewardKind RewardKind      `json:"rewardKind"`
	Reward     float64         `json:"reward"`
	Unlocked   bool            `json:"unlocked"`
	Shown      bool            `json:"shown"`
}

// AbilityEffect identifies how an active ability boosts derived rates.
type AbilityEffect string

const (
	AbilityClickFrenzy AbilityEffect = "click_frenzy"
	AbilityIncomeRush  AbilityEffect = "income_rush"
	AbilityMotherlode  AbilityEffect = "motherlode"
)

// Ability is a timed boost with a level-scaled magnitude.
//
// INVARIANT: Active and CooldownRemaining > 0 are never both true.
// TimeRemaining is meaningful only while Active.
type Ability struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Effect            AbilityEffect `json:"effect"`
	Cost              float64       `json:"cost"`
	Owned             bool          `json:"owned"`
	Duration          float64       `json:"duration"`
	Cooldown          float64       `json:"cooldown"`
	Level             int           `json:"level"`
	MaxLevel          int           `json:"maxLevel"`
	UpgradeCost       float64       `json:"upgradeCost"`
	Multiplier        float64       `json:"multiplier"`
	Active            bool          `json:"active"`
	TimeRemaining     float64       `json:"timeRemaining,omitempty"`
	CooldownRemaining float64       `json:"cooldownRemaining,omitempty"`
}

// AbilityStatus is the position of an ability in its lifecycle.
type AbilityStatus int

const (
	AbilityPurchasable AbilityStatus = iota + 1
	AbilityReady
	AbilityActive
	AbilityCooldown
)

func (s AbilityStatus) String() string {
	switch s {
	case AbilityPurchasable:
		return "purchasable"
	case AbilityReady:
		return "ready"
	case AbilityActive:
		return "active"
	case AbilityCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Status reports where the ability is in the
// purchasable → ready → active → cooldown → ready cycle.
func (a Ability) Status() AbilityStatus {
	switch {
	case !a.Owned:
		return AbilityPurchasable
	case a.Active:
		return AbilityActive
	case a.CooldownRemaining > 0:
		return AbilityCooldown
	default:
		return AbilityReady
	}
}

// Clone returns a copy of s whose catalog slices can be modified without
// affecting s. Fields are copied shallowly otherwise.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Rocks = append([]Rock(nil), s.Rocks...)
	c.Upgrades = append([]Upgrade(nil), s.Upgrades...)
	c.AutoMiners = append([]AutoMiner(nil), s.AutoMiners...)
	c.SpecialUpgrades = append([]SpecialUpgrade(nil), s.SpecialUpgrades...)
	c.Achievements = append([]Achievement(nil), s.Achievements...)
	c.Abilities = append([]Ability(nil), s.Abilities...)
	if s.CoinAnimations != nil {
		c.CoinAnimations = append([]CoinAnimation(nil), s.CoinAnimations...)
	}
	return &c
}

// RockIndex returns the index of the rock with the given id, or -1.
func (s *GameState) RockIndex(id string) int {
	for i := range s.Rocks {
		if s.Rocks[i].ID == id {
			return i
		}
	}
	return -1
}

// UpgradeIndex returns the index of the upgrade with the given id, or -1.
func (s *GameState) UpgradeIndex(id string) int {
	for i := range s.Upgrades {
		if s.Upgrades[i].ID == id {
			return i
		}
	}
	return -1
}

// AutoMinerIndex returns the index of the auto-miner with the given id, or -1.
func (s *GameState) AutoMinerIndex(id string) int {
	for i := range s.AutoMiners {
		if s.AutoMiners[i].ID == id {
			return i
		}
	}
	return -1
}

// SpecialIndex returns the index of the special upgrade with the given id, or -1.
func (s *GameState) SpecialIndex(id string) int {
	for i := range s.SpecialUpgrades {
		if s.SpecialUpgrades[i].ID == id {
			return i
		}
	}
	return -1
}

// AchievementIndex returns the index of the achievement with the given id, or -1.
func (s *GameState) AchievementIndex(id string) int {
	for i := range s.Achievements {
		if s.Achievements[i].ID == id {
			return i
		}
	}
	return -1
}

// AbilityIndex returns the index of the ability with the given id, or -1.
func (s *GameState) AbilityIndex(id string) int {
	for i := range s.Abilities {
		if s.Abilities[i].ID == id {
			return i
		}
	}
	return -1
}

// OwnsSpecial reports whether a special upgrade with the given effect is
// owned, returning the first owned entry.
func (s *GameState) OwnsSpecial(effect SpecialEffect) (SpecialUpgrade, bool) {
	for _, su := range s.SpecialUpgrades {
		if su.Owned && su.Effect == effect {
			return su, true
		}
	}
	return SpecialUpgrade{}, false
}

// MinersOwned returns the total number of auto-miner units owned.
func (s *GameState) MinersOwned() int {
	n := 0
	for _, m := range s.AutoMiners {
		n += m.Count
	}
	return n
}

// AbilitiesBusy reports whether any ability is active or cooling down.
func (s *GameState) AbilitiesBusy() bool {
	for _, a := range s.Abilities {
		if a.Active || a.CooldownRemaining > 0 {
			return true
		}
	}
	return false
}

// HasPrestigeProgress reports whether the snapshot carries non-default
// prestige state (rebirths or gold coins).
func (s *GameState) HasPrestigeProgress() bool {
	return s.Rebirths > 0 || s.GoldCoins > 0
}

// Enabled reports the value of a preference flag.
func (st Settings) Enabled(name Setting) bool {
	switch name {
	case SettingSound:
		return st.Sound
	case SettingHaptics:
		return st.Haptics
	case SettingNotifications:
		return st.Notifications
	case SettingOfflineProgress:
		return st.OfflineProgress
	default:
		return false
	}
}

// With returns a copy of st with the named flag set. Unknown names return
// st unchanged and false.
func (st Settings) With(name Setting, enabled bool) (Settings, bool) {
	switch name {
	case SettingSound:
		st.Sound = enabled
	case SettingHaptics:
		st.Haptics = enabled
	case SettingNotifications:
		st.Notifications = enabled
	case SettingOfflineProgress:
		st.OfflineProgress = enabled
	default:
		return st, false
	}
	return st, true
}
