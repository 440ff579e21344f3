package game

// EffectKind categorizes something that happened during a transition.
type EffectKind string

const (
	EffectClick               EffectKind = "click"
	EffectLuckyClick          EffectKind = "lucky_click"
	EffectComboCompleted      EffectKind = "combo_completed"
	EffectPurchase            EffectKind = "purchase"
	EffectEvolved             EffectKind = "evolved"
	EffectRockSelected        EffectKind = "rock_selected"
	EffectAbilityActivated    EffectKind = "ability_activated"
	EffectAbilityExpired      EffectKind = "ability_expired"
	EffectAbilityReady        EffectKind = "ability_ready"
	EffectAbilityUpgraded     EffectKind = "ability_upgraded"
	EffectAchievementUnlocked EffectKind = "achievement_unlocked"
	EffectRebirth             EffectKind = "rebirth"
	EffectOfflineEarnings     EffectKind = "offline_earnings"
	EffectSyncNotice          EffectKind = "sync_notice"
)

// Effect is a notification returned by the reducer alongside the next state.
//
// The reducer never performs I/O; a presentation layer may turn effects
// into sounds, haptics or popups. Nothing in the engine depends on an
// effect having been delivered.
type Effect struct {
	Kind    EffectKind `json:"kind" yaml:"kind"`
	ID      string     `json:"id,omitempty" yaml:"id,omitempty"`
	Amount  float64    `json:"amount,omitempty" yaml:"amount,omitempty"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty"`
}

// EffectSink receives effects emitted by the engine.
type EffectSink interface {
	Notify(e Effect)
}

// EffectSinkFunc adapts a function to EffectSink.
type EffectSinkFunc func(e Effect)

// Notify calls f(e).
func (f EffectSinkFunc) Notify(e Effect) { f(e) }
