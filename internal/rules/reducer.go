package rules

import (
	"math"

	"github.com/roach88/minerush/internal/catalog"
	"github.com/roach88/minerush/internal/game"
)

// Reducer applies actions to snapshots. It holds only the immutable default
// state derived from a catalog and is safe for concurrent use.
type Reducer struct {
	initial *game.GameState
}

// New creates a Reducer whose fresh and post-rebirth states come from cat.
func New(cat *catalog.Catalog) *Reducer {
	s := cat.NewState()
	for i := range s.Abilities {
		s.Abilities[i].Multiplier = AbilityMultiplier(s.Abilities[i].Effect, s.Abilities[i].Level)
	}
	Recompute(s)
	return &Reducer{initial: s}
}

// Initial returns a fresh copy of the default snapshot with derived rates
// filled in. DataLoaded is false until a Load action is applied.
func (r *Reducer) Initial() *game.GameState {
	return r.initial.Clone()
}

// Reduce applies a to s. A rejected action returns s itself and no effects.
func (r *Reducer) Reduce(s *game.GameState, a game.Action) (*game.GameState, []game.Effect) {
	if s == nil {
		s = r.Initial()
	}

	switch a := a.(type) {
	case game.Click:
		return click(s, a)
	case game.BuyUpgrade:
		return buyUpgrade(s, a.ID)
	case game.BuyAutoMiner:
		return buyAutoMiner(s, a.ID)
	case game.BuySpecialUpgrade:
		return r.buySpecialUpgrade(s, a.ID)
	case game.BuyAbility:
		return buyAbility(s, a.ID)
	case game.EvolveUpgrade:
		return evolveUpgrade(s, a.ID)
	case game.EvolveAutoMiner:
		return evolveAutoMiner(s, a.ID)
	case game.SelectRock:
		return selectRock(s, a.ID)
	case game.SelectPickaxe:
		return selectPickaxe(s, a.ID)
	case game.Rebirth:
		return r.rebirth(s)
	case game.ActivateAbility:
		return activateAbility(s, a.ID)
	case game.TickAbilities:
		return tickAbilities(s, a.Seconds)
	case game.UpgradeAbility:
		return upgradeAbility(s, a.ID)
	case game.UnlockAchievement:
		return unlockAchievement(s, a.ID)
	case game.AcknowledgeAchievement:
		return acknowledgeAchievement(s, a.ID)
	case game.ApplyPassiveIncome:
		return applyPassiveIncome(s, a)
	case game.Load:
		return load(s, a.State)
	case game.MarkSaved:
		return markSaved(s, a)
	case game.SetReady:
		if s.DataLoaded == a.Ready {
			return s, nil
		}
		n := next(s)
		n.DataLoaded = a.Ready
		return n, nil
	case game.SetSetting:
		settings, ok := s.Settings.With(a.Setting, a.Enabled)
		if !ok || settings == s.Settings {
			return s, nil
		}
		n := next(s)
		n.Settings = settings
		n.NeedsSave = true
		return n, nil
	case game.DismissNotice:
		if s.ErrorMessage == "" {
			return s, nil
		}
		n := next(s)
		n.ErrorMessage = ""
		return n, nil
	default:
		return s, nil
	}
}

// next returns a shallow copy of s. Catalog slices stay shared until a
// transition clones the one it modifies.
func next(s *game.GameState) *game.GameState {
	n := *s
	return &n
}

// business marks an accepted gameplay change for persistence. Significant
// changes also request a remote write.
func business(n *game.GameState, significant bool) {
	n.NeedsSave = true
	if significant {
		n.NeedsCloudSave = true
	}
}

func click(s *game.GameState, a game.Click) (*game.GameState, []game.Effect) {
	mult, lucky := 1.0, false
	for _, su := range s.SpecialUpgrades {
		if !su.Owned {
			continue
		}
		if mod, ok := clickModifiers[su.Effect]; ok {
			m, l := mod(su, a.Roll)
			mult *= m
			lucky = lucky || l
		}
	}

	gain := s.CPC * mult
	n := next(s)
	n.Coins += gain
	n.TotalCoinsEarned += gain
	n.TotalClicks++
	n.ClickProgress = (s.ClickProgress + 1) % game.ComboWindow
	business(n, false)

	effects := []game.Effect{{Kind: game.EffectClick, Amount: gain}}
	if lucky {
		effects = append(effects, game.Effect{Kind: game.EffectLuckyClick, Amount: gain})
	}

	popup := gain
	combo := false
	if n.ClickProgress == 0 {
		if su, ok := s.OwnsSpecial(game.SpecialCombo); ok {
			factor := su.Magnitude
			if factor <= 0 {
				factor = game.ComboBonusFactor
			}
			bonus := s.CPC * factor
			n.Coins += bonus
			n.TotalCoinsEarned += bonus
			popup += bonus
			combo = true
			effects = append(effects, game.Effect{Kind: game.EffectComboCompleted, Amount: bonus})
		}
	}

	n.CoinAnimations = pushAnimation(s.CoinAnimations, game.CoinAnimation{
		ID:     n.TotalClicks,
		Amount: popup,
		Bonus:  lucky || combo,
	})

	if milestonePending(n, game.AchievementClicks, game.AchievementEarned) {
		effects = append(effects, evaluate(n)...)
	}
	return n, effects
}

// clickModifiers are special upgrades applied to a single click. Each
// returns a multiplier and whether the click counts as lucky.
var clickModifiers = map[game.SpecialEffect]func(su game.SpecialUpgrade, roll float64) (float64, bool){
	game.SpecialDoubleClick: func(su game.SpecialUpgrade, _ float64) (float64, bool) {
		return math.Max(su.Magnitude, 1), false
	},
	game.SpecialLuckyClick: func(su game.SpecialUpgrade, roll float64) (float64, bool) {
		if su.Magnitude > 0 && roll >= 1-su.Magnitude {
			return 2, true
		}
		return 1, false
	},
}

// pushAnimation appends to a fresh slice, evicting the oldest entries
// beyond MaxCoinAnimations.
func pushAnimation(queue []game.CoinAnimation, a game.CoinAnimation) []game.CoinAnimation {
	start := max(len(queue)+1-game.MaxCoinAnimations, 0)
	out := make([]game.CoinAnimation, 0, len(queue)-start+1)
	out = append(out, queue[start:]...)
	return append(out, a)
}

func buyUpgrade(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.UpgradeIndex(id)
	if i < 0 || s.Upgrades[i].Owned || s.Coins < s.Upgrades[i].Cost {
		return s, nil
	}

	n := next(s)
	n.Upgrades = append([]game.Upgrade(nil), s.Upgrades...)
	u := &n.Upgrades[i]
	u.Owned = true
	n.Coins -= u.Cost
	if j := s.UpgradeIndex(s.SelectedPickaxe); j < 0 || u.Rank > s.Upgrades[j].Rank {
		n.SelectedPickaxe = u.ID
	}
	business(n, true)
	Recompute(n)
	return n, []game.Effect{{Kind: game.EffectPurchase, ID: id, Amount: u.Cost}}
}

func buyAutoMiner(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.AutoMinerIndex(id)
	if i < 0 || s.Coins < s.AutoMiners[i].Cost {
		return s, nil
	}

	n := next(s)
	n.AutoMiners = append([]game.AutoMiner(nil), s.AutoMiners...)
	m := &n.AutoMiners[i]
	price := m.Cost
	n.Coins -= price
	m.Count++
	m.Cost = game.MinerCost(m.BaseCost, m.Count)
	business(n, true)
	Recompute(n)

	effects := []game.Effect{{Kind: game.EffectPurchase, ID: id, Amount: price}}
	if milestonePending(n, game.AchievementMiners) {
		effects = append(effects, evaluate(n)...)
	}
	return n, effects
}

func (r *Reducer) buySpecialUpgrade(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.SpecialIndex(id)
	if i < 0 {
		return s, nil
	}
	su := s.SpecialUpgrades[i]
	if s.GoldCoins < su.Cost || (su.Owned && su.Level >= su.MaxLevel) {
		return s, nil
	}

	n := next(s)
	n.SpecialUpgrades = append([]game.SpecialUpgrade(nil), s.SpecialUpgrades...)
	cur := &n.SpecialUpgrades[i]
	n.GoldCoins -= su.Cost
	if cur.Owned {
		cur.Level++
	} else {
		cur.Owned = true
		cur.Level = 1
	}
	// Priced from the catalog base so a saved game decodes to the same cost.
	if j := r.initial.SpecialIndex(id); j >= 0 {
		base := r.initial.SpecialUpgrades[j]
		base.Owned, base.Level = true, cur.Level
		cur.Cost = catalog.SpecialCost(base)
	}
	business(n, true)
	Recompute(n)
	return n, []game.Effect{{Kind: game.EffectPurchase, ID: id, Amount: float64(su.Cost)}}
}

func evolveUpgrade(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.UpgradeIndex(id)
	if i < 0 {
		return s, nil
	}
	u := s.Upgrades[i]
	price := game.EvolutionPrice(u.EvolutionCost, u.Evolution)
	if !u.Owned || u.Evolution >= game.MaxEvolution || s.GoldCoins < price {
		return s, nil
	}

	n := next(s)
	n.Upgrades = append([]game.Upgrade(nil), s.Upgrades...)
	n.Upgrades[i].Evolution++
	n.GoldCoins -= price
	business(n, true)
	Recompute(n)
	return n, []game.Effect{{Kind: game.EffectEvolved, ID: id, Amount: float64(n.Upgrades[i].Evolution)}}
}

func evolveAutoMiner(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.AutoMinerIndex(id)
	if i < 0 {
		return s, nil
	}
	m := s.AutoMiners[i]
	price := game.EvolutionPrice(m.EvolutionCost, m.Evolution)
	if m.Count == 0 || m.Evolution >= game.MaxEvolution || s.GoldCoins < price {
		return s, nil
	}

	n := next(s)
	n.AutoMiners = append([]game.AutoMiner(nil), s.AutoMiners...)
	n.AutoMiners[i].Evolution++
	n.GoldCoins -= price
	business(n, true)
	Recompute(n)
	return n, []game.Effect{{Kind: game.EffectEvolved, ID: id, Amount: float64(n.AutoMiners[i].Evolution)}}
}

func selectRock(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.RockIndex(id)
	if i < 0 || id == s.SelectedRock {
		return s, nil
	}
	rock := s.Rocks[i]
	if !rock.Unlocked && s.Coins < rock.Cost {
		return s, nil
	}

	n := next(s)
	significant := false
	if !rock.Unlocked {
		n.Rocks = append([]game.Rock(nil), s.Rocks...)
		n.Rocks[i].Unlocked = true
		n.Coins -= rock.Cost
		significant = true
	}
	n.SelectedRock = id
	business(n, significant)
	Recompute(n)
	return n, []game.Effect{{Kind: game.EffectRockSelected, ID: id}}
}

func selectPickaxe(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.UpgradeIndex(id)
	if i < 0 || !s.Upgrades[i].Owned || id == s.SelectedPickaxe {
		return s, nil
	}
	n := next(s)
	n.SelectedPickaxe = id
	business(n, false)
	return n, nil
}

func applyPassiveIncome(s *game.GameState, a game.ApplyPassiveIncome) (*game.GameState, []game.Effect) {
	if !(a.Amount > 0) || math.IsInf(a.Amount, 0) {
		return s, nil
	}

	n := next(s)
	n.Coins += a.Amount
	n.TotalCoinsEarned += a.Amount
	business(n, false)

	var effects []game.Effect
	if a.Offline {
		effects = append(effects, game.Effect{
			Kind:    game.EffectOfflineEarnings,
			Amount:  a.Amount,
			Message: offlineMessage(a.Seconds),
		})
	}
	if milestonePending(n, game.AchievementEarned) {
		effects = append(effects, evaluate(n)...)
	}
	return n, effects
}

// load replaces the snapshot wholesale. The incoming state is copied so the
// caller keeps ownership of it; derived values are recomputed rather than
// trusted.
func load(s, incoming *game.GameState) (*game.GameState, []game.Effect) {
	if incoming == nil {
		return s, nil
	}
	n := incoming.Clone()
	for i := range n.Abilities {
		n.Abilities[i].Multiplier = AbilityMultiplier(n.Abilities[i].Effect, n.Abilities[i].Level)
	}
	if n.BonusMultiplier < 1 {
		n.BonusMultiplier = 1
	}
	n.DataLoaded = true
	n.NeedsSave = false
	n.NeedsCloudSave = false
	n.ErrorMessage = incoming.ErrorMessage
	Recompute(n)
	return n, nil
}

func markSaved(s *game.GameState, a game.MarkSaved) (*game.GameState, []game.Effect) {
	n := next(s)
	n.LastSaved = a.LastSaved
	n.Version = a.Version
	n.NeedsSave = false
	n.NeedsCloudSave = s.NeedsCloudSave && a.CloudFailed
	if a.Notice == "" {
		return n, nil
	}
	n.ErrorMessage = a.Notice
	return n, []game.Effect{{Kind: game.EffectSyncNotice, Message: a.Notice}}
}
