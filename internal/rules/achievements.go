package rules

import "github.com/roach88/minerush/internal/game"

// progress returns the counter an achievement kind is measured against.
func progress(s *game.GameState, kind game.AchievementKind) float64 {
	switch kind {
	case game.AchievementClicks:
		return float64(s.TotalClicks)
	case game.AchievementEarned:
		return s.TotalCoinsEarned
	case game.AchievementRebirths:
		return float64(s.Rebirths)
	case game.AchievementMiners:
		return float64(s.MinersOwned())
	default:
		return 0
	}
}

// Satisfied reports whether an achievement's condition holds in s.
func Satisfied(s *game.GameState, a game.Achievement) bool {
	return progress(s, a.Kind) >= a.Target
}

// milestonePending is the click-path shortcut: it reports whether any
// locked achievement of the given kinds has had its target crossed, so the
// full evaluator runs only on the clicks that can unlock something.
func milestonePending(s *game.GameState, kinds ...game.AchievementKind) bool {
	for _, a := range s.Achievements {
		if a.Unlocked {
			continue
		}
		for _, k := range kinds {
			if a.Kind == k && Satisfied(s, a) {
				return true
			}
		}
	}
	return false
}

// EvaluateAchievements unlocks every locked achievement whose condition
// holds in s, applying rewards. It returns s unchanged when nothing
// unlocks.
func EvaluateAchievements(s *game.GameState) (*game.GameState, []game.Effect) {
	if !milestonePending(s, game.AchievementClicks, game.AchievementEarned,
		game.AchievementRebirths, game.AchievementMiners) {
		return s, nil
	}
	n := next(s)
	return n, evaluate(n)
}

// evaluate unlocks satisfied achievements on n, which the caller owns.
// A coin reward can satisfy an earned-kind achievement, so the scan repeats
// until nothing changes.
func evaluate(n *game.GameState) []game.Effect {
	var effects []game.Effect
	cloned, bonus := false, false

	for changed := true; changed; {
		changed = false
		for i := range n.Achievements {
			a := n.Achievements[i]
			if a.Unlocked || !Satisfied(n, a) {
				continue
			}
			if !cloned {
				n.Achievements = append([]game.Achievement(nil), n.Achievements...)
				cloned = true
			}
			bonus = grant(n, i) || bonus
			effects = append(effects, game.Effect{
				Kind:    game.EffectAchievementUnlocked,
				ID:      a.ID,
				Amount:  a.Reward,
				Message: a.Name,
			})
			changed = true
		}
	}

	if bonus {
		Recompute(n)
	}
	return effects
}

// grant unlocks achievement i and pays its reward. It reports whether the
// bonus multiplier changed.
func grant(n *game.GameState, i int) bool {
	a := &n.Achievements[i]
	a.Unlocked = true
	a.Shown = false
	business(n, true)

	switch a.RewardKind {
	case game.RewardBonus:
		n.BonusMultiplier += a.Reward
		return a.Reward != 0
	default:
		n.Coins += a.Reward
		n.TotalCoinsEarned += a.Reward
		return false
	}
}

func unlockAchievement(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.AchievementIndex(id)
	if i < 0 || s.Achievements[i].Unlocked || !Satisfied(s, s.Achievements[i]) {
		return s, nil
	}

	n := next(s)
	n.Achievements = append([]game.Achievement(nil), s.Achievements...)
	a := n.Achievements[i]
	if grant(n, i) {
		Recompute(n)
	}
	effects := []game.Effect{{
		Kind:    game.EffectAchievementUnlocked,
		ID:      a.ID,
		Amount:  a.Reward,
		Message: a.Name,
	}}
	// A coin reward may cross the next earned threshold.
	if milestonePending(n, game.AchievementEarned) {
		effects = append(effects, evaluate(n)...)
	}
	return n, effects
}

func acknowledgeAchievement(s *game.GameState, id string) (*game.GameState, []game.Effect) {
	i := s.AchievementIndex(id)
	if i < 0 || !s.Achievements[i].Unlocked || s.Achievements[i].Shown {
		return s, nil
	}
	n := next(s)
	n.Achievements = append([]game.Achievement(nil), s.Achievements...)
	n.Achievements[i].Shown = true
	business(n, false)
	return n, nil
}
