package rules

import (
	"fmt"
	"time"

	"github.com/roach88/minerush/internal/game"
)

// OfflineProgress returns the catch-up earned between the last save and
// now: cps times whole elapsed seconds. ok is false when offline progress
// is disabled, nothing was ever saved, income is zero, or fewer than
// OfflineMinimumSeconds have passed.
func OfflineProgress(s *game.GameState, now time.Time) (amount float64, seconds int64, ok bool) {
	if !s.Settings.OfflineProgress || s.LastSaved <= 0 || !(s.CPS > 0) {
		return 0, 0, false
	}
	seconds = (now.UnixMilli() - s.LastSaved) / 1000
	if seconds < game.OfflineMinimumSeconds {
		return 0, 0, false
	}
	return s.CPS * float64(seconds), seconds, true
}

// OfflineAction wraps OfflineProgress into the action that applies it.
func OfflineAction(s *game.GameState, now time.Time) (game.ApplyPassiveIncome, bool) {
	amount, seconds, ok := OfflineProgress(s, now)
	if !ok {
		return game.ApplyPassiveIncome{}, false
	}
	return game.ApplyPassiveIncome{Amount: amount, Offline: true, Seconds: seconds}, true
}

func offlineMessage(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("away for %s", (time.Duration(seconds) * time.Second).String())
}
