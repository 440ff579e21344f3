package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/minerush/internal/display"
	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/persist"
	"github.com/roach88/minerush/internal/rules"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Refresh bool // reconcile with the remote copy before reporting
}

// StatusReport summarizes a saved game.
type StatusReport struct {
	Saved            bool           `json:"saved"`
	Source           persist.Source `json:"source"`
	Coins            float64        `json:"coins"`
	TotalCoinsEarned float64        `json:"total_coins_earned"`
	GoldCoins        int64          `json:"gold_coins"`
	CPC              float64        `json:"cpc"`
	CPS              float64        `json:"cps"`
	TotalClicks      int64          `json:"total_clicks"`
	Rebirths         int            `json:"rebirths"`
	BonusMultiplier  float64        `json:"bonus_multiplier"`
	Miners           map[string]int `json:"miners"`
	SelectedRock     string         `json:"selected_rock"`
	SelectedPickaxe  string         `json:"selected_pickaxe"`
	Achievements     int            `json:"achievements"`
	AchievementTotal int            `json:"achievement_total"`
	RebirthReady     bool           `json:"rebirth_ready"`
	RebirthReward    int64          `json:"rebirth_reward"`
	OfflinePending   float64        `json:"offline_pending,omitempty"`
	LastSaved        string         `json:"last_saved,omitempty"`
	Version          int64          `json:"version"`
	Synced           bool           `json:"synced"`
	Notice           string         `json:"notice,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved game",
		Long: `Show the saved game without playing it.

The local save is read; the cloud copy is read only when no local save
exists or --refresh is given. With --refresh the newer copy wins and is
written back to the other store.

Example:
  minerush status
  minerush status --refresh --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "reconcile with the cloud copy first")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return out.Fail(GetExitCode(err), CodeStorage, "failed to open save", err)
	}
	defer sess.Close()

	s, res, err := sess.coord.Load(cmd.Context(), opts.Refresh)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStorage, "failed to read save", err)
	}

	report := StatusReport{Saved: s != nil, Source: res.Source, Synced: sess.synced()}
	if s == nil {
		s = rules.New(sess.catalog).Initial()
	} else {
		// Snapshots do not carry trusted rates.
		rules.Recompute(s)
	}
	fillStatus(&report, s, time.Now())
	if res.RemoteErr != nil {
		report.Notice = persist.SaveResult{RemoteErr: res.RemoteErr}.Notice()
	}
	if res.Corrupt {
		report.Notice = "a stored save was unreadable and was ignored"
	}

	return out.Report(report, func(w io.Writer) { writeStatus(w, &report) })
}

func fillStatus(r *StatusReport, s *game.GameState, now time.Time) {
	r.Coins = s.Coins
	r.TotalCoinsEarned = s.TotalCoinsEarned
	r.GoldCoins = s.GoldCoins
	r.CPC = s.CPC
	r.CPS = s.CPS
	r.TotalClicks = s.TotalClicks
	r.Rebirths = s.Rebirths
	r.BonusMultiplier = s.BonusMultiplier
	r.SelectedRock = s.SelectedRock
	r.SelectedPickaxe = s.SelectedPickaxe
	r.Version = s.Version
	r.RebirthReady = rules.CanRebirth(s)
	r.RebirthReward = rules.RebirthReward(s.TotalCoinsEarned)

	r.Miners = make(map[string]int)
	for _, m := range s.AutoMiners {
		if m.Count > 0 {
			r.Miners[m.ID] = m.Count
		}
	}
	r.AchievementTotal = len(s.Achievements)
	for _, a := range s.Achievements {
		if a.Unlocked {
			r.Achievements++
		}
	}
	if s.LastSaved > 0 {
		r.LastSaved = time.UnixMilli(s.LastSaved).UTC().Format(time.RFC3339)
	}
	if amount, _, ok := rules.OfflineProgress(s, now); ok {
		r.OfflinePending = amount
	}
}

func writeStatus(w io.Writer, r *StatusReport) {
	f := display.Default
	if !r.Saved {
		fmt.Fprintln(w, "No saved game; a new game starts with:")
	} else {
		fmt.Fprintf(w, "Saved game (%s, version %d, saved %s)\n", r.Source, r.Version, r.LastSaved)
	}
	fmt.Fprintf(w, "  Coins:        %s (earned %s)\n", f.Coins(r.Coins), f.Coins(r.TotalCoinsEarned))
	fmt.Fprintf(w, "  Gold:         %s (bonus %s)\n", f.Gold(r.GoldCoins), f.Multiplier(r.BonusMultiplier))
	fmt.Fprintf(w, "  Per click:    %s\n", f.Coins(r.CPC))
	fmt.Fprintf(w, "  Per second:   %s\n", f.Rate(r.CPS))
	fmt.Fprintf(w, "  Clicks:       %d\n", r.TotalClicks)
	fmt.Fprintf(w, "  Rock/pickaxe: %s / %s\n", r.SelectedRock, r.SelectedPickaxe)
	for _, id := range slices.Sorted(maps.Keys(r.Miners)) {
		fmt.Fprintf(w, "  Miner:        %s x%d\n", id, r.Miners[id])
	}
	fmt.Fprintf(w, "  Achievements: %d/%d\n", r.Achievements, r.AchievementTotal)
	fmt.Fprintf(w, "  Rebirths:     %d\n", r.Rebirths)
	if r.RebirthReady {
		fmt.Fprintf(w, "  Rebirth ready for %s gold\n", f.Gold(r.RebirthReward))
	}
	if r.OfflinePending > 0 {
		fmt.Fprintf(w, "  Waiting:      %s earned while away\n", f.Coins(r.OfflinePending))
	}
	if r.Synced {
		fmt.Fprintln(w, "  Cloud sync:   on")
	} else {
		fmt.Fprintln(w, "  Cloud sync:   off")
	}
	if r.Notice != "" {
		fmt.Fprintf(w, "  Notice:       %s\n", r.Notice)
	}
}
