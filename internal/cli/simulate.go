package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/minerush/internal/catalog"
	"github.com/roach88/minerush/internal/display"
	"github.com/roach88/minerush/internal/engine"
	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/rules"
)

// simStart is the virtual time every simulation starts at.
var simStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Duration time.Duration
	Clicks   int    // clicks per simulated second
	Buy      bool   // greedily buy the cheapest affordable item each second
	Rebirth  bool   // rebirth as soon as it is available
	Seed     uint64 // lucky-click random seed
	Catalog  string // catalog file, "" for the configured one
}

// SimulationSummary is the outcome of a simulated run.
type SimulationSummary struct {
	Duration         string         `json:"duration"`
	Coins            float64        `json:"coins"`
	TotalCoinsEarned float64        `json:"total_coins_earned"`
	GoldCoins        int64          `json:"gold_coins"`
	CPC              float64        `json:"cpc"`
	CPS              float64        `json:"cps"`
	TotalClicks      int64          `json:"total_clicks"`
	Rebirths         int            `json:"rebirths"`
	MinersOwned      int            `json:"miners_owned"`
	SelectedRock     string         `json:"selected_rock"`
	SelectedPickaxe  string         `json:"selected_pickaxe"`
	Purchases        []string       `json:"purchases,omitempty"`
	Achievements     []string       `json:"achievements,omitempty"`
	Effects          map[string]int `json:"effects"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project a fresh game on a virtual clock",
		Long: `Play a fresh game headlessly on a virtual clock and report where it ends up.

Each simulated second the player clicks --clicks times and, with --buy,
buys the cheapest affordable rock, pickaxe or auto-miner until nothing
is affordable. Nothing is saved. Use it to check catalog balance.

Example:
  minerush simulate --duration 1h
  minerush simulate --duration 30m --clicks 0 --format json
  minerush simulate --catalog ./catalog.yaml --duration 6h --rebirth`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Duration, "duration", time.Hour, "simulated play time")
	cmd.Flags().IntVar(&opts.Clicks, "clicks", 5, "clicks per simulated second")
	cmd.Flags().BoolVar(&opts.Buy, "buy", true, "buy the cheapest affordable item each second")
	cmd.Flags().BoolVar(&opts.Rebirth, "rebirth", false, "rebirth whenever possible")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed for lucky clicks")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog file to simulate (default: configured catalog)")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	var err error
	if opts.Duration <= 0 || opts.Clicks < 0 {
		return out.Fail(ExitCommandError, CodeSimulationError, "duration must be positive and clicks non-negative", nil)
	}

	var cat *catalog.Catalog
	if opts.Catalog != "" {
		cat, err = catalog.Load(opts.Catalog)
	} else {
		cfg, cerr := loadConfig(opts.RootOptions)
		if cerr != nil {
			return out.Fail(ExitCommandError, CodeConfig, "failed to load config", cerr)
		}
		cat, err = loadCatalog(cfg)
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeCatalogInvalid, "failed to load catalog", err)
	}

	summary, err := simulate(cmd.Context(), cat, opts)
	if err != nil {
		return out.Fail(ExitFailure, CodeSimulationError, "simulation failed", err)
	}
	return out.Report(summary, func(w io.Writer) { writeSummary(w, summary) })
}

// simulate runs a session without persistence on a manual clock.
func simulate(ctx context.Context, cat *catalog.Catalog, opts *SimulateOptions) (*SimulationSummary, error) {
	summary := &SimulationSummary{Duration: opts.Duration.String(), Effects: map[string]int{}}
	clock := engine.NewManualClock(simStart)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	timing := engine.DefaultTiming()

	eng := engine.New(rules.New(cat), nil,
		engine.WithClock(clock),
		engine.WithTiming(timing),
		engine.WithRand(rng.Float64),
		engine.WithSession(engine.FixedSession("simulate")),
		engine.WithLogger(slog.Default()),
		engine.WithSink(game.EffectSinkFunc(func(e game.Effect) {
			summary.Effects[string(e.Kind)]++
			switch e.Kind {
			case game.EffectPurchase:
				summary.Purchases = append(summary.Purchases, e.ID)
			case game.EffectAchievementUnlocked:
				summary.Achievements = append(summary.Achievements, e.ID)
			}
		})),
	)
	if err := eng.Boot(ctx); err != nil {
		return nil, err
	}

	for elapsed := time.Duration(0); elapsed < opts.Duration; elapsed += time.Second {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for range opts.Clicks {
			eng.Dispatch(game.Click{})
		}
		eng.Drain()
		if opts.Rebirth && rules.CanRebirth(eng.Snapshot()) {
			eng.Dispatch(game.Rebirth{})
			eng.Drain()
		}
		if opts.Buy {
			buyGreedily(eng)
		}
		for step := time.Duration(0); step < time.Second; step += timing.IncomeTick {
			clock.Advance(timing.IncomeTick)
			eng.Drain()
		}
	}

	final := eng.Snapshot()
	if err := eng.Shutdown(ctx); err != nil {
		return nil, err
	}

	summary.Coins = final.Coins
	summary.TotalCoinsEarned = final.TotalCoinsEarned
	summary.GoldCoins = final.GoldCoins
	summary.CPC = final.CPC
	summary.CPS = final.CPS
	summary.TotalClicks = final.TotalClicks
	summary.Rebirths = final.Rebirths
	summary.MinersOwned = final.MinersOwned()
	summary.SelectedRock = final.SelectedRock
	summary.SelectedPickaxe = final.SelectedPickaxe
	return summary, nil
}

// purchase is one item the simulated player could buy.
type purchase struct {
	action game.Action
	cost   float64
}

// buyGreedily buys the cheapest affordable item until none is left.
func buyGreedily(eng *engine.Engine) {
	for {
		s := eng.Snapshot()
		options := purchases(s)
		if len(options) == 0 {
			return
		}
		best := slices.MinFunc(options, func(a, b purchase) int { return cmp.Compare(a.cost, b.cost) })
		if best.cost > s.Coins {
			return
		}
		eng.Dispatch(best.action)
		eng.Drain()
		if eng.Snapshot() == s {
			return
		}
	}
}

func purchases(s *game.GameState) []purchase {
	var out []purchase
	current := 0.0
	if i := s.RockIndex(s.SelectedRock); i >= 0 {
		current = s.Rocks[i].ClickPower
	}
	for _, r := range s.Rocks {
		if !r.Unlocked && r.ClickPower > current {
			out = append(out, purchase{game.SelectRock{ID: r.ID}, r.Cost})
		}
	}
	for _, u := range s.Upgrades {
		if !u.Owned {
			out = append(out, purchase{game.BuyUpgrade{ID: u.ID}, u.Cost})
		}
	}
	for _, m := range s.AutoMiners {
		out = append(out, purchase{game.BuyAutoMiner{ID: m.ID}, m.Cost})
	}
	return out
}

func writeSummary(w io.Writer, s *SimulationSummary) {
	f := display.Default
	fmt.Fprintf(w, "Simulated %s\n", s.Duration)
	fmt.Fprintf(w, "  Coins:        %s (earned %s)\n", f.Coins(s.Coins), f.Coins(s.TotalCoinsEarned))
	fmt.Fprintf(w, "  Gold:         %s\n", f.Gold(s.GoldCoins))
	fmt.Fprintf(w, "  Per click:    %s\n", f.Coins(s.CPC))
	fmt.Fprintf(w, "  Per second:   %s\n", f.Rate(s.CPS))
	fmt.Fprintf(w, "  Clicks:       %d\n", s.TotalClicks)
	fmt.Fprintf(w, "  Miners:       %d\n", s.MinersOwned)
	fmt.Fprintf(w, "  Rock/pickaxe: %s / %s\n", s.SelectedRock, s.SelectedPickaxe)
	fmt.Fprintf(w, "  Rebirths:     %d\n", s.Rebirths)
	fmt.Fprintf(w, "  Purchases:    %d\n", len(s.Purchases))
	if len(s.Achievements) > 0 {
		fmt.Fprintf(w, "  Achievements: %v\n", s.Achievements)
	}
}
