package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/minerush/internal/catalog"
)

// CatalogSummary counts the entries of a valid catalog.
type CatalogSummary struct {
	Source          string `json:"source"`
	Rocks           int    `json:"rocks"`
	Pickaxes        int    `json:"pickaxes"`
	AutoMiners      int    `json:"auto_miners"`
	SpecialUpgrades int    `json:"special_upgrades"`
	Achievements    int    `json:"achievements"`
	Abilities       int    `json:"abilities"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with item catalogs",
	}
	cmd.AddCommand(newCatalogValidateCommand(rootOpts))
	return cmd
}

func newCatalogValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a catalog file",
		Long: `Validate a catalog against the schema and the cross-entry rules.

Without a file the configured catalog is validated, or the embedded one
when none is configured. Every problem is reported, not just the first.

Exit codes:
  0 - Catalog is valid
  1 - Catalog has validation errors
  2 - Command error (file unreadable, bad config)

Example:
  minerush catalog validate ./catalog.yaml
  minerush catalog validate --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runCatalogValidate(rootOpts, path, cmd)
		},
	}
}

func runCatalogValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	if path == "" {
		cfg, err := loadConfig(opts)
		if err != nil {
			return out.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
		}
		path = cfg.CatalogPath()
	}

	var (
		cat *catalog.Catalog
		err error
	)
	source := path
	if path == "" {
		source = "embedded"
		cat = catalog.Default()
	} else {
		out.VerboseLog("Validating %s", path)
		cat, err = catalog.Load(path)
	}

	var verrs catalog.ValidationErrors
	if errors.As(err, &verrs) {
		if outErr := out.Error(CodeCatalogInvalid,
			fmt.Sprintf("%s: %d validation error(s)", source, len(verrs)), verrs); outErr != nil {
			return outErr
		}
		if opts.Format != "json" {
			for _, v := range verrs {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", v.Error())
			}
		}
		return WrapExitError(ExitFailure, "catalog is invalid", err)
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeCatalogInvalid, "failed to load catalog", err)
	}

	summary := CatalogSummary{
		Source:          source,
		Rocks:           len(cat.Rocks),
		Pickaxes:        len(cat.Upgrades),
		AutoMiners:      len(cat.AutoMiners),
		SpecialUpgrades: len(cat.SpecialUpgrades),
		Achievements:    len(cat.Achievements),
		Abilities:       len(cat.Abilities),
	}
	return out.Report(summary, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s is valid: %d rocks, %d pickaxes, %d auto-miners, %d special upgrades, %d achievements, %d abilities\n",
			summary.Source, summary.Rocks, summary.Pickaxes, summary.AutoMiners,
			summary.SpecialUpgrades, summary.Achievements, summary.Abilities)
	})
}
