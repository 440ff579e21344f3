package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/minerush/internal/remote"
)

// NewRemoteCommand creates the remote command group.
func NewRemoteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage the cloud save store",
	}
	cmd.AddCommand(newRemoteProvisionCommand(rootOpts))
	return cmd
}

func newRemoteProvisionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the cloud save table",
		Long: `Create the game_saves table in the configured remote store.

Safe to run more than once. The remote driver and DSN come from the
config file (remote.driver: postgres or sqlite3, remote.dsn).

Example:
  minerush remote provision --config ./minerush.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoteProvision(rootOpts, cmd)
		},
	}
}

func runRemoteProvision(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	cfg, err := loadConfig(opts)
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}
	if !cfg.Remote.Enabled() {
		return out.Fail(ExitCommandError, CodeRemoteDisabled, "no remote store configured", nil)
	}

	rs, err := remote.Open(cfg.Remote.Driver, cfg.Remote.DSN)
	if err != nil {
		return out.Fail(ExitCommandError, CodeRemote, "failed to open remote store", err)
	}
	defer rs.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.Remote)
	defer cancel()
	if err := rs.Provision(ctx); err != nil {
		return out.Fail(ExitFailure, CodeRemote, "failed to provision remote store", err)
	}

	return out.Report(map[string]string{"driver": cfg.Remote.Driver}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Remote store provisioned (%s)\n", cfg.Remote.Driver)
	})
}
