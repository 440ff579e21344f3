package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/minerush/internal/persist"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Yes bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved game",
		Long: `Delete the saved game on this device and, when signed in, in the cloud.

This cannot be undone. Pass --yes to confirm.

Example:
  minerush reset --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm deleting the saved game")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	if !opts.Yes {
		return out.Fail(ExitCommandError, CodeNotConfirmed,
			"reset deletes your saved game; pass --yes to confirm", nil)
	}

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return out.Fail(GetExitCode(err), CodeStorage, "failed to open save", err)
	}
	defer sess.Close()

	if err := sess.coord.Reset(cmd.Context()); err != nil {
		if persist.IsRemoteError(err) {
			return out.Fail(ExitFailure, CodeRemote, "local save deleted; cloud save could not be deleted", err)
		}
		return out.Fail(ExitCommandError, CodeStorage, "failed to delete save", err)
	}

	return out.Report(map[string]bool{"local": true, "remote": sess.synced()}, func(w io.Writer) {
		if sess.synced() {
			fmt.Fprintln(w, "✓ Saved game deleted on this device and in the cloud")
			return
		}
		fmt.Fprintln(w, "✓ Saved game deleted")
	})
}
