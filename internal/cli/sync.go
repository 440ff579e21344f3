package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/minerush/internal/engine"
)

// SyncReport is the outcome of a forced sync.
type SyncReport struct {
	Message   string `json:"message"`
	Updated   bool   `json:"updated"`
	Remote    bool   `json:"remote"`
	LastSaved int64  `json:"last_saved"`
	Version   int64  `json:"version"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Force a cloud sync",
		Long: `Save the game to the cloud now and pull the cloud copy if it is newer.

Income earned since the last save is credited first, exactly as when the
game starts. Requires a remote store and a user in the configuration
(or --user).

Exit codes:
  0 - Synced, or already up to date
  1 - The cloud could not be reached; the save stayed on this device
  2 - Command error (no remote configured, database unreadable)

Example:
  minerush sync --user alice`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
	return cmd
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	sess, err := openSession(opts)
	if err != nil {
		return out.Fail(GetExitCode(err), CodeStorage, "failed to open save", err)
	}
	defer sess.Close()

	if !sess.synced() {
		return out.Fail(ExitCommandError, CodeRemoteDisabled,
			"sync needs a remote store and a user; set remote and user in the config", nil)
	}

	ctx := cmd.Context()
	eng := sess.engine()
	if err := eng.Boot(ctx); err != nil && !engine.IsRecoverable(err) {
		return out.Fail(ExitCommandError, CodeStorage, "failed to load saved game", err)
	}

	res, syncErr := eng.ForceSync(ctx)
	if err := eng.Shutdown(ctx); err != nil && !engine.IsRecoverable(err) {
		return out.Fail(ExitCommandError, CodeStorage, "failed to save", err)
	}
	if syncErr != nil && !engine.IsRecoverable(syncErr) {
		return out.Fail(ExitCommandError, CodeStorage, "sync failed", syncErr)
	}

	report := SyncReport{
		Message:   res.Message(),
		Updated:   res.Updated,
		Remote:    res.Remote,
		LastSaved: res.LastSaved,
		Version:   res.Version,
	}
	if res.RemoteErr != nil {
		return out.Fail(ExitFailure, CodeRemote, report.Message, res.RemoteErr)
	}
	return out.Report(report, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s (version %d)\n", report.Message, report.Version)
	})
}
