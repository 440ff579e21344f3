package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/minerush/internal/engine"
	"github.com/roach88/minerush/internal/feedback"
	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/tui"
)

// LogFileName receives log output while the terminal UI owns the screen.
const LogFileName = "minerush.log"

// shutdownTimeout bounds the final save after the UI exits.
const shutdownTimeout = 15 * time.Second

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Mute bool
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Start the game in the terminal.

The saved game is loaded (reconciled with the cloud copy when a remote
store and user are configured), income earned while away is credited,
and progress is saved automatically. Logs go to minerush.log in the data
directory while the game is on screen.

Example:
  minerush play
  minerush play --user alice --mute`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Mute, "mute", false, "disable sound cues for this session")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	// The screen is about to be taken over; keep logs off it.
	logFile, err := os.OpenFile(filepath.Join(sess.cfg.DataDir, LogFileName),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer logFile.Close()
	setupLogging(logFile, opts.Verbose)
	logger := slog.Default()

	screen, err := tcell.NewScreen()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create terminal screen", err)
	}
	if err := screen.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize terminal", err)
	}
	defer screen.Fini()

	app := tui.New(screen, logger)

	var eng *engine.Engine
	sinks := []game.EffectSink{feedback.LogSink{Logger: logger}}
	if sess.cfg.Sound && !opts.Mute {
		sp, err := feedback.NewSpeaker()
		if err != nil {
			logger.Warn("audio unavailable, playing without sound", "error", err)
		} else {
			defer sp.Close()
			sinks = append(sinks, feedback.SoundSink{
				Player:  sp,
				Enabled: func() bool { return eng.Snapshot().Settings.Sound },
			})
		}
	}

	eng = sess.engine(
		engine.WithSink(feedback.Multi(sinks...)),
		engine.WithDisplay(app.ShowCoins),
	)
	app.Attach(eng)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	// The loop outlives a signal so the final save still runs on it;
	// Shutdown closes its queue.
	loopCtx, stopLoop := context.WithCancel(context.WithoutCancel(ctx))
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- eng.Run(loopCtx) }()

	if err := eng.Boot(ctx); err != nil {
		if !engine.IsRecoverable(err) {
			// Leave the stored save untouched rather than overwrite it
			// with a fresh game.
			stopLoop()
			<-loopDone
			return WrapExitError(ExitCommandError, "failed to load saved game", err)
		}
		logger.Warn("boot completed with errors", "error", err)
	}

	uiErr := app.Run(ctx)

	sctx, scancel := context.WithTimeout(loopCtx, shutdownTimeout)
	defer scancel()
	shutdownErr := eng.Shutdown(sctx)
	<-loopDone

	if engine.IsRecoverable(shutdownErr) {
		logger.Warn("final save stayed on this device", "error", shutdownErr)
		shutdownErr = nil
	}
	if shutdownErr != nil {
		logger.Error("final save failed", "error", shutdownErr)
		return WrapExitError(ExitFailure, "final save failed", shutdownErr)
	}
	if uiErr != nil && !errors.Is(uiErr, context.Canceled) {
		return WrapExitError(ExitFailure, "terminal UI failed", uiErr)
	}
	return nil
}
