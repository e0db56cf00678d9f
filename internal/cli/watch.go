package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
	"github.com/ariel-frischer/apichangelog/internal/config"
	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/notify"
	"github.com/ariel-frischer/apichangelog/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchFlags   runFlags
	watchInitial bool
	watchNotify  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Record a new version whenever the console dump changes",
	Long: `Watch the console dump and run generate each time it is rewritten.

Bursts of writes are debounced (watch_debounce, default 500ms) and runs never
overlap. A failing run is logged and watching continues. Stop with Ctrl+C.

With --notify (or notify: true) a desktop notification is sent after each
run on interactive sessions.`,
	Example: `  # Watch the configured dump
  apichangelog watch

  # Record once immediately, then keep watching
  apichangelog watch --initial`,
	Args: argsError(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyRunFlags(cmd, cfg, watchFlags); err != nil {
			return err
		}
		if watchNotify {
			cfg.Notify = true
		}
		logger := newLogger(cmd.ErrOrStderr())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		notifier := notify.NewHandler(cfg.Notify, logger)
		return runWatch(ctx, cmd.OutOrStdout(), cfg, logger, notifier, watchFlags, watchInitial)
	},
}

func init() {
	watchCmd.GroupID = GroupRecording
	rootCmd.AddCommand(watchCmd)
	addRunFlags(watchCmd, &watchFlags)
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "Run once before waiting for changes")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", false, "Send a desktop notification after each run")
}

// runWatch blocks until ctx is cancelled, recording a version after every
// settled change to the dump. notifier may be nil.
func runWatch(ctx context.Context, out io.Writer, cfg *config.Configuration, logger *zap.Logger, notifier *notify.Handler, f runFlags, initial bool) error {
	w, err := watch.New(cfg.DumpPath, cfg.WatchDebounce, logger)
	if err != nil {
		return clierrors.WatchUnavailable(cfg.DumpPath, err)
	}
	defer w.Close()

	opts := changelog.FormatOptions{Plain: f.Plain}
	run := func(ctx context.Context) error {
		summary, err := changelog.NewWriter(writerOptions(cfg, logger)).Run()
		if err != nil {
			notifier.OnRunFailed(err)
			return err
		}
		notifier.OnVersionRecorded(summary)
		return changelog.FormatSummary(summary, out, opts)
	}

	if initial {
		if err := run(ctx); err != nil {
			logger.Error("initial generation run failed", zap.Error(err))
		}
	}

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", cfg.DumpPath)
	return w.Watch(ctx, run)
}
