package sync

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vendroo/repomirror/cmd/util"
	"github.com/vendroo/repomirror/pkg/config"
	"github.com/vendroo/repomirror/pkg/errors"
	"github.com/vendroo/repomirror/pkg/fswatch"
	"github.com/vendroo/repomirror/pkg/mirror"
	"github.com/vendroo/repomirror/pkg/rules"
)

// watchPollInterval is the fallback cadence for re-syncing in watch mode.
// Filesystem notifications can be lost for files created in directories that
// appear after the watcher was installed, so we periodically sync anyway.
const watchPollInterval = 15 * time.Second

// New creates a new `sync` command.
func New() *cobra.Command {
	var opts mirror.Options
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync [SUBMODULE ...]",
		Short: "Mirror submodules into their sibling repositories",
		Long: "Mirror the named submodules (or every registered submodule when no\n" +
			"names are given) into their sibling repositories next to the monorepo\n" +
			"root. Each submodule's sync rules decide which files are mirrored;\n" +
			"everything else is removed from the sibling.",
		Run: func(cmd *cobra.Command, args []string) {
			store, err := util.GetStore(cmd)
			if err != nil {
				util.HandleFatalError(err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			syncer := mirror.NewSyncer(store, mirror.NewRsyncRunner(), opts)
			if watch {
				if err := watchLoop(ctx, store, syncer, args); err != nil {
					util.HandleFatalError(err)
				}
				return
			}

			summary, err := syncer.Sync(ctx, args)
			if err != nil {
				util.HandleFatalError(err)
			}
			printSummary(summary)
			if err := summary.Err(); err != nil {
				util.HandleFatalError(err)
			}
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.DryRun, "dry-run", false,
		"report what would be mirrored without modifying siblings")
	flags.BoolVar(&opts.CreateMissing, "create-missing", false,
		"create absent sibling directories instead of skipping their submodules")
	flags.IntVar(&opts.Workers, "workers", 1,
		"number of submodules to mirror concurrently")
	flags.BoolVar(&watch, "watch", false,
		"keep running and re-sync whenever watched files change")
	return cmd
}

// watchLoop syncs once, then re-syncs whenever a watched file changes. A slow
// poll ticker catches changes the watchers miss. The loop only exits when the
// context is cancelled.
func watchLoop(ctx context.Context, store *config.Store, syncer mirror.Syncer,
	names []string) error {

	summary, err := syncer.Sync(ctx, names)
	if err != nil {
		return err
	}
	printSummary(summary)

	changed, err := watchSubmodules(store, summary)
	if err != nil {
		if !fswatch.IsWatchLimit(err) {
			return err
		}

		// A nil channel never fires, so the poll ticker carries the loop.
		log.Warnf("Too many files to automatically watch for changes. "+
			"Changes will be picked up by polling every %s instead.", watchPollInterval)
		log.Warn("Raise the kernel's inotify limits to restore instant syncing.")
		changed = nil
	}

	log.Info("Watching for changes. Press Ctrl+C to stop.")
	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
		case <-ticker.C:
		}

		summary, err := syncer.Sync(ctx, names)
		if err != nil {
			return err
		}
		if succeeded, failed, _ := summary.Counts(); failed > 0 {
			printSummary(summary)
		} else if succeeded > 0 {
			log.WithField("submodules", succeeded).Info("Re-synced")
		}
	}
}

// watchSubmodules installs a file watcher on each submodule that took part in
// the initial sync and fans their events into one channel.
func watchSubmodules(store *config.Store, summary mirror.Summary) (chan struct{}, error) {
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	combined := make(chan struct{}, 1)
	for _, res := range summary.Results {
		if res.Status == mirror.StatusSkipped {
			continue
		}

		sm, ok := cfg.Lookup(res.Submodule)
		if !ok {
			continue
		}
		compiled, err := rules.Compile(sm.Rules)
		if err != nil {
			continue
		}

		changed, err := fswatch.Watch(filepath.Join(store.Root(), sm.Name), compiled)
		if err != nil {
			if dneErr, ok := errors.RootCause(err).(errors.FileNotFound); ok {
				return nil, errors.NewFriendlyError(
					"Failed to watch files for syncing.\n"+
						"%q doesn't exist.", dneErr.Path)
			}
			return nil, err
		}
		go func() {
			for range changed {
				select {
				case combined <- struct{}{}:
				default:
				}
			}
		}()
	}
	return combined, nil
}

func printSummary(summary mirror.Summary) {
	for _, res := range summary.Results {
		fmt.Println(res)
	}
	succeeded, failed, skipped := summary.Counts()
	fmt.Printf("%d succeeded, %d failed, %d skipped\n", succeeded, failed, skipped)
}
