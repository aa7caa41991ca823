package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/drft-io/drft/internal/serializer"
	"github.com/drft-io/drft/internal/stack"
	"github.com/drft-io/drft/internal/state"
)

// watchReloadDelay debounces bursts of filesystem events (editors commonly
// emit several writes per save) into a single re-plan.
const watchReloadDelay = 300 * time.Millisecond

// newWatchCmd is a dev convenience with no counterpart in the external CLI
// surface's plan/apply/destroy/refresh contract: it watches the package
// manifest's directory and re-runs plan on every change, so a user editing
// drft.yaml sees an updated plan without re-invoking the command by hand.
// Only that directory itself is watched, not its subdirectories, so writes
// to a state file under .drft/ do not trigger a re-plan.
func newWatchCmd(ctx context.Context, st *stack.Stack, reg *serializer.Registry) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-plan automatically whenever the package manifest changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := state.FindPackageRoot()
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("watch: create watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch: add %s: %w", dir, err)
			}

			fmt.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", dir)
			runPlan := func() {
				plan, err := st.Plan(ctx, reg, verbose)
				if err != nil {
					printError(err)
					return
				}
				renderPlan(plan, verbose)
			}
			runPlan()

			var reloadTimer *time.Timer
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					if reloadTimer != nil {
						reloadTimer.Stop()
					}
					reloadTimer = time.AfterFunc(watchReloadDelay, runPlan)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					printError(fmt.Errorf("watch: %w", err))
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-field diffs and unchanged resources on each re-plan")
	return cmd
}
