// Package cli is the thin cobra front-end driving internal/stack's entry
// points (Plan, Apply, PlanDestroy, Destroy, Refresh). Per the engine's own design note ("Provider singleton / stack
// registration... replace with explicit parameter passing; do not
// replicate the global"), there is no process-wide stack variable the
// way the teacher's PKL-loading CLI keeps one: Dispatch takes the caller's
// already-constructed *stack.Stack explicitly and builds a fresh command
// tree closed over it on every call.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/drft-io/drft/internal/executor"
	"github.com/drft-io/drft/internal/serializer"
	"github.com/drft-io/drft/internal/stack"
)

// ExitOK and ExitError are the two exit statuses every subcommand
// produces, per the external CLI contract: 0 on success, 1 on error or a
// failed/declined apply.
const (
	ExitOK    = 0
	ExitError = 1
)

// Dispatch builds the command tree for st and runs args against it,
// returning the process exit code. reg is the serializer registry the
// caller used to register st's resource and state types; a real stack
// loader builds one alongside the stack itself and passes both through
// here. The persistent --metrics-addr flag, if non-empty, starts a
// Prometheus /metrics endpoint for the duration of an apply or destroy.
func Dispatch(ctx context.Context, st *stack.Stack, reg *serializer.Registry, args []string) int {
	root := &cobra.Command{
		Use:           "drft",
		Short:         "Drift-aware declarative resource management",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var metricsAddr string
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on during apply/destroy")

	root.AddCommand(
		newPlanCmd(ctx, st, reg),
		newApplyCmd(ctx, st, reg, &metricsAddr),
		newDestroyCmd(ctx, st, reg, &metricsAddr),
		newRefreshCmd(ctx, st),
		newValidateCmd(st),
		newGraphCmd(st),
		newWatchCmd(ctx, st, reg),
	)

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.err != nil {
				printError(exit.err)
			}
			return exit.code
		}
		printError(err)
		return ExitError
	}
	return ExitOK
}

// exitError lets a RunE signal "operation ran cleanly but the run itself
// failed" (a declined or partially-failed apply/destroy) without cobra's
// own error path forcing a usage dump, while still letting Dispatch learn
// the right exit code from the one value RunE returns.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func newMetricsOrNil(addr string) *executor.Metrics {
	if addr == "" {
		return nil
	}
	return startMetricsServer(addr)
}
