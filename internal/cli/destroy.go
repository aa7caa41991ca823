package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drft-io/drft/internal/serializer"
	"github.com/drft-io/drft/internal/stack"
)

func newDestroyCmd(ctx context.Context, st *stack.Stack, reg *serializer.Registry, metricsAddr *string) *cobra.Command {
	var autoApprove, verbose bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete every resource this stack manages",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := st.PlanDestroy(ctx, reg, verbose)
			if err != nil {
				return err
			}
			if len(plan.Operations) == 0 {
				fmt.Println("No resources to destroy.")
				return nil
			}

			renderPlan(plan, verbose)

			if !autoApprove && !confirm() {
				fmt.Println("Destroy cancelled.")
				return &exitError{code: ExitError}
			}

			metrics := newMetricsOrNil(*metricsAddr)
			_, report, err := st.Destroy(ctx, reg, verbose, metrics)
			if err != nil {
				return err
			}

			renderReport(report)
			if !report.Success {
				return &exitError{code: ExitError}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "skip interactive confirmation")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-field diffs and unchanged resources")
	return cmd
}
