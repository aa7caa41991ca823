package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drft-io/drft/internal/serializer"
	"github.com/drft-io/drft/internal/stack"
)

func newApplyCmd(ctx context.Context, st *stack.Stack, reg *serializer.Registry, metricsAddr *string) *cobra.Command {
	var autoApprove, verbose bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the desired resources against actual state",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := st.Plan(ctx, reg, verbose)
			if err != nil {
				return err
			}
			if len(plan.Operations) == 0 {
				fmt.Println("No changes. Infrastructure is up-to-date.")
				return nil
			}

			renderPlan(plan, verbose)

			if !autoApprove && !confirm() {
				fmt.Println("Apply cancelled.")
				return &exitError{code: ExitError}
			}

			metrics := newMetricsOrNil(*metricsAddr)
			report, err := st.Apply(ctx, plan, metrics)
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
