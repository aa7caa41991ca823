package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drft-io/drft/internal/planner"
	"github.com/drft-io/drft/internal/serializer"
	"github.com/drft-io/drft/internal/stack"
)

func newPlanCmd(ctx context.Context, st *stack.Stack, reg *serializer.Registry) *cobra.Command {
	var jsonOut, verbose bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what apply would change",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := st.Plan(ctx, reg, verbose)
			if err != nil {
				return err
			}
			if jsonOut {
				return printPlanJSON(plan)
			}
			renderPlan(plan, verbose)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the plan as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-field diffs and unchanged resources")
	return cmd
}

type planJSON struct {
	Operations []operationJSON `json:"operations"`
	Unchanged  []string        `json:"unchanged,omitempty"`
}

type operationJSON struct {
	Kind     string     `json:"kind"`
	Resource string     `json:"resource"`
	Diffs    []diffJSON `json:"diffs,omitempty"`
}

type diffJSON struct {
	Field   string `json:"field"`
	Current any    `json:"current"`
	Desired any    `json:"desired"`
}

func printPlanJSON(plan *planner.Plan) error {
	out := planJSON{Unchanged: plan.Unchanged}
	for _, op := range plan.Operations {
		oj := operationJSON{Kind: op.Kind.String(), Resource: operationDisplayID(op)}
		for _, d := range op.Diffs {
			oj.Diffs = append(oj.Diffs, diffJSON{Field: d.Field, Current: d.Current, Desired: d.Desired})
		}
		out.Operations = append(out.Operations, oj)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
