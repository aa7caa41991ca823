package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drft-io/drft/internal/graph"
	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/internal/stack"
)

// newValidateCmd checks a stack's resources against the two invariants the
// planner otherwise only surfaces mid-plan: every dependency id is itself
// a managed resource, and every non-read-only resource has a claiming
// provider. It performs no I/O against the state store or any provider.
func newValidateCmd(st *stack.Stack) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check resource dependencies and provider coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Validating stack...")

			fmt.Print("Checking dependency graph... ")
			g := graph.NewDAG()
			for _, r := range st.Resources {
				deps := make([]string, len(r.Dependencies()))
				for i, d := range r.Dependencies() {
					deps[i] = d.ResourceID()
				}
				g.Add(r.ResourceID(), deps)
			}
			if err := g.Validate(); err != nil {
				fmt.Println("FAILED")
				return err
			}
			fmt.Println("OK")

			fmt.Print("Checking provider coverage... ")
			registry := st.ProviderRegistry()
			for _, r := range st.Resources {
				if r.IsReadOnly() {
					continue
				}
				if _, deferred := r.(*resource.DependentResource); deferred {
					// Materializes to a concrete type only once its
					// dependencies are realized; provider coverage for
					// it can't be checked until then.
					continue
				}
				if registry.Lookup(r) == nil {
					fmt.Println("FAILED")
					return fmt.Errorf("no provider can handle resource %q", r.ResourceID())
				}
			}
			fmt.Println("OK")

			fmt.Println("\nStack is valid.")
			return nil
		},
	}
}
