package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drft-io/drft/internal/stack"
)

// newGraphCmd prints the stack's dependency graph in Graphviz DOT format,
// grounded on the teacher's own "picklr graph" command: pipe the output
// to `dot -Tpng` for an image.
func newGraphCmd(st *stack.Stack) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Output the dependency graph in DOT format",
		Long: `Generates a visual representation of the resource dependency graph
in Graphviz DOT format. Pipe the output to 'dot' to generate an image:

  drft graph | dot -Tpng > graph.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("digraph drft {")
			fmt.Println("  rankdir = \"BT\";")
			fmt.Println("  node [shape = rect];")
			fmt.Println()

			for _, r := range st.Resources {
				fmt.Printf("  %q;\n", r.ResourceID())
			}
			fmt.Println()

			for _, r := range st.Resources {
				for _, dep := range r.Dependencies() {
					fmt.Printf("  %q -> %q;\n", r.ResourceID(), dep.ResourceID())
				}
			}

			fmt.Println("}")
			return nil
		},
	}
}
