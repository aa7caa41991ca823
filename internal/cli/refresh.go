package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drft-io/drft/internal/stack"
)

func newRefreshCmd(ctx context.Context, st *stack.Stack) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Update state to match real infrastructure",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := st.Refresh(ctx)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No resources to refresh.")
				return nil
			}

			var drifted, deleted int
			for _, r := range results {
				switch r.Status {
				case "drifted":
					drifted++
					fmt.Printf("  %s%s: drifted%s\n", colorize(colorYellow), r.ID, colorize(colorReset))
				case "deleted":
					deleted++
					fmt.Printf("  %s%s: deleted%s\n", colorize(colorRed), r.ID, colorize(colorReset))
				default:
					if verbose {
						fmt.Printf("  %s: ok\n", r.ID)
					}
				}
			}
			fmt.Printf("\nRefresh complete. %d drifted, %d deleted.\n", drifted, deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also list resources observed unchanged")
	return cmd
}
