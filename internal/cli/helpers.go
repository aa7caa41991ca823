package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/drft-io/drft/internal/executor"
	"github.com/drft-io/drft/internal/planner"
)

// renderPlan prints a plan's operations in the teacher's colorized,
// per-resource block style, plus verbose field diffs and unchanged ids
// when requested.
func renderPlan(plan *planner.Plan, verbose bool) {
	if len(plan.Operations) == 0 {
		fmt.Println("No changes. Infrastructure is up-to-date.")
	} else {
		fmt.Println("drft will perform the following actions:")
		for _, op := range plan.Operations {
			renderOperation(op, verbose)
		}
	}

	if verbose && len(plan.Unchanged) > 0 {
		fmt.Println("\nUnchanged:")
		for _, id := range plan.Unchanged {
			fmt.Printf("  %s\n", id)
		}
	}

	create, update, del := 0, 0, 0
	for _, op := range plan.Operations {
		switch op.Kind {
		case planner.Create:
			create++
		case planner.Update:
			update++
		case planner.Delete:
			del++
		}
	}
	fmt.Printf("\nPlan: %d to create, %d to update, %d to delete.\n", create, update, del)
}

func renderOperation(op planner.Operation, verbose bool) {
	symbol, color := "~", colorYellow
	switch op.Kind {
	case planner.Create:
		symbol, color = "+", colorGreen
	case planner.Delete:
		symbol, color = "-", colorRed
	}

	id := operationDisplayID(op)
	fmt.Printf("\n%s  %s %s (%s)%s\n", colorize(color), symbol, id, op.Kind, colorize(colorReset))

	if !verbose || op.Kind != planner.Update {
		return
	}
	for _, d := range op.Diffs {
		fmt.Printf("%s      ~ %s: %v -> %v%s\n", colorize(colorYellow), d.Field, d.Current, d.Desired, colorize(colorReset))
	}
}

func operationDisplayID(op planner.Operation) string {
	if op.Kind == planner.Delete {
		return op.Current.StateResource().ResourceID()
	}
	return op.Resource.ResourceID()
}

// renderReport prints the per-operation success/failure list and the
// "Successful: N / Failed: M / Total: K" summary line §7 requires
// verbatim.
func renderReport(report *executor.Report) {
	var successful, failed int
	fmt.Println("\nResults:")
	for _, r := range report.Results {
		id := operationDisplayID(r.Operation)
		if r.Success {
			successful++
			fmt.Printf("  %s%s: success%s\n", colorize(colorGreen), id, colorize(colorReset))
		} else {
			failed++
			fmt.Printf("  %s%s: failed (%v)%s\n", colorize(colorRed), id, r.Err, colorize(colorReset))
		}
	}
	total := len(report.Results)
	fmt.Printf("\nSuccessful: %d / Failed: %d / Total: %d\n", successful, failed, total)
}

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

var noColor = os.Getenv("NO_COLOR") != ""

func colorize(code string) string {
	if noColor {
		return ""
	}
	return code
}

// confirm prompts for explicit "yes" approval, matching the teacher's
// apply.go prompt text and accepted responses.
func confirm() bool {
	fmt.Print("\nDo you want to perform these actions? Only 'yes' will be accepted to approve.\n\n  Enter a value: ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	response := strings.TrimSpace(line)
	return response == "yes"
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}
