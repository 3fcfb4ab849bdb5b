package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/fundr/internal/cli"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Savings goals with estimated completion",
	RunE:  runGoals,
}

func init() {
	addForecastFlags(goalsCmd)
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(c *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.options(c)
	if err != nil {
		return err
	}
	reports, err := a.svc.Goals(opts)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("\n  No goals yet.")
		return nil
	}

	t := cli.Table{
		Title:   "Goals",
		Headers: []string{"Name", "Saved", "Target", "Progress", "Status", "Estimate", "In forecast"},
	}
	for _, r := range reports {
		simulated := r.SimulatedDate
		if simulated == "" {
			simulated = "-"
		}
		estimate := r.Progress.EstimatedCompletion
		if estimate == "" {
			estimate = "-"
		}
		t.Rows = append(t.Rows, []string{
			r.Goal.Name,
			cli.FormatMoney(r.Goal.Saved),
			cli.FormatMoney(r.Goal.Target),
			cli.FormatPercent(r.Progress.Percent),
			string(r.Progress.Status),
			estimate,
			simulated,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}
