package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/fundr/internal/cli"
	"github.com/sadopc/fundr/internal/planner"
)

var flagAllDays bool

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project the balance day by day",
	RunE:  runForecast,
}

func init() {
	addForecastFlags(forecastCmd)
	forecastCmd.Flags().BoolVar(&flagAllDays, "all", false, "Show days without entries too")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(c *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.options(c)
	if err != nil {
		return err
	}
	f, err := a.svc.Forecast(opts)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  Next %d months", opts.Months)))
	fmt.Println()

	if len(f.Days) == 0 {
		fmt.Println("  Nothing to project.")
		return nil
	}

	fmt.Print(cli.RenderTable(forecastTable(f, flagAllDays)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Rows: [][]string{
			{"Start", cli.FormatMoney(f.Start)},
			{"Low", fmt.Sprintf("%s on %s", cli.FormatMoney(f.Low.Balance), f.Low.Date)},
			{"Final", cli.FormatMoney(f.Final)},
		},
	}))
	if f.Low.Balance < 0 {
		fmt.Println("  " + cli.Warn(fmt.Sprintf("Balance goes negative on %s", firstNegative(f))))
	}
	if f.Overdue > 0 {
		fmt.Println("  " + cli.Warn(fmt.Sprintf("%d shift(s) worth %s paid before today are not settled into an account, run fundr settle.",
			f.Overdue, cli.FormatMoney(f.OverduePay))))
	}
	if f.Skipped > 0 {
		fmt.Printf("  %d item(s) skipped because of invalid data, see the log.\n", f.Skipped)
	}
	return nil
}

// forecastTable lists one row per entry. The date and closing balance are
// shown on the first row of each day.
func forecastTable(f *planner.Forecast, all bool) cli.Table {
	t := cli.Table{Headers: []string{"Date", "Item", "Amount", "Balance"}}
	for _, d := range f.Days {
		if len(d.Log) == 0 {
			if all {
				t.Rows = append(t.Rows, []string{d.Date, "", "", cli.FormatMoney(d.Balance)})
			}
			continue
		}
		for i, e := range d.Log {
			date, balance := "", ""
			if i == 0 {
				date, balance = d.Date, cli.FormatMoney(d.Balance)
			}
			t.Rows = append(t.Rows, []string{date, e.Label, cli.FormatSigned(e.Amount), balance})
		}
	}
	return t
}

func firstNegative(f *planner.Forecast) string {
	for _, d := range f.Days {
		if d.Balance < 0 {
			return d.Date
		}
	}
	return ""
}
