package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/fundr/internal/cli"
)

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Mark shifts whose payment date has arrived as paid",
	RunE:  runSettle,
}

func init() {
	rootCmd.AddCommand(settleCmd)
}

func runSettle(_ *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Settle()
	if err != nil {
		return err
	}

	switch {
	case res.Settled == 0:
		fmt.Println("  No shifts due.")
	case res.Account == "":
		fmt.Printf("  Settled %d shift(s). No payout account set, balances unchanged.\n", res.Settled)
	default:
		fmt.Printf("  Settled %d shift(s), credited %s.\n", res.Settled, cli.FormatMoney(res.Credited))
	}
	return nil
}
