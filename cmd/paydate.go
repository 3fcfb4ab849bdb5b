package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var paydateCmd = &cobra.Command{
	Use:   "paydate <profile-id> <YYYY-MM-DD>",
	Short: "Show when work on a date gets paid",
	Args:  cobra.ExactArgs(2),
	RunE:  runPayDate,
}

func init() {
	rootCmd.AddCommand(paydateCmd)
}

func runPayDate(_ *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.store.GetProfile(args[0])
	if err != nil {
		return fmt.Errorf("profile %s: %w", args[0], err)
	}
	paid, err := a.svc.PayDate(p.ID, args[1])
	if err != nil {
		return err
	}

	fmt.Printf("  %s (%s): work on %s is paid on %s\n", p.Name, p.Frequency, args[1], paid)
	return nil
}
