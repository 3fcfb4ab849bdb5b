package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/fundr/internal/config"
	"github.com/sadopc/fundr/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	dbPath := cfg.General.DBPath
	if dbPath == "" {
		dbPath, _ = store.DefaultDBPath()
	}

	fmt.Println("  [General]")
	fmt.Printf("    Database:            %s\n", dbPath)
	fmt.Printf("    Horizon months:      %d\n", cfg.General.HorizonMonths)
	fmt.Printf("    Extra weekly income: %.2f\n", cfg.General.ExtraWeeklyIncome)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	if cfg.Log.File != "" {
		fmt.Printf("    File:   %s\n", cfg.Log.File)
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Listen: %s\n", cfg.Server.Listen)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Settle schedule: %s\n", cfg.Daemon.SettleSchedule)
	fmt.Printf("    Check schedule:  %s\n", cfg.Daemon.CheckSchedule)
	fmt.Printf("    Low balance:     %.2f\n", cfg.Daemon.LowBalance)
	fmt.Println()

	fmt.Println("  Settings saved in the database take precedence over horizon and extra income.")
	return nil
}
