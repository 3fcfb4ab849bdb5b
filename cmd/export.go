package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/fundr/internal/export"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the forecast ledger to CSV or JSON",
	RunE:  runExport,
}

func init() {
	addForecastFlags(exportCmd)
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "csv", "Output format: csv or json")
	exportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Output path (default fundr-forecast-<date>.<format>)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(c *cobra.Command, _ []string) error {
	if flagExportFormat != "csv" && flagExportFormat != "json" {
		return fmt.Errorf("unknown format %q, want csv or json", flagExportFormat)
	}

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

	path := flagExportOut
	if path == "" {
		path = fmt.Sprintf("fundr-forecast-%s.%s", time.Now().Format("2006-01-02"), flagExportFormat)
	}

	if flagExportFormat == "csv" {
		err = export.ToCSV(f.Days, path)
	} else {
		err = export.ToJSON(f.Days, path)
	}
	if err != nil {
		return err
	}

	a.log.WithField("path", path).Info("forecast exported")
	fmt.Printf("  Exported %d days to %s\n", len(f.Days), path)
	return nil
}
