// Package cmd implements the fundr CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/fundr/internal/config"
	"github.com/sadopc/fundr/internal/logging"
	"github.com/sadopc/fundr/internal/planner"
	"github.com/sadopc/fundr/internal/projection"
	"github.com/sadopc/fundr/internal/store"
	"github.com/sadopc/fundr/internal/tui"
)

var (
	flagDB      string
	flagMonths  int
	flagExtra   float64
	flagExclude []string
)

var rootCmd = &cobra.Command{
	Use:          "fundr",
	Short:        "Personal cash-flow forecaster",
	Long:         "Track accounts, income and obligations, and see your balance day by day for the months ahead.",
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default ~/.local/share/fundr/fundr.db)")
}

// addForecastFlags registers the what-if flags shared by forecast, goals
// and export. Unset flags fall back to the persisted settings.
func addForecastFlags(c *cobra.Command) {
	c.Flags().IntVarP(&flagMonths, "months", "n", 3, "Horizon in months")
	c.Flags().Float64Var(&flagExtra, "extra", 0, "Extra income credited every seventh day")
	c.Flags().StringSliceVar(&flagExclude, "exclude", nil, "Entity ids to leave out of the projection")
}

// app bundles what every command needs once the config is resolved.
type app struct {
	cfg     config.Config
	dbPath  string
	log     *logrus.Logger
	store   *store.Store
	svc     *planner.Service
	closers []io.Closer
}

// openApp loads config, sets up logging and opens the database. In TUI mode
// logs go to a file so they do not draw over the screen.
func openApp(tuiMode bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}

	dbPath := cfg.General.DBPath
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	}

	a := &app{cfg: cfg, dbPath: dbPath}

	logPath := cfg.Log.File
	if logPath == "" && tuiMode {
		logPath = filepath.Join(cfg.DataDir(dbPath), "fundr.log")
	}
	if logPath != "" {
		logger, closer, err := logging.NewFile(cfg.Log, logPath)
		if err != nil {
			return nil, err
		}
		a.log = logger
		a.closers = append(a.closers, closer)
	} else {
		a.log = logging.New(cfg.Log, os.Stderr)
	}

	s, err := store.New(dbPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.store = s
	a.closers = append(a.closers, s)
	a.log.WithField("db", dbPath).Debug("database opened")

	a.svc = planner.NewService(s, a.log)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

// fallback holds the config-file forecast values, used when a persisted
// setting is unusable.
func (a *app) fallback() planner.Options {
	return planner.Options{
		Months:            a.cfg.General.HorizonMonths,
		ExtraWeeklyIncome: a.cfg.General.ExtraWeeklyIncome,
	}
}

// options resolves forecast options: flags, then settings, then config.
func (a *app) options(c *cobra.Command) (planner.Options, error) {
	opts := a.svc.Defaults(a.fallback())
	f := c.Flags()
	if f.Lookup("months") != nil && f.Changed("months") {
		if !planner.ValidMonths(flagMonths) {
			return opts, fmt.Errorf("--months must be from 0 to %d, got %d", projection.MaxMonths, flagMonths)
		}
		opts.Months = flagMonths
	}
	if f.Lookup("extra") != nil && f.Changed("extra") {
		if !planner.ValidExtra(flagExtra) {
			return opts, fmt.Errorf("--extra must be a finite amount, zero or more, got %v", flagExtra)
		}
		opts.ExtraWeeklyIncome = flagExtra
	}
	if f.Lookup("exclude") != nil && f.Changed("exclude") {
		opts.Excluded = projection.NewIDSet(flagExclude...)
	}
	return opts, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.NewApp(a.store, a.svc, a.log, a.fallback())
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
