package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/fundr/internal/planner"
)

var (
	flagDaemonOnce  bool
	flagDaemonServe bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Settle shifts and warn about low balances on a schedule",
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().BoolVar(&flagDaemonOnce, "once", false, "Run every job once and exit")
	daemonCmd.Flags().BoolVar(&flagDaemonServe, "serve", false, "Also serve the JSON API")
	daemonCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address for --serve (default from config)")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	threshold := a.cfg.Daemon.LowBalance
	settle := func() { settleJob(a.svc, a.log) }
	check := func() { lowBalanceJob(a.svc, a.log, threshold, a.svc.Defaults(a.fallback())) }

	if flagDaemonOnce {
		settle()
		check()
		return nil
	}

	c := cron.New(cron.WithLogger(cron.PrintfLogger(a.log)))
	if _, err := c.AddFunc(a.cfg.Daemon.SettleSchedule, settle); err != nil {
		return fmt.Errorf("settle schedule %q: %w", a.cfg.Daemon.SettleSchedule, err)
	}
	if _, err := c.AddFunc(a.cfg.Daemon.CheckSchedule, check); err != nil {
		return fmt.Errorf("check schedule %q: %w", a.cfg.Daemon.CheckSchedule, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Start()
	a.log.WithFields(logrus.Fields{
		"settle": a.cfg.Daemon.SettleSchedule,
		"check":  a.cfg.Daemon.CheckSchedule,
	}).Info("daemon started")

	errc := make(chan error, 1)
	if flagDaemonServe {
		go func() { errc <- a.newServer().ListenAndServe(ctx, a.listenAddr()) }()
	}

	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	<-c.Stop().Done()
	a.log.Info("daemon stopped")
	return err
}

func settleJob(svc *planner.Service, log *logrus.Logger) {
	res, err := svc.Settle()
	if err != nil {
		log.WithError(err).Error("settle failed")
		return
	}
	log.WithFields(logrus.Fields{
		"settled":  res.Settled,
		"credited": res.Credited,
	}).Info("settle run finished")
}

// lowBalanceJob warns once for the first projected day below threshold.
func lowBalanceJob(svc *planner.Service, log *logrus.Logger, threshold float64, opts planner.Options) {
	day, err := svc.LowBalance(threshold, opts)
	if err != nil {
		log.WithError(err).Error("low balance check failed")
		return
	}
	if day == nil {
		log.WithField("threshold", threshold).Debug("balance stays above threshold")
		return
	}
	log.WithFields(logrus.Fields{
		"date":      day.Date,
		"balance":   day.Balance,
		"threshold": threshold,
	}).Warn("projected balance below threshold")
}
