package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/fundr/internal/planner"
	"github.com/sadopc/fundr/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the forecast as a JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.newServer().ListenAndServe(ctx, a.listenAddr())
}

func (a *app) newServer() *server.Server {
	return server.New(a.svc, a.log, func() planner.Options {
		return a.svc.Defaults(a.fallback())
	})
}

func (a *app) listenAddr() string {
	if flagListen != "" {
		return flagListen
	}
	return a.cfg.Server.Listen
}
