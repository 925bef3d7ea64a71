package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawnchairsociety/killrate/internal/logger"
	"github.com/lawnchairsociety/killrate/internal/pipeline"
	"github.com/lawnchairsociety/killrate/internal/server"
	"github.com/spf13/cobra"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream recomputes to WebSocket subscribers",
	Long: `Start the result feed. Subscribers connect to /ws, receive progress
and result events, and may request recomputes or replace consumable costs.
GET /results returns the last finished batch; GET/PUT /rates reads or
replaces the consumable costs.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides settings)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	feed := a.cfg.Feed
	if serveAddress != "" {
		feed.Address = serveAddress
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := pipeline.NewEngine(a.reg, a.build, a.costs)
	srv := server.NewServer(feed, engine, pipeline.FromSettings(a.cfg))
	srv.SetDatabase(a.db, a.cfg.Consumables.Profile)

	logger.Info("Starting killrate feed", "build", a.build.Name, "address", feed.Address)
	srv.Recompute(nil)
	return srv.ListenAndServe(ctx)
}
