package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/match-predictor/internal/api"
	"github.com/yourusername/match-predictor/internal/health"
	"github.com/yourusername/match-predictor/internal/scheduler"
	"github.com/yourusername/match-predictor/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket push and scheduled jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.close()

		return a.serve(ctx)
	},
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	log := a.logger

	var hub *api.Hub
	if cfg.Features.WebsocketEnabled {
		hub = api.NewHub(log)
	}

	apiServer := api.NewServer(a.predictions, hub, api.Config{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		DefaultBand:      cfg.Band(),
		WebsocketEnabled: cfg.Features.WebsocketEnabled,
	}, log)

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	checks := map[string]health.Checker{"feed": health.FeedCheck(a.feedClient)}
	if a.db != nil {
		checks["database"] = health.DatabaseCheck(a.db)
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Metrics.Port),
		MetricsPath: metricsPath,
		Logger:      log,
		Checks:      checks,
	})

	sched, err := a.newScheduler(hub)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if err := healthServer.Start(gctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if hub != nil {
		g.Go(func() error {
			hub.Run(gctx)
			return nil
		})
	}

	if sched != nil {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	g.Go(func() error {
		log.WithField("port", cfg.Server.Port).Info("API server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		healthServer.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	healthServer.SetReady(true)
	return g.Wait()
}

// newScheduler registers the archive job when persistence is available and
// the refresh job when a default country is configured. It returns nil when
// there is nothing to schedule.
func (a *app) newScheduler(hub *api.Hub) (*scheduler.Scheduler, error) {
	cfg := a.cfg
	sched := scheduler.NewScheduler(a.logger)
	jobs := 0

	if a.history != nil {
		if err := sched.ScheduleArchive(cfg.Scheduler.ArchiveCron, a.history, a.feedQuery(0, 0)); err != nil {
			return nil, err
		}
		jobs++
	}

	if cfg.Feed.Country != "" {
		var broadcaster scheduler.Broadcaster
		if hub != nil {
			broadcaster = hub
		}
		req := service.Request{Country: cfg.Feed.Country, CountryCode: cfg.Feed.CountryCode, Count: cfg.Feed.Count}
		if err := sched.ScheduleRefresh(cfg.Scheduler.RefreshIntervalSeconds, a.predictions, broadcaster, req); err != nil {
			return nil, err
		}
		jobs++
	}

	if jobs == 0 {
		a.logger.WithFields(logrus.Fields{
			"persistence": cfg.Features.PersistenceEnabled,
			"country":     cfg.Feed.Country,
		}).Info("No scheduled jobs configured")
		return nil, nil
	}
	return sched, nil
}
