// Package main provides the match predictor command line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/match-predictor/internal/config"
	"github.com/yourusername/match-predictor/internal/database"
	"github.com/yourusername/match-predictor/internal/datasource"
	"github.com/yourusername/match-predictor/internal/engine"
	"github.com/yourusername/match-predictor/internal/logger"
	"github.com/yourusername/match-predictor/internal/repository"
	"github.com/yourusername/match-predictor/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "predictor",
	Short:         "Football match predictions from live bookmaker odds",
	Long:          `Fetches live odds, ranks outcomes by implied probability and serves the predictions over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, predictCmd, archiveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// app holds the wired dependencies shared by every command
type app struct {
	cfg         *config.Config
	logger      *logrus.Logger
	source      datasource.FeedSource
	feedClient  *datasource.RateLimitedHTTPClient
	engine      *engine.Engine
	db          *database.DB
	repos       *repository.Repositories
	predictions *service.PredictionService
	history     *service.HistoryService
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	path := configFile
	if env := os.Getenv("MATCH_PREDICTOR_CONFIG_PATH"); env != "" && !rootCmd.PersistentFlags().Changed("config") {
		path = env
	}

	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}

	if config.SecretsEnabled() {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads configuration and wires the services. The database is only
// opened when persistence is enabled or required by the caller.
func newApp(ctx context.Context, requireDB bool) (*app, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.App.LogLevel)
	a := &app{cfg: cfg, logger: log}

	a.source, a.feedClient = datasource.NewFeedSource(cfg, log)
	a.engine = engine.New(engine.WithBand(cfg.Band()))

	var predictionRepo repository.PredictionRepository
	if cfg.Features.PersistenceEnabled || requireDB {
		dbCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		a.db, err = database.Initialize(dbCtx, cfg, log)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.repos, err = repository.NewRepositories(a.db)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize repositories: %w", err)
		}
		if cfg.Features.PersistenceEnabled {
			predictionRepo = a.repos.Prediction
		}
		a.history = service.NewHistoryService(a.source, a.repos.MatchHistory, log)
	}

	a.predictions = service.NewPredictionService(a.source, a.engine, predictionRepo, service.PredictionConfig{
		DefaultCountryCode: cfg.Feed.CountryCode,
		DefaultCount:       cfg.Feed.Count,
		Workers:            cfg.Prediction.Workers,
	}, log)

	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"persistence": a.db != nil,
	}).Debug("Application wired")

	return a, nil
}

func (a *app) close() {
	if a.feedClient != nil {
		a.feedClient.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) feedQuery(countryCode, count int) datasource.Query {
	q := datasource.Query{CountryCode: countryCode, Count: count}
	if q.CountryCode <= 0 {
		q.CountryCode = a.cfg.Feed.CountryCode
	}
	if q.Count <= 0 {
		q.Count = a.cfg.Feed.Count
	}
	return q
}
