// Package scheduler runs the periodic archive and prediction refresh jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/datasource"
	"github.com/yourusername/match-predictor/internal/metrics"
	"github.com/yourusername/match-predictor/internal/service"
)

const minRefreshSeconds = 5

// Archiver stores finished matches.
type Archiver interface {
	ArchiveFinished(ctx context.Context, q datasource.Query) (int, error)
}

// Predictor computes predictions for one country.
type Predictor interface {
	Predict(ctx context.Context, req service.Request) ([]service.MatchPrediction, error)
}

// Broadcaster pushes a refreshed prediction batch to subscribers.
type Broadcaster interface {
	BroadcastPredictions(country string, results []service.MatchPrediction)
}

// Scheduler manages the cron jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
	jobTimeout      time.Duration
}

// NewScheduler creates a scheduler. Cron expressions accept an optional
// leading seconds field and descriptors such as @every.
func NewScheduler(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cronLogger := cron.PrintfLogger(logger)

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithParser(parser),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:          logger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
		jobTimeout:      2 * time.Minute,
	}
}

// ScheduleArchive archives finished matches on a cron expression
func (s *Scheduler) ScheduleArchive(spec string, archiver Archiver, q datasource.Query) error {
	return s.addJob(spec, "archive", func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		s.RunArchive(ctx, archiver, q)
	})
}

// ScheduleRefresh recomputes predictions every intervalSeconds and broadcasts them
func (s *Scheduler) ScheduleRefresh(intervalSeconds int, predictor Predictor, broadcaster Broadcaster, req service.Request) error {
	if intervalSeconds < minRefreshSeconds {
		intervalSeconds = minRefreshSeconds
	}
	return s.addJob(fmt.Sprintf("@every %ds", intervalSeconds), "refresh", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(intervalSeconds)*time.Second)
		defer cancel()
		s.RunRefresh(ctx, predictor, broadcaster, req)
	})
}

// RunArchive runs one archive pass.
func (s *Scheduler) RunArchive(ctx context.Context, archiver Archiver, q datasource.Query) {
	archived, err := archiver.ArchiveFinished(ctx, q)
	if err != nil {
		s.logger.WithError(err).WithField("country_code", q.CountryCode).Error("Scheduled archive failed")
		return
	}
	s.logger.WithField("archived", archived).Info("Scheduled archive completed")
}

// RunRefresh runs one refresh pass.
func (s *Scheduler) RunRefresh(ctx context.Context, predictor Predictor, broadcaster Broadcaster, req service.Request) {
	results, err := predictor.Predict(ctx, req)
	if err != nil {
		s.logger.WithError(err).WithField("country", req.Country).Error("Scheduled refresh failed")
		return
	}
	metrics.RecordRefresh(float64(time.Now().Unix()))
	if broadcaster != nil {
		broadcaster.BroadcastPredictions(req.Country, results)
	}
	s.logger.WithFields(logrus.Fields{
		"country": req.Country,
		"matches": len(results),
	}).Debug("Scheduled refresh completed")
}

func (s *Scheduler) addJob(spec, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("Scheduled job")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler jobs still running after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		if entry := s.cron.Entry(jobID); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
