package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/datasource"
	"github.com/yourusername/match-predictor/internal/feed"
	"github.com/yourusername/match-predictor/internal/logger"
	"github.com/yourusername/match-predictor/internal/metrics"
	"github.com/yourusername/match-predictor/internal/models"
	"github.com/yourusername/match-predictor/internal/repository"
)

// HistoryService archives finished matches from the live feed
type HistoryService struct {
	source  datasource.FeedSource
	history repository.MatchHistoryRepository
	logger  *logger.PredictionLogger
	audit   *logger.AuditLogger
}

// NewHistoryService creates a history service
func NewHistoryService(source datasource.FeedSource, history repository.MatchHistoryRepository, log *logrus.Logger) *HistoryService {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &HistoryService{
		source:  source,
		history: history,
		logger:  logger.NewPredictionLogger(log),
		audit:   logger.NewAuditLogger(log),
	}
}

// ArchiveFinished stores every finished match not archived yet and returns how
// many were written.
func (s *HistoryService) ArchiveFinished(ctx context.Context, q datasource.Query) (int, error) {
	matches, err := s.source.FetchMatches(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch live feed: %w", err)
	}

	var finished []*models.FinishedMatch
	var ids []string
	seen := make(map[string]bool)
	for _, m := range matches {
		if !m.IsFinished() || m.ID() == "" || seen[m.ID()] {
			continue
		}
		seen[m.ID()] = true
		finished = append(finished, ToFinishedMatch(m))
		ids = append(ids, m.ID())
	}
	if len(finished) == 0 {
		s.logger.LogArchive(0, 0, 0)
		return 0, nil
	}

	existing, err := s.history.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to load archived ids: %w", err)
	}

	fresh := finished[:0:0]
	for _, m := range finished {
		if !existing[m.MatchID] {
			fresh = append(fresh, m)
		}
	}

	archived, err := s.history.InsertBatch(ctx, fresh)
	if err != nil {
		return 0, fmt.Errorf("failed to archive matches: %w", err)
	}

	for _, m := range fresh {
		s.audit.LogMatchArchived(m)
	}
	metrics.RecordMatchesArchived(archived)
	s.logger.LogArchive(len(finished), len(finished)-len(fresh), archived)
	return archived, nil
}

// ToFinishedMatch maps a finished feed match to its archived form
func ToFinishedMatch(m feed.RawMatch) *models.FinishedMatch {
	home, away := m.FinalScore()
	league := m.League()
	return &models.FinishedMatch{
		MatchID:   m.ID(),
		HomeTeam:  m.HomeTeam(),
		AwayTeam:  m.AwayTeam(),
		HomeScore: home,
		AwayScore: away,
		Sport:     DetectSport(league),
		League:    league,
		StartedAt: m.StartTime(),
		Status:    m.TN,
	}
}

// DetectSport guesses the sport from a league name
func DetectSport(league string) string {
	l := strings.ToLower(league)
	switch {
	case strings.Contains(l, "foot"):
		return models.SportFootball
	case strings.Contains(l, "basket"):
		return models.SportBasketball
	case strings.Contains(l, "tennis"):
		return models.SportTennis
	default:
		return models.SportUnknown
	}
}
