package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-predictor/internal/datasource"
	"github.com/yourusername/match-predictor/internal/metrics"
	"github.com/yourusername/match-predictor/internal/service"
)

type mockArchiver struct{ mock.Mock }

func (m *mockArchiver) ArchiveFinished(ctx context.Context, q datasource.Query) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}

type mockPredictor struct{ mock.Mock }

func (m *mockPredictor) Predict(ctx context.Context, req service.Request) ([]service.MatchPrediction, error) {
	args := m.Called(ctx, req)
	results, _ := args.Get(0).([]service.MatchPrediction)
	return results, args.Error(1)
}

type mockBroadcaster struct{ mock.Mock }

func (m *mockBroadcaster) BroadcastPredictions(country string, results []service.MatchPrediction) {
	m.Called(country, results)
}

func newTestScheduler() *Scheduler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewScheduler(log)
}

func TestScheduleRejectsBadCron(t *testing.T) {
	s := newTestScheduler()
	err := s.ScheduleArchive("not a cron", &mockArchiver{}, datasource.Query{})
	assert.Error(t, err)
}

func TestScheduleAcceptsSecondsAndDescriptors(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleArchive("0 */30 * * * *", &mockArchiver{}, datasource.Query{}))
	require.NoError(t, s.ScheduleArchive("*/5 * * * *", &mockArchiver{}, datasource.Query{}))
	require.NoError(t, s.ScheduleRefresh(60, &mockPredictor{}, nil, service.Request{Country: "france"}))
	assert.Len(t, s.Entries(), 3)
	assert.True(t, s.GetNextRun().IsZero(), "no next run before start")
}

func TestStartRequiresJobs(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleRefresh(1, &mockPredictor{}, nil, service.Request{Country: "france"}))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.False(t, s.GetNextRun().IsZero())
	assert.Len(t, s.Entries(), 1)

	err := s.ScheduleArchive("@hourly", &mockArchiver{}, datasource.Query{})
	assert.Error(t, err, "jobs cannot be added while running")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
	require.NoError(t, s.Stop())
}

func TestRefreshIntervalHasFloor(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleRefresh(1, &mockPredictor{}, nil, service.Request{}))
	require.NoError(t, s.Start())
	defer s.Stop()

	entries := s.Entries()
	require.Len(t, entries, 1)
	next := entries[0].Next
	assert.WithinDuration(t, time.Now().Add(minRefreshSeconds*time.Second), next, 2*time.Second)
}

func TestRunRefreshBroadcasts(t *testing.T) {
	s := newTestScheduler()
	req := service.Request{Country: "france", CountryCode: 225}
	results := []service.MatchPrediction{{MatchID: "1"}}

	p := &mockPredictor{}
	p.On("Predict", mock.Anything, req).Return(results, nil)
	b := &mockBroadcaster{}
	b.On("BroadcastPredictions", "france", results).Return()

	before := testutil.ToFloat64(metrics.LastRefreshTimestamp)
	s.RunRefresh(context.Background(), p, b, req)

	p.AssertExpectations(t)
	b.AssertExpectations(t)
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.LastRefreshTimestamp), before)
	assert.NotZero(t, testutil.ToFloat64(metrics.LastRefreshTimestamp))
}

func TestRunRefreshFailureSkipsBroadcast(t *testing.T) {
	s := newTestScheduler()
	p := &mockPredictor{}
	p.On("Predict", mock.Anything, mock.Anything).Return(nil, errors.New("feed down"))
	b := &mockBroadcaster{}

	s.RunRefresh(context.Background(), p, b, service.Request{Country: "france"})

	b.AssertNotCalled(t, "BroadcastPredictions", mock.Anything, mock.Anything)
}

func TestRunArchive(t *testing.T) {
	s := newTestScheduler()
	q := datasource.Query{CountryCode: 96, Count: 50}

	a := &mockArchiver{}
	a.On("ArchiveFinished", mock.Anything, q).Return(3, nil).Once()
	a.On("ArchiveFinished", mock.Anything, q).Return(0, errors.New("db down")).Once()

	s.RunArchive(context.Background(), a, q)
	s.RunArchive(context.Background(), a, q)

	a.AssertNumberOfCalls(t, "ArchiveFinished", 2)
}

func TestScheduledRefreshFires(t *testing.T) {
	s := newTestScheduler()
	fired := make(chan struct{}, 1)

	p := &mockPredictor{}
	p.On("Predict", mock.Anything, mock.Anything).Return([]service.MatchPrediction{}, nil)
	b := &mockBroadcaster{}
	b.On("BroadcastPredictions", "france", mock.Anything).Run(func(mock.Arguments) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}).Return()

	require.NoError(t, s.ScheduleRefresh(minRefreshSeconds, p, b, service.Request{Country: "france"}))
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * minRefreshSeconds * time.Second):
		t.Fatal("refresh job did not fire")
	}
}
