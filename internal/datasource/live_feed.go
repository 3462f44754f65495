package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/feed"
	"github.com/yourusername/match-predictor/internal/metrics"
)

const (
	liveFeedSourceName = "live_feed"
	liveFeedPath       = "/LiveFeed/Get1x2_VZip"
	userAgent          = "Mozilla/5.0"
	maxErrorBody       = 512
)

// LiveFeedConfig holds the fixed query parameters of the live feed
type LiveFeedConfig struct {
	BaseURL  string
	Sport    int
	Language string
	Group    int
	Mode     int
}

// LiveFeedClient implements FeedSource for the bookmaker LiveFeed endpoint
type LiveFeedClient struct {
	httpClient *RateLimitedHTTPClient
	cfg        LiveFeedConfig
	logger     *logrus.Entry
}

// liveEnvelope defers match decoding so one bad record cannot spoil the batch
type liveEnvelope struct {
	Success bool              `json:"Success"`
	Error   string            `json:"Error"`
	Value   []json.RawMessage `json:"Value"`
}

// NewLiveFeedClient creates a new LiveFeed client
func NewLiveFeedClient(httpClient *RateLimitedHTTPClient, cfg LiveFeedConfig, logger *logrus.Logger) *LiveFeedClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &LiveFeedClient{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger.WithField("source", liveFeedSourceName),
	}
}

// Name returns the data source name
func (c *LiveFeedClient) Name() string {
	return liveFeedSourceName
}

// URL builds the feed URL for a query
func (c *LiveFeedClient) URL(q Query) string {
	params := url.Values{}
	params.Set("sports", strconv.Itoa(c.cfg.Sport))
	params.Set("count", strconv.Itoa(q.Count))
	params.Set("lng", c.cfg.Language)
	params.Set("gr", strconv.Itoa(c.cfg.Group))
	params.Set("mode", strconv.Itoa(c.cfg.Mode))
	params.Set("country", strconv.Itoa(q.CountryCode))
	params.Set("getEmpty", "true")
	return strings.TrimRight(c.cfg.BaseURL, "/") + liveFeedPath + "?" + params.Encode()
}

// FetchMatches retrieves the live matches for a country code
func (c *LiveFeedClient) FetchMatches(ctx context.Context, q Query) ([]feed.RawMatch, error) {
	start := time.Now()
	matches, err := c.fetch(ctx, q)

	result := "success"
	if err != nil {
		result = ErrorCode(err)
	}
	metrics.RecordFeedRequest(result, time.Since(start).Seconds())
	return matches, err
}

func (c *LiveFeedClient) fetch(ctx context.Context, q Query) ([]feed.RawMatch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(q), nil)
	if err != nil {
		return nil, NewDataSourceError(liveFeedSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		code := ErrCodeNetworkError
		if c.httpClient.IsOpen() {
			code = ErrCodeCircuitOpen
		}
		return nil, NewDataSourceError(liveFeedSourceName, code, "failed to fetch live feed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(liveFeedSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(liveFeedSourceName, ErrCodeNotFound, "feed endpoint not found", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, NewDataSourceError(liveFeedSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var envelope liveEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, NewDataSourceError(liveFeedSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	if !envelope.Success {
		return nil, NewDataSourceError(liveFeedSourceName, ErrCodeInvalidData, "feed reported failure: "+envelope.Error, nil)
	}

	matches := make([]feed.RawMatch, 0, len(envelope.Value))
	for i, raw := range envelope.Value {
		var m feed.RawMatch
		if err := json.Unmarshal(raw, &m); err != nil {
			c.logger.WithError(err).WithField("index", i).Warn("Skipping undecodable match")
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}
