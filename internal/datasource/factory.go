package datasource

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/config"
)

// NewFeedSource wires the rate-limited client, LiveFeed client and cache from configuration
func NewFeedSource(cfg *config.Config, logger *logrus.Logger) (FeedSource, *RateLimitedHTTPClient) {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.FeedTimeout()
	httpCfg.MaxRetries = cfg.Feed.MaxRetries
	httpCfg.RateLimit = cfg.Feed.RateLimit

	httpClient := NewRateLimitedHTTPClient(httpCfg, logger)
	client := NewLiveFeedClient(httpClient, LiveFeedConfig{
		BaseURL:  cfg.Feed.BaseURL,
		Sport:    cfg.Feed.Sport,
		Language: cfg.Feed.Language,
		Group:    cfg.Feed.Group,
		Mode:     cfg.Feed.Mode,
	}, logger)

	return NewCachedFeedSource(client, cfg.FeedCacheTTL(), logger), httpClient
}
