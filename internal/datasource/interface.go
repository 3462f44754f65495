// Package datasource fetches live match payloads from the odds feed.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/match-predictor/internal/feed"
)

// FeedSource defines the interface for fetching live matches from a feed provider
type FeedSource interface {
	// FetchMatches retrieves the live matches matching the query
	FetchMatches(ctx context.Context, q Query) ([]feed.RawMatch, error)

	// Name returns the name of the data source
	Name() string
}

// CacheAwareSource is a FeedSource that can tell whether a response came from cache
type CacheAwareSource interface {
	FeedSource
	FetchMatchesCached(ctx context.Context, q Query) ([]feed.RawMatch, bool, error)
}

// Query selects a slice of the live feed
type Query struct {
	CountryCode int
	Count       int
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeCircuitOpen       = "circuit_open"
	ErrCodeUnknown           = "unknown"
)

// ErrCircuitOpen is returned while the circuit breaker rejects requests
var ErrCircuitOpen = errors.New("circuit breaker open")

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the data source error code from err, or ErrCodeUnknown
func ErrorCode(err error) string {
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code
	}
	return ErrCodeUnknown
}
