package models

import "errors"

// Custom errors
var (
	ErrInvalidBand  = errors.New("invalid price band")
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
)

// ValidationError describes a data problem with a stable code.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// NewValidationError creates a ValidationError.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

var (
	ErrMatchNotFound = NewValidationError("match_not_found", "match not found")
	ErrInvalidMatch  = NewValidationError("invalid_match", "finished match is missing required data")
)
