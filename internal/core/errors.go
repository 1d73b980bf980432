package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnknownDestination = "unknown_destination"
	ErrCodeAlreadySubscribed  = "already_subscribed"
	ErrCodeNotSubscribed      = "not_subscribed"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeInternal           = "internal_error"
)

var (
	// ErrInvalidMessage marks chat messages rejected by validation.
	ErrInvalidMessage = errors.New("invalid message")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
