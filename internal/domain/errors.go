package domain

import (
	"context"
	"errors"
)

// Failure kinds. Every error returned by the repository and service layers
// wraps exactly one of these, so callers can branch with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStorage         = errors.New("storage failure")
	// ErrTimeout errors also match ErrStorage.
	ErrTimeout = errors.New("timeout")
)

// Kind names as shown to users.
const (
	KindNotFound        = "NotFound"
	KindInvalidState    = "InvalidState"
	KindInvalidArgument = "InvalidArgument"
	KindTimeout         = "Timeout"
	KindStorageFailure  = "StorageFailure"
)

// KindOf maps err to its kind name. Errors that carry no kind are reported
// as storage failures.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindStorageFailure
	}
}

// IsDomainError reports whether err already carries a failure kind.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrStorage) ||
		errors.Is(err, ErrTimeout)
}

// Retryable reports whether a caller may retry the failed operation with backoff.
// State conflicts are never retryable.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorage) || errors.Is(err, ErrTimeout)
}
