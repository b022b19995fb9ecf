package resilience

import (
	"errors"
	"time"
)

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as eligible for retry. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

type retryAfterHint interface {
	RetryAfter() time.Duration
}

// RetryAfter extracts a server-supplied delay hint from err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var h retryAfterHint
	if errors.As(err, &h) {
		if d := h.RetryAfter(); d > 0 {
			return d, true
		}
	}
	return 0, false
}
