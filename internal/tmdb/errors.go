package tmdb

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for TMDB API responses.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized: invalid api key")
	ErrRateLimited  = errors.New("rate limited: too many requests")
	ErrMalformed    = errors.New("malformed response")
)

// StatusError is a non-2xx response from TMDB.
type StatusError struct {
	Code    int
	Status  string
	Message string        // status_message from the body, if any
	Wait    time.Duration // parsed Retry-After, zero if absent
	Err     error         // matching sentinel, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("TMDB API error: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("TMDB API error: %s", e.Status)
}

func (e *StatusError) Unwrap() error { return e.Err }

// RetryAfter returns the server-provided wait before the next attempt.
func (e *StatusError) RetryAfter() time.Duration { return e.Wait }

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
