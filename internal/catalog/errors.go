package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmunix/marquee/internal/resilience"
	"github.com/vmunix/marquee/internal/tmdb"
)

// Outcome kinds. Every error returned by Service wraps exactly one of these
// together with its underlying cause.
var (
	// ErrInvalidArgument is a caller contract violation, such as page < 1.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstream is a network or provider failure that survived retries.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrCanceled means the caller withdrew interest before completion.
	ErrCanceled = errors.New("request canceled")

	// ErrContract means the provider returned something that cannot be mapped.
	ErrContract = errors.New("upstream contract violation")
)

// Error is a failed catalog operation.
type Error struct {
	Op   string // "popular", "top_rated", "search", "movie", "genres"
	Kind error  // one of the outcome kinds above
	Err  error  // cause
}

func (e *Error) Error() string {
	return fmt.Sprintf("catalog %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both kind and cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func invalid(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrInvalidArgument, Err: fmt.Errorf(format, args...)}
}

// classify attaches an outcome kind to a failure from the load path.
func classify(op string, err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}

	kind := ErrUpstream
	switch {
	case isContextErr(err):
		kind = ErrCanceled
	case errors.Is(err, tmdb.ErrMalformed), errors.Is(err, errMapping):
		kind = ErrContract
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// isContextErr reports a caller cancellation or deadline. Transport timeouts
// also match context.DeadlineExceeded but arrive marked transient.
func isContextErr(err error) bool {
	if resilience.IsTransient(err) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
