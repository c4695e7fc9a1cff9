package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("test code not found")
	ErrParse      = errors.New("invalid quiz data from upstream")

	ErrUpstream     = errors.New("upstream request failed")
	ErrUpstreamAuth = errors.New("upstream rejected credentials")

	// ErrDuplicateScore is returned by score stores when an insert collides
	// with an existing (test code, user) record.
	ErrDuplicateScore = errors.New("score already exists for user")
)

type UpstreamKind int

const (
	UpstreamGeneric UpstreamKind = iota
	UpstreamAuthorization
)

// UpstreamError describes a failed text-completion call. It matches
// ErrUpstream always and ErrUpstreamAuth when Kind is UpstreamAuthorization.
type UpstreamError struct {
	Kind       UpstreamKind
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := "upstream request failed"
	if e.Kind == UpstreamAuthorization {
		msg = "upstream rejected credentials"
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return true
	case ErrUpstreamAuth:
		return e.Kind == UpstreamAuthorization
	}
	return false
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func parseError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}
