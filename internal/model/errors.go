package model

import (
	"errors"
	"fmt"
)

// Failure classes for platform errors. The orchestrator maps these to exit
// codes and the retry helper uses them to decide whether to try again.
var (
	ErrValidation  = errors.New("validation failed")
	ErrAuth        = errors.New("authentication failed")
	ErrRateLimited = errors.New("rate limited")
	ErrNetwork     = errors.New("network error")
)

// PlatformError wraps an error raised by one platform client.
type PlatformError struct {
	Platform Platform
	Class    error // one of the sentinel classes above, or nil for uncategorized
	Err      error
}

func (e *PlatformError) Error() string {
	if e.Class != nil {
		return fmt.Sprintf("%s: %v: %v", e.Platform, e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Platform, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// Is lets errors.Is match against the failure class as well as the cause.
func (e *PlatformError) Is(target error) bool {
	return e.Class != nil && errors.Is(e.Class, target)
}

// NewPlatformError builds a classified platform error.
func NewPlatformError(p Platform, class, err error) *PlatformError {
	return &PlatformError{Platform: p, Class: class, Err: err}
}

// Retryable reports whether err is worth retrying: rate limits and
// transient network failures. Auth and validation failures are terminal.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNetwork)
}
