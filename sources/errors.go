package sources

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"
)

var (
	// ErrSourceUnavailable is returned for a section whose posts could not be
	// fetched, after retries.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited marks a throttled request. It is retried with backoff and
	// escalates to ErrSourceUnavailable when retries run out.
	ErrRateLimited = errors.New("rate limited")

	ErrInvalidLimit = errors.New("limit must not be negative")
)

// StatusError is a non-200 response from a forum API.
type StatusError struct {
	Source     string
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Source, e.Code)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Source, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.Code == http.StatusTooManyRequests
}

// retryable reports whether a failed request is worth repeating: throttling,
// timeouts, server errors and transport failures are; other client errors and
// undecodable payloads are not.
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests ||
			statusErr.Code == http.StatusRequestTimeout ||
			statusErr.Code >= 500
	}
	var decodeErr *DecodeError
	return !errors.As(err, &decodeErr)
}

// DecodeError wraps a response body that could not be parsed.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s response: %v", e.Source, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

const maxErrorLen = 300

// truncateError shortens long error messages for logging, cutting on a rune
// boundary.
func truncateError(err error) error {
	msg := err.Error()
	if len(msg) <= maxErrorLen {
		return err
	}
	cut := maxErrorLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return fmt.Errorf("%s...", msg[:cut])
}
