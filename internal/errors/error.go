package errors

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/internal/enum"
)

var (
	// common errors
	ErrTenantMissing = errors.New("tenant is missing")

	// identity errors
	ErrIdentityNotFound    = errors.New("sending identity not found")
	ErrIdentityPaused      = errors.New("sending identity is paused")
	ErrIdentityBlacklisted = errors.New("sending identity is blacklisted")

	// outreach errors
	ErrRecipientSuppressed = errors.New("recipient is suppressed")
	ErrNoChannelsRequested = errors.New("no channels requested")
	ErrUnknownStrategy     = errors.New("unknown sequence strategy")
)

// ValidationError reports malformed or missing input. It is raised
// before any pipeline stage runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// HardStopError aborts the execution pipeline. Compliance and
// verification failures surface as hard stops; nothing is dispatched.
type HardStopError struct {
	Stage  enum.PipelineStage
	Reason string
}

func (e *HardStopError) Error() string {
	return fmt.Sprintf("hard stop at %s: %s", e.Stage, e.Reason)
}

func NewHardStopError(stage enum.PipelineStage, reason string) *HardStopError {
	return &HardStopError{Stage: stage, Reason: reason}
}

// CircuitOpenError fails fast when a circuit is open. It is not retried
// further upstream.
type CircuitOpenError struct {
	Scope   string
	RetryAt time.Time
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for %s until %s", e.Scope, e.RetryAt.Format(time.RFC3339))
}

func IsCircuitOpen(err error) bool {
	var target *CircuitOpenError
	return errors.As(err, &target)
}

// RateLimitError carries the retry-after hint for a denied scope. The
// caller must reschedule, not immediately retry.
type RateLimitError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Scope, e.RetryAfter)
}

func IsRateLimited(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}

// TransientError marks a failure the retry executor may absorb:
// a retryable status code or a connection-level fault.
type TransientError struct {
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transient failure (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transient failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// RetryAfterError wraps a transient failure with a server-provided
// retry-after hint. The hint takes precedence over computed backoff.
type RetryAfterError struct {
	After time.Duration
	Err   error
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("retry after %s: %v", e.After, e.Err)
}

func (e *RetryAfterError) Unwrap() error {
	return e.Err
}
