package workflows

import (
	"errors"

	"go.temporal.io/sdk/temporal"
)

// Failure kinds. These become the application error type on the wire, which
// is what retry policies match their non-retryable exclusions against.
const (
	// ErrTypeValidation marks malformed input. Never retried.
	ErrTypeValidation = "ValidationError"
	// ErrTypeAuth marks a missing or rejected credential. Never retried.
	ErrTypeAuth = "AuthError"
	// ErrTypeResource marks an expected resource that is absent, such as the
	// target file missing from the clone. Never retried.
	ErrTypeResource = "ResourceError"
	// ErrTypeTransient marks network, rate-limit, and timeout failures.
	// Retried per the step's policy.
	ErrTypeTransient = "TransientError"
)

// NewValidationError returns a non-retryable failure for malformed input.
func NewValidationError(msg string, cause error) error {
	return temporal.NewNonRetryableApplicationError(msg, ErrTypeValidation, cause)
}

// NewAuthError returns a non-retryable failure for credential problems.
func NewAuthError(msg string, cause error) error {
	return temporal.NewNonRetryableApplicationError(msg, ErrTypeAuth, cause)
}

// NewResourceError returns a non-retryable failure for a missing resource.
func NewResourceError(msg string, cause error) error {
	return temporal.NewNonRetryableApplicationError(msg, ErrTypeResource, cause)
}

// NewTransientError returns a retryable failure. The cause is preserved so
// the final error report carries the original reason once retries are
// exhausted.
func NewTransientError(msg string, cause error) error {
	return temporal.NewApplicationErrorWithCause(msg, ErrTypeTransient, cause)
}

// IsErrType reports whether err carries the given failure kind anywhere in
// its chain.
func IsErrType(err error, errType string) bool {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Type() == errType
	}
	return false
}
