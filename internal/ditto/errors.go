package ditto

import "errors"

// Domain-specific errors for Ditto API operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnexpectedStatus is returned when the API answers with a status code
	// the operation does not know how to handle. The wrapped message carries
	// the status and response body.
	ErrUnexpectedStatus = errors.New("ditto: unexpected status")

	// ErrNotFound is returned when a twin or property path does not exist.
	ErrNotFound = errors.New("ditto: not found")

	// ErrUnauthorized is returned when the instance rejects the credentials.
	ErrUnauthorized = errors.New("ditto: authentication failed")

	// ErrTimeout is returned by WaitUntilAvailable when the instance does not
	// become reachable within the configured budget.
	ErrTimeout = errors.New("ditto: not available within timeout")
)
