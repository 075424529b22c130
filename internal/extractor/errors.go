package extractor

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned by Normalize for blank input. The pipeline turns it
// into a placeholder record; it never reaches the user as a failure.
var ErrEmptyInput = errors.New("empty input")

// ServiceError reports a failed call to the text-generation service. It is
// surfaced to the caller as-is and never converted into a fallback record.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// malformedResponseError means the model output was not a JSON object.
// It stays inside this package.
type malformedResponseError struct {
	reason string
	err    error
}

func (e *malformedResponseError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.reason, e.err)
	}
	return "malformed response: " + e.reason
}

func (e *malformedResponseError) Unwrap() error {
	return e.err
}
