package knowledge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidQuery is returned for blank or oversized user input.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrTopicNotFound is returned when a topic lookup by id or name misses.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrTopicUndiscovered is returned when a user reads a topic they have not discovered yet.
	ErrTopicUndiscovered = errors.New("topic not discovered")

	// ErrGeneratorUnavailable covers transport failures, provider errors and an open breaker.
	ErrGeneratorUnavailable = errors.New("content generator unavailable")
	// ErrGenerationRateLimited is returned when a user exceeds the generation budget.
	ErrGenerationRateLimited = errors.New("generation rate limited")
	// ErrMalformedGeneratorOutput means no JSON payload could be decoded. Not retried.
	ErrMalformedGeneratorOutput = errors.New("malformed generator output")
	// ErrIncompleteGeneratorOutput means mandatory fields were missing.
	ErrIncompleteGeneratorOutput = errors.New("incomplete generator output")

	// ErrSagaAborted wraps any failure of the dual-store write.
	ErrSagaAborted = errors.New("dual-store write aborted")
	// ErrDiscoveryLog is logged, never returned to callers.
	ErrDiscoveryLog = errors.New("discovery log update failed")
)

// IncompleteOutputError carries the raw generator text for diagnosis.
type IncompleteOutputError struct {
	Missing []string
	Raw     string
}

func (e *IncompleteOutputError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteGeneratorOutput.Error(), strings.Join(e.Missing, ", "))
}

func (e *IncompleteOutputError) Is(target error) bool {
	return target == ErrIncompleteGeneratorOutput
}

// MalformedOutputError carries the raw generator text and the decode cause.
type MalformedOutputError struct {
	Raw   string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause == nil {
		return ErrMalformedGeneratorOutput.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformedGeneratorOutput.Error(), e.Cause)
}

func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedGeneratorOutput
}

func (e *MalformedOutputError) Unwrap() error { return e.Cause }

// Failure tells callers what kind of retry, if any, makes sense.
type Failure string

const (
	FailureNone        Failure = ""
	FailureBadInput    Failure = "bad_input"
	FailureNotFound    Failure = "not_found"
	FailureForbidden   Failure = "forbidden"
	FailureTransient   Failure = "transient"
	FailureBadUpstream Failure = "bad_upstream"
	FailureInternal    Failure = "internal"
)

// Classify maps an error from the synthesis path onto a Failure.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrInvalidQuery):
		return FailureBadInput
	case errors.Is(err, ErrTopicNotFound):
		return FailureNotFound
	case errors.Is(err, ErrTopicUndiscovered):
		return FailureForbidden
	case errors.Is(err, ErrGeneratorUnavailable),
		errors.Is(err, ErrGenerationRateLimited),
		errors.Is(err, ErrSagaAborted):
		return FailureTransient
	case errors.Is(err, ErrMalformedGeneratorOutput),
		errors.Is(err, ErrIncompleteGeneratorOutput):
		return FailureBadUpstream
	default:
		return FailureInternal
	}
}

// Retryable reports whether repeating the same request may succeed.
func Retryable(err error) bool {
	return Classify(err) == FailureTransient
}
