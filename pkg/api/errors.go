package api

import (
	"errors"
	"fmt"
	"strings"
)

// TransientError is a failure expected to resolve on retry: rate limits,
// 5xx server errors, network timeouts.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError is a failure retrying cannot fix: bad credentials,
// malformed requests.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func transientf(format string, args ...interface{}) error {
	return &TransientError{Err: fmt.Errorf(format, args...)}
}

func permanentf(format string, args ...interface{}) error {
	return &PermanentError{Err: fmt.Errorf(format, args...)}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// transientVocabulary matches application-level error strings that indicate
// a retryable condition. The vendor does not always fail the HTTP exchange;
// it may return 200 with an error message embedded in the body.
var transientVocabulary = []string{
	"rate limit",
	"too many requests",
	"429",
	"500",
	"502",
	"503",
	"504",
	"server error",
	"internal error",
	"temporarily unavailable",
	"timeout",
	"timed out",
}

// classifyResponseError translates an embedded error string into the
// matching error type. Returns nil for an empty message.
func classifyResponseError(message string) error {
	if message == "" {
		return nil
	}

	lower := strings.ToLower(message)
	for _, kw := range transientVocabulary {
		if strings.Contains(lower, kw) {
			return transientf("trends API error: %s", message)
		}
	}

	return permanentf("trends API error: %s", message)
}

// classifyStatusCode maps an HTTP status to the error taxonomy. 429 and 5xx
// are retryable, everything else non-200 is not.
func classifyStatusCode(status int, body string) error {
	if status == 200 {
		return nil
	}

	if status == 429 || status >= 500 {
		return transientf("trends API returned status %d: %s", status, body)
	}

	return permanentf("trends API returned status %d: %s", status, body)
}
