package services

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrValidation marks malformed caller input. No upstream call is made.
	ErrValidation = errors.New("validation error")
	// ErrAllBackendsExhausted is returned when every configured backend failed.
	ErrAllBackendsExhausted = errors.New("all model backends exhausted")
	// ErrMalformedModelOutput marks a structured model response that could not be parsed.
	// Callers recover from it locally.
	ErrMalformedModelOutput = errors.New("malformed model output")
)

type UpstreamClass string

const (
	ClassRateLimited    UpstreamClass = "rate_limited"
	ClassOverloaded     UpstreamClass = "overloaded"
	ClassPermission     UpstreamClass = "permission"
	ClassInvalidRequest UpstreamClass = "invalid_request"
	ClassUnknown        UpstreamClass = "unknown"
)

// UpstreamError is a classified failure of one backend call.
type UpstreamError struct {
	Backend    string
	Class      UpstreamClass
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (%d): %v", e.Backend, e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Class, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient (throttling or overload).
func (e *UpstreamError) Retryable() bool {
	return e.Class == ClassRateLimited || e.Class == ClassOverloaded
}

// ExhaustedError carries the last upstream error after the fallback list ran out.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrAllBackendsExhausted, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrAllBackendsExhausted, e.Last}
}

// RoleRejectedError is returned when a job role is classified as not plausible.
type RoleRejectedError struct {
	Role string
}

func (e *RoleRejectedError) Error() string {
	return fmt.Sprintf("'%s' does not seem to be a real-life job role. Please enter a valid one.", e.Role)
}

// IsRetryable is the retry predicate shared by every caller of the invocation client.
func IsRetryable(err error) bool {
	return ClassOf(err) == ClassRateLimited || ClassOf(err) == ClassOverloaded
}

// ClassOf returns the upstream class of err, falling back to message inspection
// for drivers that do not return an *UpstreamError.
func ClassOf(err error) UpstreamClass {
	if err == nil {
		return ""
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Class
	}
	return ClassifyMessage(err.Error())
}

// ClassifyMessage maps an error message onto an upstream class.
func ClassifyMessage(msg string) UpstreamClass {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "503"), strings.Contains(lower, "overloaded"), strings.Contains(lower, "unavailable"):
		return ClassOverloaded
	case strings.Contains(lower, "429"), strings.Contains(lower, "quota"), strings.Contains(lower, "rate limit"):
		return ClassRateLimited
	case strings.Contains(lower, "403"), strings.Contains(lower, "permission"), strings.Contains(lower, "access denied"):
		return ClassPermission
	case strings.Contains(lower, "400"), strings.Contains(lower, "invalid argument"), strings.Contains(lower, "validation"):
		return ClassInvalidRequest
	default:
		return ClassUnknown
	}
}

// classFromStatus maps an HTTP status code onto an upstream class.
func classFromStatus(code int) UpstreamClass {
	switch {
	case code == 429:
		return ClassRateLimited
	case code == 503:
		return ClassOverloaded
	case code == 401 || code == 403:
		return ClassPermission
	case code == 400 || code == 404 || code == 422:
		return ClassInvalidRequest
	default:
		return ClassUnknown
	}
}
