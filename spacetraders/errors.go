package spacetraders

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a normalized error.
type Kind int

const (
	// KindUnknown is the zero Kind and is never produced by the classifier
	KindUnknown Kind = iota
	// KindInvalidInput marks a precondition failure caught before any network I/O
	KindInvalidInput
	// KindUpstreamUnavailable marks a missing response, an outage or a maintenance notice
	KindUpstreamUnavailable
	// KindValidation marks a structured business error returned by the API
	KindValidation
	// KindNotFound marks an entity missing from an otherwise successful response
	KindNotFound
	// KindConnectionTerminated marks a caller-driven shutdown or cancellation
	KindConnectionTerminated
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid-input"
	case KindUpstreamUnavailable:
		return "upstream-unavailable"
	case KindValidation:
		return "upstream-validation-error"
	case KindNotFound:
		return "not-found"
	case KindConnectionTerminated:
		return "connection-terminated"
	default:
		return "unknown"
	}
}

// sentinel returns the package-level error matching the kind.
func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindUpstreamUnavailable:
		return ErrUpstreamUnavailable
	case KindValidation:
		return ErrUpstreamValidation
	case KindNotFound:
		return ErrNotFound
	case KindConnectionTerminated:
		return ErrConnectionTerminated
	default:
		return nil
	}
}

// Common errors. Every *Error matches the sentinel of its Kind with errors.Is.
var (
	// ErrInvalidInput indicates a precondition failure such as an empty token
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamUnavailable indicates the API could not be reached or is down
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamValidation indicates the API rejected the request with a structured error
	ErrUpstreamValidation = errors.New("upstream validation error")
	// ErrNotFound indicates a requested entity was absent from a successful response
	ErrNotFound = errors.New("not found")
	// ErrConnectionTerminated indicates the client was stopped or the caller cancelled
	ErrConnectionTerminated = errors.New("connection terminated")

	// ErrNotReady is wrapped by invalid-input errors for calls made before bootstrap completes
	ErrNotReady = errors.New("client is not ready")
	// ErrSchedulerStopped is returned for work submitted to, or queued on, a stopped scheduler
	ErrSchedulerStopped = errors.New("scheduler is stopped")
	// ErrBootstrapIncomplete is wrapped when the warm load leaves a reference collection empty
	ErrBootstrapIncomplete = errors.New("bootstrap incomplete")
)

// Error is the normalized error returned by every Client operation.
type Error struct {
	Kind    Kind
	Message string
	// Code is the upstream error code, empty when the API did not send one
	Code string
	// StatusCode is the HTTP status, 0 when no response was received
	StatusCode int
	// Err is the underlying cause, may be nil
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("spacetraders: ")
	b.WriteString(e.Kind.String())

	var details []string
	if e.StatusCode != 0 {
		details = append(details, fmt.Sprintf("status %d", e.StatusCode))
	}
	if e.Code != "" {
		details = append(details, "code "+e.Code)
	}
	if len(details) > 0 {
		b.WriteString(" (" + strings.Join(details, ", ") + ")")
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsNotFound checks if the error indicates a missing entity
func (e *Error) IsNotFound() bool {
	return e.Kind == KindNotFound || e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// NewInvalidInput builds an invalid-input error. It never involves the network.
func NewInvalidInput(message string, cause error) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Err: cause}
}

// NewNotFound builds a not-found error naming the missing entity.
func NewNotFound(entity, key string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %s was not found", entity, key),
	}
}

// newTerminated builds a connection-terminated error around cause.
func newTerminated(message string, cause error) *Error {
	return &Error{Kind: KindConnectionTerminated, Message: message, Err: cause}
}

// asError returns err as an *Error, treating unknown errors as upstream failures.
func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUpstreamUnavailable, Message: err.Error(), Err: err}
}
