package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrSessionActive is returned when a session is started while another is in flight.
	ErrSessionActive = errors.New("application: a session is already active")
	// ErrNoActiveSession is returned when an operation needs an in-flight session.
	ErrNoActiveSession = errors.New("application: no active session")
	// ErrSessionCompleted is returned when a completed session is mutated.
	ErrSessionCompleted = errors.New("application: session is completed")
	// ErrInvalidTransition is returned for lifecycle transitions the state machine forbids.
	ErrInvalidTransition = errors.New("application: invalid session transition")
	// ErrReadOnlyTemplate is returned when a built-in template is mutated in place.
	ErrReadOnlyTemplate = errors.New("application: built-in templates are read-only")
	// ErrMalformedEvent is returned when a raw event lacks id, type or timestamp.
	ErrMalformedEvent = errors.New("application: malformed event")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
	// cause is an optional sentinel the failure also matches via errors.Is.
	cause error
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v.FieldErrors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the sentinel the validation failure is classified under.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.cause
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// orNil returns v as an error only when it carries field errors.
func (v *ValidationError) orNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

func fieldError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}
