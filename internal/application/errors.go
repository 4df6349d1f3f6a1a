package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a device, room or booking does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrRoomUnavailable is returned when a slot is taken or a room is full.
	ErrRoomUnavailable = errors.New("application: room unavailable")
	// ErrAccessDenied is returned when the acting principal lacks permission for an operation.
	ErrAccessDenied = errors.New("application: access denied")
	// ErrInvalidInput is returned for malformed actions, settings or menu choices.
	ErrInvalidInput = errors.New("application: invalid input")
	// ErrSinkWriteFailed reports a degraded activity log. It never aborts an operation.
	ErrSinkWriteFailed = errors.New("application: activity sink write failed")
	// ErrNotLoggedIn is returned when an operation needs a session and none is active.
	ErrNotLoggedIn = errors.New("application: not logged in")
	// ErrInvalidCredentials is returned when login verification fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
)

// DeniedError is the failure returned by the authorization gate.
type DeniedError struct {
	PrincipalID string
	Action      string
	Reason      string
}

// Error returns the message shown to the user.
func (e *DeniedError) Error() string {
	if e.Reason == "" {
		return "Access Denied."
	}
	return "Access Denied: " + e.Reason
}

// LogMessage returns the line forwarded to the activity log.
func (e *DeniedError) LogMessage() string {
	return fmt.Sprintf("Access Denied for %s on %s", e.PrincipalID, e.Action)
}

func (e *DeniedError) Unwrap() error { return ErrAccessDenied }

// OperationError carries a user facing message together with its error kind.
type OperationError struct {
	Kind    error
	Message string
	Err     error
}

func (e *OperationError) Error() string { return e.Message }

func (e *OperationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func failure(kind error, cause error, format string, args ...any) error {
	return &OperationError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface. A single issue is returned verbatim;
// several are joined in field order.
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
	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, v.FieldErrors[field])
	}
	return strings.Join(msgs, " ")
}

// Is makes every ValidationError match ErrInvalidInput.
func (v *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
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

func invalidField(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}
