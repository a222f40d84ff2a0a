// Package domain defines core types, interfaces, and errors for the
// authorization engine.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ContextActiveError indicates an attempt to establish a unit-of-work scope
// while one is already active on the same context chain.
type ContextActiveError struct {
	Message string
}

func (e *ContextActiveError) Error() string { return e.Message }

// UnknownPolicyError indicates evaluation against a resource with no
// registered rule set. A configuration error, not a security event.
type UnknownPolicyError struct {
	Resource string
}

func (e *UnknownPolicyError) Error() string {
	return fmt.Sprintf("no policy registered for resource %q", e.Resource)
}

// IncompletePolicyError indicates a rule set that failed startup validation.
type IncompletePolicyError struct {
	Resource string
	Message  string
}

func (e *IncompletePolicyError) Error() string {
	if e.Resource == "" {
		return e.Message
	}
	return fmt.Sprintf("policy for %q: %s", e.Resource, e.Message)
}

// MembershipLookupError wraps a storage failure during a team-membership
// check. Authorization treats the answer as false; the error itself is
// surfaced to operational logging and metrics.
type MembershipLookupError struct {
	Message string
	Err     error
}

func (e *MembershipLookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *MembershipLookupError) Unwrap() error { return e.Err }

// AuditWriteError wraps a failed audit sink write. Never fatal to the caller.
type AuditWriteError struct {
	Message string
	Err     error
}

func (e *AuditWriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuditWriteError) Unwrap() error { return e.Err }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrContextActive creates a ContextActiveError with a formatted message.
func ErrContextActive(format string, args ...interface{}) *ContextActiveError {
	return &ContextActiveError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnknownPolicy creates an UnknownPolicyError for the given resource.
func ErrUnknownPolicy(resource string) *UnknownPolicyError {
	return &UnknownPolicyError{Resource: resource}
}

// ErrIncompletePolicy creates an IncompletePolicyError with a formatted message.
func ErrIncompletePolicy(resource, format string, args ...interface{}) *IncompletePolicyError {
	return &IncompletePolicyError{Resource: resource, Message: fmt.Sprintf(format, args...)}
}

// ErrMembershipLookup wraps err as a MembershipLookupError.
func ErrMembershipLookup(err error, format string, args ...interface{}) *MembershipLookupError {
	return &MembershipLookupError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrAuditWrite wraps err as an AuditWriteError.
func ErrAuditWrite(err error, format string, args ...interface{}) *AuditWriteError {
	return &AuditWriteError{Message: fmt.Sprintf(format, args...), Err: err}
}
