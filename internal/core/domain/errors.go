package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that are reported back to the caller.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindAuth
	KindNotFound
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is a caller-facing failure. Message is safe to return to clients.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func NewConflictError(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func NewAuthError(msg string) *Error       { return &Error{Kind: KindAuth, Message: msg} }
func NewNotFoundError(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }

// NewUpstreamError wraps a failure reported by an external service.
func NewUpstreamError(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// Repository-level sentinels.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidTransition   = errors.New("invalid status transition")
)
