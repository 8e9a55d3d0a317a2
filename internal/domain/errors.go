package domain

import (
	"errors"
	"fmt"
)

// ErrShopNotFound is returned by the shop store when no record matches a domain
var ErrShopNotFound = errors.New("shop not found")

// ErrorKind classifies failures surfaced to API callers
type ErrorKind string

const (
	KindMissingParameter ErrorKind = "missing_parameter"
	KindInvalidParameter ErrorKind = "invalid_parameter"
	KindStateMismatch    ErrorKind = "state_mismatch"
	KindHMACInvalid      ErrorKind = "hmac_invalid"
	KindUpstream         ErrorKind = "upstream_error"
	KindNotFound         ErrorKind = "not_found"
	KindInternal         ErrorKind = "internal_error"
)

// Error is a classified failure with a short human readable message.
// Status is only meaningful for KindUpstream, where it carries the remote status code.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a classified error around a cause
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewUpstreamError records a failed call to the remote platform
func NewUpstreamError(status int, description string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: description, Status: status, Err: err}
}

// KindOf returns the kind of a classified error, or KindInternal for anything else
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrShopNotFound) {
		return KindNotFound
	}
	return KindInternal
}
