package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures. Each kind maps to one outward signal.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindInvalidInput
	KindNotFound
	KindExpired
	KindCodeAlreadyExists
	KindCodeExhausted
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindExpired:
		return "expired"
	case KindCodeAlreadyExists:
		return "code already exists"
	case KindCodeExhausted:
		return "code exhausted"
	case KindStorageFailure:
		return "storage failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the error type returned by every service operation
type Error struct {
	Kind Kind
	// Field names the offending input for KindInvalidInput
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target without a field
// matches any field.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// Sentinels for errors.Is
var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrExpired           = &Error{Kind: KindExpired}
	ErrCodeAlreadyExists = &Error{Kind: KindCodeAlreadyExists}
	ErrCodeExhausted     = &Error{Kind: KindCodeExhausted}
	ErrStorageFailure    = &Error{Kind: KindStorageFailure}
)

// Input field names reported with KindInvalidInput
const (
	FieldDestinationURL = "destinationUrl"
	FieldCode           = "code"
	FieldExpiresAt      = "expiresAt"
	FieldID             = "id"
)

func invalidInput(field string, err error) error {
	return &Error{Kind: KindInvalidInput, Field: field, Err: err}
}

func storageFailure(err error) error {
	return &Error{Kind: KindStorageFailure, Err: err}
}

// KindOf returns the kind of a service error, or false for foreign errors
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// FieldOf returns the offending field of an invalid-input error
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
