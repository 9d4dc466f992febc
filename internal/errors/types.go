package errors

import (
	"fmt"
	"net/http"
)

// Kind classifies a failure into one of the API error categories.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpload
	KindTooManyRequests
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest, KindValidation, KindUpload:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindBadRequest:
		return ErrBadRequest
	case KindValidation:
		return ErrValidation
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindUpload:
		return ErrUpload
	case KindTooManyRequests:
		return ErrTooManyRequests
	default:
		return ErrInternalServer
	}
}

// Error is an application failure carrying the client-facing message and
// the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Fields  []FieldViolation
	Err     error
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// FileTooLarge is the upload error for content over limit bytes.
func FileTooLarge(limit int64, cause error) *Error {
	return Wrap(KindUpload, fmt.Sprintf("File too large. Maximum size is %d MB", limit/(1024*1024)), cause)
}
