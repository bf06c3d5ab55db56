// Package apperr is the error taxonomy shared by the service and handler
// layers.  Services return *Error values; handlers turn them into the
// response envelope with the status code given by HTTPStatus.
package apperr

import (
    "errors"
    "net/http"
    "strings"
)

// Kind classifies an application error.
type Kind string

const (
    KindValidation        Kind = "validation_error"
    KindNotFound          Kind = "not_found"
    KindForbidden         Kind = "forbidden"
    KindUnauthorized      Kind = "unauthorized"
    KindConflict          Kind = "conflict"
    KindInvalidTransition Kind = "invalid_transition"
    KindInvalidOTP        Kind = "invalid_otp"
    KindInternal          Kind = "internal_error"
)

// FieldError is one violated input rule.
type FieldError struct {
    Field   string `json:"field"`
    Message string `json:"message"`
}

// Error carries a Kind, a caller-safe message and, depending on the kind,
// the offending field (Conflict) or the full list of violations (Validation).
// Err holds the underlying cause and is never shown to callers.
type Error struct {
    Kind    Kind
    Message string
    Field   string
    Fields  []FieldError
    Err     error
}

func (e *Error) Error() string {
    var b strings.Builder
    b.WriteString(string(e.Kind))
    if e.Message != "" {
        b.WriteString(": ")
        b.WriteString(e.Message)
    }
    if e.Err != nil {
        b.WriteString(": ")
        b.WriteString(e.Err.Error())
    }
    return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string, fields ...FieldError) *Error {
    return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Conflict reports a uniqueness violation on field.
func Conflict(field, msg string) *Error {
    return &Error{Kind: KindConflict, Message: msg, Field: field}
}

func InvalidTransition(msg string) *Error {
    return &Error{Kind: KindInvalidTransition, Message: msg}
}

func InvalidOTP() *Error {
    return &Error{Kind: KindInvalidOTP, Message: "the provided OTP is invalid or expired"}
}

// Internal wraps an unexpected failure.  The cause is kept for logging only.
func Internal(err error) *Error {
    return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
    var ae *Error
    if errors.As(err, &ae) {
        return ae, true
    }
    return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
    ae, ok := As(err)
    return ok && ae.Kind == kind
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
    switch kind {
    case KindValidation, KindInvalidTransition, KindInvalidOTP:
        return http.StatusBadRequest
    case KindNotFound:
        return http.StatusNotFound
    case KindForbidden:
        return http.StatusForbidden
    case KindUnauthorized:
        return http.StatusUnauthorized
    case KindConflict:
        return http.StatusConflict
    default:
        return http.StatusInternalServerError
    }
}

// Collector accumulates field violations so every broken rule is reported
// at once.
type Collector struct {
    fields []FieldError
}

func (c *Collector) Add(field, msg string) {
    c.fields = append(c.fields, FieldError{Field: field, Message: msg})
}

// Check adds msg for field when ok is false.
func (c *Collector) Check(ok bool, field, msg string) {
    if !ok {
        c.Add(field, msg)
    }
}

func (c *Collector) Empty() bool { return len(c.fields) == 0 }

// Err returns a Validation error holding every collected violation, or nil.
func (c *Collector) Err(msg string) error {
    if c.Empty() {
        return nil
    }
    return Validation(msg, c.fields...)
}
