// Package apperrors is the request-facing failure taxonomy. Every error that
// leaves the core maps to exactly one Kind; handlers translate Kinds to HTTP
// status codes and never let anything else escape to the transport layer.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidPayload      Kind = "invalid_payload"
	KindUnauthorized        Kind = "unauthorized"
	KindRateLimited         Kind = "rate_limited"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
)

// FieldError points at a single violated field in a rejected payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidPayload(fields []FieldError) *Error {
	return &Error{Kind: KindInvalidPayload, Message: "invalid payload", Fields: fields}
}

func InvalidJSON() *Error {
	return &Error{Kind: KindInvalidPayload, Message: "invalid JSON"}
}

func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "unauthorized"}
}

func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Message: "too many requests"}
}

func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: op + " failed", Err: err}
}

// AsError extracts the taxonomy error if err carries one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
