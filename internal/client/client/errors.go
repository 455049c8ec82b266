package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRequestFailed = errors.New("request failed")
	ErrMethod        = errors.New("unsupported method")
)

const (
	defaultUnauthorizedMessage = "Could not validate credentials"
	defaultFailureMessage      = "Request failed"
)

type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindRequestFailed
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRequestFailed:
		return "request failed"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is returned by Do for every failed request.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Payload is the tolerantly parsed error body: a JSON value, a string,
	// or nil when the body was empty.
	Payload any
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrRequestFailed:
		return e.Kind == KindRequestFailed
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// MessageOf returns the user-facing message for err: the server-provided
// detail for API errors, err.Error() otherwise.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
