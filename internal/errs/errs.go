package errs

import (
	"context"
	"errors"
)

// Code is a page-object error code.
type Code string

const (
	InvalidArgument  Code = "invalid_argument"
	InvalidFormat    Code = "invalid_format"
	Unresolved       Code = "unresolved"
	DeadlineExceeded Code = "deadline_exceeded"
	Canceled         Code = "canceled"
	Unparsable       Code = "unparsable"
	Internal         Code = "internal"
)

// Error is a coded page-object error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// FromContext wraps a context error, keeping the deadline/cancel distinction.
func FromContext(message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(DeadlineExceeded, message, err)
	}
	return Wrap(Canceled, message, err)
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Code == "" {
			return Internal
		}
		return coded.Code
	}
	return Internal
}

// MessageOf returns the outermost coded message without the cause chain.
func MessageOf(err error) string {
	if err == nil {
		return string(Internal)
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return "internal error"
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
