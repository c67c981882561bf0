package model

import (
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindDecode
	KindResize
	KindEncode
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDecode:
		return "decode"
	case KindResize:
		return "resize"
	case KindEncode:
		return "encode"
	default:
		return "unknown"
	}
}

func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDecode:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure of one pipeline stage. Message is safe to show to
// clients; Err carries the underlying library error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s Error: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail is the client-facing text, with or without the library error.
func (e *Error) Detail(expose bool) string {
	if expose {
		return e.Error()
	}
	return e.Message
}

func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func DecodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: "Could not process the image.", Err: err}
}

func ResizeError(err error) *Error {
	return &Error{Kind: KindResize, Message: "Failed to resize the image.", Err: err}
}

func EncodeError(message string, err error) *Error {
	return &Error{Kind: KindEncode, Message: message, Err: err}
}
