package cbor

import (
	"errors"
	"strconv"
)

// ErrorKind classifies a decode failure.
type ErrorKind int

const (
	// ErrUnexpectedEnd means the input ended before the data item was complete.
	ErrUnexpectedEnd ErrorKind = iota + 1

	// ErrMalformedInput means the input is not well-formed CBOR,
	// or holds a value this decoder cannot represent.
	ErrMalformedInput

	// ErrIndefiniteLength means an indefinite-length item was found.
	ErrIndefiniteLength

	// ErrUnimplemented means a text string, float or simple value was found.
	ErrUnimplemented

	// ErrRecursionLimit means the nesting depth exceeded Options.MaxNestedLevels.
	ErrRecursionLimit
)

func (k ErrorKind) Error() string {
	switch k {
	case ErrUnexpectedEnd:
		return "cbor: unexpected end of input"
	case ErrMalformedInput:
		return "cbor: malformed input"
	case ErrIndefiniteLength:
		return "cbor: indefinite-length items are not supported"
	case ErrUnimplemented:
		return "cbor: unimplemented"
	case ErrRecursionLimit:
		return "cbor: exceeded max nested levels"
	}
	return "cbor: unknown error kind " + strconv.Itoa(int(k))
}

// DecodeError describes a decode failure.
type DecodeError struct {
	Kind ErrorKind

	// Offset is the position of the head of the data item that failed.
	Offset int

	Reason string
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error() + " at offset " + strconv.Itoa(e.Offset)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

func newDecodeError(kind ErrorKind, offset int, reason string) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Reason: reason}
}

// ErrInvalidOptions is returned when Options hold out-of-range settings.
var ErrInvalidOptions = errors.New("cbor: invalid options")
