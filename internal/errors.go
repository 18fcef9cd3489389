package internal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors raised by the runtime. An ErrorKind is itself an
// error, so errors.Is(err, CastError) reports whether err is a cast error.
type ErrorKind int

// Error kinds.
const (
	OutOfBounds ErrorKind = iota
	AmbiguousSymbol
	SymbolNotFound
	NullValue
	UnexpectedKeyword
	FlowError
	MissingParameter
	TooManyParameters
	ParameterError
	NoReturn
	CastError
	InstructionError
	MismatchedParenthesis
	UnexpectedToken
	ConstantViolation
	InvalidLiteral
	FileNotFound
	ReadOnly
)

var kindNames = [...]string{
	"out of bounds",
	"ambiguous symbol",
	"symbol not found",
	"null value",
	"unexpected keyword",
	"flow error",
	"missing parameter",
	"too many parameters",
	"parameter error",
	"no return",
	"cast error",
	"instruction error",
	"mismatched parenthesis",
	"unexpected token",
	"constant violation",
	"invalid literal",
	"file not found",
	"read only",
}

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	if k < OutOfBounds || k > ReadOnly {
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
	return kindNames[k]
}

// Error returns the kind's name so that kinds may be used as sentinels.
func (k ErrorKind) Error() string {
	return k.String()
}

// Error is an error raised while registering types or executing
// instructions.
type Error struct {
	// Kind is the category of the error.
	Kind ErrorKind
	// Message describes the error.
	Message string
	// Line is the physical line on which the error occurred. Values <= 0 are
	// unresolved and are interpreted as an offset from the line of the
	// instruction being executed when the error unwinds the first scope.
	Line int
	// Err is the underlying cause, if any.
	Err error
}

// NewError creates an Error of the given kind with a formatted message and
// an unresolved line.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error of the given kind wrapping err.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Error formats the error with its kind and line.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("%v at line %d: %s", e.Kind, e.Line, msg)
	}
	return fmt.Sprintf("%v: %s", e.Kind, msg)
}

// Unwrap returns the cause of the error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// IsKind reports whether err is or wraps an Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return errors.Is(err, kind)
}

// AsError converts err to an *Error. Errors which are not already runtime
// errors are wrapped as ParameterError, which is the kind raised for failures
// inside native function bodies.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapError(ParameterError, err, "native call failed")
}
