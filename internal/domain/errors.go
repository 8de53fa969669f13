package domain

import (
	"github.com/cockroachdb/errors"
)

// ErrorKind classifies a lookup failure.
type ErrorKind int

const (
	// KindUnknown is any failure outside the taxonomy, e.g. a transport error.
	KindUnknown ErrorKind = iota
	// KindInput means the caller supplied empty or degenerate input.
	KindInput
	// KindNotFound means the query was well formed but matched nothing.
	KindNotFound
	// KindParse means an upstream payload did not have the expected structure.
	KindParse
	// KindCoordinate means a coordinate was NaN or infinite.
	KindCoordinate
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNotFound:
		return "not_found"
	case KindParse:
		return "parse"
	case KindCoordinate:
		return "coordinate"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Every *Error matches exactly one of them.
var (
	ErrInput      = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrParse      = errors.New("malformed payload")
	ErrCoordinate = errors.New("invalid coordinate")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInput:
		return ErrInput
	case KindNotFound:
		return ErrNotFound
	case KindParse:
		return ErrParse
	case KindCoordinate:
		return ErrCoordinate
	default:
		return nil
	}
}

// Error is a classified lookup failure. The message is the underlying
// error's; errors.Is matches the sentinel of Kind.
type Error struct {
	Kind ErrorKind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, err: errors.Newf(format, args...)}
}

// InputErrorf reports invalid caller input.
func InputErrorf(format string, args ...any) error {
	return newError(KindInput, format, args...)
}

// NotFoundErrorf reports a query with no match.
func NotFoundErrorf(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

// ParseErrorf reports a malformed upstream payload.
func ParseErrorf(format string, args ...any) error {
	return newError(KindParse, format, args...)
}

// CoordinateErrorf reports a non-finite coordinate.
func CoordinateErrorf(format string, args ...any) error {
	return newError(KindCoordinate, format, args...)
}

// WrapParse classifies err as a parse failure, keeping it as the cause.
func WrapParse(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindParse, err: errors.Wrap(err, msg)}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
