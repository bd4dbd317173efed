package value

import "fmt"

// ErrorKind classifies method dispatch failures.
type ErrorKind int

const (
	UnknownMethod ErrorKind = iota
	ArityMismatch
	TypeMismatch
	IndexOutOfRange
	InvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownMethod:
		return "unknown method"
	case ArityMismatch:
		return "wrong number of arguments"
	case TypeMismatch:
		return "type mismatch"
	case IndexOutOfRange:
		return "index out of range"
	case InvalidArgument:
		return "invalid argument"
	default:
		return "error"
	}
}

// Error is returned by Invoke and TupleIndex. The engine wraps it with the
// source location of the failing expression.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
