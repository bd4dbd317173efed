package templates

import (
	"fmt"

	"github.com/rwf-web/rwf-templates-go/lexer"
	"github.com/rwf-web/rwf-templates-go/parser"
	"github.com/rwf-web/rwf-templates-go/value"
)

// ErrorKind describes the type of error.
type ErrorKind int

const (
	// Parse errors: fatal for the template, nothing is rendered.
	ErrUnterminatedTag ErrorKind = iota
	ErrUnbalancedBlock
	ErrSyntax

	// Eval errors: fatal for the render call, output is discarded.
	ErrUndefinedVariable
	ErrUnknownMethod
	ErrArityMismatch
	ErrTypeMismatch
	ErrIndexOutOfRange
	ErrInvalidArgument
	ErrUnknownGlobalFunction
	ErrRecursionLimit

	// Collaborator errors, wrapped with the referencing render call.
	ErrPartialNotFound
	ErrPartialParse
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnterminatedTag:
		return "unterminated tag"
	case ErrUnbalancedBlock:
		return "unbalanced block"
	case ErrSyntax:
		return "syntax error"
	case ErrUndefinedVariable:
		return "undefined variable"
	case ErrUnknownMethod:
		return "unknown method"
	case ErrArityMismatch:
		return "wrong number of arguments"
	case ErrTypeMismatch:
		return "type mismatch"
	case ErrIndexOutOfRange:
		return "index out of range"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrUnknownGlobalFunction:
		return "unknown global function"
	case ErrRecursionLimit:
		return "recursion limit exceeded"
	case ErrPartialNotFound:
		return "partial not found"
	case ErrPartialParse:
		return "partial parse error"
	default:
		return "error"
	}
}

// Error represents an error that occurred during parsing or rendering.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    *lexer.Span
	Name    string // template name
}

func (e *Error) Error() string {
	if e.Name != "" && e.Span != nil {
		return fmt.Sprintf("%s: %s (at %s line %d)", e.Kind, e.Message, e.Name, e.Span.StartLine)
	}
	if e.Span != nil {
		return fmt.Sprintf("%s: %s (at line %d)", e.Kind, e.Message, e.Span.StartLine)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates a new error.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WithSpan adds span information to an error.
func (e *Error) WithSpan(span lexer.Span) *Error {
	e.Span = &span
	return e
}

// WithName adds the template name to an error.
func (e *Error) WithName(name string) *Error {
	e.Name = name
	return e
}

// wrapParseError converts a parser error into an engine error.
func wrapParseError(err error, name string) *Error {
	pe, ok := err.(*parser.Error)
	if !ok {
		return NewError(ErrSyntax, err.Error()).WithName(name)
	}
	kind := ErrSyntax
	switch pe.Kind {
	case parser.UnterminatedTag:
		kind = ErrUnterminatedTag
	case parser.UnbalancedBlock:
		kind = ErrUnbalancedBlock
	}
	return &Error{
		Kind:    kind,
		Message: pe.Message,
		Name:    name,
		Span:    &lexer.Span{StartLine: pe.Line, StartOffset: pe.Offset},
	}
}

// wrapValueError converts a value dispatch error into an engine error at
// the given span.
func wrapValueError(err error, span lexer.Span, name string) *Error {
	ve, ok := err.(*value.Error)
	if !ok {
		return NewError(ErrTypeMismatch, err.Error()).WithSpan(span).WithName(name)
	}
	var kind ErrorKind
	switch ve.Kind {
	case value.UnknownMethod:
		kind = ErrUnknownMethod
	case value.ArityMismatch:
		kind = ErrArityMismatch
	case value.IndexOutOfRange:
		kind = ErrIndexOutOfRange
	case value.InvalidArgument:
		kind = ErrInvalidArgument
	default:
		kind = ErrTypeMismatch
	}
	return &Error{Kind: kind, Message: ve.Message, Name: name, Span: &span}
}
