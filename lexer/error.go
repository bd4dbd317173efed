package lexer

import "fmt"

// ErrorKind classifies scanner failures.
type ErrorKind int

const (
	// UnterminatedTag means a tag opener was never closed with %>.
	UnterminatedTag ErrorKind = iota
	// UnterminatedString means a string literal ran to the end of the tag.
	UnterminatedString
	// UnexpectedChar means a character that has no meaning inside a tag.
	UnexpectedChar
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedTag:
		return "unterminated tag"
	case UnterminatedString:
		return "unterminated string literal"
	case UnexpectedChar:
		return "unexpected character"
	default:
		return "lex error"
	}
}

// Error is a scanner error. Offset is the byte offset where scanning of the
// offending construct began.
type Error struct {
	Kind    ErrorKind
	Message string
	Offset  int
	Line    uint16
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (line %d, offset %d)", e.Kind, e.Message, e.Line, e.Offset)
}
