// Package lexer splits template source into literal text and tag tokens.
//
// The scanner recognizes three tag delimiter forms plus the partial alias:
//
//	<%= expr %>   evaluate and print, HTML-escaped
//	<%- expr %>   evaluate and print without escaping
//	<%  stmt %>   control flow or discarded expression
//	<%% expr %>   alias for printing render(expr) unescaped
//
// Inside a tag the lexer produces expression tokens (identifiers, literals,
// punctuation) until the closing %>.
package lexer

import "fmt"

// TokenType represents the type of a token.
type TokenType int

const (
	// Literal text between tags
	TokenText TokenType = iota

	// Tag delimiters
	TokenOutputOpen  // <%=
	TokenRawOpen     // <%-
	TokenStmtOpen    // <%
	TokenPartialOpen // <%%
	TokenTagClose    // %>

	// Literals
	TokenIdent   // identifier or keyword
	TokenInteger // 123
	TokenFloat   // 123.45
	TokenString  // "text"

	// Punctuation
	TokenDot      // .
	TokenComma    // ,
	TokenMinus    // -
	TokenEq       // ==
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
)

var tokenTypeNames = map[TokenType]string{
	TokenText:        "Text",
	TokenOutputOpen:  "OutputOpen",
	TokenRawOpen:     "RawOpen",
	TokenStmtOpen:    "StmtOpen",
	TokenPartialOpen: "PartialOpen",
	TokenTagClose:    "TagClose",
	TokenIdent:       "Ident",
	TokenInteger:     "Int",
	TokenFloat:       "Float",
	TokenString:      "Str",
	TokenDot:         "Dot",
	TokenComma:       "Comma",
	TokenMinus:       "Minus",
	TokenEq:          "Eq",
	TokenLParen:      "LParen",
	TokenRParen:      "RParen",
	TokenLBracket:    "LBracket",
	TokenRBracket:    "RBracket",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Token is a single token from the scanner.
type Token struct {
	Type  TokenType
	Value string // token text (for text, idents, strings, numbers)
	Span  Span
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// Span represents a location range in template source.
type Span struct {
	StartLine   uint16
	StartCol    uint16
	StartOffset uint32
	EndLine     uint16
	EndCol      uint16
	EndOffset   uint32
}
