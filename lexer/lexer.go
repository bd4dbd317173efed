package lexer

// Lexer tokenizes template source.
type Lexer struct {
	source string
	pos    int
	line   uint16 // 1-indexed
	col    uint16

	startPos  int
	startLine uint16
	startCol  uint16

	inTag    bool
	tagStart int // byte offset of the opener of the current tag
	tagLine  uint16
}

// New creates a new Lexer for the given source.
func New(source string) *Lexer {
	return &Lexer{source: source, line: 1}
}

// Tokenize scans the entire source and returns all tokens.
func Tokenize(source string) ([]Token, error) {
	l := New(source)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return tokens, nil
		}
		tokens = append(tokens, *tok)
	}
}

// Next returns the next token, or nil at end of input.
func (l *Lexer) Next() (*Token, error) {
	if l.inTag {
		return l.nextInTag()
	}
	return l.nextText()
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) rest() string {
	return l.source[l.pos:]
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.source) {
		return 0
	}
	return l.source[l.pos+n]
}

// advance consumes n bytes, tracking line and column.
func (l *Lexer) advance(n int) string {
	text := l.source[l.pos : l.pos+n]
	for i := 0; i < n; i++ {
		if text[i] == '\n' {
			l.line++
			l.col = 0
		} else {
			l.col++
		}
	}
	l.pos += n
	return text
}

func (l *Lexer) markStart() {
	l.startPos = l.pos
	l.startLine = l.line
	l.startCol = l.col
}

func (l *Lexer) span() Span {
	return Span{
		StartLine:   l.startLine,
		StartCol:    l.startCol,
		StartOffset: uint32(l.startPos),
		EndLine:     l.line,
		EndCol:      l.col,
		EndOffset:   uint32(l.pos),
	}
}

func (l *Lexer) makeToken(typ TokenType, value string) *Token {
	return &Token{Type: typ, Value: value, Span: l.span()}
}

// nextText scans literal text up to the next tag opener.
func (l *Lexer) nextText() (*Token, error) {
	if l.atEnd() {
		return nil, nil
	}
	l.markStart()

	idx := indexTagOpen(l.rest())
	if idx < 0 {
		text := l.advance(len(l.source) - l.pos)
		return l.makeToken(TokenText, text), nil
	}
	if idx > 0 {
		text := l.advance(idx)
		return l.makeToken(TokenText, text), nil
	}

	// Tag opener at current position.
	l.tagStart = l.pos
	l.tagLine = l.line
	l.inTag = true

	var typ TokenType
	switch l.peekAt(2) {
	case '=':
		typ = TokenOutputOpen
		l.advance(3)
	case '-':
		typ = TokenRawOpen
		l.advance(3)
	case '%':
		typ = TokenPartialOpen
		l.advance(3)
	default:
		typ = TokenStmtOpen
		l.advance(2)
	}
	return l.makeToken(typ, ""), nil
}

func indexTagOpen(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '<' && s[i+1] == '%' {
			return i
		}
	}
	return -1
}

// nextInTag scans one expression token inside a tag.
func (l *Lexer) nextInTag() (*Token, error) {
	l.skipWhitespace()
	if l.atEnd() {
		return nil, l.tagError(UnterminatedTag, "tag is never closed with %>")
	}

	l.markStart()
	c := l.peek()

	if c == '%' && l.peekAt(1) == '>' {
		l.advance(2)
		l.inTag = false
		return l.makeToken(TokenTagClose, ""), nil
	}

	switch {
	case isDigit(c):
		return l.scanNumber(), nil
	case c == '"':
		return l.scanString()
	case isIdentStart(c):
		return l.scanIdent(), nil
	}

	switch c {
	case '.':
		l.advance(1)
		return l.makeToken(TokenDot, "."), nil
	case ',':
		l.advance(1)
		return l.makeToken(TokenComma, ","), nil
	case '-':
		l.advance(1)
		return l.makeToken(TokenMinus, "-"), nil
	case '(':
		l.advance(1)
		return l.makeToken(TokenLParen, "("), nil
	case ')':
		l.advance(1)
		return l.makeToken(TokenRParen, ")"), nil
	case '[':
		l.advance(1)
		return l.makeToken(TokenLBracket, "["), nil
	case ']':
		l.advance(1)
		return l.makeToken(TokenRBracket, "]"), nil
	case '=':
		if l.peekAt(1) == '=' {
			l.advance(2)
			return l.makeToken(TokenEq, "=="), nil
		}
	}

	return nil, &Error{
		Kind:    UnexpectedChar,
		Message: "unexpected character " + string(rune(c)) + " inside tag",
		Offset:  l.pos,
		Line:    l.line,
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance(1)
		default:
			return
		}
	}
}

// scanNumber scans an integer or float literal. A dot only belongs to the
// number when a digit follows it, so 5.times lexes as Int(5) Dot Ident.
func (l *Lexer) scanNumber() *Token {
	n := 0
	for isDigit(l.peekAt(n)) {
		n++
	}
	isFloat := false
	if l.peekAt(n) == '.' && isDigit(l.peekAt(n+1)) {
		isFloat = true
		n++
		for isDigit(l.peekAt(n)) {
			n++
		}
	}
	text := l.advance(n)
	if isFloat {
		return l.makeToken(TokenFloat, text)
	}
	return l.makeToken(TokenInteger, text)
}

// scanString scans a double-quoted string. There is no escape processing;
// the literal runs to the next double quote.
func (l *Lexer) scanString() (*Token, error) {
	l.advance(1) // opening quote
	n := 0
	for {
		c := l.peekAt(n)
		if c == 0 {
			return nil, l.tagError(UnterminatedString, "string literal is never closed")
		}
		if c == '"' {
			break
		}
		n++
	}
	text := l.advance(n)
	l.advance(1) // closing quote
	return l.makeToken(TokenString, text), nil
}

func (l *Lexer) scanIdent() *Token {
	n := 0
	for isIdentPart(l.peekAt(n)) {
		n++
	}
	text := l.advance(n)
	return l.makeToken(TokenIdent, text)
}

func (l *Lexer) tagError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Offset: l.tagStart, Line: l.tagLine}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
