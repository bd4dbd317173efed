// Package parser turns template source into an AST.
//
// Parsing happens in two steps: the lexer splits the source into literal
// text and tag tokens, and the parser consumes that stream into the
// statement tree defined in ast.go. The resulting Template is read-only and
// may be rendered concurrently.
package parser

import (
	"fmt"
	"strconv"

	"github.com/rwf-web/rwf-templates-go/lexer"
	"github.com/rwf-web/rwf-templates-go/value"
)

const maxDepth = 150

// Keywords that cannot be used as variable or binding names.
var reservedNames = map[string]bool{
	"if":    true,
	"else":  true,
	"elsif": true,
	"for":   true,
	"in":    true,
	"end":   true,
	"true":  true,
	"false": true,
}

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	UnbalancedBlock
	UnterminatedTag
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UnbalancedBlock:
		return "unbalanced block"
	case UnterminatedTag:
		return "unterminated tag"
	default:
		return "parse error"
	}
}

// Error is a parse error with the source position it was detected at.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    uint16
	Offset  uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
}

// Parser consumes a token stream into an AST.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	depth    int
	lastSpan Span
}

// Parse parses template source into an AST.
func Parse(source string) (*Template, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			kind := SyntaxError
			if le.Kind == lexer.UnterminatedTag {
				kind = UnterminatedTag
			}
			return nil, &Error{
				Kind:    kind,
				Message: le.Message,
				Line:    le.Line,
				Offset:  uint32(le.Offset),
			}
		}
		return nil, &Error{Kind: SyntaxError, Message: err.Error(), Line: 1}
	}

	p := &Parser{tokens: tokens}
	// Terminators at the top level are reported as UnbalancedBlock inside
	// subparse, so end is always nil here.
	children, _, perr := p.subparse(nil)
	if perr != nil {
		return nil, perr
	}
	return &Template{Children: children, span: p.lastSpan}, nil
}

func (p *Parser) current() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) advance() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	tok := &p.tokens[p.pos]
	p.lastSpan = tok.Span
	p.pos++
	return tok
}

func (p *Parser) currentSpan() Span {
	if tok := p.current(); tok != nil {
		return tok.Span
	}
	return p.lastSpan
}

func (p *Parser) expandSpan(start Span) Span {
	return Span{
		StartLine:   start.StartLine,
		StartCol:    start.StartCol,
		StartOffset: start.StartOffset,
		EndLine:     p.lastSpan.EndLine,
		EndCol:      p.lastSpan.EndCol,
		EndOffset:   p.lastSpan.EndOffset,
	}
}

func (p *Parser) syntaxError(msg string) *Error {
	span := p.currentSpan()
	return &Error{Kind: SyntaxError, Message: msg, Line: span.StartLine, Offset: span.StartOffset}
}

func (p *Parser) unbalanced(msg string, span Span) *Error {
	return &Error{Kind: UnbalancedBlock, Message: msg, Line: span.StartLine, Offset: span.StartOffset}
}

func (p *Parser) expect(typ lexer.TokenType, expected string) (*lexer.Token, *Error) {
	tok := p.advance()
	if tok == nil {
		return nil, p.syntaxError("unexpected end of input, expected " + expected)
	}
	if tok.Type != typ {
		return nil, p.syntaxError(fmt.Sprintf("unexpected %s, expected %s", tokenDescription(tok), expected))
	}
	return tok, nil
}

func (p *Parser) skip(typ lexer.TokenType) bool {
	if tok := p.current(); tok != nil && tok.Type == typ {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matches(typ lexer.TokenType) bool {
	tok := p.current()
	return tok != nil && tok.Type == typ
}

func tokenDescription(tok *lexer.Token) string {
	switch tok.Type {
	case lexer.TokenText:
		return "template text"
	case lexer.TokenIdent:
		return fmt.Sprintf("identifier %q", tok.Value)
	case lexer.TokenString:
		return "string"
	case lexer.TokenInteger:
		return "integer"
	case lexer.TokenFloat:
		return "float"
	case lexer.TokenTagClose:
		return "`%>`"
	default:
		return fmt.Sprintf("`%s`", tok.Value)
	}
}

// blockFrame records the opening construct of the block currently being
// parsed, for UnbalancedBlock reporting.
type blockFrame struct {
	keyword string
	span    Span
}

// blockEnd is the terminator a subparse stopped at: end, else, or elsif
// (with its condition already parsed).
type blockEnd struct {
	keyword string
	cond    Expr
	span    Span
}

// subparse collects statements until the end of input or a block
// terminator. frame is nil at the top level, where terminators are errors.
func (p *Parser) subparse(frame *blockFrame) ([]Stmt, *blockEnd, *Error) {
	var stmts []Stmt
	for {
		tok := p.current()
		if tok == nil {
			if frame != nil {
				return nil, nil, p.unbalanced(
					fmt.Sprintf("%s block opened at line %d is never closed with end", frame.keyword, frame.span.StartLine),
					frame.span)
			}
			return stmts, nil, nil
		}

		switch tok.Type {
		case lexer.TokenText:
			p.advance()
			stmts = append(stmts, &Text{Text: tok.Value, span: tok.Span})

		case lexer.TokenOutputOpen:
			p.advance()
			expr, err := p.parseTagExpr()
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, &Output{Expr: expr, span: p.expandSpan(tok.Span)})

		case lexer.TokenRawOpen:
			p.advance()
			expr, err := p.parseTagExpr()
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, &RawOutput{Expr: expr, span: p.expandSpan(tok.Span)})

		case lexer.TokenPartialOpen:
			// <%% expr %> is shorthand for <%- render(expr) %>.
			p.advance()
			expr, err := p.parseTagExpr()
			if err != nil {
				return nil, nil, err
			}
			span := p.expandSpan(tok.Span)
			call := &GlobalCall{Name: "render", Args: []Expr{expr}, span: span}
			stmts = append(stmts, &RawOutput{Expr: call, span: span})

		case lexer.TokenStmtOpen:
			p.advance()
			stmt, end, err := p.parseStmtTag(tok.Span, frame)
			if err != nil {
				return nil, nil, err
			}
			if end != nil {
				return stmts, end, nil
			}
			stmts = append(stmts, stmt)

		default:
			return nil, nil, p.syntaxError(fmt.Sprintf("unexpected %s", tokenDescription(tok)))
		}
	}
}

// parseStmtTag parses the contents of a <% %> tag. It returns either a
// statement or, for end/else/elsif, the terminator of the enclosing block.
// Block statements recurse through subparse, so the depth counter covers
// them the same way it covers nested expressions.
func (p *Parser) parseStmtTag(openSpan Span, frame *blockFrame) (Stmt, *blockEnd, *Error) {
	p.depth++
	if p.depth > maxDepth {
		return nil, nil, p.syntaxError("blocks exceed maximum nesting depth")
	}
	defer func() { p.depth-- }()

	tok := p.current()
	if tok != nil && tok.Type == lexer.TokenIdent {
		switch tok.Value {
		case "if":
			p.advance()
			stmt, err := p.parseIf(openSpan)
			return stmt, nil, err
		case "for":
			p.advance()
			stmt, err := p.parseFor(openSpan)
			return stmt, nil, err
		case "end", "else", "elsif":
			if frame == nil {
				return nil, nil, p.unbalanced(
					fmt.Sprintf("%s without a matching opening block", tok.Value), tok.Span)
			}
			end, err := p.parseTerminator(frame)
			if err != nil {
				return nil, nil, err
			}
			return nil, end, nil
		}
	}

	expr, err := p.parseTagExpr()
	if err != nil {
		return nil, nil, err
	}
	return &ExprStmt{Expr: expr, span: p.expandSpan(openSpan)}, nil, nil
}

// parseTerminator consumes end, else, or elsif plus the closing %>.
func (p *Parser) parseTerminator(frame *blockFrame) (*blockEnd, *Error) {
	tok := p.advance() // the keyword
	end := &blockEnd{keyword: tok.Value, span: tok.Span}

	if tok.Value == "elsif" {
		if frame.keyword != "if" {
			return nil, p.unbalanced("elsif inside a "+frame.keyword+" block", tok.Span)
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end.cond = cond
	} else if tok.Value == "else" && frame.keyword != "if" {
		return nil, p.unbalanced("else inside a "+frame.keyword+" block", tok.Span)
	}

	if _, err := p.expect(lexer.TokenTagClose, "`%>`"); err != nil {
		return nil, err
	}
	return end, nil
}

func (p *Parser) parseIf(openSpan Span) (Stmt, *Error) {
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenTagClose, "`%>`"); err != nil {
		return nil, err
	}
	return p.parseIfTail(cond, openSpan)
}

// parseIfTail parses the body of an if after its condition, handling the
// else/elsif chain. elsif desugars to a nested If in the else branch, one
// recursion per link, so the chain counts against the depth limit too.
func (p *Parser) parseIfTail(cond Expr, openSpan Span) (Stmt, *Error) {
	p.depth++
	if p.depth > maxDepth {
		return nil, p.syntaxError("blocks exceed maximum nesting depth")
	}
	defer func() { p.depth-- }()

	frame := &blockFrame{keyword: "if", span: openSpan}
	then, end, err := p.subparse(frame)
	if err != nil {
		return nil, err
	}

	node := &If{Cond: cond, Then: then}
	switch end.keyword {
	case "end":
		// no else branch
	case "elsif":
		nested, err := p.parseIfTail(end.cond, end.span)
		if err != nil {
			return nil, err
		}
		node.Else = []Stmt{nested}
	case "else":
		elseBody, elseEnd, err := p.subparse(frame)
		if err != nil {
			return nil, err
		}
		if elseEnd.keyword != "end" {
			return nil, p.unbalanced(elseEnd.keyword+" after else", elseEnd.span)
		}
		node.Else = elseBody
	}
	node.span = p.expandSpan(openSpan)
	return node, nil
}

func (p *Parser) parseFor(openSpan Span) (Stmt, *Error) {
	bindings, err := p.parseBindings()
	if err != nil {
		return nil, err
	}
	tok := p.advance()
	if tok == nil || tok.Type != lexer.TokenIdent || tok.Value != "in" {
		return nil, p.syntaxError("expected `in` after loop binding")
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenTagClose, "`%>`"); err != nil {
		return nil, err
	}

	frame := &blockFrame{keyword: "for", span: openSpan}
	body, end, err := p.subparse(frame)
	if err != nil {
		return nil, err
	}
	if end.keyword != "end" {
		return nil, p.unbalanced(end.keyword+" inside a for block", end.span)
	}
	return &For{Bindings: bindings, Iter: iter, Body: body, span: p.expandSpan(openSpan)}, nil
}

// parseBindings parses one or more comma-separated loop variable names.
func (p *Parser) parseBindings() ([]string, *Error) {
	var names []string
	for {
		tok, err := p.expect(lexer.TokenIdent, "loop variable name")
		if err != nil {
			return nil, err
		}
		if reservedNames[tok.Value] {
			return nil, p.syntaxError(fmt.Sprintf("%q cannot be used as a loop variable", tok.Value))
		}
		names = append(names, tok.Value)
		if !p.skip(lexer.TokenComma) {
			return names, nil
		}
	}
}

// parseTagExpr parses an expression followed by the closing %>.
func (p *Parser) parseTagExpr() (Expr, *Error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenTagClose, "`%>`"); err != nil {
		return nil, err
	}
	return expr, nil
}

// --- Expression grammar, precedence low to high:
// equality (==), postfix (.method, .index, calls), primary.

func (p *Parser) parseExpr() (Expr, *Error) {
	p.depth++
	if p.depth > maxDepth {
		return nil, p.syntaxError("expression exceeds maximum nesting depth")
	}
	defer func() { p.depth-- }()
	return p.parseEquality()
}

func (p *Parser) parseEquality() (Expr, *Error) {
	span := p.currentSpan()
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.skip(lexer.TokenEq) {
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &Equals{Left: left, Right: right, span: p.expandSpan(span)}
	}
	return left, nil
}

func (p *Parser) parsePostfix() (Expr, *Error) {
	span := p.currentSpan()
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.skip(lexer.TokenDot) {
		tok := p.advance()
		if tok == nil {
			return nil, p.syntaxError("unexpected end of input after `.`")
		}
		switch tok.Type {
		case lexer.TokenIdent:
			args, err := p.parseOptionalArgs()
			if err != nil {
				return nil, err
			}
			expr = &MethodCall{Recv: expr, Name: tok.Value, Args: args, span: p.expandSpan(span)}
		case lexer.TokenInteger:
			idx, convErr := strconv.Atoi(tok.Value)
			if convErr != nil {
				return nil, p.syntaxError("tuple index out of range: " + tok.Value)
			}
			expr = &TupleIndex{Recv: expr, Index: idx, span: p.expandSpan(span)}
		case lexer.TokenFloat:
			// t.0.1 lexes the trailing "0.1" as a float; split it back
			// into two positional accesses.
			for _, part := range splitFloatIndex(tok.Value) {
				idx, convErr := strconv.Atoi(part)
				if convErr != nil {
					return nil, p.syntaxError("invalid tuple index: " + tok.Value)
				}
				expr = &TupleIndex{Recv: expr, Index: idx, span: p.expandSpan(span)}
			}
		default:
			return nil, p.syntaxError(fmt.Sprintf("unexpected %s after `.`", tokenDescription(tok)))
		}
	}
	return expr, nil
}

func splitFloatIndex(text string) []string {
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			return []string{text[:i], text[i+1:]}
		}
	}
	return []string{text}
}

// parseOptionalArgs parses a parenthesized argument list if one follows.
func (p *Parser) parseOptionalArgs() ([]Expr, *Error) {
	if !p.matches(lexer.TokenLParen) {
		return nil, nil
	}
	return p.parseArgs()
}

func (p *Parser) parseArgs() ([]Expr, *Error) {
	if _, err := p.expect(lexer.TokenLParen, "`(`"); err != nil {
		return nil, err
	}
	var args []Expr
	if p.skip(lexer.TokenRParen) {
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.skip(lexer.TokenComma) {
			continue
		}
		if _, err := p.expect(lexer.TokenRParen, "`)` or `,`"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

// parseListLit parses the elements of a list literal after the `[`.
func (p *Parser) parseListLit(openSpan Span) (Expr, *Error) {
	var items []Expr
	if p.skip(lexer.TokenRBracket) {
		return &ListLit{span: p.expandSpan(openSpan)}, nil
	}
	for {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.skip(lexer.TokenComma) {
			continue
		}
		if _, err := p.expect(lexer.TokenRBracket, "`]` or `,`"); err != nil {
			return nil, err
		}
		return &ListLit{Items: items, span: p.expandSpan(openSpan)}, nil
	}
}

func (p *Parser) parsePrimary() (Expr, *Error) {
	tok := p.advance()
	if tok == nil {
		return nil, p.syntaxError("unexpected end of input, expected expression")
	}

	switch tok.Type {
	case lexer.TokenMinus:
		// Unary minus binds tighter than the method dot: -5.abs is
		// (-5).abs. It is only valid in front of a numeric literal.
		num := p.advance()
		if num == nil {
			return nil, p.syntaxError("unexpected end of input after `-`")
		}
		switch num.Type {
		case lexer.TokenInteger:
			i, err := strconv.ParseInt(num.Value, 10, 64)
			if err != nil {
				return nil, p.syntaxError("malformed integer literal: " + num.Value)
			}
			return &Const{Value: value.FromInt(-i), span: p.expandSpan(tok.Span)}, nil
		case lexer.TokenFloat:
			f, err := strconv.ParseFloat(num.Value, 64)
			if err != nil {
				return nil, p.syntaxError("malformed float literal: " + num.Value)
			}
			return &Const{Value: value.FromFloat(-f), span: p.expandSpan(tok.Span)}, nil
		default:
			return nil, p.syntaxError(fmt.Sprintf("unexpected %s after `-`, expected number", tokenDescription(num)))
		}

	case lexer.TokenInteger:
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.syntaxError("malformed integer literal: " + tok.Value)
		}
		return &Const{Value: value.FromInt(i), span: tok.Span}, nil

	case lexer.TokenFloat:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.syntaxError("malformed float literal: " + tok.Value)
		}
		return &Const{Value: value.FromFloat(f), span: tok.Span}, nil

	case lexer.TokenString:
		return &Const{Value: value.FromString(tok.Value), span: tok.Span}, nil

	case lexer.TokenLBracket:
		return p.parseListLit(tok.Span)

	case lexer.TokenLParen:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, "`)`"); err != nil {
			return nil, err
		}
		return expr, nil

	case lexer.TokenIdent:
		switch tok.Value {
		case "true":
			return &Const{Value: value.FromBool(true), span: tok.Span}, nil
		case "false":
			return &Const{Value: value.FromBool(false), span: tok.Span}, nil
		}
		if reservedNames[tok.Value] {
			return nil, p.syntaxError(fmt.Sprintf("keyword %q is not an expression", tok.Value))
		}
		if p.matches(lexer.TokenLParen) {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &GlobalCall{Name: tok.Value, Args: args, span: p.expandSpan(tok.Span)}, nil
		}
		return &Var{Name: tok.Value, span: tok.Span}, nil

	default:
		return nil, p.syntaxError(fmt.Sprintf("unexpected %s, expected expression", tokenDescription(tok)))
	}
}
