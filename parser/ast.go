package parser

import (
	"github.com/rwf-web/rwf-templates-go/lexer"
	"github.com/rwf-web/rwf-templates-go/value"
)

// Span re-exports the lexer's source location range.
type Span = lexer.Span

// Stmt is a statement node: a piece of the template that emits (or
// conditionally emits) output.
type Stmt interface {
	stmt()
	Span() Span
}

// Expr is an expression node that evaluates to a value.
type Expr interface {
	expr()
	Span() Span
}

// Template is the root node: the ordered statement sequence of one parsed
// template. It is immutable after parsing and safe to share across renders.
type Template struct {
	Children []Stmt
	span     Span
}

func (t *Template) stmt()      {}
func (t *Template) Span() Span { return t.span }

// Text is literal template text emitted verbatim.
type Text struct {
	Text string
	span Span
}

func (t *Text) stmt()      {}
func (t *Text) Span() Span { return t.span }

// Output prints an expression result with escaping applied (<%= %>).
type Output struct {
	Expr Expr
	span Span
}

func (o *Output) stmt()      {}
func (o *Output) Span() Span { return o.span }

// RawOutput prints an expression result without escaping (<%- %>).
type RawOutput struct {
	Expr Expr
	span Span
}

func (o *RawOutput) stmt()      {}
func (o *RawOutput) Span() Span { return o.span }

// ExprStmt evaluates an expression and discards the result (<% expr %>).
type ExprStmt struct {
	Expr Expr
	span Span
}

func (e *ExprStmt) stmt()      {}
func (e *ExprStmt) Span() Span { return e.span }

// If renders Then when the condition holds, otherwise Else. An elsif chain
// parses into a nested If inside Else.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	span Span
}

func (i *If) stmt()      {}
func (i *If) Span() Span { return i.span }

// For renders Body once per element of the iterable. Multiple bindings
// destructure tuple elements.
type For struct {
	Bindings []string
	Iter     Expr
	Body     []Stmt
	span     Span
}

func (f *For) stmt()      {}
func (f *For) Span() Span { return f.span }

// Const is a literal value.
type Const struct {
	Value value.Value
	span  Span
}

func (c *Const) expr()      {}
func (c *Const) Span() Span { return c.span }

// Var is a variable reference resolved against the render context.
type Var struct {
	Name string
	span Span
}

func (v *Var) expr()      {}
func (v *Var) Span() Span { return v.span }

// ListLit is a list literal: [e, e, ...].
type ListLit struct {
	Items []Expr
	span  Span
}

func (l *ListLit) expr()      {}
func (l *ListLit) Span() Span { return l.span }

// Equals is the == comparison.
type Equals struct {
	Left  Expr
	Right Expr
	span  Span
}

func (e *Equals) expr()      {}
func (e *Equals) Span() Span { return e.span }

// MethodCall is a dotted call on a receiver: recv.name or recv.name(args).
type MethodCall struct {
	Recv Expr
	Name string
	Args []Expr
	span Span
}

func (m *MethodCall) expr()      {}
func (m *MethodCall) Span() Span { return m.span }

// TupleIndex is positional tuple access with a parse-time index: recv.0.
type TupleIndex struct {
	Recv  Expr
	Index int
	span  Span
}

func (t *TupleIndex) expr()      {}
func (t *TupleIndex) Span() Span { return t.span }

// GlobalCall invokes a global function: render("path"), rwf_head(), ...
type GlobalCall struct {
	Name string
	Args []Expr
	span Span
}

func (g *GlobalCall) expr()      {}
func (g *GlobalCall) Span() Span { return g.span }
