package templates

import (
	"fmt"
	"strings"

	"github.com/rwf-web/rwf-templates-go/lexer"
	"github.com/rwf-web/rwf-templates-go/parser"
	"github.com/rwf-web/rwf-templates-go/value"
)

// State holds the evaluation state of one render invocation: the scope
// stack, the output buffer, and the partial nesting depth. States are never
// shared between renders.
type State struct {
	env          *Engine
	name         string
	ctx          Context
	scopes       []map[string]value.Value
	out          *strings.Builder
	partialDepth int
}

func newState(env *Engine, name string, ctx Context) *State {
	return &State{
		env:  env,
		name: name,
		ctx:  ctx,
		out:  &strings.Builder{},
	}
}

// lookup resolves an identifier: loop scopes innermost first, then the
// caller's context.
func (s *State) lookup(name string, span lexer.Span) (value.Value, *Error) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return v, nil
		}
	}
	if v, ok := s.ctx.Get(name); ok {
		return v, nil
	}
	return value.Nil(), NewError(ErrUndefinedVariable, name).WithSpan(span).WithName(s.name)
}

func (s *State) pushScope() {
	s.scopes = append(s.scopes, make(map[string]value.Value))
}

func (s *State) popScope() {
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *State) set(name string, val value.Value) {
	s.scopes[len(s.scopes)-1][name] = val
}

func (s *State) evalTemplate(tmpl *parser.Template) *Error {
	return s.evalBody(tmpl.Children)
}

func (s *State) evalBody(stmts []parser.Stmt) *Error {
	for _, stmt := range stmts {
		if err := s.evalStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) evalStmt(stmt parser.Stmt) *Error {
	switch st := stmt.(type) {
	case *parser.Text:
		s.out.WriteString(st.Text)
		return nil

	case *parser.Output:
		text, err := s.evalText(st.Expr)
		if err != nil {
			return err
		}
		s.out.WriteString(s.env.escape(text))
		return nil

	case *parser.RawOutput:
		text, err := s.evalText(st.Expr)
		if err != nil {
			return err
		}
		s.out.WriteString(text)
		return nil

	case *parser.ExprStmt:
		_, err := s.evalExpr(st.Expr)
		return err

	case *parser.If:
		return s.evalIf(st)

	case *parser.For:
		return s.evalFor(st)

	default:
		return NewError(ErrSyntax, fmt.Sprintf("unsupported statement type %T", stmt)).WithName(s.name)
	}
}

// evalText evaluates an expression for printing. Only scalars have a
// canonical textual form; printing a List, Hash, Tuple or Nil is a type
// mismatch rather than an invented debug rendering.
func (s *State) evalText(expr parser.Expr) (string, *Error) {
	val, err := s.evalExpr(expr)
	if err != nil {
		return "", err
	}
	text, ok := val.Text()
	if !ok {
		return "", NewError(ErrTypeMismatch,
			fmt.Sprintf("cannot print %s value %s", val.Kind(), val)).
			WithSpan(expr.Span()).WithName(s.name)
	}
	return text, nil
}

// evalIf renders the taken branch. Branch bodies share the enclosing scope;
// only for loops introduce bindings. The condition must be a Bool — there
// is no implicit truthiness.
func (s *State) evalIf(node *parser.If) *Error {
	cond, err := s.evalExpr(node.Cond)
	if err != nil {
		return err
	}
	b, ok := cond.AsBool()
	if !ok {
		return NewError(ErrTypeMismatch,
			fmt.Sprintf("if condition must be a bool, got %s", cond.Kind())).
			WithSpan(node.Cond.Span()).WithName(s.name)
	}
	if b {
		return s.evalBody(node.Then)
	}
	return s.evalBody(node.Else)
}

// evalFor iterates a List in order, binding the loop variable(s) in a child
// scope per element. Hashes and tuples must be converted explicitly with
// .iter, .keys or .enumerate.
func (s *State) evalFor(node *parser.For) *Error {
	iter, err := s.evalExpr(node.Iter)
	if err != nil {
		return err
	}
	items, ok := iter.AsList()
	if !ok {
		return NewError(ErrTypeMismatch,
			fmt.Sprintf("for loop expects a list, got %s", iter.Kind())).
			WithSpan(node.Iter.Span()).WithName(s.name)
	}

	for _, item := range items {
		s.pushScope()
		if berr := s.bind(node, item); berr != nil {
			s.popScope()
			return berr
		}
		if berr := s.evalBody(node.Body); berr != nil {
			s.popScope()
			return berr
		}
		s.popScope()
	}
	return nil
}

// bind assigns the loop element to the binding names, destructuring tuples
// when more than one name is given.
func (s *State) bind(node *parser.For, item value.Value) *Error {
	if len(node.Bindings) == 1 {
		s.set(node.Bindings[0], item)
		return nil
	}
	parts, ok := item.AsTuple()
	if !ok {
		return NewError(ErrTypeMismatch,
			fmt.Sprintf("cannot destructure %s into %d names, expected tuple", item.Kind(), len(node.Bindings))).
			WithSpan(node.Iter.Span()).WithName(s.name)
	}
	if len(parts) != len(node.Bindings) {
		return NewError(ErrTypeMismatch,
			fmt.Sprintf("cannot destructure tuple of length %d into %d names", len(parts), len(node.Bindings))).
			WithSpan(node.Iter.Span()).WithName(s.name)
	}
	for i, name := range node.Bindings {
		s.set(name, parts[i])
	}
	return nil
}

func (s *State) evalExpr(expr parser.Expr) (value.Value, *Error) {
	switch e := expr.(type) {
	case *parser.Const:
		return e.Value, nil

	case *parser.Var:
		return s.lookup(e.Name, e.Span())

	case *parser.ListLit:
		items := make([]value.Value, len(e.Items))
		for i, item := range e.Items {
			val, err := s.evalExpr(item)
			if err != nil {
				return value.Nil(), err
			}
			items[i] = val
		}
		return value.FromList(items), nil

	case *parser.Equals:
		left, err := s.evalExpr(e.Left)
		if err != nil {
			return value.Nil(), err
		}
		right, err := s.evalExpr(e.Right)
		if err != nil {
			return value.Nil(), err
		}
		return value.FromBool(left.Equal(right)), nil

	case *parser.MethodCall:
		recv, err := s.evalExpr(e.Recv)
		if err != nil {
			return value.Nil(), err
		}
		args := make([]value.Value, len(e.Args))
		for i, arg := range e.Args {
			val, aerr := s.evalExpr(arg)
			if aerr != nil {
				return value.Nil(), aerr
			}
			args[i] = val
		}
		result, verr := value.Invoke(recv, e.Name, args)
		if verr != nil {
			return value.Nil(), wrapValueError(verr, e.Span(), s.name)
		}
		return result, nil

	case *parser.TupleIndex:
		recv, err := s.evalExpr(e.Recv)
		if err != nil {
			return value.Nil(), err
		}
		result, verr := value.TupleIndex(recv, e.Index)
		if verr != nil {
			return value.Nil(), wrapValueError(verr, e.Span(), s.name)
		}
		return result, nil

	case *parser.GlobalCall:
		return s.evalGlobalCall(e)

	default:
		return value.Nil(), NewError(ErrSyntax, fmt.Sprintf("unsupported expression type %T", expr)).WithName(s.name)
	}
}

// evalGlobalCall dispatches the closed set of global functions to the
// engine's collaborators.
func (s *State) evalGlobalCall(call *parser.GlobalCall) (value.Value, *Error) {
	switch call.Name {
	case "render":
		arg, err := s.globalArg(call, "render")
		if err != nil {
			return value.Nil(), err
		}
		path, ok := arg.AsString()
		if !ok {
			return value.Nil(), NewError(ErrTypeMismatch,
				fmt.Sprintf("render expects a string path, got %s", arg.Kind())).
				WithSpan(call.Span()).WithName(s.name)
		}
		return s.renderPartial(path, call.Span())

	case "rwf_head":
		if len(call.Args) != 0 {
			return value.Nil(), NewError(ErrArityMismatch,
				fmt.Sprintf("rwf_head takes no arguments, got %d", len(call.Args))).
				WithSpan(call.Span()).WithName(s.name)
		}
		return value.FromString(s.env.head()), nil

	case "rwf_turbo_stream":
		arg, err := s.globalArg(call, "rwf_turbo_stream")
		if err != nil {
			return value.Nil(), err
		}
		endpoint, ok := arg.AsString()
		if !ok {
			return value.Nil(), NewError(ErrTypeMismatch,
				fmt.Sprintf("rwf_turbo_stream expects a string endpoint, got %s", arg.Kind())).
				WithSpan(call.Span()).WithName(s.name)
		}
		return value.FromString(s.env.turboStream(endpoint)), nil

	default:
		return value.Nil(), NewError(ErrUnknownGlobalFunction, call.Name).
			WithSpan(call.Span()).WithName(s.name)
	}
}

// globalArg evaluates the single argument of a one-argument global.
func (s *State) globalArg(call *parser.GlobalCall, name string) (value.Value, *Error) {
	if len(call.Args) != 1 {
		return value.Nil(), NewError(ErrArityMismatch,
			fmt.Sprintf("%s takes 1 argument, got %d", name, len(call.Args))).
			WithSpan(call.Span()).WithName(s.name)
	}
	return s.evalExpr(call.Args[0])
}

// renderPartial loads and evaluates a partial inline. The partial sees the
// current context and scopes but runs in a child scope, so bindings it
// introduces never leak back into the caller.
func (s *State) renderPartial(path string, span lexer.Span) (value.Value, *Error) {
	if s.partialDepth >= s.env.maxDepth {
		return value.Nil(), NewError(ErrRecursionLimit,
			fmt.Sprintf("render depth %d exceeded, partial cycle through %q?", s.env.maxDepth, path)).
			WithSpan(span).WithName(s.name)
	}

	compiled, err := s.env.getPartial(path)
	if err != nil {
		// Surface the collaborator failure at the render call site.
		err.Span = &span
		if err.Name == "" {
			err.Name = s.name
		}
		return value.Nil(), err
	}

	prevOut, prevName := s.out, s.name
	s.out = &strings.Builder{}
	s.name = path
	s.partialDepth++
	s.pushScope()

	renderErr := s.evalTemplate(compiled.ast)

	s.popScope()
	s.partialDepth--
	output := s.out.String()
	s.out, s.name = prevOut, prevName

	if renderErr != nil {
		return value.Nil(), renderErr
	}
	return value.FromString(output), nil
}
