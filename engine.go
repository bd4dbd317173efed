package templates

import (
	"strings"
	"sync"

	"github.com/rwf-web/rwf-templates-go/parser"
	"github.com/rwf-web/rwf-templates-go/value"
)

// DefaultMaxPartialDepth bounds how deep render() calls may nest. Recursive
// partial cycles would otherwise loop forever.
const DefaultMaxPartialDepth = 64

// EscapeFunc escapes text printed through <%= %> tags.
type EscapeFunc func(text string) string

// LoaderFunc loads partial template source by path. It is consulted by the
// render global function when the partial is not already registered.
type LoaderFunc func(path string) (string, error)

// HeadFunc produces the markup injected by the rwf_head global function.
type HeadFunc func() string

// TurboStreamFunc produces the markup injected by rwf_turbo_stream for the
// given endpoint.
type TurboStreamFunc func(endpoint string) string

// Engine holds parsed templates and the collaborators the renderer
// delegates to: the HTML escaper, the partial loader, and the head and
// turbo-stream markup producers.
//
// An Engine is safe for concurrent use once configured. Parsed templates
// are immutable and shared read-only between renders; each render owns its
// scope stack and output buffer. The Set* collaborator setters are not
// synchronized: call them before handing the engine to concurrent renders,
// the way http.Server handlers are configured before ListenAndServe.
type Engine struct {
	templates   map[string]*compiledTemplate
	templatesMu sync.RWMutex

	escape      EscapeFunc
	loader      LoaderFunc
	head        HeadFunc
	turboStream TurboStreamFunc
	maxDepth    int
}

type compiledTemplate struct {
	name   string
	source string
	ast    *parser.Template
}

// NewEngine creates an engine with the default collaborators: HTML escaping
// per EscapeHTML, the stock head and turbo-stream snippets, and no partial
// loader.
func NewEngine() *Engine {
	return &Engine{
		templates:   make(map[string]*compiledTemplate),
		escape:      EscapeHTML,
		head:        DefaultHead,
		turboStream: DefaultTurboStream,
		maxDepth:    DefaultMaxPartialDepth,
	}
}

// AddTemplate parses and registers a template under a name. Registered
// templates are found by render() before the loader is consulted.
func (e *Engine) AddTemplate(name, source string) error {
	ast, err := parser.Parse(source)
	if err != nil {
		return wrapParseError(err, name)
	}

	e.templatesMu.Lock()
	e.templates[name] = &compiledTemplate{name: name, source: source, ast: ast}
	e.templatesMu.Unlock()
	return nil
}

// RemoveTemplate drops a registered template, forcing a reload through the
// loader on next use. Loader cache invalidation hooks call this.
func (e *Engine) RemoveTemplate(name string) {
	e.templatesMu.Lock()
	delete(e.templates, name)
	e.templatesMu.Unlock()
}

// GetTemplate retrieves a registered or loadable template by name.
func (e *Engine) GetTemplate(name string) (*Template, error) {
	compiled, err := e.getPartial(name)
	if err != nil {
		return nil, err
	}
	return &Template{env: e, compiled: compiled}, nil
}

// TemplateFromString parses a one-off template without registering it.
func (e *Engine) TemplateFromString(source string) (*Template, error) {
	return e.TemplateFromNamedString("<string>", source)
}

// TemplateFromNamedString parses a one-off named template without
// registering it.
func (e *Engine) TemplateFromNamedString(name, source string) (*Template, error) {
	ast, err := parser.Parse(source)
	if err != nil {
		return nil, wrapParseError(err, name)
	}
	return &Template{
		env:      e,
		compiled: &compiledTemplate{name: name, source: source, ast: ast},
	}, nil
}

// getPartial resolves a partial for render(): registered templates first,
// then the loader. Loaded partials are parsed once and cached.
func (e *Engine) getPartial(name string) (*compiledTemplate, *Error) {
	e.templatesMu.RLock()
	compiled, ok := e.templates[name]
	e.templatesMu.RUnlock()
	if ok {
		return compiled, nil
	}

	if e.loader == nil {
		return nil, NewError(ErrPartialNotFound, name)
	}
	source, err := e.loader(name)
	if err != nil {
		return nil, NewError(ErrPartialNotFound, name+": "+err.Error())
	}
	ast, perr := parser.Parse(source)
	if perr != nil {
		wrapped := wrapParseError(perr, name)
		wrapped.Kind = ErrPartialParse
		return nil, wrapped
	}

	compiled = &compiledTemplate{name: name, source: source, ast: ast}
	e.templatesMu.Lock()
	e.templates[name] = compiled
	e.templatesMu.Unlock()
	return compiled, nil
}

// SetLoader sets the partial loader collaborator. Like the other setters it
// must not be called concurrently with rendering.
func (e *Engine) SetLoader(loader LoaderFunc) {
	e.loader = loader
}

// SetEscapeFunc replaces the HTML-escaping collaborator applied to <%= %>
// output.
func (e *Engine) SetEscapeFunc(f EscapeFunc) {
	e.escape = f
}

// SetHeadFunc replaces the rwf_head markup producer.
func (e *Engine) SetHeadFunc(f HeadFunc) {
	e.head = f
}

// SetTurboStreamFunc replaces the rwf_turbo_stream markup producer.
func (e *Engine) SetTurboStreamFunc(f TurboStreamFunc) {
	e.turboStream = f
}

// SetMaxPartialDepth bounds render() nesting.
func (e *Engine) SetMaxPartialDepth(depth int) {
	e.maxDepth = depth
}

// Template is a parsed template bound to its engine, ready to render. It is
// read-only and safe to render concurrently with different contexts.
type Template struct {
	env      *Engine
	compiled *compiledTemplate
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.compiled.name
}

// Source returns the template source.
func (t *Template) Source() string {
	return t.compiled.source
}

// Render renders the template with bindings converted from arbitrary Go
// values via value.FromAny. On error the partial output is discarded and
// the empty string returned.
func (t *Template) Render(bindings map[string]any) (string, error) {
	return t.RenderContext(ContextFromAny(bindings))
}

// RenderContext renders the template against a caller-supplied Context.
func (t *Template) RenderContext(ctx Context) (string, error) {
	if ctx == nil {
		ctx = emptyContext{}
	}
	s := newState(t.env, t.compiled.name, ctx)
	if err := s.evalTemplate(t.compiled.ast); err != nil {
		return "", err
	}
	return s.out.String(), nil
}

// RenderValues renders with an explicit value map.
func (t *Template) RenderValues(bindings map[string]value.Value) (string, error) {
	return t.RenderContext(MapContext(bindings))
}

// EscapeHTML escapes a string for safe interpolation into HTML. This is the
// default escaping collaborator.
func EscapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
