package templates

import "github.com/rwf-web/rwf-templates-go/value"

// Context supplies the variable bindings for one render invocation. The
// engine only reads from it; loop bindings shadow context entries without
// mutating them.
type Context interface {
	// Get returns the binding for name, if present.
	Get(name string) (value.Value, bool)
}

// MapContext is a Context backed by a plain map.
type MapContext map[string]value.Value

func (m MapContext) Get(name string) (value.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// ContextFromAny converts arbitrary Go bindings (for example a decoded YAML
// document) into a Context.
func ContextFromAny(bindings map[string]any) MapContext {
	ctx := make(MapContext, len(bindings))
	for k, v := range bindings {
		ctx[k] = value.FromAny(v)
	}
	return ctx
}

// emptyContext is used when the caller passes nil.
type emptyContext struct{}

func (emptyContext) Get(string) (value.Value, bool) {
	return value.Nil(), false
}
