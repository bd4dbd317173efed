// Package templates implements an ERB-style embedded template engine: plain
// markup text mixed with delimited tags holding expressions, dotted method
// calls and control flow.
//
// # Quick start
//
//	engine := templates.NewEngine()
//	tmpl, _ := engine.TemplateFromString("<p>Hello <%= name.capitalize %></p>")
//	out, _ := tmpl.Render(map[string]any{"name": "world"})
//	fmt.Println(out) // Output: <p>Hello World</p>
//
// # Tag forms
//
//   - <%= expr %> prints the expression result, HTML-escaped.
//   - <%- expr %> prints without escaping.
//   - <% stmt %> runs control flow (if/elsif/else, for ... in, end) or
//     evaluates an expression whose result is discarded.
//   - <%% expr %> is shorthand for printing render(expr) unescaped.
//
// # Values and methods
//
// Templates operate on a closed set of typed values — Integer, Float,
// String, Bool, List, Hash, Tuple and Nil — with a fixed method table per
// type:
//
//	<% if 25 == 25.4.to_i %>rounds down<% end %>
//	<%= "  messy  ".trim %>
//	<% for i, name in names.enumerate %><%= i %>: <%= name %><% end %>
//
// Unknown variables, unknown methods and type mismatches fail the render;
// the engine never substitutes defaults or partial output.
//
// # Collaborators
//
// The engine itself knows nothing about HTML, the filesystem, or the
// frontend. Escaping, partial loading (the render global function), and the
// rwf_head / rwf_turbo_stream markup producers are injected collaborators;
// see Engine's Set* methods and the loader package for a filesystem-backed
// partial loader.
//
// Parsed templates are immutable and may be rendered concurrently; each
// render owns its context, scope stack and output buffer.
package templates

import (
	"github.com/rwf-web/rwf-templates-go/value"
)

// Value is a dynamically typed value in the template engine.
type Value = value.Value

// Kind describes the type of a Value.
type Kind = value.Kind

// Common value kinds.
const (
	KindNil     = value.KindNil
	KindInteger = value.KindInteger
	KindFloat   = value.KindFloat
	KindString  = value.KindString
	KindBool    = value.KindBool
	KindList    = value.KindList
	KindHash    = value.KindHash
	KindTuple   = value.KindTuple
)

// Value constructors.
var (
	Nil        = value.Nil
	FromInt    = value.FromInt
	FromFloat  = value.FromFloat
	FromString = value.FromString
	FromBool   = value.FromBool
	FromList   = value.FromList
	FromTuple  = value.FromTuple
	FromPairs  = value.FromPairs
	FromMap    = value.FromMap
	FromAny    = value.FromAny
)
