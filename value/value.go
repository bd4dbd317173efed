// Package value implements the engine's closed dynamic type system.
//
// Every piece of data a template can touch is a Value holding exactly one of
// the engine's variants: Integer, Float, String, Bool, List, Hash, Tuple or
// Nil. The variant set is closed; templates cannot introduce new types at
// runtime. Values are immutable once constructed — methods that look like
// mutations (reverse, trim, ...) always return a new Value.
//
// Values are created with the From* constructors:
//
//	name := value.FromString("World")
//	count := value.FromInt(42)
//	items := value.FromList([]value.Value{name, count})
//
// Arbitrary Go data (for example a decoded YAML document) can be converted
// with FromAny. Method dispatch happens through Invoke, which consults the
// per-variant method table defined in methods.go.
package value

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant stored in a Value.
type Kind int

const (
	KindNil Kind = iota
	KindInteger
	KindFloat
	KindString
	KindBool
	KindList
	KindHash
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindHash:
		return "hash"
	case KindTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// Value is a dynamically typed template value.
//
// The zero Value is Nil.
type Value struct {
	data any
}

type nilType struct{}

type listData []Value

type tupleData []Value

// hashData preserves insertion order for iteration.
type hashData struct {
	keys  []string
	items map[string]Value
}

// Pair is a single key/value entry of a Hash, in iteration order.
type Pair struct {
	Key   string
	Value Value
}

// Nil returns the nil value.
func Nil() Value {
	return Value{data: nilType{}}
}

// FromInt creates an Integer value.
func FromInt(i int64) Value {
	return Value{data: i}
}

// FromFloat creates a Float value.
func FromFloat(f float64) Value {
	return Value{data: f}
}

// FromString creates a String value.
func FromString(s string) Value {
	return Value{data: s}
}

// FromBool creates a Bool value.
func FromBool(b bool) Value {
	return Value{data: b}
}

// FromList creates a List value. The slice is not copied; callers must not
// modify it after handing it over.
func FromList(items []Value) Value {
	return Value{data: listData(items)}
}

// FromTuple creates a Tuple value from a fixed set of elements.
func FromTuple(items ...Value) Value {
	return Value{data: tupleData(items)}
}

// FromPairs creates a Hash value preserving the order of the given pairs.
// A duplicate key overwrites the earlier value but keeps its original
// position in the iteration order.
func FromPairs(pairs []Pair) Value {
	h := &hashData{items: make(map[string]Value, len(pairs))}
	for _, p := range pairs {
		if _, ok := h.items[p.Key]; !ok {
			h.keys = append(h.keys, p.Key)
		}
		h.items[p.Key] = p.Value
	}
	return Value{data: h}
}

// FromMap creates a Hash value from a Go map. Go maps have no stable order,
// so keys are sorted to make iteration deterministic; use FromPairs when the
// order matters.
func FromMap(m map[string]Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: k, Value: m[k]})
	}
	return FromPairs(pairs)
}

// FromAny converts an arbitrary Go value into a Value. Maps become Hashes
// (with sorted keys), slices and arrays become Lists, numeric types collapse
// onto Integer or Float. Anything unrecognized is stringified.
func FromAny(v any) Value {
	switch d := v.(type) {
	case nil:
		return Nil()
	case Value:
		return d
	case bool:
		return FromBool(d)
	case int:
		return FromInt(int64(d))
	case int8:
		return FromInt(int64(d))
	case int16:
		return FromInt(int64(d))
	case int32:
		return FromInt(int64(d))
	case int64:
		return FromInt(d)
	case uint:
		return FromInt(int64(d))
	case uint8:
		return FromInt(int64(d))
	case uint16:
		return FromInt(int64(d))
	case uint32:
		return FromInt(int64(d))
	case uint64:
		return FromInt(int64(d))
	case float32:
		return FromFloat(float64(d))
	case float64:
		return FromFloat(d)
	case string:
		return FromString(d)
	case []Value:
		return FromList(d)
	case map[string]Value:
		return FromMap(d)
	case []any:
		items := make([]Value, len(d))
		for i, item := range d {
			items[i] = FromAny(item)
		}
		return FromList(items)
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, Pair{Key: k, Value: FromAny(d[k])})
		}
		return FromPairs(pairs)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = FromAny(rv.Index(i).Interface())
		}
		return FromList(items)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]Value, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = FromAny(iter.Value().Interface())
			}
			return FromMap(m)
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return Nil()
		}
		return FromAny(rv.Elem().Interface())
	}
	return FromString(fmt.Sprint(v))
}

// Kind returns the variant stored in the value.
func (v Value) Kind() Kind {
	switch v.data.(type) {
	case int64:
		return KindInteger
	case float64:
		return KindFloat
	case string:
		return KindString
	case bool:
		return KindBool
	case listData:
		return KindList
	case *hashData:
		return KindHash
	case tupleData:
		return KindTuple
	default:
		return KindNil
	}
}

// IsNil reports whether the value is Nil.
func (v Value) IsNil() bool {
	return v.Kind() == KindNil
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	i, ok := v.data.(int64)
	return i, ok
}

// AsFloat returns the float payload.
func (v Value) AsFloat() (float64, bool) {
	f, ok := v.data.(float64)
	return f, ok
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	s, ok := v.data.(string)
	return s, ok
}

// AsBool returns the bool payload.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok
}

// AsList returns the list elements. The slice must not be modified.
func (v Value) AsList() ([]Value, bool) {
	l, ok := v.data.(listData)
	return l, ok
}

// AsTuple returns the tuple elements. The slice must not be modified.
func (v Value) AsTuple() ([]Value, bool) {
	t, ok := v.data.(tupleData)
	return t, ok
}

// AsPairs returns the hash entries in iteration order.
func (v Value) AsPairs() ([]Pair, bool) {
	h, ok := v.data.(*hashData)
	if !ok {
		return nil, false
	}
	pairs := make([]Pair, len(h.keys))
	for i, k := range h.keys {
		pairs[i] = Pair{Key: k, Value: h.items[k]}
	}
	return pairs, true
}

// Get looks up a hash key.
func (v Value) Get(key string) (Value, bool) {
	h, ok := v.data.(*hashData)
	if !ok {
		return Nil(), false
	}
	val, ok := h.items[key]
	return val, ok
}

// Len returns the element count of a String (in Unicode scalar values),
// List, Hash or Tuple.
func (v Value) Len() (int, bool) {
	switch d := v.data.(type) {
	case string:
		return len([]rune(d)), true
	case listData:
		return len(d), true
	case tupleData:
		return len(d), true
	case *hashData:
		return len(d.keys), true
	default:
		return 0, false
	}
}

// Text returns the canonical textual form of a scalar value. Composite
// values (List, Hash, Tuple) and Nil have no canonical text and report
// false.
func (v Value) Text() (string, bool) {
	switch d := v.data.(type) {
	case int64:
		return strconv.FormatInt(d, 10), true
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64), true
	case string:
		return d, true
	case bool:
		return strconv.FormatBool(d), true
	default:
		return "", false
	}
}

// String returns a debug representation. Scalars use their canonical text;
// composites use a bracketed form. Intended for error messages, not for
// template output.
func (v Value) String() string {
	if s, ok := v.Text(); ok {
		if v.Kind() == KindString {
			return strconv.Quote(s)
		}
		return s
	}
	switch d := v.data.(type) {
	case listData:
		return "[" + joinValues(d, ", ") + "]"
	case tupleData:
		return "(" + joinValues(d, ", ") + ")"
	case *hashData:
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range d.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q: %s", k, d.items[k].String())
		}
		b.WriteByte('}')
		return b.String()
	default:
		return "nil"
	}
}

func joinValues(items []Value, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, sep)
}

// Equal compares two values. Comparison is variant-wise; the only permitted
// cross-variant comparison is Integer against Float, where the integer is
// promoted. Lists and tuples compare element-wise, hashes compare as
// key/value sets. Everything else is simply unequal — never an error.
func (v Value) Equal(other Value) bool {
	switch a := v.data.(type) {
	case int64:
		switch b := other.data.(type) {
		case int64:
			return a == b
		case float64:
			return float64(a) == b
		}
	case float64:
		switch b := other.data.(type) {
		case float64:
			return a == b
		case int64:
			return a == float64(b)
		}
	case string:
		if b, ok := other.data.(string); ok {
			return a == b
		}
	case bool:
		if b, ok := other.data.(bool); ok {
			return a == b
		}
	case nilType:
		_, ok := other.data.(nilType)
		return ok
	case listData:
		if b, ok := other.data.(listData); ok {
			return elementsEqual(a, b)
		}
	case tupleData:
		if b, ok := other.data.(tupleData); ok {
			return elementsEqual(a, b)
		}
	case *hashData:
		if b, ok := other.data.(*hashData); ok {
			if len(a.items) != len(b.items) {
				return false
			}
			for k, av := range a.items {
				bv, ok := b.items[k]
				if !ok || !av.Equal(bv) {
					return false
				}
			}
			return true
		}
	}
	return false
}

func elementsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// TupleIndex performs positional access on a Tuple. The index comes from a
// parse-time literal, never from a runtime expression.
func TupleIndex(v Value, index int) (Value, error) {
	t, ok := v.data.(tupleData)
	if !ok {
		return Nil(), newError(TypeMismatch, "cannot index %s with .%d, expected tuple", v.Kind(), index)
	}
	if index < 0 || index >= len(t) {
		return Nil(), newError(IndexOutOfRange, "tuple index %d out of range for tuple of length %d", index, len(t))
	}
	return t[index], nil
}
