package value

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// methodFunc implements a single method. Receivers are never mutated.
type methodFunc func(recv Value, args []Value) (Value, error)

type method struct {
	arity int
	fn    methodFunc
}

// Invoke dispatches a method call on a value. Aliases (to_s/to_string,
// rev/reverse, ...) are registered against the same implementation, so they
// cannot drift apart.
func Invoke(recv Value, name string, args []Value) (Value, error) {
	table := methodTables[recv.Kind()]
	m, ok := table[name]
	if !ok {
		return Nil(), newError(UnknownMethod, "%s has no method %q", recv.Kind(), name)
	}
	if len(args) != m.arity {
		return Nil(), newError(ArityMismatch, "%s.%s takes %d arguments, got %d", recv.Kind(), name, m.arity, len(args))
	}
	return m.fn(recv, args)
}

var methodTables = map[Kind]map[string]method{
	KindInteger: makeTable(
		entry(integerAbs, "abs"),
		entry(integerTimes, "times"),
		entry(scalarToS, "to_s", "to_string"),
		entry(integerToF, "to_f", "to_float"),
		entry(identity, "to_i", "to_integer"),
	),
	KindFloat: makeTable(
		entry(floatAbs, "abs"),
		entry(floatCeil, "ceil"),
		entry(floatFloor, "floor"),
		entry(floatRound, "round"),
		entry(floatToI, "to_i", "to_integer"),
		entry(identity, "to_f", "to_float"),
		entry(scalarToS, "to_s", "to_string"),
	),
	KindString: makeTable(
		entry(stringTrim, "trim"),
		entry(stringCapitalize, "capitalize"),
		entry(stringUpper, "to_uppercase", "upper"),
		entry(stringLower, "to_lowercase", "lower"),
		entry(lenMethod, "len"),
		entry(emptyMethod, "empty"),
		entry(identity, "to_s", "to_string"),
	),
	KindBool: makeTable(
		entry(scalarToS, "to_s", "to_string"),
	),
	KindList: makeTable(
		entry(lenMethod, "len"),
		entry(emptyMethod, "empty"),
		entry(listEnumerate, "enumerate"),
		entry(listReverse, "reverse", "rev"),
		entry(listFirst, "first"),
		entry(listLast, "last"),
	),
	KindHash: makeTable(
		entry(hashKeys, "keys"),
		entry(hashValues, "values"),
		entry(hashIter, "iter"),
		entry(lenMethod, "len"),
		entry(emptyMethod, "empty"),
	),
	KindTuple: makeTable(
		entry(lenMethod, "len"),
	),
	KindNil: {},
}

type tableEntry struct {
	m     method
	names []string
}

func entry(fn methodFunc, names ...string) tableEntry {
	return tableEntry{m: method{arity: 0, fn: fn}, names: names}
}

func makeTable(entries ...tableEntry) map[string]method {
	table := make(map[string]method)
	for _, e := range entries {
		for _, name := range e.names {
			table[name] = e.m
		}
	}
	return table
}

func identity(recv Value, _ []Value) (Value, error) {
	return recv, nil
}

func scalarToS(recv Value, _ []Value) (Value, error) {
	s, _ := recv.Text()
	return FromString(s), nil
}

func lenMethod(recv Value, _ []Value) (Value, error) {
	n, _ := recv.Len()
	return FromInt(int64(n)), nil
}

func emptyMethod(recv Value, _ []Value) (Value, error) {
	n, _ := recv.Len()
	return FromBool(n == 0), nil
}

func integerAbs(recv Value, _ []Value) (Value, error) {
	i, _ := recv.AsInt()
	if i < 0 {
		i = -i
	}
	return FromInt(i), nil
}

// integerTimes returns [0, 1, ..., n] with the upper bound included. The
// inclusive endpoint is the documented behavior of the language, unusual as
// it is.
func integerTimes(recv Value, _ []Value) (Value, error) {
	n, _ := recv.AsInt()
	if n < 0 {
		return Nil(), newError(InvalidArgument, "times called on negative integer %d", n)
	}
	items := make([]Value, 0, n+1)
	for i := int64(0); i <= n; i++ {
		items = append(items, FromInt(i))
	}
	return FromList(items), nil
}

func integerToF(recv Value, _ []Value) (Value, error) {
	i, _ := recv.AsInt()
	return FromFloat(float64(i)), nil
}

func floatAbs(recv Value, _ []Value) (Value, error) {
	f, _ := recv.AsFloat()
	return FromFloat(math.Abs(f)), nil
}

func floatCeil(recv Value, _ []Value) (Value, error) {
	f, _ := recv.AsFloat()
	return FromFloat(math.Ceil(f)), nil
}

func floatFloor(recv Value, _ []Value) (Value, error) {
	f, _ := recv.AsFloat()
	return FromFloat(math.Floor(f)), nil
}

func floatRound(recv Value, _ []Value) (Value, error) {
	f, _ := recv.AsFloat()
	return FromFloat(math.Round(f)), nil
}

// floatToI rounds to the nearest integer, ties away from zero, matching
// round.
func floatToI(recv Value, _ []Value) (Value, error) {
	f, _ := recv.AsFloat()
	return FromInt(int64(math.Round(f))), nil
}

func stringTrim(recv Value, _ []Value) (Value, error) {
	s, _ := recv.AsString()
	return FromString(strings.TrimSpace(s)), nil
}

// stringCapitalize upper-cases the first Unicode scalar value only.
func stringCapitalize(recv Value, _ []Value) (Value, error) {
	s, _ := recv.AsString()
	if s == "" {
		return recv, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	return FromString(string(unicode.ToUpper(r)) + s[size:]), nil
}

func stringUpper(recv Value, _ []Value) (Value, error) {
	s, _ := recv.AsString()
	return FromString(strings.ToUpper(s)), nil
}

func stringLower(recv Value, _ []Value) (Value, error) {
	s, _ := recv.AsString()
	return FromString(strings.ToLower(s)), nil
}

func listEnumerate(recv Value, _ []Value) (Value, error) {
	items, _ := recv.AsList()
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = FromTuple(FromInt(int64(i)), item)
	}
	return FromList(out), nil
}

func listReverse(recv Value, _ []Value) (Value, error) {
	items, _ := recv.AsList()
	out := make([]Value, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return FromList(out), nil
}

func listFirst(recv Value, _ []Value) (Value, error) {
	items, _ := recv.AsList()
	if len(items) == 0 {
		return Nil(), newError(IndexOutOfRange, "first called on empty list")
	}
	return items[0], nil
}

func listLast(recv Value, _ []Value) (Value, error) {
	items, _ := recv.AsList()
	if len(items) == 0 {
		return Nil(), newError(IndexOutOfRange, "last called on empty list")
	}
	return items[len(items)-1], nil
}

func hashKeys(recv Value, _ []Value) (Value, error) {
	pairs, _ := recv.AsPairs()
	out := make([]Value, len(pairs))
	for i, p := range pairs {
		out[i] = FromString(p.Key)
	}
	return FromList(out), nil
}

func hashValues(recv Value, _ []Value) (Value, error) {
	pairs, _ := recv.AsPairs()
	out := make([]Value, len(pairs))
	for i, p := range pairs {
		out[i] = p.Value
	}
	return FromList(out), nil
}

func hashIter(recv Value, _ []Value) (Value, error) {
	pairs, _ := recv.AsPairs()
	out := make([]Value, len(pairs))
	for i, p := range pairs {
		out[i] = FromTuple(FromString(p.Key), p.Value)
	}
	return FromList(out), nil
}
