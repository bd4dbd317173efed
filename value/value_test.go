package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		kind Kind
	}{
		{"nil", Nil(), KindNil},
		{"zero value", Value{}, KindNil},
		{"integer", FromInt(42), KindInteger},
		{"float", FromFloat(2.5), KindFloat},
		{"string", FromString("hi"), KindString},
		{"bool", FromBool(true), KindBool},
		{"list", FromList([]Value{FromInt(1)}), KindList},
		{"hash", FromPairs([]Pair{{Key: "a", Value: FromInt(1)}}), KindHash},
		{"tuple", FromTuple(FromInt(1), FromString("x")), KindTuple},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.val.Kind())
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"same integers", FromInt(5), FromInt(5), true},
		{"different integers", FromInt(5), FromInt(6), false},
		{"integer promoted to float", FromInt(5), FromFloat(5.0), true},
		{"float against integer", FromFloat(5.0), FromInt(5), true},
		{"integer against fractional float", FromInt(5), FromFloat(5.4), false},
		{"strings", FromString("a"), FromString("a"), true},
		{"string against integer", FromString("5"), FromInt(5), false},
		{"bool against integer", FromBool(true), FromInt(1), false},
		{"nil against nil", Nil(), Nil(), true},
		{"nil against bool", Nil(), FromBool(false), false},
		{
			"lists element-wise",
			FromList([]Value{FromInt(1), FromString("x")}),
			FromList([]Value{FromInt(1), FromString("x")}),
			true,
		},
		{
			"lists of different length",
			FromList([]Value{FromInt(1)}),
			FromList([]Value{FromInt(1), FromInt(2)}),
			false,
		},
		{
			"list against tuple",
			FromList([]Value{FromInt(1)}),
			FromTuple(FromInt(1)),
			false,
		},
		{
			"tuples",
			FromTuple(FromInt(0), FromString("a")),
			FromTuple(FromInt(0), FromString("a")),
			true,
		},
		{
			"hashes ignore insertion order",
			FromPairs([]Pair{{"a", FromInt(1)}, {"b", FromInt(2)}}),
			FromPairs([]Pair{{"b", FromInt(2)}, {"a", FromInt(1)}}),
			true,
		},
		{
			"hashes with different values",
			FromPairs([]Pair{{"a", FromInt(1)}}),
			FromPairs([]Pair{{"a", FromInt(2)}}),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a), "equality must be symmetric")
		})
	}
}

func TestHashOrder(t *testing.T) {
	h := FromPairs([]Pair{
		{"zebra", FromInt(1)},
		{"apple", FromInt(2)},
		{"mango", FromInt(3)},
	})

	pairs, ok := h.AsPairs()
	require.True(t, ok)
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"zebra", "apple", "mango"}, keys, "insertion order must be preserved")

	v, ok := h.Get("mango")
	require.True(t, ok)
	assert.True(t, v.Equal(FromInt(3)))
}

func TestHashDuplicateKeyKeepsPosition(t *testing.T) {
	h := FromPairs([]Pair{
		{"a", FromInt(1)},
		{"b", FromInt(2)},
		{"a", FromInt(3)},
	})
	pairs, _ := h.AsPairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, "a", pairs[0].Key)
	assert.True(t, pairs[0].Value.Equal(FromInt(3)))
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		want string
	}{
		{"integer", FromInt(-42), "-42"},
		{"float", FromFloat(2.5), "2.5"},
		{"whole float drops the point", FromFloat(2.0), "2"},
		{"large float has no exponent", FromFloat(1e6), "1000000"},
		{"bool", FromBool(false), "false"},
		{"string", FromString("hi"), "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.val.Text()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, composite := range []Value{Nil(), FromList(nil), FromTuple(), FromPairs(nil)} {
		_, ok := composite.Text()
		assert.False(t, ok, "%s must have no canonical text", composite.Kind())
	}
}

func TestFromAny(t *testing.T) {
	v := FromAny(map[string]any{
		"name":  "Alice",
		"age":   30,
		"score": 1.5,
		"tags":  []any{"a", "b"},
		"extra": nil,
	})
	require.Equal(t, KindHash, v.Kind())

	name, _ := v.Get("name")
	assert.Equal(t, KindString, name.Kind())
	age, _ := v.Get("age")
	assert.True(t, age.Equal(FromInt(30)))
	score, _ := v.Get("score")
	assert.True(t, score.Equal(FromFloat(1.5)))
	tags, _ := v.Get("tags")
	require.Equal(t, KindList, tags.Kind())
	extra, _ := v.Get("extra")
	assert.True(t, extra.IsNil())

	// map keys are sorted for deterministic iteration
	pairs, _ := v.AsPairs()
	assert.Equal(t, "age", pairs[0].Key)
}

func TestTupleIndex(t *testing.T) {
	tup := FromTuple(FromInt(7), FromString("x"))

	v, err := TupleIndex(tup, 0)
	require.NoError(t, err)
	assert.True(t, v.Equal(FromInt(7)))

	v, err = TupleIndex(tup, 1)
	require.NoError(t, err)
	assert.True(t, v.Equal(FromString("x")))

	_, err = TupleIndex(tup, 2)
	require.Error(t, err)
	assert.Equal(t, IndexOutOfRange, err.(*Error).Kind)

	_, err = TupleIndex(FromList([]Value{FromInt(1)}), 0)
	require.Error(t, err)
	assert.Equal(t, TypeMismatch, err.(*Error).Kind)
}
