package value

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoke(t *testing.T, recv Value, name string) Value {
	t.Helper()
	v, err := Invoke(recv, name, nil)
	require.NoError(t, err)
	return v
}

func TestIntegerAbs(t *testing.T) {
	for _, n := range []int64{-5, -1, 0, 1, 42} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			got := invoke(t, FromInt(n), "abs")
			i, ok := got.AsInt()
			require.True(t, ok, "abs must stay an integer")
			assert.GreaterOrEqual(t, i, int64(0))
			if n < 0 {
				assert.Equal(t, -n, i)
			} else {
				assert.Equal(t, n, i)
			}
		})
	}
}

func TestFloatAbsStaysFloat(t *testing.T) {
	got := invoke(t, FromFloat(-2.5), "abs")
	f, ok := got.AsFloat()
	require.True(t, ok, "abs must preserve the float variant")
	assert.Equal(t, 2.5, f)
}

// times includes the upper bound: 3.times is [0, 1, 2, 3].
func TestIntegerTimesInclusive(t *testing.T) {
	got := invoke(t, FromInt(3), "times")
	want := FromList([]Value{FromInt(0), FromInt(1), FromInt(2), FromInt(3)})
	assert.True(t, got.Equal(want), "got %s", got)

	got = invoke(t, FromInt(0), "times")
	assert.True(t, got.Equal(FromList([]Value{FromInt(0)})))
}

func TestIntegerTimesNegative(t *testing.T) {
	_, err := Invoke(FromInt(-1), "times", nil)
	require.Error(t, err)
	assert.Equal(t, InvalidArgument, err.(*Error).Kind)
}

func TestNumericConversions(t *testing.T) {
	tests := []struct {
		name   string
		recv   Value
		method string
		want   Value
	}{
		{"integer widens to float", FromInt(25), "to_f", FromFloat(25.0)},
		{"to_float alias", FromInt(25), "to_float", FromFloat(25.0)},
		{"integer to_i is identity", FromInt(25), "to_i", FromInt(25)},
		{"float rounds down", FromFloat(25.4), "to_i", FromInt(25)},
		{"float rounds up", FromFloat(25.6), "to_i", FromInt(26)},
		{"tie rounds away from zero", FromFloat(2.5), "to_i", FromInt(3)},
		{"negative tie rounds away from zero", FromFloat(-2.5), "to_i", FromInt(-3)},
		{"to_integer alias", FromFloat(25.4), "to_integer", FromInt(25)},
		{"float to_f is identity", FromFloat(1.5), "to_f", FromFloat(1.5)},
		{"float round stays float", FromFloat(2.5), "round", FromFloat(3.0)},
		{"ceil", FromFloat(2.1), "ceil", FromFloat(3.0)},
		{"floor", FromFloat(2.9), "floor", FromFloat(2.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoke(t, tt.recv, tt.method)
			assert.Equal(t, tt.want.Kind(), got.Kind())
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestToS(t *testing.T) {
	tests := []struct {
		recv Value
		want string
	}{
		{FromInt(5), "5"},
		{FromFloat(2.5), "2.5"},
		{FromBool(true), "true"},
		{FromString("x"), "x"},
	}
	for _, tt := range tests {
		got := invoke(t, tt.recv, "to_s")
		s, ok := got.AsString()
		require.True(t, ok)
		assert.Equal(t, tt.want, s)

		// alias resolves to the same implementation
		alias := invoke(t, tt.recv, "to_string")
		assert.True(t, got.Equal(alias))
	}
}

func TestStringMethods(t *testing.T) {
	tests := []struct {
		name   string
		recv   string
		method string
		want   string
	}{
		{"trim strips both ends", "  messy string  ", "trim", "messy string"},
		{"trim strips newlines", "\n\thello\n", "trim", "hello"},
		{"trim keeps internal spacing", " a  b ", "trim", "a  b"},
		{"capitalize first scalar only", "hello world", "capitalize", "Hello world"},
		{"capitalize unicode", "über", "capitalize", "Über"},
		{"capitalize leaves rest alone", "hELLO", "capitalize", "HELLO"},
		{"capitalize empty", "", "capitalize", ""},
		{"to_uppercase", "héllo", "to_uppercase", "HÉLLO"},
		{"upper alias", "abc", "upper", "ABC"},
		{"to_lowercase", "ABC", "to_lowercase", "abc"},
		{"lower alias", "ABC", "lower", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoke(t, FromString(tt.recv), tt.method)
			s, ok := got.AsString()
			require.True(t, ok)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestStringLenCountsScalars(t *testing.T) {
	got := invoke(t, FromString("héllo"), "len")
	assert.True(t, got.Equal(FromInt(5)))
}

func TestListEnumerate(t *testing.T) {
	list := FromList([]Value{FromString("one"), FromString("two")})
	got := invoke(t, list, "enumerate")
	want := FromList([]Value{
		FromTuple(FromInt(0), FromString("one")),
		FromTuple(FromInt(1), FromString("two")),
	})
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestListReverseInvolution(t *testing.T) {
	list := FromList([]Value{FromInt(1), FromInt(2), FromInt(3)})

	rev := invoke(t, list, "reverse")
	assert.True(t, rev.Equal(FromList([]Value{FromInt(3), FromInt(2), FromInt(1)})))
	assert.True(t, invoke(t, rev, "reverse").Equal(list))

	// the receiver is not mutated
	items, _ := list.AsList()
	assert.True(t, items[0].Equal(FromInt(1)))

	// rev is an alias
	assert.True(t, invoke(t, list, "rev").Equal(rev))
}

func TestListAccessors(t *testing.T) {
	list := FromList([]Value{FromInt(10), FromInt(20), FromInt(30)})
	assert.True(t, invoke(t, list, "len").Equal(FromInt(3)))
	assert.True(t, invoke(t, list, "empty").Equal(FromBool(false)))
	assert.True(t, invoke(t, list, "first").Equal(FromInt(10)))
	assert.True(t, invoke(t, list, "last").Equal(FromInt(30)))

	empty := FromList(nil)
	assert.True(t, invoke(t, empty, "empty").Equal(FromBool(true)))
	for _, m := range []string{"first", "last"} {
		_, err := Invoke(empty, m, nil)
		require.Error(t, err)
		assert.Equal(t, IndexOutOfRange, err.(*Error).Kind)
	}
}

func TestHashIterLinesUp(t *testing.T) {
	h := FromPairs([]Pair{
		{"b", FromInt(2)},
		{"a", FromInt(1)},
		{"c", FromInt(3)},
	})

	keys, _ := invoke(t, h, "keys").AsList()
	values, _ := invoke(t, h, "values").AsList()
	iter, _ := invoke(t, h, "iter").AsList()

	require.Len(t, keys, 3)
	require.Len(t, values, 3)
	require.Len(t, iter, 3)

	for i := range iter {
		want := FromTuple(keys[i], values[i])
		assert.True(t, iter[i].Equal(want), "index %d: %s != %s", i, iter[i], want)
	}
	assert.True(t, keys[0].Equal(FromString("b")), "iteration must follow insertion order")
}

func TestUnknownMethod(t *testing.T) {
	receivers := []Value{
		FromInt(1), FromFloat(1.5), FromString("x"), FromBool(true),
		FromList(nil), FromPairs(nil), FromTuple(), Nil(),
	}
	for _, recv := range receivers {
		t.Run(recv.Kind().String(), func(t *testing.T) {
			_, err := Invoke(recv, "no_such_method", nil)
			require.Error(t, err, "unknown methods must never silently return nil")
			assert.Equal(t, UnknownMethod, err.(*Error).Kind)
		})
	}
}

func TestArityMismatch(t *testing.T) {
	_, err := Invoke(FromInt(5), "abs", []Value{FromInt(1)})
	require.Error(t, err)
	assert.Equal(t, ArityMismatch, err.(*Error).Kind)
}
