package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorsGuardKind(t *testing.T) {
	v := Int(42)

	i, ok := v.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)

	_, ok = v.AsText()
	assert.False(t, ok)
	_, ok = v.AsFloat64()
	assert.False(t, ok)
}

func TestOptionalAccessor(t *testing.T) {
	inner, ok := Some(Text("x")).AsOptional()
	require.True(t, ok)
	require.NotNil(t, inner)
	assert.Equal(t, Text("x"), *inner)

	inner, ok = None().AsOptional()
	require.True(t, ok)
	assert.Nil(t, inner)

	_, ok = Int(1).AsOptional()
	assert.False(t, ok)
}

func TestKeyDistinguishesKinds(t *testing.T) {
	// Bucket keys must never collide across kinds or values that are not
	// Equal. Numeric cross-kind equality is handled by EqualKeys, not by
	// shared buckets.
	vals := []Value{
		Int(1), Int(-1), Uint(1), Float(1), Float(1.5), Bool(true), Bool(false),
		Char('1'), Text("1"), Text(""), Time(time.Unix(0, 1)),
		Some(Int(1)), None(), List(Int(1)), List(), Map(map[string]Value{"a": Int(1)}),
		Map(nil), Bytes([]byte("1")), Bytes(nil),
	}

	seen := make(map[string]Value)
	for _, v := range vals {
		k := v.Key()
		if prev, dup := seen[k]; dup {
			t.Errorf("key %q collides for %v and %v", k, prev, v)
		}
		seen[k] = v
	}
}

func TestKeyStableForMaps(t *testing.T) {
	a := Map(map[string]Value{"x": Int(1), "y": Int(2), "z": Int(3)})
	b := Map(map[string]Value{"z": Int(3), "x": Int(1), "y": Int(2)})
	assert.Equal(t, a.Key(), b.Key())
}

func TestCloneIsDeep(t *testing.T) {
	orig := Map(map[string]Value{
		"list":  List(Int(1), Int(2)),
		"bytes": Bytes([]byte{1, 2, 3}),
		"opt":   Some(Text("inner")),
	})

	clone := orig.Clone()
	require.True(t, Equal(orig, clone))

	clone.M["list"].L[0] = Int(99)
	clone.M["bytes"].Raw[0] = 0xff
	clone.M["extra"] = Int(1)

	want := Map(map[string]Value{
		"list":  List(Int(1), Int(2)),
		"bytes": Bytes([]byte{1, 2, 3}),
		"opt":   Some(Text("inner")),
	})
	assert.True(t, Equal(orig, want), "mutating a clone must not touch the original")
}
