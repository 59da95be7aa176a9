package vm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 2: canonical integer encoding round-trips for arbitrary values,
// including zero (which must encode to the empty byte-string) and values
// that straddle a byte boundary on the sign bit.
func TestCanonicalIntRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, 128, -128, -129, 255, 256, -256, 1 << 20, -(1 << 20)}
	for _, v := range cases {
		want := big.NewInt(v)
		encoded := encodeCanonicalInt(want)
		got := decodeCanonicalInt(encoded)
		assert.Equalf(t, 0, want.Cmp(got), "round trip of %d got %s (encoded % x)", v, got, encoded)
	}
	assert.Equal(t, []byte{}, encodeCanonicalInt(big.NewInt(0)))
	assert.Equal(t, big.NewInt(0), decodeCanonicalInt(nil))
}

func TestBoolCoercionVacuousTruthOnEmpty(t *testing.T) {
	empty := NewArrayItem(nil)
	b, ok := empty.Bool()
	require.True(t, ok)
	assert.True(t, b)
}

func TestBoolCoercionIsAndReduction(t *testing.T) {
	item := NewBoolArrayItem([]bool{true, true, false})
	b, ok := item.Bool()
	require.True(t, ok)
	assert.False(t, b)

	item2 := NewBoolArrayItem([]bool{true, true})
	b2, ok := item2.Bool()
	require.True(t, ok)
	assert.True(t, b2)
}

func TestIntCoercionRequiresSingleElement(t *testing.T) {
	multi := NewIntArrayItem([]*big.Int{big.NewInt(1), big.NewInt(2)})
	_, ok := multi.Int()
	assert.False(t, ok)

	single := NewIntItem(big.NewInt(5))
	v, ok := single.Int()
	require.True(t, ok)
	assert.Equal(t, big.NewInt(5), v)
}

func TestAsArrayFaultsOnNonArrayKind(t *testing.T) {
	item := NewIntItem(big.NewInt(1))
	_, ok := item.AsArray()
	assert.False(t, ok)
}

func TestAsBytesArrayFaultsOnArrayKind(t *testing.T) {
	item := NewArrayItem([]*StackItem{NewIntItem(big.NewInt(1))})
	_, ok := item.AsBytesArray()
	assert.False(t, ok)
}

func TestEmptyByteStringDecodesToZero(t *testing.T) {
	item := NewBytesItem(nil)
	v, ok := item.Int()
	require.True(t, ok)
	assert.Equal(t, 0, v.Sign())
}

func TestConstructorsCopyInputToAvoidAliasing(t *testing.T) {
	b := []byte{1, 2, 3}
	item := NewBytesItem(b)
	b[0] = 0xff
	out, ok := item.Bytes()
	require.True(t, ok)
	assert.Equal(t, byte(1), out[0])
}
