package vm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runOp(t *testing.T, i *Interpreter, op OpCode) VMState {
	t.Helper()
	return i.executeOp(&frame{}, op)
}

func TestInvertFlipsBits(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewBytesItem([]byte{0x0f}))
	state := runOp(t, i, OpInvert)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	b, _ := top.Bytes()
	assert.Equal(t, []byte{0xf0}, b)
}

func TestBinaryBitwiseCombinesDifferentMagnitudesAsIntegers(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewBytesItem([]byte{0x01}))       // 1
	i.eval.Push(NewBytesItem([]byte{0x01, 0x02})) // 513
	state := runOp(t, i, OpAnd)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	v, ok := top.Int()
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int64())
}

func TestBinaryBitwiseRequiresEqualElementCount(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(1))
	i.eval.Push(NewIntArrayItem([]*big.Int{big.NewInt(1), big.NewInt(2)}))
	state := runOp(t, i, OpAnd)
	assert.Equal(t, StateFault, state)
}

func TestXorOfEqualValuesIsZero(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewBytesItem([]byte{0xab, 0xcd}))
	i.eval.Push(NewBytesItem([]byte{0xab, 0xcd}))
	state := runOp(t, i, OpXor)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	v, ok := top.Int()
	require.True(t, ok)
	assert.Equal(t, int64(0), v.Int64())
}

func TestEqualComparesByteStringView(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(1))
	i.eval.Push(NewBytesItem([]byte{1}))
	state := runOp(t, i, OpEqual)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	b, ok := top.Bool()
	require.True(t, ok)
	assert.True(t, b)
}
