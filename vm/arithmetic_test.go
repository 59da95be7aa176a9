package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnaryNumericOps(t *testing.T) {
	cases := []struct {
		op   OpCode
		in   int64
		want int64
	}{
		{Op1Add, 5, 6},
		{Op1Sub, 5, 4},
		{Op2Mul, 5, 10},
		{Op2Div, 5, 2},
		{OpNegate, 5, -5},
		{OpAbs, -5, 5},
	}
	for _, c := range cases {
		i := newTestInterpreter()
		i.eval.Push(NewInt64Item(c.in))
		state := runOp(t, i, c.op)
		require.Equal(t, StateContinue, state)
		top, _ := i.eval.Pop()
		v, _ := top.Int()
		assert.Equalf(t, c.want, v.Int64(), "op %s", c.op)
	}
}

func TestDivisionByZeroFaults(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(5))
	i.eval.Push(NewInt64Item(0))
	state := runOp(t, i, OpDiv)
	assert.Equal(t, StateFault, state)
}

func TestModFollowsDividendSign(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(-7))
	i.eval.Push(NewInt64Item(3))
	state := runOp(t, i, OpMod)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	v, _ := top.Int()
	assert.Equal(t, int64(-1), v.Int64())
}

func TestBinaryComparisons(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(1))
	i.eval.Push(NewInt64Item(2))
	state := runOp(t, i, OpLessThan)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	b, _ := top.Bool()
	assert.True(t, b)
}

func TestMinMax(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(3))
	i.eval.Push(NewInt64Item(7))
	state := runOp(t, i, OpMax)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	v, _ := top.Int()
	assert.Equal(t, int64(7), v.Int64())
}

func TestShiftOperations(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(1))
	i.eval.Push(NewInt64Item(4))
	state := runOp(t, i, OpLShift)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	v, _ := top.Int()
	assert.Equal(t, int64(16), v.Int64())
}

func TestNegativeShiftAmountFaults(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(1))
	i.eval.Push(NewInt64Item(-1))
	state := runOp(t, i, OpLShift)
	assert.Equal(t, StateFault, state)
}

func TestWithinHalfOpenInterval(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(5))  // x
	i.eval.Push(NewInt64Item(0))  // min
	i.eval.Push(NewInt64Item(5))  // max
	state := runOp(t, i, OpWithin)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	b, _ := top.Bool()
	assert.False(t, b, "x==max should be outside the half-open interval")
}

func TestBoolAndOrLogic(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(1))
	i.eval.Push(NewInt64Item(0))
	state := runOp(t, i, OpBoolAnd)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	b, _ := top.Bool()
	assert.False(t, b)
}

func TestNotAndZeroNotEqual(t *testing.T) {
	i := newTestInterpreter()
	i.eval.Push(NewInt64Item(0))
	state := runOp(t, i, OpNot)
	require.Equal(t, StateContinue, state)
	top, _ := i.eval.Pop()
	b, _ := top.Bool()
	assert.True(t, b)

	i.eval.Push(NewInt64Item(5))
	state = runOp(t, i, Op0NotEqual)
	require.Equal(t, StateContinue, state)
	top, _ = i.eval.Pop()
	b, _ = top.Bool()
	assert.True(t, b)
}
