package vm

import "math/big"

// execArithmetic dispatches the arithmetic opcode family. All operands
// decode via the integer view; binary (and WITHIN's ternary) operands
// require equal element counts, except LSHIFT/RSHIFT, which take a single
// scalar shift amount and apply it to every element of the shifted item
// (a multi-element shift operand faults). Purely numeric opcodes push an
// integer-array result; comparison/logical opcodes push a
// boolean-array result (either representation coerces correctly via
// StackItem.Bool, so downstream HALTIFNOT/JMPIF consumers don't care which
// this module picks per opcode).
func (i *Interpreter) execArithmetic(op OpCode) VMState {
	switch op {
	case Op1Add, Op1Sub, Op2Mul, Op2Div, OpNegate, OpAbs:
		return i.execUnaryNumeric(op)
	case OpNot, Op0NotEqual:
		return i.execUnaryLogical(op)
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpMin, OpMax:
		return i.execBinaryNumeric(op)
	case OpBoolAnd, OpBoolOr, OpNumEqual, OpNumNotEqual, OpLessThan,
		OpGreaterThan, OpLessThanOrEqual, OpGreaterThanOrEqual:
		return i.execBinaryLogical(op)
	case OpLShift, OpRShift:
		return i.execShift(op)
	case OpWithin:
		return i.execWithin()
	}
	return stateNotHandled
}

func (i *Interpreter) execUnaryNumeric(op OpCode) VMState {
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	ints, ok := item.AsIntArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	out := make([]*big.Int, len(ints))
	for k, v := range ints {
		r := new(big.Int)
		switch op {
		case Op1Add:
			r.Add(v, big.NewInt(1))
		case Op1Sub:
			r.Sub(v, big.NewInt(1))
		case Op2Mul:
			r.Mul(v, big.NewInt(2))
		case Op2Div:
			r.Quo(v, big.NewInt(2))
		case OpNegate:
			r.Neg(v)
		case OpAbs:
			r.Abs(v)
		}
		out[k] = r
	}
	i.eval.Push(NewIntArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execUnaryLogical(op OpCode) VMState {
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	ints, ok := item.AsIntArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	out := make([]bool, len(ints))
	for k, v := range ints {
		switch op {
		case OpNot:
			out[k] = v.Sign() == 0
		case Op0NotEqual:
			out[k] = v.Sign() != 0
		}
	}
	i.eval.Push(NewBoolArrayItem(out))
	return StateContinue
}

func (i *Interpreter) popBinaryInts() (a, b []*big.Int, err error) {
	bi, err := i.eval.Pop()
	if err != nil {
		return nil, nil, err
	}
	ai, err := i.eval.Pop()
	if err != nil {
		return nil, nil, err
	}
	av, ok1 := ai.AsIntArray()
	bv, ok2 := bi.AsIntArray()
	if !ok1 || !ok2 {
		return nil, nil, ErrKindMismatch
	}
	if len(av) != len(bv) {
		return nil, nil, ErrCountMismatch
	}
	return av, bv, nil
}

func (i *Interpreter) execBinaryNumeric(op OpCode) VMState {
	av, bv, err := i.popBinaryInts()
	if err != nil {
		return i.fault(err)
	}
	out := make([]*big.Int, len(av))
	for k := range av {
		a, b := av[k], bv[k]
		r := new(big.Int)
		switch op {
		case OpAdd:
			r.Add(a, b)
		case OpSub:
			r.Sub(a, b)
		case OpMul:
			r.Mul(a, b)
		case OpDiv:
			if b.Sign() == 0 {
				return i.fault(ErrInvalidOperand)
			}
			r.Quo(a, b)
		case OpMod:
			if b.Sign() == 0 {
				return i.fault(ErrInvalidOperand)
			}
			r.Rem(a, b)
		case OpMin:
			if a.Cmp(b) <= 0 {
				r.Set(a)
			} else {
				r.Set(b)
			}
		case OpMax:
			if a.Cmp(b) >= 0 {
				r.Set(a)
			} else {
				r.Set(b)
			}
		}
		out[k] = r
	}
	i.eval.Push(NewIntArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execBinaryLogical(op OpCode) VMState {
	av, bv, err := i.popBinaryInts()
	if err != nil {
		return i.fault(err)
	}
	out := make([]bool, len(av))
	for k := range av {
		a, b := av[k], bv[k]
		switch op {
		case OpBoolAnd:
			out[k] = a.Sign() != 0 && b.Sign() != 0
		case OpBoolOr:
			out[k] = a.Sign() != 0 || b.Sign() != 0
		case OpNumEqual:
			out[k] = a.Cmp(b) == 0
		case OpNumNotEqual:
			out[k] = a.Cmp(b) != 0
		case OpLessThan:
			out[k] = a.Cmp(b) < 0
		case OpGreaterThan:
			out[k] = a.Cmp(b) > 0
		case OpLessThanOrEqual:
			out[k] = a.Cmp(b) <= 0
		case OpGreaterThanOrEqual:
			out[k] = a.Cmp(b) >= 0
		}
	}
	i.eval.Push(NewBoolArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execShift(op OpCode) VMState {
	shift, ok := i.popScalarInt()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if shift.Sign() < 0 || !shift.IsUint64() {
		return i.fault(ErrInvalidOperand)
	}
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	ints, ok := item.AsIntArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	n := uint(shift.Uint64())
	out := make([]*big.Int, len(ints))
	for k, v := range ints {
		r := new(big.Int)
		if op == OpLShift {
			r.Lsh(v, n)
		} else {
			r.Rsh(v, n)
		}
		out[k] = r
	}
	i.eval.Push(NewIntArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execWithin() VMState {
	maxItem, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	minItem, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	xItem, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	maxs, ok1 := maxItem.AsIntArray()
	mins, ok2 := minItem.AsIntArray()
	xs, ok3 := xItem.AsIntArray()
	if !ok1 || !ok2 || !ok3 {
		return i.fault(ErrKindMismatch)
	}
	if len(maxs) != len(mins) || len(mins) != len(xs) {
		return i.fault(ErrCountMismatch)
	}
	out := make([]bool, len(xs))
	for k := range xs {
		out[k] = xs[k].Cmp(mins[k]) >= 0 && xs[k].Cmp(maxs[k]) < 0
	}
	i.eval.Push(NewBoolArrayItem(out))
	return StateContinue
}
