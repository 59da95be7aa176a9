package vm

import "math/big"

// execSplice dispatches the splice opcode family, which operates
// elementwise on the byte-string view of its operands: a binary operand
// pair must share the same element count, and the result has one output
// slot per input slot, the same discipline applied uniformly across every
// elementwise family for consistency.
func (i *Interpreter) execSplice(op OpCode) VMState {
	switch op {
	case OpCat:
		return i.execCat()
	case OpSubstr:
		return i.execSubstr()
	case OpLeft:
		return i.execSideSlice(true)
	case OpRight:
		return i.execSideSlice(false)
	case OpSize:
		return i.execSize()
	}
	return stateNotHandled
}

func (i *Interpreter) execCat() VMState {
	b, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	a, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	ab, ok := a.AsBytesArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	bb, ok := b.AsBytesArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if len(ab) != len(bb) {
		return i.fault(ErrCountMismatch)
	}
	out := make([][]byte, len(ab))
	for k := range ab {
		if len(ab[k])+len(bb[k]) > MaxItemLength {
			return i.fault(ErrItemTooLong)
		}
		out[k] = append(append([]byte{}, ab[k]...), bb[k]...)
	}
	i.eval.Push(NewBytesArrayItem(out))
	return StateContinue
}

// popScalarInt pops a single int-coercible item, the common shape of SUBSTR's
// offset/length and LEFT/RIGHT's count operands.
func (i *Interpreter) popScalarInt() (*big.Int, bool) {
	item, err := i.eval.Pop()
	if err != nil {
		return nil, false
	}
	v, ok := item.Int()
	if !ok {
		return nil, false
	}
	return v, true
}

func (i *Interpreter) execSubstr() VMState {
	length, ok := i.popScalarInt()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if length.Sign() < 0 || !length.IsInt64() {
		return i.fault(ErrInvalidOperand)
	}
	offset, ok := i.popScalarInt()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if offset.Sign() < 0 || !offset.IsInt64() {
		return i.fault(ErrInvalidOperand)
	}
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	bs, ok := item.AsBytesArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	off, ln := int(offset.Int64()), int(length.Int64())
	out := make([][]byte, len(bs))
	for k, b := range bs {
		if off+ln > len(b) {
			return i.fault(ErrInvalidOperand)
		}
		out[k] = append([]byte{}, b[off:off+ln]...)
	}
	i.eval.Push(NewBytesArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execSideSlice(left bool) VMState {
	count, ok := i.popScalarInt()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if count.Sign() < 0 || !count.IsInt64() {
		return i.fault(ErrInvalidOperand)
	}
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	bs, ok := item.AsBytesArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	n := int(count.Int64())
	out := make([][]byte, len(bs))
	for k, b := range bs {
		if n > len(b) {
			return i.fault(ErrInvalidOperand)
		}
		if left {
			out[k] = append([]byte{}, b[:n]...)
		} else {
			out[k] = append([]byte{}, b[len(b)-n:]...)
		}
	}
	i.eval.Push(NewBytesArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execSize() VMState {
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	bs, ok := item.AsBytesArray()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	sizes := make([]*big.Int, len(bs))
	for k, b := range bs {
		sizes[k] = big.NewInt(int64(len(b)))
	}
	i.eval.Push(NewIntArrayItem(sizes))
	return StateContinue
}
