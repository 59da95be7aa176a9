package vm

// execStack dispatches classic stack-manipulation opcodes. Every opcode
// here first verifies operand depth via the rtStack helpers, which return
// ErrStackUnderflow on a short stack.
func (i *Interpreter) execStack(op OpCode) VMState {
	switch op {
	case OpToAltStack:
		item, err := i.eval.Pop()
		if err != nil {
			return i.fault(err)
		}
		i.alt.Push(item)
		return StateContinue

	case OpFromAltStack:
		item, err := i.alt.Pop()
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(item)
		return StateContinue

	case Op2Drop:
		if err := i.eval.DropN(2); err != nil {
			return i.fault(err)
		}
		return StateContinue

	case Op2Dup:
		return i.dupTop(2)
	case Op3Dup:
		return i.dupTop(3)

	case Op2Over:
		a, err := i.eval.Peek(3)
		if err != nil {
			return i.fault(err)
		}
		b, err := i.eval.Peek(2)
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(a)
		i.eval.Push(b)
		return StateContinue

	case Op2Rot:
		a, err := i.eval.Remove(5)
		if err != nil {
			return i.fault(err)
		}
		b, err := i.eval.Remove(4)
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(a)
		i.eval.Push(b)
		return StateContinue

	case Op2Swap:
		a, err := i.eval.Remove(3)
		if err != nil {
			return i.fault(err)
		}
		b, err := i.eval.Remove(2)
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(a)
		i.eval.Push(b)
		return StateContinue

	case OpIfDup:
		top, err := i.eval.Peek(0)
		if err != nil {
			return i.fault(err)
		}
		cond, ok := top.Bool()
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		if cond {
			i.eval.Push(top)
		}
		return StateContinue

	case OpDepth:
		i.eval.Push(NewInt64Item(int64(i.eval.Depth())))
		return StateContinue

	case OpDrop:
		if _, err := i.eval.Pop(); err != nil {
			return i.fault(err)
		}
		return StateContinue

	case OpDup:
		top, err := i.eval.Peek(0)
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(top)
		return StateContinue

	case OpNip:
		if _, err := i.eval.Remove(1); err != nil {
			return i.fault(err)
		}
		return StateContinue

	case OpOver:
		item, err := i.eval.Peek(1)
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(item)
		return StateContinue

	case OpPick, OpRoll:
		return i.execPickRoll(op)

	case OpRot:
		item, err := i.eval.Remove(2)
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(item)
		return StateContinue

	case OpSwap:
		item, err := i.eval.Remove(1)
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(item)
		return StateContinue

	case OpTuck:
		top, err := i.eval.Peek(0)
		if err != nil {
			return i.fault(err)
		}
		if err := i.eval.InsertAt(2, top); err != nil {
			return i.fault(err)
		}
		return StateContinue
	}
	return stateNotHandled
}

func (i *Interpreter) dupTop(n int) VMState {
	items := make([]*StackItem, n)
	for k := 0; k < n; k++ {
		item, err := i.eval.Peek(n - 1 - k)
		if err != nil {
			return i.fault(err)
		}
		items[k] = item
	}
	for _, item := range items {
		i.eval.Push(item)
	}
	return StateContinue
}

func (i *Interpreter) execPickRoll(op OpCode) VMState {
	nItem, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	n, ok := nItem.Int()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if n.Sign() < 0 || !n.IsInt64() {
		return i.fault(ErrInvalidOperand)
	}
	idx := int(n.Int64())
	if op == OpPick {
		item, err := i.eval.Peek(idx)
		if err != nil {
			return i.fault(err)
		}
		i.eval.Push(item)
		return StateContinue
	}
	item, err := i.eval.Remove(idx)
	if err != nil {
		return i.fault(err)
	}
	i.eval.Push(item)
	return StateContinue
}
