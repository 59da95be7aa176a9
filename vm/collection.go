package vm

import (
	"math/big"

	"gopkg.in/fatih/set.v0"
)

// execCollection dispatches the collection opcode family. Every opcode here
// treats the popped item as a sequence: an array-kind item contributes its
// elements directly, while a byte-string/integer/boolean-kind item
// contributes one scalar element per slot (its element-slot view), so a
// multi-slot value produced by an earlier elementwise opcode (SIZE, SHA1,
// ...) is just another sequence to these ops. Set-shaped opcodes
// (DISTINCT/UNION/INTERSECT/EXCEPT) only support scalar elements, since
// membership needs a comparison key and the VM only defines equality on the
// byte-string view of a length-1 item; a nested array element has no such
// key and faults.
func (i *Interpreter) execCollection(op OpCode) VMState {
	switch op {
	case OpArraySize:
		return i.execArraySize()
	case OpPack:
		return i.execPack()
	case OpUnpack:
		return i.execUnpack()
	case OpDistinct:
		return i.execDistinct()
	case OpSort:
		return i.execSort()
	case OpReverse:
		return i.execReverse()
	case OpConcat:
		return i.execConcat()
	case OpUnion:
		return i.execUnion()
	case OpIntersect:
		return i.execSetOp(false)
	case OpExcept:
		return i.execSetOp(true)
	case OpTake:
		return i.execTake()
	case OpSkip:
		return i.execSkip()
	case OpPickItem:
		return i.execPickItem()
	case OpAll:
		return i.execAllAny(true)
	case OpAny:
		return i.execAllAny(false)
	case OpSum:
		return i.execSum()
	case OpAverage:
		return i.execAverage()
	case OpMaxItem:
		return i.execItemExtreme(true)
	case OpMinItem:
		return i.execItemExtreme(false)
	}
	return stateNotHandled
}

// sequence returns s as a slice of scalar StackItems: an array-kind item's
// own elements, or one scalar item per slot for a byte-string/int/bool-kind
// item. Always succeeds, since every kind has a defined Count().
func (s *StackItem) sequence() []*StackItem {
	switch s.kind {
	case kindArray:
		out := make([]*StackItem, len(s.array))
		copy(out, s.array)
		return out
	case kindBytes:
		out := make([]*StackItem, len(s.bytes))
		for k, b := range s.bytes {
			out[k] = NewBytesItem(b)
		}
		return out
	case kindInt:
		out := make([]*StackItem, len(s.ints))
		for k, v := range s.ints {
			out[k] = NewIntItem(v)
		}
		return out
	case kindBool:
		out := make([]*StackItem, len(s.bools))
		for k, v := range s.bools {
			out[k] = NewBoolItem(v)
		}
		return out
	}
	return nil
}

// popArray pops the top item and returns its sequence view. The only way
// this fails is stack underflow; sequence() itself never fails.
func (i *Interpreter) popArray() ([]*StackItem, error) {
	item, err := i.eval.Pop()
	if err != nil {
		return nil, err
	}
	return item.sequence(), nil
}

// itemKey is the comparison key set-shaped opcodes use: the canonical
// byte-string encoding of a length-1 element. Non-scalar elements (nested
// arrays) have no such key and fault.
func itemKey(item *StackItem) (string, bool) {
	b, ok := item.Bytes()
	if !ok {
		return "", false
	}
	return string(b), true
}

func (i *Interpreter) execArraySize() VMState {
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	i.eval.Push(NewInt64Item(int64(item.Count())))
	return StateContinue
}

func (i *Interpreter) execPack() VMState {
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
	count := int(n.Int64())
	items := make([]*StackItem, count)
	for k := 0; k < count; k++ {
		item, err := i.eval.Pop()
		if err != nil {
			return i.fault(err)
		}
		items[k] = item
	}
	i.eval.Push(NewArrayItem(items))
	return StateContinue
}

func (i *Interpreter) execUnpack() VMState {
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	for k := len(elems) - 1; k >= 0; k-- {
		i.eval.Push(elems[k])
	}
	i.eval.Push(NewInt64Item(int64(len(elems))))
	return StateContinue
}

func (i *Interpreter) execDistinct() VMState {
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	seen := set.NewNonTS()
	out := make([]*StackItem, 0, len(elems))
	for _, e := range elems {
		key, ok := itemKey(e)
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		if seen.Has(key) {
			continue
		}
		seen.Add(key)
		out = append(out, e)
	}
	i.eval.Push(NewArrayItem(out))
	return StateContinue
}

// execSort always produces an integer-sorted array, even when the popped
// sequence was a byte-string or boolean view: every element is coerced
// through its integer view before comparison, and the result is rebuilt
// from those integers rather than the original elements. This is lossy by
// design on non-integer input.
func (i *Interpreter) execSort() VMState {
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	vals := make([]*big.Int, len(elems))
	for k, e := range elems {
		v, ok := e.Int()
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		vals[k] = v
	}
	for a := 1; a < len(vals); a++ {
		for b := a; b > 0 && vals[b-1].Cmp(vals[b]) > 0; b-- {
			vals[b-1], vals[b] = vals[b], vals[b-1]
		}
	}
	out := make([]*StackItem, len(vals))
	for k, v := range vals {
		out[k] = NewIntItem(v)
	}
	i.eval.Push(NewArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execReverse() VMState {
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	out := make([]*StackItem, len(elems))
	for k, e := range elems {
		out[len(elems)-1-k] = e
	}
	i.eval.Push(NewArrayItem(out))
	return StateContinue
}

// concatArrays implements the shared CONCAT/UNION operand shape: two
// sequences popped in reverse order, combined with the first sequence's
// elements first. Both fault when the combined result is empty: CONCAT/
// UNION, unlike PACK, never produce an empty array.
func (i *Interpreter) concatArrays() ([]*StackItem, error) {
	b, err := i.popArray()
	if err != nil {
		return nil, err
	}
	a, err := i.popArray()
	if err != nil {
		return nil, err
	}
	if len(a)+len(b) == 0 {
		return nil, ErrEmptyArray
	}
	out := make([]*StackItem, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out, nil
}

func (i *Interpreter) execConcat() VMState {
	out, err := i.concatArrays()
	if err != nil {
		return i.fault(err)
	}
	i.eval.Push(NewArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execUnion() VMState {
	out, err := i.concatArrays()
	if err != nil {
		return i.fault(err)
	}
	seen := set.NewNonTS()
	dedup := make([]*StackItem, 0, len(out))
	for _, e := range out {
		key, ok := itemKey(e)
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		if seen.Has(key) {
			continue
		}
		seen.Add(key)
		dedup = append(dedup, e)
	}
	i.eval.Push(NewArrayItem(dedup))
	return StateContinue
}

// execSetOp implements INTERSECT (except=false) and EXCEPT (except=true):
// pop b then a, keep a's elements that are (INTERSECT) or are not (EXCEPT)
// members of b, deduplicated the way DISTINCT deduplicates.
func (i *Interpreter) execSetOp(except bool) VMState {
	b, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	a, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	bSet := set.NewNonTS()
	for _, e := range b {
		key, ok := itemKey(e)
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		bSet.Add(key)
	}
	seen := set.NewNonTS()
	out := make([]*StackItem, 0, len(a))
	for _, e := range a {
		key, ok := itemKey(e)
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		if seen.Has(key) {
			continue
		}
		if bSet.Has(key) == except {
			continue
		}
		seen.Add(key)
		out = append(out, e)
	}
	i.eval.Push(NewArrayItem(out))
	return StateContinue
}

func (i *Interpreter) execTake() VMState {
	n, ok := i.popScalarInt()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if n.Sign() < 0 || !n.IsInt64() {
		return i.fault(ErrInvalidOperand)
	}
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	count := int(n.Int64())
	if count > len(elems) {
		return i.fault(ErrInvalidOperand)
	}
	i.eval.Push(NewArrayItem(append([]*StackItem(nil), elems[:count]...)))
	return StateContinue
}

func (i *Interpreter) execSkip() VMState {
	n, ok := i.popScalarInt()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if n.Sign() < 0 || !n.IsInt64() {
		return i.fault(ErrInvalidOperand)
	}
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	count := int(n.Int64())
	if count > len(elems) {
		return i.fault(ErrInvalidOperand)
	}
	i.eval.Push(NewArrayItem(append([]*StackItem(nil), elems[count:]...)))
	return StateContinue
}

// execPickItem pops the index, then the collection: a byte-string indexes
// into its raw bytes (pushing the i-th byte as a length-1 byte-string), an
// array indexes into its element slots. Any other popped kind is coerced
// through its byte-string view first, the same way Bytes() does elsewhere.
func (i *Interpreter) execPickItem() VMState {
	n, ok := i.popScalarInt()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if n.Sign() < 0 || !n.IsInt64() {
		return i.fault(ErrInvalidOperand)
	}
	idx := int(n.Int64())

	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}

	if item.IsArray() {
		elems, _ := item.AsArray()
		if idx >= len(elems) {
			return i.fault(ErrInvalidOperand)
		}
		i.eval.Push(elems[idx])
		return StateContinue
	}

	b, ok := item.Bytes()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if idx >= len(b) {
		return i.fault(ErrInvalidOperand)
	}
	i.eval.Push(NewBytesItem([]byte{b[idx]}))
	return StateContinue
}

func (i *Interpreter) execAllAny(all bool) VMState {
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	result := all
	for _, e := range elems {
		b, ok := e.Bool()
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		if all && !b {
			result = false
			break
		}
		if !all && b {
			result = true
			break
		}
	}
	i.eval.Push(NewBoolItem(result))
	return StateContinue
}

func (i *Interpreter) execSum() VMState {
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	sum := big.NewInt(0)
	for _, e := range elems {
		v, ok := e.Int()
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		sum.Add(sum, v)
	}
	i.eval.Push(NewIntItem(sum))
	return StateContinue
}

func (i *Interpreter) execAverage() VMState {
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	if len(elems) == 0 {
		return i.fault(ErrEmptyArray)
	}
	sum := big.NewInt(0)
	for _, e := range elems {
		v, ok := e.Int()
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		sum.Add(sum, v)
	}
	avg := new(big.Int).Quo(sum, big.NewInt(int64(len(elems))))
	i.eval.Push(NewIntItem(avg))
	return StateContinue
}

func (i *Interpreter) execItemExtreme(max bool) VMState {
	elems, err := i.popArray()
	if err != nil {
		return i.fault(err)
	}
	if len(elems) == 0 {
		return i.fault(ErrEmptyArray)
	}
	best := elems[0]
	bestVal, ok := best.Int()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	for _, e := range elems[1:] {
		v, ok := e.Int()
		if !ok {
			return i.fault(ErrKindMismatch)
		}
		if (max && v.Cmp(bestVal) > 0) || (!max && v.Cmp(bestVal) < 0) {
			best, bestVal = e, v
		}
	}
	i.eval.Push(best)
	return StateContinue
}
