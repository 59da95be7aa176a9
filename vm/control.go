package vm

import "math/big"

// execControl dispatches control-flow opcodes. Returns stateNotHandled if
// op is not a control opcode.
func (i *Interpreter) execControl(f *frame, op OpCode) VMState {
	switch op {
	case OpNop:
		return StateContinue
	case OpJmp, OpJmpIf, OpJmpIfNot:
		return i.execJump(f, op)
	case OpCall:
		return i.execCall(f)
	case OpHaltIfNot:
		return i.execHaltIfNot()
	case OpRet:
		return i.execRet(f)
	case OpAppCall:
		return i.execAppCall(f)
	case OpSyscall:
		return i.execSyscall(f)
	case OpHalt:
		return StateHalt
	default:
		return stateNotHandled
	}
}

// jumpTarget resolves the 2-byte signed displacement of a JMP-family
// instruction into an absolute script offset. The displacement is relative
// to the opcode's own starting offset, so it is added to instrStart (the
// offset of the opcode byte itself; f.pc has already advanced past it when
// this is called).
func jumpTarget(f *frame, instrStart int) (int, error) {
	raw, ok := readInt16LE(f)
	if !ok {
		return 0, ErrTruncatedScript
	}
	target := instrStart + int(raw)
	if target < 0 || target > len(f.script) {
		return 0, ErrControlTarget
	}
	return target, nil
}

func (i *Interpreter) execJump(f *frame, op OpCode) VMState {
	instrStart := f.pc - 1
	target, err := jumpTarget(f, instrStart)
	if err != nil {
		return i.fault(err)
	}
	if op == OpJmp {
		f.pc = target
		return StateContinue
	}
	item, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	cond, ok := item.Bool()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if op == OpJmpIfNot {
		cond = !cond
	}
	if cond {
		f.pc = target
	}
	return StateContinue
}

func (i *Interpreter) execCall(f *frame) VMState {
	instrStart := f.pc - 1
	target, err := jumpTarget(f, instrStart)
	if err != nil {
		return i.fault(err)
	}
	returnAddr := f.pc
	i.eval.Push(NewInt64Item(int64(returnAddr)))
	f.pc = target
	return StateContinue
}

// execHaltIfNot peeks (does not pop) the top item; on a true boolean
// coercion it pops and keeps running; on false it halts without popping.
func (i *Interpreter) execHaltIfNot() VMState {
	item, err := i.eval.Peek(0)
	if err != nil {
		return i.fault(err)
	}
	cond, ok := item.Bool()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if cond {
		_, _ = i.eval.Pop()
		return StateContinue
	}
	return StateHalt
}

func (i *Interpreter) execRet(f *frame) VMState {
	result, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	posItem, err := i.eval.Pop()
	if err != nil {
		return i.fault(err)
	}
	pos, ok := posItem.Int()
	if !ok {
		return i.fault(ErrKindMismatch)
	}
	if pos.Sign() < 0 || pos.Cmp(big.NewInt(int64(len(f.script)))) > 0 {
		return i.fault(ErrControlTarget)
	}
	i.eval.Push(result)
	f.pc = int(pos.Int64())
	return StateContinue
}

func (i *Interpreter) execAppCall(f *frame) VMState {
	hashBytes, ok := readBytes(f, scriptHashLength)
	if !ok {
		return i.fault(ErrTruncatedScript)
	}
	if i.scriptTable == nil {
		return i.fault(ErrUnknownScriptHash)
	}
	var hash [20]byte
	copy(hash[:], hashBytes)
	script, ok := i.scriptTable.GetScript(hash)
	if !ok {
		return i.fault(ErrUnknownScriptHash)
	}
	if i.ExecuteScript(script, false) {
		return StateContinue
	}
	// A nested failure that came from an opcode handler has already recorded
	// its cause in i.lastFault; it is not overwritten here. Nested failures
	// from the step, stack-depth, script-length or invocation-depth checks
	// leave i.lastFault nil, so this frame's fault log falls back to
	// ErrUnknownOpcode.
	return StateFault
}

func (i *Interpreter) execSyscall(f *frame) VMState {
	length, ok := readVarint(f)
	if !ok {
		return i.fault(ErrTruncatedScript)
	}
	nameBytes, ok := readBytes(f, int(length))
	if !ok {
		return i.fault(ErrTruncatedScript)
	}
	name := string(nameBytes)
	if !i.interop.Registered(name) {
		return i.fault(ErrUnknownInterop)
	}
	if i.interop.Invoke(name, i) {
		return StateContinue
	}
	return i.fault(ErrInteropFailed)
}
