package vm

import "encoding/binary"

// frame is one entry in the nested-invocation frame stack: {script, pc}.
// The evaluation stack lives on the interpreter, not the frame, since
// APPCALL shares it across nested invocations. callerScript is empty for
// the entry frame and is the invoking frame's script for everything
// APPCALL pushes, used to answer GetCallingScriptHash.
type frame struct {
	script       []byte
	pc           int
	callerScript []byte
}

// Interpreter is the VM. One Interpreter is owned exclusively by its
// caller for the duration of a single top-level ExecuteScript call; it is
// not safe for concurrent reuse across calls.
type Interpreter struct {
	eval *rtStack
	alt  *rtStack

	steps int

	frames []*frame

	crypto      Crypto
	signable    Signable
	scriptTable ScriptTable
	interop     *InteropDispatch
	logger      *execLogger

	// lastFault holds the specific cause of the most recent StateFault
	// return, set via fault() so run() can log the real reason instead of
	// a bare FAULT.
	lastFault error
}

// fault records err as the cause of this opcode's failure and returns
// StateFault. Every family handler that can fail in more than one way
// should return through here rather than a bare StateFault, so run()'s
// fault log names the actual cause.
func (i *Interpreter) fault(err error) VMState {
	i.lastFault = err
	return StateFault
}

// NewInterpreter builds an Interpreter ready to execute scripts. scriptTable
// and interop may be nil; APPCALL faults with no scriptTable, and SYSCALL
// always has at least the four built-in System.ScriptEngine.* handlers
// because NewInteropDispatch pre-registers them regardless of caller input.
func NewInterpreter(signable Signable, crypto Crypto, scriptTable ScriptTable, interop *InteropDispatch) *Interpreter {
	if interop == nil {
		interop = NewInteropDispatch()
	}
	return &Interpreter{
		eval:        &rtStack{},
		alt:         &rtStack{},
		crypto:      crypto,
		signable:    signable,
		scriptTable: scriptTable,
		interop:     interop,
		logger:      newNopLogger(),
	}
}

// SetLogger installs a structured execution tracer.
func (i *Interpreter) SetLogger(l *execLogger) {
	if l != nil {
		i.logger = l
	}
}

// Eval exposes the evaluation stack so interop handlers can read/mutate it.
func (i *Interpreter) Eval() *rtStack { return i.eval }

// Alt exposes the alt stack, symmetric with Eval.
func (i *Interpreter) Alt() *rtStack { return i.alt }

// Signable exposes the bound Signable for interop handlers that need the
// message container (e.g. a richer GetScriptContainer than the default).
func (i *Interpreter) Signable() Signable { return i.signable }

func (i *Interpreter) currentFrame() *frame {
	return i.frames[len(i.frames)-1]
}

// ExecuteScript is the VM's entry point. push_only restricts the
// script to pure pusher opcodes; any other opcode faults immediately. A
// FAULT anywhere returns false; reaching HALT, or simply running off the
// end of the script, returns true.
func (i *Interpreter) ExecuteScript(script []byte, pushOnly bool) bool {
	if len(script) > MaxScriptLength {
		i.logger.fault(len(i.frames), OpCode(0), ErrScriptTooLong, dumpStackTop(i.eval))
		return false
	}
	if len(i.frames) >= MaxInvocationDepth {
		i.logger.fault(len(i.frames), OpCode(0), ErrInvocationTooDeep, dumpStackTop(i.eval))
		return false
	}

	f := &frame{script: script}
	if len(i.frames) > 0 {
		f.callerScript = i.currentFrame().script
	}
	i.frames = append(i.frames, f)
	defer func() { i.frames = i.frames[:len(i.frames)-1] }()

	state := i.run(f, pushOnly)
	return state == StateHalt
}

// run decodes and executes opcodes from f until a terminal state is
// reached or the script is exhausted.
func (i *Interpreter) run(f *frame, pushOnly bool) VMState {
	for {
		if f.pc >= len(f.script) {
			return StateHalt
		}

		pcBefore := f.pc
		op := OpCode(f.script[f.pc])
		f.pc++

		if pushOnly && !op.IsPush() {
			i.logger.fault(len(i.frames), op, ErrPushOnlyViolation, dumpStackTop(i.eval))
			return StateFault
		}

		if !op.IsPush() {
			i.steps++
			if i.steps > MaxSteps {
				i.logger.fault(len(i.frames), op, ErrStepLimitExceeded, dumpStackTop(i.eval))
				return StateFault
			}
		}

		i.lastFault = nil
		state := i.executeOp(f, op)

		if i.eval.Depth()+i.alt.Depth() > MaxStackDepth {
			i.logger.fault(len(i.frames), op, ErrStackOverflow, dumpStackTop(i.eval))
			return StateFault
		}

		if state == StateFault {
			reason := i.lastFault
			if reason == nil {
				reason = ErrUnknownOpcode
			}
			i.logger.fault(len(i.frames), op, reason, dumpStackTop(i.eval))
			return state
		}

		i.logger.trace(len(i.frames), op, pcBefore, f.pc, i.eval.Depth(), i.alt.Depth(), i.steps)

		if state != StateContinue {
			return state
		}
	}
}

// executeOp dispatches a single decoded opcode to its family handler. Push
// opcodes are handled inline since their "handler" is just a byte read.
func (i *Interpreter) executeOp(f *frame, op OpCode) VMState {
	switch {
	case op == OpPush0:
		i.eval.Push(NewBytesItem(nil))
		return StateContinue
	case op.IsImmediateBytePush():
		return i.execPushBytes(f, int(op))
	case op == OpPushData1:
		return i.execPushData(f, 1)
	case op == OpPushData2:
		return i.execPushData(f, 2)
	case op == OpPushData4:
		return i.execPushData(f, 4)
	case op == OpPush1Negate:
		i.eval.Push(NewInt64Item(-1))
		return StateContinue
	case op >= OpPush1 && op <= OpPush16:
		i.eval.Push(NewInt64Item(int64(op) - int64(OpPush1) + 1))
		return StateContinue
	}

	if fault := i.execControl(f, op); fault != stateNotHandled {
		return fault
	}
	if fault := i.execStack(op); fault != stateNotHandled {
		return fault
	}
	if fault := i.execSplice(op); fault != stateNotHandled {
		return fault
	}
	if fault := i.execBitwise(op); fault != stateNotHandled {
		return fault
	}
	if fault := i.execArithmetic(op); fault != stateNotHandled {
		return fault
	}
	if fault := i.execCrypto(op); fault != stateNotHandled {
		return fault
	}
	if fault := i.execCollection(op); fault != stateNotHandled {
		return fault
	}

	return i.fault(ErrUnknownOpcode)
}

// stateNotHandled is a sentinel returned by each family dispatcher when the
// opcode does not belong to that family, so executeOp can fall through to
// the next family table without a 90-case switch in one function. It is
// never returned from executeOp itself.
const stateNotHandled VMState = -1

func (i *Interpreter) execPushBytes(f *frame, n int) VMState {
	data, ok := readBytes(f, n)
	if !ok {
		return i.fault(ErrTruncatedScript)
	}
	i.eval.Push(NewBytesItem(data))
	return StateContinue
}

func (i *Interpreter) execPushData(f *frame, lenBytes int) VMState {
	n, ok := readUintLE(f, lenBytes)
	if !ok {
		return i.fault(ErrTruncatedScript)
	}
	if n > MaxItemLength {
		return i.fault(ErrItemTooLong)
	}
	data, ok := readBytes(f, int(n))
	if !ok {
		return i.fault(ErrTruncatedScript)
	}
	i.eval.Push(NewBytesItem(data))
	return StateContinue
}

// --- fallible byte-stream reads: truncated bytecode faults rather than
// propagating an error, expressed as (value, ok) returns instead of
// panics or exceptions ---

func readByte(f *frame) (byte, bool) {
	if f.pc >= len(f.script) {
		return 0, false
	}
	b := f.script[f.pc]
	f.pc++
	return b, true
}

func readBytes(f *frame, n int) ([]byte, bool) {
	if n < 0 || f.pc+n > len(f.script) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, f.script[f.pc:f.pc+n])
	f.pc += n
	return out, true
}

func readUintLE(f *frame, n int) (uint64, bool) {
	raw, ok := readBytes(f, n)
	if !ok {
		return 0, false
	}
	switch n {
	case 1:
		return uint64(raw[0]), true
	case 2:
		return uint64(binary.LittleEndian.Uint16(raw)), true
	case 4:
		return uint64(binary.LittleEndian.Uint32(raw)), true
	case 8:
		return binary.LittleEndian.Uint64(raw), true
	}
	return 0, false
}

func readInt16LE(f *frame) (int16, bool) {
	raw, ok := readBytes(f, 2)
	if !ok {
		return 0, false
	}
	return int16(binary.LittleEndian.Uint16(raw)), true
}

// readVarint decodes the SYSCALL length prefix: <0xfd literal, 0xfd+u16,
// 0xfe+u32, 0xff+u64.
func readVarint(f *frame) (uint64, bool) {
	b, ok := readByte(f)
	if !ok {
		return 0, false
	}
	switch {
	case b < 0xfd:
		return uint64(b), true
	case b == 0xfd:
		return readUintLE(f, 2)
	case b == 0xfe:
		return readUintLE(f, 4)
	default:
		return readUintLE(f, 8)
	}
}
