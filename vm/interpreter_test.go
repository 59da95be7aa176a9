package vm

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func newTestInterpreter() *Interpreter {
	return NewInterpreter(StaticSignable{Message: []byte("msg")}, StandardCrypto{}, nil, nil)
}

// Scenario A: OP_1 OP_2 OP_ADD OP_HALTIFNOT computes 3, which is truthy, so
// HALTIFNOT pops it and the script ends with an empty stack.
func TestScenarioA_AddThenHaltIfNotTruthy(t *testing.T) {
	i := newTestInterpreter()
	ok := i.ExecuteScript(mustHex(t, "51529366"), false)
	require.True(t, ok)
	assert.Equal(t, 0, i.Eval().Depth())
	_, err := i.Eval().Peek(0)
	assert.Equal(t, ErrStackUnderflow, err)
}

// Scenario B: OP_0 OP_HALTIFNOT halts without popping.
func TestScenarioB_HaltIfNotFalseDoesNotPop(t *testing.T) {
	i := newTestInterpreter()
	ok := i.ExecuteScript(mustHex(t, "0066"), false)
	require.True(t, ok)
	require.Equal(t, 1, i.Eval().Depth())
	top, err := i.Eval().Peek(0)
	require.NoError(t, err)
	b, ok := top.Bytes()
	require.True(t, ok)
	assert.Empty(t, b) // OP_0 pushes a single empty byte-string slot
}

// Scenario C: OP_1 OP_1 OP_NUMEQUAL OP_HALTIFNOT halts with an empty stack.
func TestScenarioC_NumEqualThenHaltIfNot(t *testing.T) {
	i := newTestInterpreter()
	ok := i.ExecuteScript(mustHex(t, "5151a066"), false)
	require.True(t, ok)
	assert.Equal(t, 0, i.Eval().Depth())
}

// Scenario D: OP_1 OP_2 OP_SUB OP_HALTIFNOT halts, popping -1.
func TestScenarioD_SubThenHaltIfNot(t *testing.T) {
	i := newTestInterpreter()
	ok := i.ExecuteScript(mustHex(t, "51529466"), false)
	require.True(t, ok)
	assert.Equal(t, 0, i.Eval().Depth())
}

// Scenario E: an empty script halts trivially.
func TestScenarioE_EmptyScriptHalts(t *testing.T) {
	i := newTestInterpreter()
	ok := i.ExecuteScript(nil, false)
	require.True(t, ok)
	assert.Equal(t, 0, i.Eval().Depth())
}

// Scenario F: an unknown opcode faults.
func TestScenarioF_UnknownOpcodeFaults(t *testing.T) {
	i := newTestInterpreter()
	ok := i.ExecuteScript(mustHex(t, "f0"), false)
	assert.False(t, ok)
}

// Scenario G: OP_DROP on an empty stack faults.
func TestScenarioG_DropOnEmptyStackFaults(t *testing.T) {
	i := newTestInterpreter()
	ok := i.ExecuteScript(mustHex(t, "75"), false)
	assert.False(t, ok)
}

// Property 8: an opcode truncated mid-operand faults rather than
// panicking, for PUSHBYTES, PUSHDATA1, JMP, SYSCALL, and APPCALL.
func TestTruncatedReadsNeverPanicAndFault(t *testing.T) {
	scripts := map[string]string{
		"immediate push short of its declared length": "02aa",
		"pushdata1 with no length byte":                "4c",
		"pushdata1 declares more than remains":          "4cff",
		"jmp with no displacement":                      "62",
		"syscall with no name bytes":                    "6903",
		"appcall with short hash":                        "6800",
	}
	for name, s := range scripts {
		t.Run(name, func(t *testing.T) {
			i := newTestInterpreter()
			assert.NotPanics(t, func() {
				ok := i.ExecuteScript(mustHex(t, s), false)
				assert.False(t, ok)
			})
		})
	}
}

// Property 1: execution terminates after at most MaxSteps non-push
// opcodes. An infinite loop (JMP 0, back to itself) must fault once the
// step counter is exceeded rather than spin forever.
func TestStepLimitTerminatesInfiniteLoop(t *testing.T) {
	i := newTestInterpreter()
	// JMP with displacement 0 jumps back to its own opcode byte forever.
	script := append([]byte{byte(OpJmp)}, 0x00, 0x00)
	ok := i.ExecuteScript(script, false)
	assert.False(t, ok)
	assert.Equal(t, MaxSteps+1, i.steps)
}

func TestPushOnlyRejectsNonPushOpcode(t *testing.T) {
	i := newTestInterpreter()
	ok := i.ExecuteScript(mustHex(t, "5161"), true) // PUSH1 then NOP
	assert.False(t, ok)
}

func TestAppCallInvokesScriptTableAndSharesStacks(t *testing.T) {
	table := NewMapScriptTable()
	callee := mustHex(t, "936a") // ADD HALT
	crypto := StandardCrypto{}
	hash := crypto.Hash160(callee)
	table.Put(hash, callee)

	i := NewInterpreter(StaticSignable{}, crypto, table, nil)
	var script []byte
	script = append(script, byte(OpPush1), byte(OpPush2))
	script = append(script, byte(OpAppCall))
	script = append(script, hash[:]...)
	script = append(script, byte(OpHalt))

	ok := i.ExecuteScript(script, false)
	require.True(t, ok)
	top, err := i.Eval().Peek(0)
	require.NoError(t, err)
	v, ok := top.Int()
	require.True(t, ok)
	assert.Equal(t, big.NewInt(3), v)
}

func TestAppCallUnknownHashFaults(t *testing.T) {
	table := NewMapScriptTable()
	i := NewInterpreter(StaticSignable{}, StandardCrypto{}, table, nil)
	script := append([]byte{byte(OpAppCall)}, make([]byte, 20)...)
	ok := i.ExecuteScript(script, false)
	assert.False(t, ok)
}

func TestAppCallWithoutScriptTableFaults(t *testing.T) {
	i := NewInterpreter(StaticSignable{}, StandardCrypto{}, nil, nil)
	script := append([]byte{byte(OpAppCall)}, make([]byte, 20)...)
	ok := i.ExecuteScript(script, false)
	assert.False(t, ok)
}

func TestSyscallInvokesInteropBuiltins(t *testing.T) {
	i := newTestInterpreter()
	name := "System.ScriptEngine.GetExecutingScriptHash"
	script := append([]byte{byte(OpSyscall), byte(len(name))}, []byte(name)...)
	script = append(script, byte(OpHalt))
	ok := i.ExecuteScript(script, false)
	require.True(t, ok)
	top, err := i.Eval().Peek(0)
	require.NoError(t, err)
	b, ok := top.Bytes()
	require.True(t, ok)
	expected := StandardCrypto{}.Hash160(script)
	assert.Equal(t, expected[:], b)
}

func TestSyscallUnregisteredMethodFaults(t *testing.T) {
	i := newTestInterpreter()
	name := "No.Such.Method"
	script := append([]byte{byte(OpSyscall), byte(len(name))}, []byte(name)...)
	ok := i.ExecuteScript(script, false)
	assert.False(t, ok)
}

func TestRetPopsValueThenPositionAndJumps(t *testing.T) {
	i := newTestInterpreter()
	// Stack order for RET is address pushed first, value pushed last: RET
	// pops the value (top), then the address (next), then jumps to it.
	// PUSH3 pushes address 3 (the index of the trailing HALT byte).
	script := []byte{byte(OpPush3), byte(OpPush1), byte(OpRet), byte(OpHalt)}
	ok := i.ExecuteScript(script, false)
	require.True(t, ok)
	top, err := i.Eval().Peek(0)
	require.NoError(t, err)
	v, ok := top.Int()
	require.True(t, ok)
	assert.Equal(t, big.NewInt(1), v)
}

func TestRetOutOfRangePositionFaults(t *testing.T) {
	i := newTestInterpreter()
	// Address 16 exceeds the 3-byte script; RET must fault on the bounds
	// check rather than jump past the end.
	script := []byte{byte(OpPush16), byte(OpPush1), byte(OpRet)}
	ok := i.ExecuteScript(script, false)
	assert.False(t, ok)
}
