package vm

// Execution limits enforced by the interpreter. The rest guard against
// pathological scripts the step counter alone would not catch (a single
// opcode pushing an enormous byte-string, or an APPCALL chain that never
// exhausts MaxSteps because each frame resets nothing that counts against
// it).
const (
	// MaxSteps bounds the number of non-push opcodes a single ExecuteScript
	// call may execute. CHECKMULTISIG additionally charges the public-key
	// count against this counter before it runs.
	MaxSteps = 1200

	// MaxScriptLength bounds the size of a script handed to ExecuteScript.
	MaxScriptLength = 1 << 16

	// MaxItemLength bounds the length of any single byte-string element.
	MaxItemLength = 1 << 20

	// MaxStackDepth bounds the combined depth of the evaluation and alt
	// stacks at the end of any opcode.
	MaxStackDepth = 2 * 1024

	// MaxInvocationDepth bounds nested APPCALL frames.
	MaxInvocationDepth = 1024

	// scriptHashLength is the fixed size of a script hash as used by
	// APPCALL and the interop GetXxxScriptHash handlers.
	scriptHashLength = 20
)
