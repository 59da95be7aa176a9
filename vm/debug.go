package vm

import "github.com/davecgh/go-spew/spew"

// maxFaultDumpDepth bounds how much of the evaluation stack a fault dump
// renders: a crafted script can grow the stack up to MaxStackDepth entries,
// and a full spew.Sdump of that would make the fault log itself a resource
// the script author controls. Only the top few items are useful for
// diagnosing why an opcode faulted anyway.
const maxFaultDumpDepth = 8

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// dumpStackTop renders the top of s for inclusion in a fault log record,
// the way btcsuite-lineage engines spew-dump stack state when a script
// fails unexpectedly rather than leaving an operator to guess from a bare
// error string.
func dumpStackTop(s *rtStack) string {
	depth := s.Depth()
	n := depth
	if n > maxFaultDumpDepth {
		n = maxFaultDumpDepth
	}
	top := make([]*StackItem, n)
	for i := 0; i < n; i++ {
		item, err := s.Peek(i)
		if err != nil {
			break
		}
		top[i] = item
	}
	return spewConfig.Sdump(top)
}
