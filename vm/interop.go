package vm

// InteropFunc is a host callback invoked by SYSCALL. It receives the
// Interpreter so it can read/mutate the evaluation and alt stacks.
type InteropFunc func(i *Interpreter) bool

// InteropDispatch is a name-keyed registry of InteropFunc handlers. Unlike
// a gas-metered interop table, calls here are priced uniformly by the
// fixed step counter rather than a per-method price.
type InteropDispatch struct {
	handlers map[string]InteropFunc
}

// NewInteropDispatch returns a dispatch table with the four reserved
// System.ScriptEngine.* methods pre-registered.
func NewInteropDispatch() *InteropDispatch {
	d := &InteropDispatch{handlers: make(map[string]InteropFunc)}
	d.handlers[interopGetScriptContainer] = sysGetScriptContainer
	d.handlers[interopGetExecutingScriptHash] = sysGetExecutingScriptHash
	d.handlers[interopGetCallingScriptHash] = sysGetCallingScriptHash
	d.handlers[interopGetEntryScriptHash] = sysGetEntryScriptHash
	return d
}

// Register adds a new handler under name. Registration is idempotent:
// re-registering an existing name is a no-op that reports false.
func (d *InteropDispatch) Register(name string, fn InteropFunc) bool {
	if _, exists := d.handlers[name]; exists {
		return false
	}
	d.handlers[name] = fn
	return true
}

// Invoke dispatches to the handler registered under name. An unknown name
// reports false, which SYSCALL's handler turns into a FAULT.
func (d *InteropDispatch) Invoke(name string, i *Interpreter) bool {
	fn, ok := d.handlers[name]
	if !ok {
		return false
	}
	return fn(i)
}

// Registered reports whether name has a handler, letting SYSCALL
// distinguish an unregistered method from a registered one whose handler
// ran and returned false.
func (d *InteropDispatch) Registered(name string) bool {
	_, ok := d.handlers[name]
	return ok
}

const (
	interopGetScriptContainer     = "System.ScriptEngine.GetScriptContainer"
	interopGetExecutingScriptHash = "System.ScriptEngine.GetExecutingScriptHash"
	interopGetCallingScriptHash   = "System.ScriptEngine.GetCallingScriptHash"
	interopGetEntryScriptHash     = "System.ScriptEngine.GetEntryScriptHash"
)

// newScriptContainerItem represents the current Signable as an opaque
// handle: an empty array-kind item. Nothing ever needs to pull the
// Signable back off the stack (only CHECKSIG/CHECKMULTISIG consult it,
// and they go through the Interpreter directly, not through a stack
// item), so the handle only needs to be inert under every view
// conversion, which an empty array already is.
func newScriptContainerItem() *StackItem {
	return NewArrayItem(nil)
}

func sysGetScriptContainer(i *Interpreter) bool {
	i.eval.Push(newScriptContainerItem())
	return true
}

func sysGetExecutingScriptHash(i *Interpreter) bool {
	frame := i.currentFrame()
	hash := i.crypto.Hash160(frame.script)
	i.eval.Push(NewBytesItem(hash[:]))
	return true
}

func sysGetCallingScriptHash(i *Interpreter) bool {
	frame := i.currentFrame()
	if frame.callerScript == nil {
		i.eval.Push(NewBytesItem(nil))
		return true
	}
	hash := i.crypto.Hash160(frame.callerScript)
	i.eval.Push(NewBytesItem(hash[:]))
	return true
}

func sysGetEntryScriptHash(i *Interpreter) bool {
	entry := i.frames[0].script
	hash := i.crypto.Hash160(entry)
	i.eval.Push(NewBytesItem(hash[:]))
	return true
}
