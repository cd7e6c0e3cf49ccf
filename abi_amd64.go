// abi_amd64.go - bridges between compiled machine code's calling
// convention and the Go functions that actually implement runtime
// primitives.

/*
Emitted basic blocks are raw x86-64 machine code living in an mmap'd page
(see internal/jitmem); they cannot call an ordinary Go function, because Go
functions expect arguments in Go's own ABI (stack-based ABI0, or the
register-based ABIInternal the compiler otherwise prefers) while emitted
code uses the System V AMD64 C calling convention (first two integer args
in rdi/rsi, third in rdx, return in rax).

The functions declared below with no body (abi*Entry) are implemented in
abi_amd64.s. Each is a small hand-written trampoline: its *own* incoming
registers are exactly the System V arguments a compiled block passed it
(nothing special has to happen to receive them — x86-64 doesn't care who
the caller is), and its job is only to copy those register values onto the
stack in the layout Go's stable, assembly-callable ABI0 convention expects,
then CALL the matching jit* wrapper below. Go has generated an ABI0-callable
entry point for every ordinary Go function since the register-based
ABIInternal became the default (Go 1.17) specifically so hand-written
assembly can still call into Go code this way — this is the same mechanism
the runtime's own .s files use to call back into runtime package Go code.

invokeBlock runs the reverse direction: the dispatch loop, using Go's own
calling convention, wants to jump into a compiled block expecting the
System V convention (runtime-state pointer in rdi, nothing else). It is a
second tiny trampoline, because that translation needs the same one-way
door in reverse.
*/

package main

import "reflect"

//go:noescape
func abiPushEntry()

//go:noescape
func abiPopEntry()

//go:noescape
func abiPeekEntry()

//go:noescape
func abiGetEntry()

//go:noescape
func abiPutEntry()

//go:noescape
func abiSetPCEntry()

//go:noescape
func abiSetDeltaEntry()

//go:noescape
func abiInputCharEntry()

//go:noescape
func abiInputNumberEntry()

//go:noescape
func abiOutputCharEntry()

//go:noescape
func abiOutputNumberEntry()

// invokeBlock calls the compiled block at entry, passing rt as the sole
// System V argument, and reports whether the block signalled halt.
func invokeBlock(entry uintptr, rt *Runtime) bool

func jitPush(rt *Runtime, v int64)        { rt.AbiPush(v) }
func jitPop(rt *Runtime) int64            { return rt.AbiPop() }
func jitPeek(rt *Runtime) int64           { return rt.AbiPeek() }
func jitGet(rt *Runtime)                  { rt.AbiGet() }
func jitPut(rt *Runtime)                  { rt.AbiPut() }
func jitSetPC(rt *Runtime, x, y int64)    { rt.AbiSetPC(x, y) }
func jitSetDelta(rt *Runtime, x, y int64) { rt.AbiSetDelta(x, y) }
func jitInputChar(rt *Runtime)            { rt.AbiInputChar() }
func jitInputNumber(rt *Runtime)          { rt.AbiInputNumber() }
func jitOutputChar(rt *Runtime)           { rt.AbiOutputChar() }
func jitOutputNumber(rt *Runtime)         { rt.AbiOutputNumber() }

// abiEntries is the fixed set of addresses the compiler is permitted to
// emit CALL instructions against, resolved once at startup.
type abiEntries struct {
	push, pop, peek, get, put uintptr
	setPC, setDelta           uintptr
	inputChar, inputNumber    uintptr
	outputChar, outputNumber  uintptr
}

// newAbiEntries resolves every trampoline's real code address. entryPC is
// exact here (not the classic fragile "funcPC" trick) because each
// function is a plain top-level declaration with no Go body for the
// compiler to inline away.
func newAbiEntries() abiEntries {
	return abiEntries{
		push:         entryPC(abiPushEntry),
		pop:          entryPC(abiPopEntry),
		peek:         entryPC(abiPeekEntry),
		get:          entryPC(abiGetEntry),
		put:          entryPC(abiPutEntry),
		setPC:        entryPC(abiSetPCEntry),
		setDelta:     entryPC(abiSetDeltaEntry),
		inputChar:    entryPC(abiInputCharEntry),
		inputNumber:  entryPC(abiInputNumberEntry),
		outputChar:   entryPC(abiOutputCharEntry),
		outputNumber: entryPC(abiOutputNumberEntry),
	}
}

func entryPC(fn func()) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
