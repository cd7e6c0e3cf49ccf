// compiler_amd64.go - lowers a discovered Block into native x86-64 code.

/*
compiler_amd64.go is the JIT core proper. Compile walks a Block's payload
string exactly once, emitting the short runtime-call sequence each opcode
lowers to, then seals the result behind jitmem into a CompiledBlock the
dispatch loop can invoke directly.

Frame layout is one 16-byte slot per block: after the standard
push-rbp/mov-rbp,rsp prologue, [rbp-8] holds the runtime-state pointer
(stashed once, since every ABI call clobbers the registers it arrived in)
and [rbp-16] is scratch used only by the two-pop sequences of the binary
operators, `/`/`%`, and `\` (swap). Every call site reloads rdi from [rbp-8]
immediately before the call; nothing here assumes a callee preserves
argument registers across a call.

Binary operators share one stash sequence: pop into rax (this is `a`, the
top of stack), stash it at [rbp-16], pop into rax again (this is `b`,
beneath it), reload rsi from the stash — leaving rax=b, rsi=a, so
`b <op> a` is one instruction against (rax, rsi).
*/

package main

import (
	"fmt"
	"os"

	"github.com/toroidalvm/befunge93/internal/jitmem"
)

// CompiledBlock owns one executable memory region and the entry point into
// it. Freeing the region invalidates Entry; the dispatch loop never frees a
// block it is currently inside (see dispatch.go).
type CompiledBlock struct {
	region *jitmem.Region
	entry  uintptr
}

// Entry returns the block's callable address.
func (cb *CompiledBlock) Entry() uintptr { return cb.entry }

// Free releases the block's executable mapping. Must not be called while
// the block is on the call stack.
func (cb *CompiledBlock) Free() error { return cb.region.Free() }

// Compiler translates Blocks into CompiledBlocks. It holds no per-block
// state; the only thing it carries across calls is the resolved set of ABI
// trampoline addresses, each of which is fixed for the life of the process.
type Compiler struct {
	abi abiEntries
}

// NewCompiler resolves the ABI trampoline addresses once and returns a
// Compiler ready to translate blocks.
func NewCompiler() *Compiler {
	return &Compiler{abi: newAbiEntries()}
}

// Compile emits x86-64 machine code for b and returns an owned, executable
// CompiledBlock. The only error path is the underlying executable-memory
// allocator; opcode lowering itself cannot fail because the discoverer
// never hands the compiler an opcode outside the lowerable set.
func (c *Compiler) Compile(b Block) (*CompiledBlock, error) {
	var a asmBuf

	a.pushRBP()
	a.movRegReg(regBP, regSP)
	a.subRSPImm8(16)
	a.movMemRBPReg(-8, regDI) // stash rt pointer

	bodyStart := a.len()

	stringMode := false
	for i := 0; i < len(b.Code); i++ {
		if !c.lower(&a, b.Code[i], &stringMode) {
			break
		}
	}

	// Epilogue: set_pc(exit), set_delta(exit).
	c.callSetXY(&a, c.abi.setPC, b.ExitPC.X, b.ExitPC.Y)
	c.callSetXY(&a, c.abi.setDelta, b.ExitDelta.X, b.ExitDelta.Y)

	if b.Loops {
		off := a.jmpRel32()
		a.patchRel32(off, a.len(), bodyStart)
	} else {
		var ret byte
		if b.Terminates {
			ret = 1
		}
		a.movALImm8(ret)
		a.addRSPImm8(16)
		a.popRBP()
		a.ret()
	}

	region, err := jitmem.Alloc(a.len())
	if err != nil {
		return nil, fmt.Errorf("compiler: allocate executable memory: %w", err)
	}
	if err := region.Write(a.buf); err != nil {
		return nil, fmt.Errorf("compiler: write code: %w", err)
	}
	if err := region.Freeze(); err != nil {
		return nil, fmt.Errorf("compiler: freeze region: %w", err)
	}
	return &CompiledBlock{region: region, entry: region.Entry()}, nil
}

// lower appends the instruction sequence for one opcode and reports
// whether emission should continue. Opcodes the discoverer never hands us
// (`_ | ? p @` as structure, not payload) have no case and fall through to
// the default diagnostic, which truncates the block at that point.
//
// stringMode is a compile-time-only flag: while set, every byte except
// the closing `"` lowers to a literal push(c), including digits,
// operators, and space — none of it is executed as an opcode. The flag
// never exists at run time; it only steers which native instructions get
// emitted for this one block.
func (c *Compiler) lower(a *asmBuf, op byte, stringMode *bool) bool {
	if *stringMode {
		if op == '"' {
			*stringMode = false
			return true
		}
		c.callPush(a, int64(op))
		return true
	}
	if op == '"' {
		*stringMode = true
		return true
	}

	switch {
	case op >= '0' && op <= '9':
		c.callPush(a, int64(op-'0'))
	case op == '+':
		c.binOp(a, func(a *asmBuf) { a.addRegReg(regAX, regSI) })
	case op == '-':
		c.binOp(a, func(a *asmBuf) { a.subRegReg(regAX, regSI) })
	case op == '*':
		c.binOp(a, func(a *asmBuf) { a.imulRegReg(regAX, regSI) })
	case op == '/':
		c.divMod(a, false)
	case op == '%':
		c.divMod(a, true)
	case op == '!':
		c.callPop(a)
		a.testRegReg(regAX, regAX)
		a.setZ()
		a.movzxALtoRAX()
		c.pushRAX(a)
	case op == '`':
		c.binOp(a, func(a *asmBuf) {
			a.cmpRegReg(regAX, regSI)
			a.setG()
			a.movzxALtoRAX()
		})
	case op == ':':
		c.callPeek(a)
		c.pushRAX(a)
	case op == '\\':
		// pop a, pop b, push a, push b.
		c.callPop(a)
		a.movMemRBPReg(-16, regAX) // stash a
		c.callPop(a)               // rax = b
		a.movRegMemRBP(regSI, -16) // rsi = a
		a.movMemRBPReg(-16, regAX) // stash b (reuse slot)
		c.callPushReg(a, regSI)    // push a
		a.movRegMemRBP(regSI, -16)
		c.callPushReg(a, regSI) // push b
	case op == '$':
		c.callPop(a)
	case op == '.':
		c.callNoArg(a, c.abi.outputNumber)
	case op == ',':
		c.callNoArg(a, c.abi.outputChar)
	case op == '&':
		c.callNoArg(a, c.abi.inputNumber)
	case op == '~':
		c.callNoArg(a, c.abi.inputChar)
	case op == 'g':
		c.callNoArg(a, c.abi.get)
	default:
		// Unreachable given the discoverer's filtering: every byte it
		// forwards outside string mode is one of the opcodes above.
		fmt.Fprintf(os.Stderr, "befunge93: jit: unknown opcode %q, truncating block\n", op)
		return false
	}
	return true
}

// callPush emits push(rt, v) for a compile-time-known immediate v.
func (c *Compiler) callPush(a *asmBuf, v int64) {
	a.movRegImm64(regSI, uint64(v))
	a.movRegMemRBP(regDI, -8)
	a.callAbs(c.abi.push)
}

// pushRAX emits push(rt, rax) — the result currently sitting in rax.
func (c *Compiler) pushRAX(a *asmBuf) {
	a.movRegReg(regSI, regAX)
	a.movRegMemRBP(regDI, -8)
	a.callAbs(c.abi.push)
}

// callPushReg emits push(rt, src) for a value already sitting in src.
func (c *Compiler) callPushReg(a *asmBuf, src byte) {
	if src != regSI {
		a.movRegReg(regSI, src)
	}
	a.movRegMemRBP(regDI, -8)
	a.callAbs(c.abi.push)
}

// callPop emits pop(rt) -> rax.
func (c *Compiler) callPop(a *asmBuf) {
	a.movRegMemRBP(regDI, -8)
	a.callAbs(c.abi.pop)
}

// callPeek emits peek(rt) -> rax.
func (c *Compiler) callPeek(a *asmBuf) {
	a.movRegMemRBP(regDI, -8)
	a.callAbs(c.abi.peek)
}

// callNoArg emits a call to an ABI entry that takes only the runtime
// pointer and communicates everything else (pops, pushes) internally —
// output_number, output_char, input_number, input_char, get.
func (c *Compiler) callNoArg(a *asmBuf, entry uintptr) {
	a.movRegMemRBP(regDI, -8)
	a.callAbs(entry)
}

// callSetXY emits set_pc(rt, x, y) / set_delta(rt, x, y) with compile-time
// constant coordinates taken from the block's recorded exit state.
func (c *Compiler) callSetXY(a *asmBuf, entry uintptr, x, y int) {
	a.movRegImm64(regSI, uint64(int64(x)))
	a.movRegImm64(regDX, uint64(int64(y)))
	a.movRegMemRBP(regDI, -8)
	a.callAbs(entry)
}

// binOp emits the pop-a/pop-b/reload-rsi sequence common to every binary
// arithmetic and relational opcode, then the caller-supplied instruction
// computing into rax, then a push of the result.
func (c *Compiler) binOp(a *asmBuf, op func(*asmBuf)) {
	c.callPop(a)                // rax = a (top)
	a.movMemRBPReg(-16, regAX)  // stash a
	c.callPop(a)                // rax = b (second)
	a.movRegMemRBP(regSI, -16)  // rsi = a
	op(a)                       // rax = f(rax=b, rsi=a)
	c.pushRAX(a)
}

// divMod emits `/` (mod=false) or `%` (mod=true). Division or modulus by
// zero pushes 0 rather than aborting the process.
func (c *Compiler) divMod(a *asmBuf, mod bool) {
	c.callPop(a)               // rax = a (divisor)
	a.movMemRBPReg(-16, regAX) // stash a
	c.callPop(a)                // rax = b (dividend)
	a.movRegMemRBP(regSI, -16) // rsi = a (divisor)

	a.testRegReg(regSI, regSI)
	zeroOff := a.jzRel32()

	a.cqo()
	a.idivReg(regSI)
	if mod {
		a.movRegReg(regAX, regDX) // remainder
	}
	doneOff := a.jmpRel32()

	zeroTarget := a.len()
	a.xorEaxEax()

	doneTarget := a.len()
	a.patchRel32(zeroOff, zeroOff+4, zeroTarget)
	a.patchRel32(doneOff, doneOff+4, doneTarget)

	c.pushRAX(a)
}
