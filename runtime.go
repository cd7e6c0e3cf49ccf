// runtime.go - the mutable program state compiled code operates on.

/*
runtime.go implements Runtime, the record of everything a running Befunge-93
program can mutate: the operand stack, the instruction pointer, the delta,
the program grid, and the I/O capability. Its exported Abi* methods are the
fixed contract between the engine and its own emitted machine code — the
only things a compiled block is ever allowed to call.

Technical Details:

    The stack is a plain growable []int64. Popping or peeking an empty
    stack returns 0 rather than panicking — there is no recoverable-error
    path inside a running program: a Befunge-93 program that underflows
    simply keeps working with zeros, it does not crash the engine.

    AbiGet/AbiPut perform the bounds check Space itself does not: out-of-range
    reads yield 0 and out-of-range writes are dropped, so the grid's own
    unchecked indexing is never reachable from program-supplied
    coordinates.

    AbiSetPC/AbiSetDelta take explicit coordinates rather than a Position
    value because emitted machine code passes them as two plain integer
    register arguments under the System V convention (no struct-by-value
    marshalling across the JIT boundary).

The dispatch loop uses these same entry points for the stack and grid work
of the opcodes it interprets itself (AbiPop for `_ |`, AbiPut for `p`), so
compiled and interpreted execution observe one set of stack and grid
semantics; it assigns pc and delta directly rather than through
AbiSetPC/AbiSetDelta.
*/

package main

// Runtime is the full mutable state of one running Befunge-93 program.
type Runtime struct {
	stack []int64
	space *Space
	pc    Position
	delta Position
	io    IO
}

// NewRuntime constructs a Runtime over the given grid and I/O binding. The
// instruction pointer starts at (0,0); the delta starts pointed east.
func NewRuntime(space *Space, io IO) *Runtime {
	return &Runtime{
		space: space,
		pc:    Position{0, 0},
		delta: East,
		io:    io,
	}
}

// AbiPush appends v to the stack.
func (rt *Runtime) AbiPush(v int64) {
	rt.stack = append(rt.stack, v)
}

// AbiPop removes and returns the top of the stack, or 0 if it is empty.
func (rt *Runtime) AbiPop() int64 {
	n := len(rt.stack)
	if n == 0 {
		return 0
	}
	v := rt.stack[n-1]
	rt.stack = rt.stack[:n-1]
	return v
}

// AbiPeek returns the top of the stack without removing it, or 0 if empty.
func (rt *Runtime) AbiPeek() int64 {
	n := len(rt.stack)
	if n == 0 {
		return 0
	}
	return rt.stack[n-1]
}

// AbiGet pops y then x and pushes grid[x,y] as an integer, or 0 if the
// coordinates fall outside the grid.
func (rt *Runtime) AbiGet() {
	y := rt.AbiPop()
	x := rt.AbiPop()
	if InBounds(int(x), int(y)) {
		rt.AbiPush(int64(rt.space.Get(int(x), int(y))))
		return
	}
	rt.AbiPush(0)
}

// AbiPut pops y, then x, then v; if (x,y) is in range it writes v&0xFF to
// the grid. Out-of-range writes are silently dropped.
func (rt *Runtime) AbiPut() {
	y := rt.AbiPop()
	x := rt.AbiPop()
	v := rt.AbiPop()
	if InBounds(int(x), int(y)) {
		rt.space.Set(int(x), int(y), byte(v&0xFF))
	}
}

// AbiSetPC assigns the instruction pointer.
func (rt *Runtime) AbiSetPC(x, y int64) {
	rt.pc = Position{int(x), int(y)}
}

// AbiSetDelta assigns the delta.
func (rt *Runtime) AbiSetDelta(x, y int64) {
	rt.delta = Position{int(x), int(y)}
}

// AbiInputChar reads one byte from the I/O source and pushes it, or pushes
// -1 on EOF.
func (rt *Runtime) AbiInputChar() {
	b, ok := rt.io.InputChar()
	if !ok {
		rt.AbiPush(-1)
		return
	}
	rt.AbiPush(int64(b))
}

// AbiInputNumber reads a whole line and pushes the parsed signed decimal
// integer. Parse failure is fatal; the IO implementation itself
// terminates the process or panics on malformed input.
func (rt *Runtime) AbiInputNumber() {
	rt.AbiPush(rt.io.InputNumber())
}

// AbiOutputChar pops a value and writes its low byte.
func (rt *Runtime) AbiOutputChar() {
	rt.io.OutputChar(byte(rt.AbiPop() & 0xFF))
}

// AbiOutputNumber pops a value and writes its decimal representation.
func (rt *Runtime) AbiOutputNumber() {
	rt.io.OutputNumber(rt.AbiPop())
}

// Cell reads the byte at (x, y) directly, bypassing the stack — used by the
// dispatch loop, which already knows its coordinates are in range because
// they came from a toroidally-wrapped Position.
func (rt *Runtime) Cell(p Position) byte {
	return rt.space.Get(p.X, p.Y)
}
