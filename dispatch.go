// dispatch.go - the outer loop that drives a Befunge-93 program to halt.

/*
dispatch.go implements Engine, the outer dispatch loop: it owns the block
cache, interprets the four opcodes that can change control flow or
self-modify the program (`_ | ? p`), and hands everything else off to a
compiled native block. The shape is an ordinary CPU runner's
fetch/classify loop with "compile and call a native block" substituted for
"decode and execute one instruction" as the default case.

Cache invalidation is total and unconditional: any `p` clears the entire
block cache before the write lands. Because `p` is only ever reached by
this interpreted switch — never by anything a compiled block can execute,
since the discoverer always ends a block one cell before a `p` — the
cache can never be cleared while a compiled block is on the call stack.
That is the property that makes freeing every mapping on `p` sound.
*/

package main

import (
	"math/rand/v2"
	"time"
)

// Engine owns one running Befunge-93 program: its runtime state, its JIT
// compiler, and the cache of blocks compiled so far.
type Engine struct {
	rt       *Runtime
	compiler *Compiler
	cache    map[Position]*CompiledBlock
	rng      *rand.Rand
}

// NewEngine constructs an Engine over the given grid and I/O binding, with a
// time-seeded PRNG driving `?`. Use NewEngineWithRand for deterministic
// tests.
func NewEngine(space *Space, io IO) *Engine {
	seed := uint64(time.Now().UnixNano())
	return NewEngineWithRand(space, io, rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)))
}

// NewEngineWithRand constructs an Engine with an explicit, seedable PRNG
// so test scenarios exercising `?` can pin a seed.
func NewEngineWithRand(space *Space, io IO, rng *rand.Rand) *Engine {
	return &Engine{
		rt:       NewRuntime(space, io),
		compiler: NewCompiler(),
		cache:    make(map[Position]*CompiledBlock),
		rng:      rng,
	}
}

var cardinals = [4]Position{North, East, South, West}

// Run drives the program to completion: it repeats fetch/classify/act until
// a compiled block signals halt (the program executed `@`). All cached
// native code is freed before Run returns.
func (e *Engine) Run() {
	defer e.clearCache()

	for {
		op := e.rt.Cell(e.rt.pc)

		switch op {
		case '|':
			if e.rt.AbiPop() == 0 {
				e.rt.delta = South
			} else {
				e.rt.delta = North
			}
			e.rt.pc = e.rt.pc.Add(e.rt.delta)

		case '_':
			if e.rt.AbiPop() == 0 {
				e.rt.delta = East
			} else {
				e.rt.delta = West
			}
			e.rt.pc = e.rt.pc.Add(e.rt.delta)

		case '?':
			e.rt.delta = cardinals[e.rng.IntN(4)]
			e.rt.pc = e.rt.pc.Add(e.rt.delta)

		case 'p':
			e.clearCache()
			e.rt.AbiPut()
			e.rt.pc = e.rt.pc.Add(e.rt.delta)

		default:
			if e.runCompiled() {
				return
			}
		}
	}
}

// runCompiled looks up the block cached at the current position (the cache
// is keyed by position alone, not delta) or, on a miss, discovers and
// compiles one from the current position and delta; it runs the block and
// reports whether it signalled halt. A
// compiled block leaves pc/delta already set to its recorded exit state;
// the dispatch loop never steps after running one.
func (e *Engine) runCompiled() bool {
	cb, ok := e.cache[e.rt.pc]
	if !ok {
		block := Discover(e.rt.space, e.rt.pc, e.rt.delta)
		compiled, err := e.compiler.Compile(block)
		if err != nil {
			// An allocator failure here is not a Befunge-93 program
			// error; it means the host is out of executable memory.
			// Hard stop rather than continuing in a corrupted state;
			// main.go turns the panic into a diagnostic and exit code.
			panic(err)
		}
		cb = compiled
		e.cache[e.rt.pc] = cb
	}
	return invokeBlock(cb.Entry(), e.rt)
}

// clearCache frees every compiled block's executable mapping and empties
// the cache. Safe to call at any point dispatch itself is running, since no
// compiled block is ever on the call stack when its callers (the
// interpreted `p` case and Run's deferred cleanup) run.
func (e *Engine) clearCache() {
	for pos, cb := range e.cache {
		_ = cb.Free()
		delete(e.cache, pos)
	}
}
