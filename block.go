// block.go - the straight-line unit the dispatch loop compiles and runs.

/*
block.go defines Block, the discoverer's output and the compiler's input:
a small, flag-heavy descriptor struct passed by value between the two
pipeline stages.

A Block's code string is already fully resolved: direction opcodes have
been folded into delta changes, `#` has been consumed structurally, and
string-mode text is copied verbatim, its `"` marks included. The compiler
never re-interprets direction or bridge structure; it lowers payload bytes
one at a time, tracking string mode again from those `"` marks.
*/

package main

// Block is a discovered straight-line instruction run, ready for
// compilation.
type Block struct {
	// Code is the payload opcode stream, in execution order, with
	// direction/bridge/comment-space structure already resolved away.
	Code string

	// Loops is true when stepping through the block comes back to a
	// (position, delta) state it already passed — its own start or any
	// later cell — before hitting any terminator.
	Loops bool
	// Mutates is true when the block ended because it reached a `p`
	// cell; ExitPC names that cell.
	Mutates bool
	// Terminates is true when the block ended because it reached `@`.
	Terminates bool

	// ExitPC is the position dispatch resumes at once the block (or its
	// compiled form) finishes: the control/mutation/halt cell itself for
	// Mutates/Terminates-ending blocks, or the looped-back start for
	// Loops blocks.
	ExitPC Position
	// ExitDelta is the direction in effect at ExitPC.
	ExitDelta Position
}
