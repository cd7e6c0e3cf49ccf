// discover.go - walks the grid from a position to find the next Block.

/*
discover.go implements Discover, the walk that cuts the 2D program into
straight-line compilation units. Two details carry most of the correctness
weight: string mode is tracked here, during discovery, so a quoted `"@"`
is preserved as a literal rather than misread as a halt; and the
loop-detection seen-set records every post-advance (position, delta) pair
rather than only comparing against the start, so a walk that falls into a
control-free cycle which never passes its own start is still caught and
the walk always ends.

The seen-set is keyed on the full (position, delta) pair, not position
alone: a direction-changing opcode (`^ > v <`) can send the walk back
through a cell it already crossed while travelling the other way — the
common vertical bounce idiom, a straight run down one column turning
around at a `v`/`^` pair — and that second crossing has a different delta,
so it is not actually revisiting the same control-flow state and must not
be mistaken for an infinite tight loop.
*/

package main

// pathState is one (position, delta) pair along a Discover walk — the full
// control-flow state a revisit must match to count as a genuine cycle.
type pathState struct {
	pos, delta Position
}

// Discover walks the grid from (pc, delta) and returns the Block that
// starts there: the straight-line instruction run up to (but not
// including) the next control, mutation, or halt opcode.
func Discover(space *Space, pc, delta Position) Block {
	start := pc
	startDelta := delta
	var block Block
	stringMode := false
	seen := map[pathState]bool{}

	for {
		c := space.Get(pc.X, pc.Y)

		switch {
		case stringMode:
			if c == '"' {
				stringMode = false
			}
			block.Code += string(c)

		case c == '_' || c == '|' || c == '?':
			block.ExitPC = pc
			block.ExitDelta = delta
			return block

		case c == 'p':
			block.Mutates = true
			block.ExitPC = pc
			block.ExitDelta = delta
			return block

		case c == '@':
			block.Terminates = true
			block.ExitPC = pc
			block.ExitDelta = delta
			return block

		case c == '^':
			delta = North
		case c == '>':
			delta = East
		case c == 'v':
			delta = South
		case c == '<':
			delta = West

		case c == '#':
			pc = pc.Add(delta)

		case c == ' ':
			// no-op

		case c == '"':
			stringMode = true
			block.Code += string(c)

		default:
			block.Code += string(c)
		}

		pc = pc.Add(delta)

		state := pathState{pc, delta}
		if seen[state] || (pc == start && delta == startDelta) {
			block.Loops = true
			block.ExitPC = start
			block.ExitDelta = startDelta
			return block
		}
		seen[state] = true
	}
}
