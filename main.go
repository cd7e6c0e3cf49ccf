// main.go - command-line front end for the Befunge-93 JIT engine.

/*
main.go is the thin command-line shell around the engine: it parses
exactly one positional argument, reads the source file it names, and hands
the result to Engine.Run(). A bare os.Args length check and an os.Exit on
failure are all the argument handling a single-file invocation needs; no
flag-parsing library is pulled in for one positional argument.

Exit codes: 0 on normal `@` termination, 1 if the source file cannot be
read, 2 on a usage error (wrong argument count).
*/

package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: befunge93 <source-file>")
		os.Exit(2)
	}

	src, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "befunge93: %v\n", err)
		os.Exit(1)
	}

	stdio := NewStdIO()
	defer stdio.Close()

	engine := NewEngine(FromString(string(src)), stdio)
	runEngine(engine)
}

// runEngine drives engine.Run() to completion, translating a
// host-resource failure inside the JIT (e.g. the executable-memory
// allocator running dry) into a diagnostic and a nonzero exit rather
// than a raw panic trace.
func runEngine(engine *Engine) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "befunge93: fatal: %v\n", r)
			os.Exit(1)
		}
	}()
	engine.Run()
}
