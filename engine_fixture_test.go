package main

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestFixtures runs every testdata/<name>.bf program end to end through a
// BufferIO binding and diffs captured output against <name>.bf.output.
// An optional <name>.bf.input file supplies the program's input stream.
// Adding a fixture is just dropping the files in; no test code changes.
func TestFixtures(t *testing.T) {
	entries, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}

	ran := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".bf") {
			continue
		}
		ran++
		t.Run(strings.TrimSuffix(name, ".bf"), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("read program: %v", err)
			}
			want, err := os.ReadFile(filepath.Join("testdata", name+".output"))
			if err != nil {
				t.Fatalf("read expected output: %v", err)
			}
			input, err := os.ReadFile(filepath.Join("testdata", name+".input"))
			if err != nil && !os.IsNotExist(err) {
				t.Fatalf("read input: %v", err)
			}

			buf := NewBufferIO(string(input))
			engine := NewEngineWithRand(FromString(string(src)), buf,
				rand.New(rand.NewPCG(42, 17)))
			engine.Run()

			if got := buf.Output(); got != string(want) {
				t.Fatalf("output mismatch\n got: %q\nwant: %q", got, string(want))
			}
		})
	}
	if ran == 0 {
		t.Fatal("no .bf fixtures found under testdata")
	}
}

// TestRunSelfModificationRunsNewOpcode executes a cell that a `p` overwrote
// ahead of the instruction pointer: the engine must run the new opcode, not
// the one loaded from source. The overwritten cell is first reached after
// the write, so no block covering it was compiled beforehand. The test also
// checks that the cache is empty once Run has returned.
func TestRunSelfModificationRunsNewOpcode(t *testing.T) {
	// Writes '7' (9*6+1 = 55) over the '3' at x=8 before the '.' prints it.
	buf := NewBufferIO("")
	engine := NewEngineWithRand(FromString("96*1+80p3.@"), buf,
		rand.New(rand.NewPCG(1, 1)))
	engine.Run()
	if got := buf.Output(); got != "7 " {
		t.Fatalf("output = %q, want %q", got, "7 ")
	}
	if len(engine.cache) != 0 {
		t.Fatalf("cache holds %d blocks after Run returned", len(engine.cache))
	}
}

// TestRunConditionalBranches drives both arms of `_` and `|`.
func TestRunConditionalBranches(t *testing.T) {
	cases := []struct {
		name, src, want string
	}{
		{"horizontal if zero goes east", "0_2.@", "2 "},
		{"horizontal if nonzero goes west", "21._@", "1 0 "},
		{"vertical if zero goes south", "v\n0\n|\n5\n.\n@", "5 "},
		{"vertical if nonzero goes north", "v >.@\n>1|", "0 "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := NewBufferIO("")
			engine := NewEngineWithRand(FromString(c.src), buf,
				rand.New(rand.NewPCG(7, 7)))
			engine.Run()
			if got := buf.Output(); got != c.want {
				t.Fatalf("output = %q, want %q", got, c.want)
			}
		})
	}
}
