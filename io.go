// io.go - polymorphic I/O capability for the Befunge-93 runtime.

/*
io.go defines the IO interface the runtime is constructed with — the
fixed four-method capability behind the `~ & , .` opcodes — plus two
concrete implementations:

    StdIO binds to the process's real stdin/stdout. It puts the terminal
    into raw mode for single-character reads so a running program does not
    block waiting for Enter, then restores cooked mode around
    line-oriented number reads so the user still gets normal line editing.

    BufferIO reads from a fixed in-memory byte slice and collects output
    into a buffer, giving tests a deterministic, headless substitute.

Only StdIO touches the terminal; BufferIO never calls golang.org/x/term.
*/

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// IO is the capability the runtime calls to satisfy the four Befunge-93
// I/O opcodes: `~` and `&` for input, `,` and `.` for output.
type IO interface {
	// InputChar reads one byte, or returns ok=false on EOF.
	InputChar() (b byte, ok bool)
	// InputNumber reads a whole line and parses it as a signed decimal
	// integer. A parse failure is fatal.
	InputNumber() int64
	// OutputChar writes the low byte of v and flushes.
	OutputChar(v byte)
	// OutputNumber writes the decimal representation of v (with the
	// reference interpreter's trailing space) and flushes.
	OutputNumber(v int64)
}

// StdIO binds the runtime to the process's real standard input and output.
type StdIO struct {
	out       io.Writer
	reader    *bufio.Reader
	fd        int
	raw       bool
	oldState  *term.State
	rawFailed bool
}

// NewStdIO constructs the standard process I/O binding.
func NewStdIO() *StdIO {
	return &StdIO{
		out:    os.Stdout,
		reader: bufio.NewReader(os.Stdin),
		fd:     int(os.Stdin.Fd()),
	}
}

// enterRaw puts stdin into raw (non-canonical, non-echoing) mode so a single
// keystroke is visible to InputChar without waiting for a newline. Failures
// (e.g. stdin is not a terminal — a pipe or redirected file) are silent:
// InputChar falls back to the buffered reader either way.
func (s *StdIO) enterRaw() {
	if s.raw || s.rawFailed {
		return
	}
	old, err := term.MakeRaw(s.fd)
	if err != nil {
		s.rawFailed = true
		return
	}
	s.oldState = old
	s.raw = true
}

// leaveRaw restores cooked mode so InputNumber can read a line with normal
// terminal editing (backspace, etc.) from the user.
func (s *StdIO) leaveRaw() {
	if !s.raw {
		return
	}
	_ = term.Restore(s.fd, s.oldState)
	s.raw = false
}

// InputChar reads a single byte from stdin, putting the terminal in raw
// mode first so the byte is available without a trailing newline.
func (s *StdIO) InputChar() (byte, bool) {
	s.enterRaw()
	b, err := s.reader.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

// InputNumber restores cooked mode, reads one line, and parses it as a
// signed decimal integer. A parse failure is fatal.
func (s *StdIO) InputNumber() int64 {
	s.leaveRaw()
	line, err := s.reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "befunge93: input error reading number: unexpected EOF")
		os.Exit(1)
	}
	n, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if perr != nil {
		fmt.Fprintf(os.Stderr, "befunge93: fatal: %q is not a valid number\n", strings.TrimSpace(line))
		os.Exit(1)
	}
	return n
}

// OutputChar writes the low byte of v to stdout and flushes immediately.
func (s *StdIO) OutputChar(v byte) {
	_, _ = s.out.Write([]byte{v})
}

// OutputNumber writes the decimal representation of v followed by a
// trailing space, matching the reference Befunge-93 interpreter's "%d "
// convention.
func (s *StdIO) OutputNumber(v int64) {
	fmt.Fprintf(s.out, "%d ", v)
}

// Close restores the terminal to cooked mode if StdIO ever changed it.
func (s *StdIO) Close() {
	s.leaveRaw()
}

// BufferIO is a deterministic, in-memory IO implementation for tests. It
// never touches the terminal.
type BufferIO struct {
	input  *bufio.Reader
	output strings.Builder
}

// NewBufferIO constructs a BufferIO whose input is the given string.
func NewBufferIO(input string) *BufferIO {
	return &BufferIO{input: bufio.NewReader(strings.NewReader(input))}
}

// InputChar reads the next byte of the fixed input buffer.
func (b *BufferIO) InputChar() (byte, bool) {
	c, err := b.input.ReadByte()
	if err != nil {
		return 0, false
	}
	return c, true
}

// InputNumber reads the next line of the fixed input buffer and parses it.
func (b *BufferIO) InputNumber() int64 {
	line, err := b.input.ReadString('\n')
	if err != nil && line == "" {
		panic("befunge93: input error reading number: unexpected EOF")
	}
	n, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if perr != nil {
		panic(fmt.Sprintf("befunge93: fatal: %q is not a valid number", strings.TrimSpace(line)))
	}
	return n
}

// OutputChar appends the low byte of v to the captured output.
func (b *BufferIO) OutputChar(v byte) {
	b.output.WriteByte(v)
}

// OutputNumber appends the decimal representation of v, with trailing
// space, to the captured output.
func (b *BufferIO) OutputNumber(v int64) {
	fmt.Fprintf(&b.output, "%d ", v)
}

// Output returns everything written so far.
func (b *BufferIO) Output() string {
	return b.output.String()
}
