package main

import "testing"

func newTestRuntime() *Runtime {
	return NewRuntime(NewSpace(), NewBufferIO(""))
}

func TestAbiPopOnEmptyStackReturnsZero(t *testing.T) {
	rt := newTestRuntime()
	if got := rt.AbiPop(); got != 0 {
		t.Fatalf("AbiPop on empty stack = %d, want 0", got)
	}
	if got := rt.AbiPeek(); got != 0 {
		t.Fatalf("AbiPeek on empty stack = %d, want 0", got)
	}
}

func TestAbiPushPopOrder(t *testing.T) {
	rt := newTestRuntime()
	rt.AbiPush(1)
	rt.AbiPush(2)
	rt.AbiPush(3)
	if got := rt.AbiPop(); got != 3 {
		t.Fatalf("first pop = %d, want 3", got)
	}
	if got := rt.AbiPeek(); got != 2 {
		t.Fatalf("peek after one pop = %d, want 2", got)
	}
	if got := rt.AbiPop(); got != 2 {
		t.Fatalf("second pop = %d, want 2", got)
	}
	if got := rt.AbiPop(); got != 1 {
		t.Fatalf("third pop = %d, want 1", got)
	}
}

func TestAbiGetPutRoundTrip(t *testing.T) {
	rt := newTestRuntime()
	rt.AbiPush(42) // v
	rt.AbiPush(3)  // x
	rt.AbiPush(4)  // y
	rt.AbiPut()

	rt.AbiPush(3) // x
	rt.AbiPush(4) // y
	rt.AbiGet()
	if got := rt.AbiPop(); got != 42 {
		t.Fatalf("get after put = %d, want 42", got)
	}
}

func TestAbiGetOutOfBoundsReturnsZero(t *testing.T) {
	rt := newTestRuntime()
	rt.AbiPush(Width) // x, one past the last column
	rt.AbiPush(0)     // y
	rt.AbiGet()
	if got := rt.AbiPop(); got != 0 {
		t.Fatalf("out-of-bounds get = %d, want 0", got)
	}
}

func TestAbiPutOutOfBoundsIsDropped(t *testing.T) {
	rt := newTestRuntime()
	rt.AbiPush(7)      // v
	rt.AbiPush(-1)     // x
	rt.AbiPush(0)      // y
	rt.AbiPut()
	// Nothing to assert directly except that it did not panic; a negative
	// x must never reach Space.Set.
}

func TestAbiSetPCAndSetDelta(t *testing.T) {
	rt := newTestRuntime()
	rt.AbiSetPC(5, 9)
	rt.AbiSetDelta(0, 1)
	if rt.pc != (Position{5, 9}) {
		t.Fatalf("pc = %+v, want {5 9}", rt.pc)
	}
	if rt.delta != South {
		t.Fatalf("delta = %+v, want South", rt.delta)
	}
}

func TestAbiOutputNumberTrailingSpace(t *testing.T) {
	buf := NewBufferIO("")
	rt := NewRuntime(NewSpace(), buf)
	rt.AbiPush(56)
	rt.AbiOutputNumber()
	if got := buf.Output(); got != "56 " {
		t.Fatalf("output = %q, want %q", got, "56 ")
	}
}

func TestAbiInputCharEOFPushesMinusOne(t *testing.T) {
	buf := NewBufferIO("")
	rt := NewRuntime(NewSpace(), buf)
	rt.AbiInputChar()
	if got := rt.AbiPop(); got != -1 {
		t.Fatalf("input char on EOF pushed %d, want -1", got)
	}
}
