package main

import "testing"

func TestPositionAddWrapsToroidally(t *testing.T) {
	cases := []struct {
		name  string
		start Position
		delta Position
		want  Position
	}{
		{"east off right edge wraps to column 0", Position{Width - 1, 0}, East, Position{0, 0}},
		{"west off left edge wraps to last column", Position{0, 0}, West, Position{Width - 1, 0}},
		{"south off bottom edge wraps to row 0", Position{0, Height - 1}, South, Position{0, 0}},
		{"north off top edge wraps to last row", Position{0, 0}, North, Position{0, Height - 1}},
		{"interior step does not wrap", Position{5, 5}, East, Position{6, 5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.start.Add(c.delta); got != c.want {
				t.Fatalf("got %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestFromStringTruncatesOverlongLines(t *testing.T) {
	long := ""
	for i := 0; i < Width+10; i++ {
		long += "x"
	}
	s := FromString(long)
	for x := 0; x < Width; x++ {
		if got := s.Get(x, 0); got != 'x' {
			t.Fatalf("cell (%d,0) = %q, want 'x'", x, got)
		}
	}
}

func TestFromStringTruncatesExtraLines(t *testing.T) {
	src := ""
	for i := 0; i < Height+5; i++ {
		src += "a\n"
	}
	s := FromString(src)
	// Row Height-1 should still be populated ('a'); there is no row beyond it
	// to check since Space is fixed-size, but the constructor must not panic
	// walking the extra input lines.
	if got := s.Get(0, Height-1); got != 'a' {
		t.Fatalf("last row cell = %q, want 'a'", got)
	}
}

func TestFromStringPadsShortLinesWithSpace(t *testing.T) {
	s := FromString("@")
	if got := s.Get(1, 0); got != ' ' {
		t.Fatalf("unwritten cell = %q, want space", got)
	}
}

func TestFromStringNormalizesCRLF(t *testing.T) {
	s := FromString("a\r\nb")
	if got := s.Get(0, 0); got != 'a' {
		t.Fatalf("row0 = %q, want 'a'", got)
	}
	if got := s.Get(0, 1); got != 'b' {
		t.Fatalf("row1 = %q, want 'b'", got)
	}
}

func TestInBounds(t *testing.T) {
	if !InBounds(0, 0) || !InBounds(Width-1, Height-1) {
		t.Fatal("corners should be in bounds")
	}
	if InBounds(-1, 0) || InBounds(0, -1) || InBounds(Width, 0) || InBounds(0, Height) {
		t.Fatal("out-of-range coordinates reported in bounds")
	}
}
