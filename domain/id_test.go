package domain

import "testing"

func TestCounterNextIsMonotonic(t *testing.T) {
	var c Counter
	prev := c.Next()
	for i := 0; i < 1000; i++ {
		next := c.Next()
		if !Less(prev, next) {
			t.Fatalf("counter did not increase: prev=%v next=%v", prev, next)
		}
		prev = next
	}
}

func TestCounterFirstValue(t *testing.T) {
	var c Counter
	first := c.Next()
	want := ID{0, 0, 0, 1}
	if first != want {
		t.Errorf("first Next() = %v, want %v", first, want)
	}
}

func TestCounterCarriesAcrossWords(t *testing.T) {
	c := Counter{next: ID{0, 0, 0, ^uint64(0)}}
	got := c.Next()
	want := ID{0, 0, 1, 0}
	if got != want {
		t.Errorf("carry did not propagate: got %v, want %v", got, want)
	}
}

func TestLessIsStrictAndConsistent(t *testing.T) {
	a := ID{0, 0, 0, 1}
	b := ID{0, 0, 0, 2}
	if !Less(a, b) {
		t.Error("expected a < b")
	}
	if Less(b, a) {
		t.Error("expected b not less than a")
	}
	if Less(a, a) {
		t.Error("expected Less(a, a) to be false")
	}
}

func TestIDStringTrimsLeadingZeros(t *testing.T) {
	id := ID{0, 0, 0, 0x2a}
	if got := id.String(); got != "2a" {
		t.Errorf("String() = %q, want %q", got, "2a")
	}
	if got := (ID{}).String(); got != "0" {
		t.Errorf("String() of zero ID = %q, want %q", got, "0")
	}
}
