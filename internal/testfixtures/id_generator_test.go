package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("booking")

	first := gen.Next()
	second := gen.Next()

	if first != "booking-1" || second != "booking-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if issued := gen.Issued(); len(issued) != 2 || issued[1] != "booking-2" {
		t.Fatalf("unexpected issued identifiers: %v", issued)
	}
}

func TestIDGeneratorCanReset(t *testing.T) {
	gen := NewIDGenerator("resource")
	_ = gen.Next()
	gen.Reset("session")

	if next := gen.Next(); next != "session-1" {
		t.Fatalf("expected session-1 after reset, got %q", next)
	}
	if issued := gen.Issued(); len(issued) != 1 {
		t.Fatalf("expected reset to clear issued identifiers, got %v", issued)
	}
}
