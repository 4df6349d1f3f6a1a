package device

import (
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("looks up identifiers ignoring case", func(t *testing.T) {
		t.Parallel()

		reg := NewRegistry()
		if err := reg.Add(NewLight("L1", "Main Office")); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		d, err := reg.Lookup(" l1 ")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if d.ID() != "L1" {
			t.Fatalf("expected L1, got %q", d.ID())
		}
		if _, err := reg.Lookup("X9"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects duplicate identifiers", func(t *testing.T) {
		t.Parallel()

		reg := NewRegistry()
		_ = reg.Add(NewLight("L1", "Main Office"))
		if err := reg.Add(NewClimate("l1", "Lobby")); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		if reg.Len() != 1 {
			t.Fatalf("expected 1 device, got %d", reg.Len())
		}
	})

	t.Run("preserves registration order and sums draw", func(t *testing.T) {
		t.Parallel()

		reg := NewRegistry()
		ids := []string{"L1", "A1", "P1"}
		_ = reg.Add(NewLight("L1", "Main Office"))
		_ = reg.Add(NewClimate("A1", "Main Office"))
		_ = reg.Add(NewProjector("P1", "Conference Room A"))

		for i, d := range reg.All() {
			if d.ID() != ids[i] {
				t.Fatalf("expected %s at position %d, got %s", ids[i], i, d.ID())
			}
			d.TurnOn()
		}
		if got := reg.TotalDraw(); got != 2410.0 {
			t.Fatalf("expected total draw 2410.0, got %.1f", got)
		}
	})
}
