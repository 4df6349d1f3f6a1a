package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSeed(t *testing.T) {
	t.Parallel()

	seed := DefaultSeed()
	if err := seed.Validate(); err != nil {
		t.Fatalf("expected default seed to be valid: %v", err)
	}
	if len(seed.Users) != 3 || len(seed.Devices) != 4 || len(seed.Rooms) != 2 {
		t.Fatalf("unexpected default seed sizes %d/%d/%d", len(seed.Users), len(seed.Devices), len(seed.Rooms))
	}
}

func TestLoadSeed(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns the sample office", func(t *testing.T) {
		t.Parallel()

		seed, err := LoadSeed("")
		if err != nil {
			t.Fatalf("LoadSeed failed: %v", err)
		}
		if seed.Rooms[0].ID != "ConfA" {
			t.Fatalf("expected sample rooms, got %+v", seed.Rooms)
		}
	})

	t.Run("reads YAML inventory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "office.yaml")
		data := `users:
  - id: alice
    password: s3cret
    role: manager
devices:
  - id: X1
    kind: ac
    location: Lab
rooms:
  - id: Huddle
    capacity: 2
`
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		seed, err := LoadSeed(path)
		if err != nil {
			t.Fatalf("LoadSeed failed: %v", err)
		}
		if seed.Users[0].ID != "alice" || seed.Devices[0].Kind != "ac" || seed.Rooms[0].Capacity != 2 || seed.Rooms[0].Projector {
			t.Fatalf("unexpected seed %+v", seed)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}

func TestParseSeed_Validation(t *testing.T) {
	t.Parallel()

	data := `users:
  - id: bob
    role: intern
devices:
  - id: L1
    kind: light
    location: A
  - id: l1
    kind: toaster
    location: B
rooms:
  - id: R
    capacity: 0
`
	_, err := ParseSeed([]byte(data))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{
		"users[0]: password is required",
		`users[0]: auth: unknown role "intern"`,
		`devices[1]: duplicate id "l1"`,
		`devices[1]: device: unknown kind "toaster"`,
		"rooms[0]: capacity must be positive",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}

	if _, err := ParseSeed([]byte("users: [")); err == nil || !strings.Contains(err.Error(), "parsing seed file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestParseSeed_UnknownField(t *testing.T) {
	t.Parallel()

	data := `rooms:
  - id: Huddle
    capcity: 4
`
	_, err := ParseSeed([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "capcity") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}
