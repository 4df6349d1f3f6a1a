package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/smart-office/internal/auth"
	"github.com/example/smart-office/internal/device"
)

// Seed is the inventory loaded at start-up.
type Seed struct {
	Users   []SeedUser   `yaml:"users"`
	Devices []SeedDevice `yaml:"devices"`
	Rooms   []SeedRoom   `yaml:"rooms"`
}

type SeedUser struct {
	ID       string `yaml:"id"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type SeedDevice struct {
	ID       string `yaml:"id"`
	Kind     string `yaml:"kind"`
	Location string `yaml:"location"`
}

type SeedRoom struct {
	ID        string `yaml:"id"`
	Capacity  int    `yaml:"capacity"`
	Projector bool   `yaml:"projector"`
}

// DefaultSeed returns the sample office.
func DefaultSeed() Seed {
	return Seed{
		Users: []SeedUser{
			{ID: "admin", Password: "admin123", Role: "ADMIN"},
			{ID: "manager", Password: "manager123", Role: "MANAGER"},
			{ID: "emp", Password: "defaultPass123", Role: "EMPLOYEE"},
		},
		Devices: []SeedDevice{
			{ID: "L1", Kind: "lighting", Location: "Main Office"},
			{ID: "A1", Kind: "climate", Location: "Main Office"},
			{ID: "P1", Kind: "projection", Location: "Conference Room A"},
			{ID: "L2", Kind: "lighting", Location: "Conference Room A"},
		},
		Rooms: []SeedRoom{
			{ID: "ConfA", Capacity: 10, Projector: true},
			{ID: "ConfB", Capacity: 4, Projector: false},
		},
	}
}

// LoadSeed reads a YAML inventory. An empty path returns DefaultSeed.
func LoadSeed(path string) (Seed, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a YAML inventory. Unknown keys are
// rejected so a misspelled field does not silently fall back to zero.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, fmt.Errorf("parsing seed file: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return Seed{}, fmt.Errorf("validating seed file: %w", err)
	}
	return seed, nil
}

// Validate checks identifiers, roles, kinds and capacities. Device and room
// identifiers are compared case-insensitively.
func (s Seed) Validate() error {
	var errs []error

	users := make(map[string]struct{}, len(s.Users))
	for i, u := range s.Users {
		if strings.TrimSpace(u.ID) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: id is required", i))
			continue
		}
		if _, dup := users[u.ID]; dup {
			errs = append(errs, fmt.Errorf("users[%d]: duplicate id %q", i, u.ID))
		}
		users[u.ID] = struct{}{}
		if u.Password == "" {
			errs = append(errs, fmt.Errorf("users[%d]: password is required", i))
		}
		if _, err := auth.ParseRole(u.Role); err != nil {
			errs = append(errs, fmt.Errorf("users[%d]: %w", i, err))
		}
	}

	devices := make(map[string]struct{}, len(s.Devices))
	for i, d := range s.Devices {
		key := strings.ToLower(strings.TrimSpace(d.ID))
		if key == "" {
			errs = append(errs, fmt.Errorf("devices[%d]: id is required", i))
			continue
		}
		if _, dup := devices[key]; dup {
			errs = append(errs, fmt.Errorf("devices[%d]: duplicate id %q", i, d.ID))
		}
		devices[key] = struct{}{}
		if _, err := device.ParseKind(d.Kind); err != nil {
			errs = append(errs, fmt.Errorf("devices[%d]: %w", i, err))
		}
	}

	rooms := make(map[string]struct{}, len(s.Rooms))
	for i, r := range s.Rooms {
		key := strings.ToLower(strings.TrimSpace(r.ID))
		if key == "" {
			errs = append(errs, fmt.Errorf("rooms[%d]: id is required", i))
			continue
		}
		if _, dup := rooms[key]; dup {
			errs = append(errs, fmt.Errorf("rooms[%d]: duplicate id %q", i, r.ID))
		}
		rooms[key] = struct{}{}
		if r.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("rooms[%d]: capacity must be positive", i))
		}
	}

	return errors.Join(errs...)
}
