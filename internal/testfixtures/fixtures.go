package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/smart-office/internal/auth"
	"github.com/example/smart-office/internal/config"
)

var (
	userCounter   uint64
	deviceCounter uint64
	roomCounter   uint64
)

var referenceTime = time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// CheapPasswordParams keeps argon2id fast enough for unit tests.
var CheapPasswordParams = auth.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

// ----------------------------- User fixtures -----------------------------

// UserFixture describes an account to seed.
type UserFixture struct {
	ID       string
	Password string
	Role     auth.Role
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic employee fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	fixture := UserFixture{
		ID:       fmt.Sprintf("user-%03d", idx),
		Password: fmt.Sprintf("pass-%03d", idx),
		Role:     auth.RoleEmployee,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserPassword overrides the generated password.
func WithUserPassword(password string) UserOption {
	return func(f *UserFixture) {
		f.Password = password
	}
}

// WithUserRole sets the role of the generated fixture.
func WithUserRole(role auth.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// Seed returns the fixture as a seed entry.
func (f UserFixture) Seed() config.SeedUser {
	return config.SeedUser{ID: f.ID, Password: f.Password, Role: f.Role.String()}
}

// ---------------------------- Device fixtures ----------------------------

// DeviceFixture describes a device to seed.
type DeviceFixture struct {
	ID       string
	Kind     string
	Location string
}

// DeviceOption configures the generated device fixture.
type DeviceOption func(*DeviceFixture)

// NewDeviceFixture returns a deterministic light fixture with optional overrides.
func NewDeviceFixture(opts ...DeviceOption) DeviceFixture {
	idx := atomic.AddUint64(&deviceCounter, 1)
	fixture := DeviceFixture{
		ID:       fmt.Sprintf("D%03d", idx),
		Kind:     "lighting",
		Location: "Lobby",
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDeviceID overrides the generated device ID.
func WithDeviceID(id string) DeviceOption {
	return func(f *DeviceFixture) {
		f.ID = id
	}
}

// WithDeviceKind overrides the device kind.
func WithDeviceKind(kind string) DeviceOption {
	return func(f *DeviceFixture) {
		f.Kind = kind
	}
}

// WithDeviceLocation overrides the device location.
func WithDeviceLocation(location string) DeviceOption {
	return func(f *DeviceFixture) {
		f.Location = location
	}
}

// Seed returns the fixture as a seed entry.
func (f DeviceFixture) Seed() config.SeedDevice {
	return config.SeedDevice{ID: f.ID, Kind: f.Kind, Location: f.Location}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture describes a conference room to seed.
type RoomFixture struct {
	ID        string
	Capacity  int
	Projector bool
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:       fmt.Sprintf("Room%03d", idx),
		Capacity: int(4 + idx%4),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomProjector marks the room as equipped with a projector.
func WithRoomProjector(projector bool) RoomOption {
	return func(f *RoomFixture) {
		f.Projector = projector
	}
}

// Seed returns the fixture as a seed entry.
func (f RoomFixture) Seed() config.SeedRoom {
	return config.SeedRoom{ID: f.ID, Capacity: f.Capacity, Projector: f.Projector}
}

// ----------------------------- Office seed -------------------------------

// SeedBuilder accumulates fixtures into a config.Seed.
type SeedBuilder struct {
	seed config.Seed
}

// NewSeedBuilder starts from an empty inventory.
func NewSeedBuilder() *SeedBuilder {
	return &SeedBuilder{}
}

// SampleOffice starts from the built-in sample office.
func SampleOffice() *SeedBuilder {
	return &SeedBuilder{seed: config.DefaultSeed()}
}

func (b *SeedBuilder) WithUsers(users ...UserFixture) *SeedBuilder {
	for _, u := range users {
		b.seed.Users = append(b.seed.Users, u.Seed())
	}
	return b
}

func (b *SeedBuilder) WithDevices(devices ...DeviceFixture) *SeedBuilder {
	for _, d := range devices {
		b.seed.Devices = append(b.seed.Devices, d.Seed())
	}
	return b
}

func (b *SeedBuilder) WithRooms(rooms ...RoomFixture) *SeedBuilder {
	for _, r := range rooms {
		b.seed.Rooms = append(b.seed.Rooms, r.Seed())
	}
	return b
}

// Build returns a copy of the accumulated seed.
func (b *SeedBuilder) Build() config.Seed {
	out := config.Seed{
		Users:   append([]config.SeedUser(nil), b.seed.Users...),
		Devices: append([]config.SeedDevice(nil), b.seed.Devices...),
		Rooms:   append([]config.SeedRoom(nil), b.seed.Rooms...),
	}
	return out
}
