package booking

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxBookings bounds how many reservations a single room accepts.
const DefaultMaxBookings = 50

var (
	// ErrRoomUnavailable is returned when a slot is taken or the room is full.
	ErrRoomUnavailable = errors.New("booking: room unavailable")
	// ErrBookingNotFound is returned when a booking is not held by the room.
	ErrBookingNotFound = errors.New("booking: booking not found")
	// ErrRoomNotFound is returned when no room matches the requested identifier.
	ErrRoomNotFound = errors.New("booking: room not found")
	// ErrDuplicateRoom is returned when a room identifier is registered twice.
	ErrDuplicateRoom = errors.New("booking: room already registered")
	// ErrInvalidSlot is returned for blank slot tokens.
	ErrInvalidSlot = errors.New("booking: slot is required")
)

// UnavailableError explains why a reservation was refused.
type UnavailableError struct {
	RoomID string
	Slot   string
	Full   bool
}

func (e *UnavailableError) Error() string {
	if e.Full {
		return fmt.Sprintf("Room %s cannot accept more bookings (system limit reached).", e.RoomID)
	}
	return fmt.Sprintf("Room %s is already booked for %s", e.RoomID, e.Slot)
}

func (e *UnavailableError) Unwrap() error { return ErrRoomUnavailable }

// Booking is a reservation of one slot in its owning room.
type Booking struct {
	ID        string
	RoomID    string
	Occupant  string
	Slot      string
	CheckedIn bool
	CreatedAt time.Time
}

func (b Booking) String() string {
	checked := "No"
	if b.CheckedIn {
		checked = "Yes"
	}
	return fmt.Sprintf("Slot: %s (Booked by: %s, Checked In: %s)", b.Slot, b.Occupant, checked)
}

// Option customises a Room at construction.
type Option func(*Room)

// WithMaxBookings overrides DefaultMaxBookings. Non-positive values are ignored.
func WithMaxBookings(limit int) Option {
	return func(r *Room) {
		if limit > 0 {
			r.maxBookings = limit
		}
	}
}

// WithIDGenerator overrides the uuid based booking identifiers.
func WithIDGenerator(gen func() string) Option {
	return func(r *Room) {
		if gen != nil {
			r.idGenerator = gen
		}
	}
}

// WithClock overrides the time source used to stamp bookings.
func WithClock(now func() time.Time) Option {
	return func(r *Room) {
		if now != nil {
			r.now = now
		}
	}
}

// Room is a bookable conference room. It exclusively owns its bookings;
// they are kept in insertion order and slots are unique by exact value.
type Room struct {
	mu           sync.Mutex
	id           string
	capacity     int
	hasProjector bool
	maxBookings  int
	idGenerator  func() string
	now          func() time.Time
	bookings     []*Booking
}

// NewRoom constructs an empty room.
func NewRoom(id string, capacity int, hasProjector bool, opts ...Option) *Room {
	r := &Room{
		id:           strings.TrimSpace(id),
		capacity:     capacity,
		hasProjector: hasProjector,
		maxBookings:  DefaultMaxBookings,
		idGenerator:  uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Room) ID() string         { return r.id }
func (r *Room) Capacity() int      { return r.capacity }
func (r *Room) HasProjector() bool { return r.hasProjector }
func (r *Room) MaxBookings() int   { return r.maxBookings }

// IsAvailable reports whether no booking holds exactly this slot.
func (r *Room) IsAvailable(slot string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(slot) == nil
}

func (r *Room) findLocked(slot string) *Booking {
	for _, b := range r.bookings {
		if b.Slot == slot {
			return b
		}
	}
	return nil
}

// Book reserves slot for occupant. Slots are opaque: "09:00-10:00" and
// "09:30-09:45" do not conflict.
func (r *Room) Book(occupant, slot string) (Booking, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return Booking{}, ErrInvalidSlot
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(slot) != nil {
		return Booking{}, &UnavailableError{RoomID: r.id, Slot: slot}
	}
	if len(r.bookings) >= r.maxBookings {
		return Booking{}, &UnavailableError{RoomID: r.id, Slot: slot, Full: true}
	}

	b := &Booking{
		ID:        r.idGenerator(),
		RoomID:    r.id,
		Occupant:  occupant,
		Slot:      slot,
		CreatedAt: r.now(),
	}
	r.bookings = append(r.bookings, b)
	return *b, nil
}

// CheckIn marks the booking as used. Checking in twice is harmless.
func (r *Room) CheckIn(bookingID string) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == bookingID {
			b.CheckedIn = true
			return *b, nil
		}
	}
	return Booking{}, ErrBookingNotFound
}

// CheckInSlot checks in the booking held for slot.
func (r *Room) CheckInSlot(slot string) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.findLocked(strings.TrimSpace(slot))
	if b == nil {
		return Booking{}, ErrBookingNotFound
	}
	b.CheckedIn = true
	return *b, nil
}

// AutoRelease drops every booking that has not been checked in, regardless
// of when its slot falls, and returns how many were removed. Survivors keep
// their relative order.
func (r *Room) AutoRelease() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.bookings[:0]
	for _, b := range r.bookings {
		if b.CheckedIn {
			kept = append(kept, b)
		}
	}
	removed := len(r.bookings) - len(kept)
	for i := len(kept); i < len(r.bookings); i++ {
		r.bookings[i] = nil
	}
	r.bookings = kept
	return removed
}

// Bookings returns copies of the room's bookings in insertion order.
func (r *Room) Bookings() []Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out
}

// AvailabilitySummary renders the room's bookings for display.
func (r *Room) AvailabilitySummary() string {
	bookings := r.Bookings()
	if len(bookings) == 0 {
		return fmt.Sprintf("Room %s (Cap: %d) is completely free.", r.id, r.capacity)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Bookings for %s:\n", r.id)
	for _, b := range bookings {
		sb.WriteString("  - ")
		sb.WriteString(b.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
