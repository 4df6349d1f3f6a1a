package booking

import (
	"strings"
	"sync"
)

// Registry holds the office rooms in registration order.
type Registry struct {
	mu      sync.RWMutex
	ordered []*Room
	byID    map[string]*Room
}

// NewRegistry returns an empty room registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Room)}
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Add registers a room. Identifiers must be unique ignoring case.
func (r *Registry) Add(room *Room) error {
	if room == nil || room.ID() == "" {
		return ErrRoomNotFound
	}
	key := normalizeID(room.ID())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[key]; ok {
		return ErrDuplicateRoom
	}
	r.byID[key] = room
	r.ordered = append(r.ordered, room)
	return nil
}

// Lookup resolves a room identifier case-insensitively.
func (r *Registry) Lookup(id string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.byID[normalizeID(id)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// All returns the rooms in registration order.
func (r *Registry) All() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Room, len(r.ordered))
	copy(out, r.ordered)
	return out
}
