package device

import (
	"strings"
	"sync"
)

// Registry holds the office devices in registration order and resolves
// identifiers case-insensitively.
type Registry struct {
	mu      sync.RWMutex
	ordered []*Device
	byID    map[string]*Device
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Device)}
}

// NormalizeID folds an identifier to its lookup key.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Add registers a device. Identifiers must be unique ignoring case.
func (r *Registry) Add(d *Device) error {
	if d == nil || d.ID() == "" {
		return ErrInvalidSetting
	}
	key := NormalizeID(d.ID())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[key]; ok {
		return ErrDuplicate
	}
	r.byID[key] = d
	r.ordered = append(r.ordered, d)
	return nil
}

// Lookup returns the device registered under id.
func (r *Registry) Lookup(id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[NormalizeID(id)]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// All returns the devices in registration order.
func (r *Registry) All() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len reports the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// TotalDraw sums the current draw of every registered device.
func (r *Registry) TotalDraw() float64 {
	var total float64
	for _, d := range r.All() {
		total += d.Draw()
	}
	return total
}
