package device

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned when no device matches the requested identifier.
	ErrNotFound = errors.New("device: not found")
	// ErrDuplicate is returned when a device identifier is registered twice.
	ErrDuplicate = errors.New("device: already registered")
	// ErrKindMismatch is returned when a kind-specific setter targets another kind.
	ErrKindMismatch = errors.New("device: setting not supported by this kind")
	// ErrDeviceOff is returned when a setter requires the device to be powered on.
	ErrDeviceOff = errors.New("device: device is off")
	// ErrInvalidSetting is returned when a setter receives an unusable value.
	ErrInvalidSetting = errors.New("device: invalid setting")
)

// Kind identifies the device family and selects its draw function.
type Kind int

const (
	KindLighting Kind = iota + 1
	KindClimate
	KindProjection
)

func (k Kind) String() string {
	switch k {
	case KindLighting:
		return "lighting"
	case KindClimate:
		return "climate"
	case KindProjection:
		return "projection"
	}
	return "unknown"
}

// ParseKind resolves a configuration token such as "light" or "ac" to a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "lighting", "light":
		return KindLighting, nil
	case "climate", "ac":
		return KindClimate, nil
	case "projection", "projector":
		return KindProjection, nil
	}
	return 0, fmt.Errorf("device: unknown kind %q", value)
}

const (
	defaultTargetTemp  = 24
	defaultInputSource = "HDMI1"

	lightingMaxWatts = 60.0
	climateBaseWatts = 2000.0
	climatePerDegree = 100.0
	climateNeutral   = 24
	projectorWatts   = 350.0
)

// Controllable is the capability every device kind offers to callers.
// Kind-specific adjustments live on *Device and are not part of it.
type Controllable interface {
	TurnOn()
	TurnOff()
	Status() string
	Draw() float64
}

// Device is a single office appliance. Its draw is derived from the power
// state and kind parameters on every read and is never stored.
type Device struct {
	mu       sync.Mutex
	id       string
	location string
	kind     Kind
	on       bool

	brightness  int
	targetTemp  int
	inputSource string
}

var _ Controllable = (*Device)(nil)

// New constructs a powered-off device with the kind's initial parameters.
func New(id, location string, kind Kind) *Device {
	d := &Device{
		id:       strings.TrimSpace(id),
		location: strings.TrimSpace(location),
		kind:     kind,
	}
	switch kind {
	case KindClimate:
		d.targetTemp = defaultTargetTemp
	case KindProjection:
		d.inputSource = defaultInputSource
	}
	return d
}

// NewLight, NewClimate and NewProjector are shorthands for New.
func NewLight(id, location string) *Device     { return New(id, location, KindLighting) }
func NewClimate(id, location string) *Device   { return New(id, location, KindClimate) }
func NewProjector(id, location string) *Device { return New(id, location, KindProjection) }

func (d *Device) ID() string       { return d.id }
func (d *Device) Location() string { return d.location }
func (d *Device) Kind() Kind       { return d.kind }

// IsOn reports the current power state.
func (d *Device) IsOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.on
}

// Brightness returns the lighting level in percent.
func (d *Device) Brightness() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

// TargetTemperature returns the climate set point in Celsius.
func (d *Device) TargetTemperature() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targetTemp
}

// InputSource returns the projector input name.
func (d *Device) InputSource() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inputSource
}

// TurnOn powers the device on. Lighting returns to full brightness each time;
// climate and projection keep their last parameters.
func (d *Device) TurnOn() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.on = true
	if d.kind == KindLighting {
		d.brightness = 100
	}
}

// TurnOff powers the device off. Lighting brightness drops to zero.
func (d *Device) TurnOff() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.turnOffLocked()
}

func (d *Device) turnOffLocked() {
	d.on = false
	if d.kind == KindLighting {
		d.brightness = 0
	}
}

// SetBrightness adjusts a light. A level of zero or below switches it off,
// any positive level switches it on, capped at 100.
func (d *Device) SetBrightness(level int) error {
	if d.kind != KindLighting {
		return ErrKindMismatch
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if level <= 0 {
		d.turnOffLocked()
		return nil
	}
	d.on = true
	d.brightness = min(level, 100)
	return nil
}

// SetTemperature changes the climate set point. The device must be on.
func (d *Device) SetTemperature(celsius int) error {
	if d.kind != KindClimate {
		return ErrKindMismatch
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.on {
		return ErrDeviceOff
	}
	d.targetTemp = celsius
	return nil
}

// SetInputSource switches the projector input. The device must be on.
func (d *Device) SetInputSource(source string) error {
	if d.kind != KindProjection {
		return ErrKindMismatch
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return ErrInvalidSetting
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.on {
		return ErrDeviceOff
	}
	d.inputSource = source
	return nil
}

// Draw returns the instantaneous consumption in watts.
func (d *Device) Draw() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drawLocked()
}

func (d *Device) drawLocked() float64 {
	if !d.on {
		return 0
	}
	switch d.kind {
	case KindLighting:
		return lightingMaxWatts * (float64(d.brightness) / 100.0)
	case KindClimate:
		return climateBaseWatts + climatePerDegree*max(0, float64(climateNeutral)-float64(d.targetTemp))
	case KindProjection:
		return projectorWatts
	}
	return 0
}

// Status renders a deterministic one-line summary of the device.
func (d *Device) Status() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	power := "Off"
	if d.on {
		power = "On"
	}
	base := fmt.Sprintf("Device: %s (%s) | Status: %s | Energy Usage: %.1fW", d.id, d.location, power, d.drawLocked())

	switch d.kind {
	case KindLighting:
		return fmt.Sprintf("%s | Brightness: %d%%", base, d.brightness)
	case KindClimate:
		return fmt.Sprintf("%s | Target Temp: %d°C", base, d.targetTemp)
	case KindProjection:
		return fmt.Sprintf("%s | Input: %s", base, d.inputSource)
	}
	return base
}
