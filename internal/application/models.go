package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/smart-office/internal/activity"
	"github.com/example/smart-office/internal/attendance"
	"github.com/example/smart-office/internal/auth"
	"github.com/example/smart-office/internal/booking"
	"github.com/example/smart-office/internal/device"
)

// DefaultRestrictedLocation is the location employees may not control devices in.
const DefaultRestrictedLocation = "Main Office"

// ActivityRecorder is the activity log sink collaborator.
type ActivityRecorder interface {
	Record(ctx context.Context, message string)
}

// activityHealth is implemented by recorders that remember write failures.
type activityHealth interface {
	Err() error
}

// activityHistory is implemented by recorders that can list recent entries.
type activityHistory interface {
	Recent(ctx context.Context, limit int) ([]activity.Entry, error)
}

// batchRecorder is implemented by recorders that accept grouped events.
type batchRecorder interface {
	RecordBatch(ctx context.Context, messages ...string)
}

// OfficeDependencies wires the collaborators of an OfficeService.
type OfficeDependencies struct {
	Devices            *device.Registry
	Rooms              *booking.Registry
	Attendance         *attendance.Ledger
	Session            *auth.Session
	Activity           ActivityRecorder
	RestrictedLocation string
	Now                func() time.Time
	Logger             *slog.Logger
}

// Setting names accepted by AdjustDevice.
const (
	SettingBrightness  = "brightness"
	SettingTemperature = "temperature"
	SettingInput       = "input"
)

// DeviceAction is the on/off action accepted by ControlDevice.
type DeviceAction string

const (
	ActionOn  DeviceAction = "on"
	ActionOff DeviceAction = "off"
)
