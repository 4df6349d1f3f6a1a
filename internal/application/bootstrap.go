package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/smart-office/internal/attendance"
	"github.com/example/smart-office/internal/auth"
	"github.com/example/smart-office/internal/booking"
	"github.com/example/smart-office/internal/config"
	"github.com/example/smart-office/internal/device"
)

// OfficeSettings tunes NewOfficeFromSeed.
type OfficeSettings struct {
	RestrictedLocation string
	MaxBookings        int
	// Location decides which calendar day attendance events fall on.
	Location       *time.Location
	PasswordParams auth.Argon2idParams
	Activity       ActivityRecorder
	Now            func() time.Time
	IDGenerator    func() string
	Logger         *slog.Logger
}

// NewOfficeFromSeed registers the seeded users, devices and rooms and
// returns a logged out service.
func NewOfficeFromSeed(ctx context.Context, seed config.Seed, settings OfficeSettings) (*OfficeService, error) {
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	now := settings.Now
	if now == nil {
		now = time.Now
	}
	dayClock := now
	if loc := settings.Location; loc != nil {
		dayClock = func() time.Time { return now().In(loc) }
	}

	credentials := auth.NewCredentialStore(settings.PasswordParams)
	for _, u := range seed.Users {
		role, err := auth.ParseRole(u.Role)
		if err != nil {
			return nil, err
		}
		if err := credentials.Register(u.ID, u.Password, role); err != nil {
			return nil, fmt.Errorf("registering user %s: %w", u.ID, err)
		}
	}

	devices := device.NewRegistry()
	for _, d := range seed.Devices {
		kind, err := device.ParseKind(d.Kind)
		if err != nil {
			return nil, err
		}
		if err := devices.Add(device.New(d.ID, d.Location, kind)); err != nil {
			return nil, fmt.Errorf("registering device %s: %w", d.ID, err)
		}
	}

	rooms := booking.NewRegistry()
	roomOpts := []booking.Option{
		booking.WithMaxBookings(settings.MaxBookings),
		booking.WithClock(now),
		booking.WithIDGenerator(settings.IDGenerator),
	}
	for _, r := range seed.Rooms {
		if err := rooms.Add(booking.NewRoom(r.ID, r.Capacity, r.Projector, roomOpts...)); err != nil {
			return nil, fmt.Errorf("registering room %s: %w", r.ID, err)
		}
	}

	sessionOpts := []auth.SessionOption{auth.WithSessionClock(now)}
	if settings.IDGenerator != nil {
		sessionOpts = append(sessionOpts, auth.WithSessionIDGenerator(settings.IDGenerator))
	}

	svc := NewOfficeService(OfficeDependencies{
		Devices:            devices,
		Rooms:              rooms,
		Attendance:         attendance.NewLedger(dayClock, settings.Activity),
		Session:            auth.NewSession(credentials, credentials, sessionOpts...),
		Activity:           settings.Activity,
		RestrictedLocation: settings.RestrictedLocation,
		Now:                now,
		Logger:             settings.Logger,
	})

	svc.record(ctx, "System initialized with sample data.")
	if batch, ok := settings.Activity.(batchRecorder); ok {
		batch.RecordBatch(ctx, "SystemStart", "DataLoaded", "Ready")
	}
	svc.loggerWith(ctx, "NewOfficeFromSeed",
		"users", credentials.Len(),
		"devices", devices.Len(),
		"rooms", len(rooms.All()),
	).InfoContext(ctx, "office initialized")

	return svc, nil
}
