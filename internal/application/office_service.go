package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/smart-office/internal/attendance"
	"github.com/example/smart-office/internal/auth"
	"github.com/example/smart-office/internal/booking"
	"github.com/example/smart-office/internal/device"
)

const recentActivityLimit = 5

// OfficeService is the dispatcher facing API. Every operation except Login
// and Logout needs an active session, and authorization is decided here
// before any device, room or attendance state is touched.
type OfficeService struct {
	devices            *device.Registry
	rooms              *booking.Registry
	attendance         *attendance.Ledger
	session            *auth.Session
	activity           ActivityRecorder
	restrictedLocation string
	now                func() time.Time
	logger             *slog.Logger
}

// NewOfficeService constructs the service. Missing registries and ledgers
// are replaced by empty ones.
func NewOfficeService(deps OfficeDependencies) *OfficeService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Devices == nil {
		deps.Devices = device.NewRegistry()
	}
	if deps.Rooms == nil {
		deps.Rooms = booking.NewRegistry()
	}
	if deps.Attendance == nil {
		deps.Attendance = attendance.NewLedger(deps.Now, deps.Activity)
	}
	if deps.Session == nil {
		deps.Session = auth.NewSession(nil, nil)
	}
	if strings.TrimSpace(deps.RestrictedLocation) == "" {
		deps.RestrictedLocation = DefaultRestrictedLocation
	}
	return &OfficeService{
		devices:            deps.Devices,
		rooms:              deps.Rooms,
		attendance:         deps.Attendance,
		session:            deps.Session,
		activity:           deps.Activity,
		restrictedLocation: deps.RestrictedLocation,
		now:                deps.Now,
		logger:             defaultLogger(deps.Logger),
	}
}

func (s *OfficeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "OfficeService", operation, attrs...)
}

// logOutcome logs requests rejected for a known reason at info
// and reserves error for unexpected and sink failures.
func logOutcome(ctx context.Context, logger *slog.Logger, err error, failed, succeeded string) {
	if err == nil {
		logger.InfoContext(ctx, succeeded)
		return
	}
	kind := ErrorKind(err)
	level := slog.LevelInfo
	if kind == "unexpected" || kind == "sink_write_failed" {
		level = slog.LevelError
	}
	logger.Log(ctx, level, failed, "error", err, "error_kind", kind)
}

func (s *OfficeService) record(ctx context.Context, message string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, message)
}

// principal returns the logged in principal or ErrNotLoggedIn.
func (s *OfficeService) principal() (auth.Principal, error) {
	snap, err := s.session.Current()
	if err != nil {
		return auth.Principal{}, failure(ErrNotLoggedIn, err, "Please log in first.")
	}
	return snap.Principal, nil
}

// authorize evaluates the permission table. Denials are forwarded to the
// activity log with the acting principal and the attempted action.
func (s *OfficeService) authorize(ctx context.Context, p auth.Principal, op auth.Operation, action string) error {
	if auth.Allowed(p.Role, op) {
		return nil
	}
	denied := &DeniedError{PrincipalID: p.ID, Action: action, Reason: denialReason(op)}
	s.record(ctx, denied.LogMessage())
	return denied
}

func denialReason(op auth.Operation) string {
	switch op {
	case auth.OpControlRestrictedDevice:
		return "Employees can only control devices in common areas."
	case auth.OpAdminPanel, auth.OpReleaseRooms:
		return "This feature is for Admins only."
	}
	return "Your role does not permit this operation."
}

// Login verifies the credentials and starts a session. A failed attempt
// keeps whatever session was active.
func (s *OfficeService) Login(ctx context.Context, id, secret string) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	id = strings.TrimSpace(id)

	logger := s.loggerWith(ctx, "Login", "principal_id", id)
	defer func() { logOutcome(ctx, logger, err, "login failed", "login succeeded") }()

	snap, lerr := s.session.Login(ctx, id, secret)
	if lerr != nil {
		s.record(ctx, "Login failed for user: "+id)
		err = failure(ErrInvalidCredentials, lerr, "Invalid username or password.")
		return
	}

	s.record(ctx, "Login success for user: "+id)
	out = fmt.Sprintf("Login successful. Welcome, %s (%s)", snap.Principal.ID, snap.Principal.Role)
	return
}

// Logout ends the session. It succeeds even when nobody is logged in.
func (s *OfficeService) Logout(ctx context.Context) (string, error) {
	if s == nil {
		return "", fmt.Errorf("OfficeService is nil")
	}
	prev, was := s.session.Logout()
	if was {
		s.record(ctx, "Logout for user: "+prev.ID)
		s.loggerWith(ctx, "Logout", "principal_id", prev.ID).InfoContext(ctx, "logout succeeded")
	}
	return "You have been logged out.", nil
}

func (s *OfficeService) IsLoggedIn() bool {
	return s != nil && s.session.IsLoggedIn()
}

// CurrentPrincipal returns the logged in principal, if any.
func (s *OfficeService) CurrentPrincipal() (auth.Principal, bool) {
	if s == nil {
		return auth.Principal{}, false
	}
	snap, err := s.session.Current()
	if err != nil {
		return auth.Principal{}, false
	}
	return snap.Principal, true
}

// ListDeviceStatus renders every device in registration order.
func (s *OfficeService) ListDeviceStatus(ctx context.Context) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "ListDeviceStatus")
	defer func() { logOutcome(ctx, logger, err, "failed to list devices", "devices listed") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpViewDevices, "Device Status"); err != nil {
		return
	}

	lines := []string{"--- All Device Status ---"}
	for _, d := range s.devices.All() {
		var c device.Controllable = d
		lines = append(lines, c.Status())
	}
	out = strings.Join(lines, "\n")
	return
}

// lookupDevice resolves id and applies the location rule for control.
func (s *OfficeService) lookupDevice(ctx context.Context, p auth.Principal, id string) (*device.Device, error) {
	d, err := s.devices.Lookup(id)
	if err != nil {
		return nil, failure(ErrNotFound, err, "Error: Device '%s' not found.", strings.TrimSpace(id))
	}
	op := auth.OpControlDevice
	if strings.EqualFold(d.Location(), s.restrictedLocation) {
		op = auth.OpControlRestrictedDevice
	}
	if err := s.authorize(ctx, p, op, d.ID()); err != nil {
		return nil, err
	}
	return d, nil
}

// ControlDevice turns a device on or off.
func (s *OfficeService) ControlDevice(ctx context.Context, id, action string) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "ControlDevice", "device_id", id, "action", action)
	defer func() { logOutcome(ctx, logger, err, "failed to control device", "device controlled") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	var d *device.Device
	if d, err = s.lookupDevice(ctx, p, id); err != nil {
		return
	}

	var c device.Controllable = d
	switch DeviceAction(strings.ToLower(strings.TrimSpace(action))) {
	case ActionOn:
		c.TurnOn()
		out = fmt.Sprintf("%s in %s has been turned ON.", d.ID(), d.Location())
		s.record(ctx, fmt.Sprintf("User %s: Turned ON %s", p.ID, d.ID()))
	case ActionOff:
		c.TurnOff()
		out = fmt.Sprintf("%s in %s has been turned OFF.", d.ID(), d.Location())
		s.record(ctx, fmt.Sprintf("User %s: Turned OFF %s", p.ID, d.ID()))
	default:
		err = invalidField("action", "Invalid action. Use 'on' or 'off'.")
	}
	return
}

// AdjustDevice changes a kind specific setting: brightness, temperature or input.
func (s *OfficeService) AdjustDevice(ctx context.Context, id, setting, value string) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	setting = strings.ToLower(strings.TrimSpace(setting))
	value = strings.TrimSpace(value)

	logger := s.loggerWith(ctx, "AdjustDevice", "device_id", id, "setting", setting)
	defer func() { logOutcome(ctx, logger, err, "failed to adjust device", "device adjusted") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	var d *device.Device
	if d, err = s.lookupDevice(ctx, p, id); err != nil {
		return
	}

	switch setting {
	case SettingBrightness:
		level, convErr := strconv.Atoi(value)
		if convErr != nil {
			err = invalidField("value", fmt.Sprintf("Invalid brightness '%s'. Enter a whole number.", value))
			return
		}
		if err = mapDeviceError(d.SetBrightness(level), d, setting); err != nil {
			return
		}
		if d.IsOn() {
			out = fmt.Sprintf("%s brightness set to %d%%.", d.ID(), d.Brightness())
		} else {
			out = fmt.Sprintf("%s in %s has been turned OFF.", d.ID(), d.Location())
		}
	case SettingTemperature:
		celsius, convErr := strconv.Atoi(value)
		if convErr != nil {
			err = invalidField("value", fmt.Sprintf("Invalid temperature '%s'. Enter a whole number.", value))
			return
		}
		if err = mapDeviceError(d.SetTemperature(celsius), d, setting); err != nil {
			return
		}
		out = fmt.Sprintf("%s temperature set to %d°C.", d.ID(), d.TargetTemperature())
	case SettingInput:
		if err = mapDeviceError(d.SetInputSource(value), d, setting); err != nil {
			return
		}
		out = fmt.Sprintf("%s source switched to %s.", d.ID(), d.InputSource())
	default:
		err = invalidField("setting", fmt.Sprintf("Unknown setting '%s'. Use brightness, temperature or input.", setting))
		return
	}

	s.record(ctx, fmt.Sprintf("User %s: Set %s %s to %s", p.ID, d.ID(), setting, value))
	return
}

func mapDeviceError(err error, d *device.Device, setting string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, device.ErrKindMismatch):
		return failure(ErrInvalidInput, err, "Device %s does not support %s.", d.ID(), setting)
	case errors.Is(err, device.ErrDeviceOff):
		return failure(ErrInvalidInput, err, "%s is off. Turn it on to set %s.", d.ID(), setting)
	case errors.Is(err, device.ErrInvalidSetting):
		return invalidField("value", fmt.Sprintf("A value is required to set %s.", setting))
	}
	return err
}

// ListRoomAvailability renders the booking summary of every room.
func (s *OfficeService) ListRoomAvailability(ctx context.Context) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "ListRoomAvailability")
	defer func() { logOutcome(ctx, logger, err, "failed to list rooms", "rooms listed") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpViewRooms, "Room Availability"); err != nil {
		return
	}

	lines := []string{"--- Room Availability ---"}
	for _, room := range s.rooms.All() {
		lines = append(lines, strings.TrimRight(room.AvailabilitySummary(), "\n"))
	}
	out = strings.Join(lines, "\n")
	return
}

// RoomAvailability renders the booking summary of one room.
func (s *OfficeService) RoomAvailability(ctx context.Context, roomID string) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "RoomAvailability", "room_id", roomID)
	defer func() { logOutcome(ctx, logger, err, "failed to show room", "room shown") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpViewRooms, "Room Availability"); err != nil {
		return
	}
	var room *booking.Room
	if room, err = s.lookupRoom(roomID); err != nil {
		return
	}
	out = strings.TrimRight(room.AvailabilitySummary(), "\n")
	return
}

func (s *OfficeService) lookupRoom(id string) (*booking.Room, error) {
	room, err := s.rooms.Lookup(id)
	if err != nil {
		return nil, failure(ErrNotFound, err, "Error: Room '%s' not found.", strings.TrimSpace(id))
	}
	return room, nil
}

// BookRoom reserves slot in roomID for the logged in principal.
func (s *OfficeService) BookRoom(ctx context.Context, roomID, slot string) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "BookRoom", "room_id", roomID, "slot", slot)
	defer func() { logOutcome(ctx, logger, err, "failed to book room", "room booked") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	var room *booking.Room
	if room, err = s.lookupRoom(roomID); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpBookRoom, room.ID()); err != nil {
		return
	}

	b, berr := room.Book(p.ID, slot)
	if berr != nil {
		if errors.Is(berr, booking.ErrInvalidSlot) {
			err = invalidField("slot", "Time slot cannot be empty.")
			return
		}
		s.record(ctx, fmt.Sprintf("Booking FAILED for %s on %s", p.ID, room.ID()))
		err = failure(ErrRoomUnavailable, berr, "%s", berr.Error())
		return
	}

	s.record(ctx, fmt.Sprintf("User %s booked %s for %s", p.ID, room.ID(), b.Slot))
	out = fmt.Sprintf("Room %s successfully booked for %s by %s", room.ID(), b.Slot, p.ID)
	return
}

// CheckInBooking marks the booking for slot in roomID as used so that it
// survives the next release sweep.
func (s *OfficeService) CheckInBooking(ctx context.Context, roomID, slot string) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "CheckInBooking", "room_id", roomID, "slot", slot)
	defer func() { logOutcome(ctx, logger, err, "failed to check in booking", "booking checked in") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	var room *booking.Room
	if room, err = s.lookupRoom(roomID); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpBookRoom, room.ID()); err != nil {
		return
	}

	b, berr := room.CheckInSlot(slot)
	if berr != nil {
		err = failure(ErrNotFound, berr, "Error: No booking for %s in %s.", strings.TrimSpace(slot), room.ID())
		return
	}

	s.record(ctx, fmt.Sprintf("User %s checked into %s for %s", p.ID, room.ID(), b.Slot))
	out = fmt.Sprintf("%s checked into %s for %s", b.Occupant, room.ID(), b.Slot)
	return
}

// ReleaseUnusedBookings sweeps roomID, or every room when roomID is blank,
// dropping bookings that were never checked in.
func (s *OfficeService) ReleaseUnusedBookings(ctx context.Context, roomID string) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "ReleaseUnusedBookings", "room_id", roomID)
	defer func() { logOutcome(ctx, logger, err, "failed to release bookings", "bookings released") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpReleaseRooms, "Release Unused Bookings"); err != nil {
		return
	}

	rooms := s.rooms.All()
	if strings.TrimSpace(roomID) != "" {
		var room *booking.Room
		if room, err = s.lookupRoom(roomID); err != nil {
			return
		}
		rooms = []*booking.Room{room}
	}

	lines := make([]string, 0, 2*len(rooms))
	for _, room := range rooms {
		lines = append(lines, fmt.Sprintf("Checking for unused bookings in %s...", room.ID()))
		removed := room.AutoRelease()
		if removed > 0 {
			lines = append(lines, fmt.Sprintf("Auto-released %d unused bookings.", removed))
		} else {
			lines = append(lines, "No unused bookings to release.")
		}
		s.record(ctx, fmt.Sprintf("%s auto-released %d unused bookings in %s", p.ID, removed, room.ID()))
	}
	out = strings.Join(lines, "\n")
	return
}

// EmployeeCheckIn opens today's attendance record. A repeated check-in is
// reported but not treated as a failure.
func (s *OfficeService) EmployeeCheckIn(ctx context.Context) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "EmployeeCheckIn")
	defer func() { logOutcome(ctx, logger, err, "failed to check in", "check-in handled") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpRecordAttendance, "Attendance"); err != nil {
		return
	}

	rec, ok := s.attendance.CheckIn(ctx, p.ID)
	switch {
	case ok:
		out = p.ID + " checked IN"
	case rec.Open():
		out = fmt.Sprintf("Check-in ignored: %s is already checked in today.", p.ID)
	default:
		out = fmt.Sprintf("Check-in ignored: %s has already checked out today.", p.ID)
	}
	return
}

// EmployeeCheckOut closes today's attendance record.
func (s *OfficeService) EmployeeCheckOut(ctx context.Context) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "EmployeeCheckOut")
	defer func() { logOutcome(ctx, logger, err, "failed to check out", "check-out handled") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpRecordAttendance, "Attendance"); err != nil {
		return
	}

	if _, ok := s.attendance.CheckOut(ctx, p.ID); ok {
		out = p.ID + " checked OUT"
	} else {
		out = fmt.Sprintf("Check-out ignored: %s has no open check-in today.", p.ID)
	}
	return
}

// AttendanceReport returns the full report to principals allowed to see it
// and the caller's own report to everybody else.
func (s *OfficeService) AttendanceReport(ctx context.Context) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "AttendanceReport")
	defer func() { logOutcome(ctx, logger, err, "failed to build attendance report", "attendance report built") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}

	if auth.Allowed(p.Role, auth.OpFullAttendanceReport) {
		out = strings.TrimRight(s.attendance.Report(), "\n")
		s.record(ctx, p.ID+" generated FULL attendance report.")
		return
	}
	out = strings.TrimRight(s.attendance.ReportFor(p.ID), "\n")
	s.record(ctx, p.ID+" generated OWN attendance report.")
	return
}

// AdminPanel renders system diagnostics for administrators.
func (s *OfficeService) AdminPanel(ctx context.Context) (out string, err error) {
	if s == nil {
		err = fmt.Errorf("OfficeService is nil")
		return
	}
	logger := s.loggerWith(ctx, "AdminPanel")
	defer func() { logOutcome(ctx, logger, err, "admin panel refused", "admin panel opened") }()

	var p auth.Principal
	if p, err = s.principal(); err != nil {
		return
	}
	if err = s.authorize(ctx, p, auth.OpAdminPanel, "Admin Panel"); err != nil {
		return
	}

	snap, _ := s.session.Current()
	bookings, checkedIn := 0, 0
	rooms := s.rooms.All()
	for _, room := range rooms {
		for _, b := range room.Bookings() {
			bookings++
			if b.CheckedIn {
				checkedIn++
			}
		}
	}

	lines := []string{
		"--- Admin-Only System Configuration Panel ---",
		"...running admin diagnostics...",
		fmt.Sprintf("Session: %s (%s) since %s", snap.Principal.ID, snap.Principal.Role, snap.StartedAt.Format("2006/01/02 15:04:05")),
		fmt.Sprintf("Devices: %d registered, total draw %.1fW", s.devices.Len(), s.devices.TotalDraw()),
		fmt.Sprintf("Rooms: %d registered, %d bookings (%d checked in)", len(rooms), bookings, checkedIn),
	}
	if healthErr := s.ActivityStatus(); healthErr != nil {
		lines = append(lines, "Activity log: DEGRADED ("+healthErr.Error()+")")
	} else {
		lines = append(lines, "Activity log: OK")
	}
	if history, ok := s.activity.(activityHistory); ok {
		if entries, histErr := history.Recent(ctx, recentActivityLimit); histErr == nil && len(entries) > 0 {
			lines = append(lines, "Recent activity:")
			for _, e := range entries {
				lines = append(lines, "  "+e.Line())
			}
		}
	}

	s.record(ctx, p.ID+" accessed Admin Panel.")
	out = strings.Join(lines, "\n")
	return
}

// ActivityStatus reports a degraded activity log as ErrSinkWriteFailed.
func (s *OfficeService) ActivityStatus() error {
	if s == nil {
		return nil
	}
	health, ok := s.activity.(activityHealth)
	if !ok {
		return nil
	}
	if err := health.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWriteFailed, err)
	}
	return nil
}
