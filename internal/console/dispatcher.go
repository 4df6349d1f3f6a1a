package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/smart-office/internal/auth"
	"github.com/example/smart-office/internal/logging"
)

type officeService interface {
	Login(ctx context.Context, id, secret string) (string, error)
	Logout(ctx context.Context) (string, error)
	IsLoggedIn() bool
	CurrentPrincipal() (auth.Principal, bool)
	ListDeviceStatus(ctx context.Context) (string, error)
	ControlDevice(ctx context.Context, id, action string) (string, error)
	AdjustDevice(ctx context.Context, id, setting, value string) (string, error)
	ListRoomAvailability(ctx context.Context) (string, error)
	BookRoom(ctx context.Context, roomID, slot string) (string, error)
	CheckInBooking(ctx context.Context, roomID, slot string) (string, error)
	ReleaseUnusedBookings(ctx context.Context, roomID string) (string, error)
	EmployeeCheckIn(ctx context.Context) (string, error)
	EmployeeCheckOut(ctx context.Context) (string, error)
	AttendanceReport(ctx context.Context) (string, error)
	AdminPanel(ctx context.Context) (string, error)
}

// PasswordReader reads a secret without echoing it.
type PasswordReader func() (string, error)

// Dispatcher runs the menu loop against an office service.
type Dispatcher struct {
	service      officeService
	input        *bufio.Scanner
	responder    responder
	logger       *slog.Logger
	readPassword PasswordReader
	commands     atomic.Uint64
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the base logger for per-command loggers.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithPasswordReader replaces reading the password from the input stream.
func WithPasswordReader(read PasswordReader) Option {
	return func(d *Dispatcher) {
		d.readPassword = read
	}
}

// NewDispatcher reads commands from in, writes results to out and booking
// failures to errOut.
func NewDispatcher(service officeService, in io.Reader, out, errOut io.Writer, opts ...Option) *Dispatcher {
	if in == nil {
		in = strings.NewReader("")
	}
	d := &Dispatcher{
		service: service,
		input:   bufio.NewScanner(in),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.responder = newResponder(out, errOut, d.logger)
	return d
}

// Run shows the menus until the user exits, the input ends or ctx is done.
// End of input is not an error.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d == nil || d.service == nil {
		return fmt.Errorf("Dispatcher is nil")
	}
	d.responder.println(ctx, "Welcome to the Smart Office Management System")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			exit bool
			err  error
		)
		if d.service.IsLoggedIn() {
			err = d.mainMenu(ctx)
		} else {
			exit, err = d.loginMenu(ctx)
		}

		switch {
		case errors.Is(err, io.EOF):
			d.logger.InfoContext(ctx, "input closed")
			return nil
		case err != nil:
			return err
		case exit:
			return nil
		}
	}
}

func (d *Dispatcher) loginMenu(ctx context.Context) (bool, error) {
	d.responder.println(ctx, "\nPlease log in to continue:\n1. Login\n2. Exit")
	choice, err := d.readChoice(ctx)
	if err != nil {
		return false, err
	}

	switch choice {
	case 1:
		return false, d.handleLogin(ctx)
	case 2:
		d.responder.println(ctx, "Exiting system. Goodbye.")
		return true, nil
	default:
		d.responder.println(ctx, "Invalid choice. Please try again.")
		return false, nil
	}
}

func (d *Dispatcher) handleLogin(ctx context.Context) error {
	username, err := d.ask(ctx, "Enter username: ")
	if err != nil {
		return err
	}
	d.responder.prompt(ctx, "Enter password: ")
	password, err := d.password()
	if err != nil {
		return err
	}
	d.dispatch(ctx, "login", func(ctx context.Context) (string, error) {
		return d.service.Login(ctx, username, password)
	})
	return nil
}

var mainMenuItems = []string{
	"1. View Device Status",
	"2. Control Device",
	"3. View Room Availability",
	"4. Book a Room",
	"5. Check-In to Office (Attendance)",
	"6. Check-Out from Office (Attendance)",
	"7. Generate Attendance Report",
	"8. Admin Panel (Admin Only)",
	"9. Logout",
	"10. Adjust Device Setting",
	"11. Check-In to Room Booking",
	"12. Release Unused Bookings (Admin Only)",
}

func (d *Dispatcher) mainMenu(ctx context.Context) error {
	header := "\n--- Smart Office Main Menu ---"
	if p, ok := d.service.CurrentPrincipal(); ok {
		header += fmt.Sprintf("\nUser: %s (%s)", p.ID, p.Role)
	}
	d.responder.println(ctx, header+"\n"+strings.Join(mainMenuItems, "\n"))

	choice, err := d.readChoice(ctx)
	if err != nil {
		return err
	}

	switch choice {
	case 1:
		d.dispatch(ctx, "device_status", d.service.ListDeviceStatus)
	case 2:
		return d.handleDeviceControl(ctx)
	case 3:
		d.dispatch(ctx, "room_availability", d.service.ListRoomAvailability)
	case 4:
		return d.handleRoomBooking(ctx)
	case 5:
		d.dispatch(ctx, "check_in", d.service.EmployeeCheckIn)
	case 6:
		d.dispatch(ctx, "check_out", d.service.EmployeeCheckOut)
	case 7:
		d.dispatch(ctx, "attendance_report", d.service.AttendanceReport)
	case 8:
		d.dispatch(ctx, "admin_panel", d.service.AdminPanel)
	case 9:
		d.dispatch(ctx, "logout", d.service.Logout)
	case 10:
		return d.handleDeviceAdjust(ctx)
	case 11:
		return d.handleBookingCheckIn(ctx)
	case 12:
		return d.handleRelease(ctx)
	default:
		d.responder.println(ctx, "Invalid choice. Please try again.")
	}
	return nil
}

func (d *Dispatcher) handleDeviceControl(ctx context.Context) error {
	id, err := d.ask(ctx, "Enter Device ID (e.g., L1, A1, P1): ")
	if err != nil {
		return err
	}
	action, err := d.ask(ctx, "Enter Action (on/off): ")
	if err != nil {
		return err
	}
	d.dispatch(ctx, "control_device", func(ctx context.Context) (string, error) {
		return d.service.ControlDevice(ctx, id, action)
	})
	return nil
}

func (d *Dispatcher) handleDeviceAdjust(ctx context.Context) error {
	id, err := d.ask(ctx, "Enter Device ID (e.g., L1, A1, P1): ")
	if err != nil {
		return err
	}
	setting, err := d.ask(ctx, "Enter Setting (brightness/temperature/input): ")
	if err != nil {
		return err
	}
	value, err := d.ask(ctx, "Enter Value: ")
	if err != nil {
		return err
	}
	d.dispatch(ctx, "adjust_device", func(ctx context.Context) (string, error) {
		return d.service.AdjustDevice(ctx, id, setting, value)
	})
	return nil
}

func (d *Dispatcher) askRoomSlot(ctx context.Context) (string, string, error) {
	roomID, err := d.ask(ctx, "Enter Room ID (e.g., ConfA, ConfB): ")
	if err != nil {
		return "", "", err
	}
	slot, err := d.ask(ctx, "Enter Time Slot (e.g., 14:00-15:00): ")
	if err != nil {
		return "", "", err
	}
	return roomID, slot, nil
}

func (d *Dispatcher) handleRoomBooking(ctx context.Context) error {
	roomID, slot, err := d.askRoomSlot(ctx)
	if err != nil {
		return err
	}
	d.dispatch(ctx, "book_room", func(ctx context.Context) (string, error) {
		return d.service.BookRoom(ctx, roomID, slot)
	})
	return nil
}

func (d *Dispatcher) handleBookingCheckIn(ctx context.Context) error {
	roomID, slot, err := d.askRoomSlot(ctx)
	if err != nil {
		return err
	}
	d.dispatch(ctx, "check_in_booking", func(ctx context.Context) (string, error) {
		return d.service.CheckInBooking(ctx, roomID, slot)
	})
	return nil
}

func (d *Dispatcher) handleRelease(ctx context.Context) error {
	roomID, err := d.ask(ctx, "Enter Room ID (blank for all rooms): ")
	if err != nil {
		return err
	}
	d.dispatch(ctx, "release_bookings", func(ctx context.Context) (string, error) {
		return d.service.ReleaseUnusedBookings(ctx, roomID)
	})
	return nil
}

// dispatch runs one service operation with a command scoped logger in ctx and
// renders its result.
func (d *Dispatcher) dispatch(ctx context.Context, command string, run func(context.Context) (string, error)) {
	logger := d.logger.With("command_id", d.commands.Add(1), "command", command)
	ctx = logging.ContextWithLogger(ctx, logger)

	start := time.Now()
	logger.DebugContext(ctx, "command started")
	out, err := run(ctx)
	if err != nil {
		d.responder.handleServiceError(ctx, err)
	} else {
		d.responder.println(ctx, out)
	}
	logger.DebugContext(ctx, "command completed", "duration", time.Since(start), "failed", err != nil)
}

func (d *Dispatcher) ask(ctx context.Context, prompt string) (string, error) {
	d.responder.prompt(ctx, prompt)
	line, err := d.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (d *Dispatcher) password() (string, error) {
	if d.readPassword != nil {
		return d.readPassword()
	}
	return d.readLine()
}

// readChoice returns -1 for input that is not a number.
func (d *Dispatcher) readChoice(ctx context.Context) (int, error) {
	d.responder.prompt(ctx, "Enter choice: ")
	line, err := d.readLine()
	if err != nil {
		return 0, err
	}
	choice, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		d.responder.println(ctx, "Invalid input. Please enter a number.")
		return -1, nil
	}
	return choice, nil
}

func (d *Dispatcher) readLine() (string, error) {
	if d.input.Scan() {
		return d.input.Text(), nil
	}
	if err := d.input.Err(); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return "", io.EOF
}
