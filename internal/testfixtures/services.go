package testfixtures

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/smart-office/internal/application"
	"github.com/example/smart-office/internal/config"
)

// ActivityLog is an in-memory activity recorder that keeps every message.
type ActivityLog struct {
	mu       sync.Mutex
	messages []string
	err      error
}

// Record appends message.
func (l *ActivityLog) Record(_ context.Context, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)
}

// Messages returns a copy of the recorded messages.
func (l *ActivityLog) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.messages))
	copy(out, l.messages)
	return out
}

// Contains reports whether any message contains fragment.
func (l *ActivityLog) Contains(fragment string) bool {
	for _, msg := range l.Messages() {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// Fail makes Err report err, simulating a degraded sink.
func (l *ActivityLog) Fail(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// Err returns the simulated sink failure.
func (l *ActivityLog) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// OfficeServiceDeps captures dependencies for constructing an office service.
// Zero values fall back to the sample office, a fresh ActivityLog and the
// factory clock and identifiers.
type OfficeServiceDeps struct {
	Seed               *config.Seed
	Activity           application.ActivityRecorder
	RestrictedLocation string
	MaxBookings        int
	Logger             *slog.Logger
}

// NewOfficeService builds an office service, failing the test on error.
func (f *ServiceFactory) NewOfficeService(tb testing.TB, deps OfficeServiceDeps) *application.OfficeService {
	tb.Helper()

	seed := config.DefaultSeed()
	if deps.Seed != nil {
		seed = *deps.Seed
	}
	if deps.Activity == nil {
		deps.Activity = &ActivityLog{}
	}

	svc, err := application.NewOfficeFromSeed(context.Background(), seed, application.OfficeSettings{
		RestrictedLocation: deps.RestrictedLocation,
		MaxBookings:        deps.MaxBookings,
		Location:           time.UTC,
		PasswordParams:     CheapPasswordParams,
		Activity:           deps.Activity,
		Now:                f.Clock.NowFunc(),
		IDGenerator:        f.IDGenerator.NextFunc(),
		Logger:             deps.Logger,
	})
	if err != nil {
		tb.Fatalf("NewOfficeFromSeed failed: %v", err)
	}
	return svc
}

// LoggedIn builds an office service with id already logged in.
func (f *ServiceFactory) LoggedIn(tb testing.TB, deps OfficeServiceDeps, id, password string) *application.OfficeService {
	tb.Helper()

	svc := f.NewOfficeService(tb, deps)
	if _, err := svc.Login(context.Background(), id, password); err != nil {
		tb.Fatalf("Login(%s) failed: %v", id, err)
	}
	return svc
}
