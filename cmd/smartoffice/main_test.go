package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/smart-office/internal/activity"
)

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SMARTOFFICE_LOG_LEVEL",
		"SMARTOFFICE_LOG_FORMAT",
		"SMARTOFFICE_ACTIVITY_SINK",
		"SMARTOFFICE_ACTIVITY_LOG",
		"SMARTOFFICE_SQLITE_DSN",
		"SMARTOFFICE_RESTRICTED_LOCATION",
		"SMARTOFFICE_MAX_BOOKINGS",
		"SMARTOFFICE_TIMEZONE",
		"SMARTOFFICE_SEED_FILE",
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

const bookingScript = "1\nadmin\nadmin123\n4\nConfA\n10:00-11:00\n4\nConfA\n10:00-11:00\n9\n2\n"

func TestRun_FileSink(t *testing.T) {
	clearEnvironment(t)
	logPath := filepath.Join(t.TempDir(), "activity.log")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--activity-log", logPath, "--timezone", "UTC"}, strings.NewReader(bookingScript), &stdout, &stderr)
	if err != nil {
		t.Fatalf("run failed: %v (stderr: %s)", err, stderr.String())
	}

	if !strings.Contains(stdout.String(), "Room ConfA successfully booked for 10:00-11:00 by admin") {
		t.Fatalf("expected booking confirmation, got:\n%s", stdout.String())
	}
	if got, want := stderr.String(), "Booking Failed: Room ConfA is already booked for 10:00-11:00\n"; got != want {
		t.Fatalf("expected only the booking failure on stderr, got:\n%s", got)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read activity log: %v", err)
	}
	for _, want := range []string{
		"] System initialized with sample data.",
		"] [BATCH] SystemStart",
		"] Login success for user: admin",
		"] User admin booked ConfA for 10:00-11:00",
		"] Booking FAILED for admin on ConfA",
		"] Logout for user: admin",
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected activity log to contain %q, got:\n%s", want, data)
		}
	}
}

func TestRun_SQLiteSink(t *testing.T) {
	clearEnvironment(t)
	dbPath := filepath.Join(t.TempDir(), "activity.db")

	var stdout, stderr bytes.Buffer
	args := []string{"--activity-sink", "SQLITE", "--sqlite-dsn", dbPath, "--log-format", "json", "--log-level", "info"}
	if err := run(context.Background(), args, strings.NewReader(bookingScript), &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v (stderr: %s)", err, stderr.String())
	}
	if !strings.Contains(stderr.String(), `"msg":"smart office ready"`) {
		t.Fatalf("expected json logs on stderr, got:\n%s", stderr.String())
	}

	sink, err := activity.OpenSQLiteSink(context.Background(), activity.DefaultSQLiteConfig(dbPath))
	if err != nil {
		t.Fatalf("failed to reopen activity database: %v", err)
	}
	defer sink.Close()

	entries, err := sink.Entries(context.Background(), 0)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	messages := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, e.Message)
	}
	joined := strings.Join(messages, "\n")
	for _, want := range []string{"Login success for user: admin", "Booking FAILED for admin on ConfA", "Logout for user: admin"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in activity database, got:\n%s", want, joined)
		}
	}
}

func TestRun_SeedFile(t *testing.T) {
	clearEnvironment(t)
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "office.yaml")
	seed := `users:
  - id: ops
    password: ops-secret
    role: admin
devices:
  - id: H1
    kind: climate
    location: Server Room
rooms:
  - id: Huddle
    capacity: 3
`
	if err := os.WriteFile(seedPath, []byte(seed), 0o600); err != nil {
		t.Fatalf("failed to write seed: %v", err)
	}

	var stdout, stderr bytes.Buffer
	script := "1\nops\nops-secret\n1\n3\n9\n2\n"
	args := []string{"--seed", seedPath, "--activity-sink", "none", "--restricted-location", "Server Room"}
	if err := run(context.Background(), args, strings.NewReader(script), &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v (stderr: %s)", err, stderr.String())
	}
	for _, want := range []string{
		"Login successful. Welcome, ops (ADMIN)",
		"Device: H1 (Server Room) | Status: Off | Energy Usage: 0.0W | Target Temp: 24°C",
		"Room Huddle (Cap: 3) is completely free.",
	} {
		if !strings.Contains(stdout.String(), want) {
			t.Fatalf("expected %q in output, got:\n%s", want, stdout.String())
		}
	}
}

func TestRun_ConfigurationErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{name: "invalid flag value", args: []string{"--max-bookings", "0"}, want: "max bookings"},
		{name: "unknown sink", args: []string{"--activity-sink", "kafka"}, want: "activity sink"},
		{name: "bad timezone", args: []string{"--timezone", "Mars/Olympus"}, want: "invalid timezone"},
		{name: "positional argument", args: []string{"extra"}, want: "unexpected argument: extra"},
		{name: "invalid environment", env: map[string]string{"SMARTOFFICE_LOG_FORMAT": "xml"}, want: "SMARTOFFICE_LOG_FORMAT"},
		{name: "missing seed file", args: []string{"--seed", "/nonexistent/office.yaml", "--activity-sink", "none"}, want: "reading seed file"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnvironment(t)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}

			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tc.args, strings.NewReader(""), &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
			if stdout.Len() != 0 {
				t.Fatalf("expected no console output, got %q", stdout.String())
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	clearEnvironment(t)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--help"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("expected help to succeed, got %v", err)
	}
	if !strings.Contains(stderr.String(), "--activity-sink") {
		t.Fatalf("expected flag usage on stderr, got:\n%s", stderr.String())
	}
}

func TestRun_CancelledContext(t *testing.T) {
	clearEnvironment(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	if err := run(ctx, []string{"--activity-sink", "none"}, strings.NewReader(bookingScript), &stdout, &stderr); err != nil {
		t.Fatalf("expected cancellation to stop cleanly, got %v", err)
	}
}
