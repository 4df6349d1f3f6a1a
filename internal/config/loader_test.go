package config

import (
	"os"
	"testing"
)

var allVariables = []string{
	"SMARTOFFICE_LOG_LEVEL",
	"SMARTOFFICE_LOG_FORMAT",
	"SMARTOFFICE_ACTIVITY_SINK",
	"SMARTOFFICE_ACTIVITY_LOG",
	"SMARTOFFICE_SQLITE_DSN",
	"SMARTOFFICE_RESTRICTED_LOCATION",
	"SMARTOFFICE_MAX_BOOKINGS",
	"SMARTOFFICE_TIMEZONE",
	"SMARTOFFICE_SEED_FILE",
}

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range allVariables {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.ActivitySink != SinkFile {
			t.Fatalf("expected default sink %q, got %q", SinkFile, cfg.ActivitySink)
		}
		if cfg.LogLevel != "warn" {
			t.Fatalf("expected default log level warn, got %q", cfg.LogLevel)
		}
		if cfg.ActivityLogPath != "smart_office_activity.log" {
			t.Fatalf("unexpected default log path: %q", cfg.ActivityLogPath)
		}
		if cfg.RestrictedLocation != "Main Office" {
			t.Fatalf("unexpected restricted location: %q", cfg.RestrictedLocation)
		}
		if cfg.MaxBookings != 50 {
			t.Fatalf("expected max bookings 50, got %d", cfg.MaxBookings)
		}
		if cfg.SeedFile != "" {
			t.Fatalf("expected no seed file, got %q", cfg.SeedFile)
		}
	})

	t.Run("parses overrides", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("SMARTOFFICE_LOG_LEVEL", "DEBUG")
		t.Setenv("SMARTOFFICE_LOG_FORMAT", "json")
		t.Setenv("SMARTOFFICE_ACTIVITY_SINK", "sqlite")
		t.Setenv("SMARTOFFICE_SQLITE_DSN", "/tmp/activity.db")
		t.Setenv("SMARTOFFICE_RESTRICTED_LOCATION", "Server Room")
		t.Setenv("SMARTOFFICE_MAX_BOOKINGS", "3")
		t.Setenv("SMARTOFFICE_TIMEZONE", "UTC")
		t.Setenv("SMARTOFFICE_SEED_FILE", " office.yaml ")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
			t.Fatalf("unexpected logging config %q/%q", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.ActivitySink != SinkSQLite || cfg.SQLiteDSN != "/tmp/activity.db" {
			t.Fatalf("unexpected sink config %q/%q", cfg.ActivitySink, cfg.SQLiteDSN)
		}
		if cfg.RestrictedLocation != "Server Room" {
			t.Fatalf("unexpected restricted location %q", cfg.RestrictedLocation)
		}
		if cfg.MaxBookings != 3 {
			t.Fatalf("expected max bookings 3, got %d", cfg.MaxBookings)
		}
		if cfg.Location.String() != "UTC" {
			t.Fatalf("expected UTC location, got %s", cfg.Location)
		}
		if cfg.SeedFile != "office.yaml" {
			t.Fatalf("expected trimmed seed file, got %q", cfg.SeedFile)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("SMARTOFFICE_LOG_FORMAT", "xml")
		t.Setenv("SMARTOFFICE_ACTIVITY_SINK", "kafka")
		t.Setenv("SMARTOFFICE_MAX_BOOKINGS", "-1")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "invalid environment variable values: SMARTOFFICE_LOG_FORMAT, SMARTOFFICE_ACTIVITY_SINK, SMARTOFFICE_MAX_BOOKINGS"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := Defaults().Validate(); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}

	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.ActivitySink = SinkSQLite
	cfg.SQLiteDSN = " "
	cfg.MaxBookings = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected invalid configuration to fail")
	}
	expected := "invalid configuration values: log level, sqlite dsn, max bookings"
	if err.Error() != expected {
		t.Fatalf("unexpected error message: %q", err.Error())
	}

	none := Defaults()
	none.ActivitySink = SinkNone
	none.ActivityLogPath = ""
	if err := none.Validate(); err != nil {
		t.Fatalf("expected sink none to ignore the log path, got %v", err)
	}
}
