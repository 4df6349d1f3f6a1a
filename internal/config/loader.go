package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sink drivers accepted by SMARTOFFICE_ACTIVITY_SINK.
const (
	SinkFile   = "file"
	SinkSQLite = "sqlite"
	SinkNone   = "none"
)

// Config captures environment driven configuration values for the office service.
type Config struct {
	LogLevel           string
	LogFormat          string
	ActivitySink       string
	ActivityLogPath    string
	SQLiteDSN          string
	RestrictedLocation string
	MaxBookings        int
	Location           *time.Location
	SeedFile           string
}

// Defaults returns the configuration used when no variable is set.
func Defaults() Config {
	return Config{
		// The console shares stderr with booking failures; keep it quiet.
		LogLevel:           "warn",
		LogFormat:          "text",
		ActivitySink:       SinkFile,
		ActivityLogPath:    "smart_office_activity.log",
		SQLiteDSN:          "smart_office_activity.db",
		RestrictedLocation: "Main Office",
		MaxBookings:        50,
		Location:           time.Local,
	}
}

// Load parses configuration values from the current process environment.
//
// Every variable is optional. Invalid values are collected and reported
// together so a single run shows everything that needs fixing.
func Load() (Config, error) {
	cfg := Defaults()

	invalid := make([]string, 0, 4)

	if level := strings.TrimSpace(os.Getenv("SMARTOFFICE_LOG_LEVEL")); level != "" {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "warning", "error":
			cfg.LogLevel = strings.ToLower(level)
		default:
			invalid = append(invalid, "SMARTOFFICE_LOG_LEVEL")
		}
	}

	if format := strings.TrimSpace(os.Getenv("SMARTOFFICE_LOG_FORMAT")); format != "" {
		switch strings.ToLower(format) {
		case "text", "json":
			cfg.LogFormat = strings.ToLower(format)
		default:
			invalid = append(invalid, "SMARTOFFICE_LOG_FORMAT")
		}
	}

	if sink := strings.TrimSpace(os.Getenv("SMARTOFFICE_ACTIVITY_SINK")); sink != "" {
		if err := ValidateSink(sink); err != nil {
			invalid = append(invalid, "SMARTOFFICE_ACTIVITY_SINK")
		} else {
			cfg.ActivitySink = strings.ToLower(sink)
		}
	}

	if path := strings.TrimSpace(os.Getenv("SMARTOFFICE_ACTIVITY_LOG")); path != "" {
		cfg.ActivityLogPath = path
	}

	if dsn := strings.TrimSpace(os.Getenv("SMARTOFFICE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if location := strings.TrimSpace(os.Getenv("SMARTOFFICE_RESTRICTED_LOCATION")); location != "" {
		cfg.RestrictedLocation = location
	}

	if maxValue := strings.TrimSpace(os.Getenv("SMARTOFFICE_MAX_BOOKINGS")); maxValue != "" {
		limit, err := strconv.Atoi(maxValue)
		if err != nil || limit <= 0 {
			invalid = append(invalid, "SMARTOFFICE_MAX_BOOKINGS")
		} else {
			cfg.MaxBookings = limit
		}
	}

	if tz := strings.TrimSpace(os.Getenv("SMARTOFFICE_TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, "SMARTOFFICE_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	cfg.SeedFile = strings.TrimSpace(os.Getenv("SMARTOFFICE_SEED_FILE"))

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Validate re-checks values that may have been overridden after Load, for
// example by command line flags.
func (c Config) Validate() error {
	invalid := make([]string, 0, 4)

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		invalid = append(invalid, "log level")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		invalid = append(invalid, "log format")
	}
	if ValidateSink(c.ActivitySink) != nil {
		invalid = append(invalid, "activity sink")
	}
	if c.ActivitySink == SinkFile && strings.TrimSpace(c.ActivityLogPath) == "" {
		invalid = append(invalid, "activity log path")
	}
	if c.ActivitySink == SinkSQLite && strings.TrimSpace(c.SQLiteDSN) == "" {
		invalid = append(invalid, "sqlite dsn")
	}
	if c.MaxBookings <= 0 {
		invalid = append(invalid, "max bookings")
	}
	if c.Location == nil {
		invalid = append(invalid, "timezone")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// ValidateSink checks an activity sink driver name.
func ValidateSink(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SinkFile, SinkSQLite, SinkNone:
		return nil
	}
	return fmt.Errorf("unknown activity sink %q (want file, sqlite or none)", name)
}
