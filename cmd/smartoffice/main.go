package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/example/smart-office/internal/activity"
	"github.com/example/smart-office/internal/application"
	"github.com/example/smart-office/internal/config"
	"github.com/example/smart-office/internal/console"
	"github.com/example/smart-office/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cfg, err = applyFlags(cfg, args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)

	sink, err := openSink(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open activity sink", "sink", cfg.ActivitySink, "error", err)
		return err
	}
	journal := activity.NewJournal(sink, time.Now, stderr, logger)
	defer func() {
		if cerr := journal.Close(); cerr != nil {
			logger.Error("failed to close activity sink", "error", cerr)
		}
	}()

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load seed inventory", "path", cfg.SeedFile, "error", err)
		return err
	}

	svc, err := application.NewOfficeFromSeed(ctx, seed, application.OfficeSettings{
		RestrictedLocation: cfg.RestrictedLocation,
		MaxBookings:        cfg.MaxBookings,
		Location:           cfg.Location,
		Activity:           journal,
		Logger:             logger,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to initialise office", "error", err)
		return err
	}

	opts := []console.Option{console.WithLogger(logger)}
	if read, ok := terminalPasswordReader(stdin, stdout); ok {
		opts = append(opts, console.WithPasswordReader(read))
	}
	dispatcher := console.NewDispatcher(svc, stdin, stdout, stderr, opts...)

	logger.InfoContext(ctx, "smart office ready", "activity_sink", cfg.ActivitySink, "restricted_location", cfg.RestrictedLocation)

	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	select {
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case <-ctx.Done():
		// The dispatcher may be blocked reading input; it is abandoned.
		logger.InfoContext(context.Background(), "shutting down", "reason", context.Cause(ctx))
		return nil
	}
}

// applyFlags overrides cfg with command line flags. Flag defaults are the
// values loaded from the environment.
func applyFlags(cfg config.Config, args []string, stderr io.Writer) (config.Config, error) {
	flagSet := pflag.NewFlagSet("smartoffice", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)

	var timezone string
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flagSet.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	flagSet.StringVar(&cfg.ActivitySink, "activity-sink", cfg.ActivitySink, "activity log driver: file, sqlite or none")
	flagSet.StringVar(&cfg.ActivityLogPath, "activity-log", cfg.ActivityLogPath, "activity log file for the file driver")
	flagSet.StringVar(&cfg.SQLiteDSN, "sqlite-dsn", cfg.SQLiteDSN, "database path for the sqlite driver")
	flagSet.StringVar(&cfg.RestrictedLocation, "restricted-location", cfg.RestrictedLocation, "location whose devices employees may not control")
	flagSet.IntVar(&cfg.MaxBookings, "max-bookings", cfg.MaxBookings, "maximum bookings per room")
	flagSet.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML inventory of users, devices and rooms (default: built-in sample office)")
	flagSet.StringVar(&timezone, "timezone", "", "IANA time zone used to date attendance (default: local)")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: smartoffice [flags]\n\nInteractive smart office console. Environment variables SMARTOFFICE_* set the defaults.\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return cfg, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return cfg, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if tz := strings.TrimSpace(timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.ActivitySink = strings.ToLower(strings.TrimSpace(cfg.ActivitySink))

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func openSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (activity.Sink, error) {
	switch cfg.ActivitySink {
	case config.SinkSQLite:
		sqliteCfg := activity.DefaultSQLiteConfig(cfg.SQLiteDSN)
		sqliteCfg.Logger = logger
		sink, err := activity.OpenSQLiteSink(ctx, sqliteCfg)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.SinkNone:
		return activity.Discard{}, nil
	default:
		return activity.NewFileSink(cfg.ActivityLogPath), nil
	}
}

// terminalPasswordReader reads passwords with echo disabled when stdin is a
// terminal.
func terminalPasswordReader(stdin io.Reader, stdout io.Writer) (console.PasswordReader, bool) {
	file, ok := stdin.(*os.File)
	if !ok {
		return nil, false
	}
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return nil, false
	}
	return func() (string, error) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(stdout)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(password), nil
	}, true
}
