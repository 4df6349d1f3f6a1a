package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/smart-office/internal/activity"
	"github.com/example/smart-office/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// errorKinds is checked in order; the first sentinel matched names the kind.
var errorKinds = []struct {
	target error
	label  string
}{
	{ErrAccessDenied, "access_denied"},
	{ErrNotFound, "not_found"},
	{ErrRoomUnavailable, "room_unavailable"},
	{ErrNotLoggedIn, "not_logged_in"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrSinkWriteFailed, "sink_write_failed"},
	{activity.ErrWriteFailed, "sink_write_failed"},
	{ErrInvalidInput, "invalid_input"},
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
// ValidationError matches ErrInvalidInput through its Is method.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind.target) {
			return kind.label
		}
	}
	return "unexpected"
}
