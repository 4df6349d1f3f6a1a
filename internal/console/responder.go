package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/example/smart-office/internal/application"
	"github.com/example/smart-office/internal/logging"
)

const unexpectedErrorMessage = "An unexpected error occurred. Please try again."

type responder struct {
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

func newResponder(out, errOut io.Writer, logger *slog.Logger) responder {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = out
	}
	if logger == nil {
		logger = slog.Default()
	}
	return responder{out: out, errOut: errOut, logger: logger}
}

func (r responder) println(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if _, err := fmt.Fprintln(r.out, text); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to write output", "error", err)
	}
}

func (r responder) prompt(ctx context.Context, text string) {
	if _, err := io.WriteString(r.out, text); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to write prompt", "error", err)
	}
}

func (r responder) handleServiceError(ctx context.Context, err error) {
	if err == nil {
		r.println(ctx, unexpectedErrorMessage)
		return
	}

	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = unexpectedErrorMessage
	}

	switch {
	case errors.Is(err, application.ErrRoomUnavailable):
		if _, werr := fmt.Fprintln(r.errOut, "Booking Failed: "+message); werr != nil {
			r.loggerFor(ctx).ErrorContext(ctx, "failed to write error output", "error", werr)
		}
	case errors.Is(err, application.ErrAccessDenied),
		errors.Is(err, application.ErrNotFound),
		errors.Is(err, application.ErrInvalidInput),
		errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrNotLoggedIn):
		r.println(ctx, message)
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "command failed unexpectedly", "error", err)
		r.println(ctx, unexpectedErrorMessage)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}
