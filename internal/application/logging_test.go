package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/smart-office/internal/activity"
	"github.com/example/smart-office/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContext(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&base, nil))
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewTextHandler(&scoped, nil)))

	serviceLogger(ctx, baseLogger, "OfficeService", "BookRoom", "room_id", "ConfA").Info("booked")
	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %q", base.String())
	}
	out := scoped.String()
	for _, want := range []string{"service=OfficeService", "operation=BookRoom", "room_id=ConfA"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&DeniedError{}, "access_denied"},
		{failure(ErrNotFound, nil, "x"), "not_found"},
		{failure(ErrRoomUnavailable, nil, "x"), "room_unavailable"},
		{failure(ErrNotLoggedIn, nil, "x"), "not_logged_in"},
		{failure(ErrInvalidCredentials, nil, "x"), "invalid_credentials"},
		{fmt.Errorf("%w: disk full", ErrSinkWriteFailed), "sink_write_failed"},
		{activity.ErrWriteFailed, "sink_write_failed"},
		{invalidField("slot", "x"), "invalid_input"},
		{failure(ErrInvalidInput, nil, "x"), "invalid_input"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v): expected %q, got %q", tc.err, tc.want, got)
		}
	}
}
