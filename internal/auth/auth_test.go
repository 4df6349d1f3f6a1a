package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// testParams keeps argon2 cheap in unit tests.
var testParams = Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("admin123", testParams)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}
	if err := VerifyPassword(hash, "admin123"); err != nil {
		t.Fatalf("expected password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "admin124"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := VerifyPassword("plain", "admin123"); !errors.Is(err, ErrInvalidPasswordHash) {
		t.Fatalf("expected ErrInvalidPasswordHash, got %v", err)
	}
	if err := VerifyPassword(strings.Replace(hash, "v=19", "v=16", 1), "admin123"); !errors.Is(err, ErrIncompatiblePasswordVersion) {
		t.Fatalf("expected ErrIncompatiblePasswordVersion, got %v", err)
	}
}

func TestRoleAndPermissions(t *testing.T) {
	t.Parallel()

	t.Run("parses role names", func(t *testing.T) {
		t.Parallel()

		role, err := ParseRole(" manager ")
		if err != nil || role != RoleManager {
			t.Fatalf("expected RoleManager, got %v (%v)", role, err)
		}
		if _, err := ParseRole("guest"); err == nil {
			t.Fatalf("expected unknown role to fail")
		}
		if Role(0).Valid() || Role(0).String() != "UNKNOWN" {
			t.Fatalf("expected zero role to be invalid")
		}
	})

	cases := []struct {
		role Role
		op   Operation
		want bool
	}{
		{RoleEmployee, OpControlDevice, true},
		{RoleEmployee, OpControlRestrictedDevice, false},
		{RoleEmployee, OpFullAttendanceReport, false},
		{RoleEmployee, OpAdminPanel, false},
		{RoleManager, OpControlRestrictedDevice, true},
		{RoleManager, OpFullAttendanceReport, true},
		{RoleManager, OpAdminPanel, false},
		{RoleManager, OpReleaseRooms, false},
		{RoleAdmin, OpAdminPanel, true},
		{RoleAdmin, OpReleaseRooms, true},
		{Role(0), OpViewDevices, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.role.String()+" "+string(tc.op), func(t *testing.T) {
			t.Parallel()
			if got := Allowed(tc.role, tc.op); got != tc.want {
				t.Fatalf("expected Allowed=%v, got %v", tc.want, got)
			}
		})
	}

	ops := OperationsFor(RoleEmployee)
	ops[0] = OpAdminPanel
	if Allowed(RoleEmployee, OpAdminPanel) {
		t.Fatalf("expected OperationsFor to return a copy")
	}
}

func TestCredentialStore(t *testing.T) {
	t.Parallel()

	store := NewCredentialStore(testParams)
	if err := store.Register("emp", "defaultPass123", RoleEmployee); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := store.Register("emp", "other", RoleAdmin); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
	if err := store.Register("x", "y", Role(9)); err == nil {
		t.Fatalf("expected invalid role to be rejected")
	}

	ctx := context.Background()
	if !store.Verify(ctx, "emp", "defaultPass123") {
		t.Fatalf("expected credentials to verify")
	}
	if store.Verify(ctx, "emp", "wrong") || store.Verify(ctx, "nobody", "defaultPass123") {
		t.Fatalf("expected bad credentials to be rejected")
	}
	principal, err := store.Lookup(ctx, "emp")
	if err != nil || principal.Role != RoleEmployee {
		t.Fatalf("unexpected principal %+v (%v)", principal, err)
	}
	if _, err := store.Lookup(ctx, "nobody"); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 account, got %d", store.Len())
	}
}

func TestSession(t *testing.T) {
	t.Parallel()

	store := NewCredentialStore(testParams)
	if err := store.Register("admin", "admin123", RoleAdmin); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := store.Register("emp", "defaultPass123", RoleEmployee); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("login transitions to logged in", func(t *testing.T) {
		t.Parallel()

		started := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
		session := NewSession(store, store,
			WithSessionClock(func() time.Time { return started }),
			WithSessionIDGenerator(func() string { return "session-1" }),
		)
		if session.IsLoggedIn() {
			t.Fatalf("expected new session to be logged out")
		}

		snap, err := session.Login(context.Background(), "admin", "admin123")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if snap.ID != "session-1" || !snap.StartedAt.Equal(started) || snap.Principal.Role != RoleAdmin {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
		if session.State() != StateLoggedIn {
			t.Fatalf("expected LOGGED_IN, got %s", session.State())
		}
	})

	t.Run("failed login keeps prior state", func(t *testing.T) {
		t.Parallel()

		session := NewSession(store, store)
		if _, err := session.Login(context.Background(), "emp", "defaultPass123"); err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if _, err := session.Login(context.Background(), "admin", "nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		current, err := session.Current()
		if err != nil || current.Principal.ID != "emp" {
			t.Fatalf("expected emp to stay logged in, got %+v (%v)", current, err)
		}
	})

	t.Run("logout is unconditional", func(t *testing.T) {
		t.Parallel()

		session := NewSession(store, store)
		if _, was := session.Logout(); was {
			t.Fatalf("expected logout without session to report nothing")
		}
		if _, err := session.Login(context.Background(), "emp", "defaultPass123"); err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		prev, was := session.Logout()
		if !was || prev.ID != "emp" {
			t.Fatalf("expected emp to be logged out, got %+v", prev)
		}
		if _, err := session.Current(); !errors.Is(err, ErrNoSession) {
			t.Fatalf("expected ErrNoSession, got %v", err)
		}
	})
}

func TestParsePHC(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("emp", testParams)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h, err := parsePHC(hash)
	if err != nil {
		t.Fatalf("parsePHC failed: %v", err)
	}
	if h.params != testParams {
		t.Fatalf("expected params %+v, got %+v", testParams, h.params)
	}
	if h.String() != hash {
		t.Fatalf("expected round trip %q, got %q", hash, h.String())
	}

	for _, encoded := range []string{
		"",
		"argon2id$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
		"$argon2id$v=19$m=1024,t=0,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$a2V5",
	} {
		if _, err := parsePHC(encoded); !errors.Is(err, ErrInvalidPasswordHash) {
			t.Fatalf("expected ErrInvalidPasswordHash for %q, got %v", encoded, err)
		}
	}

	if _, err := HashPassword("emp", Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1}); err == nil {
		t.Fatalf("expected zero key length to be rejected")
	}
	if _, err := HashPassword("emp", Argon2idParams{Memory: 1024, Iterations: 1, SaltLength: 8, KeyLength: 16}); err == nil {
		t.Fatalf("expected zero parallelism to be rejected")
	}
	if _, err := HashPassword("emp", Argon2idParams{Memory: 1024, Parallelism: 1, SaltLength: 8, KeyLength: 16}); err == nil {
		t.Fatalf("expected zero iterations to be rejected")
	}
	if err := VerifyPassword("$argon2id$v=19$m=65536,t=3,p=0$c2FsdA$a2V5", "x"); !errors.Is(err, ErrInvalidPasswordHash) {
		t.Fatalf("expected ErrInvalidPasswordHash for zero parallelism, got %v", err)
	}
}
