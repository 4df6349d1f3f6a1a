package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	// ErrUnknownUser is returned when no account exists for an identifier.
	ErrUnknownUser = errors.New("auth: unknown user")
	// ErrDuplicateUser is returned when an identifier is registered twice.
	ErrDuplicateUser = errors.New("auth: user already registered")
)

// Verifier checks a secret against stored credentials. Implementations must
// not reveal how secrets are kept.
type Verifier interface {
	Verify(ctx context.Context, id, secret string) bool
}

// Directory resolves the role of a known principal.
type Directory interface {
	Lookup(ctx context.Context, id string) (Principal, error)
}

type account struct {
	principal Principal
	hash      string
}

// CredentialStore keeps argon2id hashed secrets in memory and satisfies
// both Verifier and Directory.
type CredentialStore struct {
	mu       sync.RWMutex
	params   Argon2idParams
	accounts map[string]account
}

var (
	_ Verifier  = (*CredentialStore)(nil)
	_ Directory = (*CredentialStore)(nil)
)

// NewCredentialStore returns an empty store hashing with params.
func NewCredentialStore(params Argon2idParams) *CredentialStore {
	if params.KeyLength == 0 {
		params = DefaultArgon2idParams
	}
	return &CredentialStore{params: params, accounts: make(map[string]account)}
}

// Register hashes secret and stores the account. Identifiers are exact.
func (s *CredentialStore) Register(id, secret string, role Role) error {
	id = strings.TrimSpace(id)
	if id == "" || !role.Valid() {
		return ErrUnknownUser
	}
	hash, err := HashPassword(secret, s.params)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; ok {
		return ErrDuplicateUser
	}
	s.accounts[id] = account{principal: Principal{ID: id, Role: role}, hash: hash}
	return nil
}

// Verify reports whether secret matches the stored hash for id.
func (s *CredentialStore) Verify(_ context.Context, id, secret string) bool {
	s.mu.RLock()
	acct, ok := s.accounts[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return VerifyPassword(acct.hash, secret) == nil
}

// Lookup returns the principal registered under id.
func (s *CredentialStore) Lookup(_ context.Context, id string) (Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Principal{}, ErrUnknownUser
	}
	return acct.principal, nil
}

// Len reports the number of registered accounts.
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
