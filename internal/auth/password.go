package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidPasswordHash         = errors.New("auth: invalid password hash format")
	ErrIncompatiblePasswordVersion = errors.New("auth: incompatible password hash version")
	ErrPasswordMismatch            = errors.New("auth: password mismatch")
)

// Argon2idParams tunes the cost of hashing registered secrets.
type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// phcHash is the decoded form of "$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>".
type phcHash struct {
	version int
	params  Argon2idParams
	salt    []byte
	key     []byte
}

func (h phcHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key))
}

func (h phcHash) derive(password string) []byte {
	return argon2.IDKey([]byte(password), h.salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)
}

// HashPassword returns a PHC encoded argon2id hash with a fresh random salt.
func HashPassword(password string, params Argon2idParams) (string, error) {
	if params.SaltLength == 0 || params.KeyLength == 0 {
		return "", fmt.Errorf("auth: salt and key length must be positive")
	}
	if params.Iterations == 0 || params.Parallelism == 0 {
		return "", fmt.Errorf("auth: iterations and parallelism must be positive")
	}
	h := phcHash{version: argon2.Version, params: params, salt: make([]byte, params.SaltLength)}
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	h.key = h.derive(password)
	return h.String(), nil
}

// VerifyPassword checks password against a hash produced by HashPassword.
func VerifyPassword(encoded, password string) error {
	h, err := parsePHC(encoded)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(h.key, h.derive(password)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func parsePHC(encoded string) (phcHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return phcHash{}, ErrInvalidPasswordHash
	}

	var h phcHash
	version, ok := strings.CutPrefix(fields[2], "v=")
	if !ok {
		return phcHash{}, ErrInvalidPasswordHash
	}
	v, err := strconv.Atoi(version)
	if err != nil {
		return phcHash{}, ErrInvalidPasswordHash
	}
	if v != argon2.Version {
		return phcHash{}, ErrIncompatiblePasswordVersion
	}
	h.version = v

	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Iterations, &h.params.Parallelism); err != nil {
		return phcHash{}, ErrInvalidPasswordHash
	}
	if h.params.Iterations == 0 || h.params.Parallelism == 0 {
		return phcHash{}, ErrInvalidPasswordHash
	}
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return phcHash{}, ErrInvalidPasswordHash
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(h.key) == 0 {
		return phcHash{}, ErrInvalidPasswordHash
	}
	h.params.SaltLength = uint32(len(h.salt))
	h.params.KeyLength = uint32(len(h.key))
	return h, nil
}
