package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength  = 16
	keyLength   = 32
	timeCost    = 3
	memoryCost  = 64 * 1024
	parallelism = 2

	argon2Prefix = "$argon2id$"
)

// Password schemes selectable through PASSWORD_SCHEME.
const (
	SchemePlain    = "plain"
	SchemeArgon2id = "argon2id"
)

// PasswordHasher turns a password into its stored form and checks candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) bool
}

// NewPasswordHasher returns the hasher for scheme; unknown schemes fall back to plain.
func NewPasswordHasher(scheme string) PasswordHasher {
	if scheme == SchemeArgon2id {
		return Argon2Hasher{}
	}
	return PlainHasher{}
}

// PlainHasher stores passwords verbatim. It keeps stores written by the browser
// build readable and comparable byte for byte.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Verify(password, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

// Argon2Hasher hashes new passwords with Argon2id. Stored values without the
// argon2id prefix are legacy plaintext and are compared as such.
type Argon2Hasher struct{}

func (Argon2Hasher) Hash(password string) (string, error) {
	return HashPassword(password)
}

func (Argon2Hasher) Verify(password, stored string) bool {
	if !strings.HasPrefix(stored, argon2Prefix) {
		return PlainHasher{}.Verify(password, stored)
	}
	ok, err := VerifyPassword(password, stored)
	return err == nil && ok
}

// HashPassword hashes a password using Argon2id
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)

	saltBase64 := base64.RawStdEncoding.EncodeToString(salt)
	hashBase64 := base64.RawStdEncoding.EncodeToString(hash)

	// Return format: $argon2id$v=19$m=65536,t=3,p=2$salt$hash
	return argon2Prefix + "v=19$m=65536,t=3,p=2$" + saltBase64 + "$" + hashBase64, nil
}

// VerifyPassword verifies a password against a hash
func VerifyPassword(password, hashedPassword string) (bool, error) {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errors.New("invalid hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}

	computedHash := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)

	return subtle.ConstantTimeCompare(computedHash, hash) == 1, nil
}
