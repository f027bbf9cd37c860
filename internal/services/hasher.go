package services

import (
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher produces salted one-way hashes and checks passwords against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// NewPasswordHasher returns the hasher registered under name ("bcrypt" or "argon2id").
func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", "bcrypt":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case "argon2id":
		return Argon2idHasher{Params: argon2id.DefaultParams}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// BcryptMaxPasswordBytes is the longest password bcrypt hashes in full.
const BcryptMaxPasswordBytes = 72

// BcryptHasher hashes with bcrypt; the salt is embedded in the hash.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	if len(password) > BcryptMaxPasswordBytes {
		return "", fmt.Errorf("%d bytes, bcrypt takes at most %d: %w", len(password), BcryptMaxPasswordBytes, ErrPasswordTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h BcryptHasher) Compare(hash, password string) (bool, error) {
	// Registration never stores the hash of a longer password.
	if len(password) > BcryptMaxPasswordBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check password: %w", err)
	}
	return true, nil
}

// Argon2idHasher hashes with argon2id using a random salt per call.
type Argon2idHasher struct {
	Params *argon2id.Params
}

func (h Argon2idHasher) Hash(password string) (string, error) {
	hashed, err := argon2id.CreateHash(password, h.Params)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hashed, nil
}

func (h Argon2idHasher) Compare(hash, password string) (bool, error) {
	match, _, err := argon2id.CheckHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("failed to check password: %w", err)
	}
	return match, nil
}
