package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// Signer wraps session ids into HS256 JWTs so a forged or altered cookie is
// rejected before the session storage is queried.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer. The secret must not be empty.
func NewSigner(secret string) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns the signed form of sid. Expiry is left to the session storage.
func (s *Signer) Sign(sid string) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"iat": time.Now().Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a signed session id and returns the sid inside it.
func (s *Signer) Parse(value string) (string, error) {
	token, err := jwt.Parse(value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session cookie: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid session cookie")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("invalid session cookie: missing sid")
	}
	return sid, nil
}

// NewID generates a signed random session id. It is the key generator of the
// session store.
func (s *Signer) NewID() string {
	sid := uuid.NewString()
	signed, err := s.Sign(sid)
	if err != nil {
		// An unsigned id fails Parse on the next request and starts a new session.
		return sid
	}
	return signed
}
