// Package auth issues and validates the bearer tokens that represent a
// successful login, and tracks revoked token ids.
package auth

import (
	"errors"
	"fmt"
	"time"

	"order-api/internal/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Authority signs time-bounded identity tokens and checks them against the
// revocation list. Tokens are not stored server-side; only revoked jti values
// are.
type Authority struct {
	secret    []byte
	ttl       time.Duration
	blacklist *Blacklist
	now       func() time.Time
}

// NewAuthority creates a token authority signing with secret, issuing tokens
// valid for ttl.
func NewAuthority(secret []byte, ttl time.Duration) *Authority {
	return &Authority{
		secret:    secret,
		ttl:       ttl,
		blacklist: NewBlacklist(),
		now:       time.Now,
	}
}

// Blacklist exposes the revocation list, e.g. for the sweeper worker.
func (a *Authority) Blacklist() *Blacklist {
	return a.blacklist
}

// TTL returns the lifetime of issued tokens.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}

// Issue produces a signed token embedding the username, a fresh jti and the
// expiry instant. No shared state is touched.
func (a *Authority) Issue(username string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate returns the identity embedded in the token. It fails with
// ErrTokenInvalid on a malformed token or bad signature, ErrTokenExpired past
// the embedded expiry, and ErrTokenRevoked when the jti has been blacklisted.
func (a *Authority) Validate(token string) (string, error) {
	claims, err := a.parse(token)
	if err != nil {
		return "", err
	}
	if a.blacklist.Contains(claims.ID) {
		return "", apperrors.ErrTokenRevoked
	}
	return claims.Subject, nil
}

// Revoke inserts the token's jti into the revocation list, keyed with the
// token's natural expiry so the entry can be pruned later. Revoking an
// already-revoked token is a no-op.
func (a *Authority) Revoke(token string) error {
	claims, err := a.parse(token)
	if err != nil {
		return err
	}
	a.blacklist.Add(claims.ID, claims.ExpiresAt.Time)
	return nil
}

func (a *Authority) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return a.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.ID == "" {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}
