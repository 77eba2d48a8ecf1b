package service

import (
	"context"
	"testing"
	"time"

	"order-api/internal/apperrors"
	"order-api/internal/auth"
	"order-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() (*AuthService, *auth.Authority) {
	authority := auth.NewAuthority([]byte("test-secret"), time.Hour)
	return NewAuthService(store.NewMemoryUserStore(), authority), authority
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newAuthService()
	ctx := context.Background()

	_, err := s.Register(ctx, "", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.Register(ctx, "alice", "short")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "Password must be at least 6 characters", err.Error())
}

func TestRegisterDuplicate(t *testing.T) {
	s, _ := newAuthService()
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = s.Register(ctx, "alice", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestLoginIssuesValidToken(t *testing.T) {
	s, authority := newAuthService()
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	result, err := s.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.UserID)
	assert.Equal(t, int64(3600), result.ExpiresIn)

	username, err := authority.Validate(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _ := newAuthService()
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	// Unknown user and wrong password are indistinguishable.
	_, err = s.Login(ctx, "mallory", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", err.Error())

	_, err = s.Login(ctx, "alice", "wrongpass")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestLogoutRevokesToken(t *testing.T) {
	s, authority := newAuthService()
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	result, err := s.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, result.AccessToken))

	_, err = authority.Validate(result.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}
