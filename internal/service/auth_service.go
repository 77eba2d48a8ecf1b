package service

import (
	"context"

	"order-api/internal/apperrors"
	"order-api/internal/auth"
	"order-api/internal/models"
	"order-api/internal/store"
	"order-api/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// AuthService handles registration, login and logout.
type AuthService struct {
	users     store.UserStore
	authority *auth.Authority
	logger    *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users store.UserStore, authority *auth.Authority) *AuthService {
	return &AuthService{
		users:     users,
		authority: authority,
		logger:    util.GetLogger(),
	}
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	_, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	if username == "" || password == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "Username and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.New(apperrors.ErrValidation, "Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrInternal, "failed to hash password")
	}

	user, err := s.users.Create(username, string(hash))
	if err != nil {
		return nil, err
	}

	util.RegistrationsTotal.Inc()
	s.logger.Info("User registered",
		zap.String("username", username),
		zap.Int64("user_id", user.ID))

	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	_, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	if username == "" || password == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "Username and password are required")
	}

	user, err := s.users.Get(username)
	if err != nil {
		util.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
		return nil, apperrors.New(apperrors.ErrUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.AuthFailuresTotal.WithLabelValues("bad_password").Inc()
		return nil, apperrors.New(apperrors.ErrUnauthorized, "Invalid credentials")
	}

	token, _, err := s.authority.Issue(username)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return nil, apperrors.New(apperrors.ErrInternal, "failed to issue token")
	}

	util.LoginsTotal.Inc()
	s.logger.Info("Login successful", zap.String("username", username))

	return &LoginResult{
		AccessToken: token,
		UserID:      user.ID,
		ExpiresIn:   int64(s.authority.TTL().Seconds()),
	}, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	_, span := util.StartSpan(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.authority.Revoke(token); err != nil {
		return err
	}

	s.logger.Info("Logout successful")
	return nil
}
