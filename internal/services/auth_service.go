package services

import (
	"context"
	"errors"
	"fmt"

	"labchem/internal/forms"
	"labchem/internal/models"
	"labchem/internal/repositories"

	"go.uber.org/zap"
)

// AuthService handles registration and credential checks. Binding the result
// of a login to a session is left to the caller.
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   PasswordHasher
	l        *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, l *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		l:        l,
	}
}

// Register validates the form, hashes the password and saves the user.
func (s *AuthService) Register(ctx context.Context, form *forms.NewUserForm) (*models.User, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	// Fast path for the common case; the unique index still decides races.
	if _, err := s.userRepo.GetByEmail(ctx, form.Email); err == nil {
		return nil, fmt.Errorf("email '%s': %w", form.Email, ErrDuplicateEmail)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(form.Password)
	if errors.Is(err, ErrPasswordTooLong) {
		return nil, &ValidationError{Fields: forms.FieldErrors{
			"password": fmt.Sprintf("Must be at most %d bytes.", BcryptMaxPasswordBytes),
		}}
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.l.Info("user registered", zap.Uint("id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login looks the user up by email and verifies the password hash. It returns
// ErrEmailNotFound or ErrInvalidCredentials on failure.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	match, err := s.hasher.Compare(user.Password, password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser resolves a session's user ID.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SeedUser creates the first account when no user exists yet, so that the
// guarded registration page can be reached. It reports whether a user was created.
func (s *AuthService) SeedUser(ctx context.Context, form *forms.NewUserForm) (bool, error) {
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Register(ctx, form); err != nil {
		return false, fmt.Errorf("failed to seed user: %w", err)
	}
	return true, nil
}
