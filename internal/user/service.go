package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gemsketch/api/internal/auth"
	"github.com/gemsketch/api/internal/logging"
)

var (
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrInvalidDateOfBirth = errors.New("invalid date of birth")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FullName    string
	Email       string
	Phone       string
	DateOfBirth string
	Username    string
	Password    string
}

// Service handles registration, login, and profile retrieval.
type Service struct {
	store         Store
	cache         Cache
	tokens        auth.TokenService
	logger        *logging.Logger
	tokenDuration time.Duration
}

// NewService creates the user service. cache may be nil, in which case every
// profile read goes to the store.
func NewService(store Store, cache Cache, tokens auth.TokenService, logger *logging.Logger, tokenDuration time.Duration) *Service {
	return &Service{
		store:         store,
		cache:         cache,
		tokens:        tokens,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Register creates a new account. Validation is presence-only; the store's
// unique indexes decide conflicts. No token is issued on registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.FullName == "" || in.Email == "" || in.Phone == "" ||
		in.DateOfBirth == "" || in.Username == "" || in.Password == "" {
		return nil, ErrFieldsRequired
	}

	dob, err := parseDateOfBirth(in.DateOfBirth)
	if err != nil {
		return nil, ErrInvalidDateOfBirth
	}

	passwordHash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.store.Create(ctx, &User{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		DateOfBirth:  dob,
		Username:     in.Username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login authenticates a user and returns a signed access token together with
// the user record. Unknown usernames and wrong passwords are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	existing, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.VerifyPassword(existing.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.CreateToken(existing.ID, existing.Username, s.tokenDuration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create token: %w", err)
	}

	return token, existing, nil
}

// Profile returns the user for the given id, going through the cache when one
// is configured. Cache failures degrade to the store, never to an error.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("profile cache read failed", "error", err.Error())
		} else if cached != nil {
			return cached, nil
		}
	}

	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, u); err != nil {
			s.logger.Warn("profile cache write failed", "error", err.Error())
		}
	}

	return u, nil
}

// parseDateOfBirth accepts the form's YYYY-MM-DD value, tolerating full
// RFC3339 timestamps from older clients.
func parseDateOfBirth(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
