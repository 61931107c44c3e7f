package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niteshj11/kudoboard/internal/auth"
	"go.uber.org/zap"
)

const minPasswordLength = 6

var (
	// ErrNotFound indicates no user matches the requested id or email.
	ErrNotFound = errors.New("users: user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrInvalidCredentials is the uniform login failure. It never reveals
	// whether the email exists.
	ErrInvalidCredentials = errors.New("users: invalid email or password")
	// ErrValidation indicates the input was rejected before any persistence attempt.
	ErrValidation = errors.New("users: validation failed")

	errMissingStore = errors.New("users: store is required")
	noOpLogger      = zap.NewNop()
)

// Store is the persistence contract consumed by the user service.
// Implementations must return ErrNotFound for unknown keys.
type Store interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) error
}

// IDProvider issues unique user identifiers.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies required by the user service.
type ServiceConfig struct {
	Store      Store
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Service manages account registration and credential checks.
type Service struct {
	store      Store
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger
}

// NewService constructs the user service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		store:      cfg.Store,
		idProvider: cfg.IDProvider,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Register creates an account with a bcrypt-hashed credential. Email
// uniqueness is enforced by lookup-then-insert; two racing registrations for
// the same email fall through to the store's unique constraint.
func (s *Service) Register(ctx context.Context, email, password, name string) (User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	if len(password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	displayName := strings.TrimSpace(name)
	if displayName == "" {
		return User{}, fmt.Errorf("%w: name required", ErrValidation)
	}

	if _, err := s.store.GetByEmail(ctx, normalized); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		s.logError("users.register", "store_query_failed", err)
		return User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logError("users.register", "password_hash_failed", err)
		return User{}, err
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError("users.register", "id_generation_failed", err)
		return User{}, err
	}

	now := s.clock().UTC()
	user := User{
		ID:           id,
		Email:        normalized,
		Name:         displayName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		s.logError("users.register", "store_create_failed", err)
		return User{}, err
	}
	return user, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	user, err := s.store.GetByEmail(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		s.logError("users.login", "store_query_failed", err)
		return User{}, err
	}
	if user.PasswordHash == "" {
		return User{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return User{}, ErrInvalidCredentials
		}
		s.logError("users.login", "password_compare_failed", err)
		return User{}, err
	}
	return user, nil
}

// GetByID fetches an account by its identifier.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.store.GetByID(ctx, id)
}

// GoogleProfile is the identity payload posted by the client after a Google
// sign-in. The profile is trusted as posted; there is no server-side token
// verification.
type GoogleProfile struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// ResolveGoogle returns the account for a Google profile, creating one on
// first sign-in.
func (s *Service) ResolveGoogle(ctx context.Context, profile GoogleProfile) (User, error) {
	if strings.TrimSpace(profile.GoogleID) == "" {
		return User{}, fmt.Errorf("%w: googleId required", ErrValidation)
	}
	normalized, err := normalizeEmail(profile.Email)
	if err != nil {
		return User{}, err
	}

	user, err := s.store.GetByEmail(ctx, normalized)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logError("users.google", "store_query_failed", err)
		return User{}, err
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = strings.SplitN(normalized, "@", 2)[0]
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError("users.google", "id_generation_failed", err)
		return User{}, err
	}

	now := s.clock().UTC()
	user = User{
		ID:        id,
		Email:     normalized,
		Name:      name,
		GoogleID:  strings.TrimSpace(profile.GoogleID),
		AvatarURL: strings.TrimSpace(profile.AvatarURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		s.logError("users.google", "store_create_failed", err)
		return User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(normalized, "@")
	if at < 1 || at == len(normalized)-1 {
		return "", fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return normalized, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("user service error", attrs...)
}
