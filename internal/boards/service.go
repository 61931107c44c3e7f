package boards

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBackgroundColor = "#f0f4f8"
	shareCodeLength        = 8
	shareCodeAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	shareCodeAttempts      = 5
)

var (
	// ErrNotFound indicates no board matches the requested id or share code.
	ErrNotFound = errors.New("boards: board not found")
	// ErrExpired indicates the board's expiry timestamp has passed.
	ErrExpired = errors.New("boards: board expired")
	// ErrPasswordRequired indicates the board is password protected and the
	// supplied password did not match.
	ErrPasswordRequired = errors.New("boards: password required")
	// ErrValidation indicates the input was rejected before any persistence attempt.
	ErrValidation = errors.New("boards: validation failed")

	errMissingStore    = errors.New("boards: store is required")
	errShareCodeSpace  = errors.New("boards: could not allocate a unique share code")
	noOpLogger         = zap.NewNop()
	errMissingIdentity = errors.New("boards: owner identifier is required")
)

// Store is the persistence contract consumed by the board service.
// Implementations must return ErrNotFound for unknown keys.
type Store interface {
	GetByID(ctx context.Context, id string) (Board, error)
	GetByShareCode(ctx context.Context, code string) (Board, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Board, error)
	Create(ctx context.Context, board Board) error
	Replace(ctx context.Context, board Board) error
	Delete(ctx context.Context, id string) error
}

// MessagePurger removes all messages belonging to a deleted board.
type MessagePurger interface {
	DeleteByBoard(ctx context.Context, boardID string) error
}

// IDProvider issues unique board identifiers.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies required by the board service.
type ServiceConfig struct {
	Store      Store
	Messages   MessagePurger
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger
	// ShareCode overrides share code generation, used by tests.
	ShareCode func() string
}

// Service owns the business rules for creating, sharing and mutating boards.
type Service struct {
	store      Store
	messages   MessagePurger
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger
	shareCode  func() string
}

// NewService constructs the board service.
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
	shareCode := cfg.ShareCode
	if shareCode == nil {
		shareCode = randomShareCode
	}
	return &Service{
		store:      cfg.Store,
		messages:   cfg.Messages,
		idProvider: cfg.IDProvider,
		clock:      clock,
		logger:     logger,
		shareCode:  shareCode,
	}, nil
}

// CreateInput carries the caller-supplied fields for a new board.
type CreateInput struct {
	Title             string
	RecipientName     string
	Occasion          string
	Description       string
	BackgroundColor   string
	BackgroundPattern string
	IsPublic          *bool
	Password          string
	ExpiresAt         *time.Time
}

// Create validates the input, allocates a unique share code and persists the
// board. The returned board still carries its password; callers strip it
// before any public-facing response.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (Board, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Board{}, errMissingIdentity
	}

	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > maxTitleLength {
		return Board{}, fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxTitleLength)
	}
	recipient := strings.TrimSpace(input.RecipientName)
	if recipient == "" || len(recipient) > maxRecipientNameLength {
		return Board{}, fmt.Errorf("%w: recipientName must be 1-%d characters", ErrValidation, maxRecipientNameLength)
	}
	occasion, ok := ParseOccasion(input.Occasion)
	if !ok {
		return Board{}, fmt.Errorf("%w: unknown occasion %q", ErrValidation, input.Occasion)
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError("boards.create", "id_generation_failed", err)
		return Board{}, err
	}

	code, err := s.uniqueShareCode(ctx)
	if err != nil {
		s.logError("boards.create", "share_code_failed", err)
		return Board{}, err
	}

	backgroundColor := strings.TrimSpace(input.BackgroundColor)
	if backgroundColor == "" {
		backgroundColor = defaultBackgroundColor
	}
	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	now := s.clock().UTC()
	board := Board{
		ID:                id,
		OwnerID:           ownerID,
		Title:             title,
		RecipientName:     recipient,
		Occasion:          occasion,
		Description:       strings.TrimSpace(input.Description),
		BackgroundColor:   backgroundColor,
		BackgroundPattern: strings.TrimSpace(input.BackgroundPattern),
		IsPublic:          isPublic,
		Password:          input.Password,
		ShareCode:         code,
		ExpiresAt:         input.ExpiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Create(ctx, board); err != nil {
		s.logError("boards.create", "store_create_failed", err, zap.String("board_id", id))
		return Board{}, err
	}
	return board, nil
}

// ListByOwner returns the owner's boards, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Board, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, errMissingIdentity
	}
	list, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logError("boards.list", "store_query_failed", err, zap.String("owner_id", ownerID))
		return nil, err
	}
	return list, nil
}

// GetForOwner fetches a board by id, visible only to its owner.
func (s *Service) GetForOwner(ctx context.Context, id, ownerID string) (Board, error) {
	board, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Board{}, err
	}
	if board.OwnerID != ownerID {
		return Board{}, ErrNotFound
	}
	return board, nil
}

// GetByShareCode resolves the public lookup path. The returned board always
// has its password stripped.
func (s *Service) GetByShareCode(ctx context.Context, code, password string) (Board, error) {
	board, err := s.store.GetByShareCode(ctx, code)
	if err != nil {
		return Board{}, err
	}
	if board.Expired(s.clock()) {
		return Board{}, ErrExpired
	}
	if board.Password != "" && board.Password != password {
		return Board{}, ErrPasswordRequired
	}
	return board.Public(), nil
}

// Update describes the allow-listed mutable board fields. Nil fields are left
// untouched; id, owner and share code are immutable by construction.
type Update struct {
	Title             *string
	RecipientName     *string
	Occasion          *string
	Description       *string
	BackgroundColor   *string
	BackgroundPattern *string
	IsPublic          *bool
	Password          *string
	ExpiresAt         *time.Time
	ClearExpiresAt    bool
}

// Update applies a partial update to an owner's board. Last write wins; there
// is no concurrency token.
func (s *Service) Update(ctx context.Context, id, ownerID string, update Update) (Board, error) {
	board, err := s.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return Board{}, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" || len(title) > maxTitleLength {
			return Board{}, fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxTitleLength)
		}
		board.Title = title
	}
	if update.RecipientName != nil {
		recipient := strings.TrimSpace(*update.RecipientName)
		if recipient == "" || len(recipient) > maxRecipientNameLength {
			return Board{}, fmt.Errorf("%w: recipientName must be 1-%d characters", ErrValidation, maxRecipientNameLength)
		}
		board.RecipientName = recipient
	}
	if update.Occasion != nil {
		occasion, ok := ParseOccasion(*update.Occasion)
		if !ok {
			return Board{}, fmt.Errorf("%w: unknown occasion %q", ErrValidation, *update.Occasion)
		}
		board.Occasion = occasion
	}
	if update.Description != nil {
		board.Description = strings.TrimSpace(*update.Description)
	}
	if update.BackgroundColor != nil {
		board.BackgroundColor = strings.TrimSpace(*update.BackgroundColor)
	}
	if update.BackgroundPattern != nil {
		board.BackgroundPattern = strings.TrimSpace(*update.BackgroundPattern)
	}
	if update.IsPublic != nil {
		board.IsPublic = *update.IsPublic
	}
	if update.Password != nil {
		board.Password = *update.Password
	}
	if update.ExpiresAt != nil {
		board.ExpiresAt = update.ExpiresAt
	}
	if update.ClearExpiresAt {
		board.ExpiresAt = nil
	}
	board.UpdatedAt = s.clock().UTC()

	if err := s.store.Replace(ctx, board); err != nil {
		s.logError("boards.update", "store_replace_failed", err, zap.String("board_id", id))
		return Board{}, err
	}
	return board, nil
}

// Delete removes an owner's board together with its messages.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.GetForOwner(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logError("boards.delete", "store_delete_failed", err, zap.String("board_id", id))
		return err
	}
	if s.messages != nil {
		if err := s.messages.DeleteByBoard(ctx, id); err != nil {
			// The board itself is gone; orphan cleanup failure is logged, not surfaced.
			s.logError("boards.delete", "message_cascade_failed", err, zap.String("board_id", id))
		}
	}
	return nil
}

func (s *Service) uniqueShareCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		code := s.shareCode()
		_, err := s.store.GetByShareCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errShareCodeSpace
}

func randomShareCode() string {
	code := make([]byte, shareCodeLength)
	for i := range code {
		code[i] = shareCodeAlphabet[rand.IntN(len(shareCodeAlphabet))]
	}
	return string(code)
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
	s.logger.Error("board service error", attrs...)
}
