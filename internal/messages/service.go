package messages

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/niteshj11/kudoboard/internal/realtime"
	"go.uber.org/zap"
)

var (
	// ErrNotFound indicates no message matches the requested id.
	ErrNotFound = errors.New("messages: message not found")
	// ErrValidation indicates the input was rejected before any persistence attempt.
	ErrValidation = errors.New("messages: validation failed")

	errMissingStore = errors.New("messages: store is required")
	noOpLogger      = zap.NewNop()
)

// Store is the persistence contract consumed by the message service.
// Implementations must return ErrNotFound for unknown keys.
type Store interface {
	GetByID(ctx context.Context, id string) (Message, error)
	ListByBoard(ctx context.Context, boardID string) ([]Message, error)
	Create(ctx context.Context, message Message) error
	Replace(ctx context.Context, message Message) error
	Delete(ctx context.Context, id string) error
	DeleteByBoard(ctx context.Context, boardID string) error
}

// Broadcaster fans mutation events out to the message's board room.
// Delivery is fire-and-forget; a failed or dropped send never errors the
// mutation path.
type Broadcaster interface {
	Broadcast(boardID string, event realtime.Event)
}

// IDProvider issues unique message identifiers.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies required by the message service.
type ServiceConfig struct {
	Store       Store
	Broadcaster Broadcaster
	IDProvider  IDProvider
	Clock       func() time.Time
	Logger      *zap.Logger
	// Rand overrides the position randomizer, used by tests. Returns a value
	// in [0, 1).
	Rand func() float64
}

// Service owns the business rules for contributing, editing and removing
// messages, independent of the storage backend.
type Service struct {
	store       Store
	broadcaster Broadcaster
	idProvider  IDProvider
	clock       func() time.Time
	logger      *zap.Logger
	rand        func() float64
}

// NewService constructs the message service.
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
	random := cfg.Rand
	if random == nil {
		random = rand.Float64
	}
	return &Service{
		store:       cfg.Store,
		broadcaster: cfg.Broadcaster,
		idProvider:  cfg.IDProvider,
		clock:       clock,
		logger:      logger,
		rand:        random,
	}, nil
}

// ListByBoard returns a board's messages ascending by creation time, the
// order the client reconciler seeds its view from.
func (s *Service) ListByBoard(ctx context.Context, boardID string) ([]Message, error) {
	if strings.TrimSpace(boardID) == "" {
		return nil, fmt.Errorf("%w: boardId required", ErrValidation)
	}
	list, err := s.store.ListByBoard(ctx, boardID)
	if err != nil {
		s.logError("messages.list", "store_query_failed", err, zap.String("board_id", boardID))
		return nil, err
	}
	return list, nil
}

// CreateInput carries the caller-supplied fields for a new message.
type CreateInput struct {
	BoardID     string
	AuthorName  string
	AuthorEmail string
	Content     string
	ImageURL    string
	GifURL      string
	CardColor   string
	CardStyle   string
	PositionX   *float64
	PositionY   *float64
	Rotation    *float64
}

// Create validates and persists a contribution. Absent position and rotation
// are randomized within the card placement window; explicit values pass
// through exactly. On success a message:created event is fanned out to the
// board room. Contributors need no account: authorEmail falls back to the
// authenticated identity when one is present.
func (s *Service) Create(ctx context.Context, input CreateInput, identityEmail string) (Message, error) {
	boardID := strings.TrimSpace(input.BoardID)
	if boardID == "" {
		return Message{}, fmt.Errorf("%w: boardId required", ErrValidation)
	}
	authorName := strings.TrimSpace(input.AuthorName)
	if authorName == "" || len(authorName) > maxAuthorNameLength {
		return Message{}, fmt.Errorf("%w: authorName must be 1-%d characters", ErrValidation, maxAuthorNameLength)
	}
	content := strings.TrimSpace(input.Content)
	if content == "" || len(content) > maxContentLength {
		return Message{}, fmt.Errorf("%w: content must be 1-%d characters", ErrValidation, maxContentLength)
	}

	cardColor := strings.TrimSpace(input.CardColor)
	if cardColor == "" {
		cardColor = defaultCardColor
	}
	cardStyle := CardStyleDefault
	if strings.TrimSpace(input.CardStyle) != "" {
		parsed, ok := ParseCardStyle(input.CardStyle)
		if !ok {
			return Message{}, fmt.Errorf("%w: unknown cardStyle %q", ErrValidation, input.CardStyle)
		}
		cardStyle = parsed
	}

	authorEmail := strings.TrimSpace(input.AuthorEmail)
	if authorEmail == "" {
		authorEmail = identityEmail
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError("messages.create", "id_generation_failed", err)
		return Message{}, err
	}

	now := s.clock().UTC()
	message := Message{
		ID:          id,
		BoardID:     boardID,
		AuthorName:  authorName,
		AuthorEmail: authorEmail,
		Content:     content,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		GifURL:      strings.TrimSpace(input.GifURL),
		CardColor:   cardColor,
		CardStyle:   cardStyle,
		PositionX:   s.valueOrRandom(input.PositionX, 80, 10),
		PositionY:   s.valueOrRandom(input.PositionY, 60, 20),
		Rotation:    s.rotationOrRandom(input.Rotation),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, message); err != nil {
		s.logError("messages.create", "store_create_failed", err, zap.String("board_id", boardID))
		return Message{}, err
	}

	s.broadcast(message.BoardID, realtime.Event{Name: realtime.EventMessageCreated, Data: message})
	return message, nil
}

// Update describes the allow-listed mutable message fields. Nil fields are
// left untouched; id and boardId are immutable by construction.
type Update struct {
	Content   *string
	ImageURL  *string
	GifURL    *string
	CardColor *string
	CardStyle *string
	PositionX *float64
	PositionY *float64
	Rotation  *float64
}

// Update applies a shallow last-write-wins merge and broadcasts
/// message:updated to the board room. Anyone holding the message id may edit
// it; contributors without accounts have no other handle to their own cards.
func (s *Service) Update(ctx context.Context, id string, update Update) (Message, error) {
	message, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Message{}, err
	}

	if update.Content != nil {
		content := strings.TrimSpace(*update.Content)
		if content == "" || len(content) > maxContentLength {
			return Message{}, fmt.Errorf("%w: content must be 1-%d characters", ErrValidation, maxContentLength)
		}
		message.Content = content
	}
	if update.ImageURL != nil {
		message.ImageURL = strings.TrimSpace(*update.ImageURL)
	}
	if update.GifURL != nil {
		message.GifURL = strings.TrimSpace(*update.GifURL)
	}
	if update.CardColor != nil {
		message.CardColor = strings.TrimSpace(*update.CardColor)
	}
	if update.CardStyle != nil {
		style, ok := ParseCardStyle(*update.CardStyle)
		if !ok {
			return Message{}, fmt.Errorf("%w: unknown cardStyle %q", ErrValidation, *update.CardStyle)
		}
		message.CardStyle = style
	}
	if update.PositionX != nil {
		message.PositionX = *update.PositionX
	}
	if update.PositionY != nil {
		message.PositionY = *update.PositionY
	}
	if update.Rotation != nil {
		message.Rotation = *update.Rotation
	}
	message.UpdatedAt = s.clock().UTC()

	if err := s.store.Replace(ctx, message); err != nil {
		s.logError("messages.update", "store_replace_failed", err, zap.String("message_id", id))
		return Message{}, err
	}

	s.broadcast(message.BoardID, realtime.Event{Name: realtime.EventMessageUpdated, Data: message})
	return message, nil
}

// UpdatePosition moves a card, merging only the supplied coordinates.
func (s *Service) UpdatePosition(ctx context.Context, id string, x, y, rotation *float64) (Message, error) {
	return s.Update(ctx, id, Update{PositionX: x, PositionY: y, Rotation: rotation})
}

/// Delete removes a message and broadcasts message:deleted to its board room.
func (s *Service) Delete(ctx context.Context, id string) error {
	message, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logError("messages.delete", "store_delete_failed", err, zap.String("message_id", id))
		return err
	}

	s.broadcast(message.BoardID, realtime.Event{
		Name: realtime.EventMessageDeleted,
		Data: realtime.DeletionPayload{ID: message.ID, BoardID: message.BoardID},
	})
	return nil
}

func (s *Service) valueOrRandom(explicit *float64, span, offset float64) float64 {
	if explicit != nil {
		return *explicit
	}
	return s.rand()*span + offset
}

func (s *Service) rotationOrRandom(explicit *float64) float64 {
	if explicit != nil {
		return *explicit
	}
	return (s.rand() - 0.5) * 10
}

func (s *Service) broadcast(boardID string, event realtime.Event) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(boardID, event)
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
	s.logger.Error("message service error", attrs...)
}
