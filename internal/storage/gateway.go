package storage

import (
	"context"
	"errors"

	"github.com/niteshj11/kudoboard/internal/boards"
	"github.com/niteshj11/kudoboard/internal/messages"
	"github.com/niteshj11/kudoboard/internal/users"
	"gorm.io/gorm"
)

// Gateway bundles the durable store implementations over one database handle.
type Gateway struct {
	Users    *UserStore
	Boards   *BoardStore
	Messages *MessageStore
}

// NewGateway constructs the durable gateway.
func NewGateway(db *gorm.DB) *Gateway {
	return &Gateway{
		Users:    &UserStore{db: db},
		Boards:   &BoardStore{db: db},
		Messages: &MessageStore{db: db},
	}
}

// UserStore persists users through gorm.
type UserStore struct {
	db *gorm.DB
}

func (s *UserStore) GetByID(ctx context.Context, id string) (users.User, error) {
	var user users.User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, wrapBackend(err)
	}
	return user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (users.User, error) {
	var user users.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, wrapBackend(err)
	}
	return user, nil
}

func (s *UserStore) Create(ctx context.Context, user users.User) error {
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return wrapBackend(err)
	}
	return nil
}

// BoardStore persists boards through gorm.
type BoardStore struct {
	db *gorm.DB
}

func (s *BoardStore) GetByID(ctx context.Context, id string) (boards.Board, error) {
	var board boards.Board
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return boards.Board{}, boards.ErrNotFound
	}
	if err != nil {
		return boards.Board{}, wrapBackend(err)
	}
	return board, nil
}

func (s *BoardStore) GetByShareCode(ctx context.Context, code string) (boards.Board, error) {
	var board boards.Board
	err := s.db.WithContext(ctx).Where("share_code = ?", code).Take(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return boards.Board{}, boards.ErrNotFound
	}
	if err != nil {
		return boards.Board{}, wrapBackend(err)
	}
	return board, nil
}

func (s *BoardStore) ListByOwner(ctx context.Context, ownerID string) ([]boards.Board, error) {
	var list []boards.Board
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, wrapBackend(err)
	}
	return list, nil
}

func (s *BoardStore) Create(ctx context.Context, board boards.Board) error {
	if err := s.db.WithContext(ctx).Create(&board).Error; err != nil {
		return wrapBackend(err)
	}
	return nil
}

// Replace overwrites the full record. The write is unconditional: concurrent
// updates to the same board race, last writer wins.
func (s *BoardStore) Replace(ctx context.Context, board boards.Board) error {
	if err := s.db.WithContext(ctx).Save(&board).Error; err != nil {
		return wrapBackend(err)
	}
	return nil
}

func (s *BoardStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&boards.Board{}).Error; err != nil {
		return wrapBackend(err)
	}
	return nil
}

// MessageStore persists messages through gorm.
type MessageStore struct {
	db *gorm.DB
}

func (s *MessageStore) GetByID(ctx context.Context, id string) (messages.Message, error) {
	var message messages.Message
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return messages.Message{}, messages.ErrNotFound
	}
	if err != nil {
		return messages.Message{}, wrapBackend(err)
	}
	return message, nil
}

func (s *MessageStore) ListByBoard(ctx context.Context, boardID string) ([]messages.Message, error) {
	var list []messages.Message
	err := s.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, wrapBackend(err)
	}
	return list, nil
}

func (s *MessageStore) Create(ctx context.Context, message messages.Message) error {
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return wrapBackend(err)
	}
	return nil
}

func (s *MessageStore) Replace(ctx context.Context, message messages.Message) error {
	if err := s.db.WithContext(ctx).Save(&message).Error; err != nil {
		return wrapBackend(err)
	}
	return nil
}

func (s *MessageStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&messages.Message{}).Error; err != nil {
		return wrapBackend(err)
	}
	return nil
}

func (s *MessageStore) DeleteByBoard(ctx context.Context, boardID string) error {
	if err := s.db.WithContext(ctx).Where("board_id = ?", boardID).Delete(&messages.Message{}).Error; err != nil {
		return wrapBackend(err)
	}
	return nil
}
