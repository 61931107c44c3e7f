package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/niteshj11/kudoboard/internal/boards"
	"github.com/niteshj11/kudoboard/internal/messages"
	"github.com/niteshj11/kudoboard/internal/users"
)

// MemoryGateway backs persistence with process maps for local and dev use.
// All access goes through one mutex per entity map; unlike the durable
// gateway, it only ever fails with "not found".
type MemoryGateway struct {
	Users    *MemoryUserStore
	Boards   *MemoryBoardStore
	Messages *MemoryMessageStore
}

// NewMemoryGateway constructs an empty in-process gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		Users:    &MemoryUserStore{byID: make(map[string]users.User)},
		Boards:   &MemoryBoardStore{byID: make(map[string]boards.Board)},
		Messages: &MemoryMessageStore{byID: make(map[string]messages.Message)},
	}
}

// MemoryUserStore keeps users in a map keyed by id.
type MemoryUserStore struct {
	mu   sync.RWMutex
	byID map[string]users.User
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return user, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (s *MemoryUserStore) Create(_ context.Context, user users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[user.ID] = user
	return nil
}

// MemoryBoardStore keeps boards in a map keyed by id.
type MemoryBoardStore struct {
	mu   sync.RWMutex
	byID map[string]boards.Board
}

func (s *MemoryBoardStore) GetByID(_ context.Context, id string) (boards.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.byID[id]
	if !ok {
		return boards.Board{}, boards.ErrNotFound
	}
	return board, nil
}

func (s *MemoryBoardStore) GetByShareCode(_ context.Context, code string) (boards.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, board := range s.byID {
		if board.ShareCode == code {
			return board, nil
		}
	}
	return boards.Board{}, boards.ErrNotFound
}

func (s *MemoryBoardStore) ListByOwner(_ context.Context, ownerID string) ([]boards.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []boards.Board
	for _, board := range s.byID {
		if board.OwnerID == ownerID {
			list = append(list, board)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *MemoryBoardStore) Create(_ context.Context, board boards.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[board.ID] = board
	return nil
}

func (s *MemoryBoardStore) Replace(_ context.Context, board boards.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[board.ID] = board
	return nil
}

func (s *MemoryBoardStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

// MemoryMessageStore keeps messages in a map keyed by id.
type MemoryMessageStore struct {
	mu   sync.RWMutex
	byID map[string]messages.Message
}

func (s *MemoryMessageStore) GetByID(_ context.Context, id string) (messages.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	message, ok := s.byID[id]
	if !ok {
		return messages.Message{}, messages.ErrNotFound
	}
	return message, nil
}

func (s *MemoryMessageStore) ListByBoard(_ context.Context, boardID string) ([]messages.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []messages.Message
	for _, message := range s.byID {
		if message.BoardID == boardID {
			list = append(list, message)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *MemoryMessageStore) Create(_ context.Context, message messages.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[message.ID] = message
	return nil
}

func (s *MemoryMessageStore) Replace(_ context.Context, message messages.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[message.ID] = message
	return nil
}

func (s *MemoryMessageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *MemoryMessageStore) DeleteByBoard(_ context.Context, boardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, message := range s.byID {
		if message.BoardID == boardID {
			delete(s.byID, id)
		}
	}
	return nil
}
