package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/niteshj11/kudoboard/internal/boards"
	"github.com/niteshj11/kudoboard/internal/database"
	"github.com/niteshj11/kudoboard/internal/messages"
	"github.com/niteshj11/kudoboard/internal/storage"
	"github.com/niteshj11/kudoboard/internal/users"
	"go.uber.org/zap"
)

type gatewayStores struct {
	users    users.Store
	boards   boards.Store
	messages messages.Store
}

// Both backends must be observably interchangeable, so every case runs
// against the durable and the in-memory gateway.
func eachGateway(t *testing.T, run func(t *testing.T, stores gatewayStores)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		gateway := storage.NewMemoryGateway()
		run(t, gatewayStores{users: gateway.Users, boards: gateway.Boards, messages: gateway.Messages})
	})

	t.Run("sqlite", func(t *testing.T) {
		db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "kudoboard.db"), zap.NewNop())
		if err != nil {
			t.Fatalf("unexpected database error: %v", err)
		}
		t.Cleanup(func() {
			sqlDB, err := db.DB()
			if err == nil {
				sqlDB.Close()
			}
		})
		gateway := storage.NewGateway(db)
		run(t, gatewayStores{users: gateway.Users, boards: gateway.Boards, messages: gateway.Messages})
	})
}

func sampleBoard(id, ownerID, shareCode string, createdAt time.Time) boards.Board {
	return boards.Board{
		ID:              id,
		OwnerID:         ownerID,
		Title:           "Board " + id,
		RecipientName:   "Recipient",
		Occasion:        boards.OccasionBirthday,
		BackgroundColor: "#f0f4f8",
		IsPublic:        true,
		ShareCode:       shareCode,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func sampleMessage(id, boardID string, createdAt time.Time) messages.Message {
	return messages.Message{
		ID:         id,
		BoardID:    boardID,
		AuthorName: "Ada",
		Content:    "Message " + id,
		CardColor:  "#ffffff",
		CardStyle:  messages.CardStyleDefault,
		PositionX:  50,
		PositionY:  50,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestUserStoreRoundTrip(t *testing.T) {
	eachGateway(t, func(t *testing.T, stores gatewayStores) {
		ctx := context.Background()
		user := users.User{
			ID:           "user-1",
			Email:        "ada@example.com",
			Name:         "Ada",
			PasswordHash: "hash",
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := stores.users.Create(ctx, user); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}

		byID, err := stores.users.GetByID(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if byID.Email != "ada@example.com" {
			t.Fatalf("unexpected email %q", byID.Email)
		}

		byEmail, err := stores.users.GetByEmail(ctx, "ada@example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if byEmail.ID != "user-1" {
			t.Fatalf("unexpected id %q", byEmail.ID)
		}

		if _, err := stores.users.GetByID(ctx, "missing"); !errors.Is(err, users.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if _, err := stores.users.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, users.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestBoardStoreShareCodeLookup(t *testing.T) {
	eachGateway(t, func(t *testing.T, stores gatewayStores) {
		ctx := context.Background()
		if err := stores.boards.Create(ctx, sampleBoard("board-1", "owner-1", "CODE1234", time.Now().UTC())); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}

		board, err := stores.boards.GetByShareCode(ctx, "CODE1234")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if board.ID != "board-1" {
			t.Fatalf("unexpected board %q", board.ID)
		}

		if _, err := stores.boards.GetByShareCode(ctx, "NOPE0000"); !errors.Is(err, boards.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestBoardStoreListByOwnerNewestFirst(t *testing.T) {
	eachGateway(t, func(t *testing.T, stores gatewayStores) {
		ctx := context.Background()
		base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
		if err := stores.boards.Create(ctx, sampleBoard("board-old", "owner-1", "CODE0001", base)); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
		if err := stores.boards.Create(ctx, sampleBoard("board-new", "owner-1", "CODE0002", base.Add(time.Hour))); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
		if err := stores.boards.Create(ctx, sampleBoard("board-other", "owner-2", "CODE0003", base)); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}

		list, err := stores.boards.ListByOwner(ctx, "owner-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 boards, got %d", len(list))
		}
		if list[0].ID != "board-new" || list[1].ID != "board-old" {
			t.Fatalf("expected newest first, got %s then %s", list[0].ID, list[1].ID)
		}
	})
}

func TestBoardStoreReplaceAndDelete(t *testing.T) {
	eachGateway(t, func(t *testing.T, stores gatewayStores) {
		ctx := context.Background()
		board := sampleBoard("board-1", "owner-1", "CODE1234", time.Now().UTC())
		if err := stores.boards.Create(ctx, board); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}

		board.Title = "Renamed"
		if err := stores.boards.Replace(ctx, board); err != nil {
			t.Fatalf("unexpected replace error: %v", err)
		}
		got, err := stores.boards.GetByID(ctx, "board-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Title != "Renamed" {
			t.Fatalf("replace not applied: %q", got.Title)
		}

		if err := stores.boards.Delete(ctx, "board-1"); err != nil {
			t.Fatalf("unexpected delete error: %v", err)
		}
		if _, err := stores.boards.GetByID(ctx, "board-1"); !errors.Is(err, boards.ErrNotFound) {
			t.Fatalf("expected not found after delete, got %v", err)
		}
	})
}

func TestMessageStoreListAscendingAndDeleteByBoard(t *testing.T) {
	eachGateway(t, func(t *testing.T, stores gatewayStores) {
		ctx := context.Background()
		base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
		if err := stores.messages.Create(ctx, sampleMessage("msg-late", "board-1", base.Add(time.Minute))); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
		if err := stores.messages.Create(ctx, sampleMessage("msg-early", "board-1", base)); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
		if err := stores.messages.Create(ctx, sampleMessage("msg-other", "board-2", base)); err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}

		list, err := stores.messages.ListByBoard(ctx, "board-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(list))
		}
		if list[0].ID != "msg-early" || list[1].ID != "msg-late" {
			t.Fatalf("expected oldest first, got %s then %s", list[0].ID, list[1].ID)
		}

		if err := stores.messages.DeleteByBoard(ctx, "board-1"); err != nil {
			t.Fatalf("unexpected delete error: %v", err)
		}
		remaining, err := stores.messages.ListByBoard(ctx, "board-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(remaining) != 0 {
			t.Fatalf("expected board purged, got %d", len(remaining))
		}
		other, err := stores.messages.ListByBoard(ctx, "board-2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(other) != 1 {
			t.Fatalf("purge must not cross boards, got %d", len(other))
		}
	})
}
