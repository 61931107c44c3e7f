package database

import (
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/niteshj11/kudoboard/internal/boards"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestApplyMigrationsUppercasesShareCodes(testContext *testing.T) {
	tempDir := testContext.TempDir()
	databasePath := filepath.Join(tempDir, "migration.db")

	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}

	if err := database.AutoMigrate(&boards.Board{}, &migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}

	now := time.Now().UTC()
	board := boards.Board{
		ID:              "board-1",
		OwnerID:         "user-1",
		Title:           "Happy Birthday",
		RecipientName:   "Sam",
		Occasion:        boards.OccasionBirthday,
		BackgroundColor: "#f0f4f8",
		IsPublic:        true,
		ShareCode:       "ab12cd34",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := database.Create(&board).Error; err != nil {
		testContext.Fatalf("failed to insert board: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	var stored boards.Board
	if err := database.Where("id = ?", board.ID).Take(&stored).Error; err != nil {
		testContext.Fatalf("failed to reload board: %v", err)
	}
	if stored.ShareCode != "AB12CD34" {
		testContext.Fatalf("expected share code to be uppercased, got %s", stored.ShareCode)
	}

	var record migrationRecord
	if err := database.Where("name = ?", migrationUppercaseShareCodes).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}
