package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

func newStatsDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("stats_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

func TestQuestionsStats_Empty(t *testing.T) {
	db := newStatsDB(t, &domain.Product{}, &domain.Question{})
	count, maxAt, err := QuestionsStats(context.Background(), db, "p1")
	if err != nil {
		t.Fatalf("QuestionsStats: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected zero stats, got %d, %v", count, maxAt)
	}
}

func TestQuestionsStats_CountAndMaxCreatedAt(t *testing.T) {
	db := newStatsDB(t, &domain.Product{}, &domain.Question{})
	seedProduct(t, db, "p1")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		q := domain.Question{
			ID:           fmt.Sprintf("q-%d", i),
			ProductID:    "p1",
			Question:     "q",
			QuestionType: domain.QuestionTypeBasic,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	count, maxAt, err := QuestionsStats(context.Background(), db, "p1")
	if err != nil {
		t.Fatalf("QuestionsStats: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d", count)
	}
	if maxAt == nil || !maxAt.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("maxCreatedAt = %v", maxAt)
	}
}

func TestQuestionsStats_Error_NoTable(t *testing.T) {
	db := newStatsDB(t)
	if _, _, err := QuestionsStats(context.Background(), db, "p1"); err == nil {
		t.Fatalf("expected error when questions table is missing")
	}
}
