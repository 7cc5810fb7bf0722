package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

// newProductRepoDB opens a temp sqlite DB and migrates only what each test asks for.
func newProductRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("product_repo_test_%d.db", time.Now().UnixNano()))
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

func strptr(s string) *string { return &s }

func TestCreateProduct_Error_NoTable(t *testing.T) {
	db := newProductRepoDB(t) // no migration on purpose
	if _, err := CreateProduct(context.Background(), db, "Oat Milk", "food-beverages", nil, nil); err == nil {
		t.Fatalf("expected error when products table is missing")
	}
}

func TestCreateProduct_Success_PersistsAndSetsFields(t *testing.T) {
	db := newProductRepoDB(t, &domain.Product{})
	p, err := CreateProduct(context.Background(), db, "Oat Milk", "food-beverages", strptr("Oatly"), strptr("Barista edition"))
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}

	var got domain.Product
	if err := db.Where("id = ?", p.ID).First(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "Oat Milk" || got.Category != "food-beverages" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.Brand == nil || *got.Brand != "Oatly" {
		t.Fatalf("brand not persisted: %+v", got.Brand)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	db := newProductRepoDB(t, &domain.Product{})
	if _, err := GetProduct(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProduct_Success_ChangesOnlyGivenFields(t *testing.T) {
	db := newProductRepoDB(t, &domain.Product{})
	p, err := CreateProduct(context.Background(), db, "Oat Milk", "food-beverages", strptr("Oatly"), nil)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	got, err := UpdateProduct(context.Background(), db, p.ID, map[string]any{"name": "Oat Milk Deluxe"})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if got.Name != "Oat Milk Deluxe" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.Brand == nil || *got.Brand != "Oatly" {
		t.Fatalf("brand must survive a partial update: %+v", got.Brand)
	}
	if !got.UpdatedAt.After(p.UpdatedAt) && !got.UpdatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("updated_at went backwards: %v -> %v", p.UpdatedAt, got.UpdatedAt)
	}
}

func TestUpdateProduct_NotFound(t *testing.T) {
	db := newProductRepoDB(t, &domain.Product{})
	if _, err := UpdateProduct(context.Background(), db, "missing", map[string]any{"name": "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
