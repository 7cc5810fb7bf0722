// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

// QuestionsStats returns aggregate metadata for questions within a product:
// the total number of rows and the maximum CreatedAt timestamp among those
// rows.
//
// It executes two lightweight queries against the questions table scoped to
// the provided productID. When the product has no questions, the returned
// count is 0 and maxCreatedAt is nil.
//
// Return values:
//   - count:        total questions for productID
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func QuestionsStats(ctx context.Context, db *gorm.DB, productID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Question{}).Where("product_id = ?", productID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
