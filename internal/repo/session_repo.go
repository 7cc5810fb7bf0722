// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the FormSession
// model, which tracks a user's progress through the multi-step intake form.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

// CreateFormSession inserts a new form session row. CurrentStep starts at 1
// unless the caller says otherwise; FormData may be nil.
func CreateFormSession(ctx context.Context, db *gorm.DB, productID *string, currentStep int, formData map[string]any) (*domain.FormSession, error) {
	if currentStep < 1 {
		currentStep = 1
	}
	now := time.Now().UTC()
	s := &domain.FormSession{
		ID:          uuid.NewString(),
		ProductID:   productID,
		CurrentStep: currentStep,
		FormData:    datatypes.JSONMap(formData),
		IsCompleted: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetFormSession fetches a form session by ID, or ErrNotFound if missing.
func GetFormSession(ctx context.Context, db *gorm.DB, id string) (*domain.FormSession, error) {
	var s domain.FormSession
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateFormSession applies a partial update to a form session. Only the
// fields present in the map are touched; updated_at is always bumped. If no
// rows are affected (session missing), it returns ErrNotFound.
func UpdateFormSession(ctx context.Context, db *gorm.DB, id string, fields map[string]any) (*domain.FormSession, error) {
	fields["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.FormSession{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return GetFormSession(ctx, db, id)
}
