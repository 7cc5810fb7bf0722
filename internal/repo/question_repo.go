// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Question
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

// CreateQuestion inserts a new question row for a product. Referential
// integrity against the products table is enforced by the database at write
// time (foreign_keys=ON); a violation comes back as ErrNotFound so callers
// see the same sentinel as a missing-product read.
func CreateQuestion(ctx context.Context, db *gorm.DB, productID, text, questionType string, meta domain.QuestionMetadata) (*domain.Question, error) {
	q := &domain.Question{
		ID:           uuid.NewString(),
		ProductID:    productID,
		Question:     text,
		QuestionType: questionType,
		Metadata:     datatypes.NewJSONType(meta),
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		if isFKViolation(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

// GetQuestion fetches a question by ID, or ErrNotFound if missing.
func GetQuestion(ctx context.Context, db *gorm.DB, id string) (*domain.Question, error) {
	var q domain.Question
	if err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestionsByProduct returns all questions for a product ordered
// deterministically (CreatedAt ASC, ID ASC). Insertion order is irrelevant to
// correctness but a stable order keeps prompts and reports reproducible.
func ListQuestionsByProduct(ctx context.Context, db *gorm.DB, productID string) ([]domain.Question, error) {
	var out []domain.Question
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountQuestions uses a raw COUNT so a missing table surfaces as an error.
func CountQuestions(ctx context.Context, db *gorm.DB, productID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM questions WHERE product_id = ?", productID).
		Scan(&total).Error
	return total, err
}

// ListQuestionsPage returns a paginated slice ordered (CreatedAt ASC, ID ASC).
func ListQuestionsPage(ctx context.Context, db *gorm.DB, productID string, offset, limit int) ([]domain.Question, error) {
	var out []domain.Question
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateQuestionAnswer stores the serialized answer on a question (last write
// wins). If no rows are affected (question missing), it returns ErrNotFound.
func UpdateQuestionAnswer(ctx context.Context, db *gorm.DB, id, answer string) (*domain.Question, error) {
	res := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", id).
		Update("answer", answer)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return GetQuestion(ctx, db, id)
}
