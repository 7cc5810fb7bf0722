// Package store defines the persistence boundary consumed by the service
// layer and provides two interchangeable backends: a GORM/SQLite store for
// durable deployments and an in-memory store for ephemeral or test use.
// Backend selection happens once at startup (DB_PATH empty selects memory);
// services never know which one they hold.
package store

import (
	"context"
	"time"

	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/repo"
)

// ErrNotFound is returned when a requested record does not exist. Both
// backends return this same sentinel so callers check one error.
var ErrNotFound = repo.ErrNotFound

// ErrDuplicate is returned when an idempotency record already exists for the
// given (user_id, product_id, key) tuple.
var ErrDuplicate = repo.ErrDuplicate

// Store is the full persistence surface of the application. Partial updates
// take a fields map keyed by column name, mirroring how the SQL backend
// applies them; the memory backend interprets the same keys.
type Store interface {
	// Products
	CreateProduct(ctx context.Context, name, category string, brand, description *string) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, fields map[string]any) (*domain.Product, error)

	// Questions
	CreateQuestion(ctx context.Context, productID, text, questionType string, meta domain.QuestionMetadata) (*domain.Question, error)
	GetQuestion(ctx context.Context, id string) (*domain.Question, error)
	ListQuestionsByProduct(ctx context.Context, productID string) ([]domain.Question, error)
	ListQuestionsPage(ctx context.Context, productID string, offset, limit int) ([]domain.Question, error)
	CountQuestions(ctx context.Context, productID string) (int64, error)
	UpdateQuestionAnswer(ctx context.Context, id, answer string) (*domain.Question, error)
	QuestionsStats(ctx context.Context, productID string) (count int64, maxCreatedAt *time.Time, err error)

	// Reports
	CreateReport(ctx context.Context, productID string, transparency, health, ethical, environmental int, findings []string, recommendations *string) (*domain.Report, error)
	GetReport(ctx context.Context, id string) (*domain.Report, error)
	GetLatestReportByProduct(ctx context.Context, productID string) (*domain.Report, error)
	UpdateReportPDFPath(ctx context.Context, id, pdfPath string) error

	// Form sessions
	CreateFormSession(ctx context.Context, productID *string, currentStep int, formData map[string]any) (*domain.FormSession, error)
	GetFormSession(ctx context.Context, id string) (*domain.FormSession, error)
	UpdateFormSession(ctx context.Context, id string, fields map[string]any) (*domain.FormSession, error)

	// Idempotency
	GetIdempotency(ctx context.Context, userID, productID, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, userID, productID, key, reportID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}
