package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/repo"
)

// GormStore is the durable Store backend. It delegates to the thin repository
// functions so transaction scoping and query composition stay in one place.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM handle as a Store.
func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

// DB exposes the underlying handle for migrations and health checks.
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) CreateProduct(ctx context.Context, name, category string, brand, description *string) (*domain.Product, error) {
	return repo.CreateProduct(ctx, s.db, name, category, brand, description)
}

func (s *GormStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return repo.GetProduct(ctx, s.db, id)
}

func (s *GormStore) UpdateProduct(ctx context.Context, id string, fields map[string]any) (*domain.Product, error) {
	return repo.UpdateProduct(ctx, s.db, id, fields)
}

func (s *GormStore) CreateQuestion(ctx context.Context, productID, text, questionType string, meta domain.QuestionMetadata) (*domain.Question, error) {
	return repo.CreateQuestion(ctx, s.db, productID, text, questionType, meta)
}

func (s *GormStore) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	return repo.GetQuestion(ctx, s.db, id)
}

func (s *GormStore) ListQuestionsByProduct(ctx context.Context, productID string) ([]domain.Question, error) {
	return repo.ListQuestionsByProduct(ctx, s.db, productID)
}

func (s *GormStore) ListQuestionsPage(ctx context.Context, productID string, offset, limit int) ([]domain.Question, error) {
	return repo.ListQuestionsPage(ctx, s.db, productID, offset, limit)
}

func (s *GormStore) CountQuestions(ctx context.Context, productID string) (int64, error) {
	return repo.CountQuestions(ctx, s.db, productID)
}

func (s *GormStore) UpdateQuestionAnswer(ctx context.Context, id, answer string) (*domain.Question, error) {
	return repo.UpdateQuestionAnswer(ctx, s.db, id, answer)
}

func (s *GormStore) QuestionsStats(ctx context.Context, productID string) (int64, *time.Time, error) {
	return repo.QuestionsStats(ctx, s.db, productID)
}

func (s *GormStore) CreateReport(ctx context.Context, productID string, transparency, health, ethical, environmental int, findings []string, recommendations *string) (*domain.Report, error) {
	return repo.CreateReport(ctx, s.db, productID, transparency, health, ethical, environmental, findings, recommendations)
}

func (s *GormStore) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	return repo.GetReport(ctx, s.db, id)
}

func (s *GormStore) GetLatestReportByProduct(ctx context.Context, productID string) (*domain.Report, error) {
	return repo.GetLatestReportByProduct(ctx, s.db, productID)
}

func (s *GormStore) UpdateReportPDFPath(ctx context.Context, id, pdfPath string) error {
	return repo.UpdateReportPDFPath(ctx, s.db, id, pdfPath)
}

func (s *GormStore) CreateFormSession(ctx context.Context, productID *string, currentStep int, formData map[string]any) (*domain.FormSession, error) {
	return repo.CreateFormSession(ctx, s.db, productID, currentStep, formData)
}

func (s *GormStore) GetFormSession(ctx context.Context, id string) (*domain.FormSession, error) {
	return repo.GetFormSession(ctx, s.db, id)
}

func (s *GormStore) UpdateFormSession(ctx context.Context, id string, fields map[string]any) (*domain.FormSession, error) {
	return repo.UpdateFormSession(ctx, s.db, id, fields)
}

func (s *GormStore) GetIdempotency(ctx context.Context, userID, productID, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, s.db, userID, productID, key, now)
}

func (s *GormStore) CreateIdempotency(ctx context.Context, userID, productID, key, reportID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, s.db, userID, productID, key, reportID, status, ttl)
}

var _ Store = (*GormStore)(nil)
