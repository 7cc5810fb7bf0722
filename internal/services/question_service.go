// Package services – QuestionService
//
// This file implements QuestionService, which owns follow-up question
// generation and answer capture. Generation is failure-tolerant: when the
// model is unconfigured, unreachable, or returns garbage, the service serves
// a static category-aware question set instead of failing the request.
// Generated batches are appended to whatever questions the product already
// has; earlier batches (and their answers) are never discarded.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-transparency-backend/internal/ai"
	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/store"
)

// QuestionService coordinates question generation and answer updates.
type QuestionService struct {
	Store store.Store
	AI    *ai.Client
}

// Generate produces a new batch of follow-up questions for a product and
// persists them. Existing answered questions are fed back to the model so the
// new batch builds on them. The returned slice contains only the new batch.
func (s *QuestionService) Generate(ctx context.Context, productID string) ([]domain.Question, error) {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(attribute.String("product.id", productID)),
	)
	defer span.End()

	product, err := s.Store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.Store.ListQuestionsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	answers := make(map[string]string)
	for i := range existing {
		if existing[i].Answered() {
			answers[existing[i].Question] = *existing[i].Answer
		}
	}

	specs := s.generateSpecs(ctx, product, answers)

	out := make([]domain.Question, 0, len(specs))
	for _, spec := range specs {
		q, err := s.Store.CreateQuestion(ctx, productID, spec.Question, domain.QuestionTypeAIGenerated, domain.QuestionMetadata{
			Type:    spec.Type,
			Options: spec.Options,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, nil
}

// generateSpecs asks the model for questions and degrades to the static set
// on any failure. It never returns an empty slice for a known category.
func (s *QuestionService) generateSpecs(ctx context.Context, product *domain.Product, answers map[string]string) []ai.GeneratedQuestion {
	if s.AI == nil || !s.AI.Enabled() {
		return ai.FallbackQuestions(product.Category)
	}

	desc := ""
	if product.Description != nil {
		desc = *product.Description
	}
	specs, err := s.AI.GenerateQuestions(ctx, ai.QuestionInput{
		ProductName:     product.Name,
		Category:        product.Category,
		Description:     desc,
		ExistingAnswers: answers,
	})
	if err != nil {
		log.Warn().Err(err).
			Str("product_id", product.ID).
			Str("category", product.Category).
			Msg("question generation failed, serving fallback set")
		return ai.FallbackQuestions(product.Category)
	}
	return specs
}

// ListPage returns paginated questions for a product plus the total count.
func (s *QuestionService) ListPage(ctx context.Context, productID string, page, pageSize int) ([]domain.Question, int64, error) {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("product.id", productID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	if _, err := s.Store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, ErrProductNotFound
		}
		return nil, 0, err
	}

	total, err := s.Store.CountQuestions(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Question{}, 0, nil
	}

	items, err := s.Store.ListQuestionsPage(ctx, productID, offset, pageSize)
	return items, total, err
}

// Answer serializes and stores an answer on a question, last write wins.
// Answers are not validated against the question's options; free-form input
// is accepted for every widget kind.
func (s *QuestionService) Answer(ctx context.Context, questionID string, answer domain.Answer) (*domain.Question, error) {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "Answer",
		trace.WithAttributes(attribute.String("question.id", questionID)),
	)
	defer span.End()

	if answer.Empty() {
		return nil, ErrEmptyAnswer
	}

	q, err := s.Store.UpdateQuestionAnswer(ctx, questionID, answer.Serialize())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}
