// Package services – ReportService
//
// This file implements ReportService, which owns transparency report
// generation, retrieval, and PDF rendition. Generation is the one AI path
// with no fallback: if the scoring model cannot deliver a verdict the request
// fails with ErrScoringFailed rather than persisting fabricated scores.
//
// Reports are append-only. Generating again creates a new row; "the current
// report" is resolved at read time as the most recently created one.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-transparency-backend/internal/ai"
	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/pdf"
	"github.com/tbourn/go-transparency-backend/internal/store"
)

// ReportService coordinates scoring, report persistence, and PDF artifacts.
type ReportService struct {
	Store    store.Store
	AI       *ai.Client
	Renderer *pdf.Renderer

	// IdempotencyTTL bounds how long a replayed Idempotency-Key returns the
	// original report instead of generating a new one.
	IdempotencyTTL time.Duration
}

// Generate scores the product and persists a new report. When idemKey is
// non-empty and a prior result exists for (userID, productID, idemKey), the
// original report is returned with replayed=true and the model is not called.
func (s *ReportService) Generate(ctx context.Context, userID, productID, idemKey string) (report *domain.Report, replayed bool, err error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("product.id", productID),
			attribute.Bool("idempotency", idemKey != ""),
		),
	)
	defer span.End()

	product, err := s.Store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, ErrProductNotFound
		}
		return nil, false, err
	}

	if idemKey != "" {
		if rec, err := s.Store.GetIdempotency(ctx, userID, productID, idemKey, time.Now().UTC()); err == nil {
			prior, err := s.Store.GetReport(ctx, rec.ReportID)
			if err == nil {
				return prior, true, nil
			}
		}
	}

	scoring, err := s.score(ctx, product)
	if err != nil {
		return nil, false, err
	}

	recommendations := scoring.Recommendations
	report, err = s.Store.CreateReport(ctx, productID,
		scoring.TransparencyScore, scoring.HealthScore, scoring.EthicalScore, scoring.EnvironmentalScore,
		scoring.KeyFindings, &recommendations)
	if err != nil {
		return nil, false, err
	}

	if idemKey != "" {
		ttl := s.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if _, err := s.Store.CreateIdempotency(ctx, userID, productID, idemKey, report.ID, http.StatusCreated, ttl); err != nil &&
			errors.Is(err, store.ErrDuplicate) {
			// Concurrent request won the race; serve its report.
			if rec, gerr := s.Store.GetIdempotency(ctx, userID, productID, idemKey, time.Now().UTC()); gerr == nil {
				if prior, gerr := s.Store.GetReport(ctx, rec.ReportID); gerr == nil {
					return prior, true, nil
				}
			}
		}
	}

	return report, false, nil
}

// score assembles the dossier of answered questions and invokes the scoring
// model. Any failure, including the model being unconfigured, becomes
// ErrScoringFailed.
func (s *ReportService) score(ctx context.Context, product *domain.Product) (*ai.Scoring, error) {
	if s.AI == nil || !s.AI.Enabled() {
		return nil, ErrScoringFailed
	}

	snapshot, err := s.answeredQuestions(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	answered := make([]ai.AnsweredQuestion, 0, len(snapshot))
	for i := range snapshot {
		answered = append(answered, ai.AnsweredQuestion{
			Question: snapshot[i].Question,
			Answer:   *snapshot[i].Answer,
		})
	}

	desc := ""
	if product.Description != nil {
		desc = *product.Description
	}
	scoring, err := s.AI.ScoreProduct(ctx, ai.ScoringInput{
		Name:        product.Name,
		Category:    product.Category,
		Description: desc,
		Questions:   answered,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrScoringFailed, err)
	}
	return scoring, nil
}

// answeredQuestions snapshots the product's answered questions in listing
// order. The same snapshot feeds the scoring dossier and the rendered PDF, so
// both present the evidence identically.
func (s *ReportService) answeredQuestions(ctx context.Context, productID string) ([]domain.Question, error) {
	questions, err := s.Store.ListQuestionsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	answered := make([]domain.Question, 0, len(questions))
	for i := range questions {
		if questions[i].Answered() {
			answered = append(answered, questions[i])
		}
	}
	return answered, nil
}

// Latest returns the most recent report for a product. ErrProductNotFound and
// ErrReportNotFound distinguish a missing product from a product that has not
// been scored yet.
func (s *ReportService) Latest(ctx context.Context, productID string) (*domain.Report, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "Latest",
		trace.WithAttributes(attribute.String("product.id", productID)),
	)
	defer span.End()

	if _, err := s.Store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	r, err := s.Store.GetLatestReportByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return r, nil
}

// Get returns a report by ID or ErrReportNotFound.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.Report, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("report.id", id)),
	)
	defer span.End()

	r, err := s.Store.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return r, nil
}

// RenderPDF renders (or re-renders) the PDF artifact for a report and records
// its file name on the report row. The document carries the product profile,
// the scores, and the answered question/answer pairs. It returns the
// generated file name.
func (s *ReportService) RenderPDF(ctx context.Context, reportID string) (string, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "RenderPDF",
		trace.WithAttributes(attribute.String("report.id", reportID)),
	)
	defer span.End()

	report, err := s.Get(ctx, reportID)
	if err != nil {
		return "", err
	}
	product, err := s.Store.GetProduct(ctx, report.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrProductNotFound
		}
		return "", err
	}

	answered, err := s.answeredQuestions(ctx, report.ProductID)
	if err != nil {
		return "", err
	}

	fileName, err := s.Renderer.Render(product, report, answered)
	if err != nil {
		return "", err
	}
	if err := s.Store.UpdateReportPDFPath(ctx, reportID, fileName); err != nil {
		return "", err
	}
	return fileName, nil
}

// ArtifactPath resolves a rendered artifact's absolute path by file name.
func (s *ReportService) ArtifactPath(fileName string) (string, error) {
	return s.Renderer.Open(strings.TrimSpace(fileName))
}
