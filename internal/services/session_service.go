// Package services – SessionService
//
// This file implements SessionService, which tracks a client's progress
// through the multi-step intake form. Sessions are a convenience for the
// frontend: they hold partial form state and a step cursor so a reload can
// resume where the user left off. They are deliberately decoupled from the
// product/question/report lifecycle.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/store"
)

// SessionService coordinates form session persistence.
type SessionService struct {
	Store store.Store
}

// SessionUpdate is a partial update to a form session. Nil fields are left
// untouched.
type SessionUpdate struct {
	ProductID   *string
	CurrentStep *int
	FormData    map[string]any
	IsCompleted *bool
}

// Create starts a new form session at the given step (minimum 1).
func (s *SessionService) Create(ctx context.Context, productID *string, currentStep int, formData map[string]any) (*domain.FormSession, error) {
	tr := otel.Tracer("services/SessionService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	return s.Store.CreateFormSession(ctx, normalizeOptional(productID), currentStep, formData)
}

// Get returns a form session by ID or ErrSessionNotFound.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.FormSession, error) {
	tr := otel.Tracer("services/SessionService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	sess, err := s.Store.GetFormSession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

// Update applies a partial update to a form session and returns the updated
// record, or ErrSessionNotFound.
func (s *SessionService) Update(ctx context.Context, id string, upd SessionUpdate) (*domain.FormSession, error) {
	tr := otel.Tracer("services/SessionService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	fields := make(map[string]any, 4)
	if upd.ProductID != nil {
		fields["product_id"] = *upd.ProductID
	}
	if upd.CurrentStep != nil {
		step := *upd.CurrentStep
		if step < 1 {
			step = 1
		}
		fields["current_step"] = step
	}
	if upd.FormData != nil {
		fields["form_data"] = upd.FormData
	}
	if upd.IsCompleted != nil {
		fields["is_completed"] = *upd.IsCompleted
	}

	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	sess, err := s.Store.UpdateFormSession(ctx, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}
