// Package services – ProductService
//
// This file implements ProductService, the application-level component that
// owns the product lifecycle: intake validation and retrieval. A product is
// the anchor entity of an analysis run; questions and reports attach to it.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/store"
)

// ProductService coordinates product intake and lookup.
type ProductService struct {
	Store store.Store
}

// Create validates the submitted profile and persists a new product.
// Name and category are required; brand and description are optional and
// stored as NULL when blank.
func (s *ProductService) Create(ctx context.Context, name, category string, brand, description *string) (*domain.Product, error) {
	tr := otel.Tracer("services/ProductService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("product.category", category)),
	)
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyProductName
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrEmptyCategory
	}

	return s.Store.CreateProduct(ctx, name, category, normalizeOptional(brand), normalizeOptional(description))
}

// Get returns a product by ID or ErrProductNotFound.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	tr := otel.Tracer("services/ProductService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	defer span.End()

	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// normalizeOptional trims an optional field and collapses blank values to nil.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
