// Package services defines the business logic for products, follow-up
// questions, transparency reports, and form sessions. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrQuestionNotFound indicates that the requested question does not exist.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrReportNotFound indicates that the requested report does not exist, or
	// that the product has no report yet.
	ErrReportNotFound = errors.New("report not found")

	// ErrSessionNotFound indicates that the requested form session does not
	// exist.
	ErrSessionNotFound = errors.New("form session not found")

	// ErrEmptyProductName is returned when a product is submitted without a
	// name.
	ErrEmptyProductName = errors.New("product name is empty")

	// ErrEmptyCategory is returned when a product is submitted without a
	// category.
	ErrEmptyCategory = errors.New("product category is empty")

	// ErrEmptyAnswer is returned when an answer submission serializes to the
	// empty string.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrScoringFailed is returned when the scoring model cannot produce a
	// verdict. Scores are never fabricated; the caller surfaces the failure.
	ErrScoringFailed = errors.New("failed to calculate transparency score")
)
