// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Report
// model.
//
// CreateReport always appends a new row; prior reports for the same product
// are kept as history. "The current report" is a read-time projection served
// by GetLatestReportByProduct, never a stored flag.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

// CreateReport inserts a new report row for a product. Scores are persisted
// as-is; clamping to [0,100] is the scorer's responsibility and happens
// before this call. A foreign key violation (missing product) comes back as
// ErrNotFound.
func CreateReport(ctx context.Context, db *gorm.DB, productID string, transparency, health, ethical, environmental int, findings []string, recommendations *string) (*domain.Report, error) {
	r := &domain.Report{
		ID:                 uuid.NewString(),
		ProductID:          productID,
		TransparencyScore:  transparency,
		HealthScore:        health,
		EthicalScore:       ethical,
		EnvironmentalScore: environmental,
		KeyFindings:        datatypes.NewJSONSlice(findings),
		Recommendations:    recommendations,
		CreatedAt:          time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isFKViolation(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// GetReport fetches a report by ID, or ErrNotFound if missing.
func GetReport(ctx context.Context, db *gorm.DB, id string) (*domain.Report, error) {
	var r domain.Report
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// GetLatestReportByProduct returns the report with the greatest creation
// timestamp for the product, or ErrNotFound if none exists. ID is a secondary
// sort key so two reports created within the same clock tick still resolve
// deterministically.
func GetLatestReportByProduct(ctx context.Context, db *gorm.DB, productID string) (*domain.Report, error) {
	var r domain.Report
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReportPDFPath records the filename of a rendered PDF artifact on the
// report row. If no rows are affected (report missing), it returns
// ErrNotFound.
func UpdateReportPDFPath(ctx context.Context, db *gorm.DB, id, pdfPath string) error {
	res := db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("id = ?", id).
		Update("pdf_path", pdfPath)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
