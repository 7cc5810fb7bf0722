// Package domain defines the persistence models for products, questions,
// reports, and form sessions. These types are mapped with GORM and form the
// core data layer of the transparency analysis application.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Question type discriminators. AI-generated questions carry rendering
// metadata; basic questions come from the static intake form.
const (
	QuestionTypeBasic       = "basic"
	QuestionTypeAIGenerated = "ai_generated"
)

// Input kinds a question can render as on the client.
const (
	InputText     = "text"
	InputSelect   = "select"
	InputCheckbox = "checkbox"
	InputTextarea = "textarea"
)

// Product represents a consumer product under transparency analysis. It is
// created once per analysis run; questions and reports hang off it.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name / Category: required; Category selects the fallback question set.
//   - Brand / Description: optional free-text profile fields.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Product struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null"`
	Brand       *string   `json:"brand,omitempty"       gorm:"type:varchar(255)"`
	Category    string    `json:"category"    gorm:"type:varchar(64);not null;index:idx_product_category"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// QuestionMetadata carries the UI rendering hint for a question: the input
// kind and, for select/checkbox inputs, the available options.
type QuestionMetadata struct {
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// Question represents a single prompt shown to the user for a product.
// Questions are created in batches by the question generator; the answer is
// filled in later via the update-answer operation (last write wins).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - ProductID: foreign key to the owning product (indexed, enforced at write time).
//   - Question: the prompt text.
//   - Answer: serialized answer string, nil until answered.
//   - QuestionType: "basic" or "ai_generated" (enforced by DB constraint).
//   - Metadata: JSON rendering hint ({type, options?}).
type Question struct {
	ID           string                               `json:"id"         gorm:"type:char(36);primaryKey"`
	ProductID    string                               `json:"product_id" gorm:"type:char(36);not null;index:idx_product_questions"`
	Question     string                               `json:"question"   gorm:"type:text;not null"`
	Answer       *string                              `json:"answer,omitempty" gorm:"type:text"`
	QuestionType string                               `json:"question_type" gorm:"type:varchar(16);not null;check:question_type IN ('basic','ai_generated')"`
	Metadata     datatypes.JSONType[QuestionMetadata] `json:"metadata"   gorm:"type:json"`
	CreatedAt    time.Time                            `json:"created_at"`

	// Product is the parent; questions are cascade-deleted with it.
	Product Product `json:"-" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Question.
func (Question) TableName() string { return "questions" }

// Answered reports whether the question carries a non-empty answer.
func (q *Question) Answered() bool { return q.Answer != nil && *q.Answer != "" }

// Report represents the scored output of one analysis run for a product.
// Multiple reports per product are permitted (history); "the current report"
// is the most recently created one, resolved at read time.
//
// All four scores are integers in [0,100] — the scorer clamps before the row
// is ever written. KeyFindings is never empty; the scorer substitutes a
// placeholder when the upstream call omits it.
type Report struct {
	ID                 string                      `json:"id"         gorm:"type:char(36);primaryKey"`
	ProductID          string                      `json:"product_id" gorm:"type:char(36);not null;index:idx_product_reports,priority:1"`
	TransparencyScore  int                         `json:"transparency_score"  gorm:"not null"`
	HealthScore        int                         `json:"health_score"        gorm:"not null"`
	EthicalScore       int                         `json:"ethical_score"       gorm:"not null"`
	EnvironmentalScore int                         `json:"environmental_score" gorm:"not null"`
	KeyFindings        datatypes.JSONSlice[string] `json:"key_findings"        gorm:"type:json;not null"`
	Recommendations    *string                     `json:"recommendations,omitempty" gorm:"type:text"`
	PDFPath            *string                     `json:"pdf_path,omitempty"  gorm:"column:pdf_path;type:text"`
	CreatedAt          time.Time                   `json:"created_at" gorm:"index:idx_product_reports,priority:2"`

	// Product is the analyzed product; reports are cascade-deleted with it.
	Product Product `json:"-" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Report.
func (Report) TableName() string { return "reports" }

// FormSession tracks which step of the multi-step intake flow a client has
// reached, so a reload can resume mid-flow. It is deliberately decoupled from
// the Product/Question/Report lifecycle: ProductID is optional and the record
// carries whatever partial form state the client chooses to stash.
type FormSession struct {
	ID          string            `json:"id"           gorm:"type:char(36);primaryKey"`
	ProductID   *string           `json:"product_id,omitempty" gorm:"type:char(36);index"`
	CurrentStep int               `json:"current_step" gorm:"not null;default:1"`
	FormData    datatypes.JSONMap `json:"form_data"    gorm:"type:json"`
	IsCompleted bool              `json:"is_completed" gorm:"not null;default:false"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName returns the database table name for FormSession.
func (FormSession) TableName() string { return "form_sessions" }
