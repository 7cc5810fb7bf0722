// Product HTTP handlers.
//
// This file exposes REST endpoints for product resources:
//   - POST /products       (create)
//   - GET  /products/{id}  (fetch)
//
// It also declares the service contracts consumed by every handler in this
// package. Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/services"
	"github.com/tbourn/go-transparency-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ProductService defines product lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ProductService interface {
	// Create validates and persists a new product profile.
	Create(ctx context.Context, name, category string, brand, description *string) (*domain.Product, error)
	// Get returns a product by ID.
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// QuestionService defines follow-up question operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type QuestionService interface {
	// Generate produces and persists a new batch of follow-up questions.
	Generate(ctx context.Context, productID string) ([]domain.Question, error)
	// ListPage returns a page of questions for a product and the total count.
	ListPage(ctx context.Context, productID string, page, pageSize int) ([]domain.Question, int64, error)
	// Answer stores a serialized answer on a question (last write wins).
	Answer(ctx context.Context, questionID string, answer domain.Answer) (*domain.Question, error)
}

// ReportService defines report generation, retrieval, and PDF rendition.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ReportService interface {
	// Generate scores the product and persists a new report. A non-empty
	// idemKey makes the operation replayable.
	Generate(ctx context.Context, userID, productID, idemKey string) (*domain.Report, bool, error)
	// Latest returns the most recent report for a product.
	Latest(ctx context.Context, productID string) (*domain.Report, error)
	// Get returns a report by ID.
	Get(ctx context.Context, id string) (*domain.Report, error)
	// RenderPDF renders the PDF artifact and returns its file name.
	RenderPDF(ctx context.Context, reportID string) (string, error)
	// ArtifactPath resolves a rendered artifact's path by file name.
	ArtifactPath(fileName string) (string, error)
}

// SessionService defines multi-step intake form session operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SessionService interface {
	// Create starts a new form session.
	Create(ctx context.Context, productID *string, currentStep int, formData map[string]any) (*domain.FormSession, error)
	// Get returns a form session by ID.
	Get(ctx context.Context, id string) (*domain.FormSession, error)
	// Update applies a partial update to a form session.
	Update(ctx context.Context, id string, upd services.SessionUpdate) (*domain.FormSession, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for products, questions, reports, and form
// sessions. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	productSvc  ProductService
	questionSvc QuestionService
	reportSvc   ReportService
	sessionSvc  SessionService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(productSvc ProductService, questionSvc QuestionService, reportSvc ReportService, sessionSvc SessionService) *Handlers {
	return &Handlers{
		productSvc:  productSvc,
		questionSvc: questionSvc,
		reportSvc:   reportSvc,
		sessionSvc:  sessionSvc,
	}
}

// userID extracts the caller identity from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// CreateProductRequest is the JSON payload for creating a product.
type CreateProductRequest struct {
	// Name is the product name (required).
	Name string `json:"name" binding:"required" example:"Organic Wildflower Honey"`
	// Category selects the analysis track, e.g. food-beverages.
	Category string `json:"category" binding:"required" example:"food-beverages"`
	// Brand optionally names the producer.
	Brand *string `json:"brand,omitempty" example:"Golden Hive Co."`
	// Description optionally describes the product in free text.
	Description *string `json:"description,omitempty" example:"Raw honey from local apiaries"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// mustUUID validates a path parameter as UUID, failing the request otherwise.
func mustUUID(c *gin.Context, param, what string) (string, bool) {
	id := c.Param(param)
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, what+" id must be a UUID")
		return "", false
	}
	return id, true
}

//
// Handlers
//

// CreateProduct godoc
// @ID          createProduct
// @Summary     Submit a product for analysis
// @Description Creates a product profile and returns the product resource. Name and category are required.
// @Tags        Products
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateProductRequest  true  "Create product payload"
//
// @Success     201  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: name and category are required")
		return
	}

	p, err := h.productSvc.Create(c.Request.Context(), req.Name, req.Category, req.Brand, req.Description)
	if err != nil {
		switch {
		case err == services.ErrEmptyProductName, err == services.ErrEmptyCategory:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, p)
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Fetch a product
// @Description Returns a single product profile by ID.
// @Tags        Products
// @Produce     json
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	id, okID := mustUUID(c, "id", "product")
	if !okID {
		return
	}

	p, err := h.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		if err == services.ErrProductNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}
