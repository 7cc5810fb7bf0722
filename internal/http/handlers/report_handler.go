// Report HTTP handlers.
//
// This file exposes REST endpoints for transparency report resources:
//   - POST /products/{id}/report        (generate, idempotent with Idempotency-Key)
//   - GET  /products/{id}/report        (latest report for a product)
//   - GET  /reports/{id}                (fetch by ID)
//   - POST /reports/{id}/pdf            (render PDF artifact)
//   - GET  /reports/download/{fileName} (download rendered artifact)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-transparency-backend/internal/services"
)

// RenderPDFResponse is the payload returned after a successful PDF rendition.
type RenderPDFResponse struct {
	FileName    string `json:"file_name" example:"transparency-report-9f03-1724683000000.pdf"`
	DownloadURL string `json:"download_url" example:"/api/v1/reports/download/transparency-report-9f03-1724683000000.pdf"`
}

// GenerateReport godoc
// @ID          generateReport
// @Summary     Generate a transparency report
// @Description Scores the product across transparency, health, ethical, and environmental dimensions and persists a new report. Repeating a request with the same Idempotency-Key returns the original report instead of re-scoring.
// @Tags        Reports
// @Produce     json
//
// @Param       id               path    string  true  "Product ID (UUID)"  format(uuid)
// @Param       Idempotency-Key  header  string  false "Safe-retry key (UUID recommended)"
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
//
// @Success     201  {object}  domain.Report
// @Success     200  {object}  domain.Report  "Replayed via Idempotency-Key"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Scoring failed"
// @Router      /products/{id}/report [post]
func (h *Handlers) GenerateReport(c *gin.Context) {
	id, okID := mustUUID(c, "id", "product")
	if !okID {
		return
	}
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))

	report, replayed, err := h.reportSvc.Generate(c.Request.Context(), userID(c), id, idemKey)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		case errors.Is(err, services.ErrScoringFailed):
			fail(c, http.StatusBadGateway, ErrCodeScoringFailed, "failed to calculate transparency score")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	ok(c, status, report)
}

// LatestReport godoc
// @ID          latestReport
// @Summary     Fetch the current report for a product
// @Description Returns the most recently generated report for the product.
// @Tags        Reports
// @Produce     json
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Report
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product or report not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id}/report [get]
func (h *Handlers) LatestReport(c *gin.Context) {
	id, okID := mustUUID(c, "id", "product")
	if !okID {
		return
	}

	report, err := h.reportSvc.Latest(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		case errors.Is(err, services.ErrReportNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no report for this product yet")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, report)
}

// GetReport godoc
// @ID          getReport
// @Summary     Fetch a report
// @Description Returns a single report by ID.
// @Tags        Reports
// @Produce     json
//
// @Param       id  path  string  true  "Report ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Report
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Report not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /reports/{id} [get]
func (h *Handlers) GetReport(c *gin.Context) {
	id, okID := mustUUID(c, "id", "report")
	if !okID {
		return
	}

	report, err := h.reportSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "report not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, report)
}

// RenderReportPDF godoc
// @ID          renderReportPDF
// @Summary     Render a report as PDF
// @Description Renders (or re-renders) the report as a PDF artifact and returns its file name and download URL.
// @Tags        Reports
// @Produce     json
//
// @Param       id  path  string  true  "Report ID (UUID)"  format(uuid)
//
// @Success     201  {object}  handlers.RenderPDFResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Report not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Render failed"
// @Router      /reports/{id}/pdf [post]
func (h *Handlers) RenderReportPDF(c *gin.Context) {
	id, okID := mustUUID(c, "id", "report")
	if !okID {
		return
	}

	fileName, err := h.reportSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound), errors.Is(err, services.ErrProductNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "report not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeRenderFailed, err.Error())
		}
		return
	}

	base := strings.TrimSuffix(c.Request.URL.Path, "/"+id+"/pdf")
	ok(c, http.StatusCreated, RenderPDFResponse{
		FileName:    fileName,
		DownloadURL: base + "/download/" + fileName,
	})
}

// DownloadReportPDF godoc
// @ID          downloadReportPDF
// @Summary     Download a rendered PDF
// @Description Streams a previously rendered PDF artifact as an attachment.
// @Tags        Reports
// @Produce     application/pdf
//
// @Param       fileName  path  string  true  "Artifact file name"
//
// @Success     200  {file}    file
// @Failure     404  {object}  handlers.ErrorResponse  "Artifact not found"
// @Router      /reports/download/{fileName} [get]
func (h *Handlers) DownloadReportPDF(c *gin.Context) {
	fileName := c.Param("fileName")
	full, err := h.reportSvc.ArtifactPath(fileName)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "pdf artifact not found")
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(full, fileName)
}
