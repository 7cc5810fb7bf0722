// Form session HTTP handlers.
//
// This file exposes REST endpoints for intake form session resources:
//   - POST  /form-sessions       (create)
//   - GET   /form-sessions/{id}  (fetch)
//   - PATCH /form-sessions/{id}  (partial update)
//
// Sessions track a client's progress through the multi-step product intake
// flow so a reload can resume mid-flow.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-transparency-backend/internal/services"
)

//
// DTOs
//

// CreateSessionRequest is the JSON payload for starting a form session.
type CreateSessionRequest struct {
	// ProductID optionally links the session to an existing product.
	ProductID *string `json:"product_id,omitempty" format:"uuid"`
	// CurrentStep is the starting step (defaults to 1).
	CurrentStep int `json:"current_step" example:"1"`
	// FormData holds arbitrary partial form state.
	FormData map[string]any `json:"form_data,omitempty"`
}

// UpdateSessionRequest is the JSON payload for a partial session update.
// Absent fields are left untouched.
type UpdateSessionRequest struct {
	ProductID   *string        `json:"product_id,omitempty" format:"uuid"`
	CurrentStep *int           `json:"current_step,omitempty" example:"2"`
	FormData    map[string]any `json:"form_data,omitempty"`
	IsCompleted *bool          `json:"is_completed,omitempty"`
}

//
// Handlers
//

// CreateSession godoc
// @ID          createSession
// @Summary     Start a form session
// @Description Creates a session tracking progress through the multi-step intake form.
// @Tags        Sessions
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateSessionRequest  false  "Create session payload"
//
// @Success     201  {object}  domain.FormSession
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /form-sessions [post]
func (h *Handlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	// An empty body is a valid "start from step 1" request.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	sess, err := h.sessionSvc.Create(c.Request.Context(), req.ProductID, req.CurrentStep, req.FormData)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, sess)
}

// GetSession godoc
// @ID          getSession
// @Summary     Fetch a form session
// @Description Returns a single form session by ID.
// @Tags        Sessions
// @Produce     json
//
// @Param       id  path  string  true  "Session ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.FormSession
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /form-sessions/{id} [get]
func (h *Handlers) GetSession(c *gin.Context) {
	id, okID := mustUUID(c, "id", "session")
	if !okID {
		return
	}

	sess, err := h.sessionSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "form session not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sess)
}

// UpdateSession godoc
// @ID          updateSession
// @Summary     Update a form session
// @Description Applies a partial update (step cursor, form data, completion flag) to a form session.
// @Tags        Sessions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                         true  "Session ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateSessionRequest  true  "Partial update payload"
//
// @Success     200  {object}  domain.FormSession
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /form-sessions/{id} [patch]
func (h *Handlers) UpdateSession(c *gin.Context) {
	id, okID := mustUUID(c, "id", "session")
	if !okID {
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sess, err := h.sessionSvc.Update(c.Request.Context(), id, services.SessionUpdate{
		ProductID:   req.ProductID,
		CurrentStep: req.CurrentStep,
		FormData:    req.FormData,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "form session not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sess)
}
