// Question HTTP handlers.
//
// This file exposes REST endpoints for follow-up question resources:
//   - POST  /products/{id}/questions  (generate a batch)
//   - GET   /products/{id}/questions  (list, paginated, ETag support)
//   - PATCH /questions/{id}           (submit/replace an answer)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/services"
)

//
// DTOs
//

// AnswerRequest is the JSON payload for answering a question. The answer may
// be a bare string (text, textarea, select widgets) or an array of strings
// (checkbox widgets).
type AnswerRequest struct {
	Answer domain.Answer `json:"answer"`
}

// ListQuestionsResponse wraps a page of questions and pagination information.
type ListQuestionsResponse struct {
	Questions  []domain.Question `json:"questions"`
	Pagination Pagination        `json:"pagination"`
}

//
// Handlers
//

// GenerateQuestions godoc
// @ID          generateQuestions
// @Summary     Generate follow-up questions
// @Description Produces a new batch of 3-5 follow-up questions for the product and appends them to any existing ones. Falls back to a static category-aware set when the model is unavailable.
// @Tags        Questions
// @Produce     json
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     201  {array}   domain.Question
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id}/questions [post]
func (h *Handlers) GenerateQuestions(c *gin.Context) {
	id, okID := mustUUID(c, "id", "product")
	if !okID {
		return
	}

	questions, err := h.questionSvc.Generate(c.Request.Context(), id)
	if err != nil {
		if err == services.ErrProductNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeQuestionsFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, questions)
}

// ListQuestions godoc
// @ID          listQuestions
// @Summary     List questions (paginated)
// @Description Returns a page of the product's questions in creation order. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Questions
// @Produce     json
//
// @Param       id             path    string  true  "Product ID (UUID)"           format(uuid)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListQuestionsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Product not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/{id}/questions [get]
func (h *Handlers) ListQuestions(c *gin.Context) {
	ctx := c.Request.Context()
	id, okID := mustUUID(c, "id", "product")
	if !okID {
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if svc, isConcrete := h.questionSvc.(*services.QuestionService); isConcrete {
		count, maxTS, err := svc.Store.QuestionsStats(ctx, id)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"questions:%s:%d:%d"`, id, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.questionSvc.ListPage(ctx, id, page, pageSize)
	if err != nil {
		if err == services.ErrProductNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListQuestionsResponse{
		Questions: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

// AnswerQuestion godoc
// @ID          answerQuestion
// @Summary     Answer a question
// @Description Stores the submitted answer on a question, replacing any prior answer. Accepts a string or an array of strings (checkbox selections).
// @Tags        Questions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                  true  "Question ID (UUID)"  format(uuid)
// @Param       body  body  handlers.AnswerRequest  true  "Answer payload"
//
// @Success     200  {object}  domain.Question
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions/{id} [patch]
func (h *Handlers) AnswerQuestion(c *gin.Context) {
	id, okID := mustUUID(c, "id", "question")
	if !okID {
		return
	}

	// Decode by hand so Answer's union unmarshalling drives validation.
	var req AnswerRequest
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "answer must be a string or an array of strings")
		return
	}

	q, err := h.questionSvc.Answer(c.Request.Context(), id, req.Answer)
	if err != nil {
		switch err {
		case services.ErrEmptyAnswer:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "answer is empty")
		case services.ErrQuestionNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "question not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, q)
}
