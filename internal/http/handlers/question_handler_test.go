package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/services"
	"github.com/tbourn/go-transparency-backend/internal/store"
)

func TestGenerateQuestions_Success(t *testing.T) {
	id := uuid.NewString()
	h := New(nil, &stubQuestionSvc{
		generate: func(_ context.Context, productID string) ([]domain.Question, error) {
			if productID != id {
				t.Errorf("product id = %q", productID)
			}
			return []domain.Question{
				{ID: uuid.NewString(), ProductID: id, Question: "Where sourced?", QuestionType: domain.QuestionTypeAIGenerated},
			}, nil
		},
	}, nil, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/v1/products/"+id+"/questions", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out []domain.Question
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || len(out) != 1 {
		t.Fatalf("body: %s (%v)", w.Body.String(), err)
	}
}

func TestGenerateQuestions_ProductNotFound(t *testing.T) {
	h := New(nil, &stubQuestionSvc{
		generate: func(context.Context, string) ([]domain.Question, error) {
			return nil, services.ErrProductNotFound
		},
	}, nil, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/v1/products/"+uuid.NewString()+"/questions", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGenerateQuestions_StoreFailure(t *testing.T) {
	h := New(nil, &stubQuestionSvc{
		generate: func(context.Context, string) ([]domain.Question, error) {
			return nil, errors.New("disk full")
		},
	}, nil, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/v1/products/"+uuid.NewString()+"/questions", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != ErrCodeQuestionsFailed {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestListQuestions_PaginationEnvelope(t *testing.T) {
	id := uuid.NewString()
	h := New(nil, &stubQuestionSvc{
		listPage: func(_ context.Context, _ string, page, pageSize int) ([]domain.Question, int64, error) {
			if page != 2 || pageSize != 3 {
				t.Errorf("paging = %d/%d", page, pageSize)
			}
			return []domain.Question{{ID: uuid.NewString()}}, 7, nil
		},
	}, nil, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/v1/products/"+id+"/questions?page=2&page_size=3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ListQuestionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Total != 7 || resp.Pagination.TotalPages != 3 || !resp.Pagination.HasNext {
		t.Fatalf("pagination: %+v", resp.Pagination)
	}
}

func TestListQuestions_ClampsJunkPaging(t *testing.T) {
	id := uuid.NewString()
	h := New(nil, &stubQuestionSvc{
		listPage: func(_ context.Context, _ string, page, pageSize int) ([]domain.Question, int64, error) {
			if page != 1 || pageSize != 100 {
				t.Errorf("paging not clamped: %d/%d", page, pageSize)
			}
			return []domain.Question{}, 0, nil
		},
	}, nil, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/v1/products/"+id+"/questions?page=-4&page_size=9999", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListQuestions_ETagNotModified(t *testing.T) {
	// ETag needs the concrete service so the handler can reach the store.
	st := store.NewMemoryStore()
	p, err := st.CreateProduct(context.Background(), "Tea", "food-beverages", nil, nil)
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if _, err := st.CreateQuestion(context.Background(), p.ID, "Q?", domain.QuestionTypeBasic, domain.QuestionMetadata{Type: domain.InputText}); err != nil {
		t.Fatalf("seed question: %v", err)
	}
	h := New(nil, &services.QuestionService{Store: st}, nil, nil)
	r := newTestRouter(h)

	// MemoryStore product IDs are UUIDs, so they pass mustUUID.
	first := doJSON(t, r, http.MethodGet, "/api/v1/products/"+p.ID+"/questions", "", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, body = %s", first.Code, first.Body.String())
	}
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag header")
	}

	second := doJSON(t, r, http.MethodGet, "/api/v1/products/"+p.ID+"/questions", "", map[string]string{"If-None-Match": etag})
	if second.Code != http.StatusNotModified {
		t.Fatalf("second status = %d, want 304", second.Code)
	}

	// A new question invalidates the tag.
	if _, err := st.CreateQuestion(context.Background(), p.ID, "Another?", domain.QuestionTypeBasic, domain.QuestionMetadata{Type: domain.InputText}); err != nil {
		t.Fatalf("seed question: %v", err)
	}
	third := doJSON(t, r, http.MethodGet, "/api/v1/products/"+p.ID+"/questions", "", map[string]string{"If-None-Match": etag})
	if third.Code != http.StatusOK {
		t.Fatalf("stale ETag must not 304: status = %d", third.Code)
	}
}

func TestAnswerQuestion_StringAnswer(t *testing.T) {
	id := uuid.NewString()
	h := New(nil, &stubQuestionSvc{
		answer: func(_ context.Context, questionID string, a domain.Answer) (*domain.Question, error) {
			if a.Kind != domain.AnswerText || a.Text != "Local" {
				t.Errorf("answer = %+v", a)
			}
			serialized := a.Serialize()
			return &domain.Question{ID: questionID, Answer: &serialized}, nil
		},
	}, nil, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPatch, "/api/v1/questions/"+id, `{"answer":"Local"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAnswerQuestion_ArrayAnswer(t *testing.T) {
	id := uuid.NewString()
	h := New(nil, &stubQuestionSvc{
		answer: func(_ context.Context, questionID string, a domain.Answer) (*domain.Question, error) {
			if a.Kind != domain.AnswerMultiChoice || len(a.Choices) != 2 {
				t.Errorf("answer = %+v", a)
			}
			serialized := a.Serialize()
			return &domain.Question{ID: questionID, Answer: &serialized}, nil
		},
	}, nil, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPatch, "/api/v1/questions/"+id, `{"answer":["Organic","Fair Trade"]}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAnswerQuestion_RejectsOtherShapes(t *testing.T) {
	h := New(nil, &stubQuestionSvc{
		answer: func(context.Context, string, domain.Answer) (*domain.Question, error) {
			t.Fatal("service must not be called for a malformed answer")
			return nil, nil
		},
	}, nil, nil)
	r := newTestRouter(h)

	for _, body := range []string{`{"answer":42}`, `{"answer":{"x":1}}`, `{"answer":[1,2]}`, `not json`} {
		w := doJSON(t, r, http.MethodPatch, "/api/v1/questions/"+uuid.NewString(), body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d", body, w.Code)
		}
	}
}

func TestAnswerQuestion_EmptyAndMissing(t *testing.T) {
	h := New(nil, &stubQuestionSvc{
		answer: func(_ context.Context, _ string, a domain.Answer) (*domain.Question, error) {
			if a.Empty() {
				return nil, services.ErrEmptyAnswer
			}
			return nil, services.ErrQuestionNotFound
		},
	}, nil, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPatch, "/api/v1/questions/"+uuid.NewString(), `{"answer":""}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty answer status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/v1/questions/"+uuid.NewString(), `{"answer":"x"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing question status = %d", w.Code)
	}
}
