package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-transparency-backend/internal/domain"
	"github.com/tbourn/go-transparency-backend/internal/services"
)

func TestCreateSession_EmptyBodyIsValid(t *testing.T) {
	h := New(nil, nil, nil, &stubSessionSvc{
		create: func(_ context.Context, productID *string, currentStep int, formData map[string]any) (*domain.FormSession, error) {
			if productID != nil || currentStep != 0 || formData != nil {
				t.Errorf("empty body must yield zero values: %+v %d %+v", productID, currentStep, formData)
			}
			return &domain.FormSession{ID: uuid.NewString(), CurrentStep: 1}, nil
		},
	})
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCreateSession_WithPayload(t *testing.T) {
	h := New(nil, nil, nil, &stubSessionSvc{
		create: func(_ context.Context, productID *string, currentStep int, formData map[string]any) (*domain.FormSession, error) {
			if currentStep != 2 || formData["name"] != "Tea" {
				t.Errorf("payload not passed through: %d %+v", currentStep, formData)
			}
			return &domain.FormSession{ID: uuid.NewString(), CurrentStep: currentStep}, nil
		},
	})
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions",
		`{"current_step":2,"form_data":{"name":"Tea"}}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateSession_MalformedBody(t *testing.T) {
	h := New(nil, nil, nil, &stubSessionSvc{
		create: func(context.Context, *string, int, map[string]any) (*domain.FormSession, error) {
			t.Fatal("service must not be called on binding failure")
			return nil, nil
		},
	})
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions", `{"current_step":"two"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	h := New(nil, nil, nil, &stubSessionSvc{
		get: func(context.Context, string) (*domain.FormSession, error) {
			return nil, services.ErrSessionNotFound
		},
	})
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/v1/form-sessions/"+uuid.NewString(), "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUpdateSession_PartialUpdate(t *testing.T) {
	id := uuid.NewString()
	h := New(nil, nil, nil, &stubSessionSvc{
		update: func(_ context.Context, gotID string, upd services.SessionUpdate) (*domain.FormSession, error) {
			if gotID != id {
				t.Errorf("id = %q", gotID)
			}
			if upd.CurrentStep == nil || *upd.CurrentStep != 3 {
				t.Errorf("current step = %+v", upd.CurrentStep)
			}
			if upd.IsCompleted == nil || !*upd.IsCompleted {
				t.Errorf("is completed = %+v", upd.IsCompleted)
			}
			if upd.ProductID != nil || upd.FormData != nil {
				t.Errorf("absent fields must stay nil: %+v %+v", upd.ProductID, upd.FormData)
			}
			return &domain.FormSession{ID: gotID, CurrentStep: 3, IsCompleted: true}, nil
		},
	})
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPatch, "/api/v1/form-sessions/"+id,
		`{"current_step":3,"is_completed":true}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var sess domain.FormSession
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil || sess.CurrentStep != 3 {
		t.Fatalf("body: %s (%v)", w.Body.String(), err)
	}
}

func TestUpdateSession_NotFound(t *testing.T) {
	h := New(nil, nil, nil, &stubSessionSvc{
		update: func(context.Context, string, services.SessionUpdate) (*domain.FormSession, error) {
			return nil, services.ErrSessionNotFound
		},
	})
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPatch, "/api/v1/form-sessions/"+uuid.NewString(), `{"current_step":2}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
