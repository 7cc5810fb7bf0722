package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

// MemoryStore is the ephemeral Store backend: plain maps behind a mutex,
// used when no database path is configured and in tests. Semantics mirror
// the SQL backend — same sentinels, same ordering, same partial-update
// field keys — so the two are drop-in interchangeable.
type MemoryStore struct {
	mu          sync.RWMutex
	products    map[string]*domain.Product
	questions   map[string]*domain.Question
	reports     map[string]*domain.Report
	sessions    map[string]*domain.FormSession
	idempotency map[string]*domain.Idempotency // keyed by userID|productID|key
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:    make(map[string]*domain.Product),
		questions:   make(map[string]*domain.Question),
		reports:     make(map[string]*domain.Report),
		sessions:    make(map[string]*domain.FormSession),
		idempotency: make(map[string]*domain.Idempotency),
	}
}

func (s *MemoryStore) CreateProduct(_ context.Context, name, category string, brand, description *string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := &domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Brand:       brand,
		Category:    category,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id string, fields map[string]any) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			if sv, ok := v.(string); ok {
				p.Name = sv
			}
		case "category":
			if sv, ok := v.(string); ok {
				p.Category = sv
			}
		case "brand":
			p.Brand = toStringPtr(v)
		case "description":
			p.Description = toStringPtr(v)
		}
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) CreateQuestion(_ context.Context, productID, text, questionType string, meta domain.QuestionMetadata) (*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return nil, ErrNotFound
	}
	q := &domain.Question{
		ID:           uuid.NewString(),
		ProductID:    productID,
		Question:     text,
		QuestionType: questionType,
		Metadata:     datatypes.NewJSONType(meta),
		CreatedAt:    time.Now().UTC(),
	}
	s.questions[q.ID] = q
	cp := *q
	return &cp, nil
}

func (s *MemoryStore) GetQuestion(_ context.Context, id string) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *q
	return &cp, nil
}

// questionsOf returns copies sorted (CreatedAt ASC, ID ASC), matching the SQL
// backend's ordering. Caller must hold at least a read lock.
func (s *MemoryStore) questionsOf(productID string) []domain.Question {
	out := make([]domain.Question, 0, 8)
	for _, q := range s.questions {
		if q.ProductID == productID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) ListQuestionsByProduct(_ context.Context, productID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questionsOf(productID), nil
}

func (s *MemoryStore) ListQuestionsPage(_ context.Context, productID string, offset, limit int) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.questionsOf(productID)
	if offset >= len(all) {
		return []domain.Question{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *MemoryStore) CountQuestions(_ context.Context, productID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, q := range s.questions {
		if q.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) UpdateQuestionAnswer(_ context.Context, id, answer string) (*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	q.Answer = &answer
	cp := *q
	return &cp, nil
}

func (s *MemoryStore) QuestionsStats(_ context.Context, productID string) (int64, *time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		n   int64
		max time.Time
	)
	for _, q := range s.questions {
		if q.ProductID != productID {
			continue
		}
		n++
		if q.CreatedAt.After(max) {
			max = q.CreatedAt
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	return n, &max, nil
}

func (s *MemoryStore) CreateReport(_ context.Context, productID string, transparency, health, ethical, environmental int, findings []string, recommendations *string) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return nil, ErrNotFound
	}
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
	s.reports[r.ID] = r
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) GetReport(_ context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) GetLatestReportByProduct(_ context.Context, productID string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *domain.Report
	for _, r := range s.reports {
		if r.ProductID != productID {
			continue
		}
		if latest == nil ||
			r.CreatedAt.After(latest.CreatedAt) ||
			(r.CreatedAt.Equal(latest.CreatedAt) && r.ID > latest.ID) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *MemoryStore) UpdateReportPDFPath(_ context.Context, id, pdfPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return ErrNotFound
	}
	r.PDFPath = &pdfPath
	return nil
}

func (s *MemoryStore) CreateFormSession(_ context.Context, productID *string, currentStep int, formData map[string]any) (*domain.FormSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if currentStep < 1 {
		currentStep = 1
	}
	now := time.Now().UTC()
	sess := &domain.FormSession{
		ID:          uuid.NewString(),
		ProductID:   productID,
		CurrentStep: currentStep,
		FormData:    datatypes.JSONMap(formData),
		IsCompleted: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.sessions[sess.ID] = sess
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) GetFormSession(_ context.Context, id string) (*domain.FormSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) UpdateFormSession(_ context.Context, id string, fields map[string]any) (*domain.FormSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "product_id":
			sess.ProductID = toStringPtr(v)
		case "current_step":
			if iv, ok := v.(int); ok {
				sess.CurrentStep = iv
			}
		case "form_data":
			if mv, ok := v.(datatypes.JSONMap); ok {
				sess.FormData = mv
			} else if mv, ok := v.(map[string]any); ok {
				sess.FormData = datatypes.JSONMap(mv)
			}
		case "is_completed":
			if bv, ok := v.(bool); ok {
				sess.IsCompleted = bv
			}
		}
	}
	sess.UpdatedAt = time.Now().UTC()
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) GetIdempotency(_ context.Context, userID, productID, key string, now time.Time) (*domain.Idempotency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.idempotency[userID+"|"+productID+"|"+key]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) CreateIdempotency(_ context.Context, userID, productID, key, reportID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userID + "|" + productID + "|" + key
	if _, ok := s.idempotency[k]; ok {
		return nil, ErrDuplicate
	}
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Key:       key,
		ReportID:  reportID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.idempotency[k] = rec
	cp := *rec
	return &cp, nil
}

func toStringPtr(v any) *string {
	switch sv := v.(type) {
	case string:
		return &sv
	case *string:
		return sv
	default:
		return nil
	}
}

var _ Store = (*MemoryStore)(nil)
