package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tbourn/go-transparency-backend/internal/config"
)

// fakeModel spins up an httptest server that answers generateContent calls
// with the given candidate text, and returns a Client pointed at it.
func fakeModel(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.GeminiConfig{
		APIKey:        "test-key",
		BaseURL:       srv.URL,
		QuestionModel: "fast-model",
		ScoringModel:  "quality-model",
		Timeout:       5 * time.Second,
	})
}

// candidateResponse wraps text in the generateContent response envelope.
func candidateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestClient_EnabledFollowsAPIKey(t *testing.T) {
	if NewClient(config.GeminiConfig{}).Enabled() {
		t.Fatalf("client without API key must be disabled")
	}
	if !NewClient(config.GeminiConfig{APIKey: "k"}).Enabled() {
		t.Fatalf("client with API key must be enabled")
	}
}

func TestGenerateQuestions_ParsesAndValidates(t *testing.T) {
	payload := `{"questions":[
		{"question":"  Where is it made? ","type":"TEXT"},
		{"question":"","type":"text"},
		{"question":"Pick one","type":"select"},
		{"question":"Pick one","type":"select","options":["A","B"]},
		{"question":"Oddball","type":"slider"}
	]}`
	c := fakeModel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query: %s", r.URL.String())
		}
		var body struct {
			GenerationConfig struct {
				ResponseMimeType string `json:"responseMimeType"`
			} `json:"generationConfig"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("responseMimeType = %q", body.GenerationConfig.ResponseMimeType)
		}
		_ = json.NewEncoder(w).Encode(candidateResponse(payload))
	})

	got, err := c.GenerateQuestions(context.Background(), QuestionInput{ProductName: "Tea", Category: "food-beverages"})
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	// Blank text, optionless select, and unknown type are dropped.
	if len(got) != 2 {
		t.Fatalf("expected 2 valid questions, got %d: %+v", len(got), got)
	}
	if got[0].Question != "Where is it made?" || got[0].Type != "text" {
		t.Fatalf("normalization broken: %+v", got[0])
	}
	if got[1].Type != "select" || len(got[1].Options) != 2 {
		t.Fatalf("select with options must survive: %+v", got[1])
	}
}

func TestGenerateQuestions_CapsAtFive(t *testing.T) {
	qs := make([]GeneratedQuestion, 0, 8)
	for i := 0; i < 8; i++ {
		qs = append(qs, GeneratedQuestion{Question: "q", Type: "text"})
	}
	payload, _ := json.Marshal(map[string]any{"questions": qs})
	c := fakeModel(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candidateResponse(string(payload)))
	})

	got, err := c.GenerateQuestions(context.Background(), QuestionInput{ProductName: "Tea", Category: "other"})
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected cap at 5, got %d", len(got))
	}
}

func TestGenerateQuestions_NothingValid(t *testing.T) {
	c := fakeModel(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candidateResponse(`{"questions":[{"question":"","type":"text"}]}`))
	})
	if _, err := c.GenerateQuestions(context.Background(), QuestionInput{}); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestGenerateQuestions_UpstreamErrorStatus(t *testing.T) {
	c := fakeModel(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	if _, err := c.GenerateQuestions(context.Background(), QuestionInput{}); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}

func TestGenerateQuestions_EmptyCandidates(t *testing.T) {
	c := fakeModel(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})
	if _, err := c.GenerateQuestions(context.Background(), QuestionInput{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestScoreProduct_NormalizesScoresAndNarrative(t *testing.T) {
	c := fakeModel(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candidateResponse(`{
			"transparencyScore": 142.7,
			"healthScore": -3,
			"ethicalScore": 88.9,
			"keyFindings": [],
			"recommendations": "  "
		}`))
	})

	got, err := c.ScoreProduct(context.Background(), ScoringInput{Name: "Tea", Category: "food-beverages"})
	if err != nil {
		t.Fatalf("ScoreProduct: %v", err)
	}
	// environmentalScore is absent entirely; it must normalize to 0, not fail.
	if got.TransparencyScore != 100 || got.HealthScore != 0 || got.EthicalScore != 88 || got.EnvironmentalScore != 0 {
		t.Fatalf("clamping broken: %+v", got)
	}
	if len(got.KeyFindings) != 1 || got.KeyFindings[0] != "Analysis in progress" {
		t.Fatalf("empty findings must get placeholder: %+v", got.KeyFindings)
	}
	if got.Recommendations != "Complete analysis to receive recommendations" {
		t.Fatalf("blank recommendations must get placeholder: %q", got.Recommendations)
	}
}

func TestScoreProduct_NonNumericScoreBecomesZero(t *testing.T) {
	c := fakeModel(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candidateResponse(`{
			"transparencyScore": "excellent",
			"healthScore": 74,
			"ethicalScore": true,
			"environmentalScore": 91,
			"keyFindings": ["f"],
			"recommendations": "r"
		}`))
	})

	got, err := c.ScoreProduct(context.Background(), ScoringInput{Name: "Tea"})
	if err != nil {
		t.Fatalf("ScoreProduct: %v", err)
	}
	if got.TransparencyScore != 0 || got.EthicalScore != 0 {
		t.Fatalf("non-numeric scores must floor to 0: %+v", got)
	}
	if got.HealthScore != 74 || got.EnvironmentalScore != 91 {
		t.Fatalf("numeric scores must survive: %+v", got)
	}
}

func TestScoreProduct_GarbledOutputIsError(t *testing.T) {
	c := fakeModel(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candidateResponse(`scores: great, trust me`))
	})
	if _, err := c.ScoreProduct(context.Background(), ScoringInput{Name: "Tea"}); err == nil {
		t.Fatalf("expected error for non-JSON model output")
	}
}

func TestClampScore(t *testing.T) {
	nan := func() float64 { var z float64; return z / z }()
	cases := []struct {
		in   float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{42.9, 42},
		{100, 100},
		{250, 100},
		{nan, 0},
	}
	for _, tc := range cases {
		if got := ClampScore(tc.in); got != tc.want {
			t.Errorf("ClampScore(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFallbackQuestions_CategoryTable(t *testing.T) {
	food := FallbackQuestions("food-beverages")
	if len(food) != 4 {
		t.Fatalf("food-beverages should get 4 questions, got %d", len(food))
	}
	if food[2].Type != "textarea" {
		t.Fatalf("expected preservatives textarea: %+v", food[2])
	}

	care := FallbackQuestions("personal-care")
	if len(care) != 4 {
		t.Fatalf("personal-care should get 4 questions, got %d", len(care))
	}
	if care[2].Type != "select" || len(care[2].Options) != 4 {
		t.Fatalf("expected animal testing select: %+v", care[2])
	}

	other := FallbackQuestions("electronics")
	if len(other) != 2 {
		t.Fatalf("unknown category should get the base set, got %d", len(other))
	}
	if other[0].Type != "checkbox" || other[1].Type != "select" {
		t.Fatalf("base set shape changed: %+v", other)
	}
}
