package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

func testReport() (*domain.Product, *domain.Report) {
	brand := "Oatly"
	desc := "Barista edition oat drink"
	rec := "Obtain organic certification"
	p := &domain.Product{
		ID:          "p1",
		Name:        "Oat Milk",
		Brand:       &brand,
		Category:    "food-beverages",
		Description: &desc,
	}
	r := &domain.Report{
		ID:                 "r1",
		ProductID:          "p1",
		TransparencyScore:  82,
		HealthScore:        74,
		EthicalScore:       68,
		EnvironmentalScore: 91,
		KeyFindings:        datatypes.NewJSONSlice([]string{"Locally sourced oats", "Recyclable packaging"}),
		Recommendations:    &rec,
		CreatedAt:          time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
	return p, r
}

func answeredQuestion(text, answer string) domain.Question {
	return domain.Question{
		ID:        "q-" + text,
		ProductID: "p1",
		Question:  text,
		Answer:    &answer,
	}
}

func TestNewRenderer_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	if _, err := NewRenderer(dir); err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("artifact directory not created: %v", err)
	}
}

func TestRender_WritesArtifact(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	product, report := testReport()

	fileName, err := r.Render(product, report, []domain.Question{
		answeredQuestion("Where are the oats sourced?", "Sweden"),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(fileName, "transparency-report-r1-") || !strings.HasSuffix(fileName, ".pdf") {
		t.Fatalf("unexpected file name: %q", fileName)
	}
	if strings.ContainsRune(fileName, os.PathSeparator) {
		t.Fatalf("file name must not contain path separators: %q", fileName)
	}

	data, err := os.ReadFile(filepath.Join(r.Dir(), fileName))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("artifact is not a PDF (%d bytes)", len(data))
	}
}

func TestRender_UniqueNamePerRendition(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	product, report := testReport()

	a, err := r.Render(product, report, nil)
	if err != nil {
		t.Fatalf("first Render: %v", err)
	}
	b, err := r.Render(product, report, nil)
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}
	if a == b {
		t.Fatalf("re-rendering must not reuse file names: %q", a)
	}
}

func TestRender_MinimalReport(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	product := &domain.Product{ID: "p2", Name: "Soap", Category: "personal-care"}
	report := &domain.Report{
		ID:          "r2",
		ProductID:   "p2",
		KeyFindings: datatypes.NewJSONSlice([]string{"Analysis in progress"}),
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.Render(product, report, nil); err != nil {
		t.Fatalf("Render without brand/description/recommendations: %v", err)
	}
}

// The document must carry the question/answer pairs the scores were based on.
// PDF streams are compressed, so the section is verified structurally: enough
// pairs overflow onto a second page, and the artifact grows against a
// questionless baseline of the same report.
func TestRender_IncludesQuestionAnswers(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	product, report := testReport()

	baseline, err := r.Render(product, report, nil)
	if err != nil {
		t.Fatalf("baseline Render: %v", err)
	}
	baseData, err := os.ReadFile(filepath.Join(r.Dir(), baseline))
	if err != nil {
		t.Fatalf("read baseline: %v", err)
	}
	if !strings.Contains(string(baseData), "/Count 1") {
		t.Fatalf("baseline report must fit one page")
	}

	questions := make([]domain.Question, 0, 30)
	for i := 0; i < 30; i++ {
		questions = append(questions, answeredQuestion(
			fmt.Sprintf("Supply chain question %d?", i),
			fmt.Sprintf("Detailed answer %d", i),
		))
	}
	fileName, err := r.Render(product, report, questions)
	if err != nil {
		t.Fatalf("Render with questions: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(r.Dir(), fileName))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if len(data) <= len(baseData) {
		t.Fatalf("question section missing: %d bytes vs %d-byte baseline", len(data), len(baseData))
	}
	if !strings.Contains(string(data), "/Count 2") {
		t.Fatalf("30 question/answer pairs must overflow to a second page")
	}
}

func TestOpen_ResolvesExistingArtifact(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	product, report := testReport()
	fileName, err := r.Render(product, report, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	full, err := r.Open(fileName)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if filepath.Dir(full) != r.Dir() {
		t.Fatalf("resolved path escapes the artifact dir: %q", full)
	}
}

func TestOpen_RejectsTraversalAndMissing(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	for _, name := range []string{
		"",
		"../secret.pdf",
		"..",
		"nested/child.pdf",
		".hidden.pdf",
		"does-not-exist.pdf",
	} {
		if _, err := r.Open(name); !errors.Is(err, ErrArtifactNotFound) {
			t.Errorf("Open(%q) = %v, want ErrArtifactNotFound", name, err)
		}
	}
}
