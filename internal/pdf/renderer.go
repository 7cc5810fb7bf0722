// Package pdf renders transparency reports to PDF artifacts on local disk
// and serves them back for download. File names embed the report ID plus a
// nanosecond timestamp, so re-rendering the same report never overwrites an
// artifact a client may still be downloading.
package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-transparency-backend/internal/domain"
)

// ErrArtifactNotFound is returned when a requested PDF file does not exist in
// the reports directory (or the name tries to escape it).
var ErrArtifactNotFound = errors.New("pdf artifact not found")

// Renderer writes report PDFs into a dedicated directory.
type Renderer struct {
	dir   string
	title cases.Caser
}

// NewRenderer ensures the artifact directory exists and returns a Renderer.
func NewRenderer(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Renderer{dir: dir, title: cases.Title(language.English)}, nil
}

// Dir returns the artifact directory path.
func (r *Renderer) Dir() string { return r.dir }

// Render lays out the report as an A4 PDF and writes it to the artifact
// directory. The questions slice supplies the answered question/answer pairs
// the document must contain; the service snapshots them the same way the
// scorer does. It returns the generated file name (not the full path);
// callers persist it and build download URLs from it.
func (r *Renderer) Render(product *domain.Product, report *domain.Report, questions []domain.Question) (string, error) {
	fileName := fmt.Sprintf("transparency-report-%s-%d.pdf", report.ID, time.Now().UnixNano())

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Product Transparency Report", false)
	doc.AddPage()

	// Header
	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "Product Transparency Report", "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(120, 120, 120)
	doc.CellFormat(0, 6, "Generated "+report.CreatedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	doc.Ln(4)

	// Product profile
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 8, product.Name, "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 6, "Category: "+r.title.String(strings.ReplaceAll(product.Category, "-", " ")), "", 1, "L", false, 0, "")
	if product.Brand != nil && *product.Brand != "" {
		doc.CellFormat(0, 6, "Brand: "+*product.Brand, "", 1, "L", false, 0, "")
	}
	if product.Description != nil && *product.Description != "" {
		doc.MultiCell(0, 6, *product.Description, "", "L", false)
	}
	doc.Ln(4)

	// Scores
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, "Scores", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	writeScore(doc, "Transparency", report.TransparencyScore)
	writeScore(doc, "Health Impact", report.HealthScore)
	writeScore(doc, "Ethical Practices", report.EthicalScore)
	writeScore(doc, "Environmental Impact", report.EnvironmentalScore)
	doc.Ln(4)

	// Key findings
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, "Key Findings", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	for _, f := range report.KeyFindings {
		doc.MultiCell(0, 6, "- "+f, "", "L", false)
	}
	doc.Ln(4)

	// Recommendations
	if report.Recommendations != nil && *report.Recommendations != "" {
		doc.SetFont("Helvetica", "B", 13)
		doc.CellFormat(0, 8, "Recommendations", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, *report.Recommendations, "", "L", false)
		doc.Ln(4)
	}

	// Question/answer pairs the scores were based on.
	if len(questions) > 0 {
		doc.SetFont("Helvetica", "B", 13)
		doc.CellFormat(0, 8, "Questions & Answers", "", 1, "L", false, 0, "")
		for _, q := range questions {
			doc.SetFont("Helvetica", "B", 11)
			doc.MultiCell(0, 6, q.Question, "", "L", false)
			doc.SetFont("Helvetica", "", 11)
			answer := ""
			if q.Answer != nil {
				answer = *q.Answer
			}
			doc.MultiCell(0, 6, answer, "", "L", false)
			doc.Ln(2)
		}
	}

	if err := doc.OutputFileAndClose(filepath.Join(r.dir, fileName)); err != nil {
		return "", err
	}
	return fileName, nil
}

func writeScore(doc *gofpdf.Fpdf, label string, score int) {
	doc.CellFormat(60, 6, label, "", 0, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("%d / 100", score), "", 1, "L", false, 0, "")
}

// Open resolves a previously rendered artifact by file name. The name must
// resolve to a direct child of the artifact directory; anything containing a
// path separator, or a name for a file that does not exist, yields
// ErrArtifactNotFound.
func (r *Renderer) Open(fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return "", ErrArtifactNotFound
	}
	full := filepath.Join(r.dir, fileName)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", ErrArtifactNotFound
	}
	return full, nil
}
