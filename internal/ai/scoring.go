package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// AnsweredQuestion pairs a question prompt with its serialized answer for the
// scoring prompt. Only answered questions are fed to the scorer.
type AnsweredQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ScoringInput is the full product dossier handed to the scoring model.
type ScoringInput struct {
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Description string             `json:"description,omitempty"`
	Questions   []AnsweredQuestion `json:"questions"`
}

// Scoring is the model's verdict, normalized: every score clamped to [0,100],
// KeyFindings never empty, Recommendations never blank.
type Scoring struct {
	TransparencyScore  int      `json:"transparencyScore"`
	HealthScore        int      `json:"healthScore"`
	EthicalScore       int      `json:"ethicalScore"`
	EnvironmentalScore int      `json:"environmentalScore"`
	KeyFindings        []string `json:"keyFindings"`
	Recommendations    string   `json:"recommendations"`
}

// ScoreProduct asks the quality model to score the product across the four
// transparency dimensions. There is no fallback here: a failed or garbled
// call is an error, never fabricated scores. A successful but partial result
// is normalized (missing scores become 0, missing narrative gets
// placeholders).
func (c *Client) ScoreProduct(ctx context.Context, in ScoringInput) (*Scoring, error) {
	dossier, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are a product transparency scoring expert. Analyze this product data and provide scoring across four dimensions: transparency, health impact, ethical practices, and environmental impact.

Product Data:
%s

Provide scores (0-100) and analysis in this exact JSON format:
{
  "transparencyScore": 85,
  "healthScore": 92,
  "ethicalScore": 78,
  "environmentalScore": 65,
  "keyFindings": [
    "Specific finding 1 about the product",
    "Specific finding 2 about the product",
    "Specific finding 3 about the product"
  ],
  "recommendations": "Detailed recommendations for improvement or validation of positive aspects"
}

Scoring guidelines:
- Transparency (0-100): Information availability, clarity, verifiability
- Health (0-100): Safety, nutritional value, absence of harmful ingredients
- Ethical (0-100): Fair labor, responsible sourcing, social impact
- Environmental (0-100): Sustainability, carbon footprint, packaging`, dossier)

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"transparencyScore":  map[string]any{"type": "number"},
			"healthScore":        map[string]any{"type": "number"},
			"ethicalScore":       map[string]any{"type": "number"},
			"environmentalScore": map[string]any{"type": "number"},
			"keyFindings":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"recommendations":    map[string]any{"type": "string"},
		},
		"required": []string{"transparencyScore", "healthScore", "ethicalScore", "environmentalScore", "keyFindings", "recommendations"},
	}

	raw, err := c.generate(ctx, c.cfg.ScoringModel, prompt, schema)
	if err != nil {
		return nil, err
	}

	// Score fields decode loosely: floats, missing values, even a stray
	// string all normalize through ClampScore instead of failing the run.
	// Only non-JSON output stays fatal.
	var parsed struct {
		TransparencyScore  any      `json:"transparencyScore"`
		HealthScore        any      `json:"healthScore"`
		EthicalScore       any      `json:"ethicalScore"`
		EnvironmentalScore any      `json:"environmentalScore"`
		KeyFindings        []string `json:"keyFindings"`
		Recommendations    string   `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}

	out := &Scoring{
		TransparencyScore:  ClampScore(numeric(parsed.TransparencyScore)),
		HealthScore:        ClampScore(numeric(parsed.HealthScore)),
		EthicalScore:       ClampScore(numeric(parsed.EthicalScore)),
		EnvironmentalScore: ClampScore(numeric(parsed.EnvironmentalScore)),
		KeyFindings:        parsed.KeyFindings,
		Recommendations:    strings.TrimSpace(parsed.Recommendations),
	}
	if len(out.KeyFindings) == 0 {
		out.KeyFindings = []string{"Analysis in progress"}
	}
	if out.Recommendations == "" {
		out.Recommendations = "Complete analysis to receive recommendations"
	}
	return out, nil
}

// numeric coerces a decoded JSON value to float64. Strings and any other
// non-numeric shape come back as NaN so ClampScore floors them to 0.
func numeric(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return math.NaN()
}

// ClampScore truncates a raw model score into the integer range [0,100].
// NaN and negatives become 0.
func ClampScore(f float64) int {
	if f != f || f < 0 { // NaN check
		return 0
	}
	if f > 100 {
		return 100
	}
	return int(f)
}
