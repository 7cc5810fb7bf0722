package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoQuestions indicates the model returned nothing usable after
// validation; the caller should fall back to the static question set.
var ErrNoQuestions = errors.New("no usable questions in model output")

// GeneratedQuestion is one follow-up question produced by the model or the
// static fallback table: the prompt text plus a rendering hint.
type GeneratedQuestion struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
}

// QuestionInput is the product context fed to the question generator.
// ExistingAnswers maps already-asked question text to the serialized answer,
// so a second batch can build on the first instead of repeating it.
type QuestionInput struct {
	ProductName     string
	Category        string
	Description     string
	ExistingAnswers map[string]string
}

var questionTypes = map[string]bool{
	"text":     true,
	"select":   true,
	"checkbox": true,
	"textarea": true,
}

// GenerateQuestions asks the fast model for 3-5 category-aware follow-up
// questions. Items that fail validation (blank text, unknown input type,
// select/checkbox without options) are dropped; if nothing survives, it
// returns ErrNoQuestions. Callers treat any error as "serve the fallback".
func (c *Client) GenerateQuestions(ctx context.Context, in QuestionInput) ([]GeneratedQuestion, error) {
	prompt := buildQuestionPrompt(in)

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"type":     map[string]any{"type": "string"},
						"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required": []string{"question", "type"},
				},
			},
		},
		"required": []string{"questions"},
	}

	raw, err := c.generate(ctx, c.cfg.QuestionModel, prompt, schema)
	if err != nil {
		return nil, err
	}

	var out struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}

	valid := make([]GeneratedQuestion, 0, len(out.Questions))
	for _, q := range out.Questions {
		q.Question = strings.TrimSpace(q.Question)
		q.Type = strings.ToLower(strings.TrimSpace(q.Type))
		if q.Question == "" || !questionTypes[q.Type] {
			continue
		}
		if (q.Type == "select" || q.Type == "checkbox") && len(q.Options) == 0 {
			continue
		}
		valid = append(valid, q)
		if len(valid) == 5 {
			break
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoQuestions
	}
	return valid, nil
}

func buildQuestionPrompt(in QuestionInput) string {
	desc := in.Description
	if desc == "" {
		desc = "Not provided"
	}
	existing, _ := json.Marshal(in.ExistingAnswers)
	if in.ExistingAnswers == nil {
		existing = []byte("{}")
	}

	return fmt.Sprintf(`You are an expert product transparency analyst. Based on the following product information, generate 3-5 intelligent follow-up questions that will help assess the product's transparency, health impact, ethical sourcing, and environmental footprint.

Product Details:
- Name: %s
- Category: %s
- Description: %s
- Existing answers: %s

Generate questions that are:
1. Specific to the product category
2. Focused on transparency, health, ethics, and environment
3. Actionable and answerable by someone familiar with the product
4. Progressive (building on existing answers if any)

Return your response as a JSON object with this exact format:
{
  "questions": [
    {
      "question": "Question text here",
      "type": "text|select|checkbox|textarea",
      "options": ["option1", "option2"] // only for select/checkbox types
    }
  ]
}`, in.ProductName, in.Category, desc, existing)
}

// FallbackQuestions returns the static question set for a category: two base
// questions every category gets, plus category-specific extras for the
// categories we know. Unknown categories get only the base set.
func FallbackQuestions(category string) []GeneratedQuestion {
	base := []GeneratedQuestion{
		{
			Question: "What certifications does this product have?",
			Type:     "checkbox",
			Options:  []string{"Organic", "Fair Trade", "Non-GMO", "B-Corp", "Carbon Neutral", "None"},
		},
		{
			Question: "Where are the ingredients or materials sourced from?",
			Type:     "select",
			Options:  []string{"Local", "National", "International", "Mixed", "Unknown"},
		},
	}

	switch category {
	case "food-beverages":
		return append(base,
			GeneratedQuestion{
				Question: "What preservatives or additives are included?",
				Type:     "textarea",
			},
			GeneratedQuestion{
				Question: "What type of packaging is used?",
				Type:     "checkbox",
				Options:  []string{"Recyclable", "Biodegradable", "Plastic-free", "Minimal packaging"},
			},
		)
	case "personal-care":
		return append(base,
			GeneratedQuestion{
				Question: "Is this product tested on animals?",
				Type:     "select",
				Options:  []string{"Never tested on animals", "Not tested by us", "Third-party testing", "Unknown"},
			},
			GeneratedQuestion{
				Question: "What potentially harmful ingredients are avoided?",
				Type:     "checkbox",
				Options:  []string{"Parabens", "Sulfates", "Phthalates", "Synthetic fragrances", "None specified"},
			},
		)
	default:
		return base
	}
}
