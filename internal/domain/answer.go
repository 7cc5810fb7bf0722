// Package domain – Answer
//
// Answers arrive from the client in two wire shapes: a bare string from
// text, textarea, and select inputs, or a list of strings from checkbox
// groups. The Answer tagged union preserves that distinction through the
// controller layer; serialization to a single stored string happens only at
// the store boundary (see Serialize).
package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// Answer kinds.
const (
	AnswerText        = "text"
	AnswerMultiChoice = "multi_choice"
)

// ErrUnsupportedAnswer is returned when an answer payload is neither a JSON
// string nor an array of strings.
var ErrUnsupportedAnswer = errors.New("answer must be a string or an array of strings")

// Answer is a tagged union over the two answer shapes. The zero value is an
// empty text answer.
type Answer struct {
	Kind    string
	Text    string
	Choices []string
}

// TextAnswer builds a free-text (or single-selection) answer.
func TextAnswer(s string) Answer { return Answer{Kind: AnswerText, Text: s} }

// MultiChoiceAnswer builds a multi-selection answer.
func MultiChoiceAnswer(opts []string) Answer {
	return Answer{Kind: AnswerMultiChoice, Choices: opts}
}

// UnmarshalJSON accepts either a bare JSON string (text/select widgets) or an
// array of strings (checkbox widgets). Single-element arrays stay
// multi-choice: the widget shape, not the count, decides the kind.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = TextAnswer(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = MultiChoiceAnswer(list)
		return nil
	}
	return ErrUnsupportedAnswer
}

// MarshalJSON mirrors UnmarshalJSON: multi-choice answers round-trip as
// arrays, everything else as a string.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Kind == AnswerMultiChoice {
		return json.Marshal(a.Choices)
	}
	return json.Marshal(a.Text)
}

// Serialize flattens the answer to the single string persisted on the
// Question row. Multi-choice selections are joined with ", ", matching how
// the report and scoring prompt present them.
func (a Answer) Serialize() string {
	if a.Kind == AnswerMultiChoice {
		parts := make([]string, 0, len(a.Choices))
		for _, c := range a.Choices {
			if t := strings.TrimSpace(c); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, ", ")
	}
	return strings.TrimSpace(a.Text)
}

// Empty reports whether the serialized form would be the empty string.
func (a Answer) Empty() bool { return a.Serialize() == "" }
