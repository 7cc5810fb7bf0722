// Package ai integrates the Gemini generateContent API for follow-up question
// generation and transparency scoring. The package performs no logging;
// callers decide how failures are reported. Both entry points return plain
// errors on transport or decode problems so the service layer can apply its
// own failure policy (static fallback for questions, hard failure for
// scoring).
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tbourn/go-transparency-backend/internal/config"
)

// ErrEmptyResponse indicates the API returned no usable candidates.
var ErrEmptyResponse = errors.New("empty response from model")

// Client calls the Gemini generateContent endpoint over HTTP.
type Client struct {
	cfg  config.GeminiConfig
	http *http.Client
}

// NewClient builds a Client from configuration. The HTTP client timeout is
// the hard cap for a single model call.
func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether live model calls are configured.
func (c *Client) Enabled() bool { return c.cfg.Enabled() }

// generate posts a prompt with a structured-output schema and returns the raw
// JSON text of the first candidate.
func (c *Client) generate(ctx context.Context, model, prompt string, schema map[string]any) (string, error) {
	reqBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   schema,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", c.cfg.ModelEndpoint(model), c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model call failed: status %d", resp.StatusCode)
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}
	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", ErrEmptyResponse
}
