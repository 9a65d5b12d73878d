// Package gemini is a minimal client for the Google Gemini generateContent
// REST API. The rest of the system consumes it through a single capability:
// Complete(prompt) -> text. All structure expected from the model is encoded
// in the prompt and parsed back out of free text by the caller.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 30 * time.Second

// generationConfig is fixed for all interview prompts.
type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// safetySetting keeps generated interview content professional.
type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

func defaultGenerationConfig() generationConfig {
	return generationConfig{
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
	}
}

func defaultSafetySettings() []safetySetting {
	const threshold = "BLOCK_MEDIUM_AND_ABOVE"
	return []safetySetting{
		{Category: "HARM_CATEGORY_HARASSMENT", Threshold: threshold},
		{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: threshold},
		{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: threshold},
		{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: threshold},
	}
}

// Client communicates with the Gemini API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a Client for the given model. timeout <= 0 selects
// DefaultTimeout.
func New(apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// SetBaseURL overrides the API endpoint, primarily for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// contentRequest is the JSON body for POST models/{model}:generateContent.
type contentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// contentResponse mirrors the fields of the generateContent reply we use.
type contentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt and returns the model's text reply, trimmed.
// The call is bounded by the client timeout; each invocation issues exactly
// one outbound request.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(contentRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: defaultGenerationConfig(),
		SafetySettings:   defaultSafetySettings(),
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion: unexpected status %d", resp.StatusCode)
	}

	var result contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("completion: empty candidates")
	}
	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

// Ping verifies the API is reachable and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Complete(ctx, "Test connection. Respond with 'Connected'"); err != nil {
		return fmt.Errorf("gemini connection test: %w", err)
	}
	return nil
}
