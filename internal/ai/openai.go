package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appLog "schedcal/internal/log"
)

// OpenAIConfig configures OpenAIClient.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIClient calls the OpenAI Responses API with a json_schema text format.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient creates a client; zero fields fall back to the public API
// root, gpt-4o-mini and a one-minute timeout.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type responsesRequest struct {
	Model string          `json:"model"`
	Input []Message       `json:"input"`
	Text  responsesFormat `json:"text"`
}

type responsesFormat struct {
	Format responsesSchema `json:"format"`
}

type responsesSchema struct {
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type responsesResponse struct {
	OutputParsed json.RawMessage `json:"output_parsed"`
	Output       []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete posts req to {base}/responses. Any transport failure or non-2xx
// status is returned as an error; the caller decides how to recover.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openai: API key not configured")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	body, err := json.Marshal(responsesRequest{
		Model: model,
		Input: req.Messages,
		Text: responsesFormat{Format: responsesSchema{
			Type:   "json_schema",
			Name:   req.Schema.Name,
			Schema: req.Schema.Definition,
			Strict: true,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	appLog.Debug("openai request", "model", model, "messages", len(req.Messages))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode, truncate(string(raw), 300))
	}

	var decoded responsesResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("openai: API error: %s", decoded.Error.Message)
	}

	out := &Response{}
	if p := bytes.TrimSpace(decoded.OutputParsed); len(p) > 0 && !bytes.Equal(p, []byte("null")) {
		out.Parsed = p
	}
	for _, item := range decoded.Output {
		for _, part := range item.Content {
			if part.Type == "output_text" {
				out.Segments = append(out.Segments, part.Text)
			}
		}
	}

	appLog.Info("openai request completed",
		"model", model,
		"duration", time.Since(start),
		"parsed", out.Parsed != nil,
		"segments", len(out.Segments),
	)
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
