// Package ai talks to external completion providers that return schedule
// extractions constrained to a JSON schema.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"schedcal/internal/config"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one instruction message of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Schema names a JSON schema the provider must constrain its output to.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Request is a structured-extraction completion request.
type Request struct {
	Model    string
	Messages []Message
	Schema   Schema
}

// Response carries whatever shape the provider returned. Parsed is set when
// the provider hands back an already decoded structured object; otherwise
// Segments holds the raw text blocks in order.
type Response struct {
	Parsed   json.RawMessage
	Segments []string
}

// Completer sends a structured-extraction request to a provider.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// NewFromConfig returns the Completer configured in cfg, or nil when no
// API key is configured.
func NewFromConfig(ctx context.Context, cfg config.AIConfig) (Completer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, timeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}
