package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultLLMBase  = "https://api.groq.com/openai/v1"
	defaultLLMModel = "llama3-8b-8192"

	// Some hosted chat templates echo the prompt; the reply is whatever
	// follows the last assistant marker.
	assistantMarker = "<|assistant|>"

	maxErrorBody = 2048
)

// LLMConfig configures an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

// LLMProvider sends the message with the therapist system prompt to an
// OpenAI-compatible API (Groq by default).
type LLMProvider struct {
	cfg      LLMConfig
	resolver *Resolver
	log      *zap.Logger
}

func NewLLMProvider(cfg LLMConfig, resolver *Resolver, log *zap.Logger) *LLMProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLLMBase
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultLLMModel
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &LLMProvider{cfg: cfg, resolver: resolver, log: log}
}

func (p *LLMProvider) Name() string { return "llm" }

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
	TopP        float64      `json:"top_p"`
}

type llmResponse struct {
	Choices []struct {
		Message llmMessage `json:"message"`
	} `json:"choices"`
}

func (p *LLMProvider) Reply(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(llmRequest{
		Model: p.cfg.Model,
		Messages: []llmMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: message},
		},
		MaxTokens:   500,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.cfg.Client.Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Provider: p.Name(), Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Provider: p.Name(), Status: resp.StatusCode, Body: truncate(string(respBody), maxErrorBody)}
	}

	var parsed llmResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || len(parsed.Choices) == 0 {
		p.log.Warn("llm returned an unusable payload, using fallback reply", zap.Error(err))
		return p.resolver.Fallback(message), nil
	}
	reply := cleanAssistantText(parsed.Choices[0].Message.Content)
	if reply == "" {
		p.log.Warn("llm returned an empty reply, using fallback reply")
		return p.resolver.Fallback(message), nil
	}
	return reply, nil
}

func cleanAssistantText(s string) string {
	if i := strings.LastIndex(s, assistantMarker); i >= 0 {
		s = s[i+len(assistantMarker):]
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
