package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiConfig struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// contentGenerator is the subset of *genai.Models the provider uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider asks Google Gemini for the reply, using the same persona
// as the OpenAI-compatible provider.
type GeminiProvider struct {
	models   contentGenerator
	model    string
	resolver *Resolver
	log      *zap.Logger
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, resolver *Resolver, log *zap.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return newGeminiProvider(client.Models, cfg.Model, resolver, log), nil
}

func newGeminiProvider(models contentGenerator, model string, resolver *Resolver, log *zap.Logger) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{models: models, model: model, resolver: resolver, log: log}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Reply(ctx context.Context, message string) (string, error) {
	resp, err := p.models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(message, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.7),
			TopP:              genai.Ptr[float32](0.9),
			MaxOutputTokens:   500,
		},
	)
	if err != nil {
		return "", &UpstreamError{Provider: p.Name(), Err: err}
	}
	reply := ""
	if resp != nil {
		reply = strings.TrimSpace(resp.Text())
	}
	if reply == "" {
		p.log.Warn("gemini returned an empty reply, using fallback reply")
		return p.resolver.Fallback(message), nil
	}
	return reply, nil
}
