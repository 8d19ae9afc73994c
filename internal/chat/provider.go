package chat

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/config"
)

// SystemPrompt frames every hosted model as the MindMate therapist persona.
const SystemPrompt = `You are Dr. MindMate, a compassionate and professional AI therapist.
Listen actively, respond with empathy, and help the user explore their thoughts and feelings.
Offer evidence-based coping strategies such as grounding, breathing exercises and cognitive reframing when appropriate.
Keep responses warm, concise and conversational, and end with a gentle open question when it helps the conversation.
Never diagnose conditions or prescribe medication.
If the user mentions suicidal thoughts or self-harm, encourage them to contact a crisis line, emergency services or a mental health professional immediately.`

// Provider produces a reply for one user message.
type Provider interface {
	Name() string
	Reply(ctx context.Context, message string) (string, error)
}

// UpstreamError reports a failed call to a hosted provider: a non-200
// status (Status and Body set) or a transport failure (Err set).
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: upstream returned HTTP %d", e.Provider, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewHTTPClient bounds connection setup and the whole exchange separately.
func NewHTTPClient(connectTimeout, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	return &http.Client{Timeout: timeout, Transport: transport}
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.ChatConfig, log *zap.Logger) (Provider, error) {
	phrases := DefaultPhrases()
	resolver := NewResolver(phrases, cfg.ConfidenceThreshold, NewRand(cfg.Seed))
	client := NewHTTPClient(cfg.ConnectTimeout, cfg.Timeout)

	switch cfg.Provider {
	case config.ProviderRules, "":
		return NewRuleProvider(NewClassifier(phrases), resolver), nil
	case config.ProviderLLM:
		return NewLLMProvider(LLMConfig{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Client:  client,
		}, resolver, log), nil
	case config.ProviderNLU:
		return NewNLUProvider(NLUConfig{
			URL:     cfg.NLUURL,
			Token:   cfg.NLUAPIKey,
			Version: cfg.NLUVersion,
			Client:  client,
		}, resolver), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			HTTPClient: client,
		}, resolver, log)
	default:
		return nil, fmt.Errorf("chat: unknown provider %q", cfg.Provider)
	}
}
