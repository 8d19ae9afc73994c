package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/mindmate/mindmate-backend/internal/config"
)

func testResolver() *Resolver {
	return NewResolver(DefaultPhrases(), DefaultConfidenceThreshold, NewRand(11))
}

func TestLLMProviderSendsPersonaAndParsesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))

		var req llmRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3-8b-8192", req.Model)
		assert.Equal(t, 500, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "Dr. MindMate")
		assert.Equal(t, "I feel low", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<|user|>I feel low<|assistant|>  I'm here for you.  "}}]}`))
	}))
	defer srv.Close()

	p := NewLLMProvider(LLMConfig{APIKey: "gsk_test", BaseURL: srv.URL + "/v1/"}, testResolver(), zap.NewNop())
	reply, err := p.Reply(context.Background(), "I feel low")
	require.NoError(t, err)
	assert.Equal(t, "I'm here for you.", reply)
}

func TestLLMProviderUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	p := NewLLMProvider(LLMConfig{BaseURL: srv.URL}, testResolver(), zap.NewNop())
	_, err := p.Reply(context.Background(), "hello")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "llm", upstream.Provider)
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Contains(t, upstream.Body, "rate limited")
}

func TestLLMProviderMalformedPayloadFallsBack(t *testing.T) {
	for name, body := range map[string]string{
		"not json":   `upstream exploded`,
		"no choices": `{"choices": []}`,
		"empty text": `{"choices":[{"message":{"content":"<|assistant|>   "}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			p := NewLLMProvider(LLMConfig{BaseURL: srv.URL}, testResolver(), zap.NewNop())
			reply, err := p.Reply(context.Background(), "hello there")
			require.NoError(t, err)
			assert.NotEmpty(t, reply)
		})
	}
}

func TestLLMProviderTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewLLMProvider(LLMConfig{BaseURL: srv.URL, Client: NewHTTPClient(time.Second, 20*time.Millisecond)}, testResolver(), zap.NewNop())
	_, err := p.Reply(context.Background(), "hello")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Error(t, upstream.Err)
	assert.Zero(t, upstream.Status)
}

func TestNLUProviderBuildsReplyFromPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer wit_token", r.Header.Get("Authorization"))
		assert.Equal(t, "20240304", r.URL.Query().Get("v"))
		assert.Equal(t, "my boss keeps yelling", r.URL.Query().Get("q"))
		w.Write([]byte(`{
			"intents": [{"name": "stress_concern", "confidence": 0.88}],
			"entities": {"stress_source:stress_source": [{"body": "my boss", "value": "boss"}]},
			"traits": {}
		}`))
	}))
	defer srv.Close()

	p := NewNLUProvider(NLUConfig{URL: srv.URL, Token: "wit_token", Version: "20240304"}, testResolver())
	reply, err := p.Reply(context.Background(), "my boss keeps yelling")
	require.NoError(t, err)
	assert.Contains(t, reply, "Stress from boss")
	assert.True(t, strings.HasSuffix(reply, "?"))
}

func TestNLUProviderFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "broken" {
			w.Write([]byte(`{{{`))
			return
		}
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewNLUProvider(NLUConfig{URL: srv.URL}, testResolver())

	_, err := p.Reply(context.Background(), "hello")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)

	reply, err := p.Reply(context.Background(), "broken")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	config *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.config = config
	return f.resp, f.err
}

func geminiText(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: s}}},
	}}}
}

func TestGeminiProvider(t *testing.T) {
	gen := &fakeGenerator{resp: geminiText(" Let's breathe together. ")}
	p := newGeminiProvider(gen, "", testResolver(), zap.NewNop())

	reply, err := p.Reply(context.Background(), "I'm panicking")
	require.NoError(t, err)
	assert.Equal(t, "Let's breathe together.", reply)
	require.NotNil(t, gen.config.SystemInstruction)
	assert.Contains(t, gen.config.SystemInstruction.Parts[0].Text, "Dr. MindMate")

	gen.resp = geminiText("")
	reply, err = p.Reply(context.Background(), "I'm panicking")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)

	gen.err = errors.New("quota exceeded")
	_, err = p.Reply(context.Background(), "hi")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "gemini", upstream.Provider)
}

func TestNewProviderSelectsBackend(t *testing.T) {
	cfg := config.ChatConfig{ConfidenceThreshold: 0.7, ConnectTimeout: time.Second, Timeout: time.Second}

	for name, want := range map[string]string{"": "rules", "rules": "rules", "llm": "llm", "nlu": "nlu"} {
		cfg.Provider = name
		p, err := NewProvider(context.Background(), cfg, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, want, p.Name())
	}

	cfg.Provider = "gemini"
	_, err := NewProvider(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err, "gemini without a key")

	cfg.Provider = "carrier-pigeon"
	_, err = NewProvider(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
