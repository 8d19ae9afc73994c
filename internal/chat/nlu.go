package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultNLUURL = "https://api.wit.ai/message"

// NLUConfig configures a Wit.ai-style message endpoint:
// GET {URL}?v={Version}&q={message} with a bearer token.
type NLUConfig struct {
	URL     string
	Token   string
	Version string
	Client  *http.Client
}

// NLUProvider classifies with a hosted NLU service and builds the reply
// locally from the returned intent, entities and traits.
type NLUProvider struct {
	cfg      NLUConfig
	resolver *Resolver
}

func NewNLUProvider(cfg NLUConfig, resolver *Resolver) *NLUProvider {
	if cfg.URL == "" {
		cfg.URL = defaultNLUURL
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &NLUProvider{cfg: cfg, resolver: resolver}
}

func (p *NLUProvider) Name() string { return "nlu" }

func (p *NLUProvider) Reply(ctx context.Context, message string) (string, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("nlu: parse url: %w", err)
	}
	q := u.Query()
	if p.cfg.Version != "" {
		q.Set("v", p.cfg.Version)
	}
	q.Set("q", message)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("nlu: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.cfg.Client.Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Provider: p.Name(), Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Provider: p.Name(), Status: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}

	// A malformed payload extracts to "no intent", which the dispatcher
	// hands to the fallback resolver.
	return p.resolver.Resolve(message, Extract(body)), nil
}
