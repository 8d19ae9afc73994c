package chat

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrases []byte

// Phrases is the catalogue that drives local reply resolution: the random
// fallback pools, the keyword rules, and the lexicons the rule classifier
// uses to produce entities and a sentiment trait.
type Phrases struct {
	Openings  Openings            `yaml:"openings"`
	Support   []string            `yaml:"support"`
	Questions []string            `yaml:"questions"`
	Crisis    string              `yaml:"crisis"`
	Rules     []Rule              `yaml:"rules"`
	Entities  map[string][]string `yaml:"entities"`
	Sentiment SentimentLexicon    `yaml:"sentiment"`
}

type Openings struct {
	Negative []string `yaml:"negative"`
	Positive []string `yaml:"positive"`
	Noted    []string `yaml:"noted"`
	Neutral  []string `yaml:"neutral"`
}

type Rule struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

type SentimentLexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// ParsePhrases decodes a YAML catalogue.
func ParsePhrases(data []byte) (*Phrases, error) {
	var p Phrases
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("chat: parse phrases: %w", err)
	}
	return &p, nil
}

// DefaultPhrases returns the embedded catalogue.
func DefaultPhrases() *Phrases {
	p, err := ParsePhrases(defaultPhrases)
	if err != nil {
		panic(err)
	}
	return p
}
