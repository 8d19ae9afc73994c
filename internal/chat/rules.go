package chat

import (
	"context"
	"sort"
	"strings"
)

// Classifier is a keyword-based stand-in for a hosted NLU service. It
// produces the same NLUResult shape so that local and hosted classification
// share the dispatcher.
type Classifier struct {
	phrases *Phrases
}

func NewClassifier(phrases *Phrases) *Classifier {
	return &Classifier{phrases: phrases}
}

// Classify picks the rule with the most keyword hits. One hit scores 0.75,
// two or more 0.9; no hit yields no intent.
func (c *Classifier) Classify(message string) NLUResult {
	text := normalize(message)
	result := NLUResult{Entities: Entities{}, Traits: Traits{}}

	bestHits := 0
	for _, rule := range c.phrases.Rules {
		hits := countMatches(text, rule.Keywords)
		if hits > bestHits {
			bestHits = hits
			result.Intent = &Intent{Name: rule.Intent}
		}
	}
	if result.Intent != nil {
		result.Intent.Confidence = 0.75
		if bestHits > 1 {
			result.Intent.Confidence = 0.9
		}
	}

	types := make([]string, 0, len(c.phrases.Entities))
	for t := range c.phrases.Entities {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		for _, word := range c.phrases.Entities[t] {
			if containsPhrase(text, word) {
				result.Entities[t] = append(result.Entities[t], word)
			}
		}
	}

	pos := countMatches(text, c.phrases.Sentiment.Positive)
	neg := countMatches(text, c.phrases.Sentiment.Negative)
	switch {
	case neg > pos:
		result.Traits["sentiment"] = []string{"negative"}
	case pos > neg:
		result.Traits["sentiment"] = []string{"positive"}
	default:
		result.Traits["sentiment"] = []string{"neutral"}
	}
	return result
}

// normalize lower-cases and pads with spaces so phrases match on word
// boundaries. Apostrophes are kept for "can't".
func normalize(s string) string {
	var b strings.Builder
	b.WriteByte(' ')
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			b.WriteRune(r)
		case r == '’':
			b.WriteByte('\'')
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsPhrase(text, phrase string) bool {
	return strings.Contains(" "+text+" ", " "+normalize(phrase)+" ")
}

func countMatches(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if containsPhrase(text, p) {
			n++
		}
	}
	return n
}

// RuleProvider answers entirely in-process.
type RuleProvider struct {
	classifier *Classifier
	resolver   *Resolver
}

func NewRuleProvider(classifier *Classifier, resolver *Resolver) *RuleProvider {
	return &RuleProvider{classifier: classifier, resolver: resolver}
}

func (p *RuleProvider) Name() string { return "rules" }

func (p *RuleProvider) Reply(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.resolver.Resolve(message, p.classifier.Classify(message)), nil
}
