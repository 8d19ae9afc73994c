package chat

import "strings"

// Fallback answers messages that have no confident intent by composing an
// opening chosen by sentiment, a support line for negative sentiment, and an
// open question.
type Fallback struct {
	phrases *Phrases
	rnd     *Rand
}

func NewFallback(phrases *Phrases, rnd *Rand) *Fallback {
	return &Fallback{phrases: phrases, rnd: rnd}
}

// Resolve never returns an empty string.
func (f *Fallback) Resolve(message string, traits Traits, entities Entities) string {
	sentiment := SentimentOf(traits)

	var pool []string
	switch {
	case sentiment == SentimentNegative:
		pool = f.phrases.Openings.Negative
	case sentiment == SentimentPositive:
		pool = f.phrases.Openings.Positive
	case hasValues(entities):
		pool = f.phrases.Openings.Noted
	default:
		pool = f.phrases.Openings.Neutral
	}

	parts := make([]string, 0, 3)
	if opening := f.rnd.Pick(pool); opening != "" {
		parts = append(parts, opening)
	}
	if sentiment == SentimentNegative {
		if support := f.rnd.Pick(f.phrases.Support); support != "" {
			parts = append(parts, support)
		}
	}
	if q := f.rnd.Pick(f.phrases.Questions); q != "" {
		parts = append(parts, q)
	}
	if len(parts) == 0 {
		return SimpleFallback(traits, entities)
	}
	return strings.Join(parts, " ")
}

// SimpleFallback is the deterministic one-phrase-per-case variant, used when
// the catalogue has no pools.
func SimpleFallback(traits Traits, entities Entities) string {
	switch {
	case SentimentOf(traits) == SentimentNegative:
		return "I'm sorry you're going through this. Can you tell me more about what's on your mind?"
	case SentimentOf(traits) == SentimentPositive:
		return "That's good to hear. What has been helping you feel this way?"
	case hasValues(entities):
		return "Thanks for sharing those details. How are they affecting you right now?"
	default:
		return "I'm here and listening. Can you tell me more about how you're feeling?"
	}
}

func hasValues(entities Entities) bool {
	for _, v := range entities {
		if len(v) > 0 {
			return true
		}
	}
	return false
}
