package chat

import (
	"sort"
	"strings"
)

// Intent is the classified purpose of a message. Confidence is within [0,1].
type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Entities maps an entity type to the values found in the message. Keys may
// carry a role suffix ("trigger:trigger") or the "wit$" builtin prefix.
type Entities map[string][]string

// Get returns every value stored under name, including role-suffixed and
// builtin-prefixed keys, in a stable order.
func (e Entities) Get(name string) []string {
	return lookup(e, name)
}

// Traits maps a trait type (e.g. "sentiment") to its values.
type Traits map[string][]string

// First returns the first value of the named trait, or "".
func (t Traits) First(name string) string {
	if vals := lookup(t, name); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// NLUResult is the typed form of an NLU payload. A nil Intent means the
// provider returned none.
type NLUResult struct {
	Intent   *Intent
	Entities Entities
	Traits   Traits
}

func lookup(m map[string][]string, name string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		if keyName(k) == name {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		out = append(out, m[k]...)
	}
	return out
}

func keyName(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		key = key[:i]
	}
	return strings.TrimPrefix(key, "wit$")
}

type Sentiment int

const (
	SentimentNeutral Sentiment = iota
	SentimentPositive
	SentimentNegative
)

// SentimentOf reads the sentiment trait.
func SentimentOf(traits Traits) Sentiment {
	switch strings.ToLower(traits.First("sentiment")) {
	case "negative":
		return SentimentNegative
	case "positive":
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}
