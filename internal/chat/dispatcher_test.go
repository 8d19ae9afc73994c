package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(seed uint64) *Dispatcher {
	return NewDispatcher(DefaultConfidenceThreshold, NewFallback(DefaultPhrases(), NewRand(seed)))
}

func TestConfidentIntentsEndWithQuestion(t *testing.T) {
	d := newTestDispatcher(1)
	for alias, kind := range intentAliases {
		result := NLUResult{
			Intent:   &Intent{Name: alias, Confidence: 0.95},
			Entities: Entities{"emotion": {"sad"}, "trigger:trigger": {"exams"}},
			Traits:   Traits{"sentiment": {"negative"}},
		}
		reply := d.Resolve(result, "message")
		require.NotEmpty(t, reply, alias)
		if kind.Closing() {
			assert.False(t, strings.HasSuffix(reply, "?"), "%s should close the exchange: %q", alias, reply)
		} else {
			assert.True(t, strings.HasSuffix(reply, "?"), "%s should ask a question: %q", alias, reply)
		}
	}
}

func TestBuildersInterpolateEntities(t *testing.T) {
	d := newTestDispatcher(1)

	reply := d.Resolve(NLUResult{
		Intent:   &Intent{Name: "anxiety", Confidence: 0.9},
		Entities: Entities{"trigger": {"crowds", "Crowds"}, "situation": {"meetings"}, "severity": {"very"}},
	}, "")
	assert.Contains(t, reply, "crowds and meetings")
	assert.Contains(t, reply, "very")

	reply = d.Resolve(NLUResult{
		Intent:   &Intent{Name: "relationship_problem", Confidence: 0.9},
		Entities: Entities{"person": {"mom"}, "emotion": {"angry", "hurt", "confused"}},
	}, "")
	assert.Contains(t, reply, "your mom")
	assert.Contains(t, reply, "angry, hurt and confused")
}

func TestThresholdRoutesToFallback(t *testing.T) {
	d := newTestDispatcher(1)
	result := NLUResult{Intent: &Intent{Name: "gratitude", Confidence: 0.69}}
	reply := d.Resolve(result, "thanks I guess")
	assert.NotEqual(t, gratitudeReply, reply)
	assert.NotEmpty(t, reply)

	result.Intent.Confidence = 0.7
	assert.Equal(t, gratitudeReply, d.Resolve(result, "thanks"))
}

func TestUnknownIntentUsesSentiment(t *testing.T) {
	d := newTestDispatcher(1)
	reply := d.Resolve(NLUResult{
		Intent: &Intent{Name: "book_flight", Confidence: 0.99},
		Traits: Traits{"sentiment": {"positive"}},
	}, "")
	assert.Contains(t, reply, "positivity")
	assert.True(t, strings.HasSuffix(reply, "?"))
}

func TestParseIntentKind(t *testing.T) {
	assert.Equal(t, IntentSleep, ParseIntentKind(" Insomnia "))
	assert.Equal(t, IntentEmotionalDistress, ParseIntentKind("mental_health_concern"))
	assert.Equal(t, IntentUnknown, ParseIntentKind("weather"))
	assert.Equal(t, "sleep", IntentSleep.String())
}

func TestJoinValues(t *testing.T) {
	assert.Equal(t, "", joinValues(nil))
	assert.Equal(t, "a", joinValues([]string{"a"}))
	assert.Equal(t, "a and b", joinValues([]string{"a"}, []string{"b", "A"}))
	assert.Equal(t, "a, b and c", joinValues([]string{"a", "b", " c "}))
}
