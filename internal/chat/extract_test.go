package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWitPayload(t *testing.T) {
	raw := []byte(`{
		"text": "I get anxious before presentations at work",
		"intents": [
			{"id": "1", "name": "anxiety_concern", "confidence": 0.93},
			{"id": "2", "name": "stress", "confidence": 0.41}
		],
		"entities": {
			"trigger:trigger": [{"body": "presentations", "value": "presentations", "confidence": 0.9}],
			"situation:situation": [{"body": "at work", "confidence": 0.8}],
			"wit$duration:duration": [{"body": "two weeks", "value": 1209600}]
		},
		"traits": {
			"wit$sentiment": [{"id": "x", "value": "negative", "confidence": 0.7}]
		}
	}`)

	got := Extract(raw)
	require.NotNil(t, got.Intent)
	assert.Equal(t, "anxiety_concern", got.Intent.Name)
	assert.InDelta(t, 0.93, got.Intent.Confidence, 1e-9)
	assert.Equal(t, []string{"presentations"}, got.Entities.Get("trigger"))
	assert.Equal(t, []string{"at work"}, got.Entities.Get("situation"))
	assert.Equal(t, []string{"1209600"}, got.Entities.Get("duration"))
	assert.Equal(t, "negative", got.Traits.First("sentiment"))
	assert.Equal(t, SentimentNegative, SentimentOf(got.Traits))
}

func TestExtractMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":            `<html>502 Bad Gateway</html>`,
		"empty":               ``,
		"array root":          `[1,2,3]`,
		"intents wrong shape": `{"intents": {"name": "greet"}}`,
		"intent without name": `{"intents": [{"confidence": 0.99}]}`,
		"entities wrong type": `{"entities": "oops", "traits": 12}`,
		"no intents":          `{"intents": [], "entities": {}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got := Extract([]byte(raw))
			assert.Nil(t, got.Intent)
			assert.NotNil(t, got.Entities)
			assert.NotNil(t, got.Traits)
			assert.Empty(t, got.Entities)
			assert.Empty(t, got.Traits)
		})
	}
}

func TestExtractClampsConfidence(t *testing.T) {
	got := Extract([]byte(`{"intents": [{"name": "greet", "confidence": 7}]}`))
	require.NotNil(t, got.Intent)
	assert.Equal(t, 1.0, got.Intent.Confidence)

	got = Extract([]byte(`{"intents": [{"name": "greet", "confidence": -0.2}]}`))
	require.NotNil(t, got.Intent)
	assert.Equal(t, 0.0, got.Intent.Confidence)

	got = Extract([]byte(`{"intents": [{"name": "greet", "confidence": "0.8"}]}`))
	require.NotNil(t, got.Intent)
	assert.InDelta(t, 0.8, got.Intent.Confidence, 1e-9)
}

func TestExtractSkipsBadEntityGroups(t *testing.T) {
	got := Extract([]byte(`{"entities": {"person": [{"value": "mom"}], "emotion": "sad", "severity": [{"value": ""}, {"body": "very"}]}}`))
	assert.Equal(t, []string{"mom"}, got.Entities.Get("person"))
	assert.Empty(t, got.Entities.Get("emotion"))
	assert.Equal(t, []string{"very"}, got.Entities.Get("severity"))
}
