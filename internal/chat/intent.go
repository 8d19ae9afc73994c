package chat

import "strings"

// IntentKind is the closed set of intents that have a dedicated builder.
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentGreeting
	IntentAnxiety
	IntentDepression
	IntentRelationship
	IntentStress
	IntentSleep
	IntentEmotionalDistress
	IntentGratitude
	IntentGoodbye
)

var intentAliases = map[string]IntentKind{
	"greet":                 IntentGreeting,
	"greeting":              IntentGreeting,
	"anxiety":               IntentAnxiety,
	"anxiety_concern":       IntentAnxiety,
	"depression":            IntentDepression,
	"depression_concern":    IntentDepression,
	"relationship_issue":    IntentRelationship,
	"relationship_problem":  IntentRelationship,
	"stress":                IntentStress,
	"stress_concern":        IntentStress,
	"sleep_issue":           IntentSleep,
	"insomnia":              IntentSleep,
	"emotional_distress":    IntentEmotionalDistress,
	"mental_health_concern": IntentEmotionalDistress,
	"gratitude":             IntentGratitude,
	"thanks":                IntentGratitude,
	"goodbye":               IntentGoodbye,
	"end_session":           IntentGoodbye,
}

var intentNames = [...]string{
	IntentUnknown:           "unknown",
	IntentGreeting:          "greeting",
	IntentAnxiety:           "anxiety",
	IntentDepression:        "depression",
	IntentRelationship:      "relationship",
	IntentStress:            "stress",
	IntentSleep:             "sleep",
	IntentEmotionalDistress: "emotional_distress",
	IntentGratitude:         "gratitude",
	IntentGoodbye:           "goodbye",
}

// ParseIntentKind maps a provider intent name onto its kind. Unrecognised
// names map to IntentUnknown.
func ParseIntentKind(name string) IntentKind {
	if k, ok := intentAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return IntentUnknown
}

func (k IntentKind) String() string {
	if k < 0 || int(k) >= len(intentNames) {
		return "unknown"
	}
	return intentNames[k]
}

// Closing reports whether replies for this kind end the exchange instead of
// asking a follow-up question.
func (k IntentKind) Closing() bool {
	return k == IntentGratitude || k == IntentGoodbye
}
