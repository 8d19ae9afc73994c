package chat

import (
	"fmt"
	"strings"
)

const (
	gratitudeReply = "You're very welcome. I'm always here whenever you want to talk."
	goodbyeReply   = "Take care of yourself. Remember that I'm here whenever you need to talk."
)

type builder func(r NLUResult) string

// builders has an entry for every kind; IntentUnknown is the declared default.
var builders = map[IntentKind]builder{
	IntentUnknown:           buildUnknown,
	IntentGreeting:          buildGreeting,
	IntentAnxiety:           buildAnxiety,
	IntentDepression:        buildDepression,
	IntentRelationship:      buildRelationship,
	IntentStress:            buildStress,
	IntentSleep:             buildSleep,
	IntentEmotionalDistress: buildEmotionalDistress,
	IntentGratitude:         func(NLUResult) string { return gratitudeReply },
	IntentGoodbye:           func(NLUResult) string { return goodbyeReply },
}

func buildGreeting(r NLUResult) string {
	var b strings.Builder
	b.WriteString("Hello, I'm Dr. MindMate. ")
	switch SentimentOf(r.Traits) {
	case SentimentNegative:
		b.WriteString("I can sense things might be difficult right now, and I'm here for you. ")
		b.WriteString("What's been weighing on you?")
	case SentimentPositive:
		b.WriteString("It sounds like you're in good spirits. ")
		b.WriteString("What would you like to talk about today?")
	default:
		b.WriteString("This is a safe space to share whatever is on your mind. ")
		b.WriteString("How are you feeling today?")
	}
	return b.String()
}

func buildAnxiety(r NLUResult) string {
	var b strings.Builder
	b.WriteString("It sounds like you're dealing with some anxiety, and that can be exhausting. ")
	if t := joinValues(r.Entities.Get("trigger"), r.Entities.Get("situation")); t != "" {
		fmt.Fprintf(&b, "Feeling anxious about %s is something many people struggle with. ", t)
	}
	if s := joinValues(r.Entities.Get("severity")); s != "" {
		fmt.Fprintf(&b, "You described it as %s, and I want you to know that matters. ", s)
	}
	b.WriteString("When the anxiety shows up, what do you notice first in your body or your thoughts?")
	return b.String()
}

func buildDepression(r NLUResult) string {
	var b strings.Builder
	b.WriteString("I'm sorry you're feeling this low. Depression can make everything feel heavier. ")
	if d := joinValues(r.Entities.Get("duration"), r.Entities.Get("time")); d != "" {
		fmt.Fprintf(&b, "Carrying this %s takes a real toll. ", d)
	}
	if s := joinValues(r.Entities.Get("symptom")); s != "" {
		fmt.Fprintf(&b, "Things like %s are common signs that you need extra care right now. ", s)
	}
	b.WriteString("Is there one small thing that has brought you even a little comfort lately?")
	return b.String()
}

func buildRelationship(r NLUResult) string {
	var b strings.Builder
	b.WriteString("Relationships can bring up some of our strongest feelings. ")
	if p := joinValues(r.Entities.Get("person"), r.Entities.Get("relationship_type")); p != "" {
		fmt.Fprintf(&b, "It sounds like things with your %s have been difficult. ", p)
	}
	if e := joinValues(r.Entities.Get("emotion")); e != "" {
		fmt.Fprintf(&b, "Feeling %s in that situation is understandable. ", e)
	}
	b.WriteString("What do you wish the other person understood about how you feel?")
	return b.String()
}

func buildStress(r NLUResult) string {
	var b strings.Builder
	b.WriteString("It sounds like you're under a lot of pressure. ")
	if s := joinValues(r.Entities.Get("stress_source"), r.Entities.Get("work"), r.Entities.Get("situation")); s != "" {
		fmt.Fprintf(&b, "Stress from %s can build up quickly when there's no room to breathe. ", s)
	}
	b.WriteString("What part of this feels the most overwhelming right now?")
	return b.String()
}

func buildSleep(r NLUResult) string {
	var b strings.Builder
	b.WriteString("Sleep troubles can affect how we feel in every part of the day. ")
	if s := joinValues(r.Entities.Get("sleep_issue"), r.Entities.Get("symptom")); s != "" {
		fmt.Fprintf(&b, "Dealing with %s night after night is draining. ", s)
	}
	b.WriteString("What does your evening usually look like in the hour before bed?")
	return b.String()
}

func buildEmotionalDistress(r NLUResult) string {
	var b strings.Builder
	b.WriteString("I can hear that you're going through something painful. ")
	if e := joinValues(r.Entities.Get("emotion")); e != "" {
		fmt.Fprintf(&b, "Feeling %s is hard, and it's okay to feel it. ", e)
	}
	if s := joinValues(r.Entities.Get("severity")); s != "" {
		fmt.Fprintf(&b, "It sounds like it's been %s. ", s)
	}
	b.WriteString("Would you like to tell me more about what happened?")
	return b.String()
}

func buildUnknown(r NLUResult) string {
	switch SentimentOf(r.Traits) {
	case SentimentNegative:
		return "It sounds like you're having a hard time, and I'm here to listen. What's been on your mind the most?"
	case SentimentPositive:
		return "I'm glad to hear some positivity from you. What's been going well lately?"
	default:
		return "I'm here to listen and support you. Could you tell me a bit more about how you're feeling?"
	}
}

// joinValues merges value lists, drops case-insensitive duplicates and
// renders them as "a", "a and b" or "a, b and c".
func joinValues(lists ...[]string) string {
	seen := map[string]bool{}
	var vals []string
	for _, list := range lists {
		for _, v := range list {
			v = strings.TrimSpace(v)
			key := strings.ToLower(v)
			if v == "" || seen[key] {
				continue
			}
			seen[key] = true
			vals = append(vals, v)
		}
	}
	switch len(vals) {
	case 0:
		return ""
	case 1:
		return vals[0]
	default:
		return strings.Join(vals[:len(vals)-1], ", ") + " and " + vals[len(vals)-1]
	}
}
