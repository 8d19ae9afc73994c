package chat

import (
	"strings"
	"unicode"
)

var selfHarmPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"take my life",
	"end it all",
	"self harm",
	"cut myself",
	"hurt myself",
	"harm myself",
	"want to die",
	"wish i was dead",
	"not worth living",
	"better off dead",
	"end myself",
	"unalive",
}

// Obfuscation characters and their letter equivalents.
var cleanReplacer = strings.NewReplacer(
	"@", "a",
	"4", "a",
	"3", "e",
	"!", "i",
	"1", "i",
	"0", "o",
	"$", "s",
	"5", "s",
	"7", "t",
	"+", "t",
	"а", "a", // Cyrillic
	"е", "e",
	"і", "i",
	"о", "o",
	"р", "p",
)

// CleanText lower-cases text, undoes common character substitutions,
// replaces everything but letters with single spaces and collapses repeated
// letters ("sooo" -> "so").
func CleanText(text string) string {
	cleaned := cleanReplacer.Replace(strings.ToLower(text))

	var b strings.Builder
	var last rune
	for _, r := range cleaned {
		if !unicode.IsLetter(r) {
			r = ' '
		}
		if r == last && (r == ' ' || unicode.IsLetter(r)) {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return strings.TrimSpace(b.String())
}

var cleanedSelfHarmPhrases = func() []string {
	out := make([]string, len(selfHarmPhrases))
	for i, p := range selfHarmPhrases {
		out[i] = CleanText(p)
	}
	return out
}()

// DetectCrisis reports whether a message expresses suicidal ideation or
// self-harm. Matching runs on cleaned text so that "k1ll mysellf" matches.
func DetectCrisis(message string) bool {
	cleaned := " " + CleanText(message) + " "
	for _, phrase := range cleanedSelfHarmPhrases {
		if strings.Contains(cleaned, " "+phrase+" ") {
			return true
		}
	}
	return false
}
