package chat

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Extract converts a raw NLU payload into an NLUResult. It never fails:
// fields that are missing or have the wrong shape are treated as absent, so
// a malformed payload yields no intent and empty maps.
func Extract(raw []byte) NLUResult {
	result := NLUResult{Entities: Entities{}, Traits: Traits{}}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return result
	}

	result.Intent = extractIntent(payload["intents"])
	extractValues(payload["entities"], true, result.Entities)
	extractValues(payload["traits"], false, result.Traits)
	return result
}

func extractIntent(raw json.RawMessage) *Intent {
	var intents []map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &intents) != nil || len(intents) == 0 {
		return nil
	}
	first := intents[0]
	name, _ := first["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	conf, _ := toFloat(first["confidence"])
	return &Intent{Name: name, Confidence: clamp01(conf)}
}

// extractValues fills dst from a {type: [{value|body}]} object. Traits only
// carry "value"; entities fall back to the matched "body" text.
func extractValues(raw json.RawMessage, allowBody bool, dst map[string][]string) {
	var groups map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &groups) != nil {
		return
	}
	for key, groupRaw := range groups {
		var items []map[string]any
		if json.Unmarshal(groupRaw, &items) != nil {
			continue
		}
		for _, item := range items {
			v, ok := stringify(item["value"])
			if !ok && allowBody {
				v, ok = stringify(item["body"])
			}
			if ok {
				dst[key] = append(dst[key], v)
			}
		}
	}
}

func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		x = strings.TrimSpace(x)
		return x, x != ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func clamp01(f float64) float64 {
	if f < 0 || f != f {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
