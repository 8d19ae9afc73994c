package chat

// DefaultConfidenceThreshold is the minimum intent confidence for a
// dedicated builder to answer.
const DefaultConfidenceThreshold = 0.7

// Dispatcher routes confident intents to their builder and everything else
// to the fallback resolver.
type Dispatcher struct {
	threshold float64
	fallback  *Fallback
}

func NewDispatcher(threshold float64, fallback *Fallback) *Dispatcher {
	return &Dispatcher{threshold: threshold, fallback: fallback}
}

// Resolve always returns a non-empty reply.
func (d *Dispatcher) Resolve(result NLUResult, message string) string {
	if result.Intent == nil || result.Intent.Confidence < d.threshold {
		return d.fallback.Resolve(message, result.Traits, result.Entities)
	}
	build, ok := builders[ParseIntentKind(result.Intent.Name)]
	if !ok {
		build = buildUnknown
	}
	return build(result)
}
