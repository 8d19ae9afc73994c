package chat

// Resolver turns a message and its classification into a reply. Crisis
// messages bypass classification entirely.
type Resolver struct {
	phrases    *Phrases
	dispatcher *Dispatcher
	fallback   *Fallback
}

func NewResolver(phrases *Phrases, threshold float64, rnd *Rand) *Resolver {
	fallback := NewFallback(phrases, rnd)
	return &Resolver{
		phrases:    phrases,
		dispatcher: NewDispatcher(threshold, fallback),
		fallback:   fallback,
	}
}

func (r *Resolver) Resolve(message string, result NLUResult) string {
	if DetectCrisis(message) {
		return r.CrisisReply()
	}
	return r.dispatcher.Resolve(result, message)
}

// Fallback is used when an upstream provider answered with something that
// could not be turned into a reply.
func (r *Resolver) Fallback(message string) string {
	if DetectCrisis(message) {
		return r.CrisisReply()
	}
	return r.fallback.Resolve(message, nil, nil)
}

func (r *Resolver) CrisisReply() string {
	if r.phrases.Crisis != "" {
		return r.phrases.Crisis
	}
	return "Your safety matters most right now. Please contact a crisis line or emergency services in your area immediately."
}
