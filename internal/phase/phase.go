package phase

import "strings"

// Phase is a stage in the sales conversation flow.
type Phase string

const (
	Introduction      Phase = "introduction"
	Discovery         Phase = "discovery"
	Qualification     Phase = "qualification"
	Presentation      Phase = "presentation"
	ObjectionHandling Phase = "objection_handling"
	Closing           Phase = "closing"
	Followup          Phase = "followup"
	Ended             Phase = "ended"
)

// rank orders phases for the monotonic-forward rule. The only permitted
// backward edge is objection_handling -> presentation.
var rank = map[Phase]int{
	Introduction:      0,
	Discovery:         1,
	Qualification:     2,
	Presentation:      3,
	ObjectionHandling: 4,
	Closing:           5,
	Followup:          6,
	Ended:             7,
}

// Valid reports whether p is one of the known phases.
func Valid(p Phase) bool {
	_, ok := rank[p]
	return ok
}

// Terminal reports whether p accepts no further transitions.
func Terminal(p Phase) bool { return p == Ended }

// Intent hints from the upstream analyzer. They take precedence over the
// keyword scan when present.
const (
	IntentNotInterested = "not_interested"
	IntentProceed       = "proceed"
	IntentObjection     = "objection"
	IntentResolved      = "objection_resolved"
	IntentGoodbye       = "goodbye"
)

// Keyword tables carried over from the original Spanish conversation flow,
// with English equivalents. Matching is on lowercased content substrings.
var phaseKeywords = map[Phase][]string{
	Discovery: {
		"necesito", "necesitamos", "problema", "buscamos", "queremos", "ayuda",
		"need", "problem", "looking for", "we want", "help", "challenge",
	},
	Qualification: {
		"presupuesto", "inversión", "inversion", "costo", "cuándo", "cuando",
		"empleados", "autoridad", "decisión", "decision",
		"budget", "invest", "cost", "price", "timeline", "employees", "authority",
	},
	Presentation: {
		"cómo funciona", "como funciona", "características", "caracteristicas",
		"beneficios", "demo",
		"how it works", "features", "benefits", "show me",
	},
	ObjectionHandling: {
		"pero", "sin embargo", "preocupa", "duda", "no estoy seguro", "demasiado caro",
		"however", "concern", "worried", "not sure", "too expensive",
	},
	Closing: {
		"empezar", "contratar", "siguiente paso", "propuesta", "reunión", "reunion",
		"proceed", "contract", "proposal", "next step", "meeting", "sign",
	},
	Followup: {
		"después", "despues", "próxima semana", "proxima semana", "contactar", "llamar",
		"follow up", "call me", "reach out", "later",
	},
}

var notInterestedMarkers = []string{
	"no me interesa", "no estamos interesados", "not interested", "no thanks", "no gracias",
}

var resolvedMarkers = []string{
	"de acuerdo", "tiene sentido", "me convence", "entendido",
	"makes sense", "fair enough", "that answers", "i see",
}

// Advance decides the next phase for a turn. It never errors: anything it
// does not recognise keeps the current phase. Backward movement other than
// objection_handling -> presentation is unreachable by construction.
func Advance(current Phase, intent, content string) Phase {
	if !Valid(current) {
		current = Introduction
	}
	if Terminal(current) {
		return Ended
	}

	text := strings.ToLower(content)

	// Explicit end-of-conversation signals beat everything.
	if intent == IntentNotInterested || containsAny(text, notInterestedMarkers) {
		return Ended
	}
	if intent == IntentGoodbye {
		if current == Closing || current == Followup {
			return Ended
		}
		return current
	}
	if intent == IntentProceed {
		if rank[Closing] > rank[current] {
			return Closing
		}
		return current
	}

	// The single permitted cycle.
	if current == Presentation && (intent == IntentObjection || containsAny(text, phaseKeywords[ObjectionHandling])) {
		return ObjectionHandling
	}
	if current == ObjectionHandling {
		if intent == IntentResolved || containsAny(text, resolvedMarkers) || containsAny(text, phaseKeywords[Presentation]) {
			return Presentation
		}
	}

	// Keyword scan: the best-scoring strictly-forward phase wins. The
	// objection phase is only enterable from presentation, handled above.
	best := current
	bestScore := 0
	for _, p := range []Phase{Discovery, Qualification, Presentation, Closing, Followup} {
		if rank[p] <= rank[current] {
			continue
		}
		score := 0
		for _, kw := range phaseKeywords[p] {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
