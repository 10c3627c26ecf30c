package core

// Tier identifies which rung of the degradation ladder produced a candidate.
type Tier int

const (
	// TierStructured means the generation capability returned a well-formed
	// typed result on the first attempt.
	TierStructured Tier = iota
	// TierRecovered means the result was reconstructed from free-form model
	// text by one of the local parse strategies.
	TierRecovered
	// TierOffline means the reply was synthesized locally with no model call.
	TierOffline
)

// String returns a short label for logs.
func (t Tier) String() string {
	switch t {
	case TierStructured:
		return "structured"
	case TierRecovered:
		return "recovered"
	case TierOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// CandidateResult is one strategy's proposed output for one turn: the reply
// it would send, its scam assessment, and whatever intelligence it spotted.
// Candidates are created fresh per turn per strategy and never persisted;
// only their contribution to the merged session record survives selection.
type CandidateResult struct {
	Strategy     string             // strategy name in declaration order
	Reply        string             // in-character reply text
	ReplyID      string             // canned-reply id, set only by the offline tier
	ScamDetected bool               // whether this candidate judged the turn a scam
	Confidence   float64            // detection confidence in [0,1]
	ScamType     string             // classified scam type label
	Intel        IntelligenceRecord // intelligence this candidate found
	Notes        string             // free-text analyst summary
	Tier         Tier               // which ladder rung produced the result
}
