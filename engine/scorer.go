package engine

import (
	"strings"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/strategy"
)

// ScoreConfig holds the scoring weights. The defaults encode the operating
// priorities: new intelligence dominates, link captures outweigh everything
// else, and cover-breaking vocabulary is punished but never disqualifying.
type ScoreConfig struct {
	// CategoryWeights is the per-value score for new intelligence by category.
	CategoryWeights map[core.Category]float64
	// MissingBonus is added once per previously-empty category whose trigger
	// vocabulary appears in the reply: the reply is rewarded for asking for
	// intelligence the session still lacks.
	MissingBonus float64
	// TriggerWords is the per-category asking-for-it vocabulary matched
	// against the lowercased reply.
	TriggerWords map[core.Category][]string
	// ConfidenceWeight multiplies the candidate's confidence when it labels
	// the turn a scam.
	ConfidenceWeight float64
	// Naturalness bands by reply length: replies between 20 and 200
	// characters read like a human text message.
	NaturalReplyBonus float64
	ShortReplyBonus   float64
	LongReplyBonus    float64
	// DangerPenalty is subtracted once per danger word present in the reply.
	DangerPenalty float64
	// DangerWords is the cover-breaking vocabulary.
	DangerWords []string
}

// DefaultScoreConfig returns the production weights.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		CategoryWeights: map[core.Category]float64{
			core.CategoryPhishingLinks:  15,
			core.CategoryBankAccounts:   12,
			core.CategoryPaymentHandles: 10,
			core.CategoryPhoneNumbers:   8,
			core.CategoryReferenceIDs:   6,
			core.CategoryEmailAddresses: 5,
		},
		MissingBonus: 15,
		TriggerWords: map[core.Category][]string{
			core.CategoryPhishingLinks:  {"link", "url", "website", "click", "open"},
			core.CategoryBankAccounts:   {"account number", "account no", "khata", "bank account"},
			core.CategoryPaymentHandles: {"upi", "vpa", "paytm", "phonepe", "gpay"},
			core.CategoryPhoneNumbers:   {"phone number", "mobile", "call", "contact number", "helpline"},
			core.CategoryReferenceIDs:   {"employee id", "badge", "reference", "id number", "officer id"},
			core.CategoryEmailAddresses: {"email", "mail id", "gmail"},
		},
		ConfidenceWeight:  10,
		NaturalReplyBonus: 10,
		ShortReplyBonus:   3,
		LongReplyBonus:    5,
		DangerPenalty:     20,
		DangerWords: []string{
			"scam", "fraud", "police", "cybercrime", "cyber crime",
			"report you", "fake", "cheat", "illegal", "honeypot",
		},
	}
}

// ScoredCandidate pairs a candidate with its score.
type ScoredCandidate struct {
	Candidate core.CandidateResult
	Score     float64
}

// Scorer evaluates candidates against a turn context. Scoring is a pure
// function of its inputs, so equal candidates always score equally.
type Scorer struct {
	cfg ScoreConfig
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(cfg ScoreConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes one candidate's score. New intelligence is measured against
// the session record as it stood before this turn, so a candidate only earns
// points for values the system did not already hold.
func (s *Scorer) Score(cand core.CandidateResult, tc strategy.TurnContext) float64 {
	var score float64

	prior := &tc.Session.Intel

	for cat, weight := range s.cfg.CategoryWeights {
		fresh := cand.Intel.NewValues(prior, cat)
		if len(fresh) == 0 {
			continue
		}
		score += weight * float64(len(fresh))
	}

	// A reply that asks for a still-missing category earns the targeting
	// bonus whether or not the scammer has answered yet.
	lowered := strings.ToLower(cand.Reply)
	for _, cat := range prior.MissingCategories() {
		for _, word := range s.cfg.TriggerWords[cat] {
			if strings.Contains(lowered, word) {
				score += s.cfg.MissingBonus
				break
			}
		}
	}

	if cand.ScamDetected {
		score += cand.Confidence * s.cfg.ConfidenceWeight
	}

	switch n := len(cand.Reply); {
	case n > 20 && n < 200:
		score += s.cfg.NaturalReplyBonus
	case n <= 20:
		score += s.cfg.ShortReplyBonus
	default:
		score += s.cfg.LongReplyBonus
	}

	for _, word := range s.cfg.DangerWords {
		if strings.Contains(lowered, word) {
			score -= s.cfg.DangerPenalty
		}
	}

	return score
}

// ScoreAll scores every candidate, preserving input order.
func (s *Scorer) ScoreAll(cands []core.CandidateResult, tc strategy.TurnContext) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(cands))
	for _, cand := range cands {
		scored = append(scored, ScoredCandidate{Candidate: cand, Score: s.Score(cand, tc)})
	}
	return scored
}
