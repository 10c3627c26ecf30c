package engine

import (
	"testing"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/internal/testutil"
	"github.com/hupe1980/honeymesh/strategy"
	"github.com/stretchr/testify/assert"
)

func scoringContext(state *core.SessionState) strategy.TurnContext {
	if state == nil {
		state = testutil.NewSessionBuilder("s1").Build()
	}
	return strategy.TurnContext{
		Session:    state,
		TurnNumber: state.TurnCount + 1,
	}
}

func candidate(reply string, fn func(c *core.CandidateResult)) core.CandidateResult {
	c := core.CandidateResult{
		Strategy: "confused_uncle",
		Reply:    reply,
	}
	if fn != nil {
		fn(&c)
	}
	return c
}

func TestScorer_NewIntelligenceDominates(t *testing.T) {
	s := NewScorer(DefaultScoreConfig())
	tc := scoringContext(nil)

	natural := "Sir which account number are you seeing on your side?"

	plain := candidate(natural, nil)
	withLink := candidate(natural, func(c *core.CandidateResult) {
		c.Intel.Add(core.CategoryPhishingLinks, "http://bit.ly/verify")
	})

	assert.Greater(t, s.Score(withLink, tc), s.Score(plain, tc))
	// One new link is worth exactly its category weight; the targeting bonus
	// depends on the reply text, which both candidates share.
	assert.InDelta(t, 15, s.Score(withLink, tc)-s.Score(plain, tc), 1e-9)
}

func TestScorer_MissingFieldTargetingBonus(t *testing.T) {
	s := NewScorer(DefaultScoreConfig())
	tc := scoringContext(nil)

	generic := candidate("Sir I am very confused, please explain once more slowly?", nil)
	asksUPI := candidate("Sir what is your UPI ID? I can pay by paytm right now!", nil)

	// Asking for a missing category earns the bonus once, no matter how many
	// of its trigger words appear.
	assert.InDelta(t, 15, s.Score(asksUPI, tc)-s.Score(generic, tc), 1e-9)

	// One bonus per missing category, summable across categories.
	asksTwo := candidate("Sir give me your phone number and the website please?", nil)
	assert.InDelta(t, 30, s.Score(asksTwo, tc)-s.Score(generic, tc), 1e-9)
}

func TestScorer_NoTargetingBonusForKnownCategory(t *testing.T) {
	s := NewScorer(DefaultScoreConfig())
	state := testutil.NewSessionBuilder("s1").
		Intel(core.CategoryPaymentHandles, "fraud@paytm").
		Build()
	tc := scoringContext(state)

	generic := candidate("Sir I am very confused, please explain once more slowly?", nil)
	asksUPI := candidate("Sir what is your UPI ID? I want to send the money now!", nil)

	// The session already holds a payment handle, so asking for one earns
	// nothing extra.
	assert.Equal(t, s.Score(generic, tc), s.Score(asksUPI, tc))
}

func TestScorer_KnownValuesEarnNothing(t *testing.T) {
	s := NewScorer(DefaultScoreConfig())
	state := testutil.NewSessionBuilder("s1").
		Intel(core.CategoryPhoneNumbers, "9876543210").
		Build()
	tc := scoringContext(state)

	natural := "Sir my phone is not working, give me the number again please?"
	stale := candidate(natural, func(c *core.CandidateResult) {
		c.Intel.Add(core.CategoryPhoneNumbers, "+91 98765 43210")
	})
	plain := candidate(natural, nil)

	assert.Equal(t, s.Score(plain, tc), s.Score(stale, tc))
}

func TestScorer_ConfidenceCountsOnlyWhenScam(t *testing.T) {
	s := NewScorer(DefaultScoreConfig())
	tc := scoringContext(nil)
	natural := "Sir I am very confused, please explain once more slowly?"

	detected := candidate(natural, func(c *core.CandidateResult) {
		c.ScamDetected = true
		c.Confidence = 0.9
	})
	undetected := candidate(natural, func(c *core.CandidateResult) {
		c.Confidence = 0.9
	})

	assert.InDelta(t, 9, s.Score(detected, tc)-s.Score(undetected, tc), 1e-9)
}

func TestScorer_NaturalnessBands(t *testing.T) {
	s := NewScorer(DefaultScoreConfig())
	tc := scoringContext(nil)

	// Replies chosen to avoid the trigger vocabulary so only the band scores.
	short := candidate("Which one?", nil)                                          // <= 20
	natural := candidate("Sir I am very confused, please explain it again?", nil)  // 20..200
	long := candidate(longReply(), nil)                                            // >= 200

	assert.InDelta(t, 3, s.Score(short, tc), 1e-9)
	assert.InDelta(t, 10, s.Score(natural, tc), 1e-9)
	assert.InDelta(t, 5, s.Score(long, tc), 1e-9)
}

func longReply() string {
	out := ""
	for range 10 {
		out += "Sir I am writing down everything you say in my diary very carefully. "
	}
	return out
}

func TestScorer_DangerWordsPenalizeButNeverVeto(t *testing.T) {
	s := NewScorer(DefaultScoreConfig())
	tc := scoringContext(nil)

	risky := candidate("Is this a scam sir? My son says this is fraud!", func(c *core.CandidateResult) {
		c.ScamDetected = true
		c.Confidence = 1
		c.Intel.Add(core.CategoryPhishingLinks, "http://bit.ly/x")
		c.Intel.Add(core.CategoryBankAccounts, "12345678901")
	})

	// Two danger words: -40. Intel (15 + 12) + confidence 10 + naturalness
	// 10 = 47; final 7. Still selectable.
	assert.InDelta(t, 7, s.Score(risky, tc), 1e-9)
}

func TestScorer_Deterministic(t *testing.T) {
	s := NewScorer(DefaultScoreConfig())
	tc := scoringContext(nil)
	cand := candidate("Sir please give me your employee ID, I will note it.", func(c *core.CandidateResult) {
		c.ScamDetected = true
		c.Confidence = 0.8
		c.Intel.Add(core.CategoryReferenceIDs, "EMP12345")
	})

	first := s.Score(cand, tc)
	for range 20 {
		assert.Equal(t, first, s.Score(cand, tc))
	}
}
