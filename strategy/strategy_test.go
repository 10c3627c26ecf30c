package strategy

import (
	"testing"

	"github.com/hupe1980/honeymesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSet(t *testing.T) {
	set := DefaultSet()
	require.Len(t, set, 3)
	assert.Equal(t, []string{"confused_uncle", "eager_victim", "worried_citizen"}, set.Names())
	assert.Equal(t, "confused_uncle", set.First().Name)
	assert.Equal(t, 0.7, set[0].Bias)
	assert.Equal(t, 0.85, set[1].Bias)
	assert.Equal(t, 0.9, set[2].Bias)
}

func TestPhaseForTurn(t *testing.T) {
	tests := []struct {
		turn int
		want Phase
	}{
		{1, PhaseRapport}, {2, PhaseRapport},
		{3, PhaseGathering}, {5, PhaseGathering},
		{6, PhaseExtraction}, {8, PhaseExtraction},
		{9, PhaseUrgency}, {42, PhaseUrgency},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhaseForTurn(tt.turn), "turn %d", tt.turn)
	}
}

func TestDetectScamType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"upi", "send money via upi to my paytm, cashback waiting", "upi_fraud"},
		{"lottery", "congratulations you won the lucky lottery prize", "lottery_scam"},
		{"customs", "your parcel is held at customs, pay clearance", "customs_parcel"},
		{"empty defaults to bank", "hello there", "bank_fraud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectScamType([]string{tt.text}))
		})
	}
}

func TestBuildInstruction(t *testing.T) {
	set := DefaultSet()
	var known core.IntelligenceRecord
	known.Add(core.CategoryPhishingLinks, "http://bit.ly/x")

	tc := TurnContext{
		Turn:       core.Turn{Message: core.Message{Sender: "scammer", Text: "your account is blocked"}},
		TurnNumber: 4,
		Phase:      PhaseForTurn(4),
		Known:      known,
		Missing:    known.MissingCategories(),
		Language:   "English",
	}

	instr := set[0].BuildInstruction(tc)
	assert.Contains(t, instr, "CONFUSED UNCLE")
	assert.Contains(t, instr, "http://bit.ly/x")
	assert.Contains(t, instr, "PHASE: INTELLIGENCE GATHERING")
	// Captured category is not listed as missing.
	assert.NotContains(t, instr, "encourage them to share or resend it")
	assert.Contains(t, instr, "bank account number")

	// Every strategy sees the same context but a different overlay.
	other := set[2].BuildInstruction(tc)
	assert.Contains(t, other, "WORRIED CITIZEN")
	assert.NotEqual(t, instr, other)
}

func TestBuildInstruction_AllCaptured(t *testing.T) {
	var known core.IntelligenceRecord
	for _, cat := range core.Categories() {
		known.Add(cat, "REF-2026-1")
	}
	tc := TurnContext{TurnNumber: 9, Phase: PhaseUrgency, Known: known, Missing: known.MissingCategories(), Language: "English"}

	instr := DefaultSet().First().BuildInstruction(tc)
	assert.Contains(t, instr, "You have all key intel")
	assert.Contains(t, instr, "PHASE: FINAL EXTRACTION")
}
