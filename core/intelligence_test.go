package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntelligenceRecord_PhoneNormalization(t *testing.T) {
	var r IntelligenceRecord
	r.Add(CategoryPhoneNumbers, "+91 98765 43210")
	r.Add(CategoryPhoneNumbers, "9876543210")
	r.Add(CategoryPhoneNumbers, "91-98765-43210")
	r.Add(CategoryPhoneNumbers, "09876543210")

	assert.Equal(t, []string{"9876543210"}, r.PhoneNumbers)
}

func TestIntelligenceRecord_CaseInsensitiveHandles(t *testing.T) {
	var r IntelligenceRecord
	r.Add(CategoryPaymentHandles, "Victim@OkSBI", "victim@oksbi")
	r.Add(CategoryEmailAddresses, "Fraud@FakeBank.com", "fraud@fakebank.com")

	// First-seen casing wins, equivalents are dropped.
	assert.Equal(t, []string{"Victim@OkSBI"}, r.PaymentHandles)
	assert.Equal(t, []string{"Fraud@FakeBank.com"}, r.EmailAddresses)
}

func TestIntelligenceRecord_MergeIdempotent(t *testing.T) {
	var found IntelligenceRecord
	found.Add(CategoryPhishingLinks, "http://bit.ly/x")
	found.Add(CategoryBankAccounts, "123456789012")
	found.Add(CategoryPhoneNumbers, "+919876543210")

	var acc IntelligenceRecord
	acc.Merge(found)
	once := acc.Clone()
	acc.Merge(found)

	assert.Equal(t, once, acc.Clone())
	assert.Equal(t, 3, acc.Count())
}

func TestIntelligenceRecord_FirstSeenOrder(t *testing.T) {
	var r IntelligenceRecord
	r.Add(CategoryBankAccounts, "111111111", "222222222")
	r.Add(CategoryBankAccounts, "222222222", "333333333")

	assert.Equal(t, []string{"111111111", "222222222", "333333333"}, r.BankAccounts)
}

func TestIntelligenceRecord_MissingCategories(t *testing.T) {
	var r IntelligenceRecord
	assert.Equal(t, Categories(), r.MissingCategories())

	r.Add(CategoryPhishingLinks, "http://evil.example")
	r.Add(CategoryPaymentHandles, "fraud@ybl")

	missing := r.MissingCategories()
	assert.NotContains(t, missing, CategoryPhishingLinks)
	assert.NotContains(t, missing, CategoryPaymentHandles)
	assert.Contains(t, missing, CategoryBankAccounts)
	assert.Contains(t, missing, CategoryEmailAddresses)
}

func TestIntelligenceRecord_NewValues(t *testing.T) {
	var prior IntelligenceRecord
	prior.Add(CategoryPhoneNumbers, "9876543210")

	var found IntelligenceRecord
	found.Add(CategoryPhoneNumbers, "+91 98765 43210", "8765432109")

	fresh := found.NewValues(&prior, CategoryPhoneNumbers)
	assert.Equal(t, []string{"8765432109"}, fresh)
}

func TestIntelligenceRecord_CloneIsIndependent(t *testing.T) {
	var r IntelligenceRecord
	r.Add(CategoryEmailAddresses, "a@b.com")

	clone := r.Clone()
	clone.Add(CategoryEmailAddresses, "c@d.com")

	assert.Len(t, r.EmailAddresses, 1)
	assert.Len(t, clone.EmailAddresses, 2)
}

func TestApplyTurnUpdate(t *testing.T) {
	state := &SessionState{ID: "s1"}

	var intel IntelligenceRecord
	intel.Add(CategoryPhishingLinks, "http://bit.ly/x")

	ApplyTurnUpdate(state, TurnUpdate{
		Intel:        intel,
		ScamDetected: true,
		ScamType:     "phishing",
		Confidence:   0.8,
		Note:         "first note",
		ReplyID:      "uncle.link.0",
	})

	assert.Equal(t, 1, state.TurnCount)
	assert.True(t, state.ScamDetected)
	assert.Equal(t, "phishing", state.ScamType)
	assert.Equal(t, "uncle.link.0", state.LastReplyID)

	// Lower-confidence detection must not overwrite the label.
	ApplyTurnUpdate(state, TurnUpdate{ScamDetected: true, ScamType: "bank_fraud", Confidence: 0.4})
	assert.Equal(t, 2, state.TurnCount)
	assert.Equal(t, "phishing", state.ScamType)
	assert.Equal(t, 0.8, state.Confidence)

	// Neither does an exact tie: the label changes only on strictly higher
	// confidence.
	ApplyTurnUpdate(state, TurnUpdate{ScamDetected: true, ScamType: "bank_fraud", Confidence: 0.8})
	assert.Equal(t, "phishing", state.ScamType)

	// Higher confidence does.
	ApplyTurnUpdate(state, TurnUpdate{ScamDetected: true, ScamType: "upi_fraud", Confidence: 0.9})
	assert.Equal(t, "upi_fraud", state.ScamType)
}

func TestApplyTurnUpdate_MonotonicAccumulation(t *testing.T) {
	state := &SessionState{ID: "s1"}

	var a IntelligenceRecord
	a.Add(CategoryBankAccounts, "123456789")
	ApplyTurnUpdate(state, TurnUpdate{Intel: a})

	prevCounts := map[Category]int{}
	for _, cat := range Categories() {
		prevCounts[cat] = len(state.Intel.Values(cat))
	}

	var b IntelligenceRecord
	b.Add(CategoryBankAccounts, "123456789") // duplicate
	b.Add(CategoryPhoneNumbers, "9876543210")
	ApplyTurnUpdate(state, TurnUpdate{Intel: b})

	for _, cat := range Categories() {
		assert.GreaterOrEqual(t, len(state.Intel.Values(cat)), prevCounts[cat], "category %s shrank", cat)
	}
	assert.Len(t, state.Intel.BankAccounts, 1)
}
