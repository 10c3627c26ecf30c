package extract

import (
	"strings"
	"testing"

	"github.com/hupe1980/honeymesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestExtract_PhoneNumbers(t *testing.T) {
	e := defaultExtractor(t)

	rec := e.Extract([]string{"Call me at +91 98765 43210 or 9876543210 urgently"})
	assert.Equal(t, []string{"9876543210"}, rec.PhoneNumbers)
}

func TestExtract_PaymentHandleVsEmail(t *testing.T) {
	e := defaultExtractor(t)

	rec := e.Extract([]string{"Pay to victim@oksbi and mail victim@oksbi.com"})
	assert.Equal(t, []string{"victim@oksbi"}, rec.PaymentHandles)
	assert.Equal(t, []string{"victim@oksbi.com"}, rec.EmailAddresses)
}

func TestExtract_UnknownHandleIsStillHandle(t *testing.T) {
	e := defaultExtractor(t)

	// No TLD and no recognized provider: emails always carry a TLD, so
	// anything without one is treated as a payment handle.
	rec := e.Extract([]string{"send to scammer@fakebank please"})
	assert.Equal(t, []string{"scammer@fakebank"}, rec.PaymentHandles)
	assert.Empty(t, rec.EmailAddresses)
}

func TestExtract_BankAccounts(t *testing.T) {
	e := defaultExtractor(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain account", "transfer to account 123456789012", []string{"123456789012"}},
		{"phone digits excluded", "call 9876543210 now", nil},
		{"epoch millis excluded", "at 1767261600000 exactly", nil},
		{"too short", "code 12345678", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.Extract([]string{tt.text})
			assert.Equal(t, tt.want, rec.BankAccounts)
		})
	}
}

func TestExtract_PhishingLinks(t *testing.T) {
	e := defaultExtractor(t)

	rec := e.Extract([]string{"Click http://bit.ly/x now! Also visit www.fake-sbi.com/verify."})
	assert.Contains(t, rec.PhishingLinks, "http://bit.ly/x")
	assert.Contains(t, rec.PhishingLinks, "www.fake-sbi.com/verify")
	for _, link := range rec.PhishingLinks {
		assert.False(t, strings.HasSuffix(link, "!"), "trailing punctuation kept: %q", link)
		assert.False(t, strings.HasSuffix(link, "."), "trailing punctuation kept: %q", link)
	}
}

func TestExtract_ReferenceIDs(t *testing.T) {
	e := defaultExtractor(t)

	rec := e.Extract([]string{
		"Your case SBI-FPC-4521 is pending. Policy number: LIC-2019-553821. Track order IND-PKG-92847.",
	})
	assert.Contains(t, rec.ReferenceIDs, "SBI-FPC-4521")
	assert.Contains(t, rec.ReferenceIDs, "LIC-2019-553821")
	assert.Contains(t, rec.ReferenceIDs, "IND-PKG-92847")
}

func TestExtract_ReferenceIDJunkFiltered(t *testing.T) {
	e := defaultExtractor(t)

	// No digits, junk words, and URL fragments must all be rejected.
	rec := e.Extract([]string{"reference number: verification pending at http://secure-sbi-verify.com"})
	assert.Empty(t, rec.ReferenceIDs)
}

func TestExtract_SuspiciousKeywords(t *testing.T) {
	e := defaultExtractor(t)

	rec := e.Extract([]string{"URGENT: your account is blocked, verify now with OTP"})
	assert.Contains(t, rec.SuspiciousKeywords, "urgent")
	assert.Contains(t, rec.SuspiciousKeywords, "blocked")
	assert.Contains(t, rec.SuspiciousKeywords, "otp")
	assert.Contains(t, rec.SuspiciousKeywords, "verify now")
}

func TestExtract_MalformedInputYieldsEmpty(t *testing.T) {
	e := defaultExtractor(t)

	recNil := e.Extract(nil)
	assert.Zero(t, recNil.Count())
	recEmpty := e.Extract([]string{""})
	assert.Zero(t, recEmpty.Count())
	recJunk := e.Extract([]string{"@@@ ::: }{"})
	assert.Zero(t, recJunk.Count())
}

func TestExtract_Deterministic(t *testing.T) {
	e := defaultExtractor(t)
	texts := []string{"call +919876543210, pay fraud@ybl, visit http://bit.ly/x, case REF-2026-88213"}

	first := e.Extract(texts)
	for range 5 {
		assert.Equal(t, first, e.Extract(texts))
	}
}

func TestExtractTurn_SkipsHoneypotReplies(t *testing.T) {
	e := defaultExtractor(t)

	turn := core.Turn{
		Message: core.Message{Sender: "scammer", Text: "pay to fraud@ybl"},
		History: []core.Message{
			{Sender: "user", Text: "my own number is 9999999999"},
		},
	}
	rec := e.ExtractTurn(turn)
	assert.Equal(t, []string{"fraud@ybl"}, rec.PaymentHandles)
	assert.Empty(t, rec.PhoneNumbers)
}

func TestNew_InvalidPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PhonePatterns = []string{"("}
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestDetectRedFlags(t *testing.T) {
	flags := DetectRedFlags([]string{"URGENT: share the OTP or your account will be blocked. I am an officer from RBI."})
	assert.Contains(t, flags, RedFlagUrgency)
	assert.Contains(t, flags, RedFlagOTPRequest)
	assert.Contains(t, flags, RedFlagImpersonation)
	assert.Contains(t, flags, RedFlagPressure)

	narrative := RedFlagNarrative(flags)
	assert.Contains(t, narrative, "urgency tactics")
	assert.Contains(t, narrative, "OTP")
}
