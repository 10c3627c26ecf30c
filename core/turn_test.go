package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTurn_Texts(t *testing.T) {
	turn := Turn{
		SessionID: "s1",
		Message:   Message{Sender: "scammer", Text: "send OTP now"},
		History: []Message{
			{Sender: "scammer", Text: "your account is blocked"},
			{Sender: "user", Text: "which account sir?"},
			{Sender: "scammer", Text: ""},
		},
	}

	assert.Equal(t, []string{"your account is blocked", "which account sir?", "send OTP now"}, turn.Texts())
	assert.Equal(t, []string{"your account is blocked", "send OTP now"}, turn.ScammerTexts())
	assert.Equal(t, 4, turn.MessageCount())
}

func TestTurn_LanguageDefault(t *testing.T) {
	assert.Equal(t, "English", Turn{}.Language())
	assert.Equal(t, "Hindi", Turn{Metadata: Metadata{Language: "Hindi"}}.Language())
}

func TestMessage_ParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   any
		ok   bool
	}{
		{"rfc3339", "2026-02-01T10:00:00Z", true},
		{"epoch millis", float64(1767261600000), true},
		{"epoch seconds", float64(1767261600), true},
		{"empty string", "", false},
		{"garbage", "yesterday", false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Message{Timestamp: tt.ts}.ParseTimestamp()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.False(t, got.IsZero())
			}
		})
	}

	// Millis and seconds variants of the same instant agree.
	a, _ := Message{Timestamp: float64(1767261600000)}.ParseTimestamp()
	b, _ := Message{Timestamp: float64(1767261600)}.ParseTimestamp()
	assert.True(t, a.Equal(b.Add(0*time.Second)))
}
