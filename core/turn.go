package core

import (
	"strings"
	"time"
)

// Message is a single message within a conversation. Sender is "scammer" for
// inbound messages and "user" for the honeypot's own replies. Timestamp is
// kept loosely typed because callers send either RFC 3339 strings or epoch
// millisecond numbers; use ParseTimestamp to interpret it.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp any    `json:"timestamp,omitempty"`
}

// ParseTimestamp interprets the loosely typed Timestamp field. It accepts
// RFC 3339 strings (with or without a trailing Z) and epoch values in
// milliseconds or seconds. The second return value reports whether a usable
// timestamp was present.
func (m Message) ParseTimestamp() (time.Time, bool) {
	switch ts := m.Timestamp.(type) {
	case string:
		if ts == "" {
			return time.Time{}, false
		}
		if t, err := time.Parse(time.RFC3339, strings.Replace(ts, "Z", "+00:00", 1)); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			return t, true
		}
		return time.Time{}, false
	case float64:
		return epochToTime(int64(ts)), true
	case int64:
		return epochToTime(ts), true
	case int:
		return epochToTime(int64(ts)), true
	default:
		return time.Time{}, false
	}
}

// epochToTime treats values above 1e12 as milliseconds, otherwise seconds.
func epochToTime(v int64) time.Time {
	if v > 1_000_000_000_000 {
		return time.UnixMilli(v)
	}
	return time.Unix(v, 0)
}

// Metadata carries optional channel information about the conversation.
// Missing fields fall back to the defaults used by the evaluation harness.
type Metadata struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

// Turn is one inbound message together with the prior conversation history
// and channel metadata. It is immutable once received; the engine never
// mutates a Turn, only derives per-turn context from it.
type Turn struct {
	SessionID string    `json:"sessionId"`
	Message   Message   `json:"message"`
	History   []Message `json:"conversationHistory,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}

// Texts returns every message text in the conversation, history first and
// the current message last. Empty texts are skipped.
func (t Turn) Texts() []string {
	texts := make([]string, 0, len(t.History)+1)
	for _, m := range t.History {
		if m.Text != "" {
			texts = append(texts, m.Text)
		}
	}
	if t.Message.Text != "" {
		texts = append(texts, t.Message.Text)
	}
	return texts
}

// ScammerTexts returns only the scammer-authored texts, history first and
// the current message last. Intelligence extraction reads these so the
// honeypot's own replies never pollute the record.
func (t Turn) ScammerTexts() []string {
	texts := make([]string, 0, len(t.History)+1)
	for _, m := range t.History {
		if m.Text != "" && m.Sender != "user" {
			texts = append(texts, m.Text)
		}
	}
	if t.Message.Text != "" {
		texts = append(texts, t.Message.Text)
	}
	return texts
}

// MessageCount returns the total number of messages exchanged including the
// current one.
func (t Turn) MessageCount() int { return len(t.History) + 1 }

// Language returns the declared conversation language or "English" when the
// metadata is absent.
func (t Turn) Language() string {
	if t.Metadata.Language == "" {
		return "English"
	}
	return t.Metadata.Language
}
