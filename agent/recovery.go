package agent

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// parseStructured attempts the strict decode of the structured tier: the raw
// text must be exactly one JSON object that unmarshals into the contract and
// passes validation.
func parseStructured(raw string) (structuredResponse, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return structuredResponse{}, false
	}

	var sr structuredResponse
	dec := json.NewDecoder(strings.NewReader(trimmed))
	if err := dec.Decode(&sr); err != nil {
		return structuredResponse{}, false
	}
	// Trailing non-whitespace after the object disqualifies the strict tier;
	// the recovery tier handles JSON embedded in prose.
	var extra json.RawMessage
	if err := dec.Decode(&extra); err == nil {
		return structuredResponse{}, false
	}

	if !sr.validate() {
		return structuredResponse{}, false
	}
	return sr, true
}

// replyAliases are the field names models use for the reply when they drift
// from the contract, in preference order.
var replyAliases = []string{"reply", "response", "message", "text", "answer"}

var confidenceAliases = []string{"confidence", "confidenceLevel", "confidence_level", "score"}

var scamDetectedAliases = []string{"scamDetected", "scam_detected", "isScam", "is_scam"}

var scamTypeAliases = []string{"scamType", "scam_type", "category"}

// recoverResponse reinterprets free-form model text. It tries, in order:
//
//  1. field pull over the outermost {...} slice, tolerating prose around the
//     object and drifted field names
//  2. cleanup (markdown fences, lead-in prose) then strict reparse
//  3. the surviving prose itself as the reply
//
// A false return means the text is unusable and the offline rung takes over.
func recoverResponse(raw string) (structuredResponse, bool) {
	if sr, ok := pullFields(outermostObject(raw)); ok {
		return sr, true
	}

	cleaned := cleanup(raw)
	if sr, ok := parseStructured(cleaned); ok {
		return sr, true
	}
	if sr, ok := pullFields(outermostObject(cleaned)); ok {
		return sr, true
	}

	// No JSON worth keeping: treat the cleaned prose as an in-character reply
	// when it is plausibly one.
	prose := trimProseEdges(strings.TrimSpace(stripJSONBlocks(cleaned)))
	if len(prose) >= 10 && len(prose) <= 600 {
		return structuredResponse{
			Reply:        prose,
			ScamDetected: true,
			Confidence:   0.6,
		}, true
	}
	return structuredResponse{}, false
}

// outermostObject returns the widest {...} slice of the text, or "" when no
// balanced object exists.
func outermostObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// pullFields extracts the contract fields from a JSON-ish object using path
// queries, tolerating field-name drift. The object does not need to be fully
// valid JSON; gjson is lenient about what surrounds the matched paths.
func pullFields(obj string) (structuredResponse, bool) {
	if obj == "" || !gjson.Valid(obj) {
		return structuredResponse{}, false
	}

	var sr structuredResponse
	for _, key := range replyAliases {
		if v := gjson.Get(obj, key); v.Exists() && v.Type == gjson.String {
			sr.Reply = v.String()
			break
		}
	}
	for _, key := range scamDetectedAliases {
		if v := gjson.Get(obj, key); v.Exists() {
			sr.ScamDetected = v.Bool()
			break
		}
	}
	for _, key := range confidenceAliases {
		if v := gjson.Get(obj, key); v.Exists() {
			sr.Confidence = v.Float()
			break
		}
	}
	for _, key := range scamTypeAliases {
		if v := gjson.Get(obj, key); v.Exists() && v.Type == gjson.String {
			sr.ScamType = v.String()
			break
		}
	}
	if v := gjson.Get(obj, "notes"); v.Exists() && v.Type == gjson.String {
		sr.Notes = v.String()
	}

	pull := func(dst *[]string, paths ...string) {
		for _, p := range paths {
			if v := gjson.Get(obj, p); v.Exists() && v.IsArray() {
				for _, item := range v.Array() {
					if s := item.String(); s != "" {
						*dst = append(*dst, s)
					}
				}
				return
			}
		}
	}
	pull(&sr.Intelligence.PhishingLinks, "extractedIntelligence.phishingLinks", "phishingLinks")
	pull(&sr.Intelligence.BankAccounts, "extractedIntelligence.bankAccounts", "bankAccounts")
	pull(&sr.Intelligence.UPIIDs, "extractedIntelligence.upiIds", "upiIds")
	pull(&sr.Intelligence.PhoneNumbers, "extractedIntelligence.phoneNumbers", "phoneNumbers")
	pull(&sr.Intelligence.ReferenceIDs, "extractedIntelligence.referenceIds", "referenceIds")
	pull(&sr.Intelligence.EmailAddresses, "extractedIntelligence.emailAddresses", "emailAddresses")

	if !sr.validate() {
		return structuredResponse{}, false
	}
	return sr, true
}

// leadInPrefixes are the chatty prefixes models put before JSON output.
var leadInPrefixes = []string{
	"here is the json", "here's the json", "here is my response",
	"here's my response", "sure,", "certainly,", "json:",
}

// cleanup strips markdown fences and lead-in prose so a wrapped JSON object
// can be reparsed.
func cleanup(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	lower := strings.ToLower(s)
	for _, prefix := range leadInPrefixes {
		if strings.HasPrefix(lower, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s[len(prefix):]), ":"))
			lower = strings.ToLower(s)
		}
	}
	return s
}

// trimProseEdges strips JSON debris around surviving prose: everything
// before the first letter and everything after the last letter or sentence
// punctuation.
func trimProseEdges(s string) string {
	start := strings.IndexFunc(s, unicode.IsLetter)
	if start < 0 {
		return ""
	}
	end := strings.LastIndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || r == '.' || r == '!' || r == '?'
	})
	_, size := utf8.DecodeRuneInString(s[end:])
	return s[start : end+size]
}

// stripJSONBlocks removes balanced {...} regions, leaving surrounding prose.
func stripJSONBlocks(text string) string {
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
