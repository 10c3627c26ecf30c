package extract

// Config holds the extractor's pattern and keyword tables as uncompiled
// strings. DefaultConfig returns the production tables; tests build smaller
// ones. Compile with New.
type Config struct {
	// PhonePatterns match phone numbers in any written form.
	PhonePatterns []string
	// BankAccountPatterns match candidate account numbers; candidates are
	// additionally filtered against phone collisions and epoch timestamps.
	BankAccountPatterns []string
	// AtTokenPattern matches local-part@domain shaped tokens. Each match is
	// classified as a payment handle or an email address by the TLD rule.
	AtTokenPattern string
	// LinkPatterns match URLs including shortener forms.
	LinkPatterns []string
	// ReferencePrefixPatterns match prefixed reference IDs (whole match).
	ReferencePrefixPatterns []string
	// ReferenceLabelPatterns match "case/ref/policy/order number: X" forms;
	// the ID is the pattern's first capture group.
	ReferenceLabelPatterns []string
	// SuspiciousKeywords are scanned as lowercase substrings.
	SuspiciousKeywords []string
	// JunkIDWords are common words never accepted as reference IDs.
	JunkIDWords []string
}

// DefaultConfig returns the production pattern tables. Phone patterns cover
// Indian formats (+91, bare 91, leading 0, 10-digit mobile) plus a generic
// international form.
func DefaultConfig() Config {
	return Config{
		PhonePatterns: []string{
			`\+91[\s\-]?\d{5}[\s\-]?\d{5}`,
			`\b91[\s\-]?\d{5}[\s\-]?\d{5}\b`,
			`\b0\d{10}\b`,
			`\b[6-9]\d{9}\b`,
			`\+\d{1,3}[\s\-]?\(?\d{1,4}\)?[\s\-]?\d{3,5}[\s\-]?\d{4,6}`,
		},
		BankAccountPatterns: []string{
			`\b\d{9,18}\b`,
		},
		AtTokenPattern: `[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(?:\.[a-zA-Z0-9\-]+)*`,
		LinkPatterns: []string{
			`https?://[^\s'"<>]+`,
			`www\.[^\s'"<>]+\.[a-z]{2,6}(?:/[^\s]*)?`,
			`bit\.ly/[^\s]+`,
			`tinyurl\.com/[^\s]+`,
		},
		ReferencePrefixPatterns: []string{
			`\b(?:REF|ITA|SBI|RBI|FPC|JIO|CASE|TKT|CMP|TXN|FIR|CR|LIC|POL|INS|IND|ORD|PKG|AWB|TRACK)-[A-Z0-9][A-Z0-9\-]{2,24}\b`,
		},
		ReferenceLabelPatterns: []string{
			`(?i)\b(?:case|ref|reference|ticket|complaint|policy|order|tracking)\s*(?:no\.?|number|id|#|:)\s*[:\-]?\s*#?\s*([A-Za-z0-9][A-Za-z0-9\-]{3,24})\b`,
		},
		SuspiciousKeywords: []string{
			"urgent", "verify", "blocked", "suspended", "otp", "kyc", "account",
			"immediately", "verify now", "confirm", "click here", "claim",
			"reward", "prize", "lottery", "won", "refund", "tax", "customs",
			"parcel", "delivery", "pending", "overdue", "arrest", "police",
			"legal action", "cancel", "expire", "limited time", "act now",
		},
		JunkIDWords: []string{
			"number", "entity", "erence", "where", "scammer", "fraud", "secure",
			"verify", "update", "payment", "account", "process", "portal",
			"claim", "apply", "check", "track", "status", "online",
			"please", "immediately", "department", "officer", "customer",
			"bank", "helpline", "support", "service", "compliance",
		},
	}
}
