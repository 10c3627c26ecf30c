package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/honeymesh/core"
)

// Extractor scans raw text for structured intelligence using compiled
// pattern tables. It is immutable after construction and safe for concurrent
// use; one process-wide instance is the normal deployment.
type Extractor struct {
	phonePatterns    []*regexp.Regexp
	bankPatterns     []*regexp.Regexp
	atTokenPattern   *regexp.Regexp
	linkPatterns     []*regexp.Regexp
	refPrefixes      []*regexp.Regexp
	refLabels        []*regexp.Regexp
	keywords         []string
	junkIDWords      map[string]struct{}
	tldPattern       *regexp.Regexp
	digitPattern     *regexp.Regexp
	hasDigitPattern  *regexp.Regexp
	urlSplitPattern  *regexp.Regexp
	trailingPunctSet string
}

// New compiles the config's pattern tables into an Extractor. An invalid
// pattern is a programming error in the table and fails construction.
func New(cfg Config) (*Extractor, error) {
	e := &Extractor{
		keywords:         cfg.SuspiciousKeywords,
		junkIDWords:      make(map[string]struct{}, len(cfg.JunkIDWords)),
		tldPattern:       regexp.MustCompile(`\.[a-zA-Z]{2,}$`),
		digitPattern:     regexp.MustCompile(`\D`),
		hasDigitPattern:  regexp.MustCompile(`\d`),
		urlSplitPattern:  regexp.MustCompile(`[/:.?&=#@]+`),
		trailingPunctSet: `.,;:!?)'"]`,
	}
	for _, w := range cfg.JunkIDWords {
		e.junkIDWords[strings.ToLower(w)] = struct{}{}
	}

	var err error
	if e.phonePatterns, err = compileAll(cfg.PhonePatterns); err != nil {
		return nil, fmt.Errorf("phone patterns: %w", err)
	}
	if e.bankPatterns, err = compileAll(cfg.BankAccountPatterns); err != nil {
		return nil, fmt.Errorf("bank account patterns: %w", err)
	}
	if cfg.AtTokenPattern != "" {
		if e.atTokenPattern, err = regexp.Compile(cfg.AtTokenPattern); err != nil {
			return nil, fmt.Errorf("at-token pattern: %w", err)
		}
	}
	if e.linkPatterns, err = compileAll(cfg.LinkPatterns); err != nil {
		return nil, fmt.Errorf("link patterns: %w", err)
	}
	if e.refPrefixes, err = compileAll(cfg.ReferencePrefixPatterns); err != nil {
		return nil, fmt.Errorf("reference prefix patterns: %w", err)
	}
	if e.refLabels, err = compileAll(cfg.ReferenceLabelPatterns); err != nil {
		return nil, fmt.Errorf("reference label patterns: %w", err)
	}
	return e, nil
}

// MustNew is New for the default config; it panics on a broken table and is
// intended for package wiring, not request paths.
func MustNew(cfg Config) *Extractor {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Extract runs every pattern table over the given texts and returns the
// deduplicated record. Deterministic, no I/O, linear in input length.
func (e *Extractor) Extract(texts []string) core.IntelligenceRecord {
	var record core.IntelligenceRecord
	fullText := strings.Join(texts, " ")
	if fullText == "" {
		return record
	}

	// Phones first: their digits are excluded from bank account candidates.
	phoneKeys := make(map[string]struct{})
	for _, re := range e.phonePatterns {
		for _, m := range re.FindAllString(fullText, -1) {
			record.Add(core.CategoryPhoneNumbers, m)
			phoneKeys[core.CanonicalValue(core.CategoryPhoneNumbers, m)] = struct{}{}
		}
	}

	// local-part@domain tokens: a TLD suffix on the domain makes it an email,
	// otherwise it is a payment handle. Single discriminating rule.
	if e.atTokenPattern != nil {
		for _, m := range e.atTokenPattern.FindAllString(fullText, -1) {
			domain := m[strings.LastIndex(m, "@")+1:]
			if e.tldPattern.MatchString(domain) {
				record.Add(core.CategoryEmailAddresses, m)
			} else {
				record.Add(core.CategoryPaymentHandles, m)
			}
		}
	}

	for _, re := range e.bankPatterns {
		for _, m := range re.FindAllString(fullText, -1) {
			if e.isLikelyBankAccount(m, phoneKeys) {
				record.Add(core.CategoryBankAccounts, m)
			}
		}
	}

	for _, re := range e.linkPatterns {
		for _, m := range re.FindAllString(fullText, -1) {
			record.Add(core.CategoryPhishingLinks, strings.TrimRight(m, e.trailingPunctSet))
		}
	}

	e.extractReferenceIDs(fullText, &record)

	lower := strings.ToLower(fullText)
	for _, kw := range e.keywords {
		if strings.Contains(lower, kw) {
			record.Add(core.CategorySuspiciousKeywords, kw)
		}
	}

	return record
}

// ExtractTurn scans only the scammer-authored texts of a turn.
func (e *Extractor) ExtractTurn(turn core.Turn) core.IntelligenceRecord {
	return e.Extract(turn.ScammerTexts())
}

// isLikelyBankAccount filters digit runs that are really phone numbers or
// epoch-millisecond timestamps.
func (e *Extractor) isLikelyBankAccount(value string, phoneKeys map[string]struct{}) bool {
	digits := e.digitPattern.ReplaceAllString(value, "")
	if len(digits) < 9 || len(digits) > 18 {
		return false
	}
	if len(digits) == 13 {
		// 13-digit runs in message text are almost always epoch millis.
		return false
	}
	tail := digits
	if len(tail) > 10 {
		tail = tail[len(tail)-10:]
	}
	if _, ok := phoneKeys[tail]; ok {
		return false
	}
	return true
}

// extractReferenceIDs collects case/policy/order style IDs, filtering junk
// words, URL and address fragments, and values without digits.
func (e *Extractor) extractReferenceIDs(fullText string, record *core.IntelligenceRecord) {
	fragments := make(map[string]struct{})
	for _, link := range record.PhishingLinks {
		for _, part := range e.urlSplitPattern.Split(strings.ToLower(link), -1) {
			fragments[part] = struct{}{}
		}
	}
	for _, addr := range append(append([]string(nil), record.EmailAddresses...), record.PaymentHandles...) {
		for _, part := range e.urlSplitPattern.Split(strings.ToLower(addr), -1) {
			fragments[part] = struct{}{}
		}
	}

	accept := func(v string) {
		v = strings.TrimSpace(v)
		if len(v) < 4 || !e.hasDigitPattern.MatchString(v) {
			return
		}
		lower := strings.ToLower(v)
		if _, junk := e.junkIDWords[lower]; junk {
			return
		}
		if _, frag := fragments[lower]; frag {
			return
		}
		if isAllDigits(v) && len(v) >= 9 {
			return
		}
		record.Add(core.CategoryReferenceIDs, v)
	}

	for _, re := range e.refPrefixes {
		for _, m := range re.FindAllString(fullText, -1) {
			accept(m)
		}
	}
	for _, re := range e.refLabels {
		for _, m := range re.FindAllStringSubmatch(fullText, -1) {
			if len(m) > 1 {
				accept(m[1])
			}
		}
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
