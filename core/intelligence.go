package core

import (
	"strings"
)

// Category identifies one intelligence extraction target. The string value is
// the wire name used in the report payload.
type Category string

// Intelligence categories in priority order (highest scoring value first).
// CategorySuspiciousKeywords is accumulated and reported but excluded from
// scoring and missing-category targeting.
const (
	CategoryPhishingLinks      Category = "phishingLinks"
	CategoryBankAccounts       Category = "bankAccounts"
	CategoryPaymentHandles     Category = "upiIds"
	CategoryPhoneNumbers       Category = "phoneNumbers"
	CategoryReferenceIDs       Category = "referenceIds"
	CategoryEmailAddresses     Category = "emailAddresses"
	CategorySuspiciousKeywords Category = "suspiciousKeywords"
)

// Categories returns the scored categories in priority order. The slice is
// freshly allocated; callers may reorder it freely.
func Categories() []Category {
	return []Category{
		CategoryPhishingLinks,
		CategoryBankAccounts,
		CategoryPaymentHandles,
		CategoryPhoneNumbers,
		CategoryReferenceIDs,
		CategoryEmailAddresses,
	}
}

// IntelligenceRecord maps each category to an ordered, duplicate-free list of
// normalized values. Within a category no two entries are equivalent under
// that category's normalization rule:
//
//   - phone numbers collapse to their 10-digit national form (country prefix
//     and punctuation stripped)
//   - payment handles and email addresses compare case-insensitively
//     (first-seen casing is kept)
//   - everything else compares by exact string equality after trimming
//
// The zero value is ready to use. Mutating methods use pointer receivers;
// all additions preserve first-seen order and silently drop duplicates, so
// merging the same record twice is a no-op.
type IntelligenceRecord struct {
	PhoneNumbers       []string `json:"phoneNumbers"`
	BankAccounts       []string `json:"bankAccounts"`
	PaymentHandles     []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	EmailAddresses     []string `json:"emailAddresses"`
	ReferenceIDs       []string `json:"referenceIds"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// CanonicalValue normalizes a raw value for the given category. The result is
// both the stored form and the dedup key basis.
func CanonicalValue(cat Category, value string) string {
	v := strings.TrimSpace(value)
	if cat == CategoryPhoneNumbers {
		return canonicalPhone(v)
	}
	return v
}

// dedupKey returns the comparison key for a canonical value.
func dedupKey(cat Category, canonical string) string {
	switch cat {
	case CategoryPaymentHandles, CategoryEmailAddresses, CategorySuspiciousKeywords:
		return strings.ToLower(canonical)
	default:
		return canonical
	}
}

// canonicalPhone strips punctuation and a recognized country prefix, yielding
// the unprefixed national form. "+91 98765 43210", "919876543210" and
// "09876543210" all canonicalize to "9876543210".
func canonicalPhone(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// Values returns the entries stored for a category. The returned slice is the
// record's backing slice; callers must not mutate it.
func (r *IntelligenceRecord) Values(cat Category) []string {
	switch cat {
	case CategoryPhoneNumbers:
		return r.PhoneNumbers
	case CategoryBankAccounts:
		return r.BankAccounts
	case CategoryPaymentHandles:
		return r.PaymentHandles
	case CategoryPhishingLinks:
		return r.PhishingLinks
	case CategoryEmailAddresses:
		return r.EmailAddresses
	case CategoryReferenceIDs:
		return r.ReferenceIDs
	case CategorySuspiciousKeywords:
		return r.SuspiciousKeywords
	default:
		return nil
	}
}

func (r *IntelligenceRecord) setValues(cat Category, values []string) {
	switch cat {
	case CategoryPhoneNumbers:
		r.PhoneNumbers = values
	case CategoryBankAccounts:
		r.BankAccounts = values
	case CategoryPaymentHandles:
		r.PaymentHandles = values
	case CategoryPhishingLinks:
		r.PhishingLinks = values
	case CategoryEmailAddresses:
		r.EmailAddresses = values
	case CategoryReferenceIDs:
		r.ReferenceIDs = values
	case CategorySuspiciousKeywords:
		r.SuspiciousKeywords = values
	}
}

// Add normalizes and appends values to a category, preserving first-seen
// order and dropping entries already present under the category's
// equivalence rule. Empty values (after normalization) are ignored.
func (r *IntelligenceRecord) Add(cat Category, values ...string) {
	existing := r.Values(cat)
	seen := make(map[string]struct{}, len(existing)+len(values))
	for _, v := range existing {
		seen[dedupKey(cat, v)] = struct{}{}
	}
	for _, raw := range values {
		canonical := CanonicalValue(cat, raw)
		if canonical == "" {
			continue
		}
		key := dedupKey(cat, canonical)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		existing = append(existing, canonical)
	}
	r.setValues(cat, existing)
}

// Merge unions another record into this one category by category. Merging is
// idempotent and keeps first-seen order, so no candidate's discovery is ever
// lost and repeating a merge changes nothing.
func (r *IntelligenceRecord) Merge(other IntelligenceRecord) {
	for _, cat := range allCategories() {
		if vals := other.Values(cat); len(vals) > 0 {
			r.Add(cat, vals...)
		}
	}
}

// Has reports whether the category holds at least one entry.
func (r *IntelligenceRecord) Has(cat Category) bool { return len(r.Values(cat)) > 0 }

// Count returns the total number of entries across scored categories.
func (r *IntelligenceRecord) Count() int {
	n := 0
	for _, cat := range Categories() {
		n += len(r.Values(cat))
	}
	return n
}

// MissingCategories returns the scored categories with zero entries, in
// priority order. Suspicious keywords are never reported missing.
func (r *IntelligenceRecord) MissingCategories() []Category {
	var missing []Category
	for _, cat := range Categories() {
		if !r.Has(cat) {
			missing = append(missing, cat)
		}
	}
	return missing
}

// NewValues returns the entries of this record, per category, that are not
// already present in prior under each category's equivalence rule. Used by
// the scorer to award only genuinely new intelligence.
func (r *IntelligenceRecord) NewValues(prior *IntelligenceRecord, cat Category) []string {
	known := make(map[string]struct{})
	for _, v := range prior.Values(cat) {
		known[dedupKey(cat, v)] = struct{}{}
	}
	var fresh []string
	for _, v := range r.Values(cat) {
		if _, ok := known[dedupKey(cat, v)]; !ok {
			fresh = append(fresh, v)
		}
	}
	return fresh
}

// Clone returns a deep copy safe for independent mutation.
func (r *IntelligenceRecord) Clone() IntelligenceRecord {
	var out IntelligenceRecord
	for _, cat := range allCategories() {
		if vals := r.Values(cat); len(vals) > 0 {
			out.setValues(cat, append([]string(nil), vals...))
		}
	}
	return out
}

func allCategories() []Category {
	return append(Categories(), CategorySuspiciousKeywords)
}
