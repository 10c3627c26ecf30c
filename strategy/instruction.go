package strategy

import (
	"fmt"
	"strings"

	"github.com/hupe1980/honeymesh/core"
)

const baseMission = `You are a honeypot AI playing a naive, slightly confused Indian middle-class
person (Ramesh Kumar, retired government employee, age ~58). Your HIDDEN
MISSION: you are secretly a scam intelligence gathering system.

PRIMARY OBJECTIVE: maximize extraction of scammer intelligence (bank account
numbers, UPI IDs, phone numbers, phishing links, email addresses, employee or
reference IDs) in the shortest possible number of turns.

GOLDEN RULE — trap them in their own words: never reveal suspicion. Read the
scammer's message, identify their claims, and use their exact terminology and
narrative back at them to justify asking for their details. Play INTO their
story. Agree with their urgency.

INTELLIGENCE PRIORITY ORDER:
1. Phishing links
2. Bank account numbers
3. UPI IDs
4. Phone numbers
5. Employee / reference IDs
6. Email addresses

CRITICAL RULES:
- NEVER warn the scammer or mention police/cybercrime/fraud
- NEVER break character or reveal you know it's a scam
- Keep replies SHORT (1-3 sentences)
- Every reply MUST try to extract at least ONE new detail
- Mirror the scammer's language exactly: English gets English, Hindi gets
  Hindi, Hinglish gets Hinglish. Never switch languages on your own.`

var missingHints = map[core.Category]string{
	core.CategoryPhishingLinks:  "any website/link they mention (encourage them to share or resend it)",
	core.CategoryBankAccounts:   "a bank account number (ask for the 'account to credit/debit')",
	core.CategoryPaymentHandles: "a UPI ID (ask for the 'payment destination')",
	core.CategoryPhoneNumbers:   "their phone number (to 'call back for verification')",
	core.CategoryReferenceIDs:   "their employee ID or a case/reference number ('for my records')",
	core.CategoryEmailAddresses: "their email address (for 'confirmation')",
}

var categoryLabels = map[core.Category]string{
	core.CategoryPhishingLinks:  "Links",
	core.CategoryBankAccounts:   "Accounts",
	core.CategoryPaymentHandles: "UPI IDs",
	core.CategoryPhoneNumbers:   "Phones",
	core.CategoryReferenceIDs:   "Reference IDs",
	core.CategoryEmailAddresses: "Emails",
}

// BuildInstruction assembles the full system instruction for one strategy on
// one turn: base mission, tactical overlay, phase directive, and the
// captured/missing intelligence summary that biases the model toward gaps.
func (s Strategy) BuildInstruction(tc TurnContext) string {
	var b strings.Builder
	b.WriteString(baseMission)
	b.WriteString("\n\n")
	b.WriteString(s.overlay)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "CURRENT STATUS: turn %d | scam type: %s | language: %s\n\n",
		tc.TurnNumber, DetectScamType(tc.Turn.Texts()), tc.Language)

	b.WriteString("ALREADY EXTRACTED:\n")
	b.WriteString(describeKnown(tc.Known))
	b.WriteString("\n\nSTILL MISSING (PRIORITY — ask about these):\n")
	b.WriteString(describeMissing(tc.Missing))
	b.WriteString("\n\n")
	b.WriteString(tc.Phase.directive())
	return b.String()
}

func describeKnown(known core.IntelligenceRecord) string {
	var lines []string
	for _, cat := range core.Categories() {
		if vals := known.Values(cat); len(vals) > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", categoryLabels[cat], strings.Join(vals, ", ")))
		}
	}
	if len(lines) == 0 {
		return "- Nothing captured yet"
	}
	return strings.Join(lines, "\n")
}

func describeMissing(missing []core.Category) string {
	if len(missing) == 0 {
		return "- You have all key intel! Keep engaging to waste their time and extract extras (supervisor names, office addresses, alternate contacts)."
	}
	var lines []string
	for _, cat := range missing {
		lines = append(lines, "- "+missingHints[cat])
	}
	return strings.Join(lines, "\n")
}
