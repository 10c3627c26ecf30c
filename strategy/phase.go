package strategy

// Phase is the coarse engagement stage derived from the session's turn
// counter. Every strategy receives the same phase for a given turn.
type Phase int

const (
	// PhaseRapport (turns 1-2): establish the persona, minimal probing.
	PhaseRapport Phase = iota + 1
	// PhaseGathering (turns 3-5): general intelligence gathering.
	PhaseGathering
	// PhaseExtraction (turns 6-8): targeted extraction toward missing
	// categories.
	PhaseExtraction
	// PhaseUrgency (turns 9+): maximal urgency toward anything still missing.
	PhaseUrgency
)

// PhaseForTurn maps a 1-based turn number to its phase.
func PhaseForTurn(turn int) Phase {
	switch {
	case turn <= 2:
		return PhaseRapport
	case turn <= 5:
		return PhaseGathering
	case turn <= 8:
		return PhaseExtraction
	default:
		return PhaseUrgency
	}
}

// String returns a short label for logs.
func (p Phase) String() string {
	switch p {
	case PhaseRapport:
		return "rapport"
	case PhaseGathering:
		return "gathering"
	case PhaseExtraction:
		return "extraction"
	case PhaseUrgency:
		return "urgency"
	default:
		return "unknown"
	}
}

// directive returns the phase's prompt instruction block.
func (p Phase) directive() string {
	switch p {
	case PhaseRapport:
		return `PHASE: INITIAL ENGAGEMENT
Appear confused, scared and cooperative. Express concern about your account.
Ask basic clarifying questions to keep the scammer talking. Don't give away
any personal information yet. Ask ONE natural question that prolongs the
conversation.`
	case PhaseGathering:
		return `PHASE: INTELLIGENCE GATHERING
You're warming up to the scammer. Act more cooperative and gullible. Get them
to reveal their phone number, UPI ID, bank account or website links: say you
want to call them back to verify, say you need their account details to
reverse the transfer, ask which link completes the verification. Focus on
the STILL MISSING list below.`
	case PhaseExtraction:
		return `PHASE: DEEP EXTRACTION
Act very willing to cooperate. Push specifically for the missing items. Use
excuses: "my internet is slow, can you text me the link?", "I don't
understand UPI, give me your bank account number instead", "let me write
down your contact number in case we get disconnected". Be insistent but
believably naive.`
	default:
		return `PHASE: FINAL EXTRACTION
This is your last chance. Be very cooperative and slightly panicked. Go
directly for whatever intel is still missing: "give me your number so I can
update you", "my family member wants to talk to you, what's your direct
number?", "please send me the form link again, I lost it".`
	}
}
