package extract

import "strings"

// RedFlag is a coarse behavioral category observed in scammer messages.
// Red flags feed analyst notes, not the intelligence record.
type RedFlag string

const (
	RedFlagUrgency       RedFlag = "urgency_tactics"
	RedFlagOTPRequest    RedFlag = "otp_requests"
	RedFlagLinks         RedFlag = "suspicious_links"
	RedFlagImpersonation RedFlag = "impersonation"
	RedFlagPressure      RedFlag = "pressure_tactics"
)

var redFlagKeywords = map[RedFlag][]string{
	RedFlagUrgency: {
		"urgent", "immediately", "act now", "limited time", "hurry",
		"right now", "as soon as possible", "asap", "within 24 hours",
		"today only", "time is running out", "last chance", "deadline",
		"expires today",
	},
	RedFlagOTPRequest: {
		"otp", "one time password", "password", "pin", "cvv",
		"verification code", "security code", "mpin", "atm pin",
		"share the code", "send the otp", "enter otp", "share otp",
	},
	RedFlagLinks: {
		"click here", "click this link", "visit this", "open this",
		"http", "https", "www.", "bit.ly", "tinyurl", "download",
		"portal", "login page", "verification link",
	},
	RedFlagImpersonation: {
		"officer", "manager", "executive", "department", "rbi",
		"reserve bank", "sbi", "hdfc", "icici", "axis", "government",
		"police", "cyber cell", "fraud department", "employee id",
		"badge number", "calling from", "head office", "customer care",
		"income tax", "customs",
	},
	RedFlagPressure: {
		"blocked", "suspended", "deactivated", "frozen", "cancel",
		"expire", "terminate", "arrest", "legal action", "penalty",
		"fine", "verify", "verify now", "kyc", "re-kyc",
		"confirm identity", "account will be", "if you don't",
		"mandatory", "compulsory",
	},
}

var redFlagNarratives = map[RedFlag]string{
	RedFlagUrgency:       "used urgency tactics demanding immediate action",
	RedFlagOTPRequest:    "requested OTP or sensitive credentials",
	RedFlagLinks:         "shared suspicious links to a fraudulent portal",
	RedFlagImpersonation: "impersonated a bank official or government authority",
	RedFlagPressure:      "applied pressure tactics threatening account suspension or legal action",
}

// DetectRedFlags scans the combined lowercase text for each red flag
// category and returns the flags found in declaration order.
func DetectRedFlags(texts []string) []RedFlag {
	combined := strings.ToLower(strings.Join(texts, " "))
	ordered := []RedFlag{RedFlagUrgency, RedFlagOTPRequest, RedFlagLinks, RedFlagImpersonation, RedFlagPressure}

	var found []RedFlag
	for _, flag := range ordered {
		for _, kw := range redFlagKeywords[flag] {
			if strings.Contains(combined, kw) {
				found = append(found, flag)
				break
			}
		}
	}
	return found
}

// RedFlagNarrative weaves detected flags into a natural phrase for analyst
// notes ("used urgency tactics ..., requested OTP ...").
func RedFlagNarrative(flags []RedFlag) string {
	phrases := make([]string, 0, len(flags))
	for _, flag := range flags {
		if p, ok := redFlagNarratives[flag]; ok {
			phrases = append(phrases, p)
		}
	}
	return strings.Join(phrases, ", ")
}
