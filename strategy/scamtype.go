package strategy

import "strings"

// scamTypeSignals maps each scam-type label to its keyword signals. The type
// with the most distinct keyword hits wins.
var scamTypeSignals = map[string][]string{
	"bank_fraud":       {"bank", "account", "otp", "blocked", "sbi", "hdfc", "icici", "axis", "rbi"},
	"upi_fraud":        {"upi", "gpay", "phonepe", "paytm", "payment", "cashback", "transfer"},
	"phishing":         {"link", "click", "http", "website", "portal", "login", "verify online"},
	"kyc_fraud":        {"kyc", "know your customer", "aadhaar", "pan", "document"},
	"job_scam":         {"job", "offer", "salary", "work from home", "registration fee", "hire"},
	"lottery_scam":     {"lottery", "won", "prize", "reward", "lucky", "winner"},
	"electricity_bill": {"electricity", "power", "bill", "disconnect", "meter"},
	"tax_fraud":        {"tax", "income tax", "it department", "refund", "demand notice"},
	"customs_parcel":   {"customs", "parcel", "delivery", "clearance", "package"},
	"tech_support":     {"virus", "hack", "computer", "windows", "microsoft", "support"},
	"loan_fraud":       {"loan", "approved", "pre-approved", "credit", "emi"},
	"insurance_fraud":  {"insurance", "policy", "claim", "premium"},
	"investment_fraud": {"invest", "crypto", "stock", "returns", "profit", "trading"},
}

// scamTypeOrder makes DetectScamType deterministic when hit counts tie.
var scamTypeOrder = []string{
	"bank_fraud", "upi_fraud", "phishing", "kyc_fraud", "job_scam",
	"lottery_scam", "electricity_bill", "tax_fraud", "customs_parcel",
	"tech_support", "loan_fraud", "insurance_fraud", "investment_fraud",
}

// DetectScamType classifies the conversation by keyword hits. It defaults to
// bank_fraud when nothing matches, the most common scam in the corpus.
func DetectScamType(texts []string) string {
	combined := strings.ToLower(strings.Join(texts, " "))

	best, bestHits := "bank_fraud", 0
	for _, label := range scamTypeOrder {
		hits := 0
		for _, kw := range scamTypeSignals[label] {
			if strings.Contains(combined, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = label, hits
		}
	}
	return best
}
