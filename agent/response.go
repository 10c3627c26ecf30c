package agent

import (
	"encoding/json"
	"strings"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/internal/util"
)

// intelPayload is the intelligence block of the model's JSON response. Field
// names mirror the report wire format so the model sees one consistent shape.
type intelPayload struct {
	PhishingLinks  []string `json:"phishingLinks,omitempty"`
	BankAccounts   []string `json:"bankAccounts,omitempty"`
	UPIIDs         []string `json:"upiIds,omitempty"`
	PhoneNumbers   []string `json:"phoneNumbers,omitempty"`
	ReferenceIDs   []string `json:"referenceIds,omitempty"`
	EmailAddresses []string `json:"emailAddresses,omitempty"`
}

// structuredResponse is the JSON contract the structured tier asks the model
// to honor. The description tags surface in the schema embedded into the
// instruction.
type structuredResponse struct {
	Reply        string       `json:"reply" description:"The in-character reply to send to the scammer, 1-3 sentences"`
	ScamDetected bool         `json:"scamDetected" description:"Whether this conversation is a scam attempt"`
	ScamType     string       `json:"scamType,omitempty" description:"Scam classification label such as bank_fraud or upi_fraud"`
	Confidence   float64      `json:"confidence" description:"Detection confidence between 0 and 1"`
	Intelligence intelPayload `json:"extractedIntelligence,omitempty" description:"Intelligence values spotted in the scammer's messages"`
	Notes        string       `json:"notes,omitempty" description:"One-line analyst summary of the scammer's tactics"`
}

// responseSchemaJSON renders the JSON schema of the response contract once at
// package init; it is embedded verbatim into every structured instruction.
var responseSchemaJSON = func() string {
	b, err := json.MarshalIndent(util.CreateSchema(structuredResponse{}), "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}()

// validate reports whether the parsed response is usable and normalizes it in
// place: confidence is clamped to [0,1] and the reply is trimmed. A reply
// under 10 characters is rejected because truncated model output tends to
// surface as near-empty replies.
func (sr *structuredResponse) validate() bool {
	sr.Reply = strings.TrimSpace(sr.Reply)
	if len(sr.Reply) < 10 {
		return false
	}
	if sr.Confidence < 0 {
		sr.Confidence = 0
	}
	if sr.Confidence > 1 {
		sr.Confidence = 1
	}
	return true
}

// intel converts the payload into a normalized record.
func (sr *structuredResponse) intel() core.IntelligenceRecord {
	var rec core.IntelligenceRecord
	rec.Add(core.CategoryPhishingLinks, sr.Intelligence.PhishingLinks...)
	rec.Add(core.CategoryBankAccounts, sr.Intelligence.BankAccounts...)
	rec.Add(core.CategoryPaymentHandles, sr.Intelligence.UPIIDs...)
	rec.Add(core.CategoryPhoneNumbers, sr.Intelligence.PhoneNumbers...)
	rec.Add(core.CategoryReferenceIDs, sr.Intelligence.ReferenceIDs...)
	rec.Add(core.CategoryEmailAddresses, sr.Intelligence.EmailAddresses...)
	return rec
}
