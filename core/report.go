package core

import "context"

// Report is the final once-per-session intelligence summary delivered to an
// external sink. Field names match the evaluator's callback schema.
type Report struct {
	SessionID          string             `json:"sessionId"`
	Status             string             `json:"status"`
	ScamDetected       bool               `json:"scamDetected"`
	ScamType           string             `json:"scamType"`
	Confidence         float64            `json:"confidenceLevel"`
	Intel              IntelligenceRecord `json:"extractedIntelligence"`
	TotalTurns         int                `json:"totalTurns"`
	TotalMessages      int                `json:"totalMessagesExchanged"`
	EngagementDuration int                `json:"engagementDurationSeconds"`
	Notes              string             `json:"agentNotes"`
}

// ReportSink delivers a final report to an external destination. Delivery is
// fire-and-forget from the engine's point of view: a returned error is logged
// by the caller and never affects the turn's reply or the report-sent flag.
type ReportSink interface {
	Deliver(ctx context.Context, report Report) error
}
