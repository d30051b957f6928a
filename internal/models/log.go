package models

import "time"

// Well-known log entry types. Caller-supplied entries may carry any type
// or none; these are the ones the backend emits itself.
const (
	LogReminderSent  = "REMINDER_SENT"
	LogEscalation    = "ESCALATION"
	LogLowSupply     = "LOW_SUPPLY"
	LogDoseTaken     = "DOSE_TAKEN"
	LogSupplyUpdated = "SUPPLY_UPDATED"
)

// LogEntry is one family activity record.
type LogEntry struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"familyId"`
	MemberID  string    `json:"memberId,omitempty"`
	Type      string    `json:"type,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
