// internal/models/audit.go
package models

import "time"

// TimestampLayout is the wall-clock format stored in the audit log
const TimestampLayout = "2006-01-02 15:04:05"

// Outcome is the terminal result of one creation attempt
type Outcome string

const (
	OutcomeApproved Outcome = "Approved"
	OutcomeBlocked  Outcome = "Blocked"
	OutcomeError    Outcome = "Error"
)

// Valid reports whether o is one of the known outcomes
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeApproved, OutcomeBlocked, OutcomeError:
		return true
	}
	return false
}

// AuditRecord is one immutable entry of the creation history.
// JSON keys match the historial.json format.
type AuditRecord struct {
	Timestamp string  `json:"fecha"`
	Prompt    string  `json:"prompt"`
	Outcome   Outcome `json:"estado"`
	Detail    string  `json:"detalle,omitempty"`
}

// NewAuditRecord stamps a record with the given wall-clock time
func NewAuditRecord(at time.Time, prompt string, outcome Outcome, detail string) AuditRecord {
	return AuditRecord{
		Timestamp: at.Format(TimestampLayout),
		Prompt:    prompt,
		Outcome:   outcome,
		Detail:    detail,
	}
}
