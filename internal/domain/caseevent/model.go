package caseevent

import "time"

// Case event lifecycle states. Transitions are one-directional side effects
// of the adjudication and consensus engines; there is no direct setter.
const (
	StatusOpen      = "open"
	StatusSubmitted = "submitted"
	StatusConsensus = "consensus"
)

// CaseEvent maps to the case_event table: one candidate adverse-event
// occurrence for one patient, derived from a diagnosis template.
type CaseEvent struct {
	ID            int64      `db:"id" json:"id"`
	PatientID     int64      `db:"patient_id" json:"patient_id"`
	DictEventID   int64      `db:"dict_event_id" json:"dict_event_id"`
	Status        string     `db:"status" json:"status"`
	IsAbsent      bool       `db:"is_absent" json:"is_absent"`
	OnsetDatetime *time.Time `db:"onset_datetime" json:"onset_datetime,omitempty"`
	CreatedBy     *int64     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Summary is the dashboard row: a case event joined with its diagnosis
// template and adjudication progress.
type Summary struct {
	ID                 int64      `json:"id"`
	PatientID          int64      `json:"patient_id"`
	DictEventID        int64      `json:"dict_event_id"`
	Status             string     `json:"status"`
	IsAbsent           bool       `json:"is_absent"`
	OnsetDatetime      *time.Time `json:"onset_datetime,omitempty"`
	Category           string     `json:"category"`
	Diagnosis          string     `json:"diagnosis"`
	ICD10              *string    `json:"icd10,omitempty"`
	Source             string     `json:"source"`
	AdjudicationsCount int        `json:"adjudications_count"`
	HasConsensus       bool       `json:"has_consensus"`
}

// Detail is the single-event view with its diagnosis template fields.
type Detail struct {
	CaseEvent
	Category    string  `json:"category"`
	Diagnosis   string  `json:"diagnosis"`
	ICD10       *string `json:"icd10,omitempty"`
	Source      string  `json:"source"`
	PatientCode string  `json:"patient_code"`
}
