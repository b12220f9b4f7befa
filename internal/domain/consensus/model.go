package consensus

import "time"

// Consensus methods.
const (
	MethodMajority    = "majority"
	MethodArbitration = "arbitration"
)

// Defaults substituted for a field with no majority. Only the majority-less
// field is defaulted; fields with a clear majority keep their value.
const (
	DefaultCausality    = "Unable"
	DefaultSeverity     = "Moderate"
	DefaultExpectedness = "Not_Assessable"
)

// Consensus is the panel's finalized decision for one case event, at most
// one row per case event.
type Consensus struct {
	ID             int64     `db:"id" json:"id"`
	CaseEventID    int64     `db:"case_event_id" json:"case_event_id"`
	Method         string    `db:"method" json:"method"`
	DecidedBy      int64     `db:"decided_by" json:"decided_by"`
	Causality      string    `db:"causality" json:"causality"`
	Severity       string    `db:"severity" json:"severity"`
	Expectedness   string    `db:"expectedness" json:"expectedness"`
	SuspectedDrugs []int64   `db:"suspected_drugs" json:"suspected_drugs"`
	Rationale      string    `db:"rationale" json:"rationale"`
	DecidedAt      time.Time `db:"decided_at" json:"decided_at"`
}

// ComputeInput carries the invocation-specific fields; everything else is
// derived from the stored adjudications.
type ComputeInput struct {
	CaseEventID int64  `json:"case_event_id"`
	Rationale   string `json:"rationale"`
}

// ComputeResult reports how the decision was reached.
type ComputeResult struct {
	Method       string  `json:"method"`
	Causality    string  `json:"causality"`
	Severity     string  `json:"severity"`
	Expectedness string  `json:"expectedness"`
	Suspected    []int64 `json:"suspected_drugs"`
}
