package adjudication

import "time"

// Enumerated judgment values. Submissions carrying anything else are
// rejected, never coerced.
const (
	CausalityDefinite  = "Definite"
	CausalityProbable  = "Probable"
	CausalityPossible  = "Possible"
	CausalityUnrelated = "Unrelated"
	CausalityUnable    = "Unable"

	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"

	ExpectednessExpected      = "Expected"
	ExpectednessUnexpected    = "Unexpected"
	ExpectednessNotAssessable = "Not_Assessable"

	AttributionYes           = "Yes"
	AttributionNo            = "No"
	AttributionIndeterminate = "Indeterminate"

	FrameworkWHOUMC  = "WHO-UMC"
	FrameworkNaranjo = "Naranjo"
)

// Drug attribution roles.
const (
	RoleIndex       = "index"
	RoleConcomitant = "concomitant"
)

// Adjudication is one reviewer's judgment for one case event. At most one
// row exists per (case_event_id, adjudicator_id); resubmission overwrites it.
type Adjudication struct {
	ID                    int64                  `db:"id" json:"id"`
	CaseEventID           int64                  `db:"case_event_id" json:"case_event_id"`
	AdjudicatorID         int64                  `db:"adjudicator_id" json:"adjudicator_id"`
	Framework             string                 `db:"framework" json:"framework"`
	Causality             string                 `db:"causality" json:"causality"`
	Severity              string                 `db:"severity" json:"severity"`
	Expectedness          string                 `db:"expectedness" json:"expectedness"`
	IndexAttribution      string                 `db:"index_attribution" json:"index_attribution"`
	SuspectedConcomitants []int64                `db:"suspected_concomitants" json:"suspected_concomitants"`
	Rationale             string                 `db:"rationale" json:"rationale"`
	MissingInfo           []string               `db:"missing_info" json:"missing_info"`
	Responses             map[string]interface{} `db:"responses" json:"responses,omitempty"`
	AutoScore             *int                   `db:"auto_score" json:"auto_score,omitempty"`
	SubmittedAt           time.Time              `db:"submitted_at" json:"submitted_at"`
}

// DrugAttribution is the per-adjudication breakdown of implicated drugs.
// The index-role row exists only while the index drug is mapped to the case
// event's diagnosis; concomitant rows mirror the filtered suspect list.
type DrugAttribution struct {
	AdjudicationID int64  `db:"adjudication_id" json:"adjudication_id"`
	DrugID         int64  `db:"drug_id" json:"drug_id"`
	Role           string `db:"role" json:"role"`
	Attribution    string `db:"attribution" json:"attribution"`
}

// SubmitInput is the wire payload for a submission. The adjudicator comes
// from the authenticated caller, never from the body.
type SubmitInput struct {
	CaseEventID           int64                  `json:"case_event_id" validate:"required,gt=0"`
	Framework             string                 `json:"framework" validate:"omitempty,oneof=WHO-UMC Naranjo"`
	Causality             string                 `json:"causality" validate:"required,oneof=Definite Probable Possible Unrelated Unable"`
	Severity              string                 `json:"severity" validate:"required,oneof=Mild Moderate Severe"`
	Expectedness          string                 `json:"expectedness" validate:"required,oneof=Expected Unexpected Not_Assessable"`
	IndexAttribution      string                 `json:"index_attribution" validate:"required,oneof=Yes No Indeterminate"`
	SuspectedConcomitants []int64                `json:"suspected_concomitants"`
	Rationale             string                 `json:"rationale"`
	MissingInfo           []string               `json:"missing_info"`
	Responses             map[string]interface{} `json:"responses,omitempty"`
	AutoScore             *int                   `json:"auto_score,omitempty"`
}

// SubmitResult reports the stored adjudication and the case event status
// after threshold evaluation.
type SubmitResult struct {
	AdjudicationID  int64  `json:"adjudication_id"`
	CaseEventStatus string `json:"case_event_status"`
}
