package patient

import "time"

// Patient maps to the patients table.
type Patient struct {
	ID                int64     `db:"id" json:"id"`
	PatientCode       string    `db:"patient_code" json:"patient_code"`
	RandomisationDate time.Time `db:"randomisation_date" json:"randomisation_date"`
	FollowupEndDate   time.Time `db:"followup_end_date" json:"followup_end_date"`
	IndexDrugID       int64     `db:"index_drug_id" json:"index_drug_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// ConcomitantDrug maps to the patient_concomitant_drug table: one drug the
// patient is taking alongside the index drug.
type ConcomitantDrug struct {
	PatientID int64      `db:"patient_id" json:"patient_id"`
	DrugID    int64      `db:"drug_id" json:"drug_id"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	StopDate  *time.Time `db:"stop_date" json:"stop_date,omitempty"`
}

// ConcomitantDetail is the display variant joined with the drug name.
type ConcomitantDetail struct {
	DrugID    int64      `json:"drug_id"`
	DrugName  string     `json:"drug_name"`
	StartDate *time.Time `json:"start_date,omitempty"`
	StopDate  *time.Time `json:"stop_date,omitempty"`
}
