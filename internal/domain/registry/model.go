package registry

// Drug maps to the drugs table.
type Drug struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	ATCCode *string `db:"atc_code" json:"atc_code,omitempty"`
}

// DictionaryEvent maps to the dictionary_event table: one diagnosis template
// from which case events are generated.
type DictionaryEvent struct {
	ID        int64   `db:"id" json:"id"`
	Category  string  `db:"category" json:"category"`
	Diagnosis string  `db:"diagnosis" json:"diagnosis"`
	ICD10     *string `db:"icd10" json:"icd10,omitempty"`
	Source    string  `db:"source" json:"source"`
}
