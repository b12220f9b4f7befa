package registry

import "context"

// MappingSource reads the static drug↔event mapping.
type MappingSource interface {
	RelevantDrugIDs(ctx context.Context, dictEventID int64) ([]int64, error)
}

// ExposureSource reads a patient's recorded concomitant drug exposure,
// index drug excluded.
type ExposureSource interface {
	ConcomitantDrugIDs(ctx context.Context, patientID int64) ([]int64, error)
}

// Filter is the drug-relevance read model: which drugs are pharmacologically
// associated with a diagnosis template, intersected with what the patient is
// actually taking. It is pure read; unknown ids yield empty sets.
type Filter struct {
	mappings MappingSource
	exposure ExposureSource
}

func NewFilter(mappings MappingSource, exposure ExposureSource) *Filter {
	return &Filter{mappings: mappings, exposure: exposure}
}

// RelevantDrugIDs returns the set of drugs mapped to the diagnosis template.
func (f *Filter) RelevantDrugIDs(ctx context.Context, dictEventID int64) (map[int64]bool, error) {
	ids, err := f.mappings.RelevantDrugIDs(ctx, dictEventID)
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

// PatientConcomitantDrugIDs returns the set of concomitant drugs the patient
// is recorded as taking.
func (f *Filter) PatientConcomitantDrugIDs(ctx context.Context, patientID int64) (map[int64]bool, error) {
	ids, err := f.exposure.ConcomitantDrugIDs(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

// IsIndexRelevant reports whether the index drug is mapped to the diagnosis
// template.
func (f *Filter) IsIndexRelevant(ctx context.Context, dictEventID, indexDrugID int64) (bool, error) {
	relevant, err := f.RelevantDrugIDs(ctx, dictEventID)
	if err != nil {
		return false, err
	}
	return relevant[indexDrugID], nil
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
