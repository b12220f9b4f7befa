package registry

import "context"

type Repository interface {
	ListDrugs(ctx context.Context) ([]*Drug, error)
	GetDrug(ctx context.Context, id int64) (*Drug, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*DictionaryEvent, int, error)
	GetEvent(ctx context.Context, id int64) (*DictionaryEvent, error)

	// RelevantDrugIDs returns every drug mapped to the diagnosis template.
	// An unknown dictEventID yields an empty slice, not an error.
	RelevantDrugIDs(ctx context.Context, dictEventID int64) ([]int64, error)
	// RelevantDrugs is the display variant with drug names, for the
	// candidate list shown to reviewers.
	RelevantDrugs(ctx context.Context, dictEventID int64) ([]*Drug, error)
}
