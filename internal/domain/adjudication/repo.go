package adjudication

import "context"

type Repository interface {
	// Upsert inserts or fully overwrites the row keyed on
	// (case_event_id, adjudicator_id), refreshing submitted_at. The stored
	// id and submitted_at are written back into a.
	Upsert(ctx context.Context, a *Adjudication) error

	GetByCaseAndAdjudicator(ctx context.Context, caseEventID, adjudicatorID int64) (*Adjudication, error)
	ListByCaseEvent(ctx context.Context, caseEventID int64) ([]*Adjudication, error)
	CountByCaseEvent(ctx context.Context, caseEventID int64) (int, error)

	// ReplaceIndexAttribution upserts the single index-role row for the
	// adjudication, removing any index row pointing at a different drug.
	ReplaceIndexAttribution(ctx context.Context, adjudicationID, drugID int64, attribution string) error
	// DeleteIndexAttribution removes the index-role row, if any.
	DeleteIndexAttribution(ctx context.Context, adjudicationID int64) error
	// ReplaceConcomitantAttributions deletes every concomitant-role row and
	// inserts one per drug id with attribution fixed to Yes.
	ReplaceConcomitantAttributions(ctx context.Context, adjudicationID int64, drugIDs []int64) error

	ListAttributions(ctx context.Context, adjudicationID int64) ([]*DrugAttribution, error)
}
