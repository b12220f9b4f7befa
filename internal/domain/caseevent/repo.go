package caseevent

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (*CaseEvent, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Summary, error)

	// GenerateForPatient inserts one open case event per dictionary event
	// mapped to any of the patient's drugs (index plus concomitants),
	// skipping pairs that already exist. Returns the inserted count.
	GenerateForPatient(ctx context.Context, patientID int64, createdBy *int64) (int, error)

	// MarkSubmittedIfOpen advances open → submitted; it is a no-op for case
	// events already at submitted or consensus, keeping status monotonic.
	MarkSubmittedIfOpen(ctx context.Context, id int64) error
	// MarkConsensus advances the case event to consensus.
	MarkConsensus(ctx context.Context, id int64) error

	SetAbsent(ctx context.Context, id int64, absent bool) error
}
