package consensus

import "context"

type Repository interface {
	// Upsert inserts or fully overwrites the row keyed on case_event_id,
	// refreshing decided_at. The stored id and decided_at are written back
	// into c.
	Upsert(ctx context.Context, c *Consensus) error
	GetByCaseEvent(ctx context.Context, caseEventID int64) (*Consensus, error)
}
