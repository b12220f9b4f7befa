package consensus

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trialsafe/adjudicate/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Upsert(ctx context.Context, c *Consensus) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consensus (
			case_event_id, method, decided_by, causality, severity,
			expectedness, suspected_drugs, rationale, decided_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (case_event_id) DO UPDATE SET
			method = EXCLUDED.method,
			decided_by = EXCLUDED.decided_by,
			causality = EXCLUDED.causality,
			severity = EXCLUDED.severity,
			expectedness = EXCLUDED.expectedness,
			suspected_drugs = EXCLUDED.suspected_drugs,
			rationale = EXCLUDED.rationale,
			decided_at = now()
		RETURNING id, decided_at`,
		c.CaseEventID, c.Method, c.DecidedBy, c.Causality, c.Severity,
		c.Expectedness, c.SuspectedDrugs, c.Rationale,
	).Scan(&c.ID, &c.DecidedAt)
}

func (r *repoPG) GetByCaseEvent(ctx context.Context, caseEventID int64) (*Consensus, error) {
	var c Consensus
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, case_event_id, method, decided_by, causality, severity,
		       expectedness, suspected_drugs, rationale, decided_at
		FROM consensus WHERE case_event_id = $1`, caseEventID).
		Scan(&c.ID, &c.CaseEventID, &c.Method, &c.DecidedBy, &c.Causality,
			&c.Severity, &c.Expectedness, &c.SuspectedDrugs, &c.Rationale, &c.DecidedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
