package adjudication

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

const adjCols = `id, case_event_id, adjudicator_id, framework, causality, severity,
	expectedness, index_attribution, suspected_concomitants, rationale,
	missing_info, responses, auto_score, submitted_at`

func (r *repoPG) Upsert(ctx context.Context, a *Adjudication) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO adjudication (
			case_event_id, adjudicator_id, framework, causality, severity,
			expectedness, index_attribution, suspected_concomitants, rationale,
			missing_info, responses, auto_score, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (case_event_id, adjudicator_id) DO UPDATE SET
			framework = EXCLUDED.framework,
			causality = EXCLUDED.causality,
			severity = EXCLUDED.severity,
			expectedness = EXCLUDED.expectedness,
			index_attribution = EXCLUDED.index_attribution,
			suspected_concomitants = EXCLUDED.suspected_concomitants,
			rationale = EXCLUDED.rationale,
			missing_info = EXCLUDED.missing_info,
			responses = EXCLUDED.responses,
			auto_score = EXCLUDED.auto_score,
			submitted_at = now()
		RETURNING id, submitted_at`,
		a.CaseEventID, a.AdjudicatorID, a.Framework, a.Causality, a.Severity,
		a.Expectedness, a.IndexAttribution, a.SuspectedConcomitants, a.Rationale,
		a.MissingInfo, a.Responses, a.AutoScore,
	).Scan(&a.ID, &a.SubmittedAt)
}

func (r *repoPG) GetByCaseAndAdjudicator(ctx context.Context, caseEventID, adjudicatorID int64) (*Adjudication, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+adjCols+` FROM adjudication WHERE case_event_id = $1 AND adjudicator_id = $2`,
		caseEventID, adjudicatorID)
	return scanAdjudication(row)
}

func (r *repoPG) ListByCaseEvent(ctx context.Context, caseEventID int64) ([]*Adjudication, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+adjCols+` FROM adjudication WHERE case_event_id = $1 ORDER BY submitted_at`,
		caseEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjudications []*Adjudication
	for rows.Next() {
		a, err := scanAdjudication(rows)
		if err != nil {
			return nil, err
		}
		adjudications = append(adjudications, a)
	}
	return adjudications, rows.Err()
}

func (r *repoPG) CountByCaseEvent(ctx context.Context, caseEventID int64) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM adjudication WHERE case_event_id = $1`, caseEventID).Scan(&count)
	return count, err
}

func scanAdjudication(row pgx.Row) (*Adjudication, error) {
	var a Adjudication
	err := row.Scan(&a.ID, &a.CaseEventID, &a.AdjudicatorID, &a.Framework,
		&a.Causality, &a.Severity, &a.Expectedness, &a.IndexAttribution,
		&a.SuspectedConcomitants, &a.Rationale, &a.MissingInfo,
		&a.Responses, &a.AutoScore, &a.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ReplaceIndexAttribution keeps a single index-role row per adjudication.
// A stale row pointing at a previous index drug is removed first so the
// (adjudication_id, drug_id, role) constraint never sees two index rows.
func (r *repoPG) ReplaceIndexAttribution(ctx context.Context, adjudicationID, drugID int64, attribution string) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM adjudication_drug WHERE adjudication_id = $1 AND role = 'index' AND drug_id <> $2`,
		adjudicationID, drugID); err != nil {
		return err
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO adjudication_drug (adjudication_id, drug_id, role, attribution)
		VALUES ($1, $2, 'index', $3)
		ON CONFLICT (adjudication_id, drug_id, role)
		DO UPDATE SET attribution = EXCLUDED.attribution`,
		adjudicationID, drugID, attribution)
	return err
}

func (r *repoPG) DeleteIndexAttribution(ctx context.Context, adjudicationID int64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM adjudication_drug WHERE adjudication_id = $1 AND role = 'index'`,
		adjudicationID)
	return err
}

func (r *repoPG) ReplaceConcomitantAttributions(ctx context.Context, adjudicationID int64, drugIDs []int64) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM adjudication_drug WHERE adjudication_id = $1 AND role = 'concomitant'`,
		adjudicationID); err != nil {
		return err
	}
	for _, drugID := range drugIDs {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO adjudication_drug (adjudication_id, drug_id, role, attribution)
			VALUES ($1, $2, 'concomitant', 'Yes')`,
			adjudicationID, drugID); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListAttributions(ctx context.Context, adjudicationID int64) ([]*DrugAttribution, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT adjudication_id, drug_id, role, attribution
		FROM adjudication_drug
		WHERE adjudication_id = $1
		ORDER BY role, drug_id`, adjudicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attributions []*DrugAttribution
	for rows.Next() {
		var da DrugAttribution
		if err := rows.Scan(&da.AdjudicationID, &da.DrugID, &da.Role, &da.Attribution); err != nil {
			return nil, err
		}
		attributions = append(attributions, &da)
	}
	return attributions, rows.Err()
}
