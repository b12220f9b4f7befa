package caseevent

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

const ceCols = `id, patient_id, dict_event_id, status, is_absent, onset_datetime, created_by, created_at`

func (r *repoPG) GetByID(ctx context.Context, id int64) (*CaseEvent, error) {
	var ce CaseEvent
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+ceCols+` FROM case_event WHERE id = $1`, id).
		Scan(&ce.ID, &ce.PatientID, &ce.DictEventID, &ce.Status, &ce.IsAbsent,
			&ce.OnsetDatetime, &ce.CreatedBy, &ce.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ce, nil
}

func (r *repoPG) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	var d Detail
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT ce.id, ce.patient_id, ce.dict_event_id, ce.status, ce.is_absent,
		       ce.onset_datetime, ce.created_by, ce.created_at,
		       de.category, de.diagnosis, de.icd10, de.source,
		       p.patient_code
		FROM case_event ce
		JOIN dictionary_event de ON de.id = ce.dict_event_id
		JOIN patients p ON p.id = ce.patient_id
		WHERE ce.id = $1`, id).
		Scan(&d.ID, &d.PatientID, &d.DictEventID, &d.Status, &d.IsAbsent,
			&d.OnsetDatetime, &d.CreatedBy, &d.CreatedAt,
			&d.Category, &d.Diagnosis, &d.ICD10, &d.Source,
			&d.PatientCode)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Summary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT ce.id, ce.patient_id, ce.dict_event_id, ce.status, ce.is_absent,
		       ce.onset_datetime,
		       de.category, de.diagnosis, de.icd10, de.source,
		       COALESCE(adj.cnt, 0) AS adjudications_count,
		       ce.status = 'consensus' AS has_consensus
		FROM case_event ce
		JOIN dictionary_event de ON de.id = ce.dict_event_id
		LEFT JOIN (
			SELECT case_event_id, COUNT(*) AS cnt
			FROM adjudication
			GROUP BY case_event_id
		) adj ON adj.case_event_id = ce.id
		WHERE ce.patient_id = $1
		ORDER BY ce.id DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.PatientID, &s.DictEventID, &s.Status, &s.IsAbsent,
			&s.OnsetDatetime,
			&s.Category, &s.Diagnosis, &s.ICD10, &s.Source,
			&s.AdjudicationsCount, &s.HasConsensus); err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// GenerateForPatient inserts only events mapped to the patient's drugs
// (index drug UNION concomitants), one row per distinct dictionary event,
// skipping pairs that already have a case event.
func (r *repoPG) GenerateForPatient(ctx context.Context, patientID int64, createdBy *int64) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO case_event (patient_id, dict_event_id, status, created_by)
		SELECT $1, dem.dict_event_id, 'open', $2
		FROM drug_event_map dem
		JOIN (
			SELECT p.index_drug_id AS drug_id FROM patients p WHERE p.id = $1
			UNION
			SELECT pcd.drug_id FROM patient_concomitant_drug pcd WHERE pcd.patient_id = $1
		) pd ON pd.drug_id = dem.drug_id
		LEFT JOIN case_event ce
			ON ce.patient_id = $1 AND ce.dict_event_id = dem.dict_event_id
		WHERE ce.id IS NULL
		GROUP BY dem.dict_event_id
		ON CONFLICT (patient_id, dict_event_id) DO NOTHING`,
		patientID, createdBy)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) MarkSubmittedIfOpen(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE case_event SET status = 'submitted' WHERE id = $1 AND status = 'open'`, id)
	return err
}

func (r *repoPG) MarkConsensus(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE case_event SET status = 'consensus' WHERE id = $1`, id)
	return err
}

func (r *repoPG) SetAbsent(ctx context.Context, id int64, absent bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE case_event SET is_absent = $2 WHERE id = $1`, id, absent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
