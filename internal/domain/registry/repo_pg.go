package registry

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

func (r *repoPG) ListDrugs(ctx context.Context) ([]*Drug, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name, atc_code FROM drugs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDrugs(rows)
}

func (r *repoPG) GetDrug(ctx context.Context, id int64) (*Drug, error) {
	var d Drug
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, atc_code FROM drugs WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.ATCCode)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) ListEvents(ctx context.Context, limit, offset int) ([]*DictionaryEvent, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dictionary_event`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, category, diagnosis, icd10, source
		FROM dictionary_event ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*DictionaryEvent
	for rows.Next() {
		var e DictionaryEvent
		if err := rows.Scan(&e.ID, &e.Category, &e.Diagnosis, &e.ICD10, &e.Source); err != nil {
			return nil, 0, err
		}
		events = append(events, &e)
	}
	return events, total, rows.Err()
}

func (r *repoPG) GetEvent(ctx context.Context, id int64) (*DictionaryEvent, error) {
	var e DictionaryEvent
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, category, diagnosis, icd10, source
		FROM dictionary_event WHERE id = $1`, id).
		Scan(&e.ID, &e.Category, &e.Diagnosis, &e.ICD10, &e.Source)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) RelevantDrugIDs(ctx context.Context, dictEventID int64) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT drug_id FROM drug_event_map WHERE dict_event_id = $1`, dictEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repoPG) RelevantDrugs(ctx context.Context, dictEventID int64) ([]*Drug, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.name, d.atc_code
		FROM drug_event_map dem
		JOIN drugs d ON d.id = dem.drug_id
		WHERE dem.dict_event_id = $1
		ORDER BY d.name`, dictEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDrugs(rows)
}

func collectDrugs(rows pgx.Rows) ([]*Drug, error) {
	var drugs []*Drug
	for rows.Next() {
		var d Drug
		if err := rows.Scan(&d.ID, &d.Name, &d.ATCCode); err != nil {
			return nil, err
		}
		drugs = append(drugs, &d)
	}
	return drugs, rows.Err()
}
