package patient

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

const patientCols = `id, patient_code, randomisation_date, followup_end_date, index_drug_id, created_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (patient_code, randomisation_date, followup_end_date, index_drug_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.PatientCode, p.RandomisationDate, p.FollowupEndDate, p.IndexDrugID,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	var p Patient
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.PatientCode, &p.RandomisationDate, &p.FollowupEndDate, &p.IndexDrugID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) PatientExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.PatientCode, &p.RandomisationDate, &p.FollowupEndDate, &p.IndexDrugID, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, rows.Err()
}

// ReplaceConcomitants syncs the stored exposure list to rows: drugs absent
// from rows are removed, the rest inserted or updated with their dates.
// Callers wrap this in a transaction.
func (r *repoPG) ReplaceConcomitants(ctx context.Context, patientID int64, rows []*ConcomitantDrug) (int, int, error) {
	keep := make([]int64, 0, len(rows))
	for _, row := range rows {
		keep = append(keep, row.DrugID)
	}

	var tag pgconn.CommandTag
	var err error
	if len(keep) == 0 {
		tag, err = r.conn(ctx).Exec(ctx,
			`DELETE FROM patient_concomitant_drug WHERE patient_id = $1`, patientID)
	} else {
		tag, err = r.conn(ctx).Exec(ctx,
			`DELETE FROM patient_concomitant_drug WHERE patient_id = $1 AND drug_id <> ALL($2)`,
			patientID, keep)
	}
	if err != nil {
		return 0, 0, err
	}
	deleted := int(tag.RowsAffected())

	inserted := 0
	for _, row := range rows {
		tag, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO patient_concomitant_drug (patient_id, drug_id, start_date, stop_date)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (patient_id, drug_id)
			DO UPDATE SET start_date = EXCLUDED.start_date, stop_date = EXCLUDED.stop_date`,
			patientID, row.DrugID, row.StartDate, row.StopDate)
		if err != nil {
			return 0, 0, err
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}
	return inserted, deleted, nil
}

func (r *repoPG) ListConcomitants(ctx context.Context, patientID int64) ([]*ConcomitantDetail, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT pcd.drug_id, d.name, pcd.start_date, pcd.stop_date
		FROM patient_concomitant_drug pcd
		JOIN drugs d ON d.id = pcd.drug_id
		WHERE pcd.patient_id = $1
		ORDER BY d.name`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*ConcomitantDetail
	for rows.Next() {
		var d ConcomitantDetail
		if err := rows.Scan(&d.DrugID, &d.DrugName, &d.StartDate, &d.StopDate); err != nil {
			return nil, err
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

func (r *repoPG) ConcomitantDrugIDs(ctx context.Context, patientID int64) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT drug_id FROM patient_concomitant_drug WHERE patient_id = $1`, patientID)
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
