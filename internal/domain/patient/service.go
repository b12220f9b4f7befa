package patient

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/trialsafe/adjudicate/internal/platform/apperr"
	"github.com/trialsafe/adjudicate/internal/platform/db"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo Repository
	inTx db.TxRunner
}

func NewService(repo Repository, inTx db.TxRunner) *Service {
	return &Service{repo: repo, inTx: inTx}
}

// CreateInput is the registration payload for a trial patient.
type CreateInput struct {
	PatientCode       string `json:"patient_code"`
	RandomisationDate string `json:"randomisation_date"`
	IndexDrugID       int64  `json:"index_drug_id"`
}

// CreatePatient registers a patient. Follow-up ends three months after
// randomisation.
func (s *Service) CreatePatient(ctx context.Context, in CreateInput) (*Patient, error) {
	if in.PatientCode == "" {
		return nil, apperr.Validation("patient_code", "patient_code is required")
	}
	if in.IndexDrugID <= 0 {
		return nil, apperr.Validation("index_drug_id", "index_drug_id is required")
	}
	randomised, err := time.Parse(dateLayout, in.RandomisationDate)
	if err != nil {
		return nil, apperr.Validation("randomisation_date", "randomisation_date must be YYYY-MM-DD")
	}

	p := &Patient{
		PatientCode:       in.PatientCode,
		RandomisationDate: randomised,
		FollowupEndDate:   randomised.AddDate(0, 3, 0),
		IndexDrugID:       in.IndexDrugID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Storage(err)
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("patient %d not found", id)
		}
		return nil, apperr.Storage(err)
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	patients, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return patients, total, nil
}

// ConcomitantInput is one entry of the exposure sync payload.
type ConcomitantInput struct {
	DrugID    int64  `json:"drug_id"`
	StartDate string `json:"start_date"`
	StopDate  string `json:"stop_date"`
}

// SyncResult reports what a concomitant sync changed.
type SyncResult struct {
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
}

// SyncConcomitants replaces the patient's exposure list. The index drug and
// non-positive drug ids are silently excluded; unparseable dates become null.
func (s *Service) SyncConcomitants(ctx context.Context, patientID int64, inputs []ConcomitantInput) (*SyncResult, error) {
	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("patient %d not found", patientID)
		}
		return nil, apperr.Storage(err)
	}

	seen := make(map[int64]bool, len(inputs))
	rows := make([]*ConcomitantDrug, 0, len(inputs))
	for _, in := range inputs {
		if in.DrugID <= 0 || in.DrugID == p.IndexDrugID || seen[in.DrugID] {
			continue
		}
		seen[in.DrugID] = true
		rows = append(rows, &ConcomitantDrug{
			PatientID: patientID,
			DrugID:    in.DrugID,
			StartDate: parseDate(in.StartDate),
			StopDate:  parseDate(in.StopDate),
		})
	}

	result := &SyncResult{}
	err = s.inTx(ctx, func(ctx context.Context) error {
		inserted, deleted, err := s.repo.ReplaceConcomitants(ctx, patientID, rows)
		if err != nil {
			return err
		}
		result.Inserted = inserted
		result.Deleted = deleted
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return result, nil
}

func (s *Service) ListConcomitants(ctx context.Context, patientID int64) ([]*ConcomitantDetail, error) {
	details, err := s.repo.ListConcomitants(ctx, patientID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return details, nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
