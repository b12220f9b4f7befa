package caseevent

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/trialsafe/adjudicate/internal/platform/apperr"
)

// PatientSource is the slice of the patient repository the lifecycle needs.
type PatientSource interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientSource
}

func NewService(repo Repository, patients PatientSource) *Service {
	return &Service{repo: repo, patients: patients}
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("case event %d not found", id)
		}
		return nil, apperr.Storage(err)
	}
	return d, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]*Summary, error) {
	summaries, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if summaries == nil {
		summaries = []*Summary{}
	}
	return summaries, nil
}

// Generate creates open case events for every dictionary event mapped to
// any of the patient's drugs. Pairs that already exist are left untouched,
// so repeated generation is safe.
func (s *Service) Generate(ctx context.Context, patientID int64, createdBy *int64) (int, error) {
	exists, err := s.patients.PatientExists(ctx, patientID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	if !exists {
		return 0, apperr.NotFound("patient %d not found", patientID)
	}

	created, err := s.repo.GenerateForPatient(ctx, patientID, createdBy)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	log.Info().
		Int64("patient_id", patientID).
		Int("created", created).
		Msg("case events generated")
	return created, nil
}

func (s *Service) MarkAbsent(ctx context.Context, id int64, absent bool) error {
	if err := s.repo.SetAbsent(ctx, id, absent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("case event %d not found", id)
		}
		return apperr.Storage(err)
	}
	return nil
}
