package adjudication

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/trialsafe/adjudicate/internal/domain/caseevent"
	"github.com/trialsafe/adjudicate/internal/domain/patient"
	"github.com/trialsafe/adjudicate/internal/platform/apperr"
	"github.com/trialsafe/adjudicate/internal/platform/db"
)

// CaseEventSource is the slice of the case-event repository the engine needs.
type CaseEventSource interface {
	GetByID(ctx context.Context, id int64) (*caseevent.CaseEvent, error)
	MarkSubmittedIfOpen(ctx context.Context, id int64) error
}

// PatientSource resolves the case event's patient to obtain the index drug.
type PatientSource interface {
	GetByID(ctx context.Context, id int64) (*patient.Patient, error)
}

// RelevanceSource is the drug-relevance read model.
type RelevanceSource interface {
	RelevantDrugIDs(ctx context.Context, dictEventID int64) (map[int64]bool, error)
	PatientConcomitantDrugIDs(ctx context.Context, patientID int64) (map[int64]bool, error)
}

type Service struct {
	repo       Repository
	caseEvents CaseEventSource
	patients   PatientSource
	relevance  RelevanceSource
	inTx       db.TxRunner
}

func NewService(repo Repository, caseEvents CaseEventSource, patients PatientSource, relevance RelevanceSource, inTx db.TxRunner) *Service {
	return &Service{
		repo:       repo,
		caseEvents: caseEvents,
		patients:   patients,
		relevance:  relevance,
		inTx:       inTx,
	}
}

// Submit validates, filters and stores one reviewer's judgment. All writes
// run in one transaction: the adjudication row, its attribution rows and the
// threshold-driven status transition either all land or none do.
func (s *Service) Submit(ctx context.Context, adjudicatorID int64, in SubmitInput) (*SubmitResult, error) {
	if err := validateSubmit(&in); err != nil {
		return nil, err
	}
	if in.Framework == "" {
		in.Framework = FrameworkWHOUMC
	}

	ce, err := s.caseEvents.GetByID(ctx, in.CaseEventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("case event %d not found", in.CaseEventID)
		}
		return nil, apperr.Storage(err)
	}

	relevant, err := s.relevance.RelevantDrugIDs(ctx, ce.DictEventID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	patientConcomitants, err := s.relevance.PatientConcomitantDrugIDs(ctx, ce.PatientID)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	// A case event whose patient row has gone missing is still adjudicable;
	// it just cannot carry an index attribution.
	var indexDrugID int64
	hasIndexDrug := false
	p, err := s.patients.GetByID(ctx, ce.PatientID)
	switch {
	case err == nil:
		indexDrugID = p.IndexDrugID
		hasIndexDrug = true
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, apperr.Storage(err)
	}

	suspected := filterSuspects(in.SuspectedConcomitants, relevant, patientConcomitants)

	adj := &Adjudication{
		CaseEventID:           in.CaseEventID,
		AdjudicatorID:         adjudicatorID,
		Framework:             in.Framework,
		Causality:             in.Causality,
		Severity:              in.Severity,
		Expectedness:          in.Expectedness,
		IndexAttribution:      in.IndexAttribution,
		SuspectedConcomitants: suspected,
		Rationale:             in.Rationale,
		MissingInfo:           in.MissingInfo,
		Responses:             in.Responses,
		AutoScore:             in.AutoScore,
	}
	if adj.MissingInfo == nil {
		adj.MissingInfo = []string{}
	}

	var count int
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Upsert(ctx, adj); err != nil {
			return err
		}

		if hasIndexDrug && relevant[indexDrugID] {
			if err := s.repo.ReplaceIndexAttribution(ctx, adj.ID, indexDrugID, in.IndexAttribution); err != nil {
				return err
			}
		} else {
			if err := s.repo.DeleteIndexAttribution(ctx, adj.ID); err != nil {
				return err
			}
		}

		if err := s.repo.ReplaceConcomitantAttributions(ctx, adj.ID, suspected); err != nil {
			return err
		}

		count, err = s.repo.CountByCaseEvent(ctx, in.CaseEventID)
		if err != nil {
			return err
		}
		if count >= SubmissionThreshold {
			return s.caseEvents.MarkSubmittedIfOpen(ctx, in.CaseEventID)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).
			Int64("case_event_id", in.CaseEventID).
			Int64("adjudicator_id", adjudicatorID).
			Msg("adjudication submit failed")
		return nil, apperr.Storage(err)
	}

	status := ce.Status
	if count >= SubmissionThreshold && status == caseevent.StatusOpen {
		status = caseevent.StatusSubmitted
	}
	return &SubmitResult{AdjudicationID: adj.ID, CaseEventStatus: status}, nil
}

// SubmissionThreshold is the adjudication count at which a case event
// advances from open to submitted.
const SubmissionThreshold = 3

// Get returns the caller's own adjudication for a case event, or nil when
// none has been submitted yet.
func (s *Service) Get(ctx context.Context, caseEventID, adjudicatorID int64) (*Adjudication, error) {
	adj, err := s.repo.GetByCaseAndAdjudicator(ctx, caseEventID, adjudicatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage(err)
	}
	return adj, nil
}

// ListByCaseEvent returns every reviewer's adjudication for the panel view.
func (s *Service) ListByCaseEvent(ctx context.Context, caseEventID int64) ([]*Adjudication, error) {
	adjudications, err := s.repo.ListByCaseEvent(ctx, caseEventID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if adjudications == nil {
		adjudications = []*Adjudication{}
	}
	return adjudications, nil
}

// filterSuspects normalizes the submitted ids (positive, deduplicated) and
// keeps only those both mapped to the diagnosis and recorded as taken by the
// patient. Everything else is dropped without error.
func filterSuspects(submitted []int64, relevant, patientConcomitants map[int64]bool) []int64 {
	seen := make(map[int64]bool, len(submitted))
	kept := make([]int64, 0, len(submitted))
	for _, id := range submitted {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		if relevant[id] && patientConcomitants[id] {
			kept = append(kept, id)
		}
	}
	return kept
}
