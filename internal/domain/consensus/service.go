package consensus

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/trialsafe/adjudicate/internal/domain/adjudication"
	"github.com/trialsafe/adjudicate/internal/platform/apperr"
	"github.com/trialsafe/adjudicate/internal/platform/db"
)

// AdjudicationSource reads the full adjudication set for a case event.
type AdjudicationSource interface {
	ListByCaseEvent(ctx context.Context, caseEventID int64) ([]*adjudication.Adjudication, error)
}

// CaseEventSource is the slice of the case-event repository the engine
// needs: the consensus transition.
type CaseEventSource interface {
	MarkConsensus(ctx context.Context, id int64) error
}

type Service struct {
	repo          Repository
	adjudications AdjudicationSource
	caseEvents    CaseEventSource
	inTx          db.TxRunner
}

func NewService(repo Repository, adjudications AdjudicationSource, caseEvents CaseEventSource, inTx db.TxRunner) *Service {
	return &Service{repo: repo, adjudications: adjudications, caseEvents: caseEvents, inTx: inTx}
}

// Compute derives the panel decision from every stored adjudication for the
// case event. Each of causality, severity and expectedness takes its unique
// most frequent value; a field with a tie has no majority and falls back to
// its default. The method is majority only when all three fields have one.
// The read of the adjudication set, the decision row and the status
// transition all happen in one transaction, so a submission landing
// mid-compute cannot leave a decision based on a stale set.
func (s *Service) Compute(ctx context.Context, decidedBy int64, in ComputeInput) (*ComputeResult, error) {
	var result *ComputeResult
	err := s.inTx(ctx, func(ctx context.Context) error {
		adjudications, err := s.adjudications.ListByCaseEvent(ctx, in.CaseEventID)
		if err != nil {
			return err
		}
		if len(adjudications) < adjudication.SubmissionThreshold {
			return apperr.InsufficientData(
				"consensus requires at least %d adjudications, have %d",
				adjudication.SubmissionThreshold, len(adjudications))
		}

		causalities := make([]string, 0, len(adjudications))
		severities := make([]string, 0, len(adjudications))
		expectednesses := make([]string, 0, len(adjudications))
		suspectedSet := make(map[int64]bool)
		for _, a := range adjudications {
			causalities = append(causalities, a.Causality)
			severities = append(severities, a.Severity)
			expectednesses = append(expectednesses, a.Expectedness)
			for _, id := range a.SuspectedConcomitants {
				suspectedSet[id] = true
			}
		}

		causality, okCausality := majorityOf(causalities)
		severity, okSeverity := majorityOf(severities)
		expectedness, okExpectedness := majorityOf(expectednesses)

		method := MethodMajority
		if !okCausality || !okSeverity || !okExpectedness {
			method = MethodArbitration
		}
		if !okCausality {
			causality = DefaultCausality
		}
		if !okSeverity {
			severity = DefaultSeverity
		}
		if !okExpectedness {
			expectedness = DefaultExpectedness
		}

		suspected := make([]int64, 0, len(suspectedSet))
		for id := range suspectedSet {
			suspected = append(suspected, id)
		}
		sort.Slice(suspected, func(i, j int) bool { return suspected[i] < suspected[j] })

		record := &Consensus{
			CaseEventID:    in.CaseEventID,
			Method:         method,
			DecidedBy:      decidedBy,
			Causality:      causality,
			Severity:       severity,
			Expectedness:   expectedness,
			SuspectedDrugs: suspected,
			Rationale:      in.Rationale,
		}
		if err := s.repo.Upsert(ctx, record); err != nil {
			return err
		}
		if err := s.caseEvents.MarkConsensus(ctx, in.CaseEventID); err != nil {
			return err
		}

		result = &ComputeResult{
			Method:       method,
			Causality:    causality,
			Severity:     severity,
			Expectedness: expectedness,
			Suspected:    suspected,
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		log.Error().Err(err).
			Int64("case_event_id", in.CaseEventID).
			Msg("consensus compute failed")
		return nil, apperr.Storage(err)
	}
	return result, nil
}

// Get returns the stored decision, or nil when none has been computed.
func (s *Service) Get(ctx context.Context, caseEventID int64) (*Consensus, error) {
	c, err := s.repo.GetByCaseEvent(ctx, caseEventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage(err)
	}
	return c, nil
}
