package adjudication

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/trialsafe/adjudicate/internal/domain/caseevent"
	"github.com/trialsafe/adjudicate/internal/domain/patient"
	"github.com/trialsafe/adjudicate/internal/platform/apperr"
	"github.com/trialsafe/adjudicate/internal/platform/db"
)

// -- Mock Repository --

type adjKey struct {
	caseEventID   int64
	adjudicatorID int64
}

type mockRepo struct {
	nextID       int64
	rows         map[adjKey]*Adjudication
	attributions map[int64][]*DrugAttribution
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		rows:         make(map[adjKey]*Adjudication),
		attributions: make(map[int64][]*DrugAttribution),
	}
}

func (m *mockRepo) Upsert(_ context.Context, a *Adjudication) error {
	key := adjKey{a.CaseEventID, a.AdjudicatorID}
	if existing, ok := m.rows[key]; ok {
		a.ID = existing.ID
	} else {
		m.nextID++
		a.ID = m.nextID
	}
	clone := *a
	m.rows[key] = &clone
	return nil
}

func (m *mockRepo) GetByCaseAndAdjudicator(_ context.Context, caseEventID, adjudicatorID int64) (*Adjudication, error) {
	a, ok := m.rows[adjKey{caseEventID, adjudicatorID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockRepo) ListByCaseEvent(_ context.Context, caseEventID int64) ([]*Adjudication, error) {
	var result []*Adjudication
	for _, a := range m.rows {
		if a.CaseEventID == caseEventID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockRepo) CountByCaseEvent(_ context.Context, caseEventID int64) (int, error) {
	count := 0
	for _, a := range m.rows {
		if a.CaseEventID == caseEventID {
			count++
		}
	}
	return count, nil
}

func (m *mockRepo) ReplaceIndexAttribution(_ context.Context, adjudicationID, drugID int64, attribution string) error {
	kept := m.attributions[adjudicationID][:0]
	for _, da := range m.attributions[adjudicationID] {
		if da.Role != RoleIndex {
			kept = append(kept, da)
		}
	}
	kept = append(kept, &DrugAttribution{
		AdjudicationID: adjudicationID,
		DrugID:         drugID,
		Role:           RoleIndex,
		Attribution:    attribution,
	})
	m.attributions[adjudicationID] = kept
	return nil
}

func (m *mockRepo) DeleteIndexAttribution(_ context.Context, adjudicationID int64) error {
	kept := m.attributions[adjudicationID][:0]
	for _, da := range m.attributions[adjudicationID] {
		if da.Role != RoleIndex {
			kept = append(kept, da)
		}
	}
	m.attributions[adjudicationID] = kept
	return nil
}

func (m *mockRepo) ReplaceConcomitantAttributions(_ context.Context, adjudicationID int64, drugIDs []int64) error {
	kept := m.attributions[adjudicationID][:0]
	for _, da := range m.attributions[adjudicationID] {
		if da.Role != RoleConcomitant {
			kept = append(kept, da)
		}
	}
	for _, drugID := range drugIDs {
		kept = append(kept, &DrugAttribution{
			AdjudicationID: adjudicationID,
			DrugID:         drugID,
			Role:           RoleConcomitant,
			Attribution:    AttributionYes,
		})
	}
	m.attributions[adjudicationID] = kept
	return nil
}

func (m *mockRepo) ListAttributions(_ context.Context, adjudicationID int64) ([]*DrugAttribution, error) {
	return m.attributions[adjudicationID], nil
}

func (m *mockRepo) indexRow(adjudicationID int64) *DrugAttribution {
	for _, da := range m.attributions[adjudicationID] {
		if da.Role == RoleIndex {
			return da
		}
	}
	return nil
}

func (m *mockRepo) concomitantIDs(adjudicationID int64) map[int64]bool {
	ids := make(map[int64]bool)
	for _, da := range m.attributions[adjudicationID] {
		if da.Role == RoleConcomitant {
			ids[da.DrugID] = true
		}
	}
	return ids
}

type mockCaseEvents struct {
	events map[int64]*caseevent.CaseEvent
}

func (m *mockCaseEvents) GetByID(_ context.Context, id int64) (*caseevent.CaseEvent, error) {
	ce, ok := m.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ce, nil
}

func (m *mockCaseEvents) MarkSubmittedIfOpen(_ context.Context, id int64) error {
	if ce, ok := m.events[id]; ok && ce.Status == caseevent.StatusOpen {
		ce.Status = caseevent.StatusSubmitted
	}
	return nil
}

type mockPatients struct {
	patients map[int64]*patient.Patient
}

func (m *mockPatients) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type mockRelevance struct {
	relevant     map[int64]map[int64]bool
	concomitants map[int64]map[int64]bool
}

func (m *mockRelevance) RelevantDrugIDs(_ context.Context, dictEventID int64) (map[int64]bool, error) {
	if set, ok := m.relevant[dictEventID]; ok {
		return set, nil
	}
	return map[int64]bool{}, nil
}

func (m *mockRelevance) PatientConcomitantDrugIDs(_ context.Context, patientID int64) (map[int64]bool, error) {
	if set, ok := m.concomitants[patientID]; ok {
		return set, nil
	}
	return map[int64]bool{}, nil
}

// -- Fixture --

// One case event (id 10) for patient 20 under diagnosis template 30.
// Index drug 1 is relevant; drugs 5 and 7 are both relevant and taken;
// drug 9 is relevant but not taken; drug 11 is taken but not relevant.
func newFixture() (*Service, *mockRepo, *mockCaseEvents) {
	repo := newMockRepo()
	caseEvents := &mockCaseEvents{events: map[int64]*caseevent.CaseEvent{
		10: {ID: 10, PatientID: 20, DictEventID: 30, Status: caseevent.StatusOpen},
	}}
	patients := &mockPatients{patients: map[int64]*patient.Patient{
		20: {ID: 20, PatientCode: "P-020", IndexDrugID: 1},
	}}
	relevance := &mockRelevance{
		relevant: map[int64]map[int64]bool{
			30: {1: true, 5: true, 7: true, 9: true},
		},
		concomitants: map[int64]map[int64]bool{
			20: {5: true, 7: true, 11: true},
		},
	}
	svc := NewService(repo, caseEvents, patients, relevance, db.PassthroughTxRunner())
	return svc, repo, caseEvents
}

func validInput() SubmitInput {
	return SubmitInput{
		CaseEventID:      10,
		Causality:        CausalityProbable,
		Severity:         SeverityModerate,
		Expectedness:     ExpectednessExpected,
		IndexAttribution: AttributionYes,
	}
}

// -- Tests --

func TestSubmitRejectsMissingFields(t *testing.T) {
	svc, _, _ := newFixture()

	in := validInput()
	in.Causality = ""
	_, err := svc.Submit(context.Background(), 100, in)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr.Field != "causality" {
		t.Errorf("expected field causality, got %q", appErr.Field)
	}
}

func TestSubmitRejectsUnknownEnumValue(t *testing.T) {
	svc, _, _ := newFixture()

	in := validInput()
	in.Severity = "Catastrophic"
	_, err := svc.Submit(context.Background(), 100, in)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr.Field != "severity" {
		t.Errorf("expected field severity, got %q", appErr.Field)
	}
}

func TestSubmitUnknownCaseEvent(t *testing.T) {
	svc, _, _ := newFixture()

	in := validInput()
	in.CaseEventID = 999
	_, err := svc.Submit(context.Background(), 100, in)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSubmitUpsertIsIdempotent(t *testing.T) {
	svc, repo, _ := newFixture()

	first, err := svc.Submit(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	in := validInput()
	in.Causality = CausalityPossible
	second, err := svc.Submit(context.Background(), 100, in)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if first.AdjudicationID != second.AdjudicationID {
		t.Errorf("expected same adjudication id, got %d then %d", first.AdjudicationID, second.AdjudicationID)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.rows))
	}
	stored := repo.rows[adjKey{10, 100}]
	if stored.Causality != CausalityPossible {
		t.Errorf("resubmission did not overwrite causality: %q", stored.Causality)
	}
}

func TestSubmitFiltersSuspectedConcomitants(t *testing.T) {
	svc, repo, _ := newFixture()

	in := validInput()
	// 5 and 7 survive; 9 is not taken, 11 is not relevant, -3 and 0 are
	// garbage, the duplicate 5 collapses.
	in.SuspectedConcomitants = []int64{5, 5, 7, 9, 11, -3, 0, 12345}
	result, err := svc.Submit(context.Background(), 100, in)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	stored := repo.rows[adjKey{10, 100}]
	if len(stored.SuspectedConcomitants) != 2 {
		t.Fatalf("expected 2 suspects, got %v", stored.SuspectedConcomitants)
	}
	conIDs := repo.concomitantIDs(result.AdjudicationID)
	if !conIDs[5] || !conIDs[7] || len(conIDs) != 2 {
		t.Errorf("expected concomitant rows {5,7}, got %v", conIDs)
	}
}

func TestSubmitIndexAttributionPresence(t *testing.T) {
	svc, repo, caseEvents := newFixture()

	result, err := svc.Submit(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	row := repo.indexRow(result.AdjudicationID)
	if row == nil {
		t.Fatal("expected index attribution row when index drug is relevant")
	}
	if row.DrugID != 1 || row.Attribution != AttributionYes {
		t.Errorf("unexpected index row: %+v", row)
	}

	// Diagnosis template no longer maps the index drug: resubmission must
	// remove the previously stored index row.
	caseEvents.events[10].DictEventID = 31
	if _, err := svc.Submit(context.Background(), 100, validInput()); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if row := repo.indexRow(result.AdjudicationID); row != nil {
		t.Errorf("expected index row removed, got %+v", row)
	}
}

func TestSubmitMissingPatientTolerated(t *testing.T) {
	svc, repo, caseEvents := newFixture()
	caseEvents.events[10].PatientID = 21 // no such patient row

	result, err := svc.Submit(context.Background(), 100, validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if row := repo.indexRow(result.AdjudicationID); row != nil {
		t.Errorf("expected no index attribution without a patient, got %+v", row)
	}
}

func TestSubmitThresholdPromotesAtThree(t *testing.T) {
	svc, _, caseEvents := newFixture()

	for i, adjudicatorID := range []int64{100, 101} {
		result, err := svc.Submit(context.Background(), adjudicatorID, validInput())
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if result.CaseEventStatus != caseevent.StatusOpen {
			t.Errorf("after %d adjudications expected open, got %s", i+1, result.CaseEventStatus)
		}
	}

	result, err := svc.Submit(context.Background(), 102, validInput())
	if err != nil {
		t.Fatalf("third submit: %v", err)
	}
	if result.CaseEventStatus != caseevent.StatusSubmitted {
		t.Errorf("expected submitted after third adjudication, got %s", result.CaseEventStatus)
	}
	if caseEvents.events[10].Status != caseevent.StatusSubmitted {
		t.Errorf("stored status = %s", caseEvents.events[10].Status)
	}
}

func TestSubmitDoesNotRegressConsensus(t *testing.T) {
	svc, _, caseEvents := newFixture()

	for _, adjudicatorID := range []int64{100, 101, 102} {
		if _, err := svc.Submit(context.Background(), adjudicatorID, validInput()); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	caseEvents.events[10].Status = caseevent.StatusConsensus

	result, err := svc.Submit(context.Background(), 103, validInput())
	if err != nil {
		t.Fatalf("submit after consensus: %v", err)
	}
	if caseEvents.events[10].Status != caseevent.StatusConsensus {
		t.Errorf("status regressed to %s", caseEvents.events[10].Status)
	}
	if result.CaseEventStatus != caseevent.StatusConsensus {
		t.Errorf("result status = %s", result.CaseEventStatus)
	}
}

func TestSubmitDefaultsFramework(t *testing.T) {
	svc, repo, _ := newFixture()

	in := validInput()
	in.Framework = ""
	if _, err := svc.Submit(context.Background(), 100, in); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := repo.rows[adjKey{10, 100}].Framework; got != FrameworkWHOUMC {
		t.Errorf("expected default framework, got %q", got)
	}
}

func TestGetReturnsNilWhenAbsent(t *testing.T) {
	svc, _, _ := newFixture()

	adj, err := svc.Get(context.Background(), 10, 100)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if adj != nil {
		t.Errorf("expected nil, got %+v", adj)
	}
}
