package caseevent

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/trialsafe/adjudicate/internal/platform/apperr"
)

// -- Mocks --

type mockRepo struct {
	events    map[int64]*CaseEvent
	generated map[int64]int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		events:    make(map[int64]*CaseEvent),
		generated: make(map[int64]int),
	}
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*CaseEvent, error) {
	ce, ok := m.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ce, nil
}

func (m *mockRepo) GetDetail(_ context.Context, id int64) (*Detail, error) {
	ce, ok := m.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &Detail{CaseEvent: *ce, Diagnosis: "Hepatitis", Category: "Hepatic"}, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64) ([]*Summary, error) {
	var result []*Summary
	for _, ce := range m.events {
		if ce.PatientID == patientID {
			result = append(result, &Summary{ID: ce.ID, PatientID: ce.PatientID, Status: ce.Status})
		}
	}
	return result, nil
}

func (m *mockRepo) GenerateForPatient(_ context.Context, patientID int64, _ *int64) (int, error) {
	// First generation creates two events, reruns find nothing new.
	if m.generated[patientID] > 0 {
		return 0, nil
	}
	m.generated[patientID]++
	return 2, nil
}

func (m *mockRepo) MarkSubmittedIfOpen(_ context.Context, id int64) error {
	if ce, ok := m.events[id]; ok && ce.Status == StatusOpen {
		ce.Status = StatusSubmitted
	}
	return nil
}

func (m *mockRepo) MarkConsensus(_ context.Context, id int64) error {
	if ce, ok := m.events[id]; ok {
		ce.Status = StatusConsensus
	}
	return nil
}

func (m *mockRepo) SetAbsent(_ context.Context, id int64, absent bool) error {
	ce, ok := m.events[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ce.IsAbsent = absent
	return nil
}

type mockPatients struct {
	ids map[int64]bool
}

func (m *mockPatients) PatientExists(_ context.Context, id int64) (bool, error) {
	return m.ids[id], nil
}

func newFixture() (*Service, *mockRepo) {
	repo := newMockRepo()
	repo.events[10] = &CaseEvent{ID: 10, PatientID: 20, DictEventID: 30, Status: StatusOpen}
	patients := &mockPatients{ids: map[int64]bool{20: true}}
	return NewService(repo, patients), repo
}

// -- Tests --

func TestGenerateUnknownPatient(t *testing.T) {
	svc, _ := newFixture()

	_, err := svc.Generate(context.Background(), 999, nil)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGenerateIsRerunSafe(t *testing.T) {
	svc, _ := newFixture()

	created, err := svc.Generate(context.Background(), 20, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	created, err = svc.Generate(context.Background(), 20, nil)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if created != 0 {
		t.Errorf("rerun created = %d, want 0", created)
	}
}

func TestMarkAbsent(t *testing.T) {
	svc, repo := newFixture()

	if err := svc.MarkAbsent(context.Background(), 10, true); err != nil {
		t.Fatalf("mark absent: %v", err)
	}
	if !repo.events[10].IsAbsent {
		t.Error("is_absent not set")
	}
	if repo.events[10].Status != StatusOpen {
		t.Errorf("absence must not touch status, got %s", repo.events[10].Status)
	}

	err := svc.MarkAbsent(context.Background(), 999, true)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetUnknownCaseEvent(t *testing.T) {
	svc, _ := newFixture()

	_, err := svc.Get(context.Background(), 999)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListByPatientEmpty(t *testing.T) {
	svc, _ := newFixture()

	summaries, err := svc.ListByPatient(context.Background(), 999)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if summaries == nil || len(summaries) != 0 {
		t.Errorf("expected empty slice, got %v", summaries)
	}
}
