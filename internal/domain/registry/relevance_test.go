package registry

import (
	"context"
	"testing"
)

type mockMappings struct {
	byEvent map[int64][]int64
}

func (m *mockMappings) RelevantDrugIDs(_ context.Context, dictEventID int64) ([]int64, error) {
	return m.byEvent[dictEventID], nil
}

type mockExposure struct {
	byPatient map[int64][]int64
}

func (m *mockExposure) ConcomitantDrugIDs(_ context.Context, patientID int64) ([]int64, error) {
	return m.byPatient[patientID], nil
}

func newTestFilter() *Filter {
	return NewFilter(
		&mockMappings{byEvent: map[int64][]int64{30: {1, 5, 7}}},
		&mockExposure{byPatient: map[int64][]int64{20: {5, 11}}},
	)
}

func TestRelevantDrugIDs(t *testing.T) {
	f := newTestFilter()

	set, err := f.RelevantDrugIDs(context.Background(), 30)
	if err != nil {
		t.Fatalf("relevant: %v", err)
	}
	if len(set) != 3 || !set[1] || !set[5] || !set[7] {
		t.Errorf("set = %v", set)
	}
}

func TestUnknownIDsYieldEmptySets(t *testing.T) {
	f := newTestFilter()

	relevant, err := f.RelevantDrugIDs(context.Background(), 999)
	if err != nil {
		t.Fatalf("relevant: %v", err)
	}
	if len(relevant) != 0 {
		t.Errorf("unknown diagnosis should map to no drugs, got %v", relevant)
	}

	taken, err := f.PatientConcomitantDrugIDs(context.Background(), 999)
	if err != nil {
		t.Fatalf("exposure: %v", err)
	}
	if len(taken) != 0 {
		t.Errorf("unknown patient should have no exposure, got %v", taken)
	}
}

func TestIsIndexRelevant(t *testing.T) {
	f := newTestFilter()

	ok, err := f.IsIndexRelevant(context.Background(), 30, 1)
	if err != nil {
		t.Fatalf("index relevant: %v", err)
	}
	if !ok {
		t.Error("drug 1 is mapped to event 30")
	}

	ok, err = f.IsIndexRelevant(context.Background(), 30, 11)
	if err != nil {
		t.Fatalf("index relevant: %v", err)
	}
	if ok {
		t.Error("drug 11 is not mapped to event 30")
	}
}
