package poller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/dbtypes"

	"github.com/google/go-cmp/cmp"
)

type fakeStore struct {
	mu       sync.Mutex
	patients map[string]*dbtypes.Patient
	counts   map[string]int64

	// ids listed but missing from patients model a concurrent deletion.
	extraIDs  []string
	failCount string
}

func (f *fakeStore) ListPatientIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.patients {
		ids = append(ids, id)
	}
	return append(ids, f.extraIDs...), nil
}

func (f *fakeStore) GetPatient(ctx context.Context, id string) (*dbtypes.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.patients[id]
	if !ok {
		return nil, dblayer.ErrPatientNotFound
	}
	return p, nil
}

func (f *fakeStore) CountMedicines(ctx context.Context, patientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if patientID == f.failCount {
		return 0, errors.New("fake failure")
	}
	return f.counts[patientID], nil
}

func TestCheckCounts(t *testing.T) {
	store := &fakeStore{
		patients: map[string]*dbtypes.Patient{
			"a": {MedicineCount: 2},
			"b": {MedicineCount: 0},
			"c": {MedicineCount: 3},
			"d": {MedicineCount: 1},
		},
		counts: map[string]int64{
			"a": 2,
			"b": 1,
			"c": 2,
		},
		extraIDs: []string{"deleted"},
	}

	p := New(store, 0, 2)
	drifts, checked, err := p.CheckCounts(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []Drift{
		{PatientID: "b", Recorded: 0, Actual: 1},
		{PatientID: "c", Recorded: 3, Actual: 2},
		{PatientID: "d", Recorded: 1, Actual: 0},
	}
	if diff := cmp.Diff(drifts, want); diff != "" {
		t.Errorf("Bad drifts; diff (-got +want)\n%s", diff)
	}
	if checked != 5 {
		t.Errorf("Got %d checked, want 5", checked)
	}

	// The poller never repairs counters.
	if got := store.patients["b"].MedicineCount; got != 0 {
		t.Errorf("Counter was changed to %d", got)
	}
}

func TestCheckCountsFailure(t *testing.T) {
	store := &fakeStore{
		patients: map[string]*dbtypes.Patient{
			"a": {MedicineCount: 1},
		},
		counts:    map[string]int64{},
		failCount: "a",
	}

	if _, _, err := New(store, 0, 4).CheckCounts(context.Background()); err == nil {
		t.Errorf("Expected an error")
	}
}

func TestDriftDelta(t *testing.T) {
	testCases := []struct {
		desc string
		d    Drift
		want int64
	}{
		{"overcount", Drift{Recorded: 3, Actual: 2}, 1},
		{"undercount", Drift{Recorded: 0, Actual: 2}, -2},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := tc.d.Delta(); got != tc.want {
				t.Errorf("Got delta %d, want %d", got, tc.want)
			}
		})
	}
}
