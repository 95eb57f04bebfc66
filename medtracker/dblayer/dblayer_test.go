package dblayer

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"ilac-cebimde/medtracker/dbtypes"

	"cloud.google.com/go/firestore"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// newTestDB connects to the Firestore emulator, skipping the test when none is
// configured.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "ilac-cebimde-test")
	if err != nil {
		t.Fatalf("Error while creating firestore client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return New(client)
}

func TestMedicineCountRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pid := "patient-" + uuid.NewString()
	if err := db.CreatePatient(ctx, pid, &dbtypes.Patient{Email: "ali@example.com", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Error while creating patient: %v", err)
	}

	mid, err := db.AddMedicine(ctx, pid, &dbtypes.Medicine{Name: "Aspirin", Dose: "100mg", Times: []string{"08:00"}})
	if err != nil {
		t.Fatalf("Error while adding medicine: %v", err)
	}
	if err := db.IncrementMedicineCount(ctx, pid, 1); err != nil {
		t.Fatalf("Error while incrementing count: %v", err)
	}

	p, err := db.GetPatient(ctx, pid)
	if err != nil {
		t.Fatalf("Error while reading patient: %v", err)
	}
	n, err := db.CountMedicines(ctx, pid)
	if err != nil {
		t.Fatalf("Error while counting medicines: %v", err)
	}
	if p.MedicineCount != 1 || n != 1 {
		t.Errorf("Got medicineCount %d and %d medicines, want 1 and 1", p.MedicineCount, n)
	}

	if err := db.DeleteMedicine(ctx, pid, mid); err != nil {
		t.Fatalf("Error while deleting medicine: %v", err)
	}
	if _, err := db.GetMedicine(ctx, pid, mid); !errors.Is(err, ErrMedicineNotFound) {
		t.Errorf("Got error %v, want ErrMedicineNotFound", err)
	}
	if err := db.DeleteMedicine(ctx, pid, mid); !errors.Is(err, ErrMedicineNotFound) {
		t.Errorf("Second delete: got error %v, want ErrMedicineNotFound", err)
	}
}

func TestGetPatientNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetPatient(context.Background(), "patient-"+uuid.NewString()); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("Got error %v, want ErrPatientNotFound", err)
	}
}

func TestListIntakeIDsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pid := "patient-" + uuid.NewString()
	ids := []string{"m_2025-12-26_08:00", "m_2025-12-28_08:00", "m_2025-12-27_08:00"}
	for _, id := range ids {
		if _, err := db.intakes(pid).Doc(id).Set(ctx, map[string]any{"medicineId": "m"}); err != nil {
			t.Fatalf("Error while writing intake: %v", err)
		}
	}

	got, err := db.ListIntakeIDs(ctx, pid, 2)
	if err != nil {
		t.Fatalf("Error while listing intakes: %v", err)
	}
	want := []string{"m_2025-12-28_08:00", "m_2025-12-27_08:00"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad intake ids; diff (-got +want)\n%s", diff)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uid := "doctor-" + uuid.NewString()
	created, err := db.CreateSession(ctx, uid, "dr@example.com", "Dr. Ayşe", true)
	if err != nil {
		t.Fatalf("Error while creating session: %v", err)
	}

	if err := db.UpdateSessionDisplayName(ctx, uid, "Dr. Ayşe Yılmaz"); err != nil {
		t.Fatalf("Error while renaming: %v", err)
	}

	got, err := db.SessionFromCookie(ctx, created.Cookie)
	if err != nil {
		t.Fatalf("Error while looking up session: %v", err)
	}
	if got == nil || got.UID != uid || got.DisplayName != "Dr. Ayşe Yılmaz" || !got.Doctor {
		t.Fatalf("Got session %+v", got)
	}

	if err := db.DeleteSession(ctx, created.Cookie); err != nil {
		t.Fatalf("Error while deleting session: %v", err)
	}
	got, err = db.SessionFromCookie(ctx, created.Cookie)
	if err != nil {
		t.Fatalf("Error while looking up session: %v", err)
	}
	if got != nil {
		t.Errorf("Session survived deletion")
	}
}
