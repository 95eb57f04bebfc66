package admin

import (
	"context"
	"fmt"
	"log/slog"

	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/intake"

	"golang.org/x/sync/errgroup"
)

// MissingMedicine names intakes whose medicine id resolves to nothing.
const MissingMedicine = "İlaç bulunamadı"

// History returns the patient's most recent intakes, newest first.  It never
// fails: a store error is logged and yields an empty history.
func (s *Service) History(ctx context.Context, patientID string) []intake.Intake {
	ids, err := s.store.ListIntakeIDs(ctx, patientID, intake.HistoryLimit)
	if err != nil {
		slog.ErrorContext(ctx, "Error while listing intakes, showing empty history", slog.String("patient", patientID), slog.Any("err", err))
		return []intake.Intake{}
	}
	return intake.DecodeAll(ids)
}

// ResolveMedicineNames fills in MedicineName on each intake from meds.
func ResolveMedicineNames(intakes []intake.Intake, meds []dblayer.MedicineDoc) {
	names := map[string]string{}
	for _, m := range meds {
		names[m.ID] = m.Medicine.Name
	}
	for i := range intakes {
		name, ok := names[intakes[i].MedicineID]
		if !ok || name == "" {
			name = MissingMedicine
		}
		intakes[i].MedicineName = name
	}
}

// PatientDetail is everything the patient page shows.
type PatientDetail struct {
	Patient   *PatientSummary
	Medicines []dblayer.MedicineDoc
	Intakes   []intake.Intake
}

// PatientDetail loads a patient, their medicines and their intake history
// concurrently.
func (s *Service) PatientDetail(ctx context.Context, patientID string) (*PatientDetail, error) {
	detail := &PatientDetail{}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		p, err := s.GetPatient(ctx, patientID)
		if err != nil {
			return err
		}
		detail.Patient = p
		return nil
	})
	eg.Go(func() error {
		meds, err := s.ListMedicines(ctx, patientID)
		if err != nil {
			return err
		}
		detail.Medicines = meds
		return nil
	})
	eg.Go(func() error {
		detail.Intakes = s.History(ctx, patientID)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("while loading patient %s: %w", patientID, err)
	}

	ResolveMedicineNames(detail.Intakes, detail.Medicines)
	return detail, nil
}
