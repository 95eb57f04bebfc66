package admin

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/dbtypes"
)

// MedicineForm is a medicine as submitted from the console's add and edit
// forms.  Quantities are kept as submitted so validation can report bad
// input.
type MedicineForm struct {
	Name              string
	Dose              string
	Times             []string
	TotalQuantity     string
	RemainingQuantity string
	Instructions      string
	DoctorNote        string
	HungerStatus      string
	Active            bool
}

// FormFromMedicine prefills an edit form.
func FormFromMedicine(med *dbtypes.Medicine) MedicineForm {
	return MedicineForm{
		Name:              med.Name,
		Dose:              med.Dose,
		Times:             med.Schedule(),
		TotalQuantity:     strconv.FormatInt(med.TotalQuantity, 10),
		RemainingQuantity: strconv.FormatInt(med.RemainingQuantity, 10),
		Instructions:      med.Instructions,
		DoctorNote:        med.DoctorNote,
		HungerStatus:      med.HungerStatus,
		Active:            med.IsActive(),
	}
}

// clean drops blank time slots and surrounding whitespace.
func (f MedicineForm) clean() MedicineForm {
	var times []string
	for _, t := range f.Times {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}
	f.Times = times
	f.Name = strings.TrimSpace(f.Name)
	f.Dose = strings.TrimSpace(f.Dose)
	f.TotalQuantity = strings.TrimSpace(f.TotalQuantity)
	f.RemainingQuantity = strings.TrimSpace(f.RemainingQuantity)
	f.HungerStatus = strings.TrimSpace(f.HungerStatus)
	return f
}

// medicine converts a cleaned, validated form.
func (f MedicineForm) medicine() *dbtypes.Medicine {
	total, _ := strconv.ParseInt(f.TotalQuantity, 10, 64)
	remaining, _ := strconv.ParseInt(f.RemainingQuantity, 10, 64)
	active := f.Active
	return &dbtypes.Medicine{
		Name:              f.Name,
		Dose:              f.Dose,
		Times:             f.Times,
		TotalQuantity:     total,
		RemainingQuantity: remaining,
		Instructions:      f.Instructions,
		DoctorNote:        f.DoctorNote,
		HungerStatus:      f.HungerStatus,
		Active:            &active,
	}
}

func (s *Service) ListMedicines(ctx context.Context, patientID string) ([]dblayer.MedicineDoc, error) {
	meds, err := s.store.ListMedicines(ctx, patientID)
	if err != nil {
		slog.ErrorContext(ctx, "Error while listing medicines", slog.String("patient", patientID), slog.Any("err", err))
		return nil, &Error{Message: MsgListMedicinesFailed, Err: err}
	}
	return meds, nil
}

func (s *Service) GetMedicine(ctx context.Context, patientID, medicineID string) (*dbtypes.Medicine, error) {
	med, err := s.store.GetMedicine(ctx, patientID, medicineID)
	if errors.Is(err, dblayer.ErrMedicineNotFound) {
		return nil, &Error{Message: MsgMedicineNotFound, Err: err}
	}
	if err != nil {
		slog.ErrorContext(ctx, "Error while reading medicine", slog.String("patient", patientID), slog.String("medicine", medicineID), slog.Any("err", err))
		return nil, &Error{Message: MsgListMedicinesFailed, Err: err}
	}
	return med, nil
}

// AddMedicine creates a medicine and then bumps the patient's medicineCount
// in a second, independent write.  If the second write fails the medicine
// stays created and the counter is left one short.
func (s *Service) AddMedicine(ctx context.Context, patientID string, form MedicineForm) (string, error) {
	form = form.clean()
	if err := form.Validate(); err != nil {
		return "", &Error{Message: ValidationMessage(err), Err: err}
	}

	med := form.medicine()
	med.CreatedAt = s.now()

	id, err := s.store.AddMedicine(ctx, patientID, med)
	if err != nil {
		slog.ErrorContext(ctx, "Error while adding medicine", slog.String("patient", patientID), slog.Any("err", err))
		return "", &Error{Message: MsgAddMedicineFailed, Err: err}
	}

	if err := s.store.IncrementMedicineCount(ctx, patientID, 1); err != nil {
		slog.ErrorContext(ctx, "Medicine added but medicine count not incremented", slog.String("patient", patientID), slog.String("medicine", id), slog.Any("err", err))
		return "", &Error{Message: MsgAddMedicineFailed, Err: err}
	}

	slog.InfoContext(ctx, "Added medicine", slog.String("patient", patientID), slog.String("medicine", id))
	return id, nil
}

// UpdateMedicine overwrites the form's fields on an existing medicine.  The
// counter is not touched.
func (s *Service) UpdateMedicine(ctx context.Context, patientID, medicineID string, form MedicineForm) error {
	form = form.clean()
	if err := form.Validate(); err != nil {
		return &Error{Message: ValidationMessage(err), Err: err}
	}

	if err := s.store.UpdateMedicine(ctx, patientID, medicineID, form.medicine()); err != nil {
		slog.ErrorContext(ctx, "Error while updating medicine", slog.String("patient", patientID), slog.String("medicine", medicineID), slog.Any("err", err))
		return &Error{Message: MsgUpdateMedicineFailed, Err: err}
	}
	return nil
}

// DeleteMedicine deletes a medicine and then decrements the patient's
// medicineCount in a second, independent write.
func (s *Service) DeleteMedicine(ctx context.Context, patientID, medicineID string) error {
	err := s.store.DeleteMedicine(ctx, patientID, medicineID)
	if errors.Is(err, dblayer.ErrMedicineNotFound) {
		// Already gone, most likely a resubmitted form.  The counter was
		// decremented by the first delete.
		slog.InfoContext(ctx, "Medicine already deleted", slog.String("patient", patientID), slog.String("medicine", medicineID))
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "Error while deleting medicine", slog.String("patient", patientID), slog.String("medicine", medicineID), slog.Any("err", err))
		return &Error{Message: MsgDeleteMedicineFailed, Err: err}
	}

	if err := s.store.IncrementMedicineCount(ctx, patientID, -1); err != nil {
		slog.ErrorContext(ctx, "Medicine deleted but medicine count not decremented", slog.String("patient", patientID), slog.String("medicine", medicineID), slog.Any("err", err))
		return &Error{Message: MsgDeleteMedicineFailed, Err: err}
	}

	slog.InfoContext(ctx, "Deleted medicine", slog.String("patient", patientID), slog.String("medicine", medicineID))
	return nil
}
