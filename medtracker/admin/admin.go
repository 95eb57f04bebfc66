// Package admin implements the console's operations on patients, medicines
// and intake history on top of a Store.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/dbtypes"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnnamedPatient is shown for patients with no name of any kind.
const UnnamedPatient = "İsimsiz Hasta"

// Localized messages surfaced to console users.
const (
	MsgListPatientsFailed   = "Hastalar getirilemedi."
	MsgPatientNotFound      = "Hasta bulunamadı."
	MsgListMedicinesFailed  = "İlaçlar getirilemedi."
	MsgMedicineNotFound     = "İlaç bulunamadı."
	MsgAddMedicineFailed    = "İlaç eklenemedi."
	MsgUpdateMedicineFailed = "İlaç güncellenemedi."
	MsgDeleteMedicineFailed = "İlaç silinemedi."
	MsgUnexpected           = "Beklenmeyen bir hata oluştu."
)

// Store is the subset of the data layer the admin operations need.
// *dblayer.DB implements it.
type Store interface {
	ListPatients(ctx context.Context) ([]dblayer.PatientDoc, error)
	GetPatient(ctx context.Context, id string) (*dbtypes.Patient, error)

	ListMedicines(ctx context.Context, patientID string) ([]dblayer.MedicineDoc, error)
	GetMedicine(ctx context.Context, patientID, medicineID string) (*dbtypes.Medicine, error)
	AddMedicine(ctx context.Context, patientID string, med *dbtypes.Medicine) (string, error)
	UpdateMedicine(ctx context.Context, patientID, medicineID string, med *dbtypes.Medicine) error
	DeleteMedicine(ctx context.Context, patientID, medicineID string) error
	IncrementMedicineCount(ctx context.Context, patientID string, delta int64) error

	ListIntakeIDs(ctx context.Context, patientID string, limit int) ([]string, error)
}

// Error carries a localized, user-facing message alongside the underlying
// cause.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the message to show a console user for err.
func UserMessage(err error) string {
	var adminErr *Error
	if errors.As(err, &adminErr) {
		return adminErr.Message
	}
	return MsgUnexpected
}

type Service struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// PatientSummary is a patient as the console lists it.
type PatientSummary struct {
	ID          string
	Name        string
	Email       string
	PhoneNumber string
	Age         *int64
	Gender      string

	// RFC 3339.
	CreatedAt string

	MedicineCount int64
}

// DisplayName resolves the name to show for a patient: first and last name
// when either is present, then the raw displayName, then UnnamedPatient.
func DisplayName(p *dbtypes.Patient) string {
	if full := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName)); full != "" {
		return full
	}
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return UnnamedPatient
}

func (s *Service) summarize(id string, p *dbtypes.Patient) PatientSummary {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	return PatientSummary{
		ID:            id,
		Name:          DisplayName(p),
		Email:         p.Email,
		PhoneNumber:   p.PhoneNumber,
		Age:           p.Age,
		Gender:        p.Gender,
		CreatedAt:     createdAt.UTC().Format(time.RFC3339),
		MedicineCount: p.MedicineCount,
	}
}

func (s *Service) ListPatients(ctx context.Context) ([]PatientSummary, error) {
	docs, err := s.store.ListPatients(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error while listing patients", slog.Any("err", err))
		return nil, &Error{Message: MsgListPatientsFailed, Err: err}
	}

	out := make([]PatientSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, s.summarize(d.ID, d.Patient))
	}
	return out, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*PatientSummary, error) {
	p, err := s.store.GetPatient(ctx, id)
	if errors.Is(err, dblayer.ErrPatientNotFound) {
		return nil, &Error{Message: MsgPatientNotFound, Err: err}
	}
	if err != nil {
		slog.ErrorContext(ctx, "Error while reading patient", slog.String("patient", id), slog.Any("err", err))
		return nil, &Error{Message: MsgListPatientsFailed, Err: err}
	}

	summary := s.summarize(id, p)
	return &summary, nil
}

// Stats are the dashboard's aggregate counts.
type Stats struct {
	TotalPatients int

	// Sum of each patient's medicineCount.  Inherits any drift in those
	// counters.
	TotalMedicines int64

	// Every listed patient counts as active.
	ActivePatients int
}

func ComputeStats(patients []PatientSummary) Stats {
	stats := Stats{
		TotalPatients:  len(patients),
		ActivePatients: len(patients),
	}
	for _, p := range patients {
		stats.TotalMedicines += p.MedicineCount
	}
	return stats
}

// searchFold lowercases s with Turkish rules and then merges dotless ı into
// i, so "İsmail", "ISMAIL" and "ismail" all fold to "ismail".
func searchFold(lower cases.Caser, s string) string {
	return strings.ReplaceAll(lower.String(s), "ı", "i")
}

// FilterPatients keeps the patients whose name or email contains term,
// ignoring case.  An empty term keeps everything.
func FilterPatients(patients []PatientSummary, term string) []PatientSummary {
	if term == "" {
		return patients
	}

	// Casers are stateful, so each call gets its own.
	lower := cases.Lower(language.Turkish)
	needle := searchFold(lower, term)
	var out []PatientSummary
	for _, p := range patients {
		if strings.Contains(searchFold(lower, p.Name), needle) || strings.Contains(searchFold(lower, p.Email), needle) {
			out = append(out, p)
		}
	}
	return out
}
