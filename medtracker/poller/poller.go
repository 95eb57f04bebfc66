// Package poller periodically compares each patient's cached medicineCount
// against the medicines actually stored for them.
//
// The counter is written separately from the medicine documents, so a failed
// second write leaves it off by one.  The poller only reports such drift; it
// never rewrites the counter.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/dbtypes"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const tracerName = "ilac-cebimde/medtracker/poller"

var (
	driftedPatients = stats.Int64("ilac/medicine_count_drifted_patients", "Patients whose medicineCount disagrees with their medicines", stats.UnitDimensionless)
	checkedPatients = stats.Int64("ilac/medicine_count_checked_patients", "Patients checked in a poller pass", stats.UnitDimensionless)
)

var (
	DriftedPatientsView = &view.View{
		Name:        "ilac/medicine_count_drifted_patients",
		Description: "Patients with a drifted medicineCount in the last pass",
		Measure:     driftedPatients,
		Aggregation: view.LastValue(),
	}
	CheckedPatientsView = &view.View{
		Name:        "ilac/medicine_count_checked_patients",
		Description: "Patients checked in the last pass",
		Measure:     checkedPatients,
		Aggregation: view.LastValue(),
	}
)

// RegisterMetrics registers the drift views with OpenCensus.
func RegisterMetrics() error {
	return view.Register(DriftedPatientsView, CheckedPatientsView)
}

// Store is the part of the data layer the poller reads.  *dblayer.DB
// implements it.
type Store interface {
	ListPatientIDs(ctx context.Context) ([]string, error)
	GetPatient(ctx context.Context, id string) (*dbtypes.Patient, error)
	CountMedicines(ctx context.Context, patientID string) (int64, error)
}

// Drift is a patient whose stored counter disagrees with their medicines.
type Drift struct {
	PatientID string
	Recorded  int64
	Actual    int64
}

// Delta is positive when the counter overcounts.
func (d Drift) Delta() int64 {
	return d.Recorded - d.Actual
}

// Poller runs an infinite loop, checking every patient once per period.
type Poller struct {
	store         Store
	recheckPeriod time.Duration
	parallelism   int64
}

func New(store Store, recheckPeriod time.Duration, parallelism int64) *Poller {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Poller{
		store:         store,
		recheckPeriod: recheckPeriod,
		parallelism:   parallelism,
	}
}

func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.recheckPeriod)
	defer ticker.Stop()

	// Poll once right away --- ticker doesn't fire until the tick period has
	// elapsed.
	p.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		p.pass(ctx)
	}
}

func (p *Poller) pass(ctx context.Context) {
	slog.InfoContext(ctx, "Starting poller pass")

	drifts, checked, err := p.CheckCounts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error during poller pass", slog.Any("err", err))
		return
	}

	stats.Record(ctx, checkedPatients.M(int64(checked)), driftedPatients.M(int64(len(drifts))))

	for _, d := range drifts {
		slog.WarnContext(ctx, "Patient medicineCount drifted",
			slog.String("patient", d.PatientID),
			slog.Int64("recorded", d.Recorded),
			slog.Int64("actual", d.Actual),
			slog.Int64("delta", d.Delta()))
	}

	slog.InfoContext(ctx, "Finished poller pass", slog.Int("checked", checked), slog.Int("drifted", len(drifts)))
}

// CheckCounts compares every patient's counter with their medicines.  It
// returns the drifted patients ordered by id, and how many patients were
// checked.  Patients deleted mid-pass are skipped.
func (p *Poller) CheckCounts(ctx context.Context) ([]Drift, int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Poller.CheckCounts")
	defer span.End()

	ids, err := p.store.ListPatientIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing patients failed")
		return nil, 0, fmt.Errorf("while listing patients: %w", err)
	}

	results := make([]*Drift, len(ids))

	// Use errgroup and semaphore to limit concurrency.
	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(p.parallelism)

	for i, id := range ids {
		if err := sem.Acquire(egCtx, 1); err != nil {
			// egCtx is cancelled by a failed check or by ctx.  Both are
			// reported below.
			break
		}

		i, id := i, id
		eg.Go(func() error {
			defer sem.Release(1)
			d, err := p.checkPatient(egCtx, id)
			if err != nil {
				return fmt.Errorf("while checking patient %s: %w", id, err)
			}
			results[i] = d
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checking patients failed")
		return nil, 0, fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var drifts []Drift
	for _, d := range results {
		if d != nil {
			drifts = append(drifts, *d)
		}
	}
	sort.Slice(drifts, func(i, j int) bool {
		return drifts[i].PatientID < drifts[j].PatientID
	})

	span.SetAttributes(
		attribute.Int("patients", len(ids)),
		attribute.Int("drifted", len(drifts)),
	)
	return drifts, len(ids), nil
}

// checkPatient returns nil when the counter matches.
func (p *Poller) checkPatient(ctx context.Context, id string) (*Drift, error) {
	patient, err := p.store.GetPatient(ctx, id)
	if errors.Is(err, dblayer.ErrPatientNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("while reading patient: %w", err)
	}

	actual, err := p.store.CountMedicines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("while counting medicines: %w", err)
	}

	if patient.MedicineCount == actual {
		return nil, nil
	}
	return &Drift{
		PatientID: id,
		Recorded:  patient.MedicineCount,
		Actual:    actual,
	}, nil
}
