// Package intake reconstructs medication-taken events from the composite
// document ids the mobile client writes under users/{uid}/intakes.
//
// An intake id has the form <medicineId>_<YYYY-MM-DD>_<HH:MM>.  The document
// bodies carry nothing the console needs, so everything shown in the history
// comes from the id itself.
package intake

import "strings"

// HistoryLimit caps how many intake ids are fetched for one patient.
const HistoryLimit = 50

// UnknownDate is shown in place of takenAt when an id can't be decoded.
const UnknownDate = "Bilinmeyen Tarih"

// Status of an intake event.  Only StatusTaken is ever produced today.
type Status string

const (
	StatusTaken   Status = "taken"
	StatusSkipped Status = "skipped"
	StatusMissed  Status = "missed"
)

// Intake is a display-ready intake event.
type Intake struct {
	// ID is the raw document id the event was decoded from.
	ID string

	// MedicineID is empty when the id was malformed.
	MedicineID string

	// MedicineName is filled in by callers that can resolve MedicineID.
	MedicineName string

	// Timestamp is "<date>T<time>:00".  Empty when the id was malformed.
	Timestamp string

	// TakenAt is "<date> <time>", or UnknownDate.
	TakenAt string

	Status Status
}

// Decode parses an intake id.  It never fails: ids with fewer than three
// "_"-separated segments decode to a record with TakenAt set to UnknownDate.
//
// Segments after the date are rejoined with ":" to rebuild the time, so an id
// whose time was itself written with "_" ("m_2025-12-28_05_40") decodes the
// same as the canonical form.
func Decode(id string) Intake {
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return Intake{
			ID:      id,
			TakenAt: UnknownDate,
			Status:  StatusTaken,
		}
	}

	date := parts[1]
	clock := strings.Join(parts[2:], ":")

	return Intake{
		ID:         id,
		MedicineID: parts[0],
		Timestamp:  date + "T" + clock + ":00",
		TakenAt:    date + " " + clock,
		Status:     StatusTaken,
	}
}

// DecodeAll decodes ids in order.
func DecodeAll(ids []string) []Intake {
	out := make([]Intake, 0, len(ids))
	for _, id := range ids {
		out = append(out, Decode(id))
	}
	return out
}
