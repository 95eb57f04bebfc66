// Package dblayer packages up all actual firestore accesses.
package dblayer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ilac-cebimde/medtracker/dbtypes"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/iterator"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const tracerName = "ilac-cebimde/medtracker/dblayer"

// SessionLifetime matches the one-day lifetime of the session cookies.
const SessionLifetime = 24 * time.Hour

var (
	ErrPatientNotFound  = errors.New("no patient with that id")
	ErrMedicineNotFound = errors.New("no medicine with that id")
)

type DB struct {
	firestoreClient *firestore.Client
}

func New(firestoreClient *firestore.Client) *DB {
	return &DB{
		firestoreClient: firestoreClient,
	}
}

// PatientDoc pairs a users document with its id.
type PatientDoc struct {
	ID      string
	Patient *dbtypes.Patient
}

// MedicineDoc pairs a medicines document with its id.
type MedicineDoc struct {
	ID       string
	Medicine *dbtypes.Medicine
}

func (db *DB) users() *firestore.CollectionRef {
	return db.firestoreClient.Collection(dbtypes.UsersCollection)
}

func (db *DB) medicines(patientID string) *firestore.CollectionRef {
	return db.users().Doc(patientID).Collection(dbtypes.MedicinesCollection)
}

func (db *DB) intakes(patientID string) *firestore.CollectionRef {
	return db.users().Doc(patientID).Collection(dbtypes.IntakesCollection)
}

// Ping reads at most one users document to prove Firestore is reachable.
func (db *DB) Ping(ctx context.Context) error {
	iter := db.users().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("while reading from firestore: %w", err)
	}
	return nil
}

// ListPatients returns every users document.
func (db *DB) ListPatients(ctx context.Context) ([]PatientDoc, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.ListPatients")
	defer span.End()

	var out []PatientDoc
	iter := db.users().Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			err = fmt.Errorf("while iterating patients: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		patient := &dbtypes.Patient{}
		if err := snap.DataTo(patient); err != nil {
			err = fmt.Errorf("while unmarshaling patient %s: %w", snap.Ref.ID, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		out = append(out, PatientDoc{ID: snap.Ref.ID, Patient: patient})
	}

	span.SetAttributes(attribute.Int("count", len(out)))
	return out, nil
}

// ListPatientIDs returns the ids of every users document without reading
// their contents.
func (db *DB) ListPatientIDs(ctx context.Context) ([]string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.ListPatientIDs")
	defer span.End()

	var out []string
	iter := db.users().DocumentRefs(ctx)
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating patient refs: %w", err)
		}
		out = append(out, ref.ID)
	}
	return out, nil
}

func (db *DB) GetPatient(ctx context.Context, id string) (*dbtypes.Patient, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.GetPatient")
	defer span.End()
	span.SetAttributes(attribute.String("patient", id))

	snap, err := db.users().Doc(id).Get(ctx)
	if status.Code(err) == grpccodes.NotFound {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("while retrieving patient %s: %w", id, err)
	}

	patient := &dbtypes.Patient{}
	if err := snap.DataTo(patient); err != nil {
		return nil, fmt.Errorf("while unmarshaling patient %s: %w", id, err)
	}

	return patient, nil
}

// CreatePatient writes the profile document for a freshly registered user.
func (db *DB) CreatePatient(ctx context.Context, uid string, patient *dbtypes.Patient) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.CreatePatient")
	defer span.End()

	if _, err := db.users().Doc(uid).Set(ctx, patient); err != nil {
		return fmt.Errorf("while creating patient %s: %w", uid, err)
	}
	return nil
}

// UpdatePatientDisplayName sets displayName on a users document.  Accounts
// without a profile document (doctors created out of band) are left alone.
func (db *DB) UpdatePatientDisplayName(ctx context.Context, uid, displayName string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.UpdatePatientDisplayName")
	defer span.End()

	_, err := db.users().Doc(uid).Update(ctx, []firestore.Update{{Path: "displayName", Value: displayName}})
	if status.Code(err) == grpccodes.NotFound {
		slog.InfoContext(ctx, "No profile document to update", slog.String("uid", uid))
		return nil
	}
	if err != nil {
		return fmt.Errorf("while updating display name of %s: %w", uid, err)
	}
	return nil
}

// IncrementMedicineCount applies delta to the patient's medicineCount.  This
// is a separate write from the medicine create/delete it accompanies.
func (db *DB) IncrementMedicineCount(ctx context.Context, patientID string, delta int64) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.IncrementMedicineCount")
	defer span.End()
	span.SetAttributes(attribute.String("patient", patientID), attribute.Int64("delta", delta))

	_, err := db.users().Doc(patientID).Update(ctx, []firestore.Update{{Path: "medicineCount", Value: firestore.Increment(delta)}})
	if err != nil {
		return fmt.Errorf("while incrementing medicine count of %s by %d: %w", patientID, delta, err)
	}
	return nil
}

func (db *DB) ListMedicines(ctx context.Context, patientID string) ([]MedicineDoc, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.ListMedicines")
	defer span.End()
	span.SetAttributes(attribute.String("patient", patientID))

	var out []MedicineDoc
	iter := db.medicines(patientID).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating medicines of %s: %w", patientID, err)
		}

		med := &dbtypes.Medicine{}
		if err := snap.DataTo(med); err != nil {
			return nil, fmt.Errorf("while unmarshaling medicine %s: %w", snap.Ref.ID, err)
		}

		out = append(out, MedicineDoc{ID: snap.Ref.ID, Medicine: med})
	}

	return out, nil
}

// CountMedicines counts the documents in a patient's medicines subcollection.
func (db *DB) CountMedicines(ctx context.Context, patientID string) (int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.CountMedicines")
	defer span.End()

	var n int64
	iter := db.medicines(patientID).DocumentRefs(ctx)
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("while counting medicines of %s: %w", patientID, err)
		}
		n++
	}
	return n, nil
}

func (db *DB) GetMedicine(ctx context.Context, patientID, medicineID string) (*dbtypes.Medicine, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.GetMedicine")
	defer span.End()

	snap, err := db.medicines(patientID).Doc(medicineID).Get(ctx)
	if status.Code(err) == grpccodes.NotFound {
		return nil, ErrMedicineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("while retrieving medicine %s/%s: %w", patientID, medicineID, err)
	}

	med := &dbtypes.Medicine{}
	if err := snap.DataTo(med); err != nil {
		return nil, fmt.Errorf("while unmarshaling medicine %s/%s: %w", patientID, medicineID, err)
	}
	return med, nil
}

// AddMedicine creates a medicine document and returns its id.  It does not
// touch medicineCount.
func (db *DB) AddMedicine(ctx context.Context, patientID string, med *dbtypes.Medicine) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.AddMedicine")
	defer span.End()

	ref, _, err := db.medicines(patientID).Add(ctx, med)
	if err != nil {
		err = fmt.Errorf("while adding medicine for %s: %w", patientID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return ref.ID, nil
}

// UpdateMedicine overwrites the console-editable fields of a medicine.
// Fields the console never edits (audioPath, createdAt, the legacy single
// time) are left as they are.
func (db *DB) UpdateMedicine(ctx context.Context, patientID, medicineID string, med *dbtypes.Medicine) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.UpdateMedicine")
	defer span.End()

	active := med.IsActive()
	updates := []firestore.Update{
		{Path: "name", Value: med.Name},
		{Path: "dose", Value: med.Dose},
		{Path: "times", Value: med.Times},
		{Path: "totalQuantity", Value: med.TotalQuantity},
		{Path: "remainingQuantity", Value: med.RemainingQuantity},
		{Path: "instructions", Value: med.Instructions},
		{Path: "doctorNote", Value: med.DoctorNote},
		{Path: "hungerStatus", Value: med.HungerStatus},
		{Path: "active", Value: active},
	}

	_, err := db.medicines(patientID).Doc(medicineID).Update(ctx, updates)
	if status.Code(err) == grpccodes.NotFound {
		return ErrMedicineNotFound
	}
	if err != nil {
		return fmt.Errorf("while updating medicine %s/%s: %w", patientID, medicineID, err)
	}
	return nil
}

// DeleteMedicine deletes a medicine document.  It does not touch
// medicineCount.  Deleting a missing medicine returns ErrMedicineNotFound.
func (db *DB) DeleteMedicine(ctx context.Context, patientID, medicineID string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.DeleteMedicine")
	defer span.End()

	_, err := db.medicines(patientID).Doc(medicineID).Delete(ctx, firestore.Exists)
	if status.Code(err) == grpccodes.NotFound {
		return ErrMedicineNotFound
	}
	if err != nil {
		return fmt.Errorf("while deleting medicine %s/%s: %w", patientID, medicineID, err)
	}
	return nil
}

// ListIntakeIDs returns up to limit intake document ids, greatest first.
// Because the ids embed a zero-padded date, that is also most recent first.
func (db *DB) ListIntakeIDs(ctx context.Context, patientID string, limit int) ([]string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.ListIntakeIDs")
	defer span.End()
	span.SetAttributes(attribute.String("patient", patientID))

	var out []string
	iter := db.intakes(patientID).OrderBy(firestore.DocumentID, firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating intakes of %s: %w", patientID, err)
		}
		out = append(out, snap.Ref.ID)
	}
	return out, nil
}

// CreateSession stores a new session for the given account and returns it.
func (db *DB) CreateSession(ctx context.Context, uid, email, displayName string, doctor bool) (*dbtypes.Session, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.CreateSession")
	defer span.End()

	sessionCookieBytes := make([]byte, 32)
	if _, err := rand.Read(sessionCookieBytes); err != nil {
		return nil, fmt.Errorf("while generating session cookie: %w", err)
	}

	session := &dbtypes.Session{
		Cookie:      base64.URLEncoding.EncodeToString(sessionCookieBytes),
		UID:         uid,
		Email:       email,
		DisplayName: displayName,
		Doctor:      doctor,
		Expires:     time.Now().Add(SessionLifetime),
	}
	if _, _, err := db.firestoreClient.Collection(dbtypes.SessionsCollection).Add(ctx, session); err != nil {
		return nil, fmt.Errorf("while storing session cookie: %w", err)
	}

	return session, nil
}

// SessionFromCookie looks up an unexpired session by its cookie.  It returns
// nil, nil when there is none.
func (db *DB) SessionFromCookie(ctx context.Context, cookie string) (*dbtypes.Session, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.SessionFromCookie")
	defer span.End()

	var sessionSnapshot *firestore.DocumentSnapshot
	sessionIter := db.firestoreClient.Collection(dbtypes.SessionsCollection).Where("cookie", "==", cookie).Limit(1).Documents(ctx)
	defer sessionIter.Stop()
	for {
		var err error
		sessionSnapshot, err = sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up session: %w", err)
		}

		// We only consider a single session.
		break
	}
	if sessionSnapshot == nil {
		slog.InfoContext(ctx, "No session object corresponding to the cookie in the database")
		return nil, nil
	}

	session := &dbtypes.Session{}
	if err := sessionSnapshot.DataTo(session); err != nil {
		return nil, fmt.Errorf("while unmarshaling session: %w", err)
	}

	if session.Expires.Before(time.Now()) {
		slog.InfoContext(ctx, "Session object in the database is expired", slog.String("uid", session.UID))
		return nil, nil
	}

	return session, nil
}

// UpdateSessionDisplayName rewrites the cached display name on every session
// of an account.
func (db *DB) UpdateSessionDisplayName(ctx context.Context, uid, displayName string) error {
	iter := db.firestoreClient.Collection(dbtypes.SessionsCollection).Where("uid", "==", uid).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while looking up sessions of %s: %w", uid, err)
		}
		if _, err := snap.Ref.Update(ctx, []firestore.Update{{Path: "displayName", Value: displayName}}); err != nil {
			return fmt.Errorf("while updating session: %w", err)
		}
	}
	return nil
}

// DeleteSession deletes a session by its cookie.
func (db *DB) DeleteSession(ctx context.Context, cookie string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "DB.DeleteSession")
	defer span.End()

	sessionIter := db.firestoreClient.Collection(dbtypes.SessionsCollection).Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		sessionSnapshot, err := sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while looking up session: %w", err)
		}

		_, err = sessionSnapshot.Ref.Delete(ctx, firestore.LastUpdateTime(sessionSnapshot.UpdateTime))
		if err != nil {
			return fmt.Errorf("while deleting session: %w", err)
		}
	}

	return nil
}
