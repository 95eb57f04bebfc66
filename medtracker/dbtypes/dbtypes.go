// Package dbtypes holds the Firestore document shapes shared with the mobile
// client.
package dbtypes

import (
	"time"
)

// Collection names.
const (
	UsersCollection     = "users"
	MedicinesCollection = "medicines"
	IntakesCollection   = "intakes"
	SessionsCollection  = "sessions"
)

// Patient is a users/{uid} document.  The document id is the Firebase Auth
// uid.
type Patient struct {
	Email       string `firestore:"email"`
	DisplayName string `firestore:"displayName,omitempty"`
	FirstName   string `firestore:"firstName,omitempty"`
	LastName    string `firestore:"lastName,omitempty"`
	PhoneNumber string `firestore:"phoneNumber,omitempty"`
	Age         *int64 `firestore:"age,omitempty"`
	Gender      string `firestore:"gender,omitempty"`

	// Zero when the mobile client created the document without one.
	CreatedAt time.Time `firestore:"createdAt,omitempty"`

	// Incremented and decremented alongside medicine writes.  Never
	// recomputed, so it can drift from the real size of the medicines
	// subcollection.
	MedicineCount int64 `firestore:"medicineCount"`
}

// Medicine is a users/{uid}/medicines/{id} document.
type Medicine struct {
	Name string `firestore:"name"`
	Dose string `firestore:"dose"`

	// Older documents carry a single Time; newer ones carry Times.
	Time  string   `firestore:"time,omitempty"`
	Times []string `firestore:"times,omitempty"`

	TotalQuantity     int64 `firestore:"totalQuantity"`
	RemainingQuantity int64 `firestore:"remainingQuantity"`

	Instructions string `firestore:"instructions,omitempty"`
	DoctorNote   string `firestore:"doctorNote,omitempty"`

	// "Aç Karnına", "Tok Karnına", or free text.
	HungerStatus string `firestore:"hungerStatus,omitempty"`

	// nil means active.
	Active *bool `firestore:"active,omitempty"`

	// Object path in the project's Cloud Storage bucket.
	AudioPath string `firestore:"audioPath,omitempty"`

	CreatedAt time.Time `firestore:"createdAt,omitempty"`
}

// Schedule returns the medicine's times of day, whichever representation the
// document uses.
func (m *Medicine) Schedule() []string {
	if len(m.Times) > 0 {
		return m.Times
	}
	if m.Time != "" {
		return []string{m.Time}
	}
	return nil
}

// IsActive reports the active flag, defaulting to true.
func (m *Medicine) IsActive() bool {
	return m.Active == nil || *m.Active
}

// Session represents a log-in session for a console user.
type Session struct {
	Cookie      string    `firestore:"cookie"`
	UID         string    `firestore:"uid"`
	Email       string    `firestore:"email"`
	DisplayName string    `firestore:"displayName"`
	Doctor      bool      `firestore:"doctor"`
	Expires     time.Time `firestore:"expires"`
}
