package uitemplates

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
)

func TestTemplatesExecute(t *testing.T) {
	signedIn := ActiveUserParams{SignedIn: true, DisplayName: "Dr. Ayşe", Email: "dr@example.com"}

	testCases := []struct {
		desc   string
		tmpl   *template.Template
		params any
	}{
		{"home", HomeTemplate, &HomeParams{}},
		{"login", LogInTemplate, &LogInParams{UserError: "hata"}},
		{"logout", LogOutTemplate, &LogOutParams{ActiveUser: signedIn}},
		{"register", RegisterTemplate, &RegisterParams{}},
		{"dashboard", DashboardTemplate, &DashboardParams{ActiveUser: signedIn, RecentPatients: []ListPatientsPatient{{Name: "Ali"}}}},
		{"list patients", ListPatientsTemplate, &ListPatientsParams{ActiveUser: signedIn}},
		{"show patient", ShowPatientTemplate, &ShowPatientParams{
			ActiveUser: signedIn,
			Medicines:  []ShowPatientMedicine{{Name: "Aspirin", AudioURL: "https://storage.example.com/a.mp3"}},
			Intakes:    []ShowPatientIntake{{MedicineName: "Aspirin", TakenAt: "2025-12-28 08:00"}},
		}},
		{"add medicine", EditMedicineTemplate, &EditMedicineParams{ActiveUser: signedIn, Adding: true, Times: []string{"", "", ""}}},
		{"edit medicine", EditMedicineTemplate, &EditMedicineParams{ActiveUser: signedIn, Times: []string{"08:00", ""}}},
		{"settings", SettingsTemplate, &SettingsParams{ActiveUser: signedIn, Saved: true}},
		{"grant doctor", GrantDoctorTemplate, &GrantDoctorParams{ActiveUser: signedIn, Message: "tamam"}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			buf := bytes.Buffer{}
			if err := tc.tmpl.Execute(&buf, tc.params); err != nil {
				t.Fatalf("Error while executing template: %v", err)
			}
			if !strings.Contains(buf.String(), "İlaç Cebimde") {
				t.Errorf("Output is missing the base layout")
			}
		})
	}
}

func TestNavbarOnlyWhenSignedIn(t *testing.T) {
	buf := bytes.Buffer{}
	if err := HomeTemplate.Execute(&buf, &HomeParams{}); err != nil {
		t.Fatalf("Error while executing template: %v", err)
	}
	if strings.Contains(buf.String(), `action="/logout"`) {
		t.Errorf("Signed-out page shows the logout form")
	}

	buf.Reset()
	if err := HomeTemplate.Execute(&buf, &HomeParams{ActiveUser: ActiveUserParams{SignedIn: true}}); err != nil {
		t.Fatalf("Error while executing template: %v", err)
	}
	if !strings.Contains(buf.String(), `action="/logout"`) {
		t.Errorf("Signed-in page lacks the logout form")
	}
}
