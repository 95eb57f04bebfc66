package webui

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"ilac-cebimde/medtracker/admin"
	"ilac-cebimde/medtracker/audio"
	"ilac-cebimde/medtracker/authstate"
	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/dbtypes"
	"ilac-cebimde/medtracker/identity"
	"ilac-cebimde/medtracker/intake"
	"ilac-cebimde/medtracker/webui/uitemplates"

	"github.com/golang/glog"
)

// recentPatientCount is how many patients the dashboard lists.
const recentPatientCount = 5

// Auth is the auth provider.  *identity.Provider implements it.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*identity.Account, error)
	SignUp(ctx context.Context, displayName, email, password string) (*identity.Account, error)
	GrantDoctor(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, uid, displayName, password string) error
}

// Profiles writes the profile data that lives outside the auth provider.
// *dblayer.DB implements it.
type Profiles interface {
	CreatePatient(ctx context.Context, uid string, patient *dbtypes.Patient) error
	UpdatePatientDisplayName(ctx context.Context, uid, displayName string) error
	UpdateSessionDisplayName(ctx context.Context, uid, displayName string) error
}

type WebUI struct {
	admin    *admin.Service
	auth     Auth
	profiles Profiles
	sessions *authstate.Manager
	audio    *audio.Links
	limiter  *AuthLimiter
}

// New returns a WebUI.  audioLinks and limiter may be nil.
func New(adminService *admin.Service, auth Auth, profiles Profiles, sessions *authstate.Manager, audioLinks *audio.Links, limiter *AuthLimiter) *WebUI {
	return &WebUI{
		admin:    adminService,
		auth:     auth,
		profiles: profiles,
		sessions: sessions,
		audio:    audioLinks,
		limiter:  limiter,
	}
}

func (u *WebUI) Register(m *http.ServeMux) {
	m.HandleFunc("/", u.homeHandler)
	m.HandleFunc("/login", u.logInHandler)
	m.HandleFunc("/register", u.registerHandler)
	m.HandleFunc("/logout", u.logOutHandler)
	m.HandleFunc("/yonetim", u.dashboardHandler)
	m.HandleFunc("/yonetim/hastalar", u.listPatientsHandler)
	m.HandleFunc("/yonetim/hasta", u.showPatientHandler)
	m.HandleFunc("/yonetim/ilac-ekle", u.addMedicineHandler)
	m.HandleFunc("/yonetim/ilac-duzenle", u.editMedicineHandler)
	m.HandleFunc("/yonetim/ilac-sil", u.deleteMedicineHandler)
	m.HandleFunc("/yonetim/ayarlar", u.settingsHandler)
	m.HandleFunc("/setup-admin-claim", u.grantDoctorHandler)
}

// Handler returns the full UI: routes behind the session gate, the auth
// state middleware, rate limiting and request logging.
func (u *WebUI) Handler() http.Handler {
	mux := http.NewServeMux()
	u.Register(mux)

	var h http.Handler = mux
	h = Gate(h)
	h = u.sessions.Middleware(h)
	if u.limiter != nil {
		h = u.limiter.Middleware(h)
	}
	return RequestLog(h)
}

func renderTemplate(w http.ResponseWriter, t *template.Template, params any) {
	content := bytes.Buffer{}
	if err := t.Execute(&content, params); err != nil {
		glog.Errorf("Error while executing template: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.Copy(w, &content); err != nil {
		// It's too late to write an error to the HTTP response.
		glog.Errorf("Error while writing output: %v", err)
		return
	}
}

func activeUser(r *http.Request) uitemplates.ActiveUserParams {
	state := authstate.FromContext(r.Context())
	if !state.SignedIn() {
		return uitemplates.ActiveUserParams{}
	}
	return uitemplates.ActiveUserParams{
		SignedIn:    true,
		DisplayName: state.User.DisplayName,
		Email:       state.User.Email,
	}
}

func ShowPatientLink(id string) string {
	return ShowPatientLinkWithError(id, "")
}

func ShowPatientLinkWithError(id, userError string) string {
	q := url.Values{}
	q.Add("id", id)
	if userError != "" {
		q.Add("user-error", userError)
	}
	showPatientLink := &url.URL{
		Path:     "/yonetim/hasta",
		RawQuery: q.Encode(),
	}
	return showPatientLink.String()
}

func addMedicineLink(patientID string) string {
	q := url.Values{}
	q.Add("patient-id", patientID)
	link := &url.URL{
		Path:     "/yonetim/ilac-ekle",
		RawQuery: q.Encode(),
	}
	return link.String()
}

func editMedicineLink(patientID, medicineID string) string {
	q := url.Values{}
	q.Add("patient-id", patientID)
	q.Add("medicine-id", medicineID)
	link := &url.URL{
		Path:     "/yonetim/ilac-duzenle",
		RawQuery: q.Encode(),
	}
	return link.String()
}

// displayDate turns an RFC 3339 timestamp into a day.month.year date.
func displayDate(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	return t.Format("02.01.2006")
}

func listPatientsPatient(p admin.PatientSummary) uitemplates.ListPatientsPatient {
	return uitemplates.ListPatientsPatient{
		Name:            p.Name,
		Email:           p.Email,
		PhoneNumber:     p.PhoneNumber,
		MedicineCount:   p.MedicineCount,
		CreatedOn:       displayDate(p.CreatedAt),
		ShowPatientLink: ShowPatientLink(p.ID),
	}
}

// homeHandler renders the landing page.
func (u *WebUI) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	renderTemplate(w, uitemplates.HomeTemplate, &uitemplates.HomeParams{
		ActiveUser: activeUser(r),
	})
}

func (u *WebUI) logInHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/login" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{
			ActiveUser: activeUser(r),
		})
	case http.MethodPost:
		u.logInPostHandler(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (u *WebUI) logInPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	acct, err := u.auth.SignIn(ctx, email, password)
	if err != nil {
		glog.Infof("Sign-in failed for %q: %v", email, err)
		renderTemplate(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{
			ActiveUser: activeUser(r),
			Email:      email,
			UserError:  identity.SignInMessage(err),
		})
		return
	}

	user := &authstate.User{
		UID:         acct.UID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		Doctor:      acct.Doctor,
	}
	if err := u.sessions.SignedIn(ctx, w, user); err != nil {
		glog.Errorf("Error while starting session for %s: %v", acct.UID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/yonetim", http.StatusFound)
}

func (u *WebUI) registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/register" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, uitemplates.RegisterTemplate, &uitemplates.RegisterParams{
			ActiveUser: activeUser(r),
		})
	case http.MethodPost:
		u.registerPostHandler(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (u *WebUI) registerPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reg := admin.Registration{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}

	params := &uitemplates.RegisterParams{
		ActiveUser: activeUser(r),
		Name:       reg.Name,
		Email:      reg.Email,
	}

	if err := reg.Validate(); err != nil {
		params.UserError = admin.ValidationMessage(err)
		renderTemplate(w, uitemplates.RegisterTemplate, params)
		return
	}

	acct, err := u.auth.SignUp(ctx, reg.Name, reg.Email, reg.Password)
	if err != nil {
		glog.Infof("Sign-up failed for %q: %v", reg.Email, err)
		params.UserError = identity.SignUpMessage(err)
		renderTemplate(w, uitemplates.RegisterTemplate, params)
		return
	}

	patient := &dbtypes.Patient{
		Email:         acct.Email,
		DisplayName:   reg.Name,
		CreatedAt:     time.Now(),
		MedicineCount: 0,
	}
	if err := u.profiles.CreatePatient(ctx, acct.UID, patient); err != nil {
		glog.Errorf("Error while creating profile for %s: %v", acct.UID, err)
		params.UserError = identity.MsgSignUpFailed
		renderTemplate(w, uitemplates.RegisterTemplate, params)
		return
	}

	user := &authstate.User{
		UID:         acct.UID,
		Email:       acct.Email,
		DisplayName: reg.Name,
	}
	if err := u.sessions.SignedIn(ctx, w, user); err != nil {
		glog.Errorf("Error while starting session for %s: %v", acct.UID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/yonetim", http.StatusFound)
}

func (u *WebUI) logOutHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/logout" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, uitemplates.LogOutTemplate, &uitemplates.LogOutParams{
			ActiveUser: activeUser(r),
		})
	case http.MethodPost:
		u.sessions.Logout(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (u *WebUI) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/yonetim" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	params := &uitemplates.DashboardParams{
		ActiveUser: activeUser(r),
	}

	patients, err := u.admin.ListPatients(r.Context())
	if err != nil {
		params.UserError = admin.UserMessage(err)
		renderTemplate(w, uitemplates.DashboardTemplate, params)
		return
	}

	stats := admin.ComputeStats(patients)
	params.TotalPatients = stats.TotalPatients
	params.TotalMedicines = stats.TotalMedicines
	params.ActivePatients = stats.ActivePatients

	recent := append([]admin.PatientSummary(nil), patients...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt > recent[j].CreatedAt
	})
	if len(recent) > recentPatientCount {
		recent = recent[:recentPatientCount]
	}
	for _, p := range recent {
		params.RecentPatients = append(params.RecentPatients, listPatientsPatient(p))
	}

	renderTemplate(w, uitemplates.DashboardTemplate, params)
}

// listPatientsHandler renders the patient list, filtered by the q parameter.
func (u *WebUI) listPatientsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/yonetim/hastalar" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	params := &uitemplates.ListPatientsParams{
		ActiveUser: activeUser(r),
		Query:      r.Form.Get("q"),
	}

	patients, err := u.admin.ListPatients(r.Context())
	if err != nil {
		params.UserError = admin.UserMessage(err)
		renderTemplate(w, uitemplates.ListPatientsTemplate, params)
		return
	}

	params.Total = len(patients)
	for _, p := range admin.FilterPatients(patients, strings.TrimSpace(params.Query)) {
		params.Patients = append(params.Patients, listPatientsPatient(p))
	}

	renderTemplate(w, uitemplates.ListPatientsTemplate, params)
}

func (u *WebUI) showPatientHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/yonetim/hasta" {
		glog.Errorf("Returning Not Found because showPatientHandler doesn't support path %q", r.URL.Path)
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	patientID := r.Form.Get("id")
	if patientID == "" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	detail, err := u.admin.PatientDetail(ctx, patientID)
	if errors.Is(err, dblayer.ErrPatientNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		glog.Errorf("Error while loading patient %s: %v", patientID, err)
		http.Error(w, admin.UserMessage(err), http.StatusInternalServerError)
		return
	}

	params := &uitemplates.ShowPatientParams{
		ActiveUser:      activeUser(r),
		PatientID:       patientID,
		Name:            detail.Patient.Name,
		Email:           detail.Patient.Email,
		PhoneNumber:     detail.Patient.PhoneNumber,
		Gender:          detail.Patient.Gender,
		SelfLink:        ShowPatientLink(patientID),
		AddMedicineLink: addMedicineLink(patientID),
		UserError:       r.Form.Get("user-error"),
	}
	if detail.Patient.Age != nil {
		params.Age = strconv.FormatInt(*detail.Patient.Age, 10)
	}

	audioURLs := u.audio.ForMedicines(ctx, detail.Medicines)

	meds := append([]dblayer.MedicineDoc(nil), detail.Medicines...)
	sort.SliceStable(meds, func(i, j int) bool {
		return meds[i].Medicine.Name < meds[j].Medicine.Name
	})
	for _, m := range meds {
		params.Medicines = append(params.Medicines, uitemplates.ShowPatientMedicine{
			ID:           m.ID,
			Name:         m.Medicine.Name,
			Dose:         m.Medicine.Dose,
			Times:        strings.Join(m.Medicine.Schedule(), ", "),
			Remaining:    m.Medicine.RemainingQuantity,
			Total:        m.Medicine.TotalQuantity,
			Instructions: m.Medicine.Instructions,
			DoctorNote:   m.Medicine.DoctorNote,
			HungerStatus: m.Medicine.HungerStatus,
			Active:       m.Medicine.IsActive(),
			AudioURL:     audioURLs[m.ID],
			EditLink:     editMedicineLink(patientID, m.ID),
		})
	}

	for _, in := range detail.Intakes {
		params.Intakes = append(params.Intakes, uitemplates.ShowPatientIntake{
			MedicineName: in.MedicineName,
			TakenAt:      in.TakenAt,
			Status:       statusLabel(in.Status),
		})
	}

	renderTemplate(w, uitemplates.ShowPatientTemplate, params)
}

func statusLabel(status intake.Status) string {
	switch status {
	case intake.StatusTaken:
		return "Alındı"
	case intake.StatusSkipped:
		return "Atlandı"
	case intake.StatusMissed:
		return "Kaçırıldı"
	}
	return string(status)
}

func medicineFormFromRequest(r *http.Request) admin.MedicineForm {
	return admin.MedicineForm{
		Name:              r.PostForm.Get("name"),
		Dose:              r.PostForm.Get("dose"),
		Times:             r.PostForm["times"],
		TotalQuantity:     r.PostForm.Get("total-quantity"),
		RemainingQuantity: r.PostForm.Get("remaining-quantity"),
		Instructions:      r.PostForm.Get("instructions"),
		DoctorNote:        r.PostForm.Get("doctor-note"),
		HungerStatus:      r.PostForm.Get("hunger-status"),
		Active:            r.PostForm.Get("active") == "true",
	}
}

// timeSlots returns times plus enough blank slots to add a few more.
func timeSlots(times []string) []string {
	out := []string{}
	for _, t := range times {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	out = append(out, "")
	for len(out) < 3 {
		out = append(out, "")
	}
	return out
}

func editMedicineParams(r *http.Request, patient *admin.PatientSummary, medicineID string, form admin.MedicineForm) *uitemplates.EditMedicineParams {
	params := &uitemplates.EditMedicineParams{
		ActiveUser:        activeUser(r),
		Adding:            medicineID == "",
		PatientID:         patient.ID,
		MedicineID:        medicineID,
		PatientName:       patient.Name,
		ShowPatientLink:   ShowPatientLink(patient.ID),
		Name:              form.Name,
		Dose:              form.Dose,
		Times:             timeSlots(form.Times),
		TotalQuantity:     form.TotalQuantity,
		RemainingQuantity: form.RemainingQuantity,
		Instructions:      form.Instructions,
		DoctorNote:        form.DoctorNote,
		HungerStatus:      form.HungerStatus,
		Active:            form.Active,
		DoctorNoteLimit:   admin.DoctorNoteLimit,
	}
	if params.Adding {
		params.SelfLink = addMedicineLink(patient.ID)
	} else {
		params.SelfLink = editMedicineLink(patient.ID, medicineID)
	}
	return params
}

// loadPatient looks up the patient named by the patient-id parameter,
// writing an error response and returning nil if that fails.
func (u *WebUI) loadPatient(w http.ResponseWriter, r *http.Request) *admin.PatientSummary {
	patientID := r.Form.Get("patient-id")
	if patientID == "" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}

	patient, err := u.admin.GetPatient(r.Context(), patientID)
	if errors.Is(err, dblayer.ErrPatientNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		http.Error(w, admin.UserMessage(err), http.StatusInternalServerError)
		return nil
	}
	return patient
}

func (u *WebUI) addMedicineHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/yonetim/ilac-ekle" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	patient := u.loadPatient(w, r)
	if patient == nil {
		return
	}

	if r.Method == http.MethodGet {
		form := admin.MedicineForm{TotalQuantity: "0", RemainingQuantity: "0", Active: true}
		renderTemplate(w, uitemplates.EditMedicineTemplate, editMedicineParams(r, patient, "", form))
		return
	}

	form := medicineFormFromRequest(r)
	if _, err := u.admin.AddMedicine(r.Context(), patient.ID, form); err != nil {
		params := editMedicineParams(r, patient, "", form)
		params.UserError = admin.UserMessage(err)
		renderTemplate(w, uitemplates.EditMedicineTemplate, params)
		return
	}

	http.Redirect(w, r, ShowPatientLink(patient.ID), http.StatusFound)
}

func (u *WebUI) editMedicineHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/yonetim/ilac-duzenle" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	patient := u.loadPatient(w, r)
	if patient == nil {
		return
	}

	medicineID := r.Form.Get("medicine-id")
	if medicineID == "" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodGet {
		med, err := u.admin.GetMedicine(r.Context(), patient.ID, medicineID)
		if errors.Is(err, dblayer.ErrMedicineNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, admin.UserMessage(err), http.StatusInternalServerError)
			return
		}
		renderTemplate(w, uitemplates.EditMedicineTemplate, editMedicineParams(r, patient, medicineID, admin.FormFromMedicine(med)))
		return
	}

	form := medicineFormFromRequest(r)
	if err := u.admin.UpdateMedicine(r.Context(), patient.ID, medicineID, form); err != nil {
		params := editMedicineParams(r, patient, medicineID, form)
		params.UserError = admin.UserMessage(err)
		renderTemplate(w, uitemplates.EditMedicineTemplate, params)
		return
	}

	http.Redirect(w, r, ShowPatientLink(patient.ID), http.StatusFound)
}

func (u *WebUI) deleteMedicineHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/yonetim/ilac-sil" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	patientID := r.PostForm.Get("patient-id")
	medicineID := r.PostForm.Get("medicine-id")
	if patientID == "" || medicineID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := u.admin.DeleteMedicine(r.Context(), patientID, medicineID); err != nil {
		http.Redirect(w, r, ShowPatientLinkWithError(patientID, admin.UserMessage(err)), http.StatusFound)
		return
	}

	http.Redirect(w, r, ShowPatientLink(patientID), http.StatusFound)
}

func (u *WebUI) settingsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/yonetim/ayarlar" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	state := authstate.FromContext(ctx)
	if !state.SignedIn() {
		// The gate cookie outlived the server-side session.
		u.sessions.Logout(w, r)
		return
	}

	params := &uitemplates.SettingsParams{
		ActiveUser:  activeUser(r),
		DisplayName: state.User.DisplayName,
		Email:       state.User.Email,
	}

	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, uitemplates.SettingsTemplate, params)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	upd := admin.ProfileUpdate{
		DisplayName:     strings.TrimSpace(r.PostForm.Get("display-name")),
		Password:        r.PostForm.Get("password"),
		PasswordConfirm: r.PostForm.Get("password-confirm"),
	}
	params.DisplayName = upd.DisplayName

	if err := upd.Validate(); err != nil {
		params.UserError = admin.ValidationMessage(err)
		renderTemplate(w, uitemplates.SettingsTemplate, params)
		return
	}

	if err := u.auth.UpdateProfile(ctx, state.User.UID, upd.DisplayName, upd.Password); err != nil {
		glog.Errorf("Error while updating auth profile of %s: %v", state.User.UID, err)
		params.UserError = identity.MsgUpdateFailed
		renderTemplate(w, uitemplates.SettingsTemplate, params)
		return
	}

	if err := u.profiles.UpdatePatientDisplayName(ctx, state.User.UID, upd.DisplayName); err != nil {
		glog.Errorf("Error while updating profile document of %s: %v", state.User.UID, err)
		params.UserError = identity.MsgUpdateFailed
		renderTemplate(w, uitemplates.SettingsTemplate, params)
		return
	}

	if err := u.profiles.UpdateSessionDisplayName(ctx, state.User.UID, upd.DisplayName); err != nil {
		glog.Errorf("Error while updating sessions of %s: %v", state.User.UID, err)
	}

	params.ActiveUser.DisplayName = upd.DisplayName
	params.Saved = true
	renderTemplate(w, uitemplates.SettingsTemplate, params)
}

func (u *WebUI) grantDoctorHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/setup-admin-claim" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	state := authstate.FromContext(ctx)
	if !state.SignedIn() || !state.User.Doctor {
		glog.Warningf("Refusing doctor grant page to non-doctor")
		http.Error(w, "Bu işlem için doktor yetkisi gerekir.", http.StatusForbidden)
		return
	}

	params := &uitemplates.GrantDoctorParams{
		ActiveUser: activeUser(r),
	}

	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, uitemplates.GrantDoctorTemplate, params)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	params.Email = email

	if err := u.auth.GrantDoctor(ctx, email); err != nil {
		glog.Errorf("Error while granting doctor claim to %q: %v", email, err)
		params.UserError = identity.GrantMessage(email, err)
	} else {
		params.Message = identity.GrantMessage(email, nil)
	}

	renderTemplate(w, uitemplates.GrantDoctorTemplate, params)
}
