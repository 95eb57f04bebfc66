package authstate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ilac-cebimde/medtracker/dbtypes"

	"github.com/google/go-cmp/cmp"
)

type fakeSessions struct {
	sessions map[string]*dbtypes.Session
	fail     bool
}

func (f *fakeSessions) CreateSession(ctx context.Context, uid, email, displayName string, doctor bool) (*dbtypes.Session, error) {
	s := &dbtypes.Session{Cookie: "sid-" + uid, UID: uid, Email: email, DisplayName: displayName, Doctor: doctor}
	f.sessions[s.Cookie] = s
	return s, nil
}

func (f *fakeSessions) SessionFromCookie(ctx context.Context, cookie string) (*dbtypes.Session, error) {
	if f.fail {
		return nil, errors.New("fake failure")
	}
	return f.sessions[cookie], nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, cookie string) error {
	delete(f.sessions, cookie)
	return nil
}

func cookiesByName(resp *http.Response) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSignedInSetsBothCookies(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]*dbtypes.Session{}}
	m := NewManager(sessions, false)
	m.now = func() time.Time { return time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	if err := m.SignedIn(context.Background(), rec, &User{UID: "u1", Email: "dr@example.com", Doctor: true}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	cookies := cookiesByName(rec.Result())

	gate := cookies[GateCookie]
	if gate == nil {
		t.Fatalf("No %s cookie set", GateCookie)
	}
	if gate.Value != "true" || gate.Path != "/" || gate.MaxAge != 86400 {
		t.Errorf("Bad gate cookie: %+v", gate)
	}

	sid := cookies[SessionCookie]
	if sid == nil {
		t.Fatalf("No %s cookie set", SessionCookie)
	}
	if sid.Value != "sid-u1" || !sid.HttpOnly || sid.SameSite != http.SameSiteLaxMode {
		t.Errorf("Bad session cookie: %+v", sid)
	}

	if _, ok := sessions.sessions["sid-u1"]; !ok {
		t.Errorf("Session not stored")
	}
}

func TestLoad(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]*dbtypes.Session{
		"abc": {Cookie: "abc", UID: "u1", Email: "dr@example.com", DisplayName: "Dr. Ali", Doctor: true},
	}}
	m := NewManager(sessions, false)

	r := httptest.NewRequest(http.MethodGet, "/yonetim", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"})
	got := m.Load(r)
	want := &State{User: &User{UID: "u1", Email: "dr@example.com", DisplayName: "Dr. Ali", Doctor: true}}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad state; diff (-got +want)\n%s", diff)
	}

	r = httptest.NewRequest(http.MethodGet, "/yonetim", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "unknown"})
	if m.Load(r).SignedIn() {
		t.Errorf("Unknown session cookie should load as signed out")
	}

	sessions.fail = true
	r = httptest.NewRequest(http.MethodGet, "/yonetim", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"})
	if m.Load(r).SignedIn() {
		t.Errorf("Session lookup failure should load as signed out")
	}
}

func TestMiddlewareAttachesState(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]*dbtypes.Session{
		"abc": {Cookie: "abc", UID: "u1"},
	}}
	m := NewManager(sessions, false)

	var got *State
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"})
	h.ServeHTTP(httptest.NewRecorder(), r)

	if !got.SignedIn() || got.User.UID != "u1" || got.Loading {
		t.Errorf("Bad state in context: %+v", got)
	}

	if FromContext(context.Background()).SignedIn() {
		t.Errorf("Bare context should be signed out")
	}
}

func TestLogout(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]*dbtypes.Session{
		"abc": {Cookie: "abc", UID: "u1"},
	}}
	m := NewManager(sessions, false)

	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"})
	r.AddCookie(&http.Cookie{Name: GateCookie, Value: "true"})
	rec := httptest.NewRecorder()
	m.Logout(rec, r)

	resp := rec.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if _, ok := sessions.sessions["abc"]; ok {
		t.Errorf("Session not deleted")
	}

	cookies := cookiesByName(resp)
	for _, name := range []string{GateCookie, SessionCookie} {
		c := cookies[name]
		if c == nil || c.MaxAge >= 0 || c.Value != "" {
			t.Errorf("Cookie %s not cleared: %+v", name, c)
		}
	}
}
