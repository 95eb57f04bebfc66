// Package authstate holds who is signed in to the console for the duration
// of a request, and keeps that in step with the session cookies.
package authstate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ilac-cebimde/medtracker/dbtypes"
)

const (
	// GateCookie only marks that someone signed in.  Its presence is all the
	// route gate checks.
	GateCookie = "ilac_session"

	// SessionCookie carries the id of the server-side session.
	SessionCookie = "ilac_sid"

	CookieLifetime = 24 * time.Hour
)

type User struct {
	UID         string
	Email       string
	DisplayName string
	Doctor      bool
}

// State is the signed-in user, if any.  Loading is true until the session
// lookup for the current request has finished.
type State struct {
	User    *User
	Loading bool
}

func (s *State) SignedIn() bool {
	return s != nil && s.User != nil
}

// Sessions stores server-side sessions.  *dblayer.DB implements it.
type Sessions interface {
	CreateSession(ctx context.Context, uid, email, displayName string, doctor bool) (*dbtypes.Session, error)
	SessionFromCookie(ctx context.Context, cookie string) (*dbtypes.Session, error)
	DeleteSession(ctx context.Context, cookie string) error
}

type Manager struct {
	sessions Sessions
	secure   bool
	now      func() time.Time
}

// NewManager returns a Manager.  When secure is set, cookies are marked
// Secure.
func NewManager(sessions Sessions, secure bool) *Manager {
	return &Manager{
		sessions: sessions,
		secure:   secure,
		now:      time.Now,
	}
}

type contextKey struct{}

// FromContext returns the request's State.  Outside Middleware it returns a
// signed-out State.
func FromContext(ctx context.Context) *State {
	if s, ok := ctx.Value(contextKey{}).(*State); ok {
		return s
	}
	return &State{}
}

// Load resolves the request's session cookie into a State.  Lookup failures
// are logged and treated as signed out.
func (m *Manager) Load(r *http.Request) *State {
	state := &State{Loading: true}
	defer func() { state.Loading = false }()

	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return state
	}

	session, err := m.sessions.SessionFromCookie(r.Context(), c.Value)
	if err != nil {
		slog.ErrorContext(r.Context(), "Error while loading session", slog.Any("err", err))
		return state
	}
	if session == nil {
		return state
	}

	state.User = &User{
		UID:         session.UID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		Doctor:      session.Doctor,
	}
	return state
}

// Middleware attaches the request's State to its context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := m.Load(r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, state)))
	})
}

func (m *Manager) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  m.now().Add(CookieLifetime),
		MaxAge:   int(CookieLifetime / time.Second),
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SignedIn records user as signed in: a server-side session is created and
// both cookies are set together.
func (m *Manager) SignedIn(ctx context.Context, w http.ResponseWriter, user *User) error {
	session, err := m.sessions.CreateSession(ctx, user.UID, user.Email, user.DisplayName, user.Doctor)
	if err != nil {
		return fmt.Errorf("while creating session: %w", err)
	}

	sid := m.cookie(SessionCookie, session.Cookie)
	sid.HttpOnly = true
	http.SetCookie(w, sid)
	http.SetCookie(w, m.cookie(GateCookie, "true"))

	slog.InfoContext(ctx, "Signed in", slog.String("uid", user.UID))
	return nil
}

// SignedOut clears both cookies.
func (m *Manager) SignedOut(w http.ResponseWriter) {
	sid := m.expired(SessionCookie)
	sid.HttpOnly = true
	http.SetCookie(w, sid)
	http.SetCookie(w, m.expired(GateCookie))
}

// Logout deletes the request's server-side session, clears both cookies and
// sends the browser to the login page.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if err := m.sessions.DeleteSession(r.Context(), c.Value); err != nil {
			slog.ErrorContext(r.Context(), "Error while deleting session", slog.Any("err", err))
		}
	}
	m.SignedOut(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
