package webui

import (
	"net/http"
	"strings"

	"ilac-cebimde/medtracker/authstate"
)

// publicPaths are served without a session cookie.
var publicPaths = map[string]bool{
	"/":         true,
	"/login":    true,
	"/register": true,
}

// gateRedirect decides where the gate sends a request, or "" to let it
// through.  Only the presence of the gate cookie is considered.
func gateRedirect(path string, hasSession bool) string {
	if path == "/favicon.ico" || strings.HasPrefix(path, "/static/") {
		return ""
	}

	if publicPaths[path] {
		if hasSession && (path == "/login" || path == "/register") {
			return "/yonetim"
		}
		return ""
	}

	if !hasSession {
		return "/login"
	}
	return ""
}

// Gate redirects visitors without the gate cookie to the login page, and
// visitors with it away from the login and registration pages.  It does not
// check that the cookie is valid.
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(authstate.GateCookie)
		if to := gateRedirect(r.URL.Path, err == nil); to != "" {
			http.Redirect(w, r, to, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
