// Package healthz serves liveness and readiness checks for the debug server.
package healthz

import (
	"context"
	"net/http"
	"time"

	"github.com/golang/glog"
)

// Pinger is something readiness depends on.  *dblayer.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	deps []Pinger
}

// New returns a handler that reports ready only when every dep pings
// successfully.  With no deps it is a plain liveness check.
func New(deps ...Pinger) *Handler {
	return &Handler{deps: deps}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, d := range h.deps {
		if err := d.Ping(ctx); err != nil {
			glog.Errorf("Readiness check failed: %v", err)
			http.Error(w, "503 Service Unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.Write([]byte("200 OK"))
}
