package webui

import (
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLog tags every request with an id, echoed in the X-Request-ID
// response header, and logs one line per request.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Only well-formed UUIDs are carried over from upstream.
		rid := uuid.NewString()
		if id, err := uuid.Parse(r.Header.Get(requestIDHeader)); err == nil {
			rid = id.String()
		}
		w.Header().Set(requestIDHeader, rid)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		glog.Infof("Served request_id=%q method=%s path=%q status=%d latency=%v", rid, r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}
