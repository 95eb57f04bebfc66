// Package httpmetrics counts and times the requests served by a handler.
package httpmetrics

import (
	"net/http"
	"strconv"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	keyPath   = tag.MustNewKey("path")
	keyMethod = tag.MustNewKey("method")
	keyStatus = tag.MustNewKey("status")
)

var (
	requestCount   = stats.Int64("ilac/requests", "Requests handled", stats.UnitDimensionless)
	requestLatency = stats.Float64("ilac/request_latency", "Request handling latency", stats.UnitMilliseconds)
)

var (
	RequestCountView = &view.View{
		Name:        "ilac/requests",
		Description: "Counter of requests that have been handled",
		TagKeys:     []tag.Key{keyPath, keyMethod, keyStatus},
		Measure:     requestCount,
		Aggregation: view.Count(),
	}
	RequestLatencyView = &view.View{
		Name:        "ilac/request_latency",
		Description: "Distribution of request handling latency",
		TagKeys:     []tag.Key{keyPath, keyMethod},
		Measure:     requestLatency,
		Aggregation: view.Distribution(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	}
)

type Wrapper struct {
	inner http.Handler
}

func New(inner http.Handler) *Wrapper {
	return &Wrapper{inner: inner}
}

// RegisterMetrics registers the request views with OpenCensus.
func RegisterMetrics() error {
	return view.Register(RequestCountView, RequestLatencyView)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Wrapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	h.inner.ServeHTTP(rec, r)

	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	stats.RecordWithTags(
		r.Context(),
		[]tag.Mutator{
			tag.Insert(keyPath, r.URL.Path),
			tag.Insert(keyMethod, r.Method),
			tag.Insert(keyStatus, strconv.Itoa(rec.status)),
		},
		requestCount.M(1),
		requestLatency.M(elapsed),
	)
}
