package healthz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func TestHandler(t *testing.T) {
	testCases := []struct {
		desc       string
		deps       []Pinger
		wantStatus int
	}{
		{desc: "liveness", wantStatus: http.StatusOK},
		{desc: "ready", deps: []Pinger{fakePinger{}}, wantStatus: http.StatusOK},
		{desc: "not ready", deps: []Pinger{fakePinger{}, fakePinger{err: errors.New("down")}}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(tc.deps...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tc.wantStatus {
				t.Errorf("Status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
