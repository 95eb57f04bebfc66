package httpmetrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opencensus.io/stats/view"
)

func TestWrapperCountsByStatus(t *testing.T) {
	if err := RegisterMetrics(); err != nil {
		t.Fatalf("Error registering views: %v", err)
	}
	defer view.Unregister(RequestCountView, RequestLatencyView)

	h := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/yonetim", "/yonetim", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rows, err := view.RetrieveData(RequestCountView.Name)
	if err != nil {
		t.Fatalf("Error retrieving view data: %v", err)
	}

	got := map[string]int64{}
	for _, row := range rows {
		var path, status string
		for _, tg := range row.Tags {
			switch tg.Key {
			case keyPath:
				path = tg.Value
			case keyStatus:
				status = tg.Value
			}
		}
		got[path+" "+status] = row.Data.(*view.CountData).Value
	}

	if got["/yonetim 200"] != 2 {
		t.Errorf("Count for /yonetim 200 = %d, want 2 (all rows %v)", got["/yonetim 200"], got)
	}
	if got["/missing 404"] != 1 {
		t.Errorf("Count for /missing 404 = %d, want 1 (all rows %v)", got["/missing 404"], got)
	}
}
