package analysis

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerPlot(t *testing.T) {
	h := NewHandler(nil)

	body := `{"data":[["0","0","10"],["1","6.32","3.68"],["2","8.65","1.35"],["3","9.5","0.5"]],
		"headers":["Time (s)","Charge (V)","Discharge (V)"],
		"title":"RC","axis_labels":{"x":"t","y":"V"}}`
	for _, path := range []string{"/plot", "/"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body)
		}
		var resp Response
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if resp.Layout.XAxis.Title != "t" || resp.Layout.YAxis.Title != "V" {
			t.Errorf("%s: unexpected layout %+v", path, resp.Layout)
		}
		if len(resp.XData) != 4 {
			t.Errorf("%s: expected 4 x values, got %d", path, len(resp.XData))
		}
	}
}

func TestHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
		errMsg string
	}{
		{"no data", http.MethodPost, `{"data":[],"headers":["x"]}`, http.StatusBadRequest, "No data provided"},
		{"bad json", http.MethodPost, `{`, http.StatusBadRequest, "invalid JSON"},
		{"unsorted", http.MethodPost, `{"data":[["1","1"],["0","2"]],"headers":["x","y"]}`, http.StatusInternalServerError, "strictly increasing"},
		{"get", http.MethodGet, ``, http.StatusMethodNotAllowed, "method not allowed"},
	}

	h := NewHandler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/plot", strings.NewReader(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, rec.Code)
			}
			var eb errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &eb); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(eb.Error, tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, eb.Error)
			}
		})
	}
}

func TestHandlerHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
