package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/binpacking/internal/api"
	"github.com/eugenenazirov/binpacking/internal/packing"
	"github.com/eugenenazirov/binpacking/internal/storage"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store := storage.NewMemoryStorage()
	handler := api.NewHandler(packing.New(), store)
	logger := zaptest.NewLogger(t)
	return api.NewRouter(handler, logger)
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	settingsPayload, _ := json.Marshal(map[string]any{"capacity": 10, "strategy": "exact"})
	rec = performRequest(t, handler, http.MethodPut, "/api/settings", settingsPayload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from settings update, got %d: %s", rec.Code, rec.Body.String())
	}

	packPayload, _ := json.Marshal(map[string]any{"items": []float64{6, 5, 4, 3, 2}})
	rec = performRequest(t, handler, http.MethodPost, "/api/pack", packPayload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from pack, got %d: %s", rec.Code, rec.Body.String())
	}

	var packed struct {
		Strategy string    `json:"strategy"`
		Bins     []float64 `json:"bins"`
		BinCount int       `json:"binCount"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&packed); err != nil {
		t.Fatalf("decode pack response: %v", err)
	}
	if packed.Strategy != "exact" || packed.BinCount != 2 {
		t.Fatalf("unexpected packing %+v", packed)
	}

	for _, fill := range packed.Bins {
		validatePayload, _ := json.Marshal(map[string]any{"items": []float64{fill}})
		rec = performRequest(t, handler, http.MethodPost, "/api/bins/validate", validatePayload, jsonHeaders)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from validate, got %d", rec.Code)
		}
		var validated struct {
			Valid    bool    `json:"valid"`
			Capacity float64 `json:"capacity"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&validated); err != nil {
			t.Fatalf("decode validate response: %v", err)
		}
		if !validated.Valid || validated.Capacity != 10 {
			t.Fatalf("bin %v reported invalid: %+v", fill, validated)
		}
	}

	tooMany, _ := json.Marshal(map[string]any{"items": []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}})
	rec = performRequest(t, handler, http.MethodPost, "/api/pack", tooMany, jsonHeaders)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for oversized exact request, got %d", rec.Code)
	}

	benchPayload, _ := json.Marshal(map[string]any{
		"sizes":      []int{5, 20},
		"trials":     2,
		"strategies": []string{"ffd", "exact"},
		"seed":       3,
	})
	rec = performRequest(t, handler, http.MethodPost, "/api/benchmark", benchPayload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from benchmark, got %d: %s", rec.Code, rec.Body.String())
	}

	var report struct {
		Series []struct {
			Strategy string `json:"strategy"`
			Points   []struct {
				N       int  `json:"n"`
				Skipped bool `json:"skipped"`
			} `json:"points"`
		} `json:"series"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode benchmark response: %v", err)
	}
	if len(report.Series) != 2 || report.Series[1].Strategy != "exact" {
		t.Fatalf("unexpected series %+v", report.Series)
	}
	if report.Series[1].Points[0].Skipped || !report.Series[1].Points[1].Skipped {
		t.Fatalf("exact solver skip policy not applied: %+v", report.Series[1].Points)
	}
}
