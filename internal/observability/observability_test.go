package observability

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) (config.Envelope, HealthReport) {
	t.Helper()
	var env struct {
		config.Envelope
		Data HealthReport `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Envelope, env.Data
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     []Check
		wantCode   int
		wantStatus HealthStatus
	}{
		{"all healthy", []Check{{Name: "database", Critical: true, Probe: ok}, {Name: "cache", Probe: ok}}, 200, StatusHealthy},
		{"cache down", []Check{{Name: "database", Critical: true, Probe: ok}, {Name: "cache", Probe: down}}, 200, StatusDegraded},
		{"database down", []Check{{Name: "database", Critical: true, Probe: down}, {Name: "cache", Probe: ok}}, 503, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HealthHandler(&HealthConfig{Logger: quiet(), Checks: tt.checks})
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			env, report := decodeHealth(t, rec)
			if env.StatusCode != tt.wantCode || env.Success != (tt.wantCode == 200) {
				t.Errorf("envelope = %+v", env)
			}
			if report.Status != tt.wantStatus {
				t.Errorf("report status = %s, want %s", report.Status, tt.wantStatus)
			}
			if tt.wantStatus == StatusHealthy && env.ClientMessage != "Server is running successfully" {
				t.Errorf("clientMessage = %q", env.ClientMessage)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "trace-42" || rec.Header().Get(RequestIDHeader) != "trace-42" {
		t.Errorf("incoming id not reused: ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(seen) != 32 || strings.Contains(seen, " ") {
		t.Errorf("malformed id should be replaced, got %q", seen)
	}
}

func TestHTTPMetricsUsePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(&MetricsConfig{Logger: quiet(), Registerer: reg, Namespace: "test", Subsystem: "http"})

	mux := http.NewServeMux()
	mux.Handle("GET /api/source/{id}", m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	for _, id := range []string{"a", "b", "c"} {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/source/"+id, nil))
	}

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "GET /api/source/{id}", "404"))
	if got != 3 {
		t.Fatalf("requests_total = %v, want 3 under one pattern label", got)
	}
}

func TestLedgerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg, "ims")

	m.Operation("inventory_debit", "ok")
	m.Operation("inventory_debit", "ok")
	m.Operation("inventory_debit", "insufficient_quantity")
	m.Moved("debit", 2.5)
	m.Moved("debit", 0)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("inventory_debit", "ok")); got != 2 {
		t.Errorf("ok operations = %v", got)
	}
	if got := testutil.ToFloat64(m.moved.WithLabelValues("debit")); got != 2.5 {
		t.Errorf("moved = %v", got)
	}
}
