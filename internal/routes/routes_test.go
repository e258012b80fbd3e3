package routes

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/observability"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/security"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/tests/handlertest"
)

func setup(t *testing.T, checks ...observability.Check) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	env.Router = router.NewRouter(env.Handler.Logger)
	Setup(env.Router, Deps{
		Handler: env.Handler,
		Access:  security.NewAccessValidator(security.AccessConfig{}),
		Health:  &observability.HealthConfig{Checks: checks},
	})
	return env
}

func TestSetupRegistersWithoutConflicts(t *testing.T) {
	env := setup(t)
	want := []string{
		"PUT /api/allocation/add/bulk",
		"PUT /api/material-issues/add/update-status/{id}",
		"GET /api/material_issues/get/approved",
		"PATCH /api/source/{id}/approve",
		"GET /api/inventory/warehouse/{warehouse_id}/item/{item_id}",
		"GET /api/delivery-challan/get/generated",
		"GET /api/item-tracking/item/{item_id}/timeline",
		"POST /validate-with-access-ims",
	}
	have := map[string]bool{}
	for _, r := range env.Router.Routes() {
		have[r.FullPattern] = true
	}
	for _, p := range want {
		if !have[p] {
			t.Errorf("route %q not registered", p)
		}
	}
}

func TestHealthEnvelope(t *testing.T) {
	env := setup(t, observability.Check{Name: "database", Critical: true, Probe: okProbe})
	rec := env.Do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	e := handlertest.Envelope(t, rec, nil)
	if !e.Success || e.ClientMessage != "Server is running successfully" {
		t.Errorf("envelope = %+v", e)
	}

	down := setup(t, observability.Check{Name: "database", Critical: true, Probe: func(context.Context) error {
		return errors.New("connection refused")
	}})
	if rec := down.Do(t, http.MethodGet, "/health", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}

func okProbe(context.Context) error { return nil }

func TestUnknownRouteEnvelope(t *testing.T) {
	env := setup(t)
	rec := env.Do(t, http.MethodGet, "/api/brand", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	e := handlertest.Envelope(t, rec, nil)
	if e.Success || e.ClientMessage != "Endpoint not found" || e.DevMessage != "Route GET /api/brand not found" {
		t.Errorf("envelope = %+v", e)
	}
}
