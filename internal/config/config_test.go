package config

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
	"time"

	"github.com/google/uuid"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "8080")
	t.Setenv("DB_URL", "postgres://ims@localhost/ims")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "")
	t.Setenv("SYSTEM_ACTOR_ID", "")
	t.Setenv("EXPOSE_DEV_MESSAGES", "")

	cfg, err := LoadConfig(quiet())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("environment = %q", cfg.App.Environment)
	}
	actor, err := cfg.Ledger.ActorID()
	if err != nil || actor != uuid.Nil {
		t.Errorf("system actor = %v, %v; want the nil UUID", actor, err)
	}
	if !cfg.Ledger.ExposeDevMessages {
		t.Error("dev messages should be exposed outside production by default")
	}
	if cfg.Ledger.AllocationLockTTL != 30*time.Second {
		t.Errorf("lock ttl = %v", cfg.Ledger.AllocationLockTTL)
	}
	if cfg.Server.MaxBodyBytes != 50<<20 {
		t.Errorf("max body = %d", cfg.Server.MaxBodyBytes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigRequiresPortAndDatabase(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_URL", "postgres://x")
	if _, err := LoadConfig(quiet()); err == nil || !strings.Contains(err.Error(), "PORT") {
		t.Fatalf("expected PORT error, got %v", err)
	}

	t.Setenv("PORT", "8080")
	t.Setenv("DB_URL", "")
	if _, err := LoadConfig(quiet()); err == nil || !strings.Contains(err.Error(), "DB_URL") {
		t.Fatalf("expected DB_URL error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad actor", map[string]string{"SYSTEM_ACTOR_ID": "system"}, "SYSTEM_ACTOR_ID"},
		{"wildcard in production", map[string]string{"ENV": "production", "CORS_ALLOWED_ORIGINS": ""}, "wildcard"},
		{"zero lock ttl", map[string]string{"ALLOCATION_LOCK_TTL_SECONDS": "0"}, "ALLOCATION_LOCK_TTL_SECONDS"},
		{"explicit origins in production", map[string]string{"ENV": "production", "CORS_ALLOWED_ORIGINS": "https://erp.example.com"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig(quiet())
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			err = cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestProductionHidesDevMessagesByDefault(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("EXPOSE_DEV_MESSAGES", "")
	cfg, err := LoadConfig(quiet())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Ledger.ExposeDevMessages {
		t.Error("production should not expose dev messages unless asked")
	}
}

func TestCalculateBackoff(t *testing.T) {
	if got := calculateBackoff(time.Second, 3); got != 4*time.Second {
		t.Errorf("attempt 3 = %v", got)
	}
	if got := calculateBackoff(time.Second, 10); got != 30*time.Second {
		t.Errorf("backoff should cap at 30s, got %v", got)
	}
}

type ctxKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func TestResponderFailureHidesDetail(t *testing.T) {
	rs := NewResponder(false, quiet(), requestID)
	req := httptest.NewRequest(http.MethodGet, "/api/allocation", nil)
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "abc123"))
	rec := httptest.NewRecorder()

	rs.Failure(rec, req, http.StatusInternalServerError, "Something went wrong, please try again later", errors.New("pq: relation missing"))

	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.StatusCode != 500 || env.Data != nil {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if strings.Contains(env.DevMessage, "relation") {
		t.Errorf("devMessage leaked the raw error: %q", env.DevMessage)
	}
	if !strings.Contains(env.DevMessage, "abc123") {
		t.Errorf("devMessage should carry the request id, got %q", env.DevMessage)
	}
}

func TestResponderExposesDetail(t *testing.T) {
	rs := NewResponder(true, quiet(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/source", nil)

	rec := httptest.NewRecorder()
	rs.Failure(rec, req, http.StatusInternalServerError, "Something went wrong", errors.New("boom"))
	var env Envelope
	_ = json.NewDecoder(rec.Body).Decode(&env)
	if env.DevMessage != "boom" {
		t.Errorf("devMessage = %q", env.DevMessage)
	}

	rec = httptest.NewRecorder()
	rs.Error(rec, req, http.StatusInternalServerError, "Internal server error", errors.New("boom"))
	var body ErrorBody
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body.Error != "boom" {
		t.Errorf("error = %q", body.Error)
	}

	rec = httptest.NewRecorder()
	rs.Error(rec, req, http.StatusNotFound, "Not found", errors.New("no rows in result set"))
	body = ErrorBody{}
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body.Error != "Not found" {
		t.Errorf("4xx should keep the safe message, got %q", body.Error)
	}
}
