package access

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/cache"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/security"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/tests/handlertest"
)

// authStub answers 200 for "Bearer good" and 403 otherwise, counting calls.
func authStub(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/auth/validate-with-access" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"denied"}`))
			return
		}
		_, _ = w.Write([]byte(`{"valid":true,"echo":` + string(body) + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func setup(t *testing.T, baseURL string) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	mem := cache.NewMemoryCache(cache.DefaultConfig())
	t.Cleanup(func() { _ = mem.Close() })
	v := security.NewAccessValidator(security.AccessConfig{
		BaseURL:  baseURL,
		Cache:    mem,
		CacheTTL: time.Minute,
	})
	env.Router.RegisterGroup(NewAccessHandler(env.Handler, v).Routes())
	return env
}

func post(env *handlertest.Env, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/validate-with-access-ims", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func TestValidateRelaysAndCaches(t *testing.T) {
	srv, calls := authStub(t)
	env := setup(t, srv.URL)

	for i := 0; i < 2; i++ {
		rec := post(env, "Bearer good", `{"module":"ims"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: status %d body %s", i, rec.Code, rec.Body)
		}
		if got := rec.Body.String(); got != `{"valid":true,"echo":{"module":"ims"}}` {
			t.Fatalf("call %d: body %s", i, got)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("auth service called %d times, want 1", n)
	}

	post(env, "Bearer good", `{"module":"other"}`)
	if n := calls.Load(); n != 2 {
		t.Errorf("different body should miss the cache, calls = %d", n)
	}
}

func TestValidateRelaysDenialUncached(t *testing.T) {
	srv, calls := authStub(t)
	env := setup(t, srv.URL)

	for i := 0; i < 2; i++ {
		rec := post(env, "Bearer bad", `{}`)
		if rec.Code != http.StatusForbidden || rec.Body.String() != `{"message":"denied"}` {
			t.Fatalf("call %d: %d %s", i, rec.Code, rec.Body)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("denials must not be cached, calls = %d", n)
	}
}

func TestValidateWithoutToken(t *testing.T) {
	srv, calls := authStub(t)
	env := setup(t, srv.URL)

	rec := post(env, "", `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if calls.Load() != 0 {
		t.Error("auth service should not be called without a token")
	}
}

func TestValidateWithoutAuthService(t *testing.T) {
	env := setup(t, "")
	rec := post(env, "Bearer good", `{}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if msg := handlertest.ErrorMessage(t, rec); msg != "Auth service is not configured" {
		t.Errorf("error = %q", msg)
	}
}
