// Package handlertest wires handlers onto an in-memory store for HTTP tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"
	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/memdb"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Env is one test's store, service and router, seeded with a small master set.
type Env struct {
	Store   *memdb.DB
	Handler *handlers.Handler
	Router  *router.Router

	Item      db.Item
	Warehouse db.Warehouse
	Project   db.Project
	Bom       db.Bom
	Spec      db.BomSpec
}

func New(t *testing.T) *Env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memdb.New()

	e := &Env{
		Store:     store,
		Item:      db.Item{ID: uuid.New(), ItemCode: "ITM-100", ItemName: "Steel pipe", UomName: pgtype.Text{String: "nos", Valid: true}},
		Warehouse: db.Warehouse{ID: uuid.New(), WarehouseCode: "WH-02", WarehouseName: "North yard"},
		Project:   db.Project{ID: uuid.New(), Name: "Metro depot", ProjectNumber: pgtype.Text{String: "PRJ-12", Valid: true}},
	}
	e.Bom = db.Bom{ID: uuid.New(), Name: "Plumbing", ProjectID: uuid.NullUUID{UUID: e.Project.ID, Valid: true}}
	e.Spec = db.BomSpec{ID: uuid.New(), BomID: e.Bom.ID, SpecDescription: pgtype.Text{String: "2 inch", Valid: true}}
	store.PutItem(e.Item)
	store.PutWarehouse(e.Warehouse)
	store.PutProject(e.Project)
	store.PutBom(e.Bom)
	store.PutBomSpec(e.Spec)

	svc := ledger.New(ledger.Options{Store: store, Logger: logger, SystemActorID: uuid.New()})
	e.Handler = handlers.NewHandler(svc, config.NewResponder(false, logger, nil), logger)
	e.Router = router.NewRouter(logger)
	e.Router.NotFound(http.HandlerFunc(e.Handler.NotFound))
	return e
}

// Do sends body as JSON (or nothing when nil) and returns the recorded response.
func (e *Env) Do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// Envelope decodes an envelope response and, when data is non-nil, its data field.
func Envelope(t *testing.T, rec *httptest.ResponseRecorder, data any) config.Envelope {
	t.Helper()
	var env struct {
		config.Envelope
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode envelope data %q: %v", env.Data, err)
		}
	}
	return env.Envelope
}

// Decode decodes a raw JSON response.
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// ErrorMessage returns the "error" field of a raw failure body.
func ErrorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return Decode[config.ErrorBody](t, rec).Error
}
