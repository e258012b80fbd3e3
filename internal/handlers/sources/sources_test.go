package sources

import (
	"net/http"
	"testing"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/tests/handlertest"

	"github.com/google/uuid"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	env.Router.RegisterGroup(NewSourceHandler(env.Handler).Routes())
	env.Router.RegisterGroup(NewDetailHandler(env.Handler).Routes())
	env.Router.RegisterGroup(NewSplitHandler(env.Handler).Routes())
	return env
}

// createGRN posts a source with one line split into the fixture warehouse.
func createGRN(t *testing.T, env *handlertest.Env) ledger.CreatedSource {
	t.Helper()
	rec := env.Do(t, http.MethodPost, "/api/source", map[string]any{
		"source_number": "GRN-0042",
		"source_date":   "2024-03-01",
		"details": []map[string]any{{
			"item_id":           env.Item.ID,
			"expected_quantity": "50",
			"warehouses": []map[string]any{{
				"warehouse_id":      env.Warehouse.ID,
				"expected_quantity": "50",
			}},
		}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create source: status %d body %s", rec.Code, rec.Body)
	}
	return handlertest.Decode[ledger.CreatedSource](t, rec)
}

func TestCreateSourceWithDetails(t *testing.T) {
	env := setup(t)
	src := createGRN(t, env)

	if src.SourceType != "GRN" || src.Status != "draft" {
		t.Errorf("defaults: source_type %q status %q", src.SourceType, src.Status)
	}
	if len(src.Details) != 1 || len(src.Details[0].Warehouses) != 1 {
		t.Fatalf("nested rows = %+v", src.Details)
	}
	split := src.Details[0].Warehouses[0]
	if split.SourceID != src.ID || split.ItemID != env.Item.ID {
		t.Errorf("split not linked to its parents: %+v", split)
	}
}

func TestCreateSourceRequiresNumberAndDate(t *testing.T) {
	env := setup(t)
	rec := env.Do(t, http.MethodPost, "/api/source", map[string]any{"source_number": "GRN-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := handlertest.ErrorMessage(t, rec); msg != "source_number and source_date are required." {
		t.Errorf("error = %q", msg)
	}
}

func TestSourceLifecycle(t *testing.T) {
	env := setup(t)
	src := createGRN(t, env)
	path := "/api/source/" + src.ID.String()

	rec := env.Do(t, http.MethodPatch, path+"/approve", nil)
	approved := handlertest.Decode[db.Source](t, rec)
	if rec.Code != http.StatusOK || approved.Status != "completed" {
		t.Fatalf("approve: status %d source status %q", rec.Code, approved.Status)
	}

	rec = env.Do(t, http.MethodGet, "/api/source?source_type=GRN", nil)
	list := handlertest.Decode[[]ledger.SourceListing](t, rec)
	if len(list) != 1 || len(list[0].DestinationWarehouses) != 1 {
		t.Fatalf("list = %+v", list)
	}
	if list[0].DestinationWarehouses[0].ID != env.Warehouse.ID {
		t.Errorf("destination = %v, want %v", list[0].DestinationWarehouses[0].ID, env.Warehouse.ID)
	}

	rec = env.Do(t, http.MethodGet, "/api/source?source_type=STN", nil)
	if list := handlertest.Decode[[]ledger.SourceListing](t, rec); len(list) != 0 {
		t.Errorf("filtered list = %+v, want empty", list)
	}

	rec = env.Do(t, http.MethodDelete, path, nil)
	body := handlertest.Decode[map[string]string](t, rec)
	if rec.Code != http.StatusOK || body["message"] != "Deleted" || body["id"] != src.ID.String() {
		t.Fatalf("delete: status %d body %v", rec.Code, body)
	}

	rec = env.Do(t, http.MethodGet, path, nil)
	if rec.Code != http.StatusNotFound || handlertest.ErrorMessage(t, rec) != "Not found" {
		t.Fatalf("get deleted: status %d body %s", rec.Code, rec.Body)
	}
}

func TestSourceDetailsBySource(t *testing.T) {
	env := setup(t)
	src := createGRN(t, env)

	rec := env.Do(t, http.MethodGet, "/api/source-detail/"+src.ID.String(), nil)
	body := handlertest.Decode[struct {
		SourceDetails []ledger.SourceDetailView `json:"source_details"`
	}](t, rec)
	if rec.Code != http.StatusOK || len(body.SourceDetails) != 1 {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	if got := body.SourceDetails[0]; len(got.Warehouses) != 1 {
		t.Errorf("warehouses = %+v", got.Warehouses)
	}

	rec = env.Do(t, http.MethodGet, "/api/source-detail/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown source: status %d, want 404", rec.Code)
	}

	rec = env.Do(t, http.MethodPost, "/api/source-detail", map[string]any{"item_id": env.Item.ID})
	if rec.Code != http.StatusBadRequest || handlertest.ErrorMessage(t, rec) != "source_id and item_id are required." {
		t.Fatalf("missing source_id: status %d body %s", rec.Code, rec.Body)
	}
}

func TestSplitEndpoints(t *testing.T) {
	env := setup(t)
	src := createGRN(t, env)
	detail := src.Details[0]

	rec := env.Do(t, http.MethodPost, "/api/source-item-warehouse-details/bulk", []any{})
	if rec.Code != http.StatusBadRequest || handlertest.ErrorMessage(t, rec) != "Request body must be a non-empty array." {
		t.Fatalf("empty bulk: status %d body %s", rec.Code, rec.Body)
	}

	rec = env.Do(t, http.MethodPost, "/api/source-item-warehouse-details", map[string]any{
		"source_id":        src.ID,
		"source_detail_id": detail.ID,
		"item_id":          env.Item.ID,
		"spec_id":          env.Spec.ID,
		"warehouse_id":     env.Warehouse.ID,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("spec without project: status %d, want 400", rec.Code)
	}

	rec = env.Do(t, http.MethodPut, "/api/source-item-warehouse-details/"+uuid.NewString(), map[string]any{
		"source_id":         src.ID,
		"source_detail_id":  detail.ID,
		"warehouse_id":      env.Warehouse.ID,
		"accepted_quantity": "48",
		"lost_quantity":     "2",
	})
	rows := handlertest.Decode[[]db.SourceItemWarehouseDetail](t, rec)
	if rec.Code != http.StatusOK || len(rows) != 1 {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body)
	}
	if rows[0].AcceptedQuantity.Decimal.String() != "48" {
		t.Errorf("accepted_quantity = %v, want 48", rows[0].AcceptedQuantity)
	}

	rec = env.Do(t, http.MethodPut, "/api/source-item-warehouse-details/x", map[string]any{"source_id": src.ID})
	if rec.Code != http.StatusBadRequest || handlertest.ErrorMessage(t, rec) != "source_id, source_detail_id, and warehouse_id are required" {
		t.Fatalf("missing keys: status %d body %s", rec.Code, rec.Body)
	}

	rec = env.Do(t, http.MethodGet, "/api/source-item-warehouse-details/"+detail.ID.String(), nil)
	if got := handlertest.Decode[[]db.SplitWarehouseRow](t, rec); rec.Code != http.StatusOK || len(got) != 1 {
		t.Fatalf("by detail: status %d body %s", rec.Code, rec.Body)
	}
}
