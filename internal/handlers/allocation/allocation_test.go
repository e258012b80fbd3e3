package allocation

import (
	"fmt"
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
	ah := NewAllocationHandler(env.Handler)
	env.Router.RegisterGroup(ah.Routes())
	env.Router.RegisterGroup(ah.ItemRoutes())
	env.Router.RegisterGroup(NewDetailHandler(env.Handler).Routes())
	return env
}

func createAllocation(t *testing.T, env *handlertest.Env, required, allocated string) db.ItemAllocation {
	t.Helper()
	rec := env.Do(t, http.MethodPost, "/api/allocation", map[string]any{
		"item_id":       env.Item.ID,
		"bom_id":        env.Bom.ID,
		"item_name":     "Steel pipe",
		"required_qty":  required,
		"allocated_qty": allocated,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create allocation: status %d body %s", rec.Code, rec.Body)
	}
	var row db.ItemAllocation
	e := handlertest.Envelope(t, rec, &row)
	if !e.Success || e.DevMessage != "Allocation created successfully" {
		t.Fatalf("unexpected envelope %+v", e)
	}
	return row
}

func TestAllocationCRUD(t *testing.T) {
	env := setup(t)
	row := createAllocation(t, env, "100", "40")

	rec := env.Do(t, http.MethodGet, "/api/allocation/"+row.ID.String(), nil)
	var got db.ItemAllocation
	e := handlertest.Envelope(t, rec, &got)
	if rec.Code != http.StatusOK || e.ClientMessage != "Data fetched successfully" {
		t.Fatalf("get: status %d envelope %+v", rec.Code, e)
	}
	if !got.AllocatedQty.Equal(row.AllocatedQty) {
		t.Errorf("allocated_qty = %s, want %s", got.AllocatedQty, row.AllocatedQty)
	}

	rec = env.Do(t, http.MethodPut, "/api/allocation/"+row.ID.String(), map[string]any{"required_qty": "120"})
	e = handlertest.Envelope(t, rec, &got)
	if rec.Code != http.StatusOK || e.DevMessage != "Allocation updated successfully" {
		t.Fatalf("update: status %d envelope %+v", rec.Code, e)
	}
	if got.RequiredQty.String() != "120" {
		t.Errorf("required_qty = %s, want 120", got.RequiredQty)
	}

	rec = env.Do(t, http.MethodDelete, "/api/allocation/"+row.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", rec.Code, rec.Body)
	}

	rec = env.Do(t, http.MethodGet, "/api/allocation/"+row.ID.String(), nil)
	e = handlertest.Envelope(t, rec, nil)
	if rec.Code != http.StatusNotFound || e.Success {
		t.Fatalf("get after delete: status %d envelope %+v", rec.Code, e)
	}
	if e.ClientMessage != "Allocation not found" || e.DevMessage != "No allocation found with the provided ID" {
		t.Errorf("not found messages = %q / %q", e.ClientMessage, e.DevMessage)
	}
}

func TestAllocationUpdateRejectsBadPatches(t *testing.T) {
	env := setup(t)
	row := createAllocation(t, env, "10", "5")
	path := "/api/allocation/" + row.ID.String()

	tests := []struct {
		name       string
		body       any
		wantClient string
	}{
		{name: "empty object", body: map[string]any{}, wantClient: "No valid fields to update"},
		{name: "key outside allow-list", body: map[string]any{"bom_id": uuid.New()}, wantClient: "field bom_id cannot be updated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.Do(t, http.MethodPut, path, tt.body)
			e := handlertest.Envelope(t, rec, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body)
			}
			if e.ClientMessage != tt.wantClient {
				t.Errorf("clientMessage = %q, want %q", e.ClientMessage, tt.wantClient)
			}
		})
	}
}

func TestAllocationBadIDIsBadRequest(t *testing.T) {
	env := setup(t)
	rec := env.Do(t, http.MethodGet, "/api/allocation/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAllocationBulkUpsertIsAdditive(t *testing.T) {
	env := setup(t)
	createAllocation(t, env, "10", "4")

	body := []map[string]any{{
		"item_id":       env.Item.ID,
		"bom_id":        env.Bom.ID,
		"required_qty":  "5",
		"allocated_qty": "3",
	}}
	rec := env.Do(t, http.MethodPut, "/api/allocation/add/bulk", body)
	var rows []db.ItemAllocation
	e := handlertest.Envelope(t, rec, &rows)
	if rec.Code != http.StatusCreated {
		t.Fatalf("bulk: status %d body %s", rec.Code, rec.Body)
	}
	if e.DevMessage != "1 allocations processed successfully" {
		t.Errorf("devMessage = %q", e.DevMessage)
	}
	if len(rows) != 1 || rows[0].AllocatedQty.String() != "7" || rows[0].RequiredQty.String() != "15" {
		t.Fatalf("rows = %+v, want one row with allocated 7 and required 15", rows)
	}

	rec = env.Do(t, http.MethodPut, "/api/allocation/add/bulk", []any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty bulk: status %d, want 400", rec.Code)
	}
}

func TestAllocationUpdateQuantity(t *testing.T) {
	env := setup(t)
	createAllocation(t, env, "10", "6")

	debit := func(qty string) (int, db.ItemAllocation) {
		rec := env.Do(t, http.MethodPut, "/api/allocation/update-quantity", map[string]any{
			"item_id":  env.Item.ID,
			"bom_id":   env.Bom.ID,
			"quantity": qty,
		})
		var row db.ItemAllocation
		if rec.Code == http.StatusOK {
			handlertest.Envelope(t, rec, &row)
		}
		return rec.Code, row
	}

	code, row := debit("2")
	if code != http.StatusOK || row.AllocatedQty.String() != "4" {
		t.Fatalf("debit 2: status %d allocated %s", code, row.AllocatedQty)
	}
	if code, _ := debit("5"); code != http.StatusConflict {
		t.Fatalf("overdraw: status %d, want 409", code)
	}
}

func TestAllocationsByItemAndBom(t *testing.T) {
	env := setup(t)
	createAllocation(t, env, "10", "6")

	rec := env.Do(t, http.MethodGet, "/api/item-allocation/by-item/"+env.Item.ID.String(), nil)
	groups := handlertest.Decode[[]ledger.BomAllocations](t, rec)
	if rec.Code != http.StatusOK || len(groups) != 1 {
		t.Fatalf("by-item: status %d groups %+v", rec.Code, groups)
	}
	if groups[0].BomID != env.Bom.ID || len(groups[0].Allocations) != 1 {
		t.Errorf("group = %+v", groups[0])
	}

	rec = env.Do(t, http.MethodGet, "/api/allocation/get/by-bom/"+env.Bom.ID.String(), nil)
	var view ledger.BomAllocationView
	handlertest.Envelope(t, rec, &view)
	if rec.Code != http.StatusOK || len(view.Allocations) != 1 {
		t.Fatalf("by-bom: status %d view %+v", rec.Code, view)
	}
	if got := view.Allocations[0].RemainingQty.String(); got != "6" {
		t.Errorf("remaining_qty = %s, want 6", got)
	}

	rec = env.Do(t, http.MethodGet, "/api/allocation/get/by-bom/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown bom: status %d, want 404", rec.Code)
	}
}

func TestAllocationDetailsBulkOverwrites(t *testing.T) {
	env := setup(t)
	alloc := createAllocation(t, env, "10", "6")
	sourceID := uuid.New()

	rec := env.Do(t, http.MethodPost, "/api/allocation-details", map[string]any{
		"item_allocation_id": alloc.ID,
		"source_id":          sourceID,
		"allocated_qty":      "2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create detail: status %d body %s", rec.Code, rec.Body)
	}

	rec = env.Do(t, http.MethodPut, "/api/allocation-details/add/bulk", []map[string]any{{
		"item_allocation_id": alloc.ID,
		"source_id":          sourceID,
		"allocated_qty":      "5",
	}})
	var rows []db.ItemAllocationDetail
	e := handlertest.Envelope(t, rec, &rows)
	if rec.Code != http.StatusCreated || e.DevMessage != fmt.Sprintf("%d allocation details processed successfully", 1) {
		t.Fatalf("bulk: status %d envelope %+v", rec.Code, e)
	}
	if rows[0].AllocatedQty.String() != "5" {
		t.Errorf("allocated_qty = %s, want 5 (overwrite)", rows[0].AllocatedQty)
	}

	rec = env.Do(t, http.MethodGet, "/api/allocation-details/"+uuid.NewString(), nil)
	e = handlertest.Envelope(t, rec, nil)
	if rec.Code != http.StatusNotFound || e.ClientMessage != "Allocation detail not found" {
		t.Fatalf("missing detail: status %d envelope %+v", rec.Code, e)
	}
}
