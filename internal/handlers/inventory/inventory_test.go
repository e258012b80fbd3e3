package inventory

import (
	"net/http"
	"testing"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/tests/handlertest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	env.Router.RegisterGroup(NewInventoryHandler(env.Handler).Routes())
	return env
}

func credit(t *testing.T, env *handlertest.Env, qty int) db.Inventory {
	t.Helper()
	rec := env.Do(t, http.MethodPost, "/api/inventory", map[string]any{
		"item_id":    env.Item.ID,
		"store_id":   env.Warehouse.ID,
		"store_type": "warehouse",
		"quantity":   qty,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("credit status = %d body=%s", rec.Code, rec.Body)
	}
	return handlertest.Decode[db.Inventory](t, rec)
}

func TestCreditDefaults(t *testing.T) {
	env := setup(t)
	row := credit(t, env, 10)
	if row.StoreType != "WAREHOUSE" || row.Status != "available" {
		t.Errorf("row = %+v", row)
	}
	if !row.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("quantity = %s, want 10", row.Quantity)
	}
}

func TestCreditRejectsBadStoreType(t *testing.T) {
	env := setup(t)
	rec := env.Do(t, http.MethodPost, "/api/inventory", map[string]any{
		"item_id":    env.Item.ID,
		"store_id":   env.Warehouse.ID,
		"store_type": "SHELF",
		"quantity":   1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDebit(t *testing.T) {
	env := setup(t)
	row := credit(t, env, 10)
	path := "/api/inventory/" + row.ID.String() + "/debit"

	tests := []struct {
		name string
		qty  any
		want int
	}{
		{"partial", 4, http.StatusOK},
		{"more than held", 100, http.StatusConflict},
		{"zero", 0, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.Do(t, http.MethodPost, path, map[string]any{"quantity": tt.qty})
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	got, ok := env.Store.RawInventory(row.ID)
	if !ok || !got.Quantity.Equal(decimal.NewFromInt(6)) {
		t.Errorf("after debits quantity = %s, want 6", got.Quantity)
	}
}

func TestDeleteHidesRow(t *testing.T) {
	env := setup(t)
	row := credit(t, env, 3)

	if rec := env.Do(t, http.MethodDelete, "/api/inventory/"+row.ID.String(), nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec := env.Do(t, http.MethodPost, "/api/inventory/"+row.ID.String()+"/debit", map[string]any{"quantity": 1})
	if rec.Code != http.StatusNotFound || handlertest.ErrorMessage(t, rec) != notFound {
		t.Errorf("debit after delete = %d %s", rec.Code, rec.Body)
	}

	at := env.Do(t, http.MethodGet, "/api/inventory/warehouse/"+env.Warehouse.ID.String()+"/item/"+env.Item.ID.String(), nil)
	if at.Code != http.StatusNotFound {
		t.Errorf("lookup after delete = %d, want 404", at.Code)
	}

	stored, ok := env.Store.RawInventory(row.ID)
	if !ok || !stored.IsDeleted {
		t.Errorf("row should remain flagged deleted, got %+v", stored)
	}
}

func TestCreditBulkAllOrNothing(t *testing.T) {
	env := setup(t)
	rec := env.Do(t, http.MethodPost, "/api/inventory/bulk", []map[string]any{
		{"item_id": env.Item.ID, "store_id": env.Warehouse.ID, "store_type": "WAREHOUSE", "quantity": 2},
		{"item_id": env.Item.ID, "store_id": env.Warehouse.ID, "store_type": "WAREHOUSE", "quantity": -1},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	at := env.Do(t, http.MethodGet, "/api/inventory/warehouse/"+env.Warehouse.ID.String()+"/item/"+env.Item.ID.String(), nil)
	if at.Code != http.StatusNotFound {
		t.Errorf("first row should not persist, lookup = %d", at.Code)
	}
}

// Integrity violations answer 409, not the generic 500, so a duplicate or a
// dangling reference is distinguishable from a database outage.
func TestIntegrityViolationIsConflictNotServerError(t *testing.T) {
	env := setup(t)
	body := map[string]any{
		"item_id":    env.Item.ID,
		"store_id":   env.Warehouse.ID,
		"store_type": "WAREHOUSE",
		"quantity":   1,
	}

	env.Store.FailOn("CreateInventory", &pgconn.PgError{Code: "23503", ConstraintName: "t_inventory_item_id_fkey"})
	if rec := env.Do(t, http.MethodPost, "/api/inventory", body); rec.Code != http.StatusConflict {
		t.Errorf("foreign key violation: status %d, want 409", rec.Code)
	}

	env.Store.FailOn("CreateInventory", &pgconn.PgError{Code: "08006"})
	rec := env.Do(t, http.MethodPost, "/api/inventory", body)
	if rec.Code != http.StatusInternalServerError || handlertest.ErrorMessage(t, rec) != "Internal server error" {
		t.Errorf("connection failure: status %d body %s", rec.Code, rec.Body)
	}
}
