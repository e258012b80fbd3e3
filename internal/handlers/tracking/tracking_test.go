package tracking

import (
	"context"
	"net/http"
	"testing"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/tests/handlertest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	env.Router.RegisterGroup(NewTrackingHandler(env.Handler).Routes())
	return env
}

func stock(t *testing.T, env *handlertest.Env, qty string) db.Inventory {
	t.Helper()
	inv, err := env.Handler.Ledger.Credit(context.Background(), ledger.CreditInput{
		ItemID:    env.Item.ID,
		StoreID:   env.Warehouse.ID,
		StoreType: "WAREHOUSE",
		Quantity:  decimal.RequireFromString(qty),
	})
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	return inv
}

func TestItemHistory(t *testing.T) {
	env := setup(t)
	stock(t, env, "6")
	stock(t, env, "9")

	rec := env.Do(t, http.MethodGet, "/api/item-tracking/item/"+env.Item.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	h := handlertest.Decode[ledger.ItemHistory](t, rec)
	if h.TotalRecords != 2 || !h.TotalQuantity.Equal(decimal.RequireFromString("15")) {
		t.Errorf("records=%d quantity=%s", h.TotalRecords, h.TotalQuantity)
	}

	rec = env.Do(t, http.MethodGet, "/api/item-tracking/item/"+env.Item.ID.String()+"?store_type=project", nil)
	if rec.Code != http.StatusNotFound || handlertest.ErrorMessage(t, rec) != "No tracking data found for this item" {
		t.Errorf("project filter: %d %s", rec.Code, rec.Body)
	}
}

func TestItemHistoryRejectsBadDate(t *testing.T) {
	env := setup(t)
	rec := env.Do(t, http.MethodGet, "/api/item-tracking/item/"+env.Item.ID.String()+"?start_date=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := handlertest.ErrorMessage(t, rec); msg != "invalid start_date: yesterday" {
		t.Errorf("error = %q", msg)
	}
}

func TestTimelineNotFound(t *testing.T) {
	env := setup(t)
	rec := env.Do(t, http.MethodGet, "/api/item-tracking/item/"+uuid.NewString()+"/timeline", nil)
	if rec.Code != http.StatusNotFound || handlertest.ErrorMessage(t, rec) != "No timeline data found for this item" {
		t.Errorf("%d %s", rec.Code, rec.Body)
	}
}

func TestWarehouseSummary(t *testing.T) {
	env := setup(t)
	stock(t, env, "3")

	rec := env.Do(t, http.MethodGet, "/api/item-tracking/warehouse/"+env.Warehouse.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	ws := handlertest.Decode[ledger.WarehouseTracking](t, rec)
	if ws.WarehouseName != env.Warehouse.WarehouseName || ws.TotalItems != 1 {
		t.Errorf("summary = %+v", ws)
	}
}

func TestDetailed(t *testing.T) {
	env := setup(t)
	inv := stock(t, env, "2")

	rec := env.Do(t, http.MethodGet, "/api/item-tracking/detailed/"+inv.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}

	rec = env.Do(t, http.MethodGet, "/api/item-tracking/detailed/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound || handlertest.ErrorMessage(t, rec) != "Inventory record not found" {
		t.Errorf("unknown inventory: %d %s", rec.Code, rec.Body)
	}

	rec = env.Do(t, http.MethodGet, "/api/item-tracking/detailed/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status %d", rec.Code)
	}
}
