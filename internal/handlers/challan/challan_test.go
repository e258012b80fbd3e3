package challan

import (
	"context"
	"net/http"
	"testing"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/tests/handlertest"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	env.Router.RegisterGroup(NewChallanHandler(env.Handler).Routes())
	return env
}

// approvedReturn books a project-to-warehouse return of 4 units and approves it.
func approvedReturn(t *testing.T, env *handlertest.Env) db.MaterialIssue {
	t.Helper()
	ctx := context.Background()
	svc := env.Handler.Ledger

	inv, err := svc.Credit(ctx, ledger.CreditInput{
		ItemID:    env.Item.ID,
		StoreID:   env.Project.ID,
		StoreType: "PROJECT",
		Quantity:  decimal.RequireFromString("10"),
	})
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	mi, err := svc.CreateIssue(ctx, ledger.IssueInput{
		SenderType:        "project",
		IssuanceType:      ledger.IssuanceProjectWarehouse,
		SenderReferenceID: uuid.NullUUID{UUID: env.Project.ID, Valid: true},
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if _, err := svc.CreateIssueItem(ctx, ledger.IssueItemInput{
		IssueID:              mi.ID,
		ItemID:               env.Item.ID,
		IssuedQuantity:       decimal.RequireFromString("4"),
		BomID:                uuid.NullUUID{UUID: env.Bom.ID, Valid: true},
		SpecID:               uuid.NullUUID{UUID: env.Spec.ID, Valid: true},
		ReceivingReferenceID: uuid.NullUUID{UUID: env.Warehouse.ID, Valid: true},
		ReceiverType:         pgtype.Text{String: "warehouse", Valid: true},
		Sources:              []ledger.SourceShare{{InventoryID: inv.ID, Quantity: decimal.RequireFromString("4")}},
	}); err != nil {
		t.Fatalf("CreateIssueItem: %v", err)
	}
	approved, err := svc.PatchIssue(ctx, mi.ID, ledger.IssuePatch{
		Status: ledger.Optional[string]{Value: ledger.StatusApproved, Set: true},
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return approved
}

func TestCreateAndResolveProjectWarehouseChallan(t *testing.T) {
	env := setup(t)
	mi := approvedReturn(t, env)

	rec := env.Do(t, http.MethodPost, "/api/delivery-challan", map[string]any{
		"dc_number":   "DC-0007",
		"transfer_id": mi.ID,
		"vehicle_no":  "MH-12-AB-1234",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body)
	}
	dc := handlertest.Decode[db.DeliveryChallan](t, rec)
	if dc.Status != ledger.ChallanGenerated {
		t.Errorf("status = %q, want %q", dc.Status, ledger.ChallanGenerated)
	}

	rec = env.Do(t, http.MethodGet, "/api/delivery-challan/"+dc.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve: status %d body %s", rec.Code, rec.Body)
	}
	body := handlertest.Decode[map[string]any](t, rec)
	if body["issuance_type"] != ledger.IssuanceProjectWarehouse {
		t.Errorf("issuance_type = %v", body["issuance_type"])
	}
	sender, _ := body["sender"].(map[string]any)
	if sender["type"] != "project" || sender["name"] != env.Project.Name {
		t.Errorf("sender = %v", sender)
	}
	if body["sender_warehouse"] != nil {
		t.Errorf("sender_warehouse = %v, want null", body["sender_warehouse"])
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v", body["items"])
	}
	item := items[0].(map[string]any)
	receiver, _ := item["receiver_warehouse"].(map[string]any)
	if receiver == nil || receiver["warehouse_name"] != env.Warehouse.WarehouseName {
		t.Errorf("receiver_warehouse = %v", item["receiver_warehouse"])
	}
	if item["sender_warehouse"] != nil {
		t.Errorf("item sender_warehouse = %v, want null", item["sender_warehouse"])
	}
}

func TestCreateRequiresApprovedIssue(t *testing.T) {
	env := setup(t)
	mi, err := env.Handler.Ledger.CreateIssue(context.Background(), ledger.IssueInput{})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	rec := env.Do(t, http.MethodPost, "/api/delivery-challan", map[string]any{
		"dc_number":   "DC-0001",
		"transfer_id": mi.ID,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body %s", rec.Code, rec.Body)
	}
	if msg := handlertest.ErrorMessage(t, rec); msg == "" {
		t.Error("expected an error message")
	}
}

func TestChallanGeneratedOnlyOnce(t *testing.T) {
	env := setup(t)
	mi := approvedReturn(t, env)
	body := map[string]any{"dc_number": "DC-0100", "transfer_id": mi.ID}

	if rec := env.Do(t, http.MethodPost, "/api/delivery-challan", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create: status %d body %s", rec.Code, rec.Body)
	}
	if rec := env.Do(t, http.MethodPost, "/api/delivery-challan", body); rec.Code != http.StatusConflict {
		t.Fatalf("second create: status %d, want 409", rec.Code)
	}
}

func TestUpdateStatusAndGeneratedList(t *testing.T) {
	env := setup(t)
	mi := approvedReturn(t, env)
	dc, err := env.Handler.Ledger.CreateChallan(context.Background(), ledger.ChallanInput{DcNumber: "DC-0200", TransferID: mi.ID})
	if err != nil {
		t.Fatalf("CreateChallan: %v", err)
	}

	rec := env.Do(t, http.MethodGet, "/api/delivery-challan/get/generated", nil)
	if got := handlertest.Decode[[]db.DeliveryChallan](t, rec); len(got) != 1 || got[0].ID != dc.ID {
		t.Fatalf("generated = %+v", got)
	}

	path := "/api/delivery-challan/" + dc.ID.String() + "/status"
	rec = env.Do(t, http.MethodPatch, path, map[string]any{})
	if rec.Code != http.StatusBadRequest || handlertest.ErrorMessage(t, rec) != "Status is required" {
		t.Fatalf("empty status: %d %s", rec.Code, rec.Body)
	}

	rec = env.Do(t, http.MethodPatch, path, map[string]any{"status": "delivered"})
	if updated := handlertest.Decode[db.DeliveryChallan](t, rec); rec.Code != http.StatusOK || updated.Status != "delivered" {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}

	rec = env.Do(t, http.MethodGet, "/api/delivery-challan/get/generated", nil)
	if got := handlertest.Decode[[]db.DeliveryChallan](t, rec); len(got) != 0 {
		t.Errorf("delivered challan still listed as generated: %+v", got)
	}

	rec = env.Do(t, http.MethodPatch, "/api/delivery-challan/"+uuid.NewString()+"/status", map[string]any{"status": "x"})
	if rec.Code != http.StatusNotFound || handlertest.ErrorMessage(t, rec) != "Not found" {
		t.Errorf("unknown challan: %d %s", rec.Code, rec.Body)
	}
}
