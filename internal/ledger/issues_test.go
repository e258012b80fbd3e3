package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func (f *fixture) issue(t *testing.T, issuanceType string) db.MaterialIssue {
	t.Helper()
	mi, err := f.svc.CreateIssue(context.Background(), IssueInput{
		IssueNumber:       pgtype.Text{String: "MI-" + issuanceType, Valid: true},
		IssueDate:         today(),
		IssuanceType:      issuanceType,
		SenderReferenceID: uuid.NullUUID{UUID: f.warehouse.ID, Valid: true},
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	return mi
}

func (f *fixture) allocation(t *testing.T, qty string) db.ItemAllocation {
	t.Helper()
	row, err := f.svc.CreateAllocation(context.Background(), AllocationInput{
		ItemID:       f.item.ID,
		BomID:        f.bom.ID,
		ProjectID:    uuid.NullUUID{UUID: f.project.ID, Valid: true},
		RequiredQty:  dec(qty),
		AllocatedQty: dec(qty),
	})
	if err != nil {
		t.Fatalf("CreateAllocation: %v", err)
	}
	return row
}

func (f *fixture) setStatus(t *testing.T, id uuid.UUID, status string) db.MaterialIssue {
	t.Helper()
	mi, err := f.svc.PatchIssue(context.Background(), id, IssuePatch{Status: Optional[string]{Value: status, Set: true}})
	if err != nil {
		t.Fatalf("PatchIssue(%s): %v", status, err)
	}
	return mi
}

func TestCreateIssueDefaults(t *testing.T) {
	f := newFixture(t)
	mi, err := f.svc.CreateIssue(context.Background(), IssueInput{})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if mi.Status != StatusPending {
		t.Errorf("status = %q, want pending", mi.Status)
	}
	if mi.IssuanceType != IssuanceWarehouse || mi.SenderType != "warehouse" {
		t.Errorf("unexpected defaults: issuance_type=%q sender_type=%q", mi.IssuanceType, mi.SenderType)
	}
	if mi.IsDcGenerated {
		t.Error("new issue must not be DC-generated")
	}

	_, err = f.svc.CreateIssue(context.Background(), IssueInput{IssuanceType: "truck"})
	wantKind(t, err, KindValidation)
}

func TestIssueItemDebitAndRejectRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.stock(t, "20")
	mi := f.issue(t, IssuanceWarehouse)

	view, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("13"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("13")}},
	})
	if err != nil {
		t.Fatalf("CreateIssueItem: %v", err)
	}
	if len(view.Sources) != 1 {
		t.Fatalf("expected one breakdown entry, got %d", len(view.Sources))
	}
	wantQty(t, f.balance(t, inv.ID), "7")

	f.setStatus(t, mi.ID, StatusApproved)
	rejected, err := f.svc.RejectIssue(ctx, mi.ID)
	if err != nil {
		t.Fatalf("RejectIssue: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}
	wantQty(t, f.balance(t, inv.ID), "20")

	for _, src := range f.store.IssueItemSources(view.ID) {
		if !src.ReversedAt.Valid {
			t.Errorf("breakdown entry %s should be marked reversed", src.ID)
		}
	}

	// A second reject must not credit twice.
	_, err = f.svc.RejectIssue(ctx, mi.ID)
	wantKind(t, err, KindInvalidTransition)
	wantQty(t, f.balance(t, inv.ID), "20")
}

func TestIssueItemSplitsAcrossInventoryRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.stock(t, "5")
	b := f.stock(t, "10")
	mi := f.issue(t, IssuanceWarehouse)

	_, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("8"),
		Sources: []SourceShare{
			{InventoryID: a.ID, Quantity: dec("5")},
			{InventoryID: b.ID, Quantity: dec("3")},
		},
	})
	if err != nil {
		t.Fatalf("CreateIssueItem: %v", err)
	}
	wantQty(t, f.balance(t, a.ID), "0")
	wantQty(t, f.balance(t, b.ID), "7")

	if _, err := f.svc.DeleteIssue(ctx, mi.ID); err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}
	wantQty(t, f.balance(t, a.ID), "5")
	wantQty(t, f.balance(t, b.ID), "10")
}

func TestIssueItemSharesMustMatchQuantity(t *testing.T) {
	f := newFixture(t)
	inv := f.stock(t, "20")
	mi := f.issue(t, IssuanceWarehouse)

	_, err := f.svc.CreateIssueItem(context.Background(), IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("10"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("4")}},
	})
	wantKind(t, err, KindValidation)
	wantQty(t, f.balance(t, inv.ID), "20")
}

func TestIssueItemOverdrawRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.stock(t, "5")
	mi := f.issue(t, IssuanceWarehouse)

	_, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("6"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("6")}},
	})
	wantKind(t, err, KindInsufficientQuantity)
	wantQty(t, f.balance(t, inv.ID), "5")

	items, err := f.svc.ListIssueItems(ctx)
	if err != nil {
		t.Fatalf("ListIssueItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("failed create left %d issue items behind", len(items))
	}
}

func TestIssueItemStoreFailureRollsBackDebit(t *testing.T) {
	f := newFixture(t)
	inv := f.stock(t, "20")
	mi := f.issue(t, IssuanceWarehouse)
	f.store.FailOn("CreateMaterialIssueItemSource", errors.New("connection reset"))

	_, err := f.svc.CreateIssueItem(context.Background(), IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("4"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("4")}},
	})
	wantKind(t, err, KindPersistence)
	wantQty(t, f.balance(t, inv.ID), "20")
}

func TestIssueItemRejectsOtherItemsInventory(t *testing.T) {
	f := newFixture(t)
	other := db.Item{ID: uuid.New(), ItemCode: "ITM-002", ItemName: "Conduit"}
	f.store.PutItem(other)
	inv := f.stock(t, "20")
	mi := f.issue(t, IssuanceWarehouse)

	_, err := f.svc.CreateIssueItem(context.Background(), IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         other.ID,
		IssuedQuantity: dec("1"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("1")}},
	})
	wantKind(t, err, KindValidation)
	wantQty(t, f.balance(t, inv.ID), "20")
}

func TestBulkUpsertIssueItemsOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.stock(t, "20")
	alloc := f.allocation(t, "50")
	mi := f.issue(t, IssuanceWarehouse)

	row := IssueItemInput{
		IssueID:          mi.ID,
		ItemID:           f.item.ID,
		IssuedQuantity:   dec("13"),
		ItemAllocationID: uuid.NullUUID{UUID: alloc.ID, Valid: true},
		Sources:          []SourceShare{{InventoryID: inv.ID, Quantity: dec("13")}},
	}
	first, err := f.svc.BulkUpsertIssueItems(ctx, []IssueItemInput{row})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	wantQty(t, f.balance(t, inv.ID), "7")

	row.IssuedQuantity = dec("5")
	row.Sources = []SourceShare{{InventoryID: inv.ID, Quantity: dec("5")}}
	second, err := f.svc.BulkUpsertIssueItems(ctx, []IssueItemInput{row})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second[0].ID != first[0].ID {
		t.Fatalf("upsert created a new row %s instead of overwriting %s", second[0].ID, first[0].ID)
	}
	wantQty(t, second[0].IssuedQuantity, "5")
	wantQty(t, f.balance(t, inv.ID), "15")

	open := 0
	for _, src := range f.store.IssueItemSources(first[0].ID) {
		if !src.ReversedAt.Valid {
			open++
			wantQty(t, src.Quantity, "5")
		}
	}
	if open != 1 {
		t.Fatalf("expected exactly one open breakdown entry, got %d", open)
	}

	view, err := f.svc.AllocationsByBom(ctx, f.bom.ID)
	if err != nil {
		t.Fatalf("AllocationsByBom: %v", err)
	}
	if len(view.Allocations) != 1 {
		t.Fatalf("expected one allocation line, got %d", len(view.Allocations))
	}
	wantQty(t, view.Allocations[0].RemainingQty, "45")
}

func TestBulkUpsertIssueItemsRequiresAllocation(t *testing.T) {
	f := newFixture(t)
	mi := f.issue(t, IssuanceWarehouse)
	_, err := f.svc.BulkUpsertIssueItems(context.Background(), []IssueItemInput{{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("1"),
	}})
	wantKind(t, err, KindValidation)
}

func TestPatchIssueStateMachine(t *testing.T) {
	tests := []struct {
		name  string
		path  []string
		final string
		ok    bool
	}{
		{"approve", []string{StatusApproved}, StatusApproved, true},
		{"cancel", []string{StatusCancelled}, StatusCancelled, true},
		{"reject through patch", []string{StatusRejected}, StatusPending, false},
		{"approved back to pending", []string{StatusApproved, StatusPending}, StatusApproved, false},
		{"cancel after approve", []string{StatusApproved, StatusCancelled}, StatusApproved, false},
		{"revive cancelled", []string{StatusCancelled, StatusApproved}, StatusCancelled, false},
		{"unknown status", []string{"shipped"}, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			mi := f.issue(t, IssuanceWarehouse)

			var err error
			for _, status := range tt.path {
				_, err = f.svc.PatchIssue(ctx, mi.ID, IssuePatch{Status: Optional[string]{Value: status, Set: true}})
				if err != nil {
					break
				}
			}
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				wantKind(t, err, KindInvalidTransition)
			}
			got, err := f.svc.GetIssue(ctx, mi.ID)
			if err != nil {
				t.Fatalf("GetIssue: %v", err)
			}
			if got.Status != tt.final {
				t.Errorf("status = %q, want %q", got.Status, tt.final)
			}
		})
	}
}

func TestPatchIssueKeepsUntouchedFields(t *testing.T) {
	f := newFixture(t)
	mi := f.issue(t, IssuanceWarehouse)

	got, err := f.svc.PatchIssue(context.Background(), mi.ID, IssuePatch{
		Remarks: Optional[pgtype.Text]{Value: pgtype.Text{String: "urgent", Valid: true}, Set: true},
	})
	if err != nil {
		t.Fatalf("PatchIssue: %v", err)
	}
	if got.Remarks.String != "urgent" {
		t.Errorf("remarks = %q", got.Remarks.String)
	}
	if got.IssueNumber != mi.IssueNumber || got.Status != StatusPending || got.IssuanceType != mi.IssuanceType {
		t.Errorf("patch changed fields it did not name: %+v", got)
	}
}

func TestCancelIssueCreditsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.stock(t, "20")
	mi := f.issue(t, IssuanceWarehouse)
	if _, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("9"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("9")}},
	}); err != nil {
		t.Fatalf("CreateIssueItem: %v", err)
	}
	wantQty(t, f.balance(t, inv.ID), "11")

	f.setStatus(t, mi.ID, StatusCancelled)
	wantQty(t, f.balance(t, inv.ID), "20")
}

func TestIssueItemsFrozenAfterApproval(t *testing.T) {
	f := newFixture(t)
	inv := f.stock(t, "20")
	mi := f.issue(t, IssuanceWarehouse)
	f.setStatus(t, mi.ID, StatusApproved)

	_, err := f.svc.CreateIssueItem(context.Background(), IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("1"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("1")}},
	})
	wantKind(t, err, KindInvalidTransition)
	wantQty(t, f.balance(t, inv.ID), "20")
}

func TestDeleteIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.issue(t, IssuanceWarehouse)
	if _, err := f.svc.DeleteIssue(ctx, pending.ID); err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}
	_, err := f.svc.GetIssue(ctx, pending.ID)
	wantKind(t, err, KindNotFound)
	raw, ok := f.store.RawMaterialIssue(pending.ID)
	if !ok || !raw.IsDeleted {
		t.Fatal("deleted issue should remain in storage flagged is_deleted")
	}

	approved := f.issue(t, IssuanceWarehouse)
	f.setStatus(t, approved.ID, StatusApproved)
	_, err = f.svc.DeleteIssue(ctx, approved.ID)
	wantKind(t, err, KindInvalidTransition)
}

func TestDecodeIssueItemPatchRejectsQuantity(t *testing.T) {
	_, err := DecodePatch[IssueItemPatch](strings.NewReader(`{"issued_quantity": 5}`))
	wantKind(t, err, KindValidation)
	if msg := ClientMessage(err); msg != "field issued_quantity cannot be updated" {
		t.Errorf("message = %q", msg)
	}
}

func TestIssueDetailResolvesNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.stock(t, "20")
	mi := f.issue(t, IssuanceWarehouse)
	if _, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:              mi.ID,
		ItemID:               f.item.ID,
		IssuedQuantity:       dec("2"),
		BomID:                uuid.NullUUID{UUID: f.bom.ID, Valid: true},
		ReceivingReferenceID: uuid.NullUUID{UUID: f.warehouse.ID, Valid: true},
		ReceiverType:         pgtype.Text{String: "warehouse", Valid: true},
		Sources:              []SourceShare{{InventoryID: inv.ID, Quantity: dec("2")}},
	}); err != nil {
		t.Fatalf("CreateIssueItem: %v", err)
	}

	detail, err := f.svc.IssueDetail(ctx, mi.ID)
	if err != nil {
		t.Fatalf("IssueDetail: %v", err)
	}
	if detail.SenderName.String != f.warehouse.WarehouseName {
		t.Errorf("sender_name = %q, want %q", detail.SenderName.String, f.warehouse.WarehouseName)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(detail.Items))
	}
	it := detail.Items[0]
	if it.ReceiverName.String != f.warehouse.WarehouseName || it.ItemCode.String != f.item.ItemCode || it.BomName.String != f.bom.Name {
		t.Errorf("names not resolved: receiver=%q code=%q bom=%q", it.ReceiverName.String, it.ItemCode.String, it.BomName.String)
	}
}

func TestGenericItemsNeedGenericIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.stock(t, "10")
	mi := f.issue(t, IssuanceProjectProject)

	in := IssueItemInput{
		IssueID:          mi.ID,
		ItemID:           f.item.ID,
		IssuedQuantity:   dec("4"),
		ItemAllocationID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
		Sources:          []SourceShare{{InventoryID: inv.ID, Quantity: dec("4")}},
	}
	_, err := f.svc.CreateIssueItem(ctx, in)
	wantKind(t, err, KindValidation)
	_, err = f.svc.BulkUpsertIssueItems(ctx, []IssueItemInput{in})
	wantKind(t, err, KindValidation)
	wantQty(t, f.balance(t, inv.ID), "10")
}

func TestIssuanceTypeFixedOnceItemsExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	retype := IssuePatch{IssuanceType: Optional[string]{Value: IssuanceProjectProject, Set: true}}

	empty := f.issue(t, IssuanceWarehouse)
	row, err := f.svc.PatchIssue(ctx, empty.ID, retype)
	if err != nil {
		t.Fatalf("retype without items: %v", err)
	}
	if row.IssuanceType != IssuanceProjectProject {
		t.Errorf("issuance_type = %q", row.IssuanceType)
	}

	inv := f.stock(t, "10")
	mi := f.issue(t, IssuanceWarehouse)
	if _, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("2"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("2")}},
	}); err != nil {
		t.Fatalf("CreateIssueItem: %v", err)
	}
	_, err = f.svc.PatchIssue(ctx, mi.ID, retype)
	wantKind(t, err, KindInvalidTransition)

	detail, err := f.svc.IssueDetail(ctx, mi.ID)
	if err != nil {
		t.Fatalf("IssueDetail: %v", err)
	}
	if detail.IssuanceType != IssuanceWarehouse || len(detail.Items) != 1 {
		t.Errorf("issue changed shape: type=%q items=%d", detail.IssuanceType, len(detail.Items))
	}

	p2p := f.issue(t, IssuanceProjectProject)
	f.p2pItem(t, p2p.ID, "5")
	_, err = f.svc.PatchIssue(ctx, p2p.ID, IssuePatch{IssuanceType: Optional[string]{Value: IssuanceWarehouse, Set: true}})
	wantKind(t, err, KindInvalidTransition)
}

func TestIssueItemReceiverIsWarehouse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.stock(t, "10")
	mi := f.issue(t, IssuanceProjectWarehouse)

	_, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:              mi.ID,
		ItemID:               f.item.ID,
		IssuedQuantity:       dec("3"),
		ReceivingReferenceID: uuid.NullUUID{UUID: f.project.ID, Valid: true},
		ReceiverType:         pgtype.Text{String: "project", Valid: true},
		Sources:              []SourceShare{{InventoryID: inv.ID, Quantity: dec("3")}},
	})
	wantKind(t, err, KindValidation)
	wantQty(t, f.balance(t, inv.ID), "10")

	view, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:              mi.ID,
		ItemID:               f.item.ID,
		IssuedQuantity:       dec("3"),
		ReceivingReferenceID: uuid.NullUUID{UUID: f.warehouse.ID, Valid: true},
		Sources:              []SourceShare{{InventoryID: inv.ID, Quantity: dec("3")}},
	})
	if err != nil {
		t.Fatalf("CreateIssueItem: %v", err)
	}
	if view.ReceiverType.String != ReceiverWarehouse {
		t.Errorf("receiver_type = %q, want warehouse", view.ReceiverType.String)
	}

	patch := IssueItemPatch{ReceiverType: Optional[pgtype.Text]{Value: pgtype.Text{String: "project", Valid: true}, Set: true}}
	_, err = f.svc.PatchIssueItem(ctx, view.ID, patch)
	wantKind(t, err, KindValidation)
}

func TestPatchIssueItemFrozenAfterApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.stock(t, "10")
	mi := f.issue(t, IssuanceWarehouse)
	view, err := f.svc.CreateIssueItem(ctx, IssueItemInput{
		IssueID:        mi.ID,
		ItemID:         f.item.ID,
		IssuedQuantity: dec("2"),
		Sources:        []SourceShare{{InventoryID: inv.ID, Quantity: dec("2")}},
	})
	if err != nil {
		t.Fatalf("CreateIssueItem: %v", err)
	}
	f.setStatus(t, mi.ID, StatusApproved)

	patch := IssueItemPatch{ReceivingReferenceID: Optional[uuid.NullUUID]{Value: uuid.NullUUID{UUID: uuid.New(), Valid: true}, Set: true}}
	_, err = f.svc.PatchIssueItem(ctx, view.ID, patch)
	wantKind(t, err, KindInvalidTransition)
}
