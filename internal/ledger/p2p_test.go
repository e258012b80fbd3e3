package ledger

import (
	"context"
	"testing"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (f *fixture) p2pItem(t *testing.T, issueID uuid.UUID, allocated string) db.MaterialIssuanceItemP2p {
	t.Helper()
	rows, err := f.svc.CreateP2PItems(context.Background(), []P2PItemInput{{
		IssuanceID:   issueID,
		ItemID:       f.item.ID,
		SendingBomID: f.bom.ID,
		AllocatedQty: dec(allocated),
	}})
	if err != nil {
		t.Fatalf("CreateP2PItems: %v", err)
	}
	return rows[0]
}

func (f *fixture) transfer(itemID uuid.UUID, bomID uuid.UUID, qty string) P2PTransferInput {
	return P2PTransferInput{
		IssuanceItemID:     itemID,
		ReceivingBomID:     bomID,
		ReceivingProjectID: uuid.NullUUID{UUID: f.project.ID, Valid: true},
		TransferQty:        dec(qty),
	}
}

func TestP2PTransfersStayWithinAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mi := f.issue(t, IssuanceProjectProject)
	item := f.p2pItem(t, mi.ID, "100")

	receiving := db.Bom{ID: uuid.New(), Name: "HVAC", ProjectID: uuid.NullUUID{UUID: f.project.ID, Valid: true}}
	f.store.PutBom(receiving)

	if _, err := f.svc.CreateP2PTransfers(ctx, []P2PTransferInput{
		f.transfer(item.ID, receiving.ID, "40"),
		f.transfer(item.ID, f.bom.ID, "30"),
	}); err != nil {
		t.Fatalf("CreateP2PTransfers: %v", err)
	}

	items, err := f.svc.ListP2PItems(ctx, uuid.NullUUID{UUID: mi.ID, Valid: true})
	if err != nil {
		t.Fatalf("ListP2PItems: %v", err)
	}
	wantQty(t, items[0].TotalTransferredQty, "70")

	_, err = f.svc.CreateP2PTransfers(ctx, []P2PTransferInput{f.transfer(item.ID, receiving.ID, "40")})
	wantKind(t, err, KindInsufficientQuantity)

	items, err = f.svc.ListP2PItems(ctx, uuid.NullUUID{UUID: mi.ID, Valid: true})
	if err != nil {
		t.Fatalf("ListP2PItems: %v", err)
	}
	wantQty(t, items[0].TotalTransferredQty, "70")

	transfers, err := f.svc.ListP2PTransfers(ctx, uuid.NullUUID{UUID: mi.ID, Valid: true})
	if err != nil {
		t.Fatalf("ListP2PTransfers: %v", err)
	}
	if len(transfers) != 2 {
		t.Fatalf("rejected batch left transfers behind: got %d", len(transfers))
	}
}

func TestUpdateP2PTransferResettlesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mi := f.issue(t, IssuanceProjectProject)
	item := f.p2pItem(t, mi.ID, "50")

	created, err := f.svc.CreateP2PTransfers(ctx, []P2PTransferInput{f.transfer(item.ID, f.bom.ID, "20")})
	if err != nil {
		t.Fatalf("CreateP2PTransfers: %v", err)
	}

	update := P2PTransferUpdate{ID: created[0].ID}
	update.TransferQty = Optional[decimal.Decimal]{Value: dec("45"), Set: true}
	if _, err := f.svc.UpdateP2PTransfers(ctx, []P2PTransferUpdate{update}); err != nil {
		t.Fatalf("UpdateP2PTransfers: %v", err)
	}
	items, err := f.svc.ListP2PItems(ctx, uuid.NullUUID{})
	if err != nil {
		t.Fatalf("ListP2PItems: %v", err)
	}
	wantQty(t, items[0].TotalTransferredQty, "45")

	update.TransferQty = Optional[decimal.Decimal]{Value: dec("51"), Set: true}
	_, err = f.svc.UpdateP2PTransfers(ctx, []P2PTransferUpdate{update})
	wantKind(t, err, KindInsufficientQuantity)
}

func TestUpdateP2PItemCannotDropBelowTransferred(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mi := f.issue(t, IssuanceProjectProject)
	item := f.p2pItem(t, mi.ID, "50")
	if _, err := f.svc.CreateP2PTransfers(ctx, []P2PTransferInput{f.transfer(item.ID, f.bom.ID, "30")}); err != nil {
		t.Fatalf("CreateP2PTransfers: %v", err)
	}

	update := P2PItemUpdate{ID: item.ID}
	update.AllocatedQty = Optional[decimal.Decimal]{Value: dec("29"), Set: true}
	_, err := f.svc.UpdateP2PItems(ctx, []P2PItemUpdate{update})
	wantKind(t, err, KindInsufficientQuantity)

	update.AllocatedQty = Optional[decimal.Decimal]{Value: dec("30"), Set: true}
	rows, err := f.svc.UpdateP2PItems(ctx, []P2PItemUpdate{update})
	if err != nil {
		t.Fatalf("UpdateP2PItems: %v", err)
	}
	wantQty(t, rows[0].AllocatedQty, "30")

	_, err = f.svc.UpdateP2PItems(ctx, []P2PItemUpdate{{}})
	wantKind(t, err, KindValidation)
}

func TestP2PItemsNeedProjectToProjectIssue(t *testing.T) {
	f := newFixture(t)
	mi := f.issue(t, IssuanceWarehouse)
	_, err := f.svc.CreateP2PItems(context.Background(), []P2PItemInput{{
		IssuanceID:   mi.ID,
		ItemID:       f.item.ID,
		SendingBomID: f.bom.ID,
		AllocatedQty: dec("1"),
	}})
	wantKind(t, err, KindValidation)
}

func TestIssueDetailCarriesP2PItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mi := f.issue(t, IssuanceProjectProject)
	item := f.p2pItem(t, mi.ID, "10")
	if _, err := f.svc.CreateP2PTransfers(ctx, []P2PTransferInput{f.transfer(item.ID, f.bom.ID, "4")}); err != nil {
		t.Fatalf("CreateP2PTransfers: %v", err)
	}

	detail, err := f.svc.IssueDetail(ctx, mi.ID)
	if err != nil {
		t.Fatalf("IssueDetail: %v", err)
	}
	if len(detail.Items) != 0 || len(detail.P2PItems) != 1 {
		t.Fatalf("expected only p2p items, got items=%d p2p=%d", len(detail.Items), len(detail.P2PItems))
	}
	v := detail.P2PItems[0]
	if v.SendingBomName.String != f.bom.Name {
		t.Errorf("sending_bom_name = %q", v.SendingBomName.String)
	}
	if len(v.Transfers) != 1 || v.Transfers[0].ReceivingProjectName.String != f.project.Name {
		t.Errorf("transfer view not resolved: %+v", v.Transfers)
	}
}

func TestP2PFrozenOnceApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mi := f.issue(t, IssuanceProjectProject)
	item := f.p2pItem(t, mi.ID, "100")
	created, err := f.svc.CreateP2PTransfers(ctx, []P2PTransferInput{f.transfer(item.ID, f.bom.ID, "40")})
	if err != nil {
		t.Fatalf("CreateP2PTransfers: %v", err)
	}
	f.setStatus(t, mi.ID, StatusApproved)
	dc, err := f.svc.CreateChallan(ctx, ChallanInput{DcNumber: "DC-P2P", TransferID: mi.ID})
	if err != nil {
		t.Fatalf("CreateChallan: %v", err)
	}

	_, err = f.svc.CreateP2PTransfers(ctx, []P2PTransferInput{f.transfer(item.ID, f.bom.ID, "50")})
	wantKind(t, err, KindInvalidTransition)
	_, err = f.svc.CreateP2PItems(ctx, []P2PItemInput{{
		IssuanceID:   mi.ID,
		ItemID:       f.item.ID,
		SendingBomID: f.bom.ID,
		AllocatedQty: dec("10"),
	}})
	wantKind(t, err, KindInvalidTransition)

	tu := P2PTransferUpdate{ID: created[0].ID}
	tu.TransferQty = Optional[decimal.Decimal]{Value: dec("60"), Set: true}
	_, err = f.svc.UpdateP2PTransfers(ctx, []P2PTransferUpdate{tu})
	wantKind(t, err, KindInvalidTransition)

	iu := P2PItemUpdate{ID: item.ID}
	iu.AllocatedQty = Optional[decimal.Decimal]{Value: dec("200"), Set: true}
	_, err = f.svc.UpdateP2PItems(ctx, []P2PItemUpdate{iu})
	wantKind(t, err, KindInvalidTransition)

	res, err := f.svc.ResolveChallan(ctx, dc.ID)
	if err != nil {
		t.Fatalf("ResolveChallan: %v", err)
	}
	kind, ok := res.Transfer.(ProjectProjectKind)
	if !ok {
		t.Fatalf("transfer kind = %T", res.Transfer)
	}
	if len(kind.Items) != 1 || len(kind.Items[0].Transfers) != 1 {
		t.Fatalf("challan changed after approval: items=%d", len(kind.Items))
	}
	wantQty(t, kind.Items[0].TotalTransferredQty, "40")
	wantQty(t, kind.Items[0].AllocatedQty, "100")
}
