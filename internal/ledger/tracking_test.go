package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestItemHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "8")
	f.stock(t, "4")
	f.allocation(t, "100")

	h, err := f.svc.ItemHistory(ctx, f.item.ID, TrackingFilter{})
	if err != nil {
		t.Fatalf("ItemHistory: %v", err)
	}
	if h.TotalRecords != 3 {
		t.Errorf("total_records = %d, want 3", h.TotalRecords)
	}
	// Allocations are reservations, not stock.
	wantQty(t, h.TotalQuantity, "12")
	if h.ItemCode.String != f.item.ItemCode {
		t.Errorf("item_code = %q", h.ItemCode.String)
	}

	wh, err := f.svc.ItemHistory(ctx, f.item.ID, TrackingFilter{StoreType: "warehouse"})
	if err != nil {
		t.Fatalf("ItemHistory(warehouse): %v", err)
	}
	if wh.TotalRecords != 2 {
		t.Errorf("warehouse filter kept %d records, want 2", wh.TotalRecords)
	}

	_, err = f.svc.ItemHistory(ctx, uuid.New(), TrackingFilter{})
	wantKind(t, err, KindNotFound)
}

func TestItemTimelineOldestFirst(t *testing.T) {
	f := newFixture(t)
	f.stock(t, "8")
	f.allocation(t, "5")

	tl, err := f.svc.ItemTimeline(context.Background(), f.item.ID)
	if err != nil {
		t.Fatalf("ItemTimeline: %v", err)
	}
	if tl.TotalEvents != 2 {
		t.Fatalf("total_events = %d, want 2", tl.TotalEvents)
	}
	if tl.Timeline[0].EventType != "Received" || tl.Timeline[1].EventType != "Allocated" {
		t.Errorf("unexpected order: %s, %s", tl.Timeline[0].EventType, tl.Timeline[1].EventType)
	}
	if tl.Timeline[0].Location.String != f.warehouse.WarehouseName {
		t.Errorf("location = %q", tl.Timeline[0].Location.String)
	}
}

func TestWarehouseStockGroupsByItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "8")
	f.stock(t, "4")

	ws, err := f.svc.WarehouseStock(ctx, f.warehouse.ID, "")
	if err != nil {
		t.Fatalf("WarehouseStock: %v", err)
	}
	if ws.WarehouseName != f.warehouse.WarehouseName || ws.WarehouseCode.String != f.warehouse.WarehouseCode {
		t.Errorf("location = %q/%q", ws.WarehouseName, ws.WarehouseCode.String)
	}
	if ws.TotalItems != 1 || ws.TotalRecords != 2 {
		t.Fatalf("total_items=%d total_records=%d", ws.TotalItems, ws.TotalRecords)
	}
	wantQty(t, ws.Items[0].TotalQuantity, "12")
	if len(ws.Items[0].Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(ws.Items[0].Sources))
	}

	empty, err := f.svc.WarehouseStock(ctx, uuid.New(), "")
	if err != nil {
		t.Fatalf("WarehouseStock(unknown): %v", err)
	}
	if empty.WarehouseName != unknownLocation || empty.TotalItems != 0 {
		t.Errorf("unknown warehouse should report %q with no items, got %+v", unknownLocation, empty)
	}
}

func TestProjectStockFallsBackToMaster(t *testing.T) {
	f := newFixture(t)
	ps, err := f.svc.ProjectStock(context.Background(), f.project.ID, "")
	if err != nil {
		t.Fatalf("ProjectStock: %v", err)
	}
	if ps.ProjectName != f.project.Name || ps.ProjectCode.String != f.project.ProjectNumber.String {
		t.Errorf("project = %q/%q", ps.ProjectName, ps.ProjectCode.String)
	}
	if ps.Items == nil || len(ps.Items) != 0 {
		t.Errorf("items should be an empty list, got %v", ps.Items)
	}
}

func TestSourceStockAndTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src, err := f.svc.CreateSource(ctx, SourceInput{SourceNumber: "GRN-77", SourceDate: today()})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	inv, err := f.svc.Credit(ctx, CreditInput{
		ItemID:    f.item.ID,
		StoreID:   f.warehouse.ID,
		StoreType: StoreWarehouse,
		SourceID:  uuid.NullUUID{UUID: src.ID, Valid: true},
		Quantity:  dec("6"),
	})
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}

	ss, err := f.svc.SourceStock(ctx, src.ID)
	if err != nil {
		t.Fatalf("SourceStock: %v", err)
	}
	if ss.TotalItems != 1 || ss.SourceNumber.String != "GRN-77" {
		t.Errorf("unexpected source tracking: %+v", ss)
	}
	if ss.Items[0].CurrentLocation.String != f.warehouse.WarehouseName {
		t.Errorf("current_location = %q", ss.Items[0].CurrentLocation.String)
	}

	_, err = f.svc.SourceStock(ctx, uuid.New())
	wantKind(t, err, KindNotFound)

	trace, err := f.svc.TraceInventory(ctx, inv.ID)
	if err != nil {
		t.Fatalf("TraceInventory: %v", err)
	}
	if trace.SourceNumber.String != "GRN-77" || trace.WarehouseName.String != f.warehouse.WarehouseName {
		t.Errorf("trace not joined: %+v", trace)
	}

	_, err = f.svc.TraceInventory(ctx, uuid.New())
	wantKind(t, err, KindNotFound)
}
