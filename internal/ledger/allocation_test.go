package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestCreateAllocationDuplicateKeyConflicts(t *testing.T) {
	f := newFixture(t)
	f.allocation(t, "10")

	_, err := f.svc.CreateAllocation(context.Background(), AllocationInput{
		ItemID:       f.item.ID,
		BomID:        f.bom.ID,
		ProjectID:    uuid.NullUUID{UUID: f.project.ID, Valid: true},
		AllocatedQty: dec("1"),
	})
	wantKind(t, err, KindConflict)
}

func TestBulkUpsertAllocationsTopsUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project := uuid.NullUUID{UUID: f.project.ID, Valid: true}

	first, err := f.svc.BulkUpsertAllocations(ctx, []AllocationInput{{
		ItemID: f.item.ID, BomID: f.bom.ID, ProjectID: project, RequiredQty: dec("30"), AllocatedQty: dec("10"),
	}})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := f.svc.BulkUpsertAllocations(ctx, []AllocationInput{{
		ItemID: f.item.ID, BomID: f.bom.ID, ProjectID: project, RequiredQty: dec("30"), AllocatedQty: dec("5"),
	}})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Fatalf("upsert created %s instead of topping up %s", second[0].ID, first[0].ID)
	}
	wantQty(t, second[0].AllocatedQty, "15")

	all, err := f.svc.ListAllocations(ctx)
	if err != nil {
		t.Fatalf("ListAllocations: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one allocation row, got %d", len(all))
	}
}

func TestBulkUpsertAllocationsKeysOnProject(t *testing.T) {
	f := newFixture(t)
	rows, err := f.svc.BulkUpsertAllocations(context.Background(), []AllocationInput{
		{ItemID: f.item.ID, BomID: f.bom.ID, AllocatedQty: dec("2")},
		{ItemID: f.item.ID, BomID: f.bom.ID, ProjectID: uuid.NullUUID{UUID: f.project.ID, Valid: true}, AllocatedQty: dec("3")},
		{ItemID: f.item.ID, BomID: f.bom.ID, AllocatedQty: dec("4")},
	})
	if err != nil {
		t.Fatalf("BulkUpsertAllocations: %v", err)
	}
	if rows[0].ID != rows[2].ID || rows[0].ID == rows[1].ID {
		t.Fatalf("a missing project_id must be its own key: %v %v %v", rows[0].ID, rows[1].ID, rows[2].ID)
	}
	wantQty(t, rows[2].AllocatedQty, "6")
}

func TestConcurrentAllocationTopUps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := AllocationInput{ItemID: f.item.ID, BomID: f.bom.ID, AllocatedQty: dec("1")}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.BulkUpsertAllocations(ctx, []AllocationInput{in}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent upsert: %v", err)
	}

	all, err := f.svc.ListAllocations(ctx)
	if err != nil {
		t.Fatalf("ListAllocations: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one allocation row, got %d", len(all))
	}
	wantQty(t, all[0].AllocatedQty, "20")
}

func TestDebitAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alloc := f.allocation(t, "10")
	debit := AllocationDebit{
		ItemID:    f.item.ID,
		BomID:     f.bom.ID,
		ProjectID: uuid.NullUUID{UUID: f.project.ID, Valid: true},
	}

	debit.Quantity = dec("4")
	row, err := f.svc.DebitAllocation(ctx, debit)
	if err != nil {
		t.Fatalf("DebitAllocation: %v", err)
	}
	wantQty(t, row.AllocatedQty, "6")

	debit.Quantity = dec("7")
	_, err = f.svc.DebitAllocation(ctx, debit)
	wantKind(t, err, KindInsufficientQuantity)

	raw, _ := f.store.RawAllocation(alloc.ID)
	wantQty(t, raw.AllocatedQty, "6")
}

type refusingLocker struct{}

func (refusingLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("lock not obtained")
}

func TestAllocationLockFailureIsConflict(t *testing.T) {
	f := newFixture(t)
	f.allocation(t, "10")
	f.svc.locker = refusingLocker{}

	_, err := f.svc.DebitAllocation(context.Background(), AllocationDebit{
		ItemID:    f.item.ID,
		BomID:     f.bom.ID,
		ProjectID: uuid.NullUUID{UUID: f.project.ID, Valid: true},
		Quantity:  dec("1"),
	})
	wantKind(t, err, KindConflict)
}

func TestPatchAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alloc := f.allocation(t, "10")

	p, err := DecodePatch[AllocationPatch](strings.NewReader(`{"allocated_qty": "12", "item_name": "cable"}`))
	if err != nil {
		t.Fatalf("DecodePatch: %v", err)
	}
	row, err := f.svc.PatchAllocation(ctx, alloc.ID, p)
	if err != nil {
		t.Fatalf("PatchAllocation: %v", err)
	}
	wantQty(t, row.AllocatedQty, "12")
	wantQty(t, row.RequiredQty, "10")
	if row.ItemName != (pgtype.Text{String: "cable", Valid: true}) {
		t.Errorf("item_name = %+v", row.ItemName)
	}

	_, err = DecodePatch[AllocationPatch](strings.NewReader(`{"bom_id": "x"}`))
	wantKind(t, err, KindValidation)
	_, err = DecodePatch[AllocationPatch](strings.NewReader(`{}`))
	wantKind(t, err, KindValidation)

	_, err = f.svc.PatchAllocation(ctx, alloc.ID, AllocationPatch{AllocatedQty: Optional[decimal.Decimal]{Value: dec("-1"), Set: true}})
	wantKind(t, err, KindValidation)
}

func TestAllocationsByBomUnknownBom(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AllocationsByBom(context.Background(), uuid.New())
	wantKind(t, err, KindNotFound)
}

func TestAllocationsByItemGroupsPerBom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.allocation(t, "10")
	if _, err := f.svc.CreateAllocation(ctx, AllocationInput{ItemID: f.item.ID, BomID: f.bom.ID, AllocatedQty: dec("3")}); err != nil {
		t.Fatalf("CreateAllocation: %v", err)
	}

	groups, err := f.svc.AllocationsByItem(ctx, f.item.ID)
	if err != nil {
		t.Fatalf("AllocationsByItem: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected one BOM group, got %d", len(groups))
	}
	if len(groups[0].Allocations) != 2 {
		t.Fatalf("expected 2 allocations under the BOM, got %d", len(groups[0].Allocations))
	}
}

func TestBulkUpsertAllocationDetailsOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alloc := f.allocation(t, "10")
	source := uuid.New()

	first, err := f.svc.BulkUpsertAllocationDetails(ctx, []AllocationDetailInput{{ItemAllocationID: alloc.ID, SourceID: source, AllocatedQty: dec("4")}})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := f.svc.BulkUpsertAllocationDetails(ctx, []AllocationDetailInput{{ItemAllocationID: alloc.ID, SourceID: source, AllocatedQty: dec("6")}})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Fatal("allocation detail upsert should update in place")
	}
	wantQty(t, second[0].AllocatedQty, "6")
}
