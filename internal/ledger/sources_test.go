package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateSourceAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	src, err := f.svc.CreateSource(ctx, SourceInput{SourceNumber: "GRN-0001", SourceDate: today()})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	if src.SourceType != "GRN" {
		t.Errorf("source_type = %q, want GRN", src.SourceType)
	}
	if src.InboundTriggerIssueType.String != "PO" {
		t.Errorf("inbound_trigger_issue_type = %q, want PO", src.InboundTriggerIssueType.String)
	}
	if src.Status != "draft" {
		t.Errorf("status = %q, want draft", src.Status)
	}
	if src.GenerateQr {
		t.Error("generate_qr should default to false")
	}

	approved, err := f.svc.ApproveSource(ctx, src.ID)
	if err != nil {
		t.Fatalf("ApproveSource: %v", err)
	}
	if approved.Status != "completed" {
		t.Errorf("status after approve = %q, want completed", approved.Status)
	}
	// Approving twice is allowed.
	if _, err := f.svc.ApproveSource(ctx, src.ID); err != nil {
		t.Fatalf("second ApproveSource: %v", err)
	}
}

func TestCreateSourceRequiresNumberAndDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateSource(context.Background(), SourceInput{SourceDate: today()})
	wantKind(t, err, KindValidation)

	_, err = f.svc.CreateSource(context.Background(), SourceInput{SourceNumber: "GRN-2"})
	wantKind(t, err, KindValidation)
}

func TestCreateSourceWithNestedDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	src, err := f.svc.CreateSource(ctx, SourceInput{
		SourceNumber: "GRN-0003",
		SourceDate:   today(),
		Details: []SourceDetailInput{{
			ItemID:           f.item.ID,
			ExpectedQuantity: decimal.NewNullDecimal(dec("10")),
			Warehouses: []SplitInput{
				{WarehouseID: uuid.NullUUID{UUID: f.warehouse.ID, Valid: true}, AcceptedQuantity: decimal.NewNullDecimal(dec("6"))},
				{ProjectID: uuid.NullUUID{UUID: f.project.ID, Valid: true}, AcceptedQuantity: decimal.NewNullDecimal(dec("4"))},
			},
		}},
	})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	if len(src.Details) != 1 || len(src.Details[0].Warehouses) != 2 {
		t.Fatalf("unexpected nested result: %+v", src.Details)
	}
	split := src.Details[0].Warehouses[0]
	if split.SourceID != src.ID || split.SourceDetailID != src.Details[0].ID || split.ItemID != f.item.ID {
		t.Errorf("split not linked to its parents: %+v", split)
	}

	details, err := f.svc.SourceDetails(ctx, src.ID)
	if err != nil {
		t.Fatalf("SourceDetails: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(details))
	}
}

func TestCreateSourceRejectsSpecWithoutProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSource(ctx, SourceInput{
		SourceNumber: "GRN-0004",
		SourceDate:   today(),
		Details: []SourceDetailInput{{
			ItemID: f.item.ID,
			Warehouses: []SplitInput{{
				WarehouseID: uuid.NullUUID{UUID: f.warehouse.ID, Valid: true},
				SpecID:      uuid.NullUUID{UUID: f.spec.ID, Valid: true},
			}},
		}},
	})
	wantKind(t, err, KindValidation)

	list, err := f.svc.ListSources(ctx, "")
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no sources, got %d", len(list))
	}
}

func TestCreateSourceRollsBackOnNestedFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.FailOn("CreateSourceItemWarehouseDetail", errors.New("disk full"))

	_, err := f.svc.CreateSource(ctx, SourceInput{
		SourceNumber: "GRN-0006",
		SourceDate:   today(),
		Details: []SourceDetailInput{{
			ItemID:     f.item.ID,
			Warehouses: []SplitInput{{WarehouseID: uuid.NullUUID{UUID: f.warehouse.ID, Valid: true}}},
		}},
	})
	wantKind(t, err, KindPersistence)

	f.store.FailOn("CreateSourceItemWarehouseDetail", nil)
	list, err := f.svc.ListSources(ctx, "")
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("source should have been rolled back, found %d", len(list))
	}
}

func TestRecordSplitNeedsDestination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src, err := f.svc.CreateSource(ctx, SourceInput{SourceNumber: "GRN-5", SourceDate: today()})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	detail, err := f.svc.CreateSourceDetail(ctx, SourceDetailInput{SourceID: src.ID, ItemID: f.item.ID})
	if err != nil {
		t.Fatalf("CreateSourceDetail: %v", err)
	}

	_, err = f.svc.RecordSplit(ctx, SplitInput{SourceID: src.ID, SourceDetailID: detail.ID, ItemID: f.item.ID})
	wantKind(t, err, KindValidation)

	_, err = f.svc.RecordSplit(ctx, SplitInput{
		SourceID:       src.ID,
		SourceDetailID: detail.ID,
		ItemID:         f.item.ID,
		ProjectID:      uuid.NullUUID{UUID: f.project.ID, Valid: true},
		ReceiverBomID:  uuid.NullUUID{UUID: f.bom.ID, Valid: true},
	})
	if err != nil {
		t.Fatalf("RecordSplit to project: %v", err)
	}
}

func TestListSourcesFiltersByType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, in := range []SourceInput{
		{SourceNumber: "GRN-10", SourceDate: today()},
		{SourceNumber: "DC-10", SourceDate: today(), SourceType: "DC"},
	} {
		if _, err := f.svc.CreateSource(ctx, in); err != nil {
			t.Fatalf("CreateSource(%s): %v", in.SourceNumber, err)
		}
	}

	all, err := f.svc.ListSources(ctx, "")
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(all))
	}
	dc, err := f.svc.ListSources(ctx, "DC")
	if err != nil {
		t.Fatalf("ListSources(DC): %v", err)
	}
	if len(dc) != 1 || dc[0].SourceNumber != "DC-10" {
		t.Fatalf("unexpected DC listing: %+v", dc)
	}
	if dc[0].DestinationWarehouses == nil {
		t.Error("destination_warehouses should be an empty list, not null")
	}
}

func TestDeleteSourceHidesRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src, err := f.svc.CreateSource(ctx, SourceInput{SourceNumber: "GRN-20", SourceDate: today()})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	if _, err := f.svc.DeleteSource(ctx, src.ID); err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	_, err = f.svc.GetSource(ctx, src.ID)
	wantKind(t, err, KindNotFound)

	raw, ok := f.store.RawSource(src.ID)
	if !ok || !raw.IsDeleted {
		t.Fatal("soft-deleted source should stay in storage")
	}
}
