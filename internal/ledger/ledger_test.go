package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/memdb"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type fixture struct {
	svc       *Service
	store     *memdb.DB
	item      db.Item
	warehouse db.Warehouse
	project   db.Project
	bom       db.Bom
	spec      db.BomSpec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.New()
	f := &fixture{
		store:     store,
		item:      db.Item{ID: uuid.New(), ItemCode: "ITM-001", ItemName: "Copper cable", UomName: pgtype.Text{String: "m", Valid: true}},
		warehouse: db.Warehouse{ID: uuid.New(), WarehouseCode: "WH-01", WarehouseName: "Central store"},
		project:   db.Project{ID: uuid.New(), Name: "Tower A", ProjectNumber: pgtype.Text{String: "PRJ-7", Valid: true}},
	}
	f.bom = db.Bom{ID: uuid.New(), Name: "Electrical", ProjectID: uuid.NullUUID{UUID: f.project.ID, Valid: true}}
	f.spec = db.BomSpec{ID: uuid.New(), BomID: f.bom.ID, SpecDescription: pgtype.Text{String: "4 sq mm", Valid: true}}
	store.PutItem(f.item)
	store.PutWarehouse(f.warehouse)
	store.PutProject(f.project)
	store.PutBom(f.bom)
	store.PutBomSpec(f.spec)

	f.svc = New(Options{
		Store:         store,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		SystemActorID: uuid.New(),
	})
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func today() pgtype.Date {
	return pgtype.Date{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Valid: true}
}

// stock credits qty of the fixture item into the fixture warehouse.
func (f *fixture) stock(t *testing.T, qty string) db.Inventory {
	t.Helper()
	inv, err := f.svc.Credit(context.Background(), CreditInput{
		ItemID:    f.item.ID,
		StoreID:   f.warehouse.ID,
		StoreType: "warehouse",
		Quantity:  dec(qty),
	})
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	return inv
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	row, ok := f.store.RawInventory(id)
	if !ok {
		t.Fatalf("inventory %s missing", id)
	}
	return row.Quantity
}

func wantKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}

func wantQty(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("expected quantity %s, got %s", want, got)
	}
}

func TestCreditNormalizesStoreType(t *testing.T) {
	f := newFixture(t)
	inv := f.stock(t, "20")

	if inv.StoreType != StoreWarehouse {
		t.Errorf("store_type = %q, want %q", inv.StoreType, StoreWarehouse)
	}
	if inv.Status != defaultInventoryStatus {
		t.Errorf("status = %q, want %q", inv.Status, defaultInventoryStatus)
	}
	if !inv.IsActive {
		t.Error("new inventory should be active")
	}
}

func TestCreditRejectsUnknownStoreType(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Credit(context.Background(), CreditInput{
		ItemID:    f.item.ID,
		StoreID:   f.warehouse.ID,
		StoreType: "shelf",
		Quantity:  dec("1"),
	})
	wantKind(t, err, KindValidation)
}

func TestDebitRejectsOverdraw(t *testing.T) {
	f := newFixture(t)
	inv := f.stock(t, "5")

	_, err := f.svc.Debit(context.Background(), inv.ID, dec("6"))
	wantKind(t, err, KindInsufficientQuantity)
	wantQty(t, f.balance(t, inv.ID), "5")

	row, err := f.svc.Debit(context.Background(), inv.ID, dec("5"))
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	wantQty(t, row.Quantity, "0")
}

func TestDebitMissingInventory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Debit(context.Background(), uuid.New(), dec("1"))
	wantKind(t, err, KindNotFound)
}

func TestCreditBulkValidatesEveryRow(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreditBulk(context.Background(), []CreditInput{
		{ItemID: f.item.ID, StoreID: f.warehouse.ID, StoreType: "WAREHOUSE", Quantity: dec("3")},
		{ItemID: f.item.ID, StoreID: f.warehouse.ID, StoreType: "WAREHOUSE", Quantity: dec("-1")},
	})
	wantKind(t, err, KindValidation)

	rows, err := f.svc.InventoryByItem(context.Background())
	if err != nil {
		t.Fatalf("InventoryByItem: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no inventory after rejected bulk credit, got %d items", len(rows))
	}
}

func TestDeleteInventoryKeepsRow(t *testing.T) {
	f := newFixture(t)
	inv := f.stock(t, "4")

	if _, err := f.svc.DeleteInventory(context.Background(), inv.ID); err != nil {
		t.Fatalf("DeleteInventory: %v", err)
	}
	raw, ok := f.store.RawInventory(inv.ID)
	if !ok || !raw.IsDeleted {
		t.Fatalf("expected soft-deleted row to remain, got ok=%v deleted=%v", ok, raw.IsDeleted)
	}
	_, err := f.svc.Debit(context.Background(), inv.ID, dec("1"))
	wantKind(t, err, KindNotFound)
}

func TestWrapClassifiesStoreErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"no rows", pgx.ErrNoRows, KindNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, KindConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, KindConflict},
		{"quantity check", &pgconn.PgError{Code: "23514", ConstraintName: "chk_inventory_quantity"}, KindInsufficientQuantity},
		{"p2p check", &pgconn.PgError{Code: "23514", ConstraintName: "chk_p2p_total"}, KindInsufficientQuantity},
		{"other", errors.New("connection reset"), KindPersistence},
		{"already classified", validationErr("x", "bad"), KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(wrap("op", tt.err)); got != tt.want {
				t.Errorf("KindOf(wrap(%v)) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
	if wrap("op", nil) != nil {
		t.Error("wrap(nil) should stay nil")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{validationErr("op", "bad"), 400},
		{notFoundErr("op", "thing"), 404},
		{insufficientErr("op", "short"), 409},
		{transitionErr("op", "approved", "pending"), 409},
		{&Error{Kind: KindConflict, Op: "op"}, 409},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestActorFromContext(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	ctx := WithActor(context.Background(), user)

	inv, err := f.svc.Credit(ctx, CreditInput{ItemID: f.item.ID, StoreID: f.warehouse.ID, StoreType: "WAREHOUSE", Quantity: dec("1")})
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if inv.CreatedBy.UUID != user {
		t.Errorf("created_by = %s, want %s", inv.CreatedBy.UUID, user)
	}

	sys := f.stock(t, "1")
	if sys.CreatedBy.UUID != f.svc.system {
		t.Errorf("created_by = %s, want system actor %s", sys.CreatedBy.UUID, f.svc.system)
	}
}
