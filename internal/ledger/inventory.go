package ledger

import (
	"context"
	"strings"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	StoreWarehouse = "WAREHOUSE"
	StoreProject   = "PROJECT"

	defaultInventoryStatus = "available"
)

// CreditInput describes one inventory row to credit.
type CreditInput struct {
	ItemID     uuid.UUID           `json:"item_id" validate:"required"`
	StoreID    uuid.UUID           `json:"store_id" validate:"required"`
	StoreType  string              `json:"store_type" validate:"required,oneof=WAREHOUSE PROJECT"`
	SourceID   uuid.NullUUID       `json:"source_id"`
	SourceType pgtype.Text         `json:"source_type"`
	Quantity   decimal.Decimal     `json:"quantity" validate:"gte=0"`
	Rate       decimal.NullDecimal `json:"rate" validate:"omitempty,gte=0"`
	Status     string              `json:"status"`
	IsActive   *bool               `json:"is_active"`
}

func (in *CreditInput) normalize() {
	in.StoreType = strings.ToUpper(strings.TrimSpace(in.StoreType))
	if in.Status == "" {
		in.Status = defaultInventoryStatus
	}
}

func (in CreditInput) params(actor uuid.UUID) db.CreateInventoryParams {
	return db.CreateInventoryParams{
		ItemID:     in.ItemID,
		StoreID:    in.StoreID,
		StoreType:  in.StoreType,
		SourceID:   in.SourceID,
		SourceType: in.SourceType,
		Quantity:   in.Quantity,
		Rate:       in.Rate,
		Status:     in.Status,
		ActorID:    actor,
		IsActive:   boolOr(in.IsActive, true),
	}
}

// Credit inserts a new inventory balance.
func (s *Service) Credit(ctx context.Context, in CreditInput) (db.Inventory, error) {
	const op = "inventory_credit"
	in.normalize()
	if err := s.check(op, in); err != nil {
		return db.Inventory{}, err
	}

	var row db.Inventory
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.CreateInventory(ctx, in.params(s.actor(ctx)))
		return err
	})
	if err != nil {
		return db.Inventory{}, err
	}
	s.moved("credit", row.Quantity)
	return row, nil
}

// CreditBulk inserts every row or none.
func (s *Service) CreditBulk(ctx context.Context, rows []CreditInput) ([]db.Inventory, error) {
	const op = "inventory_credit_bulk"
	if len(rows) == 0 {
		return nil, validationErr(op, "expected a non-empty array of inventory rows")
	}
	for i := range rows {
		rows[i].normalize()
		if err := s.check(op, rows[i]); err != nil {
			return nil, err
		}
	}

	actor := s.actor(ctx)
	out := make([]db.Inventory, 0, len(rows))
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		for _, in := range rows {
			row, err := q.CreateInventory(ctx, in.params(actor))
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, row := range out {
		total = total.Add(row.Quantity)
	}
	s.moved("credit", total)
	s.logger.InfoContext(ctx, "inventory credited in bulk", "rows", len(out))
	return out, nil
}

// ReplaceInventory overwrites every column of an inventory row.
func (s *Service) ReplaceInventory(ctx context.Context, id uuid.UUID, in CreditInput) (db.Inventory, error) {
	const op = "inventory_replace"
	in.normalize()
	if err := s.check(op, in); err != nil {
		return db.Inventory{}, err
	}

	var row db.Inventory
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.UpdateInventory(ctx, db.UpdateInventoryParams{
			ID:         id,
			ItemID:     in.ItemID,
			StoreID:    in.StoreID,
			StoreType:  in.StoreType,
			SourceID:   in.SourceID,
			SourceType: in.SourceType,
			Quantity:   in.Quantity,
			Rate:       in.Rate,
			Status:     in.Status,
			IsActive:   boolOr(in.IsActive, true),
			ActorID:    s.actor(ctx),
		})
		return err
	})
	return row, err
}

// Debit removes qty from one inventory row, failing with InsufficientQuantity
// when the balance would go negative.
func (s *Service) Debit(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (db.Inventory, error) {
	const op = "inventory_debit"
	var row db.Inventory
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) (err error) {
		row, err = s.debitTx(ctx, q, op, id, qty)
		return err
	})
	if err != nil {
		return db.Inventory{}, err
	}
	s.moved("debit", qty)
	return row, nil
}

func (s *Service) debitTx(ctx context.Context, q db.Querier, op string, id uuid.UUID, qty decimal.Decimal) (db.Inventory, error) {
	if !qty.IsPositive() {
		return db.Inventory{}, validationErr(op, "quantity must be greater than 0")
	}
	cur, err := q.GetInventoryForUpdate(ctx, id)
	if err != nil {
		return db.Inventory{}, wrapNotFound(op, "inventory "+id.String(), err)
	}
	if qty.GreaterThan(cur.Quantity) {
		return db.Inventory{}, insufficientErr(op, "inventory %s holds %s, cannot debit %s", id, cur.Quantity, qty)
	}
	spanAttrs(ctx, attribute.String("inventory.id", id.String()), attribute.String("inventory.debit", qty.String()))
	return q.AdjustInventoryQuantity(ctx, db.AdjustInventoryQuantityParams{ID: id, Delta: qty.Neg(), ActorID: s.actor(ctx)})
}

func (s *Service) creditTx(ctx context.Context, q db.Querier, op string, id uuid.UUID, qty decimal.Decimal) (db.Inventory, error) {
	row, err := q.AdjustInventoryQuantity(ctx, db.AdjustInventoryQuantityParams{ID: id, Delta: qty, ActorID: s.actor(ctx)})
	if err != nil {
		return db.Inventory{}, wrapNotFound(op, "inventory "+id.String(), err)
	}
	return row, nil
}

// DeleteInventory soft-deletes a row.
func (s *Service) DeleteInventory(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := s.write(ctx, "inventory_delete", func() (err error) {
		out, err = s.store.SoftDeleteInventory(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	return out, err
}

// ItemInventory is every balance of one item with the item columns folded into the parent.
type ItemInventory struct {
	ItemID          uuid.UUID      `json:"item_id"`
	ItemCode        pgtype.Text    `json:"item_code"`
	ItemName        pgtype.Text    `json:"item_name"`
	HsnCode         pgtype.Text    `json:"hsn_code"`
	Description     pgtype.Text    `json:"description"`
	InsuranceStatus pgtype.Text    `json:"insurance_status"`
	Inventories     []db.Inventory `json:"inventories"`
}

// InventoryByItem lists all live balances grouped by item.
func (s *Service) InventoryByItem(ctx context.Context) ([]ItemInventory, error) {
	rows, err := s.store.ListInventoryWithItem(ctx)
	if err != nil {
		return nil, wrap("inventory_list", err)
	}
	keys, groups := groupOrdered(rows, func(r db.InventoryWithItemRow) uuid.UUID { return r.ItemID })
	out := make([]ItemInventory, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		head := g[0]
		entry := ItemInventory{
			ItemID:          k,
			ItemCode:        head.ItemCode,
			ItemName:        head.ItemName,
			HsnCode:         head.HsnCode,
			Description:     head.Description,
			InsuranceStatus: head.InsuranceStatus,
			Inventories:     make([]db.Inventory, 0, len(g)),
		}
		for _, r := range g {
			entry.Inventories = append(entry.Inventories, r.Inventory)
		}
		out = append(out, entry)
	}
	return out, nil
}

// LocationInventory is every balance of one item at one store.
type LocationInventory struct {
	WarehouseID   uuid.UUID         `json:"warehouse_id"`
	WarehouseCode pgtype.Text       `json:"warehouse_code"`
	WarehouseName pgtype.Text       `json:"warehouse_name"`
	Address       pgtype.Text       `json:"address"`
	Inventories   []LocationBalance `json:"inventories"`
}

type LocationBalance struct {
	db.Inventory
	SourceNumber pgtype.Text `json:"source_number"`
}

// InventoryLocations groups an item's balances by store.
func (s *Service) InventoryLocations(ctx context.Context, itemID uuid.UUID) ([]LocationInventory, error) {
	const op = "inventory_locations"
	rows, err := s.store.ListInventoryLocationsByItem(ctx, itemID)
	if err != nil {
		return nil, wrap(op, err)
	}
	if len(rows) == 0 {
		return nil, notFoundErr(op, "inventory")
	}
	keys, groups := groupOrdered(rows, func(r db.InventoryLocationRow) uuid.UUID { return r.StoreID })
	out := make([]LocationInventory, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		entry := LocationInventory{
			WarehouseID:   k,
			WarehouseCode: g[0].WarehouseCode,
			WarehouseName: g[0].WarehouseName,
			Address:       g[0].Address,
			Inventories:   make([]LocationBalance, 0, len(g)),
		}
		for _, r := range g {
			entry.Inventories = append(entry.Inventories, LocationBalance{Inventory: r.Inventory, SourceNumber: r.SourceNumber})
		}
		out = append(out, entry)
	}
	return out, nil
}

// InventoryAt returns the balances of one item at one store.
func (s *Service) InventoryAt(ctx context.Context, storeID, itemID uuid.UUID) ([]db.Inventory, error) {
	const op = "inventory_at"
	rows, err := s.store.ListInventoryByStoreAndItem(ctx, db.ListInventoryByStoreAndItemParams{StoreID: storeID, ItemID: itemID})
	if err != nil {
		return nil, wrap(op, err)
	}
	if len(rows) == 0 {
		return nil, notFoundErr(op, "inventory for the given warehouse_id and item_id")
	}
	return rows, nil
}

// groupOrdered buckets rows by key, keeping keys in first-seen order.
func groupOrdered[K comparable, R any](rows []R, key func(R) K) ([]K, map[K][]R) {
	keys := []K{}
	groups := map[K][]R{}
	for _, r := range rows {
		k := key(r)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	return keys, groups
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
