package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const inventoryColumns = `inv.id, inv.item_id, inv.store_id, inv.store_type, inv.source_id, inv.source_type,
       inv.quantity, inv.rate, inv.status,
       inv.created_at, inv.created_by, inv.updated_at, inv.updated_by, inv.is_active, inv.is_deleted`

func inventoryTargets(i *Inventory) []any {
	return append([]any{
		&i.ID, &i.ItemID, &i.StoreID, &i.StoreType, &i.SourceID, &i.SourceType,
		&i.Quantity, &i.Rate, &i.Status,
	}, i.Audit.scanTargets()...)
}

func scanInventory(row pgx.Row) (Inventory, error) {
	var i Inventory
	err := row.Scan(inventoryTargets(&i)...)
	return i, err
}

const createInventory = `-- name: CreateInventory :one
INSERT INTO ims.t_inventory AS inv (
    item_id, store_id, store_type, source_id, source_type, quantity, rate, status, created_by, updated_by, is_active
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10
)
RETURNING ` + inventoryColumns

type CreateInventoryParams struct {
	ItemID     uuid.UUID
	StoreID    uuid.UUID
	StoreType  string
	SourceID   uuid.NullUUID
	SourceType pgtype.Text
	Quantity   decimal.Decimal
	Rate       decimal.NullDecimal
	Status     string
	ActorID    uuid.UUID
	IsActive   bool
}

func (q *Queries) CreateInventory(ctx context.Context, arg CreateInventoryParams) (Inventory, error) {
	row := q.db.QueryRow(ctx, createInventory,
		arg.ItemID,
		arg.StoreID,
		arg.StoreType,
		arg.SourceID,
		arg.SourceType,
		arg.Quantity,
		arg.Rate,
		arg.Status,
		arg.ActorID,
		arg.IsActive,
	)
	return scanInventory(row)
}

const getInventory = `-- name: GetInventory :one
SELECT ` + inventoryColumns + `
FROM ims.t_inventory inv
WHERE inv.id = $1 AND inv.is_deleted = false
`

func (q *Queries) GetInventory(ctx context.Context, id uuid.UUID) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, getInventory, id))
}

const getInventoryForUpdate = `-- name: GetInventoryForUpdate :one
SELECT ` + inventoryColumns + `
FROM ims.t_inventory inv
WHERE inv.id = $1 AND inv.is_deleted = false
FOR UPDATE
`

// GetInventoryForUpdate locks the row until the surrounding transaction ends.
func (q *Queries) GetInventoryForUpdate(ctx context.Context, id uuid.UUID) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, getInventoryForUpdate, id))
}

const listInventoryWithItem = `-- name: ListInventoryWithItem :many
SELECT ` + inventoryColumns + `,
       i.item_code, i.item_name, i.hsn_code, i.description, i.insurance_status
FROM ims.t_inventory inv
LEFT JOIN ims.t_item i ON i.id = inv.item_id
WHERE inv.is_deleted = false
ORDER BY i.item_name, inv.created_at
`

type InventoryWithItemRow struct {
	Inventory
	ItemCode        pgtype.Text `json:"item_code"`
	ItemName        pgtype.Text `json:"item_name"`
	HsnCode         pgtype.Text `json:"hsn_code"`
	Description     pgtype.Text `json:"description"`
	InsuranceStatus pgtype.Text `json:"insurance_status"`
}

func (q *Queries) ListInventoryWithItem(ctx context.Context) ([]InventoryWithItemRow, error) {
	rows, err := q.db.Query(ctx, listInventoryWithItem)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (InventoryWithItemRow, error) {
		var i InventoryWithItemRow
		targets := append(inventoryTargets(&i.Inventory),
			&i.ItemCode, &i.ItemName, &i.HsnCode, &i.Description, &i.InsuranceStatus)
		err := r.Scan(targets...)
		return i, err
	})
}

const listInventoryLocationsByItem = `-- name: ListInventoryLocationsByItem :many
SELECT ` + inventoryColumns + `,
       w.warehouse_code, w.warehouse_name, w.address, s.source_number
FROM ims.t_inventory inv
LEFT JOIN ims.t_warehouse w ON w.id = inv.store_id
LEFT JOIN ims.t_source s ON s.id = inv.source_id
WHERE inv.item_id = $1 AND inv.is_deleted = false
ORDER BY inv.store_id, inv.created_at
`

type InventoryLocationRow struct {
	Inventory
	WarehouseCode pgtype.Text `json:"warehouse_code"`
	WarehouseName pgtype.Text `json:"warehouse_name"`
	Address       pgtype.Text `json:"address"`
	SourceNumber  pgtype.Text `json:"source_number"`
}

func (q *Queries) ListInventoryLocationsByItem(ctx context.Context, itemID uuid.UUID) ([]InventoryLocationRow, error) {
	rows, err := q.db.Query(ctx, listInventoryLocationsByItem, itemID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (InventoryLocationRow, error) {
		var i InventoryLocationRow
		targets := append(inventoryTargets(&i.Inventory),
			&i.WarehouseCode, &i.WarehouseName, &i.Address, &i.SourceNumber)
		err := r.Scan(targets...)
		return i, err
	})
}

const listInventoryByStoreAndItem = `-- name: ListInventoryByStoreAndItem :many
SELECT ` + inventoryColumns + `
FROM ims.t_inventory inv
WHERE inv.store_id = $1 AND inv.item_id = $2 AND inv.is_deleted = false
ORDER BY inv.created_at
`

type ListInventoryByStoreAndItemParams struct {
	StoreID uuid.UUID
	ItemID  uuid.UUID
}

func (q *Queries) ListInventoryByStoreAndItem(ctx context.Context, arg ListInventoryByStoreAndItemParams) ([]Inventory, error) {
	rows, err := q.db.Query(ctx, listInventoryByStoreAndItem, arg.StoreID, arg.ItemID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (Inventory, error) { return scanInventory(r) })
}

const updateInventory = `-- name: UpdateInventory :one
UPDATE ims.t_inventory inv
SET item_id = $2, store_id = $3, store_type = $4, source_id = $5, source_type = $6,
    quantity = $7, rate = $8, status = $9, is_active = $10,
    updated_by = $11, updated_at = now()
WHERE inv.id = $1 AND inv.is_deleted = false
RETURNING ` + inventoryColumns

type UpdateInventoryParams struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	StoreID    uuid.UUID
	StoreType  string
	SourceID   uuid.NullUUID
	SourceType pgtype.Text
	Quantity   decimal.Decimal
	Rate       decimal.NullDecimal
	Status     string
	IsActive   bool
	ActorID    uuid.UUID
}

func (q *Queries) UpdateInventory(ctx context.Context, arg UpdateInventoryParams) (Inventory, error) {
	row := q.db.QueryRow(ctx, updateInventory,
		arg.ID,
		arg.ItemID,
		arg.StoreID,
		arg.StoreType,
		arg.SourceID,
		arg.SourceType,
		arg.Quantity,
		arg.Rate,
		arg.Status,
		arg.IsActive,
		arg.ActorID,
	)
	return scanInventory(row)
}

const adjustInventoryQuantity = `-- name: AdjustInventoryQuantity :one
UPDATE ims.t_inventory inv
SET quantity = quantity + $2, updated_by = $3, updated_at = now()
WHERE inv.id = $1 AND inv.is_deleted = false
RETURNING ` + inventoryColumns

type AdjustInventoryQuantityParams struct {
	ID      uuid.UUID
	Delta   decimal.Decimal
	ActorID uuid.UUID
}

// AdjustInventoryQuantity applies a signed delta. Callers check the floor first.
func (q *Queries) AdjustInventoryQuantity(ctx context.Context, arg AdjustInventoryQuantityParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, adjustInventoryQuantity, arg.ID, arg.Delta, arg.ActorID))
}

const softDeleteInventory = `-- name: SoftDeleteInventory :one
UPDATE ims.t_inventory
SET is_deleted = true, updated_by = $2, updated_at = now()
WHERE id = $1 AND is_deleted = false
RETURNING id
`

type IDActorParams struct {
	ID      uuid.UUID
	ActorID uuid.UUID
}

func (q *Queries) SoftDeleteInventory(ctx context.Context, arg IDActorParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteInventory, arg.ID, arg.ActorID).Scan(&id)
	return id, err
}
