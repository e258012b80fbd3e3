package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const p2pItemColumns = `p2p.id, p2p.issuance_id, p2p.item_id, p2p.sending_bom_id, p2p.sending_spec_id,
       p2p.allocated_qty, p2p.total_transferred_qty,
       p2p.created_at, p2p.created_by, p2p.updated_at, p2p.updated_by, p2p.is_active, p2p.is_deleted`

func scanP2PItem(row pgx.Row) (MaterialIssuanceItemP2p, error) {
	var i MaterialIssuanceItemP2p
	targets := append([]any{
		&i.ID, &i.IssuanceID, &i.ItemID, &i.SendingBomID, &i.SendingSpecID,
		&i.AllocatedQty, &i.TotalTransferredQty,
	}, i.Audit.scanTargets()...)
	err := row.Scan(targets...)
	return i, err
}

type P2PItemParams struct {
	IssuanceID    uuid.UUID
	ItemID        uuid.UUID
	SendingBomID  uuid.UUID
	SendingSpecID uuid.NullUUID
	AllocatedQty  decimal.Decimal
	IsActive      bool
	ActorID       uuid.UUID
}

const createP2PItem = `-- name: CreateP2PItem :one
INSERT INTO ims.t_material_issuance_items_p2p AS p2p (
    issuance_id, item_id, sending_bom_id, sending_spec_id, allocated_qty, total_transferred_qty,
    is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, 0, $6, $7, $7
)
RETURNING ` + p2pItemColumns

func (q *Queries) CreateP2PItem(ctx context.Context, arg P2PItemParams) (MaterialIssuanceItemP2p, error) {
	row := q.db.QueryRow(ctx, createP2PItem,
		arg.IssuanceID,
		arg.ItemID,
		arg.SendingBomID,
		arg.SendingSpecID,
		arg.AllocatedQty,
		arg.IsActive,
		arg.ActorID,
	)
	return scanP2PItem(row)
}

const getP2PItem = `-- name: GetP2PItem :one
SELECT ` + p2pItemColumns + `
FROM ims.t_material_issuance_items_p2p p2p
WHERE p2p.id = $1 AND p2p.is_deleted = false
`

func (q *Queries) GetP2PItem(ctx context.Context, id uuid.UUID) (MaterialIssuanceItemP2p, error) {
	return scanP2PItem(q.db.QueryRow(ctx, getP2PItem, id))
}

const getP2PItemForUpdate = `-- name: GetP2PItemForUpdate :one
SELECT ` + p2pItemColumns + `
FROM ims.t_material_issuance_items_p2p p2p
WHERE p2p.id = $1 AND p2p.is_deleted = false
FOR UPDATE
`

func (q *Queries) GetP2PItemForUpdate(ctx context.Context, id uuid.UUID) (MaterialIssuanceItemP2p, error) {
	return scanP2PItem(q.db.QueryRow(ctx, getP2PItemForUpdate, id))
}

const listP2PItems = `-- name: ListP2PItems :many
SELECT ` + p2pItemColumns + `
FROM ims.t_material_issuance_items_p2p p2p
WHERE p2p.is_deleted = false
ORDER BY p2p.created_at DESC
`

func (q *Queries) ListP2PItems(ctx context.Context) ([]MaterialIssuanceItemP2p, error) {
	rows, err := q.db.Query(ctx, listP2PItems)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (MaterialIssuanceItemP2p, error) { return scanP2PItem(r) })
}

const listP2PItemsByIssuance = `-- name: ListP2PItemsByIssuance :many
SELECT ` + p2pItemColumns + `
FROM ims.t_material_issuance_items_p2p p2p
WHERE p2p.issuance_id = $1 AND p2p.is_deleted = false
ORDER BY p2p.created_at
`

func (q *Queries) ListP2PItemsByIssuance(ctx context.Context, issuanceID uuid.UUID) ([]MaterialIssuanceItemP2p, error) {
	rows, err := q.db.Query(ctx, listP2PItemsByIssuance, issuanceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (MaterialIssuanceItemP2p, error) { return scanP2PItem(r) })
}

const updateP2PItem = `-- name: UpdateP2PItem :one
UPDATE ims.t_material_issuance_items_p2p p2p
SET issuance_id = $1, item_id = $2, sending_bom_id = $3, sending_spec_id = $4, allocated_qty = $5,
    is_active = $6, updated_by = $7, updated_at = now()
WHERE p2p.id = $8 AND p2p.is_deleted = false
RETURNING ` + p2pItemColumns

func (q *Queries) UpdateP2PItem(ctx context.Context, id uuid.UUID, arg P2PItemParams) (MaterialIssuanceItemP2p, error) {
	row := q.db.QueryRow(ctx, updateP2PItem,
		arg.IssuanceID,
		arg.ItemID,
		arg.SendingBomID,
		arg.SendingSpecID,
		arg.AllocatedQty,
		arg.IsActive,
		arg.ActorID,
		id,
	)
	return scanP2PItem(row)
}

const refreshP2PItemTotal = `-- name: RefreshP2PItemTotal :one
UPDATE ims.t_material_issuance_items_p2p p2p
SET total_transferred_qty = COALESCE((
        SELECT SUM(tr.transfer_qty)
        FROM ims.t_material_issuance_item_transfers_p2p tr
        WHERE tr.issuance_item_id = p2p.id AND tr.is_deleted = false
    ), 0),
    updated_by = $2, updated_at = now()
WHERE p2p.id = $1 AND p2p.is_deleted = false
RETURNING ` + p2pItemColumns

// RefreshP2PItemTotal recomputes total_transferred_qty from the live transfers.
func (q *Queries) RefreshP2PItemTotal(ctx context.Context, arg IDActorParams) (MaterialIssuanceItemP2p, error) {
	return scanP2PItem(q.db.QueryRow(ctx, refreshP2PItemTotal, arg.ID, arg.ActorID))
}

// ---------------------------------------------------------------------
// P2P transfers
// ---------------------------------------------------------------------

const p2pTransferColumns = `tr.id, tr.issuance_item_id, tr.receiving_bom_id, tr.receiving_spec_id, tr.receiving_project_id,
       tr.transfer_qty, tr.created_at, tr.created_by, tr.updated_at, tr.updated_by, tr.is_active, tr.is_deleted`

func scanP2PTransfer(row pgx.Row) (MaterialIssuanceItemTransferP2p, error) {
	var i MaterialIssuanceItemTransferP2p
	targets := append([]any{
		&i.ID, &i.IssuanceItemID, &i.ReceivingBomID, &i.ReceivingSpecID, &i.ReceivingProjectID, &i.TransferQty,
	}, i.Audit.scanTargets()...)
	err := row.Scan(targets...)
	return i, err
}

type P2PTransferParams struct {
	IssuanceItemID     uuid.UUID
	ReceivingBomID     uuid.UUID
	ReceivingSpecID    uuid.NullUUID
	ReceivingProjectID uuid.NullUUID
	TransferQty        decimal.Decimal
	IsActive           bool
	ActorID            uuid.UUID
}

func (p P2PTransferParams) args() []any {
	return []any{
		p.IssuanceItemID, p.ReceivingBomID, p.ReceivingSpecID, p.ReceivingProjectID, p.TransferQty,
		p.IsActive, p.ActorID,
	}
}

const createP2PTransfer = `-- name: CreateP2PTransfer :one
INSERT INTO ims.t_material_issuance_item_transfers_p2p AS tr (
    issuance_item_id, receiving_bom_id, receiving_spec_id, receiving_project_id, transfer_qty,
    is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $7
)
RETURNING ` + p2pTransferColumns

func (q *Queries) CreateP2PTransfer(ctx context.Context, arg P2PTransferParams) (MaterialIssuanceItemTransferP2p, error) {
	return scanP2PTransfer(q.db.QueryRow(ctx, createP2PTransfer, arg.args()...))
}

const getP2PTransfer = `-- name: GetP2PTransfer :one
SELECT ` + p2pTransferColumns + `
FROM ims.t_material_issuance_item_transfers_p2p tr
WHERE tr.id = $1 AND tr.is_deleted = false
`

func (q *Queries) GetP2PTransfer(ctx context.Context, id uuid.UUID) (MaterialIssuanceItemTransferP2p, error) {
	return scanP2PTransfer(q.db.QueryRow(ctx, getP2PTransfer, id))
}

const listP2PTransfers = `-- name: ListP2PTransfers :many
SELECT ` + p2pTransferColumns + `
FROM ims.t_material_issuance_item_transfers_p2p tr
WHERE tr.is_deleted = false
ORDER BY tr.created_at DESC
`

func (q *Queries) ListP2PTransfers(ctx context.Context) ([]MaterialIssuanceItemTransferP2p, error) {
	rows, err := q.db.Query(ctx, listP2PTransfers)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (MaterialIssuanceItemTransferP2p, error) { return scanP2PTransfer(r) })
}

const listP2PTransfersByIssuance = `-- name: ListP2PTransfersByIssuance :many
SELECT ` + p2pTransferColumns + `
FROM ims.t_material_issuance_item_transfers_p2p tr
JOIN ims.t_material_issuance_items_p2p p2p ON p2p.id = tr.issuance_item_id
WHERE p2p.issuance_id = $1 AND p2p.is_deleted = false AND tr.is_deleted = false
ORDER BY tr.created_at
`

func (q *Queries) ListP2PTransfersByIssuance(ctx context.Context, issuanceID uuid.UUID) ([]MaterialIssuanceItemTransferP2p, error) {
	rows, err := q.db.Query(ctx, listP2PTransfersByIssuance, issuanceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (MaterialIssuanceItemTransferP2p, error) { return scanP2PTransfer(r) })
}

const sumP2PTransfers = `-- name: SumP2PTransfers :one
SELECT COALESCE(SUM(tr.transfer_qty), 0)::numeric
FROM ims.t_material_issuance_item_transfers_p2p tr
WHERE tr.issuance_item_id = $1 AND tr.is_deleted = false
`

func (q *Queries) SumP2PTransfers(ctx context.Context, issuanceItemID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.db.QueryRow(ctx, sumP2PTransfers, issuanceItemID).Scan(&total)
	return total, err
}

const updateP2PTransfer = `-- name: UpdateP2PTransfer :one
UPDATE ims.t_material_issuance_item_transfers_p2p tr
SET issuance_item_id = $1, receiving_bom_id = $2, receiving_spec_id = $3, receiving_project_id = $4,
    transfer_qty = $5, is_active = $6, updated_by = $7, updated_at = now()
WHERE tr.id = $8 AND tr.is_deleted = false
RETURNING ` + p2pTransferColumns

func (q *Queries) UpdateP2PTransfer(ctx context.Context, id uuid.UUID, arg P2PTransferParams) (MaterialIssuanceItemTransferP2p, error) {
	args := append(arg.args(), id)
	return scanP2PTransfer(q.db.QueryRow(ctx, updateP2PTransfer, args...))
}
