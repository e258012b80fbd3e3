package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const allocationColumns = `ia.id, ia.item_id, ia.bom_id, ia.project_id, ia.item_name, ia.required_qty, ia.allocated_qty, ia.rate,
       ia.created_at, ia.created_by, ia.updated_at, ia.updated_by, ia.is_active, ia.is_deleted`

func allocationTargets(i *ItemAllocation) []any {
	return append([]any{
		&i.ID, &i.ItemID, &i.BomID, &i.ProjectID, &i.ItemName, &i.RequiredQty, &i.AllocatedQty, &i.Rate,
	}, i.Audit.scanTargets()...)
}

func scanAllocation(row pgx.Row) (ItemAllocation, error) {
	var i ItemAllocation
	err := row.Scan(allocationTargets(&i)...)
	return i, err
}

const createAllocation = `-- name: CreateAllocation :one
INSERT INTO ims.t_item_allocation AS ia (
    item_id, bom_id, project_id, item_name, required_qty, allocated_qty, rate, is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $9
)
RETURNING ` + allocationColumns

type CreateAllocationParams struct {
	ItemID       uuid.UUID
	BomID        uuid.UUID
	ProjectID    uuid.NullUUID
	ItemName     pgtype.Text
	RequiredQty  decimal.Decimal
	AllocatedQty decimal.Decimal
	Rate         decimal.NullDecimal
	IsActive     bool
	ActorID      uuid.UUID
}

func (q *Queries) CreateAllocation(ctx context.Context, arg CreateAllocationParams) (ItemAllocation, error) {
	row := q.db.QueryRow(ctx, createAllocation,
		arg.ItemID,
		arg.BomID,
		arg.ProjectID,
		arg.ItemName,
		arg.RequiredQty,
		arg.AllocatedQty,
		arg.Rate,
		arg.IsActive,
		arg.ActorID,
	)
	return scanAllocation(row)
}

const getAllocation = `-- name: GetAllocation :one
SELECT ` + allocationColumns + `
FROM ims.t_item_allocation ia
WHERE ia.id = $1 AND ia.is_deleted = false
`

func (q *Queries) GetAllocation(ctx context.Context, id uuid.UUID) (ItemAllocation, error) {
	return scanAllocation(q.db.QueryRow(ctx, getAllocation, id))
}

const listAllocations = `-- name: ListAllocations :many
SELECT ` + allocationColumns + `
FROM ims.t_item_allocation ia
WHERE ia.is_deleted = false
ORDER BY ia.created_at DESC
`

func (q *Queries) ListAllocations(ctx context.Context) ([]ItemAllocation, error) {
	rows, err := q.db.Query(ctx, listAllocations)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (ItemAllocation, error) { return scanAllocation(r) })
}

const findAllocationByKeyForUpdate = `-- name: FindAllocationByKeyForUpdate :one
SELECT ` + allocationColumns + `
FROM ims.t_item_allocation ia
WHERE ia.item_id = $1 AND ia.bom_id = $2 AND ia.project_id IS NOT DISTINCT FROM $3 AND ia.is_deleted = false
FOR UPDATE
`

type AllocationKey struct {
	ItemID    uuid.UUID
	BomID     uuid.UUID
	ProjectID uuid.NullUUID
}

// FindAllocationByKeyForUpdate matches a null project_id only against null.
func (q *Queries) FindAllocationByKeyForUpdate(ctx context.Context, arg AllocationKey) (ItemAllocation, error) {
	return scanAllocation(q.db.QueryRow(ctx, findAllocationByKeyForUpdate, arg.ItemID, arg.BomID, arg.ProjectID))
}

const addToAllocation = `-- name: AddToAllocation :one
UPDATE ims.t_item_allocation ia
SET required_qty = required_qty + $2, allocated_qty = allocated_qty + $3,
    item_name = COALESCE($4, item_name), rate = COALESCE($5, rate),
    updated_by = $6, updated_at = now()
WHERE ia.id = $1 AND ia.is_deleted = false
RETURNING ` + allocationColumns

type AddToAllocationParams struct {
	ID           uuid.UUID
	RequiredQty  decimal.Decimal
	AllocatedQty decimal.Decimal
	ItemName     pgtype.Text
	Rate         decimal.NullDecimal
	ActorID      uuid.UUID
}

func (q *Queries) AddToAllocation(ctx context.Context, arg AddToAllocationParams) (ItemAllocation, error) {
	row := q.db.QueryRow(ctx, addToAllocation,
		arg.ID,
		arg.RequiredQty,
		arg.AllocatedQty,
		arg.ItemName,
		arg.Rate,
		arg.ActorID,
	)
	return scanAllocation(row)
}

const updateAllocation = `-- name: UpdateAllocation :one
UPDATE ims.t_item_allocation ia
SET item_name = $2, required_qty = $3, allocated_qty = $4, rate = $5, is_active = $6,
    updated_by = $7, updated_at = now()
WHERE ia.id = $1 AND ia.is_deleted = false
RETURNING ` + allocationColumns

type UpdateAllocationParams struct {
	ID           uuid.UUID
	ItemName     pgtype.Text
	RequiredQty  decimal.Decimal
	AllocatedQty decimal.Decimal
	Rate         decimal.NullDecimal
	IsActive     bool
	ActorID      uuid.UUID
}

func (q *Queries) UpdateAllocation(ctx context.Context, arg UpdateAllocationParams) (ItemAllocation, error) {
	row := q.db.QueryRow(ctx, updateAllocation,
		arg.ID,
		arg.ItemName,
		arg.RequiredQty,
		arg.AllocatedQty,
		arg.Rate,
		arg.IsActive,
		arg.ActorID,
	)
	return scanAllocation(row)
}

const softDeleteAllocation = `-- name: SoftDeleteAllocation :one
UPDATE ims.t_item_allocation ia
SET is_deleted = true, updated_by = $2, updated_at = now()
WHERE ia.id = $1 AND ia.is_deleted = false
RETURNING ` + allocationColumns

func (q *Queries) SoftDeleteAllocation(ctx context.Context, arg IDActorParams) (ItemAllocation, error) {
	return scanAllocation(q.db.QueryRow(ctx, softDeleteAllocation, arg.ID, arg.ActorID))
}

const listAllocationsByBom = `-- name: ListAllocationsByBom :many
SELECT ` + allocationColumns + `,
       i.item_code, u.uom_name,
       COALESCE((
           SELECT SUM(mii.issued_quantity)
           FROM ims.t_material_issue_items mii
           JOIN ims.t_material_issues mi ON mi.id = mii.issue_id
           WHERE mii.item_allocation_id = ia.id
             AND mii.is_deleted = false AND mi.is_deleted = false
             AND mi.status NOT IN ('rejected', 'cancelled')
       ), 0)::numeric AS issued_qty
FROM ims.t_item_allocation ia
LEFT JOIN ims.t_item i ON i.id = ia.item_id
LEFT JOIN ims.t_uom u ON u.id = i.uom_id
WHERE ia.bom_id = $1 AND ia.is_deleted = false
ORDER BY ia.item_name
`

// AllocationIssueRow is an allocation with the quantity already issued against it.
type AllocationIssueRow struct {
	ItemAllocation
	ItemCode  pgtype.Text     `json:"item_code"`
	UomName   pgtype.Text     `json:"uom_name"`
	IssuedQty decimal.Decimal `json:"issued_qty"`
}

func (q *Queries) ListAllocationsByBom(ctx context.Context, bomID uuid.UUID) ([]AllocationIssueRow, error) {
	rows, err := q.db.Query(ctx, listAllocationsByBom, bomID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (AllocationIssueRow, error) {
		var i AllocationIssueRow
		targets := append(allocationTargets(&i.ItemAllocation), &i.ItemCode, &i.UomName, &i.IssuedQty)
		err := r.Scan(targets...)
		return i, err
	})
}

const listAllocationsByItem = `-- name: ListAllocationsByItem :many
SELECT ` + allocationColumns + `,
       b.name, p.name
FROM ims.t_item_allocation ia
LEFT JOIN crm.t_bom b ON b.id = ia.bom_id
LEFT JOIN pms.t_project p ON p.id = COALESCE(ia.project_id, b.project_id)
WHERE ia.item_id = $1 AND ia.is_deleted = false
ORDER BY ia.bom_id, ia.created_at
`

type AllocationBomRow struct {
	ItemAllocation
	BomName     pgtype.Text `json:"bom_name"`
	ProjectName pgtype.Text `json:"project_name"`
}

func (q *Queries) ListAllocationsByItem(ctx context.Context, itemID uuid.UUID) ([]AllocationBomRow, error) {
	rows, err := q.db.Query(ctx, listAllocationsByItem, itemID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (AllocationBomRow, error) {
		var i AllocationBomRow
		targets := append(allocationTargets(&i.ItemAllocation), &i.BomName, &i.ProjectName)
		err := r.Scan(targets...)
		return i, err
	})
}

const getAllocationRate = `-- name: GetAllocationRate :one
SELECT ia.rate
FROM ims.t_item_allocation ia
WHERE ia.item_id = $1 AND ia.bom_id = $2 AND ia.is_deleted = false
ORDER BY ia.created_at
LIMIT 1
`

type GetAllocationRateParams struct {
	ItemID uuid.UUID
	BomID  uuid.UUID
}

func (q *Queries) GetAllocationRate(ctx context.Context, arg GetAllocationRateParams) (decimal.NullDecimal, error) {
	var rate decimal.NullDecimal
	err := q.db.QueryRow(ctx, getAllocationRate, arg.ItemID, arg.BomID).Scan(&rate)
	return rate, err
}

// ---------------------------------------------------------------------
// Allocation details
// ---------------------------------------------------------------------

const allocationDetailColumns = `iad.id, iad.item_allocation_id, iad.source_id, iad.allocated_qty, iad.rate,
       iad.created_at, iad.created_by, iad.updated_at, iad.updated_by, iad.is_active, iad.is_deleted`

func scanAllocationDetail(row pgx.Row) (ItemAllocationDetail, error) {
	var i ItemAllocationDetail
	targets := append([]any{&i.ID, &i.ItemAllocationID, &i.SourceID, &i.AllocatedQty, &i.Rate}, i.Audit.scanTargets()...)
	err := row.Scan(targets...)
	return i, err
}

const createAllocationDetail = `-- name: CreateAllocationDetail :one
INSERT INTO ims.t_item_allocation_details AS iad (
    item_allocation_id, source_id, allocated_qty, rate, is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $6
)
RETURNING ` + allocationDetailColumns

type CreateAllocationDetailParams struct {
	ItemAllocationID uuid.UUID
	SourceID         uuid.UUID
	AllocatedQty     decimal.Decimal
	Rate             decimal.NullDecimal
	IsActive         bool
	ActorID          uuid.UUID
}

func (q *Queries) CreateAllocationDetail(ctx context.Context, arg CreateAllocationDetailParams) (ItemAllocationDetail, error) {
	row := q.db.QueryRow(ctx, createAllocationDetail,
		arg.ItemAllocationID,
		arg.SourceID,
		arg.AllocatedQty,
		arg.Rate,
		arg.IsActive,
		arg.ActorID,
	)
	return scanAllocationDetail(row)
}

const getAllocationDetail = `-- name: GetAllocationDetail :one
SELECT ` + allocationDetailColumns + `
FROM ims.t_item_allocation_details iad
WHERE iad.id = $1 AND iad.is_deleted = false
`

func (q *Queries) GetAllocationDetail(ctx context.Context, id uuid.UUID) (ItemAllocationDetail, error) {
	return scanAllocationDetail(q.db.QueryRow(ctx, getAllocationDetail, id))
}

const listAllocationDetails = `-- name: ListAllocationDetails :many
SELECT ` + allocationDetailColumns + `
FROM ims.t_item_allocation_details iad
WHERE iad.is_deleted = false
ORDER BY iad.created_at DESC
`

func (q *Queries) ListAllocationDetails(ctx context.Context) ([]ItemAllocationDetail, error) {
	rows, err := q.db.Query(ctx, listAllocationDetails)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (ItemAllocationDetail, error) { return scanAllocationDetail(r) })
}

const findAllocationDetailByKeyForUpdate = `-- name: FindAllocationDetailByKeyForUpdate :one
SELECT ` + allocationDetailColumns + `
FROM ims.t_item_allocation_details iad
WHERE iad.item_allocation_id = $1 AND iad.source_id = $2 AND iad.is_deleted = false
FOR UPDATE
`

type AllocationDetailKey struct {
	ItemAllocationID uuid.UUID
	SourceID         uuid.UUID
}

func (q *Queries) FindAllocationDetailByKeyForUpdate(ctx context.Context, arg AllocationDetailKey) (ItemAllocationDetail, error) {
	return scanAllocationDetail(q.db.QueryRow(ctx, findAllocationDetailByKeyForUpdate, arg.ItemAllocationID, arg.SourceID))
}

const updateAllocationDetail = `-- name: UpdateAllocationDetail :one
UPDATE ims.t_item_allocation_details iad
SET allocated_qty = $2, rate = $3, is_active = $4, updated_by = $5, updated_at = now()
WHERE iad.id = $1 AND iad.is_deleted = false
RETURNING ` + allocationDetailColumns

type UpdateAllocationDetailParams struct {
	ID           uuid.UUID
	AllocatedQty decimal.Decimal
	Rate         decimal.NullDecimal
	IsActive     bool
	ActorID      uuid.UUID
}

func (q *Queries) UpdateAllocationDetail(ctx context.Context, arg UpdateAllocationDetailParams) (ItemAllocationDetail, error) {
	row := q.db.QueryRow(ctx, updateAllocationDetail, arg.ID, arg.AllocatedQty, arg.Rate, arg.IsActive, arg.ActorID)
	return scanAllocationDetail(row)
}

const softDeleteAllocationDetail = `-- name: SoftDeleteAllocationDetail :one
UPDATE ims.t_item_allocation_details iad
SET is_deleted = true, updated_by = $2, updated_at = now()
WHERE iad.id = $1 AND iad.is_deleted = false
RETURNING ` + allocationDetailColumns

func (q *Queries) SoftDeleteAllocationDetail(ctx context.Context, arg IDActorParams) (ItemAllocationDetail, error) {
	return scanAllocationDetail(q.db.QueryRow(ctx, softDeleteAllocationDetail, arg.ID, arg.ActorID))
}
