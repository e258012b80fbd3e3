package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const issueColumns = `mi.id, mi.issue_number, mi.issue_date, mi.issue_expected_date, mi.sender_type, mi.issuance_type,
       mi.sender_reference_id, mi.status, mi.is_dc_generated, mi.remarks,
       mi.created_at, mi.created_by, mi.updated_at, mi.updated_by, mi.is_active, mi.is_deleted`

func issueTargets(i *MaterialIssue) []any {
	return append([]any{
		&i.ID, &i.IssueNumber, &i.IssueDate, &i.IssueExpectedDate, &i.SenderType, &i.IssuanceType,
		&i.SenderReferenceID, &i.Status, &i.IsDcGenerated, &i.Remarks,
	}, i.Audit.scanTargets()...)
}

func scanIssue(row pgx.Row) (MaterialIssue, error) {
	var i MaterialIssue
	err := row.Scan(issueTargets(&i)...)
	return i, err
}

// MaterialIssueParams carries every writable material issue column.
type MaterialIssueParams struct {
	IssueNumber       pgtype.Text
	IssueDate         pgtype.Date
	IssueExpectedDate pgtype.Date
	SenderType        string
	IssuanceType      string
	SenderReferenceID uuid.NullUUID
	Status            string
	Remarks           pgtype.Text
	IsActive          bool
	ActorID           uuid.UUID
}

func (p MaterialIssueParams) args() []any {
	return []any{
		p.IssueNumber, p.IssueDate, p.IssueExpectedDate, p.SenderType, p.IssuanceType,
		p.SenderReferenceID, p.Status, p.Remarks, p.IsActive, p.ActorID,
	}
}

const createMaterialIssue = `-- name: CreateMaterialIssue :one
INSERT INTO ims.t_material_issues AS mi (
    issue_number, issue_date, issue_expected_date, sender_type, issuance_type,
    sender_reference_id, status, remarks, is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10
)
RETURNING ` + issueColumns

func (q *Queries) CreateMaterialIssue(ctx context.Context, arg MaterialIssueParams) (MaterialIssue, error) {
	return scanIssue(q.db.QueryRow(ctx, createMaterialIssue, arg.args()...))
}

const getMaterialIssue = `-- name: GetMaterialIssue :one
SELECT ` + issueColumns + `
FROM ims.t_material_issues mi
WHERE mi.id = $1 AND mi.is_deleted = false
`

func (q *Queries) GetMaterialIssue(ctx context.Context, id uuid.UUID) (MaterialIssue, error) {
	return scanIssue(q.db.QueryRow(ctx, getMaterialIssue, id))
}

const getMaterialIssueForUpdate = `-- name: GetMaterialIssueForUpdate :one
SELECT ` + issueColumns + `
FROM ims.t_material_issues mi
WHERE mi.id = $1 AND mi.is_deleted = false
FOR UPDATE
`

func (q *Queries) GetMaterialIssueForUpdate(ctx context.Context, id uuid.UUID) (MaterialIssue, error) {
	return scanIssue(q.db.QueryRow(ctx, getMaterialIssueForUpdate, id))
}

// MaterialIssueListRow carries the sender warehouse name and address when the sender is a warehouse.
type MaterialIssueListRow struct {
	MaterialIssue
	WarehouseName pgtype.Text `json:"warehouse_name"`
	Address       pgtype.Text `json:"address"`
}

func scanIssueListRows(rows pgx.Rows) ([]MaterialIssueListRow, error) {
	return collect(rows, func(r pgx.Rows) (MaterialIssueListRow, error) {
		var i MaterialIssueListRow
		targets := append(issueTargets(&i.MaterialIssue), &i.WarehouseName, &i.Address)
		err := r.Scan(targets...)
		return i, err
	})
}

const listMaterialIssues = `-- name: ListMaterialIssues :many
SELECT ` + issueColumns + `,
       w.warehouse_name, w.address
FROM ims.t_material_issues mi
LEFT JOIN ims.t_warehouse w ON w.id = mi.sender_reference_id
WHERE mi.is_deleted = false
ORDER BY mi.created_at DESC
`

func (q *Queries) ListMaterialIssues(ctx context.Context) ([]MaterialIssueListRow, error) {
	rows, err := q.db.Query(ctx, listMaterialIssues)
	if err != nil {
		return nil, err
	}
	return scanIssueListRows(rows)
}

const listDcEligibleMaterialIssues = `-- name: ListDcEligibleMaterialIssues :many
SELECT ` + issueColumns + `,
       w.warehouse_name, w.address
FROM ims.t_material_issues mi
LEFT JOIN ims.t_warehouse w ON w.id = mi.sender_reference_id
WHERE mi.status = 'approved' AND mi.is_dc_generated = false AND mi.is_deleted = false
ORDER BY mi.created_at DESC
`

func (q *Queries) ListDcEligibleMaterialIssues(ctx context.Context) ([]MaterialIssueListRow, error) {
	rows, err := q.db.Query(ctx, listDcEligibleMaterialIssues)
	if err != nil {
		return nil, err
	}
	return scanIssueListRows(rows)
}

const updateMaterialIssue = `-- name: UpdateMaterialIssue :one
UPDATE ims.t_material_issues mi
SET issue_number = $1, issue_date = $2, issue_expected_date = $3, sender_type = $4, issuance_type = $5,
    sender_reference_id = $6, status = $7, remarks = $8, is_active = $9,
    updated_by = $10, updated_at = now()
WHERE mi.id = $11 AND mi.is_deleted = false
RETURNING ` + issueColumns

func (q *Queries) UpdateMaterialIssue(ctx context.Context, id uuid.UUID, arg MaterialIssueParams) (MaterialIssue, error) {
	args := append(arg.args(), id)
	return scanIssue(q.db.QueryRow(ctx, updateMaterialIssue, args...))
}

const markMaterialIssueDcGenerated = `-- name: MarkMaterialIssueDcGenerated :one
UPDATE ims.t_material_issues mi
SET is_dc_generated = true, updated_by = $2, updated_at = now()
WHERE mi.id = $1 AND mi.is_deleted = false
RETURNING ` + issueColumns

func (q *Queries) MarkMaterialIssueDcGenerated(ctx context.Context, arg IDActorParams) (MaterialIssue, error) {
	return scanIssue(q.db.QueryRow(ctx, markMaterialIssueDcGenerated, arg.ID, arg.ActorID))
}

const softDeleteMaterialIssue = `-- name: SoftDeleteMaterialIssue :one
UPDATE ims.t_material_issues mi
SET is_deleted = true, updated_by = $2, updated_at = now()
WHERE mi.id = $1 AND mi.is_deleted = false
RETURNING ` + issueColumns

func (q *Queries) SoftDeleteMaterialIssue(ctx context.Context, arg IDActorParams) (MaterialIssue, error) {
	return scanIssue(q.db.QueryRow(ctx, softDeleteMaterialIssue, arg.ID, arg.ActorID))
}

// ---------------------------------------------------------------------
// Material issue items
// ---------------------------------------------------------------------

const issueItemColumns = `mii.id, mii.issue_id, mii.item_id, mii.issued_quantity, mii.bom_id, mii.spec_id,
       mii.receiving_reference_id, mii.receiver_type, mii.rate, mii.item_allocation_id,
       mii.created_at, mii.created_by, mii.updated_at, mii.updated_by, mii.is_active, mii.is_deleted`

func scanIssueItem(row pgx.Row) (MaterialIssueItem, error) {
	var i MaterialIssueItem
	targets := append([]any{
		&i.ID, &i.IssueID, &i.ItemID, &i.IssuedQuantity, &i.BomID, &i.SpecID,
		&i.ReceivingReferenceID, &i.ReceiverType, &i.Rate, &i.ItemAllocationID,
	}, i.Audit.scanTargets()...)
	err := row.Scan(targets...)
	return i, err
}

type MaterialIssueItemParams struct {
	IssueID              uuid.UUID
	ItemID               uuid.UUID
	IssuedQuantity       decimal.Decimal
	BomID                uuid.NullUUID
	SpecID               uuid.NullUUID
	ReceivingReferenceID uuid.NullUUID
	ReceiverType         pgtype.Text
	Rate                 decimal.NullDecimal
	ItemAllocationID     uuid.NullUUID
	IsActive             bool
	ActorID              uuid.UUID
}

func (p MaterialIssueItemParams) args() []any {
	return []any{
		p.IssueID, p.ItemID, p.IssuedQuantity, p.BomID, p.SpecID,
		p.ReceivingReferenceID, p.ReceiverType, p.Rate, p.ItemAllocationID, p.IsActive, p.ActorID,
	}
}

const createMaterialIssueItem = `-- name: CreateMaterialIssueItem :one
INSERT INTO ims.t_material_issue_items AS mii (
    issue_id, item_id, issued_quantity, bom_id, spec_id,
    receiving_reference_id, receiver_type, rate, item_allocation_id, is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11
)
RETURNING ` + issueItemColumns

func (q *Queries) CreateMaterialIssueItem(ctx context.Context, arg MaterialIssueItemParams) (MaterialIssueItem, error) {
	return scanIssueItem(q.db.QueryRow(ctx, createMaterialIssueItem, arg.args()...))
}

const getMaterialIssueItem = `-- name: GetMaterialIssueItem :one
SELECT ` + issueItemColumns + `
FROM ims.t_material_issue_items mii
WHERE mii.id = $1 AND mii.is_deleted = false
`

func (q *Queries) GetMaterialIssueItem(ctx context.Context, id uuid.UUID) (MaterialIssueItem, error) {
	return scanIssueItem(q.db.QueryRow(ctx, getMaterialIssueItem, id))
}

const listMaterialIssueItems = `-- name: ListMaterialIssueItems :many
SELECT ` + issueItemColumns + `
FROM ims.t_material_issue_items mii
WHERE mii.is_deleted = false
ORDER BY mii.created_at DESC
`

func (q *Queries) ListMaterialIssueItems(ctx context.Context) ([]MaterialIssueItem, error) {
	rows, err := q.db.Query(ctx, listMaterialIssueItems)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (MaterialIssueItem, error) { return scanIssueItem(r) })
}

const listMaterialIssueItemsByIssue = `-- name: ListMaterialIssueItemsByIssue :many
SELECT ` + issueItemColumns + `
FROM ims.t_material_issue_items mii
WHERE mii.issue_id = $1 AND mii.is_deleted = false
ORDER BY mii.created_at
`

func (q *Queries) ListMaterialIssueItemsByIssue(ctx context.Context, issueID uuid.UUID) ([]MaterialIssueItem, error) {
	rows, err := q.db.Query(ctx, listMaterialIssueItemsByIssue, issueID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (MaterialIssueItem, error) { return scanIssueItem(r) })
}

const findMaterialIssueItemByAllocationForUpdate = `-- name: FindMaterialIssueItemByAllocationForUpdate :one
SELECT ` + issueItemColumns + `
FROM ims.t_material_issue_items mii
WHERE mii.item_allocation_id = $1 AND mii.item_id = $2 AND mii.is_deleted = false
FOR UPDATE
`

type IssueItemKey struct {
	ItemAllocationID uuid.UUID
	ItemID           uuid.UUID
}

func (q *Queries) FindMaterialIssueItemByAllocationForUpdate(ctx context.Context, arg IssueItemKey) (MaterialIssueItem, error) {
	return scanIssueItem(q.db.QueryRow(ctx, findMaterialIssueItemByAllocationForUpdate, arg.ItemAllocationID, arg.ItemID))
}

const updateMaterialIssueItem = `-- name: UpdateMaterialIssueItem :one
UPDATE ims.t_material_issue_items mii
SET issue_id = $1, item_id = $2, issued_quantity = $3, bom_id = $4, spec_id = $5,
    receiving_reference_id = $6, receiver_type = $7, rate = $8, item_allocation_id = $9, is_active = $10,
    updated_by = $11, updated_at = now()
WHERE mii.id = $12 AND mii.is_deleted = false
RETURNING ` + issueItemColumns

func (q *Queries) UpdateMaterialIssueItem(ctx context.Context, id uuid.UUID, arg MaterialIssueItemParams) (MaterialIssueItem, error) {
	args := append(arg.args(), id)
	return scanIssueItem(q.db.QueryRow(ctx, updateMaterialIssueItem, args...))
}

const softDeleteMaterialIssueItem = `-- name: SoftDeleteMaterialIssueItem :one
UPDATE ims.t_material_issue_items mii
SET is_deleted = true, updated_by = $2, updated_at = now()
WHERE mii.id = $1 AND mii.is_deleted = false
RETURNING ` + issueItemColumns

func (q *Queries) SoftDeleteMaterialIssueItem(ctx context.Context, arg IDActorParams) (MaterialIssueItem, error) {
	return scanIssueItem(q.db.QueryRow(ctx, softDeleteMaterialIssueItem, arg.ID, arg.ActorID))
}

// ---------------------------------------------------------------------
// Issuance source breakdown
// ---------------------------------------------------------------------

const issueItemSourceColumns = `miis.id, miis.issue_item_id, miis.inventory_id, miis.quantity, miis.created_at, miis.reversed_at`

func scanIssueItemSource(row pgx.Row) (MaterialIssueItemSource, error) {
	var i MaterialIssueItemSource
	err := row.Scan(&i.ID, &i.IssueItemID, &i.InventoryID, &i.Quantity, &i.CreatedAt, &i.ReversedAt)
	return i, err
}

const createMaterialIssueItemSource = `-- name: CreateMaterialIssueItemSource :one
INSERT INTO ims.t_material_issue_item_sources AS miis (issue_item_id, inventory_id, quantity)
VALUES ($1, $2, $3)
RETURNING ` + issueItemSourceColumns

type CreateMaterialIssueItemSourceParams struct {
	IssueItemID uuid.UUID
	InventoryID uuid.UUID
	Quantity    decimal.Decimal
}

func (q *Queries) CreateMaterialIssueItemSource(ctx context.Context, arg CreateMaterialIssueItemSourceParams) (MaterialIssueItemSource, error) {
	return scanIssueItemSource(q.db.QueryRow(ctx, createMaterialIssueItemSource, arg.IssueItemID, arg.InventoryID, arg.Quantity))
}

const listOpenIssueItemSources = `-- name: ListOpenIssueItemSources :many
SELECT ` + issueItemSourceColumns + `
FROM ims.t_material_issue_item_sources miis
WHERE miis.issue_item_id = $1 AND miis.reversed_at IS NULL
ORDER BY miis.created_at
`

// ListOpenIssueItemSources returns breakdown entries not yet credited back.
func (q *Queries) ListOpenIssueItemSources(ctx context.Context, issueItemID uuid.UUID) ([]MaterialIssueItemSource, error) {
	rows, err := q.db.Query(ctx, listOpenIssueItemSources, issueItemID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (MaterialIssueItemSource, error) { return scanIssueItemSource(r) })
}

const markIssueItemSourcesReversed = `-- name: MarkIssueItemSourcesReversed :execrows
UPDATE ims.t_material_issue_item_sources
SET reversed_at = now()
WHERE issue_item_id = $1 AND reversed_at IS NULL
`

func (q *Queries) MarkIssueItemSourcesReversed(ctx context.Context, issueItemID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, markIssueItemSourcesReversed, issueItemID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
