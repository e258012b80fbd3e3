package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const sourceColumns = `s.id, s.source_type, s.source_number, s.inbound_trigger_issue_id, s.inbound_trigger_issue_type,
       s.receiver_project_id, s.sender_project_id, s.source_date, s.sender_warehouse_id, s.receiver_warehouse_id,
       s.vendor_id, s.invoice_number, s.invoice_amount, s.po_number, s.dc_number, s.generate_qr, s.status,
       s.created_at, s.created_by, s.updated_at, s.updated_by, s.is_active, s.is_deleted`

func sourceTargets(i *Source) []any {
	return append([]any{
		&i.ID, &i.SourceType, &i.SourceNumber, &i.InboundTriggerIssueID, &i.InboundTriggerIssueType,
		&i.ReceiverProjectID, &i.SenderProjectID, &i.SourceDate, &i.SenderWarehouseID, &i.ReceiverWarehouseID,
		&i.VendorID, &i.InvoiceNumber, &i.InvoiceAmount, &i.PoNumber, &i.DcNumber, &i.GenerateQr, &i.Status,
	}, i.Audit.scanTargets()...)
}

func scanSource(row pgx.Row) (Source, error) {
	var i Source
	err := row.Scan(sourceTargets(&i)...)
	return i, err
}

// SourceParams carries every writable source column.
type SourceParams struct {
	SourceType              string
	SourceNumber            string
	InboundTriggerIssueID   uuid.NullUUID
	InboundTriggerIssueType pgtype.Text
	ReceiverProjectID       uuid.NullUUID
	SenderProjectID         uuid.NullUUID
	SourceDate              pgtype.Date
	SenderWarehouseID       uuid.NullUUID
	ReceiverWarehouseID     uuid.NullUUID
	VendorID                uuid.NullUUID
	InvoiceNumber           pgtype.Text
	InvoiceAmount           decimal.NullDecimal
	PoNumber                pgtype.Text
	DcNumber                pgtype.Text
	GenerateQr              bool
	Status                  string
	IsActive                bool
	ActorID                 uuid.UUID
}

func (p SourceParams) args() []any {
	return []any{
		p.SourceType, p.SourceNumber, p.InboundTriggerIssueID, p.InboundTriggerIssueType,
		p.ReceiverProjectID, p.SenderProjectID, p.SourceDate, p.SenderWarehouseID, p.ReceiverWarehouseID,
		p.VendorID, p.InvoiceNumber, p.InvoiceAmount, p.PoNumber, p.DcNumber, p.GenerateQr, p.Status,
		p.IsActive, p.ActorID,
	}
}

const createSource = `-- name: CreateSource :one
INSERT INTO ims.t_source AS s (
    source_type, source_number, inbound_trigger_issue_id, inbound_trigger_issue_type,
    receiver_project_id, sender_project_id, source_date, sender_warehouse_id, receiver_warehouse_id,
    vendor_id, invoice_number, invoice_amount, po_number, dc_number, generate_qr, status,
    is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18
)
RETURNING ` + sourceColumns

func (q *Queries) CreateSource(ctx context.Context, arg SourceParams) (Source, error) {
	return scanSource(q.db.QueryRow(ctx, createSource, arg.args()...))
}

const getSource = `-- name: GetSource :one
SELECT ` + sourceColumns + `
FROM ims.t_source s
WHERE s.id = $1 AND s.is_deleted = false
`

func (q *Queries) GetSource(ctx context.Context, id uuid.UUID) (Source, error) {
	return scanSource(q.db.QueryRow(ctx, getSource, id))
}

const listSources = `-- name: ListSources :many
SELECT ` + sourceColumns + `,
       w.warehouse_code, w.warehouse_name, w.address
FROM ims.t_source s
LEFT JOIN ims.t_warehouse w ON w.id = s.sender_warehouse_id
WHERE s.is_deleted = false
  AND ($1::text IS NULL OR s.source_type = $1)
ORDER BY s.created_at DESC
`

type SourceListRow struct {
	Source
	SenderWarehouseCode    pgtype.Text `json:"sender_warehouse_code"`
	SenderWarehouseName    pgtype.Text `json:"sender_warehouse_name"`
	SenderWarehouseAddress pgtype.Text `json:"sender_warehouse_address"`
}

func (q *Queries) ListSources(ctx context.Context, sourceType pgtype.Text) ([]SourceListRow, error) {
	rows, err := q.db.Query(ctx, listSources, sourceType)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (SourceListRow, error) {
		var i SourceListRow
		targets := append(sourceTargets(&i.Source),
			&i.SenderWarehouseCode, &i.SenderWarehouseName, &i.SenderWarehouseAddress)
		err := r.Scan(targets...)
		return i, err
	})
}

const listSourceDestinationWarehouses = `-- name: ListSourceDestinationWarehouses :many
SELECT DISTINCT siwd.source_id, w.id, w.warehouse_code, w.warehouse_name, w.address
FROM ims.t_source_item_warehouse_details siwd
JOIN ims.t_warehouse w ON w.id = siwd.warehouse_id AND w.is_deleted = false
WHERE siwd.source_id = ANY($1::uuid[]) AND siwd.is_deleted = false
ORDER BY siwd.source_id, w.warehouse_name
`

type SourceDestinationRow struct {
	SourceID uuid.UUID `json:"-"`
	Warehouse
}

func (q *Queries) ListSourceDestinationWarehouses(ctx context.Context, sourceIDs []uuid.UUID) ([]SourceDestinationRow, error) {
	rows, err := q.db.Query(ctx, listSourceDestinationWarehouses, sourceIDs)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (SourceDestinationRow, error) {
		var i SourceDestinationRow
		err := r.Scan(&i.SourceID, &i.ID, &i.WarehouseCode, &i.WarehouseName, &i.Address)
		return i, err
	})
}

const updateSource = `-- name: UpdateSource :one
UPDATE ims.t_source s
SET source_type = $1, source_number = $2, inbound_trigger_issue_id = $3, inbound_trigger_issue_type = $4,
    receiver_project_id = $5, sender_project_id = $6, source_date = $7, sender_warehouse_id = $8,
    receiver_warehouse_id = $9, vendor_id = $10, invoice_number = $11, invoice_amount = $12,
    po_number = $13, dc_number = $14, generate_qr = $15, status = $16, is_active = $17,
    updated_by = $18, updated_at = now()
WHERE s.id = $19 AND s.is_deleted = false
RETURNING ` + sourceColumns

func (q *Queries) UpdateSource(ctx context.Context, id uuid.UUID, arg SourceParams) (Source, error) {
	args := append(arg.args(), id)
	return scanSource(q.db.QueryRow(ctx, updateSource, args...))
}

const approveSource = `-- name: ApproveSource :one
UPDATE ims.t_source s
SET status = 'completed', updated_by = $2, updated_at = now()
WHERE s.id = $1 AND s.is_deleted = false
RETURNING ` + sourceColumns

func (q *Queries) ApproveSource(ctx context.Context, arg IDActorParams) (Source, error) {
	return scanSource(q.db.QueryRow(ctx, approveSource, arg.ID, arg.ActorID))
}

const softDeleteSource = `-- name: SoftDeleteSource :one
UPDATE ims.t_source
SET is_deleted = true, updated_by = $2, updated_at = now()
WHERE id = $1 AND is_deleted = false
RETURNING id
`

func (q *Queries) SoftDeleteSource(ctx context.Context, arg IDActorParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteSource, arg.ID, arg.ActorID).Scan(&id)
	return id, err
}

// ---------------------------------------------------------------------
// Source details
// ---------------------------------------------------------------------

const sourceDetailColumns = `sd.id, sd.source_id, sd.item_id, sd.expected_quantity, sd.remaining_quantity,
       sd.accepted_quantity, sd.rejected_quantity, sd.lost_quantity, sd.rate, sd.comment,
       sd.created_at, sd.created_by, sd.updated_at, sd.updated_by, sd.is_active, sd.is_deleted`

func sourceDetailTargets(i *SourceDetail) []any {
	return append([]any{
		&i.ID, &i.SourceID, &i.ItemID, &i.ExpectedQuantity, &i.RemainingQuantity,
		&i.AcceptedQuantity, &i.RejectedQuantity, &i.LostQuantity, &i.Rate, &i.Comment,
	}, i.Audit.scanTargets()...)
}

func scanSourceDetail(row pgx.Row) (SourceDetail, error) {
	var i SourceDetail
	err := row.Scan(sourceDetailTargets(&i)...)
	return i, err
}

type SourceDetailParams struct {
	SourceID          uuid.UUID
	ItemID            uuid.UUID
	ExpectedQuantity  decimal.NullDecimal
	RemainingQuantity decimal.NullDecimal
	AcceptedQuantity  decimal.NullDecimal
	RejectedQuantity  decimal.NullDecimal
	LostQuantity      decimal.NullDecimal
	Rate              decimal.NullDecimal
	Comment           pgtype.Text
	IsActive          bool
	ActorID           uuid.UUID
}

func (p SourceDetailParams) args() []any {
	return []any{
		p.SourceID, p.ItemID, p.ExpectedQuantity, p.RemainingQuantity, p.AcceptedQuantity,
		p.RejectedQuantity, p.LostQuantity, p.Rate, p.Comment, p.IsActive, p.ActorID,
	}
}

const createSourceDetail = `-- name: CreateSourceDetail :one
INSERT INTO ims.t_source_detail AS sd (
    source_id, item_id, expected_quantity, remaining_quantity, accepted_quantity,
    rejected_quantity, lost_quantity, rate, comment, is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11
)
RETURNING ` + sourceDetailColumns

func (q *Queries) CreateSourceDetail(ctx context.Context, arg SourceDetailParams) (SourceDetail, error) {
	return scanSourceDetail(q.db.QueryRow(ctx, createSourceDetail, arg.args()...))
}

const listSourceDetails = `-- name: ListSourceDetails :many
SELECT ` + sourceDetailColumns + `
FROM ims.t_source_detail sd
WHERE sd.is_deleted = false
ORDER BY sd.created_at
`

func (q *Queries) ListSourceDetails(ctx context.Context) ([]SourceDetail, error) {
	rows, err := q.db.Query(ctx, listSourceDetails)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (SourceDetail, error) { return scanSourceDetail(r) })
}

const listSourceDetailsWithItem = `-- name: ListSourceDetailsWithItem :many
SELECT ` + sourceDetailColumns + `,
       i.item_code, i.item_name, i.hsn_code, i.description, i.material_type, i.unit_price,
       i.safety_stock, i.reorder_quantity, i.insurance_status
FROM ims.t_source_detail sd
LEFT JOIN ims.t_item i ON i.id = sd.item_id
WHERE sd.source_id = $1 AND sd.is_deleted = false
ORDER BY sd.created_at
`

type SourceDetailItemRow struct {
	SourceDetail
	ItemCode        pgtype.Text         `json:"item_code"`
	ItemName        pgtype.Text         `json:"item_name"`
	HsnCode         pgtype.Text         `json:"hsn_code"`
	Description     pgtype.Text         `json:"description"`
	MaterialType    pgtype.Text         `json:"material_type"`
	UnitPrice       decimal.NullDecimal `json:"unit_price"`
	SafetyStock     decimal.NullDecimal `json:"safety_stock"`
	ReorderQuantity decimal.NullDecimal `json:"reorder_quantity"`
	InsuranceStatus pgtype.Text         `json:"insurance_status"`
}

func (q *Queries) ListSourceDetailsWithItem(ctx context.Context, sourceID uuid.UUID) ([]SourceDetailItemRow, error) {
	rows, err := q.db.Query(ctx, listSourceDetailsWithItem, sourceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (SourceDetailItemRow, error) {
		var i SourceDetailItemRow
		targets := append(sourceDetailTargets(&i.SourceDetail),
			&i.ItemCode, &i.ItemName, &i.HsnCode, &i.Description, &i.MaterialType, &i.UnitPrice,
			&i.SafetyStock, &i.ReorderQuantity, &i.InsuranceStatus)
		err := r.Scan(targets...)
		return i, err
	})
}

const updateSourceDetail = `-- name: UpdateSourceDetail :one
UPDATE ims.t_source_detail sd
SET source_id = $1, item_id = $2, expected_quantity = $3, remaining_quantity = $4,
    accepted_quantity = $5, rejected_quantity = $6, lost_quantity = $7, rate = $8, comment = $9,
    is_active = $10, updated_by = $11, updated_at = now()
WHERE sd.id = $12 AND sd.is_deleted = false
RETURNING ` + sourceDetailColumns

func (q *Queries) UpdateSourceDetail(ctx context.Context, id uuid.UUID, arg SourceDetailParams) (SourceDetail, error) {
	args := append(arg.args(), id)
	return scanSourceDetail(q.db.QueryRow(ctx, updateSourceDetail, args...))
}

const approveSourceDetail = `-- name: ApproveSourceDetail :one
UPDATE ims.t_source_detail sd
SET is_active = true, updated_by = $2, updated_at = now()
WHERE sd.id = $1 AND sd.is_deleted = false
RETURNING ` + sourceDetailColumns

func (q *Queries) ApproveSourceDetail(ctx context.Context, arg IDActorParams) (SourceDetail, error) {
	return scanSourceDetail(q.db.QueryRow(ctx, approveSourceDetail, arg.ID, arg.ActorID))
}

const softDeleteSourceDetail = `-- name: SoftDeleteSourceDetail :one
UPDATE ims.t_source_detail
SET is_deleted = true, updated_by = $2, updated_at = now()
WHERE id = $1 AND is_deleted = false
RETURNING id
`

func (q *Queries) SoftDeleteSourceDetail(ctx context.Context, arg IDActorParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteSourceDetail, arg.ID, arg.ActorID).Scan(&id)
	return id, err
}

// ---------------------------------------------------------------------
// Source item warehouse splits
// ---------------------------------------------------------------------

const splitColumns = `siwd.id, siwd.source_id, siwd.source_detail_id, siwd.item_id, siwd.warehouse_id, siwd.project_id,
       siwd.spec_id, siwd.sender_bom_id, siwd.receiver_bom_id, siwd.expected_quantity, siwd.accepted_quantity,
       siwd.rejected_quantity, siwd.lost_quantity, siwd.note,
       siwd.created_at, siwd.created_by, siwd.updated_at, siwd.updated_by, siwd.is_active, siwd.is_deleted`

func splitTargets(i *SourceItemWarehouseDetail) []any {
	return append([]any{
		&i.ID, &i.SourceID, &i.SourceDetailID, &i.ItemID, &i.WarehouseID, &i.ProjectID,
		&i.SpecID, &i.SenderBomID, &i.ReceiverBomID, &i.ExpectedQuantity, &i.AcceptedQuantity,
		&i.RejectedQuantity, &i.LostQuantity, &i.Note,
	}, i.Audit.scanTargets()...)
}

func scanSplit(row pgx.Row) (SourceItemWarehouseDetail, error) {
	var i SourceItemWarehouseDetail
	err := row.Scan(splitTargets(&i)...)
	return i, err
}

const createSourceItemWarehouseDetail = `-- name: CreateSourceItemWarehouseDetail :one
INSERT INTO ims.t_source_item_warehouse_details AS siwd (
    source_id, source_detail_id, item_id, warehouse_id, project_id, spec_id, sender_bom_id, receiver_bom_id,
    expected_quantity, accepted_quantity, rejected_quantity, lost_quantity, note, is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15
)
RETURNING ` + splitColumns

type CreateSourceItemWarehouseDetailParams struct {
	SourceID         uuid.UUID
	SourceDetailID   uuid.UUID
	ItemID           uuid.UUID
	WarehouseID      uuid.NullUUID
	ProjectID        uuid.NullUUID
	SpecID           uuid.NullUUID
	SenderBomID      uuid.NullUUID
	ReceiverBomID    uuid.NullUUID
	ExpectedQuantity decimal.NullDecimal
	AcceptedQuantity decimal.NullDecimal
	RejectedQuantity decimal.NullDecimal
	LostQuantity     decimal.NullDecimal
	Note             pgtype.Text
	IsActive         bool
	ActorID          uuid.UUID
}

func (q *Queries) CreateSourceItemWarehouseDetail(ctx context.Context, arg CreateSourceItemWarehouseDetailParams) (SourceItemWarehouseDetail, error) {
	row := q.db.QueryRow(ctx, createSourceItemWarehouseDetail,
		arg.SourceID,
		arg.SourceDetailID,
		arg.ItemID,
		arg.WarehouseID,
		arg.ProjectID,
		arg.SpecID,
		arg.SenderBomID,
		arg.ReceiverBomID,
		arg.ExpectedQuantity,
		arg.AcceptedQuantity,
		arg.RejectedQuantity,
		arg.LostQuantity,
		arg.Note,
		arg.IsActive,
		arg.ActorID,
	)
	return scanSplit(row)
}

const listSourceItemWarehouseDetails = `-- name: ListSourceItemWarehouseDetails :many
SELECT ` + splitColumns + `
FROM ims.t_source_item_warehouse_details siwd
WHERE siwd.is_deleted = false
ORDER BY siwd.created_at
`

func (q *Queries) ListSourceItemWarehouseDetails(ctx context.Context) ([]SourceItemWarehouseDetail, error) {
	rows, err := q.db.Query(ctx, listSourceItemWarehouseDetails)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (SourceItemWarehouseDetail, error) { return scanSplit(r) })
}

type SplitWarehouseRow struct {
	SourceItemWarehouseDetail
	WarehouseCode pgtype.Text `json:"warehouse_code"`
	WarehouseName pgtype.Text `json:"warehouse_name"`
	Address       pgtype.Text `json:"address"`
}

func scanSplitWarehouseRows(rows pgx.Rows) ([]SplitWarehouseRow, error) {
	return collect(rows, func(r pgx.Rows) (SplitWarehouseRow, error) {
		var i SplitWarehouseRow
		targets := append(splitTargets(&i.SourceItemWarehouseDetail), &i.WarehouseCode, &i.WarehouseName, &i.Address)
		err := r.Scan(targets...)
		return i, err
	})
}

const listSplitsBySourceDetail = `-- name: ListSplitsBySourceDetail :many
SELECT ` + splitColumns + `,
       w.warehouse_code, w.warehouse_name, w.address
FROM ims.t_source_item_warehouse_details siwd
LEFT JOIN ims.t_warehouse w ON w.id = siwd.warehouse_id
WHERE siwd.source_detail_id = $1 AND siwd.is_deleted = false
ORDER BY siwd.created_at
`

func (q *Queries) ListSplitsBySourceDetail(ctx context.Context, sourceDetailID uuid.UUID) ([]SplitWarehouseRow, error) {
	rows, err := q.db.Query(ctx, listSplitsBySourceDetail, sourceDetailID)
	if err != nil {
		return nil, err
	}
	return scanSplitWarehouseRows(rows)
}

const listSplitsBySource = `-- name: ListSplitsBySource :many
SELECT ` + splitColumns + `,
       w.warehouse_code, w.warehouse_name, w.address
FROM ims.t_source_item_warehouse_details siwd
LEFT JOIN ims.t_warehouse w ON w.id = siwd.warehouse_id
WHERE siwd.source_id = $1 AND siwd.is_deleted = false
ORDER BY siwd.created_at
`

func (q *Queries) ListSplitsBySource(ctx context.Context, sourceID uuid.UUID) ([]SplitWarehouseRow, error) {
	rows, err := q.db.Query(ctx, listSplitsBySource, sourceID)
	if err != nil {
		return nil, err
	}
	return scanSplitWarehouseRows(rows)
}

const updateSplitByDestination = `-- name: UpdateSplitByDestination :many
UPDATE ims.t_source_item_warehouse_details siwd
SET accepted_quantity = $4, rejected_quantity = $5, lost_quantity = $6, note = $7,
    updated_by = $8, updated_at = now()
WHERE siwd.source_id = $1 AND siwd.source_detail_id = $2 AND siwd.warehouse_id = $3 AND siwd.is_deleted = false
RETURNING ` + splitColumns

type UpdateSplitByDestinationParams struct {
	SourceID         uuid.UUID
	SourceDetailID   uuid.UUID
	WarehouseID      uuid.UUID
	AcceptedQuantity decimal.NullDecimal
	RejectedQuantity decimal.NullDecimal
	LostQuantity     decimal.NullDecimal
	Note             pgtype.Text
	ActorID          uuid.UUID
}

func (q *Queries) UpdateSplitByDestination(ctx context.Context, arg UpdateSplitByDestinationParams) ([]SourceItemWarehouseDetail, error) {
	rows, err := q.db.Query(ctx, updateSplitByDestination,
		arg.SourceID,
		arg.SourceDetailID,
		arg.WarehouseID,
		arg.AcceptedQuantity,
		arg.RejectedQuantity,
		arg.LostQuantity,
		arg.Note,
		arg.ActorID,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (SourceItemWarehouseDetail, error) { return scanSplit(r) })
}

const approveSourceItemWarehouseDetail = `-- name: ApproveSourceItemWarehouseDetail :one
UPDATE ims.t_source_item_warehouse_details siwd
SET is_active = true, updated_by = $2, updated_at = now()
WHERE siwd.id = $1 AND siwd.is_deleted = false
RETURNING ` + splitColumns

func (q *Queries) ApproveSourceItemWarehouseDetail(ctx context.Context, arg IDActorParams) (SourceItemWarehouseDetail, error) {
	return scanSplit(q.db.QueryRow(ctx, approveSourceItemWarehouseDetail, arg.ID, arg.ActorID))
}

const softDeleteSourceItemWarehouseDetail = `-- name: SoftDeleteSourceItemWarehouseDetail :one
UPDATE ims.t_source_item_warehouse_details
SET is_deleted = true, updated_by = $2, updated_at = now()
WHERE id = $1 AND is_deleted = false
RETURNING id
`

func (q *Queries) SoftDeleteSourceItemWarehouseDetail(ctx context.Context, arg IDActorParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteSourceItemWarehouseDetail, arg.ID, arg.ActorID).Scan(&id)
	return id, err
}
