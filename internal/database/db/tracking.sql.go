package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const listItemTrackingRecords = `-- name: ListItemTrackingRecords :many
SELECT * FROM (
    SELECT
        inv.id AS inventory_id,
        inv.item_id,
        inv.quantity,
        inv.rate,
        inv.created_at AS received_date,
        inv.source_type AS inventory_source_type,
        inv.store_type,
        inv.status,
        'inventory' AS record_type,
        i.item_code, i.item_name, i.description, i.hsn_code,
        s.id AS source_id, s.source_number, s.source_date, s.source_type,
        s.invoice_number, s.po_number, s.dc_number, s.status AS source_status,
        CASE inv.store_type WHEN 'WAREHOUSE' THEN w.warehouse_name WHEN 'PROJECT' THEN p.name ELSE 'Unknown' END AS current_location,
        CASE inv.store_type WHEN 'WAREHOUSE' THEN w.warehouse_code WHEN 'PROJECT' THEN p.project_number END AS current_location_code,
        CASE inv.store_type WHEN 'WAREHOUSE' THEN w.address WHEN 'PROJECT' THEN p.project_address END AS current_location_address,
        CASE
            WHEN s.sender_warehouse_id IS NOT NULL THEN sw.warehouse_name
            WHEN s.sender_project_id IS NOT NULL THEN sp.name
            WHEN s.vendor_id IS NOT NULL THEN v.business_name
            ELSE 'External'
        END AS sender_name,
        CASE
            WHEN s.sender_warehouse_id IS NOT NULL THEN 'warehouse'
            WHEN s.sender_project_id IS NOT NULL THEN 'project'
            WHEN s.vendor_id IS NOT NULL THEN 'vendor'
            ELSE 'external'
        END AS sender_type,
        CASE
            WHEN s.receiver_warehouse_id IS NOT NULL THEN rw.warehouse_name
            WHEN s.receiver_project_id IS NOT NULL THEN rp.name
        END AS receiver_name,
        CASE
            WHEN s.receiver_warehouse_id IS NOT NULL THEN 'warehouse'
            WHEN s.receiver_project_id IS NOT NULL THEN 'project'
        END AS receiver_type,
        v.business_name, v.vendor_number,
        siwd.sender_bom_id, siwd.receiver_bom_id, siwd.spec_id,
        sb.name AS sender_bom_name, rb.name AS receiver_bom_name, spec.spec_description AS spec_name,
        NULL::uuid AS allocation_id, NULL::uuid AS bom_id,
        NULL::numeric AS required_qty, NULL::numeric AS allocated_qty
    FROM ims.t_inventory inv
    LEFT JOIN ims.t_item i ON i.id = inv.item_id
    LEFT JOIN ims.t_source s ON s.id = inv.source_id
    LEFT JOIN ims.t_warehouse w ON w.id = inv.store_id AND inv.store_type = 'WAREHOUSE'
    LEFT JOIN pms.t_project p ON p.id = inv.store_id AND inv.store_type = 'PROJECT'
    LEFT JOIN ims.t_warehouse sw ON sw.id = s.sender_warehouse_id
    LEFT JOIN pms.t_project sp ON sp.id = s.sender_project_id
    LEFT JOIN ims.t_warehouse rw ON rw.id = s.receiver_warehouse_id
    LEFT JOIN pms.t_project rp ON rp.id = s.receiver_project_id
    LEFT JOIN crm.t_vendor v ON v.id = s.vendor_id
    LEFT JOIN LATERAL (
        SELECT x.sender_bom_id, x.receiver_bom_id, x.spec_id
        FROM ims.t_source_item_warehouse_details x
        WHERE x.source_id = s.id AND x.item_id = inv.item_id AND x.is_deleted = false
        ORDER BY x.created_at
        LIMIT 1
    ) siwd ON true
    LEFT JOIN crm.t_bom sb ON sb.id = siwd.sender_bom_id
    LEFT JOIN crm.t_bom rb ON rb.id = siwd.receiver_bom_id
    LEFT JOIN crm.t_bom_spec spec ON spec.id = siwd.spec_id
    WHERE inv.is_deleted = false
      AND inv.item_id = $1
      AND ($2::timestamptz IS NULL OR inv.created_at >= $2)
      AND ($3::timestamptz IS NULL OR inv.created_at <= $3)
      AND ($4::text IS NULL OR s.source_type = $4)
      AND ($5::text IS NULL OR inv.store_type = $5)

    UNION ALL

    SELECT
        NULL::uuid AS inventory_id,
        ia.item_id,
        ia.allocated_qty AS quantity,
        ia.rate,
        ia.created_at AS received_date,
        NULL AS inventory_source_type,
        'PROJECT' AS store_type,
        NULL AS status,
        'allocation' AS record_type,
        i.item_code, COALESCE(ia.item_name, i.item_name), i.description, i.hsn_code,
        s.id AS source_id, s.source_number, s.source_date, s.source_type,
        s.invoice_number, s.po_number, s.dc_number, s.status AS source_status,
        rp.name AS current_location,
        rp.project_number AS current_location_code,
        rp.project_address AS current_location_address,
        sp.name AS sender_name,
        'project' AS sender_type,
        rp.name AS receiver_name,
        'project' AS receiver_type,
        NULL AS business_name, NULL AS vendor_number,
        siwd.sender_bom_id, siwd.receiver_bom_id, siwd.spec_id,
        sb.name AS sender_bom_name, rb.name AS receiver_bom_name, spec.spec_description AS spec_name,
        ia.id AS allocation_id, ia.bom_id,
        ia.required_qty, ia.allocated_qty
    FROM ims.t_item_allocation ia
    LEFT JOIN ims.t_item i ON i.id = ia.item_id
    LEFT JOIN ims.t_item_allocation_details iad ON iad.item_allocation_id = ia.id AND iad.is_deleted = false
    LEFT JOIN ims.t_source s ON s.id = iad.source_id
    LEFT JOIN pms.t_project sp ON sp.id = s.sender_project_id
    LEFT JOIN pms.t_project rp ON rp.id = s.receiver_project_id
    LEFT JOIN LATERAL (
        SELECT x.sender_bom_id, x.receiver_bom_id, x.spec_id
        FROM ims.t_source_item_warehouse_details x
        WHERE x.source_id = s.id AND x.item_id = ia.item_id AND x.is_deleted = false
        ORDER BY x.created_at
        LIMIT 1
    ) siwd ON true
    LEFT JOIN crm.t_bom sb ON sb.id = siwd.sender_bom_id
    LEFT JOIN crm.t_bom rb ON rb.id = siwd.receiver_bom_id
    LEFT JOIN crm.t_bom_spec spec ON spec.id = siwd.spec_id
    WHERE ia.is_deleted = false
      AND ia.item_id = $1
      AND ($2::timestamptz IS NULL OR ia.created_at >= $2)
      AND ($3::timestamptz IS NULL OR ia.created_at <= $3)
      AND ($4::text IS NULL OR s.source_type = $4)
      AND ($5::text IS NULL OR $5 = 'PROJECT')
) tracking
ORDER BY received_date DESC
`

type ItemTrackingFilter struct {
	ItemID     uuid.UUID
	StartDate  pgtype.Timestamptz
	EndDate    pgtype.Timestamptz
	SourceType pgtype.Text
	StoreType  pgtype.Text
}

// TrackingRecord is one row of an item's history: either an inventory
// balance or an allocation against a BOM.
type TrackingRecord struct {
	InventoryID            uuid.NullUUID       `json:"inventory_id"`
	ItemID                 uuid.UUID           `json:"item_id"`
	Quantity               decimal.Decimal     `json:"quantity"`
	Rate                   decimal.NullDecimal `json:"rate"`
	ReceivedDate           pgtype.Timestamptz  `json:"received_date"`
	InventorySourceType    pgtype.Text         `json:"inventory_source_type"`
	StoreType              pgtype.Text         `json:"store_type"`
	Status                 pgtype.Text         `json:"status"`
	RecordType             string              `json:"record_type"`
	ItemCode               pgtype.Text         `json:"item_code"`
	ItemName               pgtype.Text         `json:"item_name"`
	Description            pgtype.Text         `json:"description"`
	HsnCode                pgtype.Text         `json:"hsn_code"`
	SourceID               uuid.NullUUID       `json:"source_id"`
	SourceNumber           pgtype.Text         `json:"source_number"`
	SourceDate             pgtype.Date         `json:"source_date"`
	SourceType             pgtype.Text         `json:"source_type"`
	InvoiceNumber          pgtype.Text         `json:"invoice_number"`
	PoNumber               pgtype.Text         `json:"po_number"`
	DcNumber               pgtype.Text         `json:"dc_number"`
	SourceStatus           pgtype.Text         `json:"source_status"`
	CurrentLocation        pgtype.Text         `json:"current_location"`
	CurrentLocationCode    pgtype.Text         `json:"current_location_code"`
	CurrentLocationAddress pgtype.Text         `json:"current_location_address"`
	SenderName             pgtype.Text         `json:"sender_name"`
	SenderType             pgtype.Text         `json:"sender_type"`
	ReceiverName           pgtype.Text         `json:"receiver_name"`
	ReceiverType           pgtype.Text         `json:"receiver_type"`
	BusinessName           pgtype.Text         `json:"business_name"`
	VendorNumber           pgtype.Text         `json:"vendor_number"`
	SenderBomID            uuid.NullUUID       `json:"sender_bom_id"`
	ReceiverBomID          uuid.NullUUID       `json:"receiver_bom_id"`
	SpecID                 uuid.NullUUID       `json:"spec_id"`
	SenderBomName          pgtype.Text         `json:"sender_bom_name"`
	ReceiverBomName        pgtype.Text         `json:"receiver_bom_name"`
	SpecName               pgtype.Text         `json:"spec_name"`
	AllocationID           uuid.NullUUID       `json:"allocation_id"`
	BomID                  uuid.NullUUID       `json:"bom_id"`
	RequiredQty            decimal.NullDecimal `json:"required_qty"`
	AllocatedQty           decimal.NullDecimal `json:"allocated_qty"`
}

func (q *Queries) ListItemTrackingRecords(ctx context.Context, arg ItemTrackingFilter) ([]TrackingRecord, error) {
	rows, err := q.db.Query(ctx, listItemTrackingRecords,
		arg.ItemID,
		arg.StartDate,
		arg.EndDate,
		arg.SourceType,
		arg.StoreType,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (TrackingRecord, error) {
		var i TrackingRecord
		err := r.Scan(
			&i.InventoryID, &i.ItemID, &i.Quantity, &i.Rate, &i.ReceivedDate,
			&i.InventorySourceType, &i.StoreType, &i.Status, &i.RecordType,
			&i.ItemCode, &i.ItemName, &i.Description, &i.HsnCode,
			&i.SourceID, &i.SourceNumber, &i.SourceDate, &i.SourceType,
			&i.InvoiceNumber, &i.PoNumber, &i.DcNumber, &i.SourceStatus,
			&i.CurrentLocation, &i.CurrentLocationCode, &i.CurrentLocationAddress,
			&i.SenderName, &i.SenderType, &i.ReceiverName, &i.ReceiverType,
			&i.BusinessName, &i.VendorNumber,
			&i.SenderBomID, &i.ReceiverBomID, &i.SpecID,
			&i.SenderBomName, &i.ReceiverBomName, &i.SpecName,
			&i.AllocationID, &i.BomID, &i.RequiredQty, &i.AllocatedQty,
		)
		return i, err
	})
}

const listStoreTrackingRecords = `-- name: ListStoreTrackingRecords :many
SELECT
    inv.id, inv.item_id, inv.quantity, inv.rate, inv.created_at, inv.status,
    i.item_code, i.item_name, i.description,
    s.source_number, s.source_date, s.source_type, s.invoice_number,
    CASE $2::text WHEN 'WAREHOUSE' THEN w.warehouse_name ELSE p.name END,
    CASE $2::text WHEN 'WAREHOUSE' THEN w.warehouse_code ELSE p.project_number END
FROM ims.t_inventory inv
LEFT JOIN ims.t_item i ON i.id = inv.item_id
LEFT JOIN ims.t_source s ON s.id = inv.source_id
LEFT JOIN ims.t_warehouse w ON w.id = inv.store_id
LEFT JOIN pms.t_project p ON p.id = inv.store_id
WHERE inv.is_deleted = false
  AND inv.store_id = $1
  AND inv.store_type = $2
  AND ($3::text IS NULL OR s.source_type = $3)
ORDER BY inv.created_at DESC
`

type StoreTrackingFilter struct {
	StoreID    uuid.UUID
	StoreType  string
	SourceType pgtype.Text
}

type StoreTrackingRow struct {
	InventoryID   uuid.UUID           `json:"inventory_id"`
	ItemID        uuid.UUID           `json:"item_id"`
	Quantity      decimal.Decimal     `json:"quantity"`
	Rate          decimal.NullDecimal `json:"rate"`
	ReceivedDate  pgtype.Timestamptz  `json:"received_date"`
	Status        string              `json:"status"`
	ItemCode      pgtype.Text         `json:"item_code"`
	ItemName      pgtype.Text         `json:"item_name"`
	Description   pgtype.Text         `json:"description"`
	SourceNumber  pgtype.Text         `json:"source_number"`
	SourceDate    pgtype.Date         `json:"source_date"`
	SourceType    pgtype.Text         `json:"source_type"`
	InvoiceNumber pgtype.Text         `json:"invoice_number"`
	LocationName  pgtype.Text         `json:"location_name"`
	LocationCode  pgtype.Text         `json:"location_code"`
}

func (q *Queries) ListStoreTrackingRecords(ctx context.Context, arg StoreTrackingFilter) ([]StoreTrackingRow, error) {
	rows, err := q.db.Query(ctx, listStoreTrackingRecords, arg.StoreID, arg.StoreType, arg.SourceType)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (StoreTrackingRow, error) {
		var i StoreTrackingRow
		err := r.Scan(
			&i.InventoryID, &i.ItemID, &i.Quantity, &i.Rate, &i.ReceivedDate, &i.Status,
			&i.ItemCode, &i.ItemName, &i.Description,
			&i.SourceNumber, &i.SourceDate, &i.SourceType, &i.InvoiceNumber,
			&i.LocationName, &i.LocationCode,
		)
		return i, err
	})
}

const listSourceTrackingRecords = `-- name: ListSourceTrackingRecords :many
SELECT
    inv.id, inv.item_id, inv.quantity, inv.rate, inv.created_at, inv.store_type,
    i.item_code, i.item_name, i.description,
    s.source_number, s.source_date, s.source_type, s.invoice_number, s.po_number,
    CASE inv.store_type WHEN 'WAREHOUSE' THEN w.warehouse_name WHEN 'PROJECT' THEN p.name END
FROM ims.t_inventory inv
LEFT JOIN ims.t_item i ON i.id = inv.item_id
LEFT JOIN ims.t_source s ON s.id = inv.source_id
LEFT JOIN ims.t_warehouse w ON w.id = inv.store_id AND inv.store_type = 'WAREHOUSE'
LEFT JOIN pms.t_project p ON p.id = inv.store_id AND inv.store_type = 'PROJECT'
WHERE inv.is_deleted = false
  AND inv.source_id = $1
ORDER BY inv.created_at DESC
`

type SourceTrackingRow struct {
	InventoryID     uuid.UUID           `json:"inventory_id"`
	ItemID          uuid.UUID           `json:"item_id"`
	Quantity        decimal.Decimal     `json:"quantity"`
	Rate            decimal.NullDecimal `json:"rate"`
	ReceivedDate    pgtype.Timestamptz  `json:"received_date"`
	StoreType       string              `json:"store_type"`
	ItemCode        pgtype.Text         `json:"item_code"`
	ItemName        pgtype.Text         `json:"item_name"`
	Description     pgtype.Text         `json:"description"`
	SourceNumber    pgtype.Text         `json:"source_number"`
	SourceDate      pgtype.Date         `json:"source_date"`
	SourceType      pgtype.Text         `json:"source_type"`
	InvoiceNumber   pgtype.Text         `json:"invoice_number"`
	PoNumber        pgtype.Text         `json:"po_number"`
	CurrentLocation pgtype.Text         `json:"current_location"`
}

func (q *Queries) ListSourceTrackingRecords(ctx context.Context, sourceID uuid.UUID) ([]SourceTrackingRow, error) {
	rows, err := q.db.Query(ctx, listSourceTrackingRecords, sourceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (SourceTrackingRow, error) {
		var i SourceTrackingRow
		err := r.Scan(
			&i.InventoryID, &i.ItemID, &i.Quantity, &i.Rate, &i.ReceivedDate, &i.StoreType,
			&i.ItemCode, &i.ItemName, &i.Description,
			&i.SourceNumber, &i.SourceDate, &i.SourceType, &i.InvoiceNumber, &i.PoNumber,
			&i.CurrentLocation,
		)
		return i, err
	})
}

const getInventoryTrace = `-- name: GetInventoryTrace :one
SELECT ` + inventoryColumns + `,
    i.item_code, i.item_name, i.description, i.hsn_code, i.insurance_status,
    s.source_number, s.source_date, s.source_type, s.invoice_number, s.invoice_amount,
    s.po_number, s.dc_number, s.status,
    w.warehouse_name, w.warehouse_code, w.address,
    p.name, p.project_number, p.project_address,
    sw.warehouse_name, sw.warehouse_code,
    sp.name, sp.project_number,
    v.business_name, v.vendor_number,
    rw.warehouse_name, rw.warehouse_code,
    rp.name, rp.project_number
FROM ims.t_inventory inv
LEFT JOIN ims.t_item i ON i.id = inv.item_id
LEFT JOIN ims.t_source s ON s.id = inv.source_id
LEFT JOIN ims.t_warehouse w ON w.id = inv.store_id AND inv.store_type = 'WAREHOUSE'
LEFT JOIN pms.t_project p ON p.id = inv.store_id AND inv.store_type = 'PROJECT'
LEFT JOIN ims.t_warehouse sw ON sw.id = s.sender_warehouse_id
LEFT JOIN pms.t_project sp ON sp.id = s.sender_project_id
LEFT JOIN ims.t_warehouse rw ON rw.id = s.receiver_warehouse_id
LEFT JOIN pms.t_project rp ON rp.id = s.receiver_project_id
LEFT JOIN crm.t_vendor v ON v.id = s.vendor_id
WHERE inv.id = $1 AND inv.is_deleted = false
`

// InventoryTraceRow is one inventory row with everything known about where it came from.
type InventoryTraceRow struct {
	Inventory
	ItemCode              pgtype.Text         `json:"item_code"`
	ItemName              pgtype.Text         `json:"item_name"`
	Description           pgtype.Text         `json:"description"`
	HsnCode               pgtype.Text         `json:"hsn_code"`
	InsuranceStatus       pgtype.Text         `json:"insurance_status"`
	SourceNumber          pgtype.Text         `json:"source_number"`
	SourceDate            pgtype.Date         `json:"source_date"`
	TraceSourceType       pgtype.Text         `json:"source_type_name"`
	InvoiceNumber         pgtype.Text         `json:"invoice_number"`
	InvoiceAmount         decimal.NullDecimal `json:"invoice_amount"`
	PoNumber              pgtype.Text         `json:"po_number"`
	DcNumber              pgtype.Text         `json:"dc_number"`
	SourceStatus          pgtype.Text         `json:"source_status"`
	WarehouseName         pgtype.Text         `json:"warehouse_name"`
	WarehouseCode         pgtype.Text         `json:"warehouse_code"`
	WarehouseAddress      pgtype.Text         `json:"warehouse_address"`
	ProjectName           pgtype.Text         `json:"project_name"`
	ProjectNumber         pgtype.Text         `json:"project_number"`
	ProjectAddress        pgtype.Text         `json:"project_address"`
	SenderWarehouseName   pgtype.Text         `json:"sender_warehouse_name"`
	SenderWarehouseCode   pgtype.Text         `json:"sender_warehouse_code"`
	SenderProjectName     pgtype.Text         `json:"sender_project_name"`
	SenderProjectNumber   pgtype.Text         `json:"sender_project_number"`
	BusinessName          pgtype.Text         `json:"business_name"`
	VendorNumber          pgtype.Text         `json:"vendor_number"`
	ReceiverWarehouseName pgtype.Text         `json:"receiver_warehouse_name"`
	ReceiverWarehouseCode pgtype.Text         `json:"receiver_warehouse_code"`
	ReceiverProjectName   pgtype.Text         `json:"receiver_project_name"`
	ReceiverProjectNumber pgtype.Text         `json:"receiver_project_number"`
}

func (q *Queries) GetInventoryTrace(ctx context.Context, inventoryID uuid.UUID) (InventoryTraceRow, error) {
	row := q.db.QueryRow(ctx, getInventoryTrace, inventoryID)
	var i InventoryTraceRow
	targets := append(inventoryTargets(&i.Inventory),
		&i.ItemCode, &i.ItemName, &i.Description, &i.HsnCode, &i.InsuranceStatus,
		&i.SourceNumber, &i.SourceDate, &i.TraceSourceType, &i.InvoiceNumber, &i.InvoiceAmount,
		&i.PoNumber, &i.DcNumber, &i.SourceStatus,
		&i.WarehouseName, &i.WarehouseCode, &i.WarehouseAddress,
		&i.ProjectName, &i.ProjectNumber, &i.ProjectAddress,
		&i.SenderWarehouseName, &i.SenderWarehouseCode,
		&i.SenderProjectName, &i.SenderProjectNumber,
		&i.BusinessName, &i.VendorNumber,
		&i.ReceiverWarehouseName, &i.ReceiverWarehouseCode,
		&i.ReceiverProjectName, &i.ReceiverProjectNumber,
	)
	err := row.Scan(targets...)
	return i, err
}
