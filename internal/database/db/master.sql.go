package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const getItem = `-- name: GetItem :one
SELECT i.id, i.item_code, i.item_name, i.hsn_code, i.description, i.uom_id, u.uom_name,
       i.category_id, i.brand_id, i.material_type, i.unit_price, i.installation_rate,
       i.latest_lowest_basic_supply_rate, i.latest_lowest_basic_installation_rate,
       i.latest_lowest_net_rate, i.safety_stock, i.reorder_quantity, i.insurance_status
FROM ims.t_item i
LEFT JOIN ims.t_uom u ON u.id = i.uom_id
WHERE i.id = $1 AND i.is_deleted = false
`

func (q *Queries) GetItem(ctx context.Context, id uuid.UUID) (Item, error) {
	row := q.db.QueryRow(ctx, getItem, id)
	var i Item
	err := row.Scan(
		&i.ID,
		&i.ItemCode,
		&i.ItemName,
		&i.HsnCode,
		&i.Description,
		&i.UomID,
		&i.UomName,
		&i.CategoryID,
		&i.BrandID,
		&i.MaterialType,
		&i.UnitPrice,
		&i.InstallationRate,
		&i.LatestLowestBasicSupplyRate,
		&i.LatestLowestBasicInstallationRate,
		&i.LatestLowestNetRate,
		&i.SafetyStock,
		&i.ReorderQuantity,
		&i.InsuranceStatus,
	)
	return i, err
}

const getWarehouse = `-- name: GetWarehouse :one
SELECT id, warehouse_code, warehouse_name, address
FROM ims.t_warehouse
WHERE id = $1 AND is_deleted = false
`

func (q *Queries) GetWarehouse(ctx context.Context, id uuid.UUID) (Warehouse, error) {
	row := q.db.QueryRow(ctx, getWarehouse, id)
	var i Warehouse
	err := row.Scan(&i.ID, &i.WarehouseCode, &i.WarehouseName, &i.Address)
	return i, err
}

const getProject = `-- name: GetProject :one
SELECT id, name, project_number, project_address
FROM pms.t_project
WHERE id = $1 AND is_deleted = false
`

func (q *Queries) GetProject(ctx context.Context, id uuid.UUID) (Project, error) {
	row := q.db.QueryRow(ctx, getProject, id)
	var i Project
	err := row.Scan(&i.ID, &i.Name, &i.ProjectNumber, &i.ProjectAddress)
	return i, err
}

const getBom = `-- name: GetBom :one
SELECT id, name, project_id
FROM crm.t_bom
WHERE id = $1 AND is_deleted = false
`

func (q *Queries) GetBom(ctx context.Context, id uuid.UUID) (Bom, error) {
	row := q.db.QueryRow(ctx, getBom, id)
	var i Bom
	err := row.Scan(&i.ID, &i.Name, &i.ProjectID)
	return i, err
}

const getBomSpec = `-- name: GetBomSpec :one
SELECT id, bom_id, spec_description
FROM crm.t_bom_spec
WHERE id = $1 AND is_deleted = false
`

func (q *Queries) GetBomSpec(ctx context.Context, id uuid.UUID) (BomSpec, error) {
	row := q.db.QueryRow(ctx, getBomSpec, id)
	var i BomSpec
	err := row.Scan(&i.ID, &i.BomID, &i.SpecDescription)
	return i, err
}

const listBomSpecsByBom = `-- name: ListBomSpecsByBom :many
SELECT id, bom_id, spec_description
FROM crm.t_bom_spec
WHERE bom_id = $1 AND is_deleted = false
ORDER BY spec_description
`

func (q *Queries) ListBomSpecsByBom(ctx context.Context, bomID uuid.UUID) ([]BomSpec, error) {
	rows, err := q.db.Query(ctx, listBomSpecsByBom, bomID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (BomSpec, error) {
		var i BomSpec
		err := r.Scan(&i.ID, &i.BomID, &i.SpecDescription)
		return i, err
	})
}

const getVendor = `-- name: GetVendor :one
SELECT id, business_name, vendor_number
FROM crm.t_vendor
WHERE id = $1 AND is_deleted = false
`

func (q *Queries) GetVendor(ctx context.Context, id uuid.UUID) (Vendor, error) {
	row := q.db.QueryRow(ctx, getVendor, id)
	var i Vendor
	err := row.Scan(&i.ID, &i.BusinessName, &i.VendorNumber)
	return i, err
}
