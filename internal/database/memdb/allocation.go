package memdb

import (
	"cmp"
	"context"
	"slices"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (d *DB) CreateAllocation(ctx context.Context, arg db.CreateAllocationParams) (db.ItemAllocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateAllocation"); err != nil {
		return db.ItemAllocation{}, err
	}
	if _, ok := d.allocationByKey(db.AllocationKey{ItemID: arg.ItemID, BomID: arg.BomID, ProjectID: arg.ProjectID}); ok {
		return db.ItemAllocation{}, uniqueViolation("uq_item_allocation_key")
	}
	row := db.ItemAllocation{
		ID:           uuid.New(),
		ItemID:       arg.ItemID,
		BomID:        arg.BomID,
		ProjectID:    arg.ProjectID,
		ItemName:     arg.ItemName,
		RequiredQty:  arg.RequiredQty,
		AllocatedQty: arg.AllocatedQty,
		Rate:         arg.Rate,
		Audit:        newAudit(d.tick(), arg.ActorID, arg.IsActive),
	}
	d.st.allocations[row.ID] = row
	return row, nil
}

func (d *DB) allocationByKey(key db.AllocationKey) (db.ItemAllocation, bool) {
	rows := live(d.st.allocations, func(r db.ItemAllocation) bool {
		return r.ItemID == key.ItemID && r.BomID == key.BomID && sameNullUUID(r.ProjectID, key.ProjectID)
	})
	if len(rows) == 0 {
		return db.ItemAllocation{}, false
	}
	return rows[0], true
}

func (d *DB) GetAllocation(ctx context.Context, id uuid.UUID) (db.ItemAllocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetAllocation"); err != nil {
		return db.ItemAllocation{}, err
	}
	return getLive(d.st.allocations, id)
}

func (d *DB) ListAllocations(ctx context.Context) ([]db.ItemAllocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListAllocations"); err != nil {
		return nil, err
	}
	return newestFirst(live(d.st.allocations, nil)), nil
}

func (d *DB) FindAllocationByKeyForUpdate(ctx context.Context, arg db.AllocationKey) (db.ItemAllocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("FindAllocationByKeyForUpdate"); err != nil {
		return db.ItemAllocation{}, err
	}
	row, ok := d.allocationByKey(arg)
	if !ok {
		return row, pgx.ErrNoRows
	}
	return row, nil
}

func (d *DB) AddToAllocation(ctx context.Context, arg db.AddToAllocationParams) (db.ItemAllocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AddToAllocation"); err != nil {
		return db.ItemAllocation{}, err
	}
	row, err := getLive(d.st.allocations, arg.ID)
	if err != nil {
		return row, err
	}
	row.RequiredQty = row.RequiredQty.Add(arg.RequiredQty)
	row.AllocatedQty = row.AllocatedQty.Add(arg.AllocatedQty)
	if arg.ItemName.Valid {
		row.ItemName = arg.ItemName
	}
	if arg.Rate.Valid {
		row.Rate = arg.Rate
	}
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.allocations[row.ID] = row
	return row, nil
}

func (d *DB) UpdateAllocation(ctx context.Context, arg db.UpdateAllocationParams) (db.ItemAllocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateAllocation"); err != nil {
		return db.ItemAllocation{}, err
	}
	row, err := getLive(d.st.allocations, arg.ID)
	if err != nil {
		return row, err
	}
	row.ItemName, row.RequiredQty, row.AllocatedQty = arg.ItemName, arg.RequiredQty, arg.AllocatedQty
	row.Rate, row.IsActive = arg.Rate, arg.IsActive
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.allocations[row.ID] = row
	return row, nil
}

func (d *DB) SoftDeleteAllocation(ctx context.Context, arg db.IDActorParams) (db.ItemAllocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SoftDeleteAllocation"); err != nil {
		return db.ItemAllocation{}, err
	}
	row, err := getLive(d.st.allocations, arg.ID)
	if err != nil {
		return row, err
	}
	row.IsDeleted = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.allocations[row.ID] = row
	return row, nil
}

// issuedAgainst sums live issue items whose issue is still in play.
func (d *DB) issuedAgainst(allocationID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.st.issueItems {
		if it.IsDeleted || !it.ItemAllocationID.Valid || it.ItemAllocationID.UUID != allocationID {
			continue
		}
		issue, ok := d.st.issues[it.IssueID]
		if !ok || issue.IsDeleted || issue.Status == "rejected" || issue.Status == "cancelled" {
			continue
		}
		total = total.Add(it.IssuedQuantity)
	}
	return total
}

func (d *DB) ListAllocationsByBom(ctx context.Context, bomID uuid.UUID) ([]db.AllocationIssueRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListAllocationsByBom"); err != nil {
		return nil, err
	}
	out := []db.AllocationIssueRow{}
	for _, a := range live(d.st.allocations, func(r db.ItemAllocation) bool { return r.BomID == bomID }) {
		row := db.AllocationIssueRow{ItemAllocation: a, IssuedQty: d.issuedAgainst(a.ID)}
		if it, ok := d.st.items[a.ItemID]; ok {
			row.ItemCode, row.UomName = text(it.ItemCode), it.UomName
		}
		out = append(out, row)
	}
	slices.SortStableFunc(out, func(a, b db.AllocationIssueRow) int {
		return cmp.Compare(a.ItemName.String, b.ItemName.String)
	})
	return out, nil
}

func (d *DB) ListAllocationsByItem(ctx context.Context, itemID uuid.UUID) ([]db.AllocationBomRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListAllocationsByItem"); err != nil {
		return nil, err
	}
	out := []db.AllocationBomRow{}
	for _, a := range live(d.st.allocations, func(r db.ItemAllocation) bool { return r.ItemID == itemID }) {
		row := db.AllocationBomRow{ItemAllocation: a}
		projectID := a.ProjectID
		if b, ok := d.st.boms[a.BomID]; ok {
			row.BomName = text(b.Name)
			if !projectID.Valid {
				projectID = b.ProjectID
			}
		}
		if projectID.Valid {
			if p, ok := d.st.projects[projectID.UUID]; ok {
				row.ProjectName = text(p.Name)
			}
		}
		out = append(out, row)
	}
	slices.SortStableFunc(out, func(a, b db.AllocationBomRow) int {
		return cmp.Compare(a.BomID.String(), b.BomID.String())
	})
	return out, nil
}

func (d *DB) GetAllocationRate(ctx context.Context, arg db.GetAllocationRateParams) (decimal.NullDecimal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetAllocationRate"); err != nil {
		return decimal.NullDecimal{}, err
	}
	rows := live(d.st.allocations, func(r db.ItemAllocation) bool {
		return r.ItemID == arg.ItemID && r.BomID == arg.BomID
	})
	if len(rows) == 0 {
		return decimal.NullDecimal{}, pgx.ErrNoRows
	}
	return rows[0].Rate, nil
}

func (d *DB) CreateAllocationDetail(ctx context.Context, arg db.CreateAllocationDetailParams) (db.ItemAllocationDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateAllocationDetail"); err != nil {
		return db.ItemAllocationDetail{}, err
	}
	if _, ok := d.allocationDetailByKey(db.AllocationDetailKey{ItemAllocationID: arg.ItemAllocationID, SourceID: arg.SourceID}); ok {
		return db.ItemAllocationDetail{}, uniqueViolation("uq_item_allocation_detail_key")
	}
	row := db.ItemAllocationDetail{
		ID:               uuid.New(),
		ItemAllocationID: arg.ItemAllocationID,
		SourceID:         arg.SourceID,
		AllocatedQty:     arg.AllocatedQty,
		Rate:             arg.Rate,
		Audit:            newAudit(d.tick(), arg.ActorID, arg.IsActive),
	}
	d.st.allocationDetails[row.ID] = row
	return row, nil
}

func (d *DB) allocationDetailByKey(key db.AllocationDetailKey) (db.ItemAllocationDetail, bool) {
	rows := live(d.st.allocationDetails, func(r db.ItemAllocationDetail) bool {
		return r.ItemAllocationID == key.ItemAllocationID && r.SourceID == key.SourceID
	})
	if len(rows) == 0 {
		return db.ItemAllocationDetail{}, false
	}
	return rows[0], true
}

func (d *DB) GetAllocationDetail(ctx context.Context, id uuid.UUID) (db.ItemAllocationDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetAllocationDetail"); err != nil {
		return db.ItemAllocationDetail{}, err
	}
	return getLive(d.st.allocationDetails, id)
}

func (d *DB) ListAllocationDetails(ctx context.Context) ([]db.ItemAllocationDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListAllocationDetails"); err != nil {
		return nil, err
	}
	return newestFirst(live(d.st.allocationDetails, nil)), nil
}

func (d *DB) FindAllocationDetailByKeyForUpdate(ctx context.Context, arg db.AllocationDetailKey) (db.ItemAllocationDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("FindAllocationDetailByKeyForUpdate"); err != nil {
		return db.ItemAllocationDetail{}, err
	}
	row, ok := d.allocationDetailByKey(arg)
	if !ok {
		return row, pgx.ErrNoRows
	}
	return row, nil
}

func (d *DB) UpdateAllocationDetail(ctx context.Context, arg db.UpdateAllocationDetailParams) (db.ItemAllocationDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateAllocationDetail"); err != nil {
		return db.ItemAllocationDetail{}, err
	}
	row, err := getLive(d.st.allocationDetails, arg.ID)
	if err != nil {
		return row, err
	}
	row.AllocatedQty, row.Rate, row.IsActive = arg.AllocatedQty, arg.Rate, arg.IsActive
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.allocationDetails[row.ID] = row
	return row, nil
}

func (d *DB) SoftDeleteAllocationDetail(ctx context.Context, arg db.IDActorParams) (db.ItemAllocationDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SoftDeleteAllocationDetail"); err != nil {
		return db.ItemAllocationDetail{}, err
	}
	row, err := getLive(d.st.allocationDetails, arg.ID)
	if err != nil {
		return row, err
	}
	row.IsDeleted = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.allocationDetails[row.ID] = row
	return row, nil
}
