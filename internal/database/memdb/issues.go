package memdb

import (
	"context"
	"slices"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func checkIssuanceType(t string) error {
	switch t {
	case "warehouse", "project-warehouse", "project-project":
		return nil
	}
	return checkViolation("chk_issuance_type")
}

func (d *DB) CreateMaterialIssue(ctx context.Context, arg db.MaterialIssueParams) (db.MaterialIssue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateMaterialIssue"); err != nil {
		return db.MaterialIssue{}, err
	}
	if err := checkIssuanceType(arg.IssuanceType); err != nil {
		return db.MaterialIssue{}, err
	}
	row := db.MaterialIssue{ID: uuid.New(), Audit: newAudit(d.tick(), arg.ActorID, arg.IsActive)}
	applyIssue(&row, arg)
	d.st.issues[row.ID] = row
	return row, nil
}

func applyIssue(row *db.MaterialIssue, arg db.MaterialIssueParams) {
	row.IssueNumber = arg.IssueNumber
	row.IssueDate = arg.IssueDate
	row.IssueExpectedDate = arg.IssueExpectedDate
	row.SenderType = arg.SenderType
	row.IssuanceType = arg.IssuanceType
	row.SenderReferenceID = arg.SenderReferenceID
	row.Status = arg.Status
	row.Remarks = arg.Remarks
	row.IsActive = arg.IsActive
}

func (d *DB) GetMaterialIssue(ctx context.Context, id uuid.UUID) (db.MaterialIssue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetMaterialIssue"); err != nil {
		return db.MaterialIssue{}, err
	}
	return getLive(d.st.issues, id)
}

func (d *DB) GetMaterialIssueForUpdate(ctx context.Context, id uuid.UUID) (db.MaterialIssue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetMaterialIssueForUpdate"); err != nil {
		return db.MaterialIssue{}, err
	}
	return getLive(d.st.issues, id)
}

func (d *DB) issueListRows(keep func(db.MaterialIssue) bool) []db.MaterialIssueListRow {
	out := []db.MaterialIssueListRow{}
	for _, mi := range newestFirst(live(d.st.issues, keep)) {
		row := db.MaterialIssueListRow{MaterialIssue: mi}
		if mi.SenderReferenceID.Valid {
			if w, ok := d.st.warehouses[mi.SenderReferenceID.UUID]; ok {
				row.WarehouseName, row.Address = text(w.WarehouseName), w.Address
			}
		}
		out = append(out, row)
	}
	return out
}

func (d *DB) ListMaterialIssues(ctx context.Context) ([]db.MaterialIssueListRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListMaterialIssues"); err != nil {
		return nil, err
	}
	return d.issueListRows(nil), nil
}

func (d *DB) ListDcEligibleMaterialIssues(ctx context.Context) ([]db.MaterialIssueListRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListDcEligibleMaterialIssues"); err != nil {
		return nil, err
	}
	return d.issueListRows(func(mi db.MaterialIssue) bool {
		return mi.Status == "approved" && !mi.IsDcGenerated
	}), nil
}

func (d *DB) UpdateMaterialIssue(ctx context.Context, id uuid.UUID, arg db.MaterialIssueParams) (db.MaterialIssue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateMaterialIssue"); err != nil {
		return db.MaterialIssue{}, err
	}
	row, err := getLive(d.st.issues, id)
	if err != nil {
		return row, err
	}
	if err := checkIssuanceType(arg.IssuanceType); err != nil {
		return db.MaterialIssue{}, err
	}
	applyIssue(&row, arg)
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.issues[row.ID] = row
	return row, nil
}

func (d *DB) MarkMaterialIssueDcGenerated(ctx context.Context, arg db.IDActorParams) (db.MaterialIssue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("MarkMaterialIssueDcGenerated"); err != nil {
		return db.MaterialIssue{}, err
	}
	row, err := getLive(d.st.issues, arg.ID)
	if err != nil {
		return row, err
	}
	row.IsDcGenerated = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.issues[row.ID] = row
	return row, nil
}

func (d *DB) SoftDeleteMaterialIssue(ctx context.Context, arg db.IDActorParams) (db.MaterialIssue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SoftDeleteMaterialIssue"); err != nil {
		return db.MaterialIssue{}, err
	}
	row, err := getLive(d.st.issues, arg.ID)
	if err != nil {
		return row, err
	}
	row.IsDeleted = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.issues[row.ID] = row
	return row, nil
}

func applyIssueItem(row *db.MaterialIssueItem, arg db.MaterialIssueItemParams) {
	row.IssueID = arg.IssueID
	row.ItemID = arg.ItemID
	row.IssuedQuantity = arg.IssuedQuantity
	row.BomID = arg.BomID
	row.SpecID = arg.SpecID
	row.ReceivingReferenceID = arg.ReceivingReferenceID
	row.ReceiverType = arg.ReceiverType
	row.Rate = arg.Rate
	row.ItemAllocationID = arg.ItemAllocationID
	row.IsActive = arg.IsActive
}

func (d *DB) CreateMaterialIssueItem(ctx context.Context, arg db.MaterialIssueItemParams) (db.MaterialIssueItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateMaterialIssueItem"); err != nil {
		return db.MaterialIssueItem{}, err
	}
	row := db.MaterialIssueItem{ID: uuid.New(), Audit: newAudit(d.tick(), arg.ActorID, arg.IsActive)}
	applyIssueItem(&row, arg)
	d.st.issueItems[row.ID] = row
	return row, nil
}

func (d *DB) GetMaterialIssueItem(ctx context.Context, id uuid.UUID) (db.MaterialIssueItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetMaterialIssueItem"); err != nil {
		return db.MaterialIssueItem{}, err
	}
	return getLive(d.st.issueItems, id)
}

func (d *DB) ListMaterialIssueItems(ctx context.Context) ([]db.MaterialIssueItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListMaterialIssueItems"); err != nil {
		return nil, err
	}
	return newestFirst(live(d.st.issueItems, nil)), nil
}

func (d *DB) ListMaterialIssueItemsByIssue(ctx context.Context, issueID uuid.UUID) ([]db.MaterialIssueItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListMaterialIssueItemsByIssue"); err != nil {
		return nil, err
	}
	return live(d.st.issueItems, func(r db.MaterialIssueItem) bool { return r.IssueID == issueID }), nil
}

func (d *DB) FindMaterialIssueItemByAllocationForUpdate(ctx context.Context, arg db.IssueItemKey) (db.MaterialIssueItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("FindMaterialIssueItemByAllocationForUpdate"); err != nil {
		return db.MaterialIssueItem{}, err
	}
	rows := live(d.st.issueItems, func(r db.MaterialIssueItem) bool {
		return r.ItemAllocationID.Valid && r.ItemAllocationID.UUID == arg.ItemAllocationID && r.ItemID == arg.ItemID
	})
	if len(rows) == 0 {
		return db.MaterialIssueItem{}, pgx.ErrNoRows
	}
	return rows[0], nil
}

func (d *DB) UpdateMaterialIssueItem(ctx context.Context, id uuid.UUID, arg db.MaterialIssueItemParams) (db.MaterialIssueItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateMaterialIssueItem"); err != nil {
		return db.MaterialIssueItem{}, err
	}
	row, err := getLive(d.st.issueItems, id)
	if err != nil {
		return row, err
	}
	applyIssueItem(&row, arg)
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.issueItems[row.ID] = row
	return row, nil
}

func (d *DB) SoftDeleteMaterialIssueItem(ctx context.Context, arg db.IDActorParams) (db.MaterialIssueItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SoftDeleteMaterialIssueItem"); err != nil {
		return db.MaterialIssueItem{}, err
	}
	row, err := getLive(d.st.issueItems, arg.ID)
	if err != nil {
		return row, err
	}
	row.IsDeleted = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.issueItems[row.ID] = row
	return row, nil
}

func (d *DB) CreateMaterialIssueItemSource(ctx context.Context, arg db.CreateMaterialIssueItemSourceParams) (db.MaterialIssueItemSource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateMaterialIssueItemSource"); err != nil {
		return db.MaterialIssueItemSource{}, err
	}
	if !arg.Quantity.IsPositive() {
		return db.MaterialIssueItemSource{}, checkViolation("t_material_issue_item_sources_quantity_check")
	}
	row := db.MaterialIssueItemSource{
		ID:          uuid.New(),
		IssueItemID: arg.IssueItemID,
		InventoryID: arg.InventoryID,
		Quantity:    arg.Quantity,
		CreatedAt:   d.tick(),
	}
	d.st.issueItemSources[row.ID] = row
	return row, nil
}

func (d *DB) openSources(issueItemID uuid.UUID) []db.MaterialIssueItemSource {
	out := []db.MaterialIssueItemSource{}
	for _, row := range d.st.issueItemSources {
		if row.IssueItemID == issueItemID && !row.ReversedAt.Valid {
			out = append(out, row)
		}
	}
	slices.SortStableFunc(out, func(a, b db.MaterialIssueItemSource) int {
		return a.CreatedAt.Time.Compare(b.CreatedAt.Time)
	})
	return out
}

func (d *DB) ListOpenIssueItemSources(ctx context.Context, issueItemID uuid.UUID) ([]db.MaterialIssueItemSource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListOpenIssueItemSources"); err != nil {
		return nil, err
	}
	return d.openSources(issueItemID), nil
}

func (d *DB) MarkIssueItemSourcesReversed(ctx context.Context, issueItemID uuid.UUID) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("MarkIssueItemSourcesReversed"); err != nil {
		return 0, err
	}
	ts := d.tick()
	var n int64
	for _, row := range d.openSources(issueItemID) {
		row.ReversedAt = ts
		d.st.issueItemSources[row.ID] = row
		n++
	}
	return n, nil
}
