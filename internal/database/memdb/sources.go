package memdb

import (
	"cmp"
	"context"
	"slices"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func applySource(row *db.Source, arg db.SourceParams) {
	row.SourceType = arg.SourceType
	row.SourceNumber = arg.SourceNumber
	row.InboundTriggerIssueID = arg.InboundTriggerIssueID
	row.InboundTriggerIssueType = arg.InboundTriggerIssueType
	row.ReceiverProjectID = arg.ReceiverProjectID
	row.SenderProjectID = arg.SenderProjectID
	row.SourceDate = arg.SourceDate
	row.SenderWarehouseID = arg.SenderWarehouseID
	row.ReceiverWarehouseID = arg.ReceiverWarehouseID
	row.VendorID = arg.VendorID
	row.InvoiceNumber = arg.InvoiceNumber
	row.InvoiceAmount = arg.InvoiceAmount
	row.PoNumber = arg.PoNumber
	row.DcNumber = arg.DcNumber
	row.GenerateQr = arg.GenerateQr
	row.Status = arg.Status
	row.IsActive = arg.IsActive
}

func (d *DB) CreateSource(ctx context.Context, arg db.SourceParams) (db.Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSource"); err != nil {
		return db.Source{}, err
	}
	row := db.Source{ID: uuid.New(), Audit: newAudit(d.tick(), arg.ActorID, arg.IsActive)}
	applySource(&row, arg)
	d.st.sources[row.ID] = row
	return row, nil
}

func (d *DB) GetSource(ctx context.Context, id uuid.UUID) (db.Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetSource"); err != nil {
		return db.Source{}, err
	}
	return getLive(d.st.sources, id)
}

func (d *DB) ListSources(ctx context.Context, sourceType pgtype.Text) ([]db.SourceListRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListSources"); err != nil {
		return nil, err
	}
	out := []db.SourceListRow{}
	for _, s := range newestFirst(live(d.st.sources, func(r db.Source) bool {
		return !sourceType.Valid || r.SourceType == sourceType.String
	})) {
		row := db.SourceListRow{Source: s}
		if s.SenderWarehouseID.Valid {
			if w, ok := d.st.warehouses[s.SenderWarehouseID.UUID]; ok {
				row.SenderWarehouseCode = text(w.WarehouseCode)
				row.SenderWarehouseName = text(w.WarehouseName)
				row.SenderWarehouseAddress = w.Address
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (d *DB) ListSourceDestinationWarehouses(ctx context.Context, sourceIDs []uuid.UUID) ([]db.SourceDestinationRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListSourceDestinationWarehouses"); err != nil {
		return nil, err
	}
	type pair struct{ source, warehouse uuid.UUID }
	seen := map[pair]bool{}
	out := []db.SourceDestinationRow{}
	for _, sp := range live(d.st.splits, func(r db.SourceItemWarehouseDetail) bool {
		return r.WarehouseID.Valid && slices.Contains(sourceIDs, r.SourceID)
	}) {
		key := pair{sp.SourceID, sp.WarehouseID.UUID}
		w, ok := d.st.warehouses[key.warehouse]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, db.SourceDestinationRow{SourceID: sp.SourceID, Warehouse: w})
	}
	slices.SortStableFunc(out, func(a, b db.SourceDestinationRow) int {
		if c := cmp.Compare(a.SourceID.String(), b.SourceID.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.WarehouseName, b.WarehouseName)
	})
	return out, nil
}

func (d *DB) UpdateSource(ctx context.Context, id uuid.UUID, arg db.SourceParams) (db.Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateSource"); err != nil {
		return db.Source{}, err
	}
	row, err := getLive(d.st.sources, id)
	if err != nil {
		return row, err
	}
	applySource(&row, arg)
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.sources[row.ID] = row
	return row, nil
}

func (d *DB) ApproveSource(ctx context.Context, arg db.IDActorParams) (db.Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ApproveSource"); err != nil {
		return db.Source{}, err
	}
	row, err := getLive(d.st.sources, arg.ID)
	if err != nil {
		return row, err
	}
	row.Status = "completed"
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.sources[row.ID] = row
	return row, nil
}

func (d *DB) SoftDeleteSource(ctx context.Context, arg db.IDActorParams) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SoftDeleteSource"); err != nil {
		return uuid.Nil, err
	}
	row, err := getLive(d.st.sources, arg.ID)
	if err != nil {
		return uuid.Nil, err
	}
	row.IsDeleted = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.sources[row.ID] = row
	return row.ID, nil
}

func applySourceDetail(row *db.SourceDetail, arg db.SourceDetailParams) {
	row.SourceID = arg.SourceID
	row.ItemID = arg.ItemID
	row.ExpectedQuantity = arg.ExpectedQuantity
	row.RemainingQuantity = arg.RemainingQuantity
	row.AcceptedQuantity = arg.AcceptedQuantity
	row.RejectedQuantity = arg.RejectedQuantity
	row.LostQuantity = arg.LostQuantity
	row.Rate = arg.Rate
	row.Comment = arg.Comment
	row.IsActive = arg.IsActive
}

func (d *DB) CreateSourceDetail(ctx context.Context, arg db.SourceDetailParams) (db.SourceDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSourceDetail"); err != nil {
		return db.SourceDetail{}, err
	}
	row := db.SourceDetail{ID: uuid.New(), Audit: newAudit(d.tick(), arg.ActorID, arg.IsActive)}
	applySourceDetail(&row, arg)
	d.st.sourceDetails[row.ID] = row
	return row, nil
}

func (d *DB) ListSourceDetails(ctx context.Context) ([]db.SourceDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListSourceDetails"); err != nil {
		return nil, err
	}
	return live(d.st.sourceDetails, nil), nil
}

func (d *DB) ListSourceDetailsWithItem(ctx context.Context, sourceID uuid.UUID) ([]db.SourceDetailItemRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListSourceDetailsWithItem"); err != nil {
		return nil, err
	}
	out := []db.SourceDetailItemRow{}
	for _, sd := range live(d.st.sourceDetails, func(r db.SourceDetail) bool { return r.SourceID == sourceID }) {
		row := db.SourceDetailItemRow{SourceDetail: sd}
		if it, ok := d.st.items[sd.ItemID]; ok {
			row.ItemCode, row.ItemName = text(it.ItemCode), text(it.ItemName)
			row.HsnCode, row.Description, row.MaterialType = it.HsnCode, it.Description, it.MaterialType
			row.UnitPrice, row.SafetyStock, row.ReorderQuantity = it.UnitPrice, it.SafetyStock, it.ReorderQuantity
			row.InsuranceStatus = it.InsuranceStatus
		}
		out = append(out, row)
	}
	return out, nil
}

func (d *DB) UpdateSourceDetail(ctx context.Context, id uuid.UUID, arg db.SourceDetailParams) (db.SourceDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateSourceDetail"); err != nil {
		return db.SourceDetail{}, err
	}
	row, err := getLive(d.st.sourceDetails, id)
	if err != nil {
		return row, err
	}
	applySourceDetail(&row, arg)
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.sourceDetails[row.ID] = row
	return row, nil
}

func (d *DB) ApproveSourceDetail(ctx context.Context, arg db.IDActorParams) (db.SourceDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ApproveSourceDetail"); err != nil {
		return db.SourceDetail{}, err
	}
	row, err := getLive(d.st.sourceDetails, arg.ID)
	if err != nil {
		return row, err
	}
	row.IsActive = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.sourceDetails[row.ID] = row
	return row, nil
}

func (d *DB) SoftDeleteSourceDetail(ctx context.Context, arg db.IDActorParams) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SoftDeleteSourceDetail"); err != nil {
		return uuid.Nil, err
	}
	row, err := getLive(d.st.sourceDetails, arg.ID)
	if err != nil {
		return uuid.Nil, err
	}
	row.IsDeleted = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.sourceDetails[row.ID] = row
	return row.ID, nil
}

func (d *DB) CreateSourceItemWarehouseDetail(ctx context.Context, arg db.CreateSourceItemWarehouseDetailParams) (db.SourceItemWarehouseDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSourceItemWarehouseDetail"); err != nil {
		return db.SourceItemWarehouseDetail{}, err
	}
	if !arg.WarehouseID.Valid && !arg.ProjectID.Valid {
		return db.SourceItemWarehouseDetail{}, checkViolation("chk_siwd_destination")
	}
	row := db.SourceItemWarehouseDetail{
		ID:               uuid.New(),
		SourceID:         arg.SourceID,
		SourceDetailID:   arg.SourceDetailID,
		ItemID:           arg.ItemID,
		WarehouseID:      arg.WarehouseID,
		ProjectID:        arg.ProjectID,
		SpecID:           arg.SpecID,
		SenderBomID:      arg.SenderBomID,
		ReceiverBomID:    arg.ReceiverBomID,
		ExpectedQuantity: arg.ExpectedQuantity,
		AcceptedQuantity: arg.AcceptedQuantity,
		RejectedQuantity: arg.RejectedQuantity,
		LostQuantity:     arg.LostQuantity,
		Note:             arg.Note,
		Audit:            newAudit(d.tick(), arg.ActorID, arg.IsActive),
	}
	d.st.splits[row.ID] = row
	return row, nil
}

func (d *DB) ListSourceItemWarehouseDetails(ctx context.Context) ([]db.SourceItemWarehouseDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListSourceItemWarehouseDetails"); err != nil {
		return nil, err
	}
	return live(d.st.splits, nil), nil
}

func (d *DB) splitRows(keep func(db.SourceItemWarehouseDetail) bool) []db.SplitWarehouseRow {
	out := []db.SplitWarehouseRow{}
	for _, sp := range live(d.st.splits, keep) {
		row := db.SplitWarehouseRow{SourceItemWarehouseDetail: sp}
		if sp.WarehouseID.Valid {
			if w, ok := d.st.warehouses[sp.WarehouseID.UUID]; ok {
				row.WarehouseCode, row.WarehouseName, row.Address = text(w.WarehouseCode), text(w.WarehouseName), w.Address
			}
		}
		out = append(out, row)
	}
	return out
}

func (d *DB) ListSplitsBySourceDetail(ctx context.Context, sourceDetailID uuid.UUID) ([]db.SplitWarehouseRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListSplitsBySourceDetail"); err != nil {
		return nil, err
	}
	return d.splitRows(func(r db.SourceItemWarehouseDetail) bool { return r.SourceDetailID == sourceDetailID }), nil
}

func (d *DB) ListSplitsBySource(ctx context.Context, sourceID uuid.UUID) ([]db.SplitWarehouseRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListSplitsBySource"); err != nil {
		return nil, err
	}
	return d.splitRows(func(r db.SourceItemWarehouseDetail) bool { return r.SourceID == sourceID }), nil
}

func (d *DB) UpdateSplitByDestination(ctx context.Context, arg db.UpdateSplitByDestinationParams) ([]db.SourceItemWarehouseDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateSplitByDestination"); err != nil {
		return nil, err
	}
	ts := d.tick()
	out := []db.SourceItemWarehouseDetail{}
	for _, row := range live(d.st.splits, func(r db.SourceItemWarehouseDetail) bool {
		return r.SourceID == arg.SourceID && r.SourceDetailID == arg.SourceDetailID &&
			r.WarehouseID.Valid && r.WarehouseID.UUID == arg.WarehouseID
	}) {
		row.AcceptedQuantity, row.RejectedQuantity, row.LostQuantity = arg.AcceptedQuantity, arg.RejectedQuantity, arg.LostQuantity
		row.Note = arg.Note
		touch(&row.Audit, ts, arg.ActorID)
		d.st.splits[row.ID] = row
		out = append(out, row)
	}
	return out, nil
}

func (d *DB) ApproveSourceItemWarehouseDetail(ctx context.Context, arg db.IDActorParams) (db.SourceItemWarehouseDetail, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ApproveSourceItemWarehouseDetail"); err != nil {
		return db.SourceItemWarehouseDetail{}, err
	}
	row, err := getLive(d.st.splits, arg.ID)
	if err != nil {
		return row, err
	}
	row.IsActive = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.splits[row.ID] = row
	return row, nil
}

func (d *DB) SoftDeleteSourceItemWarehouseDetail(ctx context.Context, arg db.IDActorParams) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SoftDeleteSourceItemWarehouseDetail"); err != nil {
		return uuid.Nil, err
	}
	row, err := getLive(d.st.splits, arg.ID)
	if err != nil {
		return uuid.Nil, err
	}
	row.IsDeleted = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.splits[row.ID] = row
	return row.ID, nil
}
