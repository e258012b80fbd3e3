package memdb

import (
	"context"
	"slices"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func (d *DB) firstSplit(sourceID, itemID uuid.UUID) (db.SourceItemWarehouseDetail, bool) {
	rows := live(d.st.splits, func(r db.SourceItemWarehouseDetail) bool {
		return r.SourceID == sourceID && r.ItemID == itemID
	})
	if len(rows) == 0 {
		return db.SourceItemWarehouseDetail{}, false
	}
	return rows[0], true
}

func (d *DB) bomName(id uuid.NullUUID) pgtype.Text {
	if !id.Valid {
		return pgtype.Text{}
	}
	if b, ok := d.st.boms[id.UUID]; ok {
		return text(b.Name)
	}
	return pgtype.Text{}
}

func (d *DB) fillSplit(rec *db.TrackingRecord, sourceID, itemID uuid.UUID) {
	sp, ok := d.firstSplit(sourceID, itemID)
	if !ok {
		return
	}
	rec.SenderBomID, rec.ReceiverBomID, rec.SpecID = sp.SenderBomID, sp.ReceiverBomID, sp.SpecID
	rec.SenderBomName, rec.ReceiverBomName = d.bomName(sp.SenderBomID), d.bomName(sp.ReceiverBomID)
	if sp.SpecID.Valid {
		if s, ok := d.st.specs[sp.SpecID.UUID]; ok {
			rec.SpecName = s.SpecDescription
		}
	}
}

func (d *DB) fillSource(rec *db.TrackingRecord, s db.Source) {
	rec.SourceID = nullUUID(s.ID)
	rec.SourceNumber = text(s.SourceNumber)
	rec.SourceDate = s.SourceDate
	rec.SourceType = text(s.SourceType)
	rec.InvoiceNumber, rec.PoNumber, rec.DcNumber = s.InvoiceNumber, s.PoNumber, s.DcNumber
	rec.SourceStatus = text(s.Status)
}

func (d *DB) sourceRow(id uuid.NullUUID) (db.Source, bool) {
	if !id.Valid {
		return db.Source{}, false
	}
	s, ok := d.st.sources[id.UUID]
	return s, ok
}

func inWindow(ts pgtype.Timestamptz, f db.ItemTrackingFilter) bool {
	if f.StartDate.Valid && ts.Time.Before(f.StartDate.Time) {
		return false
	}
	if f.EndDate.Valid && ts.Time.After(f.EndDate.Time) {
		return false
	}
	return true
}

func (d *DB) ListItemTrackingRecords(ctx context.Context, arg db.ItemTrackingFilter) ([]db.TrackingRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListItemTrackingRecords"); err != nil {
		return nil, err
	}
	item := d.st.items[arg.ItemID]
	out := []db.TrackingRecord{}

	for _, inv := range live(d.st.inventory, func(r db.Inventory) bool { return r.ItemID == arg.ItemID }) {
		if !inWindow(inv.CreatedAt, arg) {
			continue
		}
		if arg.StoreType.Valid && inv.StoreType != arg.StoreType.String {
			continue
		}
		s, hasSource := d.sourceRow(inv.SourceID)
		if arg.SourceType.Valid && (!hasSource || s.SourceType != arg.SourceType.String) {
			continue
		}
		rec := db.TrackingRecord{
			InventoryID:         nullUUID(inv.ID),
			ItemID:              inv.ItemID,
			Quantity:            inv.Quantity,
			Rate:                inv.Rate,
			ReceivedDate:        inv.CreatedAt,
			InventorySourceType: inv.SourceType,
			StoreType:           text(inv.StoreType),
			Status:              text(inv.Status),
			RecordType:          "inventory",
			ItemCode:            text(item.ItemCode),
			ItemName:            text(item.ItemName),
			Description:         item.Description,
			HsnCode:             item.HsnCode,
			CurrentLocation:     text("Unknown"),
			SenderName:          text("External"),
			SenderType:          text("external"),
		}
		switch inv.StoreType {
		case "WAREHOUSE":
			w := d.st.warehouses[inv.StoreID]
			rec.CurrentLocation, rec.CurrentLocationCode, rec.CurrentLocationAddress = text(w.WarehouseName), text(w.WarehouseCode), w.Address
		case "PROJECT":
			p := d.st.projects[inv.StoreID]
			rec.CurrentLocation, rec.CurrentLocationCode, rec.CurrentLocationAddress = text(p.Name), p.ProjectNumber, p.ProjectAddress
		}
		if hasSource {
			d.fillSource(&rec, s)
			switch {
			case s.SenderWarehouseID.Valid:
				rec.SenderName, rec.SenderType = text(d.st.warehouses[s.SenderWarehouseID.UUID].WarehouseName), text("warehouse")
			case s.SenderProjectID.Valid:
				rec.SenderName, rec.SenderType = text(d.st.projects[s.SenderProjectID.UUID].Name), text("project")
			case s.VendorID.Valid:
				rec.SenderName, rec.SenderType = text(d.st.vendors[s.VendorID.UUID].BusinessName), text("vendor")
			}
			switch {
			case s.ReceiverWarehouseID.Valid:
				rec.ReceiverName, rec.ReceiverType = text(d.st.warehouses[s.ReceiverWarehouseID.UUID].WarehouseName), text("warehouse")
			case s.ReceiverProjectID.Valid:
				rec.ReceiverName, rec.ReceiverType = text(d.st.projects[s.ReceiverProjectID.UUID].Name), text("project")
			}
			if s.VendorID.Valid {
				if v, ok := d.st.vendors[s.VendorID.UUID]; ok {
					rec.BusinessName, rec.VendorNumber = text(v.BusinessName), v.VendorNumber
				}
			}
			d.fillSplit(&rec, s.ID, inv.ItemID)
		}
		out = append(out, rec)
	}

	if !arg.StoreType.Valid || arg.StoreType.String == "PROJECT" {
		for _, ia := range live(d.st.allocations, func(r db.ItemAllocation) bool { return r.ItemID == arg.ItemID }) {
			if !inWindow(ia.CreatedAt, arg) {
				continue
			}
			details := live(d.st.allocationDetails, func(r db.ItemAllocationDetail) bool { return r.ItemAllocationID == ia.ID })
			sourceIDs := []uuid.NullUUID{}
			for _, det := range details {
				sourceIDs = append(sourceIDs, nullUUID(det.SourceID))
			}
			if len(sourceIDs) == 0 {
				sourceIDs = append(sourceIDs, uuid.NullUUID{})
			}
			for _, sid := range sourceIDs {
				s, hasSource := d.sourceRow(sid)
				if arg.SourceType.Valid && (!hasSource || s.SourceType != arg.SourceType.String) {
					continue
				}
				name := ia.ItemName
				if !name.Valid {
					name = text(item.ItemName)
				}
				rec := db.TrackingRecord{
					ItemID:       ia.ItemID,
					Quantity:     ia.AllocatedQty,
					Rate:         ia.Rate,
					ReceivedDate: ia.CreatedAt,
					StoreType:    text("PROJECT"),
					RecordType:   "allocation",
					ItemCode:     text(item.ItemCode),
					ItemName:     name,
					Description:  item.Description,
					HsnCode:      item.HsnCode,
					SenderType:   text("project"),
					ReceiverType: text("project"),
					AllocationID: nullUUID(ia.ID),
					BomID:        nullUUID(ia.BomID),
					RequiredQty:  decimal.NullDecimal{Decimal: ia.RequiredQty, Valid: true},
					AllocatedQty: decimal.NullDecimal{Decimal: ia.AllocatedQty, Valid: true},
				}
				if hasSource {
					d.fillSource(&rec, s)
					if s.SenderProjectID.Valid {
						rec.SenderName = text(d.st.projects[s.SenderProjectID.UUID].Name)
					}
					if s.ReceiverProjectID.Valid {
						rp := d.st.projects[s.ReceiverProjectID.UUID]
						rec.CurrentLocation, rec.CurrentLocationCode, rec.CurrentLocationAddress = text(rp.Name), rp.ProjectNumber, rp.ProjectAddress
						rec.ReceiverName = text(rp.Name)
					}
					d.fillSplit(&rec, s.ID, ia.ItemID)
				}
				out = append(out, rec)
			}
		}
	}

	slices.SortStableFunc(out, func(a, b db.TrackingRecord) int {
		return b.ReceivedDate.Time.Compare(a.ReceivedDate.Time)
	})
	return out, nil
}

func (d *DB) ListStoreTrackingRecords(ctx context.Context, arg db.StoreTrackingFilter) ([]db.StoreTrackingRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListStoreTrackingRecords"); err != nil {
		return nil, err
	}
	out := []db.StoreTrackingRow{}
	for _, inv := range newestFirst(live(d.st.inventory, func(r db.Inventory) bool {
		return r.StoreID == arg.StoreID && r.StoreType == arg.StoreType
	})) {
		s, hasSource := d.sourceRow(inv.SourceID)
		if arg.SourceType.Valid && (!hasSource || s.SourceType != arg.SourceType.String) {
			continue
		}
		item := d.st.items[inv.ItemID]
		row := db.StoreTrackingRow{
			InventoryID:  inv.ID,
			ItemID:       inv.ItemID,
			Quantity:     inv.Quantity,
			Rate:         inv.Rate,
			ReceivedDate: inv.CreatedAt,
			Status:       inv.Status,
			ItemCode:     text(item.ItemCode),
			ItemName:     text(item.ItemName),
			Description:  item.Description,
		}
		if hasSource {
			row.SourceNumber, row.SourceDate, row.SourceType = text(s.SourceNumber), s.SourceDate, text(s.SourceType)
			row.InvoiceNumber = s.InvoiceNumber
		}
		if arg.StoreType == "WAREHOUSE" {
			w := d.st.warehouses[inv.StoreID]
			row.LocationName, row.LocationCode = text(w.WarehouseName), text(w.WarehouseCode)
		} else {
			p := d.st.projects[inv.StoreID]
			row.LocationName, row.LocationCode = text(p.Name), p.ProjectNumber
		}
		out = append(out, row)
	}
	return out, nil
}

func (d *DB) ListSourceTrackingRecords(ctx context.Context, sourceID uuid.UUID) ([]db.SourceTrackingRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListSourceTrackingRecords"); err != nil {
		return nil, err
	}
	s, hasSource := d.st.sources[sourceID]
	out := []db.SourceTrackingRow{}
	for _, inv := range newestFirst(live(d.st.inventory, func(r db.Inventory) bool {
		return r.SourceID.Valid && r.SourceID.UUID == sourceID
	})) {
		item := d.st.items[inv.ItemID]
		row := db.SourceTrackingRow{
			InventoryID:  inv.ID,
			ItemID:       inv.ItemID,
			Quantity:     inv.Quantity,
			Rate:         inv.Rate,
			ReceivedDate: inv.CreatedAt,
			StoreType:    inv.StoreType,
			ItemCode:     text(item.ItemCode),
			ItemName:     text(item.ItemName),
			Description:  item.Description,
		}
		if hasSource {
			row.SourceNumber, row.SourceDate, row.SourceType = text(s.SourceNumber), s.SourceDate, text(s.SourceType)
			row.InvoiceNumber, row.PoNumber = s.InvoiceNumber, s.PoNumber
		}
		switch inv.StoreType {
		case "WAREHOUSE":
			row.CurrentLocation = text(d.st.warehouses[inv.StoreID].WarehouseName)
		case "PROJECT":
			row.CurrentLocation = text(d.st.projects[inv.StoreID].Name)
		}
		out = append(out, row)
	}
	return out, nil
}

func (d *DB) GetInventoryTrace(ctx context.Context, inventoryID uuid.UUID) (db.InventoryTraceRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetInventoryTrace"); err != nil {
		return db.InventoryTraceRow{}, err
	}
	inv, err := getLive(d.st.inventory, inventoryID)
	if err != nil {
		return db.InventoryTraceRow{}, err
	}
	row := db.InventoryTraceRow{Inventory: inv}
	if it, ok := d.st.items[inv.ItemID]; ok {
		row.ItemCode, row.ItemName = text(it.ItemCode), text(it.ItemName)
		row.Description, row.HsnCode, row.InsuranceStatus = it.Description, it.HsnCode, it.InsuranceStatus
	}
	switch inv.StoreType {
	case "WAREHOUSE":
		if w, ok := d.st.warehouses[inv.StoreID]; ok {
			row.WarehouseName, row.WarehouseCode, row.WarehouseAddress = text(w.WarehouseName), text(w.WarehouseCode), w.Address
		}
	case "PROJECT":
		if p, ok := d.st.projects[inv.StoreID]; ok {
			row.ProjectName, row.ProjectNumber, row.ProjectAddress = text(p.Name), p.ProjectNumber, p.ProjectAddress
		}
	}
	if s, ok := d.sourceRow(inv.SourceID); ok {
		row.SourceNumber, row.SourceDate, row.TraceSourceType = text(s.SourceNumber), s.SourceDate, text(s.SourceType)
		row.InvoiceNumber, row.InvoiceAmount = s.InvoiceNumber, s.InvoiceAmount
		row.PoNumber, row.DcNumber, row.SourceStatus = s.PoNumber, s.DcNumber, text(s.Status)
		if w, ok := d.st.warehouses[s.SenderWarehouseID.UUID]; ok && s.SenderWarehouseID.Valid {
			row.SenderWarehouseName, row.SenderWarehouseCode = text(w.WarehouseName), text(w.WarehouseCode)
		}
		if p, ok := d.st.projects[s.SenderProjectID.UUID]; ok && s.SenderProjectID.Valid {
			row.SenderProjectName, row.SenderProjectNumber = text(p.Name), p.ProjectNumber
		}
		if v, ok := d.st.vendors[s.VendorID.UUID]; ok && s.VendorID.Valid {
			row.BusinessName, row.VendorNumber = text(v.BusinessName), v.VendorNumber
		}
		if w, ok := d.st.warehouses[s.ReceiverWarehouseID.UUID]; ok && s.ReceiverWarehouseID.Valid {
			row.ReceiverWarehouseName, row.ReceiverWarehouseCode = text(w.WarehouseName), text(w.WarehouseCode)
		}
		if p, ok := d.st.projects[s.ReceiverProjectID.UUID]; ok && s.ReceiverProjectID.Valid {
			row.ReceiverProjectName, row.ReceiverProjectNumber = text(p.Name), p.ProjectNumber
		}
	}
	return row, nil
}
