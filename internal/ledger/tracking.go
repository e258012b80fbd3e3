package ledger

import (
	"context"
	"slices"
	"strings"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const unknownLocation = "Unknown"

// TrackingFilter narrows an item's history. Zero values mean no filter.
type TrackingFilter struct {
	StartDate  pgtype.Timestamptz
	EndDate    pgtype.Timestamptz
	SourceType string
	StoreType  string
}

// ItemHistory is every inventory and allocation record of one item.
type ItemHistory struct {
	ItemID          uuid.UUID           `json:"item_id"`
	ItemCode        pgtype.Text         `json:"item_code"`
	ItemName        pgtype.Text         `json:"item_name"`
	Description     pgtype.Text         `json:"description"`
	TotalQuantity   decimal.Decimal     `json:"total_quantity"`
	TotalRecords    int                 `json:"total_records"`
	TrackingHistory []db.TrackingRecord `json:"tracking_history"`
}

func (s *Service) itemRecords(ctx context.Context, op string, itemID uuid.UUID, f TrackingFilter) ([]db.TrackingRecord, error) {
	rows, err := s.store.ListItemTrackingRecords(ctx, db.ItemTrackingFilter{
		ItemID:     itemID,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		SourceType: pgtype.Text{String: f.SourceType, Valid: f.SourceType != ""},
		StoreType:  pgtype.Text{String: strings.ToUpper(f.StoreType), Valid: f.StoreType != ""},
	})
	if err != nil {
		return nil, wrap(op, err)
	}
	if len(rows) == 0 {
		return nil, notFoundErr(op, "tracking data for this item")
	}
	return rows, nil
}

// ItemHistory sums the quantity of the item's live inventory records and lists
// them together with its allocations, newest first.
func (s *Service) ItemHistory(ctx context.Context, itemID uuid.UUID, f TrackingFilter) (ItemHistory, error) {
	const op = "tracking_item"
	rows, err := s.itemRecords(ctx, op, itemID, f)
	if err != nil {
		return ItemHistory{}, err
	}
	out := ItemHistory{
		ItemID:          itemID,
		ItemCode:        rows[0].ItemCode,
		ItemName:        rows[0].ItemName,
		Description:     rows[0].Description,
		TotalQuantity:   decimal.Zero,
		TotalRecords:    len(rows),
		TrackingHistory: rows,
	}
	for _, r := range rows {
		if r.RecordType == "inventory" {
			out.TotalQuantity = out.TotalQuantity.Add(r.Quantity)
		}
	}
	return out, nil
}

// TimelineEvent is one dated step in an item's life.
type TimelineEvent struct {
	EventDate        pgtype.Timestamptz  `json:"event_date"`
	EventType        string              `json:"event_type"`
	Quantity         decimal.Decimal     `json:"quantity"`
	Rate             decimal.NullDecimal `json:"rate"`
	ReferenceNumber  pgtype.Text         `json:"reference_number"`
	SourceType       pgtype.Text         `json:"source_type"`
	InvoiceNumber    pgtype.Text         `json:"invoice_number"`
	RecordType       string              `json:"record_type"`
	Location         pgtype.Text         `json:"location"`
	LocationType     pgtype.Text         `json:"location_type"`
	FromLocation     pgtype.Text         `json:"from_location"`
	FromLocationType pgtype.Text         `json:"from_location_type"`
	SenderBomName    pgtype.Text         `json:"sender_bom_name"`
	ReceiverBomName  pgtype.Text         `json:"receiver_bom_name"`
	SpecName         pgtype.Text         `json:"spec_name"`
	AllocationID     uuid.NullUUID       `json:"allocation_id"`
	BomID            uuid.NullUUID       `json:"bom_id"`
	RequiredQty      decimal.NullDecimal `json:"required_qty"`
	AllocatedQty     decimal.NullDecimal `json:"allocated_qty"`
}

type ItemTimeline struct {
	ItemID      uuid.UUID       `json:"item_id"`
	TotalEvents int             `json:"total_events"`
	Timeline    []TimelineEvent `json:"timeline"`
}

// ItemTimeline orders an item's records oldest first: inventory rows become
// "Received" events and allocations "Allocated" events.
func (s *Service) ItemTimeline(ctx context.Context, itemID uuid.UUID) (ItemTimeline, error) {
	const op = "tracking_timeline"
	rows, err := s.itemRecords(ctx, op, itemID, TrackingFilter{})
	if err != nil {
		return ItemTimeline{}, err
	}
	events := make([]TimelineEvent, 0, len(rows))
	for _, r := range rows {
		ev := TimelineEvent{
			EventDate:        r.ReceivedDate,
			EventType:        "Received",
			Quantity:         r.Quantity,
			Rate:             r.Rate,
			ReferenceNumber:  r.SourceNumber,
			SourceType:       r.SourceType,
			InvoiceNumber:    r.InvoiceNumber,
			RecordType:       r.RecordType,
			Location:         r.CurrentLocation,
			LocationType:     r.StoreType,
			FromLocation:     r.SenderName,
			FromLocationType: r.SenderType,
			SenderBomName:    r.SenderBomName,
			ReceiverBomName:  r.ReceiverBomName,
			SpecName:         r.SpecName,
			AllocationID:     r.AllocationID,
			BomID:            r.BomID,
			RequiredQty:      r.RequiredQty,
			AllocatedQty:     r.AllocatedQty,
		}
		if r.RecordType == "allocation" {
			ev.EventType = "Allocated"
		}
		events = append(events, ev)
	}
	slices.SortStableFunc(events, func(a, b TimelineEvent) int {
		return a.EventDate.Time.Compare(b.EventDate.Time)
	})
	return ItemTimeline{ItemID: itemID, TotalEvents: len(events), Timeline: events}, nil
}

// StockSource is one inventory row of an item at a store.
type StockSource struct {
	InventoryID  uuid.UUID           `json:"inventory_id"`
	Quantity     decimal.Decimal     `json:"quantity"`
	Rate         decimal.NullDecimal `json:"rate"`
	SourceNumber pgtype.Text         `json:"source_number"`
	SourceType   pgtype.Text         `json:"source_type"`
	ReceivedDate pgtype.Timestamptz  `json:"received_date"`
}

// StockItem totals one item at a store across its sources.
type StockItem struct {
	ItemID        uuid.UUID       `json:"item_id"`
	ItemCode      pgtype.Text     `json:"item_code"`
	ItemName      pgtype.Text     `json:"item_name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Sources       []StockSource   `json:"sources"`
}

type WarehouseTracking struct {
	WarehouseID     uuid.UUID             `json:"warehouse_id"`
	WarehouseName   string                `json:"warehouse_name"`
	WarehouseCode   pgtype.Text           `json:"warehouse_code"`
	TotalItems      int                   `json:"total_items"`
	TotalRecords    int                   `json:"total_records"`
	Items           []StockItem           `json:"items"`
	DetailedRecords []db.StoreTrackingRow `json:"detailed_records"`
}

type ProjectTracking struct {
	ProjectID       uuid.UUID             `json:"project_id"`
	ProjectName     string                `json:"project_name"`
	ProjectCode     pgtype.Text           `json:"project_code"`
	TotalItems      int                   `json:"total_items"`
	TotalRecords    int                   `json:"total_records"`
	Items           []StockItem           `json:"items"`
	DetailedRecords []db.StoreTrackingRow `json:"detailed_records"`
}

func (s *Service) storeRecords(ctx context.Context, op string, storeID uuid.UUID, storeType, sourceType string) ([]db.StoreTrackingRow, []StockItem, error) {
	rows, err := s.store.ListStoreTrackingRecords(ctx, db.StoreTrackingFilter{
		StoreID:    storeID,
		StoreType:  storeType,
		SourceType: pgtype.Text{String: sourceType, Valid: sourceType != ""},
	})
	if err != nil {
		return nil, nil, wrap(op, err)
	}
	keys, groups := groupOrdered(rows, func(r db.StoreTrackingRow) uuid.UUID { return r.ItemID })
	items := make([]StockItem, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		it := StockItem{ItemID: k, ItemCode: g[0].ItemCode, ItemName: g[0].ItemName, TotalQuantity: decimal.Zero}
		for _, r := range g {
			it.TotalQuantity = it.TotalQuantity.Add(r.Quantity)
			it.Sources = append(it.Sources, StockSource{
				InventoryID:  r.InventoryID,
				Quantity:     r.Quantity,
				Rate:         r.Rate,
				SourceNumber: r.SourceNumber,
				SourceType:   r.SourceType,
				ReceivedDate: r.ReceivedDate,
			})
		}
		items = append(items, it)
	}
	return rows, items, nil
}

func locationName(rows []db.StoreTrackingRow) (string, pgtype.Text) {
	if len(rows) == 0 || !rows[0].LocationName.Valid {
		return unknownLocation, pgtype.Text{}
	}
	return rows[0].LocationName.String, rows[0].LocationCode
}

// WarehouseStock summarises what a warehouse holds, grouped by item.
func (s *Service) WarehouseStock(ctx context.Context, warehouseID uuid.UUID, sourceType string) (WarehouseTracking, error) {
	rows, items, err := s.storeRecords(ctx, "tracking_warehouse", warehouseID, StoreWarehouse, sourceType)
	if err != nil {
		return WarehouseTracking{}, err
	}
	name, code := locationName(rows)
	if name == unknownLocation {
		if w, err := s.warehouse(ctx, valid(warehouseID)); err == nil && w != nil {
			name, code = w.WarehouseName, textOf(w.WarehouseCode)
		}
	}
	return WarehouseTracking{
		WarehouseID:     warehouseID,
		WarehouseName:   name,
		WarehouseCode:   code,
		TotalItems:      len(items),
		TotalRecords:    len(rows),
		Items:           items,
		DetailedRecords: rows,
	}, nil
}

// ProjectStock summarises what a project site holds, grouped by item.
func (s *Service) ProjectStock(ctx context.Context, projectID uuid.UUID, sourceType string) (ProjectTracking, error) {
	rows, items, err := s.storeRecords(ctx, "tracking_project", projectID, StoreProject, sourceType)
	if err != nil {
		return ProjectTracking{}, err
	}
	name, code := locationName(rows)
	if name == unknownLocation {
		if p, err := s.project(ctx, valid(projectID)); err == nil && p != nil {
			name, code = p.Name, p.ProjectNumber
		}
	}
	return ProjectTracking{
		ProjectID:       projectID,
		ProjectName:     name,
		ProjectCode:     code,
		TotalItems:      len(items),
		TotalRecords:    len(rows),
		Items:           items,
		DetailedRecords: rows,
	}, nil
}

type SourceTracking struct {
	SourceID     uuid.UUID              `json:"source_id"`
	SourceNumber pgtype.Text            `json:"source_number"`
	SourceType   pgtype.Text            `json:"source_type"`
	SourceDate   pgtype.Date            `json:"source_date"`
	TotalItems   int                    `json:"total_items"`
	Items        []db.SourceTrackingRow `json:"items"`
}

// SourceStock lists the inventory rows a source produced and where they are now.
func (s *Service) SourceStock(ctx context.Context, sourceID uuid.UUID) (SourceTracking, error) {
	const op = "tracking_source"
	rows, err := s.store.ListSourceTrackingRecords(ctx, sourceID)
	if err != nil {
		return SourceTracking{}, wrap(op, err)
	}
	if len(rows) == 0 {
		return SourceTracking{}, notFoundErr(op, "items for this source")
	}
	return SourceTracking{
		SourceID:     sourceID,
		SourceNumber: rows[0].SourceNumber,
		SourceType:   rows[0].SourceType,
		SourceDate:   rows[0].SourceDate,
		TotalItems:   len(rows),
		Items:        rows,
	}, nil
}

// TraceInventory follows one inventory row back to its source, sender and receiver.
func (s *Service) TraceInventory(ctx context.Context, inventoryID uuid.UUID) (db.InventoryTraceRow, error) {
	row, err := s.store.GetInventoryTrace(ctx, inventoryID)
	if err != nil {
		return db.InventoryTraceRow{}, wrapNotFound("tracking_trace", "inventory record", err)
	}
	return row, nil
}
