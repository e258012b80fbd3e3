package ledger

import (
	"context"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultSourceType       = "GRN"
	defaultInboundIssueType = "PO"
	defaultSourceStatus     = "draft"
	approvedSourceStatus    = "completed"
)

// SourceInput creates or fully replaces a source. Details are only read on create.
type SourceInput struct {
	SourceType              string              `json:"source_type"`
	SourceNumber            string              `json:"source_number" validate:"required"`
	InboundTriggerIssueID   uuid.NullUUID       `json:"inbound_trigger_issue_id"`
	InboundTriggerIssueType pgtype.Text         `json:"inbound_trigger_issue_type"`
	ReceiverProjectID       uuid.NullUUID       `json:"receiver_project_id"`
	SenderProjectID         uuid.NullUUID       `json:"sender_project_id"`
	SourceDate              pgtype.Date         `json:"source_date" validate:"required"`
	SenderWarehouseID       uuid.NullUUID       `json:"sender_warehouse_id"`
	ReceiverWarehouseID     uuid.NullUUID       `json:"receiver_warehouse_id"`
	VendorID                uuid.NullUUID       `json:"vendor_id"`
	InvoiceNumber           pgtype.Text         `json:"invoice_number"`
	InvoiceAmount           decimal.NullDecimal `json:"invoice_amount" validate:"omitempty,gte=0"`
	PoNumber                pgtype.Text         `json:"po_number"`
	DcNumber                pgtype.Text         `json:"dc_number"`
	GenerateQr              *bool               `json:"generate_qr"`
	Status                  string              `json:"status"`
	IsActive                *bool               `json:"is_active"`

	Details []SourceDetailInput `json:"details" validate:"dive"`
}

func (in SourceInput) params(actor uuid.UUID) db.SourceParams {
	p := db.SourceParams{
		SourceType:              in.SourceType,
		SourceNumber:            in.SourceNumber,
		InboundTriggerIssueID:   in.InboundTriggerIssueID,
		InboundTriggerIssueType: in.InboundTriggerIssueType,
		ReceiverProjectID:       in.ReceiverProjectID,
		SenderProjectID:         in.SenderProjectID,
		SourceDate:              in.SourceDate,
		SenderWarehouseID:       in.SenderWarehouseID,
		ReceiverWarehouseID:     in.ReceiverWarehouseID,
		VendorID:                in.VendorID,
		InvoiceNumber:           in.InvoiceNumber,
		InvoiceAmount:           in.InvoiceAmount,
		PoNumber:                in.PoNumber,
		DcNumber:                in.DcNumber,
		GenerateQr:              boolOr(in.GenerateQr, false),
		Status:                  in.Status,
		IsActive:                boolOr(in.IsActive, true),
		ActorID:                 actor,
	}
	if p.SourceType == "" {
		p.SourceType = defaultSourceType
	}
	if !p.InboundTriggerIssueType.Valid {
		p.InboundTriggerIssueType = pgtype.Text{String: defaultInboundIssueType, Valid: true}
	}
	if p.Status == "" {
		p.Status = defaultSourceStatus
	}
	return p
}

// SourceDetailInput is one item line of a source. SourceID is taken from the
// parent when nested under a source create.
type SourceDetailInput struct {
	SourceID          uuid.UUID           `json:"source_id"`
	ItemID            uuid.UUID           `json:"item_id" validate:"required"`
	ExpectedQuantity  decimal.NullDecimal `json:"expected_quantity" validate:"omitempty,gte=0"`
	RemainingQuantity decimal.NullDecimal `json:"remaining_quantity" validate:"omitempty,gte=0"`
	AcceptedQuantity  decimal.NullDecimal `json:"accepted_quantity" validate:"omitempty,gte=0"`
	RejectedQuantity  decimal.NullDecimal `json:"rejected_quantity" validate:"omitempty,gte=0"`
	LostQuantity      decimal.NullDecimal `json:"lost_quantity" validate:"omitempty,gte=0"`
	Rate              decimal.NullDecimal `json:"rate" validate:"omitempty,gte=0"`
	Comment           pgtype.Text         `json:"comment"`
	IsActive          *bool               `json:"is_active"`

	Warehouses []SplitInput `json:"warehouses" validate:"dive"`
}

func (in SourceDetailInput) params(actor uuid.UUID) db.SourceDetailParams {
	return db.SourceDetailParams{
		SourceID:          in.SourceID,
		ItemID:            in.ItemID,
		ExpectedQuantity:  in.ExpectedQuantity,
		RemainingQuantity: in.RemainingQuantity,
		AcceptedQuantity:  in.AcceptedQuantity,
		RejectedQuantity:  in.RejectedQuantity,
		LostQuantity:      in.LostQuantity,
		Rate:              in.Rate,
		Comment:           in.Comment,
		IsActive:          boolOr(in.IsActive, true),
		ActorID:           actor,
	}
}

// SplitInput records how much of one source line went to one destination.
// SpecID, SenderBomID and ReceiverBomID describe project-to-project provenance
// and require a project destination.
type SplitInput struct {
	SourceID         uuid.UUID           `json:"source_id"`
	SourceDetailID   uuid.UUID           `json:"source_detail_id"`
	ItemID           uuid.UUID           `json:"item_id"`
	WarehouseID      uuid.NullUUID       `json:"warehouse_id"`
	ProjectID        uuid.NullUUID       `json:"project_id"`
	SpecID           uuid.NullUUID       `json:"spec_id"`
	SenderBomID      uuid.NullUUID       `json:"sender_bom_id"`
	ReceiverBomID    uuid.NullUUID       `json:"receiver_bom_id"`
	ExpectedQuantity decimal.NullDecimal `json:"expected_quantity" validate:"omitempty,gte=0"`
	AcceptedQuantity decimal.NullDecimal `json:"accepted_quantity" validate:"omitempty,gte=0"`
	RejectedQuantity decimal.NullDecimal `json:"rejected_quantity" validate:"omitempty,gte=0"`
	LostQuantity     decimal.NullDecimal `json:"lost_quantity" validate:"omitempty,gte=0"`
	Note             pgtype.Text         `json:"note"`
	IsActive         *bool               `json:"is_active"`
}

func (in SplitInput) verify(op string) error {
	if in.SourceID == uuid.Nil || in.SourceDetailID == uuid.Nil || in.ItemID == uuid.Nil {
		return validationErr(op, "source_id, source_detail_id and item_id are required")
	}
	return in.verifyDestination(op)
}

func (in SplitInput) verifyDestination(op string) error {
	if !in.WarehouseID.Valid && !in.ProjectID.Valid {
		return validationErr(op, "either warehouse_id or project_id is required")
	}
	if !in.ProjectID.Valid && (in.SpecID.Valid || in.SenderBomID.Valid || in.ReceiverBomID.Valid) {
		return validationErr(op, "spec_id, sender_bom_id and receiver_bom_id require project_id")
	}
	return nil
}

func (in SplitInput) params(actor uuid.UUID) db.CreateSourceItemWarehouseDetailParams {
	return db.CreateSourceItemWarehouseDetailParams{
		SourceID:         in.SourceID,
		SourceDetailID:   in.SourceDetailID,
		ItemID:           in.ItemID,
		WarehouseID:      in.WarehouseID,
		ProjectID:        in.ProjectID,
		SpecID:           in.SpecID,
		SenderBomID:      in.SenderBomID,
		ReceiverBomID:    in.ReceiverBomID,
		ExpectedQuantity: in.ExpectedQuantity,
		AcceptedQuantity: in.AcceptedQuantity,
		RejectedQuantity: in.RejectedQuantity,
		LostQuantity:     in.LostQuantity,
		Note:             in.Note,
		IsActive:         boolOr(in.IsActive, true),
		ActorID:          actor,
	}
}

// CreatedSource is a new source with whatever details were created alongside it.
type CreatedSource struct {
	db.Source
	Details []CreatedSourceDetail `json:"details,omitempty"`
}

type CreatedSourceDetail struct {
	db.SourceDetail
	Warehouses []db.SourceItemWarehouseDetail `json:"warehouses,omitempty"`
}

// CreateSource inserts a source and its nested details and splits in one transaction.
func (s *Service) CreateSource(ctx context.Context, in SourceInput) (CreatedSource, error) {
	const op = "source_create"
	if err := s.check(op, in); err != nil {
		return CreatedSource{}, err
	}
	for _, d := range in.Details {
		for _, w := range d.Warehouses {
			if err := w.verifyDestination(op); err != nil {
				return CreatedSource{}, err
			}
		}
	}

	actor := s.actor(ctx)
	var out CreatedSource
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		src, err := q.CreateSource(ctx, in.params(actor))
		if err != nil {
			return err
		}
		out.Source = src
		spanAttrs(ctx, attribute.String("source.id", src.ID.String()))

		for _, d := range in.Details {
			d.SourceID = src.ID
			detail, err := q.CreateSourceDetail(ctx, d.params(actor))
			if err != nil {
				return err
			}
			created := CreatedSourceDetail{SourceDetail: detail}
			for _, w := range d.Warehouses {
				w.SourceID, w.SourceDetailID, w.ItemID = src.ID, detail.ID, detail.ItemID
				split, err := q.CreateSourceItemWarehouseDetail(ctx, w.params(actor))
				if err != nil {
					return err
				}
				created.Warehouses = append(created.Warehouses, split)
			}
			out.Details = append(out.Details, created)
		}
		return nil
	})
	if err != nil {
		return CreatedSource{}, err
	}
	s.logger.InfoContext(ctx, "source created", "source_id", out.ID, "source_number", out.SourceNumber, "details", len(out.Details))
	return out, nil
}

func (s *Service) GetSource(ctx context.Context, id uuid.UUID) (db.Source, error) {
	row, err := s.store.GetSource(ctx, id)
	if err != nil {
		return db.Source{}, wrapNotFound("source_get", "source", err)
	}
	return row, nil
}

// SourceListing is a source with its sender warehouse and the distinct
// warehouses its splits were delivered to.
type SourceListing struct {
	db.SourceListRow
	DestinationWarehouses []db.Warehouse `json:"destination_warehouses"`
}

// ListSources lists live sources, optionally filtered by source_type.
func (s *Service) ListSources(ctx context.Context, sourceType string) ([]SourceListing, error) {
	const op = "source_list"
	filter := pgtype.Text{String: sourceType, Valid: sourceType != ""}
	rows, err := s.store.ListSources(ctx, filter)
	if err != nil {
		return nil, wrap(op, err)
	}
	out := make([]SourceListing, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	dests, err := s.store.ListSourceDestinationWarehouses(ctx, ids)
	if err != nil {
		return nil, wrap(op, err)
	}
	bySource := map[uuid.UUID][]db.Warehouse{}
	for _, d := range dests {
		bySource[d.SourceID] = append(bySource[d.SourceID], d.Warehouse)
	}

	for _, r := range rows {
		w := bySource[r.ID]
		if w == nil {
			w = []db.Warehouse{}
		}
		out = append(out, SourceListing{SourceListRow: r, DestinationWarehouses: w})
	}
	return out, nil
}

// UpdateSource replaces every column of a source.
func (s *Service) UpdateSource(ctx context.Context, id uuid.UUID, in SourceInput) (db.Source, error) {
	const op = "source_update"
	in.Details = nil
	if err := s.check(op, in); err != nil {
		return db.Source{}, err
	}
	var row db.Source
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.UpdateSource(ctx, id, in.params(s.actor(ctx)))
		return err
	})
	return row, err
}

// ApproveSource marks a source completed regardless of its current status.
func (s *Service) ApproveSource(ctx context.Context, id uuid.UUID) (db.Source, error) {
	var row db.Source
	err := s.write(ctx, "source_approve", func() (err error) {
		row, err = s.store.ApproveSource(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	if err == nil {
		s.logger.InfoContext(ctx, "source approved", "source_id", id, "status", approvedSourceStatus)
	}
	return row, err
}

func (s *Service) DeleteSource(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := s.write(ctx, "source_delete", func() (err error) {
		out, err = s.store.SoftDeleteSource(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	return out, err
}

// CreateSourceDetail adds one item line to an existing source.
func (s *Service) CreateSourceDetail(ctx context.Context, in SourceDetailInput) (db.SourceDetail, error) {
	const op = "source_detail_create"
	if in.SourceID == uuid.Nil {
		return db.SourceDetail{}, validationErr(op, "source_id is required")
	}
	in.Warehouses = nil
	if err := s.check(op, in); err != nil {
		return db.SourceDetail{}, err
	}
	var row db.SourceDetail
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.CreateSourceDetail(ctx, in.params(s.actor(ctx)))
		return err
	})
	return row, err
}

func (s *Service) ListSourceDetails(ctx context.Context) ([]db.SourceDetail, error) {
	rows, err := s.store.ListSourceDetails(ctx)
	return rows, wrap("source_detail_list", err)
}

// SourceDetailView is a source line with its item columns and destination splits.
type SourceDetailView struct {
	db.SourceDetailItemRow
	Warehouses []db.SplitWarehouseRow `json:"warehouses"`
}

// SourceDetails returns the lines of one source, each with its splits.
func (s *Service) SourceDetails(ctx context.Context, sourceID uuid.UUID) ([]SourceDetailView, error) {
	const op = "source_detail_by_source"
	rows, err := s.store.ListSourceDetailsWithItem(ctx, sourceID)
	if err != nil {
		return nil, wrap(op, err)
	}
	if len(rows) == 0 {
		return nil, notFoundErr(op, "source details")
	}
	splits, err := s.store.ListSplitsBySource(ctx, sourceID)
	if err != nil {
		return nil, wrap(op, err)
	}
	_, byDetail := groupOrdered(splits, func(r db.SplitWarehouseRow) uuid.UUID { return r.SourceDetailID })

	out := make([]SourceDetailView, 0, len(rows))
	for _, r := range rows {
		w := byDetail[r.ID]
		if w == nil {
			w = []db.SplitWarehouseRow{}
		}
		out = append(out, SourceDetailView{SourceDetailItemRow: r, Warehouses: w})
	}
	return out, nil
}

func (s *Service) UpdateSourceDetail(ctx context.Context, id uuid.UUID, in SourceDetailInput) (db.SourceDetail, error) {
	const op = "source_detail_update"
	if in.SourceID == uuid.Nil {
		return db.SourceDetail{}, validationErr(op, "source_id is required")
	}
	in.Warehouses = nil
	if err := s.check(op, in); err != nil {
		return db.SourceDetail{}, err
	}
	var row db.SourceDetail
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.UpdateSourceDetail(ctx, id, in.params(s.actor(ctx)))
		return err
	})
	return row, err
}

func (s *Service) ApproveSourceDetail(ctx context.Context, id uuid.UUID) (db.SourceDetail, error) {
	var row db.SourceDetail
	err := s.write(ctx, "source_detail_approve", func() (err error) {
		row, err = s.store.ApproveSourceDetail(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	return row, err
}

func (s *Service) DeleteSourceDetail(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := s.write(ctx, "source_detail_delete", func() (err error) {
		out, err = s.store.SoftDeleteSourceDetail(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	return out, err
}

// RecordSplit stores one per-destination split of a source line.
func (s *Service) RecordSplit(ctx context.Context, in SplitInput) (db.SourceItemWarehouseDetail, error) {
	const op = "split_create"
	if err := in.verify(op); err != nil {
		return db.SourceItemWarehouseDetail{}, err
	}
	if err := s.check(op, in); err != nil {
		return db.SourceItemWarehouseDetail{}, err
	}
	var row db.SourceItemWarehouseDetail
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.CreateSourceItemWarehouseDetail(ctx, in.params(s.actor(ctx)))
		return err
	})
	return row, err
}

// RecordSplits stores every split or none.
func (s *Service) RecordSplits(ctx context.Context, in []SplitInput) ([]db.SourceItemWarehouseDetail, error) {
	const op = "split_create_bulk"
	if len(in) == 0 {
		return nil, validationErr(op, "expected a non-empty array of splits")
	}
	for _, sp := range in {
		if err := sp.verify(op); err != nil {
			return nil, err
		}
		if err := s.check(op, sp); err != nil {
			return nil, err
		}
	}

	actor := s.actor(ctx)
	out := make([]db.SourceItemWarehouseDetail, 0, len(in))
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		for _, sp := range in {
			row, err := q.CreateSourceItemWarehouseDetail(ctx, sp.params(actor))
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "source splits recorded", "rows", len(out))
	return out, nil
}

func (s *Service) ListSplits(ctx context.Context) ([]db.SourceItemWarehouseDetail, error) {
	rows, err := s.store.ListSourceItemWarehouseDetails(ctx)
	return rows, wrap("split_list", err)
}

// SplitsByDetail lists the splits of one source line joined with their warehouse.
func (s *Service) SplitsByDetail(ctx context.Context, sourceDetailID uuid.UUID) ([]db.SplitWarehouseRow, error) {
	const op = "split_by_detail"
	rows, err := s.store.ListSplitsBySourceDetail(ctx, sourceDetailID)
	if err != nil {
		return nil, wrap(op, err)
	}
	if len(rows) == 0 {
		return nil, notFoundErr(op, "source item warehouse details")
	}
	return rows, nil
}

// SplitUpdate addresses a split by (source, line, warehouse) rather than by id.
type SplitUpdate struct {
	SourceID         uuid.UUID           `json:"source_id" validate:"required"`
	SourceDetailID   uuid.UUID           `json:"source_detail_id" validate:"required"`
	WarehouseID      uuid.UUID           `json:"warehouse_id" validate:"required"`
	AcceptedQuantity decimal.NullDecimal `json:"accepted_quantity" validate:"omitempty,gte=0"`
	RejectedQuantity decimal.NullDecimal `json:"rejected_quantity" validate:"omitempty,gte=0"`
	LostQuantity     decimal.NullDecimal `json:"lost_quantity" validate:"omitempty,gte=0"`
	Note             pgtype.Text         `json:"note"`
}

// UpdateSplit sets the accepted/rejected/lost quantities of the matching splits.
func (s *Service) UpdateSplit(ctx context.Context, in SplitUpdate) ([]db.SourceItemWarehouseDetail, error) {
	const op = "split_update"
	if err := s.check(op, in); err != nil {
		return nil, err
	}
	var rows []db.SourceItemWarehouseDetail
	err := s.write(ctx, op, func() (err error) {
		rows, err = s.store.UpdateSplitByDestination(ctx, db.UpdateSplitByDestinationParams{
			SourceID:         in.SourceID,
			SourceDetailID:   in.SourceDetailID,
			WarehouseID:      in.WarehouseID,
			AcceptedQuantity: in.AcceptedQuantity,
			RejectedQuantity: in.RejectedQuantity,
			LostQuantity:     in.LostQuantity,
			Note:             in.Note,
			ActorID:          s.actor(ctx),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFoundErr(op, "source item warehouse detail")
	}
	return rows, nil
}

func (s *Service) ApproveSplit(ctx context.Context, id uuid.UUID) (db.SourceItemWarehouseDetail, error) {
	var row db.SourceItemWarehouseDetail
	err := s.write(ctx, "split_approve", func() (err error) {
		row, err = s.store.ApproveSourceItemWarehouseDetail(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	return row, err
}

func (s *Service) DeleteSplit(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := s.write(ctx, "split_delete", func() (err error) {
		out, err = s.store.SoftDeleteSourceItemWarehouseDetail(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	return out, err
}
