package ledger

import (
	"context"
	"encoding/json"
	"strings"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const ChallanGenerated = "generated"

// ChallanInput creates a delivery challan for an approved material issue.
// Sender and receiver default from the issue when omitted.
type ChallanInput struct {
	DcNumber           string              `json:"dc_number" validate:"required"`
	SenderType         pgtype.Text         `json:"sender_type"`
	SenderID           uuid.NullUUID       `json:"sender_id"`
	ReceiverType       pgtype.Text         `json:"receiver_type"`
	ReceiverID         uuid.NullUUID       `json:"receiver_id"`
	DcDate             pgtype.Date         `json:"dc_date"`
	DcNote             pgtype.Text         `json:"dc_note"`
	ReceivedDate       pgtype.Date         `json:"received_date"`
	Status             string              `json:"status"`
	VehicleNo          pgtype.Text         `json:"vehicle_no"`
	DriverName         pgtype.Text         `json:"driver_name"`
	DriverPhoneNumber  pgtype.Text         `json:"driver_phone_number"`
	EwayBillNo         pgtype.Text         `json:"eway_bill_no"`
	EwayBillExpiryDate pgtype.Date         `json:"eway_bill_expiry_date"`
	TransferCost       decimal.NullDecimal `json:"transfer_cost" validate:"omitempty,gte=0"`
	TransferID         uuid.UUID           `json:"transfer_id" validate:"required"`
	IsActive           *bool               `json:"is_active"`
}

// CreateChallan inserts the challan and flags its issue as DC-generated in one
// transaction. The issue must be approved and not already have a challan.
func (s *Service) CreateChallan(ctx context.Context, in ChallanInput) (db.DeliveryChallan, error) {
	const op = "challan_create"
	in.DcNumber = strings.TrimSpace(in.DcNumber)
	if err := s.check(op, in); err != nil {
		return db.DeliveryChallan{}, err
	}
	if in.Status == "" {
		in.Status = ChallanGenerated
	}

	var row db.DeliveryChallan
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		mi, err := q.GetMaterialIssueForUpdate(ctx, in.TransferID)
		if err != nil {
			return wrapNotFound(op, "material issue "+in.TransferID.String(), err)
		}
		if mi.Status != StatusApproved {
			return &Error{Kind: KindInvalidTransition, Op: op, Message: "delivery challan requires an approved material issue, got " + mi.Status}
		}
		if mi.IsDcGenerated {
			return &Error{Kind: KindInvalidTransition, Op: op, Message: "material issue already has a delivery challan"}
		}

		if !in.SenderType.Valid {
			in.SenderType = textOf(mi.SenderType)
		}
		if !in.SenderID.Valid {
			in.SenderID = mi.SenderReferenceID
		}
		if !in.ReceiverID.Valid {
			if err := defaultReceiverTx(ctx, q, mi, &in); err != nil {
				return err
			}
		}

		row, err = q.CreateDeliveryChallan(ctx, db.CreateDeliveryChallanParams{
			DcNumber:           in.DcNumber,
			SenderType:         in.SenderType,
			SenderID:           in.SenderID,
			ReceiverType:       in.ReceiverType,
			ReceiverID:         in.ReceiverID,
			DcDate:             in.DcDate,
			DcNote:             in.DcNote,
			ReceivedDate:       in.ReceivedDate,
			Status:             in.Status,
			VehicleNo:          in.VehicleNo,
			DriverName:         in.DriverName,
			DriverPhoneNumber:  in.DriverPhoneNumber,
			EwayBillNo:         in.EwayBillNo,
			EwayBillExpiryDate: in.EwayBillExpiryDate,
			TransferCost:       in.TransferCost,
			TransferID:         in.TransferID,
			IsActive:           boolOr(in.IsActive, true),
			ActorID:            s.actor(ctx),
		})
		if err != nil {
			return err
		}
		spanAttrs(ctx, attribute.String("challan.id", row.ID.String()), attribute.String("issue.id", mi.ID.String()))
		_, err = q.MarkMaterialIssueDcGenerated(ctx, db.IDActorParams{ID: mi.ID, ActorID: s.actor(ctx)})
		return err
	})
	if err != nil {
		return db.DeliveryChallan{}, err
	}
	s.logger.InfoContext(ctx, "delivery challan generated", "challan_id", row.ID, "dc_number", row.DcNumber, "issue_id", row.TransferID)
	return row, nil
}

// defaultReceiverTx takes the receiver from the issue's first item or transfer.
func defaultReceiverTx(ctx context.Context, q db.Querier, mi db.MaterialIssue, in *ChallanInput) error {
	if mi.IssuanceType == IssuanceProjectProject {
		transfers, err := q.ListP2PTransfersByIssuance(ctx, mi.ID)
		if err != nil {
			return err
		}
		if len(transfers) > 0 {
			in.ReceiverID = transfers[0].ReceivingProjectID
			if !in.ReceiverType.Valid {
				in.ReceiverType = textOf("project")
			}
		}
		return nil
	}
	items, err := q.ListMaterialIssueItemsByIssue(ctx, mi.ID)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		in.ReceiverID = items[0].ReceivingReferenceID
	}
	if !in.ReceiverType.Valid {
		in.ReceiverType = textOf(ReceiverWarehouse)
	}
	return nil
}

func (s *Service) GetChallan(ctx context.Context, id uuid.UUID) (db.DeliveryChallan, error) {
	row, err := s.store.GetDeliveryChallan(ctx, id)
	if err != nil {
		return db.DeliveryChallan{}, wrapNotFound("challan_get", "delivery challan", err)
	}
	return row, nil
}

// ListChallans lists live challans, optionally with one status.
func (s *Service) ListChallans(ctx context.Context, status string) ([]db.DeliveryChallan, error) {
	rows, err := s.store.ListDeliveryChallans(ctx, pgtype.Text{String: status, Valid: status != ""})
	return rows, wrap("challan_list", err)
}

// PatchChallanStatus sets any non-empty status.
func (s *Service) PatchChallanStatus(ctx context.Context, id uuid.UUID, status string) (db.DeliveryChallan, error) {
	const op = "challan_status"
	status = strings.TrimSpace(status)
	if status == "" {
		return db.DeliveryChallan{}, validationErr(op, "status is required")
	}
	var row db.DeliveryChallan
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.UpdateDeliveryChallanStatus(ctx, db.UpdateDeliveryChallanStatusParams{ID: id, Status: status, ActorID: s.actor(ctx)})
		return err
	})
	return row, err
}

// Party identifies the sender of a challan.
type Party struct {
	Type string        `json:"type"`
	ID   uuid.NullUUID `json:"id"`
	Name pgtype.Text   `json:"name"`
}

// ChallanHeader is shared by every transfer kind.
type ChallanHeader struct {
	DeliveryChallan db.DeliveryChallan `json:"delivery_challan"`
	Issue           db.MaterialIssue   `json:"issue"`
	IssuanceType    string             `json:"issuance_type"`
	Sender          Party              `json:"sender"`
	SenderWarehouse *db.Warehouse      `json:"sender_warehouse"`
}

// TransferKind is the issuance-type specific payload of a resolved challan.
// It is implemented by WarehouseKind, ProjectWarehouseKind and ProjectProjectKind.
type TransferKind interface {
	transferItems() any
}

// WarehouseKind is a warehouse-to-warehouse issue.
type WarehouseKind struct {
	Items []ChallanItem
}

// ProjectWarehouseKind returns stock from a project to a warehouse.
type ProjectWarehouseKind struct {
	Items []ChallanItem
}

// ProjectProjectKind moves stock between projects, fanned out per receiving BOM.
type ProjectProjectKind struct {
	Items []P2PItemView
}

func (k WarehouseKind) transferItems() any        { return k.Items }
func (k ProjectWarehouseKind) transferItems() any { return k.Items }
func (k ProjectProjectKind) transferItems() any   { return k.Items }

// ChallanItem is an issue item with its masters resolved. Which of the
// pointers are set depends on the transfer kind.
type ChallanItem struct {
	db.MaterialIssueItem
	ItemDetails       *db.Item      `json:"item_details"`
	SenderWarehouse   *db.Warehouse `json:"sender_warehouse"`
	ReceiverWarehouse *db.Warehouse `json:"receiver_warehouse"`
	Bom               *db.Bom       `json:"bom"`
	Spec              *db.BomSpec   `json:"spec"`
}

// ResolvedChallan is a challan re-derived from its issuance chain.
type ResolvedChallan struct {
	ChallanHeader
	Transfer TransferKind
}

func (r ResolvedChallan) MarshalJSON() ([]byte, error) {
	var items any = []ChallanItem{}
	if r.Transfer != nil {
		items = r.Transfer.transferItems()
	}
	return json.Marshal(struct {
		ChallanHeader
		Items any `json:"items"`
	}{r.ChallanHeader, items})
}

// ResolveChallan loads a challan and rebuilds its sender, receivers and items
// from the parent issue according to the issue's type.
func (s *Service) ResolveChallan(ctx context.Context, id uuid.UUID) (ResolvedChallan, error) {
	const op = "challan_resolve"
	ctx, span := s.tracer.Start(ctx, "ledger."+op)
	defer span.End()

	dc, err := s.GetChallan(ctx, id)
	if err != nil {
		return ResolvedChallan{}, err
	}
	mi, err := s.store.GetMaterialIssue(ctx, dc.TransferID)
	if err != nil {
		return ResolvedChallan{}, wrapNotFound(op, "material issue", err)
	}
	span.SetAttributes(attribute.String("issue.issuance_type", mi.IssuanceType))

	header := ChallanHeader{DeliveryChallan: dc, Issue: mi, IssuanceType: mi.IssuanceType}
	var kind TransferKind
	switch mi.IssuanceType {
	case IssuanceProjectProject:
		kind, err = s.resolveProjectProject(ctx, &header)
	case IssuanceProjectWarehouse:
		kind, err = s.resolveProjectWarehouse(ctx, &header)
	default:
		kind, err = s.resolveWarehouse(ctx, &header)
	}
	if err != nil {
		return ResolvedChallan{}, err
	}
	return ResolvedChallan{ChallanHeader: header, Transfer: kind}, nil
}

func (s *Service) sender(ctx context.Context, kind string, mi db.MaterialIssue) (Party, error) {
	name, err := s.partyName(ctx, kind, mi.SenderReferenceID)
	if err != nil {
		return Party{}, err
	}
	return Party{Type: kind, ID: mi.SenderReferenceID, Name: name}, nil
}

func (s *Service) resolveWarehouse(ctx context.Context, h *ChallanHeader) (TransferKind, error) {
	var err error
	if h.Sender, err = s.sender(ctx, "warehouse", h.Issue); err != nil {
		return nil, err
	}
	if h.SenderWarehouse, err = s.warehouse(ctx, h.Issue.SenderReferenceID); err != nil {
		return nil, err
	}
	items, err := s.challanItems(ctx, h.Issue.ID, func(ci *ChallanItem) error {
		ci.SenderWarehouse = h.SenderWarehouse
		return nil
	})
	if err != nil {
		return nil, err
	}
	return WarehouseKind{Items: items}, nil
}

func (s *Service) resolveProjectWarehouse(ctx context.Context, h *ChallanHeader) (TransferKind, error) {
	var err error
	if h.Sender, err = s.sender(ctx, "project", h.Issue); err != nil {
		return nil, err
	}
	items, err := s.challanItems(ctx, h.Issue.ID, func(ci *ChallanItem) error {
		var err error
		if ci.Bom, err = s.bom(ctx, ci.BomID); err != nil {
			return err
		}
		ci.Spec, err = s.spec(ctx, ci.SpecID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ProjectWarehouseKind{Items: items}, nil
}

func (s *Service) resolveProjectProject(ctx context.Context, h *ChallanHeader) (TransferKind, error) {
	var err error
	if h.Sender, err = s.sender(ctx, "project", h.Issue); err != nil {
		return nil, err
	}
	items, err := s.p2pViews(ctx, h.Issue.ID)
	if err != nil {
		return nil, err
	}
	return ProjectProjectKind{Items: items}, nil
}

// challanItems resolves the item master and receiving warehouse of each issue
// item, then lets the caller fill the kind-specific fields.
func (s *Service) challanItems(ctx context.Context, issueID uuid.UUID, fill func(*ChallanItem) error) ([]ChallanItem, error) {
	rows, err := s.store.ListMaterialIssueItemsByIssue(ctx, issueID)
	if err != nil {
		return nil, wrap("challan_items", err)
	}
	out := make([]ChallanItem, 0, len(rows))
	for _, r := range rows {
		ci := ChallanItem{MaterialIssueItem: r}
		if ci.ItemDetails, err = s.item(ctx, r.ItemID); err != nil {
			return nil, err
		}
		if ci.ReceiverWarehouse, err = s.warehouse(ctx, r.ReceivingReferenceID); err != nil {
			return nil, err
		}
		if err := fill(&ci); err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, nil
}
