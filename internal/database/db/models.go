package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Audit holds the bookkeeping columns every ledger table carries.
type Audit struct {
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	CreatedBy uuid.NullUUID      `json:"created_by"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
	UpdatedBy uuid.NullUUID      `json:"updated_by"`
	IsActive  bool               `json:"is_active"`
	IsDeleted bool               `json:"is_deleted"`
}

// AuditInfo exposes the audit columns of any row that embeds Audit.
func (a Audit) AuditInfo() Audit { return a }

func (a *Audit) scanTargets() []any {
	return []any{&a.CreatedAt, &a.CreatedBy, &a.UpdatedAt, &a.UpdatedBy, &a.IsActive, &a.IsDeleted}
}

// Item is the read-only item master row.
type Item struct {
	ID                                uuid.UUID           `json:"id"`
	ItemCode                          string              `json:"item_code"`
	ItemName                          string              `json:"item_name"`
	HsnCode                           pgtype.Text         `json:"hsn_code"`
	Description                       pgtype.Text         `json:"description"`
	UomID                             uuid.NullUUID       `json:"uom_id"`
	UomName                           pgtype.Text         `json:"uom_name"`
	CategoryID                        uuid.NullUUID       `json:"category_id"`
	BrandID                           uuid.NullUUID       `json:"brand_id"`
	MaterialType                      pgtype.Text         `json:"material_type"`
	UnitPrice                         decimal.NullDecimal `json:"unit_price"`
	InstallationRate                  decimal.NullDecimal `json:"installation_rate"`
	LatestLowestBasicSupplyRate       decimal.NullDecimal `json:"latest_lowest_basic_supply_rate"`
	LatestLowestBasicInstallationRate decimal.NullDecimal `json:"latest_lowest_basic_installation_rate"`
	LatestLowestNetRate               decimal.NullDecimal `json:"latest_lowest_net_rate"`
	SafetyStock                       decimal.NullDecimal `json:"safety_stock"`
	ReorderQuantity                   decimal.NullDecimal `json:"reorder_quantity"`
	InsuranceStatus                   pgtype.Text         `json:"insurance_status"`
}

type Warehouse struct {
	ID            uuid.UUID   `json:"warehouse_id"`
	WarehouseCode string      `json:"warehouse_code"`
	WarehouseName string      `json:"warehouse_name"`
	Address       pgtype.Text `json:"address"`
}

type Project struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	ProjectNumber  pgtype.Text `json:"project_number"`
	ProjectAddress pgtype.Text `json:"project_address"`
}

type Bom struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	ProjectID uuid.NullUUID `json:"project_id"`
}

type BomSpec struct {
	ID              uuid.UUID   `json:"id"`
	BomID           uuid.UUID   `json:"bom_id"`
	SpecDescription pgtype.Text `json:"spec_description"`
}

type Vendor struct {
	ID           uuid.UUID   `json:"id"`
	BusinessName string      `json:"business_name"`
	VendorNumber pgtype.Text `json:"vendor_number"`
}

// Inventory is one running balance of an item at a store, attributable to one source.
type Inventory struct {
	ID         uuid.UUID           `json:"id"`
	ItemID     uuid.UUID           `json:"item_id"`
	StoreID    uuid.UUID           `json:"store_id"`
	StoreType  string              `json:"store_type"`
	SourceID   uuid.NullUUID       `json:"source_id"`
	SourceType pgtype.Text         `json:"source_type"`
	Quantity   decimal.Decimal     `json:"quantity"`
	Rate       decimal.NullDecimal `json:"rate"`
	Status     string              `json:"status"`
	Audit
}

type Source struct {
	ID                      uuid.UUID           `json:"id"`
	SourceType              string              `json:"source_type"`
	SourceNumber            string              `json:"source_number"`
	InboundTriggerIssueID   uuid.NullUUID       `json:"inbound_trigger_issue_id"`
	InboundTriggerIssueType pgtype.Text         `json:"inbound_trigger_issue_type"`
	ReceiverProjectID       uuid.NullUUID       `json:"receiver_project_id"`
	SenderProjectID         uuid.NullUUID       `json:"sender_project_id"`
	SourceDate              pgtype.Date         `json:"source_date"`
	SenderWarehouseID       uuid.NullUUID       `json:"sender_warehouse_id"`
	ReceiverWarehouseID     uuid.NullUUID       `json:"receiver_warehouse_id"`
	VendorID                uuid.NullUUID       `json:"vendor_id"`
	InvoiceNumber           pgtype.Text         `json:"invoice_number"`
	InvoiceAmount           decimal.NullDecimal `json:"invoice_amount"`
	PoNumber                pgtype.Text         `json:"po_number"`
	DcNumber                pgtype.Text         `json:"dc_number"`
	GenerateQr              bool                `json:"generate_qr"`
	Status                  string              `json:"status"`
	Audit
}

type SourceDetail struct {
	ID                uuid.UUID           `json:"id"`
	SourceID          uuid.UUID           `json:"source_id"`
	ItemID            uuid.UUID           `json:"item_id"`
	ExpectedQuantity  decimal.NullDecimal `json:"expected_quantity"`
	RemainingQuantity decimal.NullDecimal `json:"remaining_quantity"`
	AcceptedQuantity  decimal.NullDecimal `json:"accepted_quantity"`
	RejectedQuantity  decimal.NullDecimal `json:"rejected_quantity"`
	LostQuantity      decimal.NullDecimal `json:"lost_quantity"`
	Rate              decimal.NullDecimal `json:"rate"`
	Comment           pgtype.Text         `json:"comment"`
	Audit
}

// SourceItemWarehouseDetail splits one source detail across destinations.
type SourceItemWarehouseDetail struct {
	ID               uuid.UUID           `json:"id"`
	SourceID         uuid.UUID           `json:"source_id"`
	SourceDetailID   uuid.UUID           `json:"source_detail_id"`
	ItemID           uuid.UUID           `json:"item_id"`
	WarehouseID      uuid.NullUUID       `json:"warehouse_id"`
	ProjectID        uuid.NullUUID       `json:"project_id"`
	SpecID           uuid.NullUUID       `json:"spec_id"`
	SenderBomID      uuid.NullUUID       `json:"sender_bom_id"`
	ReceiverBomID    uuid.NullUUID       `json:"receiver_bom_id"`
	ExpectedQuantity decimal.NullDecimal `json:"expected_quantity"`
	AcceptedQuantity decimal.NullDecimal `json:"accepted_quantity"`
	RejectedQuantity decimal.NullDecimal `json:"rejected_quantity"`
	LostQuantity     decimal.NullDecimal `json:"lost_quantity"`
	Note             pgtype.Text         `json:"note"`
	Audit
}

type ItemAllocation struct {
	ID           uuid.UUID           `json:"id"`
	ItemID       uuid.UUID           `json:"item_id"`
	BomID        uuid.UUID           `json:"bom_id"`
	ProjectID    uuid.NullUUID       `json:"project_id"`
	ItemName     pgtype.Text         `json:"item_name"`
	RequiredQty  decimal.Decimal     `json:"required_qty"`
	AllocatedQty decimal.Decimal     `json:"allocated_qty"`
	Rate         decimal.NullDecimal `json:"rate"`
	Audit
}

type ItemAllocationDetail struct {
	ID               uuid.UUID           `json:"id"`
	ItemAllocationID uuid.UUID           `json:"item_allocation_id"`
	SourceID         uuid.UUID           `json:"source_id"`
	AllocatedQty     decimal.Decimal     `json:"allocated_qty"`
	Rate             decimal.NullDecimal `json:"rate"`
	Audit
}

type MaterialIssue struct {
	ID                uuid.UUID     `json:"id"`
	IssueNumber       pgtype.Text   `json:"issue_number"`
	IssueDate         pgtype.Date   `json:"issue_date"`
	IssueExpectedDate pgtype.Date   `json:"issue_expected_date"`
	SenderType        string        `json:"sender_type"`
	IssuanceType      string        `json:"issuance_type"`
	SenderReferenceID uuid.NullUUID `json:"sender_reference_id"`
	Status            string        `json:"status"`
	IsDcGenerated     bool          `json:"is_dc_generated"`
	Remarks           pgtype.Text   `json:"remarks"`
	Audit
}

type MaterialIssueItem struct {
	ID                   uuid.UUID           `json:"id"`
	IssueID              uuid.UUID           `json:"issue_id"`
	ItemID               uuid.UUID           `json:"item_id"`
	IssuedQuantity       decimal.Decimal     `json:"issued_quantity"`
	BomID                uuid.NullUUID       `json:"bom_id"`
	SpecID               uuid.NullUUID       `json:"spec_id"`
	ReceivingReferenceID uuid.NullUUID       `json:"receiving_reference_id"`
	ReceiverType         pgtype.Text         `json:"receiver_type"`
	Rate                 decimal.NullDecimal `json:"rate"`
	ItemAllocationID     uuid.NullUUID       `json:"item_allocation_id"`
	Audit
}

// MaterialIssueItemSource records how much of one inventory row an issue item consumed.
// ReversedAt is set once the quantity has been credited back.
type MaterialIssueItemSource struct {
	ID          uuid.UUID          `json:"id"`
	IssueItemID uuid.UUID          `json:"issue_item_id"`
	InventoryID uuid.UUID          `json:"inventory_id"`
	Quantity    decimal.Decimal    `json:"quantity"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	ReversedAt  pgtype.Timestamptz `json:"reversed_at"`
}

type MaterialIssuanceItemP2p struct {
	ID                  uuid.UUID       `json:"id"`
	IssuanceID          uuid.UUID       `json:"issuance_id"`
	ItemID              uuid.UUID       `json:"item_id"`
	SendingBomID        uuid.UUID       `json:"sending_bom_id"`
	SendingSpecID       uuid.NullUUID   `json:"sending_spec_id"`
	AllocatedQty        decimal.Decimal `json:"allocated_qty"`
	TotalTransferredQty decimal.Decimal `json:"total_transferred_qty"`
	Audit
}

type MaterialIssuanceItemTransferP2p struct {
	ID                 uuid.UUID       `json:"id"`
	IssuanceItemID     uuid.UUID       `json:"issuance_item_id"`
	ReceivingBomID     uuid.UUID       `json:"receiving_bom_id"`
	ReceivingSpecID    uuid.NullUUID   `json:"receiving_spec_id"`
	ReceivingProjectID uuid.NullUUID   `json:"receiving_project_id"`
	TransferQty        decimal.Decimal `json:"transfer_qty"`
	Audit
}

type DeliveryChallan struct {
	ID                 uuid.UUID           `json:"id"`
	DcNumber           string              `json:"dc_number"`
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
	TransferCost       decimal.NullDecimal `json:"transfer_cost"`
	TransferID         uuid.UUID           `json:"transfer_id"`
	Audit
}
