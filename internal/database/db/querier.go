package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Querier interface {
	AddToAllocation(ctx context.Context, arg AddToAllocationParams) (ItemAllocation, error)
	AdjustInventoryQuantity(ctx context.Context, arg AdjustInventoryQuantityParams) (Inventory, error)
	ApproveSource(ctx context.Context, arg IDActorParams) (Source, error)
	ApproveSourceDetail(ctx context.Context, arg IDActorParams) (SourceDetail, error)
	ApproveSourceItemWarehouseDetail(ctx context.Context, arg IDActorParams) (SourceItemWarehouseDetail, error)
	CreateAllocation(ctx context.Context, arg CreateAllocationParams) (ItemAllocation, error)
	CreateAllocationDetail(ctx context.Context, arg CreateAllocationDetailParams) (ItemAllocationDetail, error)
	CreateDeliveryChallan(ctx context.Context, arg CreateDeliveryChallanParams) (DeliveryChallan, error)
	CreateInventory(ctx context.Context, arg CreateInventoryParams) (Inventory, error)
	CreateMaterialIssue(ctx context.Context, arg MaterialIssueParams) (MaterialIssue, error)
	CreateMaterialIssueItem(ctx context.Context, arg MaterialIssueItemParams) (MaterialIssueItem, error)
	CreateMaterialIssueItemSource(ctx context.Context, arg CreateMaterialIssueItemSourceParams) (MaterialIssueItemSource, error)
	CreateP2PItem(ctx context.Context, arg P2PItemParams) (MaterialIssuanceItemP2p, error)
	CreateP2PTransfer(ctx context.Context, arg P2PTransferParams) (MaterialIssuanceItemTransferP2p, error)
	CreateSource(ctx context.Context, arg SourceParams) (Source, error)
	CreateSourceDetail(ctx context.Context, arg SourceDetailParams) (SourceDetail, error)
	CreateSourceItemWarehouseDetail(ctx context.Context, arg CreateSourceItemWarehouseDetailParams) (SourceItemWarehouseDetail, error)
	FindAllocationByKeyForUpdate(ctx context.Context, arg AllocationKey) (ItemAllocation, error)
	FindAllocationDetailByKeyForUpdate(ctx context.Context, arg AllocationDetailKey) (ItemAllocationDetail, error)
	FindMaterialIssueItemByAllocationForUpdate(ctx context.Context, arg IssueItemKey) (MaterialIssueItem, error)
	GetAllocation(ctx context.Context, id uuid.UUID) (ItemAllocation, error)
	GetAllocationDetail(ctx context.Context, id uuid.UUID) (ItemAllocationDetail, error)
	GetAllocationRate(ctx context.Context, arg GetAllocationRateParams) (decimal.NullDecimal, error)
	GetBom(ctx context.Context, id uuid.UUID) (Bom, error)
	GetBomSpec(ctx context.Context, id uuid.UUID) (BomSpec, error)
	GetDeliveryChallan(ctx context.Context, id uuid.UUID) (DeliveryChallan, error)
	GetInventory(ctx context.Context, id uuid.UUID) (Inventory, error)
	GetInventoryForUpdate(ctx context.Context, id uuid.UUID) (Inventory, error)
	GetInventoryTrace(ctx context.Context, inventoryID uuid.UUID) (InventoryTraceRow, error)
	GetItem(ctx context.Context, id uuid.UUID) (Item, error)
	GetMaterialIssue(ctx context.Context, id uuid.UUID) (MaterialIssue, error)
	GetMaterialIssueForUpdate(ctx context.Context, id uuid.UUID) (MaterialIssue, error)
	GetMaterialIssueItem(ctx context.Context, id uuid.UUID) (MaterialIssueItem, error)
	GetP2PItem(ctx context.Context, id uuid.UUID) (MaterialIssuanceItemP2p, error)
	GetP2PItemForUpdate(ctx context.Context, id uuid.UUID) (MaterialIssuanceItemP2p, error)
	GetP2PTransfer(ctx context.Context, id uuid.UUID) (MaterialIssuanceItemTransferP2p, error)
	GetProject(ctx context.Context, id uuid.UUID) (Project, error)
	GetSource(ctx context.Context, id uuid.UUID) (Source, error)
	GetVendor(ctx context.Context, id uuid.UUID) (Vendor, error)
	GetWarehouse(ctx context.Context, id uuid.UUID) (Warehouse, error)
	ListAllocationDetails(ctx context.Context) ([]ItemAllocationDetail, error)
	ListAllocations(ctx context.Context) ([]ItemAllocation, error)
	ListAllocationsByBom(ctx context.Context, bomID uuid.UUID) ([]AllocationIssueRow, error)
	ListAllocationsByItem(ctx context.Context, itemID uuid.UUID) ([]AllocationBomRow, error)
	ListBomSpecsByBom(ctx context.Context, bomID uuid.UUID) ([]BomSpec, error)
	ListDcEligibleMaterialIssues(ctx context.Context) ([]MaterialIssueListRow, error)
	ListDeliveryChallans(ctx context.Context, status pgtype.Text) ([]DeliveryChallan, error)
	ListInventoryByStoreAndItem(ctx context.Context, arg ListInventoryByStoreAndItemParams) ([]Inventory, error)
	ListInventoryLocationsByItem(ctx context.Context, itemID uuid.UUID) ([]InventoryLocationRow, error)
	ListInventoryWithItem(ctx context.Context) ([]InventoryWithItemRow, error)
	ListItemTrackingRecords(ctx context.Context, arg ItemTrackingFilter) ([]TrackingRecord, error)
	ListMaterialIssueItems(ctx context.Context) ([]MaterialIssueItem, error)
	ListMaterialIssueItemsByIssue(ctx context.Context, issueID uuid.UUID) ([]MaterialIssueItem, error)
	ListMaterialIssues(ctx context.Context) ([]MaterialIssueListRow, error)
	ListOpenIssueItemSources(ctx context.Context, issueItemID uuid.UUID) ([]MaterialIssueItemSource, error)
	ListP2PItems(ctx context.Context) ([]MaterialIssuanceItemP2p, error)
	ListP2PItemsByIssuance(ctx context.Context, issuanceID uuid.UUID) ([]MaterialIssuanceItemP2p, error)
	ListP2PTransfers(ctx context.Context) ([]MaterialIssuanceItemTransferP2p, error)
	ListP2PTransfersByIssuance(ctx context.Context, issuanceID uuid.UUID) ([]MaterialIssuanceItemTransferP2p, error)
	ListSourceDestinationWarehouses(ctx context.Context, sourceIDs []uuid.UUID) ([]SourceDestinationRow, error)
	ListSourceDetails(ctx context.Context) ([]SourceDetail, error)
	ListSourceDetailsWithItem(ctx context.Context, sourceID uuid.UUID) ([]SourceDetailItemRow, error)
	ListSourceItemWarehouseDetails(ctx context.Context) ([]SourceItemWarehouseDetail, error)
	ListSourceTrackingRecords(ctx context.Context, sourceID uuid.UUID) ([]SourceTrackingRow, error)
	ListSources(ctx context.Context, sourceType pgtype.Text) ([]SourceListRow, error)
	ListSplitsBySource(ctx context.Context, sourceID uuid.UUID) ([]SplitWarehouseRow, error)
	ListSplitsBySourceDetail(ctx context.Context, sourceDetailID uuid.UUID) ([]SplitWarehouseRow, error)
	ListStoreTrackingRecords(ctx context.Context, arg StoreTrackingFilter) ([]StoreTrackingRow, error)
	MarkIssueItemSourcesReversed(ctx context.Context, issueItemID uuid.UUID) (int64, error)
	MarkMaterialIssueDcGenerated(ctx context.Context, arg IDActorParams) (MaterialIssue, error)
	RefreshP2PItemTotal(ctx context.Context, arg IDActorParams) (MaterialIssuanceItemP2p, error)
	SoftDeleteAllocation(ctx context.Context, arg IDActorParams) (ItemAllocation, error)
	SoftDeleteAllocationDetail(ctx context.Context, arg IDActorParams) (ItemAllocationDetail, error)
	SoftDeleteInventory(ctx context.Context, arg IDActorParams) (uuid.UUID, error)
	SoftDeleteMaterialIssue(ctx context.Context, arg IDActorParams) (MaterialIssue, error)
	SoftDeleteMaterialIssueItem(ctx context.Context, arg IDActorParams) (MaterialIssueItem, error)
	SoftDeleteSource(ctx context.Context, arg IDActorParams) (uuid.UUID, error)
	SoftDeleteSourceDetail(ctx context.Context, arg IDActorParams) (uuid.UUID, error)
	SoftDeleteSourceItemWarehouseDetail(ctx context.Context, arg IDActorParams) (uuid.UUID, error)
	SumP2PTransfers(ctx context.Context, issuanceItemID uuid.UUID) (decimal.Decimal, error)
	UpdateAllocation(ctx context.Context, arg UpdateAllocationParams) (ItemAllocation, error)
	UpdateAllocationDetail(ctx context.Context, arg UpdateAllocationDetailParams) (ItemAllocationDetail, error)
	UpdateDeliveryChallanStatus(ctx context.Context, arg UpdateDeliveryChallanStatusParams) (DeliveryChallan, error)
	UpdateInventory(ctx context.Context, arg UpdateInventoryParams) (Inventory, error)
	UpdateMaterialIssue(ctx context.Context, id uuid.UUID, arg MaterialIssueParams) (MaterialIssue, error)
	UpdateMaterialIssueItem(ctx context.Context, id uuid.UUID, arg MaterialIssueItemParams) (MaterialIssueItem, error)
	UpdateP2PItem(ctx context.Context, id uuid.UUID, arg P2PItemParams) (MaterialIssuanceItemP2p, error)
	UpdateP2PTransfer(ctx context.Context, id uuid.UUID, arg P2PTransferParams) (MaterialIssuanceItemTransferP2p, error)
	UpdateSource(ctx context.Context, id uuid.UUID, arg SourceParams) (Source, error)
	UpdateSourceDetail(ctx context.Context, id uuid.UUID, arg SourceDetailParams) (SourceDetail, error)
	UpdateSplitByDestination(ctx context.Context, arg UpdateSplitByDestinationParams) ([]SourceItemWarehouseDetail, error)
}

var _ Querier = (*Queries)(nil)
