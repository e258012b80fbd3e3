package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// Issuance types.
const (
	IssuanceWarehouse        = "warehouse"
	IssuanceProjectWarehouse = "project-warehouse"
	IssuanceProjectProject   = "project-project"
)

// Material issue statuses. DC generation is tracked by is_dc_generated, not a status.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// patchTransitions are the status moves allowed through PatchIssue.
var patchTransitions = map[string][]string{
	StatusPending: {StatusApproved, StatusCancelled},
}

// rejectFrom are the statuses RejectIssue accepts.
var rejectFrom = []string{StatusPending, StatusApproved}

func allowed(list []string, status string) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

// IssueInput creates a material issue. New issues always start pending.
type IssueInput struct {
	IssueNumber       pgtype.Text   `json:"issue_number"`
	IssueDate         pgtype.Date   `json:"issue_date"`
	IssueExpectedDate pgtype.Date   `json:"issue_expected_date"`
	SenderType        string        `json:"sender_type" validate:"omitempty,oneof=warehouse project"`
	IssuanceType      string        `json:"issuance_type" validate:"omitempty,oneof=warehouse project-warehouse project-project"`
	SenderReferenceID uuid.NullUUID `json:"sender_reference_id"`
	Remarks           pgtype.Text   `json:"remarks"`
	IsActive          *bool         `json:"is_active"`
}

func (in *IssueInput) normalize() {
	in.SenderType = strings.ToLower(strings.TrimSpace(in.SenderType))
	in.IssuanceType = strings.ToLower(strings.TrimSpace(in.IssuanceType))
	if in.SenderType == "" {
		in.SenderType = "warehouse"
	}
	if in.IssuanceType == "" {
		in.IssuanceType = IssuanceWarehouse
	}
}

func issueParams(cur db.MaterialIssue, actor uuid.UUID) db.MaterialIssueParams {
	return db.MaterialIssueParams{
		IssueNumber:       cur.IssueNumber,
		IssueDate:         cur.IssueDate,
		IssueExpectedDate: cur.IssueExpectedDate,
		SenderType:        cur.SenderType,
		IssuanceType:      cur.IssuanceType,
		SenderReferenceID: cur.SenderReferenceID,
		Status:            cur.Status,
		Remarks:           cur.Remarks,
		IsActive:          cur.IsActive,
		ActorID:           actor,
	}
}

func (s *Service) CreateIssue(ctx context.Context, in IssueInput) (db.MaterialIssue, error) {
	const op = "issue_create"
	in.normalize()
	if err := s.check(op, in); err != nil {
		return db.MaterialIssue{}, err
	}
	var row db.MaterialIssue
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.CreateMaterialIssue(ctx, db.MaterialIssueParams{
			IssueNumber:       in.IssueNumber,
			IssueDate:         in.IssueDate,
			IssueExpectedDate: in.IssueExpectedDate,
			SenderType:        in.SenderType,
			IssuanceType:      in.IssuanceType,
			SenderReferenceID: in.SenderReferenceID,
			Status:            StatusPending,
			Remarks:           in.Remarks,
			IsActive:          boolOr(in.IsActive, true),
			ActorID:           s.actor(ctx),
		})
		return err
	})
	if err == nil {
		s.logger.InfoContext(ctx, "material issue created", "issue_id", row.ID, "issuance_type", row.IssuanceType)
	}
	return row, err
}

func (s *Service) GetIssue(ctx context.Context, id uuid.UUID) (db.MaterialIssue, error) {
	row, err := s.store.GetMaterialIssue(ctx, id)
	if err != nil {
		return db.MaterialIssue{}, wrapNotFound("issue_get", "material issue", err)
	}
	return row, nil
}

func (s *Service) ListIssues(ctx context.Context) ([]db.MaterialIssueListRow, error) {
	rows, err := s.store.ListMaterialIssues(ctx)
	return rows, wrap("issue_list", err)
}

// ListDcEligible lists approved issues that have no delivery challan yet.
func (s *Service) ListDcEligible(ctx context.Context) ([]db.MaterialIssueListRow, error) {
	rows, err := s.store.ListDcEligibleMaterialIssues(ctx)
	return rows, wrap("issue_list_dc_eligible", err)
}

// PatchIssue applies the allow-listed fields of p. A status change must follow
// the state machine; cancelling credits every open breakdown back to inventory.
func (s *Service) PatchIssue(ctx context.Context, id uuid.UUID, p IssuePatch) (db.MaterialIssue, error) {
	const op = "issue_patch"
	if p.IssuanceType.Set && !allowed([]string{IssuanceWarehouse, IssuanceProjectWarehouse, IssuanceProjectProject}, p.IssuanceType.Value) {
		return db.MaterialIssue{}, validationErr(op, "issuance_type must be one of: warehouse project-warehouse project-project")
	}

	var (
		row      db.MaterialIssue
		credited = decimal.Zero
	)
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		cur, err := q.GetMaterialIssueForUpdate(ctx, id)
		if err != nil {
			return wrapNotFound(op, "material issue", err)
		}

		if p.IssuanceType.Set && p.IssuanceType.Value != cur.IssuanceType {
			if err := issuanceTypeChangeTx(ctx, q, op, cur); err != nil {
				return err
			}
		}

		next := p.Status.or(cur.Status)
		if next != cur.Status {
			if !allowed(patchTransitions[cur.Status], next) {
				return transitionErr(op, cur.Status, next)
			}
			spanAttrs(ctx, attribute.String("issue.status.from", cur.Status), attribute.String("issue.status.to", next))
		}
		if next == StatusCancelled && cur.Status != StatusCancelled {
			if credited, err = s.reverseIssueTx(ctx, q, op, id); err != nil {
				return err
			}
		}

		params := issueParams(cur, s.actor(ctx))
		params.IssueDate = p.IssueDate.or(cur.IssueDate)
		params.IssueExpectedDate = p.IssueExpectedDate.or(cur.IssueExpectedDate)
		params.SenderType = p.SenderType.or(cur.SenderType)
		params.IssuanceType = p.IssuanceType.or(cur.IssuanceType)
		params.SenderReferenceID = p.SenderReferenceID.or(cur.SenderReferenceID)
		params.Status = next
		params.Remarks = p.Remarks.or(cur.Remarks)
		row, err = q.UpdateMaterialIssue(ctx, id, params)
		return err
	})
	if err != nil {
		return db.MaterialIssue{}, err
	}
	if credited.IsPositive() {
		s.moved("credit", credited)
		s.logger.InfoContext(ctx, "material issue cancelled", "issue_id", id, "credited", credited.String())
	}
	return row, nil
}

// issuanceTypeChangeTx refuses to retype an issue that already holds items,
// since generic and P2P items are read through different shapes.
func issuanceTypeChangeTx(ctx context.Context, q db.Querier, op string, cur db.MaterialIssue) error {
	items, err := q.ListMaterialIssueItemsByIssue(ctx, cur.ID)
	if err != nil {
		return err
	}
	p2p, err := q.ListP2PItemsByIssuance(ctx, cur.ID)
	if err != nil {
		return err
	}
	if n := len(items) + len(p2p); n > 0 {
		return &Error{
			Kind:    KindInvalidTransition,
			Op:      op,
			Message: fmt.Sprintf("material issue has %d items; issuance_type cannot change from %s", n, cur.IssuanceType),
		}
	}
	return nil
}

// RejectIssue credits every open breakdown entry of the issue's items back to
// inventory, marks them reversed and sets the status to rejected, in one transaction.
func (s *Service) RejectIssue(ctx context.Context, id uuid.UUID) (db.MaterialIssue, error) {
	const op = "issue_reject"
	var (
		row      db.MaterialIssue
		credited decimal.Decimal
	)
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		cur, err := q.GetMaterialIssueForUpdate(ctx, id)
		if err != nil {
			return wrapNotFound(op, "material issue", err)
		}
		if !allowed(rejectFrom, cur.Status) {
			return transitionErr(op, cur.Status, StatusRejected)
		}
		if cur.IsDcGenerated {
			return &Error{Kind: KindInvalidTransition, Op: op, Message: "material issue already has a delivery challan"}
		}

		if credited, err = s.reverseIssueTx(ctx, q, op, id); err != nil {
			return err
		}
		params := issueParams(cur, s.actor(ctx))
		params.Status = StatusRejected
		row, err = q.UpdateMaterialIssue(ctx, id, params)
		return err
	})
	if err != nil {
		return db.MaterialIssue{}, err
	}
	s.moved("credit", credited)
	s.logger.InfoContext(ctx, "material issue rejected", "issue_id", id, "credited", credited.String())
	return row, nil
}

// DeleteIssue soft-deletes a pending issue after crediting its items back.
func (s *Service) DeleteIssue(ctx context.Context, id uuid.UUID) (db.MaterialIssue, error) {
	const op = "issue_delete"
	var (
		row      db.MaterialIssue
		credited decimal.Decimal
	)
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		cur, err := q.GetMaterialIssueForUpdate(ctx, id)
		if err != nil {
			return wrapNotFound(op, "material issue", err)
		}
		if cur.Status == StatusPending {
			if credited, err = s.reverseIssueTx(ctx, q, op, id); err != nil {
				return err
			}
		} else if cur.Status == StatusApproved {
			return &Error{Kind: KindInvalidTransition, Op: op, Message: "an approved material issue must be rejected, not deleted"}
		}
		row, err = q.SoftDeleteMaterialIssue(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	if err != nil {
		return db.MaterialIssue{}, err
	}
	s.moved("credit", credited)
	return row, nil
}

// reverseIssueTx credits back the open breakdown of every live item of an issue.
func (s *Service) reverseIssueTx(ctx context.Context, q db.Querier, op string, issueID uuid.UUID) (decimal.Decimal, error) {
	items, err := q.ListMaterialIssueItemsByIssue(ctx, issueID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, it := range items {
		n, err := s.reverseItemTx(ctx, q, op, it.ID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(n)
	}
	spanAttrs(ctx, attribute.Int("issue.items", len(items)), attribute.String("issue.credited", total.String()))
	return total, nil
}

// reverseItemTx credits every open breakdown entry of one issue item and marks them reversed.
func (s *Service) reverseItemTx(ctx context.Context, q db.Querier, op string, issueItemID uuid.UUID) (decimal.Decimal, error) {
	open, err := q.ListOpenIssueItemSources(ctx, issueItemID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, src := range open {
		if _, err := s.creditTx(ctx, q, op, src.InventoryID, src.Quantity); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(src.Quantity)
	}
	if len(open) > 0 {
		if _, err := q.MarkIssueItemSourcesReversed(ctx, issueItemID); err != nil {
			return decimal.Zero, err
		}
	}
	return total, nil
}

// SourceShare is one entry of an issue item's breakdown: how much was taken
// from which inventory row.
type SourceShare struct {
	InventoryID uuid.UUID       `json:"inventory_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// IssueItemInput creates or overwrites an issue item. When Sources is given its
// quantities must add up to IssuedQuantity and each share is debited from inventory.
type IssueItemInput struct {
	IssueID              uuid.UUID           `json:"issue_id" validate:"required"`
	ItemID               uuid.UUID           `json:"item_id" validate:"required"`
	IssuedQuantity       decimal.Decimal     `json:"issued_quantity" validate:"gt=0"`
	BomID                uuid.NullUUID       `json:"bom_id"`
	SpecID               uuid.NullUUID       `json:"spec_id"`
	ReceivingReferenceID uuid.NullUUID       `json:"receiving_reference_id"`
	ReceiverType         pgtype.Text         `json:"receiver_type"`
	Rate                 decimal.NullDecimal `json:"rate" validate:"omitempty,gte=0"`
	ItemAllocationID     uuid.NullUUID       `json:"item_allocation_id"`
	IsActive             *bool               `json:"is_active"`

	Sources []SourceShare `json:"sources" validate:"dive"`
}

func (in IssueItemInput) verify(op string) error {
	if err := checkReceiverType(op, in.ReceiverType); err != nil {
		return err
	}
	if len(in.Sources) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, sh := range in.Sources {
		sum = sum.Add(sh.Quantity)
	}
	if !sum.Equal(in.IssuedQuantity) {
		return validationErr(op, "sources add up to %s but issued_quantity is %s", sum, in.IssuedQuantity)
	}
	return nil
}

func (in IssueItemInput) params(actor uuid.UUID, isActive bool) db.MaterialIssueItemParams {
	return db.MaterialIssueItemParams{
		IssueID:              in.IssueID,
		ItemID:               in.ItemID,
		IssuedQuantity:       in.IssuedQuantity,
		BomID:                in.BomID,
		SpecID:               in.SpecID,
		ReceivingReferenceID: in.ReceivingReferenceID,
		ReceiverType:         textOf(ReceiverWarehouse),
		Rate:                 in.Rate,
		ItemAllocationID:     in.ItemAllocationID,
		IsActive:             boolOr(in.IsActive, isActive),
		ActorID:              actor,
	}
}

// ReceiverWarehouse is the only receiver a generic issue item can name: warehouse
// and project-warehouse issues both deliver into a warehouse.
const ReceiverWarehouse = "warehouse"

func checkReceiverType(op string, t pgtype.Text) error {
	if !t.Valid {
		return nil
	}
	if v := strings.TrimSpace(t.String); v != "" && !strings.EqualFold(v, ReceiverWarehouse) {
		return validationErr(op, "receiver_type must be %s, got %q", ReceiverWarehouse, v)
	}
	return nil
}

// IssueItemView is an issue item with its recorded breakdown.
type IssueItemView struct {
	db.MaterialIssueItem
	Sources []db.MaterialIssueItemSource `json:"sources"`
}

// pendingIssueTx locks the issue and fails unless its items may still change.
func pendingIssueTx(ctx context.Context, q db.Querier, op string, issueID uuid.UUID) (db.MaterialIssue, error) {
	mi, err := q.GetMaterialIssueForUpdate(ctx, issueID)
	if err != nil {
		return db.MaterialIssue{}, wrapNotFound(op, "material issue "+issueID.String(), err)
	}
	if mi.Status != StatusPending {
		return db.MaterialIssue{}, &Error{
			Kind:    KindInvalidTransition,
			Op:      op,
			Message: fmt.Sprintf("material issue is %s; items can only change while pending", mi.Status),
		}
	}
	return mi, nil
}

// genericIssueTx is pendingIssueTx for issues whose items live in the generic
// item table. Project-to-project issues take P2P items only.
func genericIssueTx(ctx context.Context, q db.Querier, op string, issueID uuid.UUID) error {
	mi, err := pendingIssueTx(ctx, q, op, issueID)
	if err != nil {
		return err
	}
	if mi.IssuanceType == IssuanceProjectProject {
		return validationErr(op, "material issue %s is %s; use the p2p item endpoints", issueID, mi.IssuanceType)
	}
	return nil
}

// debitSharesTx takes each share out of inventory and records it against the issue item.
func (s *Service) debitSharesTx(ctx context.Context, q db.Querier, op string, issueItemID, itemID uuid.UUID, shares []SourceShare) ([]db.MaterialIssueItemSource, error) {
	out := make([]db.MaterialIssueItemSource, 0, len(shares))
	for _, sh := range shares {
		inv, err := s.debitTx(ctx, q, op, sh.InventoryID, sh.Quantity)
		if err != nil {
			return nil, err
		}
		if inv.ItemID != itemID {
			return nil, validationErr(op, "inventory %s holds a different item", sh.InventoryID)
		}
		rec, err := q.CreateMaterialIssueItemSource(ctx, db.CreateMaterialIssueItemSourceParams{
			IssueItemID: issueItemID,
			InventoryID: sh.InventoryID,
			Quantity:    sh.Quantity,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func sharesTotal(shares []SourceShare) decimal.Decimal {
	total := decimal.Zero
	for _, sh := range shares {
		total = total.Add(sh.Quantity)
	}
	return total
}

// CreateIssueItem adds an item to a pending issue and debits its breakdown.
func (s *Service) CreateIssueItem(ctx context.Context, in IssueItemInput) (IssueItemView, error) {
	const op = "issue_item_create"
	if err := s.check(op, in); err != nil {
		return IssueItemView{}, err
	}
	if err := in.verify(op); err != nil {
		return IssueItemView{}, err
	}

	var view IssueItemView
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		if err := genericIssueTx(ctx, q, op, in.IssueID); err != nil {
			return err
		}
		row, err := q.CreateMaterialIssueItem(ctx, in.params(s.actor(ctx), true))
		if err != nil {
			return err
		}
		view.MaterialIssueItem = row
		view.Sources, err = s.debitSharesTx(ctx, q, op, row.ID, row.ItemID, in.Sources)
		return err
	})
	if err != nil {
		return IssueItemView{}, err
	}
	s.moved("debit", sharesTotal(in.Sources))
	s.logger.InfoContext(ctx, "material issue item created", "issue_id", in.IssueID, "issue_item_id", view.ID, "sources", len(view.Sources))
	return view, nil
}

func (s *Service) GetIssueItem(ctx context.Context, id uuid.UUID) (db.MaterialIssueItem, error) {
	row, err := s.store.GetMaterialIssueItem(ctx, id)
	if err != nil {
		return db.MaterialIssueItem{}, wrapNotFound("issue_item_get", "material issue item", err)
	}
	return row, nil
}

func (s *Service) ListIssueItems(ctx context.Context) ([]db.MaterialIssueItem, error) {
	rows, err := s.store.ListMaterialIssueItems(ctx)
	return rows, wrap("issue_item_list", err)
}

// PatchIssueItem changes destination and pricing columns of an item on a
// pending issue. Quantities go through BulkUpsertIssueItems.
func (s *Service) PatchIssueItem(ctx context.Context, id uuid.UUID, p IssueItemPatch) (db.MaterialIssueItem, error) {
	const op = "issue_item_patch"
	if p.ReceiverType.Set {
		if err := checkReceiverType(op, p.ReceiverType.Value); err != nil {
			return db.MaterialIssueItem{}, err
		}
	}
	var row db.MaterialIssueItem
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		cur, err := q.GetMaterialIssueItem(ctx, id)
		if err != nil {
			return wrapNotFound(op, "material issue item", err)
		}
		if err := genericIssueTx(ctx, q, op, cur.IssueID); err != nil {
			return err
		}
		row, err = q.UpdateMaterialIssueItem(ctx, id, db.MaterialIssueItemParams{
			IssueID:              cur.IssueID,
			ItemID:               cur.ItemID,
			IssuedQuantity:       cur.IssuedQuantity,
			BomID:                p.BomID.or(cur.BomID),
			SpecID:               p.SpecID.or(cur.SpecID),
			ReceivingReferenceID: p.ReceivingReferenceID.or(cur.ReceivingReferenceID),
			ReceiverType:         textOf(ReceiverWarehouse),
			Rate:                 p.Rate.or(cur.Rate),
			ItemAllocationID:     cur.ItemAllocationID,
			IsActive:             cur.IsActive,
			ActorID:              s.actor(ctx),
		})
		return err
	})
	return row, err
}

// DeleteIssueItem credits the item's breakdown back and soft-deletes it.
func (s *Service) DeleteIssueItem(ctx context.Context, id uuid.UUID) (db.MaterialIssueItem, error) {
	const op = "issue_item_delete"
	var (
		row      db.MaterialIssueItem
		credited decimal.Decimal
	)
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		cur, err := q.GetMaterialIssueItem(ctx, id)
		if err != nil {
			return wrapNotFound(op, "material issue item", err)
		}
		if _, err := pendingIssueTx(ctx, q, op, cur.IssueID); err != nil {
			return err
		}
		if credited, err = s.reverseItemTx(ctx, q, op, id); err != nil {
			return err
		}
		row, err = q.SoftDeleteMaterialIssueItem(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	if err != nil {
		return db.MaterialIssueItem{}, err
	}
	s.moved("credit", credited)
	return row, nil
}

// BulkUpsertIssueItems writes each row keyed on (item_allocation_id, item_id).
// An existing row is overwritten: its open breakdown is credited back and the
// new one debited, so repeating a submission leaves the latest quantities.
func (s *Service) BulkUpsertIssueItems(ctx context.Context, rows []IssueItemInput) ([]IssueItemView, error) {
	const op = "issue_item_bulk_upsert"
	if len(rows) == 0 {
		return nil, validationErr(op, "expected a non-empty array of issue items")
	}
	for _, in := range rows {
		if err := s.check(op, in); err != nil {
			return nil, err
		}
		if !in.ItemAllocationID.Valid {
			return nil, validationErr(op, "item_allocation_id is required")
		}
		if err := in.verify(op); err != nil {
			return nil, err
		}
	}

	actor := s.actor(ctx)
	out := make([]IssueItemView, 0, len(rows))
	var (
		credited = decimal.Zero
		debited  = decimal.Zero
		updated  int
	)
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		checked := map[uuid.UUID]bool{}
		pending := func(issueID uuid.UUID) error {
			if checked[issueID] {
				return nil
			}
			if err := genericIssueTx(ctx, q, op, issueID); err != nil {
				return err
			}
			checked[issueID] = true
			return nil
		}

		for _, in := range rows {
			if err := pending(in.IssueID); err != nil {
				return err
			}
			cur, err := q.FindMaterialIssueItemByAllocationForUpdate(ctx, db.IssueItemKey{ItemAllocationID: in.ItemAllocationID.UUID, ItemID: in.ItemID})
			var row db.MaterialIssueItem
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				row, err = q.CreateMaterialIssueItem(ctx, in.params(actor, true))
				if err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := pending(cur.IssueID); err != nil {
					return err
				}
				n, err := s.reverseItemTx(ctx, q, op, cur.ID)
				if err != nil {
					return err
				}
				credited = credited.Add(n)
				row, err = q.UpdateMaterialIssueItem(ctx, cur.ID, in.params(actor, cur.IsActive))
				if err != nil {
					return err
				}
				updated++
			}

			sources, err := s.debitSharesTx(ctx, q, op, row.ID, row.ItemID, in.Sources)
			if err != nil {
				return err
			}
			debited = debited.Add(sharesTotal(in.Sources))
			out = append(out, IssueItemView{MaterialIssueItem: row, Sources: sources})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if credited.IsPositive() {
		s.moved("credit", credited)
	}
	s.moved("debit", debited)
	s.logger.InfoContext(ctx, "material issue items upserted", "rows", len(out), "overwritten", updated)
	return out, nil
}

// IssueDetailItem is an issue item with display names resolved from the masters.
type IssueDetailItem struct {
	db.MaterialIssueItem
	ReceiverName pgtype.Text `json:"receiver_name"`
	ItemName     pgtype.Text `json:"item_name"`
	ItemCode     pgtype.Text `json:"item_code"`
	HsnCode      pgtype.Text `json:"hsn_code"`
	UomName      pgtype.Text `json:"uom_name"`
	BomName      pgtype.Text `json:"bom_name"`
}

// IssueDetail is one material issue with its items. Project-to-project issues
// carry their P2P items instead.
type IssueDetail struct {
	db.MaterialIssue
	SenderName pgtype.Text       `json:"sender_name"`
	Items      []IssueDetailItem `json:"items"`
	P2PItems   []P2PItemView     `json:"p2p_items,omitempty"`
}

func (s *Service) IssueDetail(ctx context.Context, id uuid.UUID) (IssueDetail, error) {
	const op = "issue_detail"
	mi, err := s.GetIssue(ctx, id)
	if err != nil {
		return IssueDetail{}, err
	}
	out := IssueDetail{MaterialIssue: mi}
	if out.SenderName, err = s.partyName(ctx, mi.SenderType, mi.SenderReferenceID); err != nil {
		return IssueDetail{}, err
	}

	if mi.IssuanceType == IssuanceProjectProject {
		out.Items = []IssueDetailItem{}
		if out.P2PItems, err = s.p2pViews(ctx, id); err != nil {
			return IssueDetail{}, err
		}
		return out, nil
	}

	items, err := s.store.ListMaterialIssueItemsByIssue(ctx, id)
	if err != nil {
		return IssueDetail{}, wrap(op, err)
	}
	out.Items = make([]IssueDetailItem, 0, len(items))
	for _, it := range items {
		d := IssueDetailItem{MaterialIssueItem: it}
		if d.ReceiverName, err = s.partyName(ctx, ReceiverWarehouse, it.ReceivingReferenceID); err != nil {
			return IssueDetail{}, err
		}
		master, err := s.item(ctx, it.ItemID)
		if err != nil {
			return IssueDetail{}, err
		}
		if master != nil {
			d.ItemName, d.ItemCode = textOf(master.ItemName), textOf(master.ItemCode)
			d.HsnCode, d.UomName = master.HsnCode, master.UomName
		}
		bom, err := s.bom(ctx, it.BomID)
		if err != nil {
			return IssueDetail{}, err
		}
		if bom != nil {
			d.BomName = textOf(bom.Name)
		}
		out.Items = append(out.Items, d)
	}
	return out, nil
}

// partyName resolves a warehouse or project name; unknown ids resolve to null.
func (s *Service) partyName(ctx context.Context, kind string, id uuid.NullUUID) (pgtype.Text, error) {
	if strings.EqualFold(kind, "project") {
		p, err := s.project(ctx, id)
		if err != nil || p == nil {
			return pgtype.Text{}, err
		}
		return textOf(p.Name), nil
	}
	w, err := s.warehouse(ctx, id)
	if err != nil || w == nil {
		return pgtype.Text{}, err
	}
	return textOf(w.WarehouseName), nil
}

func textOf(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
