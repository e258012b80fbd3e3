package ledger

import (
	"context"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// P2PItemInput is one item sent out of a project-to-project issue.
type P2PItemInput struct {
	IssuanceID    uuid.UUID       `json:"issuance_id" validate:"required"`
	ItemID        uuid.UUID       `json:"item_id" validate:"required"`
	SendingBomID  uuid.UUID       `json:"sending_bom_id" validate:"required"`
	SendingSpecID uuid.NullUUID   `json:"sending_spec_id"`
	AllocatedQty  decimal.Decimal `json:"allocated_qty" validate:"gte=0"`
	IsActive      *bool           `json:"is_active"`
}

// P2PTransferInput fans part of a P2P item out to one receiving BOM.
type P2PTransferInput struct {
	IssuanceItemID     uuid.UUID       `json:"issuance_item_id" validate:"required"`
	ReceivingBomID     uuid.UUID       `json:"receiving_bom_id" validate:"required"`
	ReceivingSpecID    uuid.NullUUID   `json:"receiving_spec_id"`
	ReceivingProjectID uuid.NullUUID   `json:"receiving_project_id"`
	TransferQty        decimal.Decimal `json:"transfer_qty" validate:"gt=0"`
	IsActive           *bool           `json:"is_active"`
}

// p2pIssueTx locks the parent issue and checks it is a pending project-to-project one.
func p2pIssueTx(ctx context.Context, q db.Querier, op string, issuanceID uuid.UUID) error {
	mi, err := pendingIssueTx(ctx, q, op, issuanceID)
	if err != nil {
		return err
	}
	if mi.IssuanceType != IssuanceProjectProject {
		return validationErr(op, "material issue %s is %s, not %s", issuanceID, mi.IssuanceType, IssuanceProjectProject)
	}
	return nil
}

// lockP2PItemTx locks the item's issue before the item itself, the same order
// the generic item paths use. checked remembers issues already locked.
func lockP2PItemTx(ctx context.Context, q db.Querier, op string, id uuid.UUID, checked map[uuid.UUID]bool) (db.MaterialIssuanceItemP2p, error) {
	item, err := q.GetP2PItem(ctx, id)
	if err != nil {
		return db.MaterialIssuanceItemP2p{}, wrapNotFound(op, "p2p item "+id.String(), err)
	}
	if !checked[item.IssuanceID] {
		if err := p2pIssueTx(ctx, q, op, item.IssuanceID); err != nil {
			return db.MaterialIssuanceItemP2p{}, err
		}
		checked[item.IssuanceID] = true
	}
	item, err = q.GetP2PItemForUpdate(ctx, id)
	if err != nil {
		return db.MaterialIssuanceItemP2p{}, wrapNotFound(op, "p2p item "+id.String(), err)
	}
	return item, nil
}

// CreateP2PItems inserts every item or none.
func (s *Service) CreateP2PItems(ctx context.Context, rows []P2PItemInput) ([]db.MaterialIssuanceItemP2p, error) {
	const op = "p2p_item_create_bulk"
	if len(rows) == 0 {
		return nil, validationErr(op, "expected a non-empty array of items")
	}
	for _, in := range rows {
		if err := s.check(op, in); err != nil {
			return nil, err
		}
	}

	actor := s.actor(ctx)
	out := make([]db.MaterialIssuanceItemP2p, 0, len(rows))
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		seen := map[uuid.UUID]bool{}
		for _, in := range rows {
			if !seen[in.IssuanceID] {
				if err := p2pIssueTx(ctx, q, op, in.IssuanceID); err != nil {
					return err
				}
				seen[in.IssuanceID] = true
			}
			row, err := q.CreateP2PItem(ctx, db.P2PItemParams{
				IssuanceID:    in.IssuanceID,
				ItemID:        in.ItemID,
				SendingBomID:  in.SendingBomID,
				SendingSpecID: in.SendingSpecID,
				AllocatedQty:  in.AllocatedQty,
				IsActive:      boolOr(in.IsActive, true),
				ActorID:       actor,
			})
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
	s.logger.InfoContext(ctx, "p2p items created", "rows", len(out))
	return out, nil
}

// UpdateP2PItems applies each patch. allocated_qty may not drop below what has
// already been transferred.
func (s *Service) UpdateP2PItems(ctx context.Context, updates []P2PItemUpdate) ([]db.MaterialIssuanceItemP2p, error) {
	const op = "p2p_item_update_bulk"
	if len(updates) == 0 {
		return nil, validationErr(op, "expected a non-empty array of updates")
	}
	for _, u := range updates {
		if u.ID == uuid.Nil {
			return nil, validationErr(op, "id is required for every update")
		}
		if u.AllocatedQty.Set && u.AllocatedQty.Value.IsNegative() {
			return nil, validationErr(op, "allocated_qty must be at least 0")
		}
	}

	actor := s.actor(ctx)
	out := make([]db.MaterialIssuanceItemP2p, 0, len(updates))
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		checked := map[uuid.UUID]bool{}
		for _, u := range updates {
			cur, err := lockP2PItemTx(ctx, q, op, u.ID, checked)
			if err != nil {
				return err
			}
			allocated := u.AllocatedQty.or(cur.AllocatedQty)
			if allocated.LessThan(cur.TotalTransferredQty) {
				return insufficientErr(op, "p2p item %s has %s transferred, allocated_qty cannot be %s", cur.ID, cur.TotalTransferredQty, allocated)
			}
			row, err := q.UpdateP2PItem(ctx, u.ID, db.P2PItemParams{
				IssuanceID:    cur.IssuanceID,
				ItemID:        cur.ItemID,
				SendingBomID:  cur.SendingBomID,
				SendingSpecID: u.SendingSpecID.or(cur.SendingSpecID),
				AllocatedQty:  allocated,
				IsActive:      u.IsActive.or(cur.IsActive),
				ActorID:       actor,
			})
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
	s.logger.InfoContext(ctx, "p2p items updated", "rows", len(out))
	return out, nil
}

// ListP2PItems lists live P2P items, optionally for one issue.
func (s *Service) ListP2PItems(ctx context.Context, issuanceID uuid.NullUUID) ([]db.MaterialIssuanceItemP2p, error) {
	const op = "p2p_item_list"
	var (
		rows []db.MaterialIssuanceItemP2p
		err  error
	)
	if issuanceID.Valid {
		rows, err = s.store.ListP2PItemsByIssuance(ctx, issuanceID.UUID)
	} else {
		rows, err = s.store.ListP2PItems(ctx)
	}
	return rows, wrap(op, err)
}

// settleP2PTotalsTx recomputes total_transferred_qty of each touched P2P item,
// failing when the transfers exceed its allocated_qty.
func (s *Service) settleP2PTotalsTx(ctx context.Context, q db.Querier, op string, items map[uuid.UUID]db.MaterialIssuanceItemP2p) error {
	for id, item := range items {
		sum, err := q.SumP2PTransfers(ctx, id)
		if err != nil {
			return err
		}
		if sum.GreaterThan(item.AllocatedQty) {
			return insufficientErr(op, "transfers of p2p item %s add up to %s, above allocated_qty %s", id, sum, item.AllocatedQty)
		}
		if _, err := q.RefreshP2PItemTotal(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)}); err != nil {
			return err
		}
		spanAttrs(ctx, attribute.String("p2p.item", id.String()), attribute.String("p2p.total", sum.String()))
	}
	return nil
}

// CreateP2PTransfers inserts every transfer or none and keeps the parents' totals current.
func (s *Service) CreateP2PTransfers(ctx context.Context, rows []P2PTransferInput) ([]db.MaterialIssuanceItemTransferP2p, error) {
	const op = "p2p_transfer_create_bulk"
	if len(rows) == 0 {
		return nil, validationErr(op, "expected a non-empty array of transfers")
	}
	for _, in := range rows {
		if err := s.check(op, in); err != nil {
			return nil, err
		}
	}

	actor := s.actor(ctx)
	out := make([]db.MaterialIssuanceItemTransferP2p, 0, len(rows))
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		parents := map[uuid.UUID]db.MaterialIssuanceItemP2p{}
		checked := map[uuid.UUID]bool{}
		for _, in := range rows {
			if _, ok := parents[in.IssuanceItemID]; !ok {
				parent, err := lockP2PItemTx(ctx, q, op, in.IssuanceItemID, checked)
				if err != nil {
					return err
				}
				parents[parent.ID] = parent
			}
			row, err := q.CreateP2PTransfer(ctx, db.P2PTransferParams{
				IssuanceItemID:     in.IssuanceItemID,
				ReceivingBomID:     in.ReceivingBomID,
				ReceivingSpecID:    in.ReceivingSpecID,
				ReceivingProjectID: in.ReceivingProjectID,
				TransferQty:        in.TransferQty,
				IsActive:           boolOr(in.IsActive, true),
				ActorID:            actor,
			})
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		return s.settleP2PTotalsTx(ctx, q, op, parents)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "p2p transfers created", "rows", len(out), "items", countParents(out))
	return out, nil
}

// UpdateP2PTransfers applies each patch and re-settles the totals of the affected items.
func (s *Service) UpdateP2PTransfers(ctx context.Context, updates []P2PTransferUpdate) ([]db.MaterialIssuanceItemTransferP2p, error) {
	const op = "p2p_transfer_update_bulk"
	if len(updates) == 0 {
		return nil, validationErr(op, "expected a non-empty array of updates")
	}
	for _, u := range updates {
		if u.ID == uuid.Nil {
			return nil, validationErr(op, "id is required for every update")
		}
		if u.TransferQty.Set && !u.TransferQty.Value.IsPositive() {
			return nil, validationErr(op, "transfer_qty must be greater than 0")
		}
		if u.ReceivingBomID.Set && u.ReceivingBomID.Value == uuid.Nil {
			return nil, validationErr(op, "receiving_bom_id cannot be cleared")
		}
	}

	actor := s.actor(ctx)
	out := make([]db.MaterialIssuanceItemTransferP2p, 0, len(updates))
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		parents := map[uuid.UUID]db.MaterialIssuanceItemP2p{}
		checked := map[uuid.UUID]bool{}
		for _, u := range updates {
			cur, err := q.GetP2PTransfer(ctx, u.ID)
			if err != nil {
				return wrapNotFound(op, "p2p transfer "+u.ID.String(), err)
			}
			if _, ok := parents[cur.IssuanceItemID]; !ok {
				parent, err := lockP2PItemTx(ctx, q, op, cur.IssuanceItemID, checked)
				if err != nil {
					return err
				}
				parents[parent.ID] = parent
			}
			row, err := q.UpdateP2PTransfer(ctx, u.ID, db.P2PTransferParams{
				IssuanceItemID:     cur.IssuanceItemID,
				ReceivingBomID:     u.ReceivingBomID.or(cur.ReceivingBomID),
				ReceivingSpecID:    u.ReceivingSpecID.or(cur.ReceivingSpecID),
				ReceivingProjectID: u.ReceivingProjectID.or(cur.ReceivingProjectID),
				TransferQty:        u.TransferQty.or(cur.TransferQty),
				IsActive:           u.IsActive.or(cur.IsActive),
				ActorID:            actor,
			})
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		return s.settleP2PTotalsTx(ctx, q, op, parents)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "p2p transfers updated", "rows", len(out))
	return out, nil
}

func (s *Service) ListP2PTransfers(ctx context.Context, issuanceID uuid.NullUUID) ([]db.MaterialIssuanceItemTransferP2p, error) {
	const op = "p2p_transfer_list"
	var (
		rows []db.MaterialIssuanceItemTransferP2p
		err  error
	)
	if issuanceID.Valid {
		rows, err = s.store.ListP2PTransfersByIssuance(ctx, issuanceID.UUID)
	} else {
		rows, err = s.store.ListP2PTransfers(ctx)
	}
	return rows, wrap(op, err)
}

func countParents(rows []db.MaterialIssuanceItemTransferP2p) int {
	seen := map[uuid.UUID]struct{}{}
	for _, r := range rows {
		seen[r.IssuanceItemID] = struct{}{}
	}
	return len(seen)
}

// P2PTransferView is a transfer with its receiving project, BOM and spec named.
type P2PTransferView struct {
	db.MaterialIssuanceItemTransferP2p
	ReceivingProjectName pgtype.Text `json:"receiving_project_name"`
	ReceivingBomName     pgtype.Text `json:"receiving_bom_name"`
	ReceivingSpecName    pgtype.Text `json:"receiving_spec_name"`
}

// P2PItemView is a P2P item with display names, the sending allocation's rate
// and its transfers.
type P2PItemView struct {
	db.MaterialIssuanceItemP2p
	ItemDetails       *db.Item            `json:"item_details"`
	SendingBomName    pgtype.Text         `json:"sending_bom_name"`
	SendingSpecName   pgtype.Text         `json:"sending_spec_name"`
	Rate              decimal.NullDecimal `json:"rate"`
	ReceiverWarehouse *db.Warehouse       `json:"receiver_warehouse"`
	Transfers         []P2PTransferView   `json:"transfers"`
}

func (s *Service) p2pViews(ctx context.Context, issuanceID uuid.UUID) ([]P2PItemView, error) {
	const op = "p2p_views"
	items, err := s.store.ListP2PItemsByIssuance(ctx, issuanceID)
	if err != nil {
		return nil, wrap(op, err)
	}
	transfers, err := s.store.ListP2PTransfersByIssuance(ctx, issuanceID)
	if err != nil {
		return nil, wrap(op, err)
	}
	_, byItem := groupOrdered(transfers, func(t db.MaterialIssuanceItemTransferP2p) uuid.UUID { return t.IssuanceItemID })

	out := make([]P2PItemView, 0, len(items))
	for _, it := range items {
		v := P2PItemView{MaterialIssuanceItemP2p: it, Transfers: []P2PTransferView{}}
		if v.ItemDetails, err = s.item(ctx, it.ItemID); err != nil {
			return nil, err
		}
		bom, err := s.bom(ctx, valid(it.SendingBomID))
		if err != nil {
			return nil, err
		}
		if bom != nil {
			v.SendingBomName = textOf(bom.Name)
		}
		spec, err := s.spec(ctx, it.SendingSpecID)
		if err != nil {
			return nil, err
		}
		if spec != nil {
			v.SendingSpecName = spec.SpecDescription
		}
		v.Rate, err = s.store.GetAllocationRate(ctx, db.GetAllocationRateParams{ItemID: it.ItemID, BomID: it.SendingBomID})
		if err != nil && KindOf(wrap(op, err)) != KindNotFound {
			return nil, wrap(op, err)
		}

		for _, tr := range byItem[it.ID] {
			tv := P2PTransferView{MaterialIssuanceItemTransferP2p: tr}
			if tv.ReceivingProjectName, err = s.partyName(ctx, "project", tr.ReceivingProjectID); err != nil {
				return nil, err
			}
			rb, err := s.bom(ctx, valid(tr.ReceivingBomID))
			if err != nil {
				return nil, err
			}
			if rb != nil {
				tv.ReceivingBomName = textOf(rb.Name)
			}
			rs, err := s.spec(ctx, tr.ReceivingSpecID)
			if err != nil {
				return nil, err
			}
			if rs != nil {
				tv.ReceivingSpecName = rs.SpecDescription
			}
			v.Transfers = append(v.Transfers, tv)
		}
		out = append(out, v)
	}
	return out, nil
}
