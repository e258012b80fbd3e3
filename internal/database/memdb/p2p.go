package memdb

import (
	"context"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const p2pTotalCheck = "chk_p2p_total"

func applyP2PItem(row *db.MaterialIssuanceItemP2p, arg db.P2PItemParams) {
	row.IssuanceID = arg.IssuanceID
	row.ItemID = arg.ItemID
	row.SendingBomID = arg.SendingBomID
	row.SendingSpecID = arg.SendingSpecID
	row.AllocatedQty = arg.AllocatedQty
	row.IsActive = arg.IsActive
}

func (d *DB) CreateP2PItem(ctx context.Context, arg db.P2PItemParams) (db.MaterialIssuanceItemP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateP2PItem"); err != nil {
		return db.MaterialIssuanceItemP2p{}, err
	}
	if arg.AllocatedQty.IsNegative() {
		return db.MaterialIssuanceItemP2p{}, checkViolation(p2pTotalCheck)
	}
	row := db.MaterialIssuanceItemP2p{
		ID:                  uuid.New(),
		TotalTransferredQty: decimal.Zero,
		Audit:               newAudit(d.tick(), arg.ActorID, arg.IsActive),
	}
	applyP2PItem(&row, arg)
	d.st.p2pItems[row.ID] = row
	return row, nil
}

func (d *DB) GetP2PItem(ctx context.Context, id uuid.UUID) (db.MaterialIssuanceItemP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetP2PItem"); err != nil {
		return db.MaterialIssuanceItemP2p{}, err
	}
	return getLive(d.st.p2pItems, id)
}

func (d *DB) GetP2PItemForUpdate(ctx context.Context, id uuid.UUID) (db.MaterialIssuanceItemP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetP2PItemForUpdate"); err != nil {
		return db.MaterialIssuanceItemP2p{}, err
	}
	return getLive(d.st.p2pItems, id)
}

func (d *DB) ListP2PItems(ctx context.Context) ([]db.MaterialIssuanceItemP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListP2PItems"); err != nil {
		return nil, err
	}
	return newestFirst(live(d.st.p2pItems, nil)), nil
}

func (d *DB) ListP2PItemsByIssuance(ctx context.Context, issuanceID uuid.UUID) ([]db.MaterialIssuanceItemP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListP2PItemsByIssuance"); err != nil {
		return nil, err
	}
	return live(d.st.p2pItems, func(r db.MaterialIssuanceItemP2p) bool { return r.IssuanceID == issuanceID }), nil
}

func (d *DB) UpdateP2PItem(ctx context.Context, id uuid.UUID, arg db.P2PItemParams) (db.MaterialIssuanceItemP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateP2PItem"); err != nil {
		return db.MaterialIssuanceItemP2p{}, err
	}
	row, err := getLive(d.st.p2pItems, id)
	if err != nil {
		return row, err
	}
	if row.TotalTransferredQty.GreaterThan(arg.AllocatedQty) {
		return db.MaterialIssuanceItemP2p{}, checkViolation(p2pTotalCheck)
	}
	applyP2PItem(&row, arg)
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.p2pItems[row.ID] = row
	return row, nil
}

func (d *DB) sumTransfers(issuanceItemID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, tr := range live(d.st.p2pTransfers, func(r db.MaterialIssuanceItemTransferP2p) bool {
		return r.IssuanceItemID == issuanceItemID
	}) {
		total = total.Add(tr.TransferQty)
	}
	return total
}

func (d *DB) RefreshP2PItemTotal(ctx context.Context, arg db.IDActorParams) (db.MaterialIssuanceItemP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("RefreshP2PItemTotal"); err != nil {
		return db.MaterialIssuanceItemP2p{}, err
	}
	row, err := getLive(d.st.p2pItems, arg.ID)
	if err != nil {
		return row, err
	}
	total := d.sumTransfers(row.ID)
	if total.GreaterThan(row.AllocatedQty) {
		return db.MaterialIssuanceItemP2p{}, checkViolation(p2pTotalCheck)
	}
	row.TotalTransferredQty = total
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.p2pItems[row.ID] = row
	return row, nil
}

func applyP2PTransfer(row *db.MaterialIssuanceItemTransferP2p, arg db.P2PTransferParams) {
	row.IssuanceItemID = arg.IssuanceItemID
	row.ReceivingBomID = arg.ReceivingBomID
	row.ReceivingSpecID = arg.ReceivingSpecID
	row.ReceivingProjectID = arg.ReceivingProjectID
	row.TransferQty = arg.TransferQty
	row.IsActive = arg.IsActive
}

func (d *DB) CreateP2PTransfer(ctx context.Context, arg db.P2PTransferParams) (db.MaterialIssuanceItemTransferP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateP2PTransfer"); err != nil {
		return db.MaterialIssuanceItemTransferP2p{}, err
	}
	if arg.TransferQty.IsNegative() {
		return db.MaterialIssuanceItemTransferP2p{}, checkViolation("t_material_issuance_item_transfers_p2p_transfer_qty_check")
	}
	row := db.MaterialIssuanceItemTransferP2p{ID: uuid.New(), Audit: newAudit(d.tick(), arg.ActorID, arg.IsActive)}
	applyP2PTransfer(&row, arg)
	d.st.p2pTransfers[row.ID] = row
	return row, nil
}

func (d *DB) GetP2PTransfer(ctx context.Context, id uuid.UUID) (db.MaterialIssuanceItemTransferP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetP2PTransfer"); err != nil {
		return db.MaterialIssuanceItemTransferP2p{}, err
	}
	return getLive(d.st.p2pTransfers, id)
}

func (d *DB) ListP2PTransfers(ctx context.Context) ([]db.MaterialIssuanceItemTransferP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListP2PTransfers"); err != nil {
		return nil, err
	}
	return newestFirst(live(d.st.p2pTransfers, nil)), nil
}

func (d *DB) ListP2PTransfersByIssuance(ctx context.Context, issuanceID uuid.UUID) ([]db.MaterialIssuanceItemTransferP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListP2PTransfersByIssuance"); err != nil {
		return nil, err
	}
	return live(d.st.p2pTransfers, func(r db.MaterialIssuanceItemTransferP2p) bool {
		item, ok := d.st.p2pItems[r.IssuanceItemID]
		return ok && !item.IsDeleted && item.IssuanceID == issuanceID
	}), nil
}

func (d *DB) SumP2PTransfers(ctx context.Context, issuanceItemID uuid.UUID) (decimal.Decimal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SumP2PTransfers"); err != nil {
		return decimal.Zero, err
	}
	return d.sumTransfers(issuanceItemID), nil
}

func (d *DB) UpdateP2PTransfer(ctx context.Context, id uuid.UUID, arg db.P2PTransferParams) (db.MaterialIssuanceItemTransferP2p, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateP2PTransfer"); err != nil {
		return db.MaterialIssuanceItemTransferP2p{}, err
	}
	row, err := getLive(d.st.p2pTransfers, id)
	if err != nil {
		return row, err
	}
	applyP2PTransfer(&row, arg)
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.p2pTransfers[row.ID] = row
	return row, nil
}
