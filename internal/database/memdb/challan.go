package memdb

import (
	"context"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func (d *DB) CreateDeliveryChallan(ctx context.Context, arg db.CreateDeliveryChallanParams) (db.DeliveryChallan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateDeliveryChallan"); err != nil {
		return db.DeliveryChallan{}, err
	}
	row := db.DeliveryChallan{
		ID:                 uuid.New(),
		DcNumber:           arg.DcNumber,
		SenderType:         arg.SenderType,
		SenderID:           arg.SenderID,
		ReceiverType:       arg.ReceiverType,
		ReceiverID:         arg.ReceiverID,
		DcDate:             arg.DcDate,
		DcNote:             arg.DcNote,
		ReceivedDate:       arg.ReceivedDate,
		Status:             arg.Status,
		VehicleNo:          arg.VehicleNo,
		DriverName:         arg.DriverName,
		DriverPhoneNumber:  arg.DriverPhoneNumber,
		EwayBillNo:         arg.EwayBillNo,
		EwayBillExpiryDate: arg.EwayBillExpiryDate,
		TransferCost:       arg.TransferCost,
		TransferID:         arg.TransferID,
		Audit:              newAudit(d.tick(), arg.ActorID, arg.IsActive),
	}
	d.st.challans[row.ID] = row
	return row, nil
}

func (d *DB) GetDeliveryChallan(ctx context.Context, id uuid.UUID) (db.DeliveryChallan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetDeliveryChallan"); err != nil {
		return db.DeliveryChallan{}, err
	}
	return getLive(d.st.challans, id)
}

func (d *DB) ListDeliveryChallans(ctx context.Context, status pgtype.Text) ([]db.DeliveryChallan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListDeliveryChallans"); err != nil {
		return nil, err
	}
	return newestFirst(live(d.st.challans, func(r db.DeliveryChallan) bool {
		return !status.Valid || r.Status == status.String
	})), nil
}

func (d *DB) UpdateDeliveryChallanStatus(ctx context.Context, arg db.UpdateDeliveryChallanStatusParams) (db.DeliveryChallan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateDeliveryChallanStatus"); err != nil {
		return db.DeliveryChallan{}, err
	}
	row, err := getLive(d.st.challans, arg.ID)
	if err != nil {
		return row, err
	}
	row.Status = arg.Status
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.challans[row.ID] = row
	return row, nil
}
