package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const challanColumns = `dc.id, dc.dc_number, dc.sender_type, dc.sender_id, dc.receiver_type, dc.receiver_id,
       dc.dc_date, dc.dc_note, dc.received_date, dc.status, dc.vehicle_no, dc.driver_name,
       dc.driver_phone_number, dc.eway_bill_no, dc.eway_bill_expiry_date, dc.transfer_cost, dc.transfer_id,
       dc.created_at, dc.created_by, dc.updated_at, dc.updated_by, dc.is_active, dc.is_deleted`

func scanChallan(row pgx.Row) (DeliveryChallan, error) {
	var i DeliveryChallan
	targets := append([]any{
		&i.ID, &i.DcNumber, &i.SenderType, &i.SenderID, &i.ReceiverType, &i.ReceiverID,
		&i.DcDate, &i.DcNote, &i.ReceivedDate, &i.Status, &i.VehicleNo, &i.DriverName,
		&i.DriverPhoneNumber, &i.EwayBillNo, &i.EwayBillExpiryDate, &i.TransferCost, &i.TransferID,
	}, i.Audit.scanTargets()...)
	err := row.Scan(targets...)
	return i, err
}

const createDeliveryChallan = `-- name: CreateDeliveryChallan :one
INSERT INTO ims.t_delivery_challan AS dc (
    dc_number, sender_type, sender_id, receiver_type, receiver_id, dc_date, dc_note, received_date, status,
    vehicle_no, driver_name, driver_phone_number, eway_bill_no, eway_bill_expiry_date, transfer_cost,
    transfer_id, is_active, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18
)
RETURNING ` + challanColumns

type CreateDeliveryChallanParams struct {
	DcNumber           string
	SenderType         pgtype.Text
	SenderID           uuid.NullUUID
	ReceiverType       pgtype.Text
	ReceiverID         uuid.NullUUID
	DcDate             pgtype.Date
	DcNote             pgtype.Text
	ReceivedDate       pgtype.Date
	Status             string
	VehicleNo          pgtype.Text
	DriverName         pgtype.Text
	DriverPhoneNumber  pgtype.Text
	EwayBillNo         pgtype.Text
	EwayBillExpiryDate pgtype.Date
	TransferCost       decimal.NullDecimal
	TransferID         uuid.UUID
	IsActive           bool
	ActorID            uuid.UUID
}

func (q *Queries) CreateDeliveryChallan(ctx context.Context, arg CreateDeliveryChallanParams) (DeliveryChallan, error) {
	row := q.db.QueryRow(ctx, createDeliveryChallan,
		arg.DcNumber,
		arg.SenderType,
		arg.SenderID,
		arg.ReceiverType,
		arg.ReceiverID,
		arg.DcDate,
		arg.DcNote,
		arg.ReceivedDate,
		arg.Status,
		arg.VehicleNo,
		arg.DriverName,
		arg.DriverPhoneNumber,
		arg.EwayBillNo,
		arg.EwayBillExpiryDate,
		arg.TransferCost,
		arg.TransferID,
		arg.IsActive,
		arg.ActorID,
	)
	return scanChallan(row)
}

const getDeliveryChallan = `-- name: GetDeliveryChallan :one
SELECT ` + challanColumns + `
FROM ims.t_delivery_challan dc
WHERE dc.id = $1 AND dc.is_deleted = false
`

func (q *Queries) GetDeliveryChallan(ctx context.Context, id uuid.UUID) (DeliveryChallan, error) {
	return scanChallan(q.db.QueryRow(ctx, getDeliveryChallan, id))
}

const listDeliveryChallans = `-- name: ListDeliveryChallans :many
SELECT ` + challanColumns + `
FROM ims.t_delivery_challan dc
WHERE dc.is_deleted = false
  AND ($1::text IS NULL OR dc.status = $1)
ORDER BY dc.created_at DESC
`

// ListDeliveryChallans filters by status when one is given.
func (q *Queries) ListDeliveryChallans(ctx context.Context, status pgtype.Text) ([]DeliveryChallan, error) {
	rows, err := q.db.Query(ctx, listDeliveryChallans, status)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r pgx.Rows) (DeliveryChallan, error) { return scanChallan(r) })
}

const updateDeliveryChallanStatus = `-- name: UpdateDeliveryChallanStatus :one
UPDATE ims.t_delivery_challan dc
SET status = $2, updated_by = $3, updated_at = now()
WHERE dc.id = $1 AND dc.is_deleted = false
RETURNING ` + challanColumns

type UpdateDeliveryChallanStatusParams struct {
	ID      uuid.UUID
	Status  string
	ActorID uuid.UUID
}

func (q *Queries) UpdateDeliveryChallanStatus(ctx context.Context, arg UpdateDeliveryChallanStatusParams) (DeliveryChallan, error) {
	return scanChallan(q.db.QueryRow(ctx, updateDeliveryChallanStatus, arg.ID, arg.Status, arg.ActorID))
}
