package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Optional is a patch field. Set reports whether the key was present in the
// request body; a JSON null leaves Value at its zero value with Set true.
type Optional[T any] struct {
	Value T
	Set   bool
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) or(current T) T {
	if o.Set {
		return o.Value
	}
	return current
}

// ErrEmptyPatch marks a patch body that names no updatable field.
var ErrEmptyPatch = errors.New("empty patch")

// patch is implemented by every allow-listed patch body.
type patch interface {
	empty() bool
}

// DecodePatch reads a patch body into P. Keys outside P's allow-list and
// bodies that set nothing are Validation errors.
func DecodePatch[P patch](r io.Reader) (P, error) {
	var p P
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		if field, ok := unknownField(err); ok {
			return p, &Error{Kind: KindValidation, Op: "decode_patch", Message: "field " + field + " cannot be updated", Err: err}
		}
		if errors.Is(err, io.EOF) {
			return p, &Error{Kind: KindValidation, Op: "decode_patch", Message: "request body is empty"}
		}
		return p, &Error{Kind: KindValidation, Op: "decode_patch", Message: "invalid request body", Err: err}
	}
	if p.empty() {
		return p, &Error{Kind: KindValidation, Op: "decode_patch", Message: "no updatable fields provided", Err: ErrEmptyPatch}
	}
	return p, nil
}

// unknownField extracts the key from encoding/json's DisallowUnknownFields error.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}

// AllocationPatch lists the allocation columns a PUT may touch.
type AllocationPatch struct {
	ItemName     Optional[pgtype.Text]         `json:"item_name"`
	RequiredQty  Optional[decimal.Decimal]     `json:"required_qty"`
	AllocatedQty Optional[decimal.Decimal]     `json:"allocated_qty"`
	Rate         Optional[decimal.NullDecimal] `json:"rate"`
	IsActive     Optional[bool]                `json:"is_active"`
}

func (p AllocationPatch) empty() bool {
	return !p.ItemName.Set && !p.RequiredQty.Set && !p.AllocatedQty.Set && !p.Rate.Set && !p.IsActive.Set
}

type AllocationDetailPatch struct {
	AllocatedQty Optional[decimal.Decimal]     `json:"allocated_qty"`
	Rate         Optional[decimal.NullDecimal] `json:"rate"`
	IsActive     Optional[bool]                `json:"is_active"`
}

func (p AllocationDetailPatch) empty() bool {
	return !p.AllocatedQty.Set && !p.Rate.Set && !p.IsActive.Set
}

// IssuePatch is the only way to move a material issue to approved or cancelled.
type IssuePatch struct {
	IssueDate         Optional[pgtype.Date]   `json:"issue_date"`
	IssueExpectedDate Optional[pgtype.Date]   `json:"issue_expected_date"`
	SenderType        Optional[string]        `json:"sender_type"`
	IssuanceType      Optional[string]        `json:"issuance_type"`
	SenderReferenceID Optional[uuid.NullUUID] `json:"sender_reference_id"`
	Status            Optional[string]        `json:"status"`
	Remarks           Optional[pgtype.Text]   `json:"remarks"`
}

func (p IssuePatch) empty() bool {
	return !p.IssueDate.Set && !p.IssueExpectedDate.Set && !p.SenderType.Set && !p.IssuanceType.Set &&
		!p.SenderReferenceID.Set && !p.Status.Set && !p.Remarks.Set
}

// IssueItemPatch excludes issued_quantity; quantity changes go through the bulk upsert.
type IssueItemPatch struct {
	BomID                Optional[uuid.NullUUID]       `json:"bom_id"`
	SpecID               Optional[uuid.NullUUID]       `json:"spec_id"`
	ReceivingReferenceID Optional[uuid.NullUUID]       `json:"receiving_reference_id"`
	ReceiverType         Optional[pgtype.Text]         `json:"receiver_type"`
	Rate                 Optional[decimal.NullDecimal] `json:"rate"`
}

func (p IssueItemPatch) empty() bool {
	return !p.BomID.Set && !p.SpecID.Set && !p.ReceivingReferenceID.Set && !p.ReceiverType.Set && !p.Rate.Set
}

type P2PItemPatch struct {
	AllocatedQty  Optional[decimal.Decimal] `json:"allocated_qty"`
	SendingSpecID Optional[uuid.NullUUID]   `json:"sending_spec_id"`
	IsActive      Optional[bool]            `json:"is_active"`
}

func (p P2PItemPatch) empty() bool {
	return !p.AllocatedQty.Set && !p.SendingSpecID.Set && !p.IsActive.Set
}

type P2PTransferPatch struct {
	TransferQty        Optional[decimal.Decimal] `json:"transfer_qty"`
	ReceivingBomID     Optional[uuid.UUID]       `json:"receiving_bom_id"`
	ReceivingSpecID    Optional[uuid.NullUUID]   `json:"receiving_spec_id"`
	ReceivingProjectID Optional[uuid.NullUUID]   `json:"receiving_project_id"`
	IsActive           Optional[bool]            `json:"is_active"`
}

func (p P2PTransferPatch) empty() bool {
	return !p.TransferQty.Set && !p.ReceivingBomID.Set && !p.ReceivingSpecID.Set && !p.ReceivingProjectID.Set && !p.IsActive.Set
}

// P2PItemUpdate is one element of a bulk P2P item update.
type P2PItemUpdate struct {
	ID uuid.UUID `json:"id"`
	P2PItemPatch
}

type P2PTransferUpdate struct {
	ID uuid.UUID `json:"id"`
	P2PTransferPatch
}

// DecodePatchList reads a non-empty JSON array of patches with the same
// allow-list rules as DecodePatch.
func DecodePatchList[P patch](r io.Reader) ([]P, error) {
	var list []P
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&list); err != nil {
		if field, ok := unknownField(err); ok {
			return nil, &Error{Kind: KindValidation, Op: "decode_patch", Message: "field " + field + " cannot be updated", Err: err}
		}
		return nil, &Error{Kind: KindValidation, Op: "decode_patch", Message: "expected an array of updates", Err: err}
	}
	if len(list) == 0 {
		return nil, &Error{Kind: KindValidation, Op: "decode_patch", Message: "expected an array of updates"}
	}
	return list, nil
}
