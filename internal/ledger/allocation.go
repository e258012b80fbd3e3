package ledger

import (
	"context"
	"errors"
	"slices"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// AllocationInput reserves quantity of an item against a BOM and optional project.
type AllocationInput struct {
	ItemID       uuid.UUID           `json:"item_id" validate:"required"`
	BomID        uuid.UUID           `json:"bom_id" validate:"required"`
	ProjectID    uuid.NullUUID       `json:"project_id"`
	ItemName     pgtype.Text         `json:"item_name"`
	RequiredQty  decimal.Decimal     `json:"required_qty" validate:"gte=0"`
	AllocatedQty decimal.Decimal     `json:"allocated_qty" validate:"gte=0"`
	Rate         decimal.NullDecimal `json:"rate" validate:"omitempty,gte=0"`
	IsActive     *bool               `json:"is_active"`
}

func (in AllocationInput) key() db.AllocationKey {
	return db.AllocationKey{ItemID: in.ItemID, BomID: in.BomID, ProjectID: in.ProjectID}
}

func allocationLockKey(k db.AllocationKey) string {
	project := "none"
	if k.ProjectID.Valid {
		project = k.ProjectID.UUID.String()
	}
	return "allocation:" + k.ItemID.String() + ":" + k.BomID.String() + ":" + project
}

// lockAllocations takes the per-key locks in a stable order and returns one release func.
func (s *Service) lockAllocations(ctx context.Context, keys []db.AllocationKey) (func(), error) {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, allocationLockKey(k))
	}
	slices.Sort(names)
	names = slices.Compact(names)

	var held []func()
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, name := range names {
		unlock, err := s.locker.Lock(ctx, name)
		if err != nil {
			release()
			return nil, &Error{Kind: KindConflict, Op: "allocation_lock", Message: "allocation is being updated, try again", Err: err}
		}
		held = append(held, unlock)
	}
	return release, nil
}

// CreateAllocation inserts a single reservation. A duplicate key is a Conflict;
// use BulkUpsertAllocations to top up an existing one.
func (s *Service) CreateAllocation(ctx context.Context, in AllocationInput) (db.ItemAllocation, error) {
	const op = "allocation_create"
	if err := s.check(op, in); err != nil {
		return db.ItemAllocation{}, err
	}
	var row db.ItemAllocation
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.CreateAllocation(ctx, db.CreateAllocationParams{
			ItemID:       in.ItemID,
			BomID:        in.BomID,
			ProjectID:    in.ProjectID,
			ItemName:     in.ItemName,
			RequiredQty:  in.RequiredQty,
			AllocatedQty: in.AllocatedQty,
			Rate:         in.Rate,
			IsActive:     boolOr(in.IsActive, true),
			ActorID:      s.actor(ctx),
		})
		return err
	})
	return row, err
}

func (s *Service) GetAllocation(ctx context.Context, id uuid.UUID) (db.ItemAllocation, error) {
	row, err := s.store.GetAllocation(ctx, id)
	if err != nil {
		return db.ItemAllocation{}, wrapNotFound("allocation_get", "allocation", err)
	}
	return row, nil
}

func (s *Service) ListAllocations(ctx context.Context) ([]db.ItemAllocation, error) {
	rows, err := s.store.ListAllocations(ctx)
	return rows, wrap("allocation_list", err)
}

// PatchAllocation applies the allow-listed fields of p.
func (s *Service) PatchAllocation(ctx context.Context, id uuid.UUID, p AllocationPatch) (db.ItemAllocation, error) {
	const op = "allocation_patch"
	for name, q := range map[string]Optional[decimal.Decimal]{"required_qty": p.RequiredQty, "allocated_qty": p.AllocatedQty} {
		if q.Set && q.Value.IsNegative() {
			return db.ItemAllocation{}, validationErr(op, "%s must be at least 0", name)
		}
	}

	var row db.ItemAllocation
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		cur, err := q.GetAllocation(ctx, id)
		if err != nil {
			return wrapNotFound(op, "allocation", err)
		}
		row, err = q.UpdateAllocation(ctx, db.UpdateAllocationParams{
			ID:           id,
			ItemName:     p.ItemName.or(cur.ItemName),
			RequiredQty:  p.RequiredQty.or(cur.RequiredQty),
			AllocatedQty: p.AllocatedQty.or(cur.AllocatedQty),
			Rate:         p.Rate.or(cur.Rate),
			IsActive:     p.IsActive.or(cur.IsActive),
			ActorID:      s.actor(ctx),
		})
		return err
	})
	return row, err
}

func (s *Service) DeleteAllocation(ctx context.Context, id uuid.UUID) (db.ItemAllocation, error) {
	var row db.ItemAllocation
	err := s.write(ctx, "allocation_delete", func() (err error) {
		row, err = s.store.SoftDeleteAllocation(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	return row, err
}

// BulkUpsertAllocations adds each row's required and allocated quantities to the
// existing reservation for its (item, bom, project) key, creating it when absent.
// Submitting the same rows twice doubles the reservation.
func (s *Service) BulkUpsertAllocations(ctx context.Context, rows []AllocationInput) ([]db.ItemAllocation, error) {
	const op = "allocation_bulk_upsert"
	if len(rows) == 0 {
		return nil, validationErr(op, "expected a non-empty array of allocations")
	}
	keys := make([]db.AllocationKey, 0, len(rows))
	for _, in := range rows {
		if err := s.check(op, in); err != nil {
			return nil, err
		}
		keys = append(keys, in.key())
	}

	release, err := s.lockAllocations(ctx, keys)
	if err != nil {
		s.record(op, err)
		return nil, err
	}
	defer release()

	actor := s.actor(ctx)
	out := make([]db.ItemAllocation, 0, len(rows))
	var created, topped int
	err = s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		for _, in := range rows {
			cur, err := q.FindAllocationByKeyForUpdate(ctx, in.key())
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				row, err := q.CreateAllocation(ctx, db.CreateAllocationParams{
					ItemID:       in.ItemID,
					BomID:        in.BomID,
					ProjectID:    in.ProjectID,
					ItemName:     in.ItemName,
					RequiredQty:  in.RequiredQty,
					AllocatedQty: in.AllocatedQty,
					Rate:         in.Rate,
					IsActive:     boolOr(in.IsActive, true),
					ActorID:      actor,
				})
				if err != nil {
					return err
				}
				out = append(out, row)
				created++
			case err != nil:
				return err
			default:
				row, err := q.AddToAllocation(ctx, db.AddToAllocationParams{
					ID:           cur.ID,
					RequiredQty:  in.RequiredQty,
					AllocatedQty: in.AllocatedQty,
					ItemName:     in.ItemName,
					Rate:         in.Rate,
					ActorID:      actor,
				})
				if err != nil {
					return err
				}
				out = append(out, row)
				topped++
			}
		}
		spanAttrs(ctx, attribute.Int("allocation.created", created), attribute.Int("allocation.topped_up", topped))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "allocations upserted", "created", created, "topped_up", topped)
	return out, nil
}

// AllocationDebit names a reservation by key and the quantity to release from it.
type AllocationDebit struct {
	ItemID    uuid.UUID       `json:"item_id" validate:"required"`
	BomID     uuid.UUID       `json:"bom_id" validate:"required"`
	ProjectID uuid.NullUUID   `json:"project_id"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// DebitAllocation lowers allocated_qty of one reservation. A result below zero
// is rejected with InsufficientQuantity.
func (s *Service) DebitAllocation(ctx context.Context, in AllocationDebit) (db.ItemAllocation, error) {
	const op = "allocation_debit"
	if err := s.check(op, in); err != nil {
		return db.ItemAllocation{}, err
	}
	key := db.AllocationKey{ItemID: in.ItemID, BomID: in.BomID, ProjectID: in.ProjectID}
	release, err := s.lockAllocations(ctx, []db.AllocationKey{key})
	if err != nil {
		s.record(op, err)
		return db.ItemAllocation{}, err
	}
	defer release()

	var row db.ItemAllocation
	err = s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		cur, err := q.FindAllocationByKeyForUpdate(ctx, key)
		if err != nil {
			return wrapNotFound(op, "allocation", err)
		}
		left := cur.AllocatedQty.Sub(in.Quantity)
		if left.IsNegative() {
			return insufficientErr(op, "allocation %s has %s allocated, cannot debit %s", cur.ID, cur.AllocatedQty, in.Quantity)
		}
		row, err = q.UpdateAllocation(ctx, db.UpdateAllocationParams{
			ID:           cur.ID,
			ItemName:     cur.ItemName,
			RequiredQty:  cur.RequiredQty,
			AllocatedQty: left,
			Rate:         cur.Rate,
			IsActive:     cur.IsActive,
			ActorID:      s.actor(ctx),
		})
		return err
	})
	if err != nil {
		return db.ItemAllocation{}, err
	}
	s.logger.InfoContext(ctx, "allocation debited", "allocation_id", row.ID, "quantity", in.Quantity.String(), "allocated_qty", row.AllocatedQty.String())
	return row, nil
}

// BomAllocations groups an item's reservations per BOM.
type BomAllocations struct {
	BomID       uuid.UUID           `json:"bom_id"`
	BomName     pgtype.Text         `json:"bom_name"`
	ProjectName pgtype.Text         `json:"project_name"`
	Allocations []db.ItemAllocation `json:"allocations"`
}

func (s *Service) AllocationsByItem(ctx context.Context, itemID uuid.UUID) ([]BomAllocations, error) {
	const op = "allocation_by_item"
	rows, err := s.store.ListAllocationsByItem(ctx, itemID)
	if err != nil {
		return nil, wrap(op, err)
	}
	keys, groups := groupOrdered(rows, func(r db.AllocationBomRow) uuid.UUID { return r.BomID })
	out := make([]BomAllocations, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		entry := BomAllocations{BomID: k, BomName: g[0].BomName, ProjectName: g[0].ProjectName}
		for _, r := range g {
			entry.Allocations = append(entry.Allocations, r.ItemAllocation)
		}
		out = append(out, entry)
	}
	return out, nil
}

// BomAllocationLine is a reservation with how much of it has already been issued.
type BomAllocationLine struct {
	db.AllocationIssueRow
	RemainingQty decimal.Decimal `json:"remaining_qty"`
}

// BomAllocationView backs the material issue screen for one BOM.
type BomAllocationView struct {
	Bom         *db.Bom             `json:"bom"`
	Project     *db.Project         `json:"project"`
	Specs       []db.BomSpec        `json:"specs"`
	Allocations []BomAllocationLine `json:"allocations"`
}

func (s *Service) AllocationsByBom(ctx context.Context, bomID uuid.UUID) (BomAllocationView, error) {
	const op = "allocation_by_bom"
	bom, err := s.bom(ctx, valid(bomID))
	if err != nil {
		return BomAllocationView{}, err
	}
	if bom == nil {
		return BomAllocationView{}, notFoundErr(op, "bom")
	}
	view := BomAllocationView{Bom: bom}
	if view.Project, err = s.project(ctx, bom.ProjectID); err != nil {
		return BomAllocationView{}, err
	}

	if view.Specs, err = s.store.ListBomSpecsByBom(ctx, bomID); err != nil {
		return BomAllocationView{}, wrap(op, err)
	}
	rows, err := s.store.ListAllocationsByBom(ctx, bomID)
	if err != nil {
		return BomAllocationView{}, wrap(op, err)
	}
	view.Allocations = make([]BomAllocationLine, 0, len(rows))
	for _, r := range rows {
		view.Allocations = append(view.Allocations, BomAllocationLine{
			AllocationIssueRow: r,
			RemainingQty:       r.AllocatedQty.Sub(r.IssuedQty),
		})
	}
	if view.Specs == nil {
		view.Specs = []db.BomSpec{}
	}
	return view, nil
}

// AllocationDetailInput is one per-source breakdown line of an allocation.
type AllocationDetailInput struct {
	ItemAllocationID uuid.UUID           `json:"item_allocation_id" validate:"required"`
	SourceID         uuid.UUID           `json:"source_id" validate:"required"`
	AllocatedQty     decimal.Decimal     `json:"allocated_qty" validate:"gte=0"`
	Rate             decimal.NullDecimal `json:"rate" validate:"omitempty,gte=0"`
	IsActive         *bool               `json:"is_active"`
}

func (in AllocationDetailInput) params(actor uuid.UUID) db.CreateAllocationDetailParams {
	return db.CreateAllocationDetailParams{
		ItemAllocationID: in.ItemAllocationID,
		SourceID:         in.SourceID,
		AllocatedQty:     in.AllocatedQty,
		Rate:             in.Rate,
		IsActive:         boolOr(in.IsActive, true),
		ActorID:          actor,
	}
}

func (s *Service) CreateAllocationDetail(ctx context.Context, in AllocationDetailInput) (db.ItemAllocationDetail, error) {
	const op = "allocation_detail_create"
	if err := s.check(op, in); err != nil {
		return db.ItemAllocationDetail{}, err
	}
	var row db.ItemAllocationDetail
	err := s.write(ctx, op, func() (err error) {
		row, err = s.store.CreateAllocationDetail(ctx, in.params(s.actor(ctx)))
		return err
	})
	return row, err
}

func (s *Service) GetAllocationDetail(ctx context.Context, id uuid.UUID) (db.ItemAllocationDetail, error) {
	row, err := s.store.GetAllocationDetail(ctx, id)
	if err != nil {
		return db.ItemAllocationDetail{}, wrapNotFound("allocation_detail_get", "allocation detail", err)
	}
	return row, nil
}

func (s *Service) ListAllocationDetails(ctx context.Context) ([]db.ItemAllocationDetail, error) {
	rows, err := s.store.ListAllocationDetails(ctx)
	return rows, wrap("allocation_detail_list", err)
}

func (s *Service) PatchAllocationDetail(ctx context.Context, id uuid.UUID, p AllocationDetailPatch) (db.ItemAllocationDetail, error) {
	const op = "allocation_detail_patch"
	if p.AllocatedQty.Set && p.AllocatedQty.Value.IsNegative() {
		return db.ItemAllocationDetail{}, validationErr(op, "allocated_qty must be at least 0")
	}
	var row db.ItemAllocationDetail
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		cur, err := q.GetAllocationDetail(ctx, id)
		if err != nil {
			return wrapNotFound(op, "allocation detail", err)
		}
		row, err = q.UpdateAllocationDetail(ctx, db.UpdateAllocationDetailParams{
			ID:           id,
			AllocatedQty: p.AllocatedQty.or(cur.AllocatedQty),
			Rate:         p.Rate.or(cur.Rate),
			IsActive:     p.IsActive.or(cur.IsActive),
			ActorID:      s.actor(ctx),
		})
		return err
	})
	return row, err
}

func (s *Service) DeleteAllocationDetail(ctx context.Context, id uuid.UUID) (db.ItemAllocationDetail, error) {
	var row db.ItemAllocationDetail
	err := s.write(ctx, "allocation_detail_delete", func() (err error) {
		row, err = s.store.SoftDeleteAllocationDetail(ctx, db.IDActorParams{ID: id, ActorID: s.actor(ctx)})
		return err
	})
	return row, err
}

// BulkUpsertAllocationDetails overwrites allocated_qty and rate of the line keyed
// by (item_allocation_id, source_id), inserting it when absent.
func (s *Service) BulkUpsertAllocationDetails(ctx context.Context, rows []AllocationDetailInput) ([]db.ItemAllocationDetail, error) {
	const op = "allocation_detail_bulk_upsert"
	if len(rows) == 0 {
		return nil, validationErr(op, "expected a non-empty array of allocation details")
	}
	for _, in := range rows {
		if err := s.check(op, in); err != nil {
			return nil, err
		}
	}

	actor := s.actor(ctx)
	out := make([]db.ItemAllocationDetail, 0, len(rows))
	err := s.inTx(ctx, op, func(ctx context.Context, q db.Querier) error {
		for _, in := range rows {
			cur, err := q.FindAllocationDetailByKeyForUpdate(ctx, db.AllocationDetailKey{ItemAllocationID: in.ItemAllocationID, SourceID: in.SourceID})
			var row db.ItemAllocationDetail
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				row, err = q.CreateAllocationDetail(ctx, in.params(actor))
			case err != nil:
				return err
			default:
				row, err = q.UpdateAllocationDetail(ctx, db.UpdateAllocationDetailParams{
					ID:           cur.ID,
					AllocatedQty: in.AllocatedQty,
					Rate:         in.Rate,
					IsActive:     boolOr(in.IsActive, cur.IsActive),
					ActorID:      actor,
				})
			}
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
	s.logger.InfoContext(ctx, "allocation details upserted", "rows", len(out))
	return out, nil
}
