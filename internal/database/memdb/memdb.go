// Package memdb is an in-memory db.Store used by ledger and handler tests.
//
// It follows the Postgres semantics the ledger relies on: soft-deleted rows
// stay in storage but are invisible to every query, missing rows surface as
// pgx.ErrNoRows, unique and check constraints surface as *pgconn.PgError,
// and ExecTx rolls every write back when the callback fails. Transactions
// are serialised; row locks are implied.
package memdb

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type state struct {
	items             map[uuid.UUID]db.Item
	warehouses        map[uuid.UUID]db.Warehouse
	projects          map[uuid.UUID]db.Project
	boms              map[uuid.UUID]db.Bom
	specs             map[uuid.UUID]db.BomSpec
	vendors           map[uuid.UUID]db.Vendor
	inventory         map[uuid.UUID]db.Inventory
	sources           map[uuid.UUID]db.Source
	sourceDetails     map[uuid.UUID]db.SourceDetail
	splits            map[uuid.UUID]db.SourceItemWarehouseDetail
	allocations       map[uuid.UUID]db.ItemAllocation
	allocationDetails map[uuid.UUID]db.ItemAllocationDetail
	issues            map[uuid.UUID]db.MaterialIssue
	issueItems        map[uuid.UUID]db.MaterialIssueItem
	issueItemSources  map[uuid.UUID]db.MaterialIssueItemSource
	p2pItems          map[uuid.UUID]db.MaterialIssuanceItemP2p
	p2pTransfers      map[uuid.UUID]db.MaterialIssuanceItemTransferP2p
	challans          map[uuid.UUID]db.DeliveryChallan
}

func newState() *state {
	return &state{
		items:             map[uuid.UUID]db.Item{},
		warehouses:        map[uuid.UUID]db.Warehouse{},
		projects:          map[uuid.UUID]db.Project{},
		boms:              map[uuid.UUID]db.Bom{},
		specs:             map[uuid.UUID]db.BomSpec{},
		vendors:           map[uuid.UUID]db.Vendor{},
		inventory:         map[uuid.UUID]db.Inventory{},
		sources:           map[uuid.UUID]db.Source{},
		sourceDetails:     map[uuid.UUID]db.SourceDetail{},
		splits:            map[uuid.UUID]db.SourceItemWarehouseDetail{},
		allocations:       map[uuid.UUID]db.ItemAllocation{},
		allocationDetails: map[uuid.UUID]db.ItemAllocationDetail{},
		issues:            map[uuid.UUID]db.MaterialIssue{},
		issueItems:        map[uuid.UUID]db.MaterialIssueItem{},
		issueItemSources:  map[uuid.UUID]db.MaterialIssueItemSource{},
		p2pItems:          map[uuid.UUID]db.MaterialIssuanceItemP2p{},
		p2pTransfers:      map[uuid.UUID]db.MaterialIssuanceItemTransferP2p{},
		challans:          map[uuid.UUID]db.DeliveryChallan{},
	}
}

func (s *state) clone() *state {
	return &state{
		items:             maps.Clone(s.items),
		warehouses:        maps.Clone(s.warehouses),
		projects:          maps.Clone(s.projects),
		boms:              maps.Clone(s.boms),
		specs:             maps.Clone(s.specs),
		vendors:           maps.Clone(s.vendors),
		inventory:         maps.Clone(s.inventory),
		sources:           maps.Clone(s.sources),
		sourceDetails:     maps.Clone(s.sourceDetails),
		splits:            maps.Clone(s.splits),
		allocations:       maps.Clone(s.allocations),
		allocationDetails: maps.Clone(s.allocationDetails),
		issues:            maps.Clone(s.issues),
		issueItems:        maps.Clone(s.issueItems),
		issueItemSources:  maps.Clone(s.issueItemSources),
		p2pItems:          maps.Clone(s.p2pItems),
		p2pTransfers:      maps.Clone(s.p2pTransfers),
		challans:          maps.Clone(s.challans),
	}
}

// DB is a db.Store backed by Go maps.
type DB struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	st    *state
	clock time.Time

	failures map[string]error
}

func New() *DB {
	return &DB{
		st:       newState(),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		failures: map[string]error{},
	}
}

var _ db.Store = (*DB)(nil)

func (d *DB) ExecTx(ctx context.Context, fn func(db.Querier) error) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()

	d.mu.Lock()
	snapshot := d.st.clone()
	d.mu.Unlock()

	if err := fn(d); err != nil {
		d.mu.Lock()
		d.st = snapshot
		d.mu.Unlock()
		return err
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.fail("Ping")
}

// FailOn makes the named query method return err until cleared with a nil err.
func (d *DB) FailOn(method string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, method)
		return
	}
	d.failures[method] = err
}

func (d *DB) fail(method string) error {
	return d.failures[method]
}

// tick advances the fake clock so created_at orders rows deterministically.
func (d *DB) tick() pgtype.Timestamptz {
	d.clock = d.clock.Add(time.Millisecond)
	return pgtype.Timestamptz{Time: d.clock, Valid: true}
}

func newAudit(ts pgtype.Timestamptz, actorID uuid.UUID, isActive bool) db.Audit {
	return db.Audit{
		CreatedAt: ts,
		CreatedBy: nullUUID(actorID),
		UpdatedAt: ts,
		UpdatedBy: nullUUID(actorID),
		IsActive:  isActive,
	}
}

func touch(a *db.Audit, ts pgtype.Timestamptz, actorID uuid.UUID) {
	a.UpdatedAt = ts
	a.UpdatedBy = nullUUID(actorID)
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

func sameNullUUID(a, b uuid.NullUUID) bool {
	if !a.Valid || !b.Valid {
		return a.Valid == b.Valid
	}
	return a.UUID == b.UUID
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint", ConstraintName: constraint}
}

func checkViolation(constraint string) error {
	return &pgconn.PgError{Code: "23514", Message: "new row violates check constraint", ConstraintName: constraint}
}

type audited interface {
	AuditInfo() db.Audit
}

// live returns the non-deleted rows matching keep, oldest first.
func live[T audited](m map[uuid.UUID]T, keep func(T) bool) []T {
	out := []T{}
	for _, row := range m {
		if row.AuditInfo().IsDeleted {
			continue
		}
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return a.AuditInfo().CreatedAt.Time.Compare(b.AuditInfo().CreatedAt.Time)
	})
	return out
}

func newestFirst[T any](rows []T) []T {
	slices.Reverse(rows)
	return rows
}

func getLive[T audited](m map[uuid.UUID]T, id uuid.UUID) (T, error) {
	row, ok := m[id]
	if !ok || row.AuditInfo().IsDeleted {
		var zero T
		return zero, pgx.ErrNoRows
	}
	return row, nil
}

// ---------------------------------------------------------------------
// Seeding and inspection
// ---------------------------------------------------------------------

func (d *DB) PutItem(i db.Item) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.items[i.ID] = i
}

func (d *DB) PutWarehouse(w db.Warehouse) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.warehouses[w.ID] = w
}

func (d *DB) PutProject(p db.Project) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.projects[p.ID] = p
}

func (d *DB) PutBom(b db.Bom) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.boms[b.ID] = b
}

func (d *DB) PutBomSpec(s db.BomSpec) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.specs[s.ID] = s
}

func (d *DB) PutVendor(v db.Vendor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.vendors[v.ID] = v
}

// RawInventory returns the stored row even when soft-deleted.
func (d *DB) RawInventory(id uuid.UUID) (db.Inventory, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, ok := d.st.inventory[id]
	return row, ok
}

func (d *DB) RawSource(id uuid.UUID) (db.Source, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, ok := d.st.sources[id]
	return row, ok
}

func (d *DB) RawAllocation(id uuid.UUID) (db.ItemAllocation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, ok := d.st.allocations[id]
	return row, ok
}

func (d *DB) RawMaterialIssue(id uuid.UUID) (db.MaterialIssue, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, ok := d.st.issues[id]
	return row, ok
}

// IssueItemSources returns every breakdown row of an issue item, reversed or not.
func (d *DB) IssueItemSources(issueItemID uuid.UUID) []db.MaterialIssueItemSource {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []db.MaterialIssueItemSource{}
	for _, row := range d.st.issueItemSources {
		if row.IssueItemID == issueItemID {
			out = append(out, row)
		}
	}
	slices.SortStableFunc(out, func(a, b db.MaterialIssueItemSource) int {
		return a.CreatedAt.Time.Compare(b.CreatedAt.Time)
	})
	return out
}
