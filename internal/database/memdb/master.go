package memdb

import (
	"cmp"
	"context"
	"slices"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func lookup[T any](m map[uuid.UUID]T, id uuid.UUID) (T, error) {
	row, ok := m[id]
	if !ok {
		return row, pgx.ErrNoRows
	}
	return row, nil
}

func (d *DB) GetItem(ctx context.Context, id uuid.UUID) (db.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetItem"); err != nil {
		return db.Item{}, err
	}
	return lookup(d.st.items, id)
}

func (d *DB) GetWarehouse(ctx context.Context, id uuid.UUID) (db.Warehouse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetWarehouse"); err != nil {
		return db.Warehouse{}, err
	}
	return lookup(d.st.warehouses, id)
}

func (d *DB) GetProject(ctx context.Context, id uuid.UUID) (db.Project, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetProject"); err != nil {
		return db.Project{}, err
	}
	return lookup(d.st.projects, id)
}

func (d *DB) GetBom(ctx context.Context, id uuid.UUID) (db.Bom, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetBom"); err != nil {
		return db.Bom{}, err
	}
	return lookup(d.st.boms, id)
}

func (d *DB) GetBomSpec(ctx context.Context, id uuid.UUID) (db.BomSpec, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetBomSpec"); err != nil {
		return db.BomSpec{}, err
	}
	return lookup(d.st.specs, id)
}

func (d *DB) ListBomSpecsByBom(ctx context.Context, bomID uuid.UUID) ([]db.BomSpec, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListBomSpecsByBom"); err != nil {
		return nil, err
	}
	out := []db.BomSpec{}
	for _, s := range d.st.specs {
		if s.BomID == bomID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b db.BomSpec) int {
		return cmp.Compare(a.SpecDescription.String, b.SpecDescription.String)
	})
	return out, nil
}

func (d *DB) GetVendor(ctx context.Context, id uuid.UUID) (db.Vendor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetVendor"); err != nil {
		return db.Vendor{}, err
	}
	return lookup(d.st.vendors, id)
}
