package memdb

import (
	"cmp"
	"context"
	"slices"

	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryQuantityCheck = "chk_inventory_quantity"

func (d *DB) CreateInventory(ctx context.Context, arg db.CreateInventoryParams) (db.Inventory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateInventory"); err != nil {
		return db.Inventory{}, err
	}
	if arg.Quantity.IsNegative() {
		return db.Inventory{}, checkViolation(inventoryQuantityCheck)
	}
	row := db.Inventory{
		ID:         uuid.New(),
		ItemID:     arg.ItemID,
		StoreID:    arg.StoreID,
		StoreType:  arg.StoreType,
		SourceID:   arg.SourceID,
		SourceType: arg.SourceType,
		Quantity:   arg.Quantity,
		Rate:       arg.Rate,
		Status:     arg.Status,
		Audit:      newAudit(d.tick(), arg.ActorID, arg.IsActive),
	}
	d.st.inventory[row.ID] = row
	return row, nil
}

func (d *DB) GetInventory(ctx context.Context, id uuid.UUID) (db.Inventory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetInventory"); err != nil {
		return db.Inventory{}, err
	}
	return getLive(d.st.inventory, id)
}

func (d *DB) GetInventoryForUpdate(ctx context.Context, id uuid.UUID) (db.Inventory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("GetInventoryForUpdate"); err != nil {
		return db.Inventory{}, err
	}
	return getLive(d.st.inventory, id)
}

func (d *DB) itemText(id uuid.UUID) (code, name, hsn, desc, insurance pgtype.Text) {
	it, ok := d.st.items[id]
	if !ok {
		return
	}
	return text(it.ItemCode), text(it.ItemName), it.HsnCode, it.Description, it.InsuranceStatus
}

func (d *DB) ListInventoryWithItem(ctx context.Context) ([]db.InventoryWithItemRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListInventoryWithItem"); err != nil {
		return nil, err
	}
	out := []db.InventoryWithItemRow{}
	for _, inv := range live(d.st.inventory, nil) {
		row := db.InventoryWithItemRow{Inventory: inv}
		row.ItemCode, row.ItemName, row.HsnCode, row.Description, row.InsuranceStatus = d.itemText(inv.ItemID)
		out = append(out, row)
	}
	slices.SortStableFunc(out, func(a, b db.InventoryWithItemRow) int {
		return cmp.Compare(a.ItemName.String, b.ItemName.String)
	})
	return out, nil
}

func (d *DB) ListInventoryLocationsByItem(ctx context.Context, itemID uuid.UUID) ([]db.InventoryLocationRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListInventoryLocationsByItem"); err != nil {
		return nil, err
	}
	out := []db.InventoryLocationRow{}
	for _, inv := range live(d.st.inventory, func(r db.Inventory) bool { return r.ItemID == itemID }) {
		row := db.InventoryLocationRow{Inventory: inv}
		if w, ok := d.st.warehouses[inv.StoreID]; ok {
			row.WarehouseCode, row.WarehouseName, row.Address = text(w.WarehouseCode), text(w.WarehouseName), w.Address
		}
		if inv.SourceID.Valid {
			if s, ok := d.st.sources[inv.SourceID.UUID]; ok {
				row.SourceNumber = text(s.SourceNumber)
			}
		}
		out = append(out, row)
	}
	slices.SortStableFunc(out, func(a, b db.InventoryLocationRow) int {
		return cmp.Compare(a.StoreID.String(), b.StoreID.String())
	})
	return out, nil
}

func (d *DB) ListInventoryByStoreAndItem(ctx context.Context, arg db.ListInventoryByStoreAndItemParams) ([]db.Inventory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("ListInventoryByStoreAndItem"); err != nil {
		return nil, err
	}
	return live(d.st.inventory, func(r db.Inventory) bool {
		return r.StoreID == arg.StoreID && r.ItemID == arg.ItemID
	}), nil
}

func (d *DB) UpdateInventory(ctx context.Context, arg db.UpdateInventoryParams) (db.Inventory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateInventory"); err != nil {
		return db.Inventory{}, err
	}
	row, err := getLive(d.st.inventory, arg.ID)
	if err != nil {
		return row, err
	}
	if arg.Quantity.IsNegative() {
		return db.Inventory{}, checkViolation(inventoryQuantityCheck)
	}
	row.ItemID, row.StoreID, row.StoreType = arg.ItemID, arg.StoreID, arg.StoreType
	row.SourceID, row.SourceType = arg.SourceID, arg.SourceType
	row.Quantity, row.Rate, row.Status, row.IsActive = arg.Quantity, arg.Rate, arg.Status, arg.IsActive
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.inventory[row.ID] = row
	return row, nil
}

func (d *DB) AdjustInventoryQuantity(ctx context.Context, arg db.AdjustInventoryQuantityParams) (db.Inventory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AdjustInventoryQuantity"); err != nil {
		return db.Inventory{}, err
	}
	row, err := getLive(d.st.inventory, arg.ID)
	if err != nil {
		return row, err
	}
	next := row.Quantity.Add(arg.Delta)
	if next.IsNegative() {
		return db.Inventory{}, checkViolation(inventoryQuantityCheck)
	}
	row.Quantity = next
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.inventory[row.ID] = row
	return row, nil
}

func (d *DB) SoftDeleteInventory(ctx context.Context, arg db.IDActorParams) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SoftDeleteInventory"); err != nil {
		return uuid.Nil, err
	}
	row, err := getLive(d.st.inventory, arg.ID)
	if err != nil {
		return uuid.Nil, err
	}
	row.IsDeleted = true
	touch(&row.Audit, d.tick(), arg.ActorID)
	d.st.inventory[row.ID] = row
	return row.ID, nil
}

