package inventory

import (
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"

	"github.com/shopspring/decimal"
)

const notFound = "Not found"

type InventoryHandler struct {
	h *handlers.Handler
}

func NewInventoryHandler(h *handlers.Handler) *InventoryHandler {
	return &InventoryHandler{h: h}
}

// Routes mounts the handler under /api/inventory.
func (ih *InventoryHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/inventory",
		Category: "inventory",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: ih.ListByItem},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: ih.ListLocations},
			{Method: http.MethodPost, Path: "/", HandlerFunc: ih.Credit},
			{Method: http.MethodPost, Path: "/bulk", HandlerFunc: ih.CreditBulk},
			{Method: http.MethodPut, Path: "/{id}", HandlerFunc: ih.Replace},
			{Method: http.MethodDelete, Path: "/{id}", HandlerFunc: ih.Delete},
			{Method: http.MethodPost, Path: "/{id}/debit", HandlerFunc: ih.Debit},
			{Method: http.MethodGet, Path: "/warehouse/{warehouse_id}/item/{item_id}", HandlerFunc: ih.At},
		},
	}
}

// ListByItem returns live inventory grouped by item.
func (ih *InventoryHandler) ListByItem(w http.ResponseWriter, r *http.Request) {
	rows, err := ih.h.Ledger.InventoryByItem(r.Context())
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusOK, rows)
}

// ListLocations returns one item's inventory grouped by warehouse. The path id is the item id.
func (ih *InventoryHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	itemID, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	rows, err := ih.h.Ledger.InventoryLocations(r.Context(), itemID)
	if err != nil {
		ih.h.RawError(w, r, err, notFound)
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusOK, rows)
}

func (ih *InventoryHandler) Credit(w http.ResponseWriter, r *http.Request) {
	var in ledger.CreditInput
	if err := handlers.Decode(r, &in); err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	row, err := ih.h.Ledger.Credit(r.Context(), in)
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusCreated, row)
}

// CreditBulk inserts every row or none.
func (ih *InventoryHandler) CreditBulk(w http.ResponseWriter, r *http.Request) {
	in, err := handlers.DecodeList[ledger.CreditInput](r, "Request body must be a non-empty array")
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	rows, err := ih.h.Ledger.CreditBulk(r.Context(), in)
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusCreated, rows)
}

func (ih *InventoryHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	var in ledger.CreditInput
	if err := handlers.Decode(r, &in); err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	row, err := ih.h.Ledger.ReplaceInventory(r.Context(), id, in)
	if err != nil {
		ih.h.RawError(w, r, err, notFound)
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusOK, row)
}

func (ih *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	if _, err := ih.h.Ledger.DeleteInventory(r.Context(), id); err != nil {
		ih.h.RawError(w, r, err, notFound)
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}

type debitRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// Debit removes quantity from one inventory row.
func (ih *InventoryHandler) Debit(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	var req debitRequest
	if err := handlers.Decode(r, &req); err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	row, err := ih.h.Ledger.Debit(r.Context(), id, req.Quantity)
	if err != nil {
		ih.h.RawError(w, r, err, notFound)
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusOK, row)
}

// At lists the inventory rows of one item in one warehouse.
func (ih *InventoryHandler) At(w http.ResponseWriter, r *http.Request) {
	warehouseID, err := handlers.PathUUID(r, "warehouse_id")
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	itemID, err := handlers.PathUUID(r, "item_id")
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	rows, err := ih.h.Ledger.InventoryAt(r.Context(), warehouseID, itemID)
	if err != nil {
		ih.h.RawError(w, r, err, "No inventory found for the given warehouse_id and item_id")
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusOK, rows)
}
