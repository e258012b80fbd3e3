package allocation

import (
	"fmt"
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
)

var entity = handlers.Entity{Title: "Allocation", Lower: "allocation"}

type AllocationHandler struct {
	h *handlers.Handler
}

func NewAllocationHandler(h *handlers.Handler) *AllocationHandler {
	return &AllocationHandler{h: h}
}

func (ah *AllocationHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/allocation",
		Category: "allocation",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: ah.List},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: ah.Get},
			{Method: http.MethodPost, Path: "/", HandlerFunc: ah.Create},
			{Method: http.MethodPut, Path: "/{id}", HandlerFunc: ah.Update},
			{Method: http.MethodDelete, Path: "/{id}", HandlerFunc: ah.Delete},
			{Method: http.MethodPut, Path: "/add/bulk", HandlerFunc: ah.BulkUpsert},
			{Method: http.MethodPut, Path: "/update-quantity", HandlerFunc: ah.UpdateQuantity},
			{Method: http.MethodGet, Path: "/get/by-bom/{BOM_Id}", HandlerFunc: ah.ByBom},
		},
	}
}

// ItemRoutes serves the raw per-item grouping under /api/item-allocation.
func (ah *AllocationHandler) ItemRoutes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/item-allocation",
		Category: "allocation",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/by-item/{item_id}", HandlerFunc: ah.ByItem},
		},
	}
}

func (ah *AllocationHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := ah.h.Ledger.ListAllocations(r.Context())
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	ah.h.Respond.Success(w, r, http.StatusOK, rows, "Data fetched successfully", "Allocations retrieved successfully")
}

func (ah *AllocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	row, err := ah.h.Ledger.GetAllocation(r.Context(), id)
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	ah.h.Respond.Success(w, r, http.StatusOK, row, "Data fetched successfully", "Allocation retrieved successfully")
}

func (ah *AllocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.AllocationInput
	if err := handlers.Decode(r, &in); err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	row, err := ah.h.Ledger.CreateAllocation(r.Context(), in)
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	ah.h.Respond.Success(w, r, http.StatusCreated, row, "Data inserted successfully", "Allocation created successfully")
}

// Update applies a partial update limited to the allocation allow-list.
func (ah *AllocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	p, err := ledger.DecodePatch[ledger.AllocationPatch](r.Body)
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	row, err := ah.h.Ledger.PatchAllocation(r.Context(), id, p)
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	ah.h.Respond.Success(w, r, http.StatusOK, row, "Data updated successfully", "Allocation updated successfully")
}

func (ah *AllocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	row, err := ah.h.Ledger.DeleteAllocation(r.Context(), id)
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	ah.h.Respond.Success(w, r, http.StatusOK, row, "Data deleted successfully", "Allocation deleted successfully")
}

// BulkUpsert adds each row's quantities onto the allocation with the same
// (item, bom, project) key, inserting rows that do not exist yet.
func (ah *AllocationHandler) BulkUpsert(w http.ResponseWriter, r *http.Request) {
	in, err := handlers.DecodeList[ledger.AllocationInput](r, "Expected a non-empty array of allocations")
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	rows, err := ah.h.Ledger.BulkUpsertAllocations(r.Context(), in)
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	ah.h.Respond.Success(w, r, http.StatusCreated, rows,
		"Bulk data processed successfully", fmt.Sprintf("%d allocations processed successfully", len(rows)))
}

// UpdateQuantity debits allocated_qty of the allocation named by the body key.
func (ah *AllocationHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var in ledger.AllocationDebit
	if err := handlers.Decode(r, &in); err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	row, err := ah.h.Ledger.DebitAllocation(r.Context(), in)
	if err != nil {
		ah.h.Fail(w, r, err, entity)
		return
	}
	ah.h.Respond.Success(w, r, http.StatusOK, row, "Data updated successfully", "Allocation quantity updated successfully")
}

func (ah *AllocationHandler) ByBom(w http.ResponseWriter, r *http.Request) {
	bomID, err := handlers.PathUUID(r, "BOM_Id")
	if err != nil {
		ah.h.Fail(w, r, err, handlers.Entity{})
		return
	}
	view, err := ah.h.Ledger.AllocationsByBom(r.Context(), bomID)
	if err != nil {
		ah.h.Fail(w, r, err, handlers.Entity{Title: "BOM", Lower: "BOM"})
		return
	}
	ah.h.Respond.Success(w, r, http.StatusOK, view, "Data fetched successfully", "Allocations retrieved successfully")
}

// ByItem lists an item's allocations grouped by BOM.
func (ah *AllocationHandler) ByItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := handlers.PathUUID(r, "item_id")
	if err != nil {
		ah.h.RawError(w, r, err, "")
		return
	}
	groups, err := ah.h.Ledger.AllocationsByItem(r.Context(), itemID)
	if err != nil {
		ah.h.RawError(w, r, err, "")
		return
	}
	ah.h.Respond.JSON(w, r, http.StatusOK, groups)
}
