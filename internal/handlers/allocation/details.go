package allocation

import (
	"fmt"
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
)

var detailEntity = handlers.Entity{Title: "Allocation detail", Lower: "allocation detail"}

// DetailHandler serves the per-source split of an allocation.
type DetailHandler struct {
	h *handlers.Handler
}

func NewDetailHandler(h *handlers.Handler) *DetailHandler {
	return &DetailHandler{h: h}
}

func (dh *DetailHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/allocation-details",
		Category: "allocation",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: dh.List},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: dh.Get},
			{Method: http.MethodPost, Path: "/", HandlerFunc: dh.Create},
			{Method: http.MethodPut, Path: "/{id}", HandlerFunc: dh.Update},
			{Method: http.MethodDelete, Path: "/{id}", HandlerFunc: dh.Delete},
			{Method: http.MethodPut, Path: "/add/bulk", HandlerFunc: dh.BulkUpsert},
		},
	}
}

func (dh *DetailHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := dh.h.Ledger.ListAllocationDetails(r.Context())
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	dh.h.Respond.Success(w, r, http.StatusOK, rows, "Data fetched successfully", "Allocation details retrieved successfully")
}

func (dh *DetailHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	row, err := dh.h.Ledger.GetAllocationDetail(r.Context(), id)
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	dh.h.Respond.Success(w, r, http.StatusOK, row, "Data fetched successfully", "Allocation detail retrieved successfully")
}

func (dh *DetailHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.AllocationDetailInput
	if err := handlers.Decode(r, &in); err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	row, err := dh.h.Ledger.CreateAllocationDetail(r.Context(), in)
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	dh.h.Respond.Success(w, r, http.StatusCreated, row, "Data inserted successfully", "Allocation detail created successfully")
}

func (dh *DetailHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	p, err := ledger.DecodePatch[ledger.AllocationDetailPatch](r.Body)
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	row, err := dh.h.Ledger.PatchAllocationDetail(r.Context(), id, p)
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	dh.h.Respond.Success(w, r, http.StatusOK, row, "Data updated successfully", "Allocation detail updated successfully")
}

func (dh *DetailHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	row, err := dh.h.Ledger.DeleteAllocationDetail(r.Context(), id)
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	dh.h.Respond.Success(w, r, http.StatusOK, row, "Data deleted successfully", "Allocation detail deleted successfully")
}

// BulkUpsert overwrites allocated_qty and rate of existing (allocation, source) pairs.
func (dh *DetailHandler) BulkUpsert(w http.ResponseWriter, r *http.Request) {
	in, err := handlers.DecodeList[ledger.AllocationDetailInput](r, "Expected a non-empty array of allocation details")
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	rows, err := dh.h.Ledger.BulkUpsertAllocationDetails(r.Context(), in)
	if err != nil {
		dh.h.Fail(w, r, err, detailEntity)
		return
	}
	dh.h.Respond.Success(w, r, http.StatusCreated, rows,
		"Bulk data processed successfully", fmt.Sprintf("%d allocation details processed successfully", len(rows)))
}
