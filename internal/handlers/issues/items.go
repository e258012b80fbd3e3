package issues

import (
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
)

var itemEntity = handlers.Entity{Title: "Material issue item", Lower: "material issue item"}

// ItemHandler serves issue lines. Creating or overwriting a line debits the
// inventory rows named in its sources.
type ItemHandler struct {
	h *handlers.Handler
}

func NewItemHandler(h *handlers.Handler) *ItemHandler {
	return &ItemHandler{h: h}
}

func (it *ItemHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/material-issue-items",
		Category: "material-issues",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: it.List},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: it.Get},
			{Method: http.MethodPost, Path: "/", HandlerFunc: it.Create},
			{Method: http.MethodPut, Path: "/{id}", HandlerFunc: it.Update},
			{Method: http.MethodDelete, Path: "/{id}", HandlerFunc: it.Delete},
			{Method: http.MethodPut, Path: "/add/bulk", HandlerFunc: it.BulkUpsert},
		},
	}
}

func (it *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := it.h.Ledger.ListIssueItems(r.Context())
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	it.h.Respond.Success(w, r, http.StatusOK, rows, "Data fetched successfully", "Material issue items retrieved successfully")
}

func (it *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	row, err := it.h.Ledger.GetIssueItem(r.Context(), id)
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	it.h.Respond.Success(w, r, http.StatusOK, row, "Data fetched successfully", "Material issue item retrieved successfully")
}

func (it *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.IssueItemInput
	if err := handlers.Decode(r, &in); err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	view, err := it.h.Ledger.CreateIssueItem(r.Context(), in)
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	it.h.Respond.Success(w, r, http.StatusCreated, view, "Data inserted successfully", "Material issue item created successfully")
}

func (it *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	p, err := ledger.DecodePatch[ledger.IssueItemPatch](r.Body)
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	row, err := it.h.Ledger.PatchIssueItem(r.Context(), id, p)
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	it.h.Respond.Success(w, r, http.StatusOK, row, "Data updated successfully", "Material issue item updated successfully")
}

// Delete removes the line and credits its open sources back to inventory.
func (it *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	row, err := it.h.Ledger.DeleteIssueItem(r.Context(), id)
	if err != nil {
		it.h.Fail(w, r, err, itemEntity)
		return
	}
	it.h.Respond.Success(w, r, http.StatusOK, row, "Data deleted successfully", "Material issue item deleted successfully")
}

func (it *ItemHandler) BulkUpsert(w http.ResponseWriter, r *http.Request) {
	bulkUpsertItems(it.h, w, r)
}
