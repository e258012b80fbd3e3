package issues

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
)

var entity = handlers.Entity{Title: "Material issue", Lower: "material issue"}

type IssueHandler struct {
	h *handlers.Handler
}

func NewIssueHandler(h *handlers.Handler) *IssueHandler {
	return &IssueHandler{h: h}
}

func (ih *IssueHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/material-issues",
		Category: "material-issues",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: ih.List},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: ih.Get},
			{Method: http.MethodPost, Path: "/", HandlerFunc: ih.Create},
			{Method: http.MethodPut, Path: "/{id}", HandlerFunc: ih.Update},
			{Method: http.MethodPut, Path: "/add/update-status/{id}", HandlerFunc: ih.Reject},
			{Method: http.MethodDelete, Path: "/{id}", HandlerFunc: ih.Delete},
			{Method: http.MethodPut, Path: "/add/bulk", HandlerFunc: ih.BulkUpsertItems},
			{Method: http.MethodGet, Path: "/get/bom-by-id/{bomId}", HandlerFunc: ih.BomByID},
		},
	}
}

// DetailRoutes serves the raw read views under /api/material_issues.
func (ih *IssueHandler) DetailRoutes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/material_issues",
		Category: "material-issues",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: ih.Detail},
			{Method: http.MethodGet, Path: "/get/approved", HandlerFunc: ih.DcEligible},
		},
	}
}

func (ih *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := ih.h.Ledger.ListIssues(r.Context())
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	ih.h.Respond.Success(w, r, http.StatusOK, rows, "Data fetched successfully", "Material issues retrieved successfully")
}

func (ih *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	row, err := ih.h.Ledger.GetIssue(r.Context(), id)
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	ih.h.Respond.Success(w, r, http.StatusOK, row, "Data fetched successfully", "Material issue retrieved successfully")
}

// Create opens a pending issue. Items are added separately.
func (ih *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.IssueInput
	if err := handlers.Decode(r, &in); err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	row, err := ih.h.Ledger.CreateIssue(r.Context(), in)
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	ih.h.Respond.Success(w, r, http.StatusCreated, row, "Data inserted successfully", "Material issue created successfully")
}

// Update patches the issue; a status change must be a legal transition.
func (ih *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	p, err := ledger.DecodePatch[ledger.IssuePatch](r.Body)
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	row, err := ih.h.Ledger.PatchIssue(r.Context(), id, p)
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	ih.h.Respond.Success(w, r, http.StatusOK, row, "Data updated successfully", "Material issue updated successfully")
}

type rejectRequest struct {
	Status string `json:"status"`
}

// Reject credits the issued stock back and marks the issue rejected. The body
// is optional; a status other than rejected is refused.
func (ih *IssueHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	var req rejectRequest
	if err := handlers.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		ih.h.Fail(w, r, err, entity)
		return
	}
	if st := strings.ToLower(strings.TrimSpace(req.Status)); st != "" && st != ledger.StatusRejected {
		ih.h.Respond.Reject(w, r, http.StatusBadRequest, "Invalid status",
			fmt.Sprintf("status %q is not accepted here; this endpoint only sets %s", req.Status, ledger.StatusRejected))
		return
	}
	row, err := ih.h.Ledger.RejectIssue(r.Context(), id)
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	ih.h.Respond.Success(w, r, http.StatusOK, row, "Data updated successfully", "Material issue rejected successfully")
}

func (ih *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	row, err := ih.h.Ledger.DeleteIssue(r.Context(), id)
	if err != nil {
		ih.h.Fail(w, r, err, entity)
		return
	}
	ih.h.Respond.Success(w, r, http.StatusOK, row, "Data deleted successfully", "Material issue deleted successfully")
}

func (ih *IssueHandler) BulkUpsertItems(w http.ResponseWriter, r *http.Request) {
	bulkUpsertItems(ih.h, w, r)
}

// BomByID returns a BOM with its specs and what is left to issue per allocation.
func (ih *IssueHandler) BomByID(w http.ResponseWriter, r *http.Request) {
	bomID, err := handlers.PathUUID(r, "bomId")
	if err != nil {
		ih.h.Fail(w, r, err, handlers.Entity{})
		return
	}
	view, err := ih.h.Ledger.AllocationsByBom(r.Context(), bomID)
	if err != nil {
		ih.h.Fail(w, r, err, handlers.Entity{Title: "BOM", Lower: "BOM"})
		return
	}
	ih.h.Respond.Success(w, r, http.StatusOK, view, "Data fetched successfully", "BOM details retrieved successfully")
}

func (ih *IssueHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	detail, err := ih.h.Ledger.IssueDetail(r.Context(), id)
	if err != nil {
		ih.h.RawError(w, r, err, "Not found")
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusOK, detail)
}

// DcEligible lists approved issues that do not have a delivery challan yet.
func (ih *IssueHandler) DcEligible(w http.ResponseWriter, r *http.Request) {
	rows, err := ih.h.Ledger.ListDcEligible(r.Context())
	if err != nil {
		ih.h.RawError(w, r, err, "")
		return
	}
	ih.h.Respond.JSON(w, r, http.StatusOK, rows)
}

func bulkUpsertItems(h *handlers.Handler, w http.ResponseWriter, r *http.Request) {
	in, err := handlers.DecodeList[ledger.IssueItemInput](r, "Expected a non-empty array of material issue items")
	if err != nil {
		h.Fail(w, r, err, itemEntity)
		return
	}
	rows, err := h.Ledger.BulkUpsertIssueItems(r.Context(), in)
	if err != nil {
		h.Fail(w, r, err, itemEntity)
		return
	}
	h.Respond.Success(w, r, http.StatusCreated, rows,
		"Bulk data processed successfully", fmt.Sprintf("%d material issue items processed successfully", len(rows)))
}
