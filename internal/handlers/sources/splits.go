package sources

import (
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"

	"github.com/google/uuid"
)

// SplitHandler serves how each source line was divided across destinations.
type SplitHandler struct {
	h *handlers.Handler
}

func NewSplitHandler(h *handlers.Handler) *SplitHandler {
	return &SplitHandler{h: h}
}

func (sp *SplitHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/source-item-warehouse-details",
		Category: "sources",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: sp.List},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: sp.ByDetail},
			{Method: http.MethodPost, Path: "/", HandlerFunc: sp.Create},
			{Method: http.MethodPost, Path: "/bulk", HandlerFunc: sp.CreateBulk},
			{Method: http.MethodPut, Path: "/{id}", HandlerFunc: sp.Update},
			{Method: http.MethodPatch, Path: "/{id}/approve", HandlerFunc: sp.Approve},
			{Method: http.MethodDelete, Path: "/{id}", HandlerFunc: sp.Delete},
		},
	}
}

func (sp *SplitHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := sp.h.Ledger.ListSplits(r.Context())
	if err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	sp.h.Respond.JSON(w, r, http.StatusOK, rows)
}

// ByDetail lists the splits of one source line. The path id is the source detail id.
func (sp *SplitHandler) ByDetail(w http.ResponseWriter, r *http.Request) {
	detailID, err := handlers.PathUUID(r, "id")
	if err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	rows, err := sp.h.Ledger.SplitsByDetail(r.Context(), detailID)
	if err != nil {
		sp.h.RawError(w, r, err, notFound)
		return
	}
	sp.h.Respond.JSON(w, r, http.StatusOK, rows)
}

func (sp *SplitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.SplitInput
	if err := handlers.Decode(r, &in); err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	row, err := sp.h.Ledger.RecordSplit(r.Context(), in)
	if err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	sp.h.Respond.JSON(w, r, http.StatusCreated, row)
}

func (sp *SplitHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	in, err := handlers.DecodeList[ledger.SplitInput](r, "Request body must be a non-empty array.")
	if err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	rows, err := sp.h.Ledger.RecordSplits(r.Context(), in)
	if err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	sp.h.Respond.JSON(w, r, http.StatusCreated, rows)
}

// Update addresses the split by (source_id, source_detail_id, warehouse_id)
// from the body; the path id is not consulted.
func (sp *SplitHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in ledger.SplitUpdate
	if err := handlers.Decode(r, &in); err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	if in.SourceID == uuid.Nil || in.SourceDetailID == uuid.Nil || in.WarehouseID == uuid.Nil {
		sp.h.Respond.Error(w, r, http.StatusBadRequest, "source_id, source_detail_id, and warehouse_id are required", nil)
		return
	}
	rows, err := sp.h.Ledger.UpdateSplit(r.Context(), in)
	if err != nil {
		sp.h.RawError(w, r, err, notFound)
		return
	}
	sp.h.Respond.JSON(w, r, http.StatusOK, rows)
}

func (sp *SplitHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	row, err := sp.h.Ledger.ApproveSplit(r.Context(), id)
	if err != nil {
		sp.h.RawError(w, r, err, notFound)
		return
	}
	sp.h.Respond.JSON(w, r, http.StatusOK, row)
}

func (sp *SplitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		sp.h.RawError(w, r, err, "")
		return
	}
	id, err = sp.h.Ledger.DeleteSplit(r.Context(), id)
	if err != nil {
		sp.h.RawError(w, r, err, notFound)
		return
	}
	sp.h.Respond.JSON(w, r, http.StatusOK, deleted{Message: "Deleted", ID: id})
}
