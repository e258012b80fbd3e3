package sources

import (
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"

	"github.com/google/uuid"
)

// DetailHandler serves the item lines of a source.
type DetailHandler struct {
	h *handlers.Handler
}

func NewDetailHandler(h *handlers.Handler) *DetailHandler {
	return &DetailHandler{h: h}
}

func (dh *DetailHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/source-detail",
		Category: "sources",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: dh.List},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: dh.BySource}, // id is the source id
			{Method: http.MethodPost, Path: "/", HandlerFunc: dh.Create},
			{Method: http.MethodPut, Path: "/{id}", HandlerFunc: dh.Update},
			{Method: http.MethodPatch, Path: "/{id}/approve", HandlerFunc: dh.Approve},
			{Method: http.MethodDelete, Path: "/{id}", HandlerFunc: dh.Delete},
		},
	}
}

func (dh *DetailHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := dh.h.Ledger.ListSourceDetails(r.Context())
	if err != nil {
		dh.h.RawError(w, r, err, "")
		return
	}
	dh.h.Respond.JSON(w, r, http.StatusOK, rows)
}

// BySource lists a source's lines with item master fields and destinations.
func (dh *DetailHandler) BySource(w http.ResponseWriter, r *http.Request) {
	sourceID, err := handlers.PathUUID(r, "id")
	if err != nil {
		dh.h.RawError(w, r, err, "")
		return
	}
	rows, err := dh.h.Ledger.SourceDetails(r.Context(), sourceID)
	if err != nil {
		dh.h.RawError(w, r, err, notFound)
		return
	}
	dh.h.Respond.JSON(w, r, http.StatusOK, struct {
		SourceDetails []ledger.SourceDetailView `json:"source_details"`
	}{rows})
}

func (dh *DetailHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.SourceDetailInput
	if err := handlers.Decode(r, &in); err != nil {
		dh.h.RawError(w, r, err, "")
		return
	}
	if in.SourceID == uuid.Nil || in.ItemID == uuid.Nil {
		dh.h.Respond.Error(w, r, http.StatusBadRequest, "source_id and item_id are required.", nil)
		return
	}
	row, err := dh.h.Ledger.CreateSourceDetail(r.Context(), in)
	if err != nil {
		dh.h.RawError(w, r, err, "")
		return
	}
	dh.h.Respond.JSON(w, r, http.StatusCreated, row)
}

func (dh *DetailHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		dh.h.RawError(w, r, err, "")
		return
	}
	var in ledger.SourceDetailInput
	if err := handlers.Decode(r, &in); err != nil {
		dh.h.RawError(w, r, err, "")
		return
	}
	row, err := dh.h.Ledger.UpdateSourceDetail(r.Context(), id, in)
	if err != nil {
		dh.h.RawError(w, r, err, notFound)
		return
	}
	dh.h.Respond.JSON(w, r, http.StatusOK, row)
}

func (dh *DetailHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		dh.h.RawError(w, r, err, "")
		return
	}
	row, err := dh.h.Ledger.ApproveSourceDetail(r.Context(), id)
	if err != nil {
		dh.h.RawError(w, r, err, notFound)
		return
	}
	dh.h.Respond.JSON(w, r, http.StatusOK, row)
}

func (dh *DetailHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		dh.h.RawError(w, r, err, "")
		return
	}
	id, err = dh.h.Ledger.DeleteSourceDetail(r.Context(), id)
	if err != nil {
		dh.h.RawError(w, r, err, notFound)
		return
	}
	dh.h.Respond.JSON(w, r, http.StatusOK, deleted{Message: "Deleted", ID: id})
}
