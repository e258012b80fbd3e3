package sources

import (
	"net/http"
	"strings"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"

	"github.com/google/uuid"
)

const notFound = "Not found"

type deleted struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

type SourceHandler struct {
	h *handlers.Handler
}

func NewSourceHandler(h *handlers.Handler) *SourceHandler {
	return &SourceHandler{h: h}
}

func (sh *SourceHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/source",
		Category: "sources",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: sh.List},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: sh.Get},
			{Method: http.MethodPost, Path: "/", HandlerFunc: sh.Create},
			{Method: http.MethodPut, Path: "/{id}", HandlerFunc: sh.Update},
			{Method: http.MethodPatch, Path: "/{id}/approve", HandlerFunc: sh.Approve},
			{Method: http.MethodDelete, Path: "/{id}", HandlerFunc: sh.Delete},
		},
	}
}

// List returns sources with their sender warehouse and destination warehouses,
// optionally narrowed by ?source_type.
func (sh *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := sh.h.Ledger.ListSources(r.Context(), strings.TrimSpace(r.URL.Query().Get("source_type")))
	if err != nil {
		sh.h.RawError(w, r, err, "")
		return
	}
	sh.h.Respond.JSON(w, r, http.StatusOK, rows)
}

func (sh *SourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		sh.h.RawError(w, r, err, "")
		return
	}
	row, err := sh.h.Ledger.GetSource(r.Context(), id)
	if err != nil {
		sh.h.RawError(w, r, err, notFound)
		return
	}
	sh.h.Respond.JSON(w, r, http.StatusOK, row)
}

// Create inserts the source and any nested details and warehouse splits.
func (sh *SourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.SourceInput
	if err := handlers.Decode(r, &in); err != nil {
		sh.h.RawError(w, r, err, "")
		return
	}
	if strings.TrimSpace(in.SourceNumber) == "" || !in.SourceDate.Valid {
		sh.h.Respond.Error(w, r, http.StatusBadRequest, "source_number and source_date are required.", nil)
		return
	}
	src, err := sh.h.Ledger.CreateSource(r.Context(), in)
	if err != nil {
		sh.h.RawError(w, r, err, "")
		return
	}
	sh.h.Respond.JSON(w, r, http.StatusCreated, src)
}

func (sh *SourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		sh.h.RawError(w, r, err, "")
		return
	}
	var in ledger.SourceInput
	if err := handlers.Decode(r, &in); err != nil {
		sh.h.RawError(w, r, err, "")
		return
	}
	row, err := sh.h.Ledger.UpdateSource(r.Context(), id, in)
	if err != nil {
		sh.h.RawError(w, r, err, notFound)
		return
	}
	sh.h.Respond.JSON(w, r, http.StatusOK, row)
}

// Approve marks the source completed.
func (sh *SourceHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		sh.h.RawError(w, r, err, "")
		return
	}
	row, err := sh.h.Ledger.ApproveSource(r.Context(), id)
	if err != nil {
		sh.h.RawError(w, r, err, notFound)
		return
	}
	sh.h.Respond.JSON(w, r, http.StatusOK, row)
}

func (sh *SourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		sh.h.RawError(w, r, err, "")
		return
	}
	id, err = sh.h.Ledger.DeleteSource(r.Context(), id)
	if err != nil {
		sh.h.RawError(w, r, err, notFound)
		return
	}
	sh.h.Respond.JSON(w, r, http.StatusOK, deleted{Message: "Deleted", ID: id})
}
