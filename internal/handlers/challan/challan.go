package challan

import (
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
)

const notFound = "Not found"

type ChallanHandler struct {
	h *handlers.Handler
}

func NewChallanHandler(h *handlers.Handler) *ChallanHandler {
	return &ChallanHandler{h: h}
}

// Routes mounts the handler under /api/delivery-challan. Every route uses the
// raw body convention.
func (ch *ChallanHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/delivery-challan",
		Category: "delivery-challan",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: ch.List},
			{Method: http.MethodGet, Path: "/{id}", HandlerFunc: ch.Resolve},
			{Method: http.MethodPost, Path: "/", HandlerFunc: ch.Create},
			{Method: http.MethodPatch, Path: "/{id}/status", HandlerFunc: ch.UpdateStatus},
			{Method: http.MethodGet, Path: "/get/generated", HandlerFunc: ch.Generated},
		},
	}
}

// List returns live challans, filtered by ?status= when given.
func (ch *ChallanHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := ch.h.Ledger.ListChallans(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		ch.h.RawError(w, r, err, "")
		return
	}
	ch.h.Respond.JSON(w, r, http.StatusOK, rows)
}

// Resolve rebuilds the challan's sender, receivers and items from its material issue.
func (ch *ChallanHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ch.h.RawError(w, r, err, "")
		return
	}
	resolved, err := ch.h.Ledger.ResolveChallan(r.Context(), id)
	if err != nil {
		ch.h.RawError(w, r, err, notFound)
		return
	}
	ch.h.Respond.JSON(w, r, http.StatusOK, resolved)
}

// Create generates the challan of an approved issue and marks the issue DC-generated.
func (ch *ChallanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.ChallanInput
	if err := handlers.Decode(r, &in); err != nil {
		ch.h.RawError(w, r, err, "")
		return
	}
	row, err := ch.h.Ledger.CreateChallan(r.Context(), in)
	if err != nil {
		ch.h.RawError(w, r, err, "")
		return
	}
	ch.h.Respond.JSON(w, r, http.StatusCreated, row)
}

func (ch *ChallanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "id")
	if err != nil {
		ch.h.RawError(w, r, err, "")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := handlers.Decode(r, &body); err != nil {
		ch.h.RawError(w, r, err, "")
		return
	}
	if body.Status == "" {
		ch.h.Respond.Error(w, r, http.StatusBadRequest, "Status is required", nil)
		return
	}
	row, err := ch.h.Ledger.PatchChallanStatus(r.Context(), id, body.Status)
	if err != nil {
		ch.h.RawError(w, r, err, notFound)
		return
	}
	ch.h.Respond.JSON(w, r, http.StatusOK, row)
}

func (ch *ChallanHandler) Generated(w http.ResponseWriter, r *http.Request) {
	rows, err := ch.h.Ledger.ListChallans(r.Context(), ledger.ChallanGenerated)
	if err != nil {
		ch.h.RawError(w, r, err, "")
		return
	}
	ch.h.Respond.JSON(w, r, http.StatusOK, rows)
}
