package issues

import (
	"fmt"
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"

	"github.com/google/uuid"
)

// P2PHandler serves project-to-project issuance items and their transfers.
// Writes are bulk only.
type P2PHandler struct {
	h *handlers.Handler
}

func NewP2PHandler(h *handlers.Handler) *P2PHandler {
	return &P2PHandler{h: h}
}

func (ph *P2PHandler) ItemRoutes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/material-issuance-items-p2p",
		Category: "p2p",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: ph.ListItems},
			{Method: http.MethodPost, Path: "/", HandlerFunc: ph.CreateItems},
			{Method: http.MethodPut, Path: "/", HandlerFunc: ph.UpdateItems},
		},
	}
}

func (ph *P2PHandler) TransferRoutes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/material-issuance-item-transfers-p2p",
		Category: "p2p",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: ph.ListTransfers},
			{Method: http.MethodPost, Path: "/", HandlerFunc: ph.CreateTransfers},
			{Method: http.MethodPut, Path: "/", HandlerFunc: ph.UpdateTransfers},
		},
	}
}

// readArray decodes a non-empty JSON array, answering 400 itself when it cannot.
func readArray[T any](h *handlers.Handler, w http.ResponseWriter, r *http.Request, devMessage string) ([]T, bool) {
	var list []T
	if err := handlers.Decode(r, &list); err != nil || len(list) == 0 {
		h.Respond.Reject(w, r, http.StatusBadRequest, "Invalid payload", devMessage)
		return nil, false
	}
	return list, true
}

func (ph *P2PHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	issuanceID, err := handlers.QueryUUID(r, "issuance_id")
	if err != nil {
		ph.h.Fail(w, r, err, handlers.Entity{})
		return
	}
	rows, err := ph.h.Ledger.ListP2PItems(r.Context(), issuanceID)
	if err != nil {
		ph.h.Fail(w, r, err, handlers.Entity{})
		return
	}
	ph.h.Respond.Success(w, r, http.StatusOK, rows, "Data fetched successfully", "P2P material issuance items retrieved successfully")
}

func (ph *P2PHandler) CreateItems(w http.ResponseWriter, r *http.Request) {
	in, ok := readArray[ledger.P2PItemInput](ph.h, w, r, "Expected array of items")
	if !ok {
		return
	}
	rows, err := ph.h.Ledger.CreateP2PItems(r.Context(), in)
	if err != nil {
		ph.h.Fail(w, r, err, handlers.Entity{})
		return
	}
	ph.h.Respond.Success(w, r, http.StatusCreated, rows,
		"Bulk insert successful", fmt.Sprintf("%d P2P items inserted successfully", len(rows)))
}

// UpdateItems patches each item by id. allocated_qty cannot drop below what
// has already been transferred.
func (ph *P2PHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	updates, err := ledger.DecodePatchList[ledger.P2PItemUpdate](r.Body)
	if err != nil {
		ph.h.Respond.Reject(w, r, http.StatusBadRequest, "Invalid payload", ledger.ClientMessage(err))
		return
	}
	for _, u := range updates {
		if u.ID == uuid.Nil {
			ph.h.Respond.Reject(w, r, http.StatusBadRequest, "ID is required for update", "Missing ID in bulk update payload")
			return
		}
	}
	rows, err := ph.h.Ledger.UpdateP2PItems(r.Context(), updates)
	if err != nil {
		ph.h.Fail(w, r, err, handlers.Entity{Title: "P2P item", Lower: "P2P item"})
		return
	}
	ph.h.Respond.Success(w, r, http.StatusOK, rows,
		"Bulk update successful", fmt.Sprintf("%d P2P items updated successfully", len(rows)))
}

func (ph *P2PHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	issuanceID, err := handlers.QueryUUID(r, "issuance_id")
	if err != nil {
		ph.h.Fail(w, r, err, handlers.Entity{})
		return
	}
	rows, err := ph.h.Ledger.ListP2PTransfers(r.Context(), issuanceID)
	if err != nil {
		ph.h.Fail(w, r, err, handlers.Entity{})
		return
	}
	ph.h.Respond.Success(w, r, http.StatusOK, rows, "Data fetched successfully", "P2P material issuance item transfers retrieved successfully")
}

// CreateTransfers inserts every transfer or none; the owning items' totals
// may not exceed their allocated_qty.
func (ph *P2PHandler) CreateTransfers(w http.ResponseWriter, r *http.Request) {
	in, ok := readArray[ledger.P2PTransferInput](ph.h, w, r, "Expected an array of items")
	if !ok {
		return
	}
	rows, err := ph.h.Ledger.CreateP2PTransfers(r.Context(), in)
	if err != nil {
		ph.h.Fail(w, r, err, handlers.Entity{})
		return
	}
	ph.h.Respond.Success(w, r, http.StatusCreated, rows,
		"Bulk insert successful", fmt.Sprintf("%d P2P transfer records inserted successfully", len(rows)))
}

func (ph *P2PHandler) UpdateTransfers(w http.ResponseWriter, r *http.Request) {
	updates, err := ledger.DecodePatchList[ledger.P2PTransferUpdate](r.Body)
	if err != nil {
		ph.h.Respond.Reject(w, r, http.StatusBadRequest, "Invalid payload", ledger.ClientMessage(err))
		return
	}
	for _, u := range updates {
		if u.ID == uuid.Nil {
			ph.h.Respond.Reject(w, r, http.StatusBadRequest, "ID is required for update", "Missing ID in update payload")
			return
		}
	}
	rows, err := ph.h.Ledger.UpdateP2PTransfers(r.Context(), updates)
	if err != nil {
		ph.h.Fail(w, r, err, handlers.Entity{Title: "P2P transfer", Lower: "P2P transfer"})
		return
	}
	ph.h.Respond.Success(w, r, http.StatusOK, rows,
		"Bulk update successful", fmt.Sprintf("%d P2P transfer records updated successfully", len(rows)))
}
