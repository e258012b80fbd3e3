package tracking

import (
	"net/http"
	"strings"
	"time"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"

	"github.com/jackc/pgx/v5/pgtype"
)

type TrackingHandler struct {
	h *handlers.Handler
}

func NewTrackingHandler(h *handlers.Handler) *TrackingHandler {
	return &TrackingHandler{h: h}
}

// Routes mounts the read-only tracking views under /api/item-tracking.
func (th *TrackingHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Prefix:   "/api/item-tracking",
		Category: "item-tracking",
		Routes: []*router.Route{
			{Method: http.MethodGet, Path: "/item/{item_id}", HandlerFunc: th.Item},
			{Method: http.MethodGet, Path: "/item/{item_id}/timeline", HandlerFunc: th.Timeline},
			{Method: http.MethodGet, Path: "/warehouse/{warehouse_id}", HandlerFunc: th.Warehouse},
			{Method: http.MethodGet, Path: "/project/{project_id}", HandlerFunc: th.Project},
			{Method: http.MethodGet, Path: "/source/{source_id}", HandlerFunc: th.Source},
			{Method: http.MethodGet, Path: "/detailed/{inventory_id}", HandlerFunc: th.Detailed},
		},
	}
}

// Item lists an item's inventory and allocation records.
// Query: start_date, end_date, source_type, store_type.
func (th *TrackingHandler) Item(w http.ResponseWriter, r *http.Request) {
	itemID, err := handlers.PathUUID(r, "item_id")
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	history, err := th.h.Ledger.ItemHistory(r.Context(), itemID, f)
	if err != nil {
		th.h.RawError(w, r, err, "No tracking data found for this item")
		return
	}
	th.h.Respond.JSON(w, r, http.StatusOK, history)
}

func (th *TrackingHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	itemID, err := handlers.PathUUID(r, "item_id")
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	timeline, err := th.h.Ledger.ItemTimeline(r.Context(), itemID)
	if err != nil {
		th.h.RawError(w, r, err, "No timeline data found for this item")
		return
	}
	th.h.Respond.JSON(w, r, http.StatusOK, timeline)
}

func (th *TrackingHandler) Warehouse(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "warehouse_id")
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	view, err := th.h.Ledger.WarehouseStock(r.Context(), id, r.URL.Query().Get("source_type"))
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	th.h.Respond.JSON(w, r, http.StatusOK, view)
}

func (th *TrackingHandler) Project(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "project_id")
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	view, err := th.h.Ledger.ProjectStock(r.Context(), id, r.URL.Query().Get("source_type"))
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	th.h.Respond.JSON(w, r, http.StatusOK, view)
}

func (th *TrackingHandler) Source(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "source_id")
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	view, err := th.h.Ledger.SourceStock(r.Context(), id)
	if err != nil {
		th.h.RawError(w, r, err, "No items found for this source")
		return
	}
	th.h.Respond.JSON(w, r, http.StatusOK, view)
}

// Detailed traces one inventory record back to its source and sender.
func (th *TrackingHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathUUID(r, "inventory_id")
	if err != nil {
		th.h.RawError(w, r, err, "")
		return
	}
	row, err := th.h.Ledger.TraceInventory(r.Context(), id)
	if err != nil {
		th.h.RawError(w, r, err, "Inventory record not found")
		return
	}
	th.h.Respond.JSON(w, r, http.StatusOK, row)
}

var dateLayouts = []string{time.RFC3339, time.DateOnly}

func parseFilter(r *http.Request) (ledger.TrackingFilter, error) {
	q := r.URL.Query()
	f := ledger.TrackingFilter{
		SourceType: strings.TrimSpace(q.Get("source_type")),
		StoreType:  strings.TrimSpace(q.Get("store_type")),
	}
	var err error
	if f.StartDate, err = parseDate(q.Get("start_date"), "start_date"); err != nil {
		return f, err
	}
	f.EndDate, err = parseDate(q.Get("end_date"), "end_date")
	return f, err
}

func parseDate(raw, name string) (pgtype.Timestamptz, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pgtype.Timestamptz{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return pgtype.Timestamptz{Time: t, Valid: true}, nil
		}
	}
	return pgtype.Timestamptz{}, &ledger.Error{Kind: ledger.KindValidation, Op: "tracking_filter", Message: "invalid " + name + ": " + raw}
}
