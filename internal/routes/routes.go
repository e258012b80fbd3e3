// Package routes mounts every HTTP handler of the service on one router.
package routes

import (
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers/access"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers/allocation"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers/challan"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers/inventory"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers/issues"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers/sources"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers/tracking"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/observability"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/security"
)

// Deps are the collaborators the routes need beyond the ledger handler.
type Deps struct {
	Handler *handlers.Handler
	Access  *security.AccessValidator
	Health  *observability.HealthConfig

	// Metrics serves GET /metrics when non-nil.
	Metrics http.Handler
}

// Setup registers the API, the access passthrough and the operational endpoints.
func Setup(r *router.Router, d Deps) {
	h := d.Handler

	ah := allocation.NewAllocationHandler(h)
	r.RegisterGroup(ah.Routes())
	r.RegisterGroup(ah.ItemRoutes())
	r.RegisterGroup(allocation.NewDetailHandler(h).Routes())

	r.RegisterGroup(inventory.NewInventoryHandler(h).Routes())

	sh := sources.NewSourceHandler(h)
	r.RegisterGroup(sh.Routes())
	r.RegisterGroup(sources.NewDetailHandler(h).Routes())
	r.RegisterGroup(sources.NewSplitHandler(h).Routes())

	ih := issues.NewIssueHandler(h)
	r.RegisterGroup(ih.Routes())
	r.RegisterGroup(ih.DetailRoutes())
	r.RegisterGroup(issues.NewItemHandler(h).Routes())
	ph := issues.NewP2PHandler(h)
	r.RegisterGroup(ph.ItemRoutes())
	r.RegisterGroup(ph.TransferRoutes())

	r.RegisterGroup(challan.NewChallanHandler(h).Routes())
	r.RegisterGroup(tracking.NewTrackingHandler(h).Routes())

	if d.Access != nil {
		r.RegisterGroup(access.NewAccessHandler(h, d.Access).Routes())
	}

	r.Register(&router.Route{Category: "ops", Method: http.MethodGet, Path: "/health", HandlerFunc: observability.HealthHandler(d.Health)})
	r.Register(&router.Route{Category: "ops", Method: http.MethodGet, Path: "/live", HandlerFunc: observability.LivenessHandler()})
	if d.Metrics != nil {
		r.Handle("GET /metrics", d.Metrics)
	}

	r.NotFound(http.HandlerFunc(h.NotFound))
}
