package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MiddlewaresType defines the middleware function signature
type MiddlewaresType func(http.Handler) http.Handler

// RouteGroup represents a group of routes with shared configuration
type RouteGroup struct {
	Prefix      string
	Middlewares []MiddlewaresType
	Routes      []*Route
	Category    string
}

// Route represents a single HTTP route. Path uses net/http wildcards, e.g. /{id}.
type Route struct {
	Category    string
	Method      string
	Path        string
	HandlerFunc http.HandlerFunc
	Middlewares []MiddlewaresType
}

// CompiledRoute is a registered route as the mux sees it.
type CompiledRoute struct {
	Method       string
	Path         string
	FullPattern  string // "METHOD /full/path"
	Category     string
	RegisteredAt time.Time
}

// RouteConflictError represents a route registration conflict
type RouteConflictError struct {
	NewRoute      string
	ExistingRoute string
	Message       string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("route conflict: %s conflicts with existing route %s - %s",
		e.NewRoute, e.ExistingRoute, e.Message)
}

// Router wraps http.ServeMux with per-route middleware chains, automatic
// OPTIONS registration and a catch-all for unknown routes.
type Router struct {
	mux               *http.ServeMux
	logger            *slog.Logger
	globalMiddlewares []MiddlewaresType
	compiledRoutes    map[string]*CompiledRoute
	registeredOPTIONS map[string]bool
	routesMu          sync.RWMutex
	isShuttingDown    atomic.Bool
	notFoundSet       bool
}

// NewRouter creates a router. Global middlewares wrap every route, including
// the not-found handler, in the order given.
func NewRouter(logger *slog.Logger, globalMiddlewares ...MiddlewaresType) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		mux:               http.NewServeMux(),
		logger:            logger,
		compiledRoutes:    make(map[string]*CompiledRoute),
		registeredOPTIONS: make(map[string]bool),
	}
	r.globalMiddlewares = append([]MiddlewaresType{r.shutdownAwareMiddleware()}, globalMiddlewares...)
	return r
}

// cleanPath removes duplicate and trailing slashes while keeping {wildcards}.
func cleanPath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	cleaned := path.Clean("/" + strings.TrimPrefix(p, "/"))
	return cleaned
}

// Register registers a single route. A duplicate METHOD+path panics, since the
// mux would panic on it anyway and the route table is fixed at startup.
func (r *Router) Register(route *Route) {
	method := strings.ToUpper(route.Method)
	p := cleanPath(route.Path)
	pattern := method + " " + p

	r.routesMu.Lock()
	if existing, ok := r.compiledRoutes[pattern]; ok {
		r.routesMu.Unlock()
		err := &RouteConflictError{
			NewRoute:      pattern,
			ExistingRoute: existing.FullPattern,
			Message:       fmt.Sprintf("registered at %s", existing.RegisteredAt.Format(time.RFC3339)),
		}
		r.logger.Error("Route conflict detected", "error", err)
		panic(err)
	}
	r.compiledRoutes[pattern] = &CompiledRoute{
		Method:       method,
		Path:         p,
		FullPattern:  pattern,
		Category:     route.Category,
		RegisteredAt: time.Now(),
	}
	r.routesMu.Unlock()

	all := append(append([]MiddlewaresType{}, r.globalMiddlewares...), route.Middlewares...)
	r.mux.Handle(pattern, r.chainMiddlewares(route.HandlerFunc, all))

	if method != http.MethodOptions {
		optionsPattern := http.MethodOptions + " " + p
		r.routesMu.Lock()
		if !r.registeredOPTIONS[optionsPattern] {
			r.registeredOPTIONS[optionsPattern] = true
			r.mux.Handle(optionsPattern, r.chainMiddlewares(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}), all))
		}
		r.routesMu.Unlock()
	}

	r.logger.Debug("Route registered", "pattern", pattern, "category", route.Category)
}

// RegisterGroup registers a group of routes with shared configuration
func (r *Router) RegisterGroup(group *RouteGroup) {
	if group == nil {
		return
	}
	for _, route := range group.Routes {
		if route.Category == "" {
			route.Category = group.Category
		}
		if group.Prefix != "" {
			prefix := strings.TrimSuffix(group.Prefix, "/")
			route.Path = prefix + "/" + strings.TrimPrefix(route.Path, "/")
		}
		if len(group.Middlewares) > 0 {
			route.Middlewares = append(append([]MiddlewaresType{}, group.Middlewares...), route.Middlewares...)
		}
		r.Register(route)
	}
	r.logger.Debug("Route group registered", "prefix", group.Prefix, "routes", len(group.Routes))
}

// Handle mounts a handler for an exact pattern (for example "GET /metrics")
// with the global middlewares.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, r.chainMiddlewares(h, r.globalMiddlewares))
}

// NotFound sets the handler for every request no route matches. The mux then
// answers unknown methods on known paths with it too, instead of 405.
func (r *Router) NotFound(h http.Handler) {
	if r.notFoundSet {
		return
	}
	r.notFoundSet = true
	r.mux.Handle("/", r.chainMiddlewares(h, r.globalMiddlewares))
}

// chainMiddlewares applies middlewares so the first one wraps everything
func (r *Router) chainMiddlewares(handler http.Handler, middlewares []MiddlewaresType) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// Routes lists the registered patterns sorted by path then method.
func (r *Router) Routes() []CompiledRoute {
	r.routesMu.RLock()
	defer r.routesMu.RUnlock()
	out := make([]CompiledRoute, 0, len(r.compiledRoutes))
	for _, c := range r.compiledRoutes {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// BeginShutdown makes every later request fail fast with 503.
func (r *Router) BeginShutdown() {
	r.isShuttingDown.Store(true)
}

func (r *Router) shutdownAwareMiddleware() MiddlewaresType {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if r.isShuttingDown.Load() {
				w.Header().Set("Connection", "close")
				w.Header().Set("Retry-After", "30")
				http.Error(w, "Service Unavailable - Shutting Down", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
