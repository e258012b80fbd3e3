package middlewares

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"
)

// CORSOptions adapts config.CORSConfig for the middleware.
type CORSOptions struct {
	AllowOrigins     []string // "*", exact origins, or "*.example.com"
	AllowMethods     []string
	AllowHeaders     []string // empty echoes Access-Control-Request-Headers
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // seconds
	Logger           *slog.Logger
}

// NewCORSOptions builds options from the loaded settings.
func NewCORSOptions(c config.CORSConfig, logger *slog.Logger) *CORSOptions {
	return &CORSOptions{
		AllowOrigins:     c.AllowedOrigins,
		AllowMethods:     c.AllowedMethods,
		AllowHeaders:     c.AllowedHeaders,
		ExposeHeaders:    c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
		Logger:           logger,
	}
}

// CORS returns a Cross-Origin Resource Sharing (CORS) middleware
func CORS(opts *CORSOptions) func(next http.Handler) http.Handler {
	if opts == nil {
		opts = &CORSOptions{}
	}

	// Set defaults
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"*"}
	}
	if len(opts.AllowMethods) == 0 {
		opts.AllowMethods = []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodHead,
			http.MethodOptions,
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// Security check: credentials with wildcard origin is insecure
	if opts.AllowCredentials && len(opts.AllowOrigins) == 1 && opts.AllowOrigins[0] == "*" {
		opts.Logger.Warn("CORS: AllowCredentials with wildcard origin (*) is insecure and will not work - specify exact origins")
		opts.AllowCredentials = false
	}

	allowMethods := strings.Join(opts.AllowMethods, ", ")
	allowHeaders := strings.Join(opts.AllowHeaders, ", ")
	exposeHeaders := strings.Join(opts.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(opts.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// No Origin header = same-origin request, no CORS needed
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Check if origin is allowed
			allowedOrigin := getAllowedOrigin(origin, opts.AllowOrigins)
			if allowedOrigin == "" {
				// Origin not allowed - deny preflight, log warning for actual requests
				if r.Method == http.MethodOptions {
					opts.Logger.Debug("CORS preflight denied", "origin", origin, "path", r.URL.Path)
					w.WriteHeader(http.StatusForbidden)
					return
				}
				opts.Logger.Debug("CORS request from disallowed origin", "origin", origin, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			// Set allowed origin (specific origin or "*")
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)

			w.Header().Add("Vary", "Origin")

			// Set credentials header (only if allowed and not wildcard)
			if opts.AllowCredentials && allowedOrigin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Handle preflight OPTIONS request
			if r.Method == http.MethodOptions {
				requestMethod := r.Header.Get("Access-Control-Request-Method")
				requestHeaders := r.Header.Get("Access-Control-Request-Headers")

				opts.Logger.Debug("CORS preflight",
					"origin", origin,
					"method", requestMethod,
					"headers", requestHeaders,
				)

				// Set allowed methods
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)

				// Set allowed headers
				if allowHeaders != "" {
					// Use configured allowed headers
					w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				} else if requestHeaders != "" {
					// Echo back requested headers if none configured
					w.Header().Set("Access-Control-Allow-Headers", requestHeaders)
				}

				// Vary on request method and headers for preflight caching
				w.Header().Add("Vary", "Access-Control-Request-Method")
				w.Header().Add("Vary", "Access-Control-Request-Headers")

				// Set preflight cache duration
				if opts.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", maxAge)
				}

				w.WriteHeader(http.StatusNoContent)
				return
			}

			// Handle actual request - set expose headers
			if exposeHeaders != "" {
				w.Header().Set("Access-Control-Expose-Headers", exposeHeaders)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getAllowedOrigin checks if origin is allowed and returns the value to set
// Returns:
// - "*" if wildcard is configured
// - specific origin if matched
// - "" if not allowed
func getAllowedOrigin(origin string, allowOrigins []string) string {
	for _, allowed := range allowOrigins {
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
		// Support wildcard subdomains: *.example.com
		if strings.HasPrefix(allowed, "*.") {
			domain := allowed[1:] // Remove "*"
			if strings.HasSuffix(origin, domain) {
				return origin
			}
		}
	}
	return ""
}
