package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"
)

// RecoveryConfig holds configuration for recovery middleware
type RecoveryConfig struct {
	Logger *slog.Logger

	// Respond writes the 500 envelope; a panic value is never shown to clients
	// unless the responder exposes dev messages.
	Respond *config.Responder

	DisableStackTrace bool
}

// Recovery turns a handler panic into a logged 500 envelope.
func Recovery(cfg *RecoveryConfig) func(next http.Handler) http.Handler {
	if cfg == nil {
		cfg = &RecoveryConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	respond := cfg.Respond
	if respond == nil {
		respond = config.NewResponder(false, logger, nil)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"client_ip", clientIP(r),
					"error", fmt.Sprintf("%v", rec),
				}
				if !cfg.DisableStackTrace {
					attrs = append(attrs, "stack", string(debug.Stack()))
				}
				logger.Error("panic recovered", attrs...)

				respond.Failure(w, r, http.StatusInternalServerError,
					"Something went wrong, please try again later", fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
