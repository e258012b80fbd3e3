package middlewares

import (
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"
)

// BodyLimit caps request bodies at maxBytes. Decoders see *http.MaxBytesError
// once the limit is crossed.
func BodyLimit(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				_ = config.RespondJSON(w, http.StatusRequestEntityTooLarge, config.ErrorBody{Error: "request body too large"})
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
