package access

import (
	"errors"
	"io"
	"net/http"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/handlers"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/router"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/security"
)

type AccessHandler struct {
	h         *handlers.Handler
	validator *security.AccessValidator
}

func NewAccessHandler(h *handlers.Handler, v *security.AccessValidator) *AccessHandler {
	return &AccessHandler{h: h, validator: v}
}

func (ah *AccessHandler) Routes() *router.RouteGroup {
	return &router.RouteGroup{
		Category: "access",
		Routes: []*router.Route{
			{Method: http.MethodPost, Path: "/validate-with-access-ims", HandlerFunc: ah.Validate},
		},
	}
}

// Validate relays the request to the auth service and answers with its status and body.
func (ah *AccessHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		ah.h.Respond.Error(w, r, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	res, err := ah.validator.Validate(r.Context(), r.Header.Get("Authorization"), body)
	switch {
	case errors.Is(err, security.ErrMissingToken):
		ah.h.Respond.Error(w, r, http.StatusUnauthorized, "Authorization token is required", nil)
		return
	case errors.Is(err, security.ErrAuthUnset):
		ah.h.Respond.Error(w, r, http.StatusBadGateway, "Auth service is not configured", nil)
		return
	case err != nil:
		ah.h.Logger.ErrorContext(r.Context(), "access validation failed", "error", err)
		ah.h.Respond.Error(w, r, http.StatusBadGateway, "Auth service unavailable", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	if _, err := w.Write(res.Body); err != nil {
		ah.h.Logger.WarnContext(r.Context(), "failed to relay access response", "error", err)
	}
}
