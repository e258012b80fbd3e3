package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"
	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger"

	"github.com/google/uuid"
)

// GenericFailure is the client message of every unexpected envelope failure.
const GenericFailure = "Something went wrong, please try again later"

type Handler struct {
	Ledger  *ledger.Service
	Respond *config.Responder
	Logger  *slog.Logger
}

func NewHandler(l *ledger.Service, rs *config.Responder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Ledger: l, Respond: rs, Logger: logger}
}

func badRequest(op, msg string, err error) error {
	return &ledger.Error{Kind: ledger.KindValidation, Op: op, Message: msg, Err: err}
}

// PathUUID parses the named path wildcard.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest("path", "invalid "+name+": "+raw, err)
	}
	return id, nil
}

// QueryUUID parses an optional query parameter; absent means not Valid.
func QueryUUID(r *http.Request, name string) (uuid.NullUUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, badRequest("query", "invalid "+name+": "+raw, err)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

// Decode reads one JSON value from the request body into v.
func Decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return badRequest("decode", "request body too large", err)
	case errors.Is(err, io.EOF):
		return badRequest("decode", "request body is empty", err)
	default:
		return badRequest("decode", "invalid request body", err)
	}
}

// DecodeList reads a JSON array and rejects an empty one with emptyMsg.
func DecodeList[T any](r *http.Request, emptyMsg string) ([]T, error) {
	var list []T
	if err := Decode(r, &list); err != nil {
		return nil, badRequest("decode", emptyMsg, err)
	}
	if len(list) == 0 {
		return nil, badRequest("decode", emptyMsg, nil)
	}
	return list, nil
}

// Entity names a resource in envelope messages, e.g. {"Allocation", "allocation"}.
type Entity struct {
	Title string
	Lower string
}

// Fail writes the failure envelope for err. Not-found errors use the entity's
// canned messages when one is given; unexpected errors get the generic text.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request, err error, e Entity) {
	status := ledger.HTTPStatus(err)
	switch {
	case errors.Is(err, ledger.ErrEmptyPatch):
		h.Respond.Reject(w, r, status, "No valid fields to update", "Request body contains no valid update fields")
	case status == http.StatusNotFound && e.Title != "":
		h.Respond.Reject(w, r, status, e.Title+" not found", "No "+e.Lower+" found with the provided ID")
	case status >= http.StatusInternalServerError:
		h.Respond.Failure(w, r, status, GenericFailure, err)
	case ledger.KindOf(err) == ledger.KindConflict:
		h.Respond.Failure(w, r, status, ledger.ClientMessage(err), err)
	default:
		msg := ledger.ClientMessage(err)
		h.Respond.Reject(w, r, status, msg, msg)
	}
}

// RawError writes {"error": msg} for err. notFound replaces the message of a
// not-found error when non-empty.
func (h *Handler) RawError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	status := ledger.HTTPStatus(err)
	msg := ledger.ClientMessage(err)
	switch {
	case status == http.StatusNotFound && notFound != "":
		msg = notFound
	case status >= http.StatusInternalServerError:
		msg = "Internal server error"
	}
	h.Respond.Error(w, r, status, msg, err)
}

// NotFound answers unknown routes with the envelope 404.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Respond.Reject(w, r, http.StatusNotFound, "Endpoint not found", "Route "+r.Method+" "+r.URL.RequestURI()+" not found")
}
