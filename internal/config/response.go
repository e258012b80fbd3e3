package config

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the CRUD response shape shared by allocation, material issue and
// P2P endpoints. Data is always present, null on failure.
type Envelope struct {
	Success       bool   `json:"success"`
	StatusCode    int    `json:"statusCode"`
	Data          any    `json:"data"`
	ClientMessage string `json:"clientMessage"`
	DevMessage    string `json:"devMessage"`
}

// ErrorBody is the {"error": msg} shape used by the data-access endpoints.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondJSON writes data as JSON with the given status.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// Responder writes both response conventions and decides how much error detail leaves the process.
type Responder struct {
	ExposeDevMessages bool
	Logger            *slog.Logger
	RequestID         func(context.Context) string
}

func NewResponder(expose bool, logger *slog.Logger, requestID func(context.Context) string) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	if requestID == nil {
		requestID = func(context.Context) string { return "" }
	}
	return &Responder{ExposeDevMessages: expose, Logger: logger, RequestID: requestID}
}

// Success writes a success envelope.
func (rs *Responder) Success(w http.ResponseWriter, r *http.Request, status int, data any, clientMessage, devMessage string) {
	rs.write(w, r, status, Envelope{
		Success:       true,
		StatusCode:    status,
		Data:          data,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
	})
}

// Failure writes a failure envelope. clientMessage must be safe to show a user.
func (rs *Responder) Failure(w http.ResponseWriter, r *http.Request, status int, clientMessage string, err error) {
	rs.logFailure(r, status, err)
	rs.write(w, r, status, Envelope{
		StatusCode:    status,
		ClientMessage: clientMessage,
		DevMessage:    rs.devMessage(r, err, clientMessage),
	})
}

// Reject writes a failure envelope whose dev message is already safe to show.
func (rs *Responder) Reject(w http.ResponseWriter, r *http.Request, status int, clientMessage, devMessage string) {
	rs.write(w, r, status, Envelope{
		StatusCode:    status,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
	})
}

// Error writes {"error": msg}. For 5xx the raw error replaces msg when dev messages are exposed.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	rs.logFailure(r, status, err)
	if status >= http.StatusInternalServerError && err != nil && rs.ExposeDevMessages {
		msg = err.Error()
	}
	rs.write(w, r, status, ErrorBody{Error: msg})
}

// JSON writes a raw body.
func (rs *Responder) JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	rs.write(w, r, status, data)
}

func (rs *Responder) devMessage(r *http.Request, err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if rs.ExposeDevMessages {
		return err.Error()
	}
	if id := rs.RequestID(r.Context()); id != "" {
		return "request " + id + " failed, see server logs"
	}
	return fallback
}

func (rs *Responder) logFailure(r *http.Request, status int, err error) {
	if err == nil || status < http.StatusInternalServerError {
		return
	}
	rs.Logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"request_id", rs.RequestID(r.Context()),
		"error", err,
	)
}

func (rs *Responder) write(w http.ResponseWriter, r *http.Request, status int, body any) {
	if err := RespondJSON(w, status, body); err != nil {
		rs.Logger.WarnContext(r.Context(), "failed to write response", "path", r.URL.Path, "error", err)
	}
}
