package ledger

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies ledger failures for the HTTP boundary.
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindNotFound
	KindInsufficientQuantity
	KindInvalidTransition
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientQuantity:
		return "insufficient_quantity"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindConflict:
		return "conflict"
	default:
		return "persistence"
	}
}

// Error is the single error type returned by Service methods.
// Message is safe to show to API clients; Err carries the raw cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, KindPersistence for foreign errors.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindPersistence
}

// HTTPStatus maps err onto a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientQuantity, KindInvalidTransition, KindConflict:
		// Integrity violations are 409, not 500, so clients can tell a
		// duplicate or dangling reference from an outage.
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage is the user-safe text for err.
func ClientMessage(err error) string {
	var le *Error
	if errors.As(err, &le) && le.Message != "" {
		return le.Message
	}
	switch KindOf(err) {
	case KindNotFound:
		return "Record not found"
	case KindConflict:
		return "The request conflicts with existing data"
	default:
		return "Internal server error"
	}
}

func validationErr(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func notFoundErr(op, what string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: what + " not found", Err: pgx.ErrNoRows}
}

func insufficientErr(op, format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientQuantity, Op: op, Message: fmt.Sprintf(format, args...)}
}

func transitionErr(op, from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Op:      op,
		Message: fmt.Sprintf("cannot move material issue from %q to %q", from, to),
	}
}

// Check constraints that guard quantities map to InsufficientQuantity.
var quantityConstraints = map[string]string{
	"chk_inventory_quantity": "inventory quantity cannot go below zero",
	"chk_p2p_total":          "transferred quantity exceeds allocated quantity",
}

// wrap classifies a store error. Errors that are already *Error pass through.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var le *Error
	if errors.As(err, &le) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: KindNotFound, Op: op, Message: "Record not found", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := quantityConstraints[pgErr.ConstraintName]; ok {
			return &Error{Kind: KindInsufficientQuantity, Op: op, Message: msg, Err: err}
		}
		switch pgErr.Code {
		case "23505", "23503", "23514":
			return &Error{Kind: KindConflict, Op: op, Err: err}
		}
	}

	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// wrapNotFound is wrap with a named entity in the not-found message.
func wrapNotFound(op, what string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		var le *Error
		if !errors.As(err, &le) {
			return notFoundErr(op, what)
		}
	}
	return wrap(op, err)
}
