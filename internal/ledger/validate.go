package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Database wrapper types validate as their plain value, or as absent when null.
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d := f.Interface().(decimal.Decimal)
		return d.InexactFloat64()
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d := f.Interface().(decimal.NullDecimal)
		if !d.Valid {
			return nil
		}
		return d.Decimal.InexactFloat64()
	}, decimal.NullDecimal{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		id := f.Interface().(uuid.UUID)
		if id == uuid.Nil {
			return nil
		}
		return id.String()
	}, uuid.UUID{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		id := f.Interface().(uuid.NullUUID)
		if !id.Valid {
			return nil
		}
		return id.UUID.String()
	}, uuid.NullUUID{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		t := f.Interface().(pgtype.Text)
		if !t.Valid {
			return nil
		}
		return t.String
	}, pgtype.Text{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d := f.Interface().(pgtype.Date)
		if !d.Valid {
			return nil
		}
		return d.Time
	}, pgtype.Date{})

	return v
}

// check runs struct validation and turns the first failure into a Validation error.
func (s *Service) check(op string, in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Kind: KindValidation, Op: op, Message: "invalid request", Err: err}
	}
	fe := verrs[0]
	return &Error{Kind: KindValidation, Op: op, Message: describe(fe), Err: err}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
