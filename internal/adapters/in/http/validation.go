package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs validator/v10 into echo.Context.Validate.
// Field names in messages are the JSON names of the request DTOs.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (v *RequestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func describeValidation(validationErrs validator.ValidationErrors) string {
	details := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		field := fieldErr.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fieldErr.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		case "min", "gte", "gt":
			details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldErr.Param()))
		case "max", "lte", "lt":
			details = append(details, fmt.Sprintf("%s must be at most %s", field, fieldErr.Param()))
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of [%s]", field, fieldErr.Param()))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", field))
		}
	}
	return "validation failed: " + strings.Join(details, "; ")
}
