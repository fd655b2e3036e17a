package service

import (
	"errors"
	"reflect"
	"strings"

	"inventory-api/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and appends any extra field errors
func validateStruct(input any, extra ...domain.FieldError) error {
	fields := []domain.FieldError{}

	if err := validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		for _, e := range validationErrors {
			fields = append(fields, domain.FieldError{
				Field:      e.Field(),
				Constraint: constraintMessage(e),
			})
		}
	}

	fields = append(fields, extra...)
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

// validateField checks a single value against tag and reports failures under field
func validateField(field string, value any, tag string) []domain.FieldError {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []domain.FieldError{{Field: field, Constraint: "is invalid"}}
	}
	fields := make([]domain.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, domain.FieldError{Field: field, Constraint: constraintMessage(e)})
	}
	return fields
}

func constraintMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "max":
		return "must be at most " + e.Param() + " characters"
	default:
		return "is invalid"
	}
}

// optionalString turns blank input into an absent value
func optionalString(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

// mergeOptional applies a partial update: nil keeps stored, blank clears it
func mergeOptional(input, stored *string) *string {
	if input == nil {
		return stored
	}
	return optionalString(input)
}
