package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/interfaces/http/dto"
)

// SetupValidator registers custom binding validations and configures the
// validator to report json/form field names in error messages. Call once
// at startup before routes are registered.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine type %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	if err := v.RegisterValidation("document_number", validateDocumentNumber); err != nil {
		return fmt.Errorf("register document_number validation: %w", err)
	}
	if err := v.RegisterValidation("payment_method", validatePaymentMethod); err != nil {
		return fmt.Errorf("register payment_method validation: %w", err)
	}
	return nil
}

func validateDocumentNumber(fl validator.FieldLevel) bool {
	return commerce.IsValidDocumentNumber(fl.Field().String())
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return commerce.PaymentMethod(fl.Field().String()).IsValid()
}

// FormatValidationErrors converts validator errors into field-level details
// suitable for the response envelope.
func FormatValidationErrors(err error) []dto.ValidationDetail {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []dto.ValidationDetail{{Field: "request", Message: err.Error()}}
	}

	details := make([]dto.ValidationDetail, 0, len(errs))
	for _, fe := range errs {
		details = append(details, dto.ValidationDetail{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "document_number":
		return "must match the pattern XX-YYYY-NNNNN"
	case "payment_method":
		return "must be a valid payment method"
	case "datetime":
		return fmt.Sprintf("must be a date in format %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation on %s", fe.Tag())
	}
}
