package validator

import (
	"fmt"
	"reflect"
	"strings"

	"civic-portal/app/domain"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with portal-specific rules
type Validator struct {
	validator *validator.Validate
}

// New creates a new validator instance with custom rules
func New() *Validator {
	validate := validator.New()

	registerCustomValidators(validate)

	// Use JSON field names for validation error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validator: validate,
	}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return NewValidationError(err.(validator.ValidationErrors))
	}
	return nil
}

// ValidateVar validates a single variable
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	return v.validator.Var(field, tag)
}

// ValidationError represents a validation error with user-friendly messages
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	var messages []string
	for field, message := range e.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", field, message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	errors := make(map[string]string)

	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errors[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			errors[field] = fmt.Sprintf("%s must be at least %s characters long", field, err.Param())
		case "max":
			errors[field] = fmt.Sprintf("%s must be at most %s characters long", field, err.Param())
		case "staff_role":
			errors[field] = fmt.Sprintf("%s must be one of OFFICER, DEPT_HEAD, ADMIN", field)
		case "decision":
			errors[field] = fmt.Sprintf("%s must be APPROVED or REJECTED", field)
		case "intent":
			errors[field] = fmt.Sprintf("%s must be citizen or staff", field)
		default:
			errors[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return &ValidationError{Errors: errors}
}

func registerCustomValidators(validate *validator.Validate) {
	// staff_role: a provisionable staff role
	validate.RegisterValidation("staff_role", func(fl validator.FieldLevel) bool {
		role := domain.Role(fl.Field().String())
		return role.IsStaff()
	})

	// decision: a terminal request outcome
	validate.RegisterValidation("decision", func(fl validator.FieldLevel) bool {
		return domain.RequestStatus(fl.Field().String()).IsDecision()
	})

	// intent: a federated flow discriminator
	validate.RegisterValidation("intent", func(fl validator.FieldLevel) bool {
		return domain.FederatedIntent(fl.Field().String()).IsValid()
	})
}
