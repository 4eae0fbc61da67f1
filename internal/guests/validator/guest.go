package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"groupstay/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, e := range v {
		fields[e.Field] = e.Message
	}
	return map[string]any{"fields": fields}
}

type GuestValidator struct {
	validate *validator.Validate
}

func NewGuestValidator() *GuestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(fmt.Sprintf("register nonblank validation: %v", err))
	}

	return &GuestValidator{validate: v}
}

func (v *GuestValidator) Validate(g *model.Guest) error {
	if err := v.validate.Struct(g); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return v.validateBusinessRules(g)
}

func (v *GuestValidator) validateBusinessRules(g *model.Guest) error {
	if g.HighFloor && g.GroundFloor {
		return ValidationErrors{{Field: "groundFloor", Message: "cannot request both a high floor and the ground floor"}}
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		out = append(out, ValidationError{Field: fieldName(err), Message: message(err)})
	}
	return out
}

// fieldName keeps the slice index for dive errors, e.g. dietaryRequirements[2].
func fieldName(err validator.FieldError) string {
	ns := err.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return err.Field()
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "nonblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + err.Param()
	case "max":
		if err.Kind() == reflect.Slice {
			return "must have at most " + err.Param() + " entries"
		}
		return "must be at most " + err.Param() + " characters"
	default:
		return fmt.Sprintf("failed %q validation", err.Tag())
	}
}
