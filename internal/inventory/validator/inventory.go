package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
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

// Details renders the errors for an error response body.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, e := range v {
		fields[e.Field] = e.Message
	}
	return map[string]any{"fields": fields}
}

// Scope ids end up in object keys and file names.
var reScopeID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

type InventoryValidator struct {
	validate *validator.Validate
}

func NewInventoryValidator() *InventoryValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	mustRegister(v, "pool_kind", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseKind(fl.Field().String())
		return ok
	})
	mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "scope_id", func(fl validator.FieldLevel) bool {
		return reScopeID.MatchString(fl.Field().String())
	})

	return &InventoryValidator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func (v *InventoryValidator) ValidateScope(scope *model.Scope) error {
	return v.check(scope)
}

func (v *InventoryValidator) ValidatePool(in *model.PoolInput) error {
	return v.check(in)
}

func (v *InventoryValidator) ValidateAllocation(in *model.AllocationInput) error {
	if err := v.check(in); err != nil {
		return err
	}
	if *in.Delta == 0 {
		return ValidationErrors{{Field: "delta", Message: "delta must not be zero"}}
	}
	return nil
}

func (v *InventoryValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		out = append(out, ValidationError{Field: err.Field(), Message: message(err)})
	}
	return out
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "nonblank":
		return "must not be blank"
	case "pool_kind":
		return fmt.Sprintf("unknown pool kind %q (want room, transport, dining or activity)", err.Value())
	case "scope_id":
		return "must be 1-64 letters, digits, '.', '_' or '-' and start with a letter or digit"
	case "min":
		return "must be at least " + err.Param()
	case "max":
		return "must be at most " + err.Param()
	case "datetime":
		return "must be a date formatted as " + err.Param()
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %q validation", err.Tag())
	}
}
