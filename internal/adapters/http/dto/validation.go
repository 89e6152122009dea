package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/quote-oasis/internal/domain"
)

var (
	// ErrValidation wraps struct validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrBinding wraps body or query decoding failures.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field names in errors come from
// json tags, falling back to form tags, so details match what clients sent.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		mustRegister(v, "category", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || domain.Category(s).Valid()
		})
		mustRegister(v, "notempty", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %q validation: %v", tag, err))
	}
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return fld.Name
}

// Validate checks v against its validate tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// BindAndValidate decodes a JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	return bindWith(c, v, binding.JSON)
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	return bindWith(c, v, binding.Query)
}

// bindWith uses b for decoding only. Gin's own validator reads binding tags,
// which these DTOs do not carry, so the validate tags are checked here.
func bindWith(c *gin.Context, v any, b binding.Binding) error {
	if err := c.ShouldBindWith(v, b); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}
	return Validate(v)
}

// ValidationErrors flattens validator failures into field -> message.
// Errors that are not validation failures yield an empty map.
func ValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

// IsValidationError reports whether err carries validator failures.
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

func message(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "category":
		return "must be one of the supported categories"
	case "notempty":
		return "must not be empty"
	case "oneof":
		return "must be one of: " + param
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be %s %s characters", bound, param)
		}
		return fmt.Sprintf("must be %s %s", bound, param)
	default:
		return "failed validation: " + fe.Tag()
	}
}
