package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator names fields by their koanf key so errors point at the same
// path used in YAML files and APP_ environment variables.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("koanf"), ","); name != "" {
			return name
		}
		return f.Name
	})
	v.RegisterStructValidation(validateTimeouts, Config{})
	v.RegisterStructValidation(validateCORS, CORSConfig{})
	return v
}

// validateTimeouts requires the upstream call to give up before the server
// stops writing, otherwise a slow API turns into a dropped page instead of
// the fallback quote.
func validateTimeouts(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok || cfg.Client.Timeout == 0 || cfg.Server.WriteTimeout == 0 {
		return
	}
	if cfg.Client.Timeout >= cfg.Server.WriteTimeout {
		sl.ReportError(cfg.Client.Timeout, "client.timeout", "Timeout", "ltwrite", "server.write_timeout")
	}
}

// validateCORS rejects an enabled CORS section with an empty origin list.
// A missing list is already caught by required_if.
func validateCORS(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(CORSConfig)
	if ok && cfg.Enabled && cfg.AllowedOrigins != nil && len(cfg.AllowedOrigins) == 0 {
		sl.ReportError(cfg.AllowedOrigins, "allowed_origins", "AllowedOrigins", "required_if", "")
	}
}

// FieldError is one rejected setting, named by its dotted koanf key.
type FieldError struct {
	Key     string
	Problem string
}

func (e FieldError) Error() string { return e.Key + " " + e.Problem }

// Validate reports every invalid setting at once. The service refuses to
// start on any of them.
func (c *Config) Validate() error {
	err := validate.Struct(c)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	problems := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, FieldError{Key: settingKey(fe.Namespace()), Problem: problem(fe)})
	}
	return fmt.Errorf("invalid configuration:\n%w", errors.Join(problems...))
}

// settingKey drops the root type name: "Config.server.port" -> "server.port".
func settingKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func problem(fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required while enabled"
	case "min":
		return "must be at least " + p
	case "max":
		return "must be at most " + p
	case "gt":
		return "must be greater than " + p
	case "oneof":
		return "must be one of: " + p
	case "url":
		return "must be a valid URL"
	case "startswith":
		return fmt.Sprintf("must start with %q", p)
	case "ltwrite":
		return "must be shorter than " + p
	}
	return "failed " + fe.Tag() + " check"
}
