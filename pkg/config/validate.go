package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Validate checks every section and reports all failing fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to one error listing each
// failing field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s: field is required", field))
		case "min":
			errs = append(errs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max":
			errs = append(errs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "gt":
			errs = append(errs, fmt.Errorf("%s: must be greater than %s", field, param))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: %v must be one of [%s]", field, e.Value(), param))
		default:
			errs = append(errs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}

	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
