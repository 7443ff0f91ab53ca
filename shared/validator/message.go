package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":    "{field} is required",
	"required_if": "{field} is required when {param}",
	"gt":          "{field} must be greater than {param}",
	"gte":         "{field} must be greater than or equal to {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"min":         "{field} must be at least {param}",
	"max":         "{field} must be at most {param}",
	"oneof":       "{field} must be one of {param}",
	"uuid":        "{field} must be a valid UUID",
	"email":       "{field} must be a valid email address",
	"datetime":    "{field} must be a date in the format {param}",
	"mimetypes":   "{field} must be one of {param}",
	"maxfilesize": "{field} must not exceed {param} MB",
}

// message renders every failed field, in declaration order, as one sentence each.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(valErrors))

	for _, fieldErr := range valErrors {
		tmpl, ok := messages[fieldErr.Tag()]
		if !ok {
			parts = append(parts, fieldErr.Error())

			continue
		}

		parts = append(parts, strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(tmpl))
	}

	return strings.Join(parts, "; ")
}
