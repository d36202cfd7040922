// Package validator wraps a shared go-playground validator instance.
package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the struct's validation tags and returns a field→tag
// map of the failures, or nil when the value is valid.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, ve := range err.(validator.ValidationErrors) {
		fields[ve.Field()] = ve.Tag()
	}
	return fields
}
