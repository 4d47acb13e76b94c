package model

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags on a domain entity.
func Validate(v any) error {
	return validate.Struct(v)
}
