package config

import "github.com/go-playground/validator/v10"

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate runs struct-tag validation over cfg. Invalid configuration is a
// startup-fatal error.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}
