// Package validator provides struct validation for ergo.
//
// This package wraps go-playground/validator to provide:
//   - Field names taken from yaml, mapstructure or json tags
//   - Human-readable error messages
//
// It validates decoded request documents and loaded configuration:
//
//	if err := validator.Validate(input); err != nil {
//	    // err is a validator.ValidationErrors, e.g. "count: is required"
//	}
//
// The validator instance is package-level and thread-safe.
package validator
