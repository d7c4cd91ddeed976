// Package config provides configuration management for the host monitor.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "gateway.host")
	Tag     string      // Validation tag that failed (e.g., "required", "gte")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate = validator.New()

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	// Run custom business logic validations
	if errs := validateThresholds(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateInterval(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateThresholds validates that warning thresholds are less than critical thresholds.
func validateThresholds(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	thresholdPairs := []struct {
		name     string
		warning  float64
		critical float64
	}{
		{"thresholds.cpu", cfg.Thresholds.CPU.Warning, cfg.Thresholds.CPU.Critical},
		{"thresholds.memory", cfg.Thresholds.Memory.Warning, cfg.Thresholds.Memory.Critical},
		{"thresholds.disk", cfg.Thresholds.Disk.Warning, cfg.Thresholds.Disk.Critical},
		{"thresholds.load", cfg.Thresholds.LoadPerCore.Warning, cfg.Thresholds.LoadPerCore.Critical},
	}

	for _, tp := range thresholdPairs {
		if tp.warning >= tp.critical {
			errors = append(errors, &ValidationError{
				Field:   tp.name,
				Tag:     "threshold_order",
				Value:   fmt.Sprintf("warning=%v, critical=%v", tp.warning, tp.critical),
				Message: fmt.Sprintf("warning threshold (%.2f) must be less than critical threshold (%.2f)", tp.warning, tp.critical),
			})
		}
	}

	return errors
}

// validateInterval validates the poll interval configuration.
func validateInterval(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Monitor.Interval <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "monitor.interval",
			Tag:     "gt",
			Value:   cfg.Monitor.Interval,
			Message: fmt.Sprintf("poll interval must be positive, got %v", cfg.Monitor.Interval),
		})
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Gateway.Host" -> "gateway.host"
func formatFieldName(namespace string) string {
	// Remove the root struct name (e.g., "Config.")
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove "Config"
	}

	// Convert to lowercase and join
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
