package services

import (
	"fmt"
	"strings"
)

// FieldViolation is one user-facing input problem, addressed by field name
// so clients can attach it to the offending control.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violation found in one input instead of
// failing on the first, so a client can show all problems at once.
type ValidationError struct {
	Violations []FieldViolation
}

func (validationError *ValidationError) Error() string {
	if len(validationError.Violations) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(validationError.Violations))
	for _, violation := range validationError.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", violation.Field, violation.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(violations ...FieldViolation) error {
	return &ValidationError{Violations: violations}
}

type violationCollector struct {
	violations []FieldViolation
}

func (collector *violationCollector) add(field string, message string) {
	collector.violations = append(collector.violations, FieldViolation{Field: field, Message: message})
}

func (collector *violationCollector) result() error {
	if len(collector.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: collector.violations}
}
