// Package validation provides input validation helpers for the Batchwatch API.
package validation

import (
	"strings"

	"github.com/gin-gonic/gin"
	"net/http"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for free-text fields
const MaxStringLength = 10000

// Physically plausible sensor ranges. Values outside these bounds are sensor
// faults or client bugs, not data.
const (
	MinTemperatureC = -60.0
	MaxTemperatureC = 90.0
	MinHumidityPct  = 0.0
	MaxHumidityPct  = 100.0
	MinPH           = 0.0
	MaxPH           = 14.0
)

// Recognised microbial test outcomes.
var microbialResults = map[string]bool{
	"PASS":    true,
	"FAIL":    true,
	"PENDING": true,
}

// Recognised batch lifecycle states.
var batchStatuses = map[string]bool{
	"IN_PROGRESS": true,
	"COMPLETED":   true,
	"REJECTED":    true,
}

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidMicrobialResult checks a microbial test outcome (case-insensitive).
func IsValidMicrobialResult(s string) bool {
	return microbialResults[strings.ToUpper(strings.TrimSpace(s))]
}

// IsValidBatchStatus checks a batch lifecycle state (case-insensitive).
func IsValidBatchStatus(s string) bool {
	return batchStatuses[strings.ToUpper(strings.TrimSpace(s))]
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate validates a request and returns errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// TemperatureInRange rejects physically implausible temperatures.
func TemperatureInRange(field string, value float64) func() *ValidationError {
	return func() *ValidationError {
		if value < MinTemperatureC || value > MaxTemperatureC {
			return &ValidationError{Field: field, Message: "must be between -60 and 90 °C"}
		}
		return nil
	}
}

// HumidityInRange rejects humidity outside 0-100 %RH. Nil values pass
// (humidity is optional everywhere it appears).
func HumidityInRange(field string, value *float64) func() *ValidationError {
	return func() *ValidationError {
		if value == nil {
			return nil
		}
		if *value < MinHumidityPct || *value > MaxHumidityPct {
			return &ValidationError{Field: field, Message: "must be between 0 and 100 %RH"}
		}
		return nil
	}
}

// PHInRange rejects pH outside the 0-14 scale. Nil values pass.
func PHInRange(field string, value *float64) func() *ValidationError {
	return func() *ValidationError {
		if value == nil {
			return nil
		}
		if *value < MinPH || *value > MaxPH {
			return &ValidationError{Field: field, Message: "must be between 0 and 14"}
		}
		return nil
	}
}

// MicrobialResult checks the microbial outcome when present.
func MicrobialResult(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // Use Required for required fields
		}
		if !IsValidMicrobialResult(value) {
			return &ValidationError{Field: field, Message: "must be PASS, FAIL, or PENDING"}
		}
		return nil
	}
}
