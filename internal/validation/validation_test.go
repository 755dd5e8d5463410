package validation

import (
	"testing"
)

func TestIsValidMicrobialResult(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"PASS", true},
		{"FAIL", true},
		{"PENDING", true},
		{"pass", true},
		{" fail ", true},

		{"OK", false},
		{"", false},
		{"FAILED", false},
	}

	for _, tc := range tests {
		if got := IsValidMicrobialResult(tc.input); got != tc.valid {
			t.Errorf("IsValidMicrobialResult(%q) = %v, want %v", tc.input, got, tc.valid)
		}
	}
}

func TestIsValidBatchStatus(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"IN_PROGRESS", true},
		{"completed", true},
		{"REJECTED", true},

		{"DONE", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsValidBatchStatus(tc.input); got != tc.valid {
			t.Errorf("IsValidBatchStatus(%q) = %v, want %v", tc.input, got, tc.valid)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"hello", 10, "hello"},
		{"  hello  ", 10, "hello"},
		{"hello world", 5, "hello"},
		{"null\x00byte", 20, "nullbyte"},
	}

	for _, tc := range tests {
		if got := SanitizeString(tc.input, tc.maxLen); got != tc.expected {
			t.Errorf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.expected)
		}
	}
}

func TestTemperatureInRange(t *testing.T) {
	if err := TemperatureInRange("temperature", 4.5)(); err != nil {
		t.Errorf("4.5°C should be valid, got %v", err)
	}
	if err := TemperatureInRange("temperature", -80)(); err == nil {
		t.Error("-80°C should be rejected")
	}
	if err := TemperatureInRange("temperature", 120)(); err == nil {
		t.Error("120°C should be rejected")
	}
}

func TestHumidityInRange(t *testing.T) {
	if err := HumidityInRange("humidity", nil)(); err != nil {
		t.Errorf("nil humidity should pass, got %v", err)
	}

	ok := 55.0
	if err := HumidityInRange("humidity", &ok)(); err != nil {
		t.Errorf("55%%RH should be valid, got %v", err)
	}

	bad := 140.0
	if err := HumidityInRange("humidity", &bad)(); err == nil {
		t.Error("140%%RH should be rejected")
	}
}

func TestPHInRange(t *testing.T) {
	ok := 6.5
	if err := PHInRange("ph", &ok)(); err != nil {
		t.Errorf("pH 6.5 should be valid, got %v", err)
	}

	bad := 15.0
	if err := PHInRange("ph", &bad)(); err == nil {
		t.Error("pH 15 should be rejected")
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	errs := Validate(
		Required("name", ""),
		Required("code", "B-1"),
		MicrobialResult("microbial_result", "MAYBE"),
	)

	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs.Error() == "" {
		t.Error("expected non-empty error string")
	}
}
