package utils

import "testing"

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"hello", false},
		{" hello ", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := IsEmpty(tt.input)
			if result != tt.expected {
				t.Errorf("expected %t, got %t", tt.expected, result)
			}
		})
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"15551230001", true},
		{"0", true},
		{"", false},
		{"+15551230001", false},
		{"555-123", false},
		{"１２３", false}, // full-width digits
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := IsDigits(tt.input); result != tt.expected {
				t.Errorf("expected %t, got %t", tt.expected, result)
			}
		})
	}
}

func TestPtrAndDeref(t *testing.T) {
	p := Ptr("value")
	if Deref(p) != "value" {
		t.Errorf("expected value, got %s", Deref(p))
	}
	var nilPtr *string
	if Deref(nilPtr) != "" {
		t.Errorf("expected empty string for nil pointer")
	}
}
