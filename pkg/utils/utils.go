package utils

import (
	"strings"
	"unicode"
)

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the pointed value or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// IsDigits reports whether s is non-empty and consists only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
