package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvironmentStr(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		expected   Environment
		production bool
	}{
		{"exact production", "production", PRODUCTION, true},
		{"upper case", "PRODUCTION", PRODUCTION, true},
		{"padded with whitespace", " \tProduction\n", PRODUCTION, true},
		{"development", "development", DEVELOPMENT, false},
		{"staging falls back", "staging", DEVELOPMENT, false},
		{"abbreviation is not production", "prod", DEVELOPMENT, false},
		{"empty falls back", "", DEVELOPMENT, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := FromEnvironmentStr(tt.input)
			assert.Equal(t, tt.expected, env)
			assert.Equal(t, tt.production, env.IsProduction())
			assert.Equal(t, string(tt.expected), env.Get())
		})
	}
}

func TestEnvironment_IsProductionIsExact(t *testing.T) {
	assert.True(t, PRODUCTION.IsProduction())
	assert.False(t, Environment("Production").IsProduction(), "only parsed values are normalised")
	assert.False(t, DEVELOPMENT.IsProduction())
}
