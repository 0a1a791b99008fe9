package oql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryString(t *testing.T) {
	qs, err := NewQueryString("SELECT * FROM /Example e")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM /Example e", qs.Query())
}

func TestNewQueryStringRejectsBlank(t *testing.T) {
	for _, query := range []string{"", "  ", "\t\n"} {
		_, err := NewQueryString(query)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedQuery))
	}
}

func TestAsDistinct(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "promotes plain SELECT",
			query:    "SELECT * FROM /Example e",
			expected: "SELECT DISTINCT * FROM /Example e",
		},
		{
			name:     "already distinct",
			query:    "SELECT DISTINCT * FROM /Example e",
			expected: "SELECT DISTINCT * FROM /Example e",
		},
		{
			name:     "lower case distinct recognized",
			query:    "select distinct * from /Example e",
			expected: "select distinct * from /Example e",
		},
		{
			name:     "preserves original casing",
			query:    "select * from /Example e",
			expected: "select DISTINCT * from /Example e",
		},
		{
			name:     "no SELECT clause untouched",
			query:    "FROM /Example e",
			expected: "FROM /Example e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, asDistinct(tt.query))
		})
	}
}
