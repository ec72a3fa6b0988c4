package namematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		catalog   string
		candidate string
		want      bool
	}{
		{"exact", "Main Street", "Main Street", true},
		{"case insensitive", "Main Street", "MAIN STREET", true},
		{"whitespace", "Main Street", "  main street ", true},
		{"abbreviated suffix", "Main Street", "Main St", true},
		{"reversed direction", "Main St", "Main Street", true},
		{"suffix stripped both sides", "Elm Avenue", "Elm Ave", true},
		{"boulevard abbreviation", "Sunset Boulevard", "Sunset Blvd", true},
		{"candidate with extra context", "Main Street", "North Main Street", true},
		{"different streets", "Main Street", "Oak Avenue", false},
		{"suffix only is not a name", "Street", "Avenue", false},
		{"empty catalog name", "", "Main Street", false},
		{"empty candidate", "Main Street", "", false},
		{"unrelated after strip", "Elm Street", "Oak St", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.catalog, tt.candidate))
		})
	}
}
