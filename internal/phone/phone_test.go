package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical_NoRegion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"passthrough", "256712345678", "256712345678"},
		{"trims whitespace", "  256712345678 ", "256712345678"},
		{"strips float suffix", "256712345678.0", "256712345678"},
		{"empty", "", ""},
		{"keeps plus", "+256712345678", "+256712345678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.input, ""))
		})
	}
}

func TestCanonical_WithRegion(t *testing.T) {
	want := "+256772123456"
	assert.Equal(t, want, Canonical("+256772123456", "UG"))
	assert.Equal(t, want, Canonical("0772 123456", "UG"))
	assert.Equal(t, want, Canonical("256772123456", "UG"))
}

func TestCanonical_InvalidFallsBack(t *testing.T) {
	assert.Equal(t, "12", Canonical(" 12 ", "UG"))
	assert.Equal(t, "tester", Canonical("tester", "UG"))
}
