package artifact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Removed_O_c", want: "Removed_O_c"},
		{in: `a\b/c*d?e:f"g<h>i|j`, want: "a_b_c_d_e_f_g_h_i_j"},
		{in: "Inserted_Li_0.250_0.250_0.250", want: "Inserted_Li_0.250_0.250_0.250"},
		{in: "Removed_O_4a/b", want: "Removed_O_4a_b"},
		{in: "", want: ""},
		{in: "Ünïcode ok", want: "Ünïcode ok"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_IdempotentAndClean(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		`\/*?:"<>|`,
		"__already__sanitized__",
		"mixed/..\\path:with*every?char\"<>|",
		"Antisite_O_into_Sr_a",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "not idempotent for %q", in)
		assert.False(t, strings.ContainsAny(once, forbidden), "forbidden character left in %q", once)
		assert.Equal(t, len([]rune(in)), len([]rune(once)))
	}
}
