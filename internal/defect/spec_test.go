package defect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr string
	}{
		{name: "removal ok", spec: Removal{Elements: []string{"O", "La"}}},
		{name: "removal empty", spec: Removal{}, wantErr: "elements: must name at least one element"},
		{name: "removal unknown", spec: Removal{Elements: []string{"O", "Xx"}}, wantErr: `elements[1]: unknown element "Xx"`},
		{name: "removal duplicate", spec: Removal{Elements: []string{"O", "Sr", "O"}}, wantErr: `elements[2]: duplicate element "O"`},
		{name: "removal blank", spec: Removal{Elements: []string{""}}, wantErr: "elements[0]: element is empty"},
		{
			name: "substitution ok",
			spec: Substitution{Elements: []string{"O", "La"}, Replacements: []string{"N", "Ca"}},
		},
		{
			name:    "substitution length mismatch",
			spec:    Substitution{Elements: []string{"O", "La"}, Replacements: []string{"N"}},
			wantErr: "replacements: has 1 entries but elements has 2",
		},
		{
			name:    "substitution unknown replacement",
			spec:    Substitution{Elements: []string{"O"}, Replacements: []string{"Q"}},
			wantErr: `replacements[0]: unknown element "Q"`,
		},
		{
			name: "interstitial ok",
			spec: Interstitial{Atoms: []InsertedAtom{{Element: "Li", Frac: [3]float64{0.25, 0.25, 0.25}}}},
		},
		{name: "interstitial empty", spec: Interstitial{}, wantErr: "atoms: must list at least one atom"},
		{
			name:    "interstitial not finite",
			spec:    Interstitial{Atoms: []InsertedAtom{{Element: "Li"}, {Element: "Na", Frac: [3]float64{0, math.NaN(), 0}}}},
			wantErr: "atoms[1].coords: NaN is not a finite number",
		},
		{
			name:    "interstitial unknown element",
			spec:    Interstitial{Atoms: []InsertedAtom{{Element: "li"}}},
			wantErr: `atoms[0].element: unknown element "li"`,
		},
		{name: "antisite ok", spec: Antisite{Pairs: []Pair{{Source: "O", Target: "Sr"}}}},
		{name: "antisite empty", spec: Antisite{}, wantErr: "pairs: must list at least one pair"},
		{
			name:    "antisite same species",
			spec:    Antisite{Pairs: []Pair{{Source: "Sr", Target: "Ti"}, {Source: "O", Target: "O"}}},
			wantErr: `pairs[1]: source and target are both "O"`,
		},
		{
			name:    "antisite unknown target",
			spec:    Antisite{Pairs: []Pair{{Source: "O", Target: "Zz"}}},
			wantErr: `pairs[0].target: unknown element "Zz"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSpec)
			assert.EqualError(t, err, tt.wantErr)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.NotEmpty(t, fe.Field)
		})
	}
}

func TestSpec_Describe(t *testing.T) {
	assert.Equal(t, "remove O, La", Removal{Elements: []string{"O", "La"}}.String())
	assert.Equal(t, "replace O->N, La->Ca",
		Substitution{Elements: []string{"O", "La"}, Replacements: []string{"N", "Ca"}}.String())
	assert.Equal(t, "insert Li@(0.25, 0.25, 0.25)",
		Interstitial{Atoms: []InsertedAtom{{Element: "Li", Frac: [3]float64{0.25, 0.25, 0.25}}}}.String())
	assert.Equal(t, "antisite O into Sr", Antisite{Pairs: []Pair{{Source: "O", Target: "Sr"}}}.String())

	assert.Equal(t, "Removed", Removal{}.Prefix())
	assert.Equal(t, "substitution", Substitution{}.Kind())
}
