package symmetry

import (
	"context"

	"github.com/leapstack-labs/defectgen/pkg/core"
)

// P1Oracle assigns the trivial space group P1 to any structure: the identity
// is the only operation, every site sits on Wyckoff position a and forms its
// own orbit.
type P1Oracle struct{}

// Classify implements Oracle.
func (P1Oracle) Classify(_ context.Context, s *core.Structure) (*Classification, error) {
	c := &Classification{
		SpaceGroupSymbol: "P1",
		SpaceGroupNumber: 1,
		Operations:       []Operation{Identity},
		Wyckoffs:         make([]string, s.Len()),
		EquivalentAtoms:  make([]int, s.Len()),
	}
	for i := range s.Len() {
		c.Wyckoffs[i] = "a"
		c.EquivalentAtoms[i] = i
	}
	return c, nil
}
