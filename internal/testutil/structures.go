package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/defectgen/pkg/core"
)

// SrTiO3 returns the five-site cubic perovskite cell: Sr, Ti, O, O, O.
func SrTiO3() *core.Structure {
	s := core.NewStructure(core.CubicLattice(3.905), []core.Site{
		{Species: "Sr", Frac: [3]float64{0, 0, 0}},
		{Species: "Ti", Frac: [3]float64{0.5, 0.5, 0.5}},
		{Species: "O", Frac: [3]float64{0.5, 0.5, 0}},
		{Species: "O", Frac: [3]float64{0.5, 0, 0.5}},
		{Species: "O", Frac: [3]float64{0, 0.5, 0.5}},
	})
	s.Comment = "SrTiO3"
	return s
}

// SrO2 returns a three-site cell with two O sites and one Sr site.
func SrO2() *core.Structure {
	return core.NewStructure(core.CubicLattice(4), []core.Site{
		{Species: "O", Frac: [3]float64{0.25, 0.25, 0.25}},
		{Species: "Sr", Frac: [3]float64{0, 0, 0}},
		{Species: "O", Frac: [3]float64{0.75, 0.75, 0.75}},
	})
}

// SrTiO3POSCAR is SrTiO3 in VASP 5 format.
const SrTiO3POSCAR = `SrTiO3
1.0
   3.905 0.000 0.000
   0.000 3.905 0.000
   0.000 0.000 3.905
Sr Ti O
1 1 3
Direct
0.0 0.0 0.0
0.5 0.5 0.5
0.5 0.5 0.0
0.5 0.0 0.5
0.0 0.5 0.5
`

// WriteFile writes content to name inside dir and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
