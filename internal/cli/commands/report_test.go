package commands

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/defectgen/internal/cli/testutil"
	"github.com/leapstack-labs/defectgen/internal/engine"
	"github.com/leapstack-labs/defectgen/internal/symmetry"
)

func TestReport_Markdown(t *testing.T) {
	cfg := testutil.SetupTestProject(t)

	stdout, _, err := testutil.RunCommand(t, NewReportCommand(), cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, "# Sr1 Ti1 O3")
	assert.Contains(t, stdout, "- **Space group:** P1 (#1)")
	assert.Contains(t, stdout, "- **Cell:** a=3.9050 b=3.9050 c=3.9050, V=59.547")
	assert.Contains(t, stdout, "## Positions Per Element")
	assert.Contains(t, stdout, "- **O:** 3a")
	assert.Contains(t, stdout, "- O a, 1 sites: 4")
	assert.Contains(t, stdout, "1. `x,y,z`")
	testutil.AssertNoANSI(t, stdout)
	testutil.AssertValidMarkdown(t, stdout)
}

func TestReport_JSON(t *testing.T) {
	cfg := testutil.SetupTestProject(t)
	cfg.OutputFormat = "json"

	stdout, _, err := testutil.RunCommand(t, NewReportCommand(), cfg)
	require.NoError(t, err)

	var rep engine.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, "P1", rep.SpaceGroup.Symbol)
	assert.Equal(t, 1, rep.SpaceGroup.Number)
	assert.Len(t, rep.Atoms, 5)
	assert.Len(t, rep.EquivalentGroups, 5)
	require.Len(t, rep.Elements, 3)
	assert.Equal(t, "Sr", rep.Elements[0].Element)
}

func TestReport_SaveRoundTrip(t *testing.T) {
	cfg := testutil.SetupTestProject(t)
	path := filepath.Join(cfg.ProjectRoot, "symmetry.yaml")

	stdout, _, err := testutil.RunCommand(t, NewReportCommand(), cfg, "--save", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "classification saved")

	c, err := symmetry.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "P1", c.SpaceGroupSymbol)
	assert.Equal(t, symmetry.Labels{"a", "a", "a", "a", "a"}, c.Labels())
}

func TestReport_SaveRejectsUnknownExtension(t *testing.T) {
	cfg := testutil.SetupTestProject(t)

	_, _, err := testutil.RunCommand(t, NewReportCommand(), cfg, "--save", filepath.Join(cfg.ProjectRoot, "symmetry.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported snapshot file")
}

func TestRenderReportText(t *testing.T) {
	rep := &engine.Report{
		Structure:  "POSCAR",
		Formula:    "Sr1 Ti1 O3",
		SpaceGroup: engine.SpaceGroup{Symbol: "Pm-3m", Number: 221},
		Operations: []string{"x,y,z", "-x,-y,-z"},
		Atoms: []engine.Atom{
			{Index: 0, Species: "Sr", Wyckoff: "a"},
			{Index: 1, Species: "Ti", Wyckoff: "b", Frac: [3]float64{0.5, 0.5, 0.5}},
		},
		EquivalentGroups: [][]engine.Atom{
			{{Index: 0, Species: "Sr", Wyckoff: "a"}},
			{{Index: 1, Species: "Ti", Wyckoff: "b"}},
		},
		Elements: []engine.ElementPositions{
			{Element: "Sr", Positions: []engine.WyckoffCount{{Wyckoff: "a", Count: 1}}},
		},
	}

	tr := testutil.NewTestRendererText()
	renderReportText(tr.Renderer, rep)
	out := tr.Output()

	assert.Contains(t, out, "Pm-3m (#221)")
	assert.Contains(t, out, "Symmetry Operations (2)")
	assert.Contains(t, out, "0.500000")
	assert.Contains(t, out, "Ti b, 1 sites: 1")
	assert.Contains(t, out, "┌")
}
