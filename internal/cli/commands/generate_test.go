package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/defectgen/internal/cli/config"
	"github.com/leapstack-labs/defectgen/internal/cli/testutil"
	itestutil "github.com/leapstack-labs/defectgen/internal/testutil"
	"github.com/leapstack-labs/defectgen/pkg/poscar"
)

func TestGenerate_WritesVariants(t *testing.T) {
	cfg := testutil.SetupTestProject(t)

	stdout, _, err := testutil.RunCommand(t, NewGenerateCommand(), cfg, "--remove", "O")
	require.NoError(t, err)

	// P1 puts every site on position a, so all three O vacancies share a label
	assert.Equal(t, 3, strings.Count(stdout, "Created folder and file: Removed_O_a/POSCAR"))
	assert.Contains(t, stdout, "Generated 3 structures")
	testutil.AssertNoANSI(t, stdout)

	s, err := poscar.ReadFile(filepath.Join(cfg.OutputDir, "Removed_O_a", "POSCAR"))
	require.NoError(t, err)
	assert.Equal(t, "Sr1 Ti1 O2", s.Formula())
}

func TestGenerate_ConfigSpecsComeFirst(t *testing.T) {
	cfg := testutil.SetupTestProject(t)
	cfg.OutputFormat = "json"
	cfg.Defects.Removals = []config.RemovalConfig{{Elements: []string{"Sr"}}}

	stdout, _, err := testutil.RunCommand(t, NewGenerateCommand(), cfg, "--replace", "Ti:Zr", "--dry-run")
	require.NoError(t, err)

	var out GenerateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))

	assert.True(t, out.DryRun)
	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Artifacts, 2)
	assert.Equal(t, "Removed_Sr_a", out.Artifacts[0].Label)
	assert.Equal(t, "Replaced_Ti_a_to_Zr", out.Artifacts[1].Label)
	assert.Equal(t, "Sr1 Zr1 O3", out.Artifacts[1].Formula)
	assert.Equal(t, []GenerateSpec{
		{Kind: "removal", Spec: "remove Sr", Variants: 1},
		{Kind: "substitution", Spec: "replace Ti->Zr", Variants: 1},
	}, out.Specs)

	assert.NoDirExists(t, cfg.OutputDir)
}

func TestGenerate_DryRun(t *testing.T) {
	cfg := testutil.SetupTestProject(t)

	stdout, _, err := testutil.RunCommand(t, NewGenerateCommand(), cfg, "--antisite", "O:Sr", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Antisite_O_into_Sr_a/POSCAR")
	assert.NotContains(t, stdout, "Created folder and file")
	assert.Contains(t, stdout, "3 structures would be generated")
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestGenerate_NoMatchesIsNotAnError(t *testing.T) {
	cfg := testutil.SetupTestProject(t)

	stdout, stderr, err := testutil.RunCommand(t, NewGenerateCommand(), cfg, "--remove", "La")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Generated 0 structures")
	assert.Contains(t, stderr, "remove La: no matching sites")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*config.Config)
		args      []string
		errSubstr string
	}{
		{
			name:      "no defects",
			errSubstr: "no defects requested",
		},
		{
			name:      "unknown element",
			args:      []string{"--remove", "O", "--replace", "Ti:Xx"},
			errSubstr: `unknown element "Xx"`,
		},
		{
			name:      "malformed flag",
			args:      []string{"--antisite", "O"},
			errSubstr: "is not a pair",
		},
		{
			name: "invalid config defect",
			modify: func(c *config.Config) {
				c.Defects.Antisites = []config.AntisiteConfig{{}}
			},
			args:      []string{"--remove", "O"},
			errSubstr: "defects.antisites[0].pairs",
		},
		{
			name:      "missing structure",
			modify:    func(c *config.Config) { c.Structure = filepath.Join(c.ProjectRoot, "missing") },
			args:      []string{"--remove", "O"},
			errSubstr: "structure file does not exist",
		},
		{
			name:      "symmetry command without command",
			modify:    func(c *config.Config) { c.Symmetry.Source = config.SourceCommand },
			args:      []string{"--remove", "O"},
			errSubstr: "symmetry.command is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.SetupTestProject(t)
			if tt.modify != nil {
				tt.modify(cfg)
			}

			_, _, err := testutil.RunCommand(t, NewGenerateCommand(), cfg, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
			assert.NoDirExists(t, cfg.OutputDir)
		})
	}
}

func TestGenerate_SymmetryFile(t *testing.T) {
	cfg := testutil.SetupTestProject(t)
	snapshot, err := os.ReadFile(filepath.Join("..", "..", "symmetry", "testdata", "SrTiO3.yaml"))
	require.NoError(t, err)
	cfg.Symmetry.Source = config.SourceFile
	cfg.Symmetry.File = filepath.Join(cfg.ProjectRoot, "symmetry.yaml")
	require.NoError(t, os.WriteFile(cfg.Symmetry.File, snapshot, 0600))

	stdout, _, err := testutil.RunCommand(t, NewGenerateCommand(), cfg, "--remove", "Sr,O")
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(stdout, "Removed_Sr_a_O_c/POSCAR"))
	assert.DirExists(t, filepath.Join(cfg.OutputDir, "Removed_Sr_a_O_c"))
}

func TestReloadCommandContext(t *testing.T) {
	dir := t.TempDir()
	itestutil.WriteFile(t, dir, "POSCAR", itestutil.SrTiO3POSCAR)
	cfgPath := itestutil.WriteFile(t, dir, "defectgen.yaml", "output_file: CONTCAR\n")
	t.Chdir(dir)

	cfg, err := config.Load(cfgPath, nil)
	require.NoError(t, err)

	cmd := NewGenerateCommand()
	prev := &CommandContext{Cfg: cfg, Logger: itestutil.NewTestLogger(t), Renderer: testutil.NewTestRendererMarkdown().Renderer}

	itestutil.WriteFile(t, dir, "defectgen.yaml", "output_file: POSCAR.vasp\ndefects:\n  removals:\n    - elements: [Ti]\n")
	next, err := reloadCommandContext(cmd, prev)
	require.NoError(t, err)

	assert.Equal(t, "POSCAR.vasp", next.Cfg.OutputFile)
	assert.Same(t, prev.Renderer, next.Renderer)
	require.NoError(t, generateOnce(context.Background(), next, &GenerateOptions{}))
	assert.FileExists(t, filepath.Join(dir, "Removed_Ti_a", "POSCAR.vasp"))

	itestutil.WriteFile(t, dir, "defectgen.yaml", "output: html\n")
	_, err = reloadCommandContext(cmd, prev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
