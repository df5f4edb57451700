package symmetry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/defectgen/internal/testutil"
)

func TestLoad_Formats(t *testing.T) {
	for _, name := range []string{"SrTiO3.json", "SrTiO3.yaml"} {
		t.Run(name, func(t *testing.T) {
			c, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)

			assert.Equal(t, "Pm-3m", c.SpaceGroupSymbol)
			assert.Equal(t, 221, c.SpaceGroupNumber)
			assert.Equal(t, "-x,-y,-z", c.Operations[1].String())
			assert.Equal(t, []int{0, 1, 2, 2, 2}, c.EquivalentAtoms)
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	c, err := P1Oracle{}.Classify(context.Background(), testutil.SrTiO3())
	require.NoError(t, err)

	for _, name := range []string{"snap.yaml", "snap.yml", "snap.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, c))

			back, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, c, back)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "snap.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported snapshot file")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read symmetry snapshot")

	bad := testutil.WriteFile(t, dir, "bad.json", "{")
	_, err = Load(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracle)
}

func TestFileOracle_Classify(t *testing.T) {
	o := FileOracle{Path: filepath.Join("testdata", "SrTiO3.yaml")}

	c, err := o.Classify(context.Background(), testutil.SrTiO3())
	require.NoError(t, err)
	assert.Equal(t, Labels{"a", "b", "c", "c", "c"}, c.Labels())

	_, err = o.Classify(context.Background(), testutil.SrO2())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracle)
	assert.Contains(t, err.Error(), "5 Wyckoff labels for 3 sites")
}
