package symmetry

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/defectgen/internal/testutil"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("oracle command tests need a POSIX shell")
	}
}

func TestCommandOracle_Classify(t *testing.T) {
	skipWithoutShell(t)

	o := NewCommandOracle(`sh -c "cat >/dev/null; cat testdata/SrTiO3.json"`, 0, testutil.NewTestLogger(t))

	c, err := o.Classify(context.Background(), testutil.SrTiO3())
	require.NoError(t, err)

	assert.Equal(t, "Pm-3m", c.SpaceGroupSymbol)
	assert.Equal(t, 221, c.SpaceGroupNumber)
	assert.Len(t, c.Operations, 2)
	assert.Equal(t, Labels{"a", "b", "c", "c", "c"}, c.Labels())
	assert.Equal(t, [][]int{{0}, {1}, {2, 3, 4}}, c.EquivalentGroups())
}

func TestCommandOracle_ReceivesStructureAndSymprec(t *testing.T) {
	skipWithoutShell(t)

	// The script fails on purpose so its stderr ends up in the error.
	o := NewCommandOracle(`sh -c 'echo "symprec=$DEFECTGEN_SYMPREC" >&2; head -n 1 >&2; exit 3'`, 0.001, testutil.NewTestLogger(t))

	_, err := o.Classify(context.Background(), testutil.SrTiO3())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracle)
	assert.Contains(t, err.Error(), "symprec=0.001")
	assert.Contains(t, err.Error(), "SrTiO3")
}

func TestCommandOracle_Errors(t *testing.T) {
	skipWithoutShell(t)

	tests := []struct {
		name      string
		command   string
		errSubstr string
	}{
		{name: "empty", command: "  ", errSubstr: "symmetry command is empty"},
		{name: "unbalanced quotes", command: `sh -c "echo`, errSubstr: "parse symmetry command"},
		{name: "not json", command: `sh -c "cat >/dev/null; echo nope"`, errSubstr: "decode output"},
		{name: "unpaired operations", command: `sh -c "cat >/dev/null; cat testdata/mismatched.json"`, errSubstr: "1 rotations but 0 translations"},
		{name: "missing binary", command: "defectgen-no-such-oracle", errSubstr: "no output on stderr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewCommandOracle(tt.command, 0, nil)
			_, err := o.Classify(context.Background(), testutil.SrTiO3())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestCommandOracle_Cancelled(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	o := NewCommandOracle("sleep 5", 0, nil)
	_, err := o.Classify(ctx, testutil.SrTiO3())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
