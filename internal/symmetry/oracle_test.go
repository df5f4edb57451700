package symmetry

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/internal/testutil"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{name: "identity", op: Identity, want: "x,y,z"},
		{
			name: "inversion",
			op:   Operation{Rotation: [3][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}}},
			want: "-x,-y,-z",
		},
		{
			name: "threefold screw",
			op: Operation{
				Rotation:    [3][3]int{{0, -1, 0}, {1, -1, 0}, {0, 0, 1}},
				Translation: [3]float64{0, 0, 1.0 / 3},
			},
			want: "-y,x-y,z+1/3",
		},
		{
			name: "pure translation",
			op: Operation{
				Rotation:    Identity.Rotation,
				Translation: [3]float64{0.5, -0.25, 0},
			},
			want: "x+1/2,y-1/4,z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestClassification_EquivalentGroups(t *testing.T) {
	c := &Classification{EquivalentAtoms: []int{0, 1, 0, 3, 1, 3}}

	assert.Equal(t, [][]int{{0, 2}, {1, 4}, {3, 5}}, c.EquivalentGroups())
}

func TestClassification_Validate(t *testing.T) {
	valid := func() *Classification {
		return &Classification{
			SpaceGroupSymbol: "Pm-3m",
			SpaceGroupNumber: 221,
			Operations:       []Operation{Identity},
			Wyckoffs:         []string{"a", "b"},
			EquivalentAtoms:  []int{0, 1},
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Classification)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Classification) {}},
		{name: "bad number", mutate: func(c *Classification) { c.SpaceGroupNumber = 0 }, errSubstr: "outside 1..230"},
		{name: "no operations", mutate: func(c *Classification) { c.Operations = nil }, errSubstr: "no symmetry operations"},
		{name: "short wyckoffs", mutate: func(c *Classification) { c.Wyckoffs = c.Wyckoffs[:1] }, errSubstr: "1 Wyckoff labels for 2 sites"},
		{name: "short equivalents", mutate: func(c *Classification) { c.EquivalentAtoms = nil }, errSubstr: "0 equivalent atoms"},
		{name: "representative out of range", mutate: func(c *Classification) { c.EquivalentAtoms[1] = 7 }, errSubstr: "equivalent_atoms[1] = 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate(2)
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOracle)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestDataset_RoundTrip(t *testing.T) {
	c := &Classification{
		SpaceGroupSymbol: "P2_1/c",
		SpaceGroupNumber: 14,
		Operations: []Operation{
			Identity,
			{Rotation: [3][3]int{{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}}, Translation: [3]float64{0, 0.5, 0.5}},
		},
		Wyckoffs:        []string{"e", "e"},
		EquivalentAtoms: []int{0, 0},
	}

	back, err := c.Dataset().Classification()
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestDataset_MismatchedOperations(t *testing.T) {
	d := Dataset{Rotations: [][3][3]int{Identity.Rotation}}

	_, err := d.Classification()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracle)
	assert.Contains(t, err.Error(), "1 rotations but 0 translations")
}

func TestOracleError_MatchesSentinel(t *testing.T) {
	cause := stderrors.New("exit status 2")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "plain", err: oracleErrorf("classification has %d operations", 0), want: "classification has 0 operations"},
		{name: "wrapped cause", err: wrapOracle(cause, "symmetry oracle %s failed", "spg"), want: "symmetry oracle spg failed: exit status 2"},
		{name: "wrapped again", err: errors.Wrap(wrapOracle(cause, "decode"), "classify"), want: "classify: decode: exit status 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, ErrOracle))
			assert.True(t, errors.Is(tt.err, ErrOracle))
			assert.EqualError(t, tt.err, tt.want)

			var oe *OracleError
			assert.True(t, stderrors.As(tt.err, &oe))
		})
	}

	assert.ErrorIs(t, wrapOracle(cause, "decode"), cause)
	assert.False(t, stderrors.Is(stderrors.New("other"), ErrOracle))
}

func TestLabels_Check(t *testing.T) {
	assert.NoError(t, Labels{"a", "b"}.Check(2))
	assert.EqualError(t, Labels{"a"}.Check(3), "have 1 Wyckoff labels for 3 sites")
}

func TestP1Oracle(t *testing.T) {
	s := testutil.SrTiO3()

	c, err := P1Oracle{}.Classify(context.Background(), s)
	require.NoError(t, err)
	require.NoError(t, c.Validate(s.Len()))

	assert.Equal(t, "P1", c.SpaceGroupSymbol)
	assert.Equal(t, 1, c.SpaceGroupNumber)
	assert.Equal(t, []Operation{Identity}, c.Operations)
	assert.Equal(t, Labels{"a", "a", "a", "a", "a"}, c.Labels())
	assert.Len(t, c.EquivalentGroups(), 5)
}
