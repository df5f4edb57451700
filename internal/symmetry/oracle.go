// Package symmetry connects defectgen to a symmetry oracle.
//
// Detecting space groups is not done here. An Oracle classifies a structure
// once, and the resulting Classification is an immutable snapshot of the
// pre-defect structure that callers pass around explicitly.
//
// Three oracles are provided:
//   - P1Oracle: the trivial classification, valid for any structure
//   - CommandOracle: an external program (for example a spglib wrapper)
//   - FileOracle: a snapshot saved earlier with Save
package symmetry

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/pkg/core"
)

// ErrOracle marks failures reported by or about an oracle.
var ErrOracle = errors.New("symmetry oracle")

// OracleError is a classification failure. It matches ErrOracle and
// unwraps to its cause, if any.
type OracleError struct {
	Msg string
	Err error
}

func (e *OracleError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrOracle) match any OracleError.
func (e *OracleError) Is(target error) bool {
	return target == ErrOracle
}

func oracleErrorf(format string, args ...any) error {
	return &OracleError{Msg: fmt.Sprintf(format, args...)}
}

func wrapOracle(err error, format string, args ...any) error {
	return &OracleError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// Oracle classifies a structure.
type Oracle interface {
	Classify(ctx context.Context, s *core.Structure) (*Classification, error)
}

// Operation is one symmetry operation acting on fractional coordinates:
// x' = Rotation·x + Translation.
type Operation struct {
	Rotation    [3][3]int
	Translation [3]float64
}

// Identity is the identity operation.
var Identity = Operation{Rotation: [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}

// String renders the operation as a coordinate triplet, e.g. "-y,x-y,z+1/3".
func (o Operation) String() string {
	parts := make([]string, 3)
	for i := range 3 {
		var b strings.Builder
		for j, axis := range []string{"x", "y", "z"} {
			c := o.Rotation[i][j]
			switch {
			case c == 0:
				continue
			case c == 1:
				if b.Len() > 0 {
					b.WriteByte('+')
				}
			case c == -1:
				b.WriteByte('-')
			default:
				if c > 0 && b.Len() > 0 {
					b.WriteByte('+')
				}
				fmt.Fprintf(&b, "%d", c)
			}
			b.WriteString(axis)
		}
		t := o.Translation[i]
		if frac := fraction(t); frac != "" {
			if t > 0 && b.Len() > 0 {
				b.WriteByte('+')
			}
			b.WriteString(frac)
		} else if b.Len() == 0 {
			b.WriteByte('0')
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, ",")
}

// fraction renders t as a small fraction, or "" when t is zero.
func fraction(t float64) string {
	if math.Abs(t) < 1e-8 {
		return ""
	}
	for den := 1; den <= 12; den++ {
		num := t * float64(den)
		if r := math.Round(num); math.Abs(num-r) < 1e-6 {
			if den == 1 {
				return fmt.Sprintf("%d", int(r))
			}
			return fmt.Sprintf("%d/%d", int(r), den)
		}
	}
	return fmt.Sprintf("%.6g", t)
}

// Labels holds one Wyckoff label per site of the classified structure.
// The letters describe the structure as classified and are not updated
// when derived structures are built from it.
type Labels []string

// Check reports whether the labels fit a structure with n sites.
func (l Labels) Check(n int) error {
	if len(l) != n {
		return errors.Newf("have %d Wyckoff labels for %d sites", len(l), n)
	}
	return nil
}

// Classification is the result of classifying one structure.
type Classification struct {
	SpaceGroupSymbol string
	SpaceGroupNumber int
	Operations       []Operation
	// Wyckoffs and EquivalentAtoms are parallel to the classified sites.
	Wyckoffs []string
	// EquivalentAtoms maps every site to the index of its orbit representative.
	EquivalentAtoms []int
}

// Labels returns the per-site Wyckoff labels.
func (c *Classification) Labels() Labels {
	return Labels(c.Wyckoffs)
}

// EquivalentGroups returns the site indices of every orbit, in order of the
// orbits' first appearance.
func (c *Classification) EquivalentGroups() [][]int {
	pos := make(map[int]int)
	var groups [][]int
	for i, rep := range c.EquivalentAtoms {
		g, ok := pos[rep]
		if !ok {
			g = len(groups)
			pos[rep] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// Validate checks that c describes a structure with siteCount sites.
func (c *Classification) Validate(siteCount int) error {
	switch {
	case c.SpaceGroupNumber < 1 || c.SpaceGroupNumber > 230:
		return oracleErrorf("space group number %d outside 1..230", c.SpaceGroupNumber)
	case len(c.Operations) == 0:
		return oracleErrorf("classification has no symmetry operations")
	case len(c.Wyckoffs) != siteCount:
		return oracleErrorf("classification has %d Wyckoff labels for %d sites", len(c.Wyckoffs), siteCount)
	case len(c.EquivalentAtoms) != siteCount:
		return oracleErrorf("classification has %d equivalent atoms for %d sites", len(c.EquivalentAtoms), siteCount)
	}
	for i, rep := range c.EquivalentAtoms {
		if rep < 0 || rep >= siteCount {
			return oracleErrorf("equivalent_atoms[%d] = %d is not a site index", i, rep)
		}
	}
	return nil
}

// Dataset is the wire form of a Classification. Field names follow the
// spglib symmetry dataset so wrapper scripts can dump it directly.
type Dataset struct {
	International   string       `json:"international" yaml:"international"`
	Number          int          `json:"number" yaml:"number"`
	Rotations       [][3][3]int  `json:"rotations" yaml:"rotations"`
	Translations    [][3]float64 `json:"translations" yaml:"translations"`
	Wyckoffs        []string     `json:"wyckoffs" yaml:"wyckoffs"`
	EquivalentAtoms []int        `json:"equivalent_atoms" yaml:"equivalent_atoms"`
}

// Dataset converts c to its wire form.
func (c *Classification) Dataset() Dataset {
	d := Dataset{
		International:   c.SpaceGroupSymbol,
		Number:          c.SpaceGroupNumber,
		Rotations:       make([][3][3]int, len(c.Operations)),
		Translations:    make([][3]float64, len(c.Operations)),
		Wyckoffs:        c.Wyckoffs,
		EquivalentAtoms: c.EquivalentAtoms,
	}
	for i, op := range c.Operations {
		d.Rotations[i] = op.Rotation
		d.Translations[i] = op.Translation
	}
	return d
}

// Classification converts d back, pairing rotations with translations.
func (d Dataset) Classification() (*Classification, error) {
	if len(d.Rotations) != len(d.Translations) {
		return nil, oracleErrorf("dataset has %d rotations but %d translations", len(d.Rotations), len(d.Translations))
	}
	c := &Classification{
		SpaceGroupSymbol: d.International,
		SpaceGroupNumber: d.Number,
		Operations:       make([]Operation, len(d.Rotations)),
		Wyckoffs:         d.Wyckoffs,
		EquivalentAtoms:  d.EquivalentAtoms,
	}
	for i := range d.Rotations {
		c.Operations[i] = Operation{Rotation: d.Rotations[i], Translation: d.Translations[i]}
	}
	return c, nil
}
