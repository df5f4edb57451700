// Package poscar reads and writes VASP POSCAR files.
//
// Both VASP 5 files (species line above the counts) and VASP 4 files
// (species taken from the comment line) are accepted. Files are always
// written in VASP 5 layout with direct coordinates and a unit scale factor,
// so anything Write produces can be read back by Read.
package poscar

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/pkg/core"
)

// ErrMalformed marks every parse failure.
var ErrMalformed = errors.New("malformed POSCAR")

// ParseError reports the line a parse failure happened on.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Msg
}

// Is lets errors.Is(err, ErrMalformed) match any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

// ReadFile reads a POSCAR file from disk.
func ReadFile(path string) (*core.Structure, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, errors.Wrapf(err, "open structure %s", path)
	}
	defer func() { _ = f.Close() }()

	s, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read structure %s", path)
	}
	return s, nil
}

type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func (r *lineReader) next(what string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", &ParseError{Line: r.line + 1, Msg: "unexpected end of file, expected " + what}
	}
	r.line++
	return r.sc.Text(), nil
}

func (r *lineReader) fail(format string, args ...any) error {
	return &ParseError{Line: r.line, Msg: fmt.Sprintf(format, args...)}
}

// Read parses a POSCAR document.
func Read(in io.Reader) (*core.Structure, error) {
	r := &lineReader{sc: bufio.NewScanner(in)}

	comment, err := r.next("comment line")
	if err != nil {
		return nil, err
	}

	scaleLine, err := r.next("scale factor")
	if err != nil {
		return nil, err
	}
	scale, err := parseFloats(fields(scaleLine))
	if err != nil || (len(scale) != 1 && len(scale) != 3) {
		return nil, r.fail("scale factor must be one or three numbers, got %q", strings.TrimSpace(scaleLine))
	}

	var raw core.Lattice
	for i := range 3 {
		line, err := r.next("lattice vector")
		if err != nil {
			return nil, err
		}
		v, err := parseFloats(fields(line))
		if err != nil || len(v) < 3 {
			return nil, r.fail("lattice vector must have three numbers, got %q", strings.TrimSpace(line))
		}
		raw.Matrix[i] = [3]float64{v[0], v[1], v[2]}
	}

	factors, err := scaleFactors(raw, scale)
	if err != nil {
		return nil, r.fail("%v", err)
	}
	lattice := raw
	for i := range 3 {
		for j := range 3 {
			lattice.Matrix[i][j] *= factors[j]
		}
	}

	line, err := r.next("species or counts line")
	if err != nil {
		return nil, err
	}
	toks := fields(line)
	var species []string
	if len(toks) > 0 && !isInteger(toks[0]) {
		species = make([]string, len(toks))
		for i, tok := range toks {
			species[i] = cleanSymbol(tok)
		}
		line, err = r.next("counts line")
		if err != nil {
			return nil, err
		}
		toks = fields(line)
	}

	counts := make([]int, 0, len(toks))
	for _, tok := range toks {
		n, err := strconv.Atoi(tok)
		if err != nil {
			break
		}
		if n < 0 {
			return nil, r.fail("negative atom count %d", n)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, r.fail("expected atom counts, got %q", strings.TrimSpace(line))
	}

	if species == nil {
		species = speciesFromComment(comment, len(counts))
		if species == nil {
			return nil, errors.WithHint(
				r.fail("no species line and the comment does not name %d elements", len(counts)),
				"add a species line (VASP 5 format) above the atom counts")
		}
	}
	if len(species) != len(counts) {
		return nil, r.fail("%d species but %d counts", len(species), len(counts))
	}
	for _, sp := range species {
		if !core.IsElement(sp) {
			return nil, r.fail("unknown element %q", sp)
		}
	}

	mode, err := r.next("coordinate mode")
	if err != nil {
		return nil, err
	}
	selective := false
	if startsWithFold(mode, 's') {
		selective = true
		mode, err = r.next("coordinate mode")
		if err != nil {
			return nil, err
		}
	}
	cartesian := startsWithFold(mode, 'c') || startsWithFold(mode, 'k')

	s := &core.Structure{Comment: strings.TrimSpace(comment), Lattice: lattice}
	for k, n := range counts {
		for range n {
			line, err := r.next("atom coordinates")
			if err != nil {
				return nil, err
			}
			site, err := parseSite(line, species[k], selective, cartesian, factors, lattice)
			if err != nil {
				return nil, r.fail("%v", err)
			}
			s.Sites = append(s.Sites, site)
		}
	}

	return s, nil
}

func parseSite(line, species string, selective, cartesian bool, factors [3]float64, lattice core.Lattice) (core.Site, error) {
	toks := fields(line)
	v, err := parseFloats(toks[:min(3, len(toks))])
	if err != nil || len(v) < 3 {
		return core.Site{}, errors.Newf("atom position must have three numbers, got %q", strings.TrimSpace(line))
	}
	pos := [3]float64{v[0], v[1], v[2]}

	if cartesian {
		pos = [3]float64{pos[0] * factors[0], pos[1] * factors[1], pos[2] * factors[2]}
		pos, err = lattice.Fractional(pos)
		if err != nil {
			return core.Site{}, err
		}
	}

	site := core.Site{Species: species, Frac: pos}
	if selective {
		if len(toks) < 6 {
			return core.Site{}, errors.Newf("selective dynamics needs three flags, got %q", strings.TrimSpace(line))
		}
		var flags [3]bool
		for i, tok := range toks[3:6] {
			switch strings.ToUpper(tok)[0] {
			case 'T':
				flags[i] = true
			case 'F':
				flags[i] = false
			default:
				return core.Site{}, errors.Newf("invalid selective dynamics flag %q", tok)
			}
		}
		site.SelectiveDynamics = &flags
	}
	return site, nil
}

// scaleFactors turns the POSCAR scale line into per-component multipliers
// for the raw lattice u. A single negative value is a target cell volume.
func scaleFactors(u core.Lattice, scale []float64) ([3]float64, error) {
	if len(scale) == 3 {
		for _, f := range scale {
			if f <= 0 {
				return [3]float64{}, errors.New("per-axis scale factors must be positive")
			}
		}
		return [3]float64{scale[0], scale[1], scale[2]}, nil
	}
	f := scale[0]
	switch {
	case f == 0:
		return [3]float64{}, errors.New("scale factor must not be zero")
	case f < 0:
		vol := u.Volume()
		if vol == 0 {
			return [3]float64{}, core.ErrSingularLattice
		}
		f = math.Cbrt(-f / vol)
	}
	return [3]float64{f, f, f}, nil
}

func speciesFromComment(comment string, n int) []string {
	toks := fields(comment)
	if len(toks) < n {
		return nil
	}
	out := make([]string, n)
	for i := range n {
		sym := cleanSymbol(toks[i])
		if !core.IsElement(sym) {
			return nil
		}
		out[i] = sym
	}
	return out
}

// cleanSymbol strips POTCAR decorations such as "Fe_pv" or "O/".
func cleanSymbol(tok string) string {
	end := len(tok)
	for i, r := range tok {
		if r == '_' || r == '/' || unicode.IsDigit(r) {
			end = i
			break
		}
	}
	return tok[:end]
}

func fields(line string) []string {
	if i := strings.IndexAny(line, "!#"); i >= 0 {
		line = line[:i]
	}
	return strings.Fields(line)
}

func parseFloats(toks []string) ([]float64, error) {
	out := make([]float64, len(toks))
	for i, tok := range toks {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func isInteger(tok string) bool {
	_, err := strconv.Atoi(tok)
	return err == nil
}

func startsWithFold(line string, c byte) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	return unicode.ToLower(rune(line[0])) == rune(c)
}
