package poscar

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/pkg/core"
)

// ErrNoSites is returned when asked to write a structure without sites,
// which the format cannot express.
var ErrNoSites = errors.New("structure has no sites")

// DefaultPrecision is the number of decimals written for lattice vectors and
// coordinates.
const DefaultPrecision = 16

// Writer serializes structures. The zero value writes with DefaultPrecision.
type Writer struct {
	Precision int
}

// Encode writes s to w in VASP 5 layout. Consecutive sites of one species
// form one block; an empty comment is replaced by the structure formula.
func (pw Writer) Encode(w io.Writer, s *core.Structure) error {
	if s.Len() == 0 {
		return ErrNoSites
	}
	prec := pw.Precision
	if prec <= 0 {
		prec = DefaultPrecision
	}
	num := fmt.Sprintf("%%%d.%df", prec+6, prec)

	bw := bufio.NewWriter(w)

	comment := strings.TrimSpace(s.Comment)
	if comment == "" {
		comment = s.Formula()
	}
	// a multi-line comment would shift every following line
	comment = strings.ReplaceAll(comment, "\n", " ")
	fmt.Fprintln(bw, comment)
	fmt.Fprintln(bw, "1.0")
	for _, v := range s.Lattice.Matrix {
		fmt.Fprintf(bw, num+num+num+"\n", v[0], v[1], v[2])
	}

	species, counts := blocks(s.Sites)
	fmt.Fprintln(bw, strings.Join(species, " "))
	countStrs := make([]string, len(counts))
	for i, n := range counts {
		countStrs[i] = fmt.Sprint(n)
	}
	fmt.Fprintln(bw, strings.Join(countStrs, " "))

	selective := false
	for _, site := range s.Sites {
		if site.SelectiveDynamics != nil {
			selective = true
			break
		}
	}
	if selective {
		fmt.Fprintln(bw, "Selective dynamics")
	}
	fmt.Fprintln(bw, "direct")

	for _, site := range s.Sites {
		fmt.Fprintf(bw, num+num+num, site.Frac[0], site.Frac[1], site.Frac[2])
		if selective {
			flags := [3]bool{true, true, true}
			if site.SelectiveDynamics != nil {
				flags = *site.SelectiveDynamics
			}
			for _, f := range flags {
				if f {
					fmt.Fprint(bw, " T")
				} else {
					fmt.Fprint(bw, " F")
				}
			}
		}
		fmt.Fprintf(bw, " %s\n", site.Species)
	}

	return bw.Flush()
}

// Write serializes s with the default precision.
func Write(w io.Writer, s *core.Structure) error {
	return Writer{}.Encode(w, s)
}

// WriteFile writes s to path, replacing an existing file.
func WriteFile(path string, s *core.Structure) error {
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil { //nolint:gosec // structure files are meant to be shared
		return errors.Wrapf(err, "write structure %s", path)
	}
	return nil
}

// blocks groups consecutive sites of the same species.
func blocks(sites []core.Site) (species []string, counts []int) {
	for _, site := range sites {
		if n := len(species); n > 0 && species[n-1] == site.Species {
			counts[n-1]++
			continue
		}
		species = append(species, site.Species)
		counts = append(counts, 1)
	}
	return species, counts
}
