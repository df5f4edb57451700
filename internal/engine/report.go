package engine

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/defectgen/pkg/core"
)

// Report is a read-only symmetry summary of a loaded structure.
type Report struct {
	Structure        string             `json:"structure"`
	Formula          string             `json:"formula"`
	Lengths          [3]float64         `json:"lengths"`
	Volume           float64            `json:"volume"`
	SpaceGroup       SpaceGroup         `json:"space_group"`
	Operations       []string           `json:"operations"`
	Atoms            []Atom             `json:"atoms"`
	EquivalentGroups [][]Atom           `json:"equivalent_groups"`
	Elements         []ElementPositions `json:"elements"`
}

// SpaceGroup identifies a space group.
type SpaceGroup struct {
	Symbol string `json:"symbol"`
	Number int    `json:"number"`
}

// Atom is one site of the structure with its Wyckoff label.
type Atom struct {
	Index   int        `json:"index"`
	Species string     `json:"species"`
	Wyckoff string     `json:"wyckoff"`
	Frac    [3]float64 `json:"frac"`
}

// ElementPositions counts the Wyckoff positions one element occupies.
type ElementPositions struct {
	Element   string         `json:"element"`
	Positions []WyckoffCount `json:"positions"`
}

// WyckoffCount is the number of sites on one Wyckoff position.
type WyckoffCount struct {
	Wyckoff string `json:"wyckoff"`
	Count   int    `json:"count"`
}

// Summary renders the counts as "<count><wyckoff>" joined by spaces, e.g. "1a 3c".
func (p ElementPositions) Summary() string {
	parts := make([]string, len(p.Positions))
	for i, c := range p.Positions {
		parts[i] = strconv.Itoa(c.Count) + c.Wyckoff
	}
	return strings.Join(parts, " ")
}

// Report builds the report for snap. Elements and their positions are
// listed in order of first appearance.
func (e *Engine) Report(snap *Snapshot) *Report {
	s, c := snap.Structure, snap.Classification

	r := &Report{
		Structure:  snap.Path,
		Formula:    s.Formula(),
		Lengths:    s.Lattice.Lengths(),
		Volume:     s.Lattice.Volume(),
		SpaceGroup: SpaceGroup{Symbol: c.SpaceGroupSymbol, Number: c.SpaceGroupNumber},
		Operations: make([]string, len(c.Operations)),
		Atoms:      make([]Atom, s.Len()),
	}
	for i, op := range c.Operations {
		r.Operations[i] = op.String()
	}
	for i, site := range s.Sites {
		r.Atoms[i] = Atom{Index: i, Species: site.Species, Wyckoff: c.Wyckoffs[i], Frac: site.Frac}
	}

	for _, group := range c.EquivalentGroups() {
		atoms := make([]Atom, len(group))
		for k, i := range group {
			atoms[k] = r.Atoms[i]
		}
		r.EquivalentGroups = append(r.EquivalentGroups, atoms)
	}

	r.Elements = elementPositions(s, c.Wyckoffs)
	return r
}

func elementPositions(s *core.Structure, wyckoffs []string) []ElementPositions {
	var out []ElementPositions
	byElement := make(map[string]int)
	for i, site := range s.Sites {
		ei, ok := byElement[site.Species]
		if !ok {
			ei = len(out)
			byElement[site.Species] = ei
			out = append(out, ElementPositions{Element: site.Species})
		}

		positions := out[ei].Positions
		found := false
		for k := range positions {
			if positions[k].Wyckoff == wyckoffs[i] {
				positions[k].Count++
				found = true
				break
			}
		}
		if !found {
			out[ei].Positions = append(positions, WyckoffCount{Wyckoff: wyckoffs[i], Count: 1})
		}
	}
	return out
}
