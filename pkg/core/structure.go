package core

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Site is one atom: a species label at fractional coordinates.
type Site struct {
	Species string
	Frac    [3]float64
	// SelectiveDynamics holds per-axis relaxation flags when the source file
	// declared them, nil otherwise.
	SelectiveDynamics *[3]bool
}

func (s Site) clone() Site {
	if s.SelectiveDynamics != nil {
		flags := *s.SelectiveDynamics
		s.SelectiveDynamics = &flags
	}
	return s
}

// Structure is an ordered list of sites sharing a lattice.
//
// Site order is stable: only RemoveSites, Replace, Append and Sort change it.
type Structure struct {
	Comment string
	Lattice Lattice
	Sites   []Site
}

// NewStructure creates a structure owning a copy of sites.
func NewStructure(lattice Lattice, sites []Site) *Structure {
	s := &Structure{Lattice: lattice, Sites: make([]Site, len(sites))}
	for i, site := range sites {
		s.Sites[i] = site.clone()
	}
	return s
}

// Len returns the number of sites.
func (s *Structure) Len() int {
	return len(s.Sites)
}

// Copy returns a deep copy. Mutating the copy never affects s.
func (s *Structure) Copy() *Structure {
	out := NewStructure(s.Lattice, s.Sites)
	out.Comment = s.Comment
	return out
}

// IndicesOf returns the indices of all sites of the given species, front to back.
func (s *Structure) IndicesOf(species string) []int {
	var out []int
	for i, site := range s.Sites {
		if site.Species == species {
			out = append(out, i)
		}
	}
	return out
}

// Species returns the species of every site in order.
func (s *Structure) Species() []string {
	out := make([]string, len(s.Sites))
	for i, site := range s.Sites {
		out[i] = site.Species
	}
	return out
}

// RemoveSites deletes the sites at the given indices. All indices refer to
// the structure as it was before the call, so their order does not matter.
// Duplicate indices are removed once. It panics if an index is out of range.
func (s *Structure) RemoveSites(indices ...int) {
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.Sites) {
			panic(fmt.Sprintf("core: site index %d out of range [0,%d)", i, len(s.Sites)))
		}
		drop[i] = struct{}{}
	}
	kept := make([]Site, 0, len(s.Sites)-len(drop))
	for i, site := range s.Sites {
		if _, ok := drop[i]; !ok {
			kept = append(kept, site)
		}
	}
	s.Sites = kept
}

// Replace swaps the species at index i, keeping its coordinates.
// Selective dynamics flags are kept as well. It panics if i is out of range.
func (s *Structure) Replace(i int, species string) {
	site := s.Sites[i].clone()
	site.Species = species
	s.Sites[i] = site
}

// Append adds a site at the given fractional coordinates.
func (s *Structure) Append(species string, frac [3]float64) {
	s.Sites = append(s.Sites, Site{Species: species, Frac: frac})
}

// Sort orders the sites canonically by species (see SpeciesLess). The sort is
// stable, so sites of one species keep their relative order.
func (s *Structure) Sort() {
	sort.SliceStable(s.Sites, func(i, j int) bool {
		return SpeciesLess(s.Sites[i].Species, s.Sites[j].Species)
	})
}

// Composition returns the number of sites per species.
func (s *Structure) Composition() map[string]int {
	out := make(map[string]int)
	for _, site := range s.Sites {
		out[site.Species]++
	}
	return out
}

// Formula returns the full formula in canonical species order, e.g. "Sr1 Ti1 O3".
func (s *Structure) Formula() string {
	comp := s.Composition()
	species := make([]string, 0, len(comp))
	for sp := range comp {
		species = append(species, sp)
	}
	slices.SortFunc(species, func(a, b string) int {
		switch {
		case SpeciesLess(a, b):
			return -1
		case SpeciesLess(b, a):
			return 1
		default:
			return 0
		}
	})
	parts := make([]string, len(species))
	for i, sp := range species {
		parts[i] = fmt.Sprintf("%s%d", sp, comp[sp])
	}
	return strings.Join(parts, " ")
}
