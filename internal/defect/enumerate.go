package defect

import (
	"fmt"
	"iter"
	"strings"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/internal/symmetry"
	"github.com/leapstack-labs/defectgen/pkg/core"
)

// Variant is one generated structure. Label is the full directory name,
// prefix included, before sanitization.
type Variant struct {
	Label     string
	Structure *core.Structure
}

// Enumerate validates spec and returns the variants it describes.
//
// labels must hold one Wyckoff label per site of s; they name the touched
// sites in variant labels and always describe s itself, never the derived
// structure. The sequence can be ranged over any number of times and never
// modifies s. A requested element without sites yields no variants.
func Enumerate(s *core.Structure, labels symmetry.Labels, spec Spec) (iter.Seq[Variant], error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := labels.Check(s.Len()); err != nil {
		return nil, errors.Wrapf(err, "enumerate %s", spec.Kind())
	}

	switch sp := spec.(type) {
	case Removal:
		// every variant drops one site per element
		if len(sp.Elements) == s.Len() && Count(s, sp) > 0 {
			return nil, &FieldError{Field: "elements", Msg: fmt.Sprintf("would remove all %d sites of the structure", s.Len())}
		}
		return removals(s, labels, sp), nil
	case Substitution:
		return substitutions(s, labels, sp), nil
	case Interstitial:
		return interstitials(s, sp), nil
	case Antisite:
		return antisites(s, labels, sp), nil
	default:
		return nil, errors.Newf("unsupported defect spec %T", spec)
	}
}

// Count returns how many variants Enumerate would yield for a valid spec.
func Count(s *core.Structure, spec Spec) int {
	switch sp := spec.(type) {
	case Removal:
		return productSize(sitesOf(s, sp.Elements))
	case Substitution:
		return productSize(sitesOf(s, sp.Elements))
	case Interstitial:
		return 1
	case Antisite:
		n := 0
		for _, p := range sp.Pairs {
			n += len(s.IndicesOf(p.Source)) * len(s.IndicesOf(p.Target))
		}
		return n
	default:
		return 0
	}
}

// sitesOf gathers the site indices of each element, in request order.
func sitesOf(s *core.Structure, elements []string) [][]int {
	dims := make([][]int, len(elements))
	for k, el := range elements {
		dims[k] = s.IndicesOf(el)
	}
	return dims
}

func productSize(dims [][]int) int {
	n := 1
	for _, d := range dims {
		n *= len(d)
	}
	return n
}

// derive copies s for a new variant. The comment is dropped so writers
// describe the variant by its own formula.
func derive(s *core.Structure) *core.Structure {
	out := s.Copy()
	out.Comment = ""
	return out
}

func label(prefix string, parts []string) string {
	return prefix + "_" + strings.Join(parts, "_")
}

func removals(s *core.Structure, labels symmetry.Labels, r Removal) iter.Seq[Variant] {
	dims := sitesOf(s, r.Elements)
	return func(yield func(Variant) bool) {
		for combo := range Product(dims) {
			v := derive(s)
			v.RemoveSites(combo...)

			parts := make([]string, len(combo))
			for k, i := range combo {
				parts[k] = s.Sites[i].Species + "_" + labels[i]
			}
			if !yield(Variant{Label: label(r.Prefix(), parts), Structure: v}) {
				return
			}
		}
	}
}

func substitutions(s *core.Structure, labels symmetry.Labels, r Substitution) iter.Seq[Variant] {
	dims := sitesOf(s, r.Elements)
	return func(yield func(Variant) bool) {
		for combo := range Product(dims) {
			v := derive(s)

			parts := make([]string, len(combo))
			for k, i := range combo {
				v.Replace(i, r.Replacements[k])
				parts[k] = s.Sites[i].Species + "_" + labels[i] + "_to_" + r.Replacements[k]
			}
			if !yield(Variant{Label: label(r.Prefix(), parts), Structure: v}) {
				return
			}
		}
	}
}

func interstitials(s *core.Structure, r Interstitial) iter.Seq[Variant] {
	return func(yield func(Variant) bool) {
		v := derive(s)

		parts := make([]string, len(r.Atoms))
		for k, a := range r.Atoms {
			v.Append(a.Element, a.Frac)
			parts[k] = fmt.Sprintf("%s_%.3f_%.3f_%.3f", a.Element, a.Frac[0], a.Frac[1], a.Frac[2])
		}
		yield(Variant{Label: label(r.Prefix(), parts), Structure: v})
	}
}

// antisites walks every (source site, target site) pair. Only the target
// site changes, so pairs sharing a target yield identical variants with
// identical labels.
func antisites(s *core.Structure, labels symmetry.Labels, r Antisite) iter.Seq[Variant] {
	return func(yield func(Variant) bool) {
		for _, p := range r.Pairs {
			dims := [][]int{s.IndicesOf(p.Source), s.IndicesOf(p.Target)}
			for combo := range Product(dims) {
				target := combo[1]
				v := derive(s)
				v.Replace(target, p.Source)
				v.Sort()

				l := label(r.Prefix(), []string{p.Source, "into", p.Target, labels[target]})
				if !yield(Variant{Label: l, Structure: v}) {
					return
				}
			}
		}
	}
}
