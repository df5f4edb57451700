// Package defect enumerates point-defect variants of a structure.
//
// A Spec describes one kind of defect: vacancies (Removal), substitutions
// (Substitution), interstitials (Interstitial) or antisites (Antisite).
// Enumerate validates a spec and returns a lazy sequence of Variants, each
// built from an independent copy of the input structure and named after the
// Wyckoff labels of the sites it touched.
package defect

import (
	"fmt"
	"math"
	"strings"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/pkg/core"
)

// ErrInvalidSpec marks every validation failure.
var ErrInvalidSpec = errors.New("invalid defect specification")

// FieldError names the spec field that failed validation, e.g. "elements[1]".
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Msg
}

// Is lets errors.Is(err, ErrInvalidSpec) match any FieldError.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidSpec
}

// Spec is one defect request. The set of implementations is closed.
type Spec interface {
	// Kind is the lower-case defect kind, e.g. "removal".
	Kind() string
	// Prefix starts the label of every variant, e.g. "Removed".
	Prefix() string
	// Validate checks the request without looking at a structure.
	Validate() error
	String() string
	isSpec()
}

// Removal removes one site of every listed element per variant, trying
// every combination of sites.
type Removal struct {
	Elements []string
}

// Substitution replaces one site of every listed element per variant.
// Replacements[k] is the new species for sites of Elements[k].
type Substitution struct {
	Elements     []string
	Replacements []string
}

// InsertedAtom is an atom added at fractional coordinates.
type InsertedAtom struct {
	Element string
	Frac    [3]float64
}

// Interstitial adds all atoms at once, producing a single variant.
type Interstitial struct {
	Atoms []InsertedAtom
}

// Pair moves Source onto a site of Target.
type Pair struct {
	Source string
	Target string
}

// Antisite places each pair's source species on every site of its target
// species, once per source site.
type Antisite struct {
	Pairs []Pair
}

func (Removal) isSpec()      {}
func (Substitution) isSpec() {}
func (Interstitial) isSpec() {}
func (Antisite) isSpec()     {}

func (Removal) Kind() string      { return "removal" }
func (Substitution) Kind() string { return "substitution" }
func (Interstitial) Kind() string { return "interstitial" }
func (Antisite) Kind() string     { return "antisite" }

func (Removal) Prefix() string      { return "Removed" }
func (Substitution) Prefix() string { return "Replaced" }
func (Interstitial) Prefix() string { return "Inserted" }
func (Antisite) Prefix() string     { return "Antisite" }

func (r Removal) String() string {
	return "remove " + strings.Join(r.Elements, ", ")
}

func (r Substitution) String() string {
	parts := make([]string, len(r.Elements))
	for i, el := range r.Elements {
		repl := "?"
		if i < len(r.Replacements) {
			repl = r.Replacements[i]
		}
		parts[i] = el + "->" + repl
	}
	return "replace " + strings.Join(parts, ", ")
}

func (r Interstitial) String() string {
	parts := make([]string, len(r.Atoms))
	for i, a := range r.Atoms {
		parts[i] = fmt.Sprintf("%s@(%g, %g, %g)", a.Element, a.Frac[0], a.Frac[1], a.Frac[2])
	}
	return "insert " + strings.Join(parts, ", ")
}

func (r Antisite) String() string {
	parts := make([]string, len(r.Pairs))
	for i, p := range r.Pairs {
		parts[i] = p.Source + " into " + p.Target
	}
	return "antisite " + strings.Join(parts, ", ")
}

// Validate implements Spec.
func (r Removal) Validate() error {
	return checkElements("elements", r.Elements)
}

// Validate implements Spec.
func (r Substitution) Validate() error {
	if err := checkElements("elements", r.Elements); err != nil {
		return err
	}
	if len(r.Replacements) != len(r.Elements) {
		return &FieldError{
			Field: "replacements",
			Msg:   fmt.Sprintf("has %d entries but elements has %d", len(r.Replacements), len(r.Elements)),
		}
	}
	for i, el := range r.Replacements {
		if err := checkElement(fmt.Sprintf("replacements[%d]", i), el); err != nil {
			return err
		}
	}
	return nil
}

// Validate implements Spec.
func (r Interstitial) Validate() error {
	if len(r.Atoms) == 0 {
		return &FieldError{Field: "atoms", Msg: "must list at least one atom"}
	}
	for i, a := range r.Atoms {
		if err := checkElement(fmt.Sprintf("atoms[%d].element", i), a.Element); err != nil {
			return err
		}
		for _, c := range a.Frac {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return &FieldError{
					Field: fmt.Sprintf("atoms[%d].coords", i),
					Msg:   fmt.Sprintf("%v is not a finite number", c),
				}
			}
		}
	}
	return nil
}

// Validate implements Spec.
func (r Antisite) Validate() error {
	if len(r.Pairs) == 0 {
		return &FieldError{Field: "pairs", Msg: "must list at least one pair"}
	}
	for i, p := range r.Pairs {
		if err := checkElement(fmt.Sprintf("pairs[%d].source", i), p.Source); err != nil {
			return err
		}
		if err := checkElement(fmt.Sprintf("pairs[%d].target", i), p.Target); err != nil {
			return err
		}
		if p.Source == p.Target {
			return &FieldError{
				Field: fmt.Sprintf("pairs[%d]", i),
				Msg:   fmt.Sprintf("source and target are both %q", p.Source),
			}
		}
	}
	return nil
}

func checkElements(field string, elements []string) error {
	if len(elements) == 0 {
		return &FieldError{Field: field, Msg: "must name at least one element"}
	}
	seen := make(map[string]struct{}, len(elements))
	for i, el := range elements {
		name := fmt.Sprintf("%s[%d]", field, i)
		if err := checkElement(name, el); err != nil {
			return err
		}
		if _, dup := seen[el]; dup {
			return &FieldError{Field: name, Msg: fmt.Sprintf("duplicate element %q", el)}
		}
		seen[el] = struct{}{}
	}
	return nil
}

func checkElement(field, symbol string) error {
	if symbol == "" {
		return &FieldError{Field: field, Msg: "element is empty"}
	}
	if !core.IsElement(symbol) {
		return &FieldError{Field: field, Msg: fmt.Sprintf("unknown element %q", symbol)}
	}
	return nil
}
