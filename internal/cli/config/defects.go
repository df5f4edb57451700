package config

import (
	"fmt"

	"github.com/leapstack-labs/defectgen/internal/defect"
	"github.com/leapstack-labs/defectgen/internal/errors"
)

// DefectSpecs converts the defects block into validated specs, in the order
// removals, substitutions, interstitials, antisites. A failing field is
// reported with its full config path, e.g.
// "defects.substitutions[0].replacements: has 1 entries but elements has 2".
func (c *Config) DefectSpecs() ([]defect.Spec, error) {
	var specs []defect.Spec
	add := func(group string, i int, s defect.Spec) error {
		if err := s.Validate(); err != nil {
			return qualify(fmt.Sprintf("defects.%s[%d]", group, i), err)
		}
		specs = append(specs, s)
		return nil
	}

	for i, r := range c.Defects.Removals {
		if err := add("removals", i, defect.Removal{Elements: r.Elements}); err != nil {
			return nil, err
		}
	}
	for i, r := range c.Defects.Substitutions {
		s := defect.Substitution{Elements: r.Elements, Replacements: r.Replacements}
		if err := add("substitutions", i, s); err != nil {
			return nil, err
		}
	}
	for i, r := range c.Defects.Interstitials {
		atoms := make([]defect.InsertedAtom, len(r.Atoms))
		for j, a := range r.Atoms {
			if len(a.Coords) != 3 {
				return nil, &defect.FieldError{
					Field: fmt.Sprintf("defects.interstitials[%d].atoms[%d].coords", i, j),
					Msg:   fmt.Sprintf("must have 3 numbers, got %d", len(a.Coords)),
				}
			}
			atoms[j] = defect.InsertedAtom{Element: a.Element, Frac: [3]float64{a.Coords[0], a.Coords[1], a.Coords[2]}}
		}
		if err := add("interstitials", i, defect.Interstitial{Atoms: atoms}); err != nil {
			return nil, err
		}
	}
	for i, r := range c.Defects.Antisites {
		pairs := make([]defect.Pair, len(r.Pairs))
		for j, p := range r.Pairs {
			pairs[j] = defect.Pair{Source: p.Source, Target: p.Target}
		}
		if err := add("antisites", i, defect.Antisite{Pairs: pairs}); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// qualify prefixes a FieldError's field with the config path of its spec.
func qualify(prefix string, err error) error {
	var fe *defect.FieldError
	if errors.As(err, &fe) {
		return &defect.FieldError{Field: prefix + "." + fe.Field, Msg: fe.Msg}
	}
	return errors.Wrap(err, prefix)
}
