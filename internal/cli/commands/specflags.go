package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/leapstack-labs/defectgen/internal/defect"
	"github.com/leapstack-labs/defectgen/internal/errors"
)

// DefectFlags holds the defect requests given on the command line.
// Each flag may be repeated; every occurrence is one spec.
type DefectFlags struct {
	Remove   []string
	Replace  []string
	Insert   []string
	Antisite []string
}

// Register adds the defect flags to fs.
func (f *DefectFlags) Register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.Remove, "remove", nil, "Vacancies, one site per element: O,La")
	fs.StringArrayVar(&f.Replace, "replace", nil, "Substitutions as element:replacement pairs: O:N,La:Ca")
	fs.StringArrayVar(&f.Insert, "insert", nil, "Interstitial atoms as element@x,y,z separated by ';': Li@0.25,0.25,0.25")
	fs.StringArrayVar(&f.Antisite, "antisite", nil, "Antisite pairs as source:target: O:Sr")
}

// Specs parses the flags in the order removals, substitutions,
// interstitials, antisites. Specs are not validated here.
func (f *DefectFlags) Specs() ([]defect.Spec, error) {
	var specs []defect.Spec

	for _, v := range f.Remove {
		specs = append(specs, defect.Removal{Elements: splitList(v, ",")})
	}
	for _, v := range f.Replace {
		s, err := parseReplace(v)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	for _, v := range f.Insert {
		s, err := parseInsert(v)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	for _, v := range f.Antisite {
		s, err := parseAntisite(v)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func splitList(v, sep string) []string {
	var out []string
	for part := range strings.SplitSeq(v, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitPair(flag, item string) (string, string, error) {
	left, right, ok := strings.Cut(item, ":")
	if !ok {
		return "", "", errors.WithHintf(errors.Newf("--%s: %q is not a pair", flag, item),
			"write pairs as A:B, e.g. --%s O:Sr", flag)
	}
	return strings.TrimSpace(left), strings.TrimSpace(right), nil
}

func parseReplace(v string) (defect.Substitution, error) {
	var s defect.Substitution
	for _, item := range splitList(v, ",") {
		el, repl, err := splitPair("replace", item)
		if err != nil {
			return s, err
		}
		s.Elements = append(s.Elements, el)
		s.Replacements = append(s.Replacements, repl)
	}
	return s, nil
}

func parseAntisite(v string) (defect.Antisite, error) {
	var s defect.Antisite
	for _, item := range splitList(v, ",") {
		src, tgt, err := splitPair("antisite", item)
		if err != nil {
			return s, err
		}
		s.Pairs = append(s.Pairs, defect.Pair{Source: src, Target: tgt})
	}
	return s, nil
}

func parseInsert(v string) (defect.Interstitial, error) {
	var s defect.Interstitial
	for _, item := range splitList(v, ";") {
		el, coords, ok := strings.Cut(item, "@")
		if !ok {
			return s, errors.WithHint(errors.Newf("--insert: %q has no coordinates", item),
				"write atoms as element@x,y,z, e.g. --insert Li@0.25,0.25,0.25")
		}
		parts := splitList(coords, ",")
		if len(parts) != 3 {
			return s, errors.Newf("--insert: %q needs 3 fractional coordinates, got %d", item, len(parts))
		}
		var frac [3]float64
		for i, p := range parts {
			x, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return s, errors.Wrapf(err, "--insert: coordinate %q of %q", p, item)
			}
			frac[i] = x
		}
		s.Atoms = append(s.Atoms, defect.InsertedAtom{Element: strings.TrimSpace(el), Frac: frac})
	}
	return s, nil
}
