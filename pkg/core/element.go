package core

import "math"

// Element is an entry of the periodic table.
type Element struct {
	Symbol string
	Z      int
	// X is the Pauling electronegativity, NaN when undefined.
	X float64
}

var nan = math.NaN()

// elements lists symbol and Pauling electronegativity in order of atomic number.
var elements = []struct {
	symbol string
	x      float64
}{
	{"H", 2.20}, {"He", nan}, {"Li", 0.98}, {"Be", 1.57}, {"B", 2.04},
	{"C", 2.55}, {"N", 3.04}, {"O", 3.44}, {"F", 3.98}, {"Ne", nan},
	{"Na", 0.93}, {"Mg", 1.31}, {"Al", 1.61}, {"Si", 1.90}, {"P", 2.19},
	{"S", 2.58}, {"Cl", 3.16}, {"Ar", nan}, {"K", 0.82}, {"Ca", 1.00},
	{"Sc", 1.36}, {"Ti", 1.54}, {"V", 1.63}, {"Cr", 1.66}, {"Mn", 1.55},
	{"Fe", 1.83}, {"Co", 1.88}, {"Ni", 1.91}, {"Cu", 1.90}, {"Zn", 1.65},
	{"Ga", 1.81}, {"Ge", 2.01}, {"As", 2.18}, {"Se", 2.55}, {"Br", 2.96},
	{"Kr", 3.00}, {"Rb", 0.82}, {"Sr", 0.95}, {"Y", 1.22}, {"Zr", 1.33},
	{"Nb", 1.60}, {"Mo", 2.16}, {"Tc", 1.90}, {"Ru", 2.20}, {"Rh", 2.28},
	{"Pd", 2.20}, {"Ag", 1.93}, {"Cd", 1.69}, {"In", 1.78}, {"Sn", 1.96},
	{"Sb", 2.05}, {"Te", 2.10}, {"I", 2.66}, {"Xe", 2.60}, {"Cs", 0.79},
	{"Ba", 0.89}, {"La", 1.10}, {"Ce", 1.12}, {"Pr", 1.13}, {"Nd", 1.14},
	{"Pm", 1.13}, {"Sm", 1.17}, {"Eu", 1.20}, {"Gd", 1.20}, {"Tb", 1.10},
	{"Dy", 1.22}, {"Ho", 1.23}, {"Er", 1.24}, {"Tm", 1.25}, {"Yb", 1.10},
	{"Lu", 1.27}, {"Hf", 1.30}, {"Ta", 1.50}, {"W", 2.36}, {"Re", 1.90},
	{"Os", 2.20}, {"Ir", 2.20}, {"Pt", 2.28}, {"Au", 2.54}, {"Hg", 2.00},
	{"Tl", 1.62}, {"Pb", 2.33}, {"Bi", 2.02}, {"Po", 2.00}, {"At", 2.20},
	{"Rn", 2.20}, {"Fr", 0.70}, {"Ra", 0.90}, {"Ac", 1.10}, {"Th", 1.30},
	{"Pa", 1.50}, {"U", 1.38}, {"Np", 1.36}, {"Pu", 1.28}, {"Am", 1.30},
	{"Cm", 1.30}, {"Bk", 1.30}, {"Cf", 1.30}, {"Es", 1.30}, {"Fm", 1.30},
	{"Md", 1.30}, {"No", 1.30}, {"Lr", 1.30}, {"Rf", nan}, {"Db", nan},
	{"Sg", nan}, {"Bh", nan}, {"Hs", nan}, {"Mt", nan}, {"Ds", nan},
	{"Rg", nan}, {"Cn", nan}, {"Nh", nan}, {"Fl", nan}, {"Mc", nan},
	{"Lv", nan}, {"Ts", nan}, {"Og", nan},
}

var elementsBySymbol = func() map[string]Element {
	m := make(map[string]Element, len(elements))
	for i, e := range elements {
		m[e.symbol] = Element{Symbol: e.symbol, Z: i + 1, X: e.x}
	}
	return m
}()

// LookupElement returns the element with the given symbol.
// Symbols are case-sensitive ("Co" is cobalt, "CO" is not an element).
func LookupElement(symbol string) (Element, bool) {
	e, ok := elementsBySymbol[symbol]
	return e, ok
}

// IsElement reports whether symbol names a known element.
func IsElement(symbol string) bool {
	_, ok := elementsBySymbol[symbol]
	return ok
}

// electronegativity returns the sort key for a species. Unknown species and
// elements without a Pauling value sort after everything else.
func electronegativity(symbol string) float64 {
	e, ok := elementsBySymbol[symbol]
	if !ok || math.IsNaN(e.X) {
		return math.Inf(1)
	}
	return e.X
}

// SpeciesLess is the canonical species order: Pauling electronegativity
// ascending, then symbol.
func SpeciesLess(a, b string) bool {
	xa, xb := electronegativity(a), electronegativity(b)
	if xa != xb {
		return xa < xb
	}
	return a < b
}
