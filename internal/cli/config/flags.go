package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers the global flags read by Load.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("structure", "", "Input POSCAR file (default: POSCAR)")
	fs.String("output-dir", "", "Directory that receives variant folders (default: .)")
	fs.String("output-file", "", "File name written inside each variant folder (default: POSCAR)")
	fs.String("symmetry", "", "Symmetry source (p1|command|file)")
	fs.String("symmetry-command", "", "Command that classifies a POSCAR read from stdin")
	fs.String("symmetry-file", "", "Classification snapshot (.yaml or .json)")
	fs.Float64("symprec", DefaultSymprec, "Symmetry tolerance passed to the symmetry command")
	fs.BoolP("verbose", "v", false, "Verbose output")
	fs.StringP("output", "o", "", "Output format (auto|text|markdown|json)")
}
