// Package config provides configuration management for the defectgen CLI.
//
// Configuration is read from defaults, a defectgen.yaml file, DEFECTGEN_*
// environment variables and command-line flags, in increasing priority.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Structure is the input POSCAR file
	Structure string `koanf:"structure"`
	// OutputDir is where variant directories are created
	OutputDir string `koanf:"output_dir"`
	// OutputFile is the structure file name inside each variant directory
	OutputFile   string         `koanf:"output_file"`
	OutputFormat string         `koanf:"output"`
	Verbose      bool           `koanf:"verbose"`
	Symmetry     SymmetryConfig `koanf:"symmetry"`
	Defects      DefectsConfig  `koanf:"defects"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the config file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// SymmetryConfig selects the symmetry oracle.
type SymmetryConfig struct {
	// Source is one of "p1", "command" or "file"
	Source  string  `koanf:"source"`
	Command string  `koanf:"command"`
	Symprec float64 `koanf:"symprec"`
	File    string  `koanf:"file"`
}

// DefectsConfig lists the defects to generate, grouped by kind.
type DefectsConfig struct {
	Removals      []RemovalConfig      `koanf:"removals"`
	Substitutions []SubstitutionConfig `koanf:"substitutions"`
	Interstitials []InterstitialConfig `koanf:"interstitials"`
	Antisites     []AntisiteConfig     `koanf:"antisites"`
}

// RemovalConfig requests vacancies.
type RemovalConfig struct {
	Elements []string `koanf:"elements"`
}

// SubstitutionConfig requests substitutions, paired by position.
type SubstitutionConfig struct {
	Elements     []string `koanf:"elements"`
	Replacements []string `koanf:"replacements"`
}

// InterstitialConfig requests one structure with all atoms inserted.
type InterstitialConfig struct {
	Atoms []AtomConfig `koanf:"atoms"`
}

// AtomConfig is an inserted atom at fractional coordinates.
type AtomConfig struct {
	Element string    `koanf:"element"`
	Coords  []float64 `koanf:"coords"`
}

// AntisiteConfig requests antisite defects.
type AntisiteConfig struct {
	Pairs []PairConfig `koanf:"pairs"`
}

// PairConfig moves Source onto the sites of Target.
type PairConfig struct {
	Source string `koanf:"source"`
	Target string `koanf:"target"`
}

// Symmetry sources.
const (
	SourceP1      = "p1"
	SourceCommand = "command"
	SourceFile    = "file"
)

// Default configuration values.
const (
	DefaultStructure  = "POSCAR"
	DefaultOutputDir  = "."
	DefaultOutputFile = "POSCAR"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultSource     = SourceP1
	DefaultSymprec    = 0.01
)

// ConfigFileNames are searched, in order, when no --config is given.
var ConfigFileNames = []string{"defectgen.yaml", "defectgen.yml"}
