package config

import (
	"os"
	"strings"

	"github.com/leapstack-labs/defectgen/internal/cli/output"
	"github.com/leapstack-labs/defectgen/internal/errors"
)

// Validate checks if the configuration is valid.
// Defects are checked separately by DefectSpecs.
func (c *Config) Validate() error {
	if !output.ValidMode(c.OutputFormat) {
		return errors.WithHintf(errors.Newf("output: unknown mode %q", c.OutputFormat),
			"use one of %s", strings.Join(output.Modes, ", "))
	}
	if c.OutputFile == "" {
		return errors.New("output_file is required")
	}

	switch c.Symmetry.Source {
	case SourceP1:
	case SourceCommand:
		if strings.TrimSpace(c.Symmetry.Command) == "" {
			return errors.WithHint(errors.New("symmetry.command is required when symmetry.source is \"command\""),
				"set symmetry.command in defectgen.yaml or pass --symmetry-command")
		}
	case SourceFile:
		if c.Symmetry.File == "" {
			return errors.WithHint(errors.New("symmetry.file is required when symmetry.source is \"file\""),
				"create one with 'defectgen report --save symmetry.yaml' or pass --symmetry-file")
		}
	default:
		return errors.Newf("symmetry.source: unknown source %q (want p1, command or file)", c.Symmetry.Source)
	}

	if c.Symmetry.Symprec <= 0 {
		return errors.Newf("symmetry.symprec: must be positive, got %g", c.Symmetry.Symprec)
	}
	return nil
}

// ValidateStructure checks that the input structure file exists.
func (c *Config) ValidateStructure() error {
	if _, err := os.Stat(c.Structure); os.IsNotExist(err) {
		return errors.WithHint(errors.Newf("structure file does not exist: %s", c.Structure),
			"use --structure or set structure in defectgen.yaml")
	}
	return nil
}
