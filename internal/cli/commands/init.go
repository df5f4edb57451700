package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/defectgen/internal/cli/output"
	"github.com/leapstack-labs/defectgen/internal/errors"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a defectgen.yaml configuration",
		Long: `Create a commented defectgen.yaml in the given directory.

Use --example to also write an SrTiO3 POSCAR and a configuration that
exercises every defect kind, ready for 'defectgen generate'.`,
		Example: `  # Initialize in current directory
  defectgen init

  # Initialize with a working example
  defectgen init --example

  # Initialize in a new directory
  defectgen init my-run --example

  # Force overwrite existing config
  defectgen init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := NewCommandContextWithoutEngine(cmd).Renderer

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Also write an example SrTiO3 structure")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}

	configPath := filepath.Join(dir, "defectgen.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.WithHint(errors.Newf("%s already exists", configPath), "use --force to overwrite")
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return errors.Wrap(err, "initialize project")
	}

	files, err := listTemplateFiles(template)
	if err != nil {
		return err
	}
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("defectgen project initialized!")
	r.Println("")
	r.Println("Next steps:")
	if template == "example" {
		r.Println("  defectgen report              Show Wyckoff positions of POSCAR")
		r.Println("  defectgen generate --dry-run  List the variants")
		r.Println("  defectgen generate            Write them below defects/")
		return nil
	}
	r.Println("  1. Put your structure in POSCAR (or set structure:)")
	r.Println("  2. List the defects you want in defectgen.yaml")
	r.Println("  3. Run 'defectgen generate'")
	return nil
}
