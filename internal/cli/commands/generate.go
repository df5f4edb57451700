package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/defectgen/internal/cli/config"
	"github.com/leapstack-labs/defectgen/internal/cli/output"
	"github.com/leapstack-labs/defectgen/internal/engine"
	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/internal/watch"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Defects DefectFlags
	DryRun  bool
	Watch   bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Write one structure per point-defect variant",
		Long: `Generate point-defect variants of the input structure.

Defects come from the defects section of defectgen.yaml, followed by any
given with --remove, --replace, --insert and --antisite. Every spec is
checked before anything is written.

Each variant is written to <output_dir>/<label>/<output_file>, where the
label names the defect and the Wyckoff positions of the sites it touched,
e.g. Removed_O_c/POSCAR.`,
		Example: `  # Generate the defects listed in defectgen.yaml
  defectgen generate

  # One oxygen vacancy and one La->Ca substitution, from the command line
  defectgen generate --remove O --replace La:Ca

  # Two interstitial atoms in one structure
  defectgen generate --insert "Li@0.25,0.25,0.25;Li@0.75,0.75,0.75"

  # List labels without writing files
  defectgen generate --antisite O:Sr --dry-run

  # Regenerate whenever POSCAR or defectgen.yaml changes
  defectgen generate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	opts.Defects.Register(cmd.Flags())
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be generated without writing files")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Regenerate when the structure, config or symmetry file changes")

	return cmd
}

// GenerateOutput is the JSON output for the generate command.
type GenerateOutput struct {
	Structure string            `json:"structure"`
	OutputDir string            `json:"output_dir"`
	DryRun    bool              `json:"dry_run"`
	Specs     []GenerateSpec    `json:"specs"`
	Artifacts []GenerateVariant `json:"artifacts"`
	Total     int               `json:"total"`
}

// GenerateSpec is one requested defect and how many variants it produced.
type GenerateSpec struct {
	Kind     string `json:"kind"`
	Spec     string `json:"spec"`
	Variants int    `json:"variants"`
}

// GenerateVariant is one written (or planned) structure.
type GenerateVariant struct {
	Label   string `json:"label"`
	Path    string `json:"path"`
	Sites   int    `json:"sites"`
	Formula string `json:"formula"`
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	err = generateOnce(cmd.Context(), cmdCtx, opts)
	if !opts.Watch {
		return err
	}
	if err != nil {
		reportError(cmdCtx.Renderer, err)
	}
	return watchAndGenerate(cmd, cmdCtx, opts)
}

func generateOnce(ctx context.Context, cmdCtx *CommandContext, opts *GenerateOptions) error {
	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	specs, err := cmdCtx.Cfg.DefectSpecs()
	if err != nil {
		return err
	}
	flagSpecs, err := opts.Defects.Specs()
	if err != nil {
		return err
	}
	specs = append(specs, flagSpecs...)

	snap, err := eng.Load(ctx)
	if err != nil {
		return err
	}

	jsonMode := r.EffectiveMode() == output.ModeJSON
	out := &GenerateOutput{
		Structure: eng.StructurePath(),
		OutputDir: eng.OutputDir(),
		DryRun:    opts.DryRun,
		Artifacts: []GenerateVariant{},
	}

	summary, err := eng.Generate(ctx, snap, specs, engine.GenerateOptions{
		DryRun: opts.DryRun,
		OnArtifact: func(res engine.Result) {
			path := filepath.ToSlash(res.Artifact.Path)
			if jsonMode {
				out.Artifacts = append(out.Artifacts, GenerateVariant{
					Label:   res.Artifact.Label,
					Path:    path,
					Sites:   res.Sites,
					Formula: res.Formula,
				})
				return
			}
			if opts.DryRun {
				r.StatusLine(path, "pending", res.Formula)
				return
			}
			r.Println("Created folder and file: " + path)
		},
	})
	if err != nil {
		if summary != nil && summary.Total > 0 {
			r.Warning(fmt.Sprintf("%d structures were written before the failure", summary.Total))
		}
		return err
	}

	for _, s := range summary.Specs {
		if s.Variants == 0 {
			r.Warning(fmt.Sprintf("%s: no matching sites in %s", s.Spec, snap.Structure.Formula()))
		}
	}

	if jsonMode {
		out.Total = summary.Total
		out.Specs = specSummaries(summary.Specs)
		return r.JSON(out)
	}

	r.Println("")
	if opts.DryRun {
		r.Success(fmt.Sprintf("%d structures would be generated in %s", summary.Total, eng.OutputDir()))
		return nil
	}
	r.Success(fmt.Sprintf("Generated %d structures", summary.Total))
	return nil
}

func specSummaries(in []engine.SpecSummary) []GenerateSpec {
	out := make([]GenerateSpec, len(in))
	for i, s := range in {
		out[i] = GenerateSpec{Kind: s.Spec.Kind(), Spec: s.Spec.String(), Variants: s.Variants}
	}
	return out
}

// watchAndGenerate regenerates after every change to the inputs until the
// command's context is cancelled. The config file is re-read each time;
// the set of watched files is fixed at start.
func watchAndGenerate(cmd *cobra.Command, cmdCtx *CommandContext, opts *GenerateOptions) error {
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	paths := []string{cfg.Structure, cfg.ConfigFile}
	if cfg.Symmetry.Source == config.SourceFile {
		paths = append(paths, cfg.Symmetry.File)
	}
	w, err := watch.New(paths, cmdCtx.Logger)
	if err != nil {
		return err
	}

	r.Println("")
	r.Println(r.Styles().Muted.Render("Watching for changes (Ctrl-C to stop)"))

	return w.Run(cmd.Context(), func(ctx context.Context, path string) {
		r.Println("")
		r.Println(r.Styles().Info.Render("Changed: " + path))

		next, err := reloadCommandContext(cmd, cmdCtx)
		if err != nil {
			reportError(r, err)
			return
		}
		if err := generateOnce(ctx, next, opts); err != nil {
			reportError(r, err)
		}
	})
}

// reloadCommandContext re-reads the config file, if there is one, and
// builds a fresh engine from it.
func reloadCommandContext(cmd *cobra.Command, prev *CommandContext) (*CommandContext, error) {
	cfg := prev.Cfg
	if cfg.ConfigFile != "" {
		var err error
		cfg, err = config.Load(cfg.ConfigFile, cmd.Root().PersistentFlags())
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	eng, err := createEngine(cfg, prev.Logger)
	if err != nil {
		return nil, err
	}
	return &CommandContext{Cfg: cfg, Logger: prev.Logger, Engine: eng, Renderer: prev.Renderer}, nil
}

// reportError prints err and its hints without stopping a watch.
func reportError(r *output.Renderer, err error) {
	r.Error(err.Error())
	if hint := errors.FlattenHints(err); hint != "" {
		r.Error("hint: " + hint)
	}
}
