package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/defectgen/internal/cli/config"
	"github.com/leapstack-labs/defectgen/internal/cli/output"
	"github.com/leapstack-labs/defectgen/internal/engine"
	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/internal/symmetry"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	if err := cmdCtx.Cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cmdCtx.Cfg.ValidateStructure(); err != nil {
		return nil, err
	}

	eng, err := createEngine(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}
	cmdCtx.Engine = eng
	return cmdCtx, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't read a structure.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	oracle, err := createOracle(cfg, logger)
	if err != nil {
		return nil, err
	}

	return engine.New(engine.Config{
		StructurePath: cfg.Structure,
		OutputDir:     cfg.OutputDir,
		OutputFile:    cfg.OutputFile,
		Oracle:        oracle,
		Logger:        logger,
	})
}

// createOracle builds the symmetry oracle selected by symmetry.source.
func createOracle(cfg *config.Config, logger *slog.Logger) (symmetry.Oracle, error) {
	switch cfg.Symmetry.Source {
	case config.SourceP1, "":
		return symmetry.P1Oracle{}, nil
	case config.SourceCommand:
		o := symmetry.NewCommandOracle(cfg.Symmetry.Command, cfg.Symmetry.Symprec, logger)
		// commands in defectgen.yaml are written relative to it
		o.Dir = cfg.ProjectRoot
		return o, nil
	case config.SourceFile:
		return symmetry.FileOracle{Path: cfg.Symmetry.File}, nil
	default:
		return nil, errors.Newf("unknown symmetry source %q", cfg.Symmetry.Source)
	}
}
