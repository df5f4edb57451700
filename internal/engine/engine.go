// Package engine runs defect generation end to end.
// It loads a structure, classifies it once and turns defect specs into
// written structure files.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/defectgen/internal/artifact"
	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/internal/symmetry"
	"github.com/leapstack-labs/defectgen/pkg/core"
	"github.com/leapstack-labs/defectgen/pkg/poscar"
)

// Engine generates defect variants of one structure file.
type Engine struct {
	structurePath string
	oracle        symmetry.Oracle
	writer        artifact.Writer
	logger        *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// StructurePath is the input POSCAR file (default "POSCAR")
	StructurePath string
	// OutputDir is where variant directories are created (default ".")
	OutputDir string
	// OutputFile is the file name inside each variant directory (default "POSCAR")
	OutputFile string
	// Oracle classifies the input structure (default symmetry.P1Oracle)
	Oracle symmetry.Oracle
	// Encoder serializes variants (default poscar.Writer)
	Encoder artifact.Encoder
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine. Nothing is read until Load is called.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	path := cfg.StructurePath
	if path == "" {
		path = "POSCAR"
	}
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	outFile := cfg.OutputFile
	if outFile == "" {
		outFile = artifact.DefaultFileName
	}
	if outFile == "." || outFile == ".." || strings.ContainsAny(outFile, `/\`) {
		return nil, errors.WithHint(errors.Newf("output file %q must be a plain file name", outFile),
			"use output_dir to choose where variant directories go")
	}

	oracle := cfg.Oracle
	if oracle == nil {
		oracle = symmetry.P1Oracle{}
	}
	encoder := cfg.Encoder
	if encoder == nil {
		encoder = poscar.Writer{}
	}

	logger.Debug("initializing engine",
		slog.String("structure", path),
		slog.String("output_dir", outDir),
		slog.String("output_file", outFile))

	return &Engine{
		structurePath: path,
		oracle:        oracle,
		writer:        artifact.Writer{Root: outDir, FileName: outFile, Encoder: encoder},
		logger:        logger,
	}, nil
}

// StructurePath returns the input file the engine reads.
func (e *Engine) StructurePath() string {
	return e.structurePath
}

// OutputDir returns the directory variant directories are created in.
func (e *Engine) OutputDir() string {
	return e.writer.Root
}

// Snapshot is a structure together with its one-time classification.
// The classification describes Structure as loaded, before any defect.
type Snapshot struct {
	Path           string
	Structure      *core.Structure
	Classification *symmetry.Classification
}

// Labels returns the Wyckoff label of every site.
func (s *Snapshot) Labels() symmetry.Labels {
	return s.Classification.Labels()
}

// Load reads the structure file and classifies it.
func (e *Engine) Load(ctx context.Context) (*Snapshot, error) {
	s, err := poscar.ReadFile(e.structurePath)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("structure loaded",
		slog.String("path", e.structurePath),
		slog.Int("sites", s.Len()),
		slog.String("formula", s.Formula()))

	c, err := e.oracle.Classify(ctx, s)
	if err != nil {
		return nil, errors.Wrapf(err, "classify %s", filepath.Base(e.structurePath))
	}
	if err := c.Validate(s.Len()); err != nil {
		return nil, errors.Wrapf(err, "classify %s", filepath.Base(e.structurePath))
	}
	e.logger.Info("structure classified",
		slog.String("space_group", c.SpaceGroupSymbol),
		slog.Int("number", c.SpaceGroupNumber))

	return &Snapshot{Path: e.structurePath, Structure: s, Classification: c}, nil
}
