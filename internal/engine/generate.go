package engine

import (
	"context"
	"iter"
	"log/slog"

	"github.com/leapstack-labs/defectgen/internal/artifact"
	"github.com/leapstack-labs/defectgen/internal/defect"
	"github.com/leapstack-labs/defectgen/internal/errors"
)

// GenerateOptions controls a Generate call.
type GenerateOptions struct {
	// DryRun reports where variants would go without writing anything.
	DryRun bool
	// OnArtifact is called after each variant is written (or planned).
	OnArtifact func(Result)
}

// Result describes one generated variant.
type Result struct {
	Spec     defect.Spec
	Artifact artifact.Artifact
	Sites    int
	Formula  string
}

// SpecSummary counts the variants produced by one spec.
type SpecSummary struct {
	Spec     defect.Spec
	Variants int
}

// Summary describes a Generate call.
type Summary struct {
	Specs  []SpecSummary
	Total  int
	DryRun bool
}

// Generate enumerates every spec against snap and writes each variant.
//
// All specs are validated before anything is written. Writing stops at the
// first filesystem error, leaving earlier variants in place. The context
// is checked between variants.
func (e *Engine) Generate(ctx context.Context, snap *Snapshot, specs []defect.Spec, opts GenerateOptions) (*Summary, error) {
	if len(specs) == 0 {
		return nil, errors.WithHint(errors.New("no defects requested"),
			"add a defects section to defectgen.yaml or pass --remove, --replace, --insert or --antisite")
	}

	// Phase 1: validate everything
	seqs := make([]iter.Seq[defect.Variant], len(specs))
	for i, spec := range specs {
		seq, err := defect.Enumerate(snap.Structure, snap.Labels(), spec)
		if err != nil {
			return nil, errors.Wrapf(err, "defect %d (%s)", i+1, spec.Kind())
		}
		seqs[i] = seq
	}

	// Phase 2: enumerate and write
	summary := &Summary{DryRun: opts.DryRun, Specs: make([]SpecSummary, len(specs))}
	written := make(map[string]struct{})
	for i, spec := range specs {
		e.logger.Debug("enumerating", slog.String("spec", spec.String()),
			slog.Int("expected", defect.Count(snap.Structure, spec)))

		summary.Specs[i].Spec = spec
		for v := range seqs[i] {
			if err := ctx.Err(); err != nil {
				return summary, errors.Wrap(err, "generation interrupted")
			}

			var a artifact.Artifact
			if opts.DryRun {
				a = e.writer.Locate(v.Label)
			} else {
				var err error
				a, err = e.writer.Write(v.Label, v.Structure)
				if err != nil {
					return summary, err
				}
			}
			e.logger.Debug("variant", slog.String("path", a.Path), slog.Int("sites", v.Structure.Len()))
			// antisite pairs sharing a target site produce the same label
			if _, dup := written[a.Path]; dup {
				e.logger.Warn("variant path reused, earlier file replaced", slog.String("path", a.Path))
			}
			written[a.Path] = struct{}{}

			summary.Specs[i].Variants++
			summary.Total++
			if opts.OnArtifact != nil {
				opts.OnArtifact(Result{Spec: spec, Artifact: a, Sites: v.Structure.Len(), Formula: v.Structure.Formula()})
			}
		}

		if summary.Specs[i].Variants == 0 {
			e.logger.Info("no matching sites, nothing generated", slog.String("spec", spec.String()))
		}
	}

	e.logger.Info("generation finished", slog.Int("variants", summary.Total), slog.Bool("dry_run", opts.DryRun))
	return summary, nil
}
