package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/defectgen/internal/cli/output"
	"github.com/leapstack-labs/defectgen/internal/engine"
	"github.com/leapstack-labs/defectgen/internal/symmetry"
)

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Save string
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the symmetry classification of the input structure",
		Long: `Print the space group, symmetry operations, Wyckoff positions and
groups of equivalent atoms of the input structure.

Output adapts to environment:
  - Terminal: Styled output with tables
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format (--output json)

With --save the classification is also written as a snapshot that
symmetry.source: file can read back, so later runs need no symmetry command.`,
		Example: `  # Report on ./POSCAR
  defectgen report

  # Classify with an external tool and keep the result
  defectgen report --symmetry command --symmetry-command "python3 oracle.py" --save symmetry.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Save, "save", "", "Write the classification snapshot to this .yaml or .json file")

	return cmd
}

func runReport(cmd *cobra.Command, opts *ReportOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	snap, err := eng.Load(cmd.Context())
	if err != nil {
		return err
	}

	if opts.Save != "" {
		if err := symmetry.Save(opts.Save, snap.Classification); err != nil {
			return err
		}
		cmdCtx.Logger.Info("classification saved", "path", opts.Save)
	}

	rep := eng.Report(snap)
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rep)
	case output.ModeMarkdown:
		renderReportMarkdown(r, rep)
	default:
		renderReportText(r, rep)
	}

	if opts.Save != "" {
		r.Println("")
		r.StatusLine(opts.Save, "success", "classification saved")
	}
	return nil
}

func atomRows(atoms []engine.Atom) [][]string {
	rows := make([][]string, len(atoms))
	for i, a := range atoms {
		rows[i] = []string{
			strconv.Itoa(a.Index),
			a.Species,
			a.Wyckoff,
			formatCoord(a.Frac[0]),
			formatCoord(a.Frac[1]),
			formatCoord(a.Frac[2]),
		}
	}
	return rows
}

func formatCoord(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func describeGroup(group []engine.Atom) string {
	first := group[0]
	return fmt.Sprintf("%s %s, %d sites: %s", first.Species, first.Wyckoff, len(group), siteIndices(group))
}

func siteIndices(group []engine.Atom) string {
	parts := make([]string, len(group))
	for i, a := range group {
		parts[i] = strconv.Itoa(a.Index)
	}
	return strings.Join(parts, ", ")
}

func cellSummary(rep *engine.Report) string {
	l := rep.Lengths
	return fmt.Sprintf("a=%.4f b=%.4f c=%.4f, V=%.3f", l[0], l[1], l[2], rep.Volume)
}

var atomHeader = []string{"Index", "Element", "Wyckoff", "X", "Y", "Z"}

func renderReportText(r *output.Renderer, rep *engine.Report) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header.Render(fmt.Sprintf("%s  %s (#%d)", rep.Formula, rep.SpaceGroup.Symbol, rep.SpaceGroup.Number)))
	r.Println(styles.Muted.Render(rep.Structure))
	r.Printf("   %s %s\n", styles.Key.Render("cell"), cellSummary(rep))
	r.Println("")

	r.Println(styles.Subheader.Render(output.Title("positions per element")))
	for _, el := range rep.Elements {
		r.Printf("   %s %s\n", styles.Key.Render(fmt.Sprintf("%-3s", el.Element)), el.Summary())
	}
	r.Println("")

	r.Println(styles.Subheader.Render(output.Title("atoms")))
	r.Table(atomHeader, atomRows(rep.Atoms))
	r.Println("")

	r.Println(styles.Subheader.Render(output.Title("equivalent sites")))
	for _, group := range rep.EquivalentGroups {
		r.Println("   " + describeGroup(group))
	}
	r.Println("")

	r.Println(styles.Subheader.Render(fmt.Sprintf("%s (%d)", output.Title("symmetry operations"), len(rep.Operations))))
	for i, op := range rep.Operations {
		r.Printf("   %s %s\n", styles.Muted.Render(fmt.Sprintf("%3d", i+1)), op)
	}
}

func renderReportMarkdown(r *output.Renderer, rep *engine.Report) {
	r.Println(output.FormatHeader(1, rep.Formula))
	r.Println("")
	r.Println(output.FormatKeyValue("Structure", rep.Structure))
	r.Println(output.FormatKeyValue("Space group", fmt.Sprintf("%s (#%d)", rep.SpaceGroup.Symbol, rep.SpaceGroup.Number)))
	r.Println(output.FormatKeyValue("Cell", cellSummary(rep)))
	r.Println(output.FormatKeyValue("Operations", strconv.Itoa(len(rep.Operations))))
	r.Println("")

	r.Println(output.FormatHeader(2, output.Title("positions per element")))
	r.Println("")
	for _, el := range rep.Elements {
		r.Println(output.FormatKeyValue(el.Element, el.Summary()))
	}
	r.Println("")

	r.Println(output.FormatHeader(2, output.Title("atoms")))
	r.Println("")
	r.Table(atomHeader, atomRows(rep.Atoms))
	r.Println("")

	r.Println(output.FormatHeader(2, output.Title("equivalent sites")))
	r.Println("")
	for _, group := range rep.EquivalentGroups {
		r.Println("- " + describeGroup(group))
	}
	r.Println("")

	r.Println(output.FormatHeader(2, output.Title("symmetry operations")))
	r.Println("")
	for i, op := range rep.Operations {
		r.Printf("%d. `%s`\n", i+1, op)
	}
}
