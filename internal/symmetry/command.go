package symmetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/pkg/core"
	"github.com/leapstack-labs/defectgen/pkg/poscar"
)

// SymprecEnv is the environment variable carrying the symmetry tolerance to
// the oracle process.
const SymprecEnv = "DEFECTGEN_SYMPREC"

// DefaultSymprec is the tolerance passed when none is configured.
const DefaultSymprec = 0.01

// waitDelay bounds how long a killed oracle may keep its output pipes open.
const waitDelay = 2 * time.Second

// CommandOracle runs an external program to classify a structure.
//
// The structure is written to the program's stdin as POSCAR. The program
// must print a JSON Dataset on stdout and exit with status zero.
type CommandOracle struct {
	// Command is a shell-quoted command line, e.g. `python3 "my oracle.py"`.
	Command string
	Symprec float64
	// Dir is the working directory of the process. Empty means the current one.
	Dir    string
	Logger *slog.Logger
}

// NewCommandOracle creates a CommandOracle with the given command line.
func NewCommandOracle(command string, symprec float64, logger *slog.Logger) *CommandOracle {
	if symprec <= 0 {
		symprec = DefaultSymprec
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommandOracle{Command: command, Symprec: symprec, Logger: logger}
}

// Classify implements Oracle.
func (o *CommandOracle) Classify(ctx context.Context, s *core.Structure) (*Classification, error) {
	args, err := shellquote.Split(o.Command)
	if err != nil {
		return nil, errors.Wrapf(err, "parse symmetry command %q", o.Command)
	}
	if len(args) == 0 {
		return nil, errors.WithHint(errors.New("symmetry command is empty"),
			"set symmetry.command in defectgen.yaml or pass --symmetry-command")
	}

	var stdin bytes.Buffer
	if err := poscar.Write(&stdin, s); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // the command is user configuration
	cmd.Dir = o.Dir
	cmd.Env = append(cmd.Environ(), SymprecEnv+"="+strconv.FormatFloat(o.symprec(), 'g', -1, 64))
	cmd.Stdin = &stdin
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	o.logger().Debug("running symmetry oracle", slog.String("command", args[0]), slog.Int("args", len(args)-1))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, "symmetry oracle interrupted")
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "no output on stderr"
		}
		return nil, wrapOracle(err, "symmetry oracle %s failed: %s", args[0], msg)
	}

	var d Dataset
	if err := json.Unmarshal(stdout.Bytes(), &d); err != nil {
		return nil, wrapOracle(err, "decode output of symmetry oracle %s", args[0])
	}
	c, err := d.Classification()
	if err != nil {
		return nil, err
	}
	if err := c.Validate(s.Len()); err != nil {
		return nil, errors.Wrapf(err, "symmetry oracle %s", args[0])
	}

	o.logger().Debug("structure classified",
		slog.String("space_group", c.SpaceGroupSymbol),
		slog.Int("number", c.SpaceGroupNumber),
		slog.Int("operations", len(c.Operations)))
	return c, nil
}

func (o *CommandOracle) symprec() float64 {
	if o.Symprec <= 0 {
		return DefaultSymprec
	}
	return o.Symprec
}

func (o *CommandOracle) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
