package symmetry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/pkg/core"
)

// FileOracle answers with a classification snapshot stored on disk.
type FileOracle struct {
	Path string
}

// Classify implements Oracle. The snapshot must fit the structure's site count.
func (o FileOracle) Classify(_ context.Context, s *core.Structure) (*Classification, error) {
	c, err := Load(o.Path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(s.Len()); err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "snapshot %s", o.Path),
			"the snapshot was saved for a different structure; regenerate it with 'defectgen report --save'")
	}
	return c, nil
}

type format int

const (
	formatYAML format = iota
	formatJSON
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	default:
		return 0, errors.WithHint(errors.Newf("unsupported snapshot file %s", path),
			"use a .yaml, .yml or .json extension")
	}
}

// Load reads a snapshot written by Save (or any spglib-style dataset dump).
func Load(path string) (*Classification, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, errors.Wrapf(err, "read symmetry snapshot %s", path)
	}

	var d Dataset
	if f == formatJSON {
		err = json.Unmarshal(data, &d)
	} else {
		err = yaml.Unmarshal(data, &d)
	}
	if err != nil {
		return nil, wrapOracle(err, "parse symmetry snapshot %s", path)
	}
	return d.Classification()
}

// Save writes c to path as YAML or JSON, chosen by extension.
func Save(path string, c *Classification) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	if f == formatJSON {
		data, err = json.MarshalIndent(c.Dataset(), "", "  ")
	} else {
		data, err = yaml.Marshal(c.Dataset())
	}
	if err != nil {
		return errors.Wrap(err, "encode symmetry snapshot")
	}

	if f == formatJSON {
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // snapshots are meant to be shared
		return errors.Wrapf(err, "write symmetry snapshot %s", path)
	}
	return nil
}
