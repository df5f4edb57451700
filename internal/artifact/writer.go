package artifact

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/defectgen/internal/errors"
	"github.com/leapstack-labs/defectgen/pkg/core"
	"github.com/leapstack-labs/defectgen/pkg/poscar"
)

// DefaultFileName is the name of the structure file inside each directory.
const DefaultFileName = "POSCAR"

// Encoder serializes a structure. poscar.Writer satisfies it.
type Encoder interface {
	Encode(w io.Writer, s *core.Structure) error
}

// Artifact describes one written structure.
type Artifact struct {
	Label string `json:"label"`
	// Dir is the sanitized directory name, relative to the writer's root.
	Dir string `json:"dir"`
	// Path is Dir joined with the file name, relative to the writer's root.
	Path string `json:"path"`
}

// Writer creates Root/<Sanitize(label)>/<FileName> for every structure.
// The zero value writes POSCAR files below the working directory.
type Writer struct {
	Root     string
	FileName string
	Encoder  Encoder
	// Perm applies to created files; directories get Perm plus execute bits.
	Perm fs.FileMode
}

// Write persists s under a directory named after label. An existing
// directory is reused and an existing file is overwritten.
func (w Writer) Write(label string, s *core.Structure) (Artifact, error) {
	a := w.Locate(label)

	var buf bytes.Buffer
	if err := w.encoder().Encode(&buf, s); err != nil {
		return a, errors.Wrapf(err, "encode %s", label)
	}

	full := filepath.Join(w.Root, a.Dir)
	if err := os.MkdirAll(full, w.dirPerm()); err != nil {
		return a, errors.Wrapf(err, "create directory %s", full)
	}

	path := filepath.Join(w.Root, a.Path)
	if err := os.WriteFile(path, buf.Bytes(), w.filePerm()); err != nil {
		return a, errors.Wrapf(err, "write %s", path)
	}
	return a, nil
}

// Locate returns where Write would put a structure labelled label, without
// touching the filesystem.
func (w Writer) Locate(label string) Artifact {
	dir := Sanitize(label)
	name := w.FileName
	if name == "" {
		name = DefaultFileName
	}
	return Artifact{Label: label, Dir: dir, Path: filepath.Join(dir, name)}
}

func (w Writer) encoder() Encoder {
	if w.Encoder == nil {
		return poscar.Writer{}
	}
	return w.Encoder
}

func (w Writer) filePerm() fs.FileMode {
	if w.Perm == 0 {
		return 0644
	}
	return w.Perm
}

func (w Writer) dirPerm() fs.FileMode {
	p := w.filePerm()
	// directories need x wherever files have r
	return p | (p&0444)>>2
}
