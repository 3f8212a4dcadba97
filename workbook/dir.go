package workbook

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DirWriter is a PartWriter that stores each part as a file below a root
// directory.  Call Close after the last part.
type DirWriter struct {
	root string
	cur  *os.File
}

// NewDirWriter returns a DirWriter rooted at root.  The directory is
// created on the first part.
func NewDirWriter(root string) *DirWriter {
	return &DirWriter{root: root}
}

// Create closes the previous part and opens name for writing.  name uses
// forward slashes and must stay below the root.
func (d *DirWriter) Create(name string) (io.Writer, error) {
	if err := d.Close(); err != nil {
		return nil, err
	}
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return nil, errors.Errorf("workbook: part name %q escapes the output directory", name)
	}
	path := filepath.Join(d.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "workbook: create part directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "workbook: create part")
	}
	d.cur = f
	return f, nil
}

// Close closes the part being written, if any.
func (d *DirWriter) Close() error {
	if d.cur == nil {
		return nil
	}
	err := d.cur.Close()
	d.cur = nil
	return errors.Wrap(err, "workbook: close part")
}
