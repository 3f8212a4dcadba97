package worksheet

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
)

// stream holds the constant-memory state: the row frontier and the scratch
// file that finished <row> elements are written to.
type stream struct {
	f       *os.File
	xw      *xmlwriter.Writer
	current int // -1 before the first write
	closed  bool
}

func newStream(dir string) (*stream, error) {
	f, err := os.CreateTemp(dir, "xlsxw-sheet-*.xml")
	if err != nil {
		return nil, errors.Wrapf(ErrAllocation, "worksheet: create scratch file: %v", err)
	}
	return &stream{f: f, xw: xmlwriter.New(f), current: -1}, nil
}

func (st *stream) close() error {
	if st.closed {
		return nil
	}
	st.closed = true
	st.current = cellref.MaxRows
	name := st.f.Name()
	err := st.f.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}

// advance moves the frontier to row n, flushing the frontier row first.
// Writes to rows below the frontier fail.
func (ws *Worksheet) advance(n int) error {
	st := ws.stream
	if st == nil {
		return nil
	}
	if n < st.current {
		return errors.Wrapf(ErrRowOrderViolation, "worksheet: row %d is before row %d", n, st.current)
	}
	if n == st.current {
		return nil
	}
	if err := ws.flushRow(); err != nil {
		return err
	}
	st.current = n
	return nil
}

// flushRow serialises the frontier row to the scratch file and drops it.
func (ws *Worksheet) flushRow() error {
	st := ws.stream
	if st.current < 0 {
		return nil
	}
	if r, ok := ws.store.findRow(st.current); ok {
		ws.writeRow(st.xw, r)
		ws.store.deleteRow(st.current)
	}
	if err := st.xw.Err(); err != nil {
		return errors.Wrapf(ErrSinkWrite, "worksheet: scratch file: %v", err)
	}
	return nil
}

// finishStream flushes the last row and freezes the frontier so that no
// further writes are accepted.  It reports whether any row was streamed.
func (ws *Worksheet) finishStream() (bool, error) {
	st := ws.stream
	if st.closed {
		return false, errors.Wrap(ErrRowOrderViolation, "worksheet: sheet already assembled")
	}
	if err := ws.flushRow(); err != nil {
		return false, err
	}
	st.current = cellref.MaxRows
	if err := st.xw.Flush(); err != nil {
		return false, errors.Wrapf(ErrSinkWrite, "worksheet: scratch file: %v", err)
	}
	return st.xw.Written() > 0, nil
}

// copyStream splices the streamed rows into xw.
func (ws *Worksheet) copyStream(xw *xmlwriter.Writer) error {
	if _, err := ws.stream.f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(ErrSinkWrite, "worksheet: rewind scratch file: %v", err)
	}
	xw.Copy(ws.stream.f)
	return nil
}
