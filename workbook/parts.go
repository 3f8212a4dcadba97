package workbook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/TsubasaBE/go-xlsxw/worksheet"
)

// SharedStringsPart is the part name of the shared string table.
const SharedStringsPart = "xl/sharedStrings.xml"

// PartWriter receives the parts of the package one at a time.  The writer
// returned by Create is valid until the next call to Create, the same
// contract as (*zip.Writer).Create.
type PartWriter interface {
	Create(name string) (io.Writer, error)
}

// SheetPart returns the part name of the i-th (0-based) worksheet.
func SheetPart(i int) string {
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
}

// SheetRelsPart returns the part name of the i-th worksheet's relationships.
func SheetRelsPart(i int) string {
	return fmt.Sprintf("xl/worksheets/_rels/sheet%d.xml.rels", i+1)
}

// WriteParts assembles every sheet, then writes to dst, in order:
//
//	xl/worksheets/sheetN.xml          for each sheet
//	xl/worksheets/_rels/sheetN.xml.rels  for sheets with external links
//	xl/sharedStrings.xml              when any string was written
//
// Sheets are assembled concurrently into scratch buffers (scratch files in
// constant-memory mode) and copied to dst sequentially.
func (wb *Workbook) WriteParts(ctx context.Context, dst PartWriter) error {
	start := time.Now()
	bodies := make([]partBody, len(wb.sheets))
	defer func() {
		for _, b := range bodies {
			if b != nil {
				_ = b.release()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	if wb.opts.Concurrency > 0 {
		g.SetLimit(wb.opts.Concurrency)
	}
	for i, ws := range wb.sheets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := wb.newBody()
			if err != nil {
				return err
			}
			bodies[i] = b
			if _, err := ws.WriteTo(b); err != nil {
				return errors.WithMessagef(err, "workbook: assemble %q", ws.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, ws := range wb.sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := bodies[i].reader()
		if err != nil {
			return errors.Wrapf(worksheet.ErrSinkWrite, "workbook: rewind %q: %v", ws.Name, err)
		}
		if err := wb.writePart(dst, SheetPart(i), func(w io.Writer) error {
			_, err := io.Copy(w, r)
			return err
		}); err != nil {
			return err
		}
		if len(ws.Relationships()) == 0 {
			continue
		}
		if err := wb.writePart(dst, SheetRelsPart(i), func(w io.Writer) error {
			_, err := ws.WriteRelsTo(w)
			return err
		}); err != nil {
			return err
		}
	}

	if unique, _ := wb.sst.Counts(); unique > 0 {
		if err := wb.writePart(dst, SharedStringsPart, wb.WriteSharedStrings); err != nil {
			return err
		}
	}
	wb.log.WithFields(logrus.Fields{
		"sheets":  len(wb.sheets),
		"elapsed": time.Since(start),
	}).Debug("workbook: parts written")
	return nil
}

// writePart creates name in dst and fills it with fn, counting the bytes
// for the debug log.
func (wb *Workbook) writePart(dst PartWriter, name string, fn func(io.Writer) error) error {
	w, err := dst.Create(name)
	if err != nil {
		return errors.Wrapf(worksheet.ErrSinkWrite, "workbook: create %s: %v", name, err)
	}
	cw := &countingWriter{w: w}
	if err := fn(cw); err != nil {
		if errors.Is(err, worksheet.ErrSinkWrite) {
			return errors.WithMessagef(err, "workbook: %s", name)
		}
		return errors.Wrapf(worksheet.ErrSinkWrite, "workbook: %s: %v", name, err)
	}
	wb.log.WithFields(logrus.Fields{"part": name, "bytes": cw.n}).Debug("workbook: part written")
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// ── scratch bodies ────────────────────────────────────────────────────────────

// partBody holds one assembled sheet until it is copied to the PartWriter.
type partBody interface {
	io.Writer
	reader() (io.Reader, error)
	release() error
}

func (wb *Workbook) newBody() (partBody, error) {
	if !wb.opts.ConstantMemory {
		return &memBody{}, nil
	}
	f, err := os.CreateTemp(wb.opts.TmpDir, "xlsxw-part-*.xml")
	if err != nil {
		return nil, errors.Wrapf(worksheet.ErrAllocation, "workbook: scratch part: %v", err)
	}
	return &fileBody{f: f}, nil
}

type memBody struct {
	buf bytes.Buffer
}

func (b *memBody) Write(p []byte) (int, error) { return b.buf.Write(p) }
func (b *memBody) reader() (io.Reader, error) { return &b.buf, nil }
func (b *memBody) release() error { return nil }

type fileBody struct {
	f *os.File
}

func (b *fileBody) Write(p []byte) (int, error) { return b.f.Write(p) }

func (b *fileBody) reader() (io.Reader, error) {
	if _, err := b.f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return b.f, nil
}

func (b *fileBody) release() error {
	name := b.f.Name()
	err := b.f.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}
