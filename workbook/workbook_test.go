package workbook_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxw/internal/rels"
	"github.com/TsubasaBE/go-xlsxw/styles"
	"github.com/TsubasaBE/go-xlsxw/workbook"
	"github.com/TsubasaBE/go-xlsxw/worksheet"
)

func newWorkbook(t *testing.T, opts workbook.Options) *workbook.Workbook {
	t.Helper()
	wb := workbook.New(opts)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

// zipParts writes wb into an in-memory archive and returns every part by
// name, plus the names in archive order.
func zipParts(t *testing.T, wb *workbook.Workbook) (map[string]string, []string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, wb.WriteParts(context.Background(), zw))
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	parts := make(map[string]string)
	var order []string
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		parts[f.Name] = string(data)
		order = append(order, f.Name)
	}
	return parts, order
}

// ── Sheets ────────────────────────────────────────────────────────────────────

func TestAddWorksheet(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{})
	_, err := wb.AddWorksheet("")
	require.NoError(t, err)
	_, err = wb.AddWorksheet("Data")
	require.NoError(t, err)
	_, err = wb.AddWorksheet("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Data", "Sheet3"}, wb.SheetNames())

	ws, err := wb.SheetByName("DATA")
	require.NoError(t, err)
	assert.Equal(t, "Data", ws.Name)
	_, err = wb.SheetByName("missing")
	assert.ErrorIs(t, err, workbook.ErrSheetNotFound)
}

func TestAddWorksheetNames(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{strings.Repeat("x", 31), nil},
		{strings.Repeat("x", 32), workbook.ErrSheetName},
		{"a[b", workbook.ErrSheetName},
		{"a/b", workbook.ErrSheetName},
		{`a\b`, workbook.ErrSheetName},
		{"what?", workbook.ErrSheetName},
		{"'quoted", workbook.ErrSheetName},
		{"quoted'", workbook.ErrSheetName},
		{"it's fine", nil},
		{"sheet1", workbook.ErrDuplicateSheet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := newWorkbook(t, workbook.Options{})
			_, err := wb.AddWorksheet("Sheet1")
			require.NoError(t, err)
			_, err = wb.AddWorksheet(tt.name)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
			assert.Len(t, wb.Sheets(), 1)
		})
	}
}

func TestFirstSheetSelected(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{})
	_, err := wb.AddWorksheet("One")
	require.NoError(t, err)
	_, err = wb.AddWorksheet("Two")
	require.NoError(t, err)

	parts, _ := zipParts(t, wb)
	assert.Contains(t, parts[workbook.SheetPart(0)], `<sheetView tabSelected="1" workbookViewId="0"/>`)
	assert.Contains(t, parts[workbook.SheetPart(1)], `<sheetView workbookViewId="0"/>`)
}

// ── Parts ─────────────────────────────────────────────────────────────────────

func TestWritePartsSharedStrings(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{})
	one, err := wb.AddWorksheet("One")
	require.NoError(t, err)
	two, err := wb.AddWorksheet("Two")
	require.NoError(t, err)

	require.NoError(t, one.WriteString(0, 0, "alpha", nil))
	require.NoError(t, two.WriteString(0, 0, "beta", nil))
	require.NoError(t, two.WriteString(1, 0, "alpha", nil))
	require.NoError(t, two.WriteURL(2, 0, "https://example.com/", nil, nil))

	unique, total := wb.SharedStrings()
	assert.Equal(t, 3, unique)
	assert.Equal(t, 4, total)

	parts, order := zipParts(t, wb)
	assert.Equal(t, []string{
		"xl/worksheets/sheet1.xml",
		"xl/worksheets/sheet2.xml",
		"xl/worksheets/_rels/sheet2.xml.rels",
		"xl/sharedStrings.xml",
	}, order)

	assert.Contains(t, parts["xl/worksheets/sheet1.xml"], `<c r="A1" t="s"><v>0</v></c>`)
	sheet2 := parts["xl/worksheets/sheet2.xml"]
	assert.Contains(t, sheet2, `<c r="A1" t="s"><v>1</v></c>`)
	assert.Contains(t, sheet2, `<c r="A2" t="s"><v>0</v></c>`)
	assert.Contains(t, sheet2, `<hyperlink ref="A3" r:id="rId1"/>`)

	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
			`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="4" uniqueCount="3">`+
			`<si><t>alpha</t></si><si><t>beta</t></si><si><t>https://example.com/</t></si></sst>`,
		parts[workbook.SharedStringsPart])

	targets, err := rels.Parse([]byte(parts[workbook.SheetRelsPart(1)]))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"rId1": "https://example.com/"}, targets)
}

func TestWritePartsNoStrings(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{})
	ws, err := wb.AddWorksheet("")
	require.NoError(t, err)
	require.NoError(t, ws.WriteNumber(0, 0, 1, nil))

	_, order := zipParts(t, wb)
	assert.Equal(t, []string{"xl/worksheets/sheet1.xml"}, order)
}

func TestWritePartsFormats(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{})
	bold, err := wb.AddFormat(styles.New())
	require.NoError(t, err)
	ws, err := wb.AddWorksheet("")
	require.NoError(t, err)
	require.NoError(t, ws.WriteNumber(0, 0, 1, bold))

	parts, _ := zipParts(t, wb)
	assert.Contains(t, parts[workbook.SheetPart(0)], `<c r="A1" s="1"><v>1</v></c>`)
}

// fillSheets writes the same content to n sheets of wb.
func fillSheets(t *testing.T, wb *workbook.Workbook, n int) {
	t.Helper()
	for i := range n {
		ws, err := wb.AddWorksheet("")
		require.NoError(t, err)
		for r := range 200 {
			require.NoError(t, ws.WriteNumber(r, 0, float64(r*i), nil))
			require.NoError(t, ws.WriteString(r, 1, fmt.Sprintf("s%d-%d", i, r%17), nil))
		}
		require.NoError(t, ws.MergeRange(200, 0, 200, 2, "end", nil))
	}
}

func TestWritePartsConcurrency(t *testing.T) {
	serial := newWorkbook(t, workbook.Options{Concurrency: 1})
	fillSheets(t, serial, 12)
	parallel := newWorkbook(t, workbook.Options{})
	fillSheets(t, parallel, 12)

	want, wantOrder := zipParts(t, serial)
	got, gotOrder := zipParts(t, parallel)
	assert.Equal(t, wantOrder, gotOrder)
	assert.Equal(t, want, got)
	assert.Len(t, gotOrder, 13)
}

func TestWritePartsConstantMemory(t *testing.T) {
	buffered := newWorkbook(t, workbook.Options{})
	fillSheets(t, buffered, 3)

	dir := t.TempDir()
	streamed := newWorkbook(t, workbook.Options{ConstantMemory: true, TmpDir: dir})
	fillSheets(t, streamed, 3)

	want, _ := zipParts(t, buffered)
	got, _ := zipParts(t, streamed)
	assert.Equal(t, want, got)

	require.NoError(t, streamed.Close())
	require.NoError(t, streamed.Close())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch files are removed")
}

// ── Errors ────────────────────────────────────────────────────────────────────

type failingParts struct {
	failOn string
	names  []string
}

func (f *failingParts) Create(name string) (io.Writer, error) {
	f.names = append(f.names, name)
	if name == f.failOn {
		return nil, errors.New("disk full")
	}
	return io.Discard, nil
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

type brokenParts struct{}

func (brokenParts) Create(string) (io.Writer, error) { return brokenWriter{}, nil }

func TestWritePartsSinkErrors(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{})
	ws, err := wb.AddWorksheet("")
	require.NoError(t, err)
	require.NoError(t, ws.WriteString(0, 0, "x", nil))

	dst := &failingParts{failOn: workbook.SharedStringsPart}
	err = wb.WriteParts(context.Background(), dst)
	assert.ErrorIs(t, err, worksheet.ErrSinkWrite)
	assert.Equal(t, []string{workbook.SheetPart(0), workbook.SharedStringsPart}, dst.names)

	err = wb.WriteParts(context.Background(), brokenParts{})
	assert.ErrorIs(t, err, worksheet.ErrSinkWrite)
}

func TestWritePartsCancelled(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{})
	_, err := wb.AddWorksheet("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dst := &failingParts{}
	assert.ErrorIs(t, wb.WriteParts(ctx, dst), context.Canceled)
	assert.Empty(t, dst.names)
}

func TestWritePartsScratchAllocation(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	wb := newWorkbook(t, workbook.Options{ConstantMemory: true, TmpDir: dir})
	_, err := wb.AddWorksheet("")
	require.NoError(t, err)
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })
	err = wb.WriteParts(context.Background(), &failingParts{})
	assert.ErrorIs(t, err, worksheet.ErrAllocation)
}

func TestAddWorksheetScratchAllocation(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{ConstantMemory: true, TmpDir: filepath.Join(t.TempDir(), "missing")})
	_, err := wb.AddWorksheet("")
	assert.ErrorIs(t, err, worksheet.ErrAllocation)
	assert.Empty(t, wb.Sheets())
}

// ── DirWriter ─────────────────────────────────────────────────────────────────

func TestDirWriter(t *testing.T) {
	wb := newWorkbook(t, workbook.Options{})
	ws, err := wb.AddWorksheet("")
	require.NoError(t, err)
	require.NoError(t, ws.WriteString(0, 0, "hello", nil))

	root := t.TempDir()
	dw := workbook.NewDirWriter(root)
	require.NoError(t, wb.WriteParts(context.Background(), dw))
	require.NoError(t, dw.Close())

	data, err := os.ReadFile(filepath.Join(root, "xl", "worksheets", "sheet1.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<c r="A1" t="s"><v>0</v></c>`)
	data, err = os.ReadFile(filepath.Join(root, "xl", "sharedStrings.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<si><t>hello</t></si>`)

	_, err = dw.Create("../outside.xml")
	assert.Error(t, err)
}
