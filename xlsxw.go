// Package xlsxw writes the worksheet parts of Office Open XML spreadsheets
// (xl/worksheets/sheetN.xml, their relationships and xl/sharedStrings.xml).
// No cgo is required.
//
// # Quick start
//
//	wb := xlsxw.New(workbook.Options{})
//	defer wb.Close()
//
//	ws, err := wb.AddWorksheet("Sales")
//	if err != nil { ... }
//	bold := styles.New()
//	bold.Bold = true
//	bold, _ = wb.AddFormat(bold)
//	_ = ws.WriteString(0, 0, "Region", bold)
//	_ = ws.WriteNumber(1, 0, 12.5, nil)
//
//	err = xlsxw.WriteZip(ctx, wb, out)
//
// # Memory
//
// By default every sheet keeps its cells in memory until the parts are
// written, so cells may be written in any order.  With
// [workbook.Options.ConstantMemory] each sheet streams completed rows to a
// scratch file; writing to a row above the current one then fails with
// [worksheet.ErrRowOrderViolation].
//
// # Dates
//
// Cells store dates as serial day numbers.  [worksheet.Worksheet.WriteDatetime]
// converts a [time.Time]; [DateSerial] and [ConvertDate] convert directly,
// and [IsDateFormat] tells whether a number format displays a date.
//
// # Package assembly
//
// The workbook part, styles, content types and document properties are not
// produced here.  [workbook.Workbook.WriteParts] hands the parts it owns to
// any [workbook.PartWriter], such as a [zip.Writer] that the caller
// completes with the remaining parts.
package xlsxw

import (
	"archive/zip"
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/numfmt"
	"github.com/TsubasaBE/go-xlsxw/workbook"
)

// Version is the current version of the go-xlsxw library.
const Version = "0.1.0"

// New returns an empty workbook.  The caller must call Close on it to
// release scratch files.
func New(opts workbook.Options) *workbook.Workbook {
	return workbook.New(opts)
}

// WriteZip writes the parts of wb as entries of a new zip archive on w.
func WriteZip(ctx context.Context, wb *workbook.Workbook, w io.Writer) error {
	zw := zip.NewWriter(w)
	if err := wb.WriteParts(ctx, zw); err != nil {
		_ = zw.Close()
		return err
	}
	return errors.Wrap(zw.Close(), "xlsxw: finish zip")
}

// DateSerial converts t to the serial day number stored in date cells.
// Pass date1904 for workbooks using the 1904 date system.
func DateSerial(t time.Time, date1904 bool) float64 {
	return numfmt.TimeToSerial(t, date1904)
}

// ConvertDate converts a serial day number back to a time in UTC, rounded
// to the second.  Serial 60 in the 1900 system is the phantom 1900-02-29
// and yields 1900-03-01.
func ConvertDate(serial float64, date1904 bool) (time.Time, error) {
	return numfmt.SerialToTime(serial, date1904)
}

// IsDateFormat reports whether a number format displays a date or time.  id
// is a numFmtId; for custom formats (id >= 164, or -1 when unassigned) the
// format string is tokenised.
func IsDateFormat(id int, format string) bool {
	return numfmt.IsDateFormat(id, format)
}
