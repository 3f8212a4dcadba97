package main

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/TsubasaBE/go-xlsxw/internal/config"
	"github.com/TsubasaBE/go-xlsxw/styles"
	"github.com/TsubasaBE/go-xlsxw/workbook"
	"github.com/TsubasaBE/go-xlsxw/worksheet"
)

type converter struct {
	cfg *config.Config
	log logrus.FieldLogger
	wb  *workbook.Workbook
}

// addInputs adds one sheet per CSV file.  The configured sheet name is used
// when there is a single input; otherwise sheets are named after the files.
func (c *converter) addInputs(inputs []string) error {
	header, err := c.cfg.Sheet.HeaderFormat(c.wb.Styles)
	if err != nil {
		return errors.WithMessage(err, "xlsxw: header format")
	}
	for _, path := range inputs {
		name := c.cfg.Sheet.Name
		if name == "" || len(inputs) > 1 {
			name = sheetName(path)
		}
		if err := c.addInput(path, name, header); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) addInput(path, name string, header *styles.Format) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "xlsxw: open input")
	}
	defer f.Close()

	ws, err := c.wb.AddWorksheet(name)
	if err != nil {
		return err
	}
	r, err := decoder(f, c.cfg.Encoding)
	if err != nil {
		return err
	}
	lastRow, lastCol, err := fillSheet(ws, r, header)
	if err != nil {
		return errors.WithMessagef(err, "xlsxw: %s", path)
	}
	if err := c.cfg.Sheet.Apply(ws, c.wb.Styles, lastRow, lastCol); err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"input": path,
		"sheet": name,
		"rows":  lastRow + 1,
		"ref":   ws.DimensionRef(),
	}).Info("sheet converted")
	return nil
}

// sheetName derives a sheet name from a file name, trimmed to the length
// Excel accepts.
func sheetName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if r := []rune(name); len(r) > workbook.MaxSheetNameLength {
		name = string(r[:workbook.MaxSheetNameLength])
	}
	return name
}

// decoder wraps r so that it yields UTF-8.  enc is a WHATWG encoding label;
// "" and "utf-8" leave r unchanged.
func decoder(r io.Reader, enc string) (io.Reader, error) {
	if enc == "" || strings.EqualFold(enc, "utf-8") || strings.EqualFold(enc, "utf8") {
		return r, nil
	}
	e, err := htmlindex.Get(enc)
	if err != nil {
		return nil, errors.Wrapf(config.ErrConfig, "xlsxw: encoding %q: %v", enc, err)
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}

// fillSheet writes every record of the CSV stream, row by row.  It returns
// the last row and column written, -1 for an empty input.
func fillSheet(ws *worksheet.Worksheet, r io.Reader, header *styles.Format) (int, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	lastRow, lastCol := -1, -1
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, errors.Wrap(err, "read csv")
		}
		var f *styles.Format
		if row == 0 {
			f = header
		}
		for col, field := range rec {
			if err := writeField(ws, row, col, field, f); err != nil {
				return 0, 0, err
			}
		}
		lastRow = row
		lastCol = max(lastCol, len(rec)-1)
	}
	return lastRow, lastCol, nil
}

// writeField picks the cell type from the text: numbers, TRUE/FALSE,
// formulas starting with "=", web links and strings.  Empty fields are
// skipped unless the row carries a format.
func writeField(ws *worksheet.Worksheet, row, col int, s string, f *styles.Format) error {
	switch {
	case s == "":
		if f == nil {
			return nil
		}
		return ws.WriteBlank(row, col, f)
	case len(s) > 1 && s[0] == '=':
		return ws.WriteFormula(row, col, s, f)
	case strings.EqualFold(s, "true") || strings.EqualFold(s, "false"):
		return ws.WriteBoolean(row, col, strings.EqualFold(s, "true"), f)
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		if len(s) <= worksheet.MaxURLLength {
			return ws.WriteURL(row, col, s, f, nil)
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "xXnNiI_") {
		return ws.WriteNumber(row, col, v, f)
	}
	return ws.WriteString(row, col, s, f)
}
