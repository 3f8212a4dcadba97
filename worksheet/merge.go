package worksheet

import (
	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/styles"
)

// MergeArea describes a merged cell range.
// R and C are the 0-based row and column of the top-left anchor cell.
// H is the height (number of rows) and W is the width (number of columns)
// spanned by the merge.
type MergeArea struct {
	R int
	C int
	H int
	W int
}

// MergeRange merges the range into one displayed cell holding s.  The
// anchor gets the string and every other cell a formatted blank so that
// borders and fills cover the whole area.
//
// In constant-memory mode only the anchor row is written; the merge record
// itself is always kept.
func (ws *Worksheet) MergeRange(r1, c1, r2, c2 int, s string, f *styles.Format) error {
	rng := cellref.NewRange(r1, c1, r2, c2)
	if err := rng.CheckBounds(); err != nil {
		return errors.WithMessage(err, "worksheet: merge range")
	}
	if rng.IsCell() {
		return errors.Wrapf(ErrInvalidArgument, "worksheet: merge range: %s is a single cell", rng)
	}
	for _, m := range ws.merges {
		if m.Overlaps(rng) {
			return errors.Wrapf(ErrMergeOverlap, "worksheet: merge range: %s overlaps %s", rng, m)
		}
	}
	if ws.stream != nil && rng.FirstRow < ws.stream.current {
		return errors.Wrapf(ErrRowOrderViolation, "worksheet: merge range: row %d is before row %d", rng.FirstRow, ws.stream.current)
	}

	if err := ws.WriteString(rng.FirstRow, rng.FirstCol, s, f); err != nil {
		return err
	}
	last := rng.LastRow
	if ws.stream != nil && last > rng.FirstRow {
		ws.log.WithField("range", rng.String()).Warn("constant memory: merged cells below the anchor row are not written")
		last = rng.FirstRow
	}
	for r := rng.FirstRow; r <= last; r++ {
		for c := rng.FirstCol; c <= rng.LastCol; c++ {
			if r == rng.FirstRow && c == rng.FirstCol {
				continue
			}
			if err := ws.WriteBlank(r, c, f); err != nil {
				return err
			}
		}
	}
	ws.merges = append(ws.merges, rng)
	return nil
}

// MergeCells returns the merged ranges in insertion order.
func (ws *Worksheet) MergeCells() []MergeArea {
	out := make([]MergeArea, len(ws.merges))
	for i, m := range ws.merges {
		out[i] = MergeArea{R: m.FirstRow, C: m.FirstCol, H: m.LastRow - m.FirstRow + 1, W: m.LastCol - m.FirstCol + 1}
	}
	return out
}
