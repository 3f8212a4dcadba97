package worksheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxw/styles"
)

func cellAt(t *testing.T, ws *Worksheet, r, c int) Cell {
	t.Helper()
	for cell := range ws.Cells() {
		if cell.R == r && cell.C == c {
			return cell
		}
	}
	t.Fatalf("no cell at %d,%d", r, c)
	return Cell{}
}

func TestCellViews(t *testing.T) {
	ws := newSheet(t, Options{})
	f := styles.WithXFIndex(4)
	require.NoError(t, ws.WriteNumber(0, 0, 1.5, f))
	require.NoError(t, ws.WriteString(0, 1, "a", nil))
	require.NoError(t, ws.WriteInlineString(0, 2, "b", nil))
	require.NoError(t, ws.WriteFormula(0, 3, "=A1*2", nil))
	require.NoError(t, ws.WriteFormulaStr(0, 4, "=B1", nil, "a"))
	require.NoError(t, ws.WriteBoolean(0, 5, true, nil))
	require.NoError(t, ws.WriteBlank(0, 6, f))

	tests := []struct {
		col  int
		kind Kind
		v    any
	}{
		{0, KindNumber, 1.5},
		{1, KindString, 0},
		{2, KindInlineString, "b"},
		{3, KindFormula, 0.0},
		{4, KindFormula, "a"},
		{5, KindBoolean, true},
		{6, KindBlank, nil},
	}
	for _, tt := range tests {
		c := cellAt(t, ws, 0, tt.col)
		assert.Equal(t, tt.kind, c.Kind, tt.kind.String())
		assert.Equal(t, tt.v, c.V, tt.kind.String())
	}
	assert.Equal(t, 4, cellAt(t, ws, 0, 0).Style)
	assert.Equal(t, "A1*2", cellAt(t, ws, 0, 3).Formula)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "array formula", KindArrayFormula.String())
	assert.Equal(t, "boolean", KindBoolean.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestArrayFormulaFillsRange(t *testing.T) {
	ws := newSheet(t, Options{})
	require.NoError(t, ws.WriteArrayFormula(0, 0, 2, 0, "{=TREND(C1:C3,B1:B3)}", nil, 9))

	first := cellAt(t, ws, 0, 0)
	assert.Equal(t, KindArrayFormula, first.Kind)
	assert.Equal(t, "TREND(C1:C3,B1:B3)", first.Formula)
	assert.Equal(t, 9.0, first.V)
	for r := 1; r <= 2; r++ {
		c := cellAt(t, ws, r, 0)
		assert.Equal(t, KindNumber, c.Kind)
		assert.Equal(t, 0.0, c.V)
	}
	assert.ErrorIs(t, ws.WriteArrayFormula(0, 0, 0, 16384, "=A1", nil, 0), ErrIndexOutOfRange)
}

func TestFutureFunctions(t *testing.T) {
	plain := newSheet(t, Options{})
	require.NoError(t, plain.WriteFormula(0, 0, `=CONCAT(A2,"x")`, nil))
	assert.Equal(t, `CONCAT(A2,"x")`, cellAt(t, plain, 0, 0).Formula)

	future := newSheet(t, Options{FutureFunctions: true})
	require.NoError(t, future.WriteFormula(0, 0, `=CONCAT(A2,"x")`, nil))
	require.NoError(t, future.WriteArrayFormula(1, 0, 1, 0, "{=SORT(B1:B9)}", nil, 0))
	assert.Equal(t, `_xlfn.CONCAT(A2,"x")`, cellAt(t, future, 0, 0).Formula)
	assert.Equal(t, `_xlfn._xlws.SORT(B1:B9)`, cellAt(t, future, 1, 0).Formula)
}

func TestWriteDatetime(t *testing.T) {
	day := time.Date(2008, 1, 1, 12, 0, 0, 0, time.UTC)

	ws := newSheet(t, Options{})
	require.NoError(t, ws.WriteDatetime(0, 0, day, nil))
	assert.InDelta(t, 39448.5, cellAt(t, ws, 0, 0).V, 1e-9)

	ws1904 := newSheet(t, Options{Date1904: true})
	require.NoError(t, ws1904.WriteDatetime(0, 0, day, nil))
	assert.InDelta(t, 37986.5, cellAt(t, ws1904, 0, 0).V, 1e-9)
}

func TestDefaultRow(t *testing.T) {
	ws := newSheet(t, Options{})
	assert.Equal(t, `<sheetFormatPr defaultRowHeight="15"/>`, render(t, ws.writeSheetFormatPr))

	require.NoError(t, ws.SetDefaultRow(24, true))
	assert.Equal(t,
		`<sheetFormatPr defaultRowHeight="24" customHeight="1" zeroHeight="1"/>`,
		render(t, ws.writeSheetFormatPr))
	assert.ErrorIs(t, ws.SetDefaultRow(-1, false), ErrInvalidArgument)
}

func TestDefaultRowHeightOnRows(t *testing.T) {
	ws := newSheet(t, Options{})
	require.NoError(t, ws.SetDefaultRow(20, false))
	require.NoError(t, ws.WriteNumber(0, 0, 1, nil))
	require.NoError(t, ws.SetRow(1, 15, nil, nil))
	require.NoError(t, ws.SetRow(2, 20, nil, nil))

	got := assemble(t, ws)
	assert.Contains(t, got, `<row r="1" spans="1:16"><c r="A1"><v>1</v></c></row>`)
	assert.Contains(t, got, `<row r="2" ht="15" customHeight="1"/>`)
	assert.Contains(t, got, `<row r="3"/>`)
}

func TestOutlineLevels(t *testing.T) {
	ws := newSheet(t, Options{})
	require.NoError(t, ws.SetRow(1, 0, nil, &RowColOptions{Level: 2}))
	require.NoError(t, ws.SetColumn(0, 0, 10, nil, &RowColOptions{Level: 1, Hidden: true}))
	assert.Equal(t,
		`<sheetFormatPr defaultRowHeight="15" outlineLevelRow="2" outlineLevelCol="1"/>`,
		render(t, ws.writeSheetFormatPr))
}
