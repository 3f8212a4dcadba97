package worksheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxw/internal/rels"
	"github.com/TsubasaBE/go-xlsxw/styles"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	wsOpen    = `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`
	selected  = `<sheetViews><sheetView tabSelected="1" workbookViewId="0"/></sheetViews>`
	formatPr  = `<sheetFormatPr defaultRowHeight="15"/>`
	margins   = `<pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/>`
)

func assemble(t *testing.T, ws *Worksheet) string {
	t.Helper()
	var buf bytes.Buffer
	n, err := ws.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	return buf.String()
}

func TestAssembleEmpty(t *testing.T) {
	ws := newSheet(t, Options{})
	want := xmlHeader + wsOpen +
		`<dimension ref="A1"/>` +
		`<sheetViews><sheetView workbookViewId="0"/></sheetViews>` +
		formatPr + `<sheetData/>` + margins + `</worksheet>`
	assert.Equal(t, want, assemble(t, ws))
}

func TestAssembleArrayFormula(t *testing.T) {
	ws := newSheet(t, Options{})
	ws.Select()

	require.NoError(t, ws.WriteArrayFormula(0, 0, 0, 0, "{=SUM(B1:C1*B2:C2)}", nil, 9500))
	require.NoError(t, ws.WriteArrayFormula(1, 0, 1, 0, "{=SUM(B1:C1*B2:C2)}", nil, 9500))
	require.NoError(t, ws.WriteArrayFormula(4, 0, 6, 0, "{=TREND(C5:C7,B5:B7)}", nil, 22196))
	for _, v := range []struct {
		r, c int
		n    float64
	}{
		{0, 1, 500}, {1, 1, 10}, {4, 1, 1}, {5, 1, 2}, {6, 1, 3},
		{0, 2, 300}, {1, 2, 15}, {4, 2, 20234}, {5, 2, 21003}, {6, 2, 10000},
	} {
		require.NoError(t, ws.WriteNumber(v.r, v.c, v.n, nil))
	}

	want := xmlHeader + wsOpen +
		`<dimension ref="A1:C7"/>` + selected + formatPr +
		`<sheetData>` +
		`<row r="1" spans="1:16"><c r="A1"><f t="array" ref="A1">SUM(B1:C1*B2:C2)</f><v>9500</v></c><c r="B1"><v>500</v></c><c r="C1"><v>300</v></c></row>` +
		`<row r="2" spans="1:16"><c r="A2"><f t="array" ref="A2">SUM(B1:C1*B2:C2)</f><v>9500</v></c><c r="B2"><v>10</v></c><c r="C2"><v>15</v></c></row>` +
		`<row r="5" spans="1:16"><c r="A5"><f t="array" ref="A5:A7">TREND(C5:C7,B5:B7)</f><v>22196</v></c><c r="B5"><v>1</v></c><c r="C5"><v>20234</v></c></row>` +
		`<row r="6" spans="1:16"><c r="A6"><v>0</v></c><c r="B6"><v>2</v></c><c r="C6"><v>21003</v></c></row>` +
		`<row r="7" spans="1:16"><c r="A7"><v>0</v></c><c r="B7"><v>3</v></c><c r="C7"><v>10000</v></c></row>` +
		`</sheetData>` + margins + `</worksheet>`
	assert.Equal(t, want, assemble(t, ws))
}

func TestAssembleSheet(t *testing.T) {
	ws := newSheet(t, Options{})
	ws.Select()

	require.NoError(t, ws.SetColumn(1, 1, 5, nil, nil))
	require.NoError(t, ws.SetRow(0, 30, nil, nil))
	require.NoError(t, ws.WriteString(0, 0, "Hello", nil))
	require.NoError(t, ws.WriteNumber(0, 1, 1.5, styles.WithXFIndex(2)))
	require.NoError(t, ws.WriteBoolean(1, 0, true, nil))
	require.NoError(t, ws.WriteFormulaStr(1, 1, `=A1&"!"`, nil, "Hello!"))
	require.NoError(t, ws.WriteInlineString(2, 0, " pad ", nil))
	require.NoError(t, ws.SetRow(4, 15, nil, &RowColOptions{Hidden: true}))
	require.NoError(t, ws.MergeRange(5, 0, 5, 1, "M", nil))
	require.NoError(t, ws.Autofilter(0, 0, 5, 1))
	require.NoError(t, ws.DataValidationCell(0, 0, &DataValidation{Type: ValidateList, ValueList: []string{"a", "b"}}))
	require.NoError(t, ws.WriteURL(7, 0, "https://example.com/#x", nil, nil))
	require.NoError(t, ws.WriteURL(8, 0, "internal:Sheet2!A1", nil, &URLOptions{Tip: "go"}))
	require.NoError(t, ws.FreezePanes(1, 0))
	require.NoError(t, ws.SetHeader("&CPage &P"))

	want := xmlHeader + wsOpen +
		`<dimension ref="A1:B9"/>` +
		`<sheetViews><sheetView tabSelected="1" workbookViewId="0">` +
		`<pane ySplit="1" topLeftCell="A2" activePane="bottomLeft" state="frozen"/>` +
		`<selection pane="bottomLeft"/>` +
		`</sheetView></sheetViews>` +
		formatPr +
		`<cols><col min="2" max="2" width="5.7109375" customWidth="1"/></cols>` +
		`<sheetData>` +
		`<row r="1" spans="1:16" ht="30" customHeight="1"><c r="A1" t="s"><v>0</v></c><c r="B1" s="2"><v>1.5</v></c></row>` +
		`<row r="2" spans="1:16"><c r="A2" t="b"><v>1</v></c><c r="B2" t="str"><f>A1&amp;"!"</f><v>Hello!</v></c></row>` +
		`<row r="3" spans="1:16"><c r="A3" t="inlineStr"><is><t xml:space="preserve"> pad </t></is></c></row>` +
		`<row r="5" hidden="1"/>` +
		`<row r="6" spans="1:16"><c r="A6" t="s"><v>1</v></c></row>` +
		`<row r="8" spans="1:16"><c r="A8" t="s"><v>2</v></c></row>` +
		`<row r="9" spans="1:16"><c r="A9" t="s"><v>3</v></c></row>` +
		`</sheetData>` +
		`<autoFilter ref="A1:B6"/>` +
		`<mergeCells count="1"><mergeCell ref="A6:B6"/></mergeCells>` +
		`<dataValidations count="1"><dataValidation type="list" allowBlank="1" showInputMessage="1" showErrorMessage="1" sqref="A1"><formula1>"a,b"</formula1></dataValidation></dataValidations>` +
		`<hyperlinks><hyperlink ref="A8" r:id="rId1" location="x"/><hyperlink ref="A9" location="Sheet2!A1" tooltip="go" display="Sheet2!A1"/></hyperlinks>` +
		margins +
		`<headerFooter><oddHeader>&amp;CPage &amp;P</oddHeader></headerFooter>` +
		`</worksheet>`
	assert.Equal(t, want, assemble(t, ws))

	assert.Equal(t, []rels.Relationship{{
		ID: "rId1", Type: rels.TypeHyperlink, Target: "https://example.com/", TargetMode: "External",
	}}, ws.Relationships())
}

func TestAssembleColumns(t *testing.T) {
	ws := newSheet(t, Options{})
	f := styles.WithXFIndex(1)
	require.NoError(t, ws.SetColumn(1, 3, 5, nil, nil))
	require.NoError(t, ws.SetColumn(5, 5, 8, nil, &RowColOptions{Hidden: true}))
	require.NoError(t, ws.SetColumn(7, 7, defaultColWidth, f, nil))
	require.NoError(t, ws.SetColumn(11, 11, defaultColWidth, nil, &RowColOptions{Hidden: true}))

	out := assemble(t, ws)
	assert.Contains(t, out, `<cols>`+
		`<col min="2" max="4" width="5.7109375" customWidth="1"/>`+
		`<col min="6" max="6" width="8.7109375" hidden="1" customWidth="1"/>`+
		`<col min="8" max="8" width="9.140625" style="1"/>`+
		`<col min="12" max="12" width="0" hidden="1" customWidth="1"/>`+
		`</cols>`)
}

func TestColumnFormatAppliesToCells(t *testing.T) {
	ws := newSheet(t, Options{})
	require.NoError(t, ws.SetColumn(0, 0, defaultColWidth, styles.WithXFIndex(4), nil))
	require.NoError(t, ws.SetRow(1, 15, styles.WithXFIndex(5), nil))
	require.NoError(t, ws.WriteNumber(0, 0, 1, nil))
	require.NoError(t, ws.WriteNumber(1, 0, 2, nil))
	require.NoError(t, ws.WriteNumber(2, 0, 3, styles.WithXFIndex(6)))

	out := assemble(t, ws)
	assert.Contains(t, out, `<row r="1" spans="1:16"><c r="A1" s="4"><v>1</v></c></row>`)
	assert.Contains(t, out, `<row r="2" spans="1:16" s="5" customFormat="1"><c r="A2" s="5"><v>2</v></c></row>`)
	assert.Contains(t, out, `<row r="3" spans="1:16"><c r="A3" s="6"><v>3</v></c></row>`)
}

func TestAssembleConditionalExpressions(t *testing.T) {
	ws := newSheet(t, Options{})
	ws.Select()
	for i, v := range []float64{10, 20, 30, 40} {
		require.NoError(t, ws.WriteNumber(i, 0, v, nil))
	}
	cf := &ConditionalFormat{Type: CFFormula}
	for _, expr := range []string{"=$A$1>5", "=$A$2<80", `"1+2"`, "=$A$3>$A$4"} {
		cf.ValueString = expr
		require.NoError(t, ws.ConditionalFormatRange(0, 0, 3, 0, cf))
	}

	want := xmlHeader + wsOpen +
		`<dimension ref="A1:A4"/>` + selected + formatPr +
		`<sheetData>` +
		`<row r="1" spans="1:16"><c r="A1"><v>10</v></c></row>` +
		`<row r="2" spans="1:16"><c r="A2"><v>20</v></c></row>` +
		`<row r="3" spans="1:16"><c r="A3"><v>30</v></c></row>` +
		`<row r="4" spans="1:16"><c r="A4"><v>40</v></c></row>` +
		`</sheetData>` +
		`<conditionalFormatting sqref="A1:A4">` +
		`<cfRule type="expression" priority="1"><formula>$A$1&gt;5</formula></cfRule>` +
		`<cfRule type="expression" priority="2"><formula>$A$2&lt;80</formula></cfRule>` +
		`<cfRule type="expression" priority="3"><formula>"1+2"</formula></cfRule>` +
		`<cfRule type="expression" priority="4"><formula>$A$3&gt;$A$4</formula></cfRule>` +
		`</conditionalFormatting>` +
		margins + `</worksheet>`
	assert.Equal(t, want, assemble(t, ws))
}

func TestAssembleDataBar2010(t *testing.T) {
	ws := newSheet(t, Options{})
	ws.Select()
	require.NoError(t, ws.ConditionalFormatCell(0, 0, &ConditionalFormat{Type: CFDataBar, DataBar2010: true}))

	want := xmlHeader +
		`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006" xmlns:x14ac="http://schemas.microsoft.com/office/spreadsheetml/2009/9/ac" mc:Ignorable="x14ac">` +
		`<dimension ref="A1"/>` + selected +
		`<sheetFormatPr defaultRowHeight="15" x14ac:dyDescent="0.25"/>` +
		`<sheetData/>` +
		`<conditionalFormatting sqref="A1">` +
		`<cfRule type="dataBar" priority="1">` +
		`<dataBar><cfvo type="min"/><cfvo type="max"/><color rgb="FF638EC6"/></dataBar>` +
		`<extLst><ext xmlns:x14="http://schemas.microsoft.com/office/spreadsheetml/2009/9/main" uri="{B025F937-C7B1-47D3-B67F-A62EFF666E3E}">` +
		`<x14:id>{DA7ABA51-AAAA-BBBB-0001-000000000001}</x14:id>` +
		`</ext></extLst>` +
		`</cfRule>` +
		`</conditionalFormatting>` +
		margins +
		`<extLst><ext xmlns:x14="http://schemas.microsoft.com/office/spreadsheetml/2009/9/main" uri="{78C0D931-6437-407d-A8EE-F0AAD7539E65}">` +
		`<x14:conditionalFormattings>` +
		`<x14:conditionalFormatting xmlns:xm="http://schemas.microsoft.com/office/excel/2006/main">` +
		`<x14:cfRule type="dataBar" id="{DA7ABA51-AAAA-BBBB-0001-000000000001}">` +
		`<x14:dataBar minLength="0" maxLength="100" border="1" negativeBarBorderColorSameAsPositive="0">` +
		`<x14:cfvo type="autoMin"/><x14:cfvo type="autoMax"/>` +
		`<x14:borderColor rgb="FF638EC6"/>` +
		`<x14:negativeFillColor rgb="FFFF0000"/>` +
		`<x14:negativeBorderColor rgb="FFFF0000"/>` +
		`<x14:axisColor rgb="FF000000"/>` +
		`</x14:dataBar>` +
		`</x14:cfRule>` +
		`<xm:sqref>A1</xm:sqref>` +
		`</x14:conditionalFormatting>` +
		`</x14:conditionalFormattings>` +
		`</ext></extLst>` +
		`</worksheet>`
	assert.Equal(t, want, assemble(t, ws))
}

func TestAssembleRichString(t *testing.T) {
	ws := newSheet(t, Options{})
	bold := styles.New()
	bold.Bold = true
	runs := []RichRun{{Text: "This is "}, {Format: bold, Text: "bold"}}
	require.NoError(t, ws.WriteRichString(0, 0, runs, nil))
	assert.Contains(t, assemble(t, ws), `<c r="A1" t="s"><v>0</v></c>`)

	st := newSheet(t, Options{ConstantMemory: true, TmpDir: t.TempDir()})
	require.NoError(t, st.WriteRichString(0, 0, runs, nil))
	assert.Contains(t, assemble(t, st), `<c r="A1" t="inlineStr"><is>`+
		`<r><t xml:space="preserve">This is </t></r>`+
		`<r><rPr><b/><sz val="11"/><color theme="1"/><rFont val="Calibri"/><family val="2"/><scheme val="minor"/></rPr><t>bold</t></r>`+
		`</is></c>`)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAssembleSinkError(t *testing.T) {
	ws := newSheet(t, Options{})
	require.NoError(t, ws.WriteString(0, 0, strings.Repeat("x", 100), nil))
	_, err := ws.WriteTo(failWriter{})
	assert.ErrorIs(t, err, ErrSinkWrite)
}
