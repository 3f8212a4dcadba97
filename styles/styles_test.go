package styles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxw/styles"
)

func TestTableAssignsSequentialIndices(t *testing.T) {
	tbl := styles.NewTable()

	bold := styles.New()
	bold.Bold = true
	_, err := tbl.Add(bold)
	require.NoError(t, err)

	date := styles.New()
	date.NumFormat = "yyyy-mm-dd"
	_, err = tbl.Add(date)
	require.NoError(t, err)

	pct := styles.New()
	pct.NumFormat = "0.00%"
	_, err = tbl.Add(pct)
	require.NoError(t, err)

	assert.Equal(t, 1, bold.XFIndex())
	assert.Equal(t, 2, date.XFIndex())
	assert.Equal(t, 3, pct.XFIndex())

	assert.Equal(t, 0, bold.NumFmtID())
	assert.Equal(t, 164, date.NumFmtID())
	assert.Equal(t, 10, pct.NumFmtID())
	assert.True(t, date.IsDate())
	assert.False(t, pct.IsDate())

	assert.Equal(t, map[int]string{164: "yyyy-mm-dd"}, tbl.CustomNumFmts())
	assert.Len(t, tbl.Formats(), 4)
}

func TestTableAddTwiceIsNoop(t *testing.T) {
	tbl := styles.NewTable()
	f := styles.New()
	_, err := tbl.Add(f)
	require.NoError(t, err)
	_, err = tbl.Add(f)
	require.NoError(t, err)
	assert.Equal(t, 1, f.XFIndex())
	assert.Len(t, tbl.Formats(), 2)
}

func TestDXF(t *testing.T) {
	tbl := styles.NewTable()
	red := styles.New()
	red.FontColor = "FF9C0006"
	_, err := tbl.AddDXF(red)
	require.NoError(t, err)
	assert.Equal(t, 0, red.DXFIndex())
	assert.Equal(t, 0, red.XFIndex())
	assert.Equal(t, -1, styles.New().DXFIndex())
}

func TestNilFormat(t *testing.T) {
	var f *styles.Format
	assert.Equal(t, 0, f.XFIndex())
	assert.Equal(t, -1, f.DXFIndex())
	assert.False(t, f.IsDate())
	assert.False(t, f.HasFont())
}
