package xmlwriter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	var buf bytes.Buffer
	xw := New(&buf)
	xw.StartTag("row", IntAttr("r", 1), Attr{Key: "spans", Value: "1:16"})
	xw.EmptyTag("c", Attr{Key: "r", Value: "A1"}, IntAttr("s", 2))
	xw.DataElement("f", "A1<B1&C1>0")
	xw.DataElement("t", "x", Attr{Key: "xml:space", Value: "preserve"})
	xw.EndTag("row")
	require.NoError(t, xw.Flush())
	assert.Equal(t,
		`<row r="1" spans="1:16"><c r="A1" s="2"/><f>A1&lt;B1&amp;C1&gt;0</f><t xml:space="preserve">x</t></row>`,
		buf.String())
	assert.Equal(t, int64(buf.Len()), xw.Written())
}

func TestEscapeAttr(t *testing.T) {
	assert.Equal(t, `a &quot;b&quot; &amp; &lt;c&gt;&#xA;`, EscapeAttr("a \"b\" & <c>\n"))
	assert.Equal(t, `"quoted"`, EscapeData(`"quoted"`))
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		0:           "0",
		123:         "123",
		0.7:         "0.7",
		5.7109375:   "5.7109375",
		1e20:        "1e+20",
		-2.5:        "-2.5",
		0.000012345: "1.2345e-05",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatFloat(in), "%v", in)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestErrorLatched(t *testing.T) {
	xw := New(failWriter{})
	xw.StartTag("worksheet")
	for range 10000 {
		xw.EmptyTag("c", Attr{Key: "r", Value: "A1"})
	}
	xw.EndTag("worksheet")
	err := xw.Flush()
	require.Error(t, err)
	assert.Equal(t, "disk full", err.Error())
}
