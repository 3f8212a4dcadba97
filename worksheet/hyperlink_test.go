package worksheet

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxw/internal/rels"
	"github.com/TsubasaBE/go-xlsxw/stringtable"
)

func TestWriteURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		opts   *URLOptions
		link   string
		target string
		shown  string
	}{
		{
			name:   "http",
			url:    "http://www.perl.org/",
			link:   `<hyperlink ref="A1" r:id="rId1"/>`,
			target: "http://www.perl.org/",
			shown:  "http://www.perl.org/",
		},
		{
			name:   "https with location",
			url:    "https://example.com/docs#intro",
			link:   `<hyperlink ref="A1" r:id="rId1" location="intro"/>`,
			target: "https://example.com/docs",
			shown:  "https://example.com/docs#intro",
		},
		{
			name:   "display and tip",
			url:    "ftp://files.example.com/",
			opts:   &URLOptions{String: "Files", Tip: "Download"},
			link:   `<hyperlink ref="A1" r:id="rId1" tooltip="Download"/>`,
			target: "ftp://files.example.com/",
			shown:  "Files",
		},
		{
			name:   "mailto",
			url:    "mailto:jmcnamara@cpan.org",
			link:   `<hyperlink ref="A1" r:id="rId1"/>`,
			target: "mailto:jmcnamara@cpan.org",
			shown:  "mailto:jmcnamara@cpan.org",
		},
		{
			name:   "external relative",
			url:    "external:subdir/other.xlsx#Sheet1!A1",
			link:   `<hyperlink ref="A1" r:id="rId1" location="Sheet1!A1"/>`,
			target: "subdir/other.xlsx",
			shown:  "subdir/other.xlsx#Sheet1!A1",
		},
		{
			name:   "external windows path",
			url:    `external:c:\temp\foo.xlsx`,
			link:   `<hyperlink ref="A1" r:id="rId1"/>`,
			target: `file:///c:\temp\foo.xlsx`,
			shown:  `c:\temp\foo.xlsx`,
		},
		{
			name:   "external network share",
			url:    `external:\\NET\share\foo.xlsx`,
			link:   `<hyperlink ref="A1" r:id="rId1"/>`,
			target: `file:///\\NET\share\foo.xlsx`,
			shown:  `\\NET\share\foo.xlsx`,
		},
		{
			name:  "internal",
			url:   "internal:Sheet2!A1",
			link:  `<hyperlink ref="A1" location="Sheet2!A1" display="Sheet2!A1"/>`,
			shown: "Sheet2!A1",
		},
		{
			name:  "internal with string",
			url:   "internal:'Sales Data'!B2",
			opts:  &URLOptions{String: "Go to sales", Tip: "Jump"},
			link:  `<hyperlink ref="A1" location="'Sales Data'!B2" tooltip="Jump" display="Go to sales"/>`,
			shown: "Go to sales",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sst := stringtable.New()
			ws := newSheet(t, Options{Strings: sst})
			require.NoError(t, ws.WriteURL(0, 0, tt.url, nil, tt.opts))
			assert.Equal(t, `<hyperlinks>`+tt.link+`</hyperlinks>`, render(t, ws.writeHyperlinks))

			c, ok := ws.store.findCell(0, 0)
			require.True(t, ok)
			assert.Equal(t, KindString, c.kind)
			assert.Equal(t, tt.shown, sst.Get(c.sst))

			rs := ws.Relationships()
			if tt.target == "" {
				assert.Empty(t, rs)
				return
			}
			require.Len(t, rs, 1)
			assert.Equal(t, rels.Relationship{
				ID: "rId1", Type: rels.TypeHyperlink, Target: tt.target, TargetMode: "External",
			}, rs[0])
		})
	}
}

func TestWriteURLErrors(t *testing.T) {
	ws := newSheet(t, Options{})
	assert.ErrorIs(t, ws.WriteURL(0, 0, "gopher://old.example.com/", nil, nil), ErrInvalidArgument)
	assert.ErrorIs(t, ws.WriteURL(0, 0, "www.example.com", nil, nil), ErrInvalidArgument)
	assert.ErrorIs(t, ws.WriteURL(0, 0, "http://x/"+strings.Repeat("a", MaxURLLength), nil, nil), ErrSheetLimit)
	assert.ErrorIs(t, ws.WriteURL(0, 0, "http://x/", nil, &URLOptions{Tip: strings.Repeat("t", 256)}), ErrSheetLimit)
	assert.ErrorIs(t, ws.WriteURL(-1, 0, "http://x/", nil, nil), ErrIndexOutOfRange)
	assert.Empty(t, ws.links)
	assert.Empty(t, render(t, ws.writeHyperlinks))
}

func TestWriteRelsTo(t *testing.T) {
	ws := newSheet(t, Options{})
	var buf bytes.Buffer
	ok, err := ws.WriteRelsTo(&buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, buf.Len())

	require.NoError(t, ws.WriteURL(0, 0, "http://a.example.com/", nil, nil))
	require.NoError(t, ws.WriteURL(1, 0, "internal:Sheet2!A1", nil, nil))
	require.NoError(t, ws.WriteURL(2, 0, "external:c:\\b.xlsx", nil, nil))

	ok, err = ws.WriteRelsTo(&buf)
	require.NoError(t, err)
	assert.True(t, ok)

	targets, err := rels.Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"rId1": "http://a.example.com/",
		"rId2": "file:///c:\\b.xlsx",
	}, targets)
	assert.Contains(t, render(t, ws.writeHyperlinks), `<hyperlink ref="A3" r:id="rId2"/>`)
}

func TestWriteRelsToSinkError(t *testing.T) {
	ws := newSheet(t, Options{})
	require.NoError(t, ws.WriteURL(0, 0, "http://a.example.com/", nil, nil))
	_, err := ws.WriteRelsTo(failWriter{})
	assert.ErrorIs(t, err, ErrSinkWrite)
}

func TestWriteURLOverwrite(t *testing.T) {
	ws := newSheet(t, Options{})
	for range 3 {
		require.NoError(t, ws.WriteURL(0, 0, "https://example.com", nil, nil))
	}
	require.NoError(t, ws.WriteURL(1, 0, "internal:Sheet2!A1", nil, nil))
	require.NoError(t, ws.WriteURL(2, 0, "https://example.org/b", nil, nil))
	require.NoError(t, ws.WriteURL(1, 0, "https://example.org/a", nil, nil))

	assert.Equal(t, `<hyperlinks>`+
		`<hyperlink ref="A1" r:id="rId1"/>`+
		`<hyperlink ref="A2" r:id="rId2"/>`+
		`<hyperlink ref="A3" r:id="rId3"/>`+
		`</hyperlinks>`, render(t, ws.writeHyperlinks))

	var buf bytes.Buffer
	_, err := ws.WriteRelsTo(&buf)
	require.NoError(t, err)
	targets, err := rels.Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"rId1": "https://example.com",
		"rId2": "https://example.org/a",
		"rId3": "https://example.org/b",
	}, targets)
}

func TestWriteURLDistinctLimit(t *testing.T) {
	ws := newSheet(t, Options{})
	for i := range MaxURLs {
		require.NoError(t, ws.WriteURL(i, 0, "https://example.com/"+strconv.Itoa(i), nil, nil))
	}
	assert.ErrorIs(t, ws.WriteURL(0, 1, "https://example.com/new", nil, nil), ErrSheetLimit)
	assert.NoError(t, ws.WriteURL(0, 1, "https://example.com/0", nil, nil), "url already held")
	assert.NoError(t, ws.WriteURL(1, 0, "https://example.com/new", nil, nil), "replaces the only use of /1")
	assert.ErrorIs(t, ws.WriteURL(1, 1, "https://example.com/1", nil, nil), ErrSheetLimit)
	assert.Len(t, ws.links, MaxURLs+1)
}
