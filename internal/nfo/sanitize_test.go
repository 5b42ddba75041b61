package nfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeAmpersands(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Tom & Jerry", "Tom &amp; Jerry"},
		{"Tom &amp; Jerry", "Tom &amp; Jerry"},
		{"&#233;t&#xE9;", "&#233;t&#xE9;"},
		{"&nbsp;&frac12;", "&nbsp;&frac12;"},
		{"a&&b", "a&amp;&amp;b"},
		{"&#xZZ;", "&amp;#xZZ;"},
		{"end&", "end&amp;"},
		{"no amp", "no amp"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, EscapeAmpersands(c.in), c.in)
	}
}

func TestStripSelfClosingLines(t *testing.T) {
	in := "<movie>\n  <thumb/>\n<title>Foo</title>\n\t<fanart aspect=\"x\" />\r\n</movie>"
	want := "<movie>\n<title>Foo</title>\n</movie>"
	assert.Equal(t, want, StripSelfClosingLines(in))
}

func TestTruncateAfterMovie(t *testing.T) {
	got, err := TruncateAfterMovie("<movie><title>Foo</title></movie>\nhttp://example.invalid/x")
	require.NoError(t, err)
	assert.Equal(t, "<movie><title>Foo</title></movie>", got)

	// 截断到最后一个 </movie>。
	got, err = TruncateAfterMovie("<movie><a>x</a></movie><movie></movie>junk")
	require.NoError(t, err)
	assert.Equal(t, "<movie><a>x</a></movie><movie></movie>", got)

	// 边界检查不区分大小写。
	_, err = TruncateAfterMovie("<MOVIE><title>Foo</title></MOVIE>")
	require.NoError(t, err)

	_, err = TruncateAfterMovie("<tvshow><title>Foo</title></tvshow>")
	assert.ErrorIs(t, err, ErrNotMovie)
	_, err = TruncateAfterMovie("<movie><title>Foo</title>")
	assert.ErrorIs(t, err, ErrNotMovie)
}

func TestSanitize_WellFormedUnchanged(t *testing.T) {
	in := "<movie>\n  <title>Fast &amp; Furious</title>\n  <plot>x</plot>\n</movie>"
	got, err := Sanitize(in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSanitize_TrailingJunkAndTitle(t *testing.T) {
	got, err := Sanitize("<movie><title>Foo</title></movie>Some trailing junk")
	require.NoError(t, err)

	doc, err := Parse(got)
	require.NoError(t, err)
	title, err := doc.Title()
	require.NoError(t, err)
	assert.Equal(t, "Foo", title)
}
