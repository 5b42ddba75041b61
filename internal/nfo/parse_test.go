package nfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *Document {
	t.Helper()
	text, err := Sanitize(raw)
	require.NoError(t, err)
	doc, err := Parse(text)
	require.NoError(t, err)
	return doc
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{
		"<movie><title>Foo</movie>",
		"<movie><title>Foo</title>",
		"<movie><title>&bogus;</title></movie>",
		"<tvshow><title>Foo</title></tvshow>",
		"",
	} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, ErrParse, in)
		var pe *ParseError
		assert.ErrorAs(t, err, &pe, in)
	}
}

func TestParse_MovieNotAtTop(t *testing.T) {
	doc, err := Parse("<root><movie><title>Inner</title></movie></root>")
	require.NoError(t, err)
	title, err := doc.Title()
	require.NoError(t, err)
	assert.Equal(t, "Inner", title)
}

func TestParse_DeclarationCommentsEntities(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<!-- generated -->
<movie>
  <title>Am&eacute;lie <!-- x -->(2001)</title>
  <plot><![CDATA[A <b>shy</b> waitress.]]></plot>
</movie>`
	doc := mustParse(t, raw)
	title, err := doc.Title()
	require.NoError(t, err)
	assert.Equal(t, "Amélie (2001)", title)

	plot, err := doc.Plot()
	require.NoError(t, err)
	assert.Equal(t, "A <b>shy</b> waitress.", plot)
}

func TestParse_LatinCharset(t *testing.T) {
	raw := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><movie><title>Caf\xe9</title></movie>"
	doc, err := Parse(raw)
	require.NoError(t, err)
	title, err := doc.Title()
	require.NoError(t, err)
	assert.Equal(t, "Café", title)
}

func TestParse_ElementNamesCaseSensitive(t *testing.T) {
	doc := mustParse(t, "<movie><Title>Upper</Title><title>lower</title></movie>")
	title, err := doc.Title()
	require.NoError(t, err)
	assert.Equal(t, "lower", title)
}

func TestPrune(t *testing.T) {
	doc := mustParse(t, `<movie>
  <title>Foo</title>
  <mpaa></mpaa>
  <studio>   </studio>
  <ratings><rating><value></value></rating></ratings>
  <actor><name>A</name><role></role></actor>
</movie>`)

	removed := doc.Prune()
	assert.Equal(t, []string{"mpaa", "rating", "ratings", "role", "studio", "value"}, removed)

	assert.True(t, doc.Has("title"))
	assert.True(t, doc.Has("actor"))
	assert.False(t, doc.Has("mpaa"))
	assert.False(t, doc.Has("ratings"))

	// 再次执行无变化。
	assert.Empty(t, doc.Prune())
}

func TestPrune_KeepsRoot(t *testing.T) {
	doc, err := Parse("<movie>\n  <a> </a>\n</movie>")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, doc.Prune())
	assert.Equal(t, 1, doc.root.Length())

	_, err = doc.Title()
	assert.ErrorIs(t, err, ErrNoTag)
}
