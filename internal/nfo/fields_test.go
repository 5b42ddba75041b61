package nfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

func movieDoc(t *testing.T, body string) *Document {
	t.Helper()
	return mustParse(t, "<movie>"+body+"</movie>")
}

func TestTitleAndSimpleText(t *testing.T) {
	doc := movieDoc(t, `<title>  Heat </title><sorttitle>Heat 1995</sorttitle><studio> Warner </studio><plot>Line one.
Line two.</plot>`)

	title, err := doc.Title()
	require.NoError(t, err)
	assert.Equal(t, "Heat", title)

	st, err := doc.SortTitle()
	require.NoError(t, err)
	assert.Equal(t, "Heat 1995", st)

	studio, err := doc.Studio()
	require.NoError(t, err)
	assert.Equal(t, "Warner", studio)

	plot, err := doc.Plot()
	require.NoError(t, err)
	assert.Equal(t, "Line one.\nLine two.", plot)

	_, err = doc.Tagline()
	assert.ErrorIs(t, err, ErrNoTag)
	_, err = doc.OriginalTitle()
	assert.ErrorIs(t, err, ErrNoTag)
}

func TestTitle_BlankIsMissing(t *testing.T) {
	doc := movieDoc(t, "<title>   </title>")
	_, err := doc.Title()
	assert.ErrorIs(t, err, ErrNoText)
}

func TestYearAndExternalID(t *testing.T) {
	doc := movieDoc(t, "<year> 1999 </year><tmdbid> 603 </tmdbid>")
	y, err := doc.Year()
	require.NoError(t, err)
	assert.Equal(t, 1999, y)
	id, err := doc.ExternalID()
	require.NoError(t, err)
	assert.Equal(t, "603", id)

	doc = movieDoc(t, "<year>MCMXCIX</year><tmdbid> 12 </tmdbid>")
	_, err = doc.Year()
	assert.Error(t, err)
	_, err = doc.ExternalID()
	assert.ErrorIs(t, err, ErrShortID)
}

func TestContentRating(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"<mpaa>Rated PG-13</mpaa>", "us/PG-13"},
		{"<mpaa>ES-13</mpaa>", "es/13"},
		{"<mpaa></mpaa>", "NR"},
		{"<mpaa>PG-13 (Some violence)</mpaa>", "us/PG-13"},
		{"<mpaa>FSK 16</mpaa>", "us/FSK 16"},
		{"<mpaa>(unrated)</mpaa>", "NR"},
		{"<mpaa>Rated R for strong violence</mpaa>", "us/R"},
	}
	for _, c := range cases {
		got, err := movieDoc(t, c.body).ContentRating()
		require.NoError(t, err, c.body)
		assert.Equal(t, c.want, got, c.body)
	}

	got, err := movieDoc(t, "<title>x</title>").ContentRating()
	assert.ErrorIs(t, err, ErrNoTag)
	assert.Equal(t, "", got)

	got, err = movieDoc(t, "<mpaa>ES</mpaa>").ContentRating()
	assert.Error(t, err)
	assert.Equal(t, "", got)
}

func TestReleaseDate(t *testing.T) {
	ts, err := movieDoc(t, "<releasedate>bogus</releasedate><premiered>1995-12-15</premiered>").ReleaseDate()
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC)), ts.String())

	ts, err = movieDoc(t, "<releasedate>12/15/1995</releasedate><premiered>2001-01-01</premiered>").ReleaseDate()
	require.NoError(t, err)
	assert.Equal(t, 1995, ts.Year())

	_, err = movieDoc(t, "<title>x</title>").ReleaseDate()
	assert.ErrorIs(t, err, ErrNoTag)
}

func TestRating(t *testing.T) {
	v, err := movieDoc(t, "<rating>7,5</rating>").Rating()
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)

	v, err = movieDoc(t, "<ratings><rating><value>8,0</value></rating></ratings>").Rating()
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)

	// <ratings> 存在但无法解析：0.0，而不是未设置。
	v, err = movieDoc(t, "<ratings><rating><value>n/a</value></rating></ratings>").Rating()
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	// 直接评分为 0 时同样参考 <ratings>；四舍五入到 1 位小数。
	v, err = movieDoc(t, "<rating>0</rating><ratings><rating><value>6.66</value></rating></ratings>").Rating()
	require.NoError(t, err)
	assert.Equal(t, 6.7, v)

	// 最后一个 <ratings> 决定结果。
	v, err = movieDoc(t, "<ratings><rating><value>6</value></rating></ratings><ratings><rating><value>x</value></rating></ratings>").Rating()
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = movieDoc(t, "<title>x</title>").Rating()
	assert.ErrorIs(t, err, ErrNoTag)
}

func TestWritersDirectors(t *testing.T) {
	doc := movieDoc(t, "<credits>Michael Mann / Someone</credits><credits>Other</credits><director>A//B</director>")

	w, err := doc.Writers()
	require.NoError(t, err)
	assert.Equal(t, []string{"Michael Mann", "Someone", "Other"}, w)

	d, err := doc.Directors()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "", "B"}, d)

	// 没有文本的元素中止收集，保留已收集部分。
	doc, err = Parse("<movie><credits>X</credits><credits></credits><credits>Y</credits></movie>")
	require.NoError(t, err)
	w, err = doc.Writers()
	assert.ErrorIs(t, err, ErrNoText)
	assert.Equal(t, []string{"X"}, w)
}

func TestGenresCountries_SetSemantics(t *testing.T) {
	doc := movieDoc(t, "<genre>Drama / Crime</genre><genre>Crime</genre><genre> / Thriller</genre><country>USA</country>")

	g, err := doc.Genres()
	require.NoError(t, err)
	assert.Equal(t, []string{"Drama", "Crime", "Thriller"}, g)

	c, err := doc.Countries()
	require.NoError(t, err)
	assert.Equal(t, []string{"USA"}, c)
}

func TestCollections(t *testing.T) {
	doc := movieDoc(t, `<set><name>Bourne Collection</name></set>
<set>Alien Series</set>
<set><name>Collection</name></set>
<set><name>Bourne collection</name><overview>x</overview></set>
<set>Star Trek</set>`)

	got, err := doc.Collections()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bourne", "Alien", "Star Trek"}, got)

	_, err = movieDoc(t, "<title>x</title>").Collections()
	assert.ErrorIs(t, err, ErrNoTag)
}

func TestDuration(t *testing.T) {
	ms, err := movieDoc(t, `<runtime>99</runtime>
<fileinfo><streamdetails><video><durationinseconds>5400.5</durationinseconds></video></streamdetails></fileinfo>`).Duration()
	require.NoError(t, err)
	assert.Equal(t, int64(5400000), ms)

	ms, err = movieDoc(t, "<runtime>120 min</runtime>").Duration()
	require.NoError(t, err)
	assert.Equal(t, int64(7200000), ms)

	ms, err = movieDoc(t, "<fileinfo><streamdetails><video><codec>h264</codec></video></streamdetails></fileinfo><runtime>90</runtime>").Duration()
	require.NoError(t, err)
	assert.Equal(t, int64(5400000), ms)

	_, err = movieDoc(t, "<runtime>about two hours</runtime>").Duration()
	assert.Error(t, err)
	_, err = movieDoc(t, "<title>x</title>").Duration()
	assert.ErrorIs(t, err, ErrNoTag)
}

func TestCast(t *testing.T) {
	doc := movieDoc(t, `<actor><name>Al Pacino</name><role>Henchman</role><thumb>http://img/a.jpg</thumb></actor>
<actor><name>Robert De Niro</name><role>Henchman</role></actor>
<actor><thumb>x.jpg</thumb></actor>
<actor><name>Val Kilmer</name><role>Henchman</role></actor>`)

	got := doc.Cast()
	want := []domain.Role{
		{Name: "Al Pacino", Role: "Henchman", Photo: "http://img/a.jpg"},
		{Name: "Robert De Niro", Role: "Henchman 1"},
		{Name: "Unknown Name 2", Role: "Unknown Role 2", Photo: "x.jpg"},
		{Name: "Val Kilmer", Role: "Henchman 3"},
	}
	assert.Equal(t, want, got)

	assert.Nil(t, movieDoc(t, "<title>x</title>").Cast())
}
