package markup

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, s string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return d
}

func TestStrippedText(t *testing.T) {
	d := doc(t, `<div class="x">
		<p>  Primeira </p>
		<p>Segunda <b> parte </b></p>
	</div>`)

	assert.Equal(t, "PrimeiraSegundaparte", StrippedText(d.Find("div.x")))
}

func TestJoinedText(t *testing.T) {
	d := doc(t, `<div id="c"><p>Empresa X</p><p>R$ 10 milhões</p></div>`)

	assert.Equal(t, "Empresa X R$ 10 milhões", JoinedText(d.Find("#c"), " "))
}

func TestJoinedTextKeepsWhitespaceNodes(t *testing.T) {
	d := doc(t, `<div id="c"> <p> Empresa X</p>  <p>R$ 10 milhões </p>
</div>`)

	assert.Equal(t, "Empresa X    R$ 10 milhões", JoinedText(d.Find("#c"), " "))
}

func TestTextOfEmptySelection(t *testing.T) {
	d := doc(t, `<div></div>`)

	assert.Equal(t, "", StrippedText(d.Find("span.none")))
}

func TestAttr(t *testing.T) {
	d := doc(t, `<a href=" /noticia/1 " title="">x</a>`)

	href, ok := Attr(d.Find("a"), "href")
	require.True(t, ok)
	assert.Equal(t, "/noticia/1", href)

	_, ok = Attr(d.Find("a"), "title")
	assert.False(t, ok)

	_, ok = Attr(d.Find("a"), "data-id")
	assert.False(t, ok)
}
