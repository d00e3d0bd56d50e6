package startups

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/mnaScraper/internal/model"
	"github.com/0x0BSoD/mnaScraper/internal/pipeline"
)

type stubFetcher map[string]string

func (f stubFetcher) Get(_ context.Context, url string) (string, error) {
	body, ok := f[url]
	if !ok {
		return "", errors.New("not found")
	}
	return body, nil
}

func newSite(f Fetcher) *Site {
	return New(Config{
		BaseURL:   "https://startups.com.br/ultimas-noticias/page/",
		Terms:     []string{"Aporte", "Fusão", "Aquisição", "M&A", "Série A", "Série B", "Série C"},
		MaxPages:  2,
		PageDelay: 2 * time.Second,
	}, f)
}

func TestPages(t *testing.T) {
	pages := newSite(nil).Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, "https://startups.com.br/ultimas-noticias/page/1/", pages[0].URL)
	assert.Equal(t, "https://startups.com.br/ultimas-noticias/page/2/", pages[1].URL)
}

func TestOptions(t *testing.T) {
	opts := newSite(nil).Options()
	assert.True(t, opts.StopOnFetchError)
	assert.Equal(t, 2*time.Second, opts.PageDelay)
}

func TestExtract(t *testing.T) {
	data, err := os.ReadFile("testdata/listing.html")
	require.NoError(t, err)

	page := model.Page{URL: "https://startups.com.br/ultimas-noticias/page/1/", Number: 1}
	items, err := newSite(nil).Extract(page, string(data))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, model.Item{
		Title:   "Healthtech recebe Aporte de R$ 20 milhões",
		Summary: "Rodada liderada por fundo paulista.",
		Link:    "https://startups.com.br/negocios/healthtech-recebe-aporte/",
	}, items[0])

	// the next summary in document order belongs to the following card
	assert.Equal(t, "Conteúdo patrocinado.", items[1].Summary)
	assert.Equal(t, "https://startups.com.br/negocios/fusao-de-fintechs/", items[1].Link)
	assert.Equal(t, "Dez dicas para sua carreira", items[2].Title)
}

func TestExtractSummaryPlaceholder(t *testing.T) {
	body := `<div class="grid gap-row-6"><a class="feed-link" href="/a" title="Aquisição anunciada">x</a></div>`

	items, err := newSite(nil).Extract(model.Page{URL: "https://startups.com.br/p/1/"}, body)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, summaryMissing, items[0].Summary)
}

func TestExtractWithoutGridSkipsPage(t *testing.T) {
	items, err := newSite(nil).Extract(model.Page{Number: 1}, "<html><body><p>manutenção</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExtractGridWithoutLinksEndsListing(t *testing.T) {
	_, err := newSite(nil).Extract(model.Page{Number: 3}, `<div class="grid gap-row-6"><p>Fim</p></div>`)
	require.ErrorIs(t, err, pipeline.ErrEndOfListing)
}

func TestMatchTitleOnly(t *testing.T) {
	s := newSite(nil)

	item, ok := s.Match(model.Item{Title: "Fintechs anunciam fusão"})
	require.True(t, ok)
	assert.Equal(t, "Fusão", item.Term)

	_, ok = s.Match(model.Item{Title: "Dez dicas", Summary: "um aporte no resumo não conta"})
	assert.False(t, ok)
}

func TestResolveReadsDatetime(t *testing.T) {
	link := "https://startups.com.br/negocios/healthtech-recebe-aporte/"
	f := stubFetcher{link: `<article><time class="text-gray-500 text-sm" datetime="2024-05-10T09:15:00-03:00">10 de maio</time></article>`}

	item, err := newSite(f).Resolve(context.Background(), model.Item{Link: link})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10T09:15:00-03:00", item.DateText)

	got, err := newSite(f).ParseDate(item)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestResolveMissingDate(t *testing.T) {
	link := "https://startups.com.br/x/"
	f := stubFetcher{link: `<article><time class="text-gray-500">sem atributo</time></article>`}

	_, err := newSite(f).Resolve(context.Background(), model.Item{Link: link})
	require.ErrorIs(t, err, ErrDateNotFound)

	_, err = newSite(f).Resolve(context.Background(), model.Item{Link: "https://startups.com.br/404/"})
	require.Error(t, err)
}
