package neofeed

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/mnaScraper/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newSite() *Site {
	return New(Config{
		SearchURL: "https://neofeed.com.br/",
		Terms:     []string{"Aporte", "Aportes", "M&A", "Série A"},
		Now:       fixedNow,
	})
}

func TestPages(t *testing.T) {
	pages := newSite().Pages()
	require.Len(t, pages, 4)

	assert.Equal(t, "https://neofeed.com.br/?s=Aporte", pages[0].URL)
	assert.Equal(t, "Aporte", pages[0].Term)
	assert.Equal(t, "https://neofeed.com.br/?s=M%26A", pages[2].URL)
	assert.Equal(t, "https://neofeed.com.br/?s=S%C3%A9rie+A", pages[3].URL)
	assert.Equal(t, 4, pages[3].Number)
}

func TestExtract(t *testing.T) {
	data, err := os.ReadFile("testdata/search_aporte.html")
	require.NoError(t, err)

	items, err := newSite().Extract(model.Page{Term: "Aportes"}, string(data))
	require.NoError(t, err)
	require.Len(t, items, 5)

	assert.Equal(t, model.Item{
		Title:    "Empresa recebe Aporte de R$10M",
		Summary:  "",
		DateText: "10/05/24",
		Term:     "Aportes",
	}, items[0])
	assert.Equal(t, "A rodada marca o maior aporte do ano no setor.", items[1].Summary)
	assert.Equal(t, summaryMissing, items[4].Summary)
	assert.Equal(t, "ontem", items[4].DateText)
}

func TestExtractEmptyPage(t *testing.T) {
	items, err := newSite().Extract(model.Page{Term: "Aporte"}, "<html><body><p>Nada encontrado</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMatchCanonicalizesAlias(t *testing.T) {
	s := newSite()

	item, ok := s.Match(model.Item{Title: "Empresa recebe Aporte de R$10M", Term: "Aporte"})
	require.True(t, ok)
	assert.Equal(t, "Aporte", item.Term)

	item, ok = s.Match(model.Item{Title: "Startups somam aportes", Term: "Aportes"})
	require.True(t, ok)
	assert.Equal(t, "Aporte", item.Term)

	_, ok = s.Match(model.Item{Title: "Varejista anuncia novo CEO", Summary: "Executivo assume em junho.", Term: "Aporte"})
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	got, err := newSite().ParseDate(model.Item{DateText: "10/05/24"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC), got)

	_, err = newSite().ParseDate(model.Item{DateText: "ontem"})
	require.Error(t, err)
}

func TestKeepCurrentAndPreviousYear(t *testing.T) {
	s := newSite()

	assert.True(t, s.Keep(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.Keep(time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, s.Keep(time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC)))
}
