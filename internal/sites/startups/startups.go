// Package startups scrapes the startups.com.br latest-news listing.
package startups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/0x0BSoD/mnaScraper/internal/dates"
	"github.com/0x0BSoD/mnaScraper/internal/filter"
	"github.com/0x0BSoD/mnaScraper/internal/markup"
	"github.com/0x0BSoD/mnaScraper/internal/model"
	"github.com/0x0BSoD/mnaScraper/internal/pipeline"
	"github.com/0x0BSoD/mnaScraper/internal/storage"
)

const (
	Name = "startups"

	gridSelector    = "div.grid.gap-row-6"
	linkSelector    = "a.feed-link"
	summarySelector = "p.feed-excert.feed-excert-md.line-clamp-3"
	dateSelector    = "time.text-gray-500"

	summaryMissing = "Resumo não encontrado"
)

var ErrDateNotFound = errors.New("publish date not found")

var Table = storage.Table{
	Name:          "startups",
	Constraint:    "unique_titulo_data",
	Unique:        []string{storage.ColumnTitle, storage.ColumnDate},
	HasTitle:      true,
	TitleRequired: true,
	HasTerm:       true,
	TermRequired:  true,
}

type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

type Config struct {
	// BaseURL is the listing prefix; the page number and a trailing slash are appended.
	BaseURL   string
	Terms     []string
	MaxPages  int
	PageDelay time.Duration
}

type Site struct {
	cfg     Config
	filter  *filter.Filter
	fetcher Fetcher
}

func New(cfg Config, fetcher Fetcher) *Site {
	return &Site{
		cfg:     cfg,
		filter:  filter.New(cfg.Terms, filter.DefaultAliases),
		fetcher: fetcher,
	}
}

func (s *Site) Name() string {
	return Name
}

func (s *Site) Options() pipeline.Options {
	return pipeline.Options{
		StopOnFetchError: true,
		FlushPerPage:     true,
		PageDelay:        s.cfg.PageDelay,
	}
}

func (s *Site) Pages() []model.Page {
	var pages []model.Page
	for n := 1; n <= s.cfg.MaxPages; n++ {
		pages = append(pages, model.Page{
			URL:    fmt.Sprintf("%s%d/", s.cfg.BaseURL, n),
			Number: n,
		})
	}
	return pages
}

// Extract reads the feed links of the news grid. A page without the grid is skipped; a
// grid without links ends the listing.
func (s *Site) Extract(page model.Page, body string) ([]model.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	grid := doc.Find(gridSelector).First()
	if grid.Length() == 0 {
		slog.Warn("news grid not found, skipping page", "site", Name, "page", page.Number)
		return nil, nil
	}

	links := grid.Find(linkSelector)
	if links.Length() == 0 {
		return nil, pipeline.ErrEndOfListing
	}

	summaries := followingSummaries(doc)

	var items []model.Item
	links.Each(func(_ int, link *goquery.Selection) {
		title, ok := markup.Attr(link, "title")
		if !ok {
			return
		}
		href, ok := markup.Attr(link, "href")
		if !ok {
			return
		}

		summary := summaryMissing
		if p, ok := summaries[link.Get(0)]; ok {
			summary = markup.StrippedText(p)
		}

		items = append(items, model.Item{
			Title:   title,
			Summary: summary,
			Link:    resolveURL(page.URL, href),
		})
	})

	return items, nil
}

// followingSummaries maps every feed link to the first summary paragraph that follows it
// in document order.
func followingSummaries(doc *goquery.Document) map[*html.Node]*goquery.Selection {
	out := map[*html.Node]*goquery.Selection{}

	var pending []*html.Node
	doc.Find(linkSelector + ", " + summarySelector).Each(func(_ int, sel *goquery.Selection) {
		if sel.Is(linkSelector) {
			pending = append(pending, sel.Get(0))
			return
		}
		for _, link := range pending {
			out[link] = sel
		}
		pending = pending[:0]
	})

	return out
}

func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// Match keeps links whose title contains a deal term; the first term in vocabulary order wins.
func (s *Site) Match(item model.Item) (model.Item, bool) {
	term, ok := s.filter.Match(item.Title)
	if !ok {
		return item, false
	}
	item.Term = term
	return item, true
}

// Resolve reads the publish timestamp from the article page.
func (s *Site) Resolve(ctx context.Context, item model.Item) (model.Item, error) {
	body, err := s.fetcher.Get(ctx, item.Link)
	if err != nil {
		return item, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return item, fmt.Errorf("parsing HTML: %w", err)
	}

	datetime, ok := markup.Attr(doc.Find(dateSelector).First(), "datetime")
	if !ok {
		return item, fmt.Errorf("%w: %s", ErrDateNotFound, item.Link)
	}

	item.DateText = datetime
	return item, nil
}

func (s *Site) ParseDate(item model.Item) (time.Time, error) {
	return dates.ParseISO(item.DateText)
}
