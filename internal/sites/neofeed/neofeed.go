// Package neofeed scrapes the neofeed.com.br search results for each deal term.
package neofeed

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/0x0BSoD/mnaScraper/internal/dates"
	"github.com/0x0BSoD/mnaScraper/internal/filter"
	"github.com/0x0BSoD/mnaScraper/internal/markup"
	"github.com/0x0BSoD/mnaScraper/internal/model"
	"github.com/0x0BSoD/mnaScraper/internal/pipeline"
	"github.com/0x0BSoD/mnaScraper/internal/storage"
)

const (
	Name           = "neofeed"
	summaryMissing = "Sem resumo"
)

var Table = storage.Table{
	Name:          "neofeed",
	Constraint:    "unique_news",
	Unique:        []string{storage.ColumnTitle, storage.ColumnDate},
	HasTitle:      true,
	TitleRequired: true,
	HasTerm:       true,
	TermRequired:  true,
}

type Config struct {
	// SearchURL is the site root; each term is sent as the "s" query parameter.
	SearchURL string
	Terms     []string
	Now       func() time.Time
}

type Site struct {
	searchURL string
	filter    *filter.Filter
	now       func() time.Time
}

func New(cfg Config) *Site {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Site{
		searchURL: cfg.SearchURL,
		filter:    filter.New(cfg.Terms, filter.DefaultAliases),
		now:       cfg.Now,
	}
}

func (s *Site) Name() string {
	return Name
}

func (s *Site) Options() pipeline.Options {
	return pipeline.Options{}
}

// Pages returns one search page per term, in vocabulary order.
func (s *Site) Pages() []model.Page {
	var pages []model.Page
	for i, term := range s.filter.Terms() {
		pages = append(pages, model.Page{
			URL:    s.searchPageURL(term),
			Number: i + 1,
			Term:   term,
		})
	}
	return pages
}

func (s *Site) searchPageURL(term string) string {
	u, err := url.Parse(s.searchURL)
	if err != nil {
		return s.searchURL + "?s=" + url.QueryEscape(term)
	}
	q := u.Query()
	q.Set("s", term)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Site) Extract(page model.Page, body string) ([]model.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	articles := doc.Find("article")
	if articles.Length() == 0 {
		slog.Warn("no articles found", "site", Name, "term", page.Term)
		return nil, nil
	}

	var items []model.Item
	articles.Each(func(_ int, article *goquery.Selection) {
		title := article.Find("h3.title-listagem").First()
		date := article.Find("span.date").First()
		if title.Length() == 0 || date.Length() == 0 {
			return
		}

		summary := summaryMissing
		if p := article.Find("p").First(); p.Length() > 0 {
			summary = markup.StrippedText(p)
		}

		items = append(items, model.Item{
			Title:    markup.StrippedText(title),
			Summary:  summary,
			DateText: markup.StrippedText(date),
			Term:     page.Term,
		})
	})

	return items, nil
}

// Match keeps results that actually mention the searched term.
func (s *Site) Match(item model.Item) (model.Item, bool) {
	term, ok := s.filter.MatchTerm(item.Term, item.Title, item.Summary)
	if !ok {
		return item, false
	}
	item.Term = term
	return item, true
}

func (s *Site) ParseDate(item model.Item) (time.Time, error) {
	return dates.ParseShortSlash(item.DateText)
}

// Keep limits results to the current and the previous calendar year.
func (s *Site) Keep(publishedAt time.Time) bool {
	year := s.now().Year()
	return publishedAt.Year() == year || publishedAt.Year() == year-1
}
