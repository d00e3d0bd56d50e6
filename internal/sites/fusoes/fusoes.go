// Package fusoes scrapes the daily highlights of fusoesaquisicoes.com.
//
// The listing is newest first, so the run stops at the first article dated on or before
// the cutoff: everything after it was ingested by earlier runs.
package fusoes

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/0x0BSoD/mnaScraper/internal/dates"
	"github.com/0x0BSoD/mnaScraper/internal/markup"
	"github.com/0x0BSoD/mnaScraper/internal/model"
	"github.com/0x0BSoD/mnaScraper/internal/pipeline"
	"github.com/0x0BSoD/mnaScraper/internal/storage"
)

const (
	Name = "fusoes"

	contentSelector = "div.content.post-excerpt.entry-content.clearfix"
	contentStart    = "INSIGHT DO DIA: Humores & Rumores"
	contentEnd      = "Saiba quais são as mais recentespostagens de humores e rumoresdo mercado"
	contentMissing  = "Conteúdo não encontrado"
)

var Table = storage.Table{
	Name:       "fusoes_aquisicoes",
	Constraint: "unique_news_fusoes",
	Unique:     []string{storage.ColumnTitle, storage.ColumnDate},
	HasTitle:   true,
}

type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

type Config struct {
	// BaseURL is the listing prefix; the page number and a trailing slash are appended.
	BaseURL  string
	MaxPages int
	Cutoff   time.Time
}

type Site struct {
	cfg     Config
	fetcher Fetcher
}

func New(cfg Config, fetcher Fetcher) *Site {
	return &Site{cfg: cfg, fetcher: fetcher}
}

func (s *Site) Name() string {
	return Name
}

func (s *Site) Options() pipeline.Options {
	return pipeline.Options{
		StopOnFetchError: true,
		StopOnEmpty:      true,
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

// Extract reads the listing articles. The excerpt becomes the stored title.
func (s *Site) Extract(page model.Page, body string) ([]model.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var items []model.Item
	doc.Find("article").Each(func(_ int, article *goquery.Selection) {
		excerpt := article.Find("div.post-excerpt").First()
		date := article.Find("time.entry-date").First()
		href, ok := markup.Attr(article.Find("a[href]").First(), "href")
		if excerpt.Length() == 0 || date.Length() == 0 || !ok {
			return
		}

		items = append(items, model.Item{
			Title:    markup.StrippedText(excerpt),
			DateText: markup.StrippedText(date),
			Link:     resolveURL(page.URL, href),
		})
	})

	return items, nil
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

func (s *Site) Match(item model.Item) (model.Item, bool) {
	return item, true
}

func (s *Site) ParseDate(item model.Item) (time.Time, error) {
	return dates.ParsePortuguese(item.DateText)
}

func (s *Site) Halt(publishedAt time.Time) bool {
	return !publishedAt.After(s.cfg.Cutoff)
}

// Enrich stores the article's full text as the summary. An unreachable article is stored
// with an empty summary; a fetch cut short by cancellation is an error.
func (s *Site) Enrich(ctx context.Context, item model.Item, article model.Article) (model.Article, error) {
	text, err := s.fullText(ctx, item.Link)
	if err != nil {
		return article, err
	}
	article.Summary = text
	return article, nil
}

func (s *Site) fullText(ctx context.Context, link string) (string, error) {
	body, err := s.fetcher.Get(ctx, link)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("fetch article %s: %w", link, ctxErr)
		}
		slog.Error("failed to fetch article", "site", Name, "url", link, "err", err)
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		slog.Error("failed to parse article", "site", Name, "url", link, "err", err)
		return "", nil
	}

	content := doc.Find(contentSelector).First()
	if content.Length() == 0 {
		slog.Warn("article content block not found, falling back to readability", "site", Name, "url", link)
		return readableText(body, link), nil
	}

	return trimContent(markup.StrippedText(content)), nil
}

func trimContent(text string) string {
	if _, after, ok := strings.Cut(text, contentStart); ok {
		text = after
	}
	text, _, _ = strings.Cut(text, contentEnd)
	return text
}

func readableText(body, link string) string {
	pageURL, err := url.Parse(link)
	if err != nil {
		slog.Warn("invalid article URL", "site", Name, "url", link, "err", err)
		return contentMissing
	}

	doc, err := readability.FromReader(strings.NewReader(body), pageURL)
	if err != nil {
		slog.Warn("readability extraction failed", "site", Name, "url", link, "err", err)
		return contentMissing
	}

	text := strings.TrimSpace(doc.TextContent)
	if text == "" {
		return contentMissing
	}
	return trimContent(text)
}
