// Package startupi scrapes the yearly investment rankings published by startupi.com.br.
//
// Each ranking page has one tab per month; the tab's panel text is stored as the summary,
// dated on the first day of that month.
package startupi

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/0x0BSoD/mnaScraper/internal/dates"
	"github.com/0x0BSoD/mnaScraper/internal/markup"
	"github.com/0x0BSoD/mnaScraper/internal/model"
	"github.com/0x0BSoD/mnaScraper/internal/pipeline"
	"github.com/0x0BSoD/mnaScraper/internal/storage"
)

const (
	Name = "startupi"

	tabSelector = ".elementor-tab-title.elementor-tab-desktop-title"
)

var Table = storage.Table{
	Name:       "startupi",
	Constraint: "unique_news_investment",
	Unique:     []string{storage.ColumnSummary, storage.ColumnDate},
}

type Config struct {
	// URLTemplate holds one %d verb for the year.
	URLTemplate string
	StartYear   int
	Now         func() time.Time
}

type Site struct {
	cfg Config
}

func New(cfg Config) *Site {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Site{cfg: cfg}
}

func (s *Site) Name() string {
	return Name
}

func (s *Site) Options() pipeline.Options {
	return pipeline.Options{}
}

// Pages covers every complete year from StartYear up to last year.
func (s *Site) Pages() []model.Page {
	var pages []model.Page
	endYear := s.cfg.Now().Year() - 1
	for year := s.cfg.StartYear; year <= endYear; year++ {
		pages = append(pages, model.Page{
			URL:    fmt.Sprintf(s.cfg.URLTemplate, year),
			Number: len(pages) + 1,
			Year:   year,
		})
	}
	return pages
}

func (s *Site) Extract(page model.Page, body string) ([]model.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var items []model.Item
	doc.Find(tabSelector).Each(func(_ int, tab *goquery.Selection) {
		month := strings.ToUpper(markup.StrippedText(tab))

		panelID, ok := markup.Attr(tab, "aria-controls")
		if !ok {
			slog.Warn("month tab without panel", "site", Name, "year", page.Year, "month", month)
			return
		}
		panel := doc.Find("div[id]").FilterFunction(func(_ int, div *goquery.Selection) bool {
			id, _ := div.Attr("id")
			return id == panelID
		}).First()
		if panel.Length() == 0 {
			slog.Warn("month panel not found", "site", Name, "year", page.Year, "month", month, "id", panelID)
			return
		}

		items = append(items, model.Item{
			Summary:  markup.JoinedText(panel, " "),
			DateText: month + " " + strconv.Itoa(page.Year),
		})
	})

	return items, nil
}

func (s *Site) Match(item model.Item) (model.Item, bool) {
	return item, true
}

// ParseDate reads the "<MÊS> <ano>" text set by Extract.
func (s *Site) ParseDate(item model.Item) (time.Time, error) {
	month, yearText, ok := strings.Cut(item.DateText, " ")
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", dates.ErrUnrecognized, item.DateText)
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: year %q", dates.ErrUnrecognized, yearText)
	}
	return dates.FromMonthAbbrev(month, year)
}
