// Package pipeline runs one site scrape: fetch each listing page, extract candidates,
// filter and normalize them, then persist what was kept.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/0x0BSoD/mnaScraper/internal/model"
)

// ErrEndOfListing is returned by Site.Extract when a page shows the listing has run out.
var ErrEndOfListing = errors.New("end of listing")

type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

type ArticleStorage interface {
	EnsureTable(ctx context.Context) error
	Store(ctx context.Context, articles []model.Article) (int64, error)
}

// Site is the per-site strategy.
type Site interface {
	Name() string
	Options() Options
	Pages() []model.Page
	// Extract parses one listing page. A page without listing elements yields no items.
	Extract(page model.Page, body string) ([]model.Item, error)
	// Match applies the term filter and returns the item with its canonical Term set.
	Match(item model.Item) (model.Item, bool)
	ParseDate(item model.Item) (time.Time, error)
}

// Resolver completes an item before its date is parsed, e.g. by fetching the article page.
type Resolver interface {
	Resolve(ctx context.Context, item model.Item) (model.Item, error)
}

// Halter stops the whole run when it sees an article that is already known to be ingested.
// The page containing that article is discarded.
type Halter interface {
	Halt(publishedAt time.Time) bool
}

// Keeper drops articles outside a date window without stopping the run.
type Keeper interface {
	Keep(publishedAt time.Time) bool
}

// Enricher fills in an accepted article, e.g. with the article's full text. An error drops
// the article.
type Enricher interface {
	Enrich(ctx context.Context, item model.Item, article model.Article) (model.Article, error)
}

type Options struct {
	// StopOnFetchError ends pagination on a failed fetch instead of skipping the page.
	StopOnFetchError bool
	// StopOnEmpty ends pagination on a page that yields no accepted articles.
	StopOnEmpty bool
	// FlushPerPage stores each page's articles right after the page is processed.
	FlushPerPage bool
	// PageDelay is the minimum interval between listing page fetches.
	PageDelay time.Duration
}

type Report struct {
	Pages      int
	Candidates int
	Kept       int
	Inserted   int64
	Halted     bool
}

type Runner struct {
	site     Site
	fetcher  Fetcher
	articles ArticleStorage
	opts     Options
	// wait paces listing page fetches; article fetches are not paced.
	wait func(ctx context.Context) error
}

func New(site Site, fetcher Fetcher, articles ArticleStorage) *Runner {
	opts := site.Options()
	return &Runner{
		site:     site,
		fetcher:  fetcher,
		articles: articles,
		opts:     opts,
		wait:     pageLimiter(opts.PageDelay),
	}
}

func pageLimiter(delay time.Duration) func(ctx context.Context) error {
	if delay <= 0 {
		return func(context.Context) error { return nil }
	}
	return rate.NewLimiter(rate.Every(delay), 1).Wait
}

// storeContext keeps a final write alive after the run itself was cancelled.
func storeContext(ctx context.Context) context.Context {
	if ctx.Err() != nil {
		return context.WithoutCancel(ctx)
	}
	return ctx
}

// Run scrapes every page of the site and stores the result. Only storage failures and
// cancellation are returned as errors; fetch and parse failures are logged.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var (
		report Report
		batch  []model.Article
		name   = r.site.Name()
	)

	if err := r.articles.EnsureTable(ctx); err != nil {
		return report, err
	}

	pages := r.site.Pages()
	slog.Info("scrape started", "site", name, "pages", len(pages))

	var runErr error
	for _, page := range pages {
		if err := r.wait(ctx); err != nil {
			runErr = err
			break
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		slog.Info("fetching page", "site", name, "page", page.Number, "url", page.URL)
		body, err := r.fetcher.Get(ctx, page.URL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				runErr = ctxErr
				break
			}
			slog.Error("failed to fetch page", "site", name, "url", page.URL, "err", err)
			if r.opts.StopOnFetchError {
				break
			}
			continue
		}
		report.Pages++

		items, err := r.site.Extract(page, body)
		if errors.Is(err, ErrEndOfListing) {
			slog.Info("no more listing entries, stopping", "site", name, "page", page.Number)
			break
		}
		if err != nil {
			slog.Warn("failed to parse page", "site", name, "url", page.URL, "err", err)
			continue
		}
		report.Candidates += len(items)

		accepted, halted := r.process(ctx, items)
		if halted {
			report.Halted = true
			slog.Info("reached already ingested articles, stopping", "site", name, "page", page.Number)
			break
		}
		interrupted := ctx.Err()
		if interrupted == nil && len(accepted) == 0 && r.opts.StopOnEmpty {
			slog.Info("page yielded no articles, stopping", "site", name, "page", page.Number)
			break
		}

		report.Kept += len(accepted)
		slog.Info("page processed", "site", name, "page", page.Number, "kept", len(accepted))

		if r.opts.FlushPerPage {
			n, err := r.articles.Store(storeContext(ctx), accepted)
			if err != nil {
				return report, err
			}
			report.Inserted += n
		} else {
			batch = append(batch, accepted...)
		}

		if interrupted != nil {
			runErr = interrupted
			break
		}
	}

	if len(batch) > 0 {
		n, err := r.articles.Store(storeContext(ctx), batch)
		if err != nil {
			return report, err
		}
		report.Inserted += n
	} else if report.Kept == 0 {
		slog.Warn("no articles extracted", "site", name)
	}

	slog.Info("scrape finished",
		"site", name,
		"pages", report.Pages,
		"candidates", report.Candidates,
		"kept", report.Kept,
		"inserted", report.Inserted,
		"halted", report.Halted,
	)

	if runErr != nil {
		return report, fmt.Errorf("%s: run interrupted: %w", name, runErr)
	}
	return report, nil
}

func (r *Runner) process(ctx context.Context, items []model.Item) ([]model.Article, bool) {
	name := r.site.Name()
	resolver, _ := r.site.(Resolver)
	halter, _ := r.site.(Halter)
	keeper, _ := r.site.(Keeper)
	enricher, _ := r.site.(Enricher)

	var out []model.Article
	for _, candidate := range items {
		// Articles not yet fully processed when the run is cancelled are left for the next run.
		if ctx.Err() != nil {
			break
		}

		item, ok := r.site.Match(candidate)
		if !ok {
			continue
		}

		if resolver != nil {
			resolved, err := resolver.Resolve(ctx, item)
			if err != nil {
				slog.Warn("failed to resolve article", "site", name, "link", item.Link, "err", err)
				continue
			}
			item = resolved
		}

		publishedAt, err := r.site.ParseDate(item)
		if err != nil {
			slog.Warn("failed to parse date", "site", name, "date", item.DateText, "err", err)
			continue
		}

		if halter != nil && halter.Halt(publishedAt) {
			return nil, true
		}
		if keeper != nil && !keeper.Keep(publishedAt) {
			continue
		}

		article := model.Article{
			Title:       item.Title,
			Summary:     item.Summary,
			Term:        item.Term,
			PublishedAt: publishedAt,
		}
		if enricher != nil {
			enriched, err := enricher.Enrich(ctx, item, article)
			if err != nil {
				slog.Warn("failed to enrich article", "site", name, "link", item.Link, "err", err)
				continue
			}
			article = enriched
		}

		if item.Term != "" {
			slog.Info("article found", "site", name, "term", item.Term, "date", publishedAt.Format(time.DateOnly))
		}
		out = append(out, article)
	}

	return out, false
}
