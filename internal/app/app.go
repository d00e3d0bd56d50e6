// Package app assembles a site's pipeline from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/0x0BSoD/mnaScraper/internal/config"
	"github.com/0x0BSoD/mnaScraper/internal/logging"
	"github.com/0x0BSoD/mnaScraper/internal/pipeline"
	"github.com/0x0BSoD/mnaScraper/internal/reporter"
	"github.com/0x0BSoD/mnaScraper/internal/sites/fusoes"
	"github.com/0x0BSoD/mnaScraper/internal/sites/neofeed"
	"github.com/0x0BSoD/mnaScraper/internal/sites/startupi"
	"github.com/0x0BSoD/mnaScraper/internal/sites/startups"
	"github.com/0x0BSoD/mnaScraper/internal/source"
	"github.com/0x0BSoD/mnaScraper/internal/storage"
)

// Sites lists every supported site in the order "all" runs them.
var Sites = []string{neofeed.Name, startups.Name, startupi.Name, fusoes.Name}

// bypassSites sit behind Cloudflare's bot check.
var bypassSites = []string{fusoes.Name}

var ErrUnknownSite = errors.New("unknown site")

type App struct {
	cfg      config.Config
	driver   string
	dsn      string
	reporter *reporter.Reporter
	now      func() time.Time

	// logDir enables per-site log files when set.
	logDir   string
	logLevel string
}

type Option func(*App)

// WithDatabase overrides the Postgres connection built from the POSTGRES_* settings.
func WithDatabase(driver, dsn string) Option {
	return func(a *App) {
		a.driver = driver
		a.dsn = dsn
	}
}

func WithReporter(r *reporter.Reporter) Option {
	return func(a *App) {
		a.reporter = r
	}
}

// WithSiteLogs sends each site's run to <dir>/<site>.log as well as stdout.
func WithSiteLogs(dir, level string) Option {
	return func(a *App) {
		a.logDir = dir
		a.logLevel = level
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

func New(cfg config.Config, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		driver: storage.DriverPostgres,
		dsn:    cfg.DatabaseDSN(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type target struct {
	site  pipeline.Site
	table storage.Table
}

func (a *App) build(name string, fetcher *source.Client) (target, error) {
	switch name {
	case neofeed.Name:
		return target{
			site: neofeed.New(neofeed.Config{
				SearchURL: a.cfg.Neofeed.SearchURL,
				Terms:     a.cfg.Neofeed.Terms,
				Now:       a.now,
			}),
			table: neofeed.Table,
		}, nil
	case startups.Name:
		return target{
			site: startups.New(startups.Config{
				BaseURL:   a.cfg.Startups.BaseURL,
				Terms:     a.cfg.Startups.Terms,
				MaxPages:  a.cfg.Startups.MaxPages,
				PageDelay: a.cfg.Startups.PageDelay,
			}, fetcher),
			table: startups.Table,
		}, nil
	case startupi.Name:
		return target{
			site: startupi.New(startupi.Config{
				URLTemplate: a.cfg.Startupi.URLTemplate,
				StartYear:   a.cfg.Startupi.StartYear,
				Now:         a.now,
			}),
			table: startupi.Table,
		}, nil
	case fusoes.Name:
		cutoff, err := a.cfg.Fusoes.CutoffDate()
		if err != nil {
			return target{}, err
		}
		return target{
			site: fusoes.New(fusoes.Config{
				BaseURL:  a.cfg.Fusoes.BaseURL,
				MaxPages: a.cfg.Fusoes.MaxPages,
				Cutoff:   cutoff,
			}, fetcher),
			table: fusoes.Table,
		}, nil
	default:
		return target{}, fmt.Errorf("%w %q (expected one of %v)", ErrUnknownSite, name, Sites)
	}
}

func (a *App) client(bypass bool) *source.Client {
	return source.New(source.Options{
		UserAgent: a.cfg.UserAgent,
		Timeout:   a.cfg.HTTPTimeout,
		Bypass:    bypass,
	})
}

// Run scrapes one site end to end and reports the outcome to the admin chat.
func (a *App) Run(ctx context.Context, name string) (pipeline.Report, error) {
	if a.logDir != "" && lo.Contains(Sites, name) {
		closeLog, err := logging.Setup(a.logDir, name, a.logLevel)
		if err != nil {
			return pipeline.Report{}, err
		}
		defer closeLog() //nolint:errcheck
	}

	report, err := a.run(ctx, name)
	if err != nil {
		slog.Error("scrape failed", "site", name, "err", err)
		a.reporter.Failed(name, err)
		return report, err
	}
	a.reporter.Finished(name, report)
	return report, nil
}

func (a *App) run(ctx context.Context, name string) (pipeline.Report, error) {
	fetcher := a.client(lo.Contains(bypassSites, name))

	t, err := a.build(name, fetcher)
	if err != nil {
		return pipeline.Report{}, err
	}

	articles, err := storage.NewArticleStorage(a.driver, a.dsn, t.table)
	if err != nil {
		return pipeline.Report{}, err
	}

	return pipeline.New(t.site, fetcher, articles).Run(ctx)
}

// RunAll scrapes every site in turn. A failing site does not prevent the others from
// running; all failures are returned joined.
func (a *App) RunAll(ctx context.Context) error {
	var errs []error
	for _, name := range Sites {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := a.Run(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
