package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/0x0BSoD/mnaScraper/internal/app"
	"github.com/0x0BSoD/mnaScraper/internal/config"
	"github.com/0x0BSoD/mnaScraper/internal/logging"
	"github.com/0x0BSoD/mnaScraper/internal/reporter"
)

const allSites = "all"

var flagConfig string

// NewRootCmd creates the root command with one subcommand per site.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mna-scraper",
		Short:         "Scrape Brazilian M&A and investment news into Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Extra HCL config file, applied after the default ones")

	for _, name := range app.Sites {
		cmd.AddCommand(siteCmd(name))
	}
	cmd.AddCommand(&cobra.Command{
		Use:   allSites,
		Short: "Scrape every site in turn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			return a.RunAll(cmd.Context())
		},
	})

	return cmd
}

func siteCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Scrape %s", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			_, err = a.Run(cmd.Context(), name)
			return err
		},
	}
}

func loadConfig() (config.Config, error) {
	if flagConfig == "" {
		return config.Get(), nil
	}
	return config.Load(append(config.DefaultFiles, flagConfig)...)
}

// setup loads the configuration and connects the admin notifier when one is configured.
// Every site run logs to its own <site>.log.
func setup() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(logging.NewHandler(os.Stdout, cfg.LogLevel)))

	rep, err := reporter.FromToken(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
	if err != nil {
		slog.Warn("admin notifications disabled", "err", err)
	}

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = "."
	}
	return app.New(cfg, app.WithReporter(rep), app.WithSiteLogs(logDir, cfg.LogLevel)), nil
}

// Execute runs the command line given by args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
