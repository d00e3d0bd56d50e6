package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/joho/godotenv"
)

const dateLayout = "2006-01-02"

type Config struct {
	PostgresDB       string `hcl:"postgres_db" env:"POSTGRES_DB" default:"postgres"`
	PostgresUser     string `hcl:"postgres_user" env:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `hcl:"postgres_password" env:"POSTGRES_PASSWORD"`
	PostgresHost     string `hcl:"postgres_host" env:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `hcl:"postgres_port" env:"POSTGRES_PORT" default:"5432"`
	PostgresSSLMode  string `hcl:"postgres_sslmode" env:"POSTGRES_SSLMODE" default:"disable"`

	LogDir   string `hcl:"log_dir" env:"LOG_DIR" default:"."`
	LogLevel string `hcl:"log_level" env:"LOG_LEVEL" default:"info"`

	UserAgent   string        `hcl:"user_agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"`
	HTTPTimeout time.Duration `hcl:"http_timeout" env:"HTTP_TIMEOUT" default:"10s"`

	TelegramBotToken    string `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `hcl:"telegram_admin_chat_id" env:"TELEGRAM_ADMIN_CHAT_ID"`

	Neofeed  Neofeed  `hcl:"neofeed" env:"NEOFEED"`
	Startups Startups `hcl:"startups" env:"STARTUPS"`
	Startupi Startupi `hcl:"startupi" env:"STARTUPI"`
	Fusoes   Fusoes   `hcl:"fusoes" env:"FUSOES"`
}

type Neofeed struct {
	SearchURL string   `hcl:"search_url" env:"SEARCH_URL" default:"https://neofeed.com.br/"`
	Terms     []string `hcl:"terms" env:"TERMS" default:"Aporte,Aportes,Fusão,Aquisição,M&A,Série A,Série B,Série C"`
}

type Startups struct {
	BaseURL   string        `hcl:"base_url" env:"BASE_URL" default:"https://startups.com.br/ultimas-noticias/page/"`
	Terms     []string      `hcl:"terms" env:"TERMS" default:"Aporte,Fusão,Aquisição,M&A,Série A,Série B,Série C"`
	MaxPages  int           `hcl:"max_pages" env:"MAX_PAGES" default:"2"`
	PageDelay time.Duration `hcl:"page_delay" env:"PAGE_DELAY" default:"2s"`
}

type Startupi struct {
	URLTemplate string `hcl:"url_template" env:"URL_TEMPLATE" default:"https://startupi.com.br/ranking-investimentos-%d/"`
	StartYear   int    `hcl:"start_year" env:"START_YEAR" default:"2022"`
}

type Fusoes struct {
	BaseURL  string `hcl:"base_url" env:"BASE_URL" default:"https://fusoesaquisicoes.com/destaques-do-dia/page/"`
	MaxPages int    `hcl:"max_pages" env:"MAX_PAGES" default:"1"`
	// Cutoff is a YYYY-MM-DD date; articles on or before it are considered ingested.
	Cutoff string `hcl:"cutoff" env:"CUTOFF" default:"2023-12-30"`
}

func (f Fusoes) CutoffDate() (time.Time, error) {
	t, err := time.Parse(dateLayout, f.Cutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("fusoes cutoff %q: %w", f.Cutoff, err)
	}
	return t, nil
}

// DatabaseDSN builds a lib/pq connection URL from the POSTGRES_* settings.
func (c Config) DatabaseDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDB,
	}
	q := u.Query()
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

var DefaultFiles = []string{"./config.hcl", "./config.local.hcl", "$HOME/.config/mna-scraper/config.hcl"}

var (
	cfg  Config
	once sync.Once
)

func Get() Config {
	once.Do(func() {
		var err error
		if cfg, err = Load(DefaultFiles...); err != nil {
			slog.Error("failed to load config", "err", err)
		}
	})

	return cfg
}

// Load reads .env into the process environment (existing variables win), then resolves
// defaults, the given HCL files and the environment, in that order.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded, using process environment", "err", err)
	}

	var c Config
	loader := aconfig.LoaderFor(&c, aconfig.Config{
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return c, err
	}
	return c, nil
}
