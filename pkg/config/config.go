package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config stores all configuration for the application.
type Config struct {
	BaseURL       string        `mapstructure:"BASE_URL"`
	Regions       []string      `mapstructure:"REGIONS"`
	RecencyWindow time.Duration `mapstructure:"RECENCY_WINDOW"`
	OutputPath    string        `mapstructure:"OUTPUT_PATH"`
	LockTTL       time.Duration `mapstructure:"LOCK_TTL"`
	DryRun        bool          `mapstructure:"DRY_RUN"`

	FetchMode    string        `mapstructure:"FETCH_MODE"`
	FetchTimeout time.Duration `mapstructure:"FETCH_TIMEOUT"`
	UserAgent    string        `mapstructure:"USER_AGENT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`

	// AnthropicAPIKey is handed to the external summarizer that consumes the
	// new-listings queue; the scraper itself never calls the API.
	AnthropicAPIKey string `mapstructure:"ANTHROPIC_API_KEY"`

	PostgresURL    string `mapstructure:"POSTGRES_URL"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	PushgatewayURL string `mapstructure:"PUSHGATEWAY_URL"`

	ServerPort string `mapstructure:"SERVER_PORT"`
}

// Load reads configuration from command-line flags, an optional .env file and
// environment variables, in increasing order of precedence for the latter two.
// It returns pflag.ErrHelp when usage was requested.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("reality-watch", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "path to an optional .env file")
	flags.Bool("dry-run", false, "collect and log listings without persisting them")
	flags.String("output", "", "listings table path (overrides OUTPUT_PATH)")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(*envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional; production configures purely through the environment.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", *envFile, err)
	}

	setDefaults(v)

	if err := v.BindPFlag("DRY_RUN", flags.Lookup("dry-run")); err != nil {
		return nil, err
	}
	if f := flags.Lookup("output"); f.Changed {
		v.Set("OUTPUT_PATH", f.Value.String())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Regions = normalizeRegions(cfg.Regions)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BASE_URL", "https://reality.bazos.cz")
	v.SetDefault("REGIONS", []string{"ostrava", "karvina"})
	v.SetDefault("RECENCY_WINDOW", 2*time.Hour)
	v.SetDefault("OUTPUT_PATH", "data/listings.csv")
	v.SetDefault("LOCK_TTL", 10*time.Minute)
	v.SetDefault("FETCH_MODE", FetchModeHTTP)
	v.SetDefault("FETCH_TIMEOUT", 30*time.Second)
	v.SetDefault("USER_AGENT", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ANTHROPIC_API_KEY", "")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PUSHGATEWAY_URL", "")
	v.SetDefault("SERVER_PORT", "8080")
}

// Validate checks the settings the collector cannot run without.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("BASE_URL must not be empty")
	}
	if len(c.Regions) == 0 {
		return errors.New("REGIONS must name at least one region")
	}
	if c.RecencyWindow <= 0 {
		return fmt.Errorf("RECENCY_WINDOW must be positive, got %s", c.RecencyWindow)
	}
	if c.OutputPath == "" {
		return errors.New("OUTPUT_PATH must not be empty")
	}
	switch c.FetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return fmt.Errorf("unknown FETCH_MODE %q", c.FetchMode)
	}
	return nil
}

func normalizeRegions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
