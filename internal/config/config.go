// Package config loads application settings from a YAML file and
// BASSLINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/logging"
	"github.com/sydlexius/bassline/internal/watcher"
)

// EnvPath names the variable that points at the config file.
const EnvPath = "BASSLINE_CONFIG_PATH"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Trigger   TriggerConfig   `yaml:"trigger"`
	Logging   logging.Config  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

// DiscoveryConfig tunes the pipeline and says where its output lives.
type DiscoveryConfig struct {
	SnapshotPath  string        `yaml:"snapshot_path"`
	AreaID        string        `yaml:"area_id"`
	PageSize      int           `yaml:"page_size"`
	PageDelay     time.Duration `yaml:"page_delay"`
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
	SearchLimit   int           `yaml:"search_limit"`
	SearchDelay   time.Duration `yaml:"search_delay"`
	MaxRecords    int           `yaml:"max_records"`
	ScheduleHours int           `yaml:"schedule_hours"`
	WatchMode     string        `yaml:"watch_mode"`
}

// CatalogConfig holds external catalog endpoints and client settings.
type CatalogConfig struct {
	MusicBrainzURL string        `yaml:"musicbrainz_url"`
	DeezerURL      string        `yaml:"deezer_url"`
	UserAgent      string        `yaml:"user_agent"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

// TriggerConfig secures the HTTP endpoint that starts a run.
type TriggerConfig struct {
	// Secret must be presented by callers. Empty disables the endpoint.
	Secret      string        `yaml:"secret"`
	MaxDuration time.Duration `yaml:"max_duration"`
	// RatePerMinute bounds attempts per client IP.
	RatePerMinute int `yaml:"rate_per_minute"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	opts := discovery.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			BasePath: "/",
		},
		Discovery: DiscoveryConfig{
			SnapshotPath: "data/sa-artists.json",
			AreaID:       opts.AreaID,
			PageSize:     opts.PageSize,
			PageDelay:    opts.PageDelay,
			RetryBackoff: opts.RetryBackoff,
			SearchLimit:  opts.SearchLimit,
			SearchDelay:  opts.SearchDelay,
			MaxRecords:   opts.MaxRecords,
			WatchMode:    string(watcher.ModeWatch),
		},
		Catalog: CatalogConfig{
			CacheTTL: time.Hour,
		},
		Trigger: TriggerConfig{
			MaxDuration:   5 * time.Minute,
			RatePerMinute: 10,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// PathFromEnv returns the config path from BASSLINE_CONFIG_PATH, or fallback.
func PathFromEnv(fallback string) string {
	if v := os.Getenv(EnvPath); v != "" {
		return v
	}
	return fallback
}

// DiscoveryOptions converts the discovery section into pipeline options.
func (c *Config) DiscoveryOptions() discovery.Options {
	d := c.Discovery
	return discovery.Options{
		AreaID:       d.AreaID,
		PageSize:     d.PageSize,
		PageDelay:    d.PageDelay,
		RetryBackoff: d.RetryBackoff,
		SearchLimit:  d.SearchLimit,
		SearchDelay:  d.SearchDelay,
		MaxRecords:   d.MaxRecords,
	}
}

// MatchPacing is the time a run spends waiting between catalog searches
// once the performer cap is reached. Zero when the run is uncapped.
func (d DiscoveryConfig) MatchPacing() time.Duration {
	return time.Duration(d.MaxRecords) * d.SearchDelay
}

// checkTriggerBudget rejects an enabled trigger whose runs cannot finish
// before trigger.max_duration. Search pacing may use at most half of the
// deadline; the rest is left for the crawl and network latency.
func (c *Config) checkTriggerBudget() error {
	if c.Trigger.Secret == "" || c.Trigger.MaxDuration <= 0 {
		return nil
	}
	if c.Discovery.MaxRecords == 0 {
		return errors.New("discovery.max_records must be set when the trigger is enabled")
	}
	if pacing, budget := c.Discovery.MatchPacing(), c.Trigger.MaxDuration/2; pacing > budget {
		return fmt.Errorf("discovery.max_records %d at search_delay %s needs %s of pacing, over half of trigger.max_duration %s",
			c.Discovery.MaxRecords, c.Discovery.SearchDelay, pacing, c.Trigger.MaxDuration)
	}
	return nil
}

// Schedule returns the interval between scheduled runs, zero when disabled.
func (c *Config) Schedule() time.Duration {
	return time.Duration(c.Discovery.ScheduleHours) * time.Hour
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setInt("BASSLINE_PORT", &c.Server.Port)
	setString("BASSLINE_BASE_PATH", &c.Server.BasePath)

	setString("BASSLINE_SNAPSHOT_PATH", &c.Discovery.SnapshotPath)
	setString("BASSLINE_AREA_ID", &c.Discovery.AreaID)
	setInt("BASSLINE_PAGE_SIZE", &c.Discovery.PageSize)
	setDuration("BASSLINE_PAGE_DELAY", &c.Discovery.PageDelay)
	setDuration("BASSLINE_RETRY_BACKOFF", &c.Discovery.RetryBackoff)
	setDuration("BASSLINE_SEARCH_DELAY", &c.Discovery.SearchDelay)
	setInt("BASSLINE_MAX_RECORDS", &c.Discovery.MaxRecords)
	setInt("BASSLINE_SCHEDULE_HOURS", &c.Discovery.ScheduleHours)
	setString("BASSLINE_WATCH_MODE", &c.Discovery.WatchMode)

	setString("BASSLINE_MUSICBRAINZ_URL", &c.Catalog.MusicBrainzURL)
	setString("BASSLINE_DEEZER_URL", &c.Catalog.DeezerURL)
	setString("BASSLINE_USER_AGENT", &c.Catalog.UserAgent)
	setDuration("BASSLINE_CACHE_TTL", &c.Catalog.CacheTTL)

	// CRON_SECRET is accepted for deployments that already export it.
	setString("CRON_SECRET", &c.Trigger.Secret)
	setString("BASSLINE_CRON_SECRET", &c.Trigger.Secret)
	setDuration("BASSLINE_TRIGGER_MAX_DURATION", &c.Trigger.MaxDuration)
	setInt("BASSLINE_TRIGGER_RATE_PER_MINUTE", &c.Trigger.RatePerMinute)

	setString("BASSLINE_LOG_LEVEL", &c.Logging.Level)
	setString("BASSLINE_LOG_FORMAT", &c.Logging.Format)
	setString("BASSLINE_LOG_OUTPUT", &c.Logging.Output)
	setString("BASSLINE_LOG_FILE", &c.Logging.FilePath)

	return errors.Join(errs...)
}

func (c *Config) validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Server.Port))
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		c.Server.BasePath = "/" + c.Server.BasePath
	}

	d := &c.Discovery
	if strings.TrimSpace(d.SnapshotPath) == "" {
		errs = append(errs, errors.New("discovery.snapshot_path is required"))
	}
	if d.AreaID == "" {
		errs = append(errs, errors.New("discovery.area_id is required"))
	}
	if d.PageSize < 1 || d.PageSize > 100 {
		errs = append(errs, fmt.Errorf("discovery.page_size must be 1-100, got %d", d.PageSize))
	}
	if d.PageDelay < 0 || d.RetryBackoff < 0 || d.SearchDelay < 0 {
		errs = append(errs, errors.New("discovery delays must not be negative"))
	}
	if d.SearchLimit < 1 {
		errs = append(errs, fmt.Errorf("discovery.search_limit must be positive, got %d", d.SearchLimit))
	}
	if d.MaxRecords < 0 {
		errs = append(errs, fmt.Errorf("discovery.max_records must not be negative, got %d", d.MaxRecords))
	}
	if d.ScheduleHours < 0 {
		errs = append(errs, fmt.Errorf("discovery.schedule_hours must not be negative, got %d", d.ScheduleHours))
	}
	if _, err := watcher.ParseMode(d.WatchMode); err != nil {
		errs = append(errs, fmt.Errorf("discovery.watch_mode: %w", err))
	}

	if c.Catalog.CacheTTL < 0 {
		errs = append(errs, errors.New("catalog.cache_ttl must not be negative"))
	}
	if c.Trigger.MaxDuration <= 0 {
		errs = append(errs, errors.New("trigger.max_duration must be positive"))
	}
	if c.Trigger.RatePerMinute < 1 {
		errs = append(errs, fmt.Errorf("trigger.rate_per_minute must be positive, got %d", c.Trigger.RatePerMinute))
	}
	if err := c.checkTriggerBudget(); err != nil {
		errs = append(errs, err)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}
	if !logging.ValidFormat(c.Logging.Format) {
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}
	if !logging.ValidOutput(c.Logging.Output) {
		errs = append(errs, fmt.Errorf("invalid log output %q", c.Logging.Output))
	}
	return errors.Join(errs...)
}
