package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/CrestNiraj12/fedtimeline/domain"
)

// Config holds application-level configuration.
type Config struct {
	InstanceURL string `yaml:"instance" validate:"required,url,startswith=https://"` // e.g. "https://mastodon.social"
	TokenPath   string `yaml:"token_file"`                                           // Path to file containing the access token
	Timeline    string `yaml:"timeline" validate:"required"`                         // Key form, e.g. "home" or "tag:golang"

	PageSize      int `yaml:"page_size" validate:"min=1,max=40"`
	Pages         int `yaml:"pages" validate:"min=1,max=50"`
	TrendingLimit int `yaml:"trending_limit" validate:"min=0,max=20"`

	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	PrettyLog bool   `yaml:"pretty_log"`

	Preferences Preferences `yaml:"preferences"`

	RedisAddr    string `yaml:"redis_addr" validate:"omitempty,hostname_port"`
	RedisChannel string `yaml:"redis_channel" validate:"required_with=RedisAddr"`
	MetricsAddr  string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`

	UIStatePath string `yaml:"ui_state_file"`
}

// Preferences are the display preferences applied to timelines.
type Preferences struct {
	ShowSensitiveMedia bool `yaml:"show_sensitive_media"`
	OpenSpoilers       bool `yaml:"open_spoilers"`
	HideBoosts         bool `yaml:"hide_boosts"`
	HideReplies        bool `yaml:"hide_replies"`
}

// Display converts the preferences to their domain form.
func (p Preferences) Display() domain.DisplayPreferences {
	return domain.DisplayPreferences{
		AlwaysShowSensitiveMedia: p.ShowSensitiveMedia,
		AlwaysOpenSpoilers:       p.OpenSpoilers,
		HideBoosts:               p.HideBoosts,
		HideReplies:              p.HideReplies,
	}
}

// ParsedTimeline returns the configured timeline.
func (c Config) ParsedTimeline() (domain.Timeline, error) {
	return domain.ParseTimeline(c.Timeline)
}

// Load reads the optional YAML file, then environment variables on top.
//
//	FEDTIMELINE_CONFIG         YAML config file (default: ~/.config/fedtimeline/config.yaml, if present)
//	FEDTIMELINE_INSTANCE       Mastodon instance URL (default: https://mastodon.social)
//	FEDTIMELINE_TOKEN_FILE     Path to token file (default: ~/.config/fedtimeline/token)
//	FEDTIMELINE_TIMELINE       Timeline to open (default: home)
//	FEDTIMELINE_PAGE_SIZE      Statuses per page (default: 20)
//	FEDTIMELINE_PAGES          Pages to print (default: 2)
//	FEDTIMELINE_TRENDING_LIMIT Trending tags to print, 0 disables (default: 10)
//	FEDTIMELINE_LOG_LEVEL      debug, info, warn or error (default: warn)
//	FEDTIMELINE_PRETTY_LOG     Human-readable logs
//	FEDTIMELINE_SHOW_SENSITIVE, FEDTIMELINE_OPEN_SPOILERS, FEDTIMELINE_HIDE_BOOSTS, FEDTIMELINE_HIDE_REPLIES
//	FEDTIMELINE_REDIS_ADDR     Relay timeline events through Redis when set
//	FEDTIMELINE_REDIS_CHANNEL  Redis channel (default: fedtimeline:events)
//	FEDTIMELINE_METRICS_ADDR   Serve /metrics and /healthz when set, e.g. localhost:9090
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "fedtimeline")

	cfg := Config{
		InstanceURL:   "https://mastodon.social",
		TokenPath:     filepath.Join(dir, "token"),
		Timeline:      "home",
		PageSize:      20,
		Pages:         2,
		TrendingLimit: 10,
		LogLevel:      "warn",
		RedisChannel:  "fedtimeline:events",
		UIStatePath:   filepath.Join(dir, "ui_state.json"),
	}

	path, explicit := os.LookupEnv("FEDTIMELINE_CONFIG")
	if !explicit {
		path = filepath.Join(dir, "config.yaml")
	}
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.normalize()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = n
		return nil
	}
	flag := func(name string, dst *bool) error {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = b
		return nil
	}

	str("FEDTIMELINE_INSTANCE", &cfg.InstanceURL)
	str("FEDTIMELINE_TOKEN_FILE", &cfg.TokenPath)
	str("FEDTIMELINE_TIMELINE", &cfg.Timeline)
	str("FEDTIMELINE_LOG_LEVEL", &cfg.LogLevel)
	str("FEDTIMELINE_REDIS_ADDR", &cfg.RedisAddr)
	str("FEDTIMELINE_REDIS_CHANNEL", &cfg.RedisChannel)
	str("FEDTIMELINE_METRICS_ADDR", &cfg.MetricsAddr)
	str("FEDTIMELINE_UI_STATE_FILE", &cfg.UIStatePath)

	return errors.Join(
		num("FEDTIMELINE_PAGE_SIZE", &cfg.PageSize),
		num("FEDTIMELINE_PAGES", &cfg.Pages),
		num("FEDTIMELINE_TRENDING_LIMIT", &cfg.TrendingLimit),
		flag("FEDTIMELINE_PRETTY_LOG", &cfg.PrettyLog),
		flag("FEDTIMELINE_SHOW_SENSITIVE", &cfg.Preferences.ShowSensitiveMedia),
		flag("FEDTIMELINE_OPEN_SPOILERS", &cfg.Preferences.OpenSpoilers),
		flag("FEDTIMELINE_HIDE_BOOSTS", &cfg.Preferences.HideBoosts),
		flag("FEDTIMELINE_HIDE_REPLIES", &cfg.Preferences.HideReplies),
	)
}

var validate = validator.New()

// normalize trims the instance URL and validates every field.
func (c *Config) normalize() error {
	parsed, err := url.Parse(c.InstanceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid instance %q: must be an absolute URL", c.InstanceURL)
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("invalid instance %q: only https is allowed", c.InstanceURL)
	}
	c.InstanceURL = strings.TrimRight(parsed.String(), "/")
	c.LogLevel = strings.ToLower(c.LogLevel)

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.ParsedTimeline(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
