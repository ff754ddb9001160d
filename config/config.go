package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/TykTechnologies/certexpiry/internal/build"
	logger "github.com/TykTechnologies/certexpiry/log"
)

var log = logger.Get()

const envPrefix = "CERTEXPIRY"

const (
	DefaultTimeoutMs              = 5000
	DefaultPort                   = 443
	DefaultAlertWindowDays        = 30
	DefaultCacheSize              = 256
	DefaultWatchIntervalSeconds   = 3600
	DefaultEventCooldownSeconds   = 86400
	DefaultWebhookTimeoutSeconds  = 10
	DefaultWebhookMaxElapsedSecs  = 60
	DefaultListenAddress          = ":8080"
	DefaultRedisCooldownKeyPrefix = "certexpiry:cooldown:"
)

// Global holds the process-wide settings shared by every host check of a
// checker instance. It is never mutated once the checker is built.
type Global struct {
	// TimeoutMs bounds a single host check, handshake included.
	TimeoutMs int `json:"timeout_ms" yaml:"timeout_ms"`
	// DefaultPort is used for hosts that don't specify a port.
	DefaultPort int `json:"default_port" yaml:"default_port"`
	// DefaultAlertWindowDays is used for hosts that don't specify an alert
	// window. Nil means DefaultAlertWindowDays; an explicit 0 is kept.
	DefaultAlertWindowDays *int `json:"default_alert_window_days,omitempty" yaml:"default_alert_window_days,omitempty"`
	// UserAgent is sent with the check request unless a host overrides it.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxConcurrentChecks limits in-flight host checks. Zero means unlimited.
	MaxConcurrentChecks int `json:"max_concurrent_checks" yaml:"max_concurrent_checks"`
	// HandshakeOnly skips the HTTP request and only performs the TLS handshake.
	HandshakeOnly bool `json:"handshake_only" yaml:"handshake_only"`
	// CacheTTLSeconds keeps fetched certificates for this long. Zero disables caching.
	CacheTTLSeconds int `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
	// CacheSize is the maximum number of cached certificates.
	CacheSize int `json:"cache_size" yaml:"cache_size"`
}

// Timeout returns TimeoutMs as a duration.
func (g Global) Timeout() time.Duration {
	return time.Duration(g.TimeoutMs) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (g Global) CacheTTL() time.Duration {
	return time.Duration(g.CacheTTLSeconds) * time.Second
}

// AlertWindow returns the default alert window in days.
func (g Global) AlertWindow() int {
	if g.DefaultAlertWindowDays == nil || *g.DefaultAlertWindowDays < 0 {
		return DefaultAlertWindowDays
	}
	return *g.DefaultAlertWindowDays
}

// WithDefaults fills unset fields with their defaults. A nil or negative
// alert window is treated as unset; an explicit zero is kept.
func (g Global) WithDefaults() Global {
	if g.TimeoutMs <= 0 {
		g.TimeoutMs = DefaultTimeoutMs
	}
	if g.DefaultPort <= 0 {
		g.DefaultPort = DefaultPort
	}
	g.DefaultAlertWindowDays = lo.ToPtr(g.AlertWindow())
	if g.UserAgent == "" {
		g.UserAgent = build.UserAgent()
	}
	if g.MaxConcurrentChecks < 0 {
		g.MaxConcurrentChecks = 0
	}
	if g.CacheSize <= 0 {
		g.CacheSize = DefaultCacheSize
	}
	return g
}

// DefaultGlobal returns the checker defaults.
func DefaultGlobal() Global {
	return Global{
		TimeoutMs:              DefaultTimeoutMs,
		DefaultPort:            DefaultPort,
		DefaultAlertWindowDays: lo.ToPtr(DefaultAlertWindowDays),
		UserAgent:              build.UserAgent(),
		CacheSize:              DefaultCacheSize,
	}
}

type RedisConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Addr      string `json:"addr" yaml:"addr"`
	Username  string `json:"username" yaml:"username"`
	Password  string `json:"password" yaml:"password"`
	Database  int    `json:"database" yaml:"database"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

type WebhookConfig struct {
	URL               string            `json:"url" yaml:"url"`
	Headers           map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds    int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxElapsedSeconds int               `json:"max_elapsed_seconds" yaml:"max_elapsed_seconds"`
}

// WatchConfig drives the periodic check mode.
type WatchConfig struct {
	IntervalSeconds      int           `json:"interval_seconds" yaml:"interval_seconds"`
	EventCooldownSeconds int           `json:"event_cooldown_seconds" yaml:"event_cooldown_seconds"`
	Webhook              WebhookConfig `json:"webhook" yaml:"webhook"`
	Redis                RedisConfig   `json:"redis" yaml:"redis"`
}

// Interval returns IntervalSeconds as a duration.
func (w WatchConfig) Interval() time.Duration {
	return time.Duration(w.IntervalSeconds) * time.Second
}

type APIConfig struct {
	ListenAddress string `json:"listen_address" yaml:"listen_address"`
}

// Config is the complete configuration of the certexpiry binary.
type Config struct {
	// OriginalPath is the path to the config file that was read.
	OriginalPath string `json:"-" yaml:"-" ignored:"true"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	Checker   Global      `json:"checker" yaml:"checker"`
	HostsFile string      `json:"hosts_file" yaml:"hosts_file"`
	Watch     WatchConfig `json:"watch" yaml:"watch"`
	API       APIConfig   `json:"api" yaml:"api"`
}

var Default = Config{
	LogLevel: "info",
	Checker:  DefaultGlobal(),
	Watch: WatchConfig{
		IntervalSeconds:      DefaultWatchIntervalSeconds,
		EventCooldownSeconds: DefaultEventCooldownSeconds,
		Webhook: WebhookConfig{
			TimeoutSeconds:    DefaultWebhookTimeoutSeconds,
			MaxElapsedSeconds: DefaultWebhookMaxElapsedSecs,
		},
		Redis: RedisConfig{
			KeyPrefix: DefaultRedisCooldownKeyPrefix,
		},
	},
	API: APIConfig{
		ListenAddress: DefaultListenAddress,
	},
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Checker.DefaultPort < 1 || c.Checker.DefaultPort > 65535 {
		errs = append(errs, fmt.Errorf("checker.default_port %d is out of range", c.Checker.DefaultPort))
	}
	if c.Checker.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("checker.timeout_ms must be positive, got %d", c.Checker.TimeoutMs))
	}
	if c.Watch.IntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("watch.interval_seconds must be positive, got %d", c.Watch.IntervalSeconds))
	}
	if c.Watch.Redis.Enabled && c.Watch.Redis.Addr == "" {
		errs = append(errs, errors.New("watch.redis.addr is required when redis is enabled"))
	}
	return errors.Join(errs...)
}

// Load will load a configuration file, trying each of the paths given
// and using the first one that is a regular file and can be opened.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
//
// If none exists, conf keeps its current values. Environment variables
// prefixed with CERTEXPIRY_ are applied last in both cases.
//
// An error will be returned only if any of the paths existed but was
// not a valid config file.
func Load(paths []string, conf *Config) error {
	var (
		r    io.Reader
		path string
	)
	for _, p := range paths {
		f, err := os.Open(p)
		if err == nil {
			defer f.Close()
			r = f
			path = p
			break
		}
		if os.IsNotExist(err) {
			continue
		}
		return err
	}

	if r == nil {
		log.Debug("No config file found, using defaults")
	} else {
		if err := decode(r, path, conf); err != nil {
			return fmt.Errorf("couldn't unmarshal config: %w", err)
		}
		conf.OriginalPath = path
	}

	if err := FillEnv(conf); err != nil {
		return fmt.Errorf("failed to process config env vars: %w", err)
	}
	return nil
}

// FillEnv applies CERTEXPIRY_ environment overrides to conf.
func FillEnv(conf *Config) error {
	return envconfig.Process(envPrefix, conf)
}

// WriteConf writes conf to path as indented JSON.
func WriteConf(path string, conf *Config) error {
	bs, err := json.MarshalIndent(conf, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

func decode(r io.Reader, path string, conf *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err := yaml.NewDecoder(r).Decode(conf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	default:
		return json.NewDecoder(r).Decode(conf)
	}
}
