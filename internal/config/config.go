// Package config loads server settings from defaults, an optional YAML file
// and environment variables, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/s1natex/tasks-comments-api/internal/logging"
)

type Config struct {
	Addr           string        `yaml:"addr"`
	DatabaseURL    string        `yaml:"database_url"`
	AutoMigrate    bool          `yaml:"auto_migrate"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      RateLimit     `yaml:"rate_limit"`
	CORS           CORS          `yaml:"cors"`
	Tracing        Tracing       `yaml:"tracing"`
}

// RateLimit is a process-wide token bucket. RPS <= 0 disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Tracing selects the span exporter: none, stdout or otlp.
type Tracing struct {
	Exporter     string `yaml:"exporter"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		DatabaseURL:    "sqlite:./data/tasks.db",
		AutoMigrate:    true,
		LogLevel:       "info",
		LogFormat:      "json",
		RequestTimeout: 15 * time.Second,
		CORS:           CORS{AllowedOrigins: []string{"*"}},
		Tracing:        Tracing{Exporter: "none", ServiceName: "tasks-comments-api"},
	}
}

// Load returns Default overlaid with the YAML file at path (skipped when
// path is empty) and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("TASKS_ADDR", &cfg.Addr)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("OTEL_TRACES_EXPORTER", &cfg.Tracing.Exporter)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.OTLPEndpoint)
	str("OTEL_SERVICE_NAME", &cfg.Tracing.ServiceName)

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}

	var errs []error
	if v, ok := lookup("AUTO_MIGRATE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTO_MIGRATE: %w", err))
		}
		cfg.AutoMigrate = b
	}
	if v, ok := lookup("REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT: %w", err))
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
		}
		cfg.RateLimit.RPS = f
	}
	if v, ok := lookup("RATE_LIMIT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST: %w", err))
		}
		cfg.RateLimit.Burst = n
	}
	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("database_url is required"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	switch c.Tracing.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("unknown tracing exporter %q", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}
