package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var ErrMissingAuthToken = errors.New("server.auth_token (AUTH_TOKEN) must be set")

type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	AuthToken       string        `mapstructure:"auth_token"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CloudflareSettings struct {
	APIToken       string `mapstructure:"api_token"`
	AccountID      string `mapstructure:"account_id"`
	BaseURL        string `mapstructure:"base_url"`
	RequireAccount bool   `mapstructure:"require_account"`
}

type MetricsSettings struct {
	Strategy string `mapstructure:"strategy"`
	// Window zero selects the strategy default.
	Window     time.Duration `mapstructure:"window"`
	MaxBuckets int           `mapstructure:"max_buckets"`
}

type AggregatorSettings struct {
	Concurrency       int           `mapstructure:"concurrency"`
	CallTimeout       time.Duration `mapstructure:"call_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type Settings struct {
	Server     ServerSettings     `mapstructure:"server"`
	Cloudflare CloudflareSettings `mapstructure:"cloudflare"`
	Metrics    MetricsSettings    `mapstructure:"metrics"`
	Aggregator AggregatorSettings `mapstructure:"aggregator"`
	Log        LogSettings        `mapstructure:"log"`
}

var envBindings = map[string]string{
	"server.host":                    "SERVER_HOST",
	"server.port":                    "SERVER_PORT",
	"server.auth_token":              "AUTH_TOKEN",
	"server.shutdown_timeout":        "SERVER_SHUTDOWN_TIMEOUT",
	"cloudflare.api_token":           "CLOUDFLARE_API_TOKEN",
	"cloudflare.account_id":          "CLOUDFLARE_ACCOUNT_ID",
	"cloudflare.base_url":            "CLOUDFLARE_BASE_URL",
	"cloudflare.require_account":     "CLOUDFLARE_REQUIRE_ACCOUNT",
	"metrics.strategy":               "METRICS_STRATEGY",
	"metrics.window":                 "METRICS_WINDOW",
	"metrics.max_buckets":            "METRICS_MAX_BUCKETS",
	"aggregator.concurrency":         "AGGREGATOR_CONCURRENCY",
	"aggregator.call_timeout":        "AGGREGATOR_CALL_TIMEOUT",
	"aggregator.requests_per_second": "AGGREGATOR_REQUESTS_PER_SECOND",
	"log.level":                      "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("cloudflare.base_url", "https://api.cloudflare.com/client/v4")
	v.SetDefault("cloudflare.require_account", true)
	v.SetDefault("metrics.strategy", "rest")
	v.SetDefault("metrics.window", time.Duration(0))
	v.SetDefault("metrics.max_buckets", 30)
	v.SetDefault("aggregator.concurrency", 4)
	v.SetDefault("aggregator.call_timeout", 15*time.Second)
	v.SetDefault("aggregator.requests_per_second", 0.0)
	v.SetDefault("log.level", "info")
}

// LoadSettings reads settings from the optional YAML file at path, then from the
// environment. Environment values win over the file.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}

// ValidateServer checks what the web server cannot start without. Missing
// Cloudflare credentials are not fatal here; they fail individual requests.
func (s *Settings) ValidateServer() error {
	if s.Server.AuthToken == "" {
		return ErrMissingAuthToken
	}
	return nil
}

func (s *Settings) Credentials() domain.Credentials {
	return domain.Credentials{
		APIToken:  s.Cloudflare.APIToken,
		AccountID: s.Cloudflare.AccountID,
	}
}

func (s *Settings) Addr() string {
	return net.JoinHostPort(s.Server.Host, strconv.Itoa(s.Server.Port))
}

func (l LogSettings) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}
