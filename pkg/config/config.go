package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceName string `yaml:"service_name"`
	ServerPort  int    `yaml:"server_port"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	// CookieSecure marks session and CSRF cookies Secure. Turn it off only
	// when serving browsers over plain HTTP.
	CookieSecure bool `yaml:"cookie_secure"`

	DatabaseURL string        `yaml:"-"`
	DBTimeout   time.Duration `yaml:"db_timeout"`

	JWTAccessSecret []byte        `yaml:"-"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`

	AdminEmail    string `yaml:"-"`
	AdminPassword string `yaml:"-"`

	Shift   ShiftConfig   `yaml:"shift"`
	Gateway GatewayConfig `yaml:"gateway"`
	Events  EventsConfig  `yaml:"events"`
	Search  SearchConfig  `yaml:"search"`
}

type ShiftConfig struct {
	MaxHours int    `yaml:"max_hours"`
	Timezone string `yaml:"timezone"`
}

type GatewayConfig struct {
	BaseURL     string        `yaml:"base_url"`
	ServerKey   string        `yaml:"-"`
	Timeout     time.Duration `yaml:"timeout"`
	CallbackURL string        `yaml:"callback_url"`
}

type EventsConfig struct {
	Broker       string   `yaml:"broker"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	RabbitMQURL  string   `yaml:"-"`
}

type SearchConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"-"`
	Password string `yaml:"-"`
	Index    string `yaml:"index"`
}

func defaults() Config {
	return Config{
		ServiceName:    "pos",
		ServerPort:     8080,
		LogLevel:       "info",
		LogFormat:      "json",
		CookieSecure:   true,
		DBTimeout:      5 * time.Second,
		AccessTokenTTL: 8 * time.Hour,
		Shift: ShiftConfig{
			MaxHours: 8,
			Timezone: "Asia/Jakarta",
		},
		Gateway: GatewayConfig{
			BaseURL: "https://app.sandbox.midtrans.com/snap/v1",
			Timeout: 10 * time.Second,
		},
		Events: EventsConfig{Broker: "none"},
		Search: SearchConfig{Index: "menu"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.ServiceName = EnvDefault("SERVICE_NAME", cfg.ServiceName)
	cfg.ServerPort = EnvIntDefault("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = EnvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = EnvDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.CookieSecure = EnvBoolDefault("COOKIE_SECURE", cfg.CookieSecure)

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DBTimeout = EnvDurationDefault("DB_TIMEOUT", cfg.DBTimeout)

	cfg.JWTAccessSecret = []byte(os.Getenv("JWT_SECRET"))
	cfg.AccessTokenTTL = EnvDurationDefault("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL)

	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	cfg.Shift.MaxHours = EnvIntDefault("SHIFT_MAX_HOURS", cfg.Shift.MaxHours)
	cfg.Shift.Timezone = EnvDefault("SHIFT_TIMEZONE", cfg.Shift.Timezone)

	cfg.Gateway.BaseURL = EnvDefault("GATEWAY_URL", cfg.Gateway.BaseURL)
	cfg.Gateway.ServerKey = os.Getenv("GATEWAY_SERVER_KEY")
	cfg.Gateway.Timeout = EnvDurationDefault("GATEWAY_TIMEOUT", cfg.Gateway.Timeout)
	cfg.Gateway.CallbackURL = EnvDefault("GATEWAY_CALLBACK_URL", cfg.Gateway.CallbackURL)

	cfg.Events.Broker = strings.ToLower(EnvDefault("EVENTS_BROKER", cfg.Events.Broker))
	if brokers := CSV(os.Getenv("KAFKA_BROKERS")); len(brokers) > 0 {
		cfg.Events.KafkaBrokers = brokers
	}
	cfg.Events.RabbitMQURL = os.Getenv("RABBITMQ_URL")

	cfg.Search.URL = EnvDefault("ES_URL", cfg.Search.URL)
	cfg.Search.User = os.Getenv("ES_USER")
	cfg.Search.Password = os.Getenv("ES_PASSWORD")
	cfg.Search.Index = EnvDefault("ES_INDEX", cfg.Search.Index)

	return cfg, nil
}

func (c Config) ShiftLimit() time.Duration {
	return time.Duration(c.Shift.MaxHours) * time.Hour
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Shift.Timezone)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
