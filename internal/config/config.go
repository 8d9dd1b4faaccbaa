package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeDev      = "dev"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	AuthMode     string `mapstructure:"AUTH_MODE"`
	DevJWTSecret string `mapstructure:"DEV_JWT_SECRET"`

	LocalStoreDriver string `mapstructure:"LOCAL_STORE_DRIVER"`
	SQLitePath       string `mapstructure:"SQLITE_PATH"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`

	RedisURL string `mapstructure:"REDIS_URL"`

	WeatherAPIKey    string        `mapstructure:"WEATHER_API_KEY"`
	WeatherBaseURL   string        `mapstructure:"WEATHER_BASE_URL"`
	NutritionAPIKey  string        `mapstructure:"NUTRITION_API_KEY"`
	NutritionBaseURL string        `mapstructure:"NUTRITION_BASE_URL"`
	ChatAPIKey       string        `mapstructure:"CHAT_API_KEY"`
	ChatBaseURL      string        `mapstructure:"CHAT_BASE_URL"`
	ChatModel        string        `mapstructure:"CHAT_MODEL"`
	ExternalTimeout  time.Duration `mapstructure:"EXTERNAL_TIMEOUT"`

	MetricsUser string `mapstructure:"METRICS_USER"`
	MetricsPass string `mapstructure:"METRICS_PASS"`
	PprofSecret string `mapstructure:"PPROF_SECRET"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
	// TrustedProxies is a comma separated list of proxy IPs or CIDRs whose
	// X-Forwarded-For header is believed.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	RemindersEnabled bool          `mapstructure:"REMINDERS_ENABLED"`
	ReminderHour     int           `mapstructure:"REMINDER_HOUR"`
	ReminderInterval time.Duration `mapstructure:"REMINDER_INTERVAL"`
}

var defaults = map[string]any{
	"PORT":               "3333",
	"APP_ENV":            "development",
	"LOG_LEVEL":          "info",
	"AUTH_MODE":          AuthModeFirebase,
	"LOCAL_STORE_DRIVER": DriverSQLite,
	"SQLITE_PATH":        "vivelaso.db",
	"WEATHER_BASE_URL":   "https://api.openweathermap.org",
	"NUTRITION_BASE_URL": "https://api.api-ninjas.com",
	"CHAT_BASE_URL":      "https://api.openai.com/v1",
	"CHAT_MODEL":         "gpt-4o-mini",
	"EXTERNAL_TIMEOUT":   "10s",
	"RATE_LIMIT_RPS":     5,
	"RATE_LIMIT_BURST":   30,
	"REMINDERS_ENABLED":  false,
	"REMINDER_HOUR":      20,
	"REMINDER_INTERVAL":  "1h",
}

var keys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL", "LOG_FILE",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"AUTH_MODE", "DEV_JWT_SECRET",
	"LOCAL_STORE_DRIVER", "SQLITE_PATH", "DATABASE_URL",
	"REDIS_URL",
	"WEATHER_API_KEY", "WEATHER_BASE_URL", "NUTRITION_API_KEY", "NUTRITION_BASE_URL",
	"CHAT_API_KEY", "CHAT_BASE_URL", "CHAT_MODEL", "EXTERNAL_TIMEOUT",
	"METRICS_USER", "METRICS_PASS", "PPROF_SECRET",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "TRUSTED_PROXIES",
	"REMINDERS_ENABLED", "REMINDER_HOUR", "REMINDER_INTERVAL",
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}

	switch c.AuthMode {
	case AuthModeFirebase:
	case AuthModeDev:
		if c.DevJWTSecret == "" {
			return errors.New("DEV_JWT_SECRET is required when AUTH_MODE=dev")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	switch c.LocalStoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when LOCAL_STORE_DRIVER=sqlite")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when LOCAL_STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown LOCAL_STORE_DRIVER %q", c.LocalStoreDriver)
	}

	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("REMINDER_HOUR must be between 0 and 23, got %d", c.ReminderHour)
	}
	return nil
}

func (c *Config) TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
