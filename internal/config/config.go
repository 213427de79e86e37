package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// ErrConfiguration marks settings the service cannot start without.
var ErrConfiguration = errors.New("invalid configuration")

// Config is the flat process configuration. Every field maps to one environment variable
// of the same name in upper case (e.g. gemini_api_key -> GEMINI_API_KEY).
type Config struct {
	Port     int    `mapstructure:"port"`
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	DatabaseURL string `mapstructure:"database_url"`
	DBHost      string `mapstructure:"blueprint_db_host"`
	DBPort      string `mapstructure:"blueprint_db_port"`
	DBDatabase  string `mapstructure:"blueprint_db_database"`
	DBUsername  string `mapstructure:"blueprint_db_username"`
	DBPassword  string `mapstructure:"blueprint_db_password"`
	DBSchema    string `mapstructure:"blueprint_db_schema"`

	GeminiAPIKey  string        `mapstructure:"gemini_api_key"`
	GeminiModel   string        `mapstructure:"gemini_model"`
	GeminiTimeout time.Duration `mapstructure:"gemini_timeout"`

	JWTSecret    string `mapstructure:"jwt_secret"`
	AdminUserIDs string `mapstructure:"admin_user_ids"`

	ReferenceLCHFPath string `mapstructure:"reference_lchf_path"`
	ReferenceLFVPath  string `mapstructure:"reference_lfv_path"`

	RecentMealsWindowDays int           `mapstructure:"recent_meals_window_days"`
	HistoryCacheSize      int           `mapstructure:"history_cache_size"`
	HistoryCacheTTL       time.Duration `mapstructure:"history_cache_ttl"`
	FoodCatalogCacheTTL   time.Duration `mapstructure:"food_catalog_cache_ttl"`

	GenerateRateLimit  int           `mapstructure:"generate_rate_limit"`
	GenerateRateWindow time.Duration `mapstructure:"generate_rate_window"`
}

// Load reads the environment (plus .env through godotenv) and an optional config file.
// An empty configPath means environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
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

// setDefaults registers every key so AutomaticEnv picks it up during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("database_url", "")
	v.SetDefault("blueprint_db_host", "localhost")
	v.SetDefault("blueprint_db_port", "5432")
	v.SetDefault("blueprint_db_database", "")
	v.SetDefault("blueprint_db_username", "")
	v.SetDefault("blueprint_db_password", "")
	v.SetDefault("blueprint_db_schema", "public")

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("gemini_timeout", "60s")

	v.SetDefault("jwt_secret", "")
	v.SetDefault("admin_user_ids", "")

	v.SetDefault("reference_lchf_path", "")
	v.SetDefault("reference_lfv_path", "")

	v.SetDefault("recent_meals_window_days", 3)
	v.SetDefault("history_cache_size", 1024)
	v.SetDefault("history_cache_ttl", "10m")
	v.SetDefault("food_catalog_cache_ttl", "30m")

	v.SetDefault("generate_rate_limit", 10)
	v.SetDefault("generate_rate_window", "1h")
}

// Validate reports every missing or out-of-range setting at once, wrapped in ErrConfiguration.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		problems = append(problems, "GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.DatabaseURL == "" && (c.DBDatabase == "" || c.DBUsername == "") {
		problems = append(problems, "DATABASE_URL or BLUEPRINT_DB_DATABASE/BLUEPRINT_DB_USERNAME is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}
	if c.GeminiTimeout <= 0 {
		problems = append(problems, "GEMINI_TIMEOUT must be positive")
	}
	if c.RecentMealsWindowDays < 0 {
		problems = append(problems, "RECENT_MEALS_WINDOW_DAYS must not be negative")
	}
	if c.HistoryCacheSize < 0 {
		problems = append(problems, "HISTORY_CACHE_SIZE must not be negative")
	}
	if c.FoodCatalogCacheTTL < 0 {
		problems = append(problems, "FOOD_CATALOG_CACHE_TTL must not be negative")
	}
	if c.GenerateRateLimit > 0 && c.GenerateRateWindow <= 0 {
		problems = append(problems, "GENERATE_RATE_WINDOW must be positive when GENERATE_RATE_LIMIT is set")
	}
	if (c.ReferenceLCHFPath == "") != (c.ReferenceLFVPath == "") {
		problems = append(problems, "REFERENCE_LCHF_PATH and REFERENCE_LFV_PATH must be set together")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction returns true if running in production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// References reports whether guideline documents are configured.
func (c *Config) References() bool {
	return c.ReferenceLCHFPath != "" && c.ReferenceLFVPath != ""
}

// DSN returns DATABASE_URL, or builds one from the BLUEPRINT_DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUsername, c.DBPassword),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + c.DBDatabase,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if c.DBSchema != "" {
		q.Set("search_path", c.DBSchema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
