package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Insights      InsightsConfig
	Reports       ReportsConfig
	Notifications NotificationsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// InsightsConfig governs the equipment health dashboard endpoints.
type InsightsConfig struct {
	Enabled  bool
	CacheTTL time.Duration
	// UpcomingWindow bounds the "needs maintenance soon" horizon.
	UpcomingWindow time.Duration
}

// ReportsConfig controls report exports.
type ReportsConfig struct {
	Enabled    bool
	MaxExport  int
	SheetTitle string
}

// NotificationsConfig tunes the overdue/due-soon scanner.
type NotificationsConfig struct {
	Enabled          bool
	ScanInterval     time.Duration
	DueSoonThreshold time.Duration
	WorkerCount      int
	WorkerRetries    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Insights = InsightsConfig{
		Enabled:        v.GetBool("ENABLE_INSIGHTS"),
		CacheTTL:       parseDuration(v.GetString("INSIGHTS_CACHE_TTL"), 5*time.Minute),
		UpcomingWindow: parseDuration(v.GetString("INSIGHTS_UPCOMING_WINDOW"), 7*24*time.Hour),
	}

	cfg.Reports = ReportsConfig{
		Enabled:    v.GetBool("ENABLE_REPORTS"),
		MaxExport:  v.GetInt("REPORTS_MAX_EXPORT"),
		SheetTitle: v.GetString("REPORTS_SHEET_TITLE"),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:          v.GetBool("ENABLE_NOTIFICATIONS"),
		ScanInterval:     parseDuration(v.GetString("NOTIFICATIONS_SCAN_INTERVAL"), time.Hour),
		DueSoonThreshold: parseDuration(v.GetString("NOTIFICATIONS_DUE_SOON_THRESHOLD"), 48*time.Hour),
		WorkerCount:      v.GetInt("NOTIFICATIONS_WORKER_COUNT"),
		WorkerRetries:    v.GetInt("NOTIFICATIONS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gearguard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_INSIGHTS", true)
	v.SetDefault("INSIGHTS_CACHE_TTL", "5m")
	v.SetDefault("INSIGHTS_UPCOMING_WINDOW", "168h")

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_MAX_EXPORT", 10000)
	v.SetDefault("REPORTS_SHEET_TITLE", "Maintenance Requests")

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("NOTIFICATIONS_SCAN_INTERVAL", "1h")
	v.SetDefault("NOTIFICATIONS_DUE_SOON_THRESHOLD", "48h")
	v.SetDefault("NOTIFICATIONS_WORKER_COUNT", 2)
	v.SetDefault("NOTIFICATIONS_WORKER_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
