package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort         string
	RealtimePort    string
	DatabaseURL     string
	RequireDatabase bool
	DBQueryTimeout  time.Duration
	RedisURL        string
	SeedDemo        bool

	JWTSecret    string
	TokenExpires time.Duration

	OrderStatusPolicy string
	OrderLeadTime     time.Duration
	SessionIdleTTL    time.Duration

	AllowedOrigins []string

	TelegramBotToken  string
	TelegramAdminChat string

	UploadDir        string
	PublicURL        string
	MaxUploadBytes   int64
	CloudinaryName   string
	CloudinaryKey    string
	CloudinarySecret string
	CloudinaryFolder string

	ShopName string
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		RealtimePort:    getEnv("REALTIME_PORT", "8081"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RequireDatabase: getEnvBool("REQUIRE_DATABASE", false),
		DBQueryTimeout:  getEnvDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		RedisURL:        getEnv("REDIS_URL", ""),
		SeedDemo:        getEnvBool("SEED_DEMO", true),

		JWTSecret:    getEnv("JWT_SECRET", "etailor-development-secret-change-me"),
		TokenExpires: time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		OrderStatusPolicy: getEnv("ORDER_STATUS_POLICY", "strict"),
		OrderLeadTime:     time.Duration(getEnvInt("ORDER_LEAD_TIME_DAYS", 10)) * 24 * time.Hour,
		SessionIdleTTL:    getEnvDuration("SESSION_IDLE_TTL", 2*time.Hour),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChat: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),

		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		PublicURL:        getEnv("PUBLIC_URL", "/uploads"),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		CloudinaryName:   getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinarySecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder: getEnv("CLOUDINARY_FOLDER", "etailor/designs"),

		ShopName: getEnv("SHOP_NAME", "E-Tailor"),
	}

	if cfg.AppPort == "" {
		log.Fatal("APP_PORT must be set")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	if cfg.RequireDatabase && cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must be set when REQUIRE_DATABASE is true")
	}

	return cfg
}

// CloudinaryEnabled reports whether design uploads go to Cloudinary.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryKey != "" && c.CloudinarySecret != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("[Config] ignoring invalid %s=%q", key, value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("[Config] ignoring invalid %s=%q", key, value)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		log.Printf("[Config] ignoring invalid %s=%q", key, value)
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
