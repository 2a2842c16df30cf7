package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds every setting read from the environment at startup.
type AppConfig struct {
	Port        string
	GinMode     string
	Environment string

	DBHost      string
	DBPort      string
	DBDatabase  string
	DBUsername  string
	DBPassword  string
	DebugSQL    bool
	AutoMigrate bool

	JWTSecret      string
	JWTExpireHours int

	UploadPath  string
	MaxUploadKB int64
	FrontendURL string
	CORSOrigins []string

	SMTP SMTPConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	CatalogCacheSize int
	CatalogCacheTTL  time.Duration

	LogToken string
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

// LoadEnv reads .env when present. A missing file only produces a warning.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
}

// Load builds an AppConfig from the current environment.
func Load() *AppConfig {
	cfg := &AppConfig{
		Port:        getEnv("APP_PORT", "8080"),
		GinMode:     os.Getenv("GIN_MODE"),
		Environment: strings.ToLower(os.Getenv("ENVIRONMENT")),

		DBHost:      getEnv("DB_HOST", "127.0.0.1"),
		DBPort:      getEnv("DB_PORT", "3306"),
		DBDatabase:  os.Getenv("DB_DATABASE"),
		DBUsername:  os.Getenv("DB_USERNAME"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DebugSQL:    strings.EqualFold(os.Getenv("DEBUG_SQL"), "true"),
		AutoMigrate: strings.EqualFold(os.Getenv("DB_AUTO_MIGRATE"), "true"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		UploadPath:  getEnv("UPLOAD_PATH", "./storage"),
		MaxUploadKB: int64(getEnvInt("MAX_UPLOAD_KB", 2048)),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		SMTP: SMTPConfig{
			Host:          os.Getenv("SMTP_HOST"),
			Port:          getEnvInt("SMTP_PORT", 587),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			From:          os.Getenv("SMTP_FROM"),
			SkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
		},

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "complaint-events"),

		CatalogCacheSize: getEnvInt("CATALOG_CACHE_SIZE", 256),
		CatalogCacheTTL:  getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		LogToken: os.Getenv("LOG_TOKEN"),
	}

	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET is empty, tokens are signed with an insecure default")
		cfg.JWTSecret = "change-me"
	}
	return cfg
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// TrackingURL returns the public tracking page for a registration number.
func (c *AppConfig) TrackingURL(registrationNumber string) string {
	return c.FrontendURL + "/track-complaint?registration_number=" + registrationNumber
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
