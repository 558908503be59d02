package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName       string
	AppVersion    string
	Environment   string
	HTTPAddr      string
	TempleName    string
	SnowflakeNode int64

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	CatalogFile string

	Allocation AllocationConfig
	Report     ReportConfig
	Redis      RedisConfig
	Slack      SlackConfig
	Scheduler  SchedulerConfig
	RateLimit  RateLimitConfig
}

type AllocationConfig struct {
	MaxAttempts int
	LockTTL     time.Duration
}

type ReportConfig struct {
	Storage string
	Dir     string
	MinIO   MinIOConfig
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	Bucket          string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SlackConfig struct {
	WebhookURL string
	Channel    string
}

type SchedulerConfig struct {
	Enabled     bool
	RunInterval time.Duration
}

// RateLimitConfig throttles report generation per client. It needs REDIS_ADDR.
type RateLimitConfig struct {
	Enabled     bool
	ReportRate  float64
	ReportBurst int
}

const (
	ReportStorageLocal = "local"
	ReportStorageMinIO = "minio"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "sevadesk"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		TempleName:        getenv("TEMPLE_NAME", "Temple Seva Desk"),
		SnowflakeNode:     int64(getenvInt("SNOWFLAKE_NODE", 1)),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "temple.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		CatalogFile:       strings.TrimSpace(getenv("CATALOG_FILE", "")),
		Allocation: AllocationConfig{
			MaxAttempts: getenvInt("ALLOCATION_MAX_ATTEMPTS", 5),
			LockTTL:     getenvDuration("ALLOCATION_LOCK_TTL", 5*time.Second),
		},
		Report: ReportConfig{
			Storage: normalizeStorage(getenv("REPORT_STORAGE", ReportStorageLocal)),
			Dir:     getenv("REPORT_DIR", "reports"),
			MinIO: MinIOConfig{
				Endpoint:        strings.TrimSpace(getenv("MINIO_ENDPOINT", "localhost:9000")),
				AccessKeyID:     strings.TrimSpace(getenv("MINIO_ACCESS_KEY_ID", "")),
				SecretAccessKey: strings.TrimSpace(getenv("MINIO_SECRET_ACCESS_KEY", "")),
				UseSSL:          getenvBool("MINIO_USE_SSL", false),
				Region:          getenv("MINIO_REGION", "us-east-1"),
				Bucket:          getenv("MINIO_BUCKET", "sevadesk-reports"),
			},
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Slack: SlackConfig{
			WebhookURL: strings.TrimSpace(getenv("SLACK_WEBHOOK_URL", "")),
			Channel:    strings.TrimSpace(getenv("SLACK_CHANNEL", "#temple-ops")),
		},
		Scheduler: SchedulerConfig{
			Enabled:     getenvBool("SCHEDULER_ENABLED", true),
			RunInterval: getenvDuration("SCHEDULER_RUN_INTERVAL", time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getenvBool("RATE_LIMIT_ENABLED", false),
			ReportRate:  getenvFloat("RATE_LIMIT_REPORT_RATE", 0.2),
			ReportBurst: getenvInt("RATE_LIMIT_REPORT_BURST", 3),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizeStorage(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ReportStorageMinIO:
		return ReportStorageMinIO
	default:
		return ReportStorageLocal
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
