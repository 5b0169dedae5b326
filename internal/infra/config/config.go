package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken     string
	TeacherTelegramID int64
	HTTPAddr          string
	LogLevel          string
	LogFormat         string
	Environment       string

	StorageDriver  string
	StorageKey     string
	StorageFileDir string
	SQLitePath     string
	DatabaseURL    string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3PathStyle    bool
	S3AccessKeyID  string
	S3SecretKey    string
	S3Prefix       string

	RosterSize           int
	Location             *time.Location
	CronSpecWeeklyDigest string
}

// BotEnabled reports whether a Telegram token was configured.
func (c *AppConfig) BotEnabled() bool { return c.TelegramToken != "" }

// HTTPEnabled reports whether the HTTP API should listen.
func (c *AppConfig) HTTPEnabled() bool { return c.HTTPAddr != "" }

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing .env is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		teacherIDStr := os.Getenv("TEACHER_TELEGRAM_ID")
		if teacherIDStr == "" {
			return nil, fmt.Errorf("TEACHER_TELEGRAM_ID is not set")
		}
		cfg.TeacherTelegramID, err = strconv.ParseInt(teacherIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TEACHER_TELEGRAM_ID: %w", err)
		}
	}

	cfg.HTTPAddr = lookupDefault("HTTP_ADDR", ":8080")
	if !cfg.BotEnabled() && !cfg.HTTPEnabled() {
		return nil, fmt.Errorf("neither TELEGRAM_TOKEN nor HTTP_ADDR is set; nothing to serve")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Empty means: pick by ENVIRONMENT.
	cfg.LogFormat = strings.ToLower(os.Getenv("LOG_FORMAT"))
	switch cfg.LogFormat {
	case "", "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}

	cfg.StorageDriver = strings.ToLower(os.Getenv("STORAGE_DRIVER"))
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = DriverFile
	}
	cfg.StorageKey = os.Getenv("STORAGE_KEY")
	if cfg.StorageKey == "" {
		cfg.StorageKey = "attendanceRecords"
	}
	cfg.StorageFileDir = os.Getenv("STORAGE_FILE_DIR")
	if cfg.StorageFileDir == "" {
		cfg.StorageFileDir = "data"
	}
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "attendance.db"
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Region = os.Getenv("S3_REGION")
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3PathStyle = strings.EqualFold(os.Getenv("S3_PATH_STYLE"), "true")
	// Empty keys fall back to the default AWS credential chain.
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.S3Prefix = os.Getenv("S3_PREFIX")

	switch cfg.StorageDriver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set (required for STORAGE_DRIVER=postgres)")
		}
	case DriverS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is not set (required for STORAGE_DRIVER=s3)")
		}
		if (cfg.S3AccessKeyID == "") != (cfg.S3SecretKey == "") {
			return nil, fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	cfg.RosterSize = 30 // heuristic class size for the normal-attendance estimate
	if v := os.Getenv("ROSTER_SIZE"); v != "" {
		cfg.RosterSize, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ROSTER_SIZE: %w", err)
		}
		if cfg.RosterSize <= 0 {
			return nil, fmt.Errorf("invalid ROSTER_SIZE: must be positive, got %d", cfg.RosterSize)
		}
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "Asia/Seoul"
	}
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.CronSpecWeeklyDigest = os.Getenv("CRON_SPEC_WEEKLY_DIGEST")
	if cfg.CronSpecWeeklyDigest == "" {
		cfg.CronSpecWeeklyDigest = "0 17 * * 5" // Default: 5 PM on Fridays
	}

	return cfg, nil
}

// lookupDefault distinguishes an explicitly empty variable (disables the feature) from an unset one.
func lookupDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
