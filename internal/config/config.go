package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backend identifiers. New uploads go to the selected backend;
// deletion always routes by the attachment URL, so both backends can hold
// files from older configurations.
const (
	StorageLocal = "local"
	StorageR2    = "r2"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	SessionSecret string

	GinMode     string
	FrontendURL string

	StorageBackend string
	UploadsDir     string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string

	TrashRetentionDays int

	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "tasket"),
		DBPassword: getEnv("DB_PASSWORD", "tasket"),
		DBName:     getEnv("DB_NAME", "tasket"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),

		GinMode:     getEnv("GIN_MODE", "debug"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageLocal),
		UploadsDir:     getEnv("UPLOADS_DIR", "persistent_uploads"),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:          getEnv("R2_BUCKET_NAME", ""),

		TrashRetentionDays: getEnvInt("TRASH_RETENTION_DAYS", 30),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@tasket.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

// R2Configured reports whether every credential needed for the object store
// is present. Absence is non-fatal: the store is skipped with a warning.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" &&
		c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" &&
		c.R2Bucket != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
