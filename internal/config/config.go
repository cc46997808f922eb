package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
)

type Config struct {
	Addr             string
	DBDriver         string
	DBPath           string
	BackupDir        string
	LogLevel         string
	BulkBatchSize    int
	AuditBackups     bool
	AuditWorkerCount int
	AuditQueueSize   int
}

// MaxBulkBatchSize caps the number of rows sent to the store in one batch.
const MaxBulkBatchSize = 1000

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBDriver:         envOr("DB_DRIVER", "sqlite3"),
		DBPath:           expandHome("DB_PATH", envOr("DB_PATH", "file:studycards.db")),
		BackupDir:        expandHome("BACKUP_DIR", envOr("BACKUP_DIR", "data/backups")),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		BulkBatchSize:    envIntOr("BULK_BATCH_SIZE", 200),
		AuditBackups:     envBoolOr("AUDIT_BACKUPS", true),
		AuditWorkerCount: envIntOr("AUDIT_WORKER_COUNT", 1),
		AuditQueueSize:   envIntOr("AUDIT_QUEUE_SIZE", 16),
	}
}

// Validate reports every invalid setting in a single error.
func (c *Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver))
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.BackupDir == "" {
		problems = append(problems, "BACKUP_DIR cannot be empty")
	}

	level := strings.ToUpper(c.LogLevel)
	switch level {
	case "DEBUG", "INFO", "WARN", "ERROR":
		c.LogLevel = level
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}

	if c.BulkBatchSize < 1 || c.BulkBatchSize > MaxBulkBatchSize {
		problems = append(problems, fmt.Sprintf("BULK_BATCH_SIZE must be between 1 and %d, got %d", MaxBulkBatchSize, c.BulkBatchSize))
	}
	if c.AuditWorkerCount < 1 {
		problems = append(problems, fmt.Sprintf("AUDIT_WORKER_COUNT must be at least 1, got %d", c.AuditWorkerCount))
	}
	if c.AuditQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("AUDIT_QUEUE_SIZE must be at least 1, got %d", c.AuditQueueSize))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

// expandHome resolves a leading "~" in a path setting; other values pass through.
func expandHome(key, path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		log.Printf("cannot expand %s=%q: %v", key, path, err)
		return path
	}
	return expanded
}
