package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/studycards/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type DB struct {
	*sqlx.DB
	log *logger.Logger
}

// Open connects to the card store and applies pending migrations. For sqlite3 the
// path is a file name (or :memory:); for postgres it is a libpq connection string.
func Open(driver, path string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	dsn := path
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(path)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	log.Info("opening %s database: %s", driver, redact(driver, path))

	sqlDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{DB: sqlDB, log: log}

	log.Debug("applying migrations")
	if err := db.applyMigrations(context.Background()); err != nil {
		log.Error("failed to apply migrations: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

func sqliteDSN(path string) string {
	params := "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func redact(driver, path string) string {
	if driver != DriverPostgres {
		return path
	}
	// libpq strings may carry a password; only the host part is worth logging.
	if i := strings.LastIndex(path, "@"); i >= 0 {
		return "***" + path[i:]
	}
	return "***"
}

func (db *DB) applyMigrations(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		version := entry.Name()
		applied, err := db.isMigrationApplied(ctx, version)
		if err != nil {
			return err
		}
		if applied {
			db.log.Debug("migration %s already applied, skipping", version)
			continue
		}
		sqlBytes, err := migrationsFS.ReadFile("migrations/" + version)
		if err != nil {
			return err
		}
		db.log.Info("applying migration: %s", version)
		if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
			db.log.Error("migration %s failed: %v", version, err)
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		if _, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), version); err != nil {
			return err
		}
		db.log.Info("migration %s applied successfully", version)
	}
	return nil
}

func (db *DB) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var v string
	err := db.QueryRowContext(ctx, db.Rebind(`SELECT version FROM schema_migrations WHERE version = ?`), version).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
