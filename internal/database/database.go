package database

import (
	"database/sql"
	"embed"
	"fmt"
	"vct-status/internal/config"
	"vct-status/internal/constants"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	return Open(cfg.DBPath, logger)
}

// Open connects to the SQLite file at path, tunes it and applies every pending migration.
func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	logger.Info().Str("path", path).Msg("connecting to database")

	// per-connection pragmas go through the DSN so every pooled connection gets them
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, crerr.Wrap(err, "failed to connect to database")
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	if err := optimizeSQLite(db, logger); err != nil {
		logger.Error().Err(err).Msg("failed to optimize SQLite")
		_ = db.Close()
		return nil, crerr.Wrap(err, "failed to optimize SQLite")
	}
	if err := runMigrations(db, logger); err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		_ = db.Close()
		return nil, crerr.Wrap(err, "failed to run migrations")
	}

	logger.Info().Msg("database connection established and optimized")
	return db, nil
}

// NewSQLX shares the pool of sqlDB for the struct-scanning read paths.
func NewSQLX(sqlDB *sql.DB) *sqlx.DB {
	return sqlx.NewDb(sqlDB, "sqlite3")
}

// Reset rolls every migration back and applies them again, leaving an empty schema.
func Reset(db *sql.DB, logger zerolog.Logger) error {
	if err := setupGoose(); err != nil {
		return err
	}

	logger.Warn().Msg("dropping all tables")
	if err := goose.Reset(db, migrationsDir); err != nil {
		return crerr.Wrap(err, "failed to reset goose migrations")
	}

	return runMigrations(db, logger)
}

// Ping runs a trivial query and returns the applied migration version.
func Ping(db *sql.DB) (int64, error) {
	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
		return 0, crerr.Wrap(err, "database did not answer")
	}

	if err := setupGoose(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, crerr.Wrap(err, "failed to read migration version")
	}
	return version, nil
}

func setupGoose() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return crerr.Wrap(err, "failed to set goose dialect")
	}
	return nil
}

func runMigrations(db *sql.DB, logger zerolog.Logger) error {
	if err := setupGoose(); err != nil {
		return err
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return crerr.Wrap(err, "failed to run goose migrations")
	}

	logger.Info().Msg("migrations completed successfully")
	return nil
}

func optimizeSQLite(sqlDB *sql.DB, logger zerolog.Logger) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"cache_size", "-64000"},
		{"temp_store", "MEMORY"},
		{"mmap_size", "268435456"}, // 256MB https://sqlite.org/mmap.html
	}

	for _, pragma := range pragmas {
		query := fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)
		if _, err := sqlDB.Exec(query); err != nil {
			logger.Warn().
				Err(err).
				Str("pragma", pragma.name).
				Str("value", pragma.value).
				Msg("failed to set pragma")
			return crerr.Wrapf(err, "failed to set PRAGMA %s", pragma.name)
		}
		logger.Debug().
			Str("pragma", pragma.name).
			Str("value", pragma.value).
			Msg("SQLite pragma set")
	}

	return nil
}
