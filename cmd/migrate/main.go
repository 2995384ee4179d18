package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	migrationsDir := cfg.MigrationsDir
	if *dir != "" {
		migrationsDir = *dir
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ` + database.MigrationsTable + ` (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		logging.Fatal().Err(err).Msg("failed to create migrations table")
	}

	if *rollback {
		if err := rollbackLast(db, migrationsDir); err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		return
	}

	files, err := database.MigrationFiles(migrationsDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to list migrations")
	}

	for _, file := range files {
		var applied bool
		err := db.QueryRow(
			"SELECT EXISTS (SELECT 1 FROM "+database.MigrationsTable+" WHERE name = $1)", file,
		).Scan(&applied)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to check migration status")
		}
		if applied {
			logging.Info().Str("migration", file).Msg("migration already applied")
			continue
		}

		if err := apply(db, filepath.Join(migrationsDir, file), func(tx *sql.Tx) error {
			_, err := tx.Exec("INSERT INTO "+database.MigrationsTable+" (name) VALUES ($1)", file)
			return err
		}); err != nil {
			logging.Fatal().Err(err).Str("migration", file).Msg("failed to apply migration")
		}
		logging.Info().Str("migration", file).Msg("applied migration")
	}

	logging.Info().Msg("all migrations applied successfully")
}

func rollbackLast(db *sql.DB, migrationsDir string) error {
	var last string
	err := db.QueryRow(
		"SELECT name FROM " + database.MigrationsTable + " ORDER BY applied_at DESC, name DESC LIMIT 1",
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("no migrations to rollback")
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(migrationsDir, database.RollbackFile(last))
	if _, err := os.Stat(rollbackPath); err != nil {
		return fmt.Errorf("rollback file not found: %s", rollbackPath)
	}

	if err := apply(db, rollbackPath, func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM "+database.MigrationsTable+" WHERE name = $1", last)
		return err
	}); err != nil {
		return err
	}

	logging.Info().Str("migration", last).Msg("rolled back migration")
	return nil
}

// apply runs the script at path and then record inside one transaction.
func apply(db *sql.DB, path string, record func(*sql.Tx) error) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if _, err := tx.Exec(string(content)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to execute %s: %w", path, err)
	}
	if err := record(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}
