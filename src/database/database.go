package database

import (
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/username/extractos/backend/db"
	"github.com/username/extractos/backend/src/logger"
)

var DB *sql.DB

// Open connects to the SQLite database at databasePath with WAL, a busy
// timeout and foreign keys enabled. ":memory:" gives a private in-memory database.
func Open(databasePath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", databasePath)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}

	// Limit open connections to 1 for SQLite to avoid locking issues
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// Migrate applies the embedded migrations to conn.
func Migrate(conn *sql.DB) error {
	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite migration driver: %w", err)
	}
	source, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration instance creation failed: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.L.Info("No new database migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.L.Info("Database migrations applied successfully.")
	return nil
}

// InitDB opens the application database, applies migrations and stores the
// connection in DB. Any failure is fatal.
func InitDB(databasePath string) {
	conn, err := Open(databasePath)
	if err != nil {
		stdlog.Fatalf("%v", err)
	}
	DB = conn
	logger.L.Info("Database connection established with WAL mode, busy_timeout, and foreign_keys enabled.")

	if err := Migrate(DB); err != nil {
		logger.L.Error("Failed to apply migrations", "error", err)
		stdlog.Fatalf("%v", err)
	}
}
