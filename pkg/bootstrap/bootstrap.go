// Package bootstrap builds the process-wide resources shared by the catalog components.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/abgdnv/catalog/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewLogger creates a JSON slog.Logger writing to stdout with the specified log level.
func NewLogger(level string) *slog.Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a JSON slog.Logger writing to w. Records logged with a request
// context carry the request id.
func NewLoggerTo(w io.Writer, level string) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := slog.NewJSONHandler(w, loggerOpts)
	return slog.New(logger.NewContextHandler(logHandler))
}

// NewDbPool creates a new database connection pool and pings it within connectTimeout.
func NewDbPool(ctx context.Context, url string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	poolCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	dbPool, errPool := pgxpool.New(poolCtx, url)
	if errPool != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", errPool)
	}
	// Ping the database to ensure the connection is established (fail early if not)
	if err := dbPool.Ping(poolCtx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbPool, nil
}

// Migrate applies all pending migrations found in dir of fsys to the database at url.
func Migrate(fsys fs.FS, dir, url string) error {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
