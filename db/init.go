package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/gomantics/repograph/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed schema/*.sql
var embedSchema embed.FS

// Store is the handle on the shared store. It owns one connection pool;
// whoever opens it closes it.
type Store struct {
	pool *pgxpool.Pool
	l    *zap.Logger
}

// Open connects to the database at dsn and applies the embedded schema.
func Open(ctx context.Context, l *zap.Logger, dsn string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool settings
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	return OpenWithConfig(ctx, l, poolConfig)
}

// OpenWithConfig is Open for an already parsed pool configuration.
func OpenWithConfig(ctx context.Context, l *zap.Logger, poolConfig *pgxpool.Config) (*Store, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	s := &Store{pool: pool, l: l}

	// Test connection
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	l.Info("database pool initialized")

	if err := s.ApplySchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	l.Info("database schema applied")
	return s, nil
}

// Provide opens the store from configuration and closes it when the app stops.
func Provide(lc fx.Lifecycle, l *zap.Logger) (*Store, error) {
	s, err := Open(context.Background(), l, config.Database.Dsn())
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.Info("closing database pool")
			s.Close()
			return nil
		},
	})

	return s, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.pool.Close()
}

// ApplySchema applies all SQL schema files
func (s *Store) ApplySchema(ctx context.Context) error {
	sqlFiles, err := getSchemaSQLFiles()
	if err != nil {
		return err
	}

	s.l.Debug("found schema files", zap.Strings("files", sqlFiles))

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	for _, filename := range sqlFiles {
		content, err := embedSchema.ReadFile("schema/" + filename)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", filename, err)
		}

		if _, err := conn.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute schema %s: %w", filename, err)
		}

		s.l.Debug("schema file executed", zap.String("file", filename))
	}

	return nil
}

// getSchemaSQLFiles returns sorted list of SQL files from embedded schema
func getSchemaSQLFiles() ([]string, error) {
	fsys, err := fs.Sub(embedSchema, "schema")
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var sqlFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}

	sort.Strings(sqlFiles)
	return sqlFiles, nil
}
