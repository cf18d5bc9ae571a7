package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Ping checks the pool for readiness probes.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

// Migration is one embedded schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the embedded migrations for a direction ("up" or "down").
// Up runs in name order, down in reverse.
func Migrations(direction string) ([]Migration, error) {
	if direction != "up" && direction != "down" {
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	names, err := fs.Glob(migrationFS, "migrations/*."+direction+".sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	if direction == "down" {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out = append(out, Migration{Name: strings.TrimPrefix(name, "migrations/"), SQL: string(data)})
	}
	return out, nil
}

// Migrate applies every migration for direction, stopping at the first failure.
func (db *DB) Migrate(ctx context.Context, direction string, applied func(name string)) error {
	migrations, err := Migrations(direction)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("exec %s: %w", m.Name, err)
		}
		if applied != nil {
			applied(m.Name)
		}
	}
	return nil
}
