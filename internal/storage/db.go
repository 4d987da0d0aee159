package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations returns the schema files shipped with the binary.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return sub
}

// MigrationPool is the minimal interface required to run migrations.
// *pgxpool.Pool satisfies this interface.
type MigrationPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ApplicationName tags every database session opened by Connect.
const ApplicationName = "clima-rs"

const pingTimeout = 5 * time.Second

// Connect opens a pgxpool for databaseURL and pings it once. maxConns <= 0
// keeps the pgxpool default. An application_name in the URL wins over
// ApplicationName.
func Connect(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s: %w", cfg.ConnConfig.Host, err)
	}

	return pool, nil
}

// RunMigrations executes every .sql file at the root of migrations in
// lexicographic order. Each file runs in its own transaction, so files must be
// idempotent.
func RunMigrations(ctx context.Context, pool MigrationPool, migrations fs.FS) error {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		sql, err := fs.ReadFile(migrations, path.Clean(f))
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", f, err)
		}
		if err := applyMigration(ctx, pool, f, string(sql)); err != nil {
			return err
		}
	}

	return nil
}

// applyMigration runs one migration file in its own transaction.
func applyMigration(ctx context.Context, pool MigrationPool, name, sql string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("migration %s: beginning transaction: %w", name, err)
	}

	if _, err := tx.Exec(ctx, sql); err != nil {
		execErr := fmt.Errorf("migration %s: %w", name, err)
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(execErr, fmt.Errorf("rolling back %s: %w", name, rbErr))
		}
		return execErr
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("migration %s: committing: %w", name, err)
	}
	return nil
}
