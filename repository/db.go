package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/zelvyn/zelvyn-api/migrations"
)

// Dialect names the SQL flavor behind a connection
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// DialectFor picks the dialect from a DSN. postgres:// and postgresql://
// URLs are PostgreSQL, everything else is a SQLite file or memory DSN.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to dsn and wraps the connection in bun with the matching
// dialect.
func Open(ctx context.Context, dsn string) (*bun.DB, Dialect, error) {
	dialect := DialectFor(dsn)

	var (
		sqldb *sql.DB
		err   error
	)
	switch dialect {
	case DialectPostgres:
		sqldb, err = sql.Open("pgx", dsn)
	default:
		sqldb, err = sql.Open(sqliteshim.ShimName, dsn)
	}
	if err != nil {
		return nil, "", fmt.Errorf("db open error: %w", err)
	}

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, "", fmt.Errorf("db ping error: %w", err)
	}

	var db *bun.DB
	switch dialect {
	case DialectPostgres:
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		// a single connection keeps :memory: databases and sqlite writes consistent
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	return db, dialect, nil
}

// Migrate applies the embedded migrations for dialect
func Migrate(ctx context.Context, db *bun.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := migrations.DirSQLite
	if dialect == DialectPostgres {
		dir = migrations.DirPostgres
	}

	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}
