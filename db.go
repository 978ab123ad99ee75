/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package dbupgrade provides configuration and connection helpers for applying versioned SQL
// change-scripts to MSSQL, MySQL and Firebird databases (PostgreSQL and SQLite are supported as well).
//
// The migration engine itself lives in the upgrader package. This package only knows how to
// describe a target database (Config), how to build a DSN for it and how to open it.
package dbupgrade

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Drivers for all supported dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/nakagami/firebirdsql"
)

// Dialect defines possible values for planned supported SQL dialects.
type Dialect string

// SQL dialects.
const (
	DialectMSSQL    Dialect = "mssql"
	DialectMySQL    Dialect = "mysql"
	DialectFirebird Dialect = "firebird"
	DialectPostgres Dialect = "postgres"
	DialectPgx      Dialect = "pgx"
	DialectSQLite   Dialect = "sqlite3"
)

// AllDialects returns all dialects known by the package.
func AllDialects() []Dialect {
	return []Dialect{DialectMSSQL, DialectMySQL, DialectFirebird, DialectPostgres, DialectPgx, DialectSQLite}
}

// Default values of connection parameters.
// Every logical operation of the upgrader acquires and releases its own connection,
// so idle connections are not kept by default.
const (
	DefaultMaxOpenConns    = 1
	DefaultMaxIdleConns    = 0
	DefaultConnMaxLifetime = 10 * time.Minute
)

// PostgresSSLMode defines possible values for Postgres sslmode connection parameter.
type PostgresSSLMode string

// Postgres SSL modes.
const (
	PostgresSSLModeDisable    PostgresSSLMode = "disable"
	PostgresSSLModeRequire    PostgresSSLMode = "require"
	PostgresSSLModeVerifyCA   PostgresSSLMode = "verify-ca"
	PostgresSSLModeVerifyFull PostgresSSLMode = "verify-full"
)

// PostgresDefaultSSLMode contains the default value for Postgres sslmode parameter.
const PostgresDefaultSSLMode = PostgresSSLModeVerifyCA

// Conner provides dedicated database connections.
// *sql.DB satisfies this interface. Every acquired connection must be closed by the caller.
type Conner interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Open opens a database described by the passed config and configures its connection pool.
// If ping is true, the connection is checked before returning.
func Open(cfg *Config, ping bool) (*sql.DB, error) {
	driverName, dsn := cfg.DriverNameAndDSN()
	if driverName == "" {
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime))

	if ping {
		if err = db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
	}
	return db, nil
}
