/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package testing runs disposable databases in containers for integration tests.
package testing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mariadb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/acronis/go-dbupgrade"
)

// Container images used for tests.
const (
	MariaDBImage  = "mariadb:11.4"
	PostgresImage = "postgres:17-alpine"
)

const (
	testDatabase = "dbupgrade_test"
	testUser     = "dbupgrade"
	testPassword = "dbupgrade" //nolint: gosec
)

// RunAndOpenTestDB starts a container with a database of the given dialect and opens it.
// The returned function closes the database and terminates the container.
func RunAndOpenTestDB(ctx context.Context, dialect dbupgrade.Dialect) (*sql.DB, func(ctx context.Context) error, error) {
	var (
		container testcontainers.Container
		dsn       string
		err       error
	)
	switch dialect {
	case dbupgrade.DialectMySQL:
		var c *mariadb.MariaDBContainer
		if c, err = mariadb.Run(ctx, MariaDBImage,
			mariadb.WithDatabase(testDatabase),
			mariadb.WithUsername(testUser),
			mariadb.WithPassword(testPassword),
		); err != nil {
			return nil, nil, fmt.Errorf("run mariadb container: %w", err)
		}
		container = c
		dsn, err = c.ConnectionString(ctx, "parseTime=true")
	case dbupgrade.DialectPostgres, dbupgrade.DialectPgx:
		var c *postgres.PostgresContainer
		if c, err = postgres.Run(ctx, PostgresImage,
			postgres.WithDatabase(testDatabase),
			postgres.WithUsername(testUser),
			postgres.WithPassword(testPassword),
			postgres.BasicWaitStrategies(),
		); err != nil {
			return nil, nil, fmt.Errorf("run postgres container: %w", err)
		}
		container = c
		dsn, err = c.ConnectionString(ctx, "sslmode=disable")
	default:
		return nil, nil, fmt.Errorf("no test container for dialect %q", dialect)
	}
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("get connection string: %w", err)
	}

	db, err := sql.Open(dbupgrade.DriverName(dialect), dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err = pingWithTimeout(ctx, db, time.Minute); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, nil, err
	}

	stop := func(ctx context.Context) error {
		_ = db.Close()
		return container.Terminate(ctx)
	}
	return db, stop, nil
}

// MustRunAndOpenTestDB is like RunAndOpenTestDB but panics on error.
func MustRunAndOpenTestDB(ctx context.Context, dialect dbupgrade.Dialect) (*sql.DB, func(ctx context.Context) error) {
	db, stop, err := RunAndOpenTestDB(ctx, dialect)
	if err != nil {
		panic(err)
	}
	return db, stop
}

func pingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", err)
		case <-ticker.C:
		}
	}
}
