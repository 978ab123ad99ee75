/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package changelog provides access to the table that tracks executed scripts.
// Each script is identified by its UUID and is recorded once, right after its execution.
package changelog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/acronis/go-dbupgrade"
	"github.com/acronis/go-dbupgrade/dialect"
)

// Store works with the changelog table.
// Every operation acquires its own connection and releases it before returning.
type Store struct {
	db        dbupgrade.Conner
	dialect   *dialect.Descriptor
	tableName string
}

// Option is a functional option for Store configuration.
type Option func(*Store)

// WithTableName sets a custom changelog table name.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.tableName = name
	}
}

// NewStore creates a new changelog store.
func NewStore(db dbupgrade.Conner, desc *dialect.Descriptor, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if desc == nil {
		return nil, fmt.Errorf("dialect descriptor cannot be nil")
	}
	s := &Store{db: db, dialect: desc, tableName: dialect.DefaultTableName}
	for _, opt := range opts {
		opt(s)
	}
	if err := dialect.ValidateTableName(s.tableName); err != nil {
		return nil, err
	}
	return s, nil
}

// TableName returns the changelog table name.
func (s *Store) TableName() string {
	return s.tableName
}

// EnsureTable creates the changelog table if it does not exist yet.
func (s *Store) EnsureTable(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close() // nolint: errcheck

	if probe := s.dialect.TableExistsQuery(s.tableName); probe != "" {
		var count int
		if err = s.queryRow(ctx, conn, probe, nil, &count); err != nil {
			return fmt.Errorf("check changelog table existence: %w", err)
		}
		if count > 0 {
			return nil
		}
	}

	cmdCtx, cancel := s.dialect.CommandContext(ctx)
	defer cancel()
	if _, err = conn.ExecContext(cmdCtx, s.dialect.ChangeLogDDL(s.tableName)); err != nil {
		return fmt.Errorf("create changelog table: %w", err)
	}
	return nil
}

// IsApplied reports whether the script with the given id has been recorded.
func (s *Store) IsApplied(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := s.dialect.IsAppliedQuery(s.tableName, id)
	if err != nil {
		return false, fmt.Errorf("build is-applied query: %w", err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close() // nolint: errcheck

	var count int
	if err = s.queryRow(ctx, conn, query, args, &count); err != nil {
		return false, fmt.Errorf("query changelog: %w", err)
	}
	return count > 0, nil
}

// Record inserts a changelog row for the executed script and reports whether a row was inserted.
func (s *Store) Record(ctx context.Context, id uuid.UUID, scriptPath string) (bool, error) {
	query, args, err := s.dialect.RecordQuery(s.tableName, id, scriptPath)
	if err != nil {
		return false, fmt.Errorf("build record query: %w", err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close() // nolint: errcheck

	cmdCtx, cancel := s.dialect.CommandContext(ctx)
	defer cancel()
	res, err := conn.ExecContext(cmdCtx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert changelog row: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get affected rows: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) queryRow(ctx context.Context, conn *sql.Conn, query string, args []interface{}, dest interface{}) error {
	cmdCtx, cancel := s.dialect.CommandContext(ctx)
	defer cancel()
	return conn.QueryRowContext(cmdCtx, query, args...).Scan(dest)
}
