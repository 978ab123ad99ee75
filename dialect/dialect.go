/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package dialect contains per-database capabilities used by the upgrader:
// the changelog table DDL, changelog queries, the statement splitting strategy and the command timeout.
package dialect

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	// goqu dialects for query generation.
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlserver"
	"github.com/google/uuid"

	"github.com/acronis/go-dbupgrade"
	"github.com/acronis/go-dbupgrade/splitter"
)

// ErrUnsupported is returned by Lookup for a dialect without a descriptor.
var ErrUnsupported = errors.New("unsupported dialect")

// DefaultTableName is the default name of the changelog table.
const DefaultTableName = "DBChangeLog"

// DefaultCommandTimeout is the per-statement timeout for dialects that do not override it.
const DefaultCommandTimeout = 30 * time.Second

// Changelog table columns.
const (
	ColumnID            = "DBChangeLogID"
	ColumnExecutionTime = "ExecutionStartTime"
	ColumnScriptPath    = "ScriptFilePath"
)

const goquFirebird = "firebird"

func init() {
	goqu.RegisterDialect(goquFirebird, goqu.DefaultDialectOptions())
}

var tableNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTableName checks that name can be used as the changelog table name without quoting.
func ValidateTableName(name string) error {
	if !tableNameRegexp.MatchString(name) {
		return fmt.Errorf("invalid changelog table name %q", name)
	}
	return nil
}

// Descriptor describes how the upgrader works with a particular database.
type Descriptor struct {
	Dialect dbupgrade.Dialect

	// Splitter splits script content into statements.
	Splitter splitter.Splitter

	// CommandTimeout limits execution of a single statement. Zero means no timeout.
	CommandTimeout time.Duration

	goquDialect  string
	now          string
	identCase    func(string) string
	tableExists  func(table string) string
	changeLogDDL func(table string) string
}

// CommandContext returns a context limited by CommandTimeout.
func (d *Descriptor) CommandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.CommandTimeout > 0 {
		return context.WithTimeout(ctx, d.CommandTimeout)
	}
	return context.WithCancel(ctx)
}

// ChangeLogDDL returns the statement that creates the changelog table.
func (d *Descriptor) ChangeLogDDL(table string) string {
	return d.changeLogDDL(table)
}

// TableExistsQuery returns the query that counts changelog tables with the given name.
// An empty string means that ChangeLogDDL may be executed unconditionally.
func (d *Descriptor) TableExistsQuery(table string) string {
	if d.tableExists == nil {
		return ""
	}
	return d.tableExists(table)
}

// IsAppliedQuery returns the prepared query counting changelog rows for the script id.
func (d *Descriptor) IsAppliedQuery(table string, id uuid.UUID) (string, []interface{}, error) {
	return goqu.Dialect(d.goquDialect).
		From(goqu.T(d.identCase(table))).
		Prepared(true).
		Select(goqu.COUNT(goqu.C(d.identCase(ColumnID)))).
		Where(goqu.C(d.identCase(ColumnID)).Eq(id.String())).
		ToSQL()
}

// RecordQuery returns the prepared statement inserting a changelog row stamped with the database's current time.
func (d *Descriptor) RecordQuery(table string, id uuid.UUID, scriptPath string) (string, []interface{}, error) {
	return goqu.Dialect(d.goquDialect).
		Insert(goqu.T(d.identCase(table))).
		Prepared(true).
		Cols(d.identCase(ColumnID), d.identCase(ColumnExecutionTime), d.identCase(ColumnScriptPath)).
		Vals(goqu.Vals{id.String(), goqu.L(d.now), scriptPath}).
		ToSQL()
}

// Lookup returns the descriptor of the dialect.
func Lookup(d dbupgrade.Dialect) (*Descriptor, error) {
	desc, ok := descriptors[d]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, d)
	}
	return desc, nil
}

var descriptors = map[dbupgrade.Dialect]*Descriptor{
	// goqu quotes MSSQL identifiers with double quotes, so the queries need QUOTED_IDENTIFIER ON.
	// go-mssqldb sessions have it on by default.
	dbupgrade.DialectMSSQL: {
		Dialect:        dbupgrade.DialectMSSQL,
		Splitter:       splitter.MSSQL,
		CommandTimeout: 0,
		goquDialect:    "sqlserver",
		now:            "GETDATE()",
		identCase:      keepCase,
		tableExists:    mssqlTableExists,
		changeLogDDL:   mssqlChangeLogDDL,
	},
	dbupgrade.DialectMySQL: {
		Dialect:        dbupgrade.DialectMySQL,
		Splitter:       splitter.Semicolon,
		CommandTimeout: DefaultCommandTimeout,
		goquDialect:    "mysql",
		now:            "NOW()",
		identCase:      keepCase,
		changeLogDDL:   mysqlChangeLogDDL,
	},
	dbupgrade.DialectFirebird: {
		Dialect:        dbupgrade.DialectFirebird,
		Splitter:       splitter.Firebird,
		CommandTimeout: DefaultCommandTimeout,
		goquDialect:    goquFirebird,
		now:            "CURRENT_TIMESTAMP",
		identCase:      strings.ToUpper,
		changeLogDDL:   firebirdChangeLogDDL,
	},
	dbupgrade.DialectPostgres: postgresDescriptor(dbupgrade.DialectPostgres),
	dbupgrade.DialectPgx:      postgresDescriptor(dbupgrade.DialectPgx),
	dbupgrade.DialectSQLite: {
		Dialect:        dbupgrade.DialectSQLite,
		Splitter:       splitter.Semicolon,
		CommandTimeout: DefaultCommandTimeout,
		goquDialect:    "sqlite3",
		now:            "CURRENT_TIMESTAMP",
		identCase:      keepCase,
		changeLogDDL:   sqliteChangeLogDDL,
	},
}

func postgresDescriptor(d dbupgrade.Dialect) *Descriptor {
	return &Descriptor{
		Dialect:        d,
		Splitter:       splitter.Semicolon,
		CommandTimeout: DefaultCommandTimeout,
		goquDialect:    "postgres",
		now:            "NOW()",
		// Unquoted identifiers are folded to lower case by PostgreSQL.
		identCase:    strings.ToLower,
		changeLogDDL: postgresChangeLogDDL,
	}
}

func keepCase(s string) string {
	return s
}
