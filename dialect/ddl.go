/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package dialect

import (
	"fmt"
	"strings"
)

func mssqlTableExists(table string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM sys.objects WHERE object_id = OBJECT_ID(N'[dbo].[%s]') AND type in (N'U')", table)
}

func mssqlChangeLogDDL(table string) string {
	return fmt.Sprintf(`create table %[1]s (
	%[2]s UNIQUEIDENTIFIER not null,
	%[3]s DATETIME not null,
	%[4]s NVARCHAR(500) not null,
	constraint PK_%[5]s primary key (%[2]s)
)`, table, ColumnID, ColumnExecutionTime, ColumnScriptPath, strings.ToUpper(table))
}

func mysqlChangeLogDDL(table string) string {
	return fmt.Sprintf(`create table if not exists %[1]s (
	%[2]s CHAR(38) NOT NULL,
	%[3]s DATETIME NOT NULL,
	%[4]s VARCHAR(500) NOT NULL,
	PRIMARY KEY (%[2]s)
)`, table, ColumnID, ColumnExecutionTime, ColumnScriptPath)
}

// Firebird has no "create table if not exists", the check is done inside EXECUTE BLOCK.
func firebirdChangeLogDDL(table string) string {
	return fmt.Sprintf(`EXECUTE BLOCK AS BEGIN
	IF (NOT EXISTS(SELECT 1 FROM RDB$RELATIONS WHERE RDB$RELATION_NAME = '%[5]s')) THEN
		EXECUTE STATEMENT '
			CREATE TABLE %[1]s (
				%[2]s CHAR(38) NOT NULL,
				%[3]s TIMESTAMP NOT NULL,
				%[4]s VARCHAR(500) NOT NULL,
				PRIMARY KEY (%[2]s)
			)';
END`, table, ColumnID, ColumnExecutionTime, ColumnScriptPath, strings.ToUpper(table))
}

func postgresChangeLogDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	%[2]s CHAR(38) NOT NULL PRIMARY KEY,
	%[3]s TIMESTAMP NOT NULL,
	%[4]s VARCHAR(500) NOT NULL
)`, table, ColumnID, ColumnExecutionTime, ColumnScriptPath)
}

func sqliteChangeLogDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	%[2]s CHAR(38) NOT NULL PRIMARY KEY,
	%[3]s TEXT NOT NULL,
	%[4]s VARCHAR(500) NOT NULL
)`, table, ColumnID, ColumnExecutionTime, ColumnScriptPath)
}
